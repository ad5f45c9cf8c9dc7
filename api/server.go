/*
server.go - HTTP router and middleware configuration

Wires URLs to handlers with chi. Middleware: request logging, panic
recovery, request IDs, CORS for the local frontend.
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Get("/{id}", h.GetAccount)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})

		r.Route("/withdrawals", func(r chi.Router) {
			r.Get("/", h.ListWithdrawals)
			r.Post("/", h.CreateWithdrawal)
			r.Post("/{id}/complete", h.CompleteWithdrawal)
			r.Get("/{id}/classification", h.ClassifyWithdrawal)
		})

		r.Route("/insights", func(r chi.Router) {
			r.Get("/", h.GetInsights)
			r.Post("/{id}/read", h.MarkInsightRead)
			r.Post("/{id}/dismiss", h.DismissInsight)
		})

		r.Get("/metrics", h.GetMetrics)
		r.Get("/milestones", h.GetMilestones)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
