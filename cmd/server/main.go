/*
main.go - Application entry point

STARTUP SEQUENCE:
  1. Load .env (if present), then the YAML config file, then env overrides
  2. Open the SQLite store
  3. Build the API handler and router
  4. Serve with graceful shutdown on SIGINT/SIGTERM

FLAGS:
  -config  Path to YAML config (default: config.yaml; missing file is fine)
  -db      SQLite path override (":memory:" for in-memory)

ENVIRONMENT:
  PULSE_ADDR, PULSE_DB_PATH, PULSE_MONTHLY_GOAL, PULSE_INSIGHT_CACHE_TTL
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pulse/earnings-engine/api"
	"github.com/pulse/earnings-engine/config"
	"github.com/pulse/earnings-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	dbPath := flag.String("db", "", "SQLite database path override")
	flag.Parse()

	// .env is optional; real env vars win either way.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	cacheTTL, err := cfg.CacheTTL()
	if err != nil {
		log.Fatalf("Bad config: %v", err)
	}

	handler := api.NewHandler(store, cfg.MonthlyGoalPoints, cacheTTL, nil)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
