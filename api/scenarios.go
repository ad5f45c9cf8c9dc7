/*
scenarios.go - Demo data loaders

Seeds the store with realistic ledger data for local development and
integration tests. Dates are relative to an injectable reference time
(?now=) so the seeded analytics are reproducible.
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pulse/earnings-engine/calendar"
	"github.com/pulse/earnings-engine/ledger"
	"github.com/pulse/earnings-engine/store/sqlite"
)

// ScenarioDTO describes one loadable scenario.
type ScenarioDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []ScenarioDTO{
	{
		Name:        "getting-started",
		Description: "One account, a week of sporadic earnings, one pending withdrawal",
	},
	{
		Name:        "power-user",
		Description: "Three accounts, a 10-day streak, a delayed withdrawal, milestone in reach",
	},
}

// ListScenarios returns the scenario catalog.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario seeds the store with the named scenario's data.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	now, _, err := referenceTime(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid now (use RFC3339)", err)
		return
	}

	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var loadErr error
	switch req.Name {
	case "getting-started":
		loadErr = loadGettingStarted(r.Context(), h.Store, now)
	case "power-user":
		loadErr = loadPowerUser(r.Context(), h.Store, now)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario %q", req.Name), nil)
		return
	}
	if loadErr != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", loadErr)
		return
	}

	h.insightCache.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.Name})
}

func loadGettingStarted(ctx context.Context, store *sqlite.Store, now time.Time) error {
	today := calendar.DateOf(now)

	if err := store.SaveAccount(ctx, sqlite.AccountRecord{ID: "swagbucks", Name: "Swagbucks"}); err != nil {
		return err
	}

	awards := []struct {
		daysAgo int
		points  int
	}{
		{6, 120}, {4, 85}, {3, 240}, {1, 60},
	}
	for i, a := range awards {
		entry := ledger.Entry{
			ID:        ledger.EntryID(fmt.Sprintf("gs-entry-%d", i)),
			AccountID: "swagbucks",
			Date:      today.AddDays(-a.daysAgo),
			Points:    a.points,
			CreatedAt: now.AddDate(0, 0, -a.daysAgo),
		}
		if err := store.SaveEntry(ctx, entry); err != nil {
			return err
		}
	}

	return store.SaveWithdrawal(ctx, ledger.Withdrawal{
		ID:        "gs-withdrawal-1",
		AccountID: "swagbucks",
		Date:      today.AddDays(-3),
		Amount:    decimal.NewFromInt(5),
		Status:    ledger.WithdrawalPending,
	})
}

func loadPowerUser(ctx context.Context, store *sqlite.Store, now time.Time) error {
	today := calendar.DateOf(now)

	accounts := []sqlite.AccountRecord{
		{ID: "swagbucks", Name: "Swagbucks"},
		{ID: "prolific", Name: "Prolific"},
		{ID: "usertesting", Name: "UserTesting"},
	}
	for _, a := range accounts {
		if err := store.SaveAccount(ctx, a); err != nil {
			return err
		}
	}

	// A 10-day unbroken run across accounts, heavier on weekdays so the
	// weekend-gap rule has something to find.
	for daysAgo := 9; daysAgo >= 0; daysAgo-- {
		date := today.AddDays(-daysAgo)
		points := 300
		if date.IsWeekend() {
			points = 90
		}
		account := accounts[daysAgo%len(accounts)]
		entry := ledger.Entry{
			ID:        ledger.EntryID(fmt.Sprintf("pu-entry-%d", daysAgo)),
			AccountID: account.ID,
			Date:      date,
			Points:    points,
			CreatedAt: now.AddDate(0, 0, -daysAgo),
		}
		if err := store.SaveEntry(ctx, entry); err != nil {
			return err
		}
	}

	// A withdrawal stuck well past the usual processing window.
	if err := store.SaveWithdrawal(ctx, ledger.Withdrawal{
		ID:        "pu-withdrawal-stuck",
		AccountID: "prolific",
		Date:      today.AddDays(-30),
		Amount:    decimal.NewFromInt(25),
		Status:    ledger.WithdrawalPending,
	}); err != nil {
		return err
	}

	// And one that completed quickly.
	completedAt := now.AddDate(0, 0, -20)
	return store.SaveWithdrawal(ctx, ledger.Withdrawal{
		ID:          "pu-withdrawal-done",
		AccountID:   "swagbucks",
		Date:        today.AddDays(-25),
		Amount:      decimal.NewFromInt(10),
		Status:      ledger.WithdrawalCompleted,
		CompletedAt: &completedAt,
	})
}
