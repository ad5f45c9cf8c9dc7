/*
handlers.go - HTTP handlers for the earnings ledger and its analytics

PURPOSE:
  Exposes the ledger CRUD surface and the derived-analytics endpoints.
  Handlers do all the I/O (fetch records, inject the reference time),
  then hand plain slices to the analytics package.

ENDPOINTS:
  Accounts:
    GET    /api/accounts                     List account summaries
    POST   /api/accounts                     Create account
    GET    /api/accounts/{id}                Get one summary

  Entries:
    GET    /api/entries                      List entries (?since=YYYY-MM-DD)
    POST   /api/entries                      Record a point award
    DELETE /api/entries/{id}                 Remove an entry

  Withdrawals:
    GET    /api/withdrawals                  List withdrawals
    POST   /api/withdrawals                  Open a withdrawal request
    POST   /api/withdrawals/{id}/complete    Mark completed
    GET    /api/withdrawals/{id}/classification  Processing-time badge

  Analytics:
    GET    /api/insights                     Ranked insights (cached)
    POST   /api/insights/{id}/read           Mark insight read
    POST   /api/insights/{id}/dismiss        Suppress insight
    GET    /api/metrics                      Performance metrics
    GET    /api/milestones                   Crossings + next target

  Scenarios:
    POST   /api/scenarios/load               Seed demo data

DETERMINISM:
  Every analytics endpoint accepts ?now=RFC3339. When present the
  response is computed against that reference time and bypasses the
  insight cache, which is what the tests rely on. Without it the wall
  clock is used and insights are served through the TTL cache.

ERROR HANDLING:
  - 400: invalid input
  - 404: unknown record
  - 409: conflict (completing twice)
  - 500: storage failures
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pulse/earnings-engine/analytics"
	"github.com/pulse/earnings-engine/calendar"
	"github.com/pulse/earnings-engine/ledger"
	"github.com/pulse/earnings-engine/store/sqlite"
)

// insightWindowDays is the lookback for the analytics context.
const insightWindowDays = 30

// milestoneWindow is how far back "recently crossed" looks.
const milestoneWindow = time.Hour

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       *sqlite.Store
	Engine      *analytics.Engine
	MonthlyGoal int

	// Explicit TTL cache for the wall-clock insights path. Never a
	// package-level global; tests inject their own clock.
	insightCache *ledger.TTLCache[[]analytics.Insight]
}

// NewHandler creates a handler. cacheTTL covers the insights response;
// clock may be nil outside tests.
func NewHandler(store *sqlite.Store, monthlyGoal int, cacheTTL time.Duration, clock func() time.Time) *Handler {
	return &Handler{
		Store:        store,
		Engine:       analytics.NewEngine(),
		MonthlyGoal:  monthlyGoal,
		insightCache: ledger.NewTTLCache[[]analytics.Insight](cacheTTL, clock),
	}
}

// referenceTime resolves the injected ?now= parameter, falling back to
// the wall clock. The second return reports whether it was injected.
func referenceTime(r *http.Request) (time.Time, bool, error) {
	raw := r.URL.Query().Get("now")
	if raw == "" {
		return time.Now().UTC(), false, nil
	}
	now, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return now.UTC(), true, nil
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns all account summaries.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.AccountSummaries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toAccountDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAccount returns one account summary.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := ledger.AccountID(chi.URLParam(r, "id"))

	account, err := h.Store.GetAccount(r.Context(), id)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(account))
}

// CreateAccount creates a new account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	record := sqlite.AccountRecord{ID: ledger.AccountID(req.ID), Name: req.Name}
	if err := h.Store.SaveAccount(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, AccountDTO{
		ID:                   req.ID,
		Name:                 req.Name,
		PendingWithdrawals:   "0",
		CompletedWithdrawals: "0",
	})
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns entries, optionally since a date.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	var since calendar.Date
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := calendar.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid since date (use YYYY-MM-DD)", err)
			return
		}
		since = parsed
	}

	entries, err := h.Store.ListEntries(r.Context(), since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEntry records a point award.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if req.Points < 0 {
		writeError(w, http.StatusBadRequest, "points must be >= 0", nil)
		return
	}

	if _, err := h.Store.GetAccount(r.Context(), ledger.AccountID(req.AccountID)); err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "Account not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to look up account", err)
		return
	}

	createdAt := time.Now().UTC()
	if req.CreatedAt != "" {
		createdAt, err = time.Parse(time.RFC3339, req.CreatedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid created_at (use RFC3339)", err)
			return
		}
	}

	entry := ledger.Entry{
		ID:        ledger.EntryID(uuid.NewString()),
		AccountID: ledger.AccountID(req.AccountID),
		Date:      date,
		Points:    req.Points,
		CreatedAt: createdAt,
	}
	if err := h.Store.SaveEntry(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save entry", err)
		return
	}

	h.insightCache.Clear()
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// DeleteEntry removes an entry.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := ledger.EntryID(chi.URLParam(r, "id"))

	err := h.Store.DeleteEntry(r.Context(), id)
	if errors.Is(err, ledger.ErrEntryNotFound) {
		writeError(w, http.StatusNotFound, "Entry not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete entry", err)
		return
	}

	h.insightCache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// WITHDRAWAL HANDLERS
// =============================================================================

// ListWithdrawals returns every withdrawal.
func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	withdrawals, err := h.Store.ListWithdrawals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list withdrawals", err)
		return
	}

	dtos := make([]WithdrawalDTO, len(withdrawals))
	for i, wd := range withdrawals {
		dtos[i] = toWithdrawalDTO(wd)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateWithdrawal opens a withdrawal request.
func (h *Handler) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req CreateWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	if _, err := h.Store.GetAccount(r.Context(), ledger.AccountID(req.AccountID)); err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "Account not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to look up account", err)
		return
	}

	withdrawal := ledger.Withdrawal{
		ID:        ledger.WithdrawalID(uuid.NewString()),
		AccountID: ledger.AccountID(req.AccountID),
		Date:      date,
		Amount:    amount,
		Status:    ledger.WithdrawalPending,
	}
	if err := h.Store.SaveWithdrawal(r.Context(), withdrawal); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save withdrawal", err)
		return
	}

	h.insightCache.Clear()
	writeJSON(w, http.StatusCreated, toWithdrawalDTO(withdrawal))
}

// CompleteWithdrawal marks a withdrawal completed.
func (h *Handler) CompleteWithdrawal(w http.ResponseWriter, r *http.Request) {
	id := ledger.WithdrawalID(chi.URLParam(r, "id"))

	var req CompleteWithdrawalRequest
	if r.Body != nil {
		// Body is optional; decode errors on empty bodies are fine.
		json.NewDecoder(r.Body).Decode(&req)
	}

	completedAt := time.Now().UTC()
	if req.CompletedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.CompletedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid completed_at (use RFC3339)", err)
			return
		}
		completedAt = parsed.UTC()
	}

	err := h.Store.CompleteWithdrawal(r.Context(), id, completedAt)
	switch {
	case errors.Is(err, ledger.ErrWithdrawalNotFound):
		writeError(w, http.StatusNotFound, "Withdrawal not found", nil)
		return
	case errors.Is(err, ledger.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, "Withdrawal already completed", nil)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to complete withdrawal", err)
		return
	}

	h.insightCache.Clear()
	withdrawal, err := h.Store.GetWithdrawal(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload withdrawal", err)
		return
	}
	writeJSON(w, http.StatusOK, toWithdrawalDTO(withdrawal))
}

// ClassifyWithdrawal returns the processing-time badge for one withdrawal.
func (h *Handler) ClassifyWithdrawal(w http.ResponseWriter, r *http.Request) {
	id := ledger.WithdrawalID(chi.URLParam(r, "id"))

	now, _, err := referenceTime(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid now (use RFC3339)", err)
		return
	}

	withdrawals, err := h.Store.ListWithdrawals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list withdrawals", err)
		return
	}

	var target *ledger.Withdrawal
	for i := range withdrawals {
		if withdrawals[i].ID == id {
			target = &withdrawals[i]
			break
		}
	}
	if target == nil {
		writeError(w, http.StatusNotFound, "Withdrawal not found", nil)
		return
	}

	first := analytics.IsFirstForAccount(*target, withdrawals)
	classification := analytics.Classify(*target, first, calendar.DateOf(now))

	writeJSON(w, http.StatusOK, ClassificationDTO{
		WithdrawalID:        string(target.ID),
		ElapsedBusinessDays: classification.ElapsedBusinessDays,
		Bucket:              string(classification.Bucket),
		ExpectedMin:         classification.ExpectedMin,
		ExpectedMax:         classification.ExpectedMax,
		FirstForAccount:     first,
		Overdue:             classification.Overdue(),
	})
}

// =============================================================================
// ANALYTICS HANDLERS
// =============================================================================

// buildContext fetches the windowed records the rule engine reads.
func (h *Handler) buildContext(r *http.Request, now time.Time) (*analytics.Context, error) {
	today := calendar.DateOf(now)

	entries30, err := h.Store.ListEntries(r.Context(), today.AddDays(-(insightWindowDays - 1)))
	if err != nil {
		return nil, err
	}
	withdrawals, err := h.Store.ListWithdrawals(r.Context())
	if err != nil {
		return nil, err
	}
	accounts, err := h.Store.AccountSummaries(r.Context())
	if err != nil {
		return nil, err
	}

	return &analytics.Context{
		Now:       now,
		Entries30: entries30,
		Entries7:  ledger.EntriesInWindow(entries30, today.AddDays(-6), today),
		Pending:   ledger.PendingWithdrawals(withdrawals),
		Accounts:  accounts,
	}, nil
}

// GetInsights returns the ranked insight list, minus dismissed ones.
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	now, injected, err := referenceTime(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid now (use RFC3339)", err)
		return
	}

	var insights []analytics.Insight
	cached := false
	if !injected {
		insights, cached = h.insightCache.Get("insights")
	}
	if !cached {
		ctx, err := h.buildContext(r, now)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
			return
		}
		insights, err = h.Engine.Generate(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to generate insights", err)
			return
		}
		if !injected {
			h.insightCache.Put("insights", insights)
		}
	}

	ids := make([]string, len(insights))
	for i, insight := range insights {
		ids[i] = insight.ID
	}
	states, err := h.Store.InsightStates(r.Context(), ids)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load insight state", err)
		return
	}

	dtos := []InsightDTO{}
	for _, insight := range insights {
		state := states[insight.ID]
		if state.Dismissed {
			continue
		}
		dtos = append(dtos, toInsightDTO(insight, state.Read))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MarkInsightRead flags an insight as read.
func (h *Handler) MarkInsightRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.MarkRead(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to mark read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DismissInsight suppresses an insight from future responses.
func (h *Handler) DismissInsight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.MarkDismissed(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to dismiss", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMetrics returns the scalar performance summary.
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	now, _, err := referenceTime(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid now (use RFC3339)", err)
		return
	}

	today := calendar.DateOf(now)
	entries30, err := h.Store.ListEntries(r.Context(), today.AddDays(-(insightWindowDays - 1)))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load entries", err)
		return
	}

	metrics, err := analytics.ComputeMetrics(entries30, h.MonthlyGoal, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute metrics", err)
		return
	}

	writeJSON(w, http.StatusOK, MetricsDTO{
		DailyAverage:               metrics.DailyAverage,
		WeeklyTrendPercent:         metrics.WeeklyTrendPercent,
		MonthlyGoalProgressPercent: metrics.MonthlyGoalProgressPercent,
		StreakDays:                 metrics.StreakDays,
		TopPerformingAccountName:   metrics.TopPerformingAccountName,
		EfficiencyScore:            metrics.EfficiencyScore,
	})
}

// GetMilestones reports the next milestone and any crossed within the
// recent window.
func (h *Handler) GetMilestones(w http.ResponseWriter, r *http.Request) {
	now, _, err := referenceTime(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid now (use RFC3339)", err)
		return
	}

	entries, err := h.Store.ListEntries(r.Context(), calendar.Date{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load entries", err)
		return
	}

	total := ledger.TotalPoints(entries)
	crossed := analytics.MilestonesInWindow(entries, now.Add(-milestoneWindow), analytics.DefaultLadder)
	if crossed == nil {
		crossed = []int{}
	}

	writeJSON(w, http.StatusOK, MilestonesDTO{
		TotalPoints:     total,
		NextMilestone:   analytics.NextMilestone(total, analytics.DefaultLadder),
		RecentlyCrossed: crossed,
	})
}

// =============================================================================
// DTO CONVERSION + RESPONSE HELPERS
// =============================================================================

func toAccountDTO(a ledger.Account) AccountDTO {
	return AccountDTO{
		ID:                   string(a.ID),
		Name:                 a.Name,
		TotalPoints:          a.TotalPoints,
		CurrentBalance:       a.CurrentBalance,
		PendingWithdrawals:   a.PendingWithdrawals.String(),
		CompletedWithdrawals: a.CompletedWithdrawals.String(),
	}
}

func toEntryDTO(e ledger.Entry) EntryDTO {
	return EntryDTO{
		ID:          string(e.ID),
		AccountID:   string(e.AccountID),
		AccountName: e.AccountName,
		Date:        e.Date.String(),
		Points:      e.Points,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

func toWithdrawalDTO(wd ledger.Withdrawal) WithdrawalDTO {
	dto := WithdrawalDTO{
		ID:          string(wd.ID),
		AccountID:   string(wd.AccountID),
		AccountName: wd.AccountName,
		Date:        wd.Date.String(),
		Amount:      wd.Amount.StringFixed(2),
		Status:      string(wd.Status),
	}
	if wd.CompletedAt != nil {
		dto.CompletedAt = wd.CompletedAt.Format(time.RFC3339)
	}
	return dto
}

func toInsightDTO(insight analytics.Insight, read bool) InsightDTO {
	dto := InsightDTO{
		ID:          insight.ID,
		Type:        string(insight.Type),
		Title:       insight.Title,
		Description: insight.Description,
		Priority:    insight.Priority.String(),
		Impact:      insight.Impact,
		Read:        read,
	}
	if insight.Action != nil {
		dto.Action = &ActionDTO{Label: insight.Action.Label, URL: insight.Action.URL}
	}
	return dto
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
