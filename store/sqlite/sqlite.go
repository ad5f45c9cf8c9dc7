/*
Package sqlite provides the SQLite-backed persistence layer.

PURPOSE:
  Stores the raw ledger records (accounts, entries, withdrawals) plus
  the per-insight read/dismiss flags. The analytics engine itself never
  touches this package; handlers fetch records here and pass plain
  slices in.

KEY TABLES:
  accounts:      Survey platform accounts
  entries:       Daily point awards (immutable once written)
  withdrawals:   Cash-out requests; status flips pending -> completed
  insight_state: Read/dismissed flags keyed by stable insight ID

ACCOUNT SUMMARIES:
  Account rows store only identity. The summary projection (total
  points, pending/completed withdrawal dollars, current balance) is
  computed from the entries and withdrawals tables on read, so it can
  never drift out of sync.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers don't block each other.

MIGRATION:
  Schema is auto-migrated on New(). Use ":memory:" for tests.

SEE ALSO:
  - api/handlers.go: The only consumer
  - ledger/: The record types stored here
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/pulse/earnings-engine/calendar"
	"github.com/pulse/earnings-engine/ledger"
)

// Store implements persistence for all ledger records.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Survey platform accounts
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Daily point awards
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		date TEXT NOT NULL,
		points INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	);

	-- Hot path: window queries for the analytics pass
	CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date);
	CREATE INDEX IF NOT EXISTS idx_entries_account_date ON entries(account_id, date);

	-- Cash-out requests
	CREATE TABLE IF NOT EXISTS withdrawals (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		completed_at TEXT,
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	);

	CREATE INDEX IF NOT EXISTS idx_withdrawals_account ON withdrawals(account_id);
	CREATE INDEX IF NOT EXISTS idx_withdrawals_status ON withdrawals(status);

	-- Per-insight read/dismissed flags (insight IDs are stable)
	CREATE TABLE IF NOT EXISTS insight_state (
		insight_id TEXT PRIMARY KEY,
		is_read INTEGER NOT NULL DEFAULT 0,
		is_dismissed INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// AccountRecord is the stored account row. Summary fields live in
// ledger.Account and are computed on read.
type AccountRecord struct {
	ID        ledger.AccountID
	Name      string
	CreatedAt time.Time
}

// SaveAccount inserts or replaces an account row.
func (s *Store) SaveAccount(ctx context.Context, a AccountRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO accounts (id, name, created_at) VALUES (?, ?, ?)`,
		string(a.ID), a.Name, a.CreatedAt.Format(time.RFC3339))
	return err
}

// GetAccount returns one account summary, or ErrAccountNotFound.
func (s *Store) GetAccount(ctx context.Context, id ledger.AccountID) (ledger.Account, error) {
	summaries, err := s.AccountSummaries(ctx)
	if err != nil {
		return ledger.Account{}, err
	}
	for _, a := range summaries {
		if a.ID == id {
			return a, nil
		}
	}
	return ledger.Account{}, ledger.ErrAccountNotFound
}

// AccountSummaries returns every account with its computed projection:
// lifetime points, pending/completed withdrawal dollars, and the
// current balance (points earned minus points withdrawn or reserved).
func (s *Store) AccountSummaries(ctx context.Context) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, COALESCE(SUM(e.points), 0)
		FROM accounts a
		LEFT JOIN entries e ON e.account_id = a.id
		GROUP BY a.id, a.name
		ORDER BY a.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var a ledger.Account
		var id string
		if err := rows.Scan(&id, &a.Name, &a.TotalPoints); err != nil {
			return nil, err
		}
		a.ID = ledger.AccountID(id)
		a.PendingWithdrawals = decimal.Zero
		a.CompletedWithdrawals = decimal.Zero
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	wrows, err := s.db.QueryContext(ctx,
		`SELECT account_id, status, amount FROM withdrawals`)
	if err != nil {
		return nil, err
	}
	defer wrows.Close()

	pending := make(map[ledger.AccountID]decimal.Decimal)
	completed := make(map[ledger.AccountID]decimal.Decimal)
	for wrows.Next() {
		var accountID, status, amountStr string
		if err := wrows.Scan(&accountID, &status, &amountStr); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			continue // malformed amount, skip the record
		}
		id := ledger.AccountID(accountID)
		if status == string(ledger.WithdrawalCompleted) {
			completed[id] = completed[id].Add(amount)
		} else {
			pending[id] = pending[id].Add(amount)
		}
	}
	if err := wrows.Err(); err != nil {
		return nil, err
	}

	for i := range accounts {
		id := accounts[i].ID
		accounts[i].PendingWithdrawals = pending[id]
		accounts[i].CompletedWithdrawals = completed[id]
		reserved := ledger.DollarsToPoints(pending[id].Add(completed[id]))
		accounts[i].CurrentBalance = accounts[i].TotalPoints - reserved
	}
	return accounts, nil
}

// =============================================================================
// ENTRIES
// =============================================================================

// SaveEntry inserts one point award.
func (s *Store) SaveEntry(ctx context.Context, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, account_id, date, points, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(e.ID), string(e.AccountID), e.Date.String(), e.Points, createdAt.Format(time.RFC3339))
	return err
}

// DeleteEntry removes one entry, or returns ErrEntryNotFound.
func (s *Store) DeleteEntry(ctx context.Context, id ledger.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ledger.ErrEntryNotFound
	}
	return nil
}

// ListEntries returns entries dated on or after since, joined with
// account names, ordered by recording time. A zero since returns all.
// Rows with unparseable dates are skipped, not fatal.
func (s *Store) ListEntries(ctx context.Context, since calendar.Date) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT e.id, e.account_id, COALESCE(a.name, ''), e.date, e.points, e.created_at
		FROM entries e
		LEFT JOIN accounts a ON a.id = e.account_id`
	args := []any{}
	if !since.IsZero() {
		query += ` WHERE e.date >= ?`
		args = append(args, since.String())
	}
	query += ` ORDER BY e.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		var id, accountID, dateStr, createdStr string
		if err := rows.Scan(&id, &accountID, &e.AccountName, &dateStr, &e.Points, &createdStr); err != nil {
			return nil, err
		}
		date, err := calendar.ParseDate(dateStr)
		if err != nil {
			continue
		}
		e.ID = ledger.EntryID(id)
		e.AccountID = ledger.AccountID(accountID)
		e.Date = date
		if created, err := time.Parse(time.RFC3339, createdStr); err == nil {
			e.CreatedAt = created
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// WITHDRAWALS
// =============================================================================

// SaveWithdrawal inserts a new withdrawal request.
func (s *Store) SaveWithdrawal(ctx context.Context, w ledger.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var completedAt any
	if w.CompletedAt != nil {
		completedAt = w.CompletedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO withdrawals (id, account_id, date, amount, status, completed_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(w.ID), string(w.AccountID), w.Date.String(), w.Amount.String(), string(w.Status), completedAt)
	return err
}

// GetWithdrawal returns one withdrawal, or ErrWithdrawalNotFound.
func (s *Store) GetWithdrawal(ctx context.Context, id ledger.WithdrawalID) (ledger.Withdrawal, error) {
	withdrawals, err := s.ListWithdrawals(ctx)
	if err != nil {
		return ledger.Withdrawal{}, err
	}
	for _, w := range withdrawals {
		if w.ID == id {
			return w, nil
		}
	}
	return ledger.Withdrawal{}, ledger.ErrWithdrawalNotFound
}

// ListWithdrawals returns every withdrawal joined with account names,
// ordered by request date.
func (s *Store) ListWithdrawals(ctx context.Context) ([]ledger.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.account_id, COALESCE(a.name, ''), w.date, w.amount, w.status, w.completed_at
		FROM withdrawals w
		LEFT JOIN accounts a ON a.id = w.account_id
		ORDER BY w.date ASC, w.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var withdrawals []ledger.Withdrawal
	for rows.Next() {
		var w ledger.Withdrawal
		var id, accountID, dateStr, amountStr, status string
		var completedStr sql.NullString
		if err := rows.Scan(&id, &accountID, &w.AccountName, &dateStr, &amountStr, &status, &completedStr); err != nil {
			return nil, err
		}
		date, err := calendar.ParseDate(dateStr)
		if err != nil {
			continue
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			continue
		}
		w.ID = ledger.WithdrawalID(id)
		w.AccountID = ledger.AccountID(accountID)
		w.Date = date
		w.Amount = amount
		w.Status = ledger.WithdrawalStatus(status)
		if completedStr.Valid {
			if completed, err := time.Parse(time.RFC3339, completedStr.String); err == nil {
				w.CompletedAt = &completed
			}
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, rows.Err()
}

// CompleteWithdrawal flips a pending withdrawal to completed at the
// given time. Completing twice returns ErrAlreadyCompleted.
func (s *Store) CompleteWithdrawal(ctx context.Context, id ledger.WithdrawalID, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM withdrawals WHERE id = ?`, string(id)).Scan(&status)
	if err == sql.ErrNoRows {
		return ledger.ErrWithdrawalNotFound
	}
	if err != nil {
		return err
	}
	if status == string(ledger.WithdrawalCompleted) {
		return ledger.ErrAlreadyCompleted
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE withdrawals SET status = ?, completed_at = ? WHERE id = ?`,
		string(ledger.WithdrawalCompleted), completedAt.UTC().Format(time.RFC3339), string(id))
	return err
}

// =============================================================================
// INSIGHT STATE
// =============================================================================

// InsightState is the read/dismissed pair for one insight ID.
type InsightState struct {
	Read      bool
	Dismissed bool
}

// InsightStates returns the state map for the given insight IDs.
// Unknown IDs are simply absent.
func (s *Store) InsightStates(ctx context.Context, ids []string) (map[string]InsightState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make(map[string]InsightState)
	for _, id := range ids {
		var read, dismissed int
		err := s.db.QueryRowContext(ctx,
			`SELECT is_read, is_dismissed FROM insight_state WHERE insight_id = ?`, id).
			Scan(&read, &dismissed)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		states[id] = InsightState{Read: read != 0, Dismissed: dismissed != 0}
	}
	return states, nil
}

// MarkRead flags an insight as read.
func (s *Store) MarkRead(ctx context.Context, insightID string) error {
	return s.upsertState(ctx, insightID, "is_read")
}

// MarkDismissed flags an insight as dismissed; dismissed insights are
// filtered out of future responses.
func (s *Store) MarkDismissed(ctx context.Context, insightID string) error {
	return s.upsertState(ctx, insightID, "is_dismissed")
}

func (s *Store) upsertState(ctx context.Context, insightID, column string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// column is one of two internal constants, never user input.
	query := fmt.Sprintf(`
		INSERT INTO insight_state (insight_id, %s, updated_at) VALUES (?, 1, ?)
		ON CONFLICT(insight_id) DO UPDATE SET %s = 1, updated_at = excluded.updated_at`,
		column, column)
	_, err := s.db.ExecContext(ctx, query, insightID, time.Now().UTC().Format(time.RFC3339))
	return err
}
