/*
Package ledger defines the survey earnings ledger records and their
time-series aggregation.

PURPOSE:
  This package contains the plain record types the analytics engine
  consumes (entries, withdrawals, account summaries) and the bucketing
  logic that turns a flat record list into per-day, per-week, and
  per-month totals.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entry: One day's point award on one account
  - Withdrawal: A cash-out request, pending or completed
  - Account: A read-only summary projection supplied by storage
  - Points/dollars conversion at a fixed rate

DESIGN PRINCIPLES:
  1. Immutability: Records are inputs to a computation pass, never
     mutated by analytics
  2. Precision: Dollar amounts use decimal.Decimal, never float64
  3. Day semantics: Grouping keys come from calendar dates, not
     timestamp equality

SEE ALSO:
  - aggregate.go: Period bucketing
  - analytics/: Streaks, milestones, classification, insights
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pulse/earnings-engine/calendar"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EntryID string
type AccountID string
type WithdrawalID string

// =============================================================================
// POINTS / DOLLARS
// =============================================================================

// PointsPerDollar is the fixed conversion rate: 100 points = $1.
const PointsPerDollar = 100

// PointsToDollars converts a point amount to its dollar value.
func PointsToDollars(points int) decimal.Decimal {
	return decimal.NewFromInt(int64(points)).Div(decimal.NewFromInt(PointsPerDollar))
}

// DollarsToPoints converts a dollar amount to points, truncating any
// fraction of a point.
func DollarsToPoints(dollars decimal.Decimal) int {
	return int(dollars.Mul(decimal.NewFromInt(PointsPerDollar)).IntPart())
}

// =============================================================================
// ENTRY - One day's point award
// =============================================================================

// Entry is a single point award. Date is the nominal earning date;
// CreatedAt is when it was recorded and may differ.
type Entry struct {
	ID          EntryID
	AccountID   AccountID
	AccountName string
	Date        calendar.Date
	Points      int
	CreatedAt   time.Time
}

// Valid reports whether the entry is well-formed enough to aggregate.
// Malformed entries are skipped, never fatal.
func (e Entry) Valid() bool {
	return !e.Date.IsZero() && e.Points >= 0
}

// =============================================================================
// WITHDRAWAL - Cash-out request
// =============================================================================

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalCompleted WithdrawalStatus = "completed"
)

// Withdrawal is a cash-out request. Date is the request date.
// CompletedAt is set only once Status is WithdrawalCompleted.
type Withdrawal struct {
	ID          WithdrawalID
	AccountID   AccountID
	AccountName string
	Date        calendar.Date
	Amount      decimal.Decimal
	Status      WithdrawalStatus
	CompletedAt *time.Time
}

// Valid reports whether the withdrawal is well-formed enough to use.
func (w Withdrawal) Valid() bool {
	return !w.Date.IsZero() && !w.Amount.IsNegative()
}

// =============================================================================
// ACCOUNT - Read-only summary projection
// =============================================================================

// Account summarizes one survey account. It is supplied by storage and
// never mutated by the analytics engine.
type Account struct {
	ID                   AccountID
	Name                 string
	TotalPoints          int
	CurrentBalance       int
	PendingWithdrawals   decimal.Decimal
	CompletedWithdrawals decimal.Decimal
}
