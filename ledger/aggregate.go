package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/pulse/earnings-engine/calendar"
)

// =============================================================================
// PERIOD - Bucketing granularity
// =============================================================================

type Period string

const (
	PeriodDay   Period = "day"   // key "2006-01-02"
	PeriodWeek  Period = "week"  // key "2006-01-02" of the Monday on or before
	PeriodMonth Period = "month" // key "2006-01"
)

// keyForDate derives the bucket key for a date. Week buckets use the
// ISO Monday-start convention.
func keyForDate(d calendar.Date, period Period) string {
	switch period {
	case PeriodWeek:
		return d.WeekStart().String()
	case PeriodMonth:
		return d.MonthKey()
	default:
		return d.String()
	}
}

// PeriodTotal is the entry aggregate for one bucket.
type PeriodTotal struct {
	Points int
	Count  int
}

// WithdrawalTotal is the completed-withdrawal aggregate for one bucket.
type WithdrawalTotal struct {
	Amount decimal.Decimal
	Count  int
}

// =============================================================================
// ENTRY AGGREGATION
// =============================================================================

// GroupEntries buckets entries by the period containing their earning
// date. Two entries on the same calendar day bucket together regardless
// of time-of-day. Malformed entries are skipped. Empty input yields an
// empty, non-nil map.
func GroupEntries(entries []Entry, period Period) map[string]PeriodTotal {
	buckets := make(map[string]PeriodTotal)
	for _, e := range entries {
		if !e.Valid() {
			continue
		}
		key := keyForDate(e.Date, period)
		total := buckets[key]
		total.Points += e.Points
		total.Count++
		buckets[key] = total
	}
	return buckets
}

// DailyPointTotals is GroupEntries at day granularity reduced to points
// only, the shape the streak detector consumes.
func DailyPointTotals(entries []Entry) map[string]int {
	totals := make(map[string]int)
	for key, t := range GroupEntries(entries, PeriodDay) {
		totals[key] = t.Points
	}
	return totals
}

// TotalPoints sums points across entries, skipping malformed records.
func TotalPoints(entries []Entry) int {
	sum := 0
	for _, e := range entries {
		if e.Valid() {
			sum += e.Points
		}
	}
	return sum
}

// ActiveDays counts distinct earning dates with at least one entry.
func ActiveDays(entries []Entry) int {
	return len(GroupEntries(entries, PeriodDay))
}

// EntriesInWindow filters entries to those dated within [from, to].
func EntriesInWindow(entries []Entry, from, to calendar.Date) []Entry {
	var out []Entry
	for _, e := range entries {
		if !e.Valid() {
			continue
		}
		if e.Date.AfterOrEqual(from) && e.Date.BeforeOrEqual(to) {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// WITHDRAWAL AGGREGATION
// =============================================================================

// GroupCompletedWithdrawals buckets completed withdrawals by the period
// containing their completion date. Pending withdrawals and completed
// records missing CompletedAt are skipped.
func GroupCompletedWithdrawals(withdrawals []Withdrawal, period Period) map[string]WithdrawalTotal {
	buckets := make(map[string]WithdrawalTotal)
	for _, w := range withdrawals {
		if !w.Valid() || w.Status != WithdrawalCompleted || w.CompletedAt == nil {
			continue
		}
		key := keyForDate(calendar.DateOf(*w.CompletedAt), period)
		total := buckets[key]
		total.Amount = total.Amount.Add(w.Amount)
		total.Count++
		buckets[key] = total
	}
	return buckets
}

// PendingWithdrawals filters to pending records, skipping malformed ones.
func PendingWithdrawals(withdrawals []Withdrawal) []Withdrawal {
	var out []Withdrawal
	for _, w := range withdrawals {
		if w.Valid() && w.Status == WithdrawalPending {
			out = append(out, w)
		}
	}
	return out
}
