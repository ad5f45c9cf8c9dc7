package analytics

import (
	"math"
	"time"

	"github.com/pulse/earnings-engine/calendar"
	"github.com/pulse/earnings-engine/ledger"
)

// =============================================================================
// PERFORMANCE METRICS - Scalar summary of the last 30 days
// =============================================================================

// PerformanceMetrics is the scalar summary returned alongside insights.
type PerformanceMetrics struct {
	DailyAverage               float64
	WeeklyTrendPercent         float64
	MonthlyGoalProgressPercent float64
	StreakDays                 int
	TopPerformingAccountName   string
	EfficiencyScore            int
}

// ComputeMetrics summarizes the last 30 days of entries. monthlyGoal is
// the configured points target for a calendar month; zero or negative
// disables goal progress. The reference time must be injected.
func ComputeMetrics(entries30 []ledger.Entry, monthlyGoal int, reference time.Time) (PerformanceMetrics, error) {
	if reference.IsZero() {
		return PerformanceMetrics{}, ledger.ErrNoReferenceTime
	}

	today := calendar.DateOf(reference)
	daily := ledger.DailyPointTotals(entries30)

	m := PerformanceMetrics{
		DailyAverage: float64(ledger.TotalPoints(entries30)) / 30.0,
		StreakDays:   CurrentStreak(daily, today, DefaultStreakLookback),
	}

	// Weekly trend: this 7-day window against the one before it.
	thisWeek := ledger.TotalPoints(ledger.EntriesInWindow(entries30, today.AddDays(-6), today))
	lastWeek := ledger.TotalPoints(ledger.EntriesInWindow(entries30, today.AddDays(-13), today.AddDays(-7)))
	if lastWeek > 0 {
		m.WeeklyTrendPercent = float64(thisWeek-lastWeek) / float64(lastWeek) * 100
	}

	// Goal progress over the current calendar month.
	if monthlyGoal > 0 {
		monthStart := calendar.NewDate(today.Year(), today.Month(), 1)
		monthPoints := ledger.TotalPoints(ledger.EntriesInWindow(entries30, monthStart, today))
		m.MonthlyGoalProgressPercent = float64(monthPoints) / float64(monthlyGoal) * 100
	}

	m.TopPerformingAccountName = topAccountName(entries30)

	consistencyScore := math.Min(float64(m.StreakDays)/7.0*100, 100)
	activityScore := math.Min(float64(ledger.ActiveDays(entries30))/30.0*100, 100)
	goalScore := math.Min(m.MonthlyGoalProgressPercent, 100)
	m.EfficiencyScore = int(math.Round((consistencyScore + goalScore + activityScore) / 3))

	return m, nil
}

// topAccountName returns the account with the most points across the
// window, or "" when there are no entries. Ties resolve to whichever
// account hit the max first in input order, keeping output stable.
func topAccountName(entries []ledger.Entry) string {
	totals := make(map[ledger.AccountID]int)
	names := make(map[ledger.AccountID]string)
	var order []ledger.AccountID
	for _, e := range entries {
		if !e.Valid() {
			continue
		}
		if _, seen := totals[e.AccountID]; !seen {
			order = append(order, e.AccountID)
		}
		totals[e.AccountID] += e.Points
		names[e.AccountID] = e.AccountName
	}

	best := ""
	bestPoints := -1
	for _, id := range order {
		if totals[id] > bestPoints {
			bestPoints = totals[id]
			best = names[id]
		}
	}
	return best
}
