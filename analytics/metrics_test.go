package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulse/earnings-engine/analytics"
	"github.com/pulse/earnings-engine/calendar"
	"github.com/pulse/earnings-engine/ledger"
)

func metricEntry(accountID, accountName string, d calendar.Date, points int) ledger.Entry {
	return ledger.Entry{
		ID:          ledger.EntryID(accountID + "-" + d.String()),
		AccountID:   ledger.AccountID(accountID),
		AccountName: accountName,
		Date:        d,
		Points:      points,
		CreatedAt:   d.Time.Add(12 * time.Hour),
	}
}

// metricsFixture builds a 30-day window ending 2024-03-20:
// Alpha earns 100/day March 14-20 (700 points, a 7-day streak),
// Beta earned 100 on March 7 and March 10 (200 points).
func metricsFixture() []ledger.Entry {
	var entries []ledger.Entry
	for day := 14; day <= 20; day++ {
		entries = append(entries, metricEntry("acct-alpha", "Alpha", date(2024, time.March, day), 100))
	}
	entries = append(entries,
		metricEntry("acct-beta", "Beta", date(2024, time.March, 7), 100),
		metricEntry("acct-beta", "Beta", date(2024, time.March, 10), 100),
	)
	return entries
}

func TestComputeMetrics(t *testing.T) {
	// GIVEN: The fixture window and a 1500-point monthly goal
	reference := time.Date(2024, time.March, 20, 18, 0, 0, 0, time.UTC)

	// WHEN: Metrics are computed
	m, err := analytics.ComputeMetrics(metricsFixture(), 1500, reference)
	require.NoError(t, err)

	// THEN: 900 points over a fixed 30-day divisor
	assert.InDelta(t, 30.0, m.DailyAverage, 0.001)

	// This week (Mar 14-20) earned 700, last week (Mar 7-13) earned 200
	assert.InDelta(t, 250.0, m.WeeklyTrendPercent, 0.001)

	// All 900 points landed in March against a 1500 goal
	assert.InDelta(t, 60.0, m.MonthlyGoalProgressPercent, 0.001)

	// Unbroken run March 14-20
	assert.Equal(t, 7, m.StreakDays)

	// Alpha's 700 beats Beta's 200
	assert.Equal(t, "Alpha", m.TopPerformingAccountName)

	// round((100 consistency + 60 goal + 30 activity) / 3)
	assert.Equal(t, 63, m.EfficiencyScore)
}

func TestComputeMetrics_EmptyWindow(t *testing.T) {
	reference := time.Date(2024, time.March, 20, 18, 0, 0, 0, time.UTC)

	m, err := analytics.ComputeMetrics(nil, 1500, reference)
	require.NoError(t, err)

	assert.Zero(t, m.DailyAverage)
	assert.Zero(t, m.WeeklyTrendPercent)
	assert.Zero(t, m.MonthlyGoalProgressPercent)
	assert.Zero(t, m.StreakDays)
	assert.Empty(t, m.TopPerformingAccountName)
	assert.Zero(t, m.EfficiencyScore)
}

func TestComputeMetrics_ZeroTrendWhenPriorWeekEmpty(t *testing.T) {
	// GIVEN: Earnings only in the most recent 7 days
	reference := time.Date(2024, time.March, 20, 18, 0, 0, 0, time.UTC)
	entries := []ledger.Entry{
		metricEntry("acct-alpha", "Alpha", date(2024, time.March, 19), 500),
	}

	m, err := analytics.ComputeMetrics(entries, 0, reference)
	require.NoError(t, err)

	// No baseline means no trend, not a divide-by-zero spike
	assert.Zero(t, m.WeeklyTrendPercent)
	// A zero goal disables goal progress
	assert.Zero(t, m.MonthlyGoalProgressPercent)
}

func TestComputeMetrics_GoalScoreCapped(t *testing.T) {
	// GIVEN: Goal progress far beyond 100%
	reference := time.Date(2024, time.March, 20, 18, 0, 0, 0, time.UTC)
	entries := []ledger.Entry{
		metricEntry("acct-alpha", "Alpha", date(2024, time.March, 20), 5000),
	}

	m, err := analytics.ComputeMetrics(entries, 100, reference)
	require.NoError(t, err)

	// Progress reports the true 5000%, but the efficiency blend caps it:
	// round((min(1/7,1)*100 + 100 + min(1/30,1)*100) / 3)
	assert.InDelta(t, 5000.0, m.MonthlyGoalProgressPercent, 0.001)
	assert.Equal(t, 39, m.EfficiencyScore)
}

func TestComputeMetrics_RequiresReferenceTime(t *testing.T) {
	_, err := analytics.ComputeMetrics(metricsFixture(), 1500, time.Time{})
	assert.ErrorIs(t, err, ledger.ErrNoReferenceTime)
}
