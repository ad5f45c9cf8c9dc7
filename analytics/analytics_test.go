package analytics_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulse/earnings-engine/analytics"
	"github.com/pulse/earnings-engine/calendar"
	"github.com/pulse/earnings-engine/ledger"
)

func date(year int, month time.Month, day int) calendar.Date {
	return calendar.NewDate(year, month, day)
}

// =============================================================================
// STREAK DETECTION
// =============================================================================

func TestCurrentStreak_UnbrokenRun(t *testing.T) {
	// GIVEN: Daily totals for March 1-5, nothing on March 6
	totals := map[string]int{
		"2024-03-01": 100, "2024-03-02": 50, "2024-03-03": 75,
		"2024-03-04": 20, "2024-03-05": 90,
	}

	// WHEN/THEN: Reference March 5 sees all five days
	assert.Equal(t, 5, analytics.CurrentStreak(totals, date(2024, time.March, 5), 30))

	// A reference date with no entry yields zero, even with history behind it
	assert.Equal(t, 0, analytics.CurrentStreak(totals, date(2024, time.March, 6), 30))
}

func TestCurrentStreak_StopsAtGap(t *testing.T) {
	totals := map[string]int{
		"2024-03-01": 10,
		// March 2 missing
		"2024-03-03": 10, "2024-03-04": 10, "2024-03-05": 10,
	}
	assert.Equal(t, 3, analytics.CurrentStreak(totals, date(2024, time.March, 5), 30))
}

func TestCurrentStreak_BoundedByLookback(t *testing.T) {
	// GIVEN: 40 consecutive active days
	totals := make(map[string]int)
	reference := date(2024, time.March, 31)
	for i := 0; i < 40; i++ {
		totals[reference.AddDays(-i).String()] = 10
	}

	// THEN: The streak never reports longer than the lookback window
	assert.Equal(t, 30, analytics.CurrentStreak(totals, reference, 30))
}

func TestCurrentStreak_EmptyTotals(t *testing.T) {
	assert.Equal(t, 0, analytics.CurrentStreak(map[string]int{}, date(2024, time.March, 5), 30))
	assert.Equal(t, 0, analytics.CurrentStreak(nil, date(2024, time.March, 5), 30))
}

// =============================================================================
// MILESTONES
// =============================================================================

func milestoneEntry(points int, createdAt time.Time) ledger.Entry {
	return ledger.Entry{
		ID:        ledger.EntryID(createdAt.Format(time.RFC3339)),
		AccountID: "a",
		Date:      calendar.DateOf(createdAt),
		Points:    points,
		CreatedAt: createdAt,
	}
}

func TestCrossedMilestones_ThresholdOnSecondEntry(t *testing.T) {
	// GIVEN: Starting total 900, entries +50 then +60
	// THEN: 900 -> 950 -> 1010 crosses 1000 on the second entry
	base := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	entries := []ledger.Entry{
		milestoneEntry(50, base),
		milestoneEntry(60, base.Add(time.Minute)),
	}

	crossed := analytics.CrossedMilestones(entries, 900, analytics.DefaultLadder)
	assert.Equal(t, []int{1000}, crossed)
}

func TestCrossedMilestones_MultipleAtOnce(t *testing.T) {
	// GIVEN: One entry spanning two thresholds
	base := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	entries := []ledger.Entry{milestoneEntry(6000, base)}

	crossed := analytics.CrossedMilestones(entries, 0, analytics.DefaultLadder)
	assert.Equal(t, []int{1000, 5000}, crossed)
}

func TestCrossedMilestones_NoneWhenBelowThreshold(t *testing.T) {
	base := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	crossed := analytics.CrossedMilestones([]ledger.Entry{milestoneEntry(50, base)}, 0, analytics.DefaultLadder)
	assert.Empty(t, crossed)
}

func TestMilestonesInWindow_StartsFromTotalOutsideWindow(t *testing.T) {
	// GIVEN: 950 points earned before the window, 100 inside it
	// THEN: The window replay starts at 950 and crosses 1000
	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	entries := []ledger.Entry{
		milestoneEntry(950, now.Add(-48*time.Hour)),
		milestoneEntry(100, now.Add(-30*time.Minute)),
	}

	crossed := analytics.MilestonesInWindow(entries, now.Add(-time.Hour), analytics.DefaultLadder)
	assert.Equal(t, []int{1000}, crossed)
}

func TestNextMilestone(t *testing.T) {
	assert.Equal(t, 1000, analytics.NextMilestone(0, analytics.DefaultLadder))
	assert.Equal(t, 5000, analytics.NextMilestone(1000, analytics.DefaultLadder))
	assert.Equal(t, 25000, analytics.NextMilestone(10001, analytics.DefaultLadder))
	// Past the top of the ladder: extrapolate to double the largest value
	assert.Equal(t, 2000000, analytics.NextMilestone(1500000, analytics.DefaultLadder))
}

// =============================================================================
// PROCESSING TIME CLASSIFICATION
// =============================================================================

func withdrawal(id, accountID string, requested calendar.Date) ledger.Withdrawal {
	return ledger.Withdrawal{
		ID:        ledger.WithdrawalID(id),
		AccountID: ledger.AccountID(accountID),
		Date:      requested,
		Amount:    decimal.NewFromInt(25),
		Status:    ledger.WithdrawalPending,
	}
}

func TestClassify_PendingMeasuresToReferenceDate(t *testing.T) {
	// GIVEN: Requested Monday July 1 2024, still pending on Monday July 8
	// (July 4 is a holiday, so 5 business days elapsed)
	w := withdrawal("w1", "a", date(2024, time.July, 1))

	c := analytics.Classify(w, false, date(2024, time.July, 8))

	assert.Equal(t, 5, c.ElapsedBusinessDays)
	assert.Equal(t, analytics.BucketFast, c.Bucket)
	assert.Equal(t, 12, c.ExpectedMin)
	assert.Equal(t, 15, c.ExpectedMax)
	assert.False(t, c.Overdue())
}

func TestClassify_CompletedMeasuresToCompletionDate(t *testing.T) {
	// GIVEN: Completed long ago; the reference date must not matter
	w := withdrawal("w1", "a", date(2024, time.January, 8))
	completed := time.Date(2024, time.February, 12, 9, 0, 0, 0, time.UTC)
	w.Status = ledger.WithdrawalCompleted
	w.CompletedAt = &completed

	c := analytics.Classify(w, false, date(2024, time.December, 31))

	// Jan 8 - Feb 12 2024: 26 weekdays minus MLK Day (Jan 15) = 25
	assert.Equal(t, 25, c.ElapsedBusinessDays)
	assert.Equal(t, analytics.BucketSlow, c.Bucket)
	assert.True(t, c.Overdue())
}

func TestClassify_FirstWithdrawalGetsExtendedRange(t *testing.T) {
	w := withdrawal("w1", "a", date(2024, time.March, 4))

	c := analytics.Classify(w, true, date(2024, time.March, 29))

	assert.Equal(t, 25, c.ExpectedMin)
	assert.Equal(t, 30, c.ExpectedMax)
	assert.False(t, c.Overdue())
}

func TestClassify_Buckets(t *testing.T) {
	// Walk realistic elapsed values through the bucket boundaries
	cases := []struct {
		businessDays int
		expected     analytics.Bucket
	}{
		{1, analytics.BucketFast},
		{7, analytics.BucketFast},
		{8, analytics.BucketNormal},
		{15, analytics.BucketNormal},
		{16, analytics.BucketSlow},
		{25, analytics.BucketSlow},
		{26, analytics.BucketVeryDelayed},
	}
	start := date(2024, time.March, 4) // Monday
	for _, tc := range cases {
		reference := calendar.AddBusinessDays(start, tc.businessDays)
		c := analytics.Classify(withdrawal("w", "a", start), false, reference)
		require.Equal(t, tc.businessDays, c.ElapsedBusinessDays)
		assert.Equal(t, tc.expected, c.Bucket, "business days %d", tc.businessDays)
	}
}

func TestIsFirstForAccount(t *testing.T) {
	// GIVEN: An account with three withdrawals
	w1 := withdrawal("w1", "a", date(2024, time.January, 10))
	w2 := withdrawal("w2", "a", date(2024, time.February, 10))
	w3 := withdrawal("w3", "a", date(2024, time.March, 10))
	other := withdrawal("w4", "b", date(2023, time.December, 1))
	all := []ledger.Withdrawal{w2, w3, w1, other}

	// THEN: Only the earliest by request date is first
	assert.True(t, analytics.IsFirstForAccount(w1, all))
	assert.False(t, analytics.IsFirstForAccount(w2, all))
	assert.False(t, analytics.IsFirstForAccount(w3, all))

	// An account with exactly one withdrawal always reports first
	assert.True(t, analytics.IsFirstForAccount(other, all))
}

func TestApproximateBusinessDaysWaiting(t *testing.T) {
	assert.Equal(t, 0, analytics.ApproximateBusinessDaysWaiting(0))
	assert.Equal(t, 1, analytics.ApproximateBusinessDaysWaiting(1))
	assert.Equal(t, 5, analytics.ApproximateBusinessDaysWaiting(7))
	assert.Equal(t, 15, analytics.ApproximateBusinessDaysWaiting(21))
	assert.Equal(t, 16, analytics.ApproximateBusinessDaysWaiting(22))
	assert.Equal(t, 22, analytics.ApproximateBusinessDaysWaiting(30))
}
