/*
Package analytics derives higher-order signals from the earnings ledger:
current streaks, milestone crossings, withdrawal processing-time
classification, scalar performance metrics, and a ranked list of
heuristic insights.

Every computation here is a stateless batch pass: records in, results
out, with the reference "now" injected by the caller. Nothing reads the
wall clock and nothing mutates its inputs, so identical inputs always
produce identical output.
*/
package analytics

import (
	"github.com/pulse/earnings-engine/calendar"
)

// DefaultStreakLookback bounds the backward walk; a streak can never
// report longer than this even if the true run is.
const DefaultStreakLookback = 30

// CurrentStreak walks backward from reference one calendar day at a
// time, counting days with a nonzero total in dailyTotals, and stops at
// the first gap or after maxLookback days. A reference date with no
// entry yields 0. This is the current streak ending at reference, not
// the longest historical one.
func CurrentStreak(dailyTotals map[string]int, reference calendar.Date, maxLookback int) int {
	if reference.IsZero() {
		return 0
	}
	if maxLookback <= 0 {
		maxLookback = DefaultStreakLookback
	}

	streak := 0
	current := reference
	for i := 0; i < maxLookback; i++ {
		if dailyTotals[current.String()] <= 0 {
			break
		}
		streak++
		current = current.AddDays(-1)
	}
	return streak
}
