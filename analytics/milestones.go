package analytics

import (
	"sort"
	"time"

	"github.com/pulse/earnings-engine/ledger"
)

// =============================================================================
// MILESTONE LADDER
// =============================================================================

// DefaultLadder is the fixed milestone threshold sequence. Strictly
// increasing; crossings are monotonic because the running total only
// grows.
var DefaultLadder = []int{1000, 5000, 10000, 25000, 50000, 100000, 250000, 500000, 1000000}

// CrossedMilestones replays entries in chronological order (ascending
// CreatedAt) against a running total beginning at startingTotal, and
// returns every ladder threshold m with previousTotal < m <= newTotal,
// deduplicated and ascending. Malformed entries are skipped.
func CrossedMilestones(orderedEntries []ledger.Entry, startingTotal int, ladder []int) []int {
	var crossed []int
	total := startingTotal
	for _, e := range orderedEntries {
		if !e.Valid() {
			continue
		}
		previous := total
		total += e.Points
		for _, m := range ladder {
			if previous < m && m <= total {
				crossed = append(crossed, m)
			}
		}
	}
	// Ladder order already yields ascending per entry; dedup across
	// entries is free because the total never decreases.
	return crossed
}

// MilestonesInWindow detects milestones crossed by entries recorded at
// or after windowStart. The starting total is the grand total of all
// entries minus the window's sum, so crossings land on the entry that
// actually pushed the total over.
func MilestonesInWindow(allEntries []ledger.Entry, windowStart time.Time, ladder []int) []int {
	var window []ledger.Entry
	windowSum := 0
	for _, e := range allEntries {
		if !e.Valid() {
			continue
		}
		if !e.CreatedAt.Before(windowStart) {
			window = append(window, e)
			windowSum += e.Points
		}
	}
	if len(window) == 0 {
		return nil
	}

	sort.SliceStable(window, func(i, j int) bool {
		return window[i].CreatedAt.Before(window[j].CreatedAt)
	})

	startingTotal := ledger.TotalPoints(allEntries) - windowSum
	return CrossedMilestones(window, startingTotal, ladder)
}

// NextMilestone returns the smallest ladder value above total. Past the
// top of the ladder it extrapolates to double the largest value.
func NextMilestone(total int, ladder []int) int {
	for _, m := range ladder {
		if m > total {
			return m
		}
	}
	if len(ladder) == 0 {
		return 0
	}
	return ladder[len(ladder)-1] * 2
}
