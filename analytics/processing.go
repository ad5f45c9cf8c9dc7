package analytics

import (
	"sort"

	"github.com/pulse/earnings-engine/calendar"
	"github.com/pulse/earnings-engine/ledger"
)

// =============================================================================
// PROCESSING TIME CLASSIFICATION
// =============================================================================

// Bucket labels how long a withdrawal has been in flight.
type Bucket string

const (
	BucketFast        Bucket = "fast"         // <= 7 business days
	BucketNormal      Bucket = "normal"       // 8-15
	BucketSlow        Bucket = "slow"         // 16-25
	BucketVeryDelayed Bucket = "very_delayed" // > 25
)

// Expected processing ranges in business days. First-ever withdrawals
// go through extended verification.
const (
	FirstWithdrawalExpectedMin  = 25
	FirstWithdrawalExpectedMax  = 30
	RepeatWithdrawalExpectedMin = 12
	RepeatWithdrawalExpectedMax = 15
)

// Classification is the per-withdrawal processing-time result.
type Classification struct {
	ElapsedBusinessDays int
	Bucket              Bucket
	ExpectedMin         int
	ExpectedMax         int
}

// Overdue reports whether the withdrawal has exceeded the upper bound
// of its expected range.
func (c Classification) Overdue() bool {
	return c.ElapsedBusinessDays > c.ExpectedMax
}

// Classify labels a withdrawal's elapsed business days. Completed
// withdrawals measure request date to completion date; pending ones
// measure to the injected reference date.
func Classify(w ledger.Withdrawal, firstForAccount bool, reference calendar.Date) Classification {
	end := reference
	if w.CompletedAt != nil {
		end = calendar.DateOf(*w.CompletedAt)
	}
	elapsed := calendar.BusinessDaysBetween(w.Date, end)

	c := Classification{
		ElapsedBusinessDays: elapsed,
		Bucket:              bucketFor(elapsed),
		ExpectedMin:         RepeatWithdrawalExpectedMin,
		ExpectedMax:         RepeatWithdrawalExpectedMax,
	}
	if firstForAccount {
		c.ExpectedMin = FirstWithdrawalExpectedMin
		c.ExpectedMax = FirstWithdrawalExpectedMax
	}
	return c
}

func bucketFor(elapsed int) Bucket {
	switch {
	case elapsed <= 7:
		return BucketFast
	case elapsed <= 15:
		return BucketNormal
	case elapsed <= 25:
		return BucketSlow
	default:
		return BucketVeryDelayed
	}
}

// IsFirstForAccount reports whether w is the account's earliest
// withdrawal by request date. An account's only withdrawal is always
// first.
func IsFirstForAccount(w ledger.Withdrawal, allForAccount []ledger.Withdrawal) bool {
	var sorted []ledger.Withdrawal
	for _, candidate := range allForAccount {
		if candidate.AccountID == w.AccountID {
			sorted = append(sorted, candidate)
		}
	}
	if len(sorted) == 0 {
		return true
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted[0].ID == w.ID
}

// ApproximateBusinessDaysWaiting estimates business days from calendar
// days by scaling at 5/7 and rounding up. Cheaper than a true calendar
// walk and deliberately kept distinct from it: the withdrawal-delay
// insight threshold was tuned against this approximation.
func ApproximateBusinessDaysWaiting(calendarDays int) int {
	if calendarDays <= 0 {
		return 0
	}
	return (calendarDays*5 + 6) / 7
}
