package calendar

// maxScanDays bounds every day-by-day walk. A corrupted far-future date
// degrades to a truncated count instead of an unbounded loop.
const maxScanDays = 3660

// IsBusinessDay reports whether d is neither a weekend nor a holiday.
func IsBusinessDay(d Date) bool {
	if d.IsWeekend() {
		return false
	}
	_, holiday := HolidaySet(d.Year())[d]
	return !holiday
}

// BusinessDaysBetween counts business days from start to end inclusive.
// Start is counted if it is itself a business day. Returns 0 when end is
// before start or either date is zero.
func BusinessDaysBetween(start, end Date) int {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}

	// Union of holiday sets for every year the range touches.
	years := make([]int, 0, end.Year()-start.Year()+1)
	for y := start.Year(); y <= end.Year(); y++ {
		years = append(years, y)
	}
	holidays := HolidaySet(years...)

	count := 0
	current := start
	for steps := 0; current.BeforeOrEqual(end) && steps < maxScanDays; steps++ {
		if !current.IsWeekend() {
			if _, holiday := holidays[current]; !holiday {
				count++
			}
		}
		current = current.AddDays(1)
	}
	return count
}

// AddBusinessDays steps forward one calendar day at a time until n
// business days have been counted, and returns the date reached. The
// start date itself is the first counted day when it is a business day,
// which keeps BusinessDaysBetween(d, AddBusinessDays(d, n)) == n.
// n <= 0 returns start unchanged.
func AddBusinessDays(start Date, n int) Date {
	if start.IsZero() || n <= 0 {
		return start
	}

	current := start
	counted := 0
	if IsBusinessDay(current) {
		counted = 1
	}
	for steps := 0; counted < n && steps < maxScanDays; steps++ {
		current = current.AddDays(1)
		if IsBusinessDay(current) {
			counted++
		}
	}
	return current
}
