package calendar

import "time"

// =============================================================================
// HOLIDAY RULES - Fixed dates and floating "Nth weekday" rules
// =============================================================================

// Holiday is a single observed holiday in a specific year.
type Holiday struct {
	Name string
	Date Date
}

// NthWeekdayOfMonth returns the Nth occurrence of a weekday in a month
// (n is 1-based: n=3, Monday, January = MLK Day).
func NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) Date {
	first := NewDate(year, month, 1)
	offset := int(weekday) - int(first.Weekday())
	if offset < 0 {
		offset += 7
	}
	return first.AddDays(offset + (n-1)*7)
}

// LastWeekdayOfMonth returns the last occurrence of a weekday in a month
// (Monday, May = Memorial Day).
func LastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday) Date {
	last := NewDate(year, month+1, 1).AddDays(-1)
	offset := int(last.Weekday()) - int(weekday)
	if offset < 0 {
		offset += 7
	}
	return last.AddDays(-offset)
}

// HolidaysForYear computes the observed holiday set for one calendar year.
// Fixed dates plus the federal floating rules.
func HolidaysForYear(year int) []Holiday {
	return []Holiday{
		{Name: "New Year's Day", Date: NewDate(year, time.January, 1)},
		{Name: "MLK Day", Date: NthWeekdayOfMonth(year, time.January, time.Monday, 3)},
		{Name: "Presidents' Day", Date: NthWeekdayOfMonth(year, time.February, time.Monday, 3)},
		{Name: "Memorial Day", Date: LastWeekdayOfMonth(year, time.May, time.Monday)},
		{Name: "Juneteenth", Date: NewDate(year, time.June, 19)},
		{Name: "Independence Day", Date: NewDate(year, time.July, 4)},
		{Name: "Labor Day", Date: NthWeekdayOfMonth(year, time.September, time.Monday, 1)},
		{Name: "Columbus Day", Date: NthWeekdayOfMonth(year, time.October, time.Monday, 2)},
		{Name: "Veterans Day", Date: NewDate(year, time.November, 11)},
		{Name: "Thanksgiving", Date: NthWeekdayOfMonth(year, time.November, time.Thursday, 4)},
		{Name: "Christmas Day", Date: NewDate(year, time.December, 25)},
	}
}

// HolidaySet returns a lookup set covering all the given years.
// A range spanning a year boundary needs the union of both years.
func HolidaySet(years ...int) map[Date]string {
	set := make(map[Date]string)
	for _, year := range years {
		for _, h := range HolidaysForYear(year) {
			set[h.Date] = h.Name
		}
	}
	return set
}
