/*
Package calendar provides business-day arithmetic over a US holiday calendar.

PURPOSE:
  Withdrawal processing times are quoted in business days, so the engine
  needs to answer three questions precisely: is a given date a business
  day, how many business days lie between two dates, and what date is N
  business days after a start date.

KEY CONCEPTS:
  - Date: A calendar date at day granularity (no time-of-day component)
  - Holiday set: Fixed-date holidays plus floating "Nth weekday" rules,
    computed per year rather than stored
  - Business day: Not a weekend, not a holiday

DESIGN PRINCIPLES:
  1. Determinism: No function reads the wall clock; callers inject dates
  2. Boundedness: Day-by-day walks are capped so a corrupted far-future
     date cannot loop unbounded
  3. Day semantics: Two timestamps on the same calendar day are the same
     Date, regardless of time-of-day

SEE ALSO:
  - holidays.go: Holiday set construction and floating-rule helpers
  - businessdays.go: Counting and date arithmetic
*/
package calendar

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date
// =============================================================================

// Date is a calendar date with no time-of-day component. All Dates are
// normalized to midnight UTC so map keys and comparisons behave.
type Date struct {
	Time time.Time
}

// NewDate constructs a Date from year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.Time.AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.Time.AddDate(0, n, 0)) }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeekStart returns the Monday on or before d (ISO week, Monday-start).
func (d Date) WeekStart() Date {
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	return d.AddDays(-offset)
}

// String formats as "2006-01-02". Used directly as the daily bucket key.
func (d Date) String() string { return d.Time.Format("2006-01-02") }

// MonthKey formats as "2006-01", the monthly bucket key.
func (d Date) MonthKey() string { return d.Time.Format("2006-01") }

// DaysBetween returns the number of calendar days from d to other.
// Negative when other is before d.
func (d Date) DaysBetween(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}
