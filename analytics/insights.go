/*
insights.go - Rule-based insight generation

PURPOSE:
  Evaluates a fixed table of independent heuristic rules against the
  aggregated ledger and returns a ranked, truncated list of insights
  (opportunities, warnings, achievements, tips).

RULE TABLE:
  Each rule is a (name, evaluate) pair. Evaluate is pure: it reads the
  Context and returns zero or more insights. Rules never see each
  other's output, so they can be added, removed, and tested in
  isolation.

RANKING:
  High > Medium > Low, stable within a priority level, truncated to
  MaxInsights. Insight IDs are derived from the triggering entity so
  callers can deduplicate or suppress across invocations.
*/
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/pulse/earnings-engine/calendar"
	"github.com/pulse/earnings-engine/ledger"
)

// =============================================================================
// INSIGHT TYPES
// =============================================================================

type InsightType string

const (
	InsightOpportunity InsightType = "opportunity"
	InsightWarning     InsightType = "warning"
	InsightAchievement InsightType = "achievement"
	InsightTip         InsightType = "tip"
)

type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Action is an optional call-to-action attached to an insight.
type Action struct {
	Label string
	URL   string
}

// Insight is one observation about the ledger, produced fresh per
// invocation. ID is stable across invocations for the same trigger.
type Insight struct {
	ID          string
	Type        InsightType
	Title       string
	Description string
	Action      *Action
	Priority    Priority
	Impact      string
}

// =============================================================================
// CONTEXT - Everything a rule may read
// =============================================================================

// Context bundles the pre-fetched inputs for one generation pass. The
// caller performs all I/O before the engine runs.
type Context struct {
	Now       time.Time
	Entries30 []ledger.Entry
	Entries7  []ledger.Entry
	Pending   []ledger.Withdrawal
	Accounts  []ledger.Account
}

func (c *Context) validate() error {
	if c == nil || c.Now.IsZero() {
		return ledger.ErrNoReferenceTime
	}
	return nil
}

// =============================================================================
// RULE THRESHOLDS
// =============================================================================

const (
	// Pending withdrawals waiting longer than this (approximate
	// business days) are flagged as delayed.
	DelayedWithdrawalThreshold = 15

	// Fewer active accounts than this earns a diversification tip.
	MinDiversifiedAccounts = 3

	// Streaks at least this long are worth celebrating.
	StreakAchievementDays = 7

	// Weekday average must beat the weekend average by this factor.
	WeekendGapFactor = 1.3

	// Points available for withdrawal before suggesting one.
	WithdrawalReadyPoints = 2500

	// Fewer active days than this in the last week is low activity.
	LowActivityDays = 3

	// Peak-hour analysis needs this many entries and distinct hours.
	PeakHourMinEntries = 10
	PeakHourMinHours   = 3
	PeakHourFactor     = 1.5
)

// =============================================================================
// RULE ENGINE
// =============================================================================

// Rule is one independent heuristic. Evaluate is pure and returns zero
// or more insights.
type Rule struct {
	Name     string
	Evaluate func(*Context) []Insight
}

// Engine evaluates a rule table and ranks the combined output.
type Engine struct {
	Rules       []Rule
	MaxInsights int
}

// NewEngine returns an engine with the default rule table and a cap of
// eight insights.
func NewEngine() *Engine {
	return &Engine{Rules: DefaultRules(), MaxInsights: 8}
}

// Generate runs every rule, then sorts by priority descending (stable
// within a level) and truncates. Identical inputs and an identical Now
// always produce identical output.
func (e *Engine) Generate(ctx *Context) ([]Insight, error) {
	if err := ctx.validate(); err != nil {
		return nil, err
	}

	insights := []Insight{}
	for _, rule := range e.Rules {
		insights = append(insights, rule.Evaluate(ctx)...)
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Priority > insights[j].Priority
	})

	if e.MaxInsights > 0 && len(insights) > e.MaxInsights {
		insights = insights[:e.MaxInsights]
	}
	return insights, nil
}

// DefaultRules is the production rule table.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "withdrawal_delay", Evaluate: withdrawalDelayRule},
		{Name: "account_diversification", Evaluate: diversificationRule},
		{Name: "streak_achievement", Evaluate: streakRule},
		{Name: "weekend_gap", Evaluate: weekendGapRule},
		{Name: "withdrawal_ready", Evaluate: withdrawalReadyRule},
		{Name: "low_activity", Evaluate: lowActivityRule},
		{Name: "peak_hour", Evaluate: peakHourRule},
	}
}

// =============================================================================
// RULES
// =============================================================================

// withdrawalDelayRule flags every pending withdrawal waiting longer
// than the approximate business-day threshold.
func withdrawalDelayRule(ctx *Context) []Insight {
	today := calendar.DateOf(ctx.Now)
	var out []Insight
	for _, w := range ledger.PendingWithdrawals(ctx.Pending) {
		calendarDays := w.Date.DaysBetween(today)
		waiting := ApproximateBusinessDaysWaiting(calendarDays)
		if waiting <= DelayedWithdrawalThreshold {
			continue
		}
		out = append(out, Insight{
			ID:       fmt.Sprintf("withdrawal-delay-%s", w.ID),
			Type:     InsightWarning,
			Priority: PriorityHigh,
			Title:    fmt.Sprintf("Withdrawal from %s is delayed", w.AccountName),
			Description: fmt.Sprintf(
				"Your $%s withdrawal has been pending for about %d business days, past the usual processing window.",
				w.Amount.StringFixed(2), waiting),
			Action: &Action{Label: "Check withdrawal status", URL: fmt.Sprintf("/withdrawals/%s", w.ID)},
			Impact: fmt.Sprintf("$%s at risk", w.Amount.StringFixed(2)),
		})
	}
	return out
}

// diversificationRule suggests adding survey accounts when fewer than
// three earned anything in the last 30 days.
func diversificationRule(ctx *Context) []Insight {
	if len(ctx.Entries30) == 0 {
		return nil
	}
	active := make(map[ledger.AccountID]bool)
	for _, e := range ctx.Entries30 {
		if e.Valid() {
			active[e.AccountID] = true
		}
	}
	if len(active) >= MinDiversifiedAccounts {
		return nil
	}
	return []Insight{{
		ID:       "diversify-accounts",
		Type:     InsightTip,
		Priority: PriorityMedium,
		Title:    "Diversify your survey accounts",
		Description: fmt.Sprintf(
			"Only %d account(s) earned points in the last 30 days. Spreading across %d+ platforms smooths out slow weeks.",
			len(active), MinDiversifiedAccounts),
		Action: &Action{Label: "Browse platforms", URL: "/accounts/new"},
		Impact: "More consistent earnings",
	}}
}

// streakRule celebrates an unbroken earning run ending today.
func streakRule(ctx *Context) []Insight {
	streak := CurrentStreak(ledger.DailyPointTotals(ctx.Entries30), calendar.DateOf(ctx.Now), DefaultStreakLookback)
	if streak < StreakAchievementDays {
		return nil
	}
	return []Insight{{
		ID:          fmt.Sprintf("streak-%d", streak),
		Type:        InsightAchievement,
		Priority:    PriorityMedium,
		Title:       fmt.Sprintf("%d-day earning streak!", streak),
		Description: fmt.Sprintf("You've earned points %d days in a row. Keep it going.", streak),
		Impact:      "Consistency compounds",
	}}
}

// weekendGapRule spots a big weekday/weekend earning gap over the last
// seven days.
func weekendGapRule(ctx *Context) []Insight {
	var weekendPoints, weekendCount, weekdayPoints, weekdayCount int
	for _, e := range ctx.Entries7 {
		if !e.Valid() {
			continue
		}
		if e.Date.IsWeekend() {
			weekendPoints += e.Points
			weekendCount++
		} else {
			weekdayPoints += e.Points
			weekdayCount++
		}
	}
	if weekendCount == 0 || weekdayCount == 0 {
		return nil
	}

	avgWeekend := float64(weekendPoints) / float64(weekendCount)
	avgWeekday := float64(weekdayPoints) / float64(weekdayCount)
	if avgWeekday <= avgWeekend*WeekendGapFactor {
		return nil
	}

	gapPoints := int(avgWeekday-avgWeekend) * 2
	return []Insight{{
		ID:       "weekend-gap",
		Type:     InsightOpportunity,
		Priority: PriorityLow,
		Title:    "Weekends are underperforming",
		Description: fmt.Sprintf(
			"Your weekday entries average %.0f points but weekends only %.0f. A couple of weekend sessions would close the gap.",
			avgWeekday, avgWeekend),
		Impact: fmt.Sprintf("Up to $%s more per weekend", ledger.PointsToDollars(gapPoints).StringFixed(2)),
	}}
}

// withdrawalReadyRule flags accounts whose 30-day earnings minus
// pending withdrawals leave a cash-out-worthy balance.
func withdrawalReadyRule(ctx *Context) []Insight {
	earned := make(map[ledger.AccountID]int)
	for _, e := range ctx.Entries30 {
		if e.Valid() {
			earned[e.AccountID] += e.Points
		}
	}

	var out []Insight
	for _, account := range ctx.Accounts {
		available := earned[account.ID] - ledger.DollarsToPoints(account.PendingWithdrawals)
		if available < WithdrawalReadyPoints {
			continue
		}
		out = append(out, Insight{
			ID:       fmt.Sprintf("withdrawal-ready-%s", account.ID),
			Type:     InsightOpportunity,
			Priority: PriorityMedium,
			Title:    fmt.Sprintf("%s is ready for a withdrawal", account.Name),
			Description: fmt.Sprintf(
				"You have %d points (about $%s) available on %s. Cashing out regularly reduces platform risk.",
				available, ledger.PointsToDollars(available).StringFixed(2), account.Name),
			Action: &Action{Label: "Request withdrawal", URL: fmt.Sprintf("/accounts/%s/withdraw", account.ID)},
			Impact: fmt.Sprintf("$%s available", ledger.PointsToDollars(available).StringFixed(2)),
		})
	}
	return out
}

// lowActivityRule nudges when the last week has fewer than three active
// days despite recent earnings history.
func lowActivityRule(ctx *Context) []Insight {
	if len(ctx.Entries30) == 0 {
		return nil
	}
	activeDays := ledger.ActiveDays(ctx.Entries7)
	if activeDays >= LowActivityDays {
		return nil
	}
	return []Insight{{
		ID:       "low-activity",
		Type:     InsightTip,
		Priority: PriorityMedium,
		Title:    "Activity dropped this week",
		Description: fmt.Sprintf(
			"You earned on %d day(s) in the last 7. Short daily sessions beat occasional long ones.",
			activeDays),
		Impact: "Protect your streak",
	}}
}

// peakHourRule finds a dominant hour-of-day in the last 30 days of
// recording timestamps.
func peakHourRule(ctx *Context) []Insight {
	valid := 0
	hourTotals := make(map[int]int)
	for _, e := range ctx.Entries30 {
		if !e.Valid() || e.CreatedAt.IsZero() {
			continue
		}
		valid++
		hourTotals[e.CreatedAt.Hour()] += e.Points
	}
	if valid < PeakHourMinEntries || len(hourTotals) < PeakHourMinHours {
		return nil
	}

	bestHour, bestTotal, otherSum := -1, -1, 0
	for hour := 0; hour < 24; hour++ {
		total, ok := hourTotals[hour]
		if !ok {
			continue
		}
		if total > bestTotal {
			bestHour, bestTotal = hour, total
		}
	}
	for hour, total := range hourTotals {
		if hour != bestHour {
			otherSum += total
		}
	}

	otherMean := float64(otherSum) / float64(len(hourTotals)-1)
	if float64(bestTotal) <= otherMean*PeakHourFactor {
		return nil
	}

	return []Insight{{
		ID:       fmt.Sprintf("peak-hour-%d", bestHour),
		Type:     InsightOpportunity,
		Priority: PriorityMedium,
		Title:    fmt.Sprintf("Your best hour is %s", formatHour12(bestHour)),
		Description: fmt.Sprintf(
			"Entries recorded around %s out-earn your other hours. Scheduling sessions then could lift your totals.",
			formatHour12(bestHour)),
		Impact: "Higher points per session",
	}}
}

// formatHour12 renders an hour-of-day in 12-hour clock format.
func formatHour12(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}
