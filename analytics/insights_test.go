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

var insightNow = time.Date(2024, time.March, 20, 18, 0, 0, 0, time.UTC)

func insightEntry(accountID string, d calendar.Date, points int) ledger.Entry {
	return ledger.Entry{
		ID:          ledger.EntryID(accountID + "-" + d.String()),
		AccountID:   ledger.AccountID(accountID),
		AccountName: accountID,
		Date:        d,
		Points:      points,
		CreatedAt:   d.Time.Add(12 * time.Hour),
	}
}

// =============================================================================
// ENGINE
// =============================================================================

func TestGenerate_RequiresReferenceTime(t *testing.T) {
	engine := analytics.NewEngine()

	_, err := engine.Generate(&analytics.Context{})
	assert.ErrorIs(t, err, ledger.ErrNoReferenceTime)

	_, err = engine.Generate(nil)
	assert.ErrorIs(t, err, ledger.ErrNoReferenceTime)
}

func TestGenerate_EmptyLedgerProducesNoInsights(t *testing.T) {
	engine := analytics.NewEngine()

	insights, err := engine.Generate(&analytics.Context{Now: insightNow})
	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestGenerate_RanksByPriorityStable(t *testing.T) {
	// GIVEN: Stub rules emitting known priorities in a known order
	stub := func(id string, p analytics.Priority) analytics.Rule {
		return analytics.Rule{
			Name: id,
			Evaluate: func(*analytics.Context) []analytics.Insight {
				return []analytics.Insight{{ID: id, Priority: p}}
			},
		}
	}
	engine := &analytics.Engine{
		Rules: []analytics.Rule{
			stub("med-1", analytics.PriorityMedium),
			stub("low-1", analytics.PriorityLow),
			stub("high-1", analytics.PriorityHigh),
			stub("med-2", analytics.PriorityMedium),
		},
		MaxInsights: 8,
	}

	// WHEN: Insights are generated
	insights, err := engine.Generate(&analytics.Context{Now: insightNow})
	require.NoError(t, err)

	// THEN: High first, then the mediums in rule-table order, then low
	require.Len(t, insights, 4)
	assert.Equal(t, "high-1", insights[0].ID)
	assert.Equal(t, "med-1", insights[1].ID)
	assert.Equal(t, "med-2", insights[2].ID)
	assert.Equal(t, "low-1", insights[3].ID)
}

func TestGenerate_TruncatesToMaxInsights(t *testing.T) {
	fanout := analytics.Rule{
		Name: "fanout",
		Evaluate: func(*analytics.Context) []analytics.Insight {
			out := make([]analytics.Insight, 12)
			for i := range out {
				out[i] = analytics.Insight{Priority: analytics.PriorityLow}
			}
			return out
		},
	}
	engine := &analytics.Engine{Rules: []analytics.Rule{fanout}, MaxInsights: 8}

	insights, err := engine.Generate(&analytics.Context{Now: insightNow})
	require.NoError(t, err)
	assert.Len(t, insights, 8)
}

func TestGenerate_Deterministic(t *testing.T) {
	// GIVEN: A context that triggers several production rules
	engine := analytics.NewEngine()
	ctx := &analytics.Context{
		Now:       insightNow,
		Entries30: metricsFixture(),
		Entries7:  ledger.EntriesInWindow(metricsFixture(), date(2024, time.March, 14), date(2024, time.March, 20)),
		Pending: []ledger.Withdrawal{{
			ID:          "w-old",
			AccountID:   "acct-alpha",
			AccountName: "Alpha",
			Date:        date(2024, time.January, 15),
			Amount:      decimal.NewFromInt(25),
			Status:      ledger.WithdrawalPending,
		}},
	}

	// THEN: Repeated invocations agree exactly
	first, err := engine.Generate(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := engine.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// =============================================================================
// INDIVIDUAL RULES
// =============================================================================

func TestWithdrawalDelayRule(t *testing.T) {
	// GIVEN: One withdrawal pending 65 calendar days, one pending 5
	stale := ledger.Withdrawal{
		ID: "w-stale", AccountID: "acct-alpha", AccountName: "Alpha",
		Date:   date(2024, time.January, 15),
		Amount: decimal.RequireFromString("25.50"),
		Status: ledger.WithdrawalPending,
	}
	fresh := ledger.Withdrawal{
		ID: "w-fresh", AccountID: "acct-alpha", AccountName: "Alpha",
		Date:   date(2024, time.March, 15),
		Amount: decimal.NewFromInt(10),
		Status: ledger.WithdrawalPending,
	}

	engine := &analytics.Engine{
		Rules:       []analytics.Rule{analytics.DefaultRules()[0]},
		MaxInsights: 8,
	}
	insights, err := engine.Generate(&analytics.Context{
		Now:     insightNow,
		Pending: []ledger.Withdrawal{stale, fresh},
	})
	require.NoError(t, err)

	// THEN: Only the stale one is flagged, with a stable per-withdrawal ID
	require.Len(t, insights, 1)
	assert.Equal(t, "withdrawal-delay-w-stale", insights[0].ID)
	assert.Equal(t, analytics.InsightWarning, insights[0].Type)
	assert.Equal(t, analytics.PriorityHigh, insights[0].Priority)
	assert.Contains(t, insights[0].Impact, "25.50")
	require.NotNil(t, insights[0].Action)
	assert.Equal(t, "/withdrawals/w-stale", insights[0].Action.URL)
}

func TestDiversificationRule(t *testing.T) {
	rule := analytics.DefaultRules()[1]

	// One active account in 30 days triggers the tip
	ctx := &analytics.Context{
		Now:       insightNow,
		Entries30: []ledger.Entry{insightEntry("acct-alpha", date(2024, time.March, 19), 100)},
	}
	insights := rule.Evaluate(ctx)
	require.Len(t, insights, 1)
	assert.Equal(t, "diversify-accounts", insights[0].ID)
	assert.Equal(t, analytics.InsightTip, insights[0].Type)

	// Three active accounts does not
	ctx.Entries30 = append(ctx.Entries30,
		insightEntry("acct-beta", date(2024, time.March, 19), 100),
		insightEntry("acct-gamma", date(2024, time.March, 19), 100),
	)
	assert.Empty(t, rule.Evaluate(ctx))

	// A fully empty window stays silent rather than scolding a new user
	assert.Empty(t, rule.Evaluate(&analytics.Context{Now: insightNow}))
}

func TestStreakRule(t *testing.T) {
	rule := analytics.DefaultRules()[2]

	// GIVEN: A 7-day run ending today
	var entries []ledger.Entry
	for day := 14; day <= 20; day++ {
		entries = append(entries, insightEntry("acct-alpha", date(2024, time.March, day), 50))
	}

	insights := rule.Evaluate(&analytics.Context{Now: insightNow, Entries30: entries})
	require.Len(t, insights, 1)
	assert.Equal(t, "streak-7", insights[0].ID)
	assert.Equal(t, analytics.InsightAchievement, insights[0].Type)

	// A 6-day run falls short of the threshold
	insights = rule.Evaluate(&analytics.Context{Now: insightNow, Entries30: entries[1:]})
	assert.Empty(t, insights)
}

func TestWeekendGapRule(t *testing.T) {
	rule := analytics.DefaultRules()[3]

	// GIVEN: March 16-17 2024 are the weekend in the trailing week
	entries := []ledger.Entry{
		insightEntry("acct-alpha", date(2024, time.March, 15), 300), // Friday
		insightEntry("acct-alpha", date(2024, time.March, 16), 50),  // Saturday
		insightEntry("acct-alpha", date(2024, time.March, 18), 300), // Monday
	}

	insights := rule.Evaluate(&analytics.Context{Now: insightNow, Entries7: entries})
	require.Len(t, insights, 1)
	assert.Equal(t, "weekend-gap", insights[0].ID)
	assert.Equal(t, analytics.PriorityLow, insights[0].Priority)

	// No weekend entries at all: nothing to compare against
	insights = rule.Evaluate(&analytics.Context{Now: insightNow, Entries7: entries[:1]})
	assert.Empty(t, insights)
}

func TestWithdrawalReadyRule(t *testing.T) {
	rule := analytics.DefaultRules()[4]

	// GIVEN: 3000 points earned, $2 pending (200 points held back)
	ctx := &analytics.Context{
		Now:       insightNow,
		Entries30: []ledger.Entry{insightEntry("acct-alpha", date(2024, time.March, 19), 3000)},
		Accounts: []ledger.Account{{
			ID: "acct-alpha", Name: "Alpha",
			PendingWithdrawals: decimal.NewFromInt(2),
		}},
	}

	insights := rule.Evaluate(ctx)
	require.Len(t, insights, 1)
	assert.Equal(t, "withdrawal-ready-acct-alpha", insights[0].ID)
	assert.Contains(t, insights[0].Description, "2800 points")

	// A large pending withdrawal eats the available balance
	ctx.Accounts[0].PendingWithdrawals = decimal.NewFromInt(10)
	assert.Empty(t, rule.Evaluate(ctx))
}

func TestLowActivityRule(t *testing.T) {
	rule := analytics.DefaultRules()[5]

	// GIVEN: Month-long history but only one active day this week
	ctx := &analytics.Context{
		Now:       insightNow,
		Entries30: []ledger.Entry{insightEntry("acct-alpha", date(2024, time.March, 1), 100)},
		Entries7:  []ledger.Entry{insightEntry("acct-alpha", date(2024, time.March, 18), 100)},
	}

	insights := rule.Evaluate(ctx)
	require.Len(t, insights, 1)
	assert.Equal(t, "low-activity", insights[0].ID)

	// Silent with no history at all
	assert.Empty(t, rule.Evaluate(&analytics.Context{Now: insightNow}))
}

func TestPeakHourRule(t *testing.T) {
	rule := analytics.DefaultRules()[6]

	// GIVEN: 12 entries across three hours, 9 PM dominating
	hourEntry := func(i, hour, points int) ledger.Entry {
		d := date(2024, time.March, 1).AddDays(i)
		return ledger.Entry{
			ID:        ledger.EntryID(d.String()),
			AccountID: "acct-alpha",
			Date:      d,
			Points:    points,
			CreatedAt: d.Time.Add(time.Duration(hour) * time.Hour),
		}
	}
	var entries []ledger.Entry
	for i := 0; i < 8; i++ {
		entries = append(entries, hourEntry(i, 21, 200))
	}
	entries = append(entries,
		hourEntry(8, 9, 50), hourEntry(9, 9, 50),
		hourEntry(10, 14, 50), hourEntry(11, 14, 50),
	)

	insights := rule.Evaluate(&analytics.Context{Now: insightNow, Entries30: entries})
	require.Len(t, insights, 1)
	assert.Equal(t, "peak-hour-21", insights[0].ID)
	assert.Contains(t, insights[0].Title, "9 PM")

	// Too few entries to call a pattern
	insights = rule.Evaluate(&analytics.Context{Now: insightNow, Entries30: entries[:6]})
	assert.Empty(t, insights)
}
