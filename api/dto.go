/*
dto.go - Data Transfer Objects for API requests and responses

These types decouple the internal record types from the JSON contract.
Dollar amounts are serialized as strings to avoid float drift; dates
are "YYYY-MM-DD".
*/
package api

// AccountDTO is an account summary in API responses.
type AccountDTO struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	TotalPoints          int    `json:"total_points"`
	CurrentBalance       int    `json:"current_balance"`
	PendingWithdrawals   string `json:"pending_withdrawals"`
	CompletedWithdrawals string `json:"completed_withdrawals"`
}

// CreateAccountRequest creates an account. ID is optional; one is
// generated when omitted.
type CreateAccountRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// EntryDTO is a point award in API responses.
type EntryDTO struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name,omitempty"`
	Date        string `json:"date"`
	Points      int    `json:"points"`
	CreatedAt   string `json:"created_at"`
}

// CreateEntryRequest records a point award. CreatedAt is optional and
// defaults to the request time.
type CreateEntryRequest struct {
	AccountID string `json:"account_id"`
	Date      string `json:"date"`
	Points    int    `json:"points"`
	CreatedAt string `json:"created_at,omitempty"`
}

// WithdrawalDTO is a withdrawal in API responses.
type WithdrawalDTO struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name,omitempty"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// CreateWithdrawalRequest opens a withdrawal request.
type CreateWithdrawalRequest struct {
	AccountID string `json:"account_id"`
	Date      string `json:"date"`
	Amount    string `json:"amount"`
}

// CompleteWithdrawalRequest completes a withdrawal. CompletedAt is
// optional and defaults to the request time.
type CompleteWithdrawalRequest struct {
	CompletedAt string `json:"completed_at,omitempty"`
}

// ClassificationDTO is the processing-time badge for one withdrawal.
type ClassificationDTO struct {
	WithdrawalID        string `json:"withdrawal_id"`
	ElapsedBusinessDays int    `json:"elapsed_business_days"`
	Bucket              string `json:"bucket"`
	ExpectedMin         int    `json:"expected_min"`
	ExpectedMax         int    `json:"expected_max"`
	FirstForAccount     bool   `json:"first_for_account"`
	Overdue             bool   `json:"overdue"`
}

// InsightDTO is one ranked insight, decorated with its read state.
type InsightDTO struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Action      *ActionDTO `json:"action,omitempty"`
	Priority    string     `json:"priority"`
	Impact      string     `json:"impact"`
	Read        bool       `json:"read"`
}

type ActionDTO struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// MetricsDTO is the scalar performance summary.
type MetricsDTO struct {
	DailyAverage               float64 `json:"daily_average"`
	WeeklyTrendPercent         float64 `json:"weekly_trend_percent"`
	MonthlyGoalProgressPercent float64 `json:"monthly_goal_progress_percent"`
	StreakDays                 int     `json:"streak_days"`
	TopPerformingAccountName   string  `json:"top_performing_account_name"`
	EfficiencyScore            int     `json:"efficiency_score"`
}

// MilestonesDTO reports recent crossings and the next target.
type MilestonesDTO struct {
	TotalPoints     int   `json:"total_points"`
	NextMilestone   int   `json:"next_milestone"`
	RecentlyCrossed []int `json:"recently_crossed"`
}

// LoadScenarioRequest loads a demo data set.
type LoadScenarioRequest struct {
	Name string `json:"name"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
