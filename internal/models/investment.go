package models

import "time"

// InvestmentPlan mirrors a row of the investment_plans table.
type InvestmentPlan struct {
	PlanID          string `db:"plan_id"`
	Name            string `db:"name"`
	Currency        string `db:"currency"`
	MinAmount       int64  `db:"min_amount"`
	MaxAmount       int64  `db:"max_amount"`
	RateBps         int64  `db:"rate_bps"`
	PeriodHours     int    `db:"period_hours"`
	DurationPeriods int    `db:"duration_periods"`
	IsActive        bool   `db:"is_active"`
	AuditFields
}

// InvestmentPosition mirrors a row of the investment_positions table.
type InvestmentPosition struct {
	PositionID      string     `db:"position_id"`
	AccountID       string     `db:"account_id"`
	PlanID          string     `db:"plan_id"`
	RequestID       string     `db:"request_id"`
	PrincipalAmount int64      `db:"principal_amount"`
	Currency        string     `db:"currency"`
	RateBps         int64      `db:"rate_bps"`
	PeriodHours     int        `db:"period_hours"`
	DurationPeriods int        `db:"duration_periods"`
	StartedAt       time.Time  `db:"started_at"`
	Status          string     `db:"status"`
	AccruedReturn   int64      `db:"accrued_return"`
	PeriodsPaid     int        `db:"periods_paid"`
	LastAccruedAt   time.Time  `db:"last_accrued_at"`
	ClosedAt        *time.Time `db:"closed_at"`
	AuditFields
}
