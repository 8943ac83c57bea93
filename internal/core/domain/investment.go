package domain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
)

// InvestmentPlan describes a fixed-rate product that accounts can invest in.
type InvestmentPlan struct {
	PlanID          string   `json:"planID"`
	Name            string   `json:"name"`
	Currency        Currency `json:"currency"`
	MinAmount       int64    `json:"minAmount"`
	MaxAmount       int64    `json:"maxAmount"` // 0 means no upper bound
	RateBps         int64    `json:"rateBps"`   // return per period in basis points
	PeriodHours     int      `json:"periodHours"`
	DurationPeriods int      `json:"durationPeriods"`
	IsActive        bool     `json:"isActive"`
	AuditFields
}

// CheckAmount validates an investment amount against the plan bounds.
func (p *InvestmentPlan) CheckAmount(currency Currency, amount int64) error {
	if currency != p.Currency {
		return fmt.Errorf("%w: plan %s accepts %s, got %s", apperrors.ErrUnsupportedCurrency, p.PlanID, p.Currency, currency)
	}
	if amount < p.MinAmount {
		return fmt.Errorf("%w: minimum is %d", apperrors.ErrAmountOutOfBounds, p.MinAmount)
	}
	if p.MaxAmount > 0 && amount > p.MaxAmount {
		return fmt.Errorf("%w: maximum is %d", apperrors.ErrAmountOutOfBounds, p.MaxAmount)
	}
	return nil
}

func (p *InvestmentPlan) Period() time.Duration {
	return time.Duration(p.PeriodHours) * time.Hour
}

// PositionStatus is the lifecycle state of an InvestmentPosition.
type PositionStatus string

const (
	PositionRunning   PositionStatus = "running"
	PositionCompleted PositionStatus = "completed"
	PositionCancelled PositionStatus = "cancelled"
)

// InvestmentPosition is created when an investment request settles.
type InvestmentPosition struct {
	PositionID      string         `json:"positionID"`
	AccountID       string         `json:"accountID"`
	PlanID          string         `json:"planID"`
	RequestID       string         `json:"requestID"`
	PrincipalAmount int64          `json:"principalAmount"`
	Currency        Currency       `json:"currency"`
	RateBps         int64          `json:"rateBps"`
	PeriodHours     int            `json:"periodHours"`
	DurationPeriods int            `json:"durationPeriods"`
	StartedAt       time.Time      `json:"startedAt"`
	Status          PositionStatus `json:"status"`
	AccruedReturn   int64          `json:"accruedReturn"`
	PeriodsPaid     int            `json:"periodsPaid"`
	LastAccruedAt   time.Time      `json:"lastAccruedAt"`
	ClosedAt        *time.Time     `json:"closedAt,omitempty"`
	AuditFields
}

// NewPosition opens a running position for a settled investment request.
func NewPosition(id string, req *TransactionRequest, plan *InvestmentPlan, at time.Time) InvestmentPosition {
	return InvestmentPosition{
		PositionID:      id,
		AccountID:       req.AccountID,
		PlanID:          plan.PlanID,
		RequestID:       req.RequestID,
		PrincipalAmount: req.Amount,
		Currency:        req.Currency,
		RateBps:         plan.RateBps,
		PeriodHours:     plan.PeriodHours,
		DurationPeriods: plan.DurationPeriods,
		StartedAt:       at,
		Status:          PositionRunning,
		LastAccruedAt:   at,
		AuditFields: AuditFields{
			CreatedAt:     at,
			CreatedBy:     req.AccountID,
			LastUpdatedAt: at,
			LastUpdatedBy: req.AccountID,
		},
	}
}

// PayoutPerPeriod is floor(principal * rateBps / 10000). It fails with
// apperrors.ErrInternal when the result does not fit in int64.
func (p *InvestmentPosition) PayoutPerPeriod() (int64, error) {
	v := new(big.Int).Mul(big.NewInt(p.PrincipalAmount), big.NewInt(p.RateBps))
	v.Quo(v, big.NewInt(10000))
	if !v.IsInt64() {
		return 0, fmt.Errorf("%w: payout overflow for position %s", apperrors.ErrInternal, p.PositionID)
	}
	return v.Int64(), nil
}

// DuePeriods returns how many whole periods have elapsed since the last
// accrual, capped at the periods remaining in the position.
func (p *InvestmentPosition) DuePeriods(now time.Time) int {
	if p.Status != PositionRunning || p.PeriodHours <= 0 {
		return 0
	}
	period := time.Duration(p.PeriodHours) * time.Hour
	elapsed := now.Sub(p.LastAccruedAt)
	if elapsed < period {
		return 0
	}
	due := int(elapsed / period)
	if remaining := p.DurationPeriods - p.PeriodsPaid; due > remaining {
		due = remaining
	}
	if due < 0 {
		return 0
	}
	return due
}

// RecordAccrual advances the position by periods paid periods.
func (p *InvestmentPosition) RecordAccrual(periods int, payout int64, at time.Time) {
	p.PeriodsPaid += periods
	p.AccruedReturn += payout
	p.LastAccruedAt = p.LastAccruedAt.Add(time.Duration(periods) * time.Duration(p.PeriodHours) * time.Hour)
	p.LastUpdatedAt = at
	p.LastUpdatedBy = SystemActorID
	if p.PeriodsPaid >= p.DurationPeriods {
		p.Status = PositionCompleted
		p.ClosedAt = &at
	}
}

// Cancel stops a running position.
func (p *InvestmentPosition) Cancel(by string, at time.Time) error {
	if p.Status != PositionRunning {
		return fmt.Errorf("%w: position %s is %s", apperrors.ErrPositionNotRunning, p.PositionID, p.Status)
	}
	p.Status = PositionCancelled
	p.ClosedAt = &at
	p.LastUpdatedAt = at
	p.LastUpdatedBy = by
	return nil
}
