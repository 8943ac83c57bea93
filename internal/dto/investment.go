package dto

import (
	"time"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/SscSPs/coinvest_backend/internal/utils"
)

// CreatePlanRequest defines the data needed to create an investment plan.
type CreatePlanRequest struct {
	Name            string `json:"name" binding:"required,max=128"`
	Currency        string `json:"currency" binding:"required,currency"`
	MinAmount       int64  `json:"minAmount" binding:"gte=0"`
	MaxAmount       int64  `json:"maxAmount" binding:"gte=0"` // 0 means unbounded
	RateBps         int64  `json:"rateBps" binding:"required,gt=0,lte=10000"`
	PeriodHours     int    `json:"periodHours" binding:"required,gt=0"`
	DurationPeriods int    `json:"durationPeriods" binding:"required,gt=0"`
}

// PlanResponse defines the data returned for an investment plan.
type PlanResponse struct {
	PlanID          string `json:"planID"`
	Name            string `json:"name"`
	Currency        string `json:"currency"`
	MinAmount       int64  `json:"minAmount"`
	MaxAmount       int64  `json:"maxAmount"`
	RateBps         int64  `json:"rateBps"`
	PeriodHours     int    `json:"periodHours"`
	DurationPeriods int    `json:"durationPeriods"`
	IsActive        bool   `json:"isActive"`
}

// ToPlanResponse converts a domain.InvestmentPlan to its response DTO
func ToPlanResponse(p *domain.InvestmentPlan) PlanResponse {
	return PlanResponse{
		PlanID:          p.PlanID,
		Name:            p.Name,
		Currency:        string(p.Currency),
		MinAmount:       p.MinAmount,
		MaxAmount:       p.MaxAmount,
		RateBps:         p.RateBps,
		PeriodHours:     p.PeriodHours,
		DurationPeriods: p.DurationPeriods,
		IsActive:        p.IsActive,
	}
}

// ToListPlanResponse converts a slice of plans.
func ToListPlanResponse(plans []domain.InvestmentPlan) []PlanResponse {
	res := make([]PlanResponse, len(plans))
	for i := range plans {
		res[i] = ToPlanResponse(&plans[i])
	}
	return res
}

// PositionResponse defines the data returned for an investment position.
type PositionResponse struct {
	PositionID       string     `json:"positionID"`
	AccountID        string     `json:"accountID"`
	PlanID           string     `json:"planID"`
	Currency         string     `json:"currency"`
	PrincipalAmount  int64      `json:"principalAmount"`
	DisplayPrincipal string     `json:"displayPrincipal"`
	AccruedReturn    int64      `json:"accruedReturn"`
	PeriodsPaid      int        `json:"periodsPaid"`
	DurationPeriods  int        `json:"durationPeriods"`
	Status           string     `json:"status"`
	StartedAt        time.Time  `json:"startedAt"`
	ClosedAt         *time.Time `json:"closedAt,omitempty"`
}

// ToPositionResponse converts a domain.InvestmentPosition to its response DTO
func ToPositionResponse(p *domain.InvestmentPosition) PositionResponse {
	return PositionResponse{
		PositionID:       p.PositionID,
		AccountID:        p.AccountID,
		PlanID:           p.PlanID,
		Currency:         string(p.Currency),
		PrincipalAmount:  p.PrincipalAmount,
		DisplayPrincipal: utils.FormatMinorUnits(p.PrincipalAmount, p.Currency),
		AccruedReturn:    p.AccruedReturn,
		PeriodsPaid:      p.PeriodsPaid,
		DurationPeriods:  p.DurationPeriods,
		Status:           string(p.Status),
		StartedAt:        p.StartedAt,
		ClosedAt:         p.ClosedAt,
	}
}

// ToListPositionResponse converts a slice of positions.
func ToListPositionResponse(positions []domain.InvestmentPosition) []PositionResponse {
	res := make([]PositionResponse, len(positions))
	for i := range positions {
		res[i] = ToPositionResponse(&positions[i])
	}
	return res
}
