package mapping

import (
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/SscSPs/coinvest_backend/internal/models"
)

func ToModelInvestmentPlan(d domain.InvestmentPlan) models.InvestmentPlan {
	return models.InvestmentPlan{
		PlanID:          d.PlanID,
		Name:            d.Name,
		Currency:        string(d.Currency),
		MinAmount:       d.MinAmount,
		MaxAmount:       d.MaxAmount,
		RateBps:         d.RateBps,
		PeriodHours:     d.PeriodHours,
		DurationPeriods: d.DurationPeriods,
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainInvestmentPlan(m models.InvestmentPlan) domain.InvestmentPlan {
	return domain.InvestmentPlan{
		PlanID:          m.PlanID,
		Name:            m.Name,
		Currency:        domain.Currency(m.Currency),
		MinAmount:       m.MinAmount,
		MaxAmount:       m.MaxAmount,
		RateBps:         m.RateBps,
		PeriodHours:     m.PeriodHours,
		DurationPeriods: m.DurationPeriods,
		IsActive:        m.IsActive,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

func ToModelInvestmentPosition(d domain.InvestmentPosition) models.InvestmentPosition {
	return models.InvestmentPosition{
		PositionID:      d.PositionID,
		AccountID:       d.AccountID,
		PlanID:          d.PlanID,
		RequestID:       d.RequestID,
		PrincipalAmount: d.PrincipalAmount,
		Currency:        string(d.Currency),
		RateBps:         d.RateBps,
		PeriodHours:     d.PeriodHours,
		DurationPeriods: d.DurationPeriods,
		StartedAt:       d.StartedAt,
		Status:          string(d.Status),
		AccruedReturn:   d.AccruedReturn,
		PeriodsPaid:     d.PeriodsPaid,
		LastAccruedAt:   d.LastAccruedAt,
		ClosedAt:        d.ClosedAt,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainInvestmentPosition(m models.InvestmentPosition) domain.InvestmentPosition {
	return domain.InvestmentPosition{
		PositionID:      m.PositionID,
		AccountID:       m.AccountID,
		PlanID:          m.PlanID,
		RequestID:       m.RequestID,
		PrincipalAmount: m.PrincipalAmount,
		Currency:        domain.Currency(m.Currency),
		RateBps:         m.RateBps,
		PeriodHours:     m.PeriodHours,
		DurationPeriods: m.DurationPeriods,
		StartedAt:       m.StartedAt,
		Status:          domain.PositionStatus(m.Status),
		AccruedReturn:   m.AccruedReturn,
		PeriodsPaid:     m.PeriodsPaid,
		LastAccruedAt:   m.LastAccruedAt,
		ClosedAt:        m.ClosedAt,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
