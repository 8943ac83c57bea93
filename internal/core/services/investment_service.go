package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/dto"
	"github.com/google/uuid"
)

const accrualBatchSize = 500

type investmentService struct {
	BaseService
	plans     portsrepo.PlanRepositoryFacade
	positions portsrepo.PositionReader
	lifecycle portssvc.PositionLifecycleSvc
}

// NewInvestmentService creates the plan/position service. Ledger effects of
// accrual go through lifecycle.
func NewInvestmentService(plans portsrepo.PlanRepositoryFacade, positions portsrepo.PositionReader, lifecycle portssvc.PositionLifecycleSvc, options ...ServiceOption) portssvc.InvestmentSvc {
	svc := &investmentService{
		BaseService: newBaseService(),
		plans:       plans,
		positions:   positions,
		lifecycle:   lifecycle,
	}
	applyOptions(&svc.BaseService, options)
	return svc
}

var _ portssvc.InvestmentSvc = (*investmentService)(nil)

func (s *investmentService) ListPlans(ctx context.Context, activeOnly bool) ([]domain.InvestmentPlan, error) {
	return s.plans.ListPlans(ctx, activeOnly)
}

func (s *investmentService) GetPlan(ctx context.Context, planID string) (*domain.InvestmentPlan, error) {
	return s.plans.FindPlanByID(ctx, planID)
}

func (s *investmentService) CreatePlan(ctx context.Context, actor domain.Actor, req dto.CreatePlanRequest) (*domain.InvestmentPlan, error) {
	if err := s.RequireAdmin(ctx, actor, "create plan"); err != nil {
		return nil, err
	}
	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	if req.MaxAmount > 0 && req.MaxAmount < req.MinAmount {
		return nil, apperrors.NewValidationError("maxAmount must be zero or at least minAmount")
	}
	if req.RateBps <= 0 || req.PeriodHours <= 0 || req.DurationPeriods <= 0 {
		return nil, apperrors.NewValidationError("rateBps, periodHours and durationPeriods must be positive")
	}

	now := s.now()
	plan := domain.InvestmentPlan{
		PlanID:          uuid.NewString(),
		Name:            req.Name,
		Currency:        currency,
		MinAmount:       req.MinAmount,
		MaxAmount:       req.MaxAmount,
		RateBps:         req.RateBps,
		PeriodHours:     req.PeriodHours,
		DurationPeriods: req.DurationPeriods,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.AccountID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.AccountID,
		},
	}
	if err := s.plans.SavePlan(ctx, plan); err != nil {
		s.LogError(ctx, err, "Failed to save plan", slog.String("name", req.Name))
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	s.LogInfo(ctx, "Investment plan created", slog.String("plan_id", plan.PlanID))
	return &plan, nil
}

func (s *investmentService) ListPositions(ctx context.Context, actor domain.Actor, accountID string) ([]domain.InvestmentPosition, error) {
	if err := s.RequireAccess(ctx, actor, accountID); err != nil {
		return nil, err
	}
	return s.positions.ListPositionsByAccount(ctx, accountID)
}

// AccrueAll runs one accrual pass over every running position, a page at a
// time. A failing position is logged and skipped so one bad account cannot
// stall the rest.
func (s *investmentService) AccrueAll(ctx context.Context, now time.Time) (int, error) {
	paid, scanned := 0, 0
	afterID := ""
	for {
		running, err := s.positions.ListRunningPositions(ctx, afterID, accrualBatchSize)
		if err != nil {
			s.LogError(ctx, err, "Failed to list running positions", slog.String("after", afterID))
			return paid, err
		}
		for _, pos := range running {
			if err := ctx.Err(); err != nil {
				return paid, err
			}
			if pos.DuePeriods(now) == 0 {
				continue
			}
			updated, err := s.lifecycle.AccrueReturn(ctx, pos.PositionID, now)
			if err != nil {
				s.LogError(ctx, err, "Accrual skipped", slog.String("position_id", pos.PositionID))
				continue
			}
			if updated.PeriodsPaid > pos.PeriodsPaid {
				paid++
			}
		}
		scanned += len(running)
		if len(running) < accrualBatchSize {
			break
		}
		afterID = running[len(running)-1].PositionID
	}
	s.LogInfo(ctx, "Accrual pass finished",
		slog.Int("running", scanned),
		slog.Int("paid", paid))
	return paid, nil
}
