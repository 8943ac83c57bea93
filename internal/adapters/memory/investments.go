package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
)

func (s *Store) FindPositionByID(ctx context.Context, positionID string) (*domain.InvestmentPosition, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.positions[positionID]
	if !ok {
		return nil, fmt.Errorf("%w: position %s", apperrors.ErrNotFound, positionID)
	}
	return &pos, nil
}

func (s *Store) ListPositionsByAccount(ctx context.Context, accountID string) ([]domain.InvestmentPosition, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]domain.InvestmentPosition, 0)
	for _, p := range s.positions {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (s *Store) ListRunningPositions(ctx context.Context, afterID string, limit int) ([]domain.InvestmentPosition, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]domain.InvestmentPosition, 0)
	for _, p := range s.positions {
		if p.Status == domain.PositionRunning && p.PositionID > afterID {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].PositionID < out[j].PositionID })
	return paginate(out, 0, limit), nil
}

func (s *Store) FindPlanByID(ctx context.Context, planID string) (*domain.InvestmentPlan, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[planID]
	if !ok {
		return nil, fmt.Errorf("%w: plan %s", apperrors.ErrNotFound, planID)
	}
	return &plan, nil
}

func (s *Store) ListPlans(ctx context.Context, activeOnly bool) ([]domain.InvestmentPlan, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]domain.InvestmentPlan, 0, len(s.plans))
	for _, p := range s.plans {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) SavePlan(ctx context.Context, plan domain.InvestmentPlan) error {
	if err := s.checkAvailable(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.PlanID] = plan
	return nil
}
