package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/dto"
	"github.com/SscSPs/coinvest_backend/internal/utils"
	"github.com/shopspring/decimal"
)

const inverseRatePrecision = 18

// exchangeRateService provides display conversions. Rates never feed
// sufficiency checks.
type exchangeRateService struct {
	BaseService
	rateRepo portsrepo.ExchangeRateRepositoryFacade
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, options ...ServiceOption) portssvc.ExchangeRateSvc {
	svc := &exchangeRateService{BaseService: newBaseService(), rateRepo: rateRepo}
	applyOptions(&svc.BaseService, options)
	return svc
}

var _ portssvc.ExchangeRateSvc = (*exchangeRateService)(nil)

// Equivalent converts amount (minor units of from) into major units of to.
// A stored to→from rate is inverted when no from→to rate exists.
func (s *exchangeRateService) Equivalent(ctx context.Context, amount int64, from, to domain.Currency) (decimal.Decimal, error) {
	major := utils.MinorToDecimal(amount, from)
	if from == to {
		return major, nil
	}

	rate, err := s.rateRepo.FindExchangeRate(ctx, from, to)
	if err == nil {
		return major.Mul(rate.Rate), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("failed to get exchange rate: %w", err)
	}

	inverse, err := s.rateRepo.FindExchangeRate(ctx, to, from)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get exchange rate %s/%s: %w", from, to, err)
	}
	if inverse.Rate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: zero rate stored for %s/%s", apperrors.ErrInternal, to, from)
	}
	return major.DivRound(inverse.Rate, inverseRatePrecision), nil
}

// SetRate stores or replaces the rate for a currency pair.
func (s *exchangeRateService) SetRate(ctx context.Context, actor domain.Actor, req dto.SetExchangeRateRequest) (*domain.ExchangeRate, error) {
	if err := s.RequireAdmin(ctx, actor, "set exchange rate"); err != nil {
		return nil, err
	}
	from, err := domain.ParseCurrency(req.FromCurrency)
	if err != nil {
		return nil, err
	}
	to, err := domain.ParseCurrency(req.ToCurrency)
	if err != nil {
		return nil, err
	}
	if from == to {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}

	rate := domain.ExchangeRate{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         req.Rate,
		UpdatedAt:    s.now(),
		UpdatedBy:    actor.AccountID,
	}
	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		s.LogError(ctx, err, "Failed to save exchange rate")
		return nil, fmt.Errorf("failed to save exchange rate: %w", err)
	}
	return &rate, nil
}
