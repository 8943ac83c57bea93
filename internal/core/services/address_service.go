package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/dto"
)

// addressAllocator hands out deposit addresses from a pre-provisioned pool.
// It never derives keys.
type addressAllocator struct {
	BaseService
	repo portsrepo.AddressPoolRepository
}

func NewAddressAllocator(repo portsrepo.AddressPoolRepository, options ...ServiceOption) portssvc.AddressAllocatorSvc {
	svc := &addressAllocator{BaseService: newBaseService(), repo: repo}
	applyOptions(&svc.BaseService, options)
	return svc
}

var _ portssvc.AddressAllocatorSvc = (*addressAllocator)(nil)

func (s *addressAllocator) GetOrCreateAddress(ctx context.Context, accountID string, asset domain.Currency) (string, error) {
	if !asset.IsCrypto() {
		return "", fmt.Errorf("%w: %s has no deposit addresses", apperrors.ErrUnsupportedCurrency, asset)
	}

	existing, err := s.repo.FindAssignment(ctx, accountID, asset)
	if err == nil {
		return existing.Address, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}

	claimed, err := s.repo.ClaimAddress(ctx, accountID, asset, s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Deposit address pool exhausted", slog.String("asset", string(asset)))
			return "", fmt.Errorf("%w: no deposit address available for %s", apperrors.ErrNotFound, asset)
		}
		return "", err
	}
	s.LogInfo(ctx, "Deposit address assigned",
		slog.String("account_id", accountID),
		slog.String("asset", string(asset)))
	return claimed.Address, nil
}

func (s *addressAllocator) ProvisionAddresses(ctx context.Context, actor domain.Actor, req dto.ProvisionAddressesRequest) (int, error) {
	if err := s.RequireAdmin(ctx, actor, "provision addresses"); err != nil {
		return 0, err
	}
	asset, err := domain.ParseCurrency(req.Asset)
	if err != nil {
		return 0, err
	}
	if !asset.IsCrypto() {
		return 0, fmt.Errorf("%w: %s has no deposit addresses", apperrors.ErrUnsupportedCurrency, asset)
	}

	cleaned := make([]string, 0, len(req.Addresses))
	for _, a := range req.Addresses {
		if a = strings.TrimSpace(a); a != "" {
			cleaned = append(cleaned, a)
		}
	}
	if len(cleaned) == 0 {
		return 0, apperrors.NewValidationError("no addresses supplied")
	}

	added, err := s.repo.AddPoolAddresses(ctx, asset, cleaned)
	if err != nil {
		return 0, err
	}
	s.LogInfo(ctx, "Deposit addresses provisioned",
		slog.String("asset", string(asset)),
		slog.Int("added", added))
	return added, nil
}
