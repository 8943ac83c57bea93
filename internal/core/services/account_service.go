package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
)

// accountService mirrors identities issued by the auth layer into the
// ledger's account table.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...ServiceOption) portssvc.AccountSvc {
	svc := &accountService{BaseService: newBaseService(), accountRepo: repo}
	applyOptions(&svc.BaseService, options)
	return svc
}

var _ portssvc.AccountSvc = (*accountService)(nil)

func (s *accountService) EnsureAccount(ctx context.Context, actor domain.Actor) (*domain.Account, error) {
	if actor.AccountID == "" {
		return nil, fmt.Errorf("%w: missing account id", apperrors.ErrUnauthorized)
	}
	existing, err := s.accountRepo.FindAccountByID(ctx, actor.AccountID)
	if err == nil && existing.Role == actor.Role {
		return existing, nil
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	account := domain.Account{
		AccountID: actor.AccountID,
		Role:      actor.Role,
		IsActive:  true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.AccountID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.AccountID,
		},
	}
	if existing != nil {
		account.DisplayName = existing.DisplayName
		account.IsActive = existing.IsActive
		account.CreatedAt = existing.CreatedAt
		account.CreatedBy = existing.CreatedBy
	}
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("account_id", actor.AccountID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	if existing == nil {
		s.LogInfo(ctx, "Account registered", slog.String("account_id", actor.AccountID))
	}
	return &account, nil
}

func (s *accountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}
