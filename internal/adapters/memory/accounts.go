package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
)

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &acc, nil
}

// SaveAccount inserts the account or refreshes name, role and active flag.
func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	if err := s.checkAvailable(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.accounts[account.AccountID]; ok {
		account.CreatedAt = existing.CreatedAt
		account.CreatedBy = existing.CreatedBy
	}
	s.accounts[account.AccountID] = account
	return nil
}

func assignmentIndex(accountID string, asset domain.Currency) string {
	return accountID + "\x00" + string(asset)
}

func (s *Store) FindAssignment(ctx context.Context, accountID string, asset domain.Currency) (*domain.DepositAddress, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[assignmentIndex(accountID, asset)]
	if !ok {
		return nil, fmt.Errorf("%w: no %s address for account %s", apperrors.ErrNotFound, asset, accountID)
	}
	return &a, nil
}

// ClaimAddress pops the oldest unassigned address for asset.
func (s *Store) ClaimAddress(ctx context.Context, accountID string, asset domain.Currency, at time.Time) (*domain.DepositAddress, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := assignmentIndex(accountID, asset)
	if a, ok := s.assignments[idx]; ok {
		return &a, nil
	}
	free := s.pool[asset]
	if len(free) == 0 {
		return nil, fmt.Errorf("%w: %s deposit address pool is empty", apperrors.ErrNotFound, asset)
	}
	a := domain.DepositAddress{Address: free[0], Asset: asset, AccountID: accountID, AssignedAt: at}
	s.pool[asset] = free[1:]
	s.assignments[idx] = a
	return &a, nil
}

func (s *Store) AddPoolAddresses(ctx context.Context, asset domain.Currency, addresses []string) (int, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, addr := range addresses {
		if s.poolSeen[addr] {
			continue
		}
		s.poolSeen[addr] = true
		s.pool[asset] = append(s.pool[asset], addr)
		added++
	}
	return added, nil
}

func rateIndex(from, to domain.Currency) string {
	return string(from) + "/" + string(to)
}

func (s *Store) FindExchangeRate(ctx context.Context, from, to domain.Currency) (*domain.ExchangeRate, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rates[rateIndex(from, to)]
	if !ok {
		return nil, fmt.Errorf("%w: rate %s/%s", apperrors.ErrNotFound, from, to)
	}
	return &r, nil
}

func (s *Store) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	if err := s.checkAvailable(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[rateIndex(rate.FromCurrency, rate.ToCurrency)] = rate
	return nil
}
