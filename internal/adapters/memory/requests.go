package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
)

func idempotencyIndex(accountID, key string) string {
	return accountID + "\x00" + key
}

// SaveRequest inserts a new request.
func (s *Store) SaveRequest(ctx context.Context, req domain.TransactionRequest) error {
	if err := s.checkAvailable(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[req.RequestID]; exists {
		return fmt.Errorf("%w: request %s", apperrors.ErrDuplicate, req.RequestID)
	}
	if req.IdempotencyKey != "" {
		idx := idempotencyIndex(req.AccountID, req.IdempotencyKey)
		if _, exists := s.idempotency[idx]; exists {
			return fmt.Errorf("%w: idempotency key %q", apperrors.ErrDuplicate, req.IdempotencyKey)
		}
		s.idempotency[idx] = req.RequestID
	}
	s.requests[req.RequestID] = req
	return nil
}

func (s *Store) FindRequestByID(ctx context.Context, requestID string) (*domain.TransactionRequest, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok {
		return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, requestID)
	}
	return &req, nil
}

func (s *Store) FindRequestByIdempotencyKey(ctx context.Context, accountID, key string) (*domain.TransactionRequest, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.idempotency[idempotencyIndex(accountID, key)]
	if !ok {
		return nil, fmt.Errorf("%w: idempotency key %q", apperrors.ErrNotFound, key)
	}
	req := s.requests[id]
	return &req, nil
}

// ListRequests returns matching requests newest first.
func (s *Store) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.TransactionRequest, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	matched := make([]domain.TransactionRequest, 0)
	for _, r := range s.requests {
		if filter.AccountID != "" && r.AccountID != filter.AccountID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.Kind != nil && r.Kind != *filter.Kind {
			continue
		}
		matched = append(matched, r)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].RequestID > matched[j].RequestID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, filter.Offset, filter.Limit), nil
}

// ListApprovedBefore returns approved requests whose approval predates cutoff.
func (s *Store) ListApprovedBefore(ctx context.Context, cutoff time.Time, afterID string, limit int) ([]domain.TransactionRequest, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	matched := make([]domain.TransactionRequest, 0)
	for _, r := range s.requests {
		if r.Status == domain.StatusApproved && r.ApprovedAt != nil && r.ApprovedAt.Before(cutoff) && r.RequestID > afterID {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].RequestID < matched[j].RequestID })
	return paginate(matched, 0, limit), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
