package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
)

// OnAppend registers a hook fired after every successful append.
func (s *Store) OnAppend(hook portsrepo.AppendHook) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Append validates and stores a single entry.
func (s *Store) Append(ctx context.Context, entry domain.LedgerEntry) (string, error) {
	stored, err := s.AppendBatch(ctx, []domain.LedgerEntry{entry})
	if err != nil {
		return "", err
	}
	return stored[0].EntryID, nil
}

// AppendBatch stores all entries or none.
func (s *Store) AppendBatch(ctx context.Context, entries []domain.LedgerEntry) ([]domain.LedgerEntry, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	prepared, err := domain.PrepareEntries(entries, s.now())
	if err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(prepared))
	for _, e := range prepared {
		accountIDs = append(accountIDs, e.AccountID)
	}
	release, err := s.lockAccounts(ctx, accountIDs...)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.commit(ctx, changeSet{accountID: prepared[0].AccountID, entries: prepared})
}

// ListByAccount returns the account's entries in insertion order.
func (s *Store) ListByAccount(ctx context.Context, accountID string, filter domain.EntryFilter) ([]domain.LedgerEntry, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var since int64
	if filter.SinceID != "" {
		i, ok := s.entryIdx[filter.SinceID]
		if !ok || s.entries[i].AccountID != accountID {
			return nil, fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, filter.SinceID)
		}
		since = s.entries[i].Sequence
	}

	out := make([]domain.LedgerEntry, 0)
	for _, i := range s.byAccount[accountID] {
		e := s.entries[i]
		if e.Sequence <= since {
			continue
		}
		if filter.Currency != nil && e.Currency != *filter.Currency {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// FindEntryByID returns a copy of the stored entry.
func (s *Store) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.entryIdx[entryID]
	if !ok {
		return nil, fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
	}
	e := s.entries[i]
	return &e, nil
}

// UpdateEntry always fails: the ledger is append-only.
func (s *Store) UpdateEntry(_ context.Context, entry domain.LedgerEntry) error {
	return fmt.Errorf("%w: update of entry %s refused", apperrors.ErrImmutableLedger, entry.EntryID)
}

// DeleteEntry always fails: the ledger is append-only.
func (s *Store) DeleteEntry(_ context.Context, entryID string) error {
	return fmt.Errorf("%w: delete of entry %s refused", apperrors.ErrImmutableLedger, entryID)
}
