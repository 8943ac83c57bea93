package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
)

type stagedRequest struct {
	req      domain.TransactionRequest
	expected domain.RequestStatus
}

type stagedPosition struct {
	pos             domain.InvestmentPosition
	expectedPeriods int
	expectedStatus  domain.PositionStatus
}

type changeSet struct {
	accountID    string
	entries      []domain.LedgerEntry
	requests     []stagedRequest
	newPositions []domain.InvestmentPosition
	positions    []stagedPosition
}

func (cs changeSet) empty() bool {
	return len(cs.entries) == 0 && len(cs.requests) == 0 && len(cs.newPositions) == 0 && len(cs.positions) == 0
}

// WithinAccount runs fn while holding the account's lock and commits what fn staged.
func (s *Store) WithinAccount(ctx context.Context, accountID string, fn func(tx portsrepo.AccountTx) error) error {
	if err := s.checkAvailable(ctx); err != nil {
		return err
	}
	release, err := s.lockAccounts(ctx, accountID)
	if err != nil {
		return err
	}
	defer release()

	tx := &accountTx{store: s, accountID: accountID}
	if err := fn(tx); err != nil {
		return err
	}
	if tx.cs.empty() {
		return nil
	}
	tx.cs.accountID = accountID
	_, err = s.commit(ctx, tx.cs)
	return err
}

// commit re-checks every compare-and-swap expectation, applies the change set
// atomically and then fires append hooks.
func (s *Store) commit(ctx context.Context, cs changeSet) ([]domain.LedgerEntry, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	if p := s.interceptor.Load(); p != nil {
		if err := (*p)(cs.accountID, cs.entries); err != nil {
			return nil, err
		}
	}

	stored, err := func() ([]domain.LedgerEntry, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		for _, e := range cs.entries {
			if _, exists := s.entryIdx[e.EntryID]; exists {
				return nil, fmt.Errorf("%w: entry %s", apperrors.ErrDuplicate, e.EntryID)
			}
		}
		for _, r := range cs.requests {
			cur, ok := s.requests[r.req.RequestID]
			if !ok {
				return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, r.req.RequestID)
			}
			if cur.Status != r.expected {
				return nil, fmt.Errorf("%w: request %s is %s, expected %s", apperrors.ErrConflict, cur.RequestID, cur.Status, r.expected)
			}
		}
		for _, p := range cs.newPositions {
			if _, exists := s.positions[p.PositionID]; exists {
				return nil, fmt.Errorf("%w: position %s", apperrors.ErrDuplicate, p.PositionID)
			}
		}
		for _, p := range cs.positions {
			cur, ok := s.positions[p.pos.PositionID]
			if !ok {
				return nil, fmt.Errorf("%w: position %s", apperrors.ErrNotFound, p.pos.PositionID)
			}
			if cur.PeriodsPaid != p.expectedPeriods || cur.Status != p.expectedStatus {
				return nil, fmt.Errorf("%w: position %s changed concurrently", apperrors.ErrConflict, cur.PositionID)
			}
		}

		stored := make([]domain.LedgerEntry, 0, len(cs.entries))
		for _, e := range cs.entries {
			s.seq++
			e.Sequence = s.seq
			s.entries = append(s.entries, e)
			idx := len(s.entries) - 1
			s.byAccount[e.AccountID] = append(s.byAccount[e.AccountID], idx)
			s.entryIdx[e.EntryID] = idx
			stored = append(stored, e)
		}
		for _, r := range cs.requests {
			s.requests[r.req.RequestID] = r.req
		}
		for _, p := range cs.newPositions {
			s.positions[p.PositionID] = p
		}
		for _, p := range cs.positions {
			s.positions[p.pos.PositionID] = p.pos
		}
		return stored, nil
	}()
	if err != nil {
		return nil, err
	}

	s.fireHooks(ctx, domain.BalanceKeys(stored))
	return stored, nil
}

// accountTx stages changes for one account. Reads see committed state plus
// whatever this transaction staged.
type accountTx struct {
	store     *Store
	accountID string
	cs        changeSet
}

var _ portsrepo.AccountTx = (*accountTx)(nil)

func (t *accountTx) Balance(ctx context.Context, currency domain.Currency) (int64, error) {
	if err := t.store.checkAvailable(ctx); err != nil {
		return 0, err
	}
	t.store.mu.RLock()
	var balance int64
	var err error
	for _, i := range t.store.byAccount[t.accountID] {
		e := t.store.entries[i]
		if e.Currency != currency {
			continue
		}
		if balance, err = domain.AddSigned(balance, e); err != nil {
			break
		}
	}
	t.store.mu.RUnlock()
	if err != nil {
		return 0, err
	}

	for _, e := range t.cs.entries {
		if e.Currency != currency {
			continue
		}
		if balance, err = domain.AddSigned(balance, e); err != nil {
			return 0, err
		}
	}
	return balance, nil
}

func (t *accountTx) AppendEntries(_ context.Context, entries ...domain.LedgerEntry) ([]domain.LedgerEntry, error) {
	prepared, err := domain.PrepareEntries(entries, t.store.now())
	if err != nil {
		return nil, err
	}
	for _, e := range prepared {
		if e.AccountID != t.accountID {
			return nil, fmt.Errorf("%w: entry for account %s staged in unit of work for %s", apperrors.ErrValidation, e.AccountID, t.accountID)
		}
	}
	t.cs.entries = append(t.cs.entries, prepared...)
	return prepared, nil
}

func (t *accountTx) FindRequest(ctx context.Context, requestID string) (*domain.TransactionRequest, error) {
	for i := len(t.cs.requests) - 1; i >= 0; i-- {
		if t.cs.requests[i].req.RequestID == requestID {
			r := t.cs.requests[i].req
			return &r, nil
		}
	}
	req, err := t.store.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.AccountID != t.accountID {
		return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, requestID)
	}
	return req, nil
}

func (t *accountTx) UpdateRequest(ctx context.Context, req domain.TransactionRequest, expected domain.RequestStatus) error {
	cur, err := t.FindRequest(ctx, req.RequestID)
	if err != nil {
		return err
	}
	if cur.Status != expected {
		return fmt.Errorf("%w: request %s is %s, expected %s", apperrors.ErrConflict, req.RequestID, cur.Status, expected)
	}
	// the commit-time check compares against the stored status, which is the
	// first expectation staged for this request
	for _, r := range t.cs.requests {
		if r.req.RequestID == req.RequestID {
			expected = r.expected
		}
	}
	t.cs.requests = append(t.cs.requests, stagedRequest{req: req, expected: expected})
	return nil
}

func (t *accountTx) FindPlan(ctx context.Context, planID string) (*domain.InvestmentPlan, error) {
	return t.store.FindPlanByID(ctx, planID)
}

func (t *accountTx) FindPosition(ctx context.Context, positionID string) (*domain.InvestmentPosition, error) {
	for i := len(t.cs.positions) - 1; i >= 0; i-- {
		if t.cs.positions[i].pos.PositionID == positionID {
			p := t.cs.positions[i].pos
			return &p, nil
		}
	}
	for _, p := range t.cs.newPositions {
		if p.PositionID == positionID {
			pos := p
			return &pos, nil
		}
	}
	pos, err := t.store.FindPositionByID(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if pos.AccountID != t.accountID {
		return nil, fmt.Errorf("%w: position %s", apperrors.ErrNotFound, positionID)
	}
	return pos, nil
}

func (t *accountTx) SavePosition(_ context.Context, pos domain.InvestmentPosition) error {
	if pos.AccountID != t.accountID {
		return fmt.Errorf("%w: position for account %s staged in unit of work for %s", apperrors.ErrValidation, pos.AccountID, t.accountID)
	}
	t.cs.newPositions = append(t.cs.newPositions, pos)
	return nil
}

func (t *accountTx) UpdatePosition(ctx context.Context, pos domain.InvestmentPosition, expectedPeriods int, expectedStatus domain.PositionStatus) error {
	cur, err := t.FindPosition(ctx, pos.PositionID)
	if err != nil {
		return err
	}
	if cur.PeriodsPaid != expectedPeriods || cur.Status != expectedStatus {
		return fmt.Errorf("%w: position %s changed concurrently", apperrors.ErrConflict, pos.PositionID)
	}
	for i, p := range t.cs.newPositions {
		if p.PositionID == pos.PositionID {
			t.cs.newPositions[i] = pos
			return nil
		}
	}
	for _, p := range t.cs.positions {
		if p.pos.PositionID == pos.PositionID {
			expectedPeriods, expectedStatus = p.expectedPeriods, p.expectedStatus
		}
	}
	t.cs.positions = append(t.cs.positions, stagedPosition{pos: pos, expectedPeriods: expectedPeriods, expectedStatus: expectedStatus})
	return nil
}
