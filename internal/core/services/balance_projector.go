package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
)

const foldPageSize = 1000

// balanceProjector derives balances by folding ledger entries, memoizing the
// result per (account, currency) behind a generation counter.
//
// Keys whose invalidation failed are held in dirty and bypass the cache
// until a retried Invalidate succeeds. The value counts failures so a retry
// never clears a failure recorded after it started.
type balanceProjector struct {
	BaseService
	ledger portsrepo.LedgerReader
	cache  portsrepo.BalanceCache

	dirtyMu sync.Mutex
	dirty   map[domain.BalanceKey]uint64
}

// NewBalanceProjector creates a projector. cache may be nil, in which case
// every read folds the ledger.
func NewBalanceProjector(ledger portsrepo.LedgerReader, cache portsrepo.BalanceCache, options ...ServiceOption) portssvc.BalanceProjectorSvc {
	svc := &balanceProjector{
		BaseService: newBaseService(),
		ledger:      ledger,
		cache:       cache,
		dirty:       make(map[domain.BalanceKey]uint64),
	}
	applyOptions(&svc.BaseService, options)
	return svc
}

var _ portssvc.BalanceProjectorSvc = (*balanceProjector)(nil)

func (s *balanceProjector) GetBalance(ctx context.Context, accountID string, currency domain.Currency) (int64, error) {
	if !currency.IsValid() {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, currency)
	}
	key := domain.BalanceKey{AccountID: accountID, Currency: currency}

	if s.cache == nil {
		return s.fold(ctx, key)
	}
	if mark, dirty := s.dirtyMark(key); dirty && !s.retryInvalidate(ctx, key, mark) {
		return s.fold(ctx, key)
	}

	// A cache failure degrades to a direct fold; the ledger stays authoritative.
	gen, err := s.cache.Generation(ctx, key)
	if err != nil {
		s.LogError(ctx, err, "Balance cache generation lookup failed", slog.String("key", key.String()))
		return s.fold(ctx, key)
	}
	if cached, ok, err := s.cache.Get(ctx, key, gen); err != nil {
		s.LogError(ctx, err, "Balance cache read failed", slog.String("key", key.String()))
	} else if ok {
		return cached, nil
	}

	balance, err := s.fold(ctx, key)
	if err != nil {
		return 0, err
	}
	if _, dirty := s.dirtyMark(key); dirty {
		return balance, nil
	}
	if err := s.cache.Put(ctx, key, gen, balance); err != nil {
		s.LogError(ctx, err, "Balance cache write failed", slog.String("key", key.String()))
	}
	return balance, nil
}

func (s *balanceProjector) GetBalances(ctx context.Context, accountID string) (map[domain.Currency]int64, error) {
	balances := make(map[domain.Currency]int64)
	for _, c := range domain.AllCurrencies() {
		b, err := s.GetBalance(ctx, accountID, c)
		if err != nil {
			return nil, err
		}
		balances[c] = b
	}
	return balances, nil
}

func (s *balanceProjector) InvalidateBalances(ctx context.Context, keys []domain.BalanceKey) {
	if s.cache == nil || len(keys) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.markDirty(keys)
		s.LogError(ctx, err, "Balance cache invalidation failed; folding until it recovers", slog.Int("keys", len(keys)))
	}
}

func (s *balanceProjector) markDirty(keys []domain.BalanceKey) {
	s.dirtyMu.Lock()
	defer s.dirtyMu.Unlock()
	for _, k := range keys {
		s.dirty[k]++
	}
}

func (s *balanceProjector) dirtyMark(key domain.BalanceKey) (uint64, bool) {
	s.dirtyMu.Lock()
	defer s.dirtyMu.Unlock()
	mark, ok := s.dirty[key]
	return mark, ok
}

// retryInvalidate reports whether key is clean again.
func (s *balanceProjector) retryInvalidate(ctx context.Context, key domain.BalanceKey, mark uint64) bool {
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.LogDebug(ctx, "Balance cache still unhealthy", slog.String("key", key.String()))
		return false
	}
	s.dirtyMu.Lock()
	defer s.dirtyMu.Unlock()
	if s.dirty[key] != mark {
		return false
	}
	delete(s.dirty, key)
	return true
}

// fold pages through the account's entries for one currency.
func (s *balanceProjector) fold(ctx context.Context, key domain.BalanceKey) (int64, error) {
	currency := key.Currency
	filter := domain.EntryFilter{Currency: &currency, Limit: foldPageSize}

	var balance int64
	for {
		page, err := s.ledger.ListByAccount(ctx, key.AccountID, filter)
		if err != nil {
			return 0, fmt.Errorf("failed to fold balance for %s: %w", key, err)
		}
		for _, e := range page {
			if balance, err = domain.AddSigned(balance, e); err != nil {
				return 0, err
			}
		}
		if len(page) < foldPageSize {
			return balance, nil
		}
		filter.SinceID = page[len(page)-1].EntryID
	}
}
