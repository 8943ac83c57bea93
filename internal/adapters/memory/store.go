// Package memory implements every storage port in process. It backs the
// service tests and STORE_DRIVER=memory; state is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
)

// CommitInterceptor runs inside commit before anything is applied. Returning
// an error aborts the commit. Used to simulate storage failures.
type CommitInterceptor func(accountID string, entries []domain.LedgerEntry) error

// Store holds all in-memory state. The zero value is not usable; call NewStore.
type Store struct {
	mu sync.RWMutex

	seq       int64
	entries   []domain.LedgerEntry
	byAccount map[string][]int
	entryIdx  map[string]int

	requests    map[string]domain.TransactionRequest
	idempotency map[string]string
	positions   map[string]domain.InvestmentPosition
	plans       map[string]domain.InvestmentPlan
	accounts    map[string]domain.Account
	pool        map[domain.Currency][]string
	poolSeen    map[string]bool
	assignments map[string]domain.DepositAddress
	rates       map[string]domain.ExchangeRate

	locksMu sync.Mutex
	locks   map[string]chan struct{}

	hooksMu sync.RWMutex
	hooks   []portsrepo.AppendHook

	unavailable atomic.Bool
	interceptor atomic.Pointer[CommitInterceptor]

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		byAccount:   make(map[string][]int),
		entryIdx:    make(map[string]int),
		requests:    make(map[string]domain.TransactionRequest),
		idempotency: make(map[string]string),
		positions:   make(map[string]domain.InvestmentPosition),
		plans:       make(map[string]domain.InvestmentPlan),
		accounts:    make(map[string]domain.Account),
		pool:        make(map[domain.Currency][]string),
		poolSeen:    make(map[string]bool),
		assignments: make(map[string]domain.DepositAddress),
		rates:       make(map[string]domain.ExchangeRate),
		locks:       make(map[string]chan struct{}),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// NewRepositoryProvider exposes a single store through every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Ledger:        s,
		UnitOfWork:    s,
		Requests:      s,
		Positions:     s,
		Plans:         s,
		Accounts:      s,
		Addresses:     s,
		ExchangeRates: s,
	}
}

var (
	_ portsrepo.LedgerStore                  = (*Store)(nil)
	_ portsrepo.UnitOfWork                   = (*Store)(nil)
	_ portsrepo.RequestRepositoryFacade      = (*Store)(nil)
	_ portsrepo.PositionReader               = (*Store)(nil)
	_ portsrepo.PlanRepositoryFacade         = (*Store)(nil)
	_ portsrepo.AccountRepositoryFacade      = (*Store)(nil)
	_ portsrepo.AddressPoolRepository        = (*Store)(nil)
	_ portsrepo.ExchangeRateRepositoryFacade = (*Store)(nil)
)

// SetUnavailable makes every operation fail with ErrStoreUnavailable.
func (s *Store) SetUnavailable(down bool) {
	s.unavailable.Store(down)
}

// SetCommitInterceptor installs fn, or removes it when fn is nil.
func (s *Store) SetCommitInterceptor(fn CommitInterceptor) {
	if fn == nil {
		s.interceptor.Store(nil)
		return
	}
	s.interceptor.Store(&fn)
}

func (s *Store) checkAvailable(ctx context.Context) error {
	if s.unavailable.Load() {
		return fmt.Errorf("%w: memory store offline", apperrors.ErrStoreUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// lockAccounts acquires the per-account locks in sorted order so that
// multi-account batches cannot deadlock. It gives up when ctx is done.
func (s *Store) lockAccounts(ctx context.Context, accountIDs ...string) (func(), error) {
	ids := domain.LockOrder(accountIDs)
	acquired := make([]chan struct{}, 0, len(ids))
	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			<-acquired[i]
		}
	}
	for _, id := range ids {
		s.locksMu.Lock()
		ch, ok := s.locks[id]
		if !ok {
			ch = make(chan struct{}, 1)
			s.locks[id] = ch
		}
		s.locksMu.Unlock()

		select {
		case ch <- struct{}{}:
			acquired = append(acquired, ch)
		case <-ctx.Done():
			release()
			return nil, fmt.Errorf("%w: waiting for account lock: %v", apperrors.ErrStoreUnavailable, ctx.Err())
		}
	}
	return release, nil
}

func (s *Store) fireHooks(ctx context.Context, keys []domain.BalanceKey) {
	if len(keys) == 0 {
		return
	}
	s.hooksMu.RLock()
	hooks := append([]portsrepo.AppendHook(nil), s.hooks...)
	s.hooksMu.RUnlock()
	for _, h := range hooks {
		h(ctx, keys)
	}
}
