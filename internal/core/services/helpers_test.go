package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/adapters/cache"
	"github.com/SscSPs/coinvest_backend/internal/adapters/memory"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/core/services"
	"github.com/SscSPs/coinvest_backend/internal/dto"
	"github.com/SscSPs/coinvest_backend/internal/platform/config"
)

var (
	adminActor = domain.Actor{AccountID: "admin-1", Role: domain.RoleAdmin}
	userActor  = domain.Actor{AccountID: "acc-1", Role: domain.RoleUser}
	otherActor = domain.Actor{AccountID: "acc-2", Role: domain.RoleUser}
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, events ...domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) Types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]domain.EventType, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

// ledgerEnv wires the real services over the in-memory store.
type ledgerEnv struct {
	store     *memory.Store
	cache     *cache.MemoryBalanceCache
	clock     *fakeClock
	published *recordingPublisher
	svc       *portssvc.ServiceContainer
}

func newLedgerEnv(autoApproveKinds ...string) *ledgerEnv {
	env := &ledgerEnv{
		store:     memory.NewStore(),
		cache:     cache.NewMemoryBalanceCache(),
		clock:     newFakeClock(),
		published: &recordingPublisher{},
	}
	cfg := &config.Config{AutoApproveKinds: autoApproveKinds}
	env.svc = services.NewServiceContainer(cfg, memory.NewRepositoryProvider(env.store), env.cache,
		services.WithClock(env.clock.Now),
		services.WithEventPublisher(env.published),
	)
	return env
}

func (e *ledgerEnv) register(ctx context.Context, actors ...domain.Actor) error {
	for _, a := range actors {
		if _, err := e.svc.Account.EnsureAccount(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (e *ledgerEnv) fund(ctx context.Context, accountID string, currency domain.Currency, amount int64) error {
	_, err := e.svc.Coordinator.AdjustBalance(ctx, adminActor, dto.AdjustBalanceRequest{
		AccountID: accountID,
		Currency:  string(currency),
		Amount:    amount,
		Direction: domain.Credit,
		Memo:      "opening balance",
	})
	return err
}

func (e *ledgerEnv) debit(ctx context.Context, accountID string, currency domain.Currency, amount int64) error {
	_, err := e.svc.Coordinator.AdjustBalance(ctx, adminActor, dto.AdjustBalanceRequest{
		AccountID: accountID,
		Currency:  string(currency),
		Amount:    amount,
		Direction: domain.Debit,
		Memo:      "chargeback",
	})
	return err
}
