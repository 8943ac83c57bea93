// Package events fans domain events out to subscribers after the state
// change that produced them has committed.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/middleware"
)

// Handler receives one event. Handlers run synchronously on the publishing
// goroutine and must not block for long.
type Handler func(ctx context.Context, event domain.Event)

// Bus is an in-process publisher. The zero value is not usable; call NewBus.
type Bus struct {
	mu     sync.RWMutex
	byType map[domain.EventType][]Handler
	all    []Handler
}

func NewBus() *Bus {
	return &Bus{byType: make(map[domain.EventType][]Handler)}
}

var _ portssvc.EventPublisher = (*Bus)(nil)

// Subscribe registers h for the given event types.
func (b *Bus) Subscribe(h Handler, types ...domain.EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range types {
		b.byType[t] = append(b.byType[t], h)
	}
}

// SubscribeAll registers h for every event.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish delivers events in order. A panicking handler is logged and skipped;
// it never reaches the caller.
func (b *Bus) Publish(ctx context.Context, events ...domain.Event) {
	for _, e := range events {
		b.mu.RLock()
		handlers := make([]Handler, 0, len(b.all)+len(b.byType[e.Type]))
		handlers = append(handlers, b.byType[e.Type]...)
		handlers = append(handlers, b.all...)
		b.mu.RUnlock()

		for _, h := range handlers {
			b.deliver(ctx, h, e)
		}
	}
}

func (b *Bus) deliver(ctx context.Context, h Handler, e domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			middleware.GetLoggerFromCtx(ctx).Error("Event handler panicked",
				slog.String("event", string(e.Type)),
				slog.String("reference_id", e.ReferenceID),
				slog.String("panic", fmt.Sprint(r)))
		}
	}()
	h(ctx, e)
}
