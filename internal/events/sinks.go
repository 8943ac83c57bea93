package events

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/SscSPs/coinvest_backend/internal/middleware"
)

// LogSink writes every event to the logger carried by ctx.
func LogSink() Handler {
	return func(ctx context.Context, e domain.Event) {
		logger := middleware.GetLoggerFromCtx(ctx)
		attrs := []any{
			slog.String("event", string(e.Type)),
			slog.String("account_id", e.AccountID),
			slog.String("reference_id", e.ReferenceID),
			slog.String("actor_id", e.ActorID),
		}
		if e.Currency != "" {
			attrs = append(attrs, slog.String("currency", string(e.Currency)), slog.Int64("amount", e.Amount))
		}
		if e.Reason != "" {
			attrs = append(attrs, slog.String("reason", e.Reason))
		}
		logger.Info("Domain event", attrs...)
	}
}

// Tracker is the subset of the PostHog client wrapper the sink needs.
type Tracker interface {
	IsInitialized() bool
	Enqueue(distinctID string, event string, properties map[string]any)
}

// PosthogSink forwards events to product analytics keyed by account.
// Event names become "ledger_request_settled" and so on.
func PosthogSink(tracker Tracker) Handler {
	return func(_ context.Context, e domain.Event) {
		if tracker == nil || !tracker.IsInitialized() || e.AccountID == "" {
			return
		}
		props := map[string]any{
			"reference_id": e.ReferenceID,
			"actor_id":     e.ActorID,
			"occurred_at":  e.OccurredAt.Format(time.RFC3339),
		}
		if e.Currency != "" {
			props["currency"] = string(e.Currency)
			props["amount"] = e.Amount
		}
		if e.Reason != "" {
			props["reason"] = e.Reason
		}
		tracker.Enqueue(e.AccountID, "ledger_"+strings.ReplaceAll(string(e.Type), ".", "_"), props)
	}
}
