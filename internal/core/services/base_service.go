package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	events portssvc.EventPublisher
	now    func() time.Time
}

func newBaseService() BaseService {
	return BaseService{
		events: noopPublisher{},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, slog.String("reason", apperrors.ReasonCode(err)))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// RequireAdmin fails with ErrForbidden unless actor is an admin.
func (s *BaseService) RequireAdmin(ctx context.Context, actor domain.Actor, action string) error {
	if actor.IsAdmin() {
		return nil
	}
	s.GetLogger(ctx).Warn("Admin action denied",
		slog.String("account_id", actor.AccountID),
		slog.String("action", action))
	return fmt.Errorf("%w: %s requires admin role", apperrors.ErrForbidden, action)
}

// RequireAccess fails with ErrForbidden unless actor owns accountID or is an admin.
func (s *BaseService) RequireAccess(ctx context.Context, actor domain.Actor, accountID string) error {
	if actor.CanAccess(accountID) {
		return nil
	}
	s.GetLogger(ctx).Warn("Cross-account access denied",
		slog.String("account_id", actor.AccountID),
		slog.String("target_account_id", accountID))
	return fmt.Errorf("%w: account %s", apperrors.ErrForbidden, accountID)
}

func (s *BaseService) publish(ctx context.Context, events ...domain.Event) {
	if len(events) == 0 {
		return
	}
	s.events.Publish(ctx, events...)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, ...domain.Event) {}
