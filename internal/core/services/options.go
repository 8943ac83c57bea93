package services

import (
	"time"

	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
)

// ServiceOption is a functional option shared by every service built on BaseService.
type ServiceOption func(*BaseService)

// WithEventPublisher sets where domain events go after commit.
func WithEventPublisher(publisher portssvc.EventPublisher) ServiceOption {
	return func(s *BaseService) {
		if publisher != nil {
			s.events = publisher
		}
	}
}

// WithClock overrides the time source. Tests use it to drive accrual.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *BaseService) {
		if now != nil {
			s.now = now
		}
	}
}

func applyOptions(base *BaseService, options []ServiceOption) {
	for _, option := range options {
		option(base)
	}
}
