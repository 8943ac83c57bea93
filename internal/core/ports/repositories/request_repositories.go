package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
)

// RequestReader defines read operations for transaction requests.
type RequestReader interface {
	FindRequestByID(ctx context.Context, requestID string) (*domain.TransactionRequest, error)

	// FindRequestByIdempotencyKey returns apperrors.ErrNotFound when no request uses the key.
	FindRequestByIdempotencyKey(ctx context.Context, accountID, key string) (*domain.TransactionRequest, error)

	// ListRequests returns requests newest first.
	ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.TransactionRequest, error)

	// ListApprovedBefore returns requests still approved whose approval is older
	// than cutoff, ordered by request ID and starting after afterID.
	ListApprovedBefore(ctx context.Context, cutoff time.Time, afterID string, limit int) ([]domain.TransactionRequest, error)
}

// RequestWriter defines write operations for transaction requests outside a unit of work.
type RequestWriter interface {
	// SaveRequest inserts a new request. A reused (account, idempotency key)
	// yields apperrors.ErrDuplicate.
	SaveRequest(ctx context.Context, req domain.TransactionRequest) error
}

// RequestRepositoryFacade combines all request-related repository interfaces
type RequestRepositoryFacade interface {
	RequestReader
	RequestWriter
}

// PositionReader defines read operations for investment positions.
type PositionReader interface {
	FindPositionByID(ctx context.Context, positionID string) (*domain.InvestmentPosition, error)
	ListPositionsByAccount(ctx context.Context, accountID string) ([]domain.InvestmentPosition, error)
	// ListRunningPositions pages running positions by position ID, starting after afterID.
	ListRunningPositions(ctx context.Context, afterID string, limit int) ([]domain.InvestmentPosition, error)
}

// PlanRepositoryFacade defines storage for investment plans.
type PlanRepositoryFacade interface {
	FindPlanByID(ctx context.Context, planID string) (*domain.InvestmentPlan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]domain.InvestmentPlan, error)
	SavePlan(ctx context.Context, plan domain.InvestmentPlan) error
}

// AddressPoolRepository backs the deposit address allocator.
type AddressPoolRepository interface {
	// FindAssignment returns apperrors.ErrNotFound when the pair has no address yet.
	FindAssignment(ctx context.Context, accountID string, asset domain.Currency) (*domain.DepositAddress, error)

	// ClaimAddress atomically assigns an unassigned pool address to the pair,
	// or returns the existing assignment if a concurrent caller won.
	ClaimAddress(ctx context.Context, accountID string, asset domain.Currency, at time.Time) (*domain.DepositAddress, error)

	// AddPoolAddresses provisions unassigned addresses; duplicates are ignored.
	AddPoolAddresses(ctx context.Context, asset domain.Currency, addresses []string) (int, error)
}
