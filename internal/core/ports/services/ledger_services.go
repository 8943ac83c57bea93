package services

import (
	"context"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/SscSPs/coinvest_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// BalanceProjectorSvc derives balances from the ledger.
type BalanceProjectorSvc interface {
	// GetBalance folds every entry for the pair. The result is exact.
	GetBalance(ctx context.Context, accountID string, currency domain.Currency) (int64, error)

	// GetBalances returns the balance of every supported currency.
	GetBalances(ctx context.Context, accountID string) (map[domain.Currency]int64, error)

	// InvalidateBalances drops cached balances; it is registered as a ledger append hook.
	InvalidateBalances(ctx context.Context, keys []domain.BalanceKey)
}

// TransactionRequesterSvc creates pending requests.
type TransactionRequesterSvc interface {
	RequestDeposit(ctx context.Context, actor domain.Actor, req dto.CreateDepositRequest) (*domain.TransactionRequest, error)
	RequestWithdrawal(ctx context.Context, actor domain.Actor, req dto.CreateWithdrawalRequest) (*domain.TransactionRequest, error)
	RequestInvestment(ctx context.Context, actor domain.Actor, req dto.CreateInvestmentRequest) (*domain.TransactionRequest, error)
}

// TransactionSettlerSvc produces ledger entries.
type TransactionSettlerSvc interface {
	// Settle turns an approved request into ledger entries, re-checking funds
	// for debit kinds. On shortfall the request is rejected and
	// apperrors.ErrInsufficientFunds is returned.
	Settle(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, []domain.LedgerEntry, error)

	// AdjustBalance appends an admin correction entry.
	AdjustBalance(ctx context.Context, actor domain.Actor, req dto.AdjustBalanceRequest) (*domain.LedgerEntry, error)
}

// TransactionReaderSvc exposes requests and ledger history.
type TransactionReaderSvc interface {
	GetRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, error)
	ListRequests(ctx context.Context, actor domain.Actor, params dto.ListRequestsParams) ([]domain.TransactionRequest, error)
	ListLedger(ctx context.Context, actor domain.Actor, accountID string, params dto.ListLedgerParams) (*dto.ListLedgerResponse, error)
}

// PositionLifecycleSvc mutates investment positions through the ledger.
type PositionLifecycleSvc interface {
	// AccrueReturn pays every period due at now and completes the position
	// when its duration has elapsed.
	AccrueReturn(ctx context.Context, positionID string, now time.Time) (*domain.InvestmentPosition, error)

	// CancelPosition stops a running position and returns its principal.
	CancelPosition(ctx context.Context, actor domain.Actor, positionID string) (*domain.InvestmentPosition, error)
}

// AutoApprover is consulted right after a request is created.
type AutoApprover interface {
	AutoApprove(ctx context.Context, req *domain.TransactionRequest) (*domain.TransactionRequest, error)
}

// TransactionCoordinatorSvc combines all coordinator interfaces
type TransactionCoordinatorSvc interface {
	TransactionRequesterSvc
	TransactionSettlerSvc
	TransactionReaderSvc
	PositionLifecycleSvc

	SetAutoApprover(approver AutoApprover)
}

// ApprovalWorkflowSvc is the state machine for admin-mediated requests.
type ApprovalWorkflowSvc interface {
	AutoApprover

	Approve(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, []domain.LedgerEntry, error)
	Reject(ctx context.Context, actor domain.Actor, requestID string, reason string) (*domain.TransactionRequest, error)
	Cancel(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, error)

	// RetrySettlement re-drives a request left approved by an infrastructure failure.
	RetrySettlement(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, []domain.LedgerEntry, error)

	// SweepApproved re-drives every request approved longer than olderThan ago.
	SweepApproved(ctx context.Context, olderThan time.Duration) (int, error)
}

// InvestmentSvc manages plans and positions.
type InvestmentSvc interface {
	ListPlans(ctx context.Context, activeOnly bool) ([]domain.InvestmentPlan, error)
	GetPlan(ctx context.Context, planID string) (*domain.InvestmentPlan, error)
	CreatePlan(ctx context.Context, actor domain.Actor, req dto.CreatePlanRequest) (*domain.InvestmentPlan, error)
	ListPositions(ctx context.Context, actor domain.Actor, accountID string) ([]domain.InvestmentPosition, error)

	// AccrueAll runs accrual for every running position and returns how many paid out.
	AccrueAll(ctx context.Context, now time.Time) (int, error)
}

// AddressAllocatorSvc assigns or reuses a deposit address per (account, asset).
type AddressAllocatorSvc interface {
	GetOrCreateAddress(ctx context.Context, accountID string, asset domain.Currency) (string, error)
	ProvisionAddresses(ctx context.Context, actor domain.Actor, req dto.ProvisionAddressesRequest) (int, error)
}

// ExchangeRateSvc serves stored display rates.
type ExchangeRateSvc interface {
	// Equivalent converts an amount in minor units of from into major units of to.
	Equivalent(ctx context.Context, amount int64, from, to domain.Currency) (decimal.Decimal, error)
	SetRate(ctx context.Context, actor domain.Actor, req dto.SetExchangeRateRequest) (*domain.ExchangeRate, error)
}

// AccountSvc keeps the ledger's view of accounts known to the auth layer.
type AccountSvc interface {
	// EnsureAccount records the actor's account on first sight and refreshes its role.
	EnsureAccount(ctx context.Context, actor domain.Actor) (*domain.Account, error)
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
}

// EventPublisher delivers domain events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event)
}
