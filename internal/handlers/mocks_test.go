package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) EnsureAccount(ctx context.Context, actor domain.Actor) (*domain.Account, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

var _ portssvc.AccountSvc = (*MockAccountService)(nil)

// --- Mock BalanceProjector ---
type MockBalanceProjector struct {
	mock.Mock
}

func (m *MockBalanceProjector) GetBalance(ctx context.Context, accountID string, currency domain.Currency) (int64, error) {
	args := m.Called(ctx, accountID, currency)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceProjector) GetBalances(ctx context.Context, accountID string) (map[domain.Currency]int64, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Currency]int64), args.Error(1)
}

func (m *MockBalanceProjector) InvalidateBalances(ctx context.Context, keys []domain.BalanceKey) {
	m.Called(ctx, keys)
}

var _ portssvc.BalanceProjectorSvc = (*MockBalanceProjector)(nil)

// --- Mock TransactionCoordinator ---
type MockCoordinator struct {
	mock.Mock
}

func (m *MockCoordinator) requestResult(args mock.Arguments) (*domain.TransactionRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionRequest), args.Error(1)
}

func (m *MockCoordinator) RequestDeposit(ctx context.Context, actor domain.Actor, req dto.CreateDepositRequest) (*domain.TransactionRequest, error) {
	return m.requestResult(m.Called(ctx, actor, req))
}

func (m *MockCoordinator) RequestWithdrawal(ctx context.Context, actor domain.Actor, req dto.CreateWithdrawalRequest) (*domain.TransactionRequest, error) {
	return m.requestResult(m.Called(ctx, actor, req))
}

func (m *MockCoordinator) RequestInvestment(ctx context.Context, actor domain.Actor, req dto.CreateInvestmentRequest) (*domain.TransactionRequest, error) {
	return m.requestResult(m.Called(ctx, actor, req))
}

func (m *MockCoordinator) Settle(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, []domain.LedgerEntry, error) {
	args := m.Called(ctx, actor, requestID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.TransactionRequest), args.Get(1).([]domain.LedgerEntry), args.Error(2)
}

func (m *MockCoordinator) AdjustBalance(ctx context.Context, actor domain.Actor, req dto.AdjustBalanceRequest) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockCoordinator) GetRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, error) {
	return m.requestResult(m.Called(ctx, actor, requestID))
}

func (m *MockCoordinator) ListRequests(ctx context.Context, actor domain.Actor, params dto.ListRequestsParams) ([]domain.TransactionRequest, error) {
	args := m.Called(ctx, actor, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionRequest), args.Error(1)
}

func (m *MockCoordinator) ListLedger(ctx context.Context, actor domain.Actor, accountID string, params dto.ListLedgerParams) (*dto.ListLedgerResponse, error) {
	args := m.Called(ctx, actor, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListLedgerResponse), args.Error(1)
}

func (m *MockCoordinator) AccrueReturn(ctx context.Context, positionID string, now time.Time) (*domain.InvestmentPosition, error) {
	args := m.Called(ctx, positionID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvestmentPosition), args.Error(1)
}

func (m *MockCoordinator) CancelPosition(ctx context.Context, actor domain.Actor, positionID string) (*domain.InvestmentPosition, error) {
	args := m.Called(ctx, actor, positionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvestmentPosition), args.Error(1)
}

func (m *MockCoordinator) SetAutoApprover(approver portssvc.AutoApprover) {
	m.Called(approver)
}

var _ portssvc.TransactionCoordinatorSvc = (*MockCoordinator)(nil)

// --- Mock ApprovalWorkflow ---
type MockWorkflow struct {
	mock.Mock
}

func (m *MockWorkflow) settlement(args mock.Arguments) (*domain.TransactionRequest, []domain.LedgerEntry, error) {
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.TransactionRequest), args.Get(1).([]domain.LedgerEntry), args.Error(2)
}

func (m *MockWorkflow) AutoApprove(ctx context.Context, req *domain.TransactionRequest) (*domain.TransactionRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionRequest), args.Error(1)
}

func (m *MockWorkflow) Approve(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, []domain.LedgerEntry, error) {
	return m.settlement(m.Called(ctx, actor, requestID))
}

func (m *MockWorkflow) Reject(ctx context.Context, actor domain.Actor, requestID string, reason string) (*domain.TransactionRequest, error) {
	args := m.Called(ctx, actor, requestID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionRequest), args.Error(1)
}

func (m *MockWorkflow) Cancel(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, error) {
	args := m.Called(ctx, actor, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionRequest), args.Error(1)
}

func (m *MockWorkflow) RetrySettlement(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, []domain.LedgerEntry, error) {
	return m.settlement(m.Called(ctx, actor, requestID))
}

func (m *MockWorkflow) SweepApproved(ctx context.Context, olderThan time.Duration) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

var _ portssvc.ApprovalWorkflowSvc = (*MockWorkflow)(nil)

// --- Mock InvestmentService ---
type MockInvestmentService struct {
	mock.Mock
}

func (m *MockInvestmentService) ListPlans(ctx context.Context, activeOnly bool) ([]domain.InvestmentPlan, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvestmentPlan), args.Error(1)
}

func (m *MockInvestmentService) GetPlan(ctx context.Context, planID string) (*domain.InvestmentPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvestmentPlan), args.Error(1)
}

func (m *MockInvestmentService) CreatePlan(ctx context.Context, actor domain.Actor, req dto.CreatePlanRequest) (*domain.InvestmentPlan, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvestmentPlan), args.Error(1)
}

func (m *MockInvestmentService) ListPositions(ctx context.Context, actor domain.Actor, accountID string) ([]domain.InvestmentPosition, error) {
	args := m.Called(ctx, actor, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvestmentPosition), args.Error(1)
}

func (m *MockInvestmentService) AccrueAll(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

var _ portssvc.InvestmentSvc = (*MockInvestmentService)(nil)

// --- Mock AddressAllocator ---
type MockAddressAllocator struct {
	mock.Mock
}

func (m *MockAddressAllocator) GetOrCreateAddress(ctx context.Context, accountID string, asset domain.Currency) (string, error) {
	args := m.Called(ctx, accountID, asset)
	return args.String(0), args.Error(1)
}

func (m *MockAddressAllocator) ProvisionAddresses(ctx context.Context, actor domain.Actor, req dto.ProvisionAddressesRequest) (int, error) {
	args := m.Called(ctx, actor, req)
	return args.Int(0), args.Error(1)
}

var _ portssvc.AddressAllocatorSvc = (*MockAddressAllocator)(nil)

// --- Mock ExchangeRateService ---
type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) Equivalent(ctx context.Context, amount int64, from, to domain.Currency) (decimal.Decimal, error) {
	args := m.Called(ctx, amount, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRateService) SetRate(ctx context.Context, actor domain.Actor, req dto.SetExchangeRateRequest) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

var _ portssvc.ExchangeRateSvc = (*MockRateService)(nil)
