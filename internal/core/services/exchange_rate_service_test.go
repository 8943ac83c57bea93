package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/core/services"
	"github.com/SscSPs/coinvest_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) FindExchangeRate(ctx context.Context, from, to domain.Currency) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

// --- Test Suite ---
type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockExchangeRateRepository
	service      portssvc.ExchangeRateSvc
	now          time.Time
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.now = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	suite.service = services.NewExchangeRateService(suite.mockRateRepo,
		services.WithClock(func() time.Time { return suite.now }))
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}

func (suite *ExchangeRateServiceTestSuite) TestEquivalent_SameCurrency() {
	got, err := suite.service.Equivalent(context.Background(), 150000000, domain.BTC, domain.BTC)
	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("1.5").Equal(got))
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindExchangeRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestEquivalent_DirectRate() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindExchangeRate", ctx, domain.BTC, domain.USD).
		Return(&domain.ExchangeRate{FromCurrency: domain.BTC, ToCurrency: domain.USD, Rate: decimal.NewFromInt(60000)}, nil).Once()

	got, err := suite.service.Equivalent(ctx, 50000000, domain.BTC, domain.USD)
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(30000).Equal(got), got.String())
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestEquivalent_InverseRate() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindExchangeRate", ctx, domain.USD, domain.EUR).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindExchangeRate", ctx, domain.EUR, domain.USD).
		Return(&domain.ExchangeRate{FromCurrency: domain.EUR, ToCurrency: domain.USD, Rate: decimal.RequireFromString("1.25")}, nil).Once()

	got, err := suite.service.Equivalent(ctx, 1000, domain.USD, domain.EUR)
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(8).Equal(got), got.String())
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestEquivalent_NoRate() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindExchangeRate", ctx, domain.ETH, domain.EUR).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindExchangeRate", ctx, domain.EUR, domain.ETH).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Equivalent(ctx, 1, domain.ETH, domain.EUR)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ExchangeRateServiceTestSuite) TestEquivalent_RepositoryFailure() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindExchangeRate", ctx, domain.ETH, domain.USD).
		Return(nil, fmt.Errorf("%w: timeout", apperrors.ErrStoreUnavailable)).Once()

	_, err := suite.service.Equivalent(ctx, 1, domain.ETH, domain.USD)
	suite.True(apperrors.IsRetryable(err))
	suite.mockRateRepo.AssertNumberOfCalls(suite.T(), "FindExchangeRate", 1)
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate() {
	ctx := context.Background()
	expected := domain.ExchangeRate{
		FromCurrency: domain.BTC,
		ToCurrency:   domain.USD,
		Rate:         decimal.NewFromInt(61000),
		UpdatedAt:    suite.now,
		UpdatedBy:    "admin-1",
	}
	suite.mockRateRepo.On("SaveExchangeRate", ctx, expected).Return(nil).Once()

	rate, err := suite.service.SetRate(ctx, adminActor, dto.SetExchangeRateRequest{
		FromCurrency: "btc",
		ToCurrency:   "USD",
		Rate:         decimal.NewFromInt(61000),
	})
	suite.Require().NoError(err)
	suite.Equal(expected, *rate)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate_Validation() {
	ctx := context.Background()
	tests := []struct {
		name    string
		actor   domain.Actor
		req     dto.SetExchangeRateRequest
		wantErr error
	}{
		{"non admin", userActor, dto.SetExchangeRateRequest{FromCurrency: "BTC", ToCurrency: "USD", Rate: decimal.NewFromInt(1)}, apperrors.ErrForbidden},
		{"same currency", adminActor, dto.SetExchangeRateRequest{FromCurrency: "USD", ToCurrency: "USD", Rate: decimal.NewFromInt(1)}, apperrors.ErrValidation},
		{"zero rate", adminActor, dto.SetExchangeRateRequest{FromCurrency: "BTC", ToCurrency: "USD", Rate: decimal.Zero}, apperrors.ErrValidation},
		{"unknown currency", adminActor, dto.SetExchangeRateRequest{FromCurrency: "XRP", ToCurrency: "USD", Rate: decimal.NewFromInt(1)}, apperrors.ErrUnsupportedCurrency},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.SetRate(ctx, tt.actor, tt.req)
			suite.ErrorIs(err, tt.wantErr)
		})
	}
	suite.mockRateRepo.AssertNotCalled(suite.T(), "SaveExchangeRate", mock.Anything, mock.Anything)
}
