package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/dto"
	"github.com/SscSPs/coinvest_backend/internal/handlers"
	"github.com/SscSPs/coinvest_backend/internal/platform/config"
	"github.com/SscSPs/coinvest_backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

type HandlerTestSuite struct {
	suite.Suite
	router  *gin.Engine
	cfg     *config.Config
	account *domain.Account

	accounts    *MockAccountService
	balances    *MockBalanceProjector
	coordinator *MockCoordinator
	workflow    *MockWorkflow
	investments *MockInvestmentService
	addresses   *MockAddressAllocator
	rates       *MockRateService
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (suite *HandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(handlers.RegisterValidators())
}

func (suite *HandlerTestSuite) SetupTest() {
	suite.cfg = &config.Config{
		JWTSecret:       "test-secret-key-that-is-long-enough",
		JWTIssuer:       "coinvest-test",
		DisplayCurrency: "USD",
		IsProduction:    true,
	}

	suite.accounts = new(MockAccountService)
	suite.balances = new(MockBalanceProjector)
	suite.coordinator = new(MockCoordinator)
	suite.workflow = new(MockWorkflow)
	suite.investments = new(MockInvestmentService)
	suite.addresses = new(MockAddressAllocator)
	suite.rates = new(MockRateService)

	// tests flip IsActive on this pointer before sending
	suite.account = &domain.Account{AccountID: "acc-user", Role: domain.RoleUser, IsActive: true}
	suite.accounts.On("EnsureAccount", mock.Anything, mock.Anything).Return(suite.account, nil).Maybe()

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, suite.cfg, &portssvc.ServiceContainer{
		Account:     suite.accounts,
		Balance:     suite.balances,
		Coordinator: suite.coordinator,
		Workflow:    suite.workflow,
		Investment:  suite.investments,
		Address:     suite.addresses,
		Rate:        suite.rates,
	}, nil)
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.coordinator.AssertExpectations(suite.T())
	suite.workflow.AssertExpectations(suite.T())
	suite.balances.AssertExpectations(suite.T())
	suite.investments.AssertExpectations(suite.T())
	suite.addresses.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) token(accountID string, role domain.Role) string {
	tok, err := utils.GenerateAccessToken(accountID, string(role), suite.cfg.JWTSecret, time.Hour, suite.cfg.JWTIssuer)
	suite.Require().NoError(err)
	return tok
}

func (suite *HandlerTestSuite) do(method, url, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var payload bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, url, &payload)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) decodeError(w *httptest.ResponseRecorder) errorBody {
	var body errorBody
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func userActor() domain.Actor {
	return domain.Actor{AccountID: "acc-user", Role: domain.RoleUser}
}

func adminActor() domain.Actor {
	return domain.Actor{AccountID: "acc-admin", Role: domain.RoleAdmin}
}

func pendingRequest(kind domain.RequestKind, currency domain.Currency, amount int64) *domain.TransactionRequest {
	return &domain.TransactionRequest{
		RequestID: uuid.NewString(),
		AccountID: "acc-user",
		Kind:      kind,
		Currency:  currency,
		Amount:    amount,
		Status:    domain.StatusPending,
		AuditFields: domain.AuditFields{
			CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			CreatedBy: "acc-user",
		},
	}
}

// --- auth and account gate ---

func (suite *HandlerTestSuite) TestMissingToken_Unauthorized() {
	w := suite.do(http.MethodGet, "/api/v1/balances", "", nil)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("unauthorized", suite.decodeError(w).Reason)
}

func (suite *HandlerTestSuite) TestTokenFromOtherIssuer_Unauthorized() {
	tok, err := utils.GenerateAccessToken("acc-user", "user", suite.cfg.JWTSecret, time.Hour, "someone-else")
	suite.Require().NoError(err)

	w := suite.do(http.MethodGet, "/api/v1/balances", tok, nil)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestInactiveAccount_Forbidden() {
	suite.account.IsActive = false

	w := suite.do(http.MethodGet, "/api/v1/balances", suite.token("acc-user", domain.RoleUser), nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("forbidden", suite.decodeError(w).Reason)
	suite.balances.AssertNotCalled(suite.T(), "GetBalances", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestGetDepositAddress() {
	suite.addresses.On("GetOrCreateAddress", mock.Anything, "acc-user", domain.BTC).Return("bc1qexample", nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/deposit-addresses/btc", suite.token("acc-user", domain.RoleUser), nil)

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.DepositAddressResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("BTC", resp.Asset)
	suite.Equal("bc1qexample", resp.Address)
}

func (suite *HandlerTestSuite) TestGetDepositAddress_PoolExhausted() {
	suite.addresses.On("GetOrCreateAddress", mock.Anything, "acc-user", domain.ETH).
		Return("", fmt.Errorf("%w: no free ETH address", apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodGet, "/api/v1/deposit-addresses/ETH", suite.token("acc-user", domain.RoleUser), nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("not_found", suite.decodeError(w).Reason)
}

// --- requests ---

func (suite *HandlerTestSuite) TestCreateDeposit_UsesIdempotencyHeader() {
	created := pendingRequest(domain.KindDeposit, domain.BTC, 100_000)
	suite.coordinator.On("RequestDeposit", mock.Anything, userActor(), mock.MatchedBy(func(r dto.CreateDepositRequest) bool {
		return r.IdempotencyKey == "dep-key-1" && r.Amount == 100_000 && r.Currency == "btc"
	})).Return(created, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/requests/deposits", suite.token("acc-user", domain.RoleUser),
		map[string]any{"currency": "btc", "amount": 100_000},
		"Idempotency-Key", "dep-key-1")

	suite.Require().Equal(http.StatusCreated, w.Code)
	var resp dto.TransactionRequestResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(created.RequestID, resp.RequestID)
	suite.Equal("pending", resp.Status)
	suite.Equal("0.00100000", resp.DisplayAmount)
}

func (suite *HandlerTestSuite) TestCreateDeposit_BodyKeyWinsOverHeader() {
	suite.coordinator.On("RequestDeposit", mock.Anything, userActor(), mock.MatchedBy(func(r dto.CreateDepositRequest) bool {
		return r.IdempotencyKey == "from-body"
	})).Return(pendingRequest(domain.KindDeposit, domain.USD, 500), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/requests/deposits", suite.token("acc-user", domain.RoleUser),
		map[string]any{"currency": "USD", "amount": 500, "idempotencyKey": "from-body"},
		"Idempotency-Key", "from-header")

	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *HandlerTestSuite) TestCreateDeposit_UnsupportedCurrency() {
	w := suite.do(http.MethodPost, "/api/v1/requests/deposits", suite.token("acc-user", domain.RoleUser),
		map[string]any{"currency": "DOGE", "amount": 100})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("validation_failed", suite.decodeError(w).Reason)
	suite.coordinator.AssertNotCalled(suite.T(), "RequestDeposit", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCreateDeposit_NonPositiveAmount() {
	w := suite.do(http.MethodPost, "/api/v1/requests/deposits", suite.token("acc-user", domain.RoleUser),
		map[string]any{"currency": "USD", "amount": -5})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCreateWithdrawal_InsufficientFunds() {
	suite.coordinator.On("RequestWithdrawal", mock.Anything, userActor(), mock.AnythingOfType("dto.CreateWithdrawalRequest")).
		Return(nil, fmt.Errorf("%w: balance 50 < 60", apperrors.ErrInsufficientFunds)).Once()

	w := suite.do(http.MethodPost, "/api/v1/requests/withdrawals", suite.token("acc-user", domain.RoleUser),
		map[string]any{"currency": "USDT", "amount": 60, "destination": "0xabc"})

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("insufficient_funds", suite.decodeError(w).Reason)
}

func (suite *HandlerTestSuite) TestCreateWithdrawal_RequiresDestination() {
	w := suite.do(http.MethodPost, "/api/v1/requests/withdrawals", suite.token("acc-user", domain.RoleUser),
		map[string]any{"currency": "USDT", "amount": 60})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCreateInvestment_AmountOutOfBounds() {
	suite.coordinator.On("RequestInvestment", mock.Anything, userActor(), mock.AnythingOfType("dto.CreateInvestmentRequest")).
		Return(nil, apperrors.ErrAmountOutOfBounds).Once()

	w := suite.do(http.MethodPost, "/api/v1/requests/investments", suite.token("acc-user", domain.RoleUser),
		map[string]any{"planID": "plan-1", "currency": "USD", "amount": 1})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("amount_out_of_bounds", suite.decodeError(w).Reason)
}

func (suite *HandlerTestSuite) TestGetRequest_NotFound() {
	suite.coordinator.On("GetRequest", mock.Anything, userActor(), "missing").
		Return(nil, fmt.Errorf("%w: request missing", apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodGet, "/api/v1/requests/missing", suite.token("acc-user", domain.RoleUser), nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestGetRequest_StoreUnavailableHidesCause() {
	suite.coordinator.On("GetRequest", mock.Anything, userActor(), "req-1").
		Return(nil, fmt.Errorf("%w: dial tcp 10.0.0.5:5432: timeout", apperrors.ErrStoreUnavailable)).Once()

	w := suite.do(http.MethodGet, "/api/v1/requests/req-1", suite.token("acc-user", domain.RoleUser), nil)

	suite.Equal(http.StatusServiceUnavailable, w.Code)
	body := suite.decodeError(w)
	suite.Equal("store_unavailable", body.Reason)
	suite.NotContains(body.Error, "10.0.0.5")
}

func (suite *HandlerTestSuite) TestGetRequest_UnknownErrorIs500() {
	suite.coordinator.On("GetRequest", mock.Anything, userActor(), "req-1").
		Return(nil, errors.New("boom")).Once()

	w := suite.do(http.MethodGet, "/api/v1/requests/req-1", suite.token("acc-user", domain.RoleUser), nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal("internal_error", suite.decodeError(w).Reason)
}

func (suite *HandlerTestSuite) TestListRequests_DefaultsAndFilters() {
	suite.coordinator.On("ListRequests", mock.Anything, userActor(), dto.ListRequestsParams{
		Status: "pending",
		Limit:  20,
	}).Return([]domain.TransactionRequest{*pendingRequest(domain.KindDeposit, domain.EUR, 1000)}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/requests?status=pending", suite.token("acc-user", domain.RoleUser), nil)

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp []dto.TransactionRequestResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp, 1)
}

func (suite *HandlerTestSuite) TestListRequests_InvalidStatus() {
	w := suite.do(http.MethodGet, "/api/v1/requests?status=lost", suite.token("acc-user", domain.RoleUser), nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCancelRequest_AlreadyResolved() {
	suite.workflow.On("Cancel", mock.Anything, userActor(), "req-1").Return(nil, apperrors.ErrAlreadyResolved).Once()

	w := suite.do(http.MethodPost, "/api/v1/requests/req-1/cancel", suite.token("acc-user", domain.RoleUser), nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("already_resolved", suite.decodeError(w).Reason)
}

// --- balances and ledger ---

func (suite *HandlerTestSuite) TestGetBalances_WithEquivalents() {
	suite.balances.On("GetBalances", mock.Anything, "acc-user").
		Return(map[domain.Currency]int64{domain.BTC: 150_000_000, domain.USD: 1234}, nil).Once()
	suite.rates.On("Equivalent", mock.Anything, int64(150_000_000), domain.BTC, domain.USD).
		Return(decimal.RequireFromString("97500.123"), nil).Once()
	suite.rates.On("Equivalent", mock.Anything, int64(1234), domain.USD, domain.USD).
		Return(decimal.RequireFromString("12.34"), nil).Once()
	suite.rates.On("Equivalent", mock.Anything, mock.Anything, mock.Anything, domain.USD).
		Return(decimal.Zero, fmt.Errorf("%w: no rate", apperrors.ErrNotFound))

	w := suite.do(http.MethodGet, "/api/v1/balances", suite.token("acc-user", domain.RoleUser), nil)

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.BalancesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("acc-user", resp.AccountID)
	suite.Require().Len(resp.Balances, len(domain.AllCurrencies()))

	byCurrency := map[string]dto.BalanceResponse{}
	for _, b := range resp.Balances {
		byCurrency[b.Currency] = b
	}
	btc := byCurrency["BTC"]
	suite.Equal(int64(150_000_000), btc.Balance)
	suite.Equal("1.50000000", btc.DisplayBalance)
	suite.Require().NotNil(btc.EquivalentValue)
	suite.Equal("97500.12", *btc.EquivalentValue)
	suite.Equal("USD", btc.EquivalentIn)

	suite.Equal(int64(0), byCurrency["ETH"].Balance)
	suite.Nil(byCurrency["ETH"].EquivalentValue)
}

func (suite *HandlerTestSuite) TestGetBalances_OtherAccountForbiddenForUser() {
	w := suite.do(http.MethodGet, "/api/v1/balances?accountID=acc-other", suite.token("acc-user", domain.RoleUser), nil)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestListLedger_PassesCursor() {
	next := "tok-2"
	suite.coordinator.On("ListLedger", mock.Anything, userActor(), "acc-user", dto.ListLedgerParams{
		Currency:  "BTC",
		Limit:     50,
		NextToken: "tok-1",
	}).Return(&dto.ListLedgerResponse{Entries: []dto.LedgerEntryResponse{}, NextToken: &next}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/ledger?currency=BTC&nextToken=tok-1", suite.token("acc-user", domain.RoleUser), nil)

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.ListLedgerResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().NotNil(resp.NextToken)
	suite.Equal("tok-2", *resp.NextToken)
}

// --- admin ---

func (suite *HandlerTestSuite) TestAdminRoutes_ForbiddenForUser() {
	routes := []struct{ method, url string }{
		{http.MethodGet, "/api/v1/admin/requests"},
		{http.MethodPost, "/api/v1/admin/requests/req-1/approve"},
		{http.MethodPost, "/api/v1/admin/requests/req-1/reject"},
		{http.MethodPost, "/api/v1/admin/requests/req-1/settle"},
		{http.MethodPost, "/api/v1/admin/adjustments"},
		{http.MethodPost, "/api/v1/admin/positions/pos-1/cancel"},
		{http.MethodPost, "/api/v1/admin/plans"},
		{http.MethodPut, "/api/v1/admin/exchange-rates"},
		{http.MethodPost, "/api/v1/admin/deposit-addresses"},
	}
	tok := suite.token("acc-user", domain.RoleUser)
	for _, r := range routes {
		w := suite.do(r.method, r.url, tok, map[string]any{})
		suite.Equal(http.StatusForbidden, w.Code, "%s %s", r.method, r.url)
	}
}

func (suite *HandlerTestSuite) TestAdminApprove_ReturnsSettlement() {
	req := pendingRequest(domain.KindDeposit, domain.BTC, 100_000)
	req.Status = domain.StatusSettled
	entries := []domain.LedgerEntry{{
		EntryID:     uuid.NewString(),
		AccountID:   req.AccountID,
		Currency:    domain.BTC,
		Amount:      100_000,
		Direction:   domain.Credit,
		SourceKind:  domain.SourceDeposit,
		ReferenceID: req.RequestID,
	}}
	suite.workflow.On("Approve", mock.Anything, adminActor(), req.RequestID).Return(req, entries, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/admin/requests/"+req.RequestID+"/approve", suite.token("acc-admin", domain.RoleAdmin), nil)

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.SettlementResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("settled", resp.Request.Status)
	suite.Require().Len(resp.Entries, 1)
	suite.Equal(req.RequestID, resp.Entries[0].ReferenceID)
	suite.Equal("credit", resp.Entries[0].Direction)
}

func (suite *HandlerTestSuite) TestAdminApprove_ShortfallIsConflict() {
	suite.workflow.On("Approve", mock.Anything, adminActor(), "req-1").Return(nil, nil, apperrors.ErrInsufficientFunds).Once()

	w := suite.do(http.MethodPost, "/api/v1/admin/requests/req-1/approve", suite.token("acc-admin", domain.RoleAdmin), nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("insufficient_funds", suite.decodeError(w).Reason)
}

func (suite *HandlerTestSuite) TestAdminApprove_StoreFailureIsRetryable() {
	suite.workflow.On("Approve", mock.Anything, adminActor(), "req-1").Return(nil, nil, apperrors.ErrStoreUnavailable).Once()

	w := suite.do(http.MethodPost, "/api/v1/admin/requests/req-1/approve", suite.token("acc-admin", domain.RoleAdmin), nil)

	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func (suite *HandlerTestSuite) TestAdminReject_RequiresReason() {
	w := suite.do(http.MethodPost, "/api/v1/admin/requests/req-1/reject", suite.token("acc-admin", domain.RoleAdmin), map[string]any{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.workflow.AssertNotCalled(suite.T(), "Reject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestAdminReject() {
	rejected := pendingRequest(domain.KindWithdrawal, domain.USDT, 60)
	rejected.Status = domain.StatusRejected
	rejected.RejectionReason = domain.ReasonAdminRejected
	rejected.RejectionDetail = "destination flagged"
	suite.workflow.On("Reject", mock.Anything, adminActor(), rejected.RequestID, "destination flagged").Return(rejected, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/admin/requests/"+rejected.RequestID+"/reject", suite.token("acc-admin", domain.RoleAdmin),
		map[string]any{"reason": "destination flagged"})

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.TransactionRequestResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("rejected", resp.Status)
	suite.Equal("admin_rejected", resp.RejectionReason)
}

func (suite *HandlerTestSuite) TestAdminAdjust_Created() {
	entry := &domain.LedgerEntry{
		EntryID:    uuid.NewString(),
		AccountID:  "acc-user",
		Currency:   domain.EUR,
		Amount:     250,
		Direction:  domain.Debit,
		SourceKind: domain.SourceAdminAdjustment,
		Memo:       "chargeback",
	}
	suite.coordinator.On("AdjustBalance", mock.Anything, adminActor(), dto.AdjustBalanceRequest{
		AccountID: "acc-user",
		Currency:  "EUR",
		Amount:    250,
		Direction: domain.Debit,
		Memo:      "chargeback",
	}).Return(entry, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/admin/adjustments", suite.token("acc-admin", domain.RoleAdmin), map[string]any{
		"accountID": "acc-user", "currency": "EUR", "amount": 250, "direction": "debit", "memo": "chargeback",
	})

	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *HandlerTestSuite) TestAdminAdjust_InvalidDirection() {
	w := suite.do(http.MethodPost, "/api/v1/admin/adjustments", suite.token("acc-admin", domain.RoleAdmin), map[string]any{
		"accountID": "acc-user", "currency": "EUR", "amount": 250, "direction": "sideways", "memo": "x",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestAdminProvisionAddresses() {
	suite.addresses.On("ProvisionAddresses", mock.Anything, adminActor(), dto.ProvisionAddressesRequest{
		Asset:     "BTC",
		Addresses: []string{"bc1qa", "bc1qb"},
	}).Return(1, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/admin/deposit-addresses", suite.token("acc-admin", domain.RoleAdmin), map[string]any{
		"asset": "BTC", "addresses": []string{"bc1qa", "bc1qb"},
	})

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.ProvisionAddressesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(1, resp.Added)
}

// --- public ---

func (suite *HandlerTestSuite) TestHealthAndHome() {
	w := suite.do(http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"displayCurrency":"USD"`)
}

// --- investments ---

func (suite *HandlerTestSuite) TestListPlans_AllOnlyHonouredForAdmins() {
	suite.investments.On("ListPlans", mock.Anything, true).Return([]domain.InvestmentPlan{}, nil).Once()
	suite.investments.On("ListPlans", mock.Anything, false).Return([]domain.InvestmentPlan{}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/plans?all=true", suite.token("acc-user", domain.RoleUser), nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/plans?all=true", suite.token("acc-admin", domain.RoleAdmin), nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestGetPlan_NotFound() {
	suite.investments.On("GetPlan", mock.Anything, "plan-x").Return(nil, apperrors.ErrPlanNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/plans/plan-x", suite.token("acc-user", domain.RoleUser), nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("plan_not_found", suite.decodeError(w).Reason)
}
