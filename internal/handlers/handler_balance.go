package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/dto"
	"github.com/SscSPs/coinvest_backend/internal/middleware"
	"github.com/SscSPs/coinvest_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// balanceHandler serves balances and ledger history.
type balanceHandler struct {
	balances        portssvc.BalanceProjectorSvc
	coordinator     portssvc.TransactionCoordinatorSvc
	rates           portssvc.ExchangeRateSvc
	displayCurrency domain.Currency // empty disables equivalents
}

func newBalanceHandler(balances portssvc.BalanceProjectorSvc, coordinator portssvc.TransactionCoordinatorSvc, rates portssvc.ExchangeRateSvc, displayCurrency string) *balanceHandler {
	display, err := domain.ParseCurrency(displayCurrency)
	if err != nil {
		display = ""
	}
	return &balanceHandler{balances: balances, coordinator: coordinator, rates: rates, displayCurrency: display}
}

func registerBalanceRoutes(rg *gin.RouterGroup, balances portssvc.BalanceProjectorSvc, coordinator portssvc.TransactionCoordinatorSvc, rates portssvc.ExchangeRateSvc, displayCurrency string) {
	h := newBalanceHandler(balances, coordinator, rates, displayCurrency)

	rg.GET("/balances", h.getBalances)
	rg.GET("/ledger", h.listLedger)
}

// targetAccount resolves ?accountID= for admins and defaults to the caller.
// Authorization is enforced by the services.
func targetAccount(c *gin.Context, actor domain.Actor) string {
	if id := c.Query("accountID"); id != "" {
		return id
	}
	return actor.AccountID
}

// getBalances godoc
// @Summary Get balances
// @Description Returns the ledger-derived balance of every supported currency, with a display-currency equivalent where a rate is stored.
// @Tags balances
// @Produce json
// @Param accountID query string false "Account (admins only; defaults to caller)"
// @Success 200 {object} dto.BalancesResponse
// @Failure 403 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Security BearerAuth
// @Router /balances [get]
func (h *balanceHandler) getBalances(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	accountID := targetAccount(c, actor)
	if !actor.CanAccess(accountID) {
		c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Error: "Not allowed to read this account", Reason: "forbidden"})
		return
	}

	ctx := c.Request.Context()
	balances, err := h.balances.GetBalances(ctx, accountID)
	if err != nil {
		writeError(c, err, "Failed to get balances")
		return
	}

	logger := middleware.GetLoggerFromCtx(ctx)
	resp := dto.BalancesResponse{AccountID: accountID, Balances: make([]dto.BalanceResponse, 0, len(balances))}
	for _, cur := range domain.AllCurrencies() {
		amount := balances[cur]
		row := dto.BalanceResponse{
			Currency:       string(cur),
			Balance:        amount,
			DisplayBalance: utils.FormatMinorUnits(amount, cur),
		}
		if h.displayCurrency != "" && h.rates != nil {
			eq, err := h.rates.Equivalent(ctx, amount, cur, h.displayCurrency)
			if err == nil {
				s := utils.FormatWithPrecision(eq, h.displayCurrency.Exponent())
				row.EquivalentValue = &s
				row.EquivalentIn = string(h.displayCurrency)
			} else {
				logger.Debug("No display equivalent", slog.String("currency", string(cur)), slog.String("error", err.Error()))
			}
		}
		resp.Balances = append(resp.Balances, row)
	}
	c.JSON(http.StatusOK, resp)
}

// listLedger godoc
// @Summary List ledger entries
// @Description Returns ledger entries in insertion order. Pass nextToken from the previous page to continue.
// @Tags balances
// @Produce json
// @Param accountID query string false "Account (admins only; defaults to caller)"
// @Param currency query string false "Currency filter"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Cursor"
// @Success 200 {object} dto.ListLedgerResponse
// @Failure 400 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Security BearerAuth
// @Router /ledger [get]
func (h *balanceHandler) listLedger(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var params dto.ListLedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		writeBindError(c, err)
		return
	}

	page, err := h.coordinator.ListLedger(c.Request.Context(), actor, targetAccount(c, actor), params)
	if err != nil {
		writeError(c, err, "Failed to list ledger entries")
		return
	}
	c.JSON(http.StatusOK, page)
}
