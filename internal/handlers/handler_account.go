package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/dto"
	"github.com/SscSPs/coinvest_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ensureAccount records the caller's account before any core operation runs,
// so ledger and request rows always reference a known account.
func ensureAccount(accounts portssvc.AccountSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		acc, err := accounts.EnsureAccount(c.Request.Context(), actor)
		if err != nil {
			writeError(c, err, "Failed to load account")
			return
		}
		if !acc.IsActive {
			middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Inactive account denied", slog.String("account_id", acc.AccountID))
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Error: "Account is deactivated", Reason: "forbidden"})
			return
		}
		c.Next()
	}
}

// accountHandler serves the caller's account view.
type accountHandler struct {
	accounts  portssvc.AccountSvc
	addresses portssvc.AddressAllocatorSvc
}

func registerAccountRoutes(rg *gin.RouterGroup, accounts portssvc.AccountSvc, addresses portssvc.AddressAllocatorSvc) {
	h := &accountHandler{accounts: accounts, addresses: addresses}

	rg.GET("/me", h.getMe)
	rg.GET("/deposit-addresses/:asset", h.getDepositAddress)
}

// getMe godoc
// @Summary Get the caller's account
// @Tags accounts
// @Produce json
// @Success 200 {object} dto.AccountResponse
// @Security BearerAuth
// @Router /me [get]
func (h *accountHandler) getMe(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	acc, err := h.accounts.GetAccount(c.Request.Context(), actor.AccountID)
	if err != nil {
		writeError(c, err, "Failed to get account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

// getDepositAddress godoc
// @Summary Get a deposit address
// @Description Returns the caller's deposit address for a crypto asset, assigning one from the pool on first use.
// @Tags accounts
// @Produce json
// @Param asset path string true "Crypto asset" Enums(BTC, ETH, USDT)
// @Success 200 {object} dto.DepositAddressResponse
// @Failure 400 {object} errorResponse "Unsupported or fiat asset"
// @Failure 404 {object} errorResponse "Pool exhausted"
// @Security BearerAuth
// @Router /deposit-addresses/{asset} [get]
func (h *accountHandler) getDepositAddress(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	asset, err := domain.ParseCurrency(c.Param("asset"))
	if err != nil {
		writeError(c, err, "Invalid asset")
		return
	}
	addr, err := h.addresses.GetOrCreateAddress(c.Request.Context(), actor.AccountID, asset)
	if err != nil {
		writeError(c, err, "Failed to get deposit address")
		return
	}
	c.JSON(http.StatusOK, dto.DepositAddressResponse{Asset: string(asset), Address: addr})
}
