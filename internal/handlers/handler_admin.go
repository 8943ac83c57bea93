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

// adminHandler exposes the approval workflow and back-office operations.
// Every route sits behind middleware.RequireAdmin; the services check the
// role again.
type adminHandler struct {
	services *portssvc.ServiceContainer
}

func registerAdminRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &adminHandler{services: services}

	admin := rg.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/requests", h.listRequests)
		admin.POST("/requests/:requestID/approve", h.approve)
		admin.POST("/requests/:requestID/reject", h.reject)
		admin.POST("/requests/:requestID/settle", h.settle)
		admin.POST("/adjustments", h.adjust)
		admin.POST("/positions/:positionID/cancel", h.cancelPosition)
		admin.POST("/plans", h.createPlan)
		admin.PUT("/exchange-rates", h.setRate)
		admin.POST("/deposit-addresses", h.provisionAddresses)
	}
}

func settlementResponse(req *domain.TransactionRequest, entries []domain.LedgerEntry) dto.SettlementResponse {
	return dto.SettlementResponse{
		Request: dto.ToTransactionRequestResponse(req),
		Entries: dto.ToListLedgerEntryResponse(entries),
	}
}

// listRequests godoc
// @Summary List requests across accounts
// @Tags admin
// @Produce json
// @Param accountID query string false "Account filter"
// @Param status query string false "Status filter" Enums(pending, approved, rejected, settled)
// @Param kind query string false "Kind filter" Enums(deposit, withdrawal, investment)
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} dto.TransactionRequestResponse
// @Failure 403 {object} errorResponse
// @Security BearerAuth
// @Router /admin/requests [get]
func (h *adminHandler) listRequests(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var params dto.ListRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		writeBindError(c, err)
		return
	}
	reqs, err := h.services.Coordinator.ListRequests(c.Request.Context(), actor, params)
	if err != nil {
		writeError(c, err, "Failed to list requests")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionRequestResponse(reqs))
}

// approve godoc
// @Summary Approve and settle a request
// @Description Moves a pending request to approved and settles it. Debit kinds re-check funds and are rejected on shortfall.
// @Tags admin
// @Produce json
// @Param requestID path string true "Request ID"
// @Success 200 {object} dto.SettlementResponse
// @Failure 409 {object} errorResponse "Already resolved, insufficient funds or concurrent approval"
// @Failure 503 {object} errorResponse "Left approved; retry settlement"
// @Security BearerAuth
// @Router /admin/requests/{requestID}/approve [post]
func (h *adminHandler) approve(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	requestID := c.Param("requestID")
	req, entries, err := h.services.Workflow.Approve(c.Request.Context(), actor, requestID)
	if err != nil {
		writeError(c, err, "Failed to approve request")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Request approved",
		slog.String("request_id", requestID), slog.Int("entries", len(entries)))
	c.JSON(http.StatusOK, settlementResponse(req, entries))
}

// reject godoc
// @Summary Reject a pending request
// @Tags admin
// @Accept json
// @Produce json
// @Param requestID path string true "Request ID"
// @Param body body dto.RejectRequest true "Reason"
// @Success 200 {object} dto.TransactionRequestResponse
// @Failure 409 {object} errorResponse "Already resolved"
// @Security BearerAuth
// @Router /admin/requests/{requestID}/reject [post]
func (h *adminHandler) reject(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var body dto.RejectRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeBindError(c, err)
		return
	}
	req, err := h.services.Workflow.Reject(c.Request.Context(), actor, c.Param("requestID"), body.Reason)
	if err != nil {
		writeError(c, err, "Failed to reject request")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionRequestResponse(req))
}

// settle godoc
// @Summary Retry settlement of an approved request
// @Description Re-drives a request left approved after a storage failure.
// @Tags admin
// @Produce json
// @Param requestID path string true "Request ID"
// @Success 200 {object} dto.SettlementResponse
// @Failure 409 {object} errorResponse "Not awaiting settlement"
// @Security BearerAuth
// @Router /admin/requests/{requestID}/settle [post]
func (h *adminHandler) settle(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	req, entries, err := h.services.Workflow.RetrySettlement(c.Request.Context(), actor, c.Param("requestID"))
	if err != nil {
		writeError(c, err, "Failed to settle request")
		return
	}
	c.JSON(http.StatusOK, settlementResponse(req, entries))
}

// adjust godoc
// @Summary Adjust a balance
// @Description Appends an admin_adjustment entry. Debits may not take the balance below zero.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.AdjustBalanceRequest true "Adjustment"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /admin/adjustments [post]
func (h *adminHandler) adjust(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var body dto.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeBindError(c, err)
		return
	}
	entry, err := h.services.Coordinator.AdjustBalance(c.Request.Context(), actor, body)
	if err != nil {
		writeError(c, err, "Failed to adjust balance")
		return
	}
	c.JSON(http.StatusCreated, dto.ToLedgerEntryResponse(*entry))
}

// cancelPosition godoc
// @Summary Cancel an investment position
// @Description Stops a running position and returns its principal.
// @Tags admin
// @Produce json
// @Param positionID path string true "Position ID"
// @Success 200 {object} dto.PositionResponse
// @Failure 409 {object} errorResponse "Position not running"
// @Security BearerAuth
// @Router /admin/positions/{positionID}/cancel [post]
func (h *adminHandler) cancelPosition(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	pos, err := h.services.Coordinator.CancelPosition(c.Request.Context(), actor, c.Param("positionID"))
	if err != nil {
		writeError(c, err, "Failed to cancel position")
		return
	}
	c.JSON(http.StatusOK, dto.ToPositionResponse(pos))
}

// createPlan godoc
// @Summary Create an investment plan
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.CreatePlanRequest true "Plan"
// @Success 201 {object} dto.PlanResponse
// @Failure 400 {object} errorResponse
// @Security BearerAuth
// @Router /admin/plans [post]
func (h *adminHandler) createPlan(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var body dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeBindError(c, err)
		return
	}
	plan, err := h.services.Investment.CreatePlan(c.Request.Context(), actor, body)
	if err != nil {
		writeError(c, err, "Failed to create plan")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPlanResponse(plan))
}

// setRate godoc
// @Summary Store a display exchange rate
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.SetExchangeRateRequest true "Rate"
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 400 {object} errorResponse
// @Security BearerAuth
// @Router /admin/exchange-rates [put]
func (h *adminHandler) setRate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var body dto.SetExchangeRateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeBindError(c, err)
		return
	}
	rate, err := h.services.Rate.SetRate(c.Request.Context(), actor, body)
	if err != nil {
		writeError(c, err, "Failed to set exchange rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// provisionAddresses godoc
// @Summary Provision deposit addresses
// @Description Adds unassigned addresses to the pool for an asset. Known addresses are skipped.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.ProvisionAddressesRequest true "Addresses"
// @Success 200 {object} dto.ProvisionAddressesResponse
// @Failure 400 {object} errorResponse
// @Security BearerAuth
// @Router /admin/deposit-addresses [post]
func (h *adminHandler) provisionAddresses(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var body dto.ProvisionAddressesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeBindError(c, err)
		return
	}
	added, err := h.services.Address.ProvisionAddresses(c.Request.Context(), actor, body)
	if err != nil {
		writeError(c, err, "Failed to provision addresses")
		return
	}
	c.JSON(http.StatusOK, dto.ProvisionAddressesResponse{Asset: body.Asset, Added: added})
}
