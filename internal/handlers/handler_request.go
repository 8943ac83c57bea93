package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/dto"
	"github.com/SscSPs/coinvest_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// idempotencyHeader may carry the idempotency key instead of the body field.
const idempotencyHeader = "Idempotency-Key"

// requestHandler handles HTTP requests that create and read transaction requests.
type requestHandler struct {
	coordinator portssvc.TransactionCoordinatorSvc
	workflow    portssvc.ApprovalWorkflowSvc
}

func newRequestHandler(coordinator portssvc.TransactionCoordinatorSvc, workflow portssvc.ApprovalWorkflowSvc) *requestHandler {
	return &requestHandler{coordinator: coordinator, workflow: workflow}
}

// registerRequestRoutes registers routes related to transaction requests.
func registerRequestRoutes(rg *gin.RouterGroup, coordinator portssvc.TransactionCoordinatorSvc, workflow portssvc.ApprovalWorkflowSvc) {
	h := newRequestHandler(coordinator, workflow)

	requests := rg.Group("/requests")
	{
		requests.POST("/deposits", h.createDeposit)
		requests.POST("/withdrawals", h.createWithdrawal)
		requests.POST("/investments", h.createInvestment)
		requests.GET("", h.listRequests)
		requests.GET("/:requestID", h.getRequest)
		requests.POST("/:requestID/cancel", h.cancelRequest)
	}
}

func idempotencyKey(c *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return c.GetHeader(idempotencyHeader)
}

// createDeposit godoc
// @Summary Request a deposit
// @Description Opens a pending deposit. Crypto deposits are assigned a deposit address.
// @Tags requests
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body dto.CreateDepositRequest true "Deposit details"
// @Success 201 {object} dto.TransactionRequestResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse "No deposit address available"
// @Failure 503 {object} errorResponse
// @Security BearerAuth
// @Router /requests/deposits [post]
func (h *requestHandler) createDeposit(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	req.IdempotencyKey = idempotencyKey(c, req.IdempotencyKey)

	created, err := h.coordinator.RequestDeposit(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err, "Failed to create deposit request")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionRequestResponse(created))
}

// createWithdrawal godoc
// @Summary Request a withdrawal
// @Description Opens a pending withdrawal after checking the current balance covers it.
// @Tags requests
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body dto.CreateWithdrawalRequest true "Withdrawal details"
// @Success 201 {object} dto.TransactionRequestResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /requests/withdrawals [post]
func (h *requestHandler) createWithdrawal(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	req.IdempotencyKey = idempotencyKey(c, req.IdempotencyKey)

	created, err := h.coordinator.RequestWithdrawal(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err, "Failed to create withdrawal request")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionRequestResponse(created))
}

// createInvestment godoc
// @Summary Request an investment
// @Description Opens a pending investment into a plan.
// @Tags requests
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body dto.CreateInvestmentRequest true "Investment details"
// @Success 201 {object} dto.TransactionRequestResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /requests/investments [post]
func (h *requestHandler) createInvestment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	req.IdempotencyKey = idempotencyKey(c, req.IdempotencyKey)

	created, err := h.coordinator.RequestInvestment(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err, "Failed to create investment request")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionRequestResponse(created))
}

// listRequests godoc
// @Summary List requests
// @Description Lists the caller's requests, newest first. Admins may pass accountID or omit it to see all.
// @Tags requests
// @Produce json
// @Param accountID query string false "Account filter (admins)"
// @Param status query string false "Status filter" Enums(pending, approved, rejected, settled)
// @Param kind query string false "Kind filter" Enums(deposit, withdrawal, investment)
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} dto.TransactionRequestResponse
// @Failure 400 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Security BearerAuth
// @Router /requests [get]
func (h *requestHandler) listRequests(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var params dto.ListRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		writeBindError(c, err)
		return
	}

	reqs, err := h.coordinator.ListRequests(c.Request.Context(), actor, params)
	if err != nil {
		writeError(c, err, "Failed to list requests")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionRequestResponse(reqs))
}

// getRequest godoc
// @Summary Get a request
// @Tags requests
// @Produce json
// @Param requestID path string true "Request ID"
// @Success 200 {object} dto.TransactionRequestResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Security BearerAuth
// @Router /requests/{requestID} [get]
func (h *requestHandler) getRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	req, err := h.coordinator.GetRequest(c.Request.Context(), actor, c.Param("requestID"))
	if err != nil {
		writeError(c, err, "Failed to get request")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionRequestResponse(req))
}

// cancelRequest godoc
// @Summary Cancel a pending request
// @Description The owner may cancel a request while it is still pending.
// @Tags requests
// @Produce json
// @Param requestID path string true "Request ID"
// @Success 200 {object} dto.TransactionRequestResponse
// @Failure 403 {object} errorResponse
// @Failure 409 {object} errorResponse "Already resolved"
// @Security BearerAuth
// @Router /requests/{requestID}/cancel [post]
func (h *requestHandler) cancelRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	requestID := c.Param("requestID")
	req, err := h.workflow.Cancel(c.Request.Context(), actor, requestID)
	if err != nil {
		writeError(c, err, "Failed to cancel request")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Request cancelled", slog.String("request_id", requestID))
	c.JSON(http.StatusOK, dto.ToTransactionRequestResponse(req))
}
