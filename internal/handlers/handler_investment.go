package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/dto"
	"github.com/gin-gonic/gin"
)

// investmentHandler serves plans and positions.
type investmentHandler struct {
	investments portssvc.InvestmentSvc
}

func registerInvestmentRoutes(rg *gin.RouterGroup, investments portssvc.InvestmentSvc) {
	h := &investmentHandler{investments: investments}

	rg.GET("/plans", h.listPlans)
	rg.GET("/plans/:planID", h.getPlan)
	rg.GET("/positions", h.listPositions)
}

// listPlans godoc
// @Summary List investment plans
// @Description Lists active plans. Admins may pass all=true to include inactive ones.
// @Tags investments
// @Produce json
// @Param all query bool false "Include inactive plans (admins)"
// @Success 200 {array} dto.PlanResponse
// @Security BearerAuth
// @Router /plans [get]
func (h *investmentHandler) listPlans(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	activeOnly := !(actor.IsAdmin() && c.Query("all") == "true")

	plans, err := h.investments.ListPlans(c.Request.Context(), activeOnly)
	if err != nil {
		writeError(c, err, "Failed to list plans")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPlanResponse(plans))
}

// getPlan godoc
// @Summary Get an investment plan
// @Tags investments
// @Produce json
// @Param planID path string true "Plan ID"
// @Success 200 {object} dto.PlanResponse
// @Failure 400 {object} errorResponse "Unknown plan"
// @Security BearerAuth
// @Router /plans/{planID} [get]
func (h *investmentHandler) getPlan(c *gin.Context) {
	plan, err := h.investments.GetPlan(c.Request.Context(), c.Param("planID"))
	if err != nil {
		writeError(c, err, "Failed to get plan")
		return
	}
	c.JSON(http.StatusOK, dto.ToPlanResponse(plan))
}

// listPositions godoc
// @Summary List investment positions
// @Tags investments
// @Produce json
// @Param accountID query string false "Account (admins only; defaults to caller)"
// @Success 200 {array} dto.PositionResponse
// @Failure 403 {object} errorResponse
// @Security BearerAuth
// @Router /positions [get]
func (h *investmentHandler) listPositions(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	positions, err := h.investments.ListPositions(c.Request.Context(), actor, targetAccount(c, actor))
	if err != nil {
		writeError(c, err, "Failed to list positions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPositionResponse(positions))
}
