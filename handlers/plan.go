package handlers

import (
	"errors"
	"net/http"

	"catering-backend/cart"
	"catering-backend/catalog"
	"catering-backend/middleware"
	"catering-backend/planner"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	Planner  *planner.Planner
	Catalog  *catalog.Catalog
	Registry *cart.Registry
	Currency string
}

type acceptPlanRequest struct {
	Plan *planner.Plan `json:"plan" binding:"required"`
}

// GeneratePlan asks the model for a plan over what can be ordered right now.
// Nothing is added to the cart until the plan is accepted.
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	var req planner.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	plan, err := h.Planner.Generate(c.Request.Context(), middleware.CartSessionID(c), req, h.Catalog.Available())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, plan)
	case errors.Is(err, planner.ErrInvalidGuestCount), errors.Is(err, planner.ErrNoInventory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, planner.ErrPlanInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, planner.ErrUnusablePlan):
		c.JSON(http.StatusBadGateway, gin.H{"error": planner.ErrUnusablePlan.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate plan, please try again"})
	}
}

// AcceptPlan adds the plan lines that still exist on the menu.
func (h *PlanHandler) AcceptPlan(c *gin.Context) {
	var req acceptPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var result planner.AcceptResult
	var body gin.H
	err := h.Registry.With(middleware.CartSessionID(c), func(l *cart.Ledger) error {
		result = planner.Accept(req.Plan, h.Catalog, l)
		body = cartBody(l, h.Currency)
		return checkSaved(l)
	})
	if err != nil {
		cartError(c, err)
		return
	}

	body["added"] = result.Added
	body["skipped"] = result.Skipped
	c.JSON(http.StatusOK, body)
}
