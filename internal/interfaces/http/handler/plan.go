package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/flowi/backend/internal/application/ledger"
)

// InstallmentService creates and reads installment plans
type InstallmentService interface {
	CreatePlan(ctx context.Context, orgID uuid.UUID, req ledgerapp.CreatePlanRequest) (*ledgerapp.PlanResponse, error)
	GetPlan(ctx context.Context, orgID, planID uuid.UUID) (*ledgerapp.PlanResponse, error)
}

// PlanHandler serves installment plans
type PlanHandler struct {
	BaseHandler
	plans InstallmentService
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(plans InstallmentService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// Create splits a total into installments.
// POST /plans
func (h *PlanHandler) Create(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	var req ledgerapp.CreatePlanRequest
	if !h.BindJSON(c, &req) {
		return
	}
	plan, err := h.plans.CreatePlan(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, plan)
}

// Get returns a plan with its installments.
// GET /plans/:id
func (h *PlanHandler) Get(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	plan, err := h.plans.GetPlan(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}
