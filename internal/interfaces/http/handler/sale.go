package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	salesapp "github.com/flowi/backend/internal/application/sales"
)

// SaleService records and reads sales
type SaleService interface {
	RecordSale(ctx context.Context, orgID uuid.UUID, req salesapp.RecordSaleRequest) (*salesapp.SaleResponse, error)
	GetSale(ctx context.Context, orgID, id uuid.UUID) (*salesapp.SaleResponse, error)
	ListSales(ctx context.Context, orgID uuid.UUID, f salesapp.SaleListFilter) ([]salesapp.SaleResponse, error)
}

// SaleHandler serves sales
type SaleHandler struct {
	BaseHandler
	service SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(service SaleService) *SaleHandler {
	return &SaleHandler{service: service}
}

// Record stores a counter sale.
// POST /sales
func (h *SaleHandler) Record(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	var req salesapp.RecordSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sale, err := h.service.RecordSale(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// Get returns one sale.
// GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.service.GetSale(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List returns sales matching the query.
// GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	var f salesapp.SaleListFilter
	if !h.BindQuery(c, &f) {
		return
	}
	list, err := h.service.ListSales(c.Request.Context(), orgID, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}
