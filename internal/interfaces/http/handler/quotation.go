package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	salesapp "github.com/flowi/backend/internal/application/sales"
)

// QuotationService drives the quotation lifecycle
type QuotationService interface {
	CreateQuotation(ctx context.Context, orgID uuid.UUID, req salesapp.CreateQuotationRequest) (*salesapp.QuotationResponse, error)
	GetQuotation(ctx context.Context, orgID, id uuid.UUID) (*salesapp.QuotationResponse, error)
	ListQuotations(ctx context.Context, orgID uuid.UUID, f salesapp.QuotationListFilter) ([]salesapp.QuotationResponse, error)
	SendQuotation(ctx context.Context, orgID, id uuid.UUID) (*salesapp.QuotationResponse, error)
	ApproveQuotation(ctx context.Context, orgID, id uuid.UUID) (*salesapp.QuotationResponse, error)
	RejectQuotation(ctx context.Context, orgID, id uuid.UUID, req salesapp.RejectQuotationRequest) (*salesapp.QuotationResponse, error)
	ConvertToSale(ctx context.Context, orgID, quotationID uuid.UUID) (*salesapp.ConversionResponse, error)
}

// QuotationHandler serves quotations and their conversion into sales
type QuotationHandler struct {
	BaseHandler
	service QuotationService
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(service QuotationService) *QuotationHandler {
	return &QuotationHandler{service: service}
}

// Create drafts a quotation.
// POST /quotations
func (h *QuotationHandler) Create(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	var req salesapp.CreateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	q, err := h.service.CreateQuotation(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, q)
}

// Get returns one quotation.
// GET /quotations/:id
func (h *QuotationHandler) Get(c *gin.Context) {
	h.byID(c, h.service.GetQuotation)
}

// List returns quotations matching the query.
// GET /quotations
func (h *QuotationHandler) List(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	var f salesapp.QuotationListFilter
	if !h.BindQuery(c, &f) {
		return
	}
	list, err := h.service.ListQuotations(c.Request.Context(), orgID, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Send marks a draft as sent to the customer.
// POST /quotations/:id/send
func (h *QuotationHandler) Send(c *gin.Context) {
	h.byID(c, h.service.SendQuotation)
}

// Approve records the customer's acceptance.
// POST /quotations/:id/approve
func (h *QuotationHandler) Approve(c *gin.Context) {
	h.byID(c, h.service.ApproveQuotation)
}

// Reject records the customer's refusal.
// POST /quotations/:id/reject
func (h *QuotationHandler) Reject(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req salesapp.RejectQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	q, err := h.service.RejectQuotation(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// Convert turns an approved quotation into a sale.
// POST /quotations/:id/convert
func (h *QuotationHandler) Convert(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	result, err := h.service.ConvertToSale(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

func (h *QuotationHandler) byID(c *gin.Context, fn func(context.Context, uuid.UUID, uuid.UUID) (*salesapp.QuotationResponse, error)) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	q, err := fn(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}
