package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/flowi/backend/internal/application/ledger"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/interfaces/http/middleware"
)

// EntryService is the part of the ledger service the entry endpoints use
type EntryService interface {
	CreateEntry(ctx context.Context, orgID uuid.UUID, req ledgerapp.CreateEntryRequest) (*ledgerapp.EntryResponse, error)
	GetEntry(ctx context.Context, orgID, id uuid.UUID) (*ledgerapp.EntryResponse, error)
	GetOutstanding(ctx context.Context, orgID, id uuid.UUID) (*ledgerapp.OutstandingResponse, error)
	ListEntries(ctx context.Context, orgID uuid.UUID, f ledgerapp.EntryListFilter) (*shared.Paginated[ledgerapp.EntryResponse], error)
	ListPayments(ctx context.Context, orgID, entryID uuid.UUID) ([]ledgerapp.PaymentRecordResponse, error)
	CancelEntry(ctx context.Context, orgID, id uuid.UUID, req ledgerapp.CancelEntryRequest) (*ledgerapp.EntryResponse, error)
	DeleteEntry(ctx context.Context, orgID, id uuid.UUID) error
}

// PaymentService applies payments to entries
type PaymentService interface {
	ApplyPayment(ctx context.Context, orgID, entryID uuid.UUID, req ledgerapp.ApplyPaymentRequest) (*ledgerapp.PaymentResultResponse, error)
	ApplyInstallmentPayment(ctx context.Context, orgID, entryID uuid.UUID, req ledgerapp.ApplyPaymentRequest) (*ledgerapp.PaymentResultResponse, error)
}

// EntryHandler serves receivables and payables and the payments applied to them
type EntryHandler struct {
	BaseHandler
	entries  EntryService
	payments PaymentService
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(entries EntryService, payments PaymentService) *EntryHandler {
	return &EntryHandler{entries: entries, payments: payments}
}

// Create opens a receivable or payable.
// POST /entries
func (h *EntryHandler) Create(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	var req ledgerapp.CreateEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.entries.CreateEntry(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Get returns one entry.
// GET /entries/:id
func (h *EntryHandler) Get(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	entry, err := h.entries.GetEntry(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Outstanding returns the unpaid balance of an entry.
// GET /entries/:id/outstanding
func (h *EntryHandler) Outstanding(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	out, err := h.entries.GetOutstanding(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// List returns a page of entries.
// GET /entries?kind=&status=&currency=&due_from=&due_to=&page=&page_size=
func (h *EntryHandler) List(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	var f ledgerapp.EntryListFilter
	if !h.BindQuery(c, &f) {
		return
	}
	page, err := h.entries.ListEntries(c.Request.Context(), orgID, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Payments returns the audit trail of payments applied to an entry.
// GET /entries/:id/payments
func (h *EntryHandler) Payments(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	records, err := h.entries.ListPayments(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// ApplyPayment applies a payment to an entry. An Idempotency-Key header is
// used when the body carries no key.
// POST /entries/:id/payments
func (h *EntryHandler) ApplyPayment(c *gin.Context) {
	h.applyPayment(c, h.payments.ApplyPayment)
}

// ApplyInstallmentPayment applies a payment to one installment of a plan.
// POST /installments/:id/payments
func (h *EntryHandler) ApplyInstallmentPayment(c *gin.Context) {
	h.applyPayment(c, h.payments.ApplyInstallmentPayment)
}

type applyFunc func(ctx context.Context, orgID, entryID uuid.UUID, req ledgerapp.ApplyPaymentRequest) (*ledgerapp.PaymentResultResponse, error)

func (h *EntryHandler) applyPayment(c *gin.Context, apply applyFunc) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.ApplyPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader(middleware.IdempotencyHeader)
	}
	result, err := apply(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Cancel cancels an entry that has no payments.
// POST /entries/:id/cancel
func (h *EntryHandler) Cancel(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.CancelEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.entries.CancelEntry(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Delete removes an entry that has no payments.
// DELETE /entries/:id
func (h *EntryHandler) Delete(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.entries.DeleteEntry(c.Request.Context(), orgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
