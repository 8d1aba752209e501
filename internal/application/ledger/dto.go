package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// CreateEntryRequest represents a request to open a receivable or payable
type CreateEntryRequest struct {
	Kind             string     `json:"kind" binding:"required,oneof=RECEIVABLE PAYABLE"`
	CounterpartyID   uuid.UUID  `json:"counterparty_id" binding:"required"`
	CounterpartyName string     `json:"counterparty_name" binding:"required,min=1,max=200"`
	ReferenceNumber  string     `json:"reference_number" binding:"required,min=1,max=64"`
	Amount           string     `json:"amount" binding:"required,decimal_positive,money_scale"`
	Currency         string     `json:"currency" binding:"required,currency"`
	DueDate          time.Time  `json:"due_date" binding:"required"`
	SourceID         *uuid.UUID `json:"source_id"`
}

// CancelEntryRequest represents a request to cancel an unpaid entry
type CancelEntryRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ApplyPaymentRequest represents a payment against one entry.
// IdempotencyKey is optional; without it nothing guards against a retried request.
type ApplyPaymentRequest struct {
	Amount         string `json:"amount" binding:"required,decimal_positive,money_scale"`
	Currency       string `json:"currency" binding:"required,currency"`
	Method         string `json:"method" binding:"required,oneof=cash card transfer mobile zelle check"`
	Reference      string `json:"reference" binding:"max=100"`
	Notes          string `json:"notes" binding:"max=500"`
	IdempotencyKey string `json:"idempotency_key" binding:"max=128"`
}

// CreatePlanRequest represents a request to split a total into installments
type CreatePlanRequest struct {
	CounterpartyID   uuid.UUID `json:"counterparty_id" binding:"required"`
	CounterpartyName string    `json:"counterparty_name" binding:"required,min=1,max=200"`
	ReferencePrefix  string    `json:"reference_prefix" binding:"required,min=1,max=50"`
	TotalAmount      string    `json:"total_amount" binding:"required,decimal_positive,money_scale"`
	Currency         string    `json:"currency" binding:"required,currency"`
	Count            int       `json:"count" binding:"required,min=1,max=120"`
	Frequency        string    `json:"frequency" binding:"required,oneof=WEEKLY BIWEEKLY MONTHLY"`
	FirstDueDate     time.Time `json:"first_due_date" binding:"required"`
}

// EntryListFilter represents query parameters for listing entries
type EntryListFilter struct {
	Kind           string     `form:"kind" binding:"omitempty,oneof=RECEIVABLE PAYABLE INSTALLMENT"`
	Status         []string   `form:"status" binding:"omitempty,dive,oneof=PENDING PARTIAL PAID OVERDUE CANCELLED"`
	CounterpartyID *uuid.UUID `form:"counterparty_id"`
	Currency       string     `form:"currency" binding:"omitempty,currency"`
	DueFrom        *time.Time `form:"due_from" time_format:"2006-01-02"`
	DueTo          *time.Time `form:"due_to" time_format:"2006-01-02"`
	Page           int        `form:"page" binding:"omitempty,min=1"`
	PageSize       int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy        string     `form:"order_by"`
	OrderDir       string     `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID                uuid.UUID         `json:"id"`
	OrganizationID    uuid.UUID         `json:"organization_id"`
	Kind              string            `json:"kind"`
	CounterpartyID    uuid.UUID         `json:"counterparty_id"`
	CounterpartyName  string            `json:"counterparty_name"`
	ReferenceNumber   string            `json:"reference_number"`
	Amount            valueobject.Money `json:"amount"`
	PaidAmount        valueobject.Money `json:"paid_amount"`
	Outstanding       valueobject.Money `json:"outstanding"`
	DueDate           time.Time         `json:"due_date"`
	Status            string            `json:"status"`
	PlanID            *uuid.UUID        `json:"plan_id,omitempty"`
	InstallmentNumber int               `json:"installment_number,omitempty"`
	SourceID          *uuid.UUID        `json:"source_id,omitempty"`
	CancelReason      string            `json:"cancel_reason,omitempty"`
	CancelledAt       *time.Time        `json:"cancelled_at,omitempty"`
	PaidAt            *time.Time        `json:"paid_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	Version           int               `json:"version"`
}

// PaymentRecordResponse represents one audit record of an applied payment
type PaymentRecordResponse struct {
	ID             uuid.UUID         `json:"id"`
	LedgerEntryID  uuid.UUID         `json:"ledger_entry_id"`
	Amount         valueobject.Money `json:"amount"`
	Method         string            `json:"method"`
	Reference      string            `json:"reference,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	ProcessedAt    time.Time         `json:"processed_at"`
}

// PaymentResultResponse is returned after a payment is applied
type PaymentResultResponse struct {
	Entry   EntryResponse         `json:"entry"`
	Payment PaymentRecordResponse `json:"payment"`
}

// OutstandingResponse represents the remaining balance of an entry
type OutstandingResponse struct {
	EntryID     uuid.UUID         `json:"entry_id"`
	Outstanding valueobject.Money `json:"outstanding"`
	Status      string            `json:"status"`
}

// PlanResponse represents an installment plan with its installments
type PlanResponse struct {
	ID               uuid.UUID         `json:"id"`
	OrganizationID   uuid.UUID         `json:"organization_id"`
	CounterpartyID   uuid.UUID         `json:"counterparty_id"`
	CounterpartyName string            `json:"counterparty_name"`
	ReferencePrefix  string            `json:"reference_prefix"`
	TotalAmount      valueobject.Money `json:"total_amount"`
	Outstanding      valueobject.Money `json:"outstanding"`
	Count            int               `json:"count"`
	Frequency        string            `json:"frequency"`
	FirstDueDate     time.Time         `json:"first_due_date"`
	Installments     []EntryResponse   `json:"installments"`
	CreatedAt        time.Time         `json:"created_at"`
}

// SweepResult reports what one overdue sweep did
type SweepResult struct {
	AsOf       time.Time `json:"as_of"`
	Candidates int       `json:"candidates"`
	Flagged    int       `json:"flagged"`
	Skipped    int       `json:"skipped"`
}

// ToEntryResponse converts a domain entry to a response
func ToEntryResponse(e *ledger.LedgerEntry) EntryResponse {
	return EntryResponse{
		ID:                e.ID,
		OrganizationID:    e.OrganizationID,
		Kind:              string(e.Kind),
		CounterpartyID:    e.CounterpartyID,
		CounterpartyName:  e.CounterpartyName,
		ReferenceNumber:   e.ReferenceNumber,
		Amount:            e.Amount,
		PaidAmount:        e.PaidAmount,
		Outstanding:       e.Outstanding(),
		DueDate:           e.DueDate,
		Status:            string(e.Status),
		PlanID:            e.PlanID,
		InstallmentNumber: e.InstallmentNumber,
		SourceID:          e.SourceID,
		CancelReason:      e.CancelReason,
		CancelledAt:       e.CancelledAt,
		PaidAt:            e.PaidAt,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
		Version:           e.Version,
	}
}

// ToEntryResponses converts a slice of domain entries
func ToEntryResponses(entries []ledger.LedgerEntry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = ToEntryResponse(&entries[i])
	}
	return out
}

// ToPaymentRecordResponse converts a payment record to a response
func ToPaymentRecordResponse(r *ledger.PaymentRecord) PaymentRecordResponse {
	return PaymentRecordResponse{
		ID:             r.ID,
		LedgerEntryID:  r.LedgerEntryID,
		Amount:         r.Amount,
		Method:         string(r.Method),
		Reference:      r.Reference,
		Notes:          r.Notes,
		IdempotencyKey: r.IdempotencyKey,
		ProcessedAt:    r.ProcessedAt,
	}
}

// ToPlanResponse converts a plan with its installments to a response
func ToPlanResponse(p *ledger.InstallmentPlan) PlanResponse {
	installments := make([]EntryResponse, len(p.Installments))
	for i, inst := range p.Installments {
		installments[i] = ToEntryResponse(inst)
	}
	return PlanResponse{
		ID:               p.ID,
		OrganizationID:   p.OrganizationID,
		CounterpartyID:   p.CounterpartyID,
		CounterpartyName: p.CounterpartyName,
		ReferencePrefix:  p.ReferencePrefix,
		TotalAmount:      p.TotalAmount,
		Outstanding:      p.Outstanding(),
		Count:            p.Count,
		Frequency:        string(p.Frequency),
		FirstDueDate:     p.FirstDueDate,
		Installments:     installments,
		CreatedAt:        p.CreatedAt,
	}
}

// ToDomainFilter converts query parameters to a repository filter.
// Without an explicit order the newest entries come first.
func (f EntryListFilter) ToDomainFilter() (ledger.EntryFilter, error) {
	filter := ledger.EntryFilter{
		Filter:         shared.NewFilter(f.Page, f.PageSize, f.OrderBy, f.OrderDir),
		CounterpartyID: f.CounterpartyID,
		DueFrom:        f.DueFrom,
		DueTo:          f.DueTo,
	}
	if f.Kind != "" {
		kind := ledger.EntryKind(f.Kind)
		if !kind.IsValid() {
			return ledger.EntryFilter{}, shared.NewDomainError(shared.CodeInvalidInput, "Unknown entry kind "+f.Kind)
		}
		filter.Kind = &kind
	}
	for _, s := range f.Status {
		status := ledger.EntryStatus(s)
		if !status.IsValid() {
			return ledger.EntryFilter{}, shared.NewDomainError(shared.CodeInvalidInput, "Unknown entry status "+s)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if f.Currency != "" {
		cur, err := valueobject.ParseCurrency(f.Currency)
		if err != nil {
			return ledger.EntryFilter{}, err
		}
		filter.Currency = &cur
	}
	return filter, nil
}

// parseMoney builds Money from request strings
func parseMoney(amount, currency string) (valueobject.Money, error) {
	cur, err := valueobject.ParseCurrency(currency)
	if err != nil {
		return valueobject.Money{}, err
	}
	return valueobject.NewMoneyFromString(amount, cur)
}
