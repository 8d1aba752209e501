package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// AggregateTypeQuotation is the aggregate type name used on events
const AggregateTypeQuotation = "Quotation"

// QuotationStatus represents where a quotation is in its lifecycle
type QuotationStatus string

const (
	QuotationStatusDraft     QuotationStatus = "DRAFT"
	QuotationStatusSent      QuotationStatus = "SENT"
	QuotationStatusApproved  QuotationStatus = "APPROVED"
	QuotationStatusRejected  QuotationStatus = "REJECTED"
	QuotationStatusExpired   QuotationStatus = "EXPIRED"
	QuotationStatusConverted QuotationStatus = "CONVERTED"
)

// IsValid checks if the status is known
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusApproved,
		QuotationStatusRejected, QuotationStatusExpired, QuotationStatusConverted:
		return true
	}
	return false
}

// IsOpen returns true while the quotation may still become a sale
func (s QuotationStatus) IsOpen() bool {
	return s == QuotationStatusDraft || s == QuotationStatusSent || s == QuotationStatusApproved
}

// PaymentTerms asks for the converted sale to be collected through a receivable
type PaymentTerms struct {
	DueInDays int                  `json:"due_in_days"`
	Currency  valueobject.Currency `json:"currency"`
}

// Validate checks the terms
func (t PaymentTerms) Validate() error {
	if t.DueInDays < 0 || t.DueInDays > 365 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Payment terms must be between 0 and 365 days")
	}
	if !t.Currency.IsValid() {
		return shared.NewDomainError(shared.CodeUnsupportedCurrency, fmt.Sprintf("Unsupported terms currency %q", t.Currency))
	}
	return nil
}

// Quotation is a priced offer that, once approved, converts into a sale
type Quotation struct {
	shared.OrgAggregateRoot
	QuotationNumber   string
	CustomerID        uuid.UUID
	CustomerName      string
	Items             []LineItem
	TotalUSD          valueobject.Money
	TotalVES          valueobject.Money
	PaymentMethod     PaymentMethod // used for the sale when there are no terms
	PaymentTerms      *PaymentTerms
	ValidUntil        time.Time
	Status            QuotationStatus
	RejectReason      string
	ConvertedToSaleID *uuid.UUID
	ConvertedAt       *time.Time
}

// NewQuotationParams holds the inputs for NewQuotation
type NewQuotationParams struct {
	OrganizationID  uuid.UUID
	QuotationNumber string
	CustomerID      uuid.UUID
	CustomerName    string
	Items           []LineItem
	PaymentMethod   PaymentMethod
	PaymentTerms    *PaymentTerms
	ValidUntil      time.Time
}

// NewQuotation creates a draft quotation
func NewQuotation(p NewQuotationParams) (*Quotation, error) {
	if p.OrganizationID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Organization ID cannot be empty")
	}
	if p.QuotationNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quotation number cannot be empty")
	}
	if p.CustomerID == uuid.Nil || p.CustomerName == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quotation needs a customer")
	}
	if len(p.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quotation must have at least one item")
	}
	for _, li := range p.Items {
		if err := li.Validate(); err != nil {
			return nil, err
		}
	}
	if p.ValidUntil.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Valid-until date is required")
	}
	method := p.PaymentMethod
	if method == "" {
		method = PaymentMethodUSD
	}
	if !method.IsValid() || method == PaymentMethodMixed {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Payment method %q cannot be quoted", method))
	}

	totalUSD, totalVES := LineTotals(p.Items)

	if p.PaymentTerms != nil {
		if err := p.PaymentTerms.Validate(); err != nil {
			return nil, err
		}
		due := totalUSD
		if p.PaymentTerms.Currency == valueobject.VES {
			due = totalVES
		}
		if !due.IsPositive() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Quotation has no %s total to collect on terms", p.PaymentTerms.Currency))
		}
	}

	q := &Quotation{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(p.OrganizationID),
		QuotationNumber:  p.QuotationNumber,
		CustomerID:       p.CustomerID,
		CustomerName:     p.CustomerName,
		Items:            append([]LineItem(nil), p.Items...),
		TotalUSD:         totalUSD,
		TotalVES:         totalVES,
		PaymentMethod:    method,
		PaymentTerms:     p.PaymentTerms,
		ValidUntil:       p.ValidUntil,
		Status:           QuotationStatusDraft,
	}

	return q, nil
}

func (q *Quotation) transition(ctx context.Context, event string, at time.Time) error {
	if err := NewQuotationFSM(q).fire(ctx, event); err != nil {
		return err
	}
	q.Touch(at)
	q.IncrementVersion()
	return nil
}

// Send moves a draft to sent
func (q *Quotation) Send(ctx context.Context, at time.Time) error {
	return q.transition(ctx, quotationEventSend, at)
}

// Approve records customer acceptance
func (q *Quotation) Approve(ctx context.Context, at time.Time) error {
	if q.IsExpiredAt(at) {
		return q.expiredError()
	}
	return q.transition(ctx, quotationEventApprove, at)
}

// Reject records customer refusal
func (q *Quotation) Reject(ctx context.Context, reason string, at time.Time) error {
	if err := q.transition(ctx, quotationEventReject, at); err != nil {
		return err
	}
	q.RejectReason = reason
	return nil
}

// Expire flags an open quotation whose validity has lapsed by asOf.
// Returns false when nothing changed.
func (q *Quotation) Expire(ctx context.Context, asOf time.Time) (bool, error) {
	if !q.Status.IsOpen() || !q.IsExpiredAt(asOf) {
		return false, nil
	}
	if err := q.transition(ctx, quotationEventExpire, asOf); err != nil {
		return false, err
	}
	q.AddDomainEvent(NewQuotationExpiredEvent(q))
	return true, nil
}

// IsExpiredAt reports whether validity ended before t
func (q *Quotation) IsExpiredAt(t time.Time) bool {
	return q.ValidUntil.Before(t)
}

func (q *Quotation) expiredError() error {
	return shared.NewDomainError(shared.CodeExpired,
		fmt.Sprintf("Quotation %s expired on %s", q.QuotationNumber, q.ValidUntil.Format(time.DateOnly)))
}

// CheckConvertible verifies the quotation can become a sale at now.
// The status is checked first, then validity, even if no expiry sweep ran yet.
func (q *Quotation) CheckConvertible(now time.Time) error {
	if q.Status != QuotationStatusApproved {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Quotation %s is %s, only approved quotations convert", q.QuotationNumber, q.Status))
	}
	if q.IsExpiredAt(now) {
		return q.expiredError()
	}
	return nil
}

// ToSale builds the sale that locks in this quotation's items and totals.
// The quotation itself is not modified; call MarkConverted once the sale is stored.
func (q *Quotation) ToSale(now time.Time) (*Sale, error) {
	if err := q.CheckConvertible(now); err != nil {
		return nil, err
	}
	method := q.PaymentMethod
	if q.PaymentTerms != nil {
		method = PaymentMethodCredit
	}
	customerID := q.CustomerID
	quotationID := q.ID
	return NewSale(NewSaleParams{
		OrganizationID: q.OrganizationID,
		CustomerID:     &customerID,
		CustomerName:   q.CustomerName,
		Items:          q.Items,
		PaymentMethod:  method,
		QuotationID:    &quotationID,
		CreatedAt:      now,
	})
}

// MarkConverted records the one-way conversion into sale
func (q *Quotation) MarkConverted(ctx context.Context, saleID uuid.UUID, at time.Time) error {
	if err := q.transition(ctx, quotationEventConvert, at); err != nil {
		return err
	}
	q.ConvertedToSaleID = &saleID
	q.ConvertedAt = &at
	q.AddDomainEvent(NewQuotationConvertedEvent(q))
	return nil
}

// ReceivableAmount returns what the receivable created on conversion should
// carry, or false when the quotation has no payment terms
func (q *Quotation) ReceivableAmount() (valueobject.Money, bool) {
	if q.PaymentTerms == nil {
		return valueobject.Money{}, false
	}
	if q.PaymentTerms.Currency == valueobject.VES {
		return q.TotalVES, true
	}
	return q.TotalUSD, true
}
