package sales

import (
	"time"

	"github.com/google/uuid"

	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// Event type names
const (
	EventTypeSaleRecorded       = "SaleRecorded"
	EventTypeQuotationConverted = "QuotationConverted"
	EventTypeQuotationExpired   = "QuotationExpired"
)

// SaleRecordedEvent is raised when a sale is stored
type SaleRecordedEvent struct {
	shared.BaseDomainEvent
	SaleNumber    string            `json:"sale_number"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	TotalUSD      valueobject.Money `json:"total_usd"`
	TotalVES      valueobject.Money `json:"total_ves"`
}

// NewSaleRecordedEvent creates a new SaleRecordedEvent
func NewSaleRecordedEvent(s *Sale) *SaleRecordedEvent {
	return &SaleRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleRecorded, AggregateTypeSale, s.ID, s.OrganizationID),
		SaleNumber:      s.SaleNumber,
		PaymentMethod:   s.PaymentMethod,
		TotalUSD:        s.TotalUSD,
		TotalVES:        s.TotalVES,
	}
}

// QuotationConvertedEvent is raised when a quotation becomes a sale
type QuotationConvertedEvent struct {
	shared.BaseDomainEvent
	QuotationNumber string    `json:"quotation_number"`
	SaleID          uuid.UUID `json:"sale_id"`
	ConvertedAt     time.Time `json:"converted_at"`
}

// NewQuotationConvertedEvent creates a new QuotationConvertedEvent
func NewQuotationConvertedEvent(q *Quotation) *QuotationConvertedEvent {
	e := &QuotationConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationConverted, AggregateTypeQuotation, q.ID, q.OrganizationID),
		QuotationNumber: q.QuotationNumber,
	}
	if q.ConvertedToSaleID != nil {
		e.SaleID = *q.ConvertedToSaleID
	}
	if q.ConvertedAt != nil {
		e.ConvertedAt = *q.ConvertedAt
	}
	return e
}

// QuotationExpiredEvent is raised when the expiry sweep closes a quotation
type QuotationExpiredEvent struct {
	shared.BaseDomainEvent
	QuotationNumber string    `json:"quotation_number"`
	ValidUntil      time.Time `json:"valid_until"`
}

// NewQuotationExpiredEvent creates a new QuotationExpiredEvent
func NewQuotationExpiredEvent(q *Quotation) *QuotationExpiredEvent {
	return &QuotationExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationExpired, AggregateTypeQuotation, q.ID, q.OrganizationID),
		QuotationNumber: q.QuotationNumber,
		ValidUntil:      q.ValidUntil,
	}
}
