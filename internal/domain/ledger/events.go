package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// Event type names
const (
	EventTypeLedgerEntryCreated     = "LedgerEntryCreated"
	EventTypePaymentApplied         = "PaymentApplied"
	EventTypeLedgerEntryPaid        = "LedgerEntryPaid"
	EventTypeLedgerEntryOverdue     = "LedgerEntryOverdue"
	EventTypeLedgerEntryCancelled   = "LedgerEntryCancelled"
	EventTypeInstallmentPlanCreated = "InstallmentPlanCreated"
)

// LedgerEntryCreatedEvent is raised when a new entry is opened
type LedgerEntryCreatedEvent struct {
	shared.BaseDomainEvent
	Kind            EntryKind         `json:"kind"`
	ReferenceNumber string            `json:"reference_number"`
	CounterpartyID  uuid.UUID         `json:"counterparty_id"`
	Amount          valueobject.Money `json:"amount"`
	DueDate         time.Time         `json:"due_date"`
}

// NewLedgerEntryCreatedEvent creates a new LedgerEntryCreatedEvent
func NewLedgerEntryCreatedEvent(e *LedgerEntry) *LedgerEntryCreatedEvent {
	return &LedgerEntryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntryCreated, AggregateTypeLedgerEntry, e.ID, e.OrganizationID),
		Kind:            e.Kind,
		ReferenceNumber: e.ReferenceNumber,
		CounterpartyID:  e.CounterpartyID,
		Amount:          e.Amount,
		DueDate:         e.DueDate,
	}
}

// PaymentAppliedEvent is raised for every accepted payment
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	PaymentRecordID uuid.UUID         `json:"payment_record_id"`
	ReferenceNumber string            `json:"reference_number"`
	Amount          valueobject.Money `json:"amount"`
	Method          PaymentMethod     `json:"method"`
	PaidAmount      valueobject.Money `json:"paid_amount"`
	Outstanding     valueobject.Money `json:"outstanding"`
	Status          EntryStatus       `json:"status"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(e *LedgerEntry, r *PaymentRecord) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypeLedgerEntry, e.ID, e.OrganizationID),
		PaymentRecordID: r.ID,
		ReferenceNumber: e.ReferenceNumber,
		Amount:          r.Amount,
		Method:          r.Method,
		PaidAmount:      e.PaidAmount,
		Outstanding:     e.Outstanding(),
		Status:          e.Status,
	}
}

// LedgerEntryPaidEvent is raised when the paid amount reaches the face value
type LedgerEntryPaidEvent struct {
	shared.BaseDomainEvent
	ReferenceNumber string            `json:"reference_number"`
	Amount          valueobject.Money `json:"amount"`
}

// NewLedgerEntryPaidEvent creates a new LedgerEntryPaidEvent
func NewLedgerEntryPaidEvent(e *LedgerEntry) *LedgerEntryPaidEvent {
	return &LedgerEntryPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntryPaid, AggregateTypeLedgerEntry, e.ID, e.OrganizationID),
		ReferenceNumber: e.ReferenceNumber,
		Amount:          e.Amount,
	}
}

// LedgerEntryOverdueEvent is raised when the sweep flags an entry
type LedgerEntryOverdueEvent struct {
	shared.BaseDomainEvent
	ReferenceNumber string            `json:"reference_number"`
	DueDate         time.Time         `json:"due_date"`
	AsOf            time.Time         `json:"as_of"`
	Outstanding     valueobject.Money `json:"outstanding"`
}

// NewLedgerEntryOverdueEvent creates a new LedgerEntryOverdueEvent
func NewLedgerEntryOverdueEvent(e *LedgerEntry, asOf time.Time) *LedgerEntryOverdueEvent {
	return &LedgerEntryOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntryOverdue, AggregateTypeLedgerEntry, e.ID, e.OrganizationID),
		ReferenceNumber: e.ReferenceNumber,
		DueDate:         e.DueDate,
		AsOf:            asOf,
		Outstanding:     e.Outstanding(),
	}
}

// LedgerEntryCancelledEvent is raised when an unpaid entry is cancelled
type LedgerEntryCancelledEvent struct {
	shared.BaseDomainEvent
	ReferenceNumber string `json:"reference_number"`
	Reason          string `json:"reason"`
}

// NewLedgerEntryCancelledEvent creates a new LedgerEntryCancelledEvent
func NewLedgerEntryCancelledEvent(e *LedgerEntry) *LedgerEntryCancelledEvent {
	return &LedgerEntryCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntryCancelled, AggregateTypeLedgerEntry, e.ID, e.OrganizationID),
		ReferenceNumber: e.ReferenceNumber,
		Reason:          e.CancelReason,
	}
}

// InstallmentPlanCreatedEvent is raised when a plan and its installments are created
type InstallmentPlanCreatedEvent struct {
	shared.BaseDomainEvent
	ReferencePrefix string            `json:"reference_prefix"`
	TotalAmount     valueobject.Money `json:"total_amount"`
	Count           int               `json:"count"`
	Frequency       Frequency         `json:"frequency"`
}

// NewInstallmentPlanCreatedEvent creates a new InstallmentPlanCreatedEvent
func NewInstallmentPlanCreatedEvent(p *InstallmentPlan) *InstallmentPlanCreatedEvent {
	return &InstallmentPlanCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentPlanCreated, AggregateTypeInstallmentPlan, p.ID, p.OrganizationID),
		ReferencePrefix: p.ReferencePrefix,
		TotalAmount:     p.TotalAmount,
		Count:           p.Count,
		Frequency:       p.Frequency,
	}
}
