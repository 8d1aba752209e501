package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// AggregateTypeLedgerEntry is the aggregate type name used on events
const AggregateTypeLedgerEntry = "LedgerEntry"

// EntryKind distinguishes what an entry represents
type EntryKind string

const (
	EntryKindReceivable  EntryKind = "RECEIVABLE"  // Owed to the business by a customer
	EntryKindPayable     EntryKind = "PAYABLE"     // Owed by the business to a supplier
	EntryKindInstallment EntryKind = "INSTALLMENT" // One slice of an installment plan
)

// IsValid checks if the kind is known
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindReceivable, EntryKindPayable, EntryKindInstallment:
		return true
	}
	return false
}

// String returns the string representation of EntryKind
func (k EntryKind) String() string {
	return string(k)
}

// EntryStatus represents where an entry is in its lifecycle
type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "PENDING"   // Nothing paid yet
	EntryStatusPartial   EntryStatus = "PARTIAL"   // 0 < paid < amount
	EntryStatusPaid      EntryStatus = "PAID"      // paid == amount
	EntryStatusOverdue   EntryStatus = "OVERDUE"   // Past due while pending or partial
	EntryStatusCancelled EntryStatus = "CANCELLED" // Cancelled before any payment
)

// IsValid checks if the status is known
func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusPending, EntryStatusPartial, EntryStatusPaid,
		EntryStatusOverdue, EntryStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of EntryStatus
func (s EntryStatus) String() string {
	return string(s)
}

// IsTerminal returns true for paid and cancelled entries
func (s EntryStatus) IsTerminal() bool {
	return s == EntryStatusPaid || s == EntryStatusCancelled
}

// CanBecomeOverdue returns true for statuses the overdue sweep may flag
func (s EntryStatus) CanBecomeOverdue() bool {
	return s == EntryStatusPending || s == EntryStatusPartial
}

// LedgerEntry is a single owed amount with its accumulated payments.
// Receivables, payables and installments share this aggregate.
type LedgerEntry struct {
	shared.OrgAggregateRoot
	Kind              EntryKind
	CounterpartyID    uuid.UUID
	CounterpartyName  string
	ReferenceNumber   string
	Amount            valueobject.Money
	PaidAmount        valueobject.Money
	DueDate           time.Time
	Status            EntryStatus
	PlanID            *uuid.UUID // Set for installments
	InstallmentNumber int        // 1-based, installments only
	SourceID          *uuid.UUID // Sale that produced the entry, if any
	CancelReason      string
	CancelledAt       *time.Time
	PaidAt            *time.Time
}

// NewEntryParams holds the inputs for NewLedgerEntry
type NewEntryParams struct {
	OrganizationID   uuid.UUID
	Kind             EntryKind
	CounterpartyID   uuid.UUID
	CounterpartyName string
	ReferenceNumber  string
	Amount           valueobject.Money
	DueDate          time.Time
	SourceID         *uuid.UUID
}

// NewLedgerEntry creates a pending entry with nothing paid
func NewLedgerEntry(p NewEntryParams) (*LedgerEntry, error) {
	if p.OrganizationID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Organization ID cannot be empty")
	}
	if !p.Kind.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown entry kind %q", p.Kind))
	}
	if p.CounterpartyID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Counterparty ID cannot be empty")
	}
	if p.CounterpartyName == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Counterparty name cannot be empty")
	}
	if p.ReferenceNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Reference number cannot be empty")
	}
	if len(p.ReferenceNumber) > 64 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Reference number cannot exceed 64 characters")
	}
	if !p.Amount.Currency().IsValid() {
		return nil, shared.NewDomainError(shared.CodeUnsupportedCurrency, fmt.Sprintf("Unsupported currency %q", p.Amount.Currency()))
	}
	if !p.Amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Amount must be positive")
	}
	if !valueobject.WithinMoneyScale(p.Amount.Amount()) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Amount %s is finer than %d decimal places", p.Amount.Amount(), valueobject.MoneyScale))
	}
	if p.DueDate.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Due date is required")
	}

	e := &LedgerEntry{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(p.OrganizationID),
		Kind:             p.Kind,
		CounterpartyID:   p.CounterpartyID,
		CounterpartyName: p.CounterpartyName,
		ReferenceNumber:  p.ReferenceNumber,
		Amount:           p.Amount,
		PaidAmount:       valueobject.Zero(p.Amount.Currency()),
		DueDate:          p.DueDate,
		Status:           EntryStatusPending,
		SourceID:         p.SourceID,
	}

	e.AddDomainEvent(NewLedgerEntryCreatedEvent(e))

	return e, nil
}

// Currency returns the currency the entry is denominated in
func (e *LedgerEntry) Currency() valueobject.Currency {
	return e.Amount.Currency()
}

// Outstanding returns amount minus paid amount, in the entry currency
func (e *LedgerEntry) Outstanding() valueobject.Money {
	out, err := e.Amount.Subtract(e.PaidAmount)
	if err != nil {
		// paid and face value always share currency
		return valueobject.Zero(e.Amount.Currency())
	}
	return out
}

// ApplyPayment adds payment to the paid amount and returns the audit record.
// Checks run in order: terminal state, currency, positive amount, overpayment.
// Overpayments are rejected, never clamped.
func (e *LedgerEntry) ApplyPayment(in PaymentInput) (*PaymentRecord, error) {
	if e.Status.IsTerminal() {
		return nil, shared.NewDomainError(shared.CodeTerminalState,
			fmt.Sprintf("Cannot apply payment to entry %s in %s status", e.ReferenceNumber, e.Status))
	}
	if in.Amount.Currency() != e.Currency() {
		return nil, shared.NewDomainError(shared.CodeCurrencyMismatch,
			fmt.Sprintf("Payment in %s cannot settle an entry in %s", in.Amount.Currency(), e.Currency()))
	}
	if !in.Amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be positive")
	}
	if !valueobject.WithinMoneyScale(in.Amount.Amount()) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Payment amount %s is finer than %d decimal places", in.Amount.Amount(), valueobject.MoneyScale))
	}
	if !in.Method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown payment method %q", in.Method))
	}

	newPaid, err := e.PaidAmount.Add(in.Amount)
	if err != nil {
		return nil, err
	}
	if newPaid.Amount().GreaterThan(e.Amount.Amount()) {
		return nil, shared.NewDomainError(shared.CodeOverpayment,
			fmt.Sprintf("Payment %s exceeds outstanding %s", in.Amount, e.Outstanding()))
	}

	at := in.ProcessedAt
	if at.IsZero() {
		at = time.Now()
	}

	record := newPaymentRecord(e, in, at)

	e.PaidAmount = newPaid
	switch {
	case newPaid.Amount().Equal(e.Amount.Amount()):
		e.Status = EntryStatusPaid
		e.PaidAt = &at
	case e.Status == EntryStatusOverdue:
		// still short and past due
	default:
		e.Status = EntryStatusPartial
	}
	e.Touch(at)
	e.IncrementVersion()

	e.AddDomainEvent(NewPaymentAppliedEvent(e, record))
	if e.Status == EntryStatusPaid {
		e.AddDomainEvent(NewLedgerEntryPaidEvent(e))
	}

	return record, nil
}

// MarkOverdue flags a pending or partial entry whose due date is before asOf.
// Returns false when nothing changed, which keeps the sweep idempotent.
func (e *LedgerEntry) MarkOverdue(asOf time.Time) bool {
	if !e.Status.CanBecomeOverdue() || !e.DueDate.Before(asOf) {
		return false
	}
	e.Status = EntryStatusOverdue
	e.Touch(asOf)
	e.IncrementVersion()
	e.AddDomainEvent(NewLedgerEntryOverdueEvent(e, asOf))
	return true
}

// Cancel cancels an entry that has no payments applied
func (e *LedgerEntry) Cancel(reason string, at time.Time) error {
	if e.PaidAmount.IsPositive() {
		return shared.NewDomainError(shared.CodeAlreadySettled,
			fmt.Sprintf("Cannot cancel entry %s with %s already paid", e.ReferenceNumber, e.PaidAmount))
	}
	if e.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeTerminalState,
			fmt.Sprintf("Cannot cancel entry %s in %s status", e.ReferenceNumber, e.Status))
	}

	e.Status = EntryStatusCancelled
	e.CancelReason = reason
	e.CancelledAt = &at
	e.Touch(at)
	e.IncrementVersion()

	e.AddDomainEvent(NewLedgerEntryCancelledEvent(e))

	return nil
}

// CanDelete reports whether the entry may be removed outright.
// Once money has been applied the entry can only be cancelled. Installments
// are never deleted since the plan total is the sum of its installments.
func (e *LedgerEntry) CanDelete() error {
	if e.IsInstallment() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Installment %s belongs to a plan; cancel it instead", e.ReferenceNumber))
	}
	if e.PaidAmount.IsPositive() {
		return shared.NewDomainError(shared.CodeAlreadySettled,
			fmt.Sprintf("Entry %s has payments and cannot be deleted", e.ReferenceNumber))
	}
	return nil
}

// IsInstallment returns true for entries that belong to a plan
func (e *LedgerEntry) IsInstallment() bool {
	return e.Kind == EntryKindInstallment
}

// CheckInvariants verifies the balance and status rules hold.
// Used by repositories before writing and by tests.
func (e *LedgerEntry) CheckInvariants() error {
	if e.PaidAmount.Currency() != e.Amount.Currency() {
		return shared.NewDomainError(shared.CodeCurrencyMismatch, "paid amount currency differs from face value")
	}
	paid, face := e.PaidAmount.Amount(), e.Amount.Amount()
	if paid.IsNegative() || paid.GreaterThan(face) {
		return shared.NewDomainError(shared.CodeInvalidState, "paid amount out of range")
	}
	fullyPaid := paid.Equal(face)
	if (e.Status == EntryStatusPaid) != fullyPaid {
		return shared.NewDomainError(shared.CodeInvalidState, "paid status does not match balance")
	}
	if e.Status == EntryStatusPartial && (paid.IsZero() || fullyPaid) {
		return shared.NewDomainError(shared.CodeInvalidState, "partial status does not match balance")
	}
	return nil
}
