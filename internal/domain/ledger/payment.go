package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// PaymentMethod is how a ledger payment was collected
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodMobile   PaymentMethod = "mobile"
	PaymentMethodZelle    PaymentMethod = "zelle"
	PaymentMethodCheck    PaymentMethod = "check"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer,
		PaymentMethodMobile, PaymentMethodZelle, PaymentMethodCheck:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentInput describes a payment to apply to an entry
type PaymentInput struct {
	Amount         valueobject.Money
	Method         PaymentMethod
	Reference      string
	Notes          string
	IdempotencyKey string
	ProcessedAt    time.Time
}

// PaymentRecord is the immutable audit record of one applied payment.
// Corrections are new records, never edits.
type PaymentRecord struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	LedgerEntryID  uuid.UUID
	Amount         valueobject.Money
	Method         PaymentMethod
	Reference      string
	Notes          string
	IdempotencyKey string
	ProcessedAt    time.Time
}

func newPaymentRecord(e *LedgerEntry, in PaymentInput, at time.Time) *PaymentRecord {
	return &PaymentRecord{
		ID:             uuid.New(),
		OrganizationID: e.OrganizationID,
		LedgerEntryID:  e.ID,
		Amount:         in.Amount,
		Method:         in.Method,
		Reference:      in.Reference,
		Notes:          in.Notes,
		IdempotencyKey: in.IdempotencyKey,
		ProcessedAt:    at,
	}
}
