package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// EntryFilter defines filtering options for ledger entry queries.
// A zero PageSize returns every matching row.
type EntryFilter struct {
	shared.Filter
	Kind           *EntryKind            // Filter by kind
	Statuses       []EntryStatus         // Filter by any of these statuses
	CounterpartyID *uuid.UUID            // Filter by customer or supplier
	Currency       *valueobject.Currency // Filter by denomination
	DueFrom        *time.Time            // Due date range start, inclusive
	DueTo          *time.Time            // Due date range end, exclusive
	PlanID         *uuid.UUID            // Installments of one plan
}

// LedgerEntryRepository defines the interface for ledger entry persistence
type LedgerEntryRepository interface {
	// FindByID finds an entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// FindByIDForOrg finds an entry by ID within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*LedgerEntry, error)

	// FindAllForOrg lists entries of an organization
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter EntryFilter) ([]LedgerEntry, error)

	// CountForOrg counts entries matching filter, ignoring pagination
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter EntryFilter) (int64, error)

	// FindSweepCandidates returns pending and partial entries, across all
	// organizations, whose due date is before asOf
	FindSweepCandidates(ctx context.Context, asOf time.Time) ([]LedgerEntry, error)

	// ExistsByReference checks the (kind, organization, reference) uniqueness key
	ExistsByReference(ctx context.Context, orgID uuid.UUID, kind EntryKind, reference string) (bool, error)

	// Create inserts a new entry
	Create(ctx context.Context, entry *LedgerEntry) error

	// SaveWithLock updates an entry only if its stored version is the one it was loaded with.
	// Returns shared.ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, entry *LedgerEntry) error

	// DeleteForOrg removes an entry of an organization
	DeleteForOrg(ctx context.Context, orgID, id uuid.UUID) error
}

// PaymentRecordRepository stores the append-only payment audit trail
type PaymentRecordRepository interface {
	// Create appends a record
	Create(ctx context.Context, record *PaymentRecord) error

	// FindByEntry returns the records of an entry, oldest first
	FindByEntry(ctx context.Context, entryID uuid.UUID) ([]PaymentRecord, error)
}

// InstallmentPlanRepository defines the interface for plan persistence.
// Installments themselves are ledger entries and live in LedgerEntryRepository.
type InstallmentPlanRepository interface {
	// Create inserts the plan header
	Create(ctx context.Context, plan *InstallmentPlan) error

	// FindByIDForOrg loads the plan header, without installments
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*InstallmentPlan, error)
}
