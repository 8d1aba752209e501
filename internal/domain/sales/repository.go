package sales

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flowi/backend/internal/domain/shared"
)

// SaleFilter defines filtering options for sale queries.
// A zero PageSize returns every matching row.
type SaleFilter struct {
	shared.Filter
	From          *time.Time     // created_at >= From
	To            *time.Time     // created_at < To
	PaymentMethod *PaymentMethod // Filter by method
	CustomerID    *uuid.UUID     // Filter by customer
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// Create inserts a new sale with its items
	Create(ctx context.Context, sale *Sale) error

	// FindByIDForOrg finds a sale by ID within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Sale, error)

	// FindAllForOrg lists sales of an organization
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter SaleFilter) ([]Sale, error)
}

// QuotationFilter defines filtering options for quotation queries
type QuotationFilter struct {
	shared.Filter
	Status     *QuotationStatus
	CustomerID *uuid.UUID
}

// QuotationRepository defines the interface for quotation persistence
type QuotationRepository interface {
	// Create inserts a new quotation with its items
	Create(ctx context.Context, q *Quotation) error

	// FindByIDForOrg finds a quotation by ID within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Quotation, error)

	// FindAllForOrg lists quotations of an organization
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter QuotationFilter) ([]Quotation, error)

	// FindExpirable returns open quotations, across all organizations,
	// whose validity ended before asOf
	FindExpirable(ctx context.Context, asOf time.Time) ([]Quotation, error)

	// ExistsByNumber checks quotation number uniqueness within an organization
	ExistsByNumber(ctx context.Context, orgID uuid.UUID, number string) (bool, error)

	// SaveWithLock updates status fields if the stored version matches
	SaveWithLock(ctx context.Context, q *Quotation) error
}
