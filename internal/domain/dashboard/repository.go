package dashboard

import (
	"context"

	"github.com/google/uuid"
)

// StockReader reads on-hand stock of the active products of an organization
type StockReader interface {
	ListStockLevels(ctx context.Context, orgID uuid.UUID) ([]StockLevel, error)
}
