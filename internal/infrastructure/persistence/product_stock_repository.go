package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flowi/backend/internal/domain/dashboard"
	"github.com/flowi/backend/internal/infrastructure/persistence/models"
)

// GormProductStockReader implements dashboard.StockReader over the products table
type GormProductStockReader struct {
	db *gorm.DB
}

// NewGormProductStockReader creates a new GormProductStockReader
func NewGormProductStockReader(db *gorm.DB) *GormProductStockReader {
	return &GormProductStockReader{db: db}
}

// ListStockLevels returns the stock of every active product of an organization
func (r *GormProductStockReader) ListStockLevels(ctx context.Context, orgID uuid.UUID) ([]dashboard.StockLevel, error) {
	var productModels []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND active = ?", orgID, true).
		Order("name ASC").
		Find(&productModels).Error; err != nil {
		return nil, translateError(err, "list stock levels")
	}
	levels := make([]dashboard.StockLevel, len(productModels))
	for i := range productModels {
		levels[i] = productModels[i].ToStockLevel()
	}
	return levels, nil
}

// Ensure GormProductStockReader implements StockReader
var _ dashboard.StockReader = (*GormProductStockReader)(nil)
