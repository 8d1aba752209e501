package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flowi/backend/internal/domain/dashboard"
)

// ProductModel is the slice of the catalog the dashboard reads. Products
// are owned by the catalog; this service never writes them outside tests.
type ProductModel struct {
	BaseModel
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code           string          `gorm:"type:varchar(50);not null"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Stock          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active         bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToStockLevel converts the model to the dashboard's stock view
func (m *ProductModel) ToStockLevel() dashboard.StockLevel {
	return dashboard.StockLevel{
		ProductID: m.ID,
		Name:      m.Name,
		Stock:     m.Stock,
	}
}
