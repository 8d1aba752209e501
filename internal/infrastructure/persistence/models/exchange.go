package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flowi/backend/internal/domain/exchange"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// ExchangeRateModel is one row of the append-only USD/VES rate history
type ExchangeRateModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index:idx_exchange_rates_org_effective,priority:1"`
	UsdToVes       decimal.Decimal `gorm:"column:usd_to_ves;type:decimal(18,6);not null"`
	EffectiveAt    time.Time       `gorm:"not null;index:idx_exchange_rates_org_effective,priority:2"`
	Source         string          `gorm:"type:varchar(50)"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExchangeRateModel) TableName() string {
	return "exchange_rates"
}

// ToDomain converts the persistence model to a domain RateRecord
func (m *ExchangeRateModel) ToDomain() (*exchange.RateRecord, error) {
	rate, err := valueobject.NewExchangeRate(m.UsdToVes, m.EffectiveAt, m.Source)
	if err != nil {
		return nil, err
	}
	return &exchange.RateRecord{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Rate:           rate,
		CreatedAt:      m.CreatedAt,
	}, nil
}

// ExchangeRateModelFromDomain creates a persistence model from a domain RateRecord
func ExchangeRateModelFromDomain(r *exchange.RateRecord) *ExchangeRateModel {
	return &ExchangeRateModel{
		ID:             r.ID,
		OrganizationID: r.OrganizationID,
		UsdToVes:       r.Rate.UsdToVes(),
		EffectiveAt:    r.Rate.EffectiveAt().UTC(),
		Source:         r.Rate.Source(),
		CreatedAt:      r.CreatedAt,
	}
}
