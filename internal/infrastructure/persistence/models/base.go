package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// OrgAggregateModel provides common persistence fields for
// organization-scoped aggregate roots, including the optimistic lock version.
type OrgAggregateModel struct {
	BaseModel
	Version        int       `gorm:"not null;default:1"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainOrgAggregateRoot populates OrgAggregateModel from domain OrgAggregateRoot
func (m *OrgAggregateModel) FromDomainOrgAggregateRoot(o shared.OrgAggregateRoot) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.Version = o.Version
	m.OrganizationID = o.OrganizationID
}

// ToOrgAggregateRoot rebuilds the domain OrgAggregateRoot
func (m *OrgAggregateModel) ToOrgAggregateRoot() shared.OrgAggregateRoot {
	return shared.OrgAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		OrganizationID: m.OrganizationID,
		Version:        m.Version,
	}
}

// toMoney rebuilds a Money from its stored amount and currency columns
func toMoney(amount decimal.Decimal, currency string) (valueobject.Money, error) {
	c, err := valueobject.ParseCurrency(currency)
	if err != nil {
		return valueobject.Money{}, err
	}
	return valueobject.NewMoney(amount, c)
}
