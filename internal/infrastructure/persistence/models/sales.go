package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flowi/backend/internal/domain/sales"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// LineItemModel holds the columns shared by sale and quotation lines
type LineItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	LineNo       int             `gorm:"not null"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description  string          `gorm:"type:varchar(300)"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPriceUSD decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPriceVES decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

func (m *LineItemModel) toDomain() sales.LineItem {
	return sales.LineItem{
		ProductID:    m.ProductID,
		Description:  m.Description,
		Quantity:     m.Quantity,
		UnitPriceUSD: m.UnitPriceUSD,
		UnitPriceVES: m.UnitPriceVES,
	}
}

func lineItemModel(li sales.LineItem, lineNo int) LineItemModel {
	return LineItemModel{
		ID:           uuid.New(),
		LineNo:       lineNo,
		ProductID:    li.ProductID,
		Description:  li.Description,
		Quantity:     li.Quantity,
		UnitPriceUSD: li.UnitPriceUSD,
		UnitPriceVES: li.UnitPriceVES,
	}
}

// SaleItemModel is one line of a sale
type SaleItemModel struct {
	LineItemModel
	SaleID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// SaleModel is the persistence model for the Sale aggregate root
type SaleModel struct {
	OrgAggregateModel
	SaleNumber    string              `gorm:"type:varchar(50);not null;index"`
	CustomerID    *uuid.UUID          `gorm:"type:uuid;index"`
	CustomerName  string              `gorm:"type:varchar(200)"`
	TotalUSD      decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	TotalVES      decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	PaidUSD       decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	PaidVES       decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	PaymentMethod sales.PaymentMethod `gorm:"type:varchar(20);not null;index"`
	QuotationID   *uuid.UUID          `gorm:"type:uuid;index"`
	Items         []SaleItemModel     `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale
func (m *SaleModel) ToDomain() *sales.Sale {
	items := make([]sales.LineItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].toDomain()
	}
	return &sales.Sale{
		OrgAggregateRoot: m.ToOrgAggregateRoot(),
		SaleNumber:       m.SaleNumber,
		CustomerID:       m.CustomerID,
		CustomerName:     m.CustomerName,
		Items:            items,
		TotalUSD:         valueobject.MustMoney(m.TotalUSD.String(), valueobject.USD),
		TotalVES:         valueobject.MustMoney(m.TotalVES.String(), valueobject.VES),
		PaidUSD:          valueobject.MustMoney(m.PaidUSD.String(), valueobject.USD),
		PaidVES:          valueobject.MustMoney(m.PaidVES.String(), valueobject.VES),
		PaymentMethod:    m.PaymentMethod,
		QuotationID:      m.QuotationID,
	}
}

// SaleModelFromDomain creates a persistence model, items included, from a domain Sale
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{
		SaleNumber:    s.SaleNumber,
		CustomerID:    s.CustomerID,
		CustomerName:  s.CustomerName,
		TotalUSD:      s.TotalUSD.Amount(),
		TotalVES:      s.TotalVES.Amount(),
		PaidUSD:       s.PaidUSD.Amount(),
		PaidVES:       s.PaidVES.Amount(),
		PaymentMethod: s.PaymentMethod,
		QuotationID:   s.QuotationID,
	}
	m.FromDomainOrgAggregateRoot(s.OrgAggregateRoot)
	m.Items = make([]SaleItemModel, len(s.Items))
	for i, li := range s.Items {
		m.Items[i] = SaleItemModel{LineItemModel: lineItemModel(li, i+1), SaleID: s.ID}
	}
	return m
}

// QuotationItemModel is one line of a quotation
type QuotationItemModel struct {
	LineItemModel
	QuotationID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (QuotationItemModel) TableName() string {
	return "quotation_items"
}

// QuotationModel is the persistence model for the Quotation aggregate root
type QuotationModel struct {
	OrgAggregateModel
	QuotationNumber   string                `gorm:"type:varchar(50);not null;index"`
	CustomerID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerName      string                `gorm:"type:varchar(200);not null"`
	TotalUSD          decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalVES          decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentMethod     sales.PaymentMethod   `gorm:"type:varchar(20);not null"`
	TermsDueInDays    *int                  `gorm:"column:terms_due_in_days"`
	TermsCurrency     string                `gorm:"type:varchar(3)"`
	ValidUntil        time.Time             `gorm:"not null;index"`
	Status            sales.QuotationStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	RejectReason      string                `gorm:"type:varchar(500)"`
	ConvertedToSaleID *uuid.UUID            `gorm:"type:uuid"`
	ConvertedAt       *time.Time
	Items             []QuotationItemModel `gorm:"foreignKey:QuotationID;references:ID"`
}

// TableName returns the table name for GORM
func (QuotationModel) TableName() string {
	return "quotations"
}

// ToDomain converts the persistence model to a domain Quotation
func (m *QuotationModel) ToDomain() (*sales.Quotation, error) {
	items := make([]sales.LineItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].toDomain()
	}
	var terms *sales.PaymentTerms
	if m.TermsDueInDays != nil {
		c, err := valueobject.ParseCurrency(m.TermsCurrency)
		if err != nil {
			return nil, fmt.Errorf("quotation %s: %w", m.ID, err)
		}
		terms = &sales.PaymentTerms{DueInDays: *m.TermsDueInDays, Currency: c}
	}
	return &sales.Quotation{
		OrgAggregateRoot:  m.ToOrgAggregateRoot(),
		QuotationNumber:   m.QuotationNumber,
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		Items:             items,
		TotalUSD:          valueobject.MustMoney(m.TotalUSD.String(), valueobject.USD),
		TotalVES:          valueobject.MustMoney(m.TotalVES.String(), valueobject.VES),
		PaymentMethod:     m.PaymentMethod,
		PaymentTerms:      terms,
		ValidUntil:        m.ValidUntil,
		Status:            m.Status,
		RejectReason:      m.RejectReason,
		ConvertedToSaleID: m.ConvertedToSaleID,
		ConvertedAt:       m.ConvertedAt,
	}, nil
}

// QuotationModelFromDomain creates a persistence model, items included, from a domain Quotation
func QuotationModelFromDomain(q *sales.Quotation) *QuotationModel {
	m := &QuotationModel{
		QuotationNumber:   q.QuotationNumber,
		CustomerID:        q.CustomerID,
		CustomerName:      q.CustomerName,
		TotalUSD:          q.TotalUSD.Amount(),
		TotalVES:          q.TotalVES.Amount(),
		PaymentMethod:     q.PaymentMethod,
		ValidUntil:        q.ValidUntil,
		Status:            q.Status,
		RejectReason:      q.RejectReason,
		ConvertedToSaleID: q.ConvertedToSaleID,
		ConvertedAt:       q.ConvertedAt,
	}
	if q.PaymentTerms != nil {
		days := q.PaymentTerms.DueInDays
		m.TermsDueInDays = &days
		m.TermsCurrency = q.PaymentTerms.Currency.String()
	}
	m.FromDomainOrgAggregateRoot(q.OrgAggregateRoot)
	m.Items = make([]QuotationItemModel, len(q.Items))
	for i, li := range q.Items {
		m.Items[i] = QuotationItemModel{LineItemModel: lineItemModel(li, i+1), QuotationID: q.ID}
	}
	return m
}

// MutableColumns returns the quotation columns a status change may write
func (m *QuotationModel) MutableColumns() map[string]any {
	return map[string]any{
		"status":               m.Status,
		"reject_reason":        m.RejectReason,
		"converted_to_sale_id": m.ConvertedToSaleID,
		"converted_at":         m.ConvertedAt,
		"version":              m.Version,
		"updated_at":           m.UpdatedAt,
	}
}
