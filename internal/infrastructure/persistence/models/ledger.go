package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flowi/backend/internal/domain/ledger"
)

// LedgerEntryModel is the persistence model for the LedgerEntry aggregate root.
// The reference number is unique per organization and kind.
type LedgerEntryModel struct {
	BaseModel
	Version           int                `gorm:"not null;default:1"`
	OrganizationID    uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_ledger_entries_org_kind_ref,priority:1"`
	Kind              ledger.EntryKind   `gorm:"type:varchar(20);not null;uniqueIndex:idx_ledger_entries_org_kind_ref,priority:2"`
	CounterpartyID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	CounterpartyName  string             `gorm:"type:varchar(200);not null"`
	ReferenceNumber   string             `gorm:"type:varchar(80);not null;uniqueIndex:idx_ledger_entries_org_kind_ref,priority:3"`
	Amount            decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	PaidAmount        decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Currency          string             `gorm:"type:varchar(3);not null;index"`
	DueDate           time.Time          `gorm:"not null;index"`
	Status            ledger.EntryStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PlanID            *uuid.UUID         `gorm:"type:uuid;index"`
	InstallmentNumber int                `gorm:"not null;default:0"`
	SourceID          *uuid.UUID         `gorm:"type:uuid;index"`
	CancelReason      string             `gorm:"type:varchar(500)"`
	CancelledAt       *time.Time
	PaidAt            *time.Time
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry
func (m *LedgerEntryModel) ToDomain() (*ledger.LedgerEntry, error) {
	amount, err := toMoney(m.Amount, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("ledger entry %s: %w", m.ID, err)
	}
	paid, err := toMoney(m.PaidAmount, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("ledger entry %s: %w", m.ID, err)
	}
	return &ledger.LedgerEntry{
		OrgAggregateRoot:  m.orgModel().ToOrgAggregateRoot(),
		Kind:              m.Kind,
		CounterpartyID:    m.CounterpartyID,
		CounterpartyName:  m.CounterpartyName,
		ReferenceNumber:   m.ReferenceNumber,
		Amount:            amount,
		PaidAmount:        paid,
		DueDate:           m.DueDate,
		Status:            m.Status,
		PlanID:            m.PlanID,
		InstallmentNumber: m.InstallmentNumber,
		SourceID:          m.SourceID,
		CancelReason:      m.CancelReason,
		CancelledAt:       m.CancelledAt,
		PaidAt:            m.PaidAt,
	}, nil
}

func (m *LedgerEntryModel) orgModel() *OrgAggregateModel {
	return &OrgAggregateModel{BaseModel: m.BaseModel, Version: m.Version, OrganizationID: m.OrganizationID}
}

// FromDomain populates the persistence model from a domain LedgerEntry
func (m *LedgerEntryModel) FromDomain(e *ledger.LedgerEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.Version = e.Version
	m.OrganizationID = e.OrganizationID
	m.Kind = e.Kind
	m.CounterpartyID = e.CounterpartyID
	m.CounterpartyName = e.CounterpartyName
	m.ReferenceNumber = e.ReferenceNumber
	m.Amount = e.Amount.Amount()
	m.PaidAmount = e.PaidAmount.Amount()
	m.Currency = e.Amount.Currency().String()
	m.DueDate = e.DueDate
	m.Status = e.Status
	m.PlanID = e.PlanID
	m.InstallmentNumber = e.InstallmentNumber
	m.SourceID = e.SourceID
	m.CancelReason = e.CancelReason
	m.CancelledAt = e.CancelledAt
	m.PaidAt = e.PaidAt
}

// MutableColumns returns the columns an update may change. A map is used
// so zero values such as an empty cancel reason are written too.
func (m *LedgerEntryModel) MutableColumns() map[string]any {
	return map[string]any{
		"paid_amount":   m.PaidAmount,
		"status":        m.Status,
		"due_date":      m.DueDate,
		"cancel_reason": m.CancelReason,
		"cancelled_at":  m.CancelledAt,
		"paid_at":       m.PaidAt,
		"version":       m.Version,
		"updated_at":    m.UpdatedAt,
	}
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain LedgerEntry
func LedgerEntryModelFromDomain(e *ledger.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}

// PaymentRecordModel is the persistence model for an applied payment.
// Payment records are append-only.
type PaymentRecordModel struct {
	ID             uuid.UUID            `gorm:"type:uuid;primary_key"`
	OrganizationID uuid.UUID            `gorm:"type:uuid;not null;index"`
	LedgerEntryID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency       string               `gorm:"type:varchar(3);not null"`
	Method         ledger.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference      string               `gorm:"type:varchar(100)"`
	Notes          string               `gorm:"type:text"`
	IdempotencyKey string               `gorm:"type:varchar(128);index"`
	ProcessedAt    time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PaymentRecordModel) TableName() string {
	return "payment_records"
}

// ToDomain converts the persistence model to a domain PaymentRecord
func (m *PaymentRecordModel) ToDomain() (*ledger.PaymentRecord, error) {
	amount, err := toMoney(m.Amount, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("payment record %s: %w", m.ID, err)
	}
	return &ledger.PaymentRecord{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		LedgerEntryID:  m.LedgerEntryID,
		Amount:         amount,
		Method:         m.Method,
		Reference:      m.Reference,
		Notes:          m.Notes,
		IdempotencyKey: m.IdempotencyKey,
		ProcessedAt:    m.ProcessedAt,
	}, nil
}

// PaymentRecordModelFromDomain creates a new persistence model from a domain PaymentRecord
func PaymentRecordModelFromDomain(p *ledger.PaymentRecord) *PaymentRecordModel {
	return &PaymentRecordModel{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		LedgerEntryID:  p.LedgerEntryID,
		Amount:         p.Amount.Amount(),
		Currency:       p.Amount.Currency().String(),
		Method:         p.Method,
		Reference:      p.Reference,
		Notes:          p.Notes,
		IdempotencyKey: p.IdempotencyKey,
		ProcessedAt:    p.ProcessedAt,
	}
}

// InstallmentPlanModel is the persistence model for the InstallmentPlan
// header. Its installments live in ledger_entries keyed by plan_id.
type InstallmentPlanModel struct {
	OrgAggregateModel
	CounterpartyID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	CounterpartyName string           `gorm:"type:varchar(200);not null"`
	ReferencePrefix  string           `gorm:"type:varchar(60);not null"`
	TotalAmount      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Currency         string           `gorm:"type:varchar(3);not null"`
	Count            int              `gorm:"not null"`
	Frequency        ledger.Frequency `gorm:"type:varchar(20);not null"`
	FirstDueDate     time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InstallmentPlanModel) TableName() string {
	return "installment_plans"
}

// ToDomain converts the persistence model to a domain InstallmentPlan header
func (m *InstallmentPlanModel) ToDomain() (*ledger.InstallmentPlan, error) {
	total, err := toMoney(m.TotalAmount, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("installment plan %s: %w", m.ID, err)
	}
	return &ledger.InstallmentPlan{
		OrgAggregateRoot: m.ToOrgAggregateRoot(),
		CounterpartyID:   m.CounterpartyID,
		CounterpartyName: m.CounterpartyName,
		ReferencePrefix:  m.ReferencePrefix,
		TotalAmount:      total,
		Count:            m.Count,
		Frequency:        m.Frequency,
		FirstDueDate:     m.FirstDueDate,
	}, nil
}

// InstallmentPlanModelFromDomain creates a plan model without its
// installments; they are stored through the ledger entry repository.
func InstallmentPlanModelFromDomain(p *ledger.InstallmentPlan) *InstallmentPlanModel {
	m := &InstallmentPlanModel{
		CounterpartyID:   p.CounterpartyID,
		CounterpartyName: p.CounterpartyName,
		ReferencePrefix:  p.ReferencePrefix,
		TotalAmount:      p.TotalAmount.Amount(),
		Currency:         p.TotalAmount.Currency().String(),
		Count:            p.Count,
		Frequency:        p.Frequency,
		FirstDueDate:     p.FirstDueDate,
	}
	m.FromDomainOrgAggregateRoot(p.OrgAggregateRoot)
	return m
}
