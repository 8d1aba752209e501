package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/infrastructure/persistence/models"
)

// GormPaymentRecordRepository implements PaymentRecordRepository using GORM
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// Create appends a payment record
func (r *GormPaymentRecordRepository) Create(ctx context.Context, record *ledger.PaymentRecord) error {
	model := models.PaymentRecordModelFromDomain(record)
	return translateError(r.db.WithContext(ctx).Create(model).Error, "create payment record")
}

// FindByEntry returns the payment records of an entry, oldest first
func (r *GormPaymentRecordRepository) FindByEntry(ctx context.Context, entryID uuid.UUID) ([]ledger.PaymentRecord, error) {
	var recordModels []models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Where("ledger_entry_id = ?", entryID).
		Order("processed_at ASC").
		Find(&recordModels).Error; err != nil {
		return nil, translateError(err, "list payment records")
	}
	records := make([]ledger.PaymentRecord, len(recordModels))
	for i := range recordModels {
		rec, err := recordModels[i].ToDomain()
		if err != nil {
			return nil, shared.WrapStorageError(err, "decode payment record")
		}
		records[i] = *rec
	}
	return records, nil
}

// Ensure GormPaymentRecordRepository implements PaymentRecordRepository
var _ ledger.PaymentRecordRepository = (*GormPaymentRecordRepository)(nil)

// GormInstallmentPlanRepository implements InstallmentPlanRepository using GORM
type GormInstallmentPlanRepository struct {
	db *gorm.DB
}

// NewGormInstallmentPlanRepository creates a new GormInstallmentPlanRepository
func NewGormInstallmentPlanRepository(db *gorm.DB) *GormInstallmentPlanRepository {
	return &GormInstallmentPlanRepository{db: db}
}

// Create inserts the plan header
func (r *GormInstallmentPlanRepository) Create(ctx context.Context, plan *ledger.InstallmentPlan) error {
	model := models.InstallmentPlanModelFromDomain(plan)
	return translateError(r.db.WithContext(ctx).Create(model).Error, "create installment plan")
}

// FindByIDForOrg loads a plan header within an organization
func (r *GormInstallmentPlanRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*ledger.InstallmentPlan, error) {
	var model models.InstallmentPlanModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "find installment plan")
	}
	return model.ToDomain()
}

// Ensure GormInstallmentPlanRepository implements InstallmentPlanRepository
var _ ledger.InstallmentPlanRepository = (*GormInstallmentPlanRepository)(nil)
