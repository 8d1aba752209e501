package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flowi/backend/internal/domain/sales"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/infrastructure/persistence/models"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Create inserts a sale together with its items
func (r *GormSaleRepository) Create(ctx context.Context, sale *sales.Sale) error {
	model := models.SaleModelFromDomain(sale)
	return translateError(r.db.WithContext(ctx).Create(model).Error, "create sale")
}

// FindByIDForOrg finds a sale by ID within an organization
func (r *GormSaleRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderLines).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "find sale")
	}
	return model.ToDomain(), nil
}

// FindAllForOrg lists the sales of an organization
func (r *GormSaleRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter sales.SaleFilter) ([]sales.Sale, error) {
	var saleModels []models.SaleModel
	query := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Preload("Items", orderLines).
		Where("organization_id = ?", orgID)
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	query = applyPage(query, filter.Filter, SaleSortFields, "created_at")

	if err := query.Find(&saleModels).Error; err != nil {
		return nil, translateError(err, "list sales")
	}
	out := make([]sales.Sale, len(saleModels))
	for i := range saleModels {
		out[i] = *saleModels[i].ToDomain()
	}
	return out, nil
}

// Ensure GormSaleRepository implements SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)

// GormQuotationRepository implements QuotationRepository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

// Create inserts a quotation together with its items
func (r *GormQuotationRepository) Create(ctx context.Context, q *sales.Quotation) error {
	model := models.QuotationModelFromDomain(q)
	return translateError(r.db.WithContext(ctx).Create(model).Error, "create quotation")
}

// FindByIDForOrg finds a quotation by ID within an organization
func (r *GormQuotationRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*sales.Quotation, error) {
	var model models.QuotationModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderLines).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "find quotation")
	}
	return model.ToDomain()
}

// FindAllForOrg lists the quotations of an organization
func (r *GormQuotationRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter sales.QuotationFilter) ([]sales.Quotation, error) {
	var quotationModels []models.QuotationModel
	query := r.db.WithContext(ctx).Model(&models.QuotationModel{}).
		Preload("Items", orderLines).
		Where("organization_id = ?", orgID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	query = applyPage(query, filter.Filter, QuotationSortFields, "created_at")

	if err := query.Find(&quotationModels).Error; err != nil {
		return nil, translateError(err, "list quotations")
	}
	return quotationsToDomain(quotationModels)
}

// FindExpirable returns open quotations of every organization whose
// validity ended before asOf
func (r *GormQuotationRepository) FindExpirable(ctx context.Context, asOf time.Time) ([]sales.Quotation, error) {
	var quotationModels []models.QuotationModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderLines).
		Where("status IN ? AND valid_until < ?", []sales.QuotationStatus{
			sales.QuotationStatusDraft, sales.QuotationStatusSent, sales.QuotationStatusApproved,
		}, asOf).
		Order("valid_until ASC").
		Find(&quotationModels).Error; err != nil {
		return nil, translateError(err, "find expirable quotations")
	}
	return quotationsToDomain(quotationModels)
}

// ExistsByNumber checks quotation number uniqueness within an organization
func (r *GormQuotationRepository) ExistsByNumber(ctx context.Context, orgID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.QuotationModel{}).
		Where("organization_id = ? AND quotation_number = ?", orgID, number).
		Count(&count).Error; err != nil {
		return false, translateError(err, "check quotation number")
	}
	return count > 0, nil
}

// SaveWithLock writes the status columns only when the stored version is
// the one the quotation was loaded with
func (r *GormQuotationRepository) SaveWithLock(ctx context.Context, q *sales.Quotation) error {
	model := models.QuotationModelFromDomain(q)
	result := r.db.WithContext(ctx).
		Model(&models.QuotationModel{}).
		Where("id = ? AND version = ?", q.ID, q.Version-1).
		Updates(model.MutableColumns())

	if result.Error != nil {
		return translateError(result.Error, "save quotation")
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

func quotationsToDomain(quotationModels []models.QuotationModel) ([]sales.Quotation, error) {
	out := make([]sales.Quotation, len(quotationModels))
	for i := range quotationModels {
		q, err := quotationModels[i].ToDomain()
		if err != nil {
			return nil, shared.WrapStorageError(err, "decode quotation")
		}
		out[i] = *q
	}
	return out, nil
}

// Ensure GormQuotationRepository implements QuotationRepository
var _ sales.QuotationRepository = (*GormQuotationRepository)(nil)
