package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/infrastructure/persistence/models"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// FindByID finds a ledger entry by its ID
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.LedgerEntry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "find ledger entry")
	}
	return model.ToDomain()
}

// FindByIDForOrg finds a ledger entry by ID within an organization
func (r *GormLedgerEntryRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*ledger.LedgerEntry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "find ledger entry")
	}
	return model.ToDomain()
}

// FindAllForOrg lists the entries of an organization with filtering
func (r *GormLedgerEntryRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter ledger.EntryFilter) ([]ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Where("organization_id = ?", orgID)
	query = applyEntryFilter(query, filter)
	query = applyPage(query, filter.Filter, LedgerEntrySortFields, "created_at")

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, translateError(err, "list ledger entries")
	}
	return entriesToDomain(entryModels)
}

// CountForOrg counts the entries of an organization matching filter
func (r *GormLedgerEntryRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter ledger.EntryFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Where("organization_id = ?", orgID)
	query = applyEntryFilter(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError(err, "count ledger entries")
	}
	return count, nil
}

// FindSweepCandidates returns pending and partial entries of every
// organization that fell due before asOf, oldest due date first
func (r *GormLedgerEntryRepository) FindSweepCandidates(ctx context.Context, asOf time.Time) ([]ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date < ?",
			[]ledger.EntryStatus{ledger.EntryStatusPending, ledger.EntryStatusPartial}, asOf).
		Order("due_date ASC").
		Find(&entryModels).Error; err != nil {
		return nil, translateError(err, "find sweep candidates")
	}
	return entriesToDomain(entryModels)
}

// ExistsByReference checks whether a reference is taken for kind within an organization
func (r *GormLedgerEntryRepository) ExistsByReference(ctx context.Context, orgID uuid.UUID, kind ledger.EntryKind, reference string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Where("organization_id = ? AND kind = ? AND reference_number = ?", orgID, kind, reference).
		Count(&count).Error; err != nil {
		return false, translateError(err, "check reference")
	}
	return count > 0, nil
}

// Create inserts a new ledger entry
func (r *GormLedgerEntryRepository) Create(ctx context.Context, entry *ledger.LedgerEntry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	return translateError(r.db.WithContext(ctx).Create(model).Error, "create ledger entry")
}

// SaveWithLock writes the mutable columns only when the stored version is
// the one the entry was loaded with (its current version minus one)
func (r *GormLedgerEntryRepository) SaveWithLock(ctx context.Context, entry *ledger.LedgerEntry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	result := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("id = ? AND version = ?", entry.ID, entry.Version-1).
		Updates(model.MutableColumns())

	if result.Error != nil {
		return translateError(result.Error, "save ledger entry")
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// DeleteForOrg removes a ledger entry of an organization
func (r *GormLedgerEntryRepository) DeleteForOrg(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.LedgerEntryModel{}, "organization_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		return translateError(result.Error, "delete ledger entry")
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func applyEntryFilter(query *gorm.DB, filter ledger.EntryFilter) *gorm.DB {
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.CounterpartyID != nil {
		query = query.Where("counterparty_id = ?", *filter.CounterpartyID)
	}
	if filter.Currency != nil {
		query = query.Where("currency = ?", filter.Currency.String())
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date < ?", *filter.DueTo)
	}
	if filter.PlanID != nil {
		query = query.Where("plan_id = ?", *filter.PlanID)
	}
	return query
}

func entriesToDomain(entryModels []models.LedgerEntryModel) ([]ledger.LedgerEntry, error) {
	entries := make([]ledger.LedgerEntry, len(entryModels))
	for i := range entryModels {
		e, err := entryModels[i].ToDomain()
		if err != nil {
			return nil, shared.WrapStorageError(err, "decode ledger entry")
		}
		entries[i] = *e
	}
	return entries, nil
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ ledger.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
