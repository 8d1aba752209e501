package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flowi/backend/internal/domain/exchange"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/infrastructure/persistence/models"
)

// GormExchangeRateRepository implements RateRepository using GORM.
// Rows are only ever inserted.
type GormExchangeRateRepository struct {
	db *gorm.DB
}

// NewGormExchangeRateRepository creates a new GormExchangeRateRepository
func NewGormExchangeRateRepository(db *gorm.DB) *GormExchangeRateRepository {
	return &GormExchangeRateRepository{db: db}
}

// Append stores a new rate
func (r *GormExchangeRateRepository) Append(ctx context.Context, record *exchange.RateRecord) error {
	model := models.ExchangeRateModelFromDomain(record)
	return translateError(r.db.WithContext(ctx).Create(model).Error, "append exchange rate")
}

// EffectiveAt returns the latest rate effective at or before t
func (r *GormExchangeRateRepository) EffectiveAt(ctx context.Context, orgID uuid.UUID, t time.Time) (*exchange.RateRecord, error) {
	var model models.ExchangeRateModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND effective_at <= ?", orgID, t.UTC()).
		Order("effective_at DESC").Order("created_at DESC").
		First(&model).Error; err != nil {
		return nil, translateError(err, "exchange rate as of")
	}
	return model.ToDomain()
}

// History returns rates effective in [from, to), oldest first
func (r *GormExchangeRateRepository) History(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]exchange.RateRecord, error) {
	var rateModels []models.ExchangeRateModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND effective_at >= ? AND effective_at < ?", orgID, from.UTC(), to.UTC()).
		Order("effective_at ASC").
		Find(&rateModels).Error; err != nil {
		return nil, translateError(err, "exchange rate history")
	}
	out := make([]exchange.RateRecord, len(rateModels))
	for i := range rateModels {
		rec, err := rateModels[i].ToDomain()
		if err != nil {
			return nil, shared.WrapStorageError(err, "decode exchange rate")
		}
		out[i] = *rec
	}
	return out, nil
}

// Ensure GormExchangeRateRepository implements RateRepository
var _ exchange.RateRepository = (*GormExchangeRateRepository)(nil)
