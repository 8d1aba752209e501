package exchange

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flowi/backend/internal/domain/exchange"
)

// SetRateRequest represents a request to record a new USD/VES rate
type SetRateRequest struct {
	UsdToVes    string     `json:"usd_to_ves" binding:"required,decimal_positive"`
	EffectiveAt *time.Time `json:"effective_at"` // defaults to now
	Source      string     `json:"source" binding:"max=50"`
}

// HistoryFilter represents query parameters for the rate history
type HistoryFilter struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// RateResponse represents one recorded rate in API responses
type RateResponse struct {
	ID          uuid.UUID       `json:"id"`
	UsdToVes    decimal.Decimal `json:"usd_to_ves"`
	EffectiveAt time.Time       `json:"effective_at"`
	Source      string          `json:"source,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToRateResponse converts a stored rate to a response
func ToRateResponse(rec *exchange.RateRecord) RateResponse {
	return RateResponse{
		ID:          rec.ID,
		UsdToVes:    rec.Rate.UsdToVes(),
		EffectiveAt: rec.Rate.EffectiveAt(),
		Source:      rec.Rate.Source(),
		CreatedAt:   rec.CreatedAt,
	}
}
