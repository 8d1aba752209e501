package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	exchangeapp "github.com/flowi/backend/internal/application/exchange"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
	"github.com/flowi/backend/internal/interfaces/http/format"
)

// RateService records and serves the USD/VES rate
type RateService interface {
	Current(ctx context.Context) (valueobject.ExchangeRate, error)
	SetRate(ctx context.Context, req exchangeapp.SetRateRequest) (*exchangeapp.RateResponse, error)
	History(ctx context.Context, f exchangeapp.HistoryFilter) ([]exchangeapp.RateResponse, error)
}

// CurrentRateResponse is the rate in force with its display string
type CurrentRateResponse struct {
	UsdToVes    decimal.Decimal `json:"usd_to_ves"`
	EffectiveAt time.Time       `json:"effective_at"`
	Source      string          `json:"source,omitempty"`
	Display     string          `json:"display"`
}

// RateHandler serves exchange rates
type RateHandler struct {
	BaseHandler
	service RateService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(service RateService) *RateHandler {
	return &RateHandler{service: service}
}

// Set records a new rate.
// POST /rates
func (h *RateHandler) Set(c *gin.Context) {
	var req exchangeapp.SetRateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rate, err := h.service.SetRate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rate)
}

// Current returns the latest rate.
// GET /rates/current
func (h *RateHandler) Current(c *gin.Context) {
	rate, err := h.service.Current(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CurrentRateResponse{
		UsdToVes:    rate.UsdToVes(),
		EffectiveAt: rate.EffectiveAt(),
		Source:      rate.Source(),
		Display:     format.FormatRate(rate.UsdToVes()),
	})
}

// History lists recorded rates, oldest first.
// GET /rates/history?from=&to=
func (h *RateHandler) History(c *gin.Context) {
	var f exchangeapp.HistoryFilter
	if !h.BindQuery(c, &f) {
		return
	}
	list, err := h.service.History(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}
