package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	exchangeapp "github.com/flowi/backend/internal/application/exchange"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
	"github.com/flowi/backend/internal/interfaces/http/dto"
)

type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) Current(ctx context.Context) (valueobject.ExchangeRate, error) {
	args := m.Called(ctx)
	return args.Get(0).(valueobject.ExchangeRate), args.Error(1)
}

func (m *MockRateService) SetRate(ctx context.Context, req exchangeapp.SetRateRequest) (*exchangeapp.RateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exchangeapp.RateResponse), args.Error(1)
}

func (m *MockRateService) History(ctx context.Context, f exchangeapp.HistoryFilter) ([]exchangeapp.RateResponse, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exchangeapp.RateResponse), args.Error(1)
}

func rateRouter(svc RateService) *gin.Engine {
	h := NewRateHandler(svc)
	return newTestEngine(func(g *gin.RouterGroup) {
		g.POST("/rates", h.Set)
		g.GET("/rates/current", h.Current)
		g.GET("/rates/history", h.History)
	})
}

func TestRateHandler_Set(t *testing.T) {
	svc := new(MockRateService)
	svc.On("SetRate", mock.Anything, mock.MatchedBy(func(req exchangeapp.SetRateRequest) bool {
		return req.UsdToVes == "36.50" && req.Source == "BCV"
	})).Return(&exchangeapp.RateResponse{ID: uuid.New(), UsdToVes: decimal.RequireFromString("36.5")}, nil)

	w := doRequest(rateRouter(svc), http.MethodPost, "/rates", map[string]any{"usd_to_ves": "36.50", "source": "BCV"})

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	svc.AssertExpectations(t)
}

func TestRateHandler_Set_RejectsNonPositive(t *testing.T) {
	svc := new(MockRateService)

	w := doRequest(rateRouter(svc), http.MethodPost, "/rates", map[string]any{"usd_to_ves": "-1"})

	requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	svc.AssertNotCalled(t, "SetRate", mock.Anything, mock.Anything)
}

func TestRateHandler_Current(t *testing.T) {
	rate, err := valueobject.NewExchangeRate(decimal.RequireFromString("36.50"), time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC), "BCV")
	require.NoError(t, err)
	svc := new(MockRateService)
	svc.On("Current", mock.Anything).Return(rate, nil)

	w := doRequest(rateRouter(svc), http.MethodGet, "/rates/current", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "36,5 Bs./$", data["display"])
	assert.Equal(t, "BCV", data["source"])
}

func TestRateHandler_Current_NoneRecorded(t *testing.T) {
	svc := new(MockRateService)
	svc.On("Current", mock.Anything).Return(valueobject.ExchangeRate{}, shared.ErrNotFound)

	w := doRequest(rateRouter(svc), http.MethodGet, "/rates/current", nil)

	requireErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestRateHandler_History(t *testing.T) {
	svc := new(MockRateService)
	svc.On("History", mock.Anything, mock.MatchedBy(func(f exchangeapp.HistoryFilter) bool {
		return f.From != nil && f.From.Day() == 1 && f.To != nil && f.To.Day() == 15
	})).Return([]exchangeapp.RateResponse{}, nil)

	w := doRequest(rateRouter(svc), http.MethodGet, "/rates/history?from=2026-10-01&to=2026-10-15", nil)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	svc.AssertExpectations(t)
}
