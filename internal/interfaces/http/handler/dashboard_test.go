package handler

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowi/backend/internal/domain/dashboard"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
	"github.com/flowi/backend/internal/interfaces/http/dto"
)

type stubDashboardService struct {
	snap      *dashboard.Snapshot
	err       error
	exportErr error
	orgID     uuid.UUID
}

func (s *stubDashboardService) Snapshot(_ context.Context, orgID uuid.UUID, _ time.Time) (*dashboard.Snapshot, error) {
	s.orgID = orgID
	return s.snap, s.err
}

func (s *stubDashboardService) ExportReceivables(_ context.Context, orgID uuid.UUID, w io.Writer) error {
	s.orgID = orgID
	if s.exportErr != nil {
		return s.exportErr
	}
	_, err := w.Write([]byte("PK\x03\x04workbook"))
	return err
}

func dashboardRouter(svc DashboardService) *gin.Engine {
	h := NewDashboardHandler(svc)
	h.now = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }
	return newTestEngine(func(g *gin.RouterGroup) {
		g.GET("/dashboard", h.Get)
		g.GET("/dashboard/receivables.xlsx", h.ExportReceivables)
	})
}

func TestDashboardHandler_Get(t *testing.T) {
	rate := decimal.RequireFromString("36.5")
	asUSD := valueobject.MustMoney("150", valueobject.USD)
	svc := &stubDashboardService{snap: &dashboard.Snapshot{
		RevenueUSD:       valueobject.MustMoney("1234.56", valueobject.USD),
		RevenueVES:       valueobject.MustMoney("1234567.89", valueobject.VES),
		OutstandingUSD:   valueobject.MustMoney("100", valueobject.USD),
		OutstandingVES:   valueobject.MustMoney("1825", valueobject.VES),
		OverdueCount:     2,
		RateUsdToVes:     &rate,
		OutstandingAsUSD: &asUSD,
	}}

	w := doRequest(dashboardRouter(svc), http.MethodGet, "/dashboard", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.EqualValues(t, 2, data["overdue_count"])
	display := data["display"].(map[string]any)
	assert.Equal(t, "$1,234.56", display["revenue_usd"])
	assert.Equal(t, "Bs. 1.234.567,89", display["revenue_ves"])
	assert.Equal(t, "36,5 Bs./$", display["rate"])
	assert.Equal(t, "$150.00", display["outstanding_as_usd"])
	assert.Equal(t, testOrgID, svc.orgID)
}

func TestDashboardHandler_Get_WithoutRate(t *testing.T) {
	resp := NewDashboardResponse(&dashboard.Snapshot{
		RevenueUSD:     valueobject.Zero(valueobject.USD),
		RevenueVES:     valueobject.Zero(valueobject.VES),
		OutstandingUSD: valueobject.Zero(valueobject.USD),
		OutstandingVES: valueobject.Zero(valueobject.VES),
	})

	assert.Empty(t, resp.Display.Rate)
	assert.Empty(t, resp.Display.OutstandingAsUSD)
	assert.Equal(t, "$0.00", resp.Display.RevenueUSD)
}

func TestDashboardHandler_ExportReceivables(t *testing.T) {
	svc := &stubDashboardService{}

	w := doRequest(dashboardRouter(svc), http.MethodGet, "/dashboard/receivables.xlsx", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "receivables-2026-10-15.xlsx")
	assert.Equal(t, "PK\x03\x04workbook", w.Body.String())
}

func TestDashboardHandler_ExportReceivables_Failure(t *testing.T) {
	svc := &stubDashboardService{exportErr: shared.ErrStorageUnavailable}

	w := doRequest(dashboardRouter(svc), http.MethodGet, "/dashboard/receivables.xlsx", nil)

	requireErrorCode(t, w, http.StatusServiceUnavailable, dto.ErrCodeStorageUnavailable)
}
