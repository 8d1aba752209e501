package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flowi/backend/internal/domain/dashboard"
	"github.com/flowi/backend/internal/interfaces/http/format"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardService computes the back-office summary
type DashboardService interface {
	Snapshot(ctx context.Context, orgID uuid.UUID, now time.Time) (*dashboard.Snapshot, error)
	ExportReceivables(ctx context.Context, orgID uuid.UUID, w io.Writer) error
}

// DashboardDisplay holds the snapshot amounts formatted for the owner's locale
type DashboardDisplay struct {
	RevenueUSD       string `json:"revenue_usd"`
	RevenueVES       string `json:"revenue_ves"`
	OutstandingUSD   string `json:"outstanding_usd"`
	OutstandingVES   string `json:"outstanding_ves"`
	Rate             string `json:"rate,omitempty"`
	OutstandingAsUSD string `json:"outstanding_as_usd,omitempty"`
}

// DashboardResponse is the snapshot plus its display strings
type DashboardResponse struct {
	*dashboard.Snapshot
	Display DashboardDisplay `json:"display"`
}

// DashboardHandler serves the dashboard and the receivables export
type DashboardHandler struct {
	BaseHandler
	service DashboardService
	now     func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service, now: time.Now}
}

// Get returns the dashboard snapshot.
// GET /dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	snap, err := h.service.Snapshot(c.Request.Context(), orgID, h.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, NewDashboardResponse(snap))
}

// NewDashboardResponse attaches display strings to a snapshot
func NewDashboardResponse(snap *dashboard.Snapshot) DashboardResponse {
	display := DashboardDisplay{
		RevenueUSD:     format.FormatMoney(snap.RevenueUSD),
		RevenueVES:     format.FormatMoney(snap.RevenueVES),
		OutstandingUSD: format.FormatMoney(snap.OutstandingUSD),
		OutstandingVES: format.FormatMoney(snap.OutstandingVES),
	}
	if snap.RateUsdToVes != nil {
		display.Rate = format.FormatRate(*snap.RateUsdToVes)
	}
	if snap.OutstandingAsUSD != nil {
		display.OutstandingAsUSD = format.FormatMoney(*snap.OutstandingAsUSD)
	}
	return DashboardResponse{Snapshot: snap, Display: display}
}

// ExportReceivables streams the receivables aging workbook. The workbook is
// rendered into memory first so a failure can still produce a JSON error.
// GET /dashboard/receivables.xlsx
func (h *DashboardHandler) ExportReceivables(c *gin.Context) {
	orgID, ok := h.Org(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.service.ExportReceivables(c.Request.Context(), orgID, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	filename := fmt.Sprintf("receivables-%s.xlsx", h.now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
