package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/sales"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// Window is one reporting period of the dashboard
type Window struct {
	Start      time.Time         `json:"start"`
	End        time.Time         `json:"end"`
	SalesCount int               `json:"sales_count"`
	RevenueUSD valueobject.Money `json:"revenue_usd"`
	RevenueVES valueobject.Money `json:"revenue_ves"`
}

func buildWindow(all []sales.Sale, start, end time.Time) (Window, error) {
	in := SalesInWindow(all, start, end)
	w := Window{Start: start, End: end, SalesCount: len(in)}
	var err error
	if w.RevenueUSD, err = TotalRevenue(in, valueobject.USD); err != nil {
		return Window{}, err
	}
	if w.RevenueVES, err = TotalRevenue(in, valueobject.VES); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Input is one consistent read of everything the dashboard needs
type Input struct {
	Sales             []sales.Sale
	Entries           []ledger.LedgerEntry
	Products          []StockLevel
	LowStockThreshold decimal.Decimal
	Rate              *valueobject.ExchangeRate // optional
}

// Snapshot is the computed dashboard
type Snapshot struct {
	GeneratedAt      time.Time          `json:"generated_at"`
	Today            Window             `json:"today"`
	Week             Window             `json:"week"`
	Month            Window             `json:"month"`
	RevenueUSD       valueobject.Money  `json:"revenue_usd"`
	RevenueVES       valueobject.Money  `json:"revenue_ves"`
	OutstandingUSD   valueobject.Money  `json:"outstanding_usd"`
	OutstandingVES   valueobject.Money  `json:"outstanding_ves"`
	OverdueCount     int                `json:"overdue_count"`
	PendingCount     int                `json:"pending_count"`
	LowStockCount    int                `json:"low_stock_count"`
	TotalSales       int                `json:"total_sales"`
	RateUsdToVes     *decimal.Decimal   `json:"rate_usd_to_ves,omitempty"`
	OutstandingAsUSD *valueobject.Money `json:"outstanding_as_usd,omitempty"`
}

// BuildSnapshot computes every metric from in at now. Today, week (Monday
// start) and month windows are taken in now's location. When a rate is
// supplied the combined outstanding balance is also estimated in USD.
func BuildSnapshot(in Input, now time.Time) (Snapshot, error) {
	dayStart := StartOfDay(now)
	weekStart := StartOfWeek(now)
	monthStart := StartOfMonth(now)

	snap := Snapshot{
		GeneratedAt:   now,
		OverdueCount:  OverdueCount(in.Entries),
		PendingCount:  PendingCount(in.Entries),
		LowStockCount: LowStockCount(in.Products, in.LowStockThreshold),
		TotalSales:    len(in.Sales),
	}

	var err error
	if snap.Today, err = buildWindow(in.Sales, dayStart, dayStart.AddDate(0, 0, 1)); err != nil {
		return Snapshot{}, err
	}
	if snap.Week, err = buildWindow(in.Sales, weekStart, weekStart.AddDate(0, 0, 7)); err != nil {
		return Snapshot{}, err
	}
	if snap.Month, err = buildWindow(in.Sales, monthStart, monthStart.AddDate(0, 1, 0)); err != nil {
		return Snapshot{}, err
	}
	if snap.RevenueUSD, err = TotalRevenue(in.Sales, valueobject.USD); err != nil {
		return Snapshot{}, err
	}
	if snap.RevenueVES, err = TotalRevenue(in.Sales, valueobject.VES); err != nil {
		return Snapshot{}, err
	}

	outstanding, err := OutstandingByCurrency(in.Entries)
	if err != nil {
		return Snapshot{}, err
	}
	snap.OutstandingUSD = outstanding[valueobject.USD]
	snap.OutstandingVES = outstanding[valueobject.VES]

	if in.Rate != nil && !in.Rate.IsZero() {
		rate := in.Rate.UsdToVes()
		snap.RateUsdToVes = &rate
		vesAsUSD, err := valueobject.Convert(snap.OutstandingVES, valueobject.USD, *in.Rate)
		if err != nil {
			return Snapshot{}, err
		}
		combined, err := snap.OutstandingUSD.Add(vesAsUSD)
		if err != nil {
			return Snapshot{}, err
		}
		snap.OutstandingAsUSD = &combined
	}

	return snap, nil
}
