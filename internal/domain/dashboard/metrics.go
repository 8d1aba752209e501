// Package dashboard derives read-only summaries from sales, ledger entries
// and stock levels. Every function here is pure.
package dashboard

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/sales"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// StockLevel is the on-hand quantity of one product, owned by inventory
type StockLevel struct {
	ProductID uuid.UUID
	Name      string
	Stock     decimal.Decimal
}

// TotalRevenue sums what sales actually collected in currency.
// Face values in the other currency are never added in. A sale whose stored
// totals carry the wrong currency fails with CURRENCY_MISMATCH.
func TotalRevenue(all []sales.Sale, currency valueobject.Currency) (valueobject.Money, error) {
	total := valueobject.Zero(currency)
	for i := range all {
		next, err := total.Add(all[i].Collected(currency))
		if err != nil {
			return valueobject.Money{}, err
		}
		total = next
	}
	return total, nil
}

// SalesInWindow filters sales created in [start, end)
func SalesInWindow(all []sales.Sale, start, end time.Time) []sales.Sale {
	out := make([]sales.Sale, 0)
	for _, s := range all {
		if !s.CreatedAt.Before(start) && s.CreatedAt.Before(end) {
			out = append(out, s)
		}
	}
	return out
}

// CountSalesInWindow counts sales created in [start, end)
func CountSalesInWindow(all []sales.Sale, start, end time.Time) int {
	return len(SalesInWindow(all, start, end))
}

// OutstandingByCurrency sums the outstanding balance of non-terminal entries
// per currency. Both currencies are always present in the result.
func OutstandingByCurrency(entries []ledger.LedgerEntry) (map[valueobject.Currency]valueobject.Money, error) {
	out := map[valueobject.Currency]valueobject.Money{
		valueobject.USD: valueobject.Zero(valueobject.USD),
		valueobject.VES: valueobject.Zero(valueobject.VES),
	}
	for i := range entries {
		e := &entries[i]
		if e.Status.IsTerminal() {
			continue
		}
		sum, ok := out[e.Currency()]
		if !ok {
			return nil, shared.NewDomainError(shared.CodeUnsupportedCurrency,
				fmt.Sprintf("entry %s is in unsupported currency %q", e.ReferenceNumber, e.Currency()))
		}
		next, err := sum.Add(e.Outstanding())
		if err != nil {
			return nil, err
		}
		out[e.Currency()] = next
	}
	return out, nil
}

// OverdueCount counts entries flagged overdue
func OverdueCount(entries []ledger.LedgerEntry) int {
	n := 0
	for i := range entries {
		if entries[i].Status == ledger.EntryStatusOverdue {
			n++
		}
	}
	return n
}

// PendingCount counts entries still awaiting money and not yet overdue,
// which covers pending and partially paid entries
func PendingCount(entries []ledger.LedgerEntry) int {
	n := 0
	for i := range entries {
		switch entries[i].Status {
		case ledger.EntryStatusPending, ledger.EntryStatusPartial:
			n++
		}
	}
	return n
}

// LowStockCount counts products with 0 < stock <= threshold.
// Products already out of stock are not counted.
func LowStockCount(products []StockLevel, threshold decimal.Decimal) int {
	n := 0
	for _, p := range products {
		if p.Stock.IsPositive() && p.Stock.LessThanOrEqual(threshold) {
			n++
		}
	}
	return n
}

// StartOfDay truncates t to midnight in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns Monday 00:00 of t's week
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// StartOfMonth returns the first day of t's month at 00:00
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
