// Package export renders ledger data as spreadsheets.
package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// Sheet names of the aging workbook
const (
	SheetReceivables = "Receivables"
	SheetSummary     = "Summary"
)

// AgingBucket groups an open entry by how late it is
type AgingBucket string

const (
	BucketCurrent AgingBucket = "current"
	Bucket1To30   AgingBucket = "1-30"
	Bucket31To60  AgingBucket = "31-60"
	Bucket61To90  AgingBucket = "61-90"
	BucketOver90  AgingBucket = "90+"
)

// Buckets lists every bucket in report order
var Buckets = []AgingBucket{BucketCurrent, Bucket1To30, Bucket31To60, Bucket61To90, BucketOver90}

// DaysOverdue returns the whole days between due and asOf, or 0 when not yet due
func DaysOverdue(due, asOf time.Time) int {
	if !asOf.After(due) {
		return 0
	}
	return int(asOf.Sub(due).Hours() / 24)
}

// BucketFor classifies an entry due at due, seen at asOf
func BucketFor(due, asOf time.Time) AgingBucket {
	days := DaysOverdue(due, asOf)
	switch {
	case days == 0:
		return BucketCurrent
	case days <= 30:
		return Bucket1To30
	case days <= 60:
		return Bucket31To60
	case days <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

var receivableHeaders = []string{
	"Reference", "Counterparty", "Currency", "Amount", "Paid", "Outstanding",
	"Due date", "Days overdue", "Bucket", "Status",
}

// AgingExporter writes receivables as an XLSX aging workbook
type AgingExporter struct{}

// WriteReceivables delegates to WriteReceivablesAging
func (AgingExporter) WriteReceivables(w io.Writer, entries []ledger.LedgerEntry, asOf time.Time) error {
	return WriteReceivablesAging(w, entries, asOf)
}

// WriteReceivablesAging writes an XLSX workbook with one row per open entry,
// oldest due date first, and a summary sheet of outstanding totals per bucket
// and currency. Terminal entries are left out.
func WriteReceivablesAging(w io.Writer, entries []ledger.LedgerEntry, asOf time.Time) error {
	open := make([]ledger.LedgerEntry, 0, len(entries))
	for i := range entries {
		if !entries[i].Status.IsTerminal() {
			open = append(open, entries[i])
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].DueDate.Before(open[j].DueDate)
	})

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetReceivables); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(SheetReceivables, "A1", &receivableHeaders); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	_ = f.SetCellStyle(SheetReceivables, "A1", "J1", headerStyle)

	totals := map[AgingBucket]map[valueobject.Currency]valueobject.Money{}
	for _, b := range Buckets {
		totals[b] = map[valueobject.Currency]valueobject.Money{
			valueobject.USD: valueobject.Zero(valueobject.USD),
			valueobject.VES: valueobject.Zero(valueobject.VES),
		}
	}

	for i := range open {
		e := &open[i]
		bucket := BucketFor(e.DueDate, asOf)
		outstanding := e.Outstanding()
		if sum, err := totals[bucket][e.Currency()].Add(outstanding); err == nil {
			totals[bucket][e.Currency()] = sum
		}

		row := []interface{}{
			e.ReferenceNumber,
			e.CounterpartyName,
			string(e.Currency()),
			e.Amount.Amount().InexactFloat64(),
			e.PaidAmount.Amount().InexactFloat64(),
			outstanding.Amount().InexactFloat64(),
			e.DueDate.Format("2006-01-02"),
			DaysOverdue(e.DueDate, asOf),
			string(bucket),
			string(e.Status),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetReceivables, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetCellValue(SheetSummary, "A1", "Receivables aging as of "+asOf.Format("2006-01-02"))
	_ = f.SetSheetRow(SheetSummary, "A3", &[]string{"Bucket", "USD", "VES"})
	_ = f.SetCellStyle(SheetSummary, "A3", "C3", headerStyle)
	for i, b := range Buckets {
		cell, _ := excelize.CoordinatesToCellName(1, i+4)
		row := []interface{}{
			string(b),
			totals[b][valueobject.USD].Amount().InexactFloat64(),
			totals[b][valueobject.VES].Amount().InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
