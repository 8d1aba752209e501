package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/flowi/backend/internal/bootstrap"
	"github.com/flowi/backend/internal/domain/dashboard"
	"github.com/flowi/backend/internal/interfaces/http/format"
)

func newDashboardCmd(opts *rootOptions) *cobra.Command {
	var export string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard summary",
		Example: `  ledgerctl dashboard
  ledgerctl dashboard --export receivables.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App, orgID uuid.UUID) error {
				snap, err := app.Dashboard.Snapshot(cmd.Context(), orgID, time.Now())
				if err != nil {
					return err
				}
				printSnapshot(cmd.OutOrStdout(), snap)

				if export == "" {
					return nil
				}
				f, err := os.Create(export)
				if err != nil {
					return err
				}
				if err := app.Dashboard.ExportReceivables(cmd.Context(), orgID, f); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "receivables written to %s\n", export)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&export, "export", "", "Also write the receivables aging workbook to this .xlsx path")
	return cmd
}

func printSnapshot(w io.Writer, snap *dashboard.Snapshot) {
	fmt.Fprintf(w, "Dashboard at %s\n", snap.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  Revenue          %s / %s\n", format.FormatMoney(snap.RevenueUSD), format.FormatMoney(snap.RevenueVES))
	fmt.Fprintf(w, "  Outstanding      %s / %s\n", format.FormatMoney(snap.OutstandingUSD), format.FormatMoney(snap.OutstandingVES))
	if snap.OutstandingAsUSD != nil {
		fmt.Fprintf(w, "  Outstanding (USD equivalent) %s\n", format.FormatMoney(*snap.OutstandingAsUSD))
	}
	if snap.RateUsdToVes != nil {
		fmt.Fprintf(w, "  Rate             %s\n", format.FormatRate(*snap.RateUsdToVes))
	}
	fmt.Fprintf(w, "  Sales            %d (today %d, week %d, month %d)\n",
		snap.TotalSales, snap.Today.SalesCount, snap.Week.SalesCount, snap.Month.SalesCount)
	fmt.Fprintf(w, "  Overdue entries  %d\n", snap.OverdueCount)
	fmt.Fprintf(w, "  Pending entries  %d\n", snap.PendingCount)
	fmt.Fprintf(w, "  Low stock        %d\n", snap.LowStockCount)
}
