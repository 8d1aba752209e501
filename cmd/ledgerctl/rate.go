package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	exchangeapp "github.com/flowi/backend/internal/application/exchange"
	"github.com/flowi/backend/internal/bootstrap"
	"github.com/flowi/backend/internal/interfaces/http/format"
)

const dateLayout = "2006-01-02"

func newRateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Record and inspect the USD/VES exchange rate",
	}
	cmd.AddCommand(newRateSetCmd(opts), newRateShowCmd(opts), newRateHistoryCmd(opts))
	return cmd
}

func newRateSetCmd(opts *rootOptions) *cobra.Command {
	var (
		source    string
		effective string
	)
	cmd := &cobra.Command{
		Use:   "set <usd_to_ves>",
		Short: "Record a new rate",
		Example: `  ledgerctl rate set 36.50 --source BCV
  ledgerctl rate set 36.72 --effective 2026-10-16`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := exchangeapp.SetRateRequest{UsdToVes: args[0], Source: source}
			if effective != "" {
				at, err := time.Parse(dateLayout, effective)
				if err != nil {
					return fmt.Errorf("invalid --effective date, use YYYY-MM-DD: %w", err)
				}
				req.EffectiveAt = &at
			}
			return withApp(cmd.Context(), opts, func(app *bootstrap.App, _ uuid.UUID) error {
				rate, err := app.Rates.SetRate(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recorded %s effective %s\n",
					format.FormatRate(rate.UsdToVes), rate.EffectiveAt.Format(time.RFC3339))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Where the rate was published (e.g. BCV)")
	cmd.Flags().StringVar(&effective, "effective", "", "Effective date, YYYY-MM-DD (default now)")
	return cmd
}

func newRateShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the rate in force",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App, _ uuid.UUID) error {
				rate, err := app.Rates.Current(cmd.Context())
				if err != nil {
					return err
				}
				line := fmt.Sprintf("%s since %s", format.FormatRate(rate.UsdToVes()), rate.EffectiveAt().Format(time.RFC3339))
				if rate.Source() != "" {
					line += " (" + rate.Source() + ")"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
				return nil
			})
		},
	}
}

func newRateHistoryCmd(opts *rootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded rates, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter exchangeapp.HistoryFilter
			for _, p := range []struct {
				raw string
				dst **time.Time
			}{{from, &filter.From}, {to, &filter.To}} {
				if p.raw == "" {
					continue
				}
				t, err := time.Parse(dateLayout, p.raw)
				if err != nil {
					return fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", p.raw, err)
				}
				*p.dst = &t
			}
			return withApp(cmd.Context(), opts, func(app *bootstrap.App, _ uuid.UUID) error {
				rates, err := app.Rates.History(cmd.Context(), filter)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, r := range rates {
					fmt.Fprintf(out, "%s\t%s\t%s\n", r.EffectiveAt.Format(time.RFC3339), format.FormatRate(r.UsdToVes), r.Source)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start date, YYYY-MM-DD (default 30 days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "End date, YYYY-MM-DD (default now)")
	return cmd
}
