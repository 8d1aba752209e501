package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/flowi/backend/internal/bootstrap"
	"github.com/flowi/backend/internal/infrastructure/scheduler"
)

func newSweepCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Flag overdue entries and expire stale quotations once",
		Example: `  ledgerctl sweep
  ledgerctl sweep --timeout 2m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App, _ uuid.UUID) error {
				trigger, err := scheduler.NewSweepTrigger(scheduler.SweepTriggerConfig{
					Interval: time.Hour,
					Timeout:  timeout,
				}, app.Sweeper, app.Quotations, app.Logger)
				if err != nil {
					return err
				}
				result, err := trigger.RunNow(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "overdue: %d candidates, %d flagged, %d skipped\n",
					result.Overdue.Candidates, result.Overdue.Flagged, result.Overdue.Skipped)
				if result.Expiry != nil {
					fmt.Fprintf(out, "quotations: %d candidates, %d expired, %d skipped\n",
						result.Expiry.Candidates, result.Expiry.Expired, result.Expiry.Skipped)
				}
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Maximum duration of the run")
	return cmd
}
