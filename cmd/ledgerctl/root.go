package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flowi/backend/internal/bootstrap"
	"github.com/flowi/backend/internal/infrastructure/config"
	"github.com/flowi/backend/internal/infrastructure/logger"
)

var version = "dev"

type rootOptions struct {
	logLevel string
	org      string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the flowi USD/VES ledger",
		Long: `ledgerctl runs ledger maintenance against the configured database.

Configuration is read the same way as the server: config.toml, .env and
FLOWI_* environment variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.org, "org", "", "Organization ID (defaults to ledger.default_organization)")

	root.AddCommand(newSweepCmd(opts), newRateCmd(opts), newDashboardCmd(opts))
	return root
}

// withApp loads configuration, builds the services, runs fn and releases
// everything again
func withApp(ctx context.Context, opts *rootOptions, fn func(app *bootstrap.App, orgID uuid.UUID) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if opts.org != "" {
		cfg.Ledger.DefaultOrganization = opts.org
	}
	orgID := cfg.Ledger.DefaultOrganizationID()
	if orgID == uuid.Nil {
		return fmt.Errorf("an organization is required: pass --org or set ledger.default_organization")
	}
	// The CLI never runs the periodic loop.
	cfg.Scheduler.SweepEnabled = false

	log, err := logger.New(&logger.Config{
		Level:   opts.logLevel,
		Format:  "console",
		Output:  "stderr",
		Service: "ledgerctl",
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync(log) }()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			log.Warn("error releasing resources", zap.Error(err))
		}
	}()

	return fn(app, orgID)
}
