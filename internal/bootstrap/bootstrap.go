// Package bootstrap assembles the ledger services from configuration. It is
// shared by the HTTP server and the operator CLI so both run the same wiring.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	dashboardapp "github.com/flowi/backend/internal/application/dashboard"
	exchangeapp "github.com/flowi/backend/internal/application/exchange"
	ledgerapp "github.com/flowi/backend/internal/application/ledger"
	salesapp "github.com/flowi/backend/internal/application/sales"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/infrastructure/cache"
	"github.com/flowi/backend/internal/infrastructure/config"
	"github.com/flowi/backend/internal/infrastructure/event"
	"github.com/flowi/backend/internal/infrastructure/export"
	"github.com/flowi/backend/internal/infrastructure/persistence"
	"github.com/flowi/backend/internal/infrastructure/scheduler"
)

// App holds the connected infrastructure and every application service
type App struct {
	Config *config.Config
	Logger *zap.Logger

	DB          *persistence.Database
	EventBus    *event.InMemoryEventBus
	Idempotency shared.IdempotencyStore

	Entries      *ledgerapp.EntryService
	Payments     *ledgerapp.PaymentService
	Installments *ledgerapp.InstallmentService
	Sweeper      *ledgerapp.SweepService
	Quotations   *salesapp.QuotationService
	Sales        *salesapp.SaleService
	Rates        *exchangeapp.RateService
	Dashboard    *dashboardapp.DashboardService

	// Trigger is nil when the scheduler is disabled
	Trigger *scheduler.SweepTrigger
}

// New connects to the database and the idempotency store and builds every
// service. SQLite databases get their schema from AutoMigrate; PostgreSQL
// schemas are expected to come from cmd/migrate.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("auto-migrate sqlite schema: %w", err)
		}
	}

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewLoggingHandler(log))
	if err := bus.Start(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	store, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	entryRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRecordRepository(db.DB)
	planRepo := persistence.NewGormInstallmentPlanRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	quotationRepo := persistence.NewGormQuotationRepository(db.DB)
	rateRepo := persistence.NewGormExchangeRateRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	app := &App{
		Config:      cfg,
		Logger:      log,
		DB:          db,
		EventBus:    bus,
		Idempotency: store,
	}

	app.Entries = ledgerapp.NewEntryService(ledgerapp.EntryServiceConfig{
		EntryRepo:      entryRepo,
		PaymentRepo:    paymentRepo,
		EventPublisher: bus,
		Logger:         log,
	})
	app.Payments = ledgerapp.NewPaymentService(ledgerapp.PaymentServiceConfig{
		TxScope:          txScope,
		IdempotencyStore: store,
		IdempotencyTTL:   cfg.Ledger.IdempotencyTTL,
		EventPublisher:   bus,
		MaxRetries:       cfg.Ledger.MaxConflictRetries,
		Logger:           log,
	})
	app.Installments = ledgerapp.NewInstallmentService(txScope, planRepo, entryRepo, bus, log)
	app.Sweeper = ledgerapp.NewSweepService(entryRepo, bus, log)
	app.Quotations = salesapp.NewQuotationService(salesapp.QuotationServiceConfig{
		TxScope:        txScope,
		QuotationRepo:  quotationRepo,
		EventPublisher: bus,
		Logger:         log,
	})
	app.Sales = salesapp.NewSaleService(saleRepo, bus, log)
	app.Rates = exchangeapp.NewRateService(exchangeapp.RateServiceConfig{
		Repo:           rateRepo,
		OrganizationID: cfg.Ledger.DefaultOrganizationID(),
		Logger:         log,
	})
	app.Dashboard = dashboardapp.NewDashboardService(dashboardapp.ServiceConfig{
		TxScope:           txScope,
		Rates:             app.Rates,
		LowStockThreshold: decimal.NewFromInt(int64(cfg.Ledger.LowStockThreshold)),
		Exporter:          export.AgingExporter{},
		Logger:            log,
	})

	if cfg.Scheduler.SweepEnabled {
		app.Trigger, err = scheduler.NewSweepTrigger(scheduler.SweepTriggerConfig{
			Interval: cfg.Scheduler.SweepInterval,
			Timeout:  cfg.Scheduler.SweepTimeout,
		}, app.Sweeper, app.Quotations, log)
		if err != nil {
			_ = app.Close(ctx)
			return nil, err
		}
	}

	return app, nil
}

// Close stops the trigger and the event bus and releases the stores
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Trigger != nil {
		errs = append(errs, a.Trigger.Stop(ctx))
	}
	if a.EventBus != nil {
		errs = append(errs, a.EventBus.Stop(ctx))
	}
	if a.Idempotency != nil {
		errs = append(errs, a.Idempotency.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
