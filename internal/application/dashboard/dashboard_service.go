package dashboard

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appshared "github.com/flowi/backend/internal/application/shared"
	"github.com/flowi/backend/internal/domain/dashboard"
	"github.com/flowi/backend/internal/domain/exchange"
	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/sales"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// ReceivablesExporter renders open receivables as a report aged at asOf
type ReceivablesExporter interface {
	WriteReceivables(w io.Writer, entries []ledger.LedgerEntry, asOf time.Time) error
}

// ServiceConfig holds the dependencies of DashboardService
type ServiceConfig struct {
	TxScope           appshared.TransactionScope
	Rates             exchange.RateProvider // optional
	LowStockThreshold decimal.Decimal
	Exporter          ReceivablesExporter // optional; export fails without one
	Logger            *zap.Logger
	Now               func() time.Time
}

// DashboardService computes the back-office summary
type DashboardService struct {
	txScope           appshared.TransactionScope
	rates             exchange.RateProvider
	lowStockThreshold decimal.Decimal
	exporter          ReceivablesExporter
	logger            *zap.Logger
	now               func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(cfg ServiceConfig) *DashboardService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &DashboardService{
		txScope:           cfg.TxScope,
		rates:             cfg.Rates,
		lowStockThreshold: cfg.LowStockThreshold,
		exporter:          cfg.Exporter,
		logger:            cfg.Logger,
		now:               cfg.Now,
	}
}

// Snapshot computes the dashboard of an organization at now. Sales, entries
// and stock come from one read transaction so the figures agree with each
// other. The rate is optional: without one the USD estimate is left out.
func (s *DashboardService) Snapshot(ctx context.Context, orgID uuid.UUID, now time.Time) (*dashboard.Snapshot, error) {
	var in dashboard.Input
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		if in.Sales, err = repos.Sales().FindAllForOrg(ctx, orgID, sales.SaleFilter{}); err != nil {
			return err
		}
		if in.Entries, err = repos.Entries().FindAllForOrg(ctx, orgID, ledger.EntryFilter{}); err != nil {
			return err
		}
		if in.Products, err = repos.Stock().ListStockLevels(ctx, orgID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	in.LowStockThreshold = s.lowStockThreshold

	rate, err := s.rateAt(ctx, now)
	if err != nil {
		return nil, err
	}
	in.Rate = rate

	snap, err := dashboard.BuildSnapshot(in, now)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("dashboard snapshot built",
		zap.String("org_id", orgID.String()),
		zap.Int("sales", len(in.Sales)),
		zap.Int("entries", len(in.Entries)),
		zap.Bool("has_rate", rate != nil),
	)
	return &snap, nil
}

func (s *DashboardService) rateAt(ctx context.Context, t time.Time) (*valueobject.ExchangeRate, error) {
	if s.rates == nil {
		return nil, nil
	}
	rate, err := s.rates.AsOf(ctx, t)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// ExportReceivables writes the open receivables of an organization to w as an
// XLSX aging report
func (s *DashboardService) ExportReceivables(ctx context.Context, orgID uuid.UUID, w io.Writer) error {
	if s.exporter == nil {
		return shared.NewDomainError(shared.CodeInvalidState, "Receivables export is not configured")
	}
	kind := ledger.EntryKindReceivable
	filter := ledger.EntryFilter{
		Kind: &kind,
		Statuses: []ledger.EntryStatus{
			ledger.EntryStatusPending,
			ledger.EntryStatusPartial,
			ledger.EntryStatusOverdue,
		},
	}

	var entries []ledger.LedgerEntry
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		entries, err = repos.Entries().FindAllForOrg(ctx, orgID, filter)
		return err
	})
	if err != nil {
		return err
	}

	asOf := s.now()
	if err := s.exporter.WriteReceivables(w, entries, asOf); err != nil {
		return err
	}
	s.logger.Info("receivables exported",
		zap.String("org_id", orgID.String()),
		zap.Int("entries", len(entries)),
	)
	return nil
}
