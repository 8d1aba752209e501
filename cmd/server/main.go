package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/flowi/backend/internal/bootstrap"
	"github.com/flowi/backend/internal/infrastructure/config"
	"github.com/flowi/backend/internal/infrastructure/logger"
	"github.com/flowi/backend/internal/interfaces/http/handler"
	"github.com/flowi/backend/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting flowi ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize services", zap.Error(err))
	}

	handlers := router.Handlers{
		Entries:    handler.NewEntryHandler(app.Entries, app.Payments),
		Plans:      handler.NewPlanHandler(app.Installments),
		Dashboard:  handler.NewDashboardHandler(app.Dashboard),
		Quotations: handler.NewQuotationHandler(app.Quotations),
		Sales:      handler.NewSaleHandler(app.Sales),
		Rates:      handler.NewRateHandler(app.Rates),
		System:     handler.NewSystemHandler(cfg.App.Name, version, app.DB),
	}
	if app.Trigger != nil {
		handlers.Sweep = handler.NewSweepHandler(app.Trigger)
		if err := app.Trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start sweep trigger", zap.Error(err))
		}
	}

	engine := router.NewEngine(router.EngineConfig{
		Release:          cfg.App.Env == "production",
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		Logger:           log,
	})
	router.RegisterLedger(engine, handlers, cfg.Ledger.DefaultOrganizationID(), log)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := app.Close(shutdownCtx); err != nil {
		log.Error("Error releasing resources", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
