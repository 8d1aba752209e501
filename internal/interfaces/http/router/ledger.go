package router

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowi/backend/internal/infrastructure/logger"
	"github.com/flowi/backend/internal/interfaces/http/handler"
	"github.com/flowi/backend/internal/interfaces/http/middleware"
)

// EngineConfig configures the middleware stack of the HTTP engine
type EngineConfig struct {
	Release          bool
	TrustedProxies   []string
	CORSAllowOrigins []string
	MaxBodySize      int64
	Logger           *zap.Logger
}

// NewEngine creates a gin engine with the middleware stack applied in order:
// request id, request logging, panic recovery, security headers, CORS and
// body size limit. Organization scoping is added by RegisterLedger.
func NewEngine(cfg EngineConfig) *gin.Engine {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSAllowOrigins
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))

	return engine
}

// Handlers bundles every handler served by the ledger API. Sweep may be nil
// when the scheduler is disabled; the manual trigger is then not exposed.
type Handlers struct {
	Entries    *handler.EntryHandler
	Plans      *handler.PlanHandler
	Sweep      *handler.SweepHandler
	Dashboard  *handler.DashboardHandler
	Quotations *handler.QuotationHandler
	Sales      *handler.SaleHandler
	Rates      *handler.RateHandler
	System     *handler.SystemHandler
}

// RegisterLedger mounts the ledger API on engine. Every versioned route is scoped
// to an organization taken from X-Organization-ID or defaultOrg.
func RegisterLedger(engine *gin.Engine, h Handlers, defaultOrg uuid.UUID, log *zap.Logger) *Router {
	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))

	if h.System != nil {
		system := NewDomainGroup("/system")
		system.GET("/info", h.System.GetSystemInfo)
		system.GET("/ping", h.System.Ping)
		system.RegisterRoutes(engine.Group("/api/v1"))
	}

	r.Use(middleware.Organization(middleware.OrganizationConfig{Default: defaultOrg, Logger: log}))

	entries := NewDomainGroup("/entries")
	entries.POST("", h.Entries.Create)
	entries.GET("", h.Entries.List)
	entries.GET("/:id", h.Entries.Get)
	entries.DELETE("/:id", h.Entries.Delete)
	entries.GET("/:id/outstanding", h.Entries.Outstanding)
	entries.GET("/:id/payments", h.Entries.Payments)
	entries.POST("/:id/payments", h.Entries.ApplyPayment)
	entries.POST("/:id/cancel", h.Entries.Cancel)

	installments := NewDomainGroup("/installments")
	installments.POST("/:id/payments", h.Entries.ApplyInstallmentPayment)

	plans := NewDomainGroup("/plans")
	plans.POST("", h.Plans.Create)
	plans.GET("/:id", h.Plans.Get)

	quotations := NewDomainGroup("/quotations")
	quotations.POST("", h.Quotations.Create)
	quotations.GET("", h.Quotations.List)
	quotations.GET("/:id", h.Quotations.Get)
	quotations.POST("/:id/send", h.Quotations.Send)
	quotations.POST("/:id/approve", h.Quotations.Approve)
	quotations.POST("/:id/reject", h.Quotations.Reject)
	quotations.POST("/:id/convert", h.Quotations.Convert)

	sales := NewDomainGroup("/sales")
	sales.POST("", h.Sales.Record)
	sales.GET("", h.Sales.List)
	sales.GET("/:id", h.Sales.Get)

	rates := NewDomainGroup("/rates")
	rates.POST("", h.Rates.Set)
	rates.GET("/current", h.Rates.Current)
	rates.GET("/history", h.Rates.History)

	dashboard := NewDomainGroup("/dashboard")
	dashboard.GET("", h.Dashboard.Get)
	dashboard.GET("/receivables.xlsx", h.Dashboard.ExportReceivables)

	r.Register(entries).
		Register(installments).
		Register(plans).
		Register(quotations).
		Register(sales).
		Register(rates).
		Register(dashboard)

	if h.Sweep != nil {
		sweeps := NewDomainGroup("/sweeps")
		sweeps.POST("", h.Sweep.Run)
		r.Register(sweeps)
	}

	r.Setup()
	return r
}
