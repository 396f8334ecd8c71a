// Package api provides the HTTP status and diagnostics surface for the
// resilience engine.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/renderguard/renderguard/internal/api/handler"
	"github.com/renderguard/renderguard/internal/api/middleware"
	"github.com/renderguard/renderguard/internal/catalog"
	"github.com/renderguard/renderguard/internal/glass"
	"github.com/renderguard/renderguard/internal/health"
	"github.com/renderguard/renderguard/internal/ledger"
	"github.com/renderguard/renderguard/internal/recovery"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics

	Coordinators     []*recovery.Coordinator
	Ledger           *ledger.Ledger
	CatalogValidator *catalog.Validator
	Descriptors      []catalog.Descriptor
	GlassValidator   *glass.Validator
	Thresholds       health.Thresholds

	// OperatorSigningKey signs operator tokens for mutating endpoints.
	OperatorSigningKey string
}

// NewRouter creates the chi router with all routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware, order matters: the span opens before metrics and
	// logging so both observe a live trace context.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime)
	statusHandler := handler.NewStatusHandler(cfg.Coordinators, cfg.Thresholds, cfg.Logger)
	diagHandler := handler.NewDiagnosticsHandler(cfg.Ledger)
	validationHandler := handler.NewValidationHandler(cfg.CatalogValidator, cfg.Descriptors, cfg.GlassValidator)

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)
	opsRateLimit := middleware.RateLimitByIP(middleware.OpsRateLimit)
	operatorAuth := middleware.OperatorAuth(cfg.OperatorSigningKey)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			// Recovery mutates engine state; operators only.
			r.With(opsRateLimit, operatorAuth).Post("/recover", statusHandler.TriggerRecovery)
		})

		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/status", statusHandler.SystemStatus)
			r.Get("/diagnostics", diagHandler.Report)
			r.Get("/validate", validationHandler.Validate)
			r.Get("/validate/glass", validationHandler.ValidateGlass)
		})
	})

	return r
}
