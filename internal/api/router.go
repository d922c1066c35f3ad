// Package api provides the HTTP API for the knuut privacy core.
package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/knuut/knuut-api/internal/api/handler"
	"github.com/knuut/knuut-api/internal/api/middleware"
	"github.com/knuut/knuut-api/internal/assist"
	"github.com/knuut/knuut-api/internal/consent"
	"github.com/knuut/knuut-api/internal/export"
	"github.com/knuut/knuut-api/internal/featureflags"
	"github.com/knuut/knuut-api/internal/lifecycle"
	"github.com/knuut/knuut-api/internal/sweep"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// CronSecret guards the internal retention sweep trigger.
	CronSecret string

	LifecycleService   *lifecycle.Service
	ConsentService     *consent.Service
	ExportCompiler     *export.Compiler
	AssistService      *assist.Service
	Sweeper            *sweep.Sweeper
	FeatureFlagService *featureflags.Service

	// ReadyCheck verifies the database on the readiness probe.
	ReadyCheck func(ctx context.Context) error
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "knuut-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ReadyCheck)
	privacyHandler := handler.NewPrivacyHandler(cfg.LifecycleService)
	consentHandler := handler.NewConsentHandler(cfg.ConsentService)
	exportHandler := handler.NewExportHandler(cfg.ExportCompiler)
	assistHandler := handler.NewAssistHandler(cfg.AssistService)
	sweepHandler := handler.NewSweepHandler(cfg.Sweeper)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService)

	// Rate limit middleware for different endpoint categories
	strictRateLimit := middleware.RateLimitByIP(middleware.StrictRateLimit)       // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Privacy endpoints - per-user rate limiting
		r.Route("/privacy", func(r chi.Router) {
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit)) // 100 req/min per user

			r.Route("/deletion-requests", func(r chi.Router) {
				r.Post("/", privacyHandler.CreateDeletionRequest)
				r.Get("/status", privacyHandler.GetDeletionStatus)
			})

			r.Route("/consents", func(r chi.Router) {
				r.Post("/", consentHandler.UpdateConsent)
				r.Get("/", consentHandler.GetConsent)
			})

			r.Get("/export", exportHandler.GetExport)
		})

		// Assist endpoint - calls the LLM provider, strict rate limiting
		r.With(expensiveRateLimit).Post("/assist/workplace-phrase", assistHandler.SuggestWorkplacePhrase)

		// Internal trigger endpoints - scheduler only
		r.Route("/internal", func(r chi.Router) {
			r.Use(strictRateLimit)
			r.Use(middleware.CronAuth(cfg.CronSecret))
			r.Post("/retention-sweep", sweepHandler.TriggerSweep)
		})

		// Admin endpoints - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(standardRateLimit)

			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})
		})
	})

	return r
}
