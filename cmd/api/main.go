// Package main provides the entrypoint for the knuut API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/knuut/knuut-api/internal/ailog"
	"github.com/knuut/knuut-api/internal/api"
	"github.com/knuut/knuut-api/internal/api/middleware"
	"github.com/knuut/knuut-api/internal/assist"
	"github.com/knuut/knuut-api/internal/assist/openai"
	"github.com/knuut/knuut-api/internal/audit"
	"github.com/knuut/knuut-api/internal/consent"
	"github.com/knuut/knuut-api/internal/database"
	"github.com/knuut/knuut-api/internal/export"
	"github.com/knuut/knuut-api/internal/featureflags"
	"github.com/knuut/knuut-api/internal/lifecycle"
	"github.com/knuut/knuut-api/internal/sweep"
	"github.com/knuut/knuut-api/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "knuut-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting knuut API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize the audit trail; every privacy-relevant action below
	// records through this one recorder.
	auditRepo := audit.NewPostgresRepository(pool)
	recorder := audit.NewRecorder(auditRepo, log)

	// Initialize lifecycle repository and service
	lifecycleRepo := lifecycle.NewPostgresRepository(pool)
	lifecycleService := lifecycle.NewService(lifecycle.ServiceConfig{
		Repository: lifecycleRepo,
		Audit:      recorder,
		Logger:     log,
	})
	log.Info().Msg("lifecycle service initialized")

	// Initialize consent ledger and service
	consentService := consent.NewService(consent.ServiceConfig{
		Repository: consent.NewPostgresRepository(pool),
		Audit:      recorder,
		Logger:     log,
	})
	log.Info().Msg("consent service initialized")

	// Initialize feature flags repository and service
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: featureflags.NewPostgresRepository(pool),
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})
	log.Info().Msg("feature flags service initialized")

	// Initialize AI interaction log and the assist service
	interactionRepo := ailog.NewPostgresRepository(pool)

	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set - phrase suggestions will fail")
	}
	chatClient := openai.NewClient(openai.ClientConfig{
		APIKey:  openaiKey,
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("OPENAI_MODEL"),
	})

	assistService := assist.NewService(assist.ServiceConfig{
		Consents:     consentService,
		Client:       chatClient,
		Interactions: interactionRepo,
		Flags:        ffService,
		Logger:       log,
	})
	log.Info().Msg("assist service initialized")

	// Initialize export compiler
	compiler := export.NewCompiler(export.CompilerConfig{
		Lifecycle:    lifecycleRepo,
		Consents:     consentService,
		Interactions: interactionRepo,
		AuditLog:     auditRepo,
		Store:        export.NewPostgresStore(pool),
		Audit:        recorder,
		Logger:       log,
	})
	log.Info().Msg("export compiler initialized")

	// Initialize retention sweeper; the purge runs in one transaction per
	// user across every table holding their data.
	sweeper := sweep.NewSweeper(sweep.SweeperConfig{
		Store:  lifecycleRepo,
		Purger: lifecycle.NewPostgresPurger(pool),
		Audit:  recorder,
		Logger: log,
		Flags:  ffService,
	})
	log.Info().Msg("retention sweeper initialized")

	cronSecret := os.Getenv("CRON_SECRET")
	if cronSecret == "" {
		log.Warn().Msg("CRON_SECRET not set - internal sweep trigger will reject all requests")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		CronSecret:         cronSecret,
		LifecycleService:   lifecycleService,
		ConsentService:     consentService,
		ExportCompiler:     compiler,
		AssistService:      assistService,
		Sweeper:            sweeper,
		FeatureFlagService: ffService,
		ReadyCheck:         pool.Ping,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
