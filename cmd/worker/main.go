// Package main provides the entrypoint for the knuut retention worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/knuut/knuut-api/internal/audit"
	"github.com/knuut/knuut-api/internal/database"
	"github.com/knuut/knuut-api/internal/featureflags"
	"github.com/knuut/knuut-api/internal/lifecycle"
	"github.com/knuut/knuut-api/internal/sweep"
	"github.com/knuut/knuut-api/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "knuut-worker").
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting knuut retention worker")

	// Get port from environment or default to 8080
	// Worker also exposes health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	lifecycleRepo := lifecycle.NewPostgresRepository(pool)
	recorder := audit.NewRecorder(audit.NewPostgresRepository(pool), log)
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: featureflags.NewPostgresRepository(pool),
		Logger:     log,
	})

	sweeper := sweep.NewSweeper(sweep.SweeperConfig{
		Store:  lifecycleRepo,
		Purger: lifecycle.NewPostgresPurger(pool),
		Audit:  recorder,
		Logger: log,
		Flags:  ffService,
	})

	// Interval-based fallback schedule. The sweep is idempotent, so this
	// coexists with the Pub/Sub trigger and the API's internal endpoint.
	sweepCfg := worker.DefaultConfig()
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		interval, parseErr := time.ParseDuration(v)
		if parseErr != nil {
			log.Fatal().Err(parseErr).Str("value", v).Msg("invalid SWEEP_INTERVAL")
		}
		sweepCfg.Interval = interval
	}
	sweepCfg.RunOnStart = os.Getenv("SWEEP_RUN_ON_START") == "true"

	scheduler := worker.NewScheduler(worker.SchedulerConfig{
		Runner: sweeper,
		Config: sweepCfg,
		Logger: log,
	})

	go func() {
		if err := scheduler.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("scheduler stopped unexpectedly")
		}
	}()

	// Pub/Sub trigger, driven by Cloud Scheduler. Optional: interval-only
	// deployments leave the subscription unset.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID != "" && subscription != "" {
		handler, psErr := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			Runner:           sweeper,
			Ping:             pool.Ping,
			Logger:           log,
		})
		if psErr != nil {
			log.Fatal().Err(psErr).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped unexpectedly")
			}
		}()
	} else {
		log.Info().Msg("pubsub not configured, running on interval schedule only")
	}

	// Create HTTP server for health checks
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start health check server
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
