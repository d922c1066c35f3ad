package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubHandler handles Pub/Sub messages for the worker. Cloud Scheduler
// publishes sweep jobs to a topic; this subscriber consumes them.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	runner           SweepRunner
	ping             func(ctx context.Context) error
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string

	// Runner executes retention sweep jobs.
	Runner SweepRunner

	// Ping verifies the critical dependency (the database) for
	// health_check jobs. Optional.
	Ping func(ctx context.Context) error

	Logger zerolog.Logger
}

// JobMessage represents a background job message.
type JobMessage struct {
	JobType string `json:"job_type"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// The sweep runs serially; one outstanding message is enough, and a
	// long purge batch must not lose its lease mid-run.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 1
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		runner:           cfg.Runner,
		ping:             cfg.Ping,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var job JobMessage
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch job.JobType {
	case "retention_sweep":
		err = h.handleRetentionSweep(ctx)
	case "health_check":
		err = h.handleHealthCheck(ctx)
	default:
		logger.Warn().Str("job_type", job.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	duration := time.Since(startTime)
	logger.Info().
		Str("job_type", job.JobType).
		Dur("duration", duration).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleRetentionSweep(ctx context.Context) error {
	result, err := h.runner.Run(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("retention sweep: %w", err)
	}

	h.logger.Info().
		Dur("duration", result.Duration).
		Int("purged", len(result.Purged)).
		Int("failed", len(result.Failed)).
		Bool("skipped", result.Skipped).
		Msg("retention sweep completed")

	// Per-user purge failures are already audited; the message is acked so
	// the failed users are retried on the next scheduled sweep instead of
	// through redelivery.
	return nil
}

func (h *PubSubHandler) handleHealthCheck(ctx context.Context) error {
	h.logger.Debug().Msg("running health check")

	if h.ping == nil {
		return nil
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := h.ping(checkCtx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	h.logger.Debug().Msg("health check passed")
	return nil
}
