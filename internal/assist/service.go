// Package assist implements the consent-gated workplace phrase suggestion.
// It is the one code path that forwards user text to an external language
// model, so every privacy control converges here: consent check first,
// PII sanitization before anything leaves the process, pseudonymized
// caller identity on the outbound call and in the interaction log.
package assist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/knuut/knuut-api/internal/ailog"
	"github.com/knuut/knuut-api/internal/assist/openai"
	"github.com/knuut/knuut-api/internal/consent"
	"github.com/knuut/knuut-api/internal/privacy"
)

// Topic under which assist interactions are logged.
const interactionTopic = "workplace-language"

// Predefined service errors.
var (
	// ErrConsentRequired is returned when the user has not granted AI
	// processing consent.
	ErrConsentRequired = errors.New("ai processing consent required")

	// ErrAssistDisabled is returned when the assist kill switch is on.
	ErrAssistDisabled = errors.New("ai assist is disabled")
)

// ChatClient abstracts the language model provider.
type ChatClient interface {
	Complete(ctx context.Context, req openai.ChatRequest) (*openai.ChatResult, error)
}

// ConsentChecker reads the caller's current consent flags.
type ConsentChecker interface {
	CurrentConsent(ctx context.Context, userID string) (consent.Flags, error)
}

// KillSwitch reports whether the assist path is administratively disabled.
type KillSwitch interface {
	IsAIAssistDisabled(ctx context.Context) bool
}

// PhraseRequest is one suggestion request.
type PhraseRequest struct {
	UserID  string
	Text    string
	Context string
}

// PhraseSuggestion is the suggested phrase.
type PhraseSuggestion struct {
	Phrase string `json:"phrase"`
	Model  string `json:"model"`
}

// ServiceConfig holds configuration for creating a Service.
type ServiceConfig struct {
	Consents     ConsentChecker
	Client       ChatClient
	Interactions ailog.Repository
	Flags        KillSwitch
	Logger       zerolog.Logger
}

// Service is the workplace phrase suggestion service.
type Service struct {
	consents     ConsentChecker
	client       ChatClient
	interactions ailog.Repository
	flags        KillSwitch
	logger       zerolog.Logger
}

// NewService creates a new assist service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		consents:     cfg.Consents,
		client:       cfg.Client,
		interactions: cfg.Interactions,
		flags:        cfg.Flags,
		logger:       cfg.Logger,
	}
}

// WorkplacePhrase suggests a Finnish workplace phrase for the given text.
//
// The consent gate runs before anything else touches the input: without an
// AI processing grant nothing is sanitized, forwarded, or logged. The
// provider only ever sees sanitized text and the pseudonymized handle.
func (s *Service) WorkplacePhrase(ctx context.Context, req PhraseRequest) (*PhraseSuggestion, error) {
	if s.flags != nil && s.flags.IsAIAssistDisabled(ctx) {
		return nil, ErrAssistDisabled
	}

	flags, err := s.consents.CurrentConsent(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("check consent: %w", err)
	}
	if !flags.AIProcessing {
		return nil, ErrConsentRequired
	}

	if err := privacy.CheckInputSafety(req.Text); err != nil {
		return nil, err
	}

	sanitized := privacy.Sanitize(req.Text)
	handle := privacy.Pseudonymize(req.UserID)

	situation := req.Context
	if situation == "" {
		situation = "workplace"
	}

	result, err := s.client.Complete(ctx, openai.ChatRequest{
		System: "You are a Finnish language coach for workplace situations. " +
			"Suggest a helpful Finnish phrase for the workplace context. " +
			"Keep it short (1-2 sentences max). " +
			"Provide the phrase in Finnish with English translation in parentheses. " +
			"Do not request or store personal information.",
		Prompt:     fmt.Sprintf("Context: %s. User said: %q. Suggest a helpful Finnish phrase.", situation, sanitized),
		UserHandle: handle,
	})
	if err != nil {
		s.logInteraction(ctx, handle, len(sanitized), nil, "", ailog.StatusError)
		return nil, err
	}

	tokens := result.TokensUsed
	s.logInteraction(ctx, handle, len(sanitized), &tokens, result.Model, ailog.StatusSuccess)

	return &PhraseSuggestion{
		Phrase: result.Content,
		Model:  result.Model,
	}, nil
}

// logInteraction records the interaction against the correlation handle.
// Best-effort: a failed write must not fail the suggestion.
func (s *Service) logInteraction(ctx context.Context, handle string, messageLength int, tokens *int, model, status string) {
	err := s.interactions.Insert(ctx, &ailog.Interaction{
		UserHash:      handle,
		Topic:         interactionTopic,
		MessageLength: messageLength,
		TokensUsed:    tokens,
		Model:         model,
		Status:        status,
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("degraded_mode", "ailog_write").Msg("failed to record ai interaction")
	}
}
