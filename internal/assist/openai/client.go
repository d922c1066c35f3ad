// Package openai provides a resilient client for the OpenAI chat
// completions API, with circuit breaker and retry logic for the outbound
// calls.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

const (
	// DefaultBaseURL is the base URL for the OpenAI API.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-4o-mini"
)

// Predefined client errors.
var (
	// ErrUnavailable is returned when the provider cannot be reached:
	// the circuit breaker is open, retries are exhausted, or the
	// response is unusable.
	ErrUnavailable = errors.New("language model provider unavailable")
)

// ChatRequest describes one completion call. UserHandle is the
// pseudonymized caller identifier forwarded in the API's `user` field;
// the raw identifier must never reach this package.
type ChatRequest struct {
	System     string
	Prompt     string
	UserHandle string
	MaxTokens  int
}

// ChatResult is the usable part of a completion response.
type ChatResult struct {
	Content    string
	Model      string
	TokensUsed int
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenAI client.
type ClientConfig struct {
	// APIKey authenticates requests.
	APIKey string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// Model is the chat model (defaults to DefaultModel).
	Model string

	// Timeout is the per-request timeout. Default: 15 seconds.
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts. Default: 3.
	MaxRetries uint64

	// InitialInterval is the initial retry backoff. Default: 200ms.
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff. Default: 5 seconds.
	MaxInterval time.Duration

	// HTTPClient overrides the underlying HTTP client in tests.
	HTTPClient HTTPDoer
}

// Client calls the chat completions API. Transient failures (network
// errors, 429, 5xx) are retried with exponential backoff; sustained
// failure trips the circuit breaker so a down provider fails fast
// instead of stacking up blocked requests.
type Client struct {
	baseURL string
	apiKey  string
	model   string

	httpClient HTTPDoer
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
}

// NewClient creates a new OpenAI client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	})

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: httpClient,
		breaker:    breaker,
		config:     cfg,
	}
}

// API request/response types (chat completions wire format).

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	User        string        `json:"user,omitempty"`
}

type completionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// serverError marks a retryable provider-side failure.
type serverError struct {
	statusCode int
}

func (e *serverError) Error() string {
	return "provider error: " + http.StatusText(e.statusCode)
}

// Complete executes one chat completion. A provider that cannot produce a
// usable suggestion is surfaced as ErrUnavailable; there is no placeholder
// fallback.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 100
	}

	body, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
		User:        req.UserHandle,
	})
	if err != nil {
		return nil, fmt.Errorf("encode completion request: %w", err)
	}

	resp, err := c.doWithRetry(ctx, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	model := decoded.Model
	if model == "" {
		model = c.model
	}

	return &ChatResult{
		Content:    strings.TrimSpace(decoded.Choices[0].Message.Content),
		Model:      model,
		TokensUsed: decoded.Usage.TotalTokens,
	}, nil
}

// doWithRetry posts the body to the completions endpoint through the
// circuit breaker, retrying transient failures with exponential backoff.
func (c *Client) doWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0

	var lastResp *http.Response

	operation := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			req, err := http.NewRequestWithContext(ctx, http.MethodPost,
				c.baseURL+"/chat/completions", bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
			req.Header.Set("Content-Type", "application/json")

			r, err := c.httpClient.Do(req)
			if err != nil {
				return nil, err
			}

			// 5xx and 429 count as failures so the breaker sees them.
			if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
				drainAndClose(r)
				return nil, &serverError{statusCode: r.StatusCode}
			}

			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(fmt.Errorf("%w: circuit open", ErrUnavailable))
			}
			return err
		}

		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return lastResp, nil
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// BreakerState returns the current circuit breaker state, for readiness
// reporting.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}
