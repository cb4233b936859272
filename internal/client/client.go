// Package client implements the OpenRouter chat-completions client with
// per-model concurrency gating and bounded retry.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/langgap/langbench/internal/config"
	"github.com/langgap/langbench/internal/models"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/semaphore"
)

// DefaultBackoffBase is the first retry delay; each subsequent delay doubles.
const DefaultBackoffBase = 2 * time.Second

// maxErrorBodyLen bounds how much of an error response body is kept in
// diagnostics.
const maxErrorBodyLen = 200

// TransportError reports a completion call that could not be satisfied,
// carrying the model id and how many attempts were made.
type TransportError struct {
	Model    string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("completion for model %s failed after %d attempt(s): %v", e.Model, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// statusError is a non-2xx HTTP response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.code, e.body)
}

// retryable reports whether the status class is transient: rate limiting and
// server errors are retried, all other client errors fail immediately.
func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// errMalformedResponse marks a 2xx response missing the expected fields.
var errMalformedResponse = errors.New("malformed response body")

// Client issues completion requests against an OpenRouter-compatible
// endpoint. Each distinct model id gets its own counting semaphore so one
// saturated model never delays the others.
type Client struct {
	baseURL        string
	apiKey         string
	maxInFlight    int64
	maxAttempts    int
	backoffBase    time.Duration
	requestTimeout time.Duration

	mu         sync.Mutex
	gates      map[string]*semaphore.Weighted
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBackoffBase overrides the initial retry delay. Used by tests to keep
// retry runs fast.
func WithBackoffBase(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoffBase = d
		}
	}
}

// WithHTTPClient injects a pre-built transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client from configuration. A missing API key is a fatal
// construction error, not a per-call one.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s is not set; export it before running the benchmark", config.EnvAPIKey)
	}

	c := &Client{
		baseURL:        cfg.Client.BaseURL,
		apiKey:         cfg.APIKey,
		maxInFlight:    int64(cfg.Client.MaxConcurrentPerModel),
		maxAttempts:    cfg.Client.MaxAttempts,
		backoffBase:    DefaultBackoffBase,
		requestTimeout: time.Duration(cfg.Client.RequestTimeoutSec) * time.Second,
		gates:          make(map[string]*semaphore.Weighted),
	}
	if c.maxInFlight <= 0 {
		c.maxInFlight = config.DefaultMaxConcurrentPerModel
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = config.DefaultMaxAttempts
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Close releases the underlying transport. Safe to call regardless of how
// many requests were made or how they failed.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
}

// gate returns the semaphore for modelID, creating it lazily. The gate is
// shared by all callers for the lifetime of the client.
func (c *Client) gate(modelID string) *semaphore.Weighted {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.gates[modelID]
	if !ok {
		g = semaphore.NewWeighted(c.maxInFlight)
		c.gates[modelID] = g
	}
	return g
}

// transport lazily builds the HTTP client on first use.
func (c *Client) transport() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.requestTimeout}
	}
	return c.httpClient
}

// Complete sends a single user-message completion request to modelID. The
// call blocks while the model's in-flight count is at capacity, retries
// transient failures with exponential backoff, and reports latency for the
// successful attempt only.
func (c *Client) Complete(ctx context.Context, modelID, prompt string) (*models.CompletionResponse, error) {
	g := c.gate(modelID)
	if err := g.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquiring slot for model %s: %w", modelID, err)
	}
	defer g.Release(1)

	return c.completeWithRetry(ctx, modelID, prompt)
}

func (c *Client) completeWithRetry(ctx context.Context, modelID, prompt string) (*models.CompletionResponse, error) {
	var resp *models.CompletionResponse
	attempts := 0

	backoff := retry.WithMaxRetries(uint64(c.maxAttempts-1), retry.NewExponential(c.backoffBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		r, err := c.attempt(ctx, modelID, prompt)
		if err != nil {
			if isRetryable(err) {
				slog.Debug("completion attempt failed, will retry", "model", modelID, "attempt", attempts, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, &TransportError{Model: modelID, Attempts: attempts, Err: err}
	}
	return resp, nil
}

// chatRequest is the chat-completions request body. Temperature is pinned to
// zero so runs are as repeatable as the providers allow.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			// Pointer so an absent field is distinguishable from an
			// empty completion.
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// attempt performs one HTTP round trip and classifies the outcome.
func (c *Client) attempt(ctx context.Context, modelID, prompt string) (*models.CompletionResponse, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       modelID,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "langbench")

	start := time.Now()
	httpResp, err := c.transport().Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	latencyMs := time.Since(start).Milliseconds()

	if httpResp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > maxErrorBodyLen {
			snippet = snippet[:maxErrorBodyLen]
		}
		return nil, &statusError{code: httpResp.StatusCode, body: snippet}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", errMalformedResponse)
	}
	if parsed.Choices[0].Message.Content == nil {
		return nil, fmt.Errorf("%w: missing message content", errMalformedResponse)
	}

	return &models.CompletionResponse{
		Content:    *parsed.Choices[0].Message.Content,
		LatencyMs:  latencyMs,
		TokensUsed: parsed.Usage.TotalTokens,
	}, nil
}

// isRetryable classifies an attempt error: rate limiting, server errors,
// timeouts, and malformed bodies are transient; everything else is terminal.
func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	if errors.Is(err, errMalformedResponse) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}
