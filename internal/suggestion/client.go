package suggestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrUnavailable is returned when the circuit breaker rejects a request.
var ErrUnavailable = errors.New("suggestions API unavailable")

// StatusError reports a non-2xx response from the suggestions API.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("suggestions API returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("suggestions API returned %d", e.StatusCode)
}

// Temporary reports whether retrying may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// BreakerConfig configures the circuit breaker around API calls.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the circuit.
	FailureThreshold uint32

	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryConfig
	Breaker BreakerConfig
}

// DefaultClientConfig returns the client defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: "http://localhost:8000",
		Timeout: 10 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
	}
}

// Client submits suggestions to the suggestions API.
type Client struct {
	baseURL string
	timeout time.Duration
	retry   RetryConfig
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[struct{}]
	log     zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithClientLogger sets the client logger.
func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a Client. Zero-valued config fields take their defaults.
func NewClient(cfg ClientConfig, opts ...ClientOption) *Client {
	def := DefaultClientConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}
	if cfg.Retry.Multiplier < 1 {
		cfg.Retry.Multiplier = def.Retry.Multiplier
	}
	if cfg.Breaker.FailureThreshold == 0 {
		cfg.Breaker.FailureThreshold = def.Breaker.FailureThreshold
	}
	if cfg.Breaker.OpenTimeout <= 0 {
		cfg.Breaker.OpenTimeout = def.Breaker.OpenTimeout
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		retry:   cfg.Retry,
		http:    http.DefaultClient,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	threshold := cfg.Breaker.FailureThreshold
	c.cb = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "suggestions-api",
		MaxRequests: 1,
		Timeout:     cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Rejected payloads say nothing about the API's health.
		IsSuccessful: func(err error) bool {
			return err == nil || !retryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return c
}

// BreakerState returns the circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.cb.State()
}

// Submit validates s and posts it to the API. Transient failures are retried
// with exponential backoff; 4xx responses are returned immediately.
func (c *Client) Submit(ctx context.Context, s Suggestion) error {
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode suggestion: %w", err)
	}

	var lastErr error
	for attempt := range c.retry.MaxAttempts {
		_, err := c.cb.Execute(func() (struct{}, error) {
			return struct{}{}, c.post(ctx, body)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryable(err) {
			return err
		}
		if attempt == c.retry.MaxAttempts-1 {
			break
		}

		wait := c.backoff(attempt)
		c.log.Debug().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying suggestion")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/suggestions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post suggestion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	detail := ""
	if json.Unmarshal(raw, &payload) == nil && len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil {
			detail = s
		} else {
			detail = string(payload.Detail)
		}
	}
	return &StatusError{StatusCode: resp.StatusCode, Detail: detail}
}

// retryable reports whether err is worth another attempt. Network errors
// and per-attempt timeouts are transient.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

// backoff computes the wait duration for the given attempt.
func (c *Client) backoff(attempt int) time.Duration {
	wait := float64(c.retry.InitialWait) * math.Pow(c.retry.Multiplier, float64(attempt))
	if c.retry.MaxWait > 0 && wait > float64(c.retry.MaxWait) {
		wait = float64(c.retry.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
