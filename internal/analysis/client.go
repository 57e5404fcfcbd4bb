// Package analysis talks to the AI analysis backend and provides the
// simulated image and drone analyzers.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/urbansignal/billboard-watch/internal/config"
	"github.com/urbansignal/billboard-watch/internal/metrics"
	"github.com/urbansignal/billboard-watch/pkg/logger"
)

// Error codes surfaced in a Result.
const (
	CodeRateLimited    = "rate-limited"
	CodeAPIError       = "api_error"
	CodeNetworkError   = "network_error"
	CodeAnalysisFailed = "analysis_failed"
	CodeUnknownError   = "unknown_error"
)

const defaultRetryAfter = 60 * time.Second

// APIError describes a failed analysis call.
type APIError struct {
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
	Retryable  bool          `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Result is the tagged outcome of an analysis call. Err is set exactly
// when Success is false; retry failures never escape as plain errors.
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Err     *APIError       `json:"error,omitempty"`
}

// envelope is the response shape of the analysis backend. A rate limit is
// signalled by the code field regardless of HTTP status.
type envelope struct {
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	RetryAfter int             `json:"retryAfter"` // seconds
	Error      json.RawMessage `json:"error"`
}

// Client calls the analysis backend with fixed-delay retries.
type Client struct {
	endpoint   string
	httpClient *http.Client
	attempts   int
	delay      time.Duration
	log        *logger.Logger
}

// NewClient builds a client from config. At least one attempt is always
// made regardless of the configured retry count.
func NewClient(cfg *config.AnalysisConfig, log *logger.Logger) *Client {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		attempts:   attempts,
		delay:      cfg.RetryDelay(),
		log:        log,
	}
}

// Fetch posts a prompt to the analysis backend. Retryable failures (rate
// limits, 5xx responses, transport errors) are retried with a fixed delay
// between attempts; the backend's suggested wait is reported in the result
// but does not change the delay. Non-retryable failures short-circuit.
func (c *Client) Fetch(ctx context.Context, prompt string) Result {
	start := time.Now()
	defer func() {
		metrics.ObserveAnalysisDuration(time.Since(start).Seconds())
	}()

	var lastErr *APIError

	for attempt := 1; attempt <= c.attempts; attempt++ {
		body, apiErr := c.doRequest(ctx, prompt)
		if apiErr == nil {
			metrics.RecordAnalysisRequest("success")
			return Result{Success: true, Data: body}
		}

		lastErr = apiErr
		if !apiErr.Retryable || attempt == c.attempts {
			break
		}

		metrics.RecordAnalysisRetry(apiErr.Code)
		c.log.Warn().
			Str("code", apiErr.Code).
			Int("attempt", attempt).
			Int("max_attempts", c.attempts).
			Dur("delay", c.delay).
			Msg("Analysis request failed, retrying")

		if err := c.sleep(ctx); err != nil {
			lastErr = &APIError{Code: CodeNetworkError, Message: err.Error()}
			break
		}
	}

	if lastErr == nil {
		lastErr = &APIError{Code: CodeUnknownError, Message: "Unknown error occurred"}
	}

	metrics.RecordAnalysisRequest("failure")
	c.log.Error().
		Str("code", lastErr.Code).
		Str("message", lastErr.Message).
		Msg("Analysis request failed after all retries")
	return Result{Err: lastErr}
}

// doRequest performs a single attempt. It returns the raw response body on
// success, or a classified error.
func (c *Client) doRequest(ctx context.Context, prompt string) (json.RawMessage, *APIError) {
	payload, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, &APIError{Code: CodeNetworkError, Message: err.Error(), Retryable: true}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &APIError{Code: CodeNetworkError, Message: err.Error(), Retryable: true}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Code: CodeNetworkError, Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, &APIError{Code: CodeNetworkError, Message: err.Error(), Retryable: true}
	}
	body := buf.Bytes()

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &APIError{Code: CodeNetworkError, Message: err.Error(), Retryable: true}
	}

	if env.Code == CodeRateLimited {
		retryAfter := defaultRetryAfter
		if env.RetryAfter > 0 {
			retryAfter = time.Duration(env.RetryAfter) * time.Second
		}
		return nil, &APIError{
			Code:       CodeRateLimited,
			Message:    fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", int(retryAfter.Seconds())),
			RetryAfter: retryAfter,
			Retryable:  true,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || len(env.Error) > 0 {
		code := env.Code
		if code == "" {
			code = CodeAPIError
		}
		message := env.Message
		if message == "" {
			message = "API request failed"
		}
		return nil, &APIError{
			Code:      code,
			Message:   message,
			Retryable: resp.StatusCode >= 500,
		}
	}

	return body, nil
}

// sleep waits the fixed retry delay, returning early if the context ends.
func (c *Client) sleep(ctx context.Context) error {
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
