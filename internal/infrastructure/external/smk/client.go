package smk

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sledzspecke/smk-progress-hub/pkg/circuitbreaker"
	"github.com/sledzspecke/smk-progress-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the registry client.
type ClientConfig struct {
	// BaseURL is the registry API base URL.
	BaseURL string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RateLimiterConfig paces outgoing requests.
	RateLimiterConfig RateLimiterConfig

	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables request-level debug logging.
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:           baseURL,
		Timeout:           30 * time.Second,
		RateLimiterConfig: DefaultRateLimiterConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the SMK registry API client. All submissions go through the
// rate limiter and the circuit breaker; transient failures are retried
// with exponential backoff.
type Client struct {
	config      ClientConfig
	httpClient  *http.Client
	logger      *slog.Logger
	rateLimiter *RateLimiter
	breaker     *circuitbreaker.CircuitBreaker
	retrier     *retry.Retrier
	mapper      *Mapper

	// Session management
	session   *SessionDTO
	sessionMu sync.RWMutex
}

// NewClient creates a new registry client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:      config.Logger.With("component", "smk_client"),
		rateLimiter: NewRateLimiter(config.RateLimiterConfig),
		breaker:     circuitbreaker.RegistryBreaker(nil),
		mapper:      NewMapper(),
	}
	c.retrier = retry.New(
		retry.WithMaxAttempts(4),
		retry.WithInitialDelay(1*time.Second),
		retry.WithMaxDelay(30*time.Second),
		retry.WithRetryIf(c.isTransient),
	)
	return c
}

// Mapper returns the client's entity-to-record mapper.
func (c *Client) Mapper() *Mapper {
	return c.mapper
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Authenticate opens a registry session with username and password.
// The registry uses Basic Auth on the login endpoint and returns a bearer
// token for subsequent calls.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*SessionDTO, error) {
	fullURL := c.config.BaseURL + "/api/smk/v1/auth/login"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	credentials := username + ":" + password
	encoded := base64.StdEncoding.EncodeToString([]byte(credentials))
	req.Header.Set("Authorization", "Basic "+encoded)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var session SessionDTO
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("parse auth response: %w", err)
	}
	if session.TokenType == "" {
		session.TokenType = "Bearer"
	}
	if session.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(session.ExpiresIn) * time.Second)
	}

	c.sessionMu.Lock()
	c.session = &session
	c.sessionMu.Unlock()

	return &session, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSION OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// SubmitShift pushes one medical shift record to the registry.
func (c *Client) SubmitShift(ctx context.Context, record ShiftRecordDTO) (*SubmissionReceiptDTO, error) {
	var response APIResponse[SubmissionReceiptDTO]
	if err := c.doRequest(ctx, http.MethodPost, "/records/shifts", record, &response); err != nil {
		return nil, fmt.Errorf("submit shift %s: %w", record.ExternalID, err)
	}

	if !response.Success {
		return nil, fmt.Errorf("registry error: %s", response.Error)
	}

	return &response.Data, nil
}

// SubmitProcedure pushes one performed-procedure record to the registry.
func (c *Client) SubmitProcedure(ctx context.Context, record ProcedureRecordDTO) (*SubmissionReceiptDTO, error) {
	var response APIResponse[SubmissionReceiptDTO]
	if err := c.doRequest(ctx, http.MethodPost, "/records/procedures", record, &response); err != nil {
		return nil, fmt.Errorf("submit procedure %s: %w", record.ExternalID, err)
	}

	if !response.Success {
		return nil, fmt.Errorf("registry error: %s", response.Error)
	}

	return &response.Data, nil
}

// SubmitInternship pushes one internship record to the registry.
func (c *Client) SubmitInternship(ctx context.Context, record InternshipRecordDTO) (*SubmissionReceiptDTO, error) {
	var response APIResponse[SubmissionReceiptDTO]
	if err := c.doRequest(ctx, http.MethodPost, "/records/internships", record, &response); err != nil {
		return nil, fmt.Errorf("submit internship %s: %w", record.ExternalID, err)
	}

	if !response.Success {
		return nil, fmt.Errorf("registry error: %s", response.Error)
	}

	return &response.Data, nil
}

// SubmitBatch pushes a mixed batch of pending records in one call.
// The registry processes batch items independently; a partial failure
// shows up as rejected receipts, not as an error.
func (c *Client) SubmitBatch(ctx context.Context, batch BatchSubmissionDTO) (*BatchResultDTO, error) {
	if batch.IsEmpty() {
		return &BatchResultDTO{ProcessedAt: time.Now()}, nil
	}

	var response APIResponse[BatchResultDTO]
	if err := c.doRequest(ctx, http.MethodPost, "/records/batch", batch, &response); err != nil {
		return nil, fmt.Errorf("submit batch of %d records: %w", batch.Size(), err)
	}

	if !response.Success {
		return nil, fmt.Errorf("registry error: %s", response.Error)
	}

	return &response.Data, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STATUS OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetRecordStatus fetches the registry-side state of one submitted record.
func (c *Client) GetRecordStatus(ctx context.Context, externalID string) (*RecordStatusDTO, error) {
	path := fmt.Sprintf("/records/%s/status", url.PathEscape(externalID))

	var response APIResponse[RecordStatusDTO]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, fmt.Errorf("get record status %s: %w", externalID, err)
	}

	if !response.Success {
		return nil, fmt.Errorf("registry error: %s", response.Error)
	}

	return &response.Data, nil
}

// GetRecordStatuses fetches the registry-side state of many records at once.
func (c *Client) GetRecordStatuses(ctx context.Context, externalIDs []string) ([]RecordStatusDTO, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("external_ids", strings.Join(externalIDs, ","))

	var response APIResponse[[]RecordStatusDTO]
	if err := c.doRequest(ctx, http.MethodGet, "/records/status?"+params.Encode(), nil, &response); err != nil {
		return nil, fmt.Errorf("get record statuses: %w", err)
	}

	if !response.Success {
		return nil, fmt.Errorf("registry error: %s", response.Error)
	}

	return response.Data, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs an HTTP request with rate limiting, circuit breaking
// and retries.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	return c.retrier.Do(ctx, func(ctx context.Context) error {
		if err := c.rateLimiter.Allow(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		err := c.breaker.Execute(ctx, func(ctx context.Context) error {
			return c.doSingleRequest(ctx, method, path, body, result)
		})

		var throttleErr *RateLimitError
		if errors.As(err, &throttleErr) {
			c.rateLimiter.RecordThrottleHit(throttleErr.RetryAfter)
		}

		return err
	})
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	fullURL := c.config.BaseURL + "/api/smk/v1" + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.sessionMu.RLock()
	if c.session != nil && !c.session.IsExpired() {
		req.Header.Set("Authorization", c.session.TokenType+" "+c.session.AccessToken)
	}
	c.sessionMu.RUnlock()

	if c.config.Debug {
		c.logger.Debug("registry request", "method", method, "path", path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60 * time.Second
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{
			RetryAfter: retryAfter,
			Message:    "registry rate limit exceeded",
		}
	}

	if resp.StatusCode >= 400 {
		var apiErr APIErrorDTO
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Message != "" {
			return &apiErr
		}
		return fmt.Errorf("registry error: status %d", resp.StatusCode)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// isTransient decides whether a failed request is worth retrying.
func (c *Client) isTransient(err error) bool {
	if err == nil {
		return false
	}

	// An open breaker means the registry is already known to be down.
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return false
	}

	var throttleErr *RateLimitError
	if errors.As(err, &throttleErr) {
		return true
	}

	var apiErr *APIErrorDTO
	if errors.As(err, &apiErr) {
		return apiErr.IsTransient()
	}

	errStr := err.Error()
	for _, marker := range []string{"timeout", "connection refused", "temporary", "reset", "EOF"} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH AND STATUS
// ══════════════════════════════════════════════════════════════════════════════

// IsHealthy checks if the registry is reachable.
func (c *Client) IsHealthy(ctx context.Context) bool {
	var response APIResponse[map[string]interface{}]
	err := c.doSingleRequest(ctx, http.MethodGet, "/health", nil, &response)
	return err == nil && response.Success
}

// ClientStatus is a snapshot of the client's protective machinery.
type ClientStatus struct {
	RateLimiter    RateLimiterStatus
	CircuitBreaker circuitbreaker.State
	IsHealthy      bool
}

// Status returns the current status of the client.
func (c *Client) Status(ctx context.Context) ClientStatus {
	return ClientStatus{
		RateLimiter:    c.rateLimiter.Status(),
		CircuitBreaker: c.breaker.State(),
		IsHealthy:      c.IsHealthy(ctx),
	}
}

// Reset resets the rate limiter and circuit breaker.
func (c *Client) Reset() {
	c.rateLimiter.Reset()
	c.breaker.Reset()
}
