// Package assistant is the client of the rules and deck-building assistant API.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production assistant endpoint.
	DefaultBaseURL = "https://api.riftbound.com"

	// DefaultRulesEdition is the rules edition questions are asked against.
	DefaultRulesEdition = "1.1-100125"

	askPath            = "/ai/ask"
	defaultTimeout     = 60 * time.Second
	defaultRatePerSec  = 2.0
	defaultMaxRetries  = 2
	defaultBackoff     = 500 * time.Millisecond
	maxBackoff         = 8 * time.Second
	maxErrorBodyLength = 512
)

var (
	// ErrEmptyQuestion is returned when a request has no question.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrInvalidResponse is returned when the server answers with an unreadable body.
	ErrInvalidResponse = errors.New("invalid response from server")
)

// ServerError is a non-200 answer from the assistant API.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server error: %d", e.StatusCode)
	}
	return fmt.Sprintf("server error: %d: %s", e.StatusCode, e.Body)
}

// Config configures the assistant client.
type Config struct {
	BaseURL           string
	RulesEdition      string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        int
	InitialBackoff    time.Duration
	UserAgent         string
	HTTPClient        *http.Client // Optional; overrides Timeout
}

// Client calls the assistant API with rate limiting and retries.
type Client struct {
	baseURL        string
	rulesEdition   string
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	maxRetries     int
	initialBackoff time.Duration
	userAgent      string
}

// NewClient creates a new assistant client. Zero config fields take defaults.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.RulesEdition == "" {
		config.RulesEdition = DefaultRulesEdition
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = defaultRatePerSec
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = defaultBackoff
	}
	if config.UserAgent == "" {
		config.UserAgent = "Riftbound-Companion/1.0"
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		baseURL:        strings.TrimRight(config.BaseURL, "/"),
		rulesEdition:   config.RulesEdition,
		httpClient:     httpClient,
		rateLimiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		maxRetries:     config.MaxRetries,
		initialBackoff: config.InitialBackoff,
		userAgent:      config.UserAgent,
	}
}

// RulesEdition returns the rules edition stamped on requests.
func (c *Client) RulesEdition() string {
	return c.rulesEdition
}

// Ask sends a question to the assistant. An empty RulesEdition on the
// request is filled from the client.
func (c *Client) Ask(ctx context.Context, req *AskRequest) (*AskResponse, error) {
	if req == nil || strings.TrimSpace(req.Question) == "" {
		return nil, ErrEmptyQuestion
	}
	if _, err := ParseMode(string(req.Mode)); err != nil {
		return nil, err
	}

	body := *req
	if body.RulesEdition == "" {
		body.RulesEdition = c.rulesEdition
	}
	payload, err := json.Marshal(&body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var resp AskResponse
	if err := c.doRequest(ctx, c.baseURL+askPath, payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to ask assistant: %w", err)
	}
	if resp.Citations == nil {
		resp.Citations = []Citation{}
	}
	return &resp, nil
}

// doRequest POSTs payload with rate limiting and retries network errors,
// 429 and 5xx answers with exponential backoff.
func (c *Client) doRequest(ctx context.Context, url string, payload []byte, result interface{}) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = min(backoff*2, maxBackoff)
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return fmt.Errorf("failed to read response body: %w", readErr)
			}
			if err := json.Unmarshal(data, result); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
			}
			return nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = &ServerError{StatusCode: resp.StatusCode, Body: truncate(string(data))}
			if wait := retryAfter(resp.Header.Get("Retry-After")); wait > backoff {
				backoff = min(wait, maxBackoff)
			}
			continue

		default:
			return &ServerError{StatusCode: resp.StatusCode, Body: truncate(string(data))}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func retryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBodyLength {
		return s[:maxErrorBodyLength]
	}
	return s
}
