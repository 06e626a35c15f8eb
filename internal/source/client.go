// Package source issues structured queries against the remote graph-data
// service and reads the bulk static dataset. Transient failures (rate limit,
// gateway timeout, network errors) are retried with classified backoff;
// permanent failures surface to the caller immediately.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const userAgent = "JustEnoughFlags/2.1 (educational project; https://github.com/gyarab/2025-wt-prj-khudanych)"

// Transient failure classes. Each gets its own backoff schedule: rate-limit
// waits scale faster than timeout waits.
var (
	ErrRateLimited    = errors.New("source: rate limited")
	ErrGatewayTimeout = errors.New("source: gateway timeout")
)

// statusError marks a permanent HTTP failure that retrying cannot fix.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("source: unexpected status %d", e.code)
}

// Row is one result row: a flat mapping of named string fields. Absent fields
// read as the empty string.
type Row map[string]string

// Value returns the named field, or "" when absent.
func (r Row) Value(key string) string {
	return r[key]
}

// Client queries the SPARQL endpoint. A rate limiter enforces a fixed pause
// between queries regardless of outcome, and a circuit breaker guards the
// endpoint against hammering a failing service.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
	cb         *gobreaker.CircuitBreaker
	limiter    *rate.Limiter

	attempts       uint
	rateLimitDelay time.Duration
	retryDelay     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithPause sets the fixed inter-query pause.
func WithPause(d time.Duration) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

// WithDelays overrides the backoff base delays. Tests use millisecond values.
func WithDelays(rateLimit, retry time.Duration) Option {
	return func(c *Client) {
		c.rateLimitDelay = rateLimit
		c.retryDelay = retry
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(endpoint string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint:       endpoint,
		httpClient:     &http.Client{Timeout: 120 * time.Second},
		logger:         logger.Named("sparql"),
		limiter:        rate.NewLimiter(rate.Every(2*time.Second), 1),
		attempts:       3,
		rateLimitDelay: 15 * time.Second,
		retryDelay:     5 * time.Second,
	}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "SparqlEndpoint",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 6
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query runs one SPARQL query and returns the flattened result rows. It
// blocks on the inter-query throttle first, then retries transient failures
// up to the attempt bound.
func (c *Client) Query(ctx context.Context, query string) ([]Row, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var rows []Row
	err := retry.Do(
		func() error {
			res, err := c.cb.Execute(func() (interface{}, error) {
				return c.doQuery(ctx, query)
			})
			if err != nil {
				return err
			}
			rows = res.([]Row)
			return nil
		},
		retry.Attempts(c.attempts),
		retry.DelayType(c.backoff),
		retry.RetryIf(isTransient),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("retrying query", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// backoff classifies the failed attempt and picks its wait interval.
// n is zero-based: the first retry of a rate-limited query waits one base
// interval, the second two, and so on.
func (c *Client) backoff(n uint, err error, _ *retry.Config) time.Duration {
	scale := time.Duration(n + 1)
	switch {
	case errors.Is(err, ErrRateLimited):
		return c.rateLimitDelay * scale
	case errors.Is(err, ErrGatewayTimeout):
		return c.retryDelay * scale
	default:
		return c.retryDelay
	}
}

func isTransient(err error) bool {
	var se *statusError
	return !errors.As(err, &se)
}

func (c *Client) doQuery(ctx context.Context, query string) ([]Row, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build query request: %w", err)
	}
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusGatewayTimeout:
		return nil, ErrGatewayTimeout
	default:
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read query response: %w", err)
	}
	return parseRows(body)
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

func parseRows(body []byte) ([]Row, error) {
	var parsed sparqlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}
	rows := make([]Row, 0, len(parsed.Results.Bindings))
	for _, binding := range parsed.Results.Bindings {
		row := make(Row, len(binding))
		for field, cell := range binding {
			row[field] = cell.Value
		}
		rows = append(rows, row)
	}
	return rows, nil
}
