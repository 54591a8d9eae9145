// Package compute is the client of the external computation service proxied
// by POST /callAPI. The service is treated as untrusted: every call is bounded
// by a timeout and a rate limiter, and any failure surfaces as
// DependencyUnavailable.
package compute

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"member_portal/internal/apperror"

	"golang.org/x/time/rate"
)

const maxResponseBytes = 1 << 20

// ErrUnavailable is wrapped by every failed call.
var ErrUnavailable = errors.New("compute service unavailable")

// Config holds the client settings
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // calls per second, 0 disables limiting
	Burst     int
}

// Client calls the compute service over plain HTTP GET
type Client struct {
	baseURL    *url.URL
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient validates cfg and creates a Client
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid compute API URL %q", cfg.BaseURL)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL:    u,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		limiter:    limiter,
	}, nil
}

func unavailable(message string, err error) error {
	return apperror.NewDependencyUnavailable(message, fmt.Errorf("%w: %w", ErrUnavailable, err))
}

// Call forwards input to the service and returns its JSON body unchanged.
func (c *Client) Call(ctx context.Context, input string) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, unavailable("Compute service is busy", err)
	}

	u := *c.baseURL
	q := u.Query()
	q.Set("input", input)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, unavailable("Compute service request failed", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unavailable("Compute service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, unavailable("Compute service error", fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, unavailable("Compute service response unreadable", err)
	}
	if len(body) > maxResponseBytes {
		return nil, unavailable("Compute service response too large", fmt.Errorf("more than %d bytes", maxResponseBytes))
	}
	if !json.Valid(body) {
		return nil, unavailable("Compute service returned invalid JSON", errors.New("invalid JSON body"))
	}
	return json.RawMessage(body), nil
}
