package otp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ottplanner/ottplanner/internal/provider/resilience"
)

const (
	// ProviderName identifies the engine in the provider registry and metrics.
	ProviderName = "otp"

	// DefaultBaseURL is the router endpoint of a local engine.
	DefaultBaseURL = "http://localhost:8080/otp/routers/default"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// maxBodyBytes bounds how much of a response is read.
	maxBodyBytes = 32 << 20
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Recorder receives the outcome of each engine call.
type Recorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
}

// ClientConfig holds configuration for the engine client.
type ClientConfig struct {
	// BaseURL is the router URL, without the trailing /plan.
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client registered under ProviderName.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 30s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Metrics records request duration and errors (optional).
	Metrics Recorder

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client calls the engine's /plan and /index endpoints.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	metrics    Recorder
	logger     zerolog.Logger
}

// NewClient creates a new engine client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.Registry = cfg.Registry
		clientCfg.Logger = cfg.Logger
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Plan requests itineraries for the given engine query.
// An engine-reported planning failure is not an error: it is returned in Response.Error.
func (c *Client) Plan(ctx context.Context, query url.Values) (*Response, error) {
	start := time.Now()
	resp, err := c.plan(ctx, query)
	if c.metrics != nil {
		c.metrics.RecordRequest(ProviderName, "plan", time.Since(start), err)
	}
	return resp, err
}

func (c *Client) plan(ctx context.Context, query url.Values) (*Response, error) {
	c.logger.Debug().
		Str("from", query.Get("fromPlace")).
		Str("to", query.Get("toPlace")).
		Str("mode", query.Get("mode")).
		Msg("requesting plan from engine")

	body, err := c.get(ctx, "/plan", query)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	resp, err := DecodeResponse(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	itineraries, _ := resp.Plan.Array("itineraries")
	c.logger.Debug().
		Int("itinerary_count", len(itineraries)).
		Bool("engine_error", resp.Error != nil).
		Msg("received plan from engine")

	return resp, nil
}

// get issues a GET against the router and returns the body of a 200 response.
// The caller must close the body.
func (c *Client) get(ctx context.Context, path string, query url.Values) (io.ReadCloser, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &Error{
			Code:    "REQUEST_FAILED",
			Message: "failed to reach trip planning engine",
			Err:     fmt.Errorf("%w: %w", ErrEngineUnavailable, err),
		}
	}

	if httpResp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(httpResp.Body, maxBodyBytes))
		httpResp.Body.Close()
		return nil, statusError(httpResp.StatusCode)
	}
	return httpResp.Body, nil
}

// statusError maps a non-200 engine status to an Error.
func statusError(status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &Error{
			Code:    "RATE_LIMIT",
			Message: "engine rate limit exceeded, please try again later",
			Err:     ErrRateLimitExceeded,
		}
	case status == http.StatusBadRequest:
		return &Error{
			Code:    "BAD_REQUEST",
			Message: "engine rejected the plan request",
			Err:     ErrBadRequest,
		}
	case status >= 500:
		return &Error{
			Code:    fmt.Sprintf("SERVER_%d", status),
			Message: "trip planning engine is temporarily unavailable",
			Err:     ErrEngineUnavailable,
		}
	default:
		return &Error{
			Code:    fmt.Sprintf("HTTP_%d", status),
			Message: fmt.Sprintf("trip planning engine returned status %d", status),
			Err:     ErrEngineUnavailable,
		}
	}
}
