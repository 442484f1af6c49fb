// Package client wraps the clinic backend's REST API. Reads degrade to
// empty-but-failed results, writes report through model.WriteResult and
// logins return their error to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-portal/pkg/circuitbreaker"
	apperrors "github.com/jwalitptl/clinic-portal/pkg/errors"
	"github.com/jwalitptl/clinic-portal/pkg/logger"
	"github.com/jwalitptl/clinic-portal/pkg/metrics"
)

const maxBodyBytes = 4 << 20

type Config struct {
	BaseURL            string
	Timeout            time.Duration
	BreakerMaxFailures int
	BreakerTimeout     time.Duration
	UserAgent          string
}

type Client struct {
	baseURL   *url.URL
	http      *http.Client
	breaker   *circuitbreaker.CircuitBreaker
	metrics   *metrics.Metrics
	log       *logger.Logger
	userAgent string
}

type Option func(*Client)

// WithHTTPClient replaces the default client built from Config.Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l.With("backend") }
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "clinic-portal/1.0"
	}

	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: cfg.Timeout},
		log:       logger.Nop(),
		userAgent: cfg.UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "clinic-backend",
		MaxFailures: cfg.BreakerMaxFailures,
		Timeout:     cfg.BreakerTimeout,
		IsFailure:   countsAgainstBreaker,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			c.log.Warn("circuit breaker state changed", "breaker", name, "from", string(from), "to", string(to))
			if c.metrics != nil {
				open := 0.0
				if to != circuitbreaker.StateClosed {
					open = 1
				}
				c.metrics.BreakerState.WithLabelValues(name).Set(open)
			}
		},
	})
	return c, nil
}

// BreakerState exposes the breaker for readiness reporting.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// countsAgainstBreaker: transport failures and 5xx answers trip the breaker,
// client errors and caller cancellations do not.
func countsAgainstBreaker(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if apiErr, ok := apperrors.IsAPIError(err); ok {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return true
}

type request struct {
	op     string
	method string
	path   []string
	query  url.Values
	body   interface{}
	token  string
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// decode unmarshals a JSON body into v. An empty body leaves v untouched.
func (r *response) decode(v interface{}) error {
	if len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// buildURL joins escaped path segments onto the base and keeps only
// non-empty query values.
func (c *Client) buildURL(segments []string, query url.Values) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := c.baseURL.JoinPath(escaped...)

	q := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			if v != "" {
				q.Add(k, v)
			}
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// do runs the request through the breaker and classifies the answer: 2xx is
// returned as is, anything else becomes an *errors.APIError.
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	start := time.Now()
	var resp *response

	err := c.breaker.Execute(func() error {
		var err error
		resp, err = c.roundTrip(ctx, req)
		return err
	})

	c.observe(req.op, start, err)
	if err != nil {
		if _, ok := apperrors.IsAPIError(err); ok {
			c.log.Warn("backend rejected request", "operation", req.op, "error", err.Error())
		} else {
			c.log.Error(err, "backend request failed", "operation", req.op)
		}
		return nil, err
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, req request) (*response, error) {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.buildURL(req.path, req.query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		// url.Error repeats the URL, which may carry a token in its path.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%s %s: %w", req.method, req.op, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	resp := &response{status: httpResp.StatusCode, header: httpResp.Header, body: raw}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, apperrors.NewAPIError(httpResp.StatusCode, serverMessage(raw))
	}
	return resp, nil
}

// serverMessage extracts the "message" field of an error body, if any.
func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

func (c *Client) observe(op string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		outcome = "rejected"
	case err != nil:
		if _, ok := apperrors.IsAPIError(err); ok {
			outcome = "api_error"
		} else {
			outcome = "network_error"
		}
	}
	c.metrics.BackendRequests.WithLabelValues(op, outcome).Inc()
	c.metrics.BackendLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// writeFailure turns an error into the failed WriteResult message: the
// backend's own message when it sent one, fallback otherwise.
func writeFailure(err error, fallback string) string {
	return apperrors.Message(err, fallback)
}
