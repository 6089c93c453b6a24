package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"borsch/internal/logging"
	"borsch/internal/services"
)

const (
	contentTypeJSON    = "application/json"
	requestIDHeader    = "X-Request-ID"
	defaultHTTPTimeout = 30 * time.Second
	maxBodyBytes       = 8 << 20
)

// HTTPDoer describes the HTTP client used by the transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request is a single outbound call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response carries the status code and the fully read body.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client sends requests through an HTTPDoer.
type Client struct {
	http      HTTPDoer
	userAgent string
	logger    *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout installs a default http.Client with the given per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http = &http.Client{Timeout: timeout}
		}
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = agent
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "transport")
	}
}

// New constructs a transport client.
func New(opts ...Option) *Client {
	client := &Client{
		http:   &http.Client{Timeout: defaultHTTPTimeout},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Do sends the request and reads the whole response body. A non-nil error
// means no usable response was received.
func (c *Client) Do(ctx context.Context, r Request) (Response, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return Response{}, &BuildError{Method: r.Method, URL: r.URL, Err: err}
	}
	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	req.Header.Set(requestIDHeader, requestID)

	logger := logging.WithContext(ctx, c.logger)
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug("request failed",
			logging.String("method", r.Method),
			logging.String("url", r.URL),
			logging.String(logging.FieldCorrelationID, requestID),
			logging.Error(err),
		)
		return Response{}, fmt.Errorf("%s %s: %w", r.Method, r.URL, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("%s %s: read body: %w", r.Method, r.URL, err)
	}
	logger.Debug("request completed",
		logging.String("method", r.Method),
		logging.String("url", r.URL),
		logging.Int("status", resp.StatusCode),
		logging.Int("bytes", len(payload)),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldCorrelationID, requestID),
	)
	return Response{StatusCode: resp.StatusCode, Body: payload}, nil
}

// BuildError reports a request that could not be constructed, such as an
// unparseable URL. It is distinct from failures on the wire.
type BuildError struct {
	Method string
	URL    string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s request for %q: %v", e.Method, e.URL, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
