package playground

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"borsch/internal/logging"
	"borsch/internal/transport"
)

// Doer sends a request and returns the raw response. *transport.Client
// satisfies it.
type Doer interface {
	Do(ctx context.Context, req transport.Request) (transport.Response, error)
}

// Client talks to the playground service rooted at a base URL such as
// http://host:8080/api/v1.
type Client struct {
	base      *url.URL
	transport Doer
	logger    *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithTransport overrides the default transport.
func WithTransport(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.transport = doer
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "playground")
	}
}

// NewClient constructs a client for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, newError(ErrInvalidInput, "new client", 0, "base url required", nil)
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, newError(ErrInvalidInput, "new client", 0, "parse base url", err)
	}
	base.RawQuery = ""
	base.Fragment = ""

	client := &Client{
		base:      base,
		transport: transport.New(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// BaseURL returns the service base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// CreateJob submits source code for execution. The service answers 201 with
// the job handle; any other status is turned into an *Error.
func (c *Client) CreateJob(ctx context.Context, languageVersion, sourceCode string) (JobHandle, error) {
	const op = "create job"
	body, err := json.Marshal(createJobRequest{LanguageVersion: languageVersion, SourceCode: sourceCode})
	if err != nil {
		return JobHandle{}, newError(ErrInvalidInput, op, 0, "encode request", err)
	}

	resp, err := c.send(ctx, op, http.MethodPost, c.endpoint("jobs"), body)
	if err != nil {
		return JobHandle{}, err
	}
	if resp.StatusCode != http.StatusCreated {
		return JobHandle{}, decodeFailure(op, resp)
	}

	var handle JobHandle
	if err := decodeObject(resp.Body, &handle, "job_id", "output_url"); err != nil {
		return JobHandle{}, newError(ErrDecode, op, resp.StatusCode, "", err)
	}
	if strings.TrimSpace(handle.JobID) == "" {
		return JobHandle{}, newError(ErrDecode, op, resp.StatusCode, "empty job_id", nil)
	}
	c.logger.Debug("job created", logging.String(logging.FieldJobID, handle.JobID))
	return handle, nil
}

// FetchOutput returns the rows produced by jobID after the first offset rows.
// offset is a row count, not a byte position.
func (c *Client) FetchOutput(ctx context.Context, jobID string, offset int) (OutputPage, error) {
	const op = "fetch output"
	if strings.TrimSpace(jobID) == "" {
		return OutputPage{}, newError(ErrInvalidInput, op, 0, "job id required", nil)
	}
	if offset < 0 {
		return OutputPage{}, newError(ErrInvalidInput, op, 0, fmt.Sprintf("offset must be >= 0, got %d", offset), nil)
	}

	endpoint := c.endpoint("jobs", jobID, "output")
	endpoint.RawQuery = url.Values{"offset": []string{strconv.Itoa(offset)}}.Encode()

	resp, err := c.send(ctx, op, http.MethodGet, endpoint, nil)
	if err != nil {
		return OutputPage{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return OutputPage{}, decodeFailure(op, resp)
	}

	page, err := decodeOutputPage(resp.Body)
	if err != nil {
		return OutputPage{}, newError(ErrDecode, op, resp.StatusCode, "", err)
	}
	return page, nil
}

// ListLanguageVersions returns the supported language versions in the order
// the service prefers them.
func (c *Client) ListLanguageVersions(ctx context.Context) ([]string, error) {
	const op = "list language versions"
	resp, err := c.send(ctx, op, http.MethodGet, c.endpoint("lang", "versions"), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeFailure(op, resp)
	}

	var versions []string
	if err := json.Unmarshal(resp.Body, &versions); err != nil {
		return nil, newError(ErrDecode, op, resp.StatusCode, "", err)
	}
	if versions == nil {
		return nil, newError(ErrDecode, op, resp.StatusCode, "expected JSON array, got null", nil)
	}
	return versions, nil
}

// RawOutputURL is where the full plain-text output of a finished job can be
// downloaded.
func (c *Client) RawOutputURL(jobID string) string {
	return c.endpoint("jobs", jobID, "output.txt").String()
}

func (c *Client) endpoint(segments ...string) *url.URL {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}
	ref := *c.base
	ref.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.Join(segments, "/")
	ref.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	return &ref
}

func (c *Client) send(ctx context.Context, op, method string, endpoint *url.URL, body []byte) (transport.Response, error) {
	resp, err := c.transport.Do(ctx, transport.Request{
		Method: method,
		URL:    endpoint.String(),
		Body:   body,
	})
	if err != nil {
		var buildErr *transport.BuildError
		if errors.As(err, &buildErr) {
			return transport.Response{}, newError(ErrInvalidInput, op, 0, "", err)
		}
		return transport.Response{}, newError(ErrTransport, op, 0, "", err)
	}
	return resp, nil
}

// decodeFailure turns an unexpected status into a server error when the body
// carries {"message": ...}, and into a decode error otherwise.
func decodeFailure(op string, resp transport.Response) error {
	var payload errorResponse
	if err := decodeObject(resp.Body, &payload, "message"); err != nil {
		return newError(ErrDecode, op, resp.StatusCode, "unreadable error body", err)
	}
	return newError(ErrServer, op, resp.StatusCode, payload.Message, nil)
}

func decodeOutputPage(body []byte) (OutputPage, error) {
	fields, err := objectFields(body)
	if err != nil {
		return OutputPage{}, err
	}
	if _, ok := fields["exit_code"]; !ok {
		return OutputPage{}, errors.New(`missing field "exit_code"`)
	}
	if err := requireFields(fields, "rows"); err != nil {
		return OutputPage{}, err
	}

	var page OutputPage
	if err := json.Unmarshal(fields["exit_code"], &page.ExitCode); err != nil {
		return OutputPage{}, fmt.Errorf("exit_code: %w", err)
	}
	var rawRows []json.RawMessage
	if err := json.Unmarshal(fields["rows"], &rawRows); err != nil {
		return OutputPage{}, fmt.Errorf("rows: %w", err)
	}
	page.Rows = make([]OutputRow, 0, len(rawRows))
	for i, raw := range rawRows {
		var row OutputRow
		if err := decodeObject(raw, &row, "id", "created_at", "text"); err != nil {
			return OutputPage{}, fmt.Errorf("rows[%d]: %w", i, err)
		}
		page.Rows = append(page.Rows, row)
	}
	return page, nil
}

func decodeObject(body []byte, v any, required ...string) error {
	fields, err := objectFields(body)
	if err != nil {
		return err
	}
	if err := requireFields(fields, required...); err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func objectFields(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("expected JSON object, got null")
	}
	return fields, nil
}

// requireFields rejects absent and null values for non-nullable keys.
func requireFields(fields map[string]json.RawMessage, keys ...string) error {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			return fmt.Errorf("missing field %q", key)
		}
		if strings.TrimSpace(string(raw)) == "null" {
			return fmt.Errorf("field %q is null", key)
		}
	}
	return nil
}
