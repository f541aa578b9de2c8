package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/wardboard/internal/logging"
)

// DefaultTimeout bounds each request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// HeaderRequestID carries a correlation ID unique to each request.
const HeaderRequestID = "X-Request-ID"

// requestIDField is the log field name carrying HeaderRequestID.
const requestIDField = "request_id"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 1 << 20

// Client talks to the hospital backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logging.ComponentLogger(l, "api")
	}
}

// NewClient creates a Client for baseURL, e.g. "http://127.0.0.1:5000/api".
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// List decodes GET /{resource} into out, which must be a pointer to a slice.
func (c *Client) List(ctx context.Context, resource string, out any) error {
	return c.doJSON(ctx, http.MethodGet, resource, nil, out)
}

// Get fetches one row as an ordered record.
func (c *Client) Get(ctx context.Context, resource string, id int) (Record, error) {
	var rec Record
	if err := c.doJSON(ctx, http.MethodGet, itemPath(resource, id), nil, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create posts payload to /{resource}.
func (c *Client) Create(ctx context.Context, resource string, payload any) (MutationResult, error) {
	var res MutationResult
	err := c.doJSON(ctx, http.MethodPost, resource, payload, &res)
	return res, err
}

// Update puts payload to /{resource}/{id}.
func (c *Client) Update(ctx context.Context, resource string, id int, payload any) (MutationResult, error) {
	var res MutationResult
	err := c.doJSON(ctx, http.MethodPut, itemPath(resource, id), payload, &res)
	return res, err
}

// Delete removes /{resource}/{id}.
func (c *Client) Delete(ctx context.Context, resource string, id int) (MutationResult, error) {
	var res MutationResult
	err := c.doJSON(ctx, http.MethodDelete, itemPath(resource, id), nil, &res)
	return res, err
}

// ExportCSV streams GET /{resource}/export/csv into w and returns the number
// of bytes written.
func (c *Client) ExportCSV(ctx context.Context, resource string, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, resource+"/export/csv", nil, "text/csv")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("exporting %s: %w", resource, err)
	}
	return n, nil
}

// Health calls GET /health. An unhealthy backend answers 500 with a body
// that still decodes; that body is returned alongside the error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	err := c.doJSON(ctx, http.MethodGet, PathHealth, nil, &status)
	var apiErr *Error
	if errors.As(err, &apiErr) {
		status = HealthStatus{Status: "unhealthy", Error: apiErr.Message}
	}
	return status, err
}

// LowStock returns inventory at or below its threshold.
func (c *Client) LowStock(ctx context.Context) ([]InventoryItem, error) {
	items := []InventoryItem{}
	if err := c.List(ctx, PathLowStock, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// TodayAppointments returns appointments scheduled for the backend's today.
func (c *Client) TodayAppointments(ctx context.Context) ([]TodayAppointment, error) {
	items := []TodayAppointment{}
	if err := c.List(ctx, PathTodayAppointments, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Options returns the id/name pairs of a picker endpoint such as
// "doctors/list". See Collection.OptionsPath.
func (c *Client) Options(ctx context.Context, path string) ([]Option, error) {
	opts := []Option{}
	if err := c.List(ctx, path, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

func itemPath(resource string, id int) string {
	return resource + "/" + strconv.Itoa(id)
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String()
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.do(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// do sends the request and returns the response for 2xx statuses. Any other
// status is converted to *Error and the body is closed.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, accept string) (*http.Response, error) {
	target := c.endpoint(path)
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request %s %s: %w", method, path, err)
	}

	requestID := logging.NewTraceID()
	traceID := logging.TraceIDFromContext(ctx)
	req.Header.Set("Accept", accept)
	req.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("method", method).
			Str("path", path).
			Str(requestIDField, requestID).
			Str(logging.TraceIDField, traceID).
			Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str(requestIDField, requestID).
		Str(logging.TraceIDField, traceID).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		apiErr.Message = payload.Error
	}
	return apiErr
}
