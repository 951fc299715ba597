package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"bilisum/internal/logging"
	"bilisum/internal/services"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	maxBodyBytes       = 8 << 20
	errorSnippetBytes  = 512
	defaultUserAgent   = "bilisum/0.1"
	requestIDHeader    = "X-Request-ID"
)

// Client talks to the local processing backend.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
	newID      func() string
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// WithLogger attaches a logger for request-level debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "backend")
	}
}

// NewClient constructs a backend client for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "backend", "init", "base url required", nil)
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "backend", "init", "parse base url", err)
	}
	base.Path = strings.TrimRight(base.Path, "/")
	base.RawQuery = ""
	base.Fragment = ""

	client := &Client{
		base:       base,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		userAgent:  defaultUserAgent,
		logger:     logging.NewComponentLogger(nil, "backend"),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Presets fetches the preset catalogue.
func (c *Client) Presets(ctx context.Context) ([]Preset, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodGet, "presets", nil)
	if err != nil {
		return nil, err
	}
	var presets []Preset
	if err := decodeValidated(schemas.presets, body, &presets); err != nil {
		return nil, fmt.Errorf("presets: %w", err)
	}
	seen := make(map[string]struct{}, len(presets))
	for _, p := range presets {
		if _, dup := seen[p.Key]; dup {
			return nil, fmt.Errorf("presets: %w: %q", ErrDuplicatePreset, p.Key)
		}
		seen[p.Key] = struct{}{}
	}
	return presets, nil
}

// Submit creates a processing job. A 200 reply that lacks task_id is returned
// as-is; callers decide how to treat it.
func (c *Client) Submit(ctx context.Context, req ProcessRequest) (ProcessResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return ProcessResponse{}, fmt.Errorf("process: encode request: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, "process", payload)
	if err != nil {
		return ProcessResponse{}, err
	}
	var resp ProcessResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ProcessResponse{}, fmt.Errorf("process: %w: %w", ErrMalformedBody, err)
	}
	resp.TaskID = strings.TrimSpace(resp.TaskID)
	return resp, nil
}

// Status queries the state of a job.
func (c *Client) Status(ctx context.Context, taskID string) (StatusResponse, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return StatusResponse{}, services.Wrap(services.ErrValidation, "backend", "status", "task id required", nil)
	}
	schemas, err := loadSchemas()
	if err != nil {
		return StatusResponse{}, err
	}
	body, err := c.do(ctx, http.MethodGet, "status/"+url.PathEscape(taskID), nil)
	if err != nil {
		return StatusResponse{}, err
	}
	var resp StatusResponse
	if err := decodeValidated(schemas.status, body, &resp); err != nil {
		return StatusResponse{}, fmt.Errorf("status: %w", err)
	}
	return resp, nil
}

// endpoint resolves an already escaped relative path against the base URL.
func (c *Client) endpoint(path string) string {
	return c.base.JoinPath(path).String()
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = c.newID()
		ctx = services.WithRequestID(ctx, requestID)
	}
	logger := logging.WithContext(ctx, c.logger)

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("backend request failed",
			logging.String("method", method),
			logging.String("path", path),
			logging.Error(err),
		)
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w: %w", path, ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: read body: %w", path, ErrUnreachable, err)
	}
	logger.Debug("backend response",
		logging.String("method", method),
		logging.String("path", path),
		logging.Int("status_code", resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
	)
	if resp.StatusCode != http.StatusOK {
		snippet := body
		if len(snippet) > errorSnippetBytes {
			snippet = snippet[:errorSnippetBytes]
		}
		return nil, &StatusError{Endpoint: path, StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	return body, nil
}
