package catalog

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

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

const tracksPath = "/api/tracks"

// Client talks to the catalog REST service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// Options configures a [Client]. HTTPClient overrides Timeout; AdminToken,
// when set, is sent as a bearer token on every request.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	AdminToken string
	Logger     *log.Logger
}

// NewClient creates a catalog client. Without a base URL it targets the
// default local server.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:3001"
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	if opts.AdminToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AdminToken, TokenType: "Bearer"})
		client = &http.Client{
			Transport:     &oauth2.Transport{Source: src, Base: client.Transport},
			Timeout:       client.Timeout,
			CheckRedirect: client.CheckRedirect,
			Jar:           client.Jar,
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger.With("component", "catalog"),
	}
}

// BaseURL returns the service root the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// List fetches the catalog, newest first.
func (c *Client) List(ctx context.Context) ([]models.Track, error) {
	var rows []models.TrackRow
	if err := c.do(ctx, http.MethodGet, tracksPath, nil, &rows, http.StatusOK); err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	return models.TracksFromRows(rows), nil
}

// Create stores a new track and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, req models.CreateTrackRequest) (*models.Track, error) {
	var row models.TrackRow
	if err := c.do(ctx, http.MethodPost, tracksPath, req, &row, http.StatusCreated, http.StatusOK); err != nil {
		return nil, fmt.Errorf("create track: %w", err)
	}
	tr := row.Track()
	return &tr, nil
}

// Delete removes a track. Deleting an id the service does not hold succeeds.
func (c *Client) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}
	var msg models.MessageResponse
	if err := c.do(ctx, http.MethodDelete, tracksPath+"/"+url.PathEscape(id), nil, &msg, http.StatusOK, http.StatusNoContent); err != nil {
		return fmt.Errorf("delete track %s: %w", id, err)
	}
	return nil
}

// Seed asks the service to load its starter catalog into an empty table.
func (c *Client) Seed(ctx context.Context) (*models.MessageResponse, error) {
	var msg models.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/seed", nil, &msg, http.StatusOK); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	return &msg, nil
}

// Health reports the service's database status. An unhealthy service
// returns its diagnostic body alongside an error.
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var h models.HealthResponse
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &h, http.StatusOK)

	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Body) > 0 {
		if jerr := json.Unmarshal(apiErr.Body, &h); jerr == nil && h.Status != "" {
			return &h, fmt.Errorf("health: %w", err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return &h, nil
}

// do sends a JSON request and decodes a JSON reply when the status is one of want.
func (c *Client) do(ctx context.Context, method, path string, body, out any, want ...int) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode body: %v", shared.ErrInvalidInput, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return fmt.Errorf("%w: %w: %s %s: %v", shared.ErrSyncFailed, shared.ErrTimeout, method, path, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %v", shared.ErrSyncFailed, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrSyncFailed, err)
	}

	c.logger.Debug("catalog request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	ok := false
	for _, s := range want {
		if resp.StatusCode == s {
			ok = true
			break
		}
	}
	if !ok {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", shared.ErrSyncFailed, err)
	}
	return nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
