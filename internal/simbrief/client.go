package simbrief

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/leonnwankwo/skybrief/internal/logging"
)

// DefaultBaseURL is the production SimBrief API host
const DefaultBaseURL = "https://www.simbrief.com"

// DefaultTimeout bounds every SimBrief request. No retries are performed.
const DefaultTimeout = 10 * time.Second

// Client fetches operational flight plans from SimBrief
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the SimBrief API host. Tests point this at a local
// fake server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a SimBrief client with a bounded-timeout HTTP client
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchOFP retrieves the latest generated flight plan for a SimBrief username.
// SimBrief only ever serves the most recent plan; there is no history.
func (c *Client) FetchOFP(ctx context.Context, username string) (*OFP, error) {
	if username == "" {
		return nil, fmt.Errorf("simbrief username cannot be empty")
	}

	endpoint := fmt.Sprintf("%s/api/xml.fetcher.php?username=%s&json=1",
		c.baseURL, url.QueryEscape(username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create simbrief request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("simbrief request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("SimBrief fetch complete",
		logging.Service("simbrief"),
		slog.Int("status", resp.StatusCode),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("simbrief returned status %d", resp.StatusCode)
	}

	var ofp OFP
	if err := json.NewDecoder(resp.Body).Decode(&ofp); err != nil {
		return nil, fmt.Errorf("failed to decode simbrief response: %w", err)
	}

	// SimBrief reports lookup failures in-band with a 200
	if ofp.Fetch.Status != "Success" {
		return nil, fmt.Errorf("simbrief fetch failed: %s", ofp.Fetch.Status)
	}

	return &ofp, nil
}
