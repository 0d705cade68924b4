package vatsim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leonnwankwo/skybrief/internal/logging"
)

// Production endpoints
const (
	DefaultDataURL  = "https://data.vatsim.net/v3/vatsim-data.json"
	DefaultMetarURL = "https://metar.vatsim.net"
)

// DefaultTimeout bounds every VATSIM request. No retries are performed.
const DefaultTimeout = 10 * time.Second

// Client fetches the VATSIM data feed and METARs
type Client struct {
	dataURL    string
	metarURL   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithDataURL overrides the data feed endpoint (tests)
func WithDataURL(dataURL string) Option {
	return func(c *Client) {
		c.dataURL = dataURL
	}
}

// WithMetarURL overrides the METAR service base URL (tests)
func WithMetarURL(metarURL string) Option {
	return func(c *Client) {
		c.metarURL = metarURL
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

// NewClient creates a VATSIM client with a bounded-timeout HTTP client
func NewClient(opts ...Option) *Client {
	c := &Client{
		dataURL:    DefaultDataURL,
		metarURL:   DefaultMetarURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchData retrieves the current network snapshot
func (c *Client) FetchData(ctx context.Context) (*DataFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.dataURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create vatsim request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vatsim data feed request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("VATSIM data feed fetch complete",
		logging.Service("vatsim"),
		slog.Int("status", resp.StatusCode),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vatsim data feed returned status %d", resp.StatusCode)
	}

	var feed DataFeed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode vatsim data feed: %w", err)
	}

	return &feed, nil
}

// FetchMETAR retrieves the raw METAR for an ICAO identifier. The service
// returns plain text; an empty body means no METAR is published for the field.
func (c *Client) FetchMETAR(ctx context.Context, icao string) (string, error) {
	icao = strings.ToUpper(strings.TrimSpace(icao))
	if icao == "" {
		return "", fmt.Errorf("icao identifier cannot be empty")
	}

	endpoint := fmt.Sprintf("%s/%s", c.metarURL, url.PathEscape(icao))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create metar request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vatsim metar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vatsim metar service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read metar response: %w", err)
	}

	metar := strings.TrimSpace(string(body))
	if metar == "" {
		return "", fmt.Errorf("no METAR published for %s", icao)
	}

	return metar, nil
}
