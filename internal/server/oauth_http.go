package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/leonnwankwo/skybrief/internal/instrumentation"
	"github.com/leonnwankwo/skybrief/internal/mcp/oauth"
)

// OAuthHTTPServer wraps an MCP server with OAuth 2.1 authentication.
// The server acts as the authorization server toward MCP clients (RFC 8414
// metadata, dynamic registration, token endpoint) and delegates end-user
// authentication to Google upstream.
type OAuthHTTPServer struct {
	mcpServer     *mcpserver.MCPServer
	oauthHandler  *oauth.Handler
	healthChecker *HealthChecker
	httpServer    *http.Server
	serverType    string // "sse" or "streamable-http"
	metrics       *instrumentation.Metrics
}

// NewOAuthHTTPServer creates a new OAuth-enabled HTTP server for MCP
func NewOAuthHTTPServer(mcpServer *mcpserver.MCPServer, serverType string, oauthConfig *oauth.Config) (*OAuthHTTPServer, error) {
	oauthHandler, err := oauth.NewHandler(oauthConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth handler: %w", err)
	}

	return &OAuthHTTPServer{
		mcpServer:    mcpServer,
		oauthHandler: oauthHandler,
		serverType:   serverType,
	}, nil
}

// SetHealthChecker attaches a health checker whose endpoints are registered
// when the server starts. Health endpoints are unauthenticated.
func (s *OAuthHTTPServer) SetHealthChecker(hc *HealthChecker) {
	s.healthChecker = hc
}

// SetMetrics enables HTTP request metrics on all endpoints and forwards the
// recorder to the OAuth handler so the authorization flow records consent and
// auth counters. Must be called before Start or Handler.
func (s *OAuthHTTPServer) SetMetrics(m *instrumentation.Metrics) {
	s.metrics = m
	s.oauthHandler.SetMetrics(m)
}

// Handler builds the full HTTP handler with all OAuth and MCP endpoints.
// Exposed separately from Start so tests can drive it with httptest.
func (s *OAuthHTTPServer) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	limit := s.oauthHandler.RateLimitMiddleware

	// Discovery documents (RFC 8414 and RFC 9728)
	mux.Handle("/.well-known/oauth-authorization-server",
		limit(http.HandlerFunc(s.oauthHandler.ServeAuthorizationServerMetadata)))
	mux.Handle("/.well-known/oauth-protected-resource",
		limit(http.HandlerFunc(s.oauthHandler.ServeProtectedResourceMetadata)))

	// Authorization flow: consent page, Google redirect, callback
	mux.Handle("/authorize", limit(http.HandlerFunc(s.oauthHandler.ServeAuthorization)))
	mux.Handle("/callback", limit(http.HandlerFunc(s.oauthHandler.ServeCallback)))

	// Token issuance, dynamic client registration, revocation
	mux.Handle("/oauth/token", limit(http.HandlerFunc(s.oauthHandler.ServeToken)))
	mux.Handle("/oauth/register", limit(http.HandlerFunc(s.oauthHandler.ServeDynamicClientRegistration)))
	mux.Handle("/oauth/revoke", limit(http.HandlerFunc(s.oauthHandler.ServeRevoke)))

	// MCP endpoints require a valid bearer token minted by this server
	switch s.serverType {
	case "sse":
		sseServer := mcpserver.NewSSEServer(s.mcpServer,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
		)
		mux.Handle("/sse", limit(s.oauthHandler.RequireSession(sseServer)))
		mux.Handle("/message", limit(s.oauthHandler.RequireSession(sseServer)))

	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcpServer,
			mcpserver.WithEndpointPath("/mcp"),
		)
		mux.Handle("/mcp", limit(s.oauthHandler.RequireSession(httpServer)))

	default:
		return nil, fmt.Errorf("unsupported server type: %s", s.serverType)
	}

	if s.healthChecker != nil {
		s.healthChecker.RegisterHealthEndpoints(mux)
	}

	if s.metrics != nil {
		return httpMetricsMiddleware(s.metrics, mux), nil
	}
	return mux, nil
}

// httpMetricsMiddleware records method, path, status and duration for every
// request. All registered paths are fixed strings, so the path label stays
// low-cardinality.
func httpMetricsMiddleware(m *instrumentation.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}

// statusWriter captures the response status code for metrics.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Flush forwards to the underlying writer so SSE streaming keeps working
// behind the metrics wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Start starts the OAuth-enabled HTTP server
func (s *OAuthHTTPServer) Start(addr string) error {
	// OAuth 2.1 requires HTTPS except for loopback development setups
	config := s.oauthHandler.GetConfig()
	if err := validateHTTPSRequirement(config.Resource); err != nil {
		return err
	}

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// StartTLS starts the OAuth-enabled HTTP server with TLS using the given
// certificate and key files.
func (s *OAuthHTTPServer) StartTLS(addr, certFile, keyFile string) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.httpServer.ListenAndServeTLS(certFile, keyFile)
}

// Shutdown gracefully shuts down the server
func (s *OAuthHTTPServer) Shutdown(ctx context.Context) error {
	s.oauthHandler.Stop()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// GetOAuthHandler returns the OAuth handler for testing or direct access
func (s *OAuthHTTPServer) GetOAuthHandler() *oauth.Handler {
	return s.oauthHandler
}

// validateHTTPSRequirement ensures OAuth 2.1 HTTPS compliance.
// Allows HTTP only for loopback addresses (localhost, 127.0.0.1, ::1).
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	if u.Scheme == "http" {
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth 2.1 requires HTTPS for production (got: %s). Use HTTPS or localhost for development", baseURL)
		}
	} else if u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}

	return nil
}
