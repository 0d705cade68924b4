package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"golang.org/x/oauth2"

	"github.com/leonnwankwo/skybrief/internal/instrumentation"
)

// Handler implements OAuth 2.1 endpoints for the MCP server.
// It acts as both an OAuth 2.1 Authorization Server (proxying to Google)
// and an OAuth 2.1 Resource Server (validating tokens).
type Handler struct {
	config       *Config
	store        *Store                   // Session and refresh token store
	clientStore  *ClientStore             // Client registration store
	flowStore    *FlowStore               // Pending authorization code store
	rateLimiter  *RateLimiter             // Optional IP-based rate limiter
	allowList    *AllowList               // Login allow-list
	googleConfig *oauth2.Config           // Upstream Google OAuth config
	httpClient   *http.Client             // HTTP client for upstream requests
	audit        *SecurityAuditLogger     // Security audit event log
	metrics      *instrumentation.Metrics // Optional OAuth flow metrics
	logger       *slog.Logger
}

// NewHandler creates a new OAuth handler
func NewHandler(config *Config) (*Handler, error) {
	if config.Resource == "" {
		return nil, fmt.Errorf("resource is required")
	}

	// Validate Resource URL and enforce HTTPS in production.
	// HTTP is allowed only for loopback addresses (development).
	parsedURL, err := url.Parse(config.Resource)
	if err != nil {
		return nil, fmt.Errorf("invalid resource URL: %w", err)
	}
	if parsedURL.Scheme != "https" {
		if !slices.Contains(LoopbackAddresses, parsedURL.Hostname()) {
			return nil, fmt.Errorf("resource must use HTTPS in production (got %s://)", parsedURL.Scheme)
		}
	}

	if len(config.SigningSecret) < MinSigningSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", MinSigningSecretLength)
	}

	if config.GoogleAuth.ClientID == "" || config.GoogleAuth.ClientSecret == "" {
		return nil, fmt.Errorf("google OAuth credentials are required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Secure defaults
	if config.Security.RefreshTokenTTL == 0 {
		config.Security.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	if config.Security.MaxClientsPerIP == 0 {
		config.Security.MaxClientsPerIP = DefaultMaxClientsPerIP
	}

	if config.Security.DisableRefreshTokenRotation {
		logger.Warn("SECURITY WARNING: Refresh token rotation is DISABLED",
			"recommendation", "Set Security.DisableRefreshTokenRotation=false for production")
	}
	if config.Security.AllowPublicClientRegistration {
		logger.Warn("SECURITY WARNING: Public client registration is ENABLED (DoS risk)",
			"recommendation", "Set Security.AllowPublicClientRegistration=false and use RegistrationAccessToken")
	}

	var rateLimiter *RateLimiter
	if config.RateLimit.Rate > 0 {
		burst := config.RateLimit.Burst
		if burst == 0 {
			burst = config.RateLimit.Rate * 2
		}
		cleanupInterval := config.RateLimit.CleanupInterval
		if cleanupInterval == 0 {
			cleanupInterval = DefaultRateLimitCleanupInterval
		}
		rateLimiter = NewRateLimiter(config.RateLimit.Rate, burst, config.RateLimit.TrustProxy, cleanupInterval, logger)
		logger.Info("IP-based rate limiting enabled",
			"rate", config.RateLimit.Rate,
			"burst", burst)
	}

	scopes := config.GoogleAuth.Scopes
	if len(scopes) == 0 {
		scopes = DefaultGoogleScopes
	}
	redirectURL := config.GoogleAuth.RedirectURL
	if redirectURL == "" {
		redirectURL = config.Resource + "/callback"
	}

	googleConfig := &oauth2.Config{
		ClientID:     config.GoogleAuth.ClientID,
		ClientSecret: config.GoogleAuth.ClientSecret,
		Endpoint:     config.googleEndpoint(),
		Scopes:       scopes,
		RedirectURL:  redirectURL,
	}

	allowList := NewAllowList(config.AllowedLogins)
	if allowList.Len() == 0 {
		logger.Warn("Login allow-list is empty; every authenticated login is permitted")
	} else {
		logger.Info("Login allow-list active", "logins", allowList.Len())
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: DefaultUpstreamTimeout,
		}
	}

	return &Handler{
		config:       config,
		store:        NewStore(config.Security.RefreshTokenTTL, logger),
		clientStore:  NewClientStore(logger),
		flowStore:    NewFlowStore(logger),
		rateLimiter:  rateLimiter,
		allowList:    allowList,
		googleConfig: googleConfig,
		httpClient:   httpClient,
		audit:        NewSecurityAuditLogger(logger),
		logger:       logger,
	}, nil
}

// SetMetrics attaches OAuth flow metrics. The session store reports evictions
// so the active-session gauge also reflects token expiry, not just issuance
// and revocation.
func (h *Handler) SetMetrics(m *instrumentation.Metrics) {
	h.metrics = m
	if m != nil {
		h.store.OnSessionEvicted(func() {
			m.DecrementActiveSessions(context.Background())
		})
	}
}

// GetStore returns the underlying session store (for testing and token management)
func (h *Handler) GetStore() *Store {
	return h.store
}

// GetConfig returns the OAuth configuration
func (h *Handler) GetConfig() *Config {
	return h.config
}

// Stop releases background resources held by the handler's stores
func (h *Handler) Stop() {
	h.store.Stop()
	h.flowStore.Stop()
	if h.rateLimiter != nil {
		h.rateLimiter.Stop()
	}
}

// ServeAuthorizationServerMetadata serves the OAuth 2.0 Authorization Server
// Metadata (RFC 8414). MCP clients use it to discover the authorization,
// token, and registration endpoints.
func (h *Handler) ServeAuthorizationServerMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	metadata := AuthorizationServerMetadata{
		Issuer:                            h.config.Resource,
		AuthorizationEndpoint:             h.config.Resource + "/authorize",
		TokenEndpoint:                     h.config.Resource + "/oauth/token",
		RegistrationEndpoint:              h.config.Resource + "/oauth/register",
		ScopesSupported:                   h.googleConfig.Scopes,
		ResponseTypesSupported:            DefaultResponseTypes,
		GrantTypesSupported:               DefaultGrantTypes,
		TokenEndpointAuthMethodsSupported: SupportedTokenAuthMethods,
		CodeChallengeMethodsSupported:     SupportedCodeChallengeMethods,
	}

	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		h.logger.Error("Failed to encode metadata", "error", err)
	}
}

// ServeProtectedResourceMetadata serves the OAuth 2.0 Protected Resource
// Metadata (RFC 9728). It points MCP clients at this server as the
// authorization server; the upstream Google hop is invisible to them.
func (h *Handler) ServeProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	metadata := ProtectedResourceMetadata{
		Resource: h.config.Resource,
		AuthorizationServers: []string{
			h.config.Resource,
		},
		BearerMethodsSupported: []string{
			"header", // Authorization: Bearer <token>
		},
		ScopesSupported: h.googleConfig.Scopes,
	}

	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		h.logger.Error("Failed to encode metadata", "error", err)
	}
}

// setSecurityHeaders sets security headers on HTTP responses
func (h *Handler) setSecurityHeaders(w http.ResponseWriter) {
	// Prevent clickjacking attacks
	w.Header().Set("X-Frame-Options", "DENY")

	// Prevent MIME type sniffing
	w.Header().Set("X-Content-Type-Options", "nosniff")

	// Enable XSS protection in browsers
	w.Header().Set("X-XSS-Protection", "1; mode=block")

	// Content Security Policy - restrict resource loading
	w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

	// Referrer policy - don't leak referrer information
	w.Header().Set("Referrer-Policy", "no-referrer")

	// For HTTPS resources, enforce HTTPS for 1 year
	if h.config.Resource != "" {
		parsedURL, err := url.Parse(h.config.Resource)
		if err == nil && parsedURL.Scheme == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
	}
}

// setSecurityHeadersForHTML is setSecurityHeaders with a CSP that permits the
// inline styles used by the consent and access-denied pages.
func (h *Handler) setSecurityHeadersForHTML(w http.ResponseWriter) {
	h.setSecurityHeaders(w)
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none'")
}

// writeError is a helper to write OAuth error responses
func (h *Handler) writeError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	h.logger.Debug("OAuth error", "code", errorCode, "description", description, "status", statusCode)
	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	})
}

// writeOAuthError writes a structured OAuthError as an OAuth error response
func (h *Handler) writeOAuthError(w http.ResponseWriter, oerr *OAuthError) {
	h.writeError(w, oerr.Code, oerr.Description, oerr.Status)
}

// ServeRevoke handles operator-initiated session revocation.
// POST /oauth/revoke with {"login": "pilot"} drops every active session for
// that login, forcing re-authentication. Consent cookies are unaffected; they
// live in the user's browser and expire on their own.
func (h *Handler) ServeRevoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeOAuthError(w, ErrInvalidRequest("Invalid request body"))
		return
	}
	if req.Login == "" {
		h.writeOAuthError(w, ErrInvalidRequest("Login is required"))
		return
	}

	deleted := h.store.DeleteSessionsForLogin(req.Login)
	h.logger.Info("Revoked sessions", "login", req.Login, "count", deleted)
	h.audit.LogSessionsRevoked(req.Login, getClientIP(r, h.config.RateLimit.TrustProxy), deleted)

	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "success",
		"revoked": deleted,
	})
}
