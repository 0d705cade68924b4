package oauth

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	oauth2google "golang.org/x/oauth2/google"
)

// Config holds the OAuth handler configuration
type Config struct {
	// Resource is the public base URL of this server. It doubles as the RFC
	// 8707 resource identifier and the issuer in metadata documents.
	Resource string

	// SigningSecret is the server-held secret used to sign consent cookies.
	// Minimum effective length of 32 bytes recommended.
	SigningSecret string

	// AllowedLogins is the static allow-list of logins (email local parts).
	// Empty means every authenticated login is permitted.
	AllowedLogins []string

	// GoogleAuth holds upstream OAuth credentials and endpoint overrides
	GoogleAuth GoogleAuthConfig

	// RateLimit configures per-IP token bucket limiting on OAuth endpoints
	RateLimit RateLimitConfig

	// Security holds OAuth security settings
	Security SecurityConfig

	// Logger for structured logging (optional, uses default if not provided)
	Logger *slog.Logger

	// HTTPClient is a custom HTTP client for upstream OAuth requests.
	// If not provided, a client with DefaultUpstreamTimeout is used.
	HTTPClient *http.Client
}

// GoogleAuthConfig holds upstream Google OAuth configuration
type GoogleAuthConfig struct {
	// ClientID is the Google OAuth Client ID
	ClientID string

	// ClientSecret is the Google OAuth Client Secret
	ClientSecret string

	// RedirectURL is the callback URL Google redirects to after
	// authentication. Default: {Resource}/callback
	RedirectURL string

	// Scopes requested from Google. Default: openid, email, profile.
	Scopes []string

	// Endpoint overrides the Google OAuth endpoints. Tests point this at a
	// local fake; production leaves it zero and gets Google's endpoints.
	Endpoint oauth2.Endpoint

	// UserInfoURL overrides the userinfo endpoint, same deal as Endpoint.
	UserInfoURL string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Rate is the number of requests per second allowed per IP (0 = no limit)
	Rate int

	// Burst is the maximum burst size allowed per IP
	Burst int

	// CleanupInterval is how often to cleanup inactive rate limiters
	CleanupInterval time.Duration

	// TrustProxy indicates whether to trust X-Forwarded-For and X-Real-IP
	// headers. Only set behind a trusted proxy.
	TrustProxy bool
}

// SecurityConfig holds OAuth security settings (secure by default)
type SecurityConfig struct {
	// AllowPublicClientRegistration allows unauthenticated dynamic client
	// registration. When false, registration requires RegistrationAccessToken.
	AllowPublicClientRegistration bool

	// RegistrationAccessToken is the token required for client registration
	// when AllowPublicClientRegistration is false.
	RegistrationAccessToken string

	// MaxClientsPerIP limits client registrations per IP (0 = no limit)
	MaxClientsPerIP int

	// RefreshTokenTTL is the time-to-live for refresh tokens
	RefreshTokenTTL time.Duration

	// DisableRefreshTokenRotation disables refresh token rotation.
	// Default false: rotation enabled.
	DisableRefreshTokenRotation bool
}

// googleEndpoint returns the configured upstream endpoint, defaulting to Google
func (c *Config) googleEndpoint() oauth2.Endpoint {
	if c.GoogleAuth.Endpoint.AuthURL != "" || c.GoogleAuth.Endpoint.TokenURL != "" {
		return c.GoogleAuth.Endpoint
	}
	return oauth2google.Endpoint
}

// userInfoURL returns the configured userinfo endpoint, defaulting to Google
func (c *Config) userInfoURL() string {
	if c.GoogleAuth.UserInfoURL != "" {
		return c.GoogleAuth.UserInfoURL
	}
	return "https://www.googleapis.com/oauth2/v2/userinfo"
}
