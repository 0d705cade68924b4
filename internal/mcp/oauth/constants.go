package oauth

import "time"

// OAuth token and code timeouts
const (
	// DefaultAuthorizationCodeTTL is how long authorization codes are valid (10 minutes)
	DefaultAuthorizationCodeTTL = 10 * time.Minute

	// DefaultAccessTokenTTL is the default access token expiry (1 hour)
	DefaultAccessTokenTTL = 1 * time.Hour

	// DefaultRefreshTokenTTL is the default time-to-live for refresh tokens (90 days)
	DefaultRefreshTokenTTL = 90 * 24 * time.Hour

	// DefaultUpstreamTimeout bounds every HTTP call to the upstream identity
	// provider (code exchange and userinfo fetch). No retries are performed;
	// a single failure is terminal for that authorization attempt.
	DefaultUpstreamTimeout = 10 * time.Second

	// DefaultRateLimitCleanupInterval is how often to cleanup inactive rate limiters
	DefaultRateLimitCleanupInterval = 5 * time.Minute

	// InactiveLimiterCleanupWindow is the time after which inactive limiters are removed
	InactiveLimiterCleanupWindow = 10 * time.Minute
)

// Consent cookie constants
const (
	// ApprovalCookieMaxAge is the lifetime of the consent cookies (one year).
	// There is no revocation path; approval expires with the cookies or when
	// the user clears them.
	ApprovalCookieMaxAge = 365 * 24 * time.Hour

	// approvalCookiePrefix is the shared prefix of both consent cookies
	approvalCookiePrefix = "client_"

	// approvalCookieSuffix names the flag cookie: client_{clientID}_approved
	approvalCookieSuffix = "_approved"

	// signatureCookieSuffix names the signature cookie: client_{clientID}_signature
	signatureCookieSuffix = "_signature"

	// approvedValue is the literal the flag cookie must carry and the message
	// the signature cookie signs. The client identifier is bound into the
	// cookie name, so a fixed literal is sufficient.
	approvedValue = "true"
)

// Token generation constants
const (
	// ClientIDTokenLength is the length of generated client IDs
	ClientIDTokenLength = 32

	// ClientSecretTokenLength is the length of generated client secrets
	ClientSecretTokenLength = 48

	// AccessTokenLength is the length of generated access tokens
	AccessTokenLength = 48

	// RefreshTokenLength is the length of generated refresh tokens
	RefreshTokenLength = 48

	// AuthorizationCodeLength is the length of generated authorization codes
	AuthorizationCodeLength = 32

	// MinSigningSecretLength is the minimum accepted signing secret length in
	// bytes (256 bits of effective key material recommended)
	MinSigningSecretLength = 32
)

// OAuth client and security defaults
const (
	// DefaultMaxClientsPerIP is the default limit for client registrations per IP
	DefaultMaxClientsPerIP = 10

	// DefaultTokenEndpointAuthMethod is the default client authentication method
	DefaultTokenEndpointAuthMethod = "client_secret_basic"
)

// OAuth grant types and response types
var (
	// DefaultGoogleScopes are the scopes requested from the upstream provider.
	// Identity only; no Google API access beyond userinfo is requested.
	DefaultGoogleScopes = []string{"openid", "email", "profile"}

	// DefaultGrantTypes are the grant types supported by default
	DefaultGrantTypes = []string{"authorization_code", "refresh_token"}

	// DefaultResponseTypes are the response types supported by default
	DefaultResponseTypes = []string{"code"}

	// SupportedCodeChallengeMethods are the PKCE methods we support.
	// Only S256 is allowed; "plain" violates OAuth 2.1.
	SupportedCodeChallengeMethods = []string{"S256"}

	// SupportedTokenAuthMethods are the supported token endpoint auth methods
	SupportedTokenAuthMethods = []string{"client_secret_basic", "client_secret_post", "none"}

	// LoopbackAddresses lists recognized loopback addresses for development
	LoopbackAddresses = []string{"localhost", "127.0.0.1", "::1", "[::1]"}
)
