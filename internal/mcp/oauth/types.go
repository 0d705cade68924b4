package oauth

// AuthorizationRequest is the downstream client's authorize request, carried
// across the redirect round trip to Google as a base64-encoded JSON state
// parameter. It must be fully self-describing: there is no server-side session
// between the consent page, the form submission and the upstream callback.
type AuthorizationRequest struct {
	// ClientID identifies the downstream MCP client
	ClientID string `json:"client_id"`

	// RedirectURI is the client's registered redirect target
	RedirectURI string `json:"redirect_uri"`

	// Scope is the scope string requested by the client
	Scope string `json:"scope,omitempty"`

	// State is the client's own opaque correlation state, echoed back verbatim
	State string `json:"state,omitempty"`

	// CodeChallenge and CodeChallengeMethod carry the client's PKCE parameters
	CodeChallenge       string `json:"code_challenge,omitempty"`
	CodeChallengeMethod string `json:"code_challenge_method,omitempty"`
}

// SessionProps is the identity payload bound to a minted access token. It is
// created exactly once, when an authorization flow completes, and consumed
// read-only by tool execution for the lifetime of the token.
type SessionProps struct {
	// Login is the local part of the verified email address. It is the unit
	// the access policy authorizes against, not the full email.
	Login string `json:"login"`

	// Name is the user's display name as reported by the identity provider
	Name string `json:"name"`

	// Email is the full verified email address
	Email string `json:"email"`

	// GoogleAccessToken is the upstream access token, kept for potential
	// reuse. It is not further scoped or restricted.
	GoogleAccessToken string `json:"google_access_token"`
}

// GoogleUserInfo represents the user information from Google's userinfo endpoint
type GoogleUserInfo struct {
	// Sub is the unique Google user ID
	Sub string `json:"sub"`

	// Email is the user's email address
	Email string `json:"email"`

	// EmailVerified indicates if the email is verified
	EmailVerified bool `json:"email_verified"`

	// Name is the user's full name
	Name string `json:"name"`

	// Picture is the URL of the user's profile picture
	Picture string `json:"picture"`
}

// AuthorizationCode is a single-use downstream code minted after a completed
// Google flow, bound to the session props it will release at the token endpoint.
type AuthorizationCode struct {
	Code                string
	ClientID            string
	RedirectURI         string
	Scope               string
	CodeChallenge       string
	CodeChallengeMethod string
	Props               *SessionProps
	CreatedAt           int64
}

// TokenResponse is the OAuth token endpoint response
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// ErrorResponse represents an OAuth error response
type ErrorResponse struct {
	// Error is the error code
	Error string `json:"error"`

	// ErrorDescription provides additional information
	ErrorDescription string `json:"error_description,omitempty"`
}

// AuthorizationServerMetadata is the RFC 8414 metadata document
type AuthorizationServerMetadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	RegistrationEndpoint              string   `json:"registration_endpoint,omitempty"`
	ScopesSupported                   []string `json:"scopes_supported,omitempty"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported,omitempty"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported,omitempty"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported,omitempty"`
}

// ProtectedResourceMetadata is the RFC 9728 metadata document
type ProtectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
}

// ClientRegistrationRequest is the RFC 7591 dynamic registration request
type ClientRegistrationRequest struct {
	RedirectURIs            []string `json:"redirect_uris"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method,omitempty"`
	GrantTypes              []string `json:"grant_types,omitempty"`
	ResponseTypes           []string `json:"response_types,omitempty"`
	ClientName              string   `json:"client_name,omitempty"`
	Scope                   string   `json:"scope,omitempty"`
}

// ClientRegistrationResponse is the RFC 7591 dynamic registration response
type ClientRegistrationResponse struct {
	ClientID                string   `json:"client_id"`
	ClientSecret            string   `json:"client_secret,omitempty"`
	ClientIDIssuedAt        int64    `json:"client_id_issued_at"`
	ClientSecretExpiresAt   int64    `json:"client_secret_expires_at"`
	RedirectURIs            []string `json:"redirect_uris"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	ClientName              string   `json:"client_name,omitempty"`
	Scope                   string   `json:"scope,omitempty"`
}

// RegisteredClient is a stored downstream client registration
type RegisteredClient struct {
	ClientID                string
	ClientSecretHash        string
	ClientIDIssuedAt        int64
	RedirectURIs            []string
	TokenEndpointAuthMethod string
	GrantTypes              []string
	ResponseTypes           []string
	ClientName              string
	Scope                   string
}
