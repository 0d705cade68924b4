package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/leonnwankwo/skybrief/internal/instrumentation"
)

// recordUpstream records one Google API request on the upstream metrics.
func (h *Handler) recordUpstream(ctx context.Context, operation string, err error, duration time.Duration) {
	if h.metrics == nil {
		return
	}
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	h.metrics.RecordUpstreamRequest(ctx, instrumentation.ServiceGoogle, operation, status, duration)
}

// ServeDynamicClientRegistration handles Dynamic Client Registration (RFC 7591)
func (h *Handler) ServeDynamicClientRegistration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// OAuth 2.1: Require authentication for client registration unless
	// explicitly configured otherwise
	if !h.config.Security.AllowPublicClientRegistration {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			h.logger.Warn("Client registration rejected: missing authorization",
				"client_ip", r.RemoteAddr)
			w.Header().Set("WWW-Authenticate", "Bearer")
			h.writeError(w, "invalid_token",
				"Registration access token required. "+
					"Set AllowPublicClientRegistration=true to disable authentication (NOT recommended).",
				http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			h.writeError(w, "invalid_token", "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		if h.config.Security.RegistrationAccessToken == "" {
			h.logger.Error("RegistrationAccessToken not configured but AllowPublicClientRegistration=false")
			h.writeError(w, "server_error",
				"Server configuration error: registration token not configured",
				http.StatusInternalServerError)
			return
		}

		if parts[1] != h.config.Security.RegistrationAccessToken {
			h.logger.Warn("Client registration rejected: invalid registration token",
				"client_ip", r.RemoteAddr)
			h.writeError(w, "invalid_token", "Invalid registration access token", http.StatusUnauthorized)
			return
		}
	} else {
		h.logger.Warn("Unauthenticated client registration (DoS risk)",
			"client_ip", r.RemoteAddr)
	}

	var req ClientRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid_request", "Failed to parse registration request", http.StatusBadRequest)
		return
	}

	if len(req.RedirectURIs) == 0 {
		h.writeError(w, "invalid_redirect_uri", "At least one redirect_uri is required", http.StatusBadRequest)
		return
	}

	for _, uri := range req.RedirectURIs {
		if err := validateRedirectURI(uri, h.config.Resource); err != nil {
			h.writeError(w, "invalid_redirect_uri", err.Error(), http.StatusBadRequest)
			return
		}
	}

	// Per-IP registration limit for DoS protection
	clientIP := getClientIP(r, h.config.RateLimit.TrustProxy)
	if err := h.clientStore.CheckIPLimit(clientIP, h.config.Security.MaxClientsPerIP); err != nil {
		h.logger.Warn("Client registration limit exceeded",
			"client_ip", clientIP,
			"limit", h.config.Security.MaxClientsPerIP)
		h.writeError(w, "invalid_request",
			fmt.Sprintf("Client registration limit exceeded for your IP address (%d max)", h.config.Security.MaxClientsPerIP),
			http.StatusTooManyRequests)
		return
	}

	resp, err := h.clientStore.RegisterClient(&req, clientIP)
	if err != nil {
		h.logger.Error("Failed to register client", "error", err)
		h.writeError(w, "server_error", "Failed to register client", http.StatusInternalServerError)
		return
	}
	h.audit.LogClientRegistered(resp.ClientID, resp.TokenEndpointAuthMethod, clientIP)

	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// ServeAuthorization handles the OAuth authorization endpoint.
//
// GET renders the consent prompt for a first-time client, or skips straight
// to Google when a valid signed approval cookie pair for this client is
// present. POST is the consent form submission: it sets the approval cookies
// and redirects to Google on the same response.
//
// The full authorization request travels through both legs as an opaque
// base64 state parameter; no flow state is kept server-side.
func (h *Handler) ServeAuthorization(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleAuthorizeGet(w, r)
	case http.MethodPost:
		h.handleConsentSubmission(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleAuthorizeGet(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	authReq := &AuthorizationRequest{
		ClientID:            query.Get("client_id"),
		RedirectURI:         query.Get("redirect_uri"),
		Scope:               query.Get("scope"),
		State:               query.Get("state"),
		CodeChallenge:       query.Get("code_challenge"),
		CodeChallengeMethod: query.Get("code_challenge_method"),
	}

	if authReq.ClientID == "" {
		h.writeOAuthError(w, ErrInvalidRequest("client_id is required"))
		return
	}
	if authReq.RedirectURI == "" {
		h.writeOAuthError(w, ErrInvalidRequest("redirect_uri is required"))
		return
	}

	client, err := h.clientStore.GetClient(authReq.ClientID)
	if err != nil {
		h.logger.Warn("Invalid client_id", "client_id", authReq.ClientID, "error", err)
		h.writeOAuthError(w, ErrInvalidClient("Invalid client_id"))
		return
	}

	if err := h.clientStore.ValidateRedirectURI(authReq.ClientID, authReq.RedirectURI); err != nil {
		h.logger.Warn("Invalid redirect_uri",
			"client_id", authReq.ClientID,
			"redirect_uri", authReq.RedirectURI,
		)
		h.writeOAuthError(w, ErrInvalidRequest("redirect_uri not registered for this client"))
		return
	}

	// OAuth 2.1 requires PKCE for public clients, and only S256 is accepted
	if authReq.CodeChallenge == "" && client.TokenEndpointAuthMethod == "none" {
		h.writeOAuthError(w, ErrInvalidRequest("PKCE is required for public clients"))
		return
	}
	if authReq.CodeChallenge != "" && authReq.CodeChallengeMethod != "" && authReq.CodeChallengeMethod != "S256" {
		h.writeOAuthError(w, ErrInvalidRequest("Invalid code_challenge_method: only S256 is supported"))
		return
	}

	// A valid signed approval cookie pair means this browser already granted
	// consent for this client; skip the prompt.
	cookies := parseCookies(r.Header.Get("Cookie"))
	if clientApproved(cookies, authReq.ClientID, h.config.SigningSecret) {
		h.logger.Info("Consent memoized, skipping prompt",
			"client_id", authReq.ClientID)
		h.audit.LogConsentMemoized(authReq.ClientID, getClientIP(r, h.config.RateLimit.TrustProxy))
		if h.metrics != nil {
			h.metrics.RecordConsentDecision(r.Context(), instrumentation.ConsentMemoized)
		}
		h.redirectToGoogle(w, r, authReq)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordConsentDecision(r.Context(), instrumentation.ConsentPrompted)
	}
	h.renderConsentPage(w, authReq, client.ClientName)
}

// handleConsentSubmission processes the consent form POST. The hidden state
// field is the only input; it must decode back into the original
// authorization request.
func (h *Handler) handleConsentSubmission(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeOAuthError(w, ErrInvalidRequest("Failed to parse form"))
		return
	}

	authReq, oerr := decodeAuthRequest(r.FormValue("state"))
	if oerr != nil {
		h.writeOAuthError(w, oerr)
		return
	}

	// Re-validate against the registration; the state round-trips through the
	// user's browser and is not trusted on its own.
	if _, err := h.clientStore.GetClient(authReq.ClientID); err != nil {
		h.writeOAuthError(w, ErrInvalidClient("Invalid client_id"))
		return
	}
	if err := h.clientStore.ValidateRedirectURI(authReq.ClientID, authReq.RedirectURI); err != nil {
		h.writeOAuthError(w, ErrInvalidRequest("redirect_uri not registered for this client"))
		return
	}

	// Memoize the approval, then continue to Google on the same response
	approveClient(w, authReq.ClientID, h.config.SigningSecret)

	h.logger.Info("Consent granted",
		"client_id", authReq.ClientID)
	h.audit.LogConsentGranted(authReq.ClientID, getClientIP(r, h.config.RateLimit.TrustProxy))
	if h.metrics != nil {
		h.metrics.RecordConsentDecision(r.Context(), instrumentation.ConsentApproved)
	}

	h.redirectToGoogle(w, r, authReq)
}

// redirectToGoogle sends the browser to the upstream provider, carrying the
// serialized authorization request as the state parameter.
func (h *Handler) redirectToGoogle(w http.ResponseWriter, r *http.Request, authReq *AuthorizationRequest) {
	state, err := encodeAuthRequest(authReq)
	if err != nil {
		h.logger.Error("Failed to encode authorization request", "error", err)
		h.writeOAuthError(w, ErrServerError("Failed to encode authorization request"))
		return
	}

	http.Redirect(w, r, h.googleConfig.AuthCodeURL(state), http.StatusFound)
}

// ServeCallback handles the redirect back from Google. It completes the
// upstream exchange, applies the login allow-list, and hands a freshly minted
// single-use authorization code back to the downstream client.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	authReq, oerr := decodeAuthRequest(query.Get("state"))
	if oerr != nil {
		h.writeOAuthError(w, oerr)
		return
	}

	code := query.Get("code")
	if code == "" {
		if errParam := query.Get("error"); errParam != "" {
			h.logger.Warn("Upstream provider returned an error",
				"error", errParam,
				"description", query.Get("error_description"),
				"client_id", authReq.ClientID)
		}
		h.writeOAuthError(w, ErrMissingAuthorizationCode("No authorization code in callback"))
		return
	}

	clientIP := getClientIP(r, h.config.RateLimit.TrustProxy)

	// Route the exchange through our bounded HTTP client
	ctx := context.WithValue(r.Context(), oauth2.HTTPClient, h.httpClient)
	start := time.Now()
	googleToken, err := h.googleConfig.Exchange(ctx, code)
	h.recordUpstream(ctx, instrumentation.OperationExchange, err, time.Since(start))
	if err != nil {
		// Upstream detail stays in the log; the response is generic
		h.logger.Error("Failed to exchange code with upstream provider", "error", err)
		if h.metrics != nil {
			h.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		}
		h.writeOAuthError(w, ErrTokenExchangeFailed())
		return
	}

	start = time.Now()
	userInfo, err := h.fetchGoogleUserInfo(ctx, googleToken.AccessToken)
	h.recordUpstream(ctx, instrumentation.OperationUserInfo, err, time.Since(start))
	if err != nil {
		h.logger.Error("Failed to fetch user info from upstream provider", "error", err)
		if h.metrics != nil {
			h.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		}
		h.writeOAuthError(w, ErrIdentityFetchFailed())
		return
	}

	login := LoginFromEmail(userInfo.Email)
	if !h.allowList.Allowed(login) {
		h.logger.Warn("Login rejected by allow-list",
			"login", login,
			"client_id", authReq.ClientID)
		h.audit.LogAuthFailure(userInfo.Email, login, authReq.ClientID, clientIP, "login not on allow-list")
		if h.metrics != nil {
			h.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultDenied)
		}
		h.renderAccessDenied(w, login)
		return
	}

	authCode, err := generateSecureToken(AuthorizationCodeLength)
	if err != nil {
		h.logger.Error("Failed to generate authorization code", "error", err)
		h.writeOAuthError(w, ErrServerError("Failed to generate authorization code"))
		return
	}

	if err := h.flowStore.SaveAuthorizationCode(&AuthorizationCode{
		Code:                authCode,
		ClientID:            authReq.ClientID,
		RedirectURI:         authReq.RedirectURI,
		Scope:               authReq.Scope,
		CodeChallenge:       authReq.CodeChallenge,
		CodeChallengeMethod: authReq.CodeChallengeMethod,
		Props: &SessionProps{
			Login:             login,
			Name:              userInfo.Name,
			Email:             userInfo.Email,
			GoogleAccessToken: googleToken.AccessToken,
		},
		CreatedAt: time.Now().Unix(),
	}); err != nil {
		h.logger.Error("Failed to save authorization code", "error", err)
		h.writeOAuthError(w, ErrServerError("Failed to save authorization code"))
		return
	}

	redirectURL, err := url.Parse(authReq.RedirectURI)
	if err != nil {
		h.logger.Error("Invalid redirect URI", "redirect_uri", authReq.RedirectURI, "error", err)
		h.writeOAuthError(w, ErrServerError("Invalid redirect URI"))
		return
	}

	redirectQuery := redirectURL.Query()
	redirectQuery.Set("code", authCode)
	if authReq.State != "" {
		redirectQuery.Set("state", authReq.State)
	}
	redirectURL.RawQuery = redirectQuery.Encode()

	h.logger.Info("Authorization complete, redirecting to client",
		"login", login,
		"client_id", authReq.ClientID)
	h.audit.LogAuthSuccess(userInfo.Email, login, authReq.ClientID, clientIP)
	if h.metrics != nil {
		h.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
	}

	http.Redirect(w, r, redirectURL.String(), http.StatusFound)
}

// ServeToken handles the OAuth token endpoint
func (h *Handler) ServeToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeOAuthError(w, ErrInvalidRequest("Failed to parse request"))
		return
	}

	switch grantType := r.FormValue("grant_type"); grantType {
	case "authorization_code":
		h.handleAuthorizationCodeGrant(w, r)
	case "refresh_token":
		h.handleRefreshTokenGrant(w, r)
	default:
		h.writeOAuthError(w, ErrUnsupportedGrantType(fmt.Sprintf("Grant type %s not supported", grantType)))
	}
}

// handleAuthorizationCodeGrant handles the authorization_code grant type
func (h *Handler) handleAuthorizationCodeGrant(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	if code == "" {
		h.writeOAuthError(w, ErrInvalidRequest("code is required"))
		return
	}

	// Codes are single use: the lookup removes the entry, so a replayed code
	// fails here even within its TTL
	authCode, err := h.flowStore.ConsumeAuthorizationCode(code)
	if err != nil {
		h.logger.Warn("Invalid or expired authorization code")
		h.writeOAuthError(w, ErrInvalidGrant("Invalid or expired authorization code"))
		return
	}

	if redirectURI := r.FormValue("redirect_uri"); redirectURI != "" && redirectURI != authCode.RedirectURI {
		h.writeOAuthError(w, ErrInvalidGrant("redirect_uri does not match authorization request"))
		return
	}

	if oerr := h.verifyPKCE(authCode, r.FormValue("code_verifier")); oerr != nil {
		h.audit.LogInvalidPKCE(authCode.ClientID, getClientIP(r, h.config.RateLimit.TrustProxy), oerr.Description)
		h.writeOAuthError(w, oerr)
		return
	}

	if oerr := h.authenticateClient(r, authCode.ClientID); oerr != nil {
		h.writeOAuthError(w, oerr)
		return
	}

	accessToken, err := generateSecureToken(AccessTokenLength)
	if err != nil {
		h.logger.Error("Failed to generate access token", "error", err)
		h.writeOAuthError(w, ErrServerError("Failed to generate access token"))
		return
	}

	if err := h.store.SaveSession(accessToken, authCode.Props); err != nil {
		h.logger.Error("Failed to store session", "error", err)
		h.writeOAuthError(w, ErrServerError("Failed to store session"))
		return
	}

	tokenResp := TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(DefaultAccessTokenTTL.Seconds()),
		Scope:       authCode.Scope,
	}

	if refreshToken, err := generateSecureToken(RefreshTokenLength); err == nil {
		if err := h.store.SaveRefreshToken(refreshToken, authCode.Props); err == nil {
			tokenResp.RefreshToken = refreshToken
		}
	}

	h.logger.Info("Issued access token",
		"client_id", authCode.ClientID,
		"login", authCode.Props.Login,
		"scope", authCode.Scope)
	h.audit.LogTokenIssued(authCode.Props.Email, authCode.Props.Login, authCode.ClientID,
		getClientIP(r, h.config.RateLimit.TrustProxy), authCode.Scope)
	if h.metrics != nil {
		h.metrics.IncrementActiveSessions(r.Context())
	}

	h.writeTokenResponse(w, tokenResp)
}

// handleRefreshTokenGrant handles the refresh_token grant type
func (h *Handler) handleRefreshTokenGrant(w http.ResponseWriter, r *http.Request) {
	refreshToken := r.FormValue("refresh_token")
	if refreshToken == "" {
		h.writeOAuthError(w, ErrInvalidRequest("refresh_token is required"))
		return
	}

	props, err := h.store.GetRefreshToken(refreshToken)
	if err != nil {
		h.logger.Warn("Invalid refresh token")
		if h.metrics != nil {
			h.metrics.RecordOAuthTokenRefresh(r.Context(), instrumentation.OAuthResultFailure)
		}
		h.writeOAuthError(w, ErrInvalidGrant("Invalid or expired refresh token"))
		return
	}

	if clientID := r.FormValue("client_id"); clientID != "" {
		if _, err := h.clientStore.GetClient(clientID); err != nil {
			h.writeOAuthError(w, ErrInvalidClient("Invalid client"))
			return
		}
	}

	accessToken, err := generateSecureToken(AccessTokenLength)
	if err != nil {
		h.logger.Error("Failed to generate access token", "error", err)
		h.writeOAuthError(w, ErrServerError("Failed to generate access token"))
		return
	}

	if err := h.store.SaveSession(accessToken, props); err != nil {
		h.logger.Error("Failed to store session", "error", err)
		h.writeOAuthError(w, ErrServerError("Failed to store session"))
		return
	}

	tokenResp := TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(DefaultAccessTokenTTL.Seconds()),
	}

	// OAuth 2.1: rotate the refresh token unless explicitly disabled
	if !h.config.Security.DisableRefreshTokenRotation {
		if newRefreshToken, rotateErr := generateSecureToken(RefreshTokenLength); rotateErr == nil {
			h.store.DeleteRefreshToken(refreshToken)
			if saveErr := h.store.SaveRefreshToken(newRefreshToken, props); saveErr == nil {
				tokenResp.RefreshToken = newRefreshToken
			} else {
				h.logger.Warn("Failed to store rotated refresh token",
					"login", props.Login,
					"error", saveErr)
				tokenResp.RefreshToken = refreshToken
			}
		} else {
			tokenResp.RefreshToken = refreshToken
		}
	} else {
		tokenResp.RefreshToken = refreshToken
	}

	h.logger.Info("Issued access token via refresh_token grant",
		"login", props.Login)
	h.audit.LogTokenRefreshed(props.Email, props.Login,
		getClientIP(r, h.config.RateLimit.TrustProxy), tokenResp.RefreshToken != refreshToken)
	if h.metrics != nil {
		h.metrics.RecordOAuthTokenRefresh(r.Context(), instrumentation.OAuthResultSuccess)
		h.metrics.IncrementActiveSessions(r.Context())
	}

	h.writeTokenResponse(w, tokenResp)
}

func (h *Handler) writeTokenResponse(w http.ResponseWriter, tokenResp TokenResponse) {
	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tokenResp)
}

// verifyPKCE checks the code_verifier against the challenge bound to the
// authorization code. Codes issued without a challenge pass through.
func (h *Handler) verifyPKCE(authCode *AuthorizationCode, codeVerifier string) *OAuthError {
	if authCode.CodeChallenge == "" {
		return nil
	}
	if codeVerifier == "" {
		return ErrInvalidRequest("code_verifier is required")
	}
	if !ValidateCodeChallenge(codeVerifier, authCode.CodeChallenge, authCode.CodeChallengeMethod) {
		h.logger.Warn("PKCE verification failed", "client_id", authCode.ClientID)
		return ErrInvalidGrant("PKCE verification failed")
	}
	return nil
}

// authenticateClient authenticates the token request according to the
// client's registered auth method. Public clients (auth method "none") rely
// on PKCE instead of a secret.
func (h *Handler) authenticateClient(r *http.Request, clientID string) *OAuthError {
	client, err := h.clientStore.GetClient(clientID)
	if err != nil {
		return ErrInvalidClient("Unknown client")
	}

	if client.TokenEndpointAuthMethod == "none" {
		return nil
	}

	// client_secret_basic first, then client_secret_post
	secret := ""
	if basicID, basicSecret, ok := r.BasicAuth(); ok {
		if basicID != clientID {
			return ErrInvalidClient("Client authentication mismatch")
		}
		secret = basicSecret
	} else {
		secret = r.FormValue("client_secret")
	}

	if secret == "" {
		return ErrInvalidClient("Client authentication required")
	}

	if err := h.clientStore.ValidateClientSecret(clientID, secret); err != nil {
		h.logger.Warn("Client authentication failed", "client_id", clientID)
		return ErrInvalidClient("Invalid client credentials")
	}

	return nil
}

// validateRedirectURI validates a redirect URI at registration time. HTTPS is
// required for non-loopback hosts when the server itself runs on a
// non-loopback host.
func validateRedirectURI(uri string, serverResource string) error {
	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("invalid redirect_uri format: %s", uri)
	}

	// Reject fragments (OAuth 2.0 Security BCP Section 4.1.3)
	if parsed.Fragment != "" {
		return fmt.Errorf("redirect_uri must not contain fragments: %s", uri)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("redirect_uri must use http or https: %s", uri)
	}

	if parsed.Host == "" {
		return fmt.Errorf("redirect_uri must have a host: %s", uri)
	}

	serverURL, err := url.Parse(serverResource)
	if err != nil {
		return fmt.Errorf("cannot validate redirect_uri: invalid server resource")
	}

	// Loopback redirects are always allowed; they cannot be intercepted
	isProduction := !isLoopback(serverURL.Hostname())
	if isProduction && !isLoopback(parsed.Hostname()) && parsed.Scheme != "https" {
		return fmt.Errorf("redirect_uri must use HTTPS in production (non-localhost redirects): %s", uri)
	}

	return nil
}

// isLoopback checks if a hostname is a loopback address
func isLoopback(hostname string) bool {
	hostname = strings.Trim(hostname, "[]")

	for _, loopback := range LoopbackAddresses {
		if hostname == loopback {
			return true
		}
	}

	return strings.HasPrefix(hostname, "127.")
}

// fetchGoogleUserInfo fetches the authenticated user's profile from the
// upstream provider's userinfo endpoint.
func (h *Handler) fetchGoogleUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.config.userInfoURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var userInfo GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &userInfo, nil
}
