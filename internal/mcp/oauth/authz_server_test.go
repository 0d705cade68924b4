package oauth

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/oauth2"

	"github.com/leonnwankwo/skybrief/internal/instrumentation"
)

// fakeUpstream is a stand-in for Google's OAuth endpoints. The token endpoint
// always succeeds unless failExchange is set; the userinfo endpoint reports
// the configured identity unless failUserInfo is set.
type fakeUpstream struct {
	srv          *httptest.Server
	email        string
	name         string
	failExchange bool
	failUserInfo bool
}

func newFakeUpstream(t *testing.T, email, name string) *fakeUpstream {
	t.Helper()

	f := &fakeUpstream{email: email, name: name}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if f.failExchange {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "upstream-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if f.failUserInfo {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(GoogleUserInfo{
			Sub:           "google-sub-1",
			Email:         f.email,
			EmailVerified: true,
			Name:          f.name,
		})
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newTestHandler(t *testing.T, upstream *fakeUpstream, allowedLogins []string) *Handler {
	t.Helper()

	h, err := NewHandler(&Config{
		Resource:      "http://localhost:8080",
		SigningSecret: testSigningSecret,
		AllowedLogins: allowedLogins,
		GoogleAuth: GoogleAuthConfig{
			ClientID:     "upstream-client-id",
			ClientSecret: "upstream-client-secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:  upstream.srv.URL + "/auth",
				TokenURL: upstream.srv.URL + "/token",
			},
			UserInfoURL: upstream.srv.URL + "/userinfo",
		},
		Security: SecurityConfig{
			AllowPublicClientRegistration: true,
		},
	})
	require.NoError(t, err)
	t.Cleanup(h.Stop)
	return h
}

func registerTestClient(t *testing.T, h *Handler) *ClientRegistrationResponse {
	t.Helper()

	resp, err := h.clientStore.RegisterClient(&ClientRegistrationRequest{
		RedirectURIs: []string{"http://localhost:8765/callback"},
		ClientName:   "Flight Deck",
	}, "")
	require.NoError(t, err)
	return resp
}

var hiddenStateRe = regexp.MustCompile(`name="state" value="([^"]+)"`)

func TestAuthorizeFirstVisitShowsConsent(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h := newTestHandler(t, upstream, nil)
	client := registerTestClient(t, h)

	r := httptest.NewRequest("GET", "/authorize?client_id="+client.ClientID+
		"&redirect_uri="+url.QueryEscape("http://localhost:8765/callback")+
		"&state=client-state", nil)
	w := httptest.NewRecorder()
	h.ServeAuthorization(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Flight Deck")
	assert.Contains(t, body, `method="POST"`)

	// The hidden state must decode back into the original request
	m := hiddenStateRe.FindStringSubmatch(body)
	require.Len(t, m, 2)
	decoded, oerr := decodeAuthRequest(m[1])
	require.Nil(t, oerr)
	assert.Equal(t, client.ClientID, decoded.ClientID)
	assert.Equal(t, "client-state", decoded.State)
}

func TestAuthorizeRejectsMissingClientID(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h := newTestHandler(t, upstream, nil)

	r := httptest.NewRequest("GET", "/authorize", nil)
	w := httptest.NewRecorder()
	h.ServeAuthorization(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestAuthorizeRejectsUnknownClient(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h := newTestHandler(t, upstream, nil)

	r := httptest.NewRequest("GET", "/authorize?client_id=never-registered&redirect_uri="+
		url.QueryEscape("http://localhost:8765/callback"), nil)
	w := httptest.NewRecorder()
	h.ServeAuthorization(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConsentSubmissionSetsCookiesAndRedirects(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h := newTestHandler(t, upstream, nil)
	client := registerTestClient(t, h)

	state, err := encodeAuthRequest(&AuthorizationRequest{
		ClientID:    client.ClientID,
		RedirectURI: "http://localhost:8765/callback",
		State:       "client-state",
	})
	require.NoError(t, err)

	form := url.Values{"state": {state}}
	r := httptest.NewRequest("POST", "/authorize", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeAuthorization(w, r)

	require.Equal(t, http.StatusFound, w.Code)

	// Both consent cookies are set on the same response as the redirect
	setCookies := w.Result().Header.Values("Set-Cookie")
	require.Len(t, setCookies, 2)
	joined := strings.Join(setCookies, "\n")
	assert.Contains(t, joined, approvalCookieName(client.ClientID)+"=true")
	assert.Contains(t, joined, signatureCookieName(client.ClientID)+"="+Sign(testSigningSecret, approvedValue))
	for _, c := range setCookies {
		assert.Contains(t, c, "HttpOnly")
		assert.Contains(t, c, "Secure")
		assert.Contains(t, c, "SameSite=Strict")
	}

	// The redirect goes upstream carrying the same state
	location := w.Result().Header.Get("Location")
	require.NotEmpty(t, location)
	loc, err := url.Parse(location)
	require.NoError(t, err)
	assert.Contains(t, location, upstream.srv.URL)
	assert.Equal(t, state, loc.Query().Get("state"))
}

func TestConsentSubmissionRejectsBadState(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h := newTestHandler(t, upstream, nil)

	form := url.Values{"state": {"not-a-valid-state"}}
	r := httptest.NewRequest("POST", "/authorize", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeAuthorization(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_state", resp.Error)
}

func TestAuthorizeSkipsConsentWithValidCookies(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h := newTestHandler(t, upstream, nil)
	client := registerTestClient(t, h)

	r := httptest.NewRequest("GET", "/authorize?client_id="+client.ClientID+
		"&redirect_uri="+url.QueryEscape("http://localhost:8765/callback"), nil)
	r.Header.Set("Cookie",
		approvalCookieName(client.ClientID)+"=true; "+
			signatureCookieName(client.ClientID)+"="+Sign(testSigningSecret, approvedValue))
	w := httptest.NewRecorder()
	h.ServeAuthorization(w, r)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Result().Header.Get("Location"), upstream.srv.URL)
}

func TestAuthorizeIgnoresForgedCookies(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h := newTestHandler(t, upstream, nil)
	client := registerTestClient(t, h)

	r := httptest.NewRequest("GET", "/authorize?client_id="+client.ClientID+
		"&redirect_uri="+url.QueryEscape("http://localhost:8765/callback"), nil)
	r.Header.Set("Cookie",
		approvalCookieName(client.ClientID)+"=true; "+
			signatureCookieName(client.ClientID)+"="+Sign("wrong-secret-wrong-secret-wrong!", approvedValue))
	w := httptest.NewRecorder()
	h.ServeAuthorization(w, r)

	// A bad signature falls back to the consent prompt, never an error
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `method="POST"`)
}

func doCallback(t *testing.T, h *Handler, client *ClientRegistrationResponse) *httptest.ResponseRecorder {
	t.Helper()

	state, err := encodeAuthRequest(&AuthorizationRequest{
		ClientID:    client.ClientID,
		RedirectURI: "http://localhost:8765/callback",
		State:       "client-state",
	})
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/callback?code=upstream-code&state="+url.QueryEscape(state), nil)
	w := httptest.NewRecorder()
	h.ServeCallback(w, r)
	return w
}

func TestCallbackMintsCodeAndRedirects(t *testing.T) {
	upstream := newFakeUpstream(t, "leonnwankwo@example.com", "Leon Nwankwo")
	h := newTestHandler(t, upstream, []string{"leonnwankwo", "leonchike"})
	client := registerTestClient(t, h)

	w := doCallback(t, h, client)

	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Result().Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "localhost:8765", loc.Host)
	assert.Equal(t, "client-state", loc.Query().Get("state"))

	code := loc.Query().Get("code")
	require.NotEmpty(t, code)

	// The minted code is bound to the authenticated identity
	authCode, err := h.flowStore.ConsumeAuthorizationCode(code)
	require.NoError(t, err)
	assert.Equal(t, "leonnwankwo", authCode.Props.Login)
	assert.Equal(t, "leonnwankwo@example.com", authCode.Props.Email)
	assert.Equal(t, "upstream-access-token", authCode.Props.GoogleAccessToken)
}

func TestCallbackDeniesUnlistedLogin(t *testing.T) {
	upstream := newFakeUpstream(t, "eve@example.com", "Eve")
	h := newTestHandler(t, upstream, []string{"leonnwankwo", "leonchike"})
	client := registerTestClient(t, h)

	w := doCallback(t, h, client)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "eve")
	assert.Contains(t, w.Result().Header.Get("Content-Type"), "text/html")

	// No authorization code was minted
	assert.Equal(t, 0, h.flowStore.Len())
}

func TestCallbackEmptyAllowListAdmitsEveryone(t *testing.T) {
	upstream := newFakeUpstream(t, "anyone@example.com", "Anyone")
	h := newTestHandler(t, upstream, nil)
	client := registerTestClient(t, h)

	w := doCallback(t, h, client)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestCallbackRejectsMissingCode(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h := newTestHandler(t, upstream, nil)
	client := registerTestClient(t, h)

	state, err := encodeAuthRequest(&AuthorizationRequest{
		ClientID:    client.ClientID,
		RedirectURI: "http://localhost:8765/callback",
	})
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/callback?state="+url.QueryEscape(state)+
		"&error=access_denied", nil)
	w := httptest.NewRecorder()
	h.ServeCallback(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "missing_authorization_code", resp.Error)
}

func TestCallbackRejectsBadState(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h := newTestHandler(t, upstream, nil)

	r := httptest.NewRequest("GET", "/callback?code=x&state=garbage", nil)
	w := httptest.NewRecorder()
	h.ServeCallback(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_state", resp.Error)
}

func TestCallbackUpstreamExchangeFailure(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	upstream.failExchange = true
	h := newTestHandler(t, upstream, nil)
	client := registerTestClient(t, h)

	w := doCallback(t, h, client)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "token_exchange_failed", resp.Error)
	// Upstream detail never leaks into the response
	assert.NotContains(t, resp.ErrorDescription, "invalid_grant")
}

func TestCallbackUserInfoFailure(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	upstream.failUserInfo = true
	h := newTestHandler(t, upstream, nil)
	client := registerTestClient(t, h)

	w := doCallback(t, h, client)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "identity_fetch_failed", resp.Error)
}

func TestTokenEndpointAuthorizationCodeGrant(t *testing.T) {
	upstream := newFakeUpstream(t, "leonchike@example.com", "Leon Chike")
	h := newTestHandler(t, upstream, []string{"leonchike"})
	client := registerTestClient(t, h)

	w := doCallback(t, h, client)
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Result().Header.Get("Location"))
	require.NoError(t, err)
	code := loc.Query().Get("code")
	require.NotEmpty(t, code)

	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {"http://localhost:8765/callback"},
	}
	r := httptest.NewRequest("POST", "/oauth/token", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.SetBasicAuth(client.ClientID, client.ClientSecret)
	tw := httptest.NewRecorder()
	h.ServeToken(tw, r)

	require.Equal(t, http.StatusOK, tw.Code, tw.Body.String())

	var tokenResp TokenResponse
	require.NoError(t, json.Unmarshal(tw.Body.Bytes(), &tokenResp))
	require.NotEmpty(t, tokenResp.AccessToken)
	assert.Equal(t, "Bearer", tokenResp.TokenType)
	assert.NotEmpty(t, tokenResp.RefreshToken)

	// The access token resolves to the authenticated session
	props, err := h.store.GetSession(tokenResp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "leonchike", props.Login)

	// Replaying the single-use code must fail
	r2 := httptest.NewRequest("POST", "/oauth/token", strings.NewReader(form.Encode()))
	r2.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r2.SetBasicAuth(client.ClientID, client.ClientSecret)
	tw2 := httptest.NewRecorder()
	h.ServeToken(tw2, r2)

	require.Equal(t, http.StatusBadRequest, tw2.Code)
	var replayResp ErrorResponse
	require.NoError(t, json.Unmarshal(tw2.Body.Bytes(), &replayResp))
	assert.Equal(t, "invalid_grant", replayResp.Error)
}

func TestTokenEndpointRejectsBadClientSecret(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h := newTestHandler(t, upstream, nil)
	client := registerTestClient(t, h)

	w := doCallback(t, h, client)
	require.Equal(t, http.StatusFound, w.Code)
	loc, _ := url.Parse(w.Result().Header.Get("Location"))
	code := loc.Query().Get("code")

	form := url.Values{
		"grant_type": {"authorization_code"},
		"code":       {code},
	}
	r := httptest.NewRequest("POST", "/oauth/token", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.SetBasicAuth(client.ClientID, "wrong-secret")
	tw := httptest.NewRecorder()
	h.ServeToken(tw, r)

	assert.Equal(t, http.StatusUnauthorized, tw.Code)
}

func TestTokenEndpointPKCE(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h := newTestHandler(t, upstream, nil)
	client := registerTestClient(t, h)

	verifier, err := GenerateCodeVerifier()
	require.NoError(t, err)
	challenge := GenerateCodeChallenge(verifier)

	state, err := encodeAuthRequest(&AuthorizationRequest{
		ClientID:            client.ClientID,
		RedirectURI:         "http://localhost:8765/callback",
		CodeChallenge:       challenge,
		CodeChallengeMethod: "S256",
	})
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/callback?code=upstream-code&state="+url.QueryEscape(state), nil)
	w := httptest.NewRecorder()
	h.ServeCallback(w, r)
	require.Equal(t, http.StatusFound, w.Code)
	loc, _ := url.Parse(w.Result().Header.Get("Location"))
	code := loc.Query().Get("code")
	require.NotEmpty(t, code)

	// Wrong verifier is rejected
	badForm := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"code_verifier": {"this-is-not-the-right-verifier-at-all-0000"},
	}
	br := httptest.NewRequest("POST", "/oauth/token", strings.NewReader(badForm.Encode()))
	br.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	br.SetBasicAuth(client.ClientID, client.ClientSecret)
	bw := httptest.NewRecorder()
	h.ServeToken(bw, br)
	require.Equal(t, http.StatusBadRequest, bw.Code)

	// The code was consumed by the failed attempt; single use still holds
	gr := httptest.NewRequest("POST", "/oauth/token", strings.NewReader(url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"code_verifier": {verifier},
	}.Encode()))
	gr.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	gr.SetBasicAuth(client.ClientID, client.ClientSecret)
	gw := httptest.NewRecorder()
	h.ServeToken(gw, gr)
	assert.Equal(t, http.StatusBadRequest, gw.Code)
}

func TestTokenEndpointRefreshGrantRotates(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h := newTestHandler(t, upstream, nil)

	props := &SessionProps{Login: "alice", Email: "alice@example.com"}
	require.NoError(t, h.store.SaveRefreshToken("refresh-1", props))

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {"refresh-1"},
	}
	r := httptest.NewRequest("POST", "/oauth/token", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeToken(w, r)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tokenResp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))
	require.NotEmpty(t, tokenResp.AccessToken)
	require.NotEmpty(t, tokenResp.RefreshToken)
	assert.NotEqual(t, "refresh-1", tokenResp.RefreshToken, "refresh token should be rotated")

	// The old refresh token is dead
	_, err := h.store.GetRefreshToken("refresh-1")
	assert.Error(t, err)

	// The new one works
	got, err := h.store.GetRefreshToken(tokenResp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Login)
}

// newAuditedTestHandler builds a handler whose audit log is captured in the
// returned buffer and whose metrics recorder is active (against a noop meter).
func newAuditedTestHandler(t *testing.T, upstream *fakeUpstream, allowedLogins []string) (*Handler, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	h, err := NewHandler(&Config{
		Resource:      "http://localhost:8080",
		SigningSecret: testSigningSecret,
		AllowedLogins: allowedLogins,
		Logger:        slog.New(slog.NewJSONHandler(&buf, nil)),
		GoogleAuth: GoogleAuthConfig{
			ClientID:     "upstream-client-id",
			ClientSecret: "upstream-client-secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:  upstream.srv.URL + "/auth",
				TokenURL: upstream.srv.URL + "/token",
			},
			UserInfoURL: upstream.srv.URL + "/userinfo",
		},
		Security: SecurityConfig{
			AllowPublicClientRegistration: true,
		},
	})
	require.NoError(t, err)
	t.Cleanup(h.Stop)

	meter := metricnoop.NewMeterProvider().Meter("test")
	metrics, err := instrumentation.NewMetrics(meter, false)
	require.NoError(t, err)
	h.SetMetrics(metrics)

	return h, &buf
}

func TestCallbackAuditsAuthOutcomes(t *testing.T) {
	t.Run("admitted login", func(t *testing.T) {
		upstream := newFakeUpstream(t, "leonnwankwo@example.com", "Leon Nwankwo")
		h, buf := newAuditedTestHandler(t, upstream, []string{"leonnwankwo"})
		client := registerTestClient(t, h)
		buf.Reset()

		w := doCallback(t, h, client)
		require.Equal(t, http.StatusFound, w.Code)

		out := buf.String()
		assert.Contains(t, out, string(AuditEventAuthSuccess))
		assert.Contains(t, out, `"login":"leonnwankwo"`)
		// The audit trail carries the hashed identity, never the raw email
		assert.NotContains(t, out, "leonnwankwo@example.com")
	})

	t.Run("denied login", func(t *testing.T) {
		upstream := newFakeUpstream(t, "eve@example.com", "Eve")
		h, buf := newAuditedTestHandler(t, upstream, []string{"leonnwankwo"})
		client := registerTestClient(t, h)
		buf.Reset()

		w := doCallback(t, h, client)
		require.Equal(t, http.StatusForbidden, w.Code)

		out := buf.String()
		assert.Contains(t, out, string(AuditEventAuthFailure))
		assert.Contains(t, out, "allow-list")
		assert.NotContains(t, out, "eve@example.com")
	})
}

func TestConsentFlowAuditsDecisions(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h, buf := newAuditedTestHandler(t, upstream, nil)
	client := registerTestClient(t, h)

	state, err := encodeAuthRequest(&AuthorizationRequest{
		ClientID:    client.ClientID,
		RedirectURI: "http://localhost:8765/callback",
	})
	require.NoError(t, err)

	buf.Reset()
	form := url.Values{"state": {state}}
	r := httptest.NewRequest("POST", "/authorize", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeAuthorization(w, r)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, buf.String(), string(AuditEventConsentGranted))

	// A later visit with the consent cookies skips the prompt and is
	// audited as memoized
	buf.Reset()
	r = httptest.NewRequest("GET", "/authorize?client_id="+client.ClientID+
		"&redirect_uri="+url.QueryEscape("http://localhost:8765/callback"), nil)
	r.Header.Set("Cookie",
		approvalCookieName(client.ClientID)+"=true; "+
			signatureCookieName(client.ClientID)+"="+Sign(testSigningSecret, approvedValue))
	w = httptest.NewRecorder()
	h.ServeAuthorization(w, r)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, buf.String(), string(AuditEventConsentMemoized))
}

func TestTokenGrantsAreAudited(t *testing.T) {
	upstream := newFakeUpstream(t, "leonchike@example.com", "Leon Chike")
	h, buf := newAuditedTestHandler(t, upstream, []string{"leonchike"})
	client := registerTestClient(t, h)

	w := doCallback(t, h, client)
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Result().Header.Get("Location"))
	require.NoError(t, err)
	code := loc.Query().Get("code")
	require.NotEmpty(t, code)

	buf.Reset()
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {"http://localhost:8765/callback"},
	}
	r := httptest.NewRequest("POST", "/oauth/token", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.SetBasicAuth(client.ClientID, client.ClientSecret)
	tw := httptest.NewRecorder()
	h.ServeToken(tw, r)
	require.Equal(t, http.StatusOK, tw.Code, tw.Body.String())

	out := buf.String()
	assert.Contains(t, out, string(AuditEventTokenIssued))
	assert.Contains(t, out, `"login":"leonchike"`)
	assert.NotContains(t, out, "leonchike@example.com")

	var tokenResp TokenResponse
	require.NoError(t, json.Unmarshal(tw.Body.Bytes(), &tokenResp))
	require.NotEmpty(t, tokenResp.RefreshToken)

	buf.Reset()
	rf := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {tokenResp.RefreshToken},
	}
	rr := httptest.NewRequest("POST", "/oauth/token", strings.NewReader(rf.Encode()))
	rr.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rw := httptest.NewRecorder()
	h.ServeToken(rw, rr)
	require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())

	assert.Contains(t, buf.String(), string(AuditEventTokenRefreshed))
}

func TestTokenEndpointUnsupportedGrant(t *testing.T) {
	upstream := newFakeUpstream(t, "alice@example.com", "Alice")
	h := newTestHandler(t, upstream, nil)

	form := url.Values{"grant_type": {"password"}}
	r := httptest.NewRequest("POST", "/oauth/token", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeToken(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unsupported_grant_type", resp.Error)
}
