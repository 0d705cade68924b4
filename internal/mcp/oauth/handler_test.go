package oauth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	return &Config{
		Resource:      "https://skybrief.example.com",
		SigningSecret: testSigningSecret,
		GoogleAuth: GoogleAuthConfig{
			ClientID:     "upstream-client-id",
			ClientSecret: "upstream-client-secret",
		},
	}
}

func TestNewHandlerValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid https",
			mutate: func(c *Config) {},
		},
		{
			name:   "valid http localhost",
			mutate: func(c *Config) { c.Resource = "http://localhost:8080" },
		},
		{
			name:    "missing resource",
			mutate:  func(c *Config) { c.Resource = "" },
			wantErr: "resource is required",
		},
		{
			name:    "http in production",
			mutate:  func(c *Config) { c.Resource = "http://skybrief.example.com" },
			wantErr: "HTTPS",
		},
		{
			name:    "short signing secret",
			mutate:  func(c *Config) { c.SigningSecret = "too-short" },
			wantErr: "signing secret",
		},
		{
			name:    "missing google credentials",
			mutate:  func(c *Config) { c.GoogleAuth.ClientSecret = "" },
			wantErr: "google OAuth credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			h, err := NewHandler(cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			t.Cleanup(h.Stop)
		})
	}
}

func TestNewHandlerDefaults(t *testing.T) {
	h, err := NewHandler(validTestConfig())
	require.NoError(t, err)
	t.Cleanup(h.Stop)

	assert.Equal(t, "https://skybrief.example.com/callback", h.googleConfig.RedirectURL)
	assert.Equal(t, DefaultGoogleScopes, h.googleConfig.Scopes)
	assert.Equal(t, DefaultUpstreamTimeout, h.httpClient.Timeout)
	assert.Equal(t, DefaultRefreshTokenTTL, h.config.Security.RefreshTokenTTL)
}

func TestServeAuthorizationServerMetadata(t *testing.T) {
	h, err := NewHandler(validTestConfig())
	require.NoError(t, err)
	t.Cleanup(h.Stop)

	r := httptest.NewRequest("GET", "/.well-known/oauth-authorization-server", nil)
	w := httptest.NewRecorder()
	h.ServeAuthorizationServerMetadata(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var metadata AuthorizationServerMetadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metadata))
	assert.Equal(t, "https://skybrief.example.com", metadata.Issuer)
	assert.Equal(t, "https://skybrief.example.com/authorize", metadata.AuthorizationEndpoint)
	assert.Equal(t, "https://skybrief.example.com/oauth/token", metadata.TokenEndpoint)
	assert.Equal(t, []string{"S256"}, metadata.CodeChallengeMethodsSupported)
}

func TestServeProtectedResourceMetadata(t *testing.T) {
	h, err := NewHandler(validTestConfig())
	require.NoError(t, err)
	t.Cleanup(h.Stop)

	r := httptest.NewRequest("GET", "/.well-known/oauth-protected-resource", nil)
	w := httptest.NewRecorder()
	h.ServeProtectedResourceMetadata(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var metadata ProtectedResourceMetadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metadata))
	assert.Equal(t, "https://skybrief.example.com", metadata.Resource)
	assert.Equal(t, []string{"https://skybrief.example.com"}, metadata.AuthorizationServers)
}

func TestMetadataEndpointsRejectNonGet(t *testing.T) {
	h, err := NewHandler(validTestConfig())
	require.NoError(t, err)
	t.Cleanup(h.Stop)

	for _, serve := range []http.HandlerFunc{
		h.ServeAuthorizationServerMetadata,
		h.ServeProtectedResourceMetadata,
	} {
		r := httptest.NewRequest("POST", "/", nil)
		w := httptest.NewRecorder()
		serve(w, r)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h, err := NewHandler(validTestConfig())
	require.NoError(t, err)
	t.Cleanup(h.Stop)

	w := httptest.NewRecorder()
	h.setSecurityHeaders(w)

	headers := w.Header()
	assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	assert.Equal(t, "no-referrer", headers.Get("Referrer-Policy"))
	assert.Contains(t, headers.Get("Strict-Transport-Security"), "max-age=")

	// The HTML variant relaxes CSP only for inline styles
	hw := httptest.NewRecorder()
	h.setSecurityHeadersForHTML(hw)
	assert.Contains(t, hw.Header().Get("Content-Security-Policy"), "style-src 'unsafe-inline'")
}

func TestServeRevoke(t *testing.T) {
	h, err := NewHandler(validTestConfig())
	require.NoError(t, err)
	t.Cleanup(h.Stop)

	require.NoError(t, h.store.SaveSession("t1", &SessionProps{Login: "alice"}))
	require.NoError(t, h.store.SaveSession("t2", &SessionProps{Login: "alice"}))

	r := httptest.NewRequest("POST", "/oauth/revoke", strings.NewReader(`{"login":"alice"}`))
	w := httptest.NewRecorder()
	h.ServeRevoke(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"revoked":2`)

	_, err = h.store.GetSession("t1")
	assert.Error(t, err)
}

func TestServeRevokeRequiresLogin(t *testing.T) {
	h, err := NewHandler(validTestConfig())
	require.NoError(t, err)
	t.Cleanup(h.Stop)

	r := httptest.NewRequest("POST", "/oauth/revoke", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	h.ServeRevoke(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWriteError(t *testing.T) {
	h, err := NewHandler(validTestConfig())
	require.NoError(t, err)
	t.Cleanup(h.Stop)

	w := httptest.NewRecorder()
	h.writeOAuthError(w, ErrInvalidGrant("code expired"))

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_grant", resp.Error)
	assert.Equal(t, "code expired", resp.ErrorDescription)
}
