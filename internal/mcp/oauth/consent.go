package oauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
)

// encodeAuthRequest serializes an authorization request into the opaque state
// string carried through the consent form and the upstream redirect. The
// encoding must survive being echoed back verbatim by the browser and by the
// upstream provider.
func encodeAuthRequest(req *AuthorizationRequest) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal authorization request: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// decodeAuthRequest reverses encodeAuthRequest. A state that does not decode,
// or that decodes to a request without a client identifier, is an
// invalid_state error: it protects against a forged or truncated callback and
// is never allowed to surface as a panic.
func decodeAuthRequest(state string) (*AuthorizationRequest, *OAuthError) {
	if state == "" {
		return nil, ErrInvalidState("state parameter is required")
	}

	raw, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		return nil, ErrInvalidState("state parameter is not valid base64")
	}

	var req AuthorizationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, ErrInvalidState("state parameter is not a valid authorization request")
	}

	if req.ClientID == "" {
		return nil, ErrInvalidState("state parameter carries no client identifier")
	}

	return &req, nil
}

// consentTemplate is the consent prompt rendered on a first-time authorize.
// The serialized authorization request rides along as hidden form state;
// html/template escapes it on the way out and ParseForm restores it verbatim
// on the way back in.
var consentTemplate = template.Must(template.New("consent").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Authorize {{.ClientName}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
           max-width: 28rem; margin: 4rem auto; padding: 0 1rem; color: #1a1a2e; }
    h1 { font-size: 1.3rem; }
    .scope { color: #555; font-size: 0.9rem; }
    button { background: #16537e; color: #fff; border: 0; border-radius: 6px;
             padding: 0.6rem 1.4rem; font-size: 1rem; cursor: pointer; }
  </style>
</head>
<body>
  <h1>skybrief</h1>
  <p><strong>{{.ClientName}}</strong> is requesting access to your flight-planning
     tools. You will be redirected to Google to sign in.</p>
  {{if .Scope}}<p class="scope">Requested scope: {{.Scope}}</p>{{end}}
  <form method="POST" action="/authorize">
    <input type="hidden" name="state" value="{{.State}}">
    <button type="submit">Approve</button>
  </form>
</body>
</html>
`))

// accessDeniedTemplate is the terminal page for a login the access policy
// rejects. It names the login and nothing else; in particular it never says
// why beyond "not authorized".
var accessDeniedTemplate = template.Must(template.New("denied").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Access denied</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
           max-width: 28rem; margin: 4rem auto; padding: 0 1rem; color: #1a1a2e; }
  </style>
</head>
<body>
  <h1>Access denied</h1>
  <p>The account <strong>{{.Login}}</strong> is not authorized to use this server.</p>
  <p>If you believe this is a mistake, contact the operator.</p>
</body>
</html>
`))

// renderConsentPage writes the consent prompt for a pending authorization
func (h *Handler) renderConsentPage(w http.ResponseWriter, req *AuthorizationRequest, clientName string) {
	state, err := encodeAuthRequest(req)
	if err != nil {
		h.logger.Error("Failed to encode authorization request", "error", err)
		h.writeError(w, "server_error", "Failed to prepare consent page", http.StatusInternalServerError)
		return
	}

	if clientName == "" {
		clientName = req.ClientID
	}

	h.setSecurityHeadersForHTML(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := consentTemplate.Execute(w, map[string]string{
		"ClientName": clientName,
		"Scope":      req.Scope,
		"State":      state,
	}); err != nil {
		h.logger.Error("Failed to render consent page", "error", err)
	}
}

// renderAccessDenied writes the terminal 403 page naming the rejected login
func (h *Handler) renderAccessDenied(w http.ResponseWriter, login string) {
	h.setSecurityHeadersForHTML(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	if err := accessDeniedTemplate.Execute(w, map[string]string{"Login": login}); err != nil {
		h.logger.Error("Failed to render access denied page", "error", err)
	}
}
