package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/leonnwankwo/skybrief/internal/logging"
)

// contextKey is the type for context keys
type contextKey string

// sessionContextKey is the key for storing session props in the request context
const sessionContextKey contextKey = "oauth_session"

// RequireSession is middleware that validates bearer tokens minted by this
// server's token endpoint. On success the bound session props are placed in
// the request context; tool handlers read identity from there and never see
// the raw token.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			// 401 with WWW-Authenticate pointing at the resource metadata so
			// MCP clients can discover the authorization server
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource"`,
				h.config.Resource,
			))
			h.writeUnauthorizedError(w, "missing_token", "Missing Authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource", error="invalid_token", error_description="Invalid Authorization header format"`,
				h.config.Resource,
			))
			h.writeUnauthorizedError(w, "invalid_token", "Invalid Authorization header format")
			return
		}

		props, err := h.store.GetSession(parts[1])
		if err != nil {
			h.logger.Debug("Rejected bearer token",
				"token", logging.SanitizeToken(parts[1]),
				"path", r.URL.Path)
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource", error="invalid_token", error_description="Token is invalid or expired"`,
				h.config.Resource,
			))
			h.writeUnauthorizedError(w, "invalid_token", "Token is invalid or expired")
			return
		}

		h.logger.Debug("Session validated", logging.UserHash(props.Email), logging.KeyLogin, props.Login)

		ctx := context.WithValue(r.Context(), sessionContextKey, props)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSessionFunc is a function-based variant of RequireSession
func (h *Handler) RequireSessionFunc(next http.HandlerFunc) http.HandlerFunc {
	return h.RequireSession(next).ServeHTTP
}

// SessionFromContext retrieves the authenticated session props from the
// request context.
func SessionFromContext(ctx context.Context) (*SessionProps, bool) {
	props, ok := ctx.Value(sessionContextKey).(*SessionProps)
	return props, ok
}

// ContextWithSession returns a context carrying the given session props.
// Used by transports that authenticate outside the HTTP middleware path.
func ContextWithSession(ctx context.Context, props *SessionProps) context.Context {
	return context.WithValue(ctx, sessionContextKey, props)
}

// writeUnauthorizedError writes an OAuth error response with 401 status
func (h *Handler) writeUnauthorizedError(w http.ResponseWriter, errorCode, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	})
}
