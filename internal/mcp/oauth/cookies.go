package oauth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// parseCookies parses a raw Cookie header into a name→value map. A missing or
// empty header yields an empty map; entries without "=" are skipped. Values
// are URL-decoded, falling back to the raw value when decoding fails.
func parseCookies(header string) map[string]string {
	cookies := make(map[string]string)
	if header == "" {
		return cookies
	}

	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}

		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		cookies[name] = value
	}

	return cookies
}

// setCookieOptions controls the variable parts of a Set-Cookie directive.
// HttpOnly, Secure and SameSite=Strict are not options: every cookie this
// server writes carries them.
type setCookieOptions struct {
	// MaxAge is the cookie lifetime. Zero means a session cookie.
	MaxAge time.Duration
}

// buildSetCookie renders one Set-Cookie directive. The value is URL-encoded so
// that signatures and other opaque values survive the round trip.
func buildSetCookie(name, value string, opts setCookieOptions) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
	b.WriteString("; Path=/; HttpOnly; Secure; SameSite=Strict")

	if opts.MaxAge > 0 {
		expires := time.Now().Add(opts.MaxAge).UTC()
		fmt.Fprintf(&b, "; Max-Age=%d; Expires=%s", int(opts.MaxAge.Seconds()), expires.Format(http.TimeFormat))
	}

	return b.String()
}
