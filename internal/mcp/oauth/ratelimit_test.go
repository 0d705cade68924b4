package oauth

import (
	"net/http/httptest"
	"testing"
	"time"
)

func newTestRateLimiter(t *testing.T, rate, burst int, trustProxy bool) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(rate, burst, trustProxy, time.Minute, nil)
	t.Cleanup(rl.Stop)
	return rl
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := newTestRateLimiter(t, 1, 5, false)

	for i := 0; i < 5; i++ {
		if !rl.Allow("192.0.2.1") {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}

	if rl.Allow("192.0.2.1") {
		t.Error("request beyond burst was allowed")
	}
}

func TestRateLimiterIsolatesIPs(t *testing.T) {
	rl := newTestRateLimiter(t, 1, 1, false)

	if !rl.Allow("192.0.2.1") {
		t.Fatal("first request from first IP denied")
	}
	if rl.Allow("192.0.2.1") {
		t.Error("second request from first IP allowed")
	}

	// A different IP has its own bucket
	if !rl.Allow("192.0.2.2") {
		t.Error("first request from second IP denied")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		trustProxy bool
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "192.0.2.1:54321",
			want:       "192.0.2.1",
		},
		{
			name:       "proxy headers ignored when not trusted",
			remoteAddr: "192.0.2.1:54321",
			xff:        "203.0.113.9",
			trustProxy: false,
			want:       "192.0.2.1",
		},
		{
			name:       "x-forwarded-for first entry when trusted",
			remoteAddr: "192.0.2.1:54321",
			xff:        "203.0.113.9, 198.51.100.2",
			trustProxy: true,
			want:       "203.0.113.9",
		},
		{
			name:       "x-real-ip fallback when trusted",
			remoteAddr: "192.0.2.1:54321",
			xri:        "203.0.113.9",
			trustProxy: true,
			want:       "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}

			if got := getClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
