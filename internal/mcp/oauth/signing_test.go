package oauth

import (
	"strings"
	"testing"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	secrets := []string{"s", "a-much-longer-secret-with-32-bytes!!", "секрет"}
	messages := []string{"", "true", "hello world", strings.Repeat("x", 4096)}

	for _, secret := range secrets {
		for _, message := range messages {
			sig := Sign(secret, message)
			if !Verify(secret, sig, message) {
				t.Errorf("Verify(%q, Sign(%q, %q), %q) = false, want true", secret, secret, message, message)
			}
		}
	}
}

func TestSignIsLowercaseHex(t *testing.T) {
	sig := Sign("secret", "true")

	if len(sig) != 64 {
		t.Errorf("Sign() length = %d, want 64 (hex SHA256)", len(sig))
	}
	if sig != strings.ToLower(sig) {
		t.Errorf("Sign() = %q, want lowercase hex", sig)
	}
	for _, r := range sig {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Errorf("Sign() contains non-hex character %q", r)
		}
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	sig := Sign("secret-one", "true")

	if Verify("secret-two", sig, "true") {
		t.Error("Verify() with different secret = true, want false")
	}
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	sig := Sign("secret", "true")

	if Verify("secret", sig, "false") {
		t.Error("Verify() with different message = true, want false")
	}
}

func TestVerifyFailsClosedOnMalformedHex(t *testing.T) {
	tests := []struct {
		name      string
		signature string
	}{
		{"empty", ""},
		{"not hex", "zzzz"},
		{"odd length", "abc"},
		{"truncated", Sign("secret", "true")[:30]},
		{"uppercase garbage", "NOT-A-SIGNATURE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Verify("secret", tt.signature, "true") {
				t.Errorf("Verify(%q) = true, want false", tt.signature)
			}
		})
	}
}
