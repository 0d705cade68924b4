package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// GenerateCodeVerifier generates a random code verifier for PKCE.
// 32 random bytes base64url-encoded yields 43 characters, the RFC 7636 minimum.
func GenerateCodeVerifier() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateCodeChallenge computes the S256 challenge for a code verifier:
// BASE64URL(SHA256(ASCII(code_verifier)))
func GenerateCodeChallenge(verifier string) string {
	h := sha256.New()
	h.Write([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// ValidateCodeChallenge validates that the code verifier matches the code
// challenge using the given method. Only S256 is accepted; "plain" violates
// OAuth 2.1 and an unknown method always fails.
func ValidateCodeChallenge(verifier, challenge, method string) bool {
	switch method {
	case "S256", "":
		return GenerateCodeChallenge(verifier) == challenge
	default:
		return false
	}
}

// generateSecureToken generates a cryptographically secure random token of the
// given byte length, base64url encoded without padding
func generateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b), nil
}
