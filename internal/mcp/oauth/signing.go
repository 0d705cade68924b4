package oauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the HMAC-SHA256 of message under secret, hex encoded in
// lowercase. The signature is what gets stored in the consent signature cookie.
func Sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signatureHex is a valid signature of message under
// secret. Comparison is constant-time via hmac.Equal. Malformed hex input
// fails closed: it is treated as "not verified", never surfaced as an error.
func Verify(secret, signatureHex, message string) bool {
	got, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hmac.Equal(got, mac.Sum(nil))
}
