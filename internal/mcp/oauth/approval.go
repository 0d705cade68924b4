package oauth

import (
	"net/http"
)

// approvalCookieName returns the flag cookie name for a client
func approvalCookieName(clientID string) string {
	return approvalCookiePrefix + clientID + approvalCookieSuffix
}

// signatureCookieName returns the signature cookie name for a client
func signatureCookieName(clientID string) string {
	return approvalCookiePrefix + clientID + signatureCookieSuffix
}

// clientApproved reports whether the browser holding these cookies previously
// approved the given client under the current signing secret. It is true only
// when the flag cookie carries the exact literal "true" and the signature
// cookie verifies against that literal. Any missing cookie, tampered flag or
// stale signature yields false: the flow re-prompts for consent rather than
// erring.
func clientApproved(cookies map[string]string, clientID, secret string) bool {
	flag, ok := cookies[approvalCookieName(clientID)]
	if !ok || flag != approvedValue {
		return false
	}

	signature, ok := cookies[signatureCookieName(clientID)]
	if !ok {
		return false
	}

	return Verify(secret, signature, approvedValue)
}

// approveClient records the user's consent for a client by adding both consent
// cookies to the response, valid for one year. The caller issues the upstream
// redirect on the same response, so the cookie write is guaranteed to reach
// the browser before any subsequent authorize attempt can observe it.
func approveClient(w http.ResponseWriter, clientID, secret string) {
	opts := setCookieOptions{MaxAge: ApprovalCookieMaxAge}
	w.Header().Add("Set-Cookie", buildSetCookie(approvalCookieName(clientID), approvedValue, opts))
	w.Header().Add("Set-Cookie", buildSetCookie(signatureCookieName(clientID), Sign(secret, approvedValue), opts))
}
