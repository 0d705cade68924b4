package oauth

import (
	"strings"
)

// AllowList is the static access policy: a read-only set of permitted logins
// provided at process start. It is never mutated at runtime; changing it
// means a restart.
type AllowList struct {
	logins map[string]struct{}
}

// NewAllowList builds an allow-list from the configured logins. Blank entries
// are dropped. No case normalization is applied: "Alice" and "alice" are
// distinct entries unless the operator configures both.
func NewAllowList(logins []string) *AllowList {
	set := make(map[string]struct{}, len(logins))
	for _, login := range logins {
		login = strings.TrimSpace(login)
		if login != "" {
			set[login] = struct{}{}
		}
	}
	return &AllowList{logins: set}
}

// Allowed reports whether the login may complete authorization. An empty
// allow-list permits every login: the default-open posture is deliberate and
// documented, not a bug.
func (a *AllowList) Allowed(login string) bool {
	if len(a.logins) == 0 {
		return true
	}
	_, ok := a.logins[login]
	return ok
}

// Len returns the number of configured logins
func (a *AllowList) Len() int {
	return len(a.logins)
}

// LoginFromEmail derives the authorization unit from an email address: the
// local part, unchanged. Two addresses with the same local part on different
// domains collide by design.
func LoginFromEmail(email string) string {
	login, _, _ := strings.Cut(email, "@")
	return login
}
