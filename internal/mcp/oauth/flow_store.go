package oauth

import (
	"fmt"
	"log/slog"

	"github.com/jellydator/ttlcache/v3"
)

// FlowStore holds the single-use downstream authorization codes minted when a
// Google flow completes. Codes expire after DefaultAuthorizationCodeTTL;
// expired entries are evicted by the cache itself, so there is no cleanup
// goroutine to manage beyond Start/Stop.
//
// Note that there is deliberately no state store here: the authorization
// request travels through the flow inside the state parameter itself (see
// AuthorizationRequest), so the only server-side flow state is the code.
type FlowStore struct {
	codes  *ttlcache.Cache[string, *AuthorizationCode]
	logger *slog.Logger
}

// NewFlowStore creates a new flow store
func NewFlowStore(logger *slog.Logger) *FlowStore {
	if logger == nil {
		logger = slog.Default()
	}

	codes := ttlcache.New(
		ttlcache.WithTTL[string, *AuthorizationCode](DefaultAuthorizationCodeTTL),
		ttlcache.WithDisableTouchOnHit[string, *AuthorizationCode](),
	)
	go codes.Start()

	return &FlowStore{
		codes:  codes,
		logger: logger,
	}
}

// SaveAuthorizationCode saves a freshly minted authorization code
func (s *FlowStore) SaveAuthorizationCode(code *AuthorizationCode) error {
	if code.Code == "" {
		return fmt.Errorf("authorization code is empty")
	}

	s.codes.Set(code.Code, code, ttlcache.DefaultTTL)
	s.logger.Debug("Saved authorization code",
		"code_prefix", codePrefix(code.Code),
		"client_id", code.ClientID,
	)

	return nil
}

// codePrefix returns a loggable prefix of an authorization code
func codePrefix(code string) string {
	if len(code) <= 8 {
		return code
	}
	return code[:8] + "..."
}

// ConsumeAuthorizationCode retrieves and deletes an authorization code in a
// single cache operation, so a code can be redeemed exactly once even under
// concurrent token requests; a replayed code simply is not found.
func (s *FlowStore) ConsumeAuthorizationCode(code string) (*AuthorizationCode, error) {
	item, present := s.codes.GetAndDelete(code)
	if !present || item == nil {
		return nil, fmt.Errorf("authorization code not found or expired")
	}

	authCode := item.Value()
	s.logger.Info("Authorization code consumed",
		"code_prefix", codePrefix(code),
		"client_id", authCode.ClientID,
	)

	return authCode, nil
}

// Len returns the number of outstanding authorization codes
func (s *FlowStore) Len() int {
	return s.codes.Len()
}

// Stop stops the expiration worker
func (s *FlowStore) Stop() {
	s.codes.Stop()
}
