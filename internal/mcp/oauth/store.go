package oauth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Store maps minted bearer tokens to their session props. Access tokens live
// for DefaultAccessTokenTTL, refresh tokens for the configured refresh TTL.
// Both caches evict expired entries themselves.
type Store struct {
	sessions *ttlcache.Cache[string, *SessionProps]
	refresh  *ttlcache.Cache[string, *SessionProps]
	logger   *slog.Logger
}

// NewStore creates a new token store
func NewStore(refreshTTL time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if refreshTTL == 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}

	sessions := ttlcache.New(
		ttlcache.WithTTL[string, *SessionProps](DefaultAccessTokenTTL),
		ttlcache.WithDisableTouchOnHit[string, *SessionProps](),
	)
	refresh := ttlcache.New(
		ttlcache.WithTTL[string, *SessionProps](refreshTTL),
		ttlcache.WithDisableTouchOnHit[string, *SessionProps](),
	)
	go sessions.Start()
	go refresh.Start()

	return &Store{
		sessions: sessions,
		refresh:  refresh,
		logger:   logger,
	}
}

// SaveSession binds an access token to its session props
func (s *Store) SaveSession(accessToken string, props *SessionProps) error {
	if accessToken == "" {
		return fmt.Errorf("access token is empty")
	}
	if props == nil {
		return fmt.Errorf("session props are required")
	}

	s.sessions.Set(accessToken, props, ttlcache.DefaultTTL)
	s.logger.Debug("Saved session", "login", props.Login)
	return nil
}

// GetSession resolves an access token to its session props
func (s *Store) GetSession(accessToken string) (*SessionProps, error) {
	item := s.sessions.Get(accessToken)
	if item == nil {
		return nil, fmt.Errorf("session not found or expired")
	}
	return item.Value(), nil
}

// DeleteSession revokes an access token
func (s *Store) DeleteSession(accessToken string) {
	s.sessions.Delete(accessToken)
}

// DeleteSessionsForLogin revokes every access token bound to a login
func (s *Store) DeleteSessionsForLogin(login string) int {
	deleted := 0
	for _, token := range s.sessions.Keys() {
		item := s.sessions.Get(token)
		if item != nil && item.Value().Login == login {
			s.sessions.Delete(token)
			deleted++
		}
	}
	return deleted
}

// SaveRefreshToken binds a refresh token to its session props
func (s *Store) SaveRefreshToken(refreshToken string, props *SessionProps) error {
	if refreshToken == "" {
		return fmt.Errorf("refresh token is empty")
	}
	s.refresh.Set(refreshToken, props, ttlcache.DefaultTTL)
	return nil
}

// GetRefreshToken resolves a refresh token to its session props
func (s *Store) GetRefreshToken(refreshToken string) (*SessionProps, error) {
	item := s.refresh.Get(refreshToken)
	if item == nil {
		return nil, fmt.Errorf("refresh token not found or expired")
	}
	return item.Value(), nil
}

// DeleteRefreshToken invalidates a refresh token (used during rotation)
func (s *Store) DeleteRefreshToken(refreshToken string) {
	s.refresh.Delete(refreshToken)
}

// OnSessionEvicted registers fn to run whenever a session leaves the store,
// whether by TTL expiry or revocation. Used to keep gauges honest about
// sessions that quietly expire.
func (s *Store) OnSessionEvicted(fn func()) {
	s.sessions.OnEviction(func(_ context.Context, _ ttlcache.EvictionReason, _ *ttlcache.Item[string, *SessionProps]) {
		fn()
	})
}

// SessionCount returns the number of live sessions
func (s *Store) SessionCount() int {
	return s.sessions.Len()
}

// Stop stops both expiration workers
func (s *Store) Stop() {
	s.sessions.Stop()
	s.refresh.Stop()
}
