package oauth

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/leonnwankwo/skybrief/internal/logging"
)

// AuditEventType represents the type of audit event
type AuditEventType string

const (
	// Authentication events
	AuditEventTokenIssued     AuditEventType = "token_issued"
	AuditEventTokenRefreshed  AuditEventType = "token_refreshed"
	AuditEventSessionsRevoked AuditEventType = "sessions_revoked"
	AuditEventAuthSuccess     AuditEventType = "auth_success"
	AuditEventAuthFailure     AuditEventType = "auth_failure"

	// Consent events
	AuditEventConsentGranted  AuditEventType = "consent_granted"
	AuditEventConsentMemoized AuditEventType = "consent_memoized"

	// Client registration events
	AuditEventClientRegistered AuditEventType = "client_registered"

	// Security events
	AuditEventRateLimitExceeded AuditEventType = "rate_limit_exceeded"
	AuditEventInvalidPKCE       AuditEventType = "invalid_pkce"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	// Timestamp when the event occurred
	Timestamp time.Time

	// EventType is the type of audit event
	EventType AuditEventType

	// UserEmailHash is the anonymized email of the user (never the raw address)
	UserEmailHash string

	// Login is the allow-listed identity, when known. Logins are operator
	// configuration, not PII, so they are logged as-is.
	Login string

	// ClientID is the downstream client identifier
	ClientID string

	// IPAddress is the source IP address (for security monitoring)
	IPAddress string

	// Success indicates if the operation succeeded
	Success bool

	// ErrorMessage contains error details if Success is false
	ErrorMessage string

	// Metadata contains additional context-specific data
	Metadata map[string]string
}

// SecurityAuditLogger provides secure audit logging for OAuth events.
// Emails are anonymized before logging; tokens never reach it at all.
type SecurityAuditLogger struct {
	logger *slog.Logger
}

// NewSecurityAuditLogger creates a new audit logger
func NewSecurityAuditLogger(logger *slog.Logger) *SecurityAuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SecurityAuditLogger{
		logger: logger,
	}
}

// LogEvent logs an audit event with structured logging
func (a *SecurityAuditLogger) LogEvent(event AuditEvent) {
	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}

	// Security events are warnings regardless of outcome
	switch event.EventType {
	case AuditEventAuthFailure, AuditEventRateLimitExceeded, AuditEventInvalidPKCE:
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("event_type", string(event.EventType)),
		slog.Time("timestamp", event.Timestamp),
		slog.Bool("success", event.Success),
	}

	if event.UserEmailHash != "" {
		attrs = append(attrs, slog.String(logging.KeyUserHash, event.UserEmailHash))
	}
	if event.Login != "" {
		attrs = append(attrs, slog.String(logging.KeyLogin, event.Login))
	}
	if event.ClientID != "" {
		attrs = append(attrs, slog.String("client_id", event.ClientID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.ErrorMessage != "" {
		attrs = append(attrs, slog.String(logging.KeyError, event.ErrorMessage))
	}

	for key, value := range event.Metadata {
		attrs = append(attrs, slog.String("meta_"+key, value))
	}

	a.logger.LogAttrs(nil, level, "audit_event", attrs...)
}

// LogTokenIssued logs when an access token is issued
func (a *SecurityAuditLogger) LogTokenIssued(userEmail, login, clientID, ipAddress, scope string) {
	a.LogEvent(AuditEvent{
		Timestamp:     time.Now(),
		EventType:     AuditEventTokenIssued,
		UserEmailHash: logging.AnonymizeEmail(userEmail),
		Login:         login,
		ClientID:      clientID,
		IPAddress:     ipAddress,
		Success:       true,
		Metadata: map[string]string{
			"scope": scope,
		},
	})
}

// LogTokenRefreshed logs when an access token is issued via refresh_token grant
func (a *SecurityAuditLogger) LogTokenRefreshed(userEmail, login, ipAddress string, rotated bool) {
	a.LogEvent(AuditEvent{
		Timestamp:     time.Now(),
		EventType:     AuditEventTokenRefreshed,
		UserEmailHash: logging.AnonymizeEmail(userEmail),
		Login:         login,
		IPAddress:     ipAddress,
		Success:       true,
		Metadata: map[string]string{
			"rotated": strconv.FormatBool(rotated),
		},
	})
}

// LogSessionsRevoked logs an operator-initiated session revocation
func (a *SecurityAuditLogger) LogSessionsRevoked(login, ipAddress string, count int) {
	a.LogEvent(AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditEventSessionsRevoked,
		Login:     login,
		IPAddress: ipAddress,
		Success:   true,
		Metadata: map[string]string{
			"count": strconv.Itoa(count),
		},
	})
}

// LogAuthSuccess logs a completed upstream authentication
func (a *SecurityAuditLogger) LogAuthSuccess(userEmail, login, clientID, ipAddress string) {
	a.LogEvent(AuditEvent{
		Timestamp:     time.Now(),
		EventType:     AuditEventAuthSuccess,
		UserEmailHash: logging.AnonymizeEmail(userEmail),
		Login:         login,
		ClientID:      clientID,
		IPAddress:     ipAddress,
		Success:       true,
	})
}

// LogAuthFailure logs an authentication failure (allow-list denial included)
func (a *SecurityAuditLogger) LogAuthFailure(userEmail, login, clientID, ipAddress, reason string) {
	a.LogEvent(AuditEvent{
		Timestamp:     time.Now(),
		EventType:     AuditEventAuthFailure,
		UserEmailHash: logging.AnonymizeEmail(userEmail),
		Login:         login,
		ClientID:      clientID,
		IPAddress:     ipAddress,
		Success:       false,
		ErrorMessage:  reason,
	})
}

// LogConsentGranted logs a consent form approval
func (a *SecurityAuditLogger) LogConsentGranted(clientID, ipAddress string) {
	a.LogEvent(AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditEventConsentGranted,
		ClientID:  clientID,
		IPAddress: ipAddress,
		Success:   true,
	})
}

// LogConsentMemoized logs a consent prompt skipped on a valid approval cookie
func (a *SecurityAuditLogger) LogConsentMemoized(clientID, ipAddress string) {
	a.LogEvent(AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditEventConsentMemoized,
		ClientID:  clientID,
		IPAddress: ipAddress,
		Success:   true,
	})
}

// LogRateLimitExceeded logs when an IP exceeds its rate limit
func (a *SecurityAuditLogger) LogRateLimitExceeded(ipAddress string) {
	a.LogEvent(AuditEvent{
		Timestamp:    time.Now(),
		EventType:    AuditEventRateLimitExceeded,
		IPAddress:    ipAddress,
		Success:      false,
		ErrorMessage: "Rate limit exceeded",
	})
}

// LogInvalidPKCE logs when PKCE verification fails
func (a *SecurityAuditLogger) LogInvalidPKCE(clientID, ipAddress, reason string) {
	a.LogEvent(AuditEvent{
		Timestamp:    time.Now(),
		EventType:    AuditEventInvalidPKCE,
		ClientID:     clientID,
		IPAddress:    ipAddress,
		Success:      false,
		ErrorMessage: reason,
	})
}

// LogClientRegistered logs when a new client is registered
func (a *SecurityAuditLogger) LogClientRegistered(clientID, authMethod, ipAddress string) {
	a.LogEvent(AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditEventClientRegistered,
		ClientID:  clientID,
		IPAddress: ipAddress,
		Success:   true,
		Metadata: map[string]string{
			"auth_method": authMethod,
		},
	})
}
