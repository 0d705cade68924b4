package oauth

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonnwankwo/skybrief/internal/logging"
)

func newTestAuditLogger() (*SecurityAuditLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	return NewSecurityAuditLogger(logger), &buf
}

func parseAuditEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "audit output should be one JSON entry")
	return entry
}

func TestSecurityAuditLogger_LogTokenIssued(t *testing.T) {
	audit, buf := newTestAuditLogger()

	audit.LogTokenIssued("leonnwankwo@gmail.com", "leonnwankwo", "client123", "192.168.1.1", "openid email")

	entry := parseAuditEntry(t, buf)
	assert.Equal(t, string(AuditEventTokenIssued), entry["event_type"])
	assert.Equal(t, true, entry["success"])
	assert.Equal(t, "client123", entry["client_id"])
	assert.Equal(t, "192.168.1.1", entry["ip_address"])
	assert.Equal(t, "leonnwankwo", entry["login"])
	assert.Equal(t, "openid email", entry["meta_scope"])

	// The email appears only as its anonymized hash
	hash, _ := entry["user_hash"].(string)
	assert.NotEmpty(t, hash)
	assert.NotContains(t, hash, "leonnwankwo@gmail.com")
}

func TestSecurityAuditLogger_LogAuthFailure(t *testing.T) {
	audit, buf := newTestAuditLogger()

	audit.LogAuthFailure("intruder@example.com", "intruder", "client123", "192.168.1.1", "login not on allow-list")

	entry := parseAuditEntry(t, buf)
	assert.Equal(t, string(AuditEventAuthFailure), entry["event_type"])
	assert.Equal(t, false, entry["success"])
	assert.Equal(t, "login not on allow-list", entry["error"])
	assert.Equal(t, "WARN", entry["level"])
}

func TestSecurityAuditLogger_LogRateLimitExceeded(t *testing.T) {
	audit, buf := newTestAuditLogger()

	audit.LogRateLimitExceeded("192.168.1.1")

	entry := parseAuditEntry(t, buf)
	assert.Equal(t, string(AuditEventRateLimitExceeded), entry["event_type"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "192.168.1.1", entry["ip_address"])
}

func TestSecurityAuditLogger_LogConsentEvents(t *testing.T) {
	audit, buf := newTestAuditLogger()
	audit.LogConsentGranted("client123", "10.0.0.1")

	entry := parseAuditEntry(t, buf)
	assert.Equal(t, string(AuditEventConsentGranted), entry["event_type"])
	assert.Equal(t, true, entry["success"])
	assert.Equal(t, "INFO", entry["level"])

	buf.Reset()
	audit.LogConsentMemoized("client123", "10.0.0.1")

	entry = parseAuditEntry(t, buf)
	assert.Equal(t, string(AuditEventConsentMemoized), entry["event_type"])
	assert.Equal(t, "client123", entry["client_id"])
}

func TestSecurityAuditLogger_LogInvalidPKCE(t *testing.T) {
	audit, buf := newTestAuditLogger()

	audit.LogInvalidPKCE("client123", "10.0.0.1", "code_verifier does not match challenge")

	entry := parseAuditEntry(t, buf)
	assert.Equal(t, string(AuditEventInvalidPKCE), entry["event_type"])
	assert.Equal(t, false, entry["success"])
	assert.Equal(t, "WARN", entry["level"])
}

func TestSecurityAuditLogger_LogClientRegistered(t *testing.T) {
	audit, buf := newTestAuditLogger()

	audit.LogClientRegistered("client123", "none", "192.168.1.1")

	entry := parseAuditEntry(t, buf)
	assert.Equal(t, string(AuditEventClientRegistered), entry["event_type"])
	assert.Equal(t, "none", entry["meta_auth_method"])
}

func TestSecurityAuditLogger_NoSensitiveDataInLogs(t *testing.T) {
	audit, buf := newTestAuditLogger()

	sensitiveEmail := "topsecret@company.com"

	audit.LogTokenIssued(sensitiveEmail, "topsecret", "client1", "1.2.3.4", "openid")
	audit.LogAuthFailure(sensitiveEmail, "topsecret", "client2", "1.2.3.5", "denied")
	audit.LogTokenRefreshed(sensitiveEmail, "topsecret", "1.2.3.6", true)
	audit.LogAuthSuccess(sensitiveEmail, "topsecret", "client3", "1.2.3.7")

	logOutput := buf.String()
	assert.NotContains(t, logOutput, sensitiveEmail, "raw email must never reach audit logs")
	assert.Contains(t, logOutput, logging.AnonymizeEmail(sensitiveEmail))
}

func TestSecurityAuditLogger_EventAllFields(t *testing.T) {
	audit, buf := newTestAuditLogger()

	audit.LogEvent(AuditEvent{
		EventType:     AuditEventSessionsRevoked,
		UserEmailHash: "user:abcdef",
		Login:         "leonchike",
		ClientID:      "client456",
		IPAddress:     "10.0.0.1",
		Success:       true,
		Metadata: map[string]string{
			"count": "3",
		},
	})

	entry := parseAuditEntry(t, buf)
	assert.Equal(t, string(AuditEventSessionsRevoked), entry["event_type"])
	assert.Equal(t, "user:abcdef", entry["user_hash"])
	assert.Equal(t, "leonchike", entry["login"])
	assert.Equal(t, "client456", entry["client_id"])
	assert.Equal(t, "10.0.0.1", entry["ip_address"])
	assert.Equal(t, "3", entry["meta_count"])
}

func TestSecurityAuditLogger_NilLoggerDefaults(t *testing.T) {
	audit := NewSecurityAuditLogger(nil)
	require.NotNil(t, audit)
	// Must not panic with the default logger
	audit.LogRateLimitExceeded("10.0.0.1")
}

func TestSecurityAuditLogger_OmitsEmptyFields(t *testing.T) {
	audit, buf := newTestAuditLogger()

	audit.LogRateLimitExceeded("10.0.0.1")

	entry := parseAuditEntry(t, buf)
	_, hasHash := entry["user_hash"]
	assert.False(t, hasHash, "empty email hash should be omitted")
	_, hasClient := entry["client_id"]
	assert.False(t, hasClient, "empty client id should be omitted")
	assert.False(t, strings.Contains(buf.String(), `"login"`), "empty login should be omitted")
}
