// Package server provides the MCP server context and the OAuth-enabled
// HTTP server for the skybrief application.
//
// # Key Components
//
// ServerContext holds the shared SimBrief and VATSIM clients plus the
// operator-configured default pilot, and coordinates shutdown.
//
// OAuthHTTPServer wraps an MCP server with OAuth 2.1 authentication:
//   - Authorization Server Metadata (RFC 8414)
//   - Protected Resource Metadata (RFC 9728)
//   - Dynamic Client Registration (RFC 7591)
//   - Authorization code flow with Google as the upstream identity provider
//   - Consent memoization via HMAC-signed cookies
//
// MetricsServer exposes Prometheus metrics on a dedicated port, and
// HealthChecker serves liveness and readiness probes.
//
// # Security Features
//
//   - HTTPS required for production (localhost exempt for development)
//   - PKCE required for public clients (OAuth 2.1 compliance)
//   - Single-use authorization codes and refresh token rotation
//   - Allow-list gating on authenticated logins
//   - Rate limiting per IP
//   - Security headers on all HTTP responses
package server
