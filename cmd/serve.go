package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/leonnwankwo/skybrief/internal/instrumentation"
	"github.com/leonnwankwo/skybrief/internal/mcp/oauth"
	"github.com/leonnwankwo/skybrief/internal/server"
	"github.com/leonnwankwo/skybrief/internal/tools/simbrief_tools"
	"github.com/leonnwankwo/skybrief/internal/tools/vatsim_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode          bool
		transport          string
		httpAddr           string
		baseURL            string
		googleClientID     string
		googleClientSecret string
		signingSecret      string
		allowedLogins      []string
		simbriefUsername   string
		// OAuth security settings
		allowPublicClientRegistration bool
		registrationAccessToken       string
		maxClientsPerIP               int
		rateLimitRate                 int
		rateLimitBurst                int
		trustProxy                    bool
		// TLS/HTTPS support
		tlsCertFile string
		tlsKeyFile  string
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide SimBrief flight
plan and VATSIM network tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport with OAuth 2.1

OAuth Configuration (HTTP transport):
  Base URL (required for deployed instances):
    --base-url https://your-domain.com OR MCP_BASE_URL env var
    Auto-detected for localhost (development only)

  Google identity (required):
    --google-client-id and --google-client-secret flags
    OR GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars

  Consent cookie signing (required):
    --signing-secret flag OR COOKIE_SIGNING_SECRET env var
    At least 32 characters. Generate with: openssl rand -base64 32

  Access control (recommended):
    --allowed-logins alice,bob OR ALLOWED_LOGINS env var
    Logins are the local part of the Google email. Empty list admits
    every authenticated Google account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}

			securityConfig := oauth.SecurityConfig{
				AllowPublicClientRegistration: allowPublicClientRegistration,
				RegistrationAccessToken:       registrationAccessToken,
				MaxClientsPerIP:               maxClientsPerIP,
			}

			rateLimitConfig := oauth.RateLimitConfig{
				Rate:       rateLimitRate,
				Burst:      rateLimitBurst,
				TrustProxy: trustProxy,
			}

			opts := serveOptions{
				transport:          transport,
				debugMode:          debugMode,
				httpAddr:           httpAddr,
				baseURL:            baseURL,
				googleClientID:     googleClientID,
				googleClientSecret: googleClientSecret,
				signingSecret:      signingSecret,
				allowedLogins:      allowedLogins,
				simbriefUsername:   simbriefUsername,
				security:           securityConfig,
				rateLimit:          rateLimitConfig,
				tlsCertFile:        tlsCertFile,
				tlsKeyFile:         tlsKeyFile,
				metrics:            metricsConfig,
			}

			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL for OAuth (HTTP transport only). Required for deployed instances. Can also use MCP_BASE_URL env var. Example: https://mcp.example.com")
	cmd.Flags().StringVar(&googleClientID, "google-client-id", "", "Google OAuth Client ID (HTTP transport only). Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().StringVar(&googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret (HTTP transport only). Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().StringVar(&signingSecret, "signing-secret", "", "Secret for signing consent cookies (min 32 chars). Can also use COOKIE_SIGNING_SECRET env var.")
	cmd.Flags().StringSliceVar(&allowedLogins, "allowed-logins", nil, "Logins (email local parts) allowed to use the server (comma-separated). Can also use ALLOWED_LOGINS env var. Empty admits everyone.")
	cmd.Flags().StringVar(&simbriefUsername, "simbrief-username", "", "Default SimBrief username for tool calls that omit one. Can also use SIMBRIEF_USERNAME env var.")

	// OAuth security settings (HTTP transport only)
	cmd.Flags().BoolVar(&allowPublicClientRegistration, "oauth-allow-public-registration", false, "WARNING: Allow unauthenticated client registration (NOT recommended for production). Can also use MCP_OAUTH_ALLOW_PUBLIC_REGISTRATION env var. Default: false (secure)")
	cmd.Flags().StringVar(&registrationAccessToken, "oauth-registration-token", "", "Registration access token required for client registration when public registration is disabled. Can also use MCP_OAUTH_REGISTRATION_TOKEN env var.")
	cmd.Flags().IntVar(&maxClientsPerIP, "oauth-max-clients-per-ip", 10, "Maximum number of clients that can be registered per IP address (prevents DoS). Can also use MCP_OAUTH_MAX_CLIENTS_PER_IP env var. Default: 10")
	cmd.Flags().IntVar(&rateLimitRate, "rate-limit", 10, "Requests per second allowed per IP on OAuth and MCP endpoints (0 disables)")
	cmd.Flags().IntVar(&rateLimitBurst, "rate-limit-burst", 20, "Maximum request burst allowed per IP")
	cmd.Flags().BoolVar(&trustProxy, "trust-proxy", false, "Trust X-Forwarded-For and X-Real-IP headers for client IPs. Only enable behind a trusted proxy.")

	// TLS flags for HTTPS support
	cmd.Flags().StringVar(&tlsCertFile, "tls-cert-file", "", "Path to TLS certificate file (PEM format). If provided with --tls-key-file, enables HTTPS. Can also use TLS_CERT_FILE env var.")
	cmd.Flags().StringVar(&tlsKeyFile, "tls-key-file", "", "Path to TLS private key file (PEM format). If provided with --tls-cert-file, enables HTTPS. Can also use TLS_KEY_FILE env var.")

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

type serveOptions struct {
	transport          string
	debugMode          bool
	httpAddr           string
	baseURL            string
	googleClientID     string
	googleClientSecret string
	signingSecret      string
	allowedLogins      []string
	simbriefUsername   string
	security           oauth.SecurityConfig
	rateLimit          oauth.RateLimitConfig
	tlsCertFile        string
	tlsKeyFile         string
	metrics            MetricsConfig
}

// applyEnvDefaults fills unset options from environment variables.
func (o *serveOptions) applyEnvDefaults() {
	if o.googleClientID == "" {
		o.googleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if o.googleClientSecret == "" {
		o.googleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if o.signingSecret == "" {
		o.signingSecret = os.Getenv("COOKIE_SIGNING_SECRET")
	}
	if len(o.allowedLogins) == 0 {
		o.allowedLogins = parseCommaSeparatedList(os.Getenv("ALLOWED_LOGINS"))
	}
	if o.simbriefUsername == "" {
		o.simbriefUsername = os.Getenv("SIMBRIEF_USERNAME")
	}
	if o.baseURL == "" {
		o.baseURL = os.Getenv("MCP_BASE_URL")
	}
	if o.tlsCertFile == "" {
		o.tlsCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if o.tlsKeyFile == "" {
		o.tlsKeyFile = os.Getenv("TLS_KEY_FILE")
	}

	if !o.security.AllowPublicClientRegistration && os.Getenv("MCP_OAUTH_ALLOW_PUBLIC_REGISTRATION") == "true" {
		o.security.AllowPublicClientRegistration = true
	}
	if o.security.RegistrationAccessToken == "" {
		o.security.RegistrationAccessToken = os.Getenv("MCP_OAUTH_REGISTRATION_TOKEN")
	}
	if envMax := os.Getenv("MCP_OAUTH_MAX_CLIENTS_PER_IP"); envMax != "" {
		if maxClients, err := strconv.Atoi(envMax); err == nil && maxClients > 0 {
			o.security.MaxClientsPerIP = maxClients
		}
	}

	if os.Getenv("METRICS_ENABLED") == "false" {
		o.metrics.Enabled = false
	}
	if addr := os.Getenv("METRICS_ADDR"); addr != "" && o.metrics.Addr == ":9090" {
		o.metrics.Addr = addr
	}
}

func runServe(opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts.applyEnvDefaults()

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if opts.transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if opts.transport != "stdio" && opts.metrics.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	// Create server context
	serverContext := server.NewServerContext(shutdownCtx, opts.simbriefUsername, nil)
	defer func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if opts.transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Attach metrics and audit logging so tool invocations are recorded
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("skybrief", version,
		mcpserver.WithToolCapabilities(true),
	)

	// Register all tools
	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	// Start the appropriate server based on transport type
	switch opts.transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		fmt.Printf("Starting skybrief MCP server with %s transport...\n", opts.transport)
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, provider, opts)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tool groups
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "SimBrief",
			register: func() error {
				return simbrief_tools.RegisterSimbriefTools(mcpSrv, ctx)
			},
		},
		{
			name: "VATSIM",
			register: func() error {
				return vatsim_tools.RegisterVatsimTools(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, provider *instrumentation.Provider, opts serveOptions) error {
	baseURL := opts.baseURL
	if baseURL == "" {
		// Fall back to auto-detection for local development
		baseURL = fmt.Sprintf("http://%s", opts.httpAddr)
		if opts.httpAddr[0] == ':' {
			baseURL = fmt.Sprintf("http://localhost%s", opts.httpAddr)
		}
		log.Printf("No base URL configured, using auto-detected: %s", baseURL)
		log.Printf("For deployed instances, set --base-url flag or MCP_BASE_URL env var")
	} else {
		log.Printf("Using configured base URL: %s", baseURL)
	}

	oauthConfig := &oauth.Config{
		Resource:      baseURL,
		SigningSecret: opts.signingSecret,
		AllowedLogins: opts.allowedLogins,
		GoogleAuth: oauth.GoogleAuthConfig{
			ClientID:     opts.googleClientID,
			ClientSecret: opts.googleClientSecret,
		},
		RateLimit: opts.rateLimit,
		Security:  opts.security,
	}

	oauthServer, err := server.NewOAuthHTTPServer(mcpSrv, "streamable-http", oauthConfig)
	if err != nil {
		return fmt.Errorf("failed to create OAuth HTTP server: %w", err)
	}

	healthChecker := server.NewHealthChecker(serverContext)
	oauthServer.SetHealthChecker(healthChecker)

	// HTTP and OAuth-flow metrics
	if provider != nil && provider.Enabled() {
		oauthServer.SetMetrics(provider.Metrics())
	}

	fmt.Printf("Streamable HTTP server with Google OAuth authentication starting on %s\n", opts.httpAddr)
	fmt.Printf("  HTTP endpoint: /mcp\n")
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	fmt.Printf("  OAuth metadata: /.well-known/oauth-authorization-server\n")
	if opts.metrics.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", opts.metrics.Addr)
	}
	if len(opts.allowedLogins) > 0 {
		fmt.Printf("  Allowed logins: %s\n", strings.Join(opts.allowedLogins, ", "))
	} else {
		fmt.Println("  WARNING: no allowed logins configured, every Google account is admitted")
	}
	fmt.Println("\nClients must authenticate with Google OAuth to access this server.")
	fmt.Println("The MCP client (e.g., Cursor, Claude Desktop) will handle the OAuth flow automatically.")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if opts.tlsCertFile != "" && opts.tlsKeyFile != "" {
			serverDone <- oauthServer.StartTLS(opts.httpAddr, opts.tlsCertFile, opts.tlsKeyFile)
			return
		}
		if err := oauthServer.Start(opts.httpAddr); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := oauthServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
