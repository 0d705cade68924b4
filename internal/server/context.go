package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/leonnwankwo/skybrief/internal/instrumentation"
	"github.com/leonnwankwo/skybrief/internal/simbrief"
	"github.com/leonnwankwo/skybrief/internal/vatsim"
)

// ServerContext holds the shared state for the MCP server: the upstream data
// clients and the operator-configured defaults.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	simbriefClient *simbrief.Client
	vatsimClient   *vatsim.Client

	// defaultSimbriefUser is the SimBrief username used when a tool call
	// does not name one
	defaultSimbriefUser string

	logger *slog.Logger

	// Optional instrumentation; nil means tool handlers run unrecorded
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context with clients against the
// production SimBrief and VATSIM endpoints.
func NewServerContext(ctx context.Context, defaultSimbriefUser string, logger *slog.Logger) *ServerContext {
	if logger == nil {
		logger = slog.Default()
	}
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:                 shutdownCtx,
		cancel:              cancel,
		simbriefClient:      simbrief.NewClient(simbrief.WithLogger(logger)),
		vatsimClient:        vatsim.NewClient(vatsim.WithLogger(logger)),
		defaultSimbriefUser: defaultSimbriefUser,
		logger:              logger,
	}
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server logger
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// SimbriefClient returns the SimBrief client
func (sc *ServerContext) SimbriefClient() *simbrief.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.simbriefClient
}

// SetSimbriefClient replaces the SimBrief client (tests)
func (sc *ServerContext) SetSimbriefClient(client *simbrief.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.simbriefClient = client
}

// VatsimClient returns the VATSIM client
func (sc *ServerContext) VatsimClient() *vatsim.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.vatsimClient
}

// SetVatsimClient replaces the VATSIM client (tests)
func (sc *ServerContext) SetVatsimClient(client *vatsim.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.vatsimClient = client
}

// Metrics returns the tool invocation metrics, or nil when not configured
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics attaches tool invocation metrics
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the tool audit logger, or nil when not configured
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger attaches the tool audit logger
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// DefaultSimbriefUser returns the operator-configured fallback username
func (sc *ServerContext) DefaultSimbriefUser() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.defaultSimbriefUser
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
