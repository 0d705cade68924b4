package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonnwankwo/skybrief/internal/instrumentation"
	"github.com/leonnwankwo/skybrief/internal/mcp/oauth"
	"github.com/leonnwankwo/skybrief/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with a tracing span, metrics
// and audit logging. The invocation is attributed to the authenticated login
// when the session middleware placed one in the context; stdio transport has
// no session and the login attributes are simply omitted.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(
	toolName string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return instrumentedHandler(toolName, "", "", sc, handler)
}

// InstrumentedToolHandlerWithService is like InstrumentedToolHandler but also
// records the upstream service and operation, so upstream API metrics
// (upstream_api_requests_total and its duration histogram) are kept alongside
// the per-tool metrics.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithService("my_tool", instrumentation.ServiceVatsim, instrumentation.OperationMETAR, sc, handler))
func InstrumentedToolHandlerWithService(
	toolName string,
	serviceName string,
	operation string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return instrumentedHandler(toolName, serviceName, operation, sc, handler)
}

func instrumentedHandler(
	toolName, serviceName, operation string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		// No instrumentation configured, just call the handler
		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		spanAttrs := instrumentation.NewSpanAttributeBuilder()
		if serviceName != "" {
			spanAttrs.WithService(serviceName).WithOperation(operation)
		}

		var login, email string
		if props, ok := oauth.SessionFromContext(ctx); ok {
			login = props.Login
			email = props.Email
			spanAttrs.WithLogin(login)
		}

		ctx, span := instrumentation.StartToolSpan(ctx, toolName, spanAttrs.Build()...)
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx)
		if login != "" {
			invocation.WithLogin(login)
		}
		if email != "" {
			invocation.WithUser(email)
		}
		if serviceName != "" {
			invocation.WithService(serviceName, operation)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
			if err != nil {
				invocation.CompleteWithError(err)
				instrumentation.SetSpanError(span, err)
			} else {
				invocation.Complete(false, nil)
			}
		} else {
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		if metrics != nil {
			if login != "" {
				metrics.RecordToolInvocationWithLogin(ctx, toolName, status, login, duration)
			} else {
				metrics.RecordToolInvocation(ctx, toolName, status, duration)
			}

			if serviceName != "" {
				metrics.RecordUpstreamRequest(ctx, serviceName, operation, status, duration)
			}
		}

		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}
