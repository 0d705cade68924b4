// Package common provides shared helpers for MCP tool registration.
//
// Its main export is the instrumented tool-handler wrapper, which surrounds a
// tool handler with a tracing span, invocation metrics, and audit logging.
// Tool packages register handlers through it so every invocation is recorded
// the same way, attributed to the authenticated login when the transport
// carries one.
package common
