// Package cmd implements the command-line interface for skybrief.
//
// This package provides the following commands:
//   - brief: Print a SimBrief flight plan summary to the terminal
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
