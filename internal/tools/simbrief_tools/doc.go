// Package simbrief_tools provides MCP tools for SimBrief flight plans.
//
// This package implements MCP (Model Context Protocol) tools that wrap the
// SimBrief dispatch client, exposing a pilot's latest generated operational
// flight plan (OFP) to AI assistants.
//
// # Available Tools
//
//   - simbrief_fetch_flightplan: Fetch and summarize the latest OFP
//     (routing, fuel, weights, times, weather)
//   - simbrief_fetch_route: Fetch only the filed route string
//
// # Username Resolution
//
// Both tools accept an optional 'username' parameter naming the SimBrief
// account to query. If omitted, the server's configured default pilot is
// used; when neither is available the tool returns an error.
package simbrief_tools
