// Package vatsim_tools provides MCP tools for live VATSIM network data.
//
// This package implements MCP (Model Context Protocol) tools on top of the
// VATSIM data feed and METAR service, giving AI assistants a view of the
// live online flying network.
//
// # Available Tools
//
//   - vatsim_airport_activity: Controllers, ATIS and traffic at an airport
//   - vatsim_find_pilot: Locate a connected pilot by callsign
//   - vatsim_metar: Current METAR for an airport
//
// All airport-scoped tools take an ICAO identifier; matching against
// controller callsigns also covers the common shortened US/Canada forms
// (SFO_TWR for KSFO).
package vatsim_tools
