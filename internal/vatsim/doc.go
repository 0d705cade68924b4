// Package vatsim provides a read-only client for the VATSIM network data
// services: the v3 data feed (all connected pilots, controllers and ATIS
// stations, refreshed every 15 seconds) and the METAR service.
//
// Both services are public and unauthenticated. The client performs a single
// bounded request per call with no retries; callers that need fresher data
// simply call again.
package vatsim
