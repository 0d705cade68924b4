// Package simbrief provides a read-only client for the SimBrief dispatch API.
//
// SimBrief generates operational flight plans (OFPs) for flight simulation.
// The API exposes the latest generated OFP for a username through the
// xml.fetcher endpoint; with json=1 it returns the plan as JSON. Nearly every
// numeric value in that JSON is encoded as a string, so the types in this
// package keep them as strings and leave interpretation to the renderer.
//
// The client never writes anything to SimBrief and performs a single bounded
// request per call with no retries.
package simbrief
