// Package oauth implements the OAuth 2.1 authorization server that gates
// access to the skybrief MCP server.
//
// The package plays two roles at once: it is an authorization server for MCP
// clients (authorize, token, registration and metadata endpoints) and an OAuth
// client of Google, to which the actual authentication is delegated. User
// consent per MCP client is memoized in HMAC-signed browser cookies so that a
// returning client skips the consent page entirely.
//
// Identity is reduced to a login (the local part of the verified Google email
// address) which is checked against a static allow-list before any token is
// minted.
package oauth
