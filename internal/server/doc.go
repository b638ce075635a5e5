// Package server provides the optional HTTP status server for a running
// bridgewatch session.
//
// This package is internal to bridgewatch and handles all HTTP concerns:
//
//   - REST API: JSON session snapshot at "/api/session"
//   - Server-Sent Events: live poll records at "/api/sse"
//   - Prometheus metrics at "/metrics"
//   - Liveness at "/healthz"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
