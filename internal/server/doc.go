// Package server exposes the latest check report over HTTP.
//
// Routes:
//   - GET /api/status: the most recent report as JSON (204 before the first cycle)
//   - GET /api/sse: Server-Sent Events stream of reports as cycles complete
//   - GET /healthz: liveness probe
//
// The server is read-only and never triggers a check.
package server
