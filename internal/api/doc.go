// Package api implements the presenter-facing HTTP API and WebSocket hub.
//
// This package provides:
//   - Read endpoints for coordinator health, firmware histories and the
//     firmware changelog, per-device catalog sensors and diagnostics
//   - A bearer-protected endpoint to prune the history of a removed device
//   - WebSocket channels carrying firmware changes and health reports
//   - Prometheus exposition on /metrics
//   - Middleware stack (request ID, logging, recovery, CORS, request metrics)
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// # Security
//
// When security.jwt.secret is set, DELETE /api/v1/firmware/{id} requires an
// HS256 bearer token and WebSocket connections require the same token in
// the token query parameter. Read endpoints are always open.
package api
