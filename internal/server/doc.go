// Package server provides the HTTP surface of the upload relay: submission,
// progress streaming, OAuth remote provisioning, and history.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Upload Pipeline
//
// POST /api/upload stores the file locally, registers an upload session, and
// detaches a transfer supervisor goroutine. The session id returned to the
// client keys the two progress transports:
//
//   - GET /api/upload/stream streams Server-Sent Events (data: <json> frames)
//   - GET /api/upload/ws delivers the same events over a WebSocket
//
// Both drain the session's event queue until a terminal event (done, close,
// or error) and then evict the session from the registry.
//
// # OAuth Remote Provisioning
//
// GET /api/auth/login starts the Google authorization code flow; the
// callback exchanges the code, resolves the user's email, and provisions the
// rclone drive remote from the returned token. Auth state lives in an
// in-memory cookie-keyed store; the streaming endpoints themselves are
// unauthenticated.
package server
