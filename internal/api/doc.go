// Package api implements knxcore's HTTP status API and decode-stream
// WebSocket.
//
// It exposes exactly four endpoints: a liveness check, the last
// image-builder result for a program id, a list of recent decode
// sessions, and a WebSocket feed of decoded signal spans as they are
// produced. All responses are JSON; no HTML or CSV is rendered here.
//
// # Architecture
//
// The server sits downstream of the decode pipeline: internal/recorder
// answers the build/session queries from SQLite, and the pipeline
// pushes each decoded signal.Span into the Hub for WebSocket
// broadcast. The server has no write endpoints — builds and decode
// sessions are started by cmd/knxcore, not by API calls.
//
// # Graceful Degradation
//
// The decode-stream WebSocket and the session/build queries are
// independent: a client can poll GET /v1/decode/sessions even if no
// stream is currently connected, and vice versa.
package api
