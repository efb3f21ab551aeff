// Package server implements the core TCP chat relay and its WebSocket gateway.
//
// The implementation is organized into specialized files for configuration,
// the slot pool, per-connection sessions, the accept loop, and the gateway
// HTTP handlers to keep the codebase maintainable and testable as the
// project grows.
package server
