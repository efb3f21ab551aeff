// Package server defines the fixed wire payloads and shared utility helpers
// that are reused across handler and relay logic.
package server

import "strings"

const (
	// greetingPayload is sent to every client immediately after accept.
	greetingPayload = "Hello"

	// farewellPayload is sent to a client that requested disconnect.
	farewellPayload = "Bye!"

	// terminateToken is the reserved command prefix a client sends to end
	// its session. Matching is case-sensitive and prefix-only, so any
	// message starting with the token terminates the session.
	terminateToken = ":end"
)

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
