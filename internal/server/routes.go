// Package server wires gateway HTTP handlers into a ServeMux.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all gateway
// routes: the health check and the WebSocket endpoint for the given relay.
func SetupRoutes(relay *Relay) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/ws", NewWebSocketHandler(relay))
	return mux
}
