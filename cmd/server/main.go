package main

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tyrowin/gorelay/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fmt.Println("Starting relay server...")

	// Create configuration
	config := server.NewConfigFromEnv()
	server.SetConfig(config)

	// Bind the TCP listener; without it no chat service is possible
	listener, err := net.Listen("tcp", config.Port)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", config.Port, err)
	}

	// Create the slot pool and relay
	pool := server.NewPool(config.InitialPoolSize)
	relay := server.NewRelay(pool)

	// Start the WebSocket gateway
	mux := server.SetupRoutes(relay)
	httpServer := server.CreateServer(config.HTTPPort, mux)
	go func() {
		if err := server.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Gateway stopped: %v", err)
		}
	}()

	// Run the accept loop until a shutdown signal arrives
	go func() {
		if err := relay.Serve(listener); err != nil {
			log.Printf("Relay stopped: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	if err := server.ShutdownServer(httpServer, shutdownTimeout); err != nil {
		log.Printf("Gateway shutdown error: %v", err)
	}
	if err := relay.Shutdown(shutdownTimeout); err != nil {
		log.Printf("Relay shutdown error: %v", err)
	}
}
