package server

import "context"

// Server is the lifecycle shared by the local listeners.
type Server interface {
	// Listen binds the listener. It must be called before RunServer.
	Listen() error

	// RunServer serves until Shutdown is called. A nil error is returned for
	// a regular shutdown.
	RunServer() error

	// Shutdown stops accepting new work and waits for in-flight requests
	// until ctx is done.
	Shutdown(ctx context.Context)

	// Addr is the bound address, empty before Listen.
	Addr() string
}
