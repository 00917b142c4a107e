package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	myGRPC "github.com/MKhiriev/field-crm/internal/handler/grpc"
	"github.com/MKhiriev/field-crm/internal/logger"
)

type grpcServer struct {
	address  string
	handler  *myGRPC.Handler
	server   *grpc.Server
	listener net.Listener

	logger *logger.Logger
}

func newGRPCServer(handler *myGRPC.Handler, address string, logger *logger.Logger) *grpcServer {
	srv := grpc.NewServer()
	handler.Register(srv)

	return &grpcServer{address: address, handler: handler, server: srv, logger: logger}
}

func (g *grpcServer) Listen() error {
	lis, err := net.Listen("tcp", g.address)
	if err != nil {
		return fmt.Errorf("%w: grpc %s: %w", ErrListen, g.address, err)
	}
	g.listener = lis
	return nil
}

func (g *grpcServer) RunServer() error {
	g.logger.Info().Str("address", g.Addr()).Msg("gRPC server listening")
	if err := g.server.Serve(g.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("gRPC server Serve: %w", err)
	}
	return nil
}

// Shutdown stops gracefully, falling back to a hard stop when ctx ends
// first.
func (g *grpcServer) Shutdown(ctx context.Context) {
	g.logger.Info().Msg("gRPC server Shutdown")
	g.handler.Shutdown()

	stopped := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		g.server.Stop()
		<-stopped
	}
	if g.listener != nil {
		g.listener.Close()
	}
}

func (g *grpcServer) Addr() string {
	if g.listener == nil {
		return ""
	}
	return g.listener.Addr().String()
}
