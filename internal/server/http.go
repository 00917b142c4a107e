package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	myHTTP "github.com/MKhiriev/field-crm/internal/handler/http"
	"github.com/MKhiriev/field-crm/internal/logger"
)

const readHeaderTimeout = 10 * time.Second

type httpServer struct {
	address  string
	server   *http.Server
	listener net.Listener

	logger *logger.Logger
}

func newHTTPServer(handler *myHTTP.Handler, address string, logger *logger.Logger) *httpServer {
	srv := &http.Server{
		Handler:           handler.Init(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	// hijacked websocket connections are not tracked by Shutdown
	srv.RegisterOnShutdown(handler.CloseStreams)

	return &httpServer{address: address, server: srv, logger: logger}
}

func (h *httpServer) Listen() error {
	lis, err := net.Listen("tcp", h.address)
	if err != nil {
		return fmt.Errorf("%w: http %s: %w", ErrListen, h.address, err)
	}
	h.listener = lis
	return nil
}

func (h *httpServer) RunServer() error {
	h.logger.Info().Str("address", h.Addr()).Msg("HTTP server listening")
	if err := h.server.Serve(h.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server Serve: %w", err)
	}
	return nil
}

func (h *httpServer) Shutdown(ctx context.Context) {
	if err := h.server.Shutdown(ctx); err != nil {
		// ошибки закрытия Listener или истёк таймаут
		h.logger.Err(err).Msg("HTTP server Shutdown")
		h.server.Close()
	}
	if h.listener != nil {
		// Serve may never have run
		h.listener.Close()
	}
}

func (h *httpServer) Addr() string {
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}
