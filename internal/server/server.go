// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/field-crm/internal/config"
	"github.com/MKhiriev/field-crm/internal/handler"
	"github.com/MKhiriev/field-crm/internal/logger"
)

const defaultShutdownTimeout = 10 * time.Second

// Servers runs every configured listener together.
type Servers struct {
	servers         []Server
	shutdownTimeout time.Duration
	logger          *logger.Logger
}

func NewServers(handlers *handler.Handlers, cfg config.ClientServer, logger *logger.Logger) (*Servers, error) {
	logger.Info().Msg("creating new servers...")

	s := &Servers{shutdownTimeout: cfg.ShutdownTimeout, logger: logger}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = defaultShutdownTimeout
	}

	if cfg.HTTPAddress != "" && handlers.HTTP != nil {
		s.servers = append(s.servers, newHTTPServer(handlers.HTTP, cfg.HTTPAddress, logger))
	}
	if cfg.GRPCAddress != "" && handlers.GRPC != nil {
		s.servers = append(s.servers, newGRPCServer(handlers.GRPC, cfg.GRPCAddress, logger))
	}

	if len(s.servers) == 0 {
		return nil, errNoServersAreCreated
	}

	return s, nil
}

// Listen binds every listener. On failure the ones already bound are
// released.
func (s *Servers) Listen() error {
	for i, srv := range s.servers {
		if err := srv.Listen(); err != nil {
			ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			for _, bound := range s.servers[:i] {
				bound.Shutdown(ctx)
			}
			cancel()
			return err
		}
	}
	return nil
}

// Addrs returns the bound addresses in configuration order.
func (s *Servers) Addrs() []string {
	addrs := make([]string, 0, len(s.servers))
	for _, srv := range s.servers {
		addrs = append(addrs, srv.Addr())
	}
	return addrs
}

// Run serves until ctx is done or a listener fails, then shuts every
// listener down within the configured timeout. Listen must have succeeded.
func (s *Servers) Run(ctx context.Context) error {
	errs := make(chan error, len(s.servers))
	for _, srv := range s.servers {
		go func() {
			errs <- srv.RunServer()
		}()
	}

	var runErr error
	remaining := len(s.servers)
	select {
	case <-ctx.Done():
	case runErr = <-errs:
		remaining--
		s.logger.Err(runErr).Msg("server stopped before shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	for _, srv := range s.servers {
		srv.Shutdown(shutdownCtx)
	}

	for range remaining {
		if err := <-errs; err != nil {
			runErr = errors.Join(runErr, err)
		}
	}

	s.logger.Info().Msg("servers shut down gracefully")
	return runErr
}
