// Package grpc exposes the client health over the standard gRPC health
// checking protocol so supervisors can probe a headless client.
package grpc

import (
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/service"
	"github.com/MKhiriev/field-crm/models"
)

// RemoteService is the health service name that follows connectivity to the
// remote API. The empty service name reports the process itself and is
// SERVING while the handler runs, online or not.
const RemoteService = "fieldcrm.remote"

// Handler is the root gRPC transport handler.
type Handler struct {
	health *health.Server
	conn   service.Connectivity

	mu          sync.Mutex
	unsubscribe func()

	logger *logger.Logger
}

func NewHandler(conn service.Connectivity, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	h := &Handler{
		health: health.NewServer(),
		conn:   conn,
		logger: logger,
	}
	h.setRemote(conn.Status())
	return h
}

// Register adds the health service to s and starts following connectivity.
func (h *Handler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unsubscribe == nil {
		h.unsubscribe = h.conn.Subscribe(h.setRemote)
		h.setRemote(h.conn.Status())
	}
}

// Shutdown reports NOT_SERVING for every service and stops following
// connectivity.
func (h *Handler) Shutdown() {
	h.mu.Lock()
	unsubscribe := h.unsubscribe
	h.unsubscribe = nil
	h.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	h.health.Shutdown()
}

func (h *Handler) setRemote(state models.ConnectivityState) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if state.Connected {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(RemoteService, status)
	h.logger.Debug().Str("service", RemoteService).Stringer("status", status).Msg("health status updated")
}
