package http

import (
	"net/http"
	"sync"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/service"
	"github.com/MKhiriev/field-crm/models"
)

type Handler struct {
	services  *service.ClientServices
	shell     http.Handler
	buildInfo models.AppBuildInfo

	// closing is closed by CloseStreams to end open event streams.
	closing   chan struct{}
	closeOnce sync.Once

	logger *logger.Logger
}

// NewHandler builds the local API handler. shell serves everything outside
// /api; nil disables it.
func NewHandler(services *service.ClientServices, shell http.Handler, buildInfo models.AppBuildInfo, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:  services,
		shell:     shell,
		buildInfo: buildInfo,
		closing:   make(chan struct{}),
		logger:    logger,
	}
}

// CloseStreams ends every open websocket event stream. Hijacked connections
// are not tracked by [http.Server.Shutdown], so the server calls this on
// shutdown.
func (h *Handler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.closing) })
}
