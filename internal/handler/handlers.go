package handler

import (
	nethttp "net/http"

	"github.com/MKhiriev/field-crm/internal/config"
	"github.com/MKhiriev/field-crm/internal/handler/grpc"
	"github.com/MKhiriev/field-crm/internal/handler/http"
	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/service"
	"github.com/MKhiriev/field-crm/models"
)

type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler
}

// NewHandlers creates a handler for every listener configured in cfg.
// shell may be nil.
func NewHandlers(services *service.ClientServices, conn service.Connectivity, shell nethttp.Handler, buildInfo models.AppBuildInfo, cfg config.ClientServer, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, shell, buildInfo, logger)
	}
	if cfg.GRPCAddress != "" {
		handlers.GRPC = grpc.NewHandler(conn, logger)
	}

	if handlers.HTTP == nil && handlers.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
