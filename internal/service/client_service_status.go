package service

import (
	"context"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/store"
	"github.com/MKhiriev/field-crm/internal/utils"
	"github.com/MKhiriev/field-crm/models"
)

type clientStatusService struct {
	conn   Connectivity
	sync   SyncService
	queue  store.QueueRepository
	schema store.SchemaInspector
	token  string
}

// NewClientStatusService builds the [StatusService]. token is the API token
// whose expiry is reported; it may be empty.
func NewClientStatusService(conn Connectivity, syncService SyncService, queue store.QueueRepository, schema store.SchemaInspector, token string) StatusService {
	return &clientStatusService{conn: conn, sync: syncService, queue: queue, schema: schema, token: token}
}

func (s *clientStatusService) Status(ctx context.Context) models.StatusResponse {
	log := logger.FromContext(ctx)

	resp := models.StatusResponse{
		Connectivity:   s.conn.Status(),
		Sync:           s.sync.Status(),
		LastSync:       s.sync.LastResult(),
		StorageHealthy: true,
	}

	if err := s.schema.Ping(ctx); err != nil {
		log.Err(err).Str("func", "clientStatusService.Status").Msg("local store unhealthy")
		resp.StorageHealthy = false
	}

	if n, err := s.queue.Len(ctx); err == nil {
		resp.PendingWrites = n
	} else {
		resp.StorageHealthy = false
	}

	if v, err := s.schema.SchemaVersion(ctx); err == nil {
		resp.SchemaVersion = v
	}

	if s.token != "" {
		exp, ok, err := utils.TokenExpiry(s.token)
		switch {
		case err != nil:
			log.Debug().Err(err).Msg("api token expiry unknown")
		case ok:
			resp.TokenExpiresAt = &exp
		}
	}

	return resp
}
