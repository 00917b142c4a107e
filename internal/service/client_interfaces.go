package service

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/field-crm/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/service_mock.go -package=mock

// Connectivity is the view of the network monitor the services depend on.
// *network.Monitor satisfies it.
type Connectivity interface {
	Status() models.ConnectivityState
	Subscribe(fn func(models.ConnectivityState)) (unsubscribe func())
}

// ConnectivitySwitch adds the manual online/offline override to
// Connectivity.
type ConnectivitySwitch interface {
	Connectivity
	Force(ctx context.Context, connected bool)
	// Release returns to probing and reports the probed state.
	Release(ctx context.Context) models.ConnectivityState
}

// IDGenerator produces idempotency keys.
type IDGenerator interface {
	Generate() string
}

// RecordService serves user-initiated reads and writes. Reads go to the
// remote API when online and fall back to the local cache. Writes go to the
// remote API when online; when offline, or when the call fails with a network
// error, they are queued and an optimistic row is written to the cache.
type RecordService interface {
	// List returns the collection. Stale is set when the records come from the
	// cache. Records created offline (negative ids) are included.
	List(ctx context.Context, collection string) (models.ListResult, error)

	// Get returns a single record. A placeholder id is resolved to the server
	// id once the creating write has been replayed.
	Get(ctx context.Context, collection string, id int64) (models.Record, error)

	// Create validates and sends or queues a new record.
	Create(ctx context.Context, collection string, payload json.RawMessage) (models.WriteResult, error)

	// Update validates and sends or queues a partial update of id.
	Update(ctx context.Context, collection string, id int64, payload json.RawMessage) (models.WriteResult, error)

	// Delete sends or queues the removal of id.
	Delete(ctx context.Context, collection string, id int64) (models.WriteResult, error)

	// AttachPhoto uploads or queues a photo for a visit. visitID may be the
	// placeholder id of a visit created offline.
	AttachPhoto(ctx context.Context, visitID int64, photo models.Photo) (models.WriteResult, error)
}

// QueueService exposes the pending-write queue to UI layers.
type QueueService interface {
	List(ctx context.Context) ([]models.QueuedWrite, error)
	Len(ctx context.Context) (int, error)
	// ResetBackoff makes every queued write due for the next retry cycle.
	ResetBackoff(ctx context.Context) error
}

// SyncService is the sync engine: one cycle drains the pending-write queue
// against the remote API, then refreshes the reference collections.
type SyncService interface {
	// Sync runs one cycle. It returns ErrSyncInProgress without any network
	// call when a cycle is already running. Failed replays do not fail the
	// cycle; they stay queued and are counted in the result.
	Sync(ctx context.Context, trigger models.SyncTrigger) (models.SyncResult, error)

	Status() models.SyncStatus

	// LastResult returns the result of the last finished cycle, or nil.
	LastResult() *models.SyncResult
}

// WarmService preloads reference collections at start-up.
type WarmService interface {
	// Warm never fails: per-collection outcomes are reported and logged.
	Warm(ctx context.Context) models.WarmReport
}

// StatusService assembles the client status shown by UI layers.
type StatusService interface {
	Status(ctx context.Context) models.StatusResponse
}

// Notifier fans events out to subscribers such as the websocket hub and the
// TUI.
type Notifier interface {
	Publish(event models.Event)
	// Subscribe returns a channel buffered to buffer events. Events are dropped
	// for a subscriber whose buffer is full. cancel closes the channel.
	Subscribe(buffer int) (events <-chan models.Event, cancel func())
}

// SyncJob turns connectivity transitions and a retry ticker into serialized
// sync cycles.
type SyncJob interface {
	// Start subscribes to connectivity and launches the worker goroutine.
	Start(ctx context.Context)

	// Trigger schedules a cycle. Triggers arriving while one is pending are
	// coalesced; a reconnect or manual trigger replaces a pending retry.
	Trigger(trigger models.SyncTrigger)

	// Stop unsubscribes and waits for the worker to exit.
	Stop()
}
