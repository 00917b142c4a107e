package store

import (
	"context"
	"iter"
	"time"

	"github.com/MKhiriev/field-crm/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/store_mock.go -package=mock

// CollectionRepository is the local cache of named record collections.
type CollectionRepository interface {
	// Put upserts records keyed by (collection, id).
	Put(ctx context.Context, records ...models.Record) error
	Get(ctx context.Context, collection string, id int64) (models.Record, error)
	// GetAll returns every cached record of collection; empty when none.
	GetAll(ctx context.Context, collection string) ([]models.Record, error)
	Delete(ctx context.Context, collection string, id int64) error
	// ReplaceCollection overwrites the collection with records in a single
	// transaction. Placeholder rows and rows whose id is in pinned are left
	// untouched: they are neither deleted nor overwritten.
	ReplaceCollection(ctx context.Context, collection string, records []models.Record, pinned []int64) error
	// SwapPlaceholder replaces the placeholder row with the server record.
	SwapPlaceholder(ctx context.Context, collection string, placeholderID int64, record models.Record) error
	// Collections lists the collection names registered in the schema.
	Collections(ctx context.Context) ([]string, error)
}

// DrainOptions tunes [QueueRepository.Drain].
type DrainOptions struct {
	// PageSize is the number of writes loaded per query. Zero uses a default.
	PageSize int
}

// QueueRepository is the durable pending-write queue.
type QueueRepository interface {
	// Enqueue persists w and returns its auto-increment local id.
	Enqueue(ctx context.Context, w models.PendingWrite) (int64, error)
	// Drain lazily yields queued writes oldest first. Writes enqueued during
	// the iteration with a larger local id are yielded too. The sequence is
	// single use.
	Drain(ctx context.Context, opts DrainOptions) iter.Seq2[models.QueuedWrite, error]
	// Remove deletes a write and its retry bookkeeping after a confirmed replay.
	Remove(ctx context.Context, localID int64) error
	Len(ctx context.Context) (int, error)
	List(ctx context.Context) ([]models.QueuedWrite, error)
	// RecordFailure bumps the attempt counter and schedules the next attempt.
	RecordFailure(ctx context.Context, localID int64, cause string, nextAttemptAt time.Time) error
	// ResetBackoff makes every queued write due now.
	ResetBackoff(ctx context.Context) error
	// MapID records the server id assigned to the record created by localID.
	MapID(ctx context.Context, localID int64, collection string, serverID int64) error
	// ResolveID returns the server id mapped to localID, if any.
	ResolveID(ctx context.Context, localID int64) (int64, bool, error)
}

// SchemaInspector reports on the local database itself.
type SchemaInspector interface {
	SchemaVersion(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}
