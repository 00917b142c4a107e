package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/field-crm/internal/config"
	"github.com/MKhiriev/field-crm/internal/logger"
)

// ClientStorages groups the client-side repositories into a single value
// passed to the service layer.
type ClientStorages struct {
	// Records is the cache of named collections.
	Records CollectionRepository

	// Queue is the durable pending-write queue.
	Queue QueueRepository

	// Schema reports the applied migration version and database health.
	Schema SchemaInspector

	db *DB
}

// NewClientStorages initialises the client storage layer:
//  1. Opens an SQLite connection to cfg.DB.DSN, creating the database file if
//     it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate]. Opening an existing
//     database with the same or an older version is idempotent.
//  3. Wires the collection and queue repositories to the connection.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migration failed: %w", ErrStorage, err)
	}

	return newClientStorages(db, logger), nil
}

func newClientStorages(db *DB, logger *logger.Logger) *ClientStorages {
	return &ClientStorages{
		Records: NewCollectionRepository(db, logger),
		Queue:   NewQueueRepository(db, logger),
		Schema:  db,
		db:      db,
	}
}

// Close releases the database connection.
func (s *ClientStorages) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
