package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/migrations"
)

const (
	busyRetryBase     = 20 * time.Millisecond
	busyRetryAttempts = 4
)

type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}

// SchemaVersion returns the applied migration version.
func (db *DB) SchemaVersion(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, err := migrations.Version(db.DB)
	if err != nil {
		return 0, classifyStorageError(err)
	}
	return v, nil
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return classifyStorageError(db.PingContext(ctx))
}

// withRetry runs fn again while the classifier reports the failure as
// retryable (busy or locked database). The final error is classified into a
// storage sentinel.
func (db *DB) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(busyRetryAttempts, retry.NewExponential(busyRetryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && db.errorClassificator != nil && db.errorClassificator.Classify(err) == Retryable {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return classifyStorageError(err)
	}
	return nil
}

// inTx runs fn inside a transaction, retrying busy databases.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return db.withRetry(ctx, func(ctx context.Context) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
		}
		defer tx.Rollback()

		if err = fn(tx); err != nil {
			return err
		}

		if err = tx.Commit(); err != nil {
			return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
		}
		return nil
	})
}
