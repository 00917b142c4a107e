package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/models"
)

type queueRepository struct {
	*DB
	logger *logger.Logger
}

func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	return &queueRepository{
		DB:     db,
		logger: logger,
	}
}

func (q *queueRepository) Enqueue(ctx context.Context, w models.PendingWrite) (int64, error) {
	log := logger.FromContext(ctx)

	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	query, args, err := buildEnqueueQuery(w)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var localID int64
	err = q.withRetry(ctx, func(ctx context.Context) error {
		res, err := q.DB.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		localID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Enqueue").
			Str("collection", w.Collection).
			Str("operation", string(w.Operation)).
			Msg("failed to enqueue pending write")
		return 0, fmt.Errorf("failed to enqueue %s %s: %w", w.Operation, w.Collection, err)
	}

	log.Debug().
		Str("func", "queueRepository.Enqueue").
		Str("collection", w.Collection).
		Str("operation", string(w.Operation)).
		Int64("local_id", localID).
		Msg("pending write enqueued")

	return localID, nil
}

func (q *queueRepository) Drain(ctx context.Context, opts DrainOptions) iter.Seq2[models.QueuedWrite, error] {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultDrainPageSize
	}

	var used atomic.Bool
	return func(yield func(models.QueuedWrite, error) bool) {
		if used.Swap(true) {
			return
		}

		var after int64
		for {
			page, err := q.page(ctx, after, pageSize)
			if err != nil {
				yield(models.QueuedWrite{}, err)
				return
			}
			if len(page) == 0 {
				return
			}

			for _, w := range page {
				if err := ctx.Err(); err != nil {
					yield(models.QueuedWrite{}, err)
					return
				}
				if !yield(w, nil) {
					return
				}
				after = w.LocalID
			}
		}
	}
}

func (q *queueRepository) page(ctx context.Context, after int64, limit int) ([]models.QueuedWrite, error) {
	query, args, err := buildDrainPageQuery(after, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return q.queryQueued(ctx, "queueRepository.Drain", query, args)
}

func (q *queueRepository) List(ctx context.Context) ([]models.QueuedWrite, error) {
	query, args, err := buildListQueueQuery()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return q.queryQueued(ctx, "queueRepository.List", query, args)
}

func (q *queueRepository) queryQueued(ctx context.Context, funcName, query string, args []any) ([]models.QueuedWrite, error) {
	log := logger.FromContext(ctx)

	writes := make([]models.QueuedWrite, 0)
	err := q.withRetry(ctx, func(ctx context.Context) error {
		writes = writes[:0]
		rows, err := q.DB.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			w, err := scanQueuedWrite(rows)
			if err != nil {
				return err
			}
			writes = append(writes, w)
		}
		return rows.Err()
	})
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to read pending writes")
		return nil, fmt.Errorf("failed to read pending writes: %w", err)
	}

	return writes, nil
}

func scanQueuedWrite(rows *sql.Rows) (models.QueuedWrite, error) {
	var (
		w         models.QueuedWrite
		operation string
		payload   sql.NullString
		next      sql.NullTime
	)
	err := rows.Scan(
		&w.LocalID,
		&w.Collection,
		&operation,
		&w.RecordID,
		&w.ParentID,
		&payload,
		&w.IdempotencyKey,
		&w.CreatedAt,
		&w.Attempts,
		&w.LastError,
		&next,
	)
	if err != nil {
		return models.QueuedWrite{}, err
	}

	w.Operation = models.Operation(operation)
	if payload.Valid {
		w.Payload = []byte(payload.String)
	}
	if next.Valid {
		t := next.Time
		w.NextAttemptAt = &t
	}
	return w, nil
}

func (q *queueRepository) Remove(ctx context.Context, localID int64) error {
	log := logger.FromContext(ctx)

	writeQuery, writeArgs, err := buildDeletePendingWriteQuery(localID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	attemptQuery, attemptArgs, err := buildDeleteWriteAttemptQuery(localID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = q.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, attemptQuery, attemptArgs...); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, writeQuery, writeArgs...)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrPendingWriteNotFound
		}
		return nil
	})
	if errors.Is(err, ErrPendingWriteNotFound) {
		return fmt.Errorf("local_id %d: %w", localID, ErrPendingWriteNotFound)
	}
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Remove").
			Int64("local_id", localID).
			Msg("failed to remove pending write")
		return fmt.Errorf("failed to remove pending write %d: %w", localID, err)
	}

	return nil
}

func (q *queueRepository) Len(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCountQueueQuery()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var n int
	err = q.withRetry(ctx, func(ctx context.Context) error {
		return q.DB.QueryRowContext(ctx, query, args...).Scan(&n)
	})
	if err != nil {
		log.Err(err).Str("func", "queueRepository.Len").Msg("failed to count pending writes")
		return 0, fmt.Errorf("failed to count pending writes: %w", err)
	}

	return n, nil
}

func (q *queueRepository) RecordFailure(ctx context.Context, localID int64, cause string, nextAttemptAt time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := buildRecordFailureQuery(localID, cause, nextAttemptAt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = q.withRetry(ctx, func(ctx context.Context) error {
		_, err := q.DB.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.RecordFailure").
			Int64("local_id", localID).
			Msg("failed to record write failure")
		return fmt.Errorf("failed to record failure of pending write %d: %w", localID, err)
	}

	return nil
}

func (q *queueRepository) ResetBackoff(ctx context.Context) error {
	log := logger.FromContext(ctx)

	query, args, err := buildResetBackoffQuery(time.Now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = q.withRetry(ctx, func(ctx context.Context) error {
		_, err := q.DB.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "queueRepository.ResetBackoff").Msg("failed to reset backoff")
		return fmt.Errorf("failed to reset backoff: %w", err)
	}

	return nil
}

func (q *queueRepository) MapID(ctx context.Context, localID int64, collection string, serverID int64) error {
	log := logger.FromContext(ctx)

	query, args, err := buildMapIDQuery(localID, collection, serverID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = q.withRetry(ctx, func(ctx context.Context) error {
		_, err := q.DB.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.MapID").
			Int64("local_id", localID).
			Int64("server_id", serverID).
			Msg("failed to map placeholder id")
		return fmt.Errorf("failed to map local id %d: %w", localID, err)
	}

	return nil
}

func (q *queueRepository) ResolveID(ctx context.Context, localID int64) (int64, bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildResolveIDQuery(localID)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var serverID int64
	err = q.withRetry(ctx, func(ctx context.Context) error {
		return q.DB.QueryRowContext(ctx, query, args...).Scan(&serverID)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.ResolveID").
			Int64("local_id", localID).
			Msg("failed to resolve placeholder id")
		return 0, false, fmt.Errorf("failed to resolve local id %d: %w", localID, err)
	}

	return serverID, true, nil
}
