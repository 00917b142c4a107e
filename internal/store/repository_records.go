package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/models"
)

type collectionRepository struct {
	*DB
	logger *logger.Logger

	mu    sync.Mutex
	known map[string]struct{}
}

func NewCollectionRepository(db *DB, logger *logger.Logger) CollectionRepository {
	return &collectionRepository{
		DB:     db,
		logger: logger,
	}
}

// checkCollection verifies name against the collections registered by the
// applied migrations. The registry is loaded once per repository.
func (c *collectionRepository) checkCollection(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.known == nil {
		names, err := c.loadCollections(ctx)
		if err != nil {
			return err
		}
		c.known = make(map[string]struct{}, len(names))
		for _, n := range names {
			c.known[n] = struct{}{}
		}
	}

	if _, ok := c.known[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return nil
}

func (c *collectionRepository) Collections(ctx context.Context) ([]string, error) {
	return c.loadCollections(ctx)
}

func (c *collectionRepository) loadCollections(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectCollectionsQuery()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var names []string
	err = c.withRetry(ctx, func(ctx context.Context) error {
		names = names[:0]
		rows, err := c.DB.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		log.Err(err).Str("func", "collectionRepository.Collections").Msg("failed to list collections")
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	return names, nil
}

func (c *collectionRepository) Put(ctx context.Context, records ...models.Record) error {
	log := logger.FromContext(ctx)
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if err := c.checkCollection(ctx, r.Collection); err != nil {
			return err
		}
	}

	var err error
	if len(records) > upsertBatchSize {
		err = c.inTx(ctx, func(tx *sql.Tx) error {
			return upsertRecords(ctx, tx, records)
		})
	} else {
		query, args, buildErr := buildUpsertRecordsQuery(records)
		if buildErr != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, buildErr)
		}
		err = c.withRetry(ctx, func(ctx context.Context) error {
			_, err := c.DB.ExecContext(ctx, query, args...)
			return err
		})
	}
	if err != nil {
		log.Err(err).
			Str("func", "collectionRepository.Put").
			Str("collection", records[0].Collection).
			Int("count", len(records)).
			Msg("failed to upsert records")
		return fmt.Errorf("failed to save %s records: %w", records[0].Collection, err)
	}

	return nil
}

func (c *collectionRepository) Get(ctx context.Context, collection string, id int64) (models.Record, error) {
	log := logger.FromContext(ctx)
	if err := c.checkCollection(ctx, collection); err != nil {
		return models.Record{}, err
	}

	query, args, err := buildSelectRecordQuery(collection, id)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var record models.Record
	err = c.withRetry(ctx, func(ctx context.Context) error {
		var body string
		err := c.DB.QueryRowContext(ctx, query, args...).Scan(&record.ID, &record.Collection, &body, &record.UpdatedAt)
		record.Data = []byte(body)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, fmt.Errorf("%s/%d: %w", collection, id, ErrRecordNotFound)
	}
	if err != nil {
		log.Err(err).
			Str("func", "collectionRepository.Get").
			Str("collection", collection).
			Int64("id", id).
			Msg("failed to get record")
		return models.Record{}, fmt.Errorf("failed to get %s/%d: %w", collection, id, err)
	}

	return record, nil
}

func (c *collectionRepository) GetAll(ctx context.Context, collection string) ([]models.Record, error) {
	log := logger.FromContext(ctx)
	if err := c.checkCollection(ctx, collection); err != nil {
		return nil, err
	}

	query, args, err := buildSelectRecordsQuery(collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	records := make([]models.Record, 0)
	err = c.withRetry(ctx, func(ctx context.Context) error {
		records = records[:0]
		rows, err := c.DB.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				r    models.Record
				body string
			)
			if err := rows.Scan(&r.ID, &r.Collection, &body, &r.UpdatedAt); err != nil {
				return err
			}
			r.Data = []byte(body)
			records = append(records, r)
		}
		return rows.Err()
	})
	if err != nil {
		log.Err(err).
			Str("func", "collectionRepository.GetAll").
			Str("collection", collection).
			Msg("failed to get records")
		return nil, fmt.Errorf("failed to get %s records: %w", collection, err)
	}

	return records, nil
}

func (c *collectionRepository) Delete(ctx context.Context, collection string, id int64) error {
	log := logger.FromContext(ctx)
	if err := c.checkCollection(ctx, collection); err != nil {
		return err
	}

	query, args, err := buildDeleteRecordQuery(collection, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = c.withRetry(ctx, func(ctx context.Context) error {
		_, err := c.DB.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		log.Err(err).
			Str("func", "collectionRepository.Delete").
			Str("collection", collection).
			Int64("id", id).
			Msg("failed to delete record")
		return fmt.Errorf("failed to delete %s/%d: %w", collection, id, err)
	}

	return nil
}

func (c *collectionRepository) ReplaceCollection(ctx context.Context, collection string, records []models.Record, pinned []int64) error {
	log := logger.FromContext(ctx)
	if err := c.checkCollection(ctx, collection); err != nil {
		return err
	}

	byID := make(map[int64]models.Record, len(records))
	for _, r := range records {
		if r.ID < 0 || slices.Contains(pinned, r.ID) {
			continue
		}
		r.Collection = collection
		byID[r.ID] = r
	}
	fresh := make([]models.Record, 0, len(byID))
	keep := slices.Clone(pinned)
	for _, id := range slices.Sorted(maps.Keys(byID)) {
		fresh = append(fresh, byID[id])
		keep = append(keep, id)
	}
	slices.Sort(keep)
	keep = slices.Compact(keep)

	// Unchanged rows are neither deleted nor rewritten, so a refresh with
	// identical server data leaves the table byte for byte as it was.
	deleteQuery, deleteArgs, err := buildDeleteStaleRecordsQuery(collection, keep)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = c.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return err
		}
		return upsertRecords(ctx, tx, fresh)
	})
	if err != nil {
		log.Err(err).
			Str("func", "collectionRepository.ReplaceCollection").
			Str("collection", collection).
			Int("count", len(fresh)).
			Int("pinned", len(pinned)).
			Msg("failed to replace collection")
		return fmt.Errorf("failed to replace %s: %w", collection, err)
	}

	return nil
}

// upsertRecords writes records in batches of upsertBatchSize rows.
func upsertRecords(ctx context.Context, tx *sql.Tx, records []models.Record) error {
	for batch := range slices.Chunk(records, upsertBatchSize) {
		query, args, err := buildUpsertRecordsQuery(batch)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

func (c *collectionRepository) SwapPlaceholder(ctx context.Context, collection string, placeholderID int64, record models.Record) error {
	log := logger.FromContext(ctx)
	if err := c.checkCollection(ctx, collection); err != nil {
		return err
	}

	record.Collection = collection
	deleteQuery, deleteArgs, err := buildDeleteRecordQuery(collection, placeholderID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	upsertQuery, upsertArgs, err := buildUpsertRecordsQuery([]models.Record{record})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = c.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, upsertQuery, upsertArgs...)
		return err
	})
	if err != nil {
		log.Err(err).
			Str("func", "collectionRepository.SwapPlaceholder").
			Str("collection", collection).
			Int64("placeholder_id", placeholderID).
			Int64("id", record.ID).
			Msg("failed to swap placeholder record")
		return fmt.Errorf("failed to swap %s/%d: %w", collection, placeholderID, err)
	}

	return nil
}
