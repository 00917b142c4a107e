// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/field-crm/models"
)

const (
	recordsTable       = "records"
	collectionsTable   = "collections"
	pendingWritesTable = "pending_writes"
	writeAttemptsTable = "write_attempts"
	idMapTable         = "id_map"

	defaultDrainPageSize = 50

	// upsertBatchSize keeps one upsert far below the SQLite limit of 32766
	// bound variables; every row binds 4.
	upsertBatchSize = 500
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

var queuedWriteColumns = []string{
	"pw.local_id",
	"pw.collection",
	"pw.operation",
	"pw.record_id",
	"pw.parent_id",
	"pw.payload",
	"pw.idempotency_key",
	"pw.created_at",
	"COALESCE(wa.attempts, 0)",
	"COALESCE(wa.last_error, '')",
	"wa.next_attempt_at",
}

func buildUpsertRecordsQuery(records []models.Record) (string, []any, error) {
	q := psql.Insert(recordsTable).Columns("collection", "id", "body", "updated_at")
	for _, r := range records {
		q = q.Values(r.Collection, r.ID, string(r.Data), r.UpdatedAt.UTC())
	}
	return q.Suffix("ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at " +
		"WHERE records.body <> excluded.body").
		ToSql()
}

func buildSelectRecordQuery(collection string, id int64) (string, []any, error) {
	return psql.Select("id", "collection", "body", "updated_at").
		From(recordsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
}

func buildSelectRecordsQuery(collection string) (string, []any, error) {
	return psql.Select("id", "collection", "body", "updated_at").
		From(recordsTable).
		Where(sq.Eq{"collection": collection}).
		OrderBy("id").
		ToSql()
}

func buildDeleteRecordQuery(collection string, id int64) (string, []any, error) {
	return psql.Delete(recordsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
}

// buildDeleteStaleRecordsQuery removes every server-assigned row of the
// collection whose id is not in keep. Placeholder rows (negative ids) stay.
// keep is bound as one JSON array so its size is not limited by the number
// of bound variables.
func buildDeleteStaleRecordsQuery(collection string, keep []int64) (string, []any, error) {
	if keep == nil {
		keep = []int64{}
	}
	keepJSON, err := json.Marshal(keep)
	if err != nil {
		return "", nil, err
	}
	return psql.Delete(recordsTable).
		Where(sq.Eq{"collection": collection}).
		Where(sq.GtOrEq{"id": 0}).
		Where(sq.Expr("id NOT IN (SELECT value FROM json_each(?))", string(keepJSON))).
		ToSql()
}

func buildSelectCollectionsQuery() (string, []any, error) {
	return psql.Select("name").From(collectionsTable).OrderBy("added_in", "name").ToSql()
}

func buildEnqueueQuery(w models.PendingWrite) (string, []any, error) {
	var payload any
	if len(w.Payload) > 0 {
		payload = string(w.Payload)
	}
	return psql.Insert(pendingWritesTable).
		Columns("collection", "operation", "record_id", "parent_id", "payload", "idempotency_key", "created_at").
		Values(w.Collection, string(w.Operation), w.RecordID, w.ParentID, payload, w.IdempotencyKey, w.CreatedAt.UTC()).
		ToSql()
}

func selectQueuedWrites() sq.SelectBuilder {
	return psql.Select(queuedWriteColumns...).
		From(pendingWritesTable + " pw").
		LeftJoin(writeAttemptsTable + " wa ON wa.local_id = pw.local_id").
		OrderBy("pw.local_id")
}

func buildDrainPageQuery(afterLocalID int64, limit int) (string, []any, error) {
	return selectQueuedWrites().
		Where(sq.Gt{"pw.local_id": afterLocalID}).
		Limit(uint64(limit)).
		ToSql()
}

func buildListQueueQuery() (string, []any, error) {
	return selectQueuedWrites().ToSql()
}

func buildCountQueueQuery() (string, []any, error) {
	return psql.Select("COUNT(*)").From(pendingWritesTable).ToSql()
}

func buildDeletePendingWriteQuery(localID int64) (string, []any, error) {
	return psql.Delete(pendingWritesTable).Where(sq.Eq{"local_id": localID}).ToSql()
}

func buildDeleteWriteAttemptQuery(localID int64) (string, []any, error) {
	return psql.Delete(writeAttemptsTable).Where(sq.Eq{"local_id": localID}).ToSql()
}

func buildRecordFailureQuery(localID int64, cause string, next time.Time) (string, []any, error) {
	return psql.Insert(writeAttemptsTable).
		Columns("local_id", "attempts", "last_error", "next_attempt_at").
		Values(localID, 1, cause, next.UTC()).
		Suffix("ON CONFLICT (local_id) DO UPDATE SET attempts = write_attempts.attempts + 1, last_error = excluded.last_error, next_attempt_at = excluded.next_attempt_at").
		ToSql()
}

func buildResetBackoffQuery(now time.Time) (string, []any, error) {
	return psql.Update(writeAttemptsTable).Set("next_attempt_at", now.UTC()).ToSql()
}

func buildMapIDQuery(localID int64, collection string, serverID int64) (string, []any, error) {
	return psql.Insert(idMapTable).
		Columns("local_id", "collection", "server_id").
		Values(localID, collection, serverID).
		Suffix("ON CONFLICT (local_id) DO UPDATE SET server_id = excluded.server_id").
		ToSql()
}

func buildResolveIDQuery(localID int64) (string, []any, error) {
	return psql.Select("server_id").From(idMapTable).Where(sq.Eq{"local_id": localID}).ToSql()
}
