package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/models"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:                 db,
		errorClassificator: NewSQLiteErrorClassifier(),
		logger:             logger.Nop(),
	}
}

func newTestCollectionRepo(t *testing.T, db *sql.DB) CollectionRepository {
	t.Helper()
	return NewCollectionRepository(newDBFromSQL(db), logger.Nop())
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func expectSQL(t *testing.T, build func() (string, []any, error)) string {
	t.Helper()
	query, _, err := build()
	require.NoError(t, err)
	return regexp.QuoteMeta(query)
}

func expectCollections(t *testing.T, mock sqlmock.Sqlmock, names ...string) {
	t.Helper()
	rows := sqlmock.NewRows([]string{"name"})
	for _, n := range names {
		rows.AddRow(n)
	}
	mock.ExpectQuery(expectSQL(t, buildSelectCollectionsQuery)).WillReturnRows(rows)
}

var recordColumns = []string{"id", "collection", "body", "updated_at"}

// ── Get ───────────────────────────────────────────────────────────────────────

func TestCollectionRepository_Get(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	tests := []struct {
		name      string
		setup     func(mock sqlmock.Sqlmock, query string)
		wantErr   error
		wantBody  string
		anyErr    bool
	}{
		{
			name: "found",
			setup: func(mock sqlmock.Sqlmock, query string) {
				mock.ExpectQuery(query).WithArgs("clients", int64(7)).
					WillReturnRows(sqlmock.NewRows(recordColumns).AddRow(int64(7), "clients", `{"id":7,"name":"Fazenda Boa Vista"}`, now))
			},
			wantBody: `{"id":7,"name":"Fazenda Boa Vista"}`,
		},
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock, query string) {
				mock.ExpectQuery(query).WithArgs("clients", int64(7)).WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrRecordNotFound,
		},
		{
			name: "driver error is a storage error",
			setup: func(mock sqlmock.Sqlmock, query string) {
				mock.ExpectQuery(query).WithArgs("clients", int64(7)).WillReturnError(errors.New("boom"))
			},
			wantErr: ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			repo := newTestCollectionRepo(t, db)

			expectCollections(t, mock, "clients")
			tt.setup(mock, expectSQL(t, func() (string, []any, error) { return buildSelectRecordQuery("clients", 7) }))

			rec, err := repo.Get(testContext(), "clients", 7)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(7), rec.ID)
				assert.JSONEq(t, tt.wantBody, string(rec.Data))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestCollectionRepository_UnknownCollection verifies that names missing
// from the schema registry are rejected before any record query runs.
func TestCollectionRepository_UnknownCollection(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestCollectionRepo(t, db)

	expectCollections(t, mock, "clients", "visits")

	_, err := repo.GetAll(testContext(), "invoices")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCollection)

	// registry is cached: no second collections query
	err = repo.Delete(testContext(), "invoices", 1)
	assert.ErrorIs(t, err, ErrUnknownCollection)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── GetAll ────────────────────────────────────────────────────────────────────

func TestCollectionRepository_GetAll_EmptyIsNotAnError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestCollectionRepo(t, db)

	expectCollections(t, mock, "visits")
	mock.ExpectQuery(expectSQL(t, func() (string, []any, error) { return buildSelectRecordsQuery("visits") })).
		WithArgs("visits").
		WillReturnRows(sqlmock.NewRows(recordColumns))

	records, err := repo.GetAll(testContext(), "visits")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── Put ───────────────────────────────────────────────────────────────────────

func TestCollectionRepository_Put(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestCollectionRepo(t, db)

	rec, err := models.NewRecord("clients", 3, models.Client{Name: "Sítio Esperança"})
	require.NoError(t, err)

	expectCollections(t, mock, "clients")
	mock.ExpectExec(expectSQL(t, func() (string, []any, error) { return buildUpsertRecordsQuery([]models.Record{rec}) })).
		WithArgs("clients", int64(3), string(rec.Data), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Put(testContext(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionRepository_Put_NoRecordsIsNoOp(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestCollectionRepo(t, db)

	require.NoError(t, repo.Put(testContext()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── ReplaceCollection ─────────────────────────────────────────────────────────

func TestCollectionRepository_ReplaceCollection_SkipsPinnedAndPlaceholders(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestCollectionRepo(t, db)

	keep := models.Record{ID: 1, Collection: "visits", Data: []byte(`{"id":1}`)}
	pinned := models.Record{ID: 2, Collection: "visits", Data: []byte(`{"id":2}`)}
	placeholder := models.Record{ID: -4, Collection: "visits", Data: []byte(`{"id":-4}`)}

	expectCollections(t, mock, "visits")
	mock.ExpectBegin()
	mock.ExpectExec(expectSQL(t, func() (string, []any, error) {
		return buildDeleteStaleRecordsQuery("visits", []int64{1, 2})
	})).WithArgs("visits", 0, "[1,2]").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(expectSQL(t, func() (string, []any, error) {
		return buildUpsertRecordsQuery([]models.Record{keep})
	})).WithArgs("visits", int64(1), `{"id":1}`, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceCollection(testContext(), "visits", []models.Record{keep, pinned, placeholder}, []int64{2})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionRepository_ReplaceCollection_RollsBackOnFailure(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestCollectionRepo(t, db)

	rec := models.Record{ID: 1, Collection: "cultures", Data: []byte(`{"id":1}`)}

	expectCollections(t, mock, "cultures")
	mock.ExpectBegin()
	mock.ExpectExec(expectSQL(t, func() (string, []any, error) {
		return buildDeleteStaleRecordsQuery("cultures", []int64{1})
	})).WithArgs("cultures", 0, "[1]").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(expectSQL(t, func() (string, []any, error) {
		return buildUpsertRecordsQuery([]models.Record{rec})
	})).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.ReplaceCollection(testContext(), "cultures", []models.Record{rec}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionRepository_ReplaceCollection_UpsertsInBatches(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestCollectionRepo(t, db)

	records := make([]models.Record, upsertBatchSize+1)
	keep := make([]int64, len(records))
	for i := range records {
		id := int64(i + 1)
		records[i] = models.Record{ID: id, Collection: "varieties", Data: []byte(`{}`)}
		keep[i] = id
	}

	expectCollections(t, mock, "varieties")
	mock.ExpectBegin()
	mock.ExpectExec(expectSQL(t, func() (string, []any, error) {
		return buildDeleteStaleRecordsQuery("varieties", keep)
	})).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(expectSQL(t, func() (string, []any, error) {
		return buildUpsertRecordsQuery(records[:upsertBatchSize])
	})).WillReturnResult(sqlmock.NewResult(0, upsertBatchSize))
	mock.ExpectExec(expectSQL(t, func() (string, []any, error) {
		return buildUpsertRecordsQuery(records[upsertBatchSize:])
	})).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceCollection(testContext(), "varieties", records, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── SwapPlaceholder ───────────────────────────────────────────────────────────

func TestCollectionRepository_SwapPlaceholder(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestCollectionRepo(t, db)

	server := models.Record{ID: 812, Collection: "visits", Data: []byte(`{"id":812}`)}

	expectCollections(t, mock, "visits")
	mock.ExpectBegin()
	mock.ExpectExec(expectSQL(t, func() (string, []any, error) { return buildDeleteRecordQuery("visits", -3) })).
		WithArgs("visits", int64(-3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(expectSQL(t, func() (string, []any, error) { return buildUpsertRecordsQuery([]models.Record{server}) })).
		WithArgs("visits", int64(812), `{"id":812}`, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SwapPlaceholder(testContext(), "visits", -3, server))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── query builders ────────────────────────────────────────────────────────────

func TestBuildDeleteStaleRecordsQuery(t *testing.T) {
	const want = "DELETE FROM records WHERE collection = ? AND id >= ? AND id NOT IN (SELECT value FROM json_each(?))"

	tests := []struct {
		name     string
		keep     []int64
		wantKeep string
	}{
		{name: "nothing kept", keep: nil, wantKeep: "[]"},
		{name: "kept ids", keep: []int64{4, 9}, wantKeep: "[4,9]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildDeleteStaleRecordsQuery("plots", tt.keep)
			require.NoError(t, err)
			assert.Equal(t, want, query)
			assert.Equal(t, []any{"plots", 0, tt.wantKeep}, args)
		})
	}

	// список не раздувает число bind-переменных
	keep := make([]int64, 20000)
	for i := range keep {
		keep[i] = int64(i + 1)
	}
	_, args, err := buildDeleteStaleRecordsQuery("plots", keep)
	require.NoError(t, err)
	assert.Len(t, args, 3)
}

func TestBuildUpsertRecordsQuery_UsesConflictClause(t *testing.T) {
	query, args, err := buildUpsertRecordsQuery([]models.Record{
		{ID: 1, Collection: "clients", Data: []byte(`{"id":1}`)},
		{ID: 2, Collection: "clients", Data: []byte(`{"id":2}`)},
	})
	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO records (collection,id,body,updated_at) VALUES (?,?,?,?),(?,?,?,?)")
	assert.Contains(t, query, "ON CONFLICT (collection, id) DO UPDATE")
	assert.Contains(t, query, "WHERE records.body <> excluded.body")
	assert.Len(t, args, 8)
}
