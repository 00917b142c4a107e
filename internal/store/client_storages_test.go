package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/field-crm/internal/config"
	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/models"
)

func newTestStorages(t *testing.T, path string) *ClientStorages {
	t.Helper()
	s, err := NewClientStorages(context.Background(), config.ClientStorage{DB: config.ClientDB{DSN: path}}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// TestClientStorages_SurvivesRestart verifies that pending writes and cached
// records outlive the connection and that reopening is idempotent.
func TestClientStorages_SurvivesRestart(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "data", "fieldcrm.db")

	s := newTestStorages(t, path)
	v, err := s.Schema.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	localID, err := s.Queue.Enqueue(ctx, models.PendingWrite{
		Collection:     models.CollectionVisits,
		Operation:      models.OperationCreate,
		Payload:        json.RawMessage(`{"date":"2026-05-01","client_id":1,"property_id":2,"plot_id":3}`),
		IdempotencyKey: "k-1",
	})
	require.NoError(t, err)

	rec, err := models.RecordFromPayload(models.CollectionVisits, models.PlaceholderID(localID), json.RawMessage(`{"date":"2026-05-01"}`))
	require.NoError(t, err)
	require.NoError(t, s.Records.Put(ctx, rec))
	require.NoError(t, s.Close())

	reopened := newTestStorages(t, path)
	v, err = reopened.Schema.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	queued, err := reopened.Queue.List(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, localID, queued[0].LocalID)
	assert.Equal(t, "k-1", queued[0].IdempotencyKey)

	got, err := reopened.Records.Get(ctx, models.CollectionVisits, models.PlaceholderID(localID))
	require.NoError(t, err)
	assert.True(t, got.Pending())
}

func TestClientStorages_Collections(t *testing.T) {
	s := newTestStorages(t, filepath.Join(t.TempDir(), "fieldcrm.db"))

	names, err := s.Records.Collections(testContext())
	require.NoError(t, err)
	for _, c := range models.Collections() {
		assert.Contains(t, names, c.Name)
	}
}

// TestClientStorages_DrainSeesWritesEnqueuedMidway verifies that writes added
// while a drain is in progress are visited by the same drain.
func TestClientStorages_DrainSeesWritesEnqueuedMidway(t *testing.T) {
	ctx := testContext()
	s := newTestStorages(t, filepath.Join(t.TempDir(), "fieldcrm.db"))

	enqueue := func(key string) int64 {
		id, err := s.Queue.Enqueue(ctx, models.PendingWrite{
			Collection: models.CollectionClients, Operation: models.OperationCreate,
			Payload: json.RawMessage(`{"name":"x"}`), IdempotencyKey: key,
		})
		require.NoError(t, err)
		return id
	}
	first := enqueue("a")
	second := enqueue("b")

	var seen []int64
	var late int64
	for w, err := range s.Queue.Drain(ctx, DrainOptions{PageSize: 1}) {
		require.NoError(t, err)
		seen = append(seen, w.LocalID)
		require.NoError(t, s.Queue.Remove(ctx, w.LocalID))
		if late == 0 {
			late = enqueue("c")
		}
	}

	assert.Equal(t, []int64{first, second, late}, seen)
	n, err := s.Queue.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClientStorages_ReplaceCollectionKeepsPinnedRows(t *testing.T) {
	ctx := testContext()
	s := newTestStorages(t, filepath.Join(t.TempDir(), "fieldcrm.db"))

	mk := func(id int64, name string) models.Record {
		r, err := models.NewRecord(models.CollectionClients, id, map[string]string{"name": name})
		require.NoError(t, err)
		return r
	}
	require.NoError(t, s.Records.Put(ctx, mk(1, "old"), mk(2, "edited offline"), mk(3, "gone"), mk(-7, "new offline")))

	err := s.Records.ReplaceCollection(ctx, models.CollectionClients, []models.Record{mk(1, "fresh"), mk(2, "server copy")}, []int64{2})
	require.NoError(t, err)

	all, err := s.Records.GetAll(ctx, models.CollectionClients)
	require.NoError(t, err)

	byID := map[int64]string{}
	for _, r := range all {
		c, err := models.DecodeRecord[models.Client](r)
		require.NoError(t, err)
		byID[r.ID] = c.Name
	}
	assert.Equal(t, map[int64]string{-7: "new offline", 1: "fresh", 2: "edited offline"}, byID)
}

func TestClientStorages_BackoffBookkeeping(t *testing.T) {
	ctx := testContext()
	s := newTestStorages(t, filepath.Join(t.TempDir(), "fieldcrm.db"))

	id, err := s.Queue.Enqueue(ctx, models.PendingWrite{
		Collection: models.CollectionPlots, Operation: models.OperationUpdate, RecordID: 4,
		Payload: json.RawMessage(`{"name":"North"}`), IdempotencyKey: "p",
	})
	require.NoError(t, err)

	next := time.Now().Add(time.Hour)
	require.NoError(t, s.Queue.RecordFailure(ctx, id, "502 bad gateway", next))
	require.NoError(t, s.Queue.RecordFailure(ctx, id, "503", next))

	queued, err := s.Queue.List(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, 2, queued[0].Attempts)
	assert.Equal(t, "503", queued[0].LastError)
	require.NotNil(t, queued[0].NextAttemptAt)
	assert.WithinDuration(t, next, *queued[0].NextAttemptAt, time.Second)

	require.NoError(t, s.Queue.ResetBackoff(ctx))
	queued, err = s.Queue.List(ctx)
	require.NoError(t, err)
	assert.True(t, queued[0].NextAttemptAt.Before(time.Now().Add(time.Second)))

	require.NoError(t, s.Queue.MapID(ctx, id, models.CollectionPlots, 99))
	serverID, ok, err := s.Queue.ResolveID(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(99), serverID)
}

func TestClientStorages_ReplaceCollectionIsIdempotent(t *testing.T) {
	ctx := testContext()
	s := newTestStorages(t, filepath.Join(t.TempDir(), "fieldcrm.db"))

	fetch := func() []models.Record {
		var out []models.Record
		for _, body := range []string{`{"id":1,"name":"Soja"}`, `{"id":2,"name":"Milho"}`} {
			r, err := models.RecordFromEntity(models.CollectionCultures, []byte(body))
			require.NoError(t, err)
			out = append(out, r)
		}
		return out
	}

	require.NoError(t, s.Records.ReplaceCollection(ctx, models.CollectionCultures, fetch(), nil))
	first, err := s.Records.GetAll(ctx, models.CollectionCultures)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.Records.ReplaceCollection(ctx, models.CollectionCultures, fetch(), nil))
	second, err := s.Records.GetAll(ctx, models.CollectionCultures)
	require.NoError(t, err)

	require.Len(t, second, 2)
	for i := range first {
		assert.Equal(t, string(first[i].Data), string(second[i].Data))
		assert.True(t, first[i].UpdatedAt.Equal(second[i].UpdatedAt), "row %d was rewritten", first[i].ID)
	}
}

// большие справочники не упираются в лимит bind-переменных SQLite
func TestClientStorages_ReplaceCollectionLargeCollection(t *testing.T) {
	ctx := testContext()
	s := newTestStorages(t, filepath.Join(t.TempDir(), "fieldcrm.db"))

	mk := func(from, to int64) []models.Record {
		out := make([]models.Record, 0, to-from+1)
		for id := from; id <= to; id++ {
			r, err := models.NewRecord(models.CollectionClients, id, map[string]string{"name": "client"})
			require.NoError(t, err)
			out = append(out, r)
		}
		return out
	}

	require.NoError(t, s.Records.Put(ctx, mk(1, 12000)...))
	all, err := s.Records.GetAll(ctx, models.CollectionClients)
	require.NoError(t, err)
	require.Len(t, all, 12000)

	// сервер больше не отдаёт 1..1000, но клиент 5 закреплён очередью
	require.NoError(t, s.Records.ReplaceCollection(ctx, models.CollectionClients, mk(1001, 12500), []int64{5}))

	all, err = s.Records.GetAll(ctx, models.CollectionClients)
	require.NoError(t, err)
	require.Len(t, all, 11501)
	assert.Equal(t, int64(5), all[0].ID)
	assert.Equal(t, int64(1001), all[1].ID)
	assert.Equal(t, int64(12500), all[len(all)-1].ID)
}
