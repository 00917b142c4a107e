// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/field-crm/internal/adapter"
	"github.com/MKhiriev/field-crm/internal/config"
	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/mock"
	"github.com/MKhiriev/field-crm/internal/store"
	"github.com/MKhiriev/field-crm/models"
)

var testNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func seqOf(writes ...models.QueuedWrite) iter.Seq2[models.QueuedWrite, error] {
	return func(yield func(models.QueuedWrite, error) bool) {
		for _, w := range writes {
			if !yield(w, nil) {
				return
			}
		}
	}
}

type syncSvcMocks struct {
	records *mock.MockCollectionRepository
	queue   *mock.MockQueueRepository
	adapter *mock.MockServerAdapter
}

// newTestSyncSvc — хелпер для создания clientSyncService с моками
func newTestSyncSvc(t *testing.T, ctrl *gomock.Controller) (*clientSyncService, syncSvcMocks) {
	t.Helper()
	m := syncSvcMocks{
		records: mock.NewMockCollectionRepository(ctrl),
		queue:   mock.NewMockQueueRepository(ctrl),
		adapter: mock.NewMockServerAdapter(ctrl),
	}
	svc := NewClientSyncService(m.records, m.queue, m.adapter, nil, 5*time.Second, time.Minute).(*clientSyncService)
	svc.now = func() time.Time { return testNow }
	return svc, m
}

// expectRefresh ожидает обновление всех справочных коллекций без ошибок.
func expectRefresh(m syncSvcMocks) {
	n := len(models.ReferenceCollections())
	m.queue.EXPECT().List(gomock.Any()).Return(nil, nil)
	m.adapter.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil).Times(n)
	m.records.EXPECT().ReplaceCollection(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(n)
}

func queued(localID int64, collection string, op models.Operation, recordID int64, payload string) models.QueuedWrite {
	return models.QueuedWrite{PendingWrite: models.PendingWrite{
		LocalID:        localID,
		Collection:     collection,
		Operation:      op,
		RecordID:       recordID,
		Payload:        json.RawMessage(payload),
		IdempotencyKey: "key",
	}}
}

// ── Sync ─────────────────────────────────────────────────────────────────────

func TestClientSyncService_Sync_ReplaysCreateAndSwapsPlaceholder(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestSyncSvc(t, ctrl)

	w := queued(1, "clients", models.OperationCreate, 0, `{"name":"Fazenda Sol"}`)
	server := mustRecord(t, "clients", 812, models.Client{Name: "Fazenda Sol"})

	m.queue.EXPECT().Drain(gomock.Any(), gomock.Any()).Return(seqOf(w))
	m.adapter.EXPECT().Create(gomock.Any(), "clients", w.Payload).Return(server, nil)
	gomock.InOrder(
		m.queue.EXPECT().MapID(gomock.Any(), int64(1), "clients", int64(812)).Return(nil),
		m.queue.EXPECT().Remove(gomock.Any(), int64(1)).Return(nil),
		m.records.EXPECT().SwapPlaceholder(gomock.Any(), "clients", int64(-1), server).Return(nil),
	)
	expectRefresh(m)
	m.queue.EXPECT().Len(gomock.Any()).Return(0, nil)

	res, err := svc.Sync(context.Background(), models.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Replayed)
	assert.Zero(t, res.Failed)
	assert.Zero(t, res.RemainingInQueue)
	assert.Equal(t, models.ReferenceCollections(), res.Refreshed)
	assert.Equal(t, models.SyncStatusIdle, svc.Status())
	require.NotNil(t, svc.LastResult())
	assert.Equal(t, models.TriggerManual, svc.LastResult().Trigger)
}

func TestClientSyncService_Sync_RejectedWriteStaysQueued(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestSyncSvc(t, ctrl)

	w := queued(2, "visits", models.OperationUpdate, 30, `{"notes":"x"}`)
	w.Attempts = 1

	m.queue.EXPECT().Drain(gomock.Any(), gomock.Any()).Return(seqOf(w))
	m.adapter.EXPECT().Update(gomock.Any(), "visits", int64(30), w.Payload).
		Return(models.Record{}, &adapter.RemoteError{StatusCode: 422, Message: "date in the future"})
	m.queue.EXPECT().RecordFailure(gomock.Any(), int64(2), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, cause string, next time.Time) error {
			assert.Contains(t, cause, "422")
			// вторая попытка: base*2 ± 10% джиттера
			delay := next.Sub(testNow)
			assert.GreaterOrEqual(t, delay, 9*time.Second)
			assert.LessOrEqual(t, delay, 11*time.Second)
			return nil
		})
	expectRefresh(m)
	m.queue.EXPECT().Len(gomock.Any()).Return(1, nil)

	res, err := svc.Sync(context.Background(), models.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Zero(t, res.Replayed)
	assert.Equal(t, 1, res.RemainingInQueue)
}

// ── порядок записей одной сущности ──────────────────────────────────────────

func TestClientSyncService_Sync_RejectedWriteHoldsLaterWritesOfSameRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestSyncSvc(t, ctrl)

	update := queued(1, "visits", models.OperationUpdate, 30, `{"notes":"ferrugem"}`)
	del := queued(2, "visits", models.OperationDelete, 30, ``)
	photo := queued(3, "photos", models.OperationCreate, 0, `{"visit_id":30,"data":"/9g="}`)
	photo.ParentID = 30
	other := queued(4, "clients", models.OperationDelete, 7, ``)

	m.queue.EXPECT().Drain(gomock.Any(), gomock.Any()).Return(seqOf(update, del, photo, other))
	m.adapter.EXPECT().Update(gomock.Any(), "visits", int64(30), update.Payload).
		Return(models.Record{}, &adapter.RemoteError{StatusCode: 422, Message: "date in the future"})
	m.queue.EXPECT().RecordFailure(gomock.Any(), int64(1), gomock.Any(), gomock.Any()).Return(nil)
	// удаление визита 30 и фото к нему не отправляются: Delete и UploadPhoto без ожиданий
	m.adapter.EXPECT().Delete(gomock.Any(), "clients", int64(7)).Return(nil)
	m.queue.EXPECT().Remove(gomock.Any(), int64(4)).Return(nil)
	m.records.EXPECT().Delete(gomock.Any(), "clients", int64(7)).Return(nil)
	expectRefresh(m)
	m.queue.EXPECT().Len(gomock.Any()).Return(3, nil)

	res, err := svc.Sync(context.Background(), models.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.Deferred)
	assert.Equal(t, 1, res.Replayed)
}

func TestClientSyncService_Sync_BackoffHoldsLaterWritesOfSameRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestSyncSvc(t, ctrl)

	later := testNow.Add(time.Minute)
	update := queued(1, "clients", models.OperationUpdate, 5, `{"name":"Fazenda Lua"}`)
	update.NextAttemptAt = &later
	newer := queued(2, "clients", models.OperationUpdate, 5, `{"name":"Fazenda Sol"}`)

	// ни одного сетевого вызова для клиента 5
	m.queue.EXPECT().Drain(gomock.Any(), gomock.Any()).Return(seqOf(update, newer))
	expectRefresh(m)
	m.queue.EXPECT().Len(gomock.Any()).Return(2, nil)

	res, err := svc.Sync(context.Background(), models.TriggerRetry)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Deferred)
	assert.Zero(t, res.Replayed)
}

func TestClientSyncService_Sync_HeldPlaceholderMatchesServerID(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestSyncSvc(t, ctrl)

	// первая запись адресует клиента плейсхолдером, вторая уже серверным id
	update := queued(3, "clients", models.OperationUpdate, -1, `{"name":"a"}`)
	del := queued(4, "clients", models.OperationDelete, 812, ``)

	m.queue.EXPECT().Drain(gomock.Any(), gomock.Any()).Return(seqOf(update, del))
	m.queue.EXPECT().ResolveID(gomock.Any(), int64(1)).Return(int64(812), true, nil)
	m.adapter.EXPECT().Update(gomock.Any(), "clients", int64(812), update.Payload).Return(models.Record{}, errOffline)
	m.queue.EXPECT().RecordFailure(gomock.Any(), int64(3), gomock.Any(), gomock.Any()).Return(nil)
	m.queue.EXPECT().Len(gomock.Any()).Return(2, nil)

	res, err := svc.Sync(context.Background(), models.TriggerReconnect)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Deferred)
}

func TestClientSyncService_Sync_NetworkFailureSkipsRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestSyncSvc(t, ctrl)

	w := queued(3, "clients", models.OperationDelete, 5, ``)
	m.queue.EXPECT().Drain(gomock.Any(), gomock.Any()).Return(seqOf(w))
	m.adapter.EXPECT().Delete(gomock.Any(), "clients", int64(5)).Return(errOffline)
	m.queue.EXPECT().RecordFailure(gomock.Any(), int64(3), gomock.Any(), gomock.Any()).Return(nil)
	m.queue.EXPECT().Len(gomock.Any()).Return(1, nil)

	res, err := svc.Sync(context.Background(), models.TriggerReconnect)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Empty(t, res.Refreshed)
	assert.Equal(t, models.ReferenceCollections(), res.RefreshFailed)
}

func TestClientSyncService_Sync_RetryHonoursBackoff(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestSyncSvc(t, ctrl)

	later := testNow.Add(time.Minute)
	w := queued(4, "clients", models.OperationUpdate, 5, `{"name":"x"}`)
	w.NextAttemptAt = &later

	m.queue.EXPECT().Drain(gomock.Any(), gomock.Any()).Return(seqOf(w))
	expectRefresh(m)
	m.queue.EXPECT().Len(gomock.Any()).Return(1, nil)

	res, err := svc.Sync(context.Background(), models.TriggerRetry)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deferred)
	assert.Zero(t, res.Failed)
}

func TestClientSyncService_Sync_DefersWriteWithUnsyncedDependency(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestSyncSvc(t, ctrl)

	// фото к визиту, который сам ещё в очереди
	photo := queued(6, "photos", models.OperationCreate, 0, `{"visit_id":-5,"data":"/9g="}`)
	photo.ParentID = -5

	m.queue.EXPECT().Drain(gomock.Any(), gomock.Any()).Return(seqOf(photo))
	m.queue.EXPECT().ResolveID(gomock.Any(), int64(5)).Return(int64(0), false, nil)
	expectRefresh(m)
	m.queue.EXPECT().Len(gomock.Any()).Return(1, nil)

	res, err := svc.Sync(context.Background(), models.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deferred)
}

func TestClientSyncService_Sync_ResolvesPlaceholderDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestSyncSvc(t, ctrl)

	photo := queued(6, "photos", models.OperationCreate, 0, `{"visit_id":-5,"caption":"soja","data":"/9g="}`)
	photo.ParentID = -5
	uploaded := mustRecord(t, "photos", 70, map[string]any{"visit_id": 812})

	m.queue.EXPECT().Drain(gomock.Any(), gomock.Any()).Return(seqOf(photo))
	m.queue.EXPECT().ResolveID(gomock.Any(), int64(5)).Return(int64(812), true, nil).AnyTimes()
	m.adapter.EXPECT().UploadPhoto(gomock.Any(), int64(812), gomock.Any()).
		DoAndReturn(func(_ context.Context, visitID int64, p models.Photo) (models.Record, error) {
			assert.Equal(t, int64(812), p.VisitID)
			assert.Equal(t, "soja", p.Caption)
			assert.Equal(t, []byte{0xff, 0xd8}, p.Data)
			return uploaded, nil
		})
	m.queue.EXPECT().MapID(gomock.Any(), int64(6), "photos", int64(70)).Return(nil)
	m.queue.EXPECT().Remove(gomock.Any(), int64(6)).Return(nil)
	m.records.EXPECT().SwapPlaceholder(gomock.Any(), "photos", int64(-6), uploaded).Return(nil)
	expectRefresh(m)
	m.queue.EXPECT().Len(gomock.Any()).Return(0, nil)

	res, err := svc.Sync(context.Background(), models.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Replayed)
}

func TestClientSyncService_Sync_MapFailureKeepsWriteQueued(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestSyncSvc(t, ctrl)

	w := queued(1, "clients", models.OperationCreate, 0, `{"name":"a"}`)
	m.queue.EXPECT().Drain(gomock.Any(), gomock.Any()).Return(seqOf(w))
	m.adapter.EXPECT().Create(gomock.Any(), "clients", gomock.Any()).Return(mustRecord(t, "clients", 9, models.Client{Name: "a"}), nil)
	m.queue.EXPECT().MapID(gomock.Any(), int64(1), "clients", int64(9)).Return(store.ErrStorage)
	expectRefresh(m)
	m.queue.EXPECT().Len(gomock.Any()).Return(1, nil)

	res, err := svc.Sync(context.Background(), models.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.RemainingInQueue)
}

func TestClientSyncService_Sync_InProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	// без ожиданий: ни одного сетевого вызова
	svc, _ := newTestSyncSvc(t, ctrl)
	svc.running.Store(true)

	_, err := svc.Sync(context.Background(), models.TriggerManual)
	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.Equal(t, models.SyncStatusSyncing, svc.Status())
	assert.Nil(t, svc.LastResult())
}

func TestClientSyncService_Sync_PublishesCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestSyncSvc(t, ctrl)
	notifier := NewNotifier(logger.Nop())
	svc.notifier = notifier

	events, cancel := notifier.Subscribe(1)
	defer cancel()

	m.queue.EXPECT().Drain(gomock.Any(), gomock.Any()).Return(seqOf())
	expectRefresh(m)
	m.queue.EXPECT().Len(gomock.Any()).Return(0, nil)

	_, err := svc.Sync(context.Background(), models.TriggerManual)
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, models.EventSyncCompleted, ev.Type)
		require.NotNil(t, ev.Sync)
		assert.Equal(t, models.TriggerManual, ev.Sync.Trigger)
	default:
		t.Fatal("sync_completed was not published")
	}
}

// ── against a real store ─────────────────────────────────────────────────────

func newTestStorages(t *testing.T) *store.ClientStorages {
	t.Helper()
	s, err := store.NewClientStorages(context.Background(),
		config.ClientStorage{DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "fieldcrm.db")}}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func enqueueClient(t *testing.T, s *store.ClientStorages, name string) int64 {
	t.Helper()
	ctx := context.Background()
	payload, err := json.Marshal(models.Client{Name: name})
	require.NoError(t, err)
	localID, err := s.Queue.Enqueue(ctx, models.PendingWrite{
		Collection: "clients", Operation: models.OperationCreate, Payload: payload, IdempotencyKey: name,
	})
	require.NoError(t, err)
	placeholder, err := models.RecordFromPayload("clients", models.PlaceholderID(localID), payload)
	require.NoError(t, err)
	require.NoError(t, s.Records.Put(ctx, placeholder))
	return localID
}

func TestClientSyncService_Sync_DrainsQueueInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestStorages(t)
	ctx := context.Background()

	names := []string{"a", "b", "c", "d", "e"}
	for _, n := range names {
		enqueueClient(t, s, n)
	}

	remote := mock.NewMockServerAdapter(ctrl)
	var sent []string
	nextID := int64(100)
	remote.EXPECT().Create(gomock.Any(), "clients", gomock.Any()).Times(len(names)).
		DoAndReturn(func(_ context.Context, _ string, payload json.RawMessage) (models.Record, error) {
			var c models.Client
			require.NoError(t, json.Unmarshal(payload, &c))
			sent = append(sent, c.Name)
			nextID++
			return models.RecordFromPayload("clients", nextID, payload)
		})
	remote.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("refresh not under test")).AnyTimes()

	svc := NewClientSyncService(s.Records, s.Queue, remote, nil, time.Second, time.Minute)
	res, err := svc.Sync(ctx, models.TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, names, sent)
	assert.Equal(t, len(names), res.Replayed)
	assert.Zero(t, res.RemainingInQueue)

	cached, err := s.Records.GetAll(ctx, "clients")
	require.NoError(t, err)
	require.Len(t, cached, len(names))
	for _, r := range cached {
		assert.False(t, r.Pending(), "placeholder %d was not swapped", r.ID)
	}
}

func TestClientSyncService_Sync_RejectedWriteKeepsQueueLength(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestStorages(t)
	ctx := context.Background()

	enqueueClient(t, s, "rejected")
	before, err := s.Queue.Len(ctx)
	require.NoError(t, err)

	remote := mock.NewMockServerAdapter(ctrl)
	remote.EXPECT().Create(gomock.Any(), "clients", gomock.Any()).
		Return(models.Record{}, &adapter.RemoteError{StatusCode: 422, Message: "invalid"})
	remote.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	svc := NewClientSyncService(s.Records, s.Queue, remote, nil, time.Second, time.Minute)
	res, err := svc.Sync(ctx, models.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, before, res.RemainingInQueue)

	writes, err := s.Queue.List(ctx)
	require.NoError(t, err)
	require.Len(t, writes, 1)
	assert.Equal(t, 1, writes[0].Attempts)
	assert.Contains(t, writes[0].LastError, "422")
}

func TestClientSyncService_Sync_ConcurrentCallsRunOneCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestStorages(t)
	ctx := context.Background()
	enqueueClient(t, s, "slow")

	entered := make(chan struct{})
	release := make(chan struct{})
	remote := mock.NewMockServerAdapter(ctrl)
	remote.EXPECT().Create(gomock.Any(), "clients", gomock.Any()).Times(1).
		DoAndReturn(func(_ context.Context, _ string, payload json.RawMessage) (models.Record, error) {
			close(entered)
			<-release
			return models.RecordFromPayload("clients", 500, payload)
		})
	remote.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	svc := NewClientSyncService(s.Records, s.Queue, remote, nil, time.Second, time.Minute)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Sync(ctx, models.TriggerManual)
		assert.NoError(t, err)
	}()

	<-entered
	for range 3 {
		_, err := svc.Sync(ctx, models.TriggerReconnect)
		assert.ErrorIs(t, err, ErrSyncInProgress)
	}
	close(release)
	wg.Wait()

	n, err := s.Queue.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
