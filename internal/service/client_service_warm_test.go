package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/field-crm/internal/mock"
	"github.com/MKhiriev/field-crm/models"
)

// referenceFixture returns two records for every reference collection.
func referenceFixture(t *testing.T) map[string][]models.Record {
	t.Helper()
	out := make(map[string][]models.Record)
	for _, name := range models.ReferenceCollections() {
		out[name] = []models.Record{
			mustRecord(t, name, 1, map[string]any{"name": name + " 1"}),
			mustRecord(t, name, 2, map[string]any{"name": name + " 2"}),
		}
	}
	return out
}

func TestClientWarmService_Warm_IsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestStorages(t)
	ctx := context.Background()

	fixture := referenceFixture(t)
	remote := mock.NewMockServerAdapter(ctrl)
	remote.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, name string) ([]models.Record, error) {
			return fixture[name], nil
		}).AnyTimes()

	svc := NewClientWarmService(s.Records, s.Queue, remote)

	snapshot := func() map[string][]models.Record {
		out := make(map[string][]models.Record)
		for _, name := range models.ReferenceCollections() {
			records, err := s.Records.GetAll(ctx, name)
			require.NoError(t, err)
			out[name] = records
		}
		return out
	}

	first := svc.Warm(ctx)
	assert.Empty(t, first.Failed)
	for _, name := range models.ReferenceCollections() {
		assert.Equal(t, 2, first.Warmed[name])
	}
	before := snapshot()

	second := svc.Warm(ctx)
	assert.Equal(t, first, second)
	assert.Equal(t, before, snapshot())
}

func TestClientWarmService_Warm_FailureKeepsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestStorages(t)
	ctx := context.Background()

	cached := mustRecord(t, "clients", 9, models.Client{Name: "Fazenda em cache"})
	require.NoError(t, s.Records.Put(ctx, cached))

	remote := mock.NewMockServerAdapter(ctrl)
	remote.EXPECT().List(gomock.Any(), "clients").Return(nil, errOffline)
	remote.EXPECT().List(gomock.Any(), gomock.Not("clients")).Return(nil, nil).AnyTimes()

	report := NewClientWarmService(s.Records, s.Queue, remote).Warm(ctx)
	require.Contains(t, report.Failed, "clients")
	assert.NotContains(t, report.Warmed, "clients")

	got, err := s.Records.Get(ctx, "clients", 9)
	require.NoError(t, err)
	assert.JSONEq(t, string(cached.Data), string(got.Data))
}

func TestClientWarmService_Warm_KeepsPinnedRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	records := mock.NewMockCollectionRepository(ctrl)
	queue := mock.NewMockQueueRepository(ctrl)
	remote := mock.NewMockServerAdapter(ctrl)
	ctx := context.Background()

	queue.EXPECT().List(ctx).Return([]models.QueuedWrite{
		{PendingWrite: models.PendingWrite{LocalID: 1, Collection: "visits", Operation: models.OperationUpdate, RecordID: 40}},
	}, nil)
	remote.EXPECT().List(ctx, gomock.Any()).Return(nil, nil).AnyTimes()
	records.EXPECT().ReplaceCollection(ctx, "visits", gomock.Any(), []int64{40}).Return(nil)
	records.EXPECT().ReplaceCollection(ctx, gomock.Not("visits"), gomock.Any(), gomock.Nil()).Return(nil).AnyTimes()

	report := NewClientWarmService(records, queue, remote).Warm(ctx)
	assert.Empty(t, report.Failed)
	assert.Len(t, report.Warmed, len(models.ReferenceCollections()))
}
