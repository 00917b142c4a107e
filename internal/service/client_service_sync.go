package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/field-crm/internal/adapter"
	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/store"
	"github.com/MKhiriev/field-crm/models"
)

type clientSyncService struct {
	records  store.CollectionRepository
	queue    store.QueueRepository
	adapter  adapter.ServerAdapter
	notifier Notifier
	backoff  backoffPolicy
	now      func() time.Time

	running atomic.Bool

	mu   sync.RWMutex
	last *models.SyncResult
}

// NewClientSyncService builds the sync engine. retryBase and retryMax bound
// the delay before a failed write is retried by a [models.TriggerRetry] cycle.
func NewClientSyncService(
	records store.CollectionRepository,
	queue store.QueueRepository,
	serverAdapter adapter.ServerAdapter,
	notifier Notifier,
	retryBase, retryMax time.Duration,
) SyncService {
	return &clientSyncService{
		records:  records,
		queue:    queue,
		adapter:  serverAdapter,
		notifier: notifier,
		backoff:  newBackoffPolicy(retryBase, retryMax),
		now:      time.Now,
	}
}

func (s *clientSyncService) Status() models.SyncStatus {
	if s.running.Load() {
		return models.SyncStatusSyncing
	}
	return models.SyncStatusIdle
}

func (s *clientSyncService) LastResult() *models.SyncResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	return &r
}

func (s *clientSyncService) Sync(ctx context.Context, trigger models.SyncTrigger) (models.SyncResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return models.SyncResult{}, ErrSyncInProgress
	}
	defer s.running.Store(false)

	log := logger.FromContext(ctx).With().Str("trigger", string(trigger)).Logger()
	ctx = log.WithContext(ctx)

	result := models.SyncResult{Trigger: trigger, StartedAt: s.now().UTC()}
	log.Info().Msg("sync started")

	networkDown := s.drain(ctx, trigger, &result)
	s.refresh(ctx, networkDown, &result)

	remaining, err := s.queue.Len(ctx)
	if err != nil {
		log.Err(err).Str("func", "clientSyncService.Sync").Msg("failed to count remaining writes")
	}
	result.RemainingInQueue = remaining
	result.EndedAt = s.now().UTC()

	s.mu.Lock()
	last := result
	s.last = &last
	s.mu.Unlock()

	log.Info().
		Int("replayed", result.Replayed).
		Int("failed", result.Failed).
		Int("deferred", result.Deferred).
		Int("remaining", result.RemainingInQueue).
		Strs("refresh_failed", result.RefreshFailed).
		Dur("took", result.Duration()).
		Msg("sync finished")

	if s.notifier != nil {
		s.notifier.Publish(models.Event{Type: models.EventSyncCompleted, At: result.EndedAt, Sync: &last})
	}

	return result, nil
}

// drain replays queued writes oldest first. A failing write stays queued and
// the drain moves on; a write whose placeholder dependency is still queued is
// deferred. Once a write of a record stays queued, every later write to that
// record or referencing it is deferred too, so writes of one record never
// overtake each other. networkDown reports whether the remote API became
// unreachable.
func (s *clientSyncService) drain(ctx context.Context, trigger models.SyncTrigger, result *models.SyncResult) (networkDown bool) {
	log := logger.FromContext(ctx)
	blocked := make(blockedRecords)

	for w, err := range s.queue.Drain(ctx, store.DrainOptions{}) {
		if err != nil {
			if ctx.Err() != nil {
				result.DrainInterruption = ctx.Err().Error()
			} else {
				result.DrainInterruption = err.Error()
				log.Err(err).Str("func", "clientSyncService.drain").Msg("failed to read pending writes")
			}
			return networkDown
		}

		resolved, ok, err := resolveWrite(ctx, s.queue, w.PendingWrite)
		if err != nil {
			log.Err(err).Str("func", "clientSyncService.drain").Int64("local_id", w.LocalID).Msg("failed to resolve placeholders")
			result.Deferred++
			blocked.block(w.PendingWrite, w.PendingWrite)
			continue
		}

		if blocked.touches(w.PendingWrite, resolved) {
			log.Debug().Int64("local_id", w.LocalID).Msg("an earlier write of the same record is still queued, deferring")
			result.Deferred++
			blocked.block(w.PendingWrite, resolved)
			continue
		}

		if !trigger.IgnoresBackoff() && w.NextAttemptAt != nil && w.NextAttemptAt.After(s.now()) {
			result.Deferred++
			blocked.block(w.PendingWrite, resolved)
			continue
		}

		if !ok {
			log.Debug().Int64("local_id", w.LocalID).Msg("write depends on an unsynced record, deferring")
			result.Deferred++
			blocked.block(w.PendingWrite, resolved)
			continue
		}

		record, err := replay(ctx, s.adapter, resolved)
		if err != nil {
			if ctx.Err() != nil {
				result.DrainInterruption = ctx.Err().Error()
				return networkDown
			}
			result.Failed++
			networkDown = networkDown || errors.Is(err, adapter.ErrNetwork)
			s.recordFailure(ctx, w, err)
			blocked.block(w.PendingWrite, resolved)
			continue
		}

		if err := s.confirm(ctx, w, resolved, record); err != nil {
			log.Err(err).Str("func", "clientSyncService.drain").Int64("local_id", w.LocalID).Msg("failed to confirm replayed write")
			result.Failed++
			blocked.block(w.PendingWrite, resolved)
			continue
		}
		result.Replayed++
	}

	return networkDown
}

func (s *clientSyncService) recordFailure(ctx context.Context, w models.QueuedWrite, cause error) {
	log := logger.FromContext(ctx)

	next := s.now().Add(s.backoff.delay(w.Attempts + 1))
	log.Warn().Err(cause).
		Int64("local_id", w.LocalID).
		Str("collection", w.Collection).
		Str("operation", string(w.Operation)).
		Int("attempts", w.Attempts+1).
		Time("next_attempt_at", next).
		Msg("write replay failed, keeping it queued")

	if err := s.queue.RecordFailure(ctx, w.LocalID, cause.Error(), next); err != nil {
		log.Err(err).Str("func", "clientSyncService.recordFailure").Int64("local_id", w.LocalID).Msg("failed to record replay failure")
	}
}

// confirm applies a successful replay to the local store. The id mapping is
// stored before the write is removed so dependants always find it.
func (s *clientSyncService) confirm(ctx context.Context, w models.QueuedWrite, resolved models.PendingWrite, record models.Record) error {
	log := logger.FromContext(ctx)

	if w.Operation == models.OperationCreate {
		if err := s.queue.MapID(ctx, w.LocalID, w.Collection, record.ID); err != nil {
			return fmt.Errorf("map local id %d to %d: %w", w.LocalID, record.ID, err)
		}
	}

	if err := s.queue.Remove(ctx, w.LocalID); err != nil {
		return fmt.Errorf("remove replayed write %d: %w", w.LocalID, err)
	}

	var err error
	switch w.Operation {
	case models.OperationCreate:
		err = s.records.SwapPlaceholder(ctx, w.Collection, models.PlaceholderID(w.LocalID), record)
	case models.OperationUpdate:
		err = s.records.Put(ctx, record)
	case models.OperationDelete:
		err = s.records.Delete(ctx, w.Collection, resolved.RecordID)
	}
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		// the write is confirmed; the next refresh repairs the cache
		log.Warn().Err(err).Str("func", "clientSyncService.confirm").Int64("local_id", w.LocalID).Msg("failed to update cache after replay")
	}

	log.Debug().Int64("local_id", w.LocalID).Int64("record_id", record.ID).Msg("write replayed")
	return nil
}

// refresh re-fetches every reference collection. Rows still targeted by
// queued writes are kept.
func (s *clientSyncService) refresh(ctx context.Context, networkDown bool, result *models.SyncResult) {
	log := logger.FromContext(ctx)

	collections := models.ReferenceCollections()
	if result.DrainInterruption != "" || networkDown {
		result.RefreshFailed = collections
		return
	}

	pinned, err := pinnedIDs(ctx, s.queue)
	if err != nil {
		log.Err(err).Str("func", "clientSyncService.refresh").Msg("failed to read pinned records")
		result.RefreshFailed = collections
		return
	}

	for i, name := range collections {
		records, err := s.adapter.List(ctx, name)
		if err == nil {
			err = s.records.ReplaceCollection(ctx, name, records, pinned[name])
		}
		if err != nil {
			log.Warn().Err(err).Str("collection", name).Msg("failed to refresh collection")
			if errors.Is(err, adapter.ErrNetwork) || ctx.Err() != nil {
				result.RefreshFailed = append(result.RefreshFailed, collections[i:]...)
				return
			}
			result.RefreshFailed = append(result.RefreshFailed, name)
			continue
		}
		result.Refreshed = append(result.Refreshed, name)
	}
}
