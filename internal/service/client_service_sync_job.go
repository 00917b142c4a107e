package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/store"
	"github.com/MKhiriev/field-crm/models"
)

const defaultRetryInterval = 30 * time.Second

type clientSyncJob struct {
	syncService SyncService
	conn        Connectivity
	queue       store.QueueRepository
	notifier    Notifier
	interval    time.Duration
	logger      *logger.Logger

	mu          sync.Mutex
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup

	pendingMu sync.Mutex
	pending   models.SyncTrigger
	wake      chan struct{}
}

// NewClientSyncJob creates a job that runs syncService on reconnects, on
// explicit triggers and every retryInterval while online with a non-empty
// queue. The job is idle until Start is called.
func NewClientSyncJob(syncService SyncService, conn Connectivity, queue store.QueueRepository, notifier Notifier, retryInterval time.Duration, logger *logger.Logger) SyncJob {
	if retryInterval <= 0 {
		retryInterval = defaultRetryInterval
	}
	return &clientSyncJob{
		syncService: syncService,
		conn:        conn,
		queue:       queue,
		notifier:    notifier,
		interval:    retryInterval,
		logger:      logger,
		wake:        make(chan struct{}, 1),
	}
}

// Start stops any previously running job, subscribes to connectivity changes
// and launches the worker. The worker exits when ctx is cancelled or Stop is
// called.
func (j *clientSyncJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(j.logger.WithContext(ctx))
	j.cancel = cancel

	connected := j.conn.Status().Connected
	var stateMu sync.Mutex
	j.unsubscribe = j.conn.Subscribe(func(state models.ConnectivityState) {
		if j.notifier != nil {
			st := state
			j.notifier.Publish(models.Event{Type: models.EventConnectivity, At: state.ChangedAt, Connectivity: &st})
		}

		stateMu.Lock()
		reconnected := !connected && state.Connected
		connected = state.Connected
		stateMu.Unlock()

		if reconnected {
			j.logger.Info().Str("source", state.Source).Msg("connectivity restored, scheduling sync")
			j.Trigger(models.TriggerReconnect)
		}
	})

	j.wg.Add(1)
	j.mu.Unlock()

	go j.run(jobCtx)
}

func (j *clientSyncJob) run(ctx context.Context) {
	defer j.wg.Done()
	t := time.NewTicker(j.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.wake:
			if trigger, ok := j.take(); ok {
				j.sync(ctx, trigger)
			}
		case <-t.C:
			if j.retryDue(ctx) {
				j.sync(ctx, models.TriggerRetry)
			}
		}
	}
}

// Trigger schedules a cycle. A pending reconnect or manual trigger is never
// downgraded to a retry.
func (j *clientSyncJob) Trigger(trigger models.SyncTrigger) {
	j.pendingMu.Lock()
	if j.pending == "" || (j.pending == models.TriggerRetry && trigger.IgnoresBackoff()) {
		j.pending = trigger
	}
	j.pendingMu.Unlock()

	select {
	case j.wake <- struct{}{}:
	default:
	}
}

func (j *clientSyncJob) take() (models.SyncTrigger, bool) {
	j.pendingMu.Lock()
	defer j.pendingMu.Unlock()
	trigger := j.pending
	j.pending = ""
	return trigger, trigger != ""
}

func (j *clientSyncJob) retryDue(ctx context.Context) bool {
	if !j.conn.Status().Connected {
		return false
	}
	n, err := j.queue.Len(ctx)
	if err != nil {
		j.logger.Err(err).Str("func", "clientSyncJob.retryDue").Msg("failed to count pending writes")
		return false
	}
	return n > 0
}

func (j *clientSyncJob) sync(ctx context.Context, trigger models.SyncTrigger) {
	_, err := j.syncService.Sync(ctx, trigger)
	switch {
	case err == nil:
	case errors.Is(err, ErrSyncInProgress):
		j.logger.Debug().Str("trigger", string(trigger)).Msg("sync already running, trigger coalesced")
	default:
		j.logger.Err(err).Str("func", "clientSyncJob.sync").Str("trigger", string(trigger)).Msg("sync failed")
	}
}

// Stop cancels the worker and blocks until it has exited. Safe to call when
// the job is not running.
func (j *clientSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	unsubscribe := j.unsubscribe
	j.cancel = nil
	j.unsubscribe = nil
	j.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
