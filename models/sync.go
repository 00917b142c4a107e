package models

import "time"

// ConnectivityState is the process-wide view of whether the remote API is
// reachable.
type ConnectivityState struct {
	Connected bool      `json:"connected"`
	Source    string    `json:"source,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// SyncTrigger names what started a sync cycle.
type SyncTrigger string

const (
	// TriggerReconnect is fired by a disconnected to connected transition.
	TriggerReconnect SyncTrigger = "reconnect"
	// TriggerManual is an explicit request from a user or CLI command.
	TriggerManual SyncTrigger = "manual"
	// TriggerRetry is the periodic retry tick while online.
	TriggerRetry SyncTrigger = "retry"
)

// IgnoresBackoff reports whether queued writes are replayed regardless of
// their retry schedule.
func (t SyncTrigger) IgnoresBackoff() bool {
	return t != TriggerRetry
}

// SyncStatus is the state of the sync engine.
type SyncStatus string

const (
	SyncStatusIdle    SyncStatus = "idle"
	SyncStatusSyncing SyncStatus = "syncing"
)

// SyncResult summarises one drain-then-refresh cycle.
type SyncResult struct {
	Trigger   SyncTrigger `json:"trigger"`
	StartedAt time.Time   `json:"started_at"`
	EndedAt   time.Time   `json:"ended_at"`

	// Replayed counts writes confirmed by the remote API and removed.
	Replayed int `json:"replayed"`
	// Failed counts writes whose replay was rejected or failed.
	Failed int `json:"failed"`
	// Deferred counts writes skipped because a dependency is still queued or
	// because their retry time has not come yet.
	Deferred int `json:"deferred"`

	Refreshed         []string `json:"refreshed,omitempty"`
	RefreshFailed     []string `json:"refresh_failed,omitempty"`
	RemainingInQueue  int      `json:"remaining_in_queue"`
	DrainInterruption string   `json:"drain_interruption,omitempty"`
}

// Duration returns how long the cycle took.
func (r SyncResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// WarmReport lists the outcome of a cache warm-up per collection.
type WarmReport struct {
	Warmed map[string]int    `json:"warmed"`
	Failed map[string]string `json:"failed,omitempty"`
}

// EventType names the notifications published to subscribers.
type EventType string

const (
	EventConnectivity  EventType = "connectivity"
	EventSyncCompleted EventType = "sync_completed"
	EventRecordChanged EventType = "record_changed"
)

// Event is a notification delivered to UI layers.
type Event struct {
	Type         EventType          `json:"type"`
	At           time.Time          `json:"at"`
	Connectivity *ConnectivityState `json:"connectivity,omitempty"`
	Sync         *SyncResult        `json:"sync,omitempty"`
	Collection   string             `json:"collection,omitempty"`
}
