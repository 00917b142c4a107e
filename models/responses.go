package models

import "time"

// ListResult is what a read of a collection returns to UI layers.
type ListResult struct {
	Collection string   `json:"collection"`
	Records    []Record `json:"records"`
	// Stale is true when the records come from the local cache because the
	// remote API could not be reached.
	Stale bool `json:"stale"`
}

// WriteResult is returned by user-initiated writes.
type WriteResult struct {
	Record Record `json:"record"`
	// Queued is true when the write was stored in the pending-write queue
	// instead of reaching the remote API.
	Queued  bool  `json:"queued"`
	LocalID int64 `json:"local_id,omitempty"`
}

// StatusResponse is served by the local API status endpoint.
type StatusResponse struct {
	Connectivity   ConnectivityState `json:"connectivity"`
	Sync           SyncStatus        `json:"sync"`
	LastSync       *SyncResult       `json:"last_sync,omitempty"`
	PendingWrites  int               `json:"pending_writes"`
	SchemaVersion  int64             `json:"schema_version"`
	StorageHealthy bool              `json:"storage_healthy"`
	TokenExpiresAt *time.Time        `json:"token_expires_at,omitempty"`
}

// ErrorResponse is the JSON error body used by the remote API and mirrored by
// the local API.
type ErrorResponse struct {
	Message string `json:"message"`
}

// QueueResponse lists the pending-write queue in replay order.
type QueueResponse struct {
	Writes []QueuedWrite `json:"writes"`
	Length int           `json:"length"`
}

// Connectivity modes accepted by the manual switch.
const (
	ConnectivityOnline  = "online"
	ConnectivityOffline = "offline"
	ConnectivityAuto    = "auto"
)

// ConnectivityRequest switches the client online, offline or back to
// probing.
type ConnectivityRequest struct {
	Mode string `json:"mode"`
}
