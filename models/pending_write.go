// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// Operation is the kind of mutation a pending write replays.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	switch op {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	default:
		return false
	}
}

// PendingWrite is a durable record of a mutation not yet confirmed by the
// remote API. Rows are never updated: a write either exists (not synced) or
// is deleted (synced).
type PendingWrite struct {
	// LocalID is the auto-increment key assigned on enqueue. It also defines
	// the replay order.
	LocalID int64 `json:"local_id"`

	// Collection is the target collection.
	Collection string `json:"collection"`

	// Operation is the mutation to replay.
	Operation Operation `json:"operation"`

	// RecordID is the target record for update and delete. It may be a
	// placeholder id of a record created by an earlier pending write.
	RecordID int64 `json:"record_id,omitempty"`

	// ParentID is the parent record id for collections created under a
	// parent path (photos under visits). It may be a placeholder id.
	ParentID int64 `json:"parent_id,omitempty"`

	// Payload is the JSON body sent to the remote API.
	Payload json.RawMessage `json:"payload,omitempty"`

	// IdempotencyKey is sent with the replay so the server can recognise a
	// retried request whose response was lost.
	IdempotencyKey string `json:"idempotency_key"`

	CreatedAt time.Time `json:"created_at"`
}

// WriteAttempt is the retry bookkeeping kept next to a pending write.
type WriteAttempt struct {
	LocalID       int64     `json:"local_id"`
	Attempts      int       `json:"attempts"`
	LastError     string    `json:"last_error,omitempty"`
	NextAttemptAt time.Time `json:"next_attempt_at"`
}

// QueuedWrite joins a pending write with its retry bookkeeping for display.
type QueuedWrite struct {
	PendingWrite
	Attempts      int        `json:"attempts"`
	LastError     string     `json:"last_error,omitempty"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`
}
