// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"

	"github.com/MKhiriev/field-crm/models"
)

// Client is the lifecycle the command line drives.
type Client interface {
	// Serve starts the background workers and the local listeners and
	// blocks until ctx is done.
	Serve(ctx context.Context) error

	// Sync probes connectivity and runs one manual sync cycle.
	Sync(ctx context.Context) (models.SyncResult, error)

	// Warm preloads the reference collections.
	Warm(ctx context.Context) models.WarmReport

	// Close releases the local store.
	Close() error
}

var _ Client = (*App)(nil)
