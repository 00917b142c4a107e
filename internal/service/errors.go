package service

import "errors"

var (
	// ErrSyncInProgress is returned by Sync when another cycle is running.
	// No network call is made.
	ErrSyncInProgress = errors.New("sync already in progress")

	ErrUnknownCollection = errors.New("unknown collection")
)
