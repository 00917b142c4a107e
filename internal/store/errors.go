package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by repository methods. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrStorage wraps every failure of the local database. Callers degrade
	// to remote-only behaviour when they see it.
	ErrStorage = errors.New("local storage error")

	// ErrStorageUnavailable is returned when the database file cannot be
	// opened, is read-only or hits an I/O error.
	ErrStorageUnavailable = fmt.Errorf("%w: unavailable", ErrStorage)

	// ErrStorageQuotaExceeded is returned when the disk or database is full.
	ErrStorageQuotaExceeded = fmt.Errorf("%w: quota exceeded", ErrStorage)

	// ErrUnknownCollection is returned for collection names that are not
	// registered in the current schema.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrRecordNotFound is returned when a record lookup matches no row.
	ErrRecordNotFound = errors.New("record not found")

	// ErrPendingWriteNotFound is returned when a queue operation targets a
	// local id that is not queued.
	ErrPendingWriteNotFound = errors.New("pending write not found")
)

// Low-level database operation errors.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrBeginningTransaction is returned when the driver cannot start a
	// transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing a transaction fails.
	ErrCommitingTransaction = errors.New("failed to commit transaction")
)
