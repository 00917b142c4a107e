// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrorClassification is the result type returned by [ErrorClassificator.Classify].
// It indicates whether a failed database operation should be retried or
// abandoned.
type ErrorClassification int

const (
	// NonRetryable indicates that the failed operation should not be retried.
	NonRetryable ErrorClassification = iota

	// Retryable indicates that the failed operation may succeed if attempted
	// again (the database was busy or a table was locked).
	Retryable
)

// ErrorClassificator decides whether a failed database operation may succeed
// when attempted again.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// SQLiteErrorClassifier implements [ErrorClassificator] for SQLite. It
// inspects the sqlite3.Error code returned by the mattn/go-sqlite3 driver.
type SQLiteErrorClassifier struct{}

// NewSQLiteErrorClassifier constructs a [SQLiteErrorClassifier] ready for use.
func NewSQLiteErrorClassifier() *SQLiteErrorClassifier {
	return &SQLiteErrorClassifier{}
}

// Classify implements [ErrorClassificator]. Busy and locked errors are
// retryable; everything else, including non-driver errors, is not.
func (c *SQLiteErrorClassifier) Classify(err error) ErrorClassification {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return NonRetryable
	}

	switch sqliteErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return Retryable
	}
	return NonRetryable
}

// classifyStorageError wraps err into the storage sentinel that matches its
// SQLite error code. Errors that are already classified pass through.
func classifyStorageError(err error) error {
	if err == nil || errors.Is(err, ErrStorage) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrFull:
			return fmt.Errorf("%w: %w", ErrStorageQuotaExceeded, err)
		case sqlite3.ErrCantOpen, sqlite3.ErrReadonly, sqlite3.ErrIoErr,
			sqlite3.ErrPerm, sqlite3.ErrCorrupt, sqlite3.ErrNotADB:
			return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
	}

	return fmt.Errorf("%w: %w", ErrStorage, err)
}
