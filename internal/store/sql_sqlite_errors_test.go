package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestSQLiteErrorClassifier_Classify(t *testing.T) {
	c := NewSQLiteErrorClassifier()

	tests := []struct {
		name string
		err  error
		want ErrorClassification
	}{
		{name: "nil", err: nil, want: NonRetryable},
		{name: "plain error", err: errors.New("x"), want: NonRetryable},
		{name: "busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: Retryable},
		{name: "locked wrapped", err: fmt.Errorf("exec: %w", sqlite3.Error{Code: sqlite3.ErrLocked}), want: Retryable},
		{name: "constraint", err: sqlite3.Error{Code: sqlite3.ErrConstraint}, want: NonRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.err))
		})
	}
}

func TestClassifyStorageError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "full", err: sqlite3.Error{Code: sqlite3.ErrFull}, want: ErrStorageQuotaExceeded},
		{name: "cant open", err: sqlite3.Error{Code: sqlite3.ErrCantOpen}, want: ErrStorageUnavailable},
		{name: "readonly", err: sqlite3.Error{Code: sqlite3.ErrReadonly}, want: ErrStorageUnavailable},
		{name: "other", err: errors.New("x"), want: ErrStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyStorageError(tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrStorage)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, classifyStorageError(nil))
}
