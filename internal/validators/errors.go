package validators

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation wraps every error returned by the validators in this
	// package. Invalid input is rejected before it reaches the remote API or
	// the pending-write queue.
	ErrValidation = errors.New("validation failed")

	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrUnknownCollection  = errors.New("unknown collection")
	ErrReadOnlyCollection = errors.New("collection is read-only")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrInvalidRecordID    = errors.New("invalid record id")
	ErrInvalidPayload     = errors.New("payload must be a JSON object")
	ErrMissingField       = errors.New("required field is missing")
	ErrInvalidDate        = errors.New("invalid date")
	ErrMissingParent      = errors.New("parent record is required")
	ErrEmptyPhoto         = errors.New("photo has no image data")
)

func invalid(err error, detail string) error {
	if detail == "" {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return fmt.Errorf("%w: %w: %s", ErrValidation, err, detail)
}
