// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, HTTP client initialization, API token inspection
// and identifier generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// IdempotencyKeyCtxKey is the key under which the idempotency key of the
// write being sent to the remote API is stored in the context. The remote
// adapter copies it into the Idempotency-Key request header.
//
// Example of writing a value to the context:
//
//	ctx = utils.WithIdempotencyKey(ctx, write.IdempotencyKey)
var IdempotencyKeyCtxKey = contextKey("idempotencyKey")

// WithIdempotencyKey returns a copy of ctx carrying key. An empty key leaves
// ctx unchanged.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, IdempotencyKeyCtxKey, key)
}

// GetIdempotencyKeyFromContext retrieves the idempotency key from the context.
//
// Returns the key and an ok flag:
//   - ok == true  — a non-empty string key is present
//   - ok == false — value is missing, empty or has an unexpected type
func GetIdempotencyKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(IdempotencyKeyCtxKey).(string)
	return key, ok && key != ""
}
