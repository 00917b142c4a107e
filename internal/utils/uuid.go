package utils

import "github.com/google/uuid"

// UUIDGenerator produces idempotency keys for pending writes. Keys are
// UUIDv7 so they sort by creation time in server logs.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
