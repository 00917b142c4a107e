// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport layer between the client and the
// remote field CRM REST API.
//
// The primary abstraction is [ServerAdapter], which decouples the service layer
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPServerAdapter]) built on resty.
//
// Responses are decoded once, at this boundary: an entity body may be bare or
// wrapped under its entity key ({"client": {...}}), and a list body may be a
// bare array or wrapped under the collection name ({"clients": [...]}).
//
// Failures are reported as one of two families so callers can decide what to
// do with a write:
//   - [ErrNetwork]: the API could not be reached. Writes are queued.
//   - [*RemoteError]: the API answered with a non-2xx status. It unwraps to
//     [ErrRemoteRejection] and a status sentinel such as [ErrUnprocessable].
package adapter

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/field-crm/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines communication with the remote field CRM API.
// Implementations are responsible for serialisation, authentication header
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
type ServerAdapter interface {
	// List fetches every record of collection.
	List(ctx context.Context, collection string) ([]models.Record, error)

	// Get fetches a single record.
	Get(ctx context.Context, collection string, id int64) (models.Record, error)

	// Create posts payload to the collection and returns the record with its
	// server-assigned id. The idempotency key stored in ctx (see
	// utils.WithIdempotencyKey) is sent as the Idempotency-Key header.
	Create(ctx context.Context, collection string, payload json.RawMessage) (models.Record, error)

	// Update sends payload for record id. When the API answers without a
	// body the returned record is built from payload.
	Update(ctx context.Context, collection string, id int64, payload json.RawMessage) (models.Record, error)

	// Delete removes record id.
	Delete(ctx context.Context, collection string, id int64) error

	// UploadPhoto posts a multipart photo to /visits/{visitID}/photos.
	UploadPhoto(ctx context.Context, visitID int64, photo models.Photo) (models.Record, error)

	// Ping probes the health endpoint. It returns nil when the API answered,
	// [ErrNetwork] when it could not be reached and [ErrSourceUnavailable]
	// when no health endpoint is configured.
	Ping(ctx context.Context) error
}
