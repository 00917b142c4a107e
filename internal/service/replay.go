package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/field-crm/internal/adapter"
	"github.com/MKhiriev/field-crm/internal/utils"
	"github.com/MKhiriev/field-crm/models"
)

// replay sends a write whose placeholder ids are already resolved. The
// write's idempotency key travels in the context. Delete returns a zero
// record.
func replay(ctx context.Context, serverAdapter adapter.ServerAdapter, w models.PendingWrite) (models.Record, error) {
	ctx = utils.WithIdempotencyKey(ctx, w.IdempotencyKey)

	switch w.Operation {
	case models.OperationCreate:
		if w.Collection == models.CollectionPhotos {
			var photo models.Photo
			if err := json.Unmarshal(w.Payload, &photo); err != nil {
				return models.Record{}, fmt.Errorf("decode queued photo: %w", err)
			}
			photo.VisitID = w.ParentID
			return serverAdapter.UploadPhoto(ctx, w.ParentID, photo)
		}
		return serverAdapter.Create(ctx, w.Collection, w.Payload)
	case models.OperationUpdate:
		return serverAdapter.Update(ctx, w.Collection, w.RecordID, w.Payload)
	case models.OperationDelete:
		return models.Record{}, serverAdapter.Delete(ctx, w.Collection, w.RecordID)
	default:
		return models.Record{}, fmt.Errorf("unknown operation %q", w.Operation)
	}
}
