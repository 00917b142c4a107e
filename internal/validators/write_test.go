// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/MKhiriev/field-crm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func validVisitCreate() models.PendingWrite {
	return models.PendingWrite{
		Collection: models.CollectionVisits,
		Operation:  models.OperationCreate,
		Payload:    json.RawMessage(`{"date":"2024-05-01","client_id":1,"property_id":1,"plot_id":1}`),
	}
}

// ---------------------------------------------------------------------------
// TestValidate_Dispatch
// ---------------------------------------------------------------------------

func TestValidate_Dispatch(t *testing.T) {
	v := NewWriteValidator()
	ctx := context.Background()
	w := validVisitCreate()
	photo := models.Photo{VisitID: 3, Data: []byte{1}}

	assert.NoError(t, v.Validate(ctx, w))
	assert.NoError(t, v.Validate(ctx, &w))
	assert.NoError(t, v.Validate(ctx, photo))
	assert.NoError(t, v.Validate(ctx, &photo))

	err := v.Validate(ctx, 42)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.ErrorIs(t, err, ErrValidation)
}

// ---------------------------------------------------------------------------
// TestValidate_PendingWrite
// ---------------------------------------------------------------------------

func TestValidate_PendingWrite(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(w *models.PendingWrite)
		wantErr error
	}{
		{name: "valid create", modify: func(*models.PendingWrite) {}},
		{
			name:    "unknown collection",
			modify:  func(w *models.PendingWrite) { w.Collection = "tractors" },
			wantErr: ErrUnknownCollection,
		},
		{
			name:    "reference collection is read-only",
			modify:  func(w *models.PendingWrite) { w.Collection = models.CollectionCultures },
			wantErr: ErrReadOnlyCollection,
		},
		{
			name:    "invalid operation",
			modify:  func(w *models.PendingWrite) { w.Operation = "upsert" },
			wantErr: ErrInvalidOperation,
		},
		{
			name:    "payload is not an object",
			modify:  func(w *models.PendingWrite) { w.Payload = json.RawMessage(`[1,2]`) },
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "missing required field",
			modify:  func(w *models.PendingWrite) { w.Payload = json.RawMessage(`{"date":"2024-05-01","client_id":1,"property_id":1}`) },
			wantErr: ErrMissingField,
		},
		{
			name:    "zero id counts as missing",
			modify:  func(w *models.PendingWrite) { w.Payload = json.RawMessage(`{"date":"2024-05-01","client_id":0,"property_id":1,"plot_id":1}`) },
			wantErr: ErrMissingField,
		},
		{
			name:    "blank string counts as missing",
			modify:  func(w *models.PendingWrite) { w.Payload = json.RawMessage(`{"date":"  ","client_id":1,"property_id":1,"plot_id":1}`) },
			wantErr: ErrMissingField,
		},
		{
			name:    "invalid date",
			modify:  func(w *models.PendingWrite) { w.Payload = json.RawMessage(`{"date":"01/05/2024","client_id":1,"property_id":1,"plot_id":1}`) },
			wantErr: ErrInvalidDate,
		},
		{
			name:   "placeholder ids are accepted",
			modify: func(w *models.PendingWrite) { w.Payload = json.RawMessage(`{"date":"2024-05-01","client_id":-3,"property_id":1,"plot_id":1}`) },
		},
		{
			name: "update needs a record id",
			modify: func(w *models.PendingWrite) {
				w.Operation = models.OperationUpdate
				w.Payload = json.RawMessage(`{"notes":"ok"}`)
			},
			wantErr: ErrInvalidRecordID,
		},
		{
			name: "partial update skips absent required fields",
			modify: func(w *models.PendingWrite) {
				w.Operation = models.OperationUpdate
				w.RecordID = 5
				w.Payload = json.RawMessage(`{"notes":"ok"}`)
			},
		},
		{
			name: "update cannot blank a required field",
			modify: func(w *models.PendingWrite) {
				w.Operation = models.OperationUpdate
				w.RecordID = 5
				w.Payload = json.RawMessage(`{"plot_id":null}`)
			},
			wantErr: ErrMissingField,
		},
		{
			name: "delete needs no payload",
			modify: func(w *models.PendingWrite) {
				w.Operation = models.OperationDelete
				w.RecordID = 5
				w.Payload = nil
			},
		},
		{
			name: "photo create needs a parent",
			modify: func(w *models.PendingWrite) {
				w.Collection = models.CollectionPhotos
				w.Payload = json.RawMessage(`{"visit_id":4,"caption":"x"}`)
			},
			wantErr: ErrMissingParent,
		},
	}

	v := NewWriteValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := validVisitCreate()
			tt.modify(&w)

			err := v.Validate(context.Background(), w)

			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidate_MissingFieldNamesTheField(t *testing.T) {
	w := validVisitCreate()
	w.Payload = json.RawMessage(`{"date":"2024-05-01","client_id":1,"property_id":1}`)

	err := NewWriteValidator().Validate(context.Background(), w)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "plot_id")
}

func TestValidate_FieldScoping(t *testing.T) {
	v := NewWriteValidator()
	w := validVisitCreate()
	w.Payload = json.RawMessage(`{"date":"yesterday"}`)

	// только коллекция и операция — payload не проверяется
	assert.NoError(t, v.Validate(context.Background(), w, FieldCollection, FieldOperation))
	assert.ErrorIs(t, v.Validate(context.Background(), w, FieldDate), ErrInvalidDate)
	assert.ErrorIs(t, v.Validate(context.Background(), w, "nope"), ErrUnknownField)
}

// ---------------------------------------------------------------------------
// TestValidate_Photo
// ---------------------------------------------------------------------------

func TestValidate_Photo(t *testing.T) {
	tests := []struct {
		name    string
		photo   models.Photo
		wantErr error
	}{
		{name: "valid", photo: models.Photo{VisitID: -2, Data: []byte{0xff}}},
		{name: "no visit", photo: models.Photo{Data: []byte{0xff}}, wantErr: ErrMissingParent},
		{name: "no data", photo: models.Photo{VisitID: 2}, wantErr: ErrEmptyPhoto},
	}

	v := NewWriteValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.photo)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
