package validators

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/field-crm/models"
)

// Field name constants used to restrict validation to a subset of checks.
const (
	// FieldCollection checks that the collection exists and is writable.
	FieldCollection = "collection"

	// FieldOperation checks that the operation is create, update or delete.
	FieldOperation = "operation"

	// FieldRecordID checks that update and delete name a record.
	FieldRecordID = "record_id"

	// FieldPayload checks that create and update carry a JSON object.
	FieldPayload = "payload"

	// FieldRequired checks the collection's required fields: all of them on
	// create, only the ones present on update.
	FieldRequired = "required"

	// FieldDate checks that a "date" field, when present, is a calendar date.
	FieldDate = "date"

	// FieldParent checks that creates of child collections name a parent.
	FieldParent = "parent"

	// FieldPhotoData checks that a photo carries image bytes.
	FieldPhotoData = "photo_data"
)

var defaultWriteFields = []string{
	FieldCollection, FieldOperation, FieldRecordID, FieldPayload, FieldRequired, FieldDate, FieldParent,
}

// dateLayouts are accepted for "date" fields.
var dateLayouts = []string{time.DateOnly, time.RFC3339}

// WriteValidator validates pending writes before they are sent or queued,
// and photos before they are attached to a visit.
type WriteValidator struct {
}

// NewWriteValidator constructs a WriteValidator and returns it as the
// Validator interface.
func NewWriteValidator() Validator {
	return &WriteValidator{}
}

// Validate dispatches on the dynamic type of obj.
//
// Supported types:
//   - models.PendingWrite / *models.PendingWrite
//   - models.Photo / *models.Photo
//
// Returns ErrUnsupportedType for anything else.
func (v *WriteValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.PendingWrite:
		return v.validateWrite(ctx, value, fields...)
	case *models.PendingWrite:
		return v.validateWrite(ctx, *value, fields...)

	case models.Photo:
		return v.validatePhoto(ctx, value, fields...)
	case *models.Photo:
		return v.validatePhoto(ctx, *value, fields...)

	default:
		return invalid(ErrUnsupportedType, "")
	}
}

func (v *WriteValidator) validateWrite(_ context.Context, w models.PendingWrite, fields ...string) error {
	if len(fields) == 0 {
		fields = defaultWriteFields
	}

	desc, known := models.LookupCollection(w.Collection)

	var payload map[string]json.RawMessage
	hasPayload := w.Operation != models.OperationDelete && json.Unmarshal(w.Payload, &payload) == nil && payload != nil

	for _, f := range fields {
		switch f {
		case FieldCollection:
			if !known {
				return invalid(ErrUnknownCollection, w.Collection)
			}
			if !desc.Writable {
				return invalid(ErrReadOnlyCollection, w.Collection)
			}
		case FieldOperation:
			if !w.Operation.Valid() {
				return invalid(ErrInvalidOperation, string(w.Operation))
			}
		case FieldRecordID:
			if w.Operation != models.OperationCreate && w.RecordID == 0 {
				return invalid(ErrInvalidRecordID, "")
			}
		case FieldPayload:
			if w.Operation != models.OperationDelete && !hasPayload {
				return invalid(ErrInvalidPayload, "")
			}
		case FieldRequired:
			if !known || !hasPayload {
				continue
			}
			for _, name := range desc.Required {
				raw, present := payload[name]
				if !present && w.Operation == models.OperationUpdate {
					continue
				}
				if isEmptyValue(raw) {
					return invalid(ErrMissingField, name)
				}
			}
		case FieldDate:
			raw, present := payload["date"]
			if !hasPayload || !present {
				continue
			}
			if !isDate(raw) {
				return invalid(ErrInvalidDate, string(raw))
			}
		case FieldParent:
			if known && desc.Parent != "" && w.Operation == models.OperationCreate && w.ParentID == 0 {
				return invalid(ErrMissingParent, desc.Parent)
			}
		default:
			return invalid(ErrUnknownField, f)
		}
	}

	return nil
}

func (v *WriteValidator) validatePhoto(_ context.Context, p models.Photo, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldParent, FieldPhotoData}
	}

	for _, f := range fields {
		switch f {
		case FieldParent:
			if p.VisitID == 0 {
				return invalid(ErrMissingParent, models.CollectionVisits)
			}
		case FieldPhotoData:
			if len(p.Data) == 0 {
				return invalid(ErrEmptyPhoto, "")
			}
		default:
			return invalid(ErrUnknownField, f)
		}
	}

	return nil
}

// isEmptyValue treats a missing value, null, "" and 0 as empty. Ids are
// numeric, so 0 never names a record.
func isEmptyValue(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", `""`, "0":
		return true
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return len(bytes.TrimSpace([]byte(s))) == 0
	}
	return false
}

func isDate(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
