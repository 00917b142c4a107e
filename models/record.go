package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRecordWithoutID is returned when an entity body carries no numeric id.
var ErrRecordWithoutID = errors.New("record has no id")

// Record is a single entity of a collection as stored in the local cache.
// Data holds the entity JSON exactly as the remote API returned it and always
// carries an "id" field equal to ID.
type Record struct {
	ID         int64           `json:"id"`
	Collection string          `json:"collection"`
	Data       json.RawMessage `json:"data"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Pending reports whether the record was created offline and still carries
// a placeholder id.
func (r Record) Pending() bool {
	return r.ID < 0
}

// PlaceholderID returns the id given to a record created by the pending write
// with the supplied local id.
func PlaceholderID(localID int64) int64 {
	return -localID
}

// LocalIDFromPlaceholder is the inverse of PlaceholderID. ok is false for
// server-assigned ids.
func LocalIDFromPlaceholder(id int64) (localID int64, ok bool) {
	if id >= 0 {
		return 0, false
	}
	return -id, true
}

// NewRecord marshals v and stamps it with id.
func NewRecord(collection string, id int64, v any) (Record, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("marshal %s record: %w", collection, err)
	}
	return RecordFromPayload(collection, id, payload)
}

// RecordFromPayload sets the "id" field of a JSON object payload and wraps it
// into a Record.
func RecordFromPayload(collection string, id int64, payload json.RawMessage) (Record, error) {
	fields := map[string]json.RawMessage{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &fields); err != nil {
			return Record{}, fmt.Errorf("decode %s payload: %w", collection, err)
		}
	}
	fields["id"] = json.RawMessage(fmt.Sprintf("%d", id))

	data, err := json.Marshal(fields)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s payload: %w", collection, err)
	}

	return Record{ID: id, Collection: collection, Data: data, UpdatedAt: time.Now().UTC()}, nil
}

// RecordFromEntity builds a Record from an entity body returned by the remote
// API, reading the id from the body itself.
func RecordFromEntity(collection string, body json.RawMessage) (Record, error) {
	var head struct {
		ID *int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return Record{}, fmt.Errorf("decode %s entity: %w", collection, err)
	}
	if head.ID == nil {
		return Record{}, fmt.Errorf("%s: %w", collection, ErrRecordWithoutID)
	}

	return Record{ID: *head.ID, Collection: collection, Data: body, UpdatedAt: time.Now().UTC()}, nil
}

// DecodeRecord unmarshals the record body into a typed entity.
func DecodeRecord[T any](r Record) (T, error) {
	var v T
	if err := json.Unmarshal(r.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s record %d: %w", r.Collection, r.ID, err)
	}
	return v, nil
}

// Fields decodes the record body into a generic field map.
func (r Record) Fields() (map[string]any, error) {
	fields := map[string]any{}
	if err := json.Unmarshal(r.Data, &fields); err != nil {
		return nil, fmt.Errorf("decode %s record %d: %w", r.Collection, r.ID, err)
	}
	return fields, nil
}

// MergePayload overlays the top-level fields of patch onto the record body
// and returns the updated record. The id is never overwritten.
func (r Record) MergePayload(patch json.RawMessage) (Record, error) {
	base := map[string]json.RawMessage{}
	if err := json.Unmarshal(r.Data, &base); err != nil {
		return Record{}, fmt.Errorf("decode %s record %d: %w", r.Collection, r.ID, err)
	}
	overlay := map[string]json.RawMessage{}
	if err := json.Unmarshal(patch, &overlay); err != nil {
		return Record{}, fmt.Errorf("decode %s patch: %w", r.Collection, err)
	}
	for k, v := range overlay {
		if k == "id" {
			continue
		}
		base[k] = v
	}

	data, err := json.Marshal(base)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s record %d: %w", r.Collection, r.ID, err)
	}
	r.Data = data
	r.UpdatedAt = time.Now().UTC()
	return r, nil
}
