package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/field-crm/models"
)

// decodeEntity accepts a bare entity or an entity wrapped under the
// collection's entity key and returns the record it describes.
func decodeEntity(desc models.CollectionDescriptor, body []byte) (models.Record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return models.Record{}, fmt.Errorf("%w: %s entity is not an object", ErrUnexpectedResponse, desc.Name)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	if inner, ok := wrapper[desc.EntityKey]; ok && isObject(inner) {
		body = inner
	}

	record, err := models.RecordFromEntity(desc.Name, body)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return record, nil
}

// decodeList accepts a bare array or an array wrapped under the collection
// name.
func decodeList(desc models.CollectionDescriptor, body []byte) ([]models.Record, error) {
	body = bytes.TrimSpace(body)

	var items []json.RawMessage
	switch {
	case len(body) > 0 && body[0] == '[':
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
		}
	case len(body) > 0 && body[0] == '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
		}
		inner, ok := wrapper[desc.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s list key missing", ErrUnexpectedResponse, desc.Name)
		}
		if err := json.Unmarshal(inner, &items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s list is neither array nor object", ErrUnexpectedResponse, desc.Name)
	}

	records := make([]models.Record, 0, len(items))
	for _, item := range items {
		record, err := models.RecordFromEntity(desc.Name, item)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
