package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/field-crm/internal/store"
	"github.com/MKhiriev/field-crm/models"
)

// resolveWrite replaces placeholder ids in w (record id, parent id and any
// "*_id" payload field) with the server ids recorded by earlier replays.
// ok is false when at least one placeholder has no server id yet; the write
// then has to wait for the write that creates its dependency.
func resolveWrite(ctx context.Context, queue store.QueueRepository, w models.PendingWrite) (resolved models.PendingWrite, ok bool, err error) {
	resolve := func(id int64) (int64, bool, error) {
		localID, isPlaceholder := models.LocalIDFromPlaceholder(id)
		if !isPlaceholder {
			return id, true, nil
		}
		serverID, found, err := queue.ResolveID(ctx, localID)
		if err != nil {
			return 0, false, fmt.Errorf("resolve placeholder %d: %w", id, err)
		}
		return serverID, found, nil
	}

	resolved = w
	if resolved.RecordID, ok, err = resolve(w.RecordID); err != nil || !ok {
		return w, false, err
	}
	if resolved.ParentID, ok, err = resolve(w.ParentID); err != nil || !ok {
		return w, false, err
	}

	if len(w.Payload) == 0 || w.Operation == models.OperationDelete {
		return resolved, true, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(w.Payload, &fields); err != nil {
		// the validator rejects such payloads on the way in
		return resolved, true, nil
	}

	changed := false
	for key, raw := range fields {
		if !strings.HasSuffix(key, "_id") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
		if err != nil || id >= 0 {
			continue
		}
		serverID, found, err := resolve(id)
		if err != nil || !found {
			return w, false, err
		}
		fields[key] = json.RawMessage(strconv.FormatInt(serverID, 10))
		changed = true
	}

	if changed {
		payload, err := json.Marshal(fields)
		if err != nil {
			return w, false, fmt.Errorf("encode resolved payload: %w", err)
		}
		resolved.Payload = payload
	}

	return resolved, true, nil
}

// parentFromPayload reads the parent id of a child collection write.
func parentFromPayload(desc models.CollectionDescriptor, payload json.RawMessage) int64 {
	if desc.ParentField == "" {
		return 0
	}
	var fields map[string]json.RawMessage
	if json.Unmarshal(payload, &fields) != nil {
		return 0
	}
	id, _ := strconv.ParseInt(strings.TrimSpace(string(fields[desc.ParentField])), 10, 64)
	return id
}

// pinnedIDs returns, per collection, the server ids of records targeted by
// queued updates and deletes. A wholesale refresh must not touch them, or
// the optimistic local state would be lost before the write is replayed.
func pinnedIDs(ctx context.Context, queue store.QueueRepository) (map[string][]int64, error) {
	writes, err := queue.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list queued writes: %w", err)
	}

	pinned := make(map[string][]int64)
	for _, w := range writes {
		if w.Operation == models.OperationCreate {
			continue
		}
		id := w.RecordID
		if localID, isPlaceholder := models.LocalIDFromPlaceholder(id); isPlaceholder {
			serverID, found, err := queue.ResolveID(ctx, localID)
			if err != nil {
				return nil, fmt.Errorf("resolve placeholder %d: %w", id, err)
			}
			if !found {
				continue
			}
			id = serverID
		}
		pinned[w.Collection] = append(pinned[w.Collection], id)
	}
	return pinned, nil
}

// recordKey names one record of one collection.
type recordKey struct {
	collection string
	id         int64
}

// blockedRecords holds the records whose writes were left queued by the
// current drain. A later write touching one of them is left queued as well,
// so the server sees the writes of a record in queue order.
type blockedRecords map[recordKey]struct{}

// block marks the record w writes to. resolved carries the server ids of w
// where they are known.
func (b blockedRecords) block(w, resolved models.PendingWrite) {
	for _, k := range ownKeys(w, resolved) {
		b[k] = struct{}{}
	}
}

// touches reports whether w writes to or references a blocked record.
func (b blockedRecords) touches(w, resolved models.PendingWrite) bool {
	if len(b) == 0 {
		return false
	}
	keys := append(ownKeys(w, resolved), referenceKeys(w, resolved)...)
	for _, k := range keys {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

// ownKeys is the record w writes to: the target of an update or delete, the
// placeholder of a create.
func ownKeys(w, resolved models.PendingWrite) []recordKey {
	if w.Operation == models.OperationCreate {
		return []recordKey{{w.Collection, models.PlaceholderID(w.LocalID)}}
	}
	keys := []recordKey{{w.Collection, w.RecordID}}
	if resolved.RecordID != w.RecordID && resolved.RecordID != 0 {
		keys = append(keys, recordKey{w.Collection, resolved.RecordID})
	}
	return keys
}

// referenceKeys lists the records w points at: its parent and every
// "<entity>_id" payload field naming a known collection.
func referenceKeys(w, resolved models.PendingWrite) []recordKey {
	var keys []recordKey

	if desc, ok := models.LookupCollection(w.Collection); ok && desc.Parent != "" {
		for _, id := range []int64{w.ParentID, resolved.ParentID} {
			if id != 0 {
				keys = append(keys, recordKey{desc.Parent, id})
			}
		}
	}

	if w.Operation == models.OperationDelete {
		return keys
	}
	for _, payload := range []json.RawMessage{w.Payload, resolved.Payload} {
		var fields map[string]json.RawMessage
		if len(payload) == 0 || json.Unmarshal(payload, &fields) != nil {
			continue
		}
		for key, raw := range fields {
			collection, ok := collectionForField(key)
			if !ok {
				continue
			}
			id, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
			if err != nil || id == 0 {
				continue
			}
			keys = append(keys, recordKey{collection, id})
		}
	}
	return keys
}

// collectionForField maps a reference field like "client_id" to its
// collection.
func collectionForField(field string) (string, bool) {
	entity, ok := strings.CutSuffix(field, "_id")
	if !ok {
		return "", false
	}
	for _, desc := range models.Collections() {
		if desc.EntityKey == entity {
			return desc.Name, true
		}
	}
	return "", false
}
