// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/field-crm/internal/adapter"
	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/store"
	"github.com/MKhiriev/field-crm/internal/validators"
	"github.com/MKhiriev/field-crm/models"
)

type clientRecordService struct {
	records store.CollectionRepository
	queue   store.QueueRepository
	adapter adapter.ServerAdapter
	conn    Connectivity

	validator validators.Validator
	keys      IDGenerator
	notifier  Notifier
	now       func() time.Time
}

// NewClientRecordService builds the [RecordService].
func NewClientRecordService(
	records store.CollectionRepository,
	queue store.QueueRepository,
	serverAdapter adapter.ServerAdapter,
	conn Connectivity,
	validator validators.Validator,
	keys IDGenerator,
	notifier Notifier,
) RecordService {
	return &clientRecordService{
		records:   records,
		queue:     queue,
		adapter:   serverAdapter,
		conn:      conn,
		validator: validator,
		keys:      keys,
		notifier:  notifier,
		now:       time.Now,
	}
}

func lookupCollection(name string) (models.CollectionDescriptor, error) {
	desc, ok := models.LookupCollection(name)
	if !ok {
		return models.CollectionDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return desc, nil
}

// queueable reports whether a failed remote call should turn into a queued
// write.
func queueable(err error) bool {
	return errors.Is(err, adapter.ErrNetwork)
}

func (s *clientRecordService) online() bool {
	return s.conn.Status().Connected
}

func (s *clientRecordService) List(ctx context.Context, collection string) (models.ListResult, error) {
	log := logger.FromContext(ctx)
	if _, err := lookupCollection(collection); err != nil {
		return models.ListResult{}, err
	}

	if s.online() {
		remote, err := s.adapter.List(ctx, collection)
		switch {
		case err == nil:
			return s.cacheList(ctx, collection, remote), nil
		case !queueable(err):
			return models.ListResult{}, fmt.Errorf("list %s: %w", collection, err)
		default:
			log.Warn().Err(err).
				Str("func", "clientRecordService.List").
				Str("collection", collection).
				Msg("remote api unreachable, serving cached records")
		}
	}

	cached, err := s.records.GetAll(ctx, collection)
	if err != nil {
		return models.ListResult{}, fmt.Errorf("read cached %s: %w", collection, err)
	}
	return models.ListResult{Collection: collection, Records: cached, Stale: true}, nil
}

// cacheList stores a fresh remote list and returns the cache view, which
// adds offline-created records and keeps pending local edits. When the store
// is unavailable the remote list is returned as is.
func (s *clientRecordService) cacheList(ctx context.Context, collection string, remote []models.Record) models.ListResult {
	log := logger.FromContext(ctx)
	fresh := models.ListResult{Collection: collection, Records: remote}

	pinned, err := pinnedIDs(ctx, s.queue)
	if err != nil {
		log.Warn().Err(err).Str("func", "clientRecordService.cacheList").Msg("pending writes unavailable, not caching")
		return fresh
	}
	if err = s.records.ReplaceCollection(ctx, collection, remote, pinned[collection]); err != nil {
		log.Warn().Err(err).Str("func", "clientRecordService.cacheList").Str("collection", collection).Msg("failed to cache collection")
		return fresh
	}

	cached, err := s.records.GetAll(ctx, collection)
	if err != nil {
		log.Warn().Err(err).Str("func", "clientRecordService.cacheList").Str("collection", collection).Msg("failed to read cache back")
		return fresh
	}
	return models.ListResult{Collection: collection, Records: cached}
}

func (s *clientRecordService) Get(ctx context.Context, collection string, id int64) (models.Record, error) {
	log := logger.FromContext(ctx)
	if _, err := lookupCollection(collection); err != nil {
		return models.Record{}, err
	}

	serverID, synced, err := s.serverID(ctx, id)
	if err != nil {
		return models.Record{}, err
	}
	if !synced {
		return s.records.Get(ctx, collection, id)
	}

	if s.online() && !s.hasQueuedFor(ctx, collection, serverID) {
		record, err := s.adapter.Get(ctx, collection, serverID)
		switch {
		case err == nil:
			if err := s.records.Put(ctx, record); err != nil {
				log.Warn().Err(err).Str("func", "clientRecordService.Get").Msg("failed to cache record")
			}
			return record, nil
		case !queueable(err):
			return models.Record{}, fmt.Errorf("get %s/%d: %w", collection, serverID, err)
		}
		log.Warn().Err(err).Str("func", "clientRecordService.Get").Msg("remote api unreachable, serving cached record")
	}

	return s.records.Get(ctx, collection, serverID)
}

// serverID maps a placeholder id to its server id. synced is false while the
// creating write is still queued.
func (s *clientRecordService) serverID(ctx context.Context, id int64) (serverID int64, synced bool, err error) {
	localID, isPlaceholder := models.LocalIDFromPlaceholder(id)
	if !isPlaceholder {
		return id, true, nil
	}
	serverID, synced, err = s.queue.ResolveID(ctx, localID)
	if err != nil {
		return 0, false, fmt.Errorf("resolve placeholder %d: %w", id, err)
	}
	return serverID, synced, nil
}

// hasQueuedFor reports whether an earlier update or delete of the same record
// still waits in the queue. A direct call would then overtake it.
func (s *clientRecordService) hasQueuedFor(ctx context.Context, collection string, id int64) bool {
	writes, err := s.queue.List(ctx)
	if err != nil {
		return false
	}
	for _, w := range writes {
		if w.Collection != collection || w.Operation == models.OperationCreate {
			continue
		}
		target, synced, err := s.serverID(ctx, w.RecordID)
		if err != nil || !synced {
			continue
		}
		if target == id {
			return true
		}
	}
	return false
}

func (s *clientRecordService) newWrite(collection string, op models.Operation, id int64, payload json.RawMessage) models.PendingWrite {
	return models.PendingWrite{
		Collection:     collection,
		Operation:      op,
		RecordID:       id,
		Payload:        payload,
		IdempotencyKey: s.keys.Generate(),
		CreatedAt:      s.now().UTC(),
	}
}

func (s *clientRecordService) Create(ctx context.Context, collection string, payload json.RawMessage) (models.WriteResult, error) {
	desc, err := lookupCollection(collection)
	if err != nil {
		return models.WriteResult{}, err
	}

	w := s.newWrite(collection, models.OperationCreate, 0, payload)
	w.ParentID = parentFromPayload(desc, payload)
	return s.create(ctx, w)
}

func (s *clientRecordService) AttachPhoto(ctx context.Context, visitID int64, photo models.Photo) (models.WriteResult, error) {
	photo.ID = 0
	photo.VisitID = visitID
	if err := s.validator.Validate(ctx, photo); err != nil {
		return models.WriteResult{}, err
	}

	payload, err := json.Marshal(photo)
	if err != nil {
		return models.WriteResult{}, fmt.Errorf("encode photo: %w", err)
	}

	w := s.newWrite(models.CollectionPhotos, models.OperationCreate, 0, payload)
	w.ParentID = visitID
	return s.create(ctx, w)
}

func (s *clientRecordService) create(ctx context.Context, w models.PendingWrite) (models.WriteResult, error) {
	log := logger.FromContext(ctx)
	if err := s.validator.Validate(ctx, w); err != nil {
		return models.WriteResult{}, err
	}

	record, sent, err := s.trySend(ctx, w)
	if err != nil {
		return models.WriteResult{}, err
	}
	if sent {
		if err := s.records.Put(ctx, record); err != nil {
			log.Warn().Err(err).Str("func", "clientRecordService.create").Msg("failed to cache created record")
		}
		s.changed(w.Collection)
		return models.WriteResult{Record: record}, nil
	}

	localID, err := s.enqueue(ctx, w)
	if err != nil {
		return models.WriteResult{}, err
	}

	placeholder, err := models.RecordFromPayload(w.Collection, models.PlaceholderID(localID), w.Payload)
	if err != nil {
		return models.WriteResult{}, err
	}
	if err := s.records.Put(ctx, placeholder); err != nil {
		log.Warn().Err(err).Str("func", "clientRecordService.create").Int64("local_id", localID).Msg("failed to cache placeholder record")
	}
	s.changed(w.Collection)

	return models.WriteResult{Record: placeholder, Queued: true, LocalID: localID}, nil
}

func (s *clientRecordService) Update(ctx context.Context, collection string, id int64, payload json.RawMessage) (models.WriteResult, error) {
	log := logger.FromContext(ctx)
	if _, err := lookupCollection(collection); err != nil {
		return models.WriteResult{}, err
	}

	w := s.newWrite(collection, models.OperationUpdate, id, payload)
	if err := s.validator.Validate(ctx, w); err != nil {
		return models.WriteResult{}, err
	}

	record, sent, err := s.trySend(ctx, w)
	if err != nil {
		return models.WriteResult{}, err
	}
	if sent {
		if err := s.records.Put(ctx, record); err != nil {
			log.Warn().Err(err).Str("func", "clientRecordService.Update").Msg("failed to cache updated record")
		}
		s.changed(collection)
		return models.WriteResult{Record: record}, nil
	}

	localID, err := s.enqueue(ctx, w)
	if err != nil {
		return models.WriteResult{}, err
	}

	optimistic, err := s.records.Get(ctx, collection, id)
	if err == nil {
		optimistic, err = optimistic.MergePayload(payload)
	} else {
		optimistic, err = models.RecordFromPayload(collection, id, payload)
	}
	if err != nil {
		return models.WriteResult{}, err
	}
	if err := s.records.Put(ctx, optimistic); err != nil {
		log.Warn().Err(err).Str("func", "clientRecordService.Update").Int64("local_id", localID).Msg("failed to cache optimistic record")
	}
	s.changed(collection)

	return models.WriteResult{Record: optimistic, Queued: true, LocalID: localID}, nil
}

func (s *clientRecordService) Delete(ctx context.Context, collection string, id int64) (models.WriteResult, error) {
	log := logger.FromContext(ctx)
	if _, err := lookupCollection(collection); err != nil {
		return models.WriteResult{}, err
	}

	w := s.newWrite(collection, models.OperationDelete, id, nil)
	if err := s.validator.Validate(ctx, w); err != nil {
		return models.WriteResult{}, err
	}

	_, sent, err := s.trySend(ctx, w)
	if err != nil {
		return models.WriteResult{}, err
	}

	result := models.WriteResult{Record: models.Record{ID: id, Collection: collection}}
	if !sent {
		localID, err := s.enqueue(ctx, w)
		if err != nil {
			return models.WriteResult{}, err
		}
		result.Queued = true
		result.LocalID = localID
	}

	if err := s.records.Delete(ctx, collection, id); err != nil {
		log.Warn().Err(err).Str("func", "clientRecordService.Delete").Msg("failed to remove cached record")
	}
	s.changed(collection)

	return result, nil
}

// trySend calls the remote API when online and the write does not depend on
// queued writes. sent is false when the write has to be queued. A remote
// rejection is returned as is.
func (s *clientRecordService) trySend(ctx context.Context, w models.PendingWrite) (record models.Record, sent bool, err error) {
	log := logger.FromContext(ctx)
	if !s.online() {
		return models.Record{}, false, nil
	}

	resolved, ok, err := resolveWrite(ctx, s.queue, w)
	if err != nil || !ok {
		return models.Record{}, false, nil
	}
	if w.Operation != models.OperationCreate && s.hasQueuedFor(ctx, w.Collection, resolved.RecordID) {
		return models.Record{}, false, nil
	}

	record, err = replay(ctx, s.adapter, resolved)
	switch {
	case err == nil:
		return record, true, nil
	case queueable(err):
		log.Warn().Err(err).
			Str("func", "clientRecordService.trySend").
			Str("collection", w.Collection).
			Str("operation", string(w.Operation)).
			Msg("remote api unreachable, queueing write")
		return models.Record{}, false, nil
	default:
		return models.Record{}, false, fmt.Errorf("%s %s: %w", w.Operation, w.Collection, err)
	}
}

func (s *clientRecordService) enqueue(ctx context.Context, w models.PendingWrite) (int64, error) {
	localID, err := s.queue.Enqueue(ctx, w)
	if err != nil {
		return 0, fmt.Errorf("queue %s %s: %w", w.Operation, w.Collection, err)
	}

	logger.FromContext(ctx).Info().
		Str("collection", w.Collection).
		Str("operation", string(w.Operation)).
		Int64("local_id", localID).
		Msg("write queued")

	return localID, nil
}

func (s *clientRecordService) changed(collection string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(models.Event{Type: models.EventRecordChanged, Collection: collection, At: s.now().UTC()})
}
