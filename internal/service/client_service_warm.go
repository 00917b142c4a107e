package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/field-crm/internal/adapter"
	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/store"
	"github.com/MKhiriev/field-crm/models"
)

type clientWarmService struct {
	records store.CollectionRepository
	queue   store.QueueRepository
	adapter adapter.ServerAdapter
}

// NewClientWarmService builds the cache warmer.
func NewClientWarmService(records store.CollectionRepository, queue store.QueueRepository, serverAdapter adapter.ServerAdapter) WarmService {
	return &clientWarmService{records: records, queue: queue, adapter: serverAdapter}
}

// Warm fetches every reference collection and replaces its cached copy. A
// collection that cannot be fetched keeps its previous cache.
func (s *clientWarmService) Warm(ctx context.Context) models.WarmReport {
	log := logger.FromContext(ctx)
	report := models.WarmReport{Warmed: map[string]int{}, Failed: map[string]string{}}

	pinned, err := pinnedIDs(ctx, s.queue)
	if err != nil {
		log.Err(err).Str("func", "clientWarmService.Warm").Msg("failed to read pinned records")
		for _, name := range models.ReferenceCollections() {
			report.Failed[name] = err.Error()
		}
		return report
	}

	for _, name := range models.ReferenceCollections() {
		n, err := s.warm(ctx, name, pinned[name])
		if err != nil {
			log.Warn().Err(err).Str("collection", name).Msg("preload failed, keeping cached records")
			report.Failed[name] = err.Error()
			continue
		}
		report.Warmed[name] = n
	}

	log.Info().Int("warmed", len(report.Warmed)).Int("failed", len(report.Failed)).Msg("cache warm-up finished")
	return report
}

func (s *clientWarmService) warm(ctx context.Context, name string, pinned []int64) (int, error) {
	records, err := s.adapter.List(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", name, err)
	}
	if err = s.records.ReplaceCollection(ctx, name, records, pinned); err != nil {
		return 0, fmt.Errorf("cache %s: %w", name, err)
	}
	return len(records), nil
}
