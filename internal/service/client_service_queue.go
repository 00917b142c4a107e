package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/store"
	"github.com/MKhiriev/field-crm/models"
)

type clientQueueService struct {
	queue store.QueueRepository
}

func NewClientQueueService(queue store.QueueRepository) QueueService {
	return &clientQueueService{queue: queue}
}

func (s *clientQueueService) List(ctx context.Context) ([]models.QueuedWrite, error) {
	writes, err := s.queue.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending writes: %w", err)
	}
	return writes, nil
}

func (s *clientQueueService) Len(ctx context.Context) (int, error) {
	n, err := s.queue.Len(ctx)
	if err != nil {
		return 0, fmt.Errorf("count pending writes: %w", err)
	}
	return n, nil
}

func (s *clientQueueService) ResetBackoff(ctx context.Context) error {
	if err := s.queue.ResetBackoff(ctx); err != nil {
		return fmt.Errorf("reset retry schedule: %w", err)
	}
	logger.FromContext(ctx).Info().Msg("retry schedule reset for all pending writes")
	return nil
}
