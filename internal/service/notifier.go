package service

import (
	"sync"
	"time"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/models"
)

type eventNotifier struct {
	mu     sync.RWMutex
	subs   map[uint64]chan models.Event
	nextID uint64

	logger *logger.Logger
}

// NewNotifier returns an in-process publish/subscribe hub for [models.Event].
func NewNotifier(logger *logger.Logger) Notifier {
	return &eventNotifier{subs: make(map[uint64]chan models.Event), logger: logger}
}

func (n *eventNotifier) Publish(event models.Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for id, ch := range n.subs {
		select {
		case ch <- event:
		default:
			n.logger.Warn().
				Str("func", "eventNotifier.Publish").
				Uint64("subscriber", id).
				Str("event", string(event.Type)).
				Msg("subscriber buffer full, event dropped")
		}
	}
}

func (n *eventNotifier) Subscribe(buffer int) (<-chan models.Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan models.Event, buffer)

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs[id] = ch
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
			close(ch)
		})
	}
}
