// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package network

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/field-crm/internal/adapter"
	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/models"
)

const (
	defaultProbeInterval     = 15 * time.Second
	defaultInitialCheckDelay = 2 * time.Second
	defaultProbeTimeout      = 5 * time.Second
)

type subscription struct {
	id uint64
	fn func(models.ConnectivityState)
}

// Monitor is the process-wide connectivity service.
type Monitor struct {
	sources           []Source
	probeInterval     time.Duration
	initialCheckDelay time.Duration

	// deliverMu serialises transitions so subscribers observe them in order.
	deliverMu sync.Mutex

	mu     sync.Mutex
	state  models.ConnectivityState
	forced *bool
	subs   []subscription
	nextID uint64

	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewMonitor creates a monitor over sources, tried in order. The initial
// state is connected with source "assumed".
func NewMonitor(sources []Source, probeInterval, initialCheckDelay time.Duration, logger *logger.Logger) *Monitor {
	if probeInterval <= 0 {
		probeInterval = defaultProbeInterval
	}
	if initialCheckDelay < 0 {
		initialCheckDelay = defaultInitialCheckDelay
	}

	return &Monitor{
		sources:           sources,
		probeInterval:     probeInterval,
		initialCheckDelay: initialCheckDelay,
		state: models.ConnectivityState{
			Connected: true,
			Source:    SourceAssumed,
			ChangedAt: time.Now().UTC(),
		},
		logger: logger,
	}
}

// Status returns the current state without probing.
func (m *Monitor) Status() models.ConnectivityState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn for future transitions. fn runs on the goroutine
// that detected the transition and must not call Check or Force. The
// returned function unsubscribes and is safe to call more than once.
func (m *Monitor) Subscribe(fn func(models.ConnectivityState)) (unsubscribe func()) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscription{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Check probes the sources once and applies the result. While a forced
// state is set the sources are not probed. When every source is
// unavailable the state is left as it is.
func (m *Monitor) Check(ctx context.Context) models.ConnectivityState {
	log := logger.FromContext(ctx)

	m.mu.Lock()
	forced := m.forced
	m.mu.Unlock()
	if forced != nil {
		return m.Status()
	}

	for _, src := range m.sources {
		probeCtx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
		err := src.Ping(probeCtx)
		cancel()

		if errors.Is(err, adapter.ErrSourceUnavailable) {
			log.Debug().Str("func", "Monitor.Check").Str("source", src.Name).Msg("connectivity source unavailable, trying next")
			continue
		}
		if ctx.Err() != nil {
			return m.Status()
		}
		if err != nil {
			log.Debug().Err(err).Str("func", "Monitor.Check").Str("source", src.Name).Msg("probe failed")
		}

		m.apply(ctx, err == nil, src.Name)
		return m.Status()
	}

	return m.Status()
}

// Force pins the state to connected or disconnected until Release is
// called. It backs the manual online/offline switch.
func (m *Monitor) Force(ctx context.Context, connected bool) {
	m.mu.Lock()
	m.forced = &connected
	m.mu.Unlock()

	m.apply(ctx, connected, SourceManual)
}

// Release drops a state set by Force and probes again.
func (m *Monitor) Release(ctx context.Context) models.ConnectivityState {
	m.mu.Lock()
	m.forced = nil
	m.mu.Unlock()

	return m.Check(ctx)
}

func (m *Monitor) apply(ctx context.Context, connected bool, source string) {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	m.mu.Lock()
	if m.state.Connected == connected {
		m.state.Source = source
		m.mu.Unlock()
		return
	}
	m.state = models.ConnectivityState{Connected: connected, Source: source, ChangedAt: time.Now().UTC()}
	state := m.state
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	logger.FromContext(ctx).Info().
		Bool("connected", state.Connected).
		Str("source", state.Source).
		Msg("connectivity changed")

	for _, s := range subs {
		s.fn(state)
	}
}

// Start runs the corrective check after the initial delay and then polls on
// the probe interval until ctx is cancelled or Stop is called. Calling Start
// again restarts the loop.
func (m *Monitor) Start(ctx context.Context) {
	m.Stop()

	m.runMu.Lock()
	runCtx, cancel := context.WithCancel(m.logger.WithContext(ctx))
	m.cancel = cancel
	m.wg.Add(1)
	m.runMu.Unlock()

	go func() {
		defer m.wg.Done()

		initial := time.NewTimer(m.initialCheckDelay)
		defer initial.Stop()
		select {
		case <-runCtx.Done():
			return
		case <-initial.C:
			m.Check(runCtx)
		}

		t := time.NewTicker(m.probeInterval)
		defer t.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-t.C:
				m.Check(runCtx)
			}
		}
	}()
}

// Stop cancels the polling goroutine and waits for it to exit. Safe to call
// when the monitor is not running.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.runMu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}
