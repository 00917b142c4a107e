package shell

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MKhiriev/field-crm/internal/logger"
)

// reloadDelay groups the burst of events an editor produces for one save.
const reloadDelay = 100 * time.Millisecond

// Watcher reloads a disk-backed [Shell] when files in its directory change.
type Watcher struct {
	shell  *Shell
	logger *logger.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	// onReload is called after every reload attempt.
	onReload func(error)
}

func NewWatcher(shell *Shell, logger *logger.Logger) *Watcher {
	return &Watcher{shell: shell, logger: logger}
}

// Start begins watching. It is a no-op for embedded assets or when the
// watcher is already running.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher != nil || w.shell.Dir() == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Err(err).Str("func", "Watcher.Start").Msg("failed to create fsnotify watcher")
		return
	}
	if err = watcher.Add(w.shell.Dir()); err != nil {
		watcher.Close()
		w.logger.Err(err).Str("func", "Watcher.Start").Str("dir", w.shell.Dir()).Msg("failed to watch shell assets directory")
		return
	}

	w.watcher = watcher
	w.done = make(chan struct{})
	w.wg.Add(1)
	go w.processEvents(ctx, watcher, w.done)

	w.logger.Info().Str("dir", w.shell.Dir()).Msg("watching shell assets")
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	watcher, done := w.watcher, w.done
	w.watcher, w.done = nil, nil
	w.mu.Unlock()

	if watcher == nil {
		return
	}

	close(done)
	if err := watcher.Close(); err != nil {
		w.logger.Err(err).Str("func", "Watcher.Stop").Msg("failed to close watcher")
	}
	w.wg.Wait()
}

func (w *Watcher) processEvents(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer w.wg.Done()

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			timer.Reset(reloadDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Err(err).Str("func", "Watcher.processEvents").Msg("fsnotify error")

		case <-timer.C:
			err := w.shell.Reload()
			if err != nil {
				w.logger.Warn().Err(err).Msg("shell reload failed, keeping previous assets")
			} else {
				w.logger.Info().Str("version", w.shell.Version()).Msg("shell assets reloaded")
			}
			if w.onReload != nil {
				w.onReload(err)
			}
		}
	}
}
