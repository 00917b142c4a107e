// Package workers manages the background workers of the client: the
// connectivity monitor, the sync job and the shell watcher.
// It defines the Worker interface and a Workers aggregate that starts and
// stops them together.
package workers

import "context"

// Worker is a background loop with an explicit lifecycle.
//
// Start must return promptly; the work runs on goroutines the worker owns
// until ctx is cancelled or Stop is called. Stop blocks until those
// goroutines have exited and is safe to call on a worker that was never
// started.
//
// Example implementation:
//
//	type ticker struct {
//	    cancel context.CancelFunc
//	    wg     sync.WaitGroup
//	}
//
//	func (t *ticker) Start(ctx context.Context) {
//	    ctx, t.cancel = context.WithCancel(ctx)
//	    t.wg.Add(1)
//	    go func() { defer t.wg.Done(); <-ctx.Done() }()
//	}
//
//	func (t *ticker) Stop() { t.cancel(); t.wg.Wait() }
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
