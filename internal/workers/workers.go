package workers

import "context"

type Workers struct {
	workers []Worker
}

// NewWorkers keeps the given order: workers are started in it and stopped in
// reverse. Nil workers are skipped.
func NewWorkers(workers ...Worker) *Workers {
	w := &Workers{}
	for _, worker := range workers {
		if worker != nil {
			w.workers = append(w.workers, worker)
		}
	}
	return w
}

func (w *Workers) Start(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Start(ctx)
	}
}

func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}
