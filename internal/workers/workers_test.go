// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type runKey struct{}

// recordingWorker appends its name to a shared log on Start and Stop.
type recordingWorker struct {
	name string
	log  *[]string
	ctx  context.Context
}

func (r *recordingWorker) Start(ctx context.Context) {
	r.ctx = ctx
	*r.log = append(*r.log, "start "+r.name)
}

func (r *recordingWorker) Stop() {
	*r.log = append(*r.log, "stop "+r.name)
}

func TestWorkers_StartInOrderStopInReverse(t *testing.T) {
	var log []string
	monitor := &recordingWorker{name: "monitor", log: &log}
	job := &recordingWorker{name: "sync", log: &log}
	shell := &recordingWorker{name: "shell", log: &log}

	ws := NewWorkers(monitor, job, shell)
	ctx := context.WithValue(context.Background(), runKey{}, "run")
	ws.Start(ctx)
	ws.Stop()

	assert.Equal(t, []string{
		"start monitor", "start sync", "start shell",
		"stop shell", "stop sync", "stop monitor",
	}, log)
	assert.Equal(t, ctx, job.ctx)
}

func TestWorkers_SkipsNil(t *testing.T) {
	var log []string
	var none Worker

	ws := NewWorkers(none, &recordingWorker{name: "monitor", log: &log})
	assert.Len(t, ws.workers, 1)

	ws.Start(context.Background())
	ws.Stop()
	assert.Equal(t, []string{"start monitor", "stop monitor"}, log)
}

func TestWorkers_Empty(t *testing.T) {
	ws := NewWorkers()

	// пустой список не должен паниковать
	assert.NotPanics(t, func() {
		ws.Start(context.Background())
		ws.Stop()
	})
}
