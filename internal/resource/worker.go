package resource

import (
	"context"
	"sync/atomic"

	"github.com/vk/taskgridgo/internal/ctxlog"
)

// Worker is the run-loop entity executing work items on behalf of a
// resource. It owns no items; it runs whatever the source hands it until the
// source drains or Stop is called. Stopping is cooperative: the flag is
// observed at the next loop iteration, never mid-item.
type Worker struct {
	resource *Resource
	source   Source

	started  atomic.Bool
	mustStop atomic.Bool
	stopped  chan struct{}
}

// run is the worker loop. It tags the context with the resource so running
// items can reach their execution context for cooperative switches.
func (w *Worker) run(ctx context.Context) {
	logger := ctxlog.FromContext(ctx).With("resource", w.resource.ID())
	w.started.Store(true)
	defer close(w.stopped)

	logger.Debug("Worker started.")
	ctx = WithResource(ctx, w.resource)
	for !w.mustStop.Load() {
		if ctx.Err() != nil {
			break
		}
		if !w.ProcessWork(ctx) {
			break
		}
	}
	logger.Debug("Worker finished.")
}

// ProcessWork executes one step of the loop: pull the next ready item, run
// it to its next completion point, and report whichever item finished. It
// returns false once the source is exhausted.
func (w *Worker) ProcessWork(ctx context.Context) bool {
	item, ok := w.source.Next(ctx)
	if !ok {
		return false
	}
	finished, err := w.resource.runItem(ctx, item)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Work item failed.",
			"resource", w.resource.ID(), "item", finished.Name(), "error", err)
	}
	w.source.Done(finished, err)
	return true
}

// Stop requests termination. The loop exits at its next iteration; anything
// currently running completes normally.
func (w *Worker) Stop() {
	w.mustStop.Store(true)
}

// IsRunning reports started && !mustStop.
func (w *Worker) IsRunning() bool {
	return w.started.Load() && !w.mustStop.Load()
}

// Join blocks until the worker loop has exited.
func (w *Worker) Join() {
	<-w.stopped
}
