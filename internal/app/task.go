package app

import (
	"context"
	"time"

	"github.com/vk/taskgridgo/internal/config"
	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/resource"
	"github.com/vk/taskgridgo/internal/tracker"
)

// simTask is the work item behind a declared grid task: it burns the
// configured amount of simulated compute and launches the configured number
// of asynchronous device operations, draining its completion tracker before
// returning.
type simTask struct {
	name     string
	busy     time.Duration
	asyncOps int
	ops      *tracker.Tracker
}

func newSimTask(t *config.Task) *simTask {
	st := &simTask{
		name:     t.Name,
		busy:     time.Duration(t.BusyUS) * time.Microsecond,
		asyncOps: t.AsyncOps,
	}
	if t.AsyncOps > 0 {
		st.ops = tracker.New()
	}
	return st
}

func (t *simTask) Name() string {
	return t.name
}

func (t *simTask) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("task", t.name)
	if r, ok := resource.FromContext(ctx); ok {
		logger = logger.With("resource", r.ID())
	}
	logger.Debug("Task started.")

	if t.busy > 0 {
		time.Sleep(t.busy)
	}

	if t.asyncOps > 0 {
		h := tracker.NewHandle(t.ops)
		defer h.Release()

		signaled := make(chan struct{}, t.asyncOps)
		for i := 0; i < t.asyncOps; i++ {
			t.ops.AddOp()
			// Simulated device: completes the operation a moment later.
			go func() {
				time.Sleep(time.Millisecond)
				t.ops.CompleteOp()
				signaled <- struct{}{}
			}()
		}
		// Device operations cannot be abandoned mid-flight: drain them all
		// before honoring cancellation.
		for i := 0; i < t.asyncOps; i++ {
			<-signaled
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	logger.Debug("Task finished.")
	return nil
}
