package resource

import (
	"context"
	"runtime"

	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/work"
)

// fiber is one work item's execution context on a resource: a goroutine
// parked on its resume channel until it is handed the resource's run token.
type fiber struct {
	item work.Item
	// resume carries the run token. Buffered so a transfer never blocks the
	// side handing the token over.
	resume    chan struct{}
	started   bool
	abandoned bool
}

// runItem hands the run token to the fiber for item, starting it on first
// use or resuming it if it was switched out earlier, then blocks until some
// fiber of this resource runs to completion. The completed item is returned;
// with switching it may differ from the one handed in.
func (r *Resource) runItem(ctx context.Context, item work.Item) (work.Item, error) {
	r.mu.Lock()
	f := r.fiberFor(item)
	r.current = f
	r.mu.Unlock()

	r.startFiber(ctx, f)
	f.resume <- struct{}{}

	done := <-r.yield
	r.mu.Lock()
	r.current = nil
	delete(r.fibers, done.item)
	r.mu.Unlock()
	return done.item, done.err
}

// SwitchTo transfers the run token to another work item and parks the
// calling item's fiber. The caller remains schedulable and resumes when the
// token comes back, either through a switch or through the scheduler running
// it again. Must be called from within a running work item.
func (r *Resource) SwitchTo(ctx context.Context, item work.Item) {
	r.mu.Lock()
	cur := r.current
	if cur == nil {
		r.mu.Unlock()
		panic("resource: SwitchTo outside a running work item")
	}
	if cur.item == item {
		r.mu.Unlock()
		panic("resource: SwitchTo to the running item itself")
	}
	next := r.fiberFor(item)
	r.current = next
	r.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Switching work item.",
		"resource", r.id, "from", cur.item.Name(), "to", item.Name())
	r.startFiber(ctx, next)
	next.resume <- struct{}{}
	<-cur.resume
}

// ExitTo transfers the run token to another work item and permanently
// abandons the calling item's context. It never returns.
func (r *Resource) ExitTo(ctx context.Context, item work.Item) {
	r.mu.Lock()
	cur := r.current
	if cur == nil {
		r.mu.Unlock()
		panic("resource: ExitTo outside a running work item")
	}
	cur.abandoned = true
	next := r.fiberFor(item)
	r.current = next
	delete(r.fibers, cur.item)
	r.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Exiting work item.",
		"resource", r.id, "from", cur.item.Name(), "to", item.Name())
	r.startFiber(ctx, next)
	next.resume <- struct{}{}
	runtime.Goexit()
}

// fiberFor returns the existing fiber for item or registers a new one.
// Caller holds r.mu.
func (r *Resource) fiberFor(item work.Item) *fiber {
	if f, ok := r.fibers[item]; ok {
		return f
	}
	f := &fiber{item: item, resume: make(chan struct{}, 1)}
	r.fibers[item] = f
	return f
}

// startFiber launches the fiber's goroutine on first use. The goroutine
// waits for the run token, executes the item, and hands the token back to
// the worker through the yield channel unless the fiber was abandoned.
func (r *Resource) startFiber(ctx context.Context, f *fiber) {
	r.mu.Lock()
	if f.started {
		r.mu.Unlock()
		return
	}
	f.started = true
	r.mu.Unlock()

	go func() {
		<-f.resume
		err := f.item.Run(ctx)
		if f.abandoned {
			return
		}
		r.yield <- fiberDone{item: f.item, err: err}
	}()
}

// fiberDone carries a completed item and its result back to the worker.
type fiberDone struct {
	item work.Item
	err  error
}
