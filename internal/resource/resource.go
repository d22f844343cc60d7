package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/taskgridgo/internal/work"
)

// Source supplies a worker with ready work items and receives their
// completions. The scheduling policy behind it decides ordering; the
// resource only executes.
type Source interface {
	// Next blocks until an item is ready, returning false when no more
	// items will arrive or the context is canceled.
	Next(ctx context.Context) (work.Item, bool)
	// Done reports that an item ran to completion, with its error if any.
	Done(item work.Item, err error)
}

// Resource is one execution context: an identity, an architecture tag, an
// opaque slot for scheduling-group data, and the Worker driving it.
type Resource struct {
	id   int
	arch string

	mu      sync.Mutex
	group   any
	worker  *Worker
	current *fiber
	fibers  map[work.Item]*fiber

	// yield returns the run token to the worker when a fiber completes.
	yield chan fiberDone
}

// New creates a resource with the given identity and architecture tag. The
// worker is started separately.
func New(id int, arch string) *Resource {
	return &Resource{
		id:     id,
		arch:   arch,
		fibers: make(map[work.Item]*fiber),
		yield:  make(chan fiberDone, 1),
	}
}

// ID returns the resource's identity.
func (r *Resource) ID() int {
	return r.id
}

// Architecture returns the resource's architecture tag.
func (r *Resource) Architecture() string {
	return r.arch
}

// SchedulingGroup returns the opaque scheduling-group data attached to this
// resource. The slot is owned by the external scheduling policy.
func (r *Resource) SchedulingGroup() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.group
}

// SetSchedulingGroup attaches scheduling-policy-private data.
func (r *Resource) SetSchedulingGroup(group any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.group = group
}

// CurrentItem returns the work item currently holding the resource's run
// token, or nil when the resource is idle.
func (r *Resource) CurrentItem() work.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	return r.current.item
}

// Worker returns the worker bound to this resource, or nil before
// StartWorker or Associate.
func (r *Resource) Worker() *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.worker
}

// StartWorker creates the resource's worker and starts its loop on a new
// goroutine. It fails if the resource already has a worker.
func (r *Resource) StartWorker(ctx context.Context, src Source) (*Worker, error) {
	w, err := r.bindWorker(src)
	if err != nil {
		return nil, err
	}
	go w.run(ctx)
	return w, nil
}

// Associate binds the calling goroutine as the resource's worker and runs
// the worker loop inline until it stops. It must be invoked from the
// execution context that will serve the resource, not on its behalf.
func (r *Resource) Associate(ctx context.Context, src Source) error {
	w, err := r.bindWorker(src)
	if err != nil {
		return err
	}
	w.run(ctx)
	return nil
}

// StopAll requests termination of the resource's worker. The flag is
// observed at the worker's next loop iteration; a running item is never
// unwound mid-execution.
func (r *Resource) StopAll() {
	if w := r.Worker(); w != nil {
		w.Stop()
	}
}

// IsRunning reports whether the resource's worker has started and has not
// been asked to stop.
func (r *Resource) IsRunning() bool {
	w := r.Worker()
	return w != nil && w.IsRunning()
}

func (r *Resource) bindWorker(src Source) (*Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.worker != nil {
		return nil, fmt.Errorf("resource %d already has a worker", r.id)
	}
	w := &Worker{
		resource: r,
		source:   src,
		stopped:  make(chan struct{}),
	}
	r.worker = w
	return w, nil
}
