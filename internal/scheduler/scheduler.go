package scheduler

import (
	"context"
	"sync"

	"github.com/vk/taskgridgo/internal/depgraph"
)

// FIFO is the default scheduling policy: nodes become ready in countdown
// order and are handed out first-in, first-out over a buffered channel.
// It implements depgraph.Policy.
type FIFO struct {
	ch        chan depgraph.Object
	closeOnce sync.Once

	// mu guards the per-node payload this policy owns.
	mu sync.Mutex
}

// EdgeStats is the policy-private bookkeeping FIFO stores in each node's
// scheduler payload slot: how many successor edges and how many
// predecessor-finished releases the policy has observed for the node.
type EdgeStats struct {
	Edges    int64
	Releases int64
}

// NewFIFO creates a policy whose ready queue holds up to capacity nodes
// before producers block.
func NewFIFO(capacity int) *FIFO {
	if capacity < 1 {
		capacity = 1
	}
	return &FIFO{ch: make(chan depgraph.Object, capacity)}
}

// AtSuccessor records edge and release counts in the successor's scheduler
// payload slot. Called by the graph for every new edge (released == 0) and
// for every finished predecessor (released > 0).
func (f *FIFO) AtSuccessor(successor, finished depgraph.Object, released int, remaining int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := successor.DepNode()
	stats, ok := n.SchedulerData().(*EdgeStats)
	if !ok {
		stats = &EdgeStats{}
		n.SetSchedulerData(stats)
	}
	if released == 0 {
		stats.Edges++
	} else {
		stats.Releases += int64(released)
	}
}

// Ready enqueues a dependency-satisfied node. The countdown protocol
// guarantees each node arrives here at most once per submission.
func (f *FIFO) Ready(o depgraph.Object) {
	f.ch <- o
}

// Next blocks until a ready node is available, the queue is closed, or the
// context is canceled. The second return is false when no more nodes will
// arrive.
func (f *FIFO) Next(ctx context.Context) (depgraph.Object, bool) {
	select {
	case o, ok := <-f.ch:
		return o, ok
	case <-ctx.Done():
		return nil, false
	}
}

// Close marks the queue as complete. Safe to call more than once.
func (f *FIFO) Close() {
	f.closeOnce.Do(func() { close(f.ch) })
}

// Stats returns a copy of the policy bookkeeping for the node, or zeroes if
// the policy has not touched it yet.
func (f *FIFO) Stats(o depgraph.Object) EdgeStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := o.DepNode().SchedulerData().(*EdgeStats); ok {
		return *s
	}
	return EdgeStats{}
}
