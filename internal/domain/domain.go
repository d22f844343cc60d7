// Package domain owns the registry of dependency nodes and discovers
// dependency edges from overlapping memory accesses. Submitting a work item
// with its read and write regions wires the node against every earlier
// conflicting access (write-after-write, write-after-read, read-after-write)
// and releases it for countdown; finishing a node batch-releases its
// successors and detaches it from the graph.
package domain

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/depgraph"
	"github.com/vk/taskgridgo/internal/work"
)

// access is one recorded read or write of a live node, kept until the node
// finishes so later submissions can find conflicts.
type access struct {
	target depgraph.Target
	obj    depgraph.Object
	write  bool
}

// Domain is the dependency domain: node registry, id allocation, and the
// access history edges are discovered from. A single mutex serializes
// submissions and completion bookkeeping; the countdown itself stays
// lock-free on the nodes.
type Domain struct {
	policy depgraph.Policy

	mu       sync.Mutex
	nextID   int
	nodes    map[int]depgraph.Object
	accesses []access
	// done marks nodes that have finished but are still registered because
	// an external holder keeps a reference. They are never valid
	// predecessors.
	done map[int]struct{}

	// wg tracks submitted-but-unfinished nodes so callers can wait for the
	// graph to drain.
	wg sync.WaitGroup
}

// New creates an empty domain wired to the given scheduling policy.
func New(policy depgraph.Policy) *Domain {
	return &Domain{
		policy: policy,
		nodes:  make(map[int]depgraph.Object),
		done:   make(map[int]struct{}),
	}
}

// Submit creates a task node for the work item, discovers its dependency
// edges from the given read and write regions plus any explicit
// predecessors, and releases it for scheduling. Returns the new node.
func (d *Domain) Submit(ctx context.Context, item work.Item, reads, writes []depgraph.Target, after ...depgraph.Object) *depgraph.TaskObject {
	obj := depgraph.NewTask(d.NewID(), item, d.policy)
	d.SubmitObject(ctx, obj, reads, writes, after...)
	return obj
}

// SubmitObject enters a caller-constructed node into the domain. Guard nodes
// clear their own submission flags when satisfied, so the same object may be
// submitted again afterwards; re-submitting before then is a protocol
// violation.
func (d *Domain) SubmitObject(ctx context.Context, obj depgraph.Object, reads, writes []depgraph.Target, after ...depgraph.Object) {
	n := obj.DepNode()
	if n.IsSubmitted() {
		panic(fmt.Sprintf("domain: node %d submitted twice", n.ID()))
	}
	d.mu.Lock()
	n.ResetReferences()
	d.wire(ctx, obj, reads, writes, after)
	d.mu.Unlock()

	d.release(ctx, obj)
}

// NewID allocates a graph-unique id for a caller-constructed node.
func (d *Domain) NewID() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	return id
}

// Policy returns the scheduling policy this domain notifies.
func (d *Domain) Policy() depgraph.Policy {
	return d.policy
}

// Node returns the live node with the given id.
func (d *Domain) Node(id int) (depgraph.Object, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.nodes[id]
	return o, ok
}

// Size returns the number of live nodes.
func (d *Domain) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.nodes)
}

// Wait blocks until every submitted node has finished.
func (d *Domain) Wait() {
	d.wg.Wait()
}

// wire records the node, clones its targets, and adds one predecessor edge
// per conflicting earlier access or explicit predecessor. The node starts
// with one extra predecessor, the submission guard, so it cannot fire while
// edges are still being added. Caller holds d.mu.
func (d *Domain) wire(ctx context.Context, obj depgraph.Object, reads, writes []depgraph.Target, after []depgraph.Object) {
	logger := ctxlog.FromContext(ctx)
	n := obj.DepNode()
	n.IncreasePredecessors()

	for _, t := range reads {
		n.AddReadTarget(t)
		d.linkConflicts(ctx, obj, t, false)
	}
	for _, t := range writes {
		n.AddWriteTarget(t)
		d.linkConflicts(ctx, obj, t, true)
	}
	for _, pred := range after {
		d.linkEdge(obj, pred)
	}

	for _, t := range reads {
		d.accesses = append(d.accesses, access{target: t, obj: obj, write: false})
	}
	for _, t := range writes {
		d.accesses = append(d.accesses, access{target: t, obj: obj, write: true})
	}

	d.nodes[n.ID()] = obj
	delete(d.done, n.ID())
	d.wg.Add(1)
	logger.Debug("Node wired.", "node", n.ID(),
		"predecessors", n.NumPredecessors()-1, "reads", len(reads), "writes", len(writes))
}

// linkConflicts adds an edge from every earlier access that conflicts with
// the given region: a write conflicts with any earlier access, a read only
// with earlier writes. Caller holds d.mu.
func (d *Domain) linkConflicts(ctx context.Context, obj depgraph.Object, t depgraph.Target, write bool) {
	for _, a := range d.accesses {
		if a.obj.ID() == obj.ID() {
			continue
		}
		if !a.target.Overlaps(t) {
			continue
		}
		if !write && !a.write {
			continue
		}
		d.linkEdge(obj, a.obj)
	}
}

// linkEdge wires pred before obj, counting the predecessor only when the
// deduplicated edge is new. A predecessor that is no longer live, or that
// has finished and is merely held by external references, contributes no
// edge: nothing would ever decrement it. The count is raised before the edge
// becomes visible in pred's successor set, so a concurrent completion of
// pred can never drive obj to zero while wiring is still in progress. Caller
// holds d.mu.
func (d *Domain) linkEdge(obj, pred depgraph.Object) {
	if _, live := d.nodes[pred.ID()]; !live {
		return
	}
	if _, finished := d.done[pred.ID()]; finished {
		return
	}
	if obj.DepNode().AddPredecessor(pred) {
		obj.DepNode().IncreasePredecessors()
		pred.DepNode().AddSuccessor(obj)
	}
}

// release publishes the node and drops the submission guard. If no real
// predecessor remains, this final decrement is the one that fires the ready
// hook.
func (d *Domain) release(ctx context.Context, obj depgraph.Object) {
	n := obj.DepNode()
	n.Submitted()
	n.DecreasePredecessors(nil, false, false)
	ctxlog.FromContext(ctx).Debug("Node submitted.", "node", n.ID())
}

// Finished reports that the node's work item has completed. Its successors
// are released as one batch: every countdown is decremented first and the
// ready hooks fire only afterwards, so a completion that satisfies many
// successors causes no redundant wake-ups. The node is then detached and,
// once its external references drain, finalized.
//
// Calling Finished while the node's completion tracker still has in-flight
// operations is a protocol violation: the node's outputs are not safe to
// read yet.
func (d *Domain) Finished(ctx context.Context, obj depgraph.Object) {
	logger := ctxlog.FromContext(ctx)
	n := obj.DepNode()
	if t := n.CompletionOps(); t != nil && !t.AllCompleted() {
		panic(fmt.Sprintf("domain: node %d finished with %d in-flight device operations", n.ID(), t.NumOps()))
	}

	// The access drop, the done marker and the successor snapshot move as one
	// step under d.mu: a submission wiring after this point sees the node as
	// finished and adds no edge, one wiring before it has already made its
	// edge visible to the snapshot.
	d.mu.Lock()
	d.dropAccesses(obj)
	d.done[n.ID()] = struct{}{}
	succs := n.Successors()
	d.mu.Unlock()

	var ready []depgraph.Object
	for _, s := range succs {
		if s.DepNode().DecreasePredecessors(obj, true, false) == 0 {
			ready = append(ready, s)
		}
	}
	for _, s := range ready {
		s.DependenciesSatisfied()
	}
	logger.Debug("Node finished.", "node", n.ID(),
		"successors", len(succs), "released", len(ready))

	n.Detach()
	if n.ReleaseReference() == 0 {
		d.mu.Lock()
		delete(d.nodes, n.ID())
		delete(d.done, n.ID())
		d.mu.Unlock()
	}
	d.wg.Done()
}

// Release drops one external holder's reference to a node. The last release
// after the node has finished finalizes it.
func (d *Domain) Release(obj depgraph.Object) {
	if obj.DepNode().ReleaseReference() == 0 {
		d.mu.Lock()
		delete(d.nodes, obj.ID())
		delete(d.done, obj.ID())
		d.mu.Unlock()
	}
}

// dropAccesses removes the node's recorded accesses so future submissions no
// longer see it as a conflict source. Caller holds d.mu.
func (d *Domain) dropAccesses(obj depgraph.Object) {
	kept := d.accesses[:0]
	for _, a := range d.accesses {
		if a.obj.ID() != obj.ID() {
			kept = append(kept, a)
		}
	}
	d.accesses = kept
}
