package depgraph

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/vk/taskgridgo/internal/tracker"
	"github.com/vk/taskgridgo/internal/work"
)

// Policy is the scheduling policy hook surface the graph notifies. The
// concrete policy lives outside this package; nodes only call into it when a
// successor edge is recorded and when their countdown reaches zero.
type Policy interface {
	// AtSuccessor is invoked for every new successor edge and for every
	// predecessor-finished event, with the number of releases this call
	// represents and, for releases, the successor's remaining predecessor
	// count. Edge notifications carry zero for both. Policies use it to
	// batch wake-ups or to maintain custom ordering metadata.
	AtSuccessor(successor, finished Object, released int, remaining int32)
	// Ready receives a node whose dependencies are all satisfied.
	Ready(o Object)
}

// Node carries the dependency state shared by all node variants: the atomic
// predecessor countdown, the deduplicated edge sets, the owned target
// clones, and the submission flags. Embed it via one of the Object variants;
// it is not schedulable on its own.
type Node struct {
	id   int
	self Object

	numPredecessors atomic.Int32
	references      atomic.Int32

	// mu guards the edge sets, target lists and the scheduler payload.
	// It is per-node: two nodes never contend on each other's mutations.
	mu           sync.Mutex
	predecessors map[int]Object
	successors   map[int]Object
	readTargets  []*Target
	writeTargets []*Target

	submitted       atomic.Bool
	needsSubmission atomic.Bool

	item   work.Item
	policy Policy
	ops    *tracker.Tracker

	schedulerData any
}

func (n *Node) init(id int, item work.Item, policy Policy, self Object) {
	n.id = id
	n.item = item
	n.policy = policy
	n.self = self
	n.predecessors = make(map[int]Object)
	n.successors = make(map[int]Object)
	n.references.Store(1)
}

// ID returns the node's graph-unique identifier.
func (n *Node) ID() int {
	return n.id
}

// DepNode lets every variant expose its shared state through the Object
// interface. The accessor cannot be called Node: in the variants the embedded
// field of that name would shadow the promoted method.
func (n *Node) DepNode() *Node {
	return n
}

// Work returns the work item this node represents. The node does not own it.
func (n *Node) Work() work.Item {
	return n.item
}

// SetWork replaces the associated work item.
func (n *Node) SetWork(item work.Item) {
	n.item = item
}

// AddPredecessor records depObj as a predecessor of this node. It returns
// whether the edge was newly added; the set is deduplicated.
func (n *Node) AddPredecessor(depObj Object) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.predecessors[depObj.ID()]; ok {
		return false
	}
	n.predecessors[depObj.ID()] = depObj
	return true
}

// AddSuccessor records depObj as a successor of this node and notifies the
// scheduling policy of the new edge. It returns whether the edge was newly
// added.
func (n *Node) AddSuccessor(depObj Object) bool {
	if depObj.ID() == n.id {
		panic(fmt.Sprintf("depgraph: self-referential edge on node %d", n.id))
	}
	if n.policy != nil {
		n.policy.AtSuccessor(depObj, n.self, 0, 0)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.successors[depObj.ID()]; ok {
		return false
	}
	n.successors[depObj.ID()] = depObj
	return true
}

// DeleteSuccessor removes depObj from the successor set, returning whether
// it was present.
func (n *Node) DeleteSuccessor(depObj Object) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.successors[depObj.ID()]; !ok {
		return false
	}
	delete(n.successors, depObj.ID())
	return true
}

// IncreasePredecessors atomically increments the predecessor count and
// returns the new value. Called by the domain while it is still wiring
// edges, before the node is eligible to count down.
func (n *Node) IncreasePredecessors() int32 {
	return n.numPredecessors.Add(1)
}

// DecreasePredecessors atomically decrements the predecessor count and
// returns the post-decrement value. Exactly one of any number of concurrent
// callers observes zero. Unless the caller requested a batched release, the
// winner fires the variant's DependenciesSatisfied hook immediately; with
// batch set, the caller is responsible for firing the hook itself once the
// whole batch of decrements is done.
//
// The blocking flag is accepted for interface parity with callers that wait
// for the release; this core never blocks here.
func (n *Node) DecreasePredecessors(finished Object, batch, blocking bool) int32 {
	remaining := n.numPredecessors.Add(-1)
	if remaining < 0 {
		panic(fmt.Sprintf("depgraph: predecessor count underflow on node %d", n.id))
	}
	if n.policy != nil {
		n.policy.AtSuccessor(n.self, finished, 1, remaining)
	}
	if remaining == 0 && !batch {
		n.self.DependenciesSatisfied()
	}
	return remaining
}

// NumPredecessors returns the current predecessor count.
func (n *Node) NumPredecessors() int32 {
	return n.numPredecessors.Load()
}

// Predecessors returns a snapshot of the predecessor set, ordered by id.
func (n *Node) Predecessors() []Object {
	n.mu.Lock()
	defer n.mu.Unlock()
	return sortedObjects(n.predecessors)
}

// Successors returns a snapshot of the successor set, ordered by id.
func (n *Node) Successors() []Object {
	n.mu.Lock()
	defer n.mu.Unlock()
	return sortedObjects(n.successors)
}

// AddReadTarget appends a clone of the descriptor to the read-target list.
// The node owns the clone; the caller keeps its original.
func (n *Node) AddReadTarget(t Target) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.readTargets = append(n.readTargets, t.Clone())
}

// AddWriteTarget appends a clone of the descriptor to the write-target list.
func (n *Node) AddWriteTarget(t Target) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.writeTargets = append(n.writeTargets, t.Clone())
}

// ReadTargets returns a snapshot of the node's read-target clones.
func (n *Node) ReadTargets() []*Target {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Target, len(n.readTargets))
	copy(out, n.readTargets)
	return out
}

// WriteTargets returns a snapshot of the node's write-target clones.
func (n *Node) WriteTargets() []*Target {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Target, len(n.writeTargets))
	copy(out, n.writeTargets)
	return out
}

// Submitted marks the node as submitted to the domain. The atomic store
// publishes every edge and target write made before this call to any thread
// that later observes IsSubmitted()==true.
func (n *Node) Submitted() {
	n.needsSubmission.Store(true)
	n.submitted.Store(true)
}

// IsSubmitted reports whether the node has been submitted.
func (n *Node) IsSubmitted() bool {
	return n.submitted.Load()
}

// NeedsSubmission reports whether the node may be (re-)entered into the
// domain.
func (n *Node) NeedsSubmission() bool {
	return n.needsSubmission.Load()
}

// EnableSubmission flags the node as eligible for submission.
func (n *Node) EnableSubmission() {
	n.needsSubmission.Store(true)
}

// DisableSubmission clears both submission flags so the node can be safely
// reused, such as a guard being re-armed.
func (n *Node) DisableSubmission() {
	n.needsSubmission.Store(false)
	n.submitted.Store(false)
}

// IncreaseReferences adds one external holder that must release before the
// node may be finalized.
func (n *Node) IncreaseReferences() int32 {
	return n.references.Add(1)
}

// ResetReferences sets the holder count back to one, the domain's own
// reference.
func (n *Node) ResetReferences() {
	n.references.Store(1)
}

// ReleaseReference drops one holder and returns the remaining count. The
// node is eligible for finalization at zero.
func (n *Node) ReleaseReference() int32 {
	remaining := n.references.Add(-1)
	if remaining < 0 {
		panic(fmt.Sprintf("depgraph: reference count underflow on node %d", n.id))
	}
	return remaining
}

// SetCompletionOps attaches the tracker counting this node's in-flight
// asynchronous device operations. The node is not finished until the tracker
// reports completion.
func (n *Node) SetCompletionOps(t *tracker.Tracker) {
	n.ops = t
}

// CompletionOps returns the attached completion tracker, or nil.
func (n *Node) CompletionOps() *tracker.Tracker {
	return n.ops
}

// SchedulerData returns the opaque payload a scheduling policy attached to
// this node.
func (n *Node) SchedulerData() any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.schedulerData
}

// SetSchedulerData stores policy-private bookkeeping on the node. The slot
// is owned by whichever policy sets it.
func (n *Node) SetSchedulerData(data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.schedulerData = data
}

// Detach unlinks the node from the graph prior to destruction: it removes
// itself from every remaining predecessor's successor set (under that
// predecessor's lock), then drops its owned target clones and edge sets.
func (n *Node) Detach() {
	n.mu.Lock()
	preds := sortedObjects(n.predecessors)
	n.mu.Unlock()

	for _, pred := range preds {
		pred.DepNode().DeleteSuccessor(n.self)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.predecessors = make(map[int]Object)
	n.successors = make(map[int]Object)
	n.readTargets = nil
	n.writeTargets = nil
}

func sortedObjects(set map[int]Object) []Object {
	out := make([]Object, 0, len(set))
	for _, o := range set {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
