// Package depgraph is the dependency-tracking core of the runtime. It holds
// the nodes of the task dependency graph, their predecessor/successor
// relations, and the lock-free countdown protocol that decides when a node
// becomes ready to run.
//
// A node's predecessor count is decremented atomically by whichever worker
// finishes a predecessor; exactly one of the concurrent callers observes the
// transition to zero and fires the node's ready hook. Structural mutations
// (edges, target lists) are serialized per node by that node's own mutex, so
// two different nodes can always be mutated concurrently.
//
// Nodes come in a small, closed set of variants (see Object): plain task
// nodes that schedule their work item when satisfied, and guard nodes that
// can be re-armed and submitted again. The exactly-once guarantee belongs to
// the countdown, not to the variant receiving the callback.
package depgraph
