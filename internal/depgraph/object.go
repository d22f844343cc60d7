package depgraph

import "github.com/vk/taskgridgo/internal/work"

// Object is the closed set of node variants the graph schedules. Every
// variant shares a Node base; DependenciesSatisfied is the hook fired exactly
// once when the predecessor countdown reaches zero. The exactly-once
// guarantee comes from the atomic countdown, so implementations need not
// re-check.
type Object interface {
	ID() int
	DepNode() *Node
	DependenciesSatisfied()
}

// TaskObject is the plain task node variant: when its dependencies are
// satisfied it hands its work item to the scheduling policy.
type TaskObject struct {
	Node
}

// NewTask creates a task node with the given graph id, associated work item
// and scheduling policy.
func NewTask(id int, item work.Item, policy Policy) *TaskObject {
	t := &TaskObject{}
	t.Node.init(id, item, policy, t)
	return t
}

// DependenciesSatisfied requests scheduling of the associated work item.
func (t *TaskObject) DependenciesSatisfied() {
	if t.policy != nil {
		t.policy.Ready(t)
	}
}

// GuardObject is the re-enterable variant used for constructs like
// commutative-region guards: when satisfied it runs its release function and
// clears its submission flags so the domain may submit it again.
type GuardObject struct {
	Node
	release func()
}

// NewGuard creates a guard node whose release function fires each time the
// guard's dependencies are satisfied.
func NewGuard(id int, release func(), policy Policy) *GuardObject {
	g := &GuardObject{release: release}
	g.Node.init(id, nil, policy, g)
	return g
}

// DependenciesSatisfied runs the guard's release function and re-arms the
// node for another submission round.
func (g *GuardObject) DependenciesSatisfied() {
	if g.release != nil {
		g.release()
	}
	g.DisableSubmission()
}
