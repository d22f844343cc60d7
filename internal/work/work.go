// Package work defines the contract for the units of execution scheduled by
// the runtime. The dependency graph and the execution resources hold
// non-owning references to items; ownership stays with whoever submitted them.
package work

import "context"

// Item is a single schedulable unit of work. Run is invoked by a worker once
// the item's dependencies are satisfied, with a context that carries the
// logger and the execution resource driving it.
type Item interface {
	// Name returns a human-readable identifier used in logs and errors.
	Name() string
	// Run executes the item until it completes or suspends. It must honor
	// cancellation of the provided context.
	Run(ctx context.Context) error
}
