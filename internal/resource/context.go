package resource

import "context"

// key is an unexported type to prevent collisions with context keys from
// other packages.
type key struct{}

var resourceKey = key{}

// WithResource returns a new context carrying the resource, so a running
// work item can locate the execution context that is driving it.
func WithResource(ctx context.Context, r *Resource) context.Context {
	return context.WithValue(ctx, resourceKey, r)
}

// FromContext extracts the resource driving the current work item. The
// second return is false when the context was not produced by a worker.
func FromContext(ctx context.Context) (*Resource, bool) {
	r, ok := ctx.Value(resourceKey).(*Resource)
	return r, ok
}
