// Package resource models the hardware execution contexts work items run
// on. A Resource hosts one Worker; the Worker's goroutine cooperatively
// multiplexes work items via explicit context switches instead of spawning a
// new goroutine per item.
//
// Each item executes on a fiber: a goroutine parked on a resume channel.
// Exactly one run token circulates per resource, so at most one fiber of a
// resource runs at a time. SwitchTo hands the token to another item and
// parks the caller until something switches back or the scheduler re-runs
// it; ExitTo hands the token over and abandons the calling fiber for good.
// There is no preemption: suspension happens only at these switch points.
package resource
