// Package tracker counts outstanding asynchronous device and copy
// operations and tracks the live handles observing the counter. A node can
// be dependency-satisfied in the graph sense while its data is still in
// flight; the tracker is what the dependency layer consults before treating
// the node's outputs as safe to read.
//
// Trackers are recycled by their owning pool. Retirement is an explicit,
// lock-protected state transition: once a tracker retires, handle
// registration is refused and callers must treat the tracked operation as
// already gone rather than retry.
package tracker

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Tracker counts pending asynchronous operations and registers the handles
// holding it. The counter is lock-free; the holder set and the retired state
// share the tracker's own mutex, independent of any graph lock.
type Tracker struct {
	pending atomic.Int32

	mu      sync.Mutex
	holders map[*Handle]struct{}
	retired bool
}

// New creates an empty, accepting tracker.
func New() *Tracker {
	return &Tracker{holders: make(map[*Handle]struct{})}
}

// AddOp records the launch of one asynchronous operation.
func (t *Tracker) AddOp() {
	t.pending.Add(1)
}

// CompleteOp records the completion of one operation. Completing more
// operations than were launched is a protocol violation.
func (t *Tracker) CompleteOp() {
	if t.pending.Add(-1) < 0 {
		panic("tracker: completion signaled with no pending operation")
	}
}

// AllCompleted reports whether every launched operation has completed.
func (t *Tracker) AllCompleted() bool {
	return t.pending.Load() == 0
}

// NumOps returns a snapshot of the pending-operation counter, for
// diagnostics.
func (t *Tracker) NumOps() int32 {
	return t.pending.Load()
}

// Retire stops the tracker from accepting new holders. Existing handles stay
// registered until released.
func (t *Tracker) Retire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.retired = true
}

// Reusable reports whether the tracker may be handed out again by its owning
// pool: no live holders and no pending operations.
func (t *Tracker) Reusable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.holders) == 0 && t.pending.Load() == 0
}

// Reset returns a retired tracker to the accepting state. It fails if the
// tracker still has holders or pending operations.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.holders) != 0 {
		return fmt.Errorf("tracker: reset with %d live holders", len(t.holders))
	}
	if t.pending.Load() != 0 {
		return fmt.Errorf("tracker: reset with %d pending operations", t.pending.Load())
	}
	t.retired = false
	return nil
}

// NumHolders returns the current size of the holder set, for diagnostics.
func (t *Tracker) NumHolders() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.holders)
}

// addFirstRef registers the very first handle of a fresh tracker. It always
// succeeds; binding a brand-new tracker cannot race with retirement.
func (t *Tracker) addFirstRef(h *Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.holders[h] = struct{}{}
}

// addRef registers an additional holder. It refuses registration when the
// tracker is retired, in which case the caller's handle stays unbound.
func (t *Tracker) addRef(h *Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.retired {
		return false
	}
	t.holders[h] = struct{}{}
	return true
}

// delRef removes a holder from the registry.
func (t *Tracker) delRef(h *Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.holders, h)
}
