package tracker

// Handle is a reference to at most one Tracker at a time. Handles share
// their tracker: cloning a bound handle registers the clone as a new holder
// of the same tracker, and releasing a handle deregisters it. The tracker's
// holder set therefore always reflects exactly the live handles pointing at
// it.
type Handle struct {
	t *Tracker
}

// NewHandle binds a fresh handle as the first holder of t.
func NewHandle(t *Tracker) *Handle {
	h := &Handle{t: t}
	t.addFirstRef(h)
	return h
}

// Clone returns a new handle observing the same tracker. If the tracker no
// longer accepts holders the clone is returned unbound; callers must treat
// that as "the tracked operation is already gone", never spin-retry.
func (h *Handle) Clone() *Handle {
	c := &Handle{}
	if h.t != nil && h.t.addRef(c) {
		c.t = h.t
	}
	return c
}

// Bind attaches an unbound handle as the first holder of a fresh tracker.
// Binding an already-bound handle is a protocol violation.
func (h *Handle) Bind(t *Tracker) {
	if h.t != nil {
		panic("tracker: Bind on an already bound handle")
	}
	h.t = t
	t.addFirstRef(h)
}

// Bound reports whether the handle currently references a tracker.
func (h *Handle) Bound() bool {
	return h.t != nil
}

// Tracker returns the referenced tracker, or nil for an unbound handle.
func (h *Handle) Tracker() *Tracker {
	return h.t
}

// Release deregisters the handle from its tracker's holder set and leaves it
// unbound. Releasing an unbound handle is a no-op.
func (h *Handle) Release() {
	if h.t == nil {
		return
	}
	h.t.delRef(h)
	h.t = nil
}
