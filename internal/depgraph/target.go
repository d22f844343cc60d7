package depgraph

import "fmt"

// Target describes one memory region accessed by a node, used by the
// dependency domain to detect conflicting accesses. The half-open interval
// covered is [Base, Base+Length).
type Target struct {
	Base   uint64
	Length uint64
}

// End returns the first address past the region.
func (t Target) End() uint64 {
	return t.Base + t.Length
}

// Overlaps reports whether the two regions share at least one address.
// Zero-length regions overlap nothing.
func (t Target) Overlaps(o Target) bool {
	if t.Length == 0 || o.Length == 0 {
		return false
	}
	return t.Base < o.End() && o.Base < t.End()
}

// Clone returns an independent copy owned by the caller. Nodes store clones
// of the targets they are given, never the caller's descriptor.
func (t Target) Clone() *Target {
	c := t
	return &c
}

func (t Target) String() string {
	return fmt.Sprintf("0x%x+%d", t.Base, t.Length)
}
