package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarget_Overlaps(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		a, b Target
		want bool
	}{
		{
			name: "identical regions overlap",
			a:    Target{Base: 0x1000, Length: 64},
			b:    Target{Base: 0x1000, Length: 64},
			want: true,
		},
		{
			name: "partial overlap at the tail",
			a:    Target{Base: 0x1000, Length: 64},
			b:    Target{Base: 0x1020, Length: 64},
			want: true,
		},
		{
			name: "containment",
			a:    Target{Base: 0x1000, Length: 256},
			b:    Target{Base: 0x1010, Length: 16},
			want: true,
		},
		{
			name: "adjacent regions do not overlap",
			a:    Target{Base: 0x1000, Length: 64},
			b:    Target{Base: 0x1040, Length: 64},
			want: false,
		},
		{
			name: "disjoint regions do not overlap",
			a:    Target{Base: 0x1000, Length: 16},
			b:    Target{Base: 0x2000, Length: 16},
			want: false,
		},
		{
			name: "zero-length region overlaps nothing",
			a:    Target{Base: 0x1000, Length: 0},
			b:    Target{Base: 0x1000, Length: 64},
			want: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestTarget_Clone(t *testing.T) {
	t.Parallel()

	orig := Target{Base: 0x2000, Length: 128}
	clone := orig.Clone()

	require.Equal(t, orig, *clone)

	// Mutating the clone must not reach back into the original.
	clone.Base = 0xdead
	clone.Length = 1
	assert.Equal(t, uint64(0x2000), orig.Base)
	assert.Equal(t, uint64(128), orig.Length)
}

func TestTarget_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0x1000+64", Target{Base: 0x1000, Length: 64}.String())
}
