package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCoalescesSameDescriptor(t *testing.T) {
	a := New()
	a.Append("bold", 3)
	a.Append("bold", 2)
	a.Append("italic", 4)
	assert.Equal(t, []Run{{"bold", 5}, {"italic", 4}}, a.Runs())
	assert.Equal(t, uint32(9), a.Len())
}

func TestAppendZeroIsNoOp(t *testing.T) {
	a := New()
	a.Append("bold", 3)
	a.Append("italic", 0)
	assert.Equal(t, []Run{{"bold", 3}}, a.Runs())
}

func TestAttrsAt(t *testing.T) {
	a := New()
	a.Append("bold", 3)
	a.Append("italic", 4)

	desc, lo, hi, ok := a.AttrsAt(0)
	require.True(t, ok)
	assert.Equal(t, "bold", desc)
	assert.Equal(t, uint32(0), lo)
	assert.Equal(t, uint32(3), hi)

	desc, lo, hi, ok = a.AttrsAt(5)
	require.True(t, ok)
	assert.Equal(t, "italic", desc)
	assert.Equal(t, uint32(3), lo)
	assert.Equal(t, uint32(7), hi)

	_, _, _, ok = a.AttrsAt(7)
	assert.False(t, ok)
}

func TestSetLengthAtGrowsInPlace(t *testing.T) {
	a := New()
	a.Append("bold", 3)
	a.Append("italic", 4)
	a.SetLengthAt(1, 2, "bold")
	assert.Equal(t, uint32(9), a.Len())
	desc, lo, hi, ok := a.AttrsAt(1)
	require.True(t, ok)
	assert.Equal(t, "bold", desc)
	assert.Equal(t, uint32(0), lo)
	assert.Equal(t, uint32(5), hi)
}

func TestSetLengthAtGrowsPastEndAppendsDefault(t *testing.T) {
	a := New()
	a.Append("bold", 3)
	a.SetLengthAt(3, 4, "plain")
	assert.Equal(t, uint32(7), a.Len())
	desc, _, _, ok := a.AttrsAt(5)
	require.True(t, ok)
	assert.Equal(t, "plain", desc)
}

func TestSetLengthAtShrinksWithinRun(t *testing.T) {
	a := New()
	a.Append("bold", 5)
	a.Append("italic", 3)
	a.SetLengthAt(1, -2, nil)
	assert.Equal(t, uint32(6), a.Len())
	desc, _, hi, ok := a.AttrsAt(0)
	require.True(t, ok)
	assert.Equal(t, "bold", desc)
	assert.Equal(t, uint32(3), hi)
}

func TestSetLengthAtShrinksAcrossRunsRemovingEmptied(t *testing.T) {
	a := New()
	a.Append("bold", 2)
	a.Append("italic", 2)
	a.Append("plain", 2)
	// Delete starting at offset 1, consuming 4 units: eats the rest of
	// "bold", all of "italic", and the first unit of "plain".
	a.SetLengthAt(1, -4, nil)
	assert.Equal(t, uint32(2), a.Len())
	assert.Equal(t, []Run{{"bold", 1}, {"plain", 1}}, a.Runs())
}

func TestSetLengthAtShrinkCoalescesNeighborsWithSameDescriptor(t *testing.T) {
	a := New()
	a.Append("bold", 3)
	a.Append("italic", 2)
	a.Append("bold", 3)
	a.SetLengthAt(3, -2, nil) // delete all of "italic"
	assert.Equal(t, []Run{{"bold", 6}}, a.Runs())
}

func TestRunLengthSumInvariant(t *testing.T) {
	a := New()
	a.Append("bold", 3)
	a.Append("italic", 4)
	a.SetLengthAt(2, 5, "plain")
	a.SetLengthAt(0, -3, nil)
	var sum uint32
	for _, r := range a.Runs() {
		sum += r.Length
	}
	assert.Equal(t, a.Len(), sum)
}

func TestAdjacentRunsNeverShareDescriptorInvariant(t *testing.T) {
	a := New()
	a.Append("bold", 3)
	a.Append("bold", 2)
	a.Append("italic", 1)
	a.SetLengthAt(4, 3, "italic")
	for i := 1; i < len(a.Runs()); i++ {
		assert.NotEqual(t, a.Runs()[i-1].Descriptor, a.Runs()[i].Descriptor)
	}
}

func TestDiffRangeIdenticalReturnsNotOK(t *testing.T) {
	a := New()
	a.Append("bold", 3)
	b := New()
	b.Append("bold", 3)
	_, _, ok, err := a.DiffRange(b)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDiffRangeFindsMinimalRange(t *testing.T) {
	a := New()
	a.Append("bold", 3)
	a.Append("italic", 2)
	a.Append("plain", 3)

	b := New()
	b.Append("bold", 3)
	b.Append("underline", 2)
	b.Append("plain", 3)

	lo, hi, ok, err := a.DiffRange(b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(3), lo)
	assert.Equal(t, uint32(5), hi)
}

func TestDiffRangeErrorsOnLengthMismatch(t *testing.T) {
	a := New()
	a.Append("bold", 3)
	b := New()
	b.Append("bold", 4)

	_, _, _, err := a.DiffRange(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousLength)
}

// TestDiffCorrectnessProperty is the §8 "Diff correctness" universal
// property: every offset outside the reported diff range must agree
// between the two arrays.
func TestDiffCorrectnessProperty(t *testing.T) {
	a := New()
	a.Append("bold", 2)
	a.Append("italic", 3)
	a.Append("plain", 5)

	b := New()
	b.Append("bold", 2)
	b.Append("underline", 1)
	b.Append("italic", 2)
	b.Append("plain", 5)

	lo, hi, ok, err := a.DiffRange(b)
	require.NoError(t, err)
	require.True(t, ok)

	for o := uint32(0); o < a.Len(); o++ {
		if o >= lo && o < hi {
			continue
		}
		da, _, _, _ := a.AttrsAt(o)
		db, _, _, _ := b.AttrsAt(o)
		assert.Equal(t, da, db, "offset %d outside diff range must agree", o)
	}
}
