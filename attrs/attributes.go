// Package attrs implements a run-length-encoded map from visible
// offset to an opaque attribute descriptor, with coalescing of
// adjacent runs that share a descriptor and a diff against a sibling
// array for minimal re-display computation.
package attrs

import "github.com/pkg/errors"

// Descriptor is an opaque, hashable token identifying a set of display
// attributes. The core compares descriptors only by equality; a
// resolved attribute dictionary lives in a cache kept outside this
// package. Any comparable value (an int enum, a small struct of
// comparable fields, a string) is a valid Descriptor.
type Descriptor interface{}

// Run is one maximal span sharing a single descriptor.
type Run struct {
	Descriptor Descriptor
	Length     uint32
}

// ErrAmbiguousLength is returned by DiffRange when the two arrays being
// compared don't have equal total length.
var ErrAmbiguousLength = errors.New("attrs: diff_range requires arrays of equal length")

// AttributesArray is an ordered list of Runs. Adjacent runs never
// share a descriptor (append and SetLengthAt both maintain this), and
// the sum of run lengths is always the array's Len.
type AttributesArray struct {
	runs []Run
}

// New returns an empty array.
func New() *AttributesArray {
	return &AttributesArray{}
}

// Len returns the total length covered by all runs.
func (a *AttributesArray) Len() uint32 {
	var n uint32
	for _, r := range a.runs {
		n += r.Length
	}
	return n
}

// Runs returns the array's runs in order. The returned slice must not
// be mutated by the caller.
func (a *AttributesArray) Runs() []Run {
	return a.runs
}

// Append adds a run of n code units with descriptor desc. If the last
// existing run already has this descriptor, its length is extended in
// place instead of creating a new run. n == 0 is a no-op.
func (a *AttributesArray) Append(desc Descriptor, n uint32) {
	if n == 0 {
		return
	}
	if len(a.runs) > 0 {
		last := &a.runs[len(a.runs)-1]
		if last.Descriptor == desc {
			last.Length += n
			return
		}
	}
	a.runs = append(a.runs, Run{Descriptor: desc, Length: n})
}

// AttrsAt returns the descriptor covering offset and the maximal
// [lo, hi) range over which that descriptor applies. ok is false if
// offset is at or past the array's length.
func (a *AttributesArray) AttrsAt(offset uint32) (desc Descriptor, lo, hi uint32, ok bool) {
	var cum uint32
	for _, r := range a.runs {
		if offset < cum+r.Length {
			return r.Descriptor, cum, cum + r.Length, true
		}
		cum += r.Length
	}
	return nil, 0, 0, false
}

// SetLengthAt grows or shrinks the run containing offset by delta
// (which may be negative), using def as the descriptor for any newly
// created span.
//
//   - delta > 0 grows the run containing offset in place; if offset is
//     at or past the end of the array, a new trailing run of def is
//     appended instead.
//   - delta < 0 shrinks starting at offset, consuming across run
//     boundaries as needed; any run emptied by this is removed.
//
// Adjacent-descriptor coalescing is preserved throughout.
func (a *AttributesArray) SetLengthAt(offset uint32, delta int32, def Descriptor) {
	if delta == 0 {
		return
	}
	if delta > 0 {
		a.grow(offset, uint32(delta), def)
		return
	}
	a.shrink(offset, uint32(-delta))
}

func (a *AttributesArray) grow(offset uint32, n uint32, def Descriptor) {
	if offset >= a.Len() {
		a.Append(def, n)
		return
	}
	idx, cum := a.runIndexAt(offset)
	a.runs[idx].Length += n
	_ = cum
	a.coalesceAround(idx)
}

func (a *AttributesArray) shrink(offset uint32, n uint32) {
	idx, cum := a.runIndexAt(offset)
	if idx < 0 {
		return
	}
	remaining := n
	// Shrink starting at the run containing offset; a deletion that
	// starts at offset eats into this run first, then consumes whole
	// runs after it.
	for remaining > 0 && idx < len(a.runs) {
		r := &a.runs[idx]
		avail := r.Length - (offset - cum)
		if avail > remaining {
			r.Length -= remaining
			remaining = 0
			break
		}
		remaining -= avail
		r.Length -= avail
		if r.Length == 0 {
			a.runs = append(a.runs[:idx], a.runs[idx+1:]...)
			continue
		}
		cum += r.Length
		idx++
		offset = cum
	}
	a.coalesceAll()
}

// runIndexAt returns the index of the run containing offset and the
// cumulative length before that run. Returns (-1, 0) if offset is at
// or past the array's length.
func (a *AttributesArray) runIndexAt(offset uint32) (idx int, cum uint32) {
	for i, r := range a.runs {
		if offset < cum+r.Length {
			return i, cum
		}
		cum += r.Length
	}
	return -1, cum
}

func (a *AttributesArray) coalesceAround(idx int) {
	if idx+1 < len(a.runs) && a.runs[idx].Descriptor == a.runs[idx+1].Descriptor {
		a.runs[idx].Length += a.runs[idx+1].Length
		a.runs = append(a.runs[:idx+1], a.runs[idx+2:]...)
	}
	if idx > 0 && a.runs[idx-1].Descriptor == a.runs[idx].Descriptor {
		a.runs[idx-1].Length += a.runs[idx].Length
		a.runs = append(a.runs[:idx], a.runs[idx+1:]...)
	}
}

func (a *AttributesArray) coalesceAll() {
	out := a.runs[:0]
	for _, r := range a.runs {
		if len(out) > 0 && out[len(out)-1].Descriptor == r.Descriptor {
			out[len(out)-1].Length += r.Length
			continue
		}
		out = append(out, r)
	}
	a.runs = out
}

// DiffRange returns the minimal [lo, hi) range outside of which a and
// other agree (same descriptor at every offset), or ok == false if the
// two arrays are identical. An error is returned if a and other don't
// have the same total length.
func (a *AttributesArray) DiffRange(other *AttributesArray) (lo, hi uint32, ok bool, err error) {
	if a.Len() != other.Len() {
		return 0, 0, false, errors.WithStack(ErrAmbiguousLength)
	}
	n := a.Len()

	first, found := uint32(0), false
	for i := uint32(0); i < n; i++ {
		da, _, _, _ := a.AttrsAt(i)
		db, _, _, _ := other.AttrsAt(i)
		if da != db {
			first, found = i, true
			break
		}
	}
	if !found {
		return 0, 0, false, nil
	}

	last := first
	for i := n; i > first; i-- {
		da, _, _, _ := a.AttrsAt(i - 1)
		db, _, _, _ := other.AttrsAt(i - 1)
		if da != db {
			last = i - 1
			break
		}
	}
	return first, last + 1, true, nil
}
