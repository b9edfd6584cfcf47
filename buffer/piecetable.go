// Package buffer implements a piece-table text buffer: a mutable
// sequence of UTF-16 code units supporting reads through a slice
// directory and range replacement without ever physically deleting a
// code unit from the backing storage. A read locates its slice by a
// linear scan of the directory, so it is not O(1): its cost grows with
// the number of slices.
package buffer

import (
	"log"
	"unicode/utf16"
)

type source uint8

const (
	sourceOriginal source = iota
	sourceAdded
)

// Side selects which boundary an ambiguous offset translation resolves
// to, used by FindOriginalBound and FindBoundForOriginal when the
// requested offset falls on content that isn't present on both sides
// of a translation (e.g. content inserted after the original vector
// was captured, or content since deleted).
type Side uint8

const (
	// Lower resolves to the nearest preceding boundary.
	Lower Side = iota
	// Upper resolves to the nearest following boundary.
	Upper
)

// span is a half-open range into either the original or added vector.
type span struct {
	src        source
	start, end uint32
}

func (s span) length() uint32 { return s.end - s.start }

// PieceTable is a mutable UTF-16 code-unit sequence. Internally it
// holds an immutable `original` vector (the initial content), an
// append-only `added` vector (everything ever inserted), and an
// ordered `slices` directory describing how to reassemble the current
// logical content from ranges of those two vectors. Deletion trims or
// drops directory entries; it never shrinks original or added.
type PieceTable struct {
	original []uint16
	added    []uint16
	slices   []span
}

// New returns a PieceTable whose initial content is s.
func New(s string) *PieceTable {
	return NewFromUnits(utf16.Encode([]rune(s)))
}

// NewFromUnits returns a PieceTable whose initial content is units.
func NewFromUnits(units []uint16) *PieceTable {
	pt := &PieceTable{original: units}
	if len(units) > 0 {
		pt.slices = []span{{src: sourceOriginal, start: 0, end: uint32(len(units))}}
	}
	return pt
}

// Len returns the number of code units in the logical sequence.
func (pt *PieceTable) Len() uint32 {
	var n uint32
	for _, s := range pt.slices {
		n += s.length()
	}
	return n
}

// CodeUnitAt returns the code unit at logical offset i, or false if
// i is at or past the end of the sequence.
func (pt *PieceTable) CodeUnitAt(i uint32) (uint16, bool) {
	idx, off := pt.locate(i)
	if idx >= len(pt.slices) {
		return 0, false
	}
	s := pt.slices[idx]
	return pt.vectorFor(s.src)[s.start+off], true
}

// Slice materializes the code units in [lo, hi). An out-of-bounds
// range is reported and an empty slice returned; it never panics.
func (pt *PieceTable) Slice(lo, hi uint32) []uint16 {
	n := pt.Len()
	if lo > hi || hi > n {
		log.Printf("buffer: slice [%d, %d) out of bounds (len=%d)", lo, hi, n)
		return nil
	}
	if lo == hi {
		return nil
	}

	out := make([]uint16, 0, hi-lo)
	var cum uint32
	for _, s := range pt.slices {
		sliceLo, sliceHi := cum, cum+s.length()
		cum = sliceHi
		if sliceHi <= lo {
			continue
		}
		if sliceLo >= hi {
			break
		}
		start, end := s.start, s.end
		if sliceLo < lo {
			start += lo - sliceLo
		}
		if sliceHi > hi {
			end -= sliceHi - hi
		}
		out = append(out, pt.vectorFor(s.src)[start:end]...)
	}
	return out
}

// String returns the full current content as a Go string.
func (pt *PieceTable) String() string {
	return string(utf16.Decode(pt.Slice(0, pt.Len())))
}

// Replace replaces the half-open logical range [lo, hi) with new.
// An out-of-bounds range is clamped and reported rather than panicking.
func (pt *PieceTable) Replace(lo, hi uint32, new []uint16) {
	n := pt.Len()
	if lo > hi || hi > n {
		log.Printf("buffer: replace [%d, %d) out of bounds (len=%d)", lo, hi, n)
		if hi > n {
			hi = n
		}
		if lo > hi {
			lo = hi
		}
	}
	pt.deleteRange(lo, hi)
	pt.insertAt(lo, new)
}

func (pt *PieceTable) vectorFor(src source) []uint16 {
	if src == sourceOriginal {
		return pt.original
	}
	return pt.added
}

// locate finds the slice index containing logical offset pos and pos's
// offset within that slice. If pos is at or past the end of the
// sequence, it returns (len(slices), 0), the append point.
func (pt *PieceTable) locate(pos uint32) (idx int, offset uint32) {
	var cum uint32
	for i, s := range pt.slices {
		n := s.length()
		if pos < cum+n {
			return i, pos - cum
		}
		cum += n
	}
	return len(pt.slices), 0
}

// deleteRange removes logical range [lo, hi) from the slice directory,
// per the algorithm in the package's design notes: a deletion entirely
// within one slice splits it into 0-2 remainders; a deletion spanning
// multiple slices truncates the first, advances the last, and drops
// everything strictly between. Slices that become empty are dropped.
func (pt *PieceTable) deleteRange(lo, hi uint32) {
	if lo >= hi {
		return
	}
	loIdx, loOff := pt.locate(lo)
	hiIdx, hiOff := pt.locate(hi)

	out := append([]span{}, pt.slices[:loIdx]...)

	if loIdx == hiIdx {
		s := pt.slices[loIdx]
		if loOff > 0 {
			out = append(out, span{s.src, s.start, s.start + loOff})
		}
		if hiOff < s.length() {
			out = append(out, span{s.src, s.start + hiOff, s.end})
		}
	} else {
		if loOff > 0 {
			s := pt.slices[loIdx]
			out = append(out, span{s.src, s.start, s.start + loOff})
		}
		if hiIdx < len(pt.slices) && hiOff < pt.slices[hiIdx].length() {
			s := pt.slices[hiIdx]
			out = append(out, span{s.src, s.start + hiOff, s.end})
		}
	}

	if tailStart := hiIdx + 1; tailStart < len(pt.slices) {
		out = append(out, pt.slices[tailStart:]...)
	}

	pt.slices = out
}

// insertAt inserts units at logical offset pos, appending them to the
// added vector. If pos lands exactly at the end of an added slice that
// already ends where the new units were appended, that slice is
// extended in place instead of creating a new one.
func (pt *PieceTable) insertAt(pos uint32, units []uint16) {
	if len(units) == 0 {
		return
	}
	addedStart := uint32(len(pt.added))
	pt.added = append(pt.added, units...)
	addedEnd := uint32(len(pt.added))

	idx, off := pt.locate(pos)

	if off == 0 {
		if idx > 0 {
			prev := &pt.slices[idx-1]
			if prev.src == sourceAdded && prev.end == addedStart {
				prev.end = addedEnd
				return
			}
		}
		pt.slices = insertSpanAt(pt.slices, idx, span{sourceAdded, addedStart, addedEnd})
		return
	}

	// pos is interior to slices[idx]; split it around the insertion.
	s := pt.slices[idx]
	left := span{s.src, s.start, s.start + off}
	right := span{s.src, s.start + off, s.end}
	newSlices := make([]span, 0, len(pt.slices)+2)
	newSlices = append(newSlices, pt.slices[:idx]...)
	newSlices = append(newSlices, left, span{sourceAdded, addedStart, addedEnd}, right)
	newSlices = append(newSlices, pt.slices[idx+1:]...)
	pt.slices = newSlices
}

func insertSpanAt(slices []span, idx int, s span) []span {
	out := make([]span, 0, len(slices)+1)
	out = append(out, slices[:idx]...)
	out = append(out, s)
	out = append(out, slices[idx:]...)
	return out
}

// FindOriginalBound translates a logical offset into an offset within
// the immutable original vector, so a caller can hold a position that
// survives later edits (original content is never rewritten). If pos
// falls on content that was inserted rather than part of the original
// vector, side selects whether the returned bound is the nearest
// original offset before (Lower) or after (Upper) pos. ok is false
// when no such offset exists on the requested side.
func (pt *PieceTable) FindOriginalBound(side Side, pos uint32) (origPos uint32, ok bool) {
	idx, off := pt.locate(pos)
	if idx < len(pt.slices) && pt.slices[idx].src == sourceOriginal {
		s := pt.slices[idx]
		return s.start + off, true
	}

	if side == Lower {
		for i := idx - 1; i >= 0; i-- {
			if pt.slices[i].src == sourceOriginal {
				return pt.slices[i].end, true
			}
		}
		return 0, false
	}

	for i := idx; i < len(pt.slices); i++ {
		if pt.slices[i].src == sourceOriginal {
			return pt.slices[i].start, true
		}
	}
	return 0, false
}

// FindBoundForOriginal translates an offset in the immutable original
// vector back into a current logical offset. If the content at
// origPos has since been deleted, side selects the nearest logical
// offset before (Lower) or after (Upper) where that content used to
// be. ok is false when no such logical offset exists on the requested
// side.
func (pt *PieceTable) FindBoundForOriginal(side Side, origPos uint32) (pos uint32, ok bool) {
	var cum uint32
	for _, s := range pt.slices {
		if s.src == sourceOriginal && origPos >= s.start && origPos < s.end {
			return cum + (origPos - s.start), true
		}
		cum += s.length()
	}

	cum = 0
	if side == Lower {
		var best uint32
		found := false
		for _, s := range pt.slices {
			if s.src == sourceOriginal && s.end <= origPos {
				best = cum + s.length()
				found = true
			}
			cum += s.length()
		}
		return best, found
	}

	for _, s := range pt.slices {
		if s.src == sourceOriginal && s.start >= origPos {
			return cum, true
		}
		cum += s.length()
	}
	return 0, false
}
