// Package overlay implements a replacement overlay: an ordered,
// disjoint set of raw-range substitutions used to translate between
// raw (unmodified parsed text) and visible (formatter-replaced
// display text) coordinates.
package overlay

import (
	"sort"

	"github.com/pkg/errors"
)

// Side selects which boundary an offset that lands inside a
// replacement's span resolves to: a replacement is atomic from the
// visible side, so a raw or visible offset strictly between its
// endpoints has no direct image and must pick one.
type Side uint8

const (
	// Lower resolves to the start of the replacement.
	Lower Side = iota
	// Upper resolves to the end of the replacement.
	Upper
)

// Replacement substitutes the raw code units in [RawLo, RawHi) with
// Units when producing the visible string.
type Replacement struct {
	RawLo, RawHi uint32
	Units        []uint16
}

func (r Replacement) rawLen() uint32 { return r.RawHi - r.RawLo }

// ErrOverlappingReplacement is returned by Insert when the new
// replacement's raw range intersects an existing one.
var ErrOverlappingReplacement = errors.New("overlay: replacement overlaps an existing raw range")

// Overlay holds replacements ordered by raw range, which are kept
// pairwise disjoint.
type Overlay struct {
	replacements []Replacement
}

// New returns an empty overlay.
func New() *Overlay {
	return &Overlay{}
}

// Insert adds a replacement over [rawLo, rawHi), returning
// ErrOverlappingReplacement (without modifying the overlay) if it
// overlaps any existing replacement.
func (o *Overlay) Insert(rawLo, rawHi uint32, units []uint16) error {
	idx := sort.Search(len(o.replacements), func(i int) bool {
		return o.replacements[i].RawLo >= rawLo
	})
	if idx > 0 && o.replacements[idx-1].RawHi > rawLo {
		return errors.WithStack(ErrOverlappingReplacement)
	}
	if idx < len(o.replacements) && o.replacements[idx].RawLo < rawHi {
		return errors.WithStack(ErrOverlappingReplacement)
	}
	cp := make([]uint16, len(units))
	copy(cp, units)
	o.replacements = append(o.replacements, Replacement{})
	copy(o.replacements[idx+1:], o.replacements[idx:])
	o.replacements[idx] = Replacement{RawLo: rawLo, RawHi: rawHi, Units: cp}
	return nil
}

// RemoveOverlapping drops every replacement whose raw range intersects
// [rawLo, rawHi).
func (o *Overlay) RemoveOverlapping(rawLo, rawHi uint32) {
	out := o.replacements[:0]
	for _, r := range o.replacements {
		if r.RawHi <= rawLo || r.RawLo >= rawHi {
			out = append(out, r)
		}
	}
	o.replacements = out
}

// ShiftAfter shifts the raw range of every replacement at or after
// rawPos by delta. It's used after a buffer edit that doesn't itself
// restructure the overlay (the edit lies entirely outside every
// existing replacement).
func (o *Overlay) ShiftAfter(rawPos uint32, delta int32) {
	for i := range o.replacements {
		if o.replacements[i].RawLo >= rawPos {
			o.replacements[i].RawLo = uint32(int64(o.replacements[i].RawLo) + int64(delta))
			o.replacements[i].RawHi = uint32(int64(o.replacements[i].RawHi) + int64(delta))
		}
	}
}

// Replacements returns the overlay's replacements in raw-range order.
// The returned slice must not be mutated by the caller.
func (o *Overlay) Replacements() []Replacement {
	return o.replacements
}

// InRange returns every replacement whose raw range intersects
// [rawLo, rawHi), in order.
func (o *Overlay) InRange(rawLo, rawHi uint32) []Replacement {
	var out []Replacement
	for _, r := range o.replacements {
		if r.RawHi > rawLo && r.RawLo < rawHi {
			out = append(out, r)
		}
	}
	return out
}

// RawToVisible translates a raw offset to its visible-coordinate
// equivalent.
//
// An offset exactly at a replacement's raw boundary is unambiguous
// (it maps to that replacement's corresponding visible boundary
// regardless of side). An offset strictly inside a replacement's raw
// range has no individual image - the whole range collapsed to the
// replacement - so side picks the replacement's visible start
// (Lower) or visible end (Upper).
func (o *Overlay) RawToVisible(rawPos uint32, side Side) uint32 {
	var cumDelta int64
	for _, r := range o.replacements {
		visStart := uint32(int64(r.RawLo) + cumDelta)
		switch {
		case rawPos < r.RawLo:
			return uint32(int64(rawPos) + cumDelta)
		case rawPos == r.RawLo:
			return visStart
		case rawPos < r.RawHi:
			if side == Lower {
				return visStart
			}
			return visStart + uint32(len(r.Units))
		case rawPos == r.RawHi:
			return visStart + uint32(len(r.Units))
		}
		cumDelta += int64(len(r.Units)) - int64(r.rawLen())
	}
	return uint32(int64(rawPos) + cumDelta)
}

// VisibleToRaw translates a visible offset back to raw coordinates,
// with the same boundary conventions as RawToVisible.
func (o *Overlay) VisibleToRaw(visPos uint32, side Side) uint32 {
	var cumDelta int64
	for _, r := range o.replacements {
		visStart := uint32(int64(r.RawLo) + cumDelta)
		visEnd := visStart + uint32(len(r.Units))
		switch {
		case visPos < visStart:
			return uint32(int64(visPos) - cumDelta)
		case visPos == visStart:
			return r.RawLo
		case visPos < visEnd:
			if side == Lower {
				return r.RawLo
			}
			return r.RawHi
		case visPos == visEnd:
			return r.RawHi
		}
		cumDelta += int64(len(r.Units)) - int64(r.rawLen())
	}
	return uint32(int64(visPos) - cumDelta)
}
