// Package parser implements a Parsing Expression Grammar runtime: a
// set of composable Rule combinators that build syntax trees (Node),
// memoized per (position, rule) in a MemoTable that survives edits so
// re-parsing after a keystroke is bounded by the edit's footprint.
package parser

// Buffer is the minimal text-reading contract a grammar's rules need.
// buffer.PieceTable satisfies it; tests and other callers may supply
// any implementation backed by a fixed UTF-16 code-unit sequence.
type Buffer interface {
	Len() uint32
	CodeUnitAt(i uint32) (uint16, bool)
}

// Result is the outcome of applying a Rule at a position.
//
// Invariants (spec): Examined >= Consumed; Examined >= 1 for any result
// that gets memoized or that represents a failure. If Node is set and
// it fully tiles the matched span (no unwrapped literal or assertion
// contributed to Consumed without a corresponding child), Node.Length
// == Consumed; a rule combining bare matchers with typed ones is
// responsible for choosing Wrap (span = sum of children) or Absorb
// (span = Consumed) so that invariant holds for its own result.
type Result struct {
	OK       bool
	Consumed uint32
	Examined uint32
	Node     *Node
}

// Fail is the canonical failing result with no look-ahead recorded.
// Combinators that fail must still report how far they looked by
// constructing Result{Examined: n} directly rather than returning Fail
// verbatim, except where looking ahead genuinely cost nothing.
var Fail = Result{}

// Rule is a PEG grammar rule. Applying it at pos against buf (using
// memo for any Memoize sub-rules) produces a Result. Rule values are
// immutable once constructed by the combinators in this package.
type Rule interface {
	Apply(buf Buffer, pos uint32, memo *MemoTable) Result

	// PCS returns the rule's possible opening character set: the set
	// of code units that could begin a successful match. Choice uses
	// it to skip alternatives that cannot possibly match the current
	// code unit.
	PCS() PCS
}

// PCS is a rule's possible-opening-character-set, or the explicit
// admission that no such set is known (in which case no pruning based
// on it is safe).
type PCS struct {
	set   map[uint16]bool
	known bool
}

// UnknownPCS reports that no opening-character set could be computed;
// callers must not prune based on it.
func UnknownPCS() PCS { return PCS{known: false} }

// KnownPCS returns a PCS containing exactly the given code units.
func KnownPCS(units ...uint16) PCS {
	set := make(map[uint16]bool, len(units))
	for _, u := range units {
		set[u] = true
	}
	return PCS{set: set, known: true}
}

// Known reports whether the set is meaningful.
func (p PCS) Known() bool { return p.known }

// Contains reports whether u could open a match. An unknown PCS always
// contains every code unit (no pruning possible).
func (p PCS) Contains(u uint16) bool {
	if !p.known {
		return true
	}
	return p.set[u]
}

// Union returns the PCS admitting anything either p or other admits.
// The result is unknown if either input is unknown.
func (p PCS) Union(other PCS) PCS {
	if !p.known || !other.known {
		return UnknownPCS()
	}
	out := make(map[uint16]bool, len(p.set)+len(other.set))
	for u := range p.set {
		out[u] = true
	}
	for u := range other.set {
		out[u] = true
	}
	return PCS{set: out, known: true}
}

// Intersect returns the PCS admitting only what both p and other
// admit. An unknown input is treated as "no constraint" rather than
// poisoning the result, since intersecting with "anything" can only
// narrow, never widen, the allowed set.
func (p PCS) Intersect(other PCS) PCS {
	if !p.known {
		return other
	}
	if !other.known {
		return p
	}
	out := make(map[uint16]bool)
	for u := range p.set {
		if other.set[u] {
			out[u] = true
		}
	}
	return PCS{set: out, known: true}
}

// Subtract returns the PCS admitting what p admits except what other
// admits. If other is unknown, nothing can safely be excluded, so the
// result is unknown.
func (p PCS) Subtract(other PCS) PCS {
	if !p.known {
		return UnknownPCS()
	}
	if !other.known {
		return UnknownPCS()
	}
	out := make(map[uint16]bool)
	for u := range p.set {
		if !other.set[u] {
			out[u] = true
		}
	}
	return PCS{set: out, known: true}
}
