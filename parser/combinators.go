package parser

import "math"

// Unbounded is the "no upper limit" sentinel for Range's hi parameter.
const Unbounded uint32 = math.MaxUint32

// ruleFunc adapts a plain function plus a precomputed PCS into a Rule.
// Every combinator below returns one of these; PCS is always computed
// once at construction time from the operand rules' own PCS, never
// recomputed per Apply.
type ruleFunc struct {
	apply func(buf Buffer, pos uint32, memo *MemoTable) Result
	pcs   PCS
}

func (r *ruleFunc) Apply(buf Buffer, pos uint32, memo *MemoTable) Result {
	return r.apply(buf, pos, memo)
}

func (r *ruleFunc) PCS() PCS { return r.pcs }

func rule(pcs PCS, apply func(buf Buffer, pos uint32, memo *MemoTable) Result) Rule {
	return &ruleFunc{apply: apply, pcs: pcs}
}

// Dot succeeds at any position before the end of the buffer, consuming
// one code unit.
func Dot() Rule {
	return rule(UnknownPCS(), func(buf Buffer, pos uint32, memo *MemoTable) Result {
		if _, ok := buf.CodeUnitAt(pos); ok {
			return Result{OK: true, Consumed: 1, Examined: 1}
		}
		return Result{Examined: 1}
	})
}

// CharClass succeeds when the code unit at pos is a member of set,
// consuming one code unit.
func CharClass(set map[uint16]bool) Rule {
	units := make([]uint16, 0, len(set))
	for u := range set {
		units = append(units, u)
	}
	return rule(KnownPCS(units...), func(buf Buffer, pos uint32, memo *MemoTable) Result {
		u, ok := buf.CodeUnitAt(pos)
		if !ok || !set[u] {
			return Result{Examined: 1}
		}
		return Result{OK: true, Consumed: 1, Examined: 1}
	})
}

// Literal succeeds when the |s| code units starting at pos equal s.
func Literal(s []uint16) Rule {
	pcs := UnknownPCS()
	if len(s) > 0 {
		pcs = KnownPCS(s[0])
	}
	return rule(pcs, func(buf Buffer, pos uint32, memo *MemoTable) Result {
		if len(s) == 0 {
			return Result{OK: true}
		}
		var i uint32
		for ; i < uint32(len(s)); i++ {
			u, ok := buf.CodeUnitAt(pos + i)
			if !ok || u != s[i] {
				return Result{Examined: i + 1}
			}
		}
		return Result{OK: true, Consumed: i, Examined: i}
	})
}

// LiteralString is a convenience wrapper around Literal for ASCII/BMP
// literal text supplied as a Go string.
func LiteralString(s string) Rule {
	return Literal(stringToUnits(s))
}

func stringToUnits(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r > 0xFFFF {
			// Outside the BMP: encode as a surrogate pair.
			r -= 0x10000
			units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
			continue
		}
		units = append(units, uint16(r))
	}
	return units
}

// InOrder succeeds when every rule in order succeeds, starting each at
// the position immediately after the previous one consumed. Its node
// is a fragment of the concatenated child nodes.
func InOrder(rules ...Rule) Rule {
	return rule(inOrderPCS(rules), func(buf Buffer, pos uint32, memo *MemoTable) Result {
		var consumed, maxExamined uint32
		frag := NewFragment()
		for _, r := range rules {
			res := r.Apply(buf, pos+consumed, memo)
			if total := consumed + res.Examined; total > maxExamined {
				maxExamined = total
			}
			if !res.OK {
				return Result{Examined: maxExamined}
			}
			if res.Node != nil {
				frag.AppendChild(res.Node)
			}
			consumed += res.Consumed
		}
		return Result{OK: true, Consumed: consumed, Examined: maxExamined, Node: frag}
	})
}

func inOrderPCS(rules []Rule) PCS {
	assertIntersect := UnknownPCS()
	haveAssert := false
	notAssertUnion := KnownPCS()
	for _, r := range rules {
		if ar, ok := r.(*assertRule); ok {
			p := ar.inner.PCS()
			if !haveAssert {
				assertIntersect, haveAssert = p, true
			} else {
				assertIntersect = assertIntersect.Intersect(p)
			}
			continue
		}
		if nr, ok := r.(*notAssertRule); ok {
			notAssertUnion = notAssertUnion.Union(nr.inner.PCS())
			continue
		}
		base := r.PCS()
		if haveAssert {
			base = base.Intersect(assertIntersect)
		}
		return base.Subtract(notAssertUnion)
	}
	if haveAssert {
		return assertIntersect.Subtract(notAssertUnion)
	}
	return UnknownPCS()
}

// Choice succeeds with the first rule (in order) that succeeds at pos.
// Alternatives whose PCS provably excludes the current code unit are
// skipped without being applied.
func Choice(rules ...Rule) Rule {
	return rule(choicePCS(rules), func(buf Buffer, pos uint32, memo *MemoTable) Result {
		u, haveUnit := buf.CodeUnitAt(pos)
		var maxExamined uint32
		for _, r := range rules {
			if haveUnit && !r.PCS().Contains(u) {
				continue
			}
			res := r.Apply(buf, pos, memo)
			if res.Examined > maxExamined {
				maxExamined = res.Examined
			}
			if res.OK {
				res.Examined = maxExamined
				return res
			}
		}
		return Result{Examined: maxExamined}
	})
}

func choicePCS(rules []Rule) PCS {
	if len(rules) == 0 {
		return UnknownPCS()
	}
	result := rules[0].PCS()
	for _, r := range rules[1:] {
		result = result.Union(r.PCS())
	}
	return result
}

// ZeroOrOne always succeeds: it returns r's result if r succeeds, or
// an empty success otherwise.
func ZeroOrOne(r Rule) Rule {
	return rule(UnknownPCS(), func(buf Buffer, pos uint32, memo *MemoTable) Result {
		res := r.Apply(buf, pos, memo)
		if res.OK {
			return res
		}
		return Result{OK: true, Examined: res.Examined}
	})
}

// Range matches a repetition count k such that lo <= k < hi (hi is the
// first disallowed repetition count; pass Unbounded for no upper
// limit). A zero-length successful match is counted once and then
// repetition stops, to guarantee termination.
func Range(r Rule, lo, hi uint32) Rule {
	pcs := UnknownPCS()
	if lo > 0 {
		pcs = r.PCS()
	}
	return rule(pcs, func(buf Buffer, pos uint32, memo *MemoTable) Result {
		var count, consumed, maxExamined uint32
		frag := NewFragment()
		for count+1 < hi {
			res := r.Apply(buf, pos+consumed, memo)
			if total := consumed + res.Examined; total > maxExamined {
				maxExamined = total
			}
			if !res.OK {
				break
			}
			if res.Node != nil {
				frag.AppendChild(res.Node)
			}
			count++
			if res.Consumed == 0 {
				// Guard against non-termination on a zero-length match.
				break
			}
			consumed += res.Consumed
		}
		if count < lo {
			return Result{Examined: maxExamined}
		}
		return Result{OK: true, Consumed: consumed, Examined: maxExamined, Node: frag}
	})
}

type assertRule struct {
	inner Rule
}

func (a *assertRule) Apply(buf Buffer, pos uint32, memo *MemoTable) Result {
	res := a.inner.Apply(buf, pos, memo)
	if res.OK {
		return Result{OK: true, Examined: res.Examined}
	}
	return Result{Examined: res.Examined}
}

func (a *assertRule) PCS() PCS { return a.inner.PCS() }

// Assert succeeds (consuming nothing) exactly when r succeeds.
func Assert(r Rule) Rule {
	return &assertRule{inner: r}
}

type notAssertRule struct {
	inner Rule
}

func (n *notAssertRule) Apply(buf Buffer, pos uint32, memo *MemoTable) Result {
	res := n.inner.Apply(buf, pos, memo)
	if res.OK {
		return Result{Examined: res.Examined}
	}
	return Result{OK: true, Examined: res.Examined}
}

// NotAssert's own PCS is always unknown: the set of code units for
// which the inner rule fails generally can't be characterized as a
// finite, useful set. InOrder still gets a subtraction shortcut from
// it (see inOrderPCS), but that's a property of InOrder's
// construction, not of NotAssert in isolation.
func (n *notAssertRule) PCS() PCS { return UnknownPCS() }

// NotAssert succeeds (consuming nothing) exactly when r fails.
func NotAssert(r Rule) Rule {
	return &notAssertRule{inner: r}
}

// Absorb succeeds exactly when r succeeds, discarding r's node (and
// any children it had) in favor of a single leaf of type t spanning
// r's consumed length.
func Absorb(r Rule, t NodeType) Rule {
	return rule(r.PCS(), func(buf Buffer, pos uint32, memo *MemoTable) Result {
		res := r.Apply(buf, pos, memo)
		if !res.OK {
			return res
		}
		return Result{OK: true, Consumed: res.Consumed, Examined: res.Examined, Node: NewLeaf(t, res.Consumed)}
	})
}

// Wrap succeeds exactly when r succeeds, producing a single node of
// type t. If r's node has children (grafting a fragment's children in
// directly, same as AppendChild), those become t's children;
// otherwise t is a leaf spanning r's consumed length.
func Wrap(r Rule, t NodeType) Rule {
	return rule(r.PCS(), func(buf Buffer, pos uint32, memo *MemoTable) Result {
		res := r.Apply(buf, pos, memo)
		if !res.OK {
			return res
		}
		wrapped := NewParent(t)
		if res.Node == nil || len(res.Node.Children) == 0 {
			wrapped.Length = res.Consumed
		} else {
			for _, c := range res.Node.Children {
				wrapped.AppendChild(c)
			}
		}
		return Result{OK: true, Consumed: res.Consumed, Examined: res.Examined, Node: wrapped}
	})
}

// SetProp succeeds exactly when r succeeds, attaching (key, val) to
// r's node. If r produced no node, one leaf node spanning r's consumed
// length is created to carry the property.
func SetProp(r Rule, key PropKey, val interface{}) Rule {
	return rule(r.PCS(), func(buf Buffer, pos uint32, memo *MemoTable) Result {
		res := r.Apply(buf, pos, memo)
		if !res.OK {
			return res
		}
		node := res.Node
		if node == nil {
			node = NewLeaf(FragmentType, res.Consumed)
		}
		node.SetProp(key, val)
		return Result{OK: true, Consumed: res.Consumed, Examined: res.Examined, Node: node}
	})
}
