package parser

import "github.com/pkg/errors"

type memoizeRule struct {
	id    ruleID
	inner Rule
}

func (r *memoizeRule) Apply(buf Buffer, pos uint32, memo *MemoTable) Result {
	if res, ok := memo.Get(r.id, pos); ok {
		return res
	}
	res := r.inner.Apply(buf, pos, memo)
	memo.Put(r.id, pos, res)
	return res
}

func (r *memoizeRule) PCS() PCS { return r.inner.PCS() }

// Builder assigns stable rule IDs to Memoize-wrapped rules at grammar
// construction time, then finalizes a Grammar. Grammars in this
// package have no separate AST to traverse after the fact; a rule tree
// is just nested Go values, so ID assignment happens as each Memoize
// call is made while the grammar is being built.
type Builder struct {
	nextID ruleID
}

// Memoize wraps r so repeated applications at the same position reuse
// a MemoTable entry instead of re-running r. Each call to Memoize
// allocates a new, distinct rule ID; a recursive rule should call
// Memoize once (closing over the resulting Rule) rather than on every
// use.
func (b *Builder) Memoize(r Rule) Rule {
	id := b.nextID
	b.nextID++
	return &memoizeRule{id: id, inner: r}
}

// Grammar is a finished, immutable grammar: a start rule plus the
// count of distinct memoized rule IDs it assigned (used to size a
// fresh MemoTable's bookkeeping, though MemoTable itself is just a
// map and doesn't require this up front).
type Grammar struct {
	Start    Rule
	NumRules int
}

// Build finalizes the grammar rooted at start. b must not be reused
// after Build is called.
func (b *Builder) Build(start Rule) *Grammar {
	return &Grammar{Start: start, NumRules: int(b.nextID)}
}

// ErrIncompleteParse is returned by ParseBuffer when the grammar's
// start rule did not consume the entire buffer. Use errors.As to
// recover the IncompleteParse value with how far parsing got.
var ErrIncompleteParse = errors.New("parser: incomplete parse")

// IncompleteParse carries the position parsing stopped at, for
// diagnostics or error recovery.
type IncompleteParse struct {
	// Consumed is how much of the buffer the start rule successfully
	// matched before giving up or running out of alternatives.
	Consumed uint32
	// Length is the buffer's total length, for context.
	Length uint32
}

func (e *IncompleteParse) Error() string {
	return ErrIncompleteParse.Error()
}

func (e *IncompleteParse) Unwrap() error { return ErrIncompleteParse }

// ParseBuffer applies g's start rule at position 0 against buf. A
// successful parse requires the start rule to both succeed and
// consume the buffer in full; a rule that succeeds but stops short
// (trailing unparsed content) is reported as an *IncompleteParse
// error rather than treated as success, since a caller that silently
// accepted a short parse would lose track of the unparsed suffix.
func ParseBuffer(buf Buffer, g *Grammar, memo *MemoTable) (*Node, error) {
	res := g.Start.Apply(buf, 0, memo)
	n := buf.Len()
	if !res.OK || res.Consumed != n {
		consumed := res.Consumed
		if !res.OK {
			consumed = 0
		}
		return nil, errors.WithStack(&IncompleteParse{Consumed: consumed, Length: n})
	}
	if res.Node == nil {
		return NewLeaf(FragmentType, 0), nil
	}
	return res.Node, nil
}
