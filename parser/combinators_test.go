package parser

import (
	"testing"

	"github.com/aretext/markedit/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	typeWord  NodeType = "word"
	typeDigit NodeType = "digit"
	typeList  NodeType = "list"
)

func TestDotSucceedsWithinBounds(t *testing.T) {
	buf := buffer.New("ab")
	res := Dot().Apply(buf, 0, NewMemoTable())
	assert.True(t, res.OK)
	assert.Equal(t, uint32(1), res.Consumed)
}

func TestDotFailsAtEnd(t *testing.T) {
	buf := buffer.New("a")
	res := Dot().Apply(buf, 1, NewMemoTable())
	assert.False(t, res.OK)
	assert.Equal(t, uint32(1), res.Examined)
}

func TestLiteralStringMatch(t *testing.T) {
	buf := buffer.New("hello world")
	res := LiteralString("hello").Apply(buf, 0, NewMemoTable())
	require.True(t, res.OK)
	assert.Equal(t, uint32(5), res.Consumed)
}

func TestLiteralStringMismatch(t *testing.T) {
	buf := buffer.New("help")
	res := LiteralString("hello").Apply(buf, 0, NewMemoTable())
	assert.False(t, res.OK)
	assert.Equal(t, uint32(4), res.Examined) // diverges at 'p' vs 'l', the 4th unit
}

func digitClass() Rule {
	set := map[uint16]bool{}
	for c := '0'; c <= '9'; c++ {
		set[uint16(c)] = true
	}
	return CharClass(set)
}

func TestCharClassPCSKnown(t *testing.T) {
	r := digitClass()
	assert.True(t, r.PCS().Known())
	assert.True(t, r.PCS().Contains('5'))
	assert.False(t, r.PCS().Contains('a'))
}

func TestInOrderConcatenatesAndFails(t *testing.T) {
	buf := buffer.New("ab")
	r := InOrder(Wrap(LiteralString("a"), typeWord), Wrap(LiteralString("b"), typeWord))
	res := r.Apply(buf, 0, NewMemoTable())
	require.True(t, res.OK)
	assert.Equal(t, uint32(2), res.Consumed)
	require.Len(t, res.Node.Children, 2)

	buf2 := buffer.New("ax")
	res2 := r.Apply(buf2, 0, NewMemoTable())
	assert.False(t, res2.OK)
}

func TestInOrderExaminedIsRunningMax(t *testing.T) {
	buf := buffer.New("xb")
	// NotAssert(LiteralString("z")) succeeds after its inner literal examines
	// 1 unit ('x' != 'z'), contributing Examined=1 at offset 0. Then
	// LiteralString("x") succeeds having examined 1 unit at offset 0 too.
	// Then LiteralString("bq") fails having examined 2 units starting at
	// offset 1 (cumulative 1+2=3), which should be the overall max.
	r := InOrder(NotAssert(LiteralString("z")), LiteralString("x"), LiteralString("bq"))
	res := r.Apply(buf, 0, NewMemoTable())
	assert.False(t, res.OK)
	assert.Equal(t, uint32(3), res.Examined)
}

func TestChoicePicksFirstMatchingAlternative(t *testing.T) {
	buf := buffer.New("7")
	r := Choice(Wrap(digitClass(), typeDigit), Wrap(LiteralString("7"), typeWord))
	res := r.Apply(buf, 0, NewMemoTable())
	require.True(t, res.OK)
	assert.Equal(t, typeDigit, res.Node.Type)
}

func TestChoiceFallsThroughToLaterAlternative(t *testing.T) {
	buf := buffer.New("z")
	r := Choice(digitClass(), LiteralString("z"))
	res := r.Apply(buf, 0, NewMemoTable())
	assert.True(t, res.OK)
}

func TestChoicePrunesUsingPCS(t *testing.T) {
	// Construct an alternative that would panic or misbehave if Apply were
	// ever called on a code unit outside its PCS; Choice must never call it.
	calledWrongly := false
	guarded := rule(KnownPCS('q'), func(buf Buffer, pos uint32, memo *MemoTable) Result {
		u, _ := buf.CodeUnitAt(pos)
		if u != 'q' {
			calledWrongly = true
		}
		return Result{OK: true, Consumed: 1, Examined: 1}
	})
	buf := buffer.New("z")
	r := Choice(guarded, LiteralString("z"))
	res := r.Apply(buf, 0, NewMemoTable())
	assert.True(t, res.OK)
	assert.False(t, calledWrongly)
}

func TestZeroOrOneAlwaysSucceeds(t *testing.T) {
	buf := buffer.New("z")
	r := ZeroOrOne(LiteralString("a"))
	res := r.Apply(buf, 0, NewMemoTable())
	assert.True(t, res.OK)
	assert.Equal(t, uint32(0), res.Consumed)
}

func TestRangeEnforcesLowerBound(t *testing.T) {
	buf := buffer.New("aa")
	r := Range(LiteralString("a"), 3, Unbounded)
	res := r.Apply(buf, 0, NewMemoTable())
	assert.False(t, res.OK)
}

func TestRangeHiIsFirstDisallowedCount(t *testing.T) {
	buf := buffer.New("aaaa")
	r := Range(LiteralString("a"), 0, 2)
	res := r.Apply(buf, 0, NewMemoTable())
	require.True(t, res.OK)
	// hi=2 means counts 0 and 1 are allowed, so exactly 1 "a" is consumed
	// (repetition stops before the count would reach hi).
	assert.Equal(t, uint32(1), res.Consumed)
}

func TestRangeUnboundedConsumesAllRepeats(t *testing.T) {
	buf := buffer.New("aaaab")
	r := Range(LiteralString("a"), 1, Unbounded)
	res := r.Apply(buf, 0, NewMemoTable())
	require.True(t, res.OK)
	assert.Equal(t, uint32(4), res.Consumed)
}

func TestRangeZeroLengthMatchTerminates(t *testing.T) {
	buf := buffer.New("a")
	r := Range(ZeroOrOne(LiteralString("z")), 0, Unbounded)
	res := r.Apply(buf, 0, NewMemoTable())
	require.True(t, res.OK)
	assert.Equal(t, uint32(0), res.Consumed)
}

func TestAssertDoesNotConsume(t *testing.T) {
	buf := buffer.New("abc")
	r := Assert(LiteralString("ab"))
	res := r.Apply(buf, 0, NewMemoTable())
	assert.True(t, res.OK)
	assert.Equal(t, uint32(0), res.Consumed)
}

func TestNotAssertSucceedsWhenInnerFails(t *testing.T) {
	buf := buffer.New("xyz")
	r := NotAssert(LiteralString("ab"))
	res := r.Apply(buf, 0, NewMemoTable())
	assert.True(t, res.OK)
	assert.Equal(t, uint32(0), res.Consumed)
}

func TestNotAssertPCSAlwaysUnknown(t *testing.T) {
	r := NotAssert(digitClass())
	assert.False(t, r.PCS().Known())
}

func TestInOrderSubtractsLeadingNotAssertFromPCS(t *testing.T) {
	r := InOrder(NotAssert(LiteralString("x")), Dot())
	// Dot's own PCS is unknown, so subtraction can't narrow it; this mainly
	// exercises that construction doesn't panic and falls back sanely.
	assert.False(t, r.PCS().Known())

	r2 := InOrder(NotAssert(digitClass()), CharClass(map[uint16]bool{'a': true, '5': true}))
	pcs := r2.PCS()
	require.True(t, pcs.Known())
	assert.True(t, pcs.Contains('a'))
	assert.False(t, pcs.Contains('5'))
}

func TestAbsorbDiscardsChildrenKeepsSpan(t *testing.T) {
	buf := buffer.New("ab")
	inner := InOrder(Wrap(LiteralString("a"), typeWord), Wrap(LiteralString("b"), typeWord))
	r := Absorb(inner, typeList)
	res := r.Apply(buf, 0, NewMemoTable())
	require.True(t, res.OK)
	assert.Equal(t, typeList, res.Node.Type)
	assert.Empty(t, res.Node.Children)
	assert.Equal(t, uint32(2), res.Node.Length)
}

func TestWrapFlattensFragmentChildren(t *testing.T) {
	buf := buffer.New("ab")
	inner := InOrder(Wrap(LiteralString("a"), typeWord), Wrap(LiteralString("b"), typeWord))
	r := Wrap(inner, typeList)
	res := r.Apply(buf, 0, NewMemoTable())
	require.True(t, res.OK)
	assert.Equal(t, typeList, res.Node.Type)
	require.Len(t, res.Node.Children, 2)
}

func TestWrapProducesLeafWhenInnerHasNoChildren(t *testing.T) {
	buf := buffer.New("ab")
	r := Wrap(LiteralString("ab"), typeWord)
	res := r.Apply(buf, 0, NewMemoTable())
	require.True(t, res.OK)
	assert.Equal(t, typeWord, res.Node.Type)
	assert.Empty(t, res.Node.Children)
	assert.Equal(t, uint32(2), res.Node.Length)
}

func TestSetPropAttachesToNode(t *testing.T) {
	buf := buffer.New("ab")
	r := SetProp(Wrap(LiteralString("ab"), typeWord), FirstUserPropKey, "tag")
	res := r.Apply(buf, 0, NewMemoTable())
	require.True(t, res.OK)
	val, ok := res.Node.Prop(FirstUserPropKey)
	require.True(t, ok)
	assert.Equal(t, "tag", val)
}

func TestSetPropCreatesLeafWhenInnerHasNoNode(t *testing.T) {
	buf := buffer.New("ab")
	r := SetProp(LiteralString("ab"), FirstUserPropKey, "tag")
	res := r.Apply(buf, 0, NewMemoTable())
	require.True(t, res.OK)
	require.NotNil(t, res.Node)
	val, ok := res.Node.Prop(FirstUserPropKey)
	require.True(t, ok)
	assert.Equal(t, "tag", val)
}
