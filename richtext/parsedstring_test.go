package richtext

import (
	"testing"

	"github.com/aretext/markedit/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	typeDocument parser.NodeType = "document"
	typeLetter   parser.NodeType = "letter"
	typeDigit    parser.NodeType = "digit"
)

func letterClass() parser.Rule {
	set := map[uint16]bool{}
	for c := 'a'; c <= 'z'; c++ {
		set[uint16(c)] = true
	}
	return parser.CharClass(set)
}

func digitClass() parser.Rule {
	set := map[uint16]bool{}
	for c := '0'; c <= '9'; c++ {
		set[uint16(c)] = true
	}
	return parser.CharClass(set)
}

// buildGrammar returns a grammar accepting any run of lowercase
// letters and digits as a sequence of "letter"/"digit" leaves under a
// "document" root (adjacent same-type leaves coalesce per §4.D, so
// alternating letter/digit input is used in tests that count
// children). Any other input character makes the parse incomplete,
// which test cases use to exercise the sticky last-known-good-tree
// behavior.
func buildGrammar() *parser.Grammar {
	var b parser.Builder
	item := parser.Choice(
		parser.Wrap(letterClass(), typeLetter),
		parser.Wrap(digitClass(), typeDigit),
	)
	doc := parser.Wrap(parser.Range(item, 0, parser.Unbounded), typeDocument)
	return b.Build(doc)
}

func TestNewParsedStringParsesImmediately(t *testing.T) {
	p := NewParsedString("a1b2c3", buildGrammar())
	tree, ok := p.Tree()
	require.True(t, ok)
	require.NoError(t, p.Err())
	assert.Equal(t, typeDocument, tree.Type)
	assert.Equal(t, uint32(6), tree.Length)
	assert.Len(t, tree.Children, 6)
}

func TestParsedStringReplaceReparsesIncrementally(t *testing.T) {
	p := NewParsedString("abc", buildGrammar())
	p.Replace(3, 3, []uint16{'1', '2'})
	assert.Equal(t, "abc12", p.String())
	tree, ok := p.Tree()
	require.True(t, ok)
	assert.Equal(t, uint32(5), tree.Length)
}

func TestParsedStringIncompleteParseIsSticky(t *testing.T) {
	p := NewParsedString("abc", buildGrammar())
	goodTree, _ := p.Tree()

	p.Replace(1, 1, []uint16{' '}) // space is outside the grammar's alphabet
	require.Error(t, p.Err())
	var ip *parser.IncompleteParse
	require.ErrorAs(t, p.Err(), &ip)
	assert.Equal(t, uint32(1), ip.Consumed)

	tree, ok := p.Tree()
	require.True(t, ok, "last known good tree must remain available")
	assert.Same(t, goodTree, tree)
}

func TestParsedStringRecoversAfterFixingIncompleteParse(t *testing.T) {
	p := NewParsedString("abc", buildGrammar())
	p.Replace(1, 1, []uint16{' '})
	require.Error(t, p.Err())

	p.Replace(1, 2, nil) // delete the space
	require.NoError(t, p.Err())
	assert.Equal(t, "abc", p.String())
}

func TestParsedStringNoTreeBeforeFirstSuccessfulParse(t *testing.T) {
	p := NewParsedString(" ", buildGrammar())
	require.Error(t, p.Err())
	_, ok := p.Tree()
	assert.False(t, ok)
}

func TestPathToReturnsAncestorChain(t *testing.T) {
	p := NewParsedString("a1b2c3", buildGrammar())
	path := p.PathTo(1)
	require.Len(t, path, 2)
	assert.Equal(t, typeDocument, path[0].Node.Type)
	assert.Equal(t, uint32(0), path[0].Offset)
	assert.Equal(t, typeDigit, path[1].Node.Type)
	assert.Equal(t, uint32(1), path[1].Offset)
}

func TestPathToAtEndOfBufferDescendsToLastChild(t *testing.T) {
	p := NewParsedString("a1b2c3", buildGrammar())
	path := p.PathTo(6)
	require.Len(t, path, 2)
	assert.Equal(t, uint32(5), path[1].Offset)
}
