// Package markdown is the default grammar and formatter for the
// external collaborators richtext.ParsedString/ParsedAttributedString
// expect (spec §6): a Markdown subset covering ATX headings, thematic
// breaks, paragraphs, and "*"/"_" emphasis, translated from the
// teacher's token-emitting parse funcs (syntax/languages/markdown.go)
// into tree-building rules over the parser package's combinator set.
//
// Known limitations, inherited from the same design tradeoffs the
// teacher documents for its own Markdown support: no nested emphasis,
// no links, no code spans or fenced code blocks, no list items, no
// block quotes. This is a demonstration grammar, not a CommonMark
// implementation.
package markdown

import (
	"github.com/aretext/markedit/attrs"
	"github.com/aretext/markedit/parser"
	"github.com/aretext/markedit/richtext"
)

const (
	TypeDocument      parser.NodeType = "document"
	TypeHeader        parser.NodeType = "header"
	TypeThematicBreak parser.NodeType = "thematic_break"
	TypeBlankLine     parser.NodeType = "blank_line"
	TypeParagraph     parser.NodeType = "paragraph"
	TypeEmphasis      parser.NodeType = "emphasis"
	TypeDelimiter     parser.NodeType = "delimiter"
	TypeText          parser.NodeType = "text"
)

// Descriptor names the handful of display roles this grammar's
// formatter resolves to. A host program's palette maps these to
// concrete styles; the core never interprets them.
type Descriptor string

const (
	DescriptorNormal   Descriptor = "normal"
	DescriptorHeader   Descriptor = "header"
	DescriptorItalic   Descriptor = "italic"
	DescriptorThematic Descriptor = "thematic_break"
)

func charClassExcluding(excluded ...uint16) map[uint16]bool {
	excl := make(map[uint16]bool, len(excluded))
	for _, u := range excluded {
		excl[u] = true
	}
	set := make(map[uint16]bool, 1<<16-len(excluded))
	for u := 0; u <= 0xFFFF; u++ {
		if !excl[uint16(u)] {
			set[uint16(u)] = true
		}
	}
	return set
}

func charClassOf(units ...uint16) map[uint16]bool {
	set := make(map[uint16]bool, len(units))
	for _, u := range units {
		set[u] = true
	}
	return set
}

const newline = uint16('\n')

// Grammar builds the default Markdown-subset grammar: a document is a
// sequence of headers, thematic breaks, blank-line markers, and
// paragraphs (each paragraph's inline content recognizing "*"/"_"
// emphasis spans).
func Grammar() *parser.Grammar {
	var b parser.Builder

	notNewline := parser.CharClass(charClassExcluding(newline))
	restOfLine := parser.Absorb(
		parser.InOrder(parser.Range(notNewline, 0, parser.Unbounded), parser.ZeroOrOne(parser.LiteralString("\n"))),
		TypeText,
	)

	// ATX heading: 1-6 "#" followed by a single space, then the rest of
	// the line. headerDelim is reused (as a lookahead, via Assert) to
	// detect the start of a heading from within a paragraph body, per
	// spec.md §9's preferred rule-composition approach to block
	// termination rather than a stateful scope object.
	hashRun := parser.Range(parser.CharClass(charClassOf('#')), 1, 7)
	headerDelim := parser.Wrap(parser.InOrder(hashRun, parser.LiteralString(" ")), TypeDelimiter)
	header := parser.Wrap(parser.InOrder(headerDelim, restOfLine), TypeHeader)

	thematicBreak := func(ch uint16) parser.Rule {
		return parser.Absorb(
			parser.InOrder(parser.Range(parser.CharClass(charClassOf(ch)), 3, parser.Unbounded), parser.ZeroOrOne(parser.LiteralString("\n"))),
			TypeThematicBreak,
		)
	}
	anyThematicBreak := parser.Choice(thematicBreak('-'), thematicBreak('_'), thematicBreak('*'))

	blankLine := parser.Absorb(parser.LiteralString("\n"), TypeBlankLine)

	emphasis := func(ch uint16) parser.Rule {
		delim := parser.Wrap(parser.CharClass(charClassOf(ch)), TypeDelimiter)
		inner := parser.Absorb(parser.Range(parser.CharClass(charClassExcluding(ch, newline)), 1, parser.Unbounded), TypeText)
		return parser.Wrap(parser.InOrder(delim, inner, delim), TypeEmphasis)
	}
	emphasisAny := b.Memoize(parser.Choice(emphasis('*'), emphasis('_')))

	plainRun := parser.Absorb(parser.Range(parser.CharClass(charClassExcluding('*', '_', newline)), 1, parser.Unbounded), TypeText)
	// fallbackChar guarantees forward progress for a code unit that
	// can't start any other inline rule (e.g. a lone "*" with no
	// matching close), keeping every byte accounted for by some leaf
	// (spec.md §1 non-goal: no error recovery needed, every input is
	// valid by falling through to a default leaf).
	fallbackChar := parser.Absorb(parser.Dot(), TypeText)

	paragraphEnd := parser.Choice(
		parser.LiteralString("\n\n"),
		parser.Assert(headerDelim),
		parser.NotAssert(parser.Dot()),
	)
	paragraphItem := parser.InOrder(parser.NotAssert(paragraphEnd), parser.Choice(emphasisAny, plainRun, fallbackChar))
	paragraph := parser.Wrap(parser.Range(paragraphItem, 1, parser.Unbounded), TypeParagraph)

	block := b.Memoize(parser.Choice(header, anyThematicBreak, blankLine, paragraph))
	document := parser.Wrap(parser.Range(block, 0, parser.Unbounded), TypeDocument)

	return b.Build(document)
}

func passthrough(_ *parser.Node, _ parser.RawText, _ uint32, current attrs.Descriptor) (attrs.Descriptor, []uint16, bool) {
	return current, nil, false
}

var (
	headerFormatter richtext.Formatter = func(_ *parser.Node, _ parser.RawText, _ uint32, _ attrs.Descriptor) (attrs.Descriptor, []uint16, bool) {
		return DescriptorHeader, nil, false
	}
	thematicBreakFormatter richtext.Formatter = func(_ *parser.Node, _ parser.RawText, _ uint32, _ attrs.Descriptor) (attrs.Descriptor, []uint16, bool) {
		return DescriptorThematic, nil, false
	}
	emphasisFormatter richtext.Formatter = func(_ *parser.Node, _ parser.RawText, _ uint32, _ attrs.Descriptor) (attrs.Descriptor, []uint16, bool) {
		return DescriptorItalic, nil, false
	}
)

// Formatters returns the default grammar's Formatter map: headings and
// thematic breaks resolve their own descriptor; emphasis resolves to
// italic and applies it to its delimiters and inner text alike (a
// descriptor inherited via `current`, not re-resolved per child,
// coalesces into one attribute run per spec.md §8 scenario 2); plain
// text and delimiters elsewhere pass the ambient descriptor through
// unchanged.
func Formatters() map[parser.NodeType]richtext.Formatter {
	return map[parser.NodeType]richtext.Formatter{
		TypeHeader:        headerFormatter,
		TypeThematicBreak: thematicBreakFormatter,
		TypeEmphasis:      emphasisFormatter,
		TypeDelimiter:     richtext.Formatter(passthrough),
		TypeText:          richtext.Formatter(passthrough),
		TypeBlankLine:     richtext.Formatter(passthrough),
		TypeParagraph:     richtext.Formatter(passthrough),
	}
}

// NewParsedAttributedString returns a ParsedAttributedString over
// initial content, parsed and formatted against this package's default
// grammar.
func NewParsedAttributedString(initial string) *richtext.ParsedAttributedString {
	return richtext.NewParsedAttributedString(initial, Grammar(), DescriptorNormal, Formatters())
}
