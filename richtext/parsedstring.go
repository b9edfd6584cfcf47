// Package richtext binds the buffer, parser, and memo packages into a
// self-reparsing text (ParsedString), and layers a formatter-driven
// attributed string (ParsedAttributedString) on top that derives
// per-character display attributes and visible-text substitutions
// from the syntax tree.
package richtext

import (
	"github.com/aretext/markedit/buffer"
	"github.com/aretext/markedit/parser"
)

// Ancestor is one entry in the path returned by ParsedString.PathTo: a
// node together with the raw offset at which it begins.
type Ancestor struct {
	Node   *parser.Node
	Offset uint32
}

// NodePath is a root-to-leaf chain of Ancestors, as returned by
// ParsedString.PathTo.
type NodePath []Ancestor

// InnermostOfType returns the deepest Ancestor in the path whose node
// has type t, and true if one exists. A consumer (e.g. a formatter
// host deciding which style applies at the cursor) usually wants the
// most specific match, not the root's.
func (path NodePath) InnermostOfType(t parser.NodeType) (Ancestor, bool) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i].Node.Type == t {
			return path[i], true
		}
	}
	return Ancestor{}, false
}

// ParsedString binds a piece-table buffer to a grammar and a memo
// table that survives edits: every Replace re-parses only the portion
// of the buffer the edit's footprint invalidated.
//
// A parse that doesn't cover the whole buffer does not discard the
// last good tree - per the error-handling contract, the library
// continues to accept edits and simply reports the incomplete parse
// alongside the last known good tree (absent only if no parse has
// ever fully succeeded).
type ParsedString struct {
	buf     *buffer.PieceTable
	grammar *parser.Grammar
	memo    *parser.MemoTable
	tree    *parser.Node
	err     error
}

// NewParsedString returns a ParsedString over initial content,
// parsing it immediately against grammar.
func NewParsedString(initial string, grammar *parser.Grammar) *ParsedString {
	p := &ParsedString{
		buf:     buffer.New(initial),
		grammar: grammar,
		memo:    parser.NewMemoTable(),
	}
	p.reparse()
	return p
}

func (p *ParsedString) reparse() {
	node, err := parser.ParseBuffer(p.buf, p.grammar, p.memo)
	if err != nil {
		p.err = err
		return
	}
	p.tree = node
	p.err = nil
}

// Len returns the buffer's current length in code units.
func (p *ParsedString) Len() uint32 { return p.buf.Len() }

// CodeUnitAt returns the code unit at i, or false if i is out of
// bounds.
func (p *ParsedString) CodeUnitAt(i uint32) (uint16, bool) { return p.buf.CodeUnitAt(i) }

// Slice materializes the code units in [lo, hi).
func (p *ParsedString) Slice(lo, hi uint32) []uint16 { return p.buf.Slice(lo, hi) }

// String returns the buffer's current content.
func (p *ParsedString) String() string { return p.buf.String() }

// Tree returns the last known good parse tree and true, or (nil,
// false) if no parse has ever fully succeeded.
func (p *ParsedString) Tree() (*parser.Node, bool) {
	return p.tree, p.tree != nil
}

// Err returns the error from the most recent parse attempt (typically
// an *parser.IncompleteParse), or nil if that attempt fully succeeded.
func (p *ParsedString) Err() error { return p.err }

// Replace replaces the raw range [lo, hi) with units, updates the memo
// table to reflect the edit, and re-runs the grammar's start rule.
func (p *ParsedString) Replace(lo, hi uint32, units []uint16) {
	p.buf.Replace(lo, hi, units)
	p.memo.ApplyEdit(lo, hi, uint32(len(units)))
	p.reparse()
}

// PathTo walks the current tree (if any) accumulating running
// offsets, returning the root-to-leaf chain of ancestors containing
// offset, each paired with the raw offset at which it begins.
func (p *ParsedString) PathTo(offset uint32) NodePath {
	tree, ok := p.Tree()
	if !ok {
		return nil
	}
	var path NodePath
	node := tree
	nodeOffset := uint32(0)
	for {
		path = append(path, Ancestor{Node: node, Offset: nodeOffset})
		if len(node.Children) == 0 {
			break
		}
		childOffset := nodeOffset
		next := node.Children[len(node.Children)-1]
		nextOffset := childOffset
		for i, c := range node.Children {
			if offset < childOffset+c.Length || i == len(node.Children)-1 {
				next, nextOffset = c, childOffset
				break
			}
			childOffset += c.Length
		}
		node, nodeOffset = next, nextOffset
	}
	return path
}
