package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf16"
)

// NodeType identifies what a syntax tree node represents. Grammars
// define their own node types as distinct NodeType values (a defined
// string type keeps equality checks - used for coalescing adjacent
// leaves and for Formatter dispatch - simple and debug-readable).
type NodeType string

// FragmentType is the distinguished sentinel type for transient
// fragment nodes. A fragment's identity is dissolved when it's
// appended to a parent: its children graft in directly instead of the
// fragment nesting as a child itself. Grammars never construct one
// directly; InOrder and friends produce them internally.
const FragmentType NodeType = "\x00fragment"

// PropKey names a property a rule or formatter attaches to a node via
// SetProp. PropSubstitute and the three properties the formatter
// driver (richtext package) caches - resolved attribute descriptor,
// replacement units, and visible-length delta - are reserved below;
// grammars are free to define additional keys starting from
// FirstUserPropKey.
type PropKey int

const (
	// PropSubstitute is a reserved key for replacement code units a
	// grammar attaches to a node. The richtext formatter driver does
	// not read it: visible text changes only through a Formatter's
	// returned replacement.
	PropSubstitute PropKey = iota
	// PropAttributeDescriptor caches the formatter-resolved attribute
	// descriptor for a node so re-formatting an unedited subtree can
	// skip invoking the formatter again.
	PropAttributeDescriptor
	// PropReplacementUnits caches the resolved replacement produced by
	// a formatter call (which may differ from PropSubstitute).
	PropReplacementUnits
	// PropVisibleDelta caches replacement.length - node.length.
	PropVisibleDelta

	// FirstUserPropKey is the first PropKey value a grammar should use
	// for its own node properties, to avoid colliding with the
	// reserved keys above.
	FirstUserPropKey
)

type propEntry struct {
	key PropKey
	val interface{}
}

// Node is a syntax tree node: a type, a length (in code units), an
// ordered list of children, and a small property bag. A node with no
// children is a leaf whose Length is its own span; otherwise Length is
// always the sum of its children's lengths.
type Node struct {
	Type     NodeType
	Length   uint32
	Children []*Node
	props    []propEntry
}

// NewLeaf returns a childless node of type t spanning length code
// units.
func NewLeaf(t NodeType, length uint32) *Node {
	return &Node{Type: t, Length: length}
}

// NewFragment returns a fragment node: children are appended to it
// exactly like any other node, but appending the fragment itself to a
// parent grafts its children in directly (§4.D).
func NewFragment() *Node {
	return &Node{Type: FragmentType}
}

// NewParent returns a childless node of type t; its Length will grow
// as children are appended via AppendChild.
func NewParent(t NodeType) *Node {
	return &Node{Type: t}
}

// AppendChild appends child to n's children list, per §4.D:
//
//   - If child is a fragment, its children are grafted in one by one
//     (recursively, in case a fragment's own children include a
//     fragment) instead of the fragment nesting as a child.
//   - If the last existing child and child are both childless leaves
//     of the same type, they are merged into one leaf whose length is
//     the sum, and child is dropped (coalescing optimization). The
//     merged leaf is a fresh node carrying a copy of the existing
//     child's properties, so a leaf shared with a memoized result is
//     never modified.
//   - Otherwise child is appended as-is.
//
// n.Length is kept equal to the sum of n.Children's lengths.
func (n *Node) AppendChild(child *Node) {
	if child == nil {
		return
	}
	if child.Type == FragmentType {
		for _, grandchild := range child.Children {
			n.AppendChild(grandchild)
		}
		return
	}
	if last := n.lastChild(); last != nil &&
		len(last.Children) == 0 && len(child.Children) == 0 &&
		last.Type == child.Type {
		n.Children[len(n.Children)-1] = &Node{
			Type:   last.Type,
			Length: last.Length + child.Length,
			props:  append([]propEntry(nil), last.props...),
		}
		n.Length += child.Length
		return
	}
	n.Children = append(n.Children, child)
	n.Length += child.Length
}

func (n *Node) lastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

// Prop returns the value set for key, if any.
func (n *Node) Prop(key PropKey) (interface{}, bool) {
	for _, e := range n.props {
		if e.key == key {
			return e.val, true
		}
	}
	return nil, false
}

// SetProp attaches (or replaces) the value for key.
func (n *Node) SetProp(key PropKey, val interface{}) {
	for i, e := range n.props {
		if e.key == key {
			n.props[i].val = val
			return
		}
	}
	n.props = append(n.props, propEntry{key, val})
}

// RawText is the minimal text access a debugging projection needs to
// render a leaf's source text.
type RawText interface {
	Slice(lo, hi uint32) []uint16
}

// SExpr renders n as a compact S-expression, e.g.
// (document (header (delimiter text))). If buf is non-nil, each leaf
// name is followed by its quoted source text.
func (n *Node) SExpr(buf RawText) string {
	var sb strings.Builder
	sb.WriteByte('(')
	n.writeSExpr(&sb, buf, 0)
	sb.WriteByte(')')
	return sb.String()
}

func (n *Node) writeSExpr(sb *strings.Builder, buf RawText, offset uint32) {
	sb.WriteString(string(n.Type))
	if len(n.Children) == 0 {
		if buf != nil {
			text := string(utf16.Decode(buf.Slice(offset, offset+n.Length)))
			fmt.Fprintf(sb, " %q", text)
		}
		return
	}
	sb.WriteString(" (")
	childOffset := offset
	for i, c := range n.Children {
		if i > 0 {
			sb.WriteByte(' ')
		}
		c.writeSExpr(sb, buf, childOffset)
		childOffset += c.Length
	}
	sb.WriteByte(')')
}

// DumpLines writes a line-per-node dump of n to w, indented by depth
// and annotated with each node's [start, end) span, for debugging. If
// buf is non-nil, each leaf line also shows the leaf's quoted source
// text.
func (n *Node) DumpLines(buf RawText, w io.Writer) {
	n.dumpLines(buf, w, 0, 0)
}

func (n *Node) dumpLines(buf RawText, w io.Writer, depth int, offset uint32) {
	fmt.Fprintf(w, "%s%s [%d, %d)", strings.Repeat("  ", depth), n.Type, offset, offset+n.Length)
	if len(n.Children) == 0 && buf != nil {
		fmt.Fprintf(w, " %q", string(utf16.Decode(buf.Slice(offset, offset+n.Length))))
	}
	fmt.Fprintln(w)
	childOffset := offset
	for _, c := range n.Children {
		c.dumpLines(buf, w, depth+1, childOffset)
		childOffset += c.Length
	}
}
