package richtext

import (
	"github.com/aretext/markedit/attrs"
	"github.com/aretext/markedit/buffer"
	"github.com/aretext/markedit/overlay"
	"github.com/aretext/markedit/parser"
)

// Formatter resolves a node's display attributes and, optionally, a
// visible-text substitution. current is the attribute descriptor in
// effect at this point in the tree (the parent's resolved
// descriptor, or the string's default at the root), letting a
// formatter inherit and refine rather than rebuild attributes from
// scratch. replacement is nil when the node has no substitution - its
// raw text is displayed as-is.
type Formatter func(n *parser.Node, raw parser.RawText, rawOffset uint32, current attrs.Descriptor) (newAttrs attrs.Descriptor, replacement []uint16, hasReplacement bool)

func passthroughFormatter(_ *parser.Node, _ parser.RawText, _ uint32, current attrs.Descriptor) (attrs.Descriptor, []uint16, bool) {
	return current, nil, false
}

// ChangeNotification is published after a Replace call, describing
// what a host text system must do to catch up: re-fetch the raw range
// that was replaced, adjust for the resulting change in raw length,
// and re-display the changed visible attribute range.
type ChangeNotification struct {
	OldRawLo, OldRawHi uint32
	ChangeInLength     int32
	ChangedAttrsLo     uint32
	ChangedAttrsHi     uint32
	HasChangedAttrs    bool
}

// ParsedAttributedString drives a Formatter over a ParsedString's
// syntax tree to derive a visible string, a run-length attribute
// array, and a replacement overlay translating between raw and
// visible coordinates.
type ParsedAttributedString struct {
	Raw          *ParsedString
	visible      *buffer.PieceTable
	attributes   *attrs.AttributesArray
	overlay      *overlay.Overlay
	defaultAttrs attrs.Descriptor
	formatters   map[parser.NodeType]Formatter
}

// NewParsedAttributedString returns a ParsedAttributedString over
// initial content, parsed against grammar and formatted immediately.
func NewParsedAttributedString(initial string, grammar *parser.Grammar, defaultAttrs attrs.Descriptor, formatters map[parser.NodeType]Formatter) *ParsedAttributedString {
	pas := &ParsedAttributedString{
		Raw:          NewParsedString(initial, grammar),
		defaultAttrs: defaultAttrs,
		formatters:   formatters,
	}
	pas.rebuild()
	return pas
}

// Visible returns the current display text (after substitutions).
func (pas *ParsedAttributedString) Visible() string { return pas.visible.String() }

// VisibleLen returns the current display text's length in code units.
func (pas *ParsedAttributedString) VisibleLen() uint32 { return pas.visible.Len() }

// Attributes returns the current run-length attribute array over the
// visible string. The returned value must not be mutated.
func (pas *ParsedAttributedString) Attributes() *attrs.AttributesArray { return pas.attributes }

// Overlay returns the current raw<->visible replacement overlay. The
// returned value must not be mutated.
func (pas *ParsedAttributedString) Overlay() *overlay.Overlay { return pas.overlay }

// PathTo maps a visible offset back to the underlying raw offset and
// returns the syntax-tree path containing it, letting a host program
// decide (via NodePath.InnermostOfType) which markup applies at the
// cursor without reaching into pas.Raw's raw/visible distinction
// itself.
func (pas *ParsedAttributedString) PathTo(visOffset uint32) NodePath {
	rawOffset := pas.overlay.VisibleToRaw(visOffset, overlay.Lower)
	return pas.Raw.PathTo(rawOffset)
}

// rebuild resets the visible string to the raw content and re-derives
// attributes, overlay, and substitutions from the current tree (the
// §4.H apply_attributes algorithm).
func (pas *ParsedAttributedString) rebuild() {
	pas.visible = buffer.NewFromUnits(pas.Raw.Slice(0, pas.Raw.Len()))
	pas.attributes = attrs.New()
	pas.overlay = overlay.New()

	tree, ok := pas.Raw.Tree()
	if !ok {
		pas.attributes.Append(pas.defaultAttrs, pas.Raw.Len())
		return
	}
	cumDelta := int32(0)
	pas.applyAttributes(tree, 0, pas.defaultAttrs, &cumDelta)
}

func (pas *ParsedAttributedString) resolve(node *parser.Node, rawOffset uint32, current attrs.Descriptor) (desc attrs.Descriptor, replacement []uint16, hasReplacement bool) {
	if cached, ok := node.Prop(parser.PropAttributeDescriptor); ok {
		desc = cached.(attrs.Descriptor)
		if units, ok := node.Prop(parser.PropReplacementUnits); ok {
			replacement, hasReplacement = units.([]uint16), true
		}
		return
	}

	f, ok := pas.formatters[node.Type]
	if !ok {
		f = passthroughFormatter
	}
	desc, replacement, hasReplacement = f(node, pas.Raw.buf, rawOffset, current)

	node.SetProp(parser.PropAttributeDescriptor, desc)
	if hasReplacement {
		node.SetProp(parser.PropReplacementUnits, replacement)
		node.SetProp(parser.PropVisibleDelta, int32(len(replacement))-int32(node.Length))
	}
	return
}

// applyAttributes implements §4.H's recursive, depth-first
// apply_attributes: cumDelta threads the running raw-to-visible
// length delta accumulated by replacements already processed earlier
// (in document order) so that a replacement emitted here lands at the
// correct visible offset in pas.visible.
func (pas *ParsedAttributedString) applyAttributes(node *parser.Node, rawOffset uint32, current attrs.Descriptor, cumDelta *int32) {
	desc, replacement, hasReplacement := pas.resolve(node, rawOffset, current)

	if len(node.Children) == 0 || hasReplacement {
		if hasReplacement {
			visStart := uint32(int64(rawOffset) + int64(*cumDelta))
			// Sibling spans in a syntax tree are disjoint by construction,
			// so overlapping inserts here would indicate a grammar bug, not
			// a runtime condition to recover from.
			if err := pas.overlay.Insert(rawOffset, rawOffset+node.Length, replacement); err != nil {
				panic(err)
			}
			pas.visible.Replace(visStart, visStart+node.Length, replacement)
			*cumDelta += int32(len(replacement)) - int32(node.Length)
			pas.attributes.Append(desc, uint32(len(replacement)))
			return
		}
		pas.attributes.Append(desc, node.Length)
		return
	}

	childOffset := rawOffset
	for _, c := range node.Children {
		pas.applyAttributes(c, childOffset, desc, cumDelta)
		childOffset += c.Length
	}
}

// Replace edits the visible range [visLo, visHi) to units, mapping it
// to the underlying raw range, re-parsing and re-formatting, and
// returns what changed for a delegate to react to.
func (pas *ParsedAttributedString) Replace(visLo, visHi uint32, units []uint16) ChangeNotification {
	rawLo := pas.overlay.VisibleToRaw(visLo, overlay.Lower)
	rawHi := pas.overlay.VisibleToRaw(visHi, overlay.Upper)

	oldAttrs := pas.attributes
	pas.Raw.Replace(rawLo, rawHi, units)
	pas.rebuild()

	notice := ChangeNotification{
		OldRawLo:       rawLo,
		OldRawHi:       rawHi,
		ChangeInLength: int32(len(units)) - int32(rawHi-rawLo),
	}

	if oldAttrs.Len() != pas.attributes.Len() {
		// diff_range requires equal-length operands (§4.F); when the edit
		// changed the visible length, old and new runs aren't
		// position-comparable, so the whole new array is the changed
		// range rather than a value diff_range can produce.
		if n := pas.attributes.Len(); n > 0 {
			notice.ChangedAttrsLo, notice.ChangedAttrsHi, notice.HasChangedAttrs = 0, n, true
		}
		return notice
	}

	lo, hi, ok, err := oldAttrs.DiffRange(pas.attributes)
	if err != nil {
		panic(err) // unreachable: lengths were just checked equal
	}
	if ok {
		notice.ChangedAttrsLo, notice.ChangedAttrsHi, notice.HasChangedAttrs = lo, hi, true
	}
	return notice
}
