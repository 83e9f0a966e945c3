package markdown

import (
	"github.com/tesh254/chatmd/internal/node"
)

type unitKind int

const (
	unitInline unitKind = iota
	unitList
	unitQuote
	unitBlock
)

// unit is one logical child of a list item or blockquote: a nested list, a
// nested quote, another block, or a run of inline nodes.
type unit struct {
	kind  unitKind
	el    *node.Element
	nodes []node.Node
}

// textual reports whether the unit renders as prose that needs a blank line
// before it to avoid merging with the previous unit.
func (u unit) textual() bool {
	switch u.kind {
	case unitInline:
		return true
	case unitBlock:
		switch node.Classify(u.el) {
		case node.KindCodeBlock, node.KindMathBlock:
			return false
		}
		return true
	}
	return false
}

// units splits children into logical units. Paragraphs and transparent
// containers holding a nested list or quote are spliced so the structure
// underneath can be rendered by its dedicated serializer.
func (w *walker) units(children []node.Node, depth int) []unit {
	var out []unit
	var run []node.Node
	flush := func() {
		for _, n := range run {
			if !node.IsBlank(n) {
				out = append(out, unit{kind: unitInline, nodes: run})
				break
			}
		}
		run = nil
	}

	for _, c := range children {
		el, ok := c.(*node.Element)
		if !ok {
			run = append(run, c)
			continue
		}
		if w.skip(el) {
			continue
		}
		kind := node.Classify(el)
		switch {
		case kind == node.KindIgnored:
		case kind == node.KindList:
			flush()
			out = append(out, unit{kind: unitList, el: el})
		case kind == node.KindBlockquote:
			flush()
			out = append(out, unit{kind: unitQuote, el: el})
		case kind.IsSelfContained():
			flush()
			out = append(out, unit{kind: unitBlock, el: el})
		case kind == node.KindUnknown && !w.holdsStructure(el):
			run = append(run, c)
		case kind == node.KindParagraph || kind.IsTransparent() || kind == node.KindListItem:
			flush()
			if depth < w.s.maxDepth && w.holdsStructure(el) {
				out = append(out, w.units(el.Children, depth+1)...)
				continue
			}
			out = append(out, unit{kind: unitBlock, el: el})
		case kind.IsBlock():
			flush()
			out = append(out, unit{kind: unitBlock, el: el})
		default:
			run = append(run, c)
		}
	}
	flush()
	return out
}

// holdsStructure reports whether el has a list or blockquote descendant that
// is not inside another self-contained block.
func (w *walker) holdsStructure(el *node.Element) bool {
	found := false
	node.Walk(el, func(cur *node.Element) bool {
		if found {
			return false
		}
		if cur == el {
			return true
		}
		if w.skip(cur) {
			return false
		}
		k := node.Classify(cur)
		if k == node.KindList || k == node.KindBlockquote {
			found = true
			return false
		}
		return !k.IsSelfContained()
	})
	return found
}
