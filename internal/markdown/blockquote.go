package markdown

import (
	"strings"

	"github.com/tesh254/chatmd/internal/node"
)

func quotePrefix(depth int) string {
	return strings.Repeat("> ", depth)
}

// blockquote renders el at nesting level nest (0 for an outermost quote).
// Every line carries nest+1 quote markers. Nested quotes and lists are
// rendered by their own serializers and prefix themselves; all other units
// are rendered without a prefix and prefixed here. Units are separated by a
// line holding only the prefix.
func (w *walker) blockquote(el *node.Element, nest int, ctx Context) string {
	prefix := quotePrefix(nest + 1)
	if ctx.depth >= w.s.maxDepth {
		return prefixLines(w.flatten(el).text, prefix)
	}
	ctx.depth++

	inner := ctx
	inner.BlockquoteDepth = nest + 1
	inner.WithinBlockquote = true
	inner.ListLevel = 0
	inner.ListType = ListNone
	inner.indent = 0

	rel := ctx
	rel.BlockquoteDepth = 0
	rel.WithinBlockquote = false
	rel.ListLevel = 0
	rel.ListType = ListNone
	rel.indent = 0

	var blocks []string
	for _, u := range w.units(el.Children, ctx.depth) {
		var s string
		switch u.kind {
		case unitQuote:
			s = w.blockquote(u.el, nest+1, inner)
		case unitList:
			s = w.list(u.el, inner)
		case unitInline:
			text, _ := w.joinNodes(u.nodes, rel)
			if text = trimBlock(text); text != "" {
				s = prefixLines(text, prefix)
			}
		default:
			if text := trimBlock(w.element(u.el, rel).text); text != "" {
				s = prefixLines(text, prefix)
			}
		}
		if strings.TrimSpace(s) != "" {
			blocks = append(blocks, s)
		}
	}

	lines := strings.Split(strings.Join(blocks, "\n"+prefix+"\n"), "\n")
	for len(lines) > 0 && blankQuoteLine(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// blankQuoteLine reports whether a line holds nothing but quote markers.
func blankQuoteLine(line string) bool {
	return strings.Trim(line, "> ") == ""
}

func (w *walker) blockquoteFragment(el *node.Element, ctx Context) fragment {
	nest := 0
	if ctx.WithinBlockquote && ctx.BlockquoteDepth > 0 {
		nest = ctx.BlockquoteDepth
	}
	return fragment{text: w.blockquote(el, nest, ctx), block: true}
}
