package markdown

import (
	"strconv"
	"strings"

	"github.com/tesh254/chatmd/internal/node"
)

type listEntry struct {
	li *node.Element
	// nested lists placed directly inside the list element after li
	extra []*node.Element
}

func (w *walker) listEntries(el *node.Element) []listEntry {
	var out []listEntry
	for _, c := range el.ElementChildren() {
		if w.skip(c) {
			continue
		}
		switch node.Classify(c) {
		case node.KindListItem:
			out = append(out, listEntry{li: c})
		case node.KindList:
			if len(out) > 0 {
				out[len(out)-1].extra = append(out[len(out)-1].extra, c)
			}
		}
	}
	return out
}

// maxStart is the largest ordered marker number Markdown accepts (nine digits).
const maxStart = 999999999

// startOf returns the first ordered marker number, clamped to what a
// Markdown list marker can express.
func startOf(el *node.Element) int {
	if v, ok := el.Attr("start"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return min(max(n, 0), maxStart)
		}
	}
	return 1
}

// list renders a list with ctx.indent leading spaces before each marker.
// Inside a blockquote every line also carries the quote prefix, and nested
// levels are indented by three columns instead of two.
func (w *walker) list(el *node.Element, ctx Context) string {
	bq := ""
	if ctx.WithinBlockquote {
		bq = quotePrefix(ctx.BlockquoteDepth)
	}
	if ctx.depth >= w.s.maxDepth {
		return prefixLines(w.flatten(el).text, bq+strings.Repeat(" ", ctx.indent))
	}
	ctx.depth++

	entries := w.listEntries(el)
	if len(entries) == 0 {
		return ""
	}

	ordered := node.Ordered(el)
	ctx.ListType = ListUnordered
	if ordered {
		ctx.ListType = ListOrdered
	}
	unitWidth := 2
	if ctx.WithinBlockquote {
		unitWidth = 3
	}

	n := startOf(el)
	var lines []string
	for _, e := range entries {
		marker := "-"
		if ordered {
			marker = strconv.Itoa(n) + "."
			n++
		}
		lines = append(lines, w.listItem(e, marker, unitWidth, bq, ctx)...)
	}
	return strings.Join(lines, "\n")
}

func (w *walker) listItem(e listEntry, marker string, unitWidth int, bq string, ctx Context) []string {
	indent := strings.Repeat(" ", ctx.indent)
	cont := strings.Repeat(" ", ctx.indent+len(marker)+1)

	us := w.units(e.li.Children, ctx.depth)
	for _, x := range e.extra {
		us = append(us, unit{kind: unitList, el: x})
	}

	rel := ctx
	rel.BlockquoteDepth = 0
	rel.WithinBlockquote = false
	rel.ListLevel = 0
	rel.ListType = ListNone
	rel.indent = 0

	var lines []string
	first := true
	for _, u := range us {
		if u.kind == unitList {
			child := ctx
			child.ListLevel++
			child.indent = max(ctx.indent+unitWidth, ctx.indent+len(marker)+1)
			s := w.list(u.el, child)
			if s == "" {
				continue
			}
			if first {
				lines = append(lines, bq+indent+marker)
				first = false
			}
			lines = append(lines, strings.Split(s, "\n")...)
			continue
		}

		var s string
		switch u.kind {
		case unitInline:
			s, _ = w.joinNodes(u.nodes, rel)
		case unitQuote:
			s = w.blockquote(u.el, 0, rel)
		default:
			s = w.element(u.el, rel).text
		}
		if s = trimBlock(s); s == "" {
			continue
		}
		if !first && u.textual() {
			lines = append(lines, bq)
		}
		for j, l := range strings.Split(s, "\n") {
			switch {
			case first && j == 0:
				lines = append(lines, bq+indent+marker+" "+l)
			case l == "":
				lines = append(lines, bq)
			default:
				lines = append(lines, bq+cont+l)
			}
		}
		first = false
	}
	if first {
		return []string{bq + indent + marker}
	}
	return lines
}

func (w *walker) listFragment(el *node.Element, ctx Context) fragment {
	return fragment{text: w.list(el, ctx), block: true}
}
