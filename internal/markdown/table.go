package markdown

import (
	"strings"

	"github.com/tesh254/chatmd/internal/node"
)

type tableRows struct {
	head []*node.Element
	body []*node.Element
}

// rowsOf collects the rows of a table in document order without descending
// into nested tables.
func (w *walker) rowsOf(table *node.Element) tableRows {
	var rows tableRows
	var visit func(el *node.Element, inHead bool, depth int)
	visit = func(el *node.Element, inHead bool, depth int) {
		for _, c := range el.ElementChildren() {
			if w.skip(c) {
				continue
			}
			switch node.Classify(c) {
			case node.KindTableRow:
				if inHead {
					rows.head = append(rows.head, c)
				} else {
					rows.body = append(rows.body, c)
				}
			case node.KindTableSection:
				visit(c, c.Tag == "thead", depth+1)
			case node.KindTable, node.KindIgnored:
			default:
				if depth < 4 {
					visit(c, inHead, depth+1)
				}
			}
		}
	}
	visit(table, false, 0)
	return rows
}

func (w *walker) cellsOf(row *node.Element) []*node.Element {
	var cells []*node.Element
	for _, c := range row.ElementChildren() {
		if w.skip(c) {
			continue
		}
		if node.Classify(c) == node.KindTableCell {
			cells = append(cells, c)
		}
	}
	return cells
}

func allHeaderCells(cells []*node.Element) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if c.Tag != "th" {
			return false
		}
	}
	return true
}

// table renders a GFM pipe table. It reports false when the table has no
// columns or no data row that matches the header width.
func (w *walker) table(el *node.Element, ctx Context) (string, bool) {
	rows := w.rowsOf(el)

	var header []*node.Element
	body := rows.body
	synthesized := false
	switch {
	case len(rows.head) > 0:
		header = w.cellsOf(rows.head[0])
		body = append(append([]*node.Element{}, rows.head[1:]...), rows.body...)
	case len(body) > 0 && allHeaderCells(w.cellsOf(body[0])):
		header = w.cellsOf(body[0])
		body = body[1:]
	case len(body) > 0:
		header = make([]*node.Element, len(w.cellsOf(body[0])))
		synthesized = true
	}

	cols := len(header)
	if cols == 0 {
		return "", false
	}

	ctx.preserve = false
	var lines []string
	if synthesized {
		lines = append(lines, "|"+strings.Repeat("  |", cols))
	} else {
		lines = append(lines, w.tableLine(header, ctx))
	}
	lines = append(lines, "|"+strings.Repeat("---|", cols))

	data := 0
	for i, row := range body {
		cells := w.cellsOf(row)
		if len(cells) != cols {
			w.s.log.TableRowSkipped(i, cols, len(cells))
			continue
		}
		lines = append(lines, w.tableLine(cells, ctx))
		data++
	}
	if data == 0 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

func (w *walker) tableLine(cells []*node.Element, ctx Context) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = w.cell(c, ctx)
	}
	return "| " + strings.Join(parts, " | ") + " |"
}

// cell serializes a cell onto a single line with pipes escaped.
func (w *walker) cell(c *node.Element, ctx Context) string {
	if c == nil {
		return ""
	}
	text, _ := w.joinNodes(c.Children, ctx)
	text = strings.Join(strings.Fields(strings.ReplaceAll(text, "\n", " ")), " ")
	return strings.ReplaceAll(text, "|", `\|`)
}

func (w *walker) tableFragment(el *node.Element, ctx Context) fragment {
	if text, ok := w.table(el, ctx); ok {
		return fragment{text: text, block: true}
	}
	return fragment{text: w.tableFallback(el, ctx), block: true}
}

// tableFallback flattens a table that could not be rendered as a grid:
// cells are joined by spaces and rows become lines.
func (w *walker) tableFallback(el *node.Element, ctx Context) string {
	rows := w.rowsOf(el)
	var lines []string
	for _, row := range append(rows.head, rows.body...) {
		var parts []string
		for _, c := range w.cellsOf(row) {
			if t := w.cell(c, ctx); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	if len(lines) == 0 {
		text, _ := w.joinNodes(el.Children, ctx)
		return text
	}
	return strings.Join(lines, "\n")
}
