package markdown

import (
	"strings"

	"github.com/tesh254/chatmd/internal/node"
)

// ItemType tags a content item.
type ItemType string

const (
	ItemText  ItemType = "text"
	ItemCode  ItemType = "code"
	ItemImage ItemType = "image"
	ItemTable ItemType = "table"
)

// Item is one piece of a message body. Text and Table items carry Markdown in
// Content, Code items carry the verbatim code and its language, Image items
// carry Src and Alt.
type Item struct {
	Type     ItemType `json:"type"`
	Content  string   `json:"content,omitempty"`
	Language string   `json:"language,omitempty"`
	Src      string   `json:"src,omitempty"`
	Alt      string   `json:"alt,omitempty"`
}

// Markdown renders a single item.
func (it Item) Markdown() string {
	switch it.Type {
	case ItemCode:
		return codeBlock{lang: it.Language, code: it.Content}.markdown()
	case ItemImage:
		return image{src: it.Src, alt: it.Alt}.markdown()
	}
	return it.Content
}

// Render joins items with one blank line between them.
func Render(items []Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if md := trimBlock(it.Markdown()); md != "" {
			parts = append(parts, md)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Items splits body into typed content items in document order. Every block
// element is serialized once; elements already covered by an earlier block
// are recorded in a consumed set and never emitted again. Loose inline runs
// become text, and adjacent text items are merged.
func (s *Serializer) Items(body *node.Element, skip node.SkipFunc) []Item {
	if body == nil {
		return nil
	}
	w := s.walker(skip)
	if w.skip(body) {
		return nil
	}
	a := &assembler{w: w, consumed: node.Set{}}
	a.scan(body, 0)
	a.flush()
	return a.items
}

type assembler struct {
	w        *walker
	consumed node.Set
	items    []Item
	run      []node.Node
}

func (a *assembler) scan(el *node.Element, depth int) {
	if a.consumed.Has(el) {
		return
	}
	for _, c := range el.Children {
		child, ok := c.(*node.Element)
		if !ok {
			a.run = append(a.run, c)
			continue
		}
		if a.w.skip(child) || a.consumed.Has(child) {
			continue
		}

		kind := node.Classify(child)
		switch {
		case kind == node.KindIgnored:
			continue
		case kind.IsBlock():
			a.flush()
			a.block(child, kind)
		case kind == node.KindImage:
			a.flush()
			if img, ok := imageOf(child); ok {
				a.items = append(a.items, Item{Type: ItemImage, Src: img.src, Alt: img.alt})
				a.consumed.Add(child)
			}
			continue
		case kind == node.KindUnknown && !a.w.holdsBlock(child):
			a.run = append(a.run, c)
			continue
		case kind.IsTransparent() || kind == node.KindListItem || kind == node.KindTableSection ||
			kind == node.KindTableRow || kind == node.KindTableCell:
			a.flush()
		default:
			a.run = append(a.run, c)
			continue
		}
		switch {
		case depth < a.w.s.maxDepth:
			a.scan(child, depth+1)
		case !a.consumed.Has(child):
			if text := trimBlock(a.w.flatten(child).text); text != "" {
				a.appendItem(Item{Type: ItemText, Content: text})
			}
		}
		a.flush()
	}
}

// block emits the items of a block element and marks its subtree consumed.
// A block that produces nothing consumes nothing, so its descendants are
// still visited by the scan.
func (a *assembler) block(el *node.Element, kind node.Kind) {
	ctx := Context{depth: 1}
	var out []Item
	switch kind {
	case node.KindCodeBlock:
		if c, ok := a.w.codeBlockOf(el); ok {
			out = append(out, Item{Type: ItemCode, Language: c.lang, Content: c.code})
		}
	case node.KindImageGrid:
		for _, img := range a.w.images(el) {
			out = append(out, Item{Type: ItemImage, Src: img.src, Alt: img.alt})
		}
	case node.KindTable:
		if text, ok := a.w.table(el, ctx); ok {
			out = append(out, Item{Type: ItemTable, Content: text})
		} else if text := trimBlock(a.w.tableFallback(el, ctx)); text != "" {
			out = append(out, Item{Type: ItemText, Content: text})
		}
	default:
		if text := trimBlock(a.w.element(el, Context{}).text); text != "" {
			out = append(out, Item{Type: ItemText, Content: text})
		}
	}
	if len(out) == 0 {
		return
	}
	for member := range node.Subtree(el, a.w.skip) {
		a.consumed.Add(member)
	}
	for _, it := range out {
		a.appendItem(it)
	}
}

func (a *assembler) flush() {
	if len(a.run) == 0 {
		return
	}
	text, _ := a.w.joinNodes(a.run, Context{})
	a.run = nil
	if text != "" {
		a.appendItem(Item{Type: ItemText, Content: text})
	}
}

func (a *assembler) appendItem(it Item) {
	if n := len(a.items); n > 0 && it.Type == ItemText && a.items[n-1].Type == ItemText {
		a.items[n-1].Content += "\n\n" + it.Content
		return
	}
	a.items = append(a.items, it)
}

// holdsBlock reports whether el has a block descendant.
func (w *walker) holdsBlock(el *node.Element) bool {
	return node.Find(el, func(e *node.Element) bool {
		return !w.skip(e) && node.Classify(e).IsBlock()
	}) != nil
}
