package markdown

import (
	"strings"

	"github.com/tesh254/chatmd/internal/node"
)

func (w *walker) inline(el *node.Element, kind node.Kind, ctx Context) fragment {
	switch kind {
	case node.KindBold:
		return w.wrap(el, ctx, "**")
	case node.KindItalic:
		return w.wrap(el, ctx, "*")
	case node.KindStrike:
		return w.wrap(el, ctx, "~~")
	case node.KindLink:
		return w.link(el, ctx)
	case node.KindBreak:
		return fragment{text: "\n", raw: true}
	case node.KindCode:
		return inlineCode(node.TextContent(el))
	case node.KindMath:
		return w.mathFragment(el)
	case node.KindImage:
		img, ok := imageOf(el)
		if !ok {
			return fragment{}
		}
		return fragment{text: img.markdown(), marked: true}
	case node.KindCodeLanguage:
		return fragment{}
	}
	text, _ := w.joinNodes(el.Children, ctx)
	if ctx.preserve {
		return fragment{text: text, raw: true}
	}
	return fragment{text: text, marked: true}
}

// wrap surrounds the inline content of el with marker. Whitespace at the
// edges of the content is moved outside the markers.
func (w *walker) wrap(el *node.Element, ctx Context, marker string) fragment {
	ctx.preserve = false
	inner, _ := w.joinNodes(el.Children, ctx)
	core := strings.TrimSpace(inner)
	if core == "" {
		return fragment{}
	}
	text := marker + core + marker
	raw := normalizeText(node.TextContent(el))
	if strings.HasPrefix(raw, " ") {
		text = " " + text
	}
	if strings.HasSuffix(raw, " ") {
		text += " "
	}
	return fragment{text: text, marked: true}
}

func (w *walker) link(el *node.Element, ctx Context) fragment {
	ctx.preserve = false
	text, _ := w.joinNodes(el.Children, ctx)
	text = strings.TrimSpace(text)
	href := strings.TrimSpace(el.AttrOr("href", ""))
	if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return fragment{text: text, marked: true}
	}
	if text == "" || strings.TrimSpace(normalizeText(node.TextContent(el))) == href {
		return fragment{text: "<" + href + ">", marked: true}
	}
	return fragment{text: "[" + text + "](" + href + ")", marked: true}
}

func inlineCode(raw string) fragment {
	raw = strings.ReplaceAll(raw, "\u00a0", " ")
	raw = strings.ReplaceAll(raw, "\n", " ")
	if strings.TrimSpace(raw) == "" {
		return fragment{}
	}
	fence := strings.Repeat("`", longestRun(raw, '`')+1)
	if strings.HasPrefix(raw, "`") || strings.HasSuffix(raw, "`") {
		raw = " " + raw + " "
	}
	return fragment{text: fence + raw + fence, marked: true}
}

// longestRun returns the length of the longest run of c in s.
func longestRun(s string, c byte) int {
	longest, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			cur++
			if cur > longest {
				longest = cur
			}
			continue
		}
		cur = 0
	}
	return longest
}
