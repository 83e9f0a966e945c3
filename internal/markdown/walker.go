package markdown

import (
	"strings"

	"github.com/tesh254/chatmd/internal/node"
)

// fragment is the output of serializing one node.
type fragment struct {
	text string
	// block fragments occupy their own lines.
	block bool
	// marked fragments come from inline elements. A marked fragment is
	// separated from its neighbours by one space unless whitespace or
	// punctuation already sits at the junction.
	marked bool
	// raw fragments are written verbatim (preformatted text and hard breaks).
	raw bool
}

type handler func(w *walker, el *node.Element, ctx Context) fragment

var handlers map[node.Kind]handler

func init() {
	handlers = map[node.Kind]handler{
		node.KindIgnored:      func(*walker, *node.Element, Context) fragment { return fragment{} },
		node.KindParagraph:    (*walker).paragraph,
		node.KindHeading:      (*walker).heading,
		node.KindList:         (*walker).listFragment,
		node.KindBlockquote:   (*walker).blockquoteFragment,
		node.KindTable:        (*walker).tableFragment,
		node.KindRule:         func(*walker, *node.Element, Context) fragment { return fragment{text: "---", block: true} },
		node.KindCodeBlock:    (*walker).codeFragment,
		node.KindImageGrid:    (*walker).imageGridFragment,
		node.KindMathBlock:    (*walker).mathBlockFragment,
		node.KindContainer:    (*walker).container,
		node.KindUnknown:      (*walker).unknown,
		node.KindListItem:     (*walker).container,
		node.KindTableSection: (*walker).container,
		node.KindTableRow:     (*walker).container,
		node.KindTableCell:    (*walker).container,
	}
}

// walker carries the per-call skip predicate. It is created for each
// top-level call and never mutated.
type walker struct {
	s    *Serializer
	skip node.SkipFunc
}

func (w *walker) serialize(n node.Node, ctx Context) fragment {
	switch v := n.(type) {
	case *node.Text:
		if ctx.preserve {
			return fragment{text: preformatted(v.Data), raw: true}
		}
		return fragment{text: escapeText(normalizeText(v.Data))}
	case *node.Element:
		return w.element(v, ctx)
	}
	return fragment{}
}

func (w *walker) element(el *node.Element, ctx Context) fragment {
	if w.skip(el) {
		return fragment{}
	}
	if ctx.depth >= w.s.maxDepth {
		return w.flatten(el)
	}
	ctx.depth++
	if preservesWhitespace(el) {
		ctx.preserve = true
	}

	kind := node.Classify(el)
	if h, ok := handlers[kind]; ok {
		return h(w, el, ctx)
	}
	return w.inline(el, kind, ctx)
}

// flatten emits the plain text of a subtree that is nested too deeply.
func (w *walker) flatten(el *node.Element) fragment {
	w.s.log.DepthLimitReached(el.Tag, w.s.maxDepth)
	return fragment{text: escapeText(normalizeText(node.TextContent(el))), block: true}
}

func (w *walker) container(el *node.Element, ctx Context) fragment {
	text, _ := w.joinNodes(el.Children, ctx)
	return fragment{text: text, block: true}
}

func (w *walker) unknown(el *node.Element, ctx Context) fragment {
	if len(el.Children) > 0 && !node.IsBlank(el) {
		w.s.log.UnrecognizedElement(el.Tag, len(el.Children))
	}
	text, hasBlock := w.joinNodes(el.Children, ctx)
	return fragment{text: text, block: hasBlock, marked: !hasBlock}
}

func (w *walker) paragraph(el *node.Element, ctx Context) fragment {
	text, _ := w.joinNodes(el.Children, ctx)
	return fragment{text: text, block: true}
}

func (w *walker) heading(el *node.Element, ctx Context) fragment {
	ctx.preserve = false
	text, _ := w.joinNodes(el.Children, ctx)
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return fragment{}
	}
	return fragment{text: strings.Repeat("#", node.HeadingLevel(el)) + " " + text, block: true}
}

// joinNodes serializes a run of sibling nodes and joins the fragments. The
// second result reports whether any fragment was a block.
func (w *walker) joinNodes(nodes []node.Node, ctx Context) (string, bool) {
	var j joiner
	for _, n := range nodes {
		j.add(w.serialize(n, ctx))
	}
	return j.String(), j.sawBlock
}

const (
	posNone = iota
	posInline
	posBlock
)

// joiner applies the spacing rules between fragments: blocks are separated
// by one blank line, whitespace-only text collapses into a single pending
// space and element fragments never touch their neighbours.
type joiner struct {
	buf        []byte
	last       int
	lastMarked bool
	pending    bool
	sawBlock   bool
}

func (j *joiner) add(f fragment) {
	if f.block {
		j.addBlock(f.text)
		return
	}
	if f.text == "" {
		return
	}
	if f.raw {
		j.addRaw(f.text)
		return
	}
	if strings.TrimSpace(f.text) == "" {
		if j.last == posInline {
			j.pending = true
		}
		return
	}

	t := f.text
	switch {
	case j.last == posBlock:
		j.trimRight()
		j.buf = append(j.buf, "\n\n"...)
		t = strings.TrimLeft(t, " ")
	case len(j.buf) == 0:
		t = strings.TrimLeft(t, " ")
	case endsWithSpace(j.buf):
		t = strings.TrimLeft(t, " ")
	case t[0] == ' ':
	case j.pending || j.needsSpace(t, f.marked):
		j.buf = append(j.buf, ' ')
	}
	j.buf = append(j.buf, t...)
	j.last = posInline
	j.lastMarked = f.marked
	j.pending = false
}

// needsSpace reports whether inline text t must be separated from the
// buffer. Text starting with closing punctuation stays attached to the
// element before it, and an element stays attached to opening punctuation.
func (j *joiner) needsSpace(t string, marked bool) bool {
	switch {
	case j.lastMarked && marked:
		return true
	case j.lastMarked:
		return !strings.ContainsRune(closingPunct, rune(t[0]))
	case marked:
		return !strings.ContainsRune(openingPunct, rune(j.buf[len(j.buf)-1]))
	}
	return false
}

const (
	closingPunct = ".,;:!?)]}'\"%"
	openingPunct = "([{'\"/"
)

func (j *joiner) addBlock(text string) {
	text = trimBlock(text)
	if text == "" {
		return
	}
	if len(j.buf) > 0 {
		j.trimRight()
		if len(j.buf) > 0 {
			j.buf = append(j.buf, "\n\n"...)
		}
	}
	j.buf = append(j.buf, text...)
	j.last = posBlock
	j.lastMarked = false
	j.pending = false
	j.sawBlock = true
}

func (j *joiner) addRaw(text string) {
	if j.last == posBlock {
		if strings.TrimSpace(text) == "" {
			return
		}
		j.trimRight()
		j.buf = append(j.buf, "\n\n"...)
		text = strings.TrimLeft(text, "\n")
	} else if len(j.buf) == 0 {
		text = strings.TrimLeft(text, "\n")
	}
	if strings.HasPrefix(text, "\n") {
		j.buf = trimTrailingSpaces(j.buf)
	} else if j.pending && !endsWithSpace(j.buf) {
		j.buf = append(j.buf, ' ')
	}
	j.buf = append(j.buf, text...)
	j.last = posInline
	j.lastMarked = false
	j.pending = false
}

func (j *joiner) trimRight() {
	for len(j.buf) > 0 {
		c := j.buf[len(j.buf)-1]
		if c != ' ' && c != '\n' && c != '\t' {
			return
		}
		j.buf = j.buf[:len(j.buf)-1]
	}
}

func (j *joiner) String() string {
	return trimBlock(string(j.buf))
}

func endsWithSpace(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	c := b[len(b)-1]
	return c == ' ' || c == '\n'
}

func trimTrailingSpaces(b []byte) []byte {
	for len(b) > 0 && b[len(b)-1] == ' ' {
		b = b[:len(b)-1]
	}
	return b
}

// trimBlock drops surrounding blank lines and trailing spaces while keeping
// the indentation of the first line.
func trimBlock(s string) string {
	s = strings.TrimRight(s, " \t\n")
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 || strings.TrimSpace(s[:i]) != "" {
			break
		}
		s = s[i+1:]
	}
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// normalizeText maps non-breaking spaces to spaces and collapses whitespace
// runs to a single space.
func normalizeText(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v', '\u00a0':
			if !space {
				b.WriteByte(' ')
				space = true
			}
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

var textEscaper = strings.NewReplacer("\\", "\\\\", "*", "\\*", "_", "\\_", "`", "\\`")

// escapeText backslash-escapes the emphasis and code span delimiters in
// prose so literal characters are not read as formatting.
func escapeText(s string) string {
	if !strings.ContainsAny(s, "\\*_`") {
		return s
	}
	return textEscaper.Replace(s)
}

func preformatted(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\t", "  ")
	return strings.ReplaceAll(s, "\u00a0", " ")
}

func preservesWhitespace(el *node.Element) bool {
	if el.HasClass("whitespace-pre-wrap") || el.HasClass("whitespace-pre") {
		return true
	}
	style, ok := el.Attr("style")
	if !ok {
		return false
	}
	style = strings.ToLower(strings.ReplaceAll(style, " ", ""))
	return strings.Contains(style, "white-space:pre")
}

// prefixLines prepends prefix to every line. Blank lines get the prefix alone.
func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
