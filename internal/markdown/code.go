package markdown

import (
	"strings"

	"github.com/tesh254/chatmd/internal/node"
)

type codeBlock struct {
	lang string
	code string
}

var languageClassPrefixes = []string{"language-", "lang-"}

// codeBlockOf extracts the language and verbatim text of a fenced code block.
// It reports false when there is neither code nor a language.
func (w *walker) codeBlockOf(el *node.Element) (codeBlock, bool) {
	codeEl := el
	if el.Tag != "code" {
		codeEl = node.Find(el, func(e *node.Element) bool {
			return e.Tag == "code" && node.Classify(e) != node.KindCodeLanguage && !w.skip(e)
		})
	}

	lang := languageOf(el)
	if lang == "" && codeEl != nil {
		lang = languageOf(codeEl)
	}
	if lang == "" {
		if ind := node.Find(el, func(e *node.Element) bool { return node.Classify(e) == node.KindCodeLanguage }); ind != nil {
			if fields := strings.Fields(node.TextContent(ind)); len(fields) > 0 {
				lang = strings.ToLower(fields[0])
			}
		}
	}

	src := el
	if codeEl != nil {
		src = codeEl
	}
	code := w.rawText(src)
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = strings.TrimSuffix(code, "\n")

	if strings.TrimSpace(code) == "" {
		if lang == "" {
			return codeBlock{}, false
		}
		code = ""
	}
	return codeBlock{lang: lang, code: code}, true
}

func languageOf(el *node.Element) string {
	for _, p := range languageClassPrefixes {
		if v, ok := el.ClassWithPrefix(p); ok {
			return strings.ToLower(v)
		}
	}
	if v := strings.TrimSpace(el.AttrOr("data-language", "")); v != "" {
		return strings.ToLower(v)
	}
	return ""
}

// rawText returns the text under el verbatim, leaving out skipped subtrees,
// ignored UI elements and language indicators.
func (w *walker) rawText(el *node.Element) string {
	var b strings.Builder
	stack := []node.Node{el}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch v := cur.(type) {
		case *node.Text:
			b.WriteString(v.Data)
		case *node.Element:
			if v != el {
				if w.skip(v) {
					continue
				}
				if k := node.Classify(v); k == node.KindIgnored || k == node.KindCodeLanguage {
					continue
				}
			}
			if v.Tag == "br" {
				b.WriteByte('\n')
				continue
			}
			for i := len(v.Children) - 1; i >= 0; i-- {
				stack = append(stack, v.Children[i])
			}
		}
	}
	return b.String()
}

func (c codeBlock) markdown() string {
	fence := codeFence(c.code)
	if c.code == "" {
		return fence + c.lang + "\n" + fence
	}
	return fence + c.lang + "\n" + c.code + "\n" + fence
}

// codeFence returns a backtick fence longer than any backtick run in code.
func codeFence(code string) string {
	n := longestRun(code, '`') + 1
	if n < 3 {
		n = 3
	}
	return strings.Repeat("`", n)
}

func (w *walker) codeFragment(el *node.Element, _ Context) fragment {
	c, ok := w.codeBlockOf(el)
	if !ok {
		return fragment{}
	}
	return fragment{text: c.markdown(), block: true}
}
