package node

import (
	"strings"
)

// Kind is the serializer's node vocabulary.
type Kind int

const (
	KindUnknown Kind = iota
	KindInline
	KindContainer
	KindIgnored
	KindParagraph
	KindHeading
	KindList
	KindListItem
	KindTable
	KindTableSection
	KindTableRow
	KindTableCell
	KindBlockquote
	KindRule
	KindCodeBlock
	KindCodeLanguage
	KindImageGrid
	KindMathBlock
	KindMath
	KindBold
	KindItalic
	KindStrike
	KindLink
	KindBreak
	KindCode
	KindImage
)

// KindAttr is the attribute platform adapters use to force a classification.
const KindAttr = "data-md-kind"

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindInline:       "inline",
	KindContainer:    "container",
	KindIgnored:      "ignored",
	KindParagraph:    "paragraph",
	KindHeading:      "heading",
	KindList:         "list",
	KindListItem:     "list-item",
	KindTable:        "table",
	KindTableSection: "table-section",
	KindTableRow:     "table-row",
	KindTableCell:    "table-cell",
	KindBlockquote:   "blockquote",
	KindRule:         "rule",
	KindCodeBlock:    "code-block",
	KindCodeLanguage: "code-language",
	KindImageGrid:    "image-grid",
	KindMathBlock:    "math-block",
	KindMath:         "math",
	KindBold:         "bold",
	KindItalic:       "italic",
	KindStrike:       "strike",
	KindLink:         "link",
	KindBreak:        "break",
	KindCode:         "code",
	KindImage:        "image",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind resolves a kind name as written in data-md-kind.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindUnknown, false
}

// IsBlock reports whether the kind always occupies its own lines.
func (k Kind) IsBlock() bool {
	switch k {
	case KindParagraph, KindHeading, KindList, KindTable, KindBlockquote,
		KindRule, KindCodeBlock, KindImageGrid, KindMathBlock:
		return true
	}
	return false
}

// IsSelfContained reports whether the kind has a dedicated serializer that
// manages its own internal spacing.
func (k Kind) IsSelfContained() bool {
	switch k {
	case KindList, KindTable, KindBlockquote, KindRule, KindCodeBlock,
		KindImageGrid, KindMathBlock:
		return true
	}
	return false
}

// IsTransparent reports whether the kind only groups its children.
func (k Kind) IsTransparent() bool {
	return k == KindContainer || k == KindUnknown
}

var classKinds = []struct {
	class string
	kind  Kind
}{
	{"katex-display", KindMathBlock},
	{"math-display", KindMathBlock},
	{"math-block", KindMathBlock},
	{"katex", KindMath},
	{"math-inline", KindMath},
	{"code-block", KindCodeBlock},
	{"image-grid", KindImageGrid},
	{"code-language", KindCodeLanguage},
	{"code-block__language", KindCodeLanguage},
	{"language-label", KindCodeLanguage},
}

var tagKinds = map[string]Kind{
	"p":          KindParagraph,
	"h1":         KindHeading,
	"h2":         KindHeading,
	"h3":         KindHeading,
	"h4":         KindHeading,
	"h5":         KindHeading,
	"h6":         KindHeading,
	"ul":         KindList,
	"ol":         KindList,
	"li":         KindListItem,
	"table":      KindTable,
	"thead":      KindTableSection,
	"tbody":      KindTableSection,
	"tfoot":      KindTableSection,
	"tr":         KindTableRow,
	"td":         KindTableCell,
	"th":         KindTableCell,
	"blockquote": KindBlockquote,
	"hr":         KindRule,
	"pre":        KindCodeBlock,
	"b":          KindBold,
	"strong":     KindBold,
	"i":          KindItalic,
	"em":         KindItalic,
	"s":          KindStrike,
	"del":        KindStrike,
	"strike":     KindStrike,
	"a":          KindLink,
	"br":         KindBreak,
	"code":       KindCode,
	"img":        KindImage,

	"script":   KindIgnored,
	"style":    KindIgnored,
	"noscript": KindIgnored,
	"template": KindIgnored,
	"button":   KindIgnored,
	"svg":      KindIgnored,
	"head":     KindIgnored,
	"meta":     KindIgnored,
	"link":     KindIgnored,
	"title":    KindIgnored,
	"input":    KindIgnored,
	"select":   KindIgnored,
	"textarea": KindIgnored,
	"iframe":   KindIgnored,
	"canvas":   KindIgnored,
	"object":   KindIgnored,
	"embed":    KindIgnored,
	"audio":    KindIgnored,
	"video":    KindIgnored,
	"source":   KindIgnored,
	"track":    KindIgnored,
	"colgroup": KindIgnored,
	"col":      KindIgnored,

	"html":       KindContainer,
	"body":       KindContainer,
	"div":        KindContainer,
	"section":    KindContainer,
	"article":    KindContainer,
	"main":       KindContainer,
	"header":     KindContainer,
	"footer":     KindContainer,
	"aside":      KindContainer,
	"nav":        KindContainer,
	"figure":     KindContainer,
	"figcaption": KindContainer,
	"details":    KindContainer,
	"summary":    KindContainer,
	"center":     KindContainer,
	"dl":         KindContainer,
	"dt":         KindContainer,
	"dd":         KindContainer,
	"address":    KindContainer,
	"hgroup":     KindContainer,
	"fieldset":   KindContainer,
	"form":       KindContainer,
	"caption":    KindContainer,
	"picture":    KindContainer,

	"span":  KindInline,
	"sup":   KindInline,
	"sub":   KindInline,
	"mark":  KindInline,
	"u":     KindInline,
	"ins":   KindInline,
	"small": KindInline,
	"big":   KindInline,
	"abbr":  KindInline,
	"label": KindInline,
	"time":  KindInline,
	"kbd":   KindInline,
	"samp":  KindInline,
	"var":   KindInline,
	"q":     KindInline,
	"cite":  KindInline,
	"dfn":   KindInline,
	"bdi":   KindInline,
	"bdo":   KindInline,
	"font":  KindInline,
	"data":  KindInline,
	"wbr":   KindInline,
	"tt":    KindInline,
}

// Classify maps an element onto the serializer vocabulary: an explicit
// data-md-kind attribute wins, then generic class conventions, then the tag.
func Classify(e *Element) Kind {
	if v, ok := e.Attrs[KindAttr]; ok {
		if k, ok := ParseKind(v); ok {
			return k
		}
	}
	for _, ck := range classKinds {
		if e.HasClass(ck.class) {
			return ck.kind
		}
	}
	if e.Tag == "math" {
		if e.Attrs["display"] == "block" {
			return KindMathBlock
		}
		return KindMath
	}
	if k, ok := tagKinds[e.Tag]; ok {
		return k
	}
	return KindUnknown
}

// HeadingLevel returns 1..6 for a heading element.
func HeadingLevel(e *Element) int {
	if len(e.Tag) == 2 && e.Tag[0] == 'h' && e.Tag[1] >= '1' && e.Tag[1] <= '6' {
		return int(e.Tag[1] - '0')
	}
	if v, ok := e.Attrs["aria-level"]; ok && len(v) == 1 && v[0] >= '1' && v[0] <= '6' {
		return int(v[0] - '0')
	}
	return 2
}

// Ordered reports whether a list element is numbered.
func Ordered(e *Element) bool {
	if e.Tag == "ol" {
		return true
	}
	return e.Attrs["data-md-list"] == "ordered"
}
