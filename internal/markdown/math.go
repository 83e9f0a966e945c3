package markdown

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/tesh254/chatmd/internal/node"
)

var mathSourceAttrs = []string{"data-math", "data-latex", "data-tex", "alttext"}

// mathSource returns the LaTeX source of a rendered math element. When the
// renderer left no source behind, the rendered text is reconstructed on a
// best-effort basis.
func (w *walker) mathSource(el *node.Element) string {
	ann := node.Find(el, func(e *node.Element) bool {
		return e.Tag == "annotation" && strings.Contains(strings.ToLower(e.AttrOr("encoding", "")), "tex")
	})
	if ann != nil {
		if src := strings.TrimSpace(node.TextContent(ann)); src != "" {
			return src
		}
	}

	var src string
	node.Walk(el, func(e *node.Element) bool {
		if src != "" {
			return false
		}
		for _, attr := range mathSourceAttrs {
			if v := strings.TrimSpace(e.AttrOr(attr, "")); v != "" {
				src = v
				return false
			}
		}
		return true
	})
	if src != "" {
		return src
	}
	if v := strings.TrimSpace(el.AttrOr("alt", "")); v != "" {
		return v
	}

	rendered := el
	if h := node.Find(el, func(e *node.Element) bool { return e.HasClass("katex-html") }); h != nil {
		rendered = h
	}
	text := normalizeText(node.TextContent(rendered))
	text = strings.TrimSpace(text)
	latex := reconstructLatex(text)
	w.s.log.MathSourceMissing(text, latex)
	return latex
}

func (w *walker) mathFragment(el *node.Element) fragment {
	src := w.mathSource(el)
	if src == "" {
		return fragment{}
	}
	return fragment{text: "$" + src + "$", marked: true}
}

func (w *walker) mathBlockFragment(el *node.Element, _ Context) fragment {
	src := w.mathSource(el)
	if src == "" {
		return fragment{}
	}
	return fragment{text: "$$\n" + src + "\n$$", block: true}
}

var superscripts = map[rune]rune{
	'⁰': '0', '¹': '1', '²': '2', '³': '3', '⁴': '4',
	'⁵': '5', '⁶': '6', '⁷': '7', '⁸': '8', '⁹': '9',
	'⁺': '+', '⁻': '-', '⁼': '=', '⁽': '(', '⁾': ')',
	'ⁿ': 'n', 'ⁱ': 'i',
}

var subscripts = map[rune]rune{
	'₀': '0', '₁': '1', '₂': '2', '₃': '3', '₄': '4',
	'₅': '5', '₆': '6', '₇': '7', '₈': '8', '₉': '9',
	'₊': '+', '₋': '-', '₌': '=', '₍': '(', '₎': ')',
	'ₐ': 'a', 'ₑ': 'e', 'ₒ': 'o', 'ₓ': 'x', 'ᵢ': 'i', 'ⱼ': 'j', 'ₙ': 'n',
}

var mathSymbols = map[rune]string{
	'α': `\alpha`, 'β': `\beta`, 'γ': `\gamma`, 'δ': `\delta`, 'ε': `\epsilon`,
	'ζ': `\zeta`, 'η': `\eta`, 'θ': `\theta`, 'ι': `\iota`, 'κ': `\kappa`,
	'λ': `\lambda`, 'μ': `\mu`, 'ν': `\nu`, 'ξ': `\xi`, 'π': `\pi`,
	'ρ': `\rho`, 'σ': `\sigma`, 'τ': `\tau`, 'υ': `\upsilon`, 'φ': `\phi`,
	'χ': `\chi`, 'ψ': `\psi`, 'ω': `\omega`,
	'Γ': `\Gamma`, 'Δ': `\Delta`, 'Θ': `\Theta`, 'Λ': `\Lambda`, 'Ξ': `\Xi`,
	'Π': `\Pi`, 'Σ': `\Sigma`, 'Φ': `\Phi`, 'Ψ': `\Psi`, 'Ω': `\Omega`,
	'±': `\pm`, '∓': `\mp`, '×': `\times`, '÷': `\div`, '·': `\cdot`,
	'≠': `\neq`, '≤': `\leq`, '≥': `\geq`, '≈': `\approx`, '≡': `\equiv`,
	'∞': `\infty`, '∑': `\sum`, '∏': `\prod`, '∫': `\int`, '∂': `\partial`,
	'∇': `\nabla`, '→': `\to`, '←': `\leftarrow`, '⇒': `\Rightarrow`,
	'∈': `\in`, '∉': `\notin`, '⊂': `\subset`, '∪': `\cup`, '∩': `\cap`,
	'∀': `\forall`, '∃': `\exists`, '…': `\ldots`,
}

var fractionRE = regexp.MustCompile(`([A-Za-z0-9]+|\{[^{}]*\})\s*/\s*([A-Za-z0-9]+|\{[^{}]*\})`)

// reconstructLatex approximates LaTeX from the visible output of a math
// renderer: scripts, roots, simple fractions and symbol names.
func reconstructLatex(s string) string {
	s = reconstructRoots(s)
	s = reconstructScripts(s)
	s = fractionRE.ReplaceAllStringFunc(s, func(m string) string {
		parts := fractionRE.FindStringSubmatch(m)
		return `\frac{` + unbrace(parts[1]) + `}{` + unbrace(parts[2]) + `}`
	})
	return reconstructSymbols(s)
}

func unbrace(s string) string {
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s[1 : len(s)-1]
	}
	return s
}

func reconstructRoots(s string) string {
	rs := []rune(s)
	var b strings.Builder
	for i := 0; i < len(rs); i++ {
		if rs[i] != '√' {
			b.WriteRune(rs[i])
			continue
		}
		j := i + 1
		if j < len(rs) && rs[j] == '(' {
			depth, k := 0, j
			for ; k < len(rs); k++ {
				if rs[k] == '(' {
					depth++
				} else if rs[k] == ')' {
					depth--
					if depth == 0 {
						break
					}
				}
			}
			if k < len(rs) {
				b.WriteString(`\sqrt{` + string(rs[j+1:k]) + `}`)
				i = k
				continue
			}
		}
		k := j
		for k < len(rs) && (unicode.IsLetter(rs[k]) || unicode.IsDigit(rs[k])) {
			k++
		}
		if k == j {
			b.WriteString(`\sqrt{}`)
			continue
		}
		b.WriteString(`\sqrt{` + string(rs[j:k]) + `}`)
		i = k - 1
	}
	return b.String()
}

func reconstructScripts(s string) string {
	var b strings.Builder
	rs := []rune(s)
	for i := 0; i < len(rs); {
		table, marker := superscripts, "^"
		if _, ok := superscripts[rs[i]]; !ok {
			if _, ok := subscripts[rs[i]]; !ok {
				b.WriteRune(rs[i])
				i++
				continue
			}
			table, marker = subscripts, "_"
		}
		b.WriteString(marker + "{")
		for i < len(rs) {
			r, ok := table[rs[i]]
			if !ok {
				break
			}
			b.WriteRune(r)
			i++
		}
		b.WriteString("}")
	}
	return b.String()
}

func reconstructSymbols(s string) string {
	var b strings.Builder
	rs := []rune(s)
	for i, r := range rs {
		cmd, ok := mathSymbols[r]
		if !ok {
			b.WriteRune(r)
			continue
		}
		b.WriteString(cmd)
		if i+1 < len(rs) && unicode.IsLetter(rs[i+1]) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
