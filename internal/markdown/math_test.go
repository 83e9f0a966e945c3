package markdown

import (
	"strings"
	"testing"
)

const katexInline = `<span class="katex">` +
	`<span class="katex-mathml"><math><semantics><mrow><mi>x</mi></mrow>` +
	`<annotation encoding="application/x-tex">x^2</annotation></semantics></math></span>` +
	`<span class="katex-html" aria-hidden="true">x2</span></span>`

func TestMathWithSource(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"katex inline", `<p>Area is ` + katexInline + `.</p>`, "Area is $x^2$."},
		{"katex display", `<div class="katex-display">` + katexInline + `</div>`, "$$\nx^2\n$$"},
		{"data attribute", `<p><span class="math-inline" data-math="\alpha+1">α+1</span></p>`, `$\alpha+1$`},
		{"image alt", `<p><img class="math-inline" alt="E=mc^2" src="eq.png"></p>`, "$E=mc^2$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, tt.html); got != tt.want {
				t.Errorf("Markdown() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMathReconstruction(t *testing.T) {
	got := render(t, `<p><span class="katex"><span class="katex-html">x² + 1/2</span></span></p>`)
	if want := `$x^{2} + \frac{1}{2}$`; got != want {
		t.Errorf("Markdown() = %q, want %q", got, want)
	}
}

func TestReconstructLatex(t *testing.T) {
	tests := []struct {
		in       string
		contains []string
	}{
		{"x² + y² = r²", []string{"x^{2}", "y^{2}", "r^{2}"}},
		{"aₙ₊₁", []string{"a_{n+1}"}},
		{"√(x+1)", []string{`\sqrt{x+1}`}},
		{"√2", []string{`\sqrt{2}`}},
		{"α ± β", []string{`\alpha`, `\pm`, `\beta`}},
		{"a≠b", []string{`\neq b`}},
		{"n → ∞", []string{`\to`, `\infty`}},
		{"3/4", []string{`\frac{3}{4}`}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := reconstructLatex(tt.in)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("reconstructLatex(%q) = %q, missing %q", tt.in, got, want)
				}
			}
		})
	}
}
