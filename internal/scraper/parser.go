package scraper

import (
	"bytes"
	"fmt"
	"strings"

	htm "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// Parser converts whole pages with the html-to-markdown library. It backs
// the "library" engine for pages that are not chat transcripts.
type Parser struct{}

// ToMarkdown converts HTML content to Markdown format.
func (p *Parser) ToMarkdown(htmlString string) (string, error) {
	markdown, err := htm.ConvertString(htmlString)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(markdown), nil
}

// NodeToMarkdown renders n back to HTML and converts it.
func (p *Parser) NodeToMarkdown(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("failed to render node: %w", err)
	}
	return p.ToMarkdown(buf.String())
}
