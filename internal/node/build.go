package node

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Builder converts x/net/html trees into content trees and remembers which
// element came from which html node, so selections made on the html tree can
// be mapped onto content-tree identities.
type Builder struct {
	index map[*html.Node]*Element
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[*html.Node]*Element)}
}

// Build converts n. Document and element nodes become elements, text nodes
// become text; comments and doctypes yield nil.
func (b *Builder) Build(n *html.Node) Node {
	switch n.Type {
	case html.TextNode:
		return &Text{Data: n.Data}
	case html.DocumentNode:
		el := &Element{Tag: "#document", Attrs: map[string]string{}}
		b.index[n] = el
		el.Children = b.children(n)
		return el
	case html.ElementNode:
		attrs := make(map[string]string, len(n.Attr))
		for _, a := range n.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			attrs[key] = a.Val
		}
		el := &Element{
			Tag:     strings.ToLower(n.Data),
			Attrs:   attrs,
			Classes: strings.Fields(attrs["class"]),
		}
		b.index[n] = el
		el.Children = b.children(n)
		return el
	}
	return nil
}

func (b *Builder) children(n *html.Node) []Node {
	var out []Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if cn := b.Build(c); cn != nil {
			out = append(out, cn)
		}
	}
	return out
}

// Element returns the element built from n.
func (b *Builder) Element(n *html.Node) (*Element, bool) {
	el, ok := b.index[n]
	return el, ok
}

// FromHTML converts an html element or document node into an element.
func FromHTML(n *html.Node) *Element {
	el, _ := NewBuilder().Build(n).(*Element)
	return el
}

// Parse reads an HTML document or fragment and returns its body element.
func Parse(r io.Reader) (*Element, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	body := FindBody(doc)
	if body == nil {
		return nil, fmt.Errorf("document has no body")
	}
	return FromHTML(body), nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Element, error) {
	return Parse(strings.NewReader(s))
}

// FindBody returns the <body> element of a parsed document.
func FindBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := FindBody(c); body != nil {
			return body
		}
	}
	return nil
}
