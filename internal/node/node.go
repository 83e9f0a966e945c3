// Package node defines the content tree consumed by the Markdown serializer.
//
// A tree is made of *Text and *Element values. Element identity (the pointer)
// matters: skip sets and consumed sets are keyed by it, so two structurally
// equal elements are still distinct nodes.
package node

import (
	"strings"
)

// Node is either a *Text or an *Element.
type Node interface {
	node()
}

// Text holds raw character data.
type Text struct {
	Data string
}

// Element is a tagged node with attributes, classes and ordered children.
type Element struct {
	Tag      string
	Attrs    map[string]string
	Classes  []string
	Children []Node
}

func (*Text) node()    {}
func (*Element) node() {}

// SkipFunc reports whether an element's subtree is owned by another extractor
// and must contribute nothing to generic serialization.
type SkipFunc func(*Element) bool

// NoSkip never skips.
func NoSkip(*Element) bool { return false }

// NewText creates a text node.
func NewText(data string) *Text {
	return &Text{Data: data}
}

// NewElement creates an element. Classes are taken from the "class" attribute.
func NewElement(tag string, attrs map[string]string, children ...Node) *Element {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &Element{
		Tag:      strings.ToLower(tag),
		Attrs:    attrs,
		Classes:  strings.Fields(attrs["class"]),
		Children: children,
	}
}

// Attr returns the named attribute.
func (e *Element) Attr(key string) (string, bool) {
	v, ok := e.Attrs[key]
	return v, ok
}

// AttrOr returns the named attribute or def when it is absent.
func (e *Element) AttrOr(key, def string) string {
	if v, ok := e.Attrs[key]; ok {
		return v
	}
	return def
}

// HasClass reports whether the element carries the class.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// ClassWithPrefix returns the remainder of the first class starting with prefix.
func (e *Element) ClassWithPrefix(prefix string) (string, bool) {
	for _, c := range e.Classes {
		if strings.HasPrefix(c, prefix) && len(c) > len(prefix) {
			return c[len(prefix):], true
		}
	}
	return "", false
}

// ElementChildren returns the direct element children in document order.
func (e *Element) ElementChildren() []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// TextContent concatenates all descendant text. It walks iteratively so it is
// safe on trees deeper than the serializer's recursion guard.
func TextContent(n Node) string {
	var b strings.Builder
	stack := []Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch v := cur.(type) {
		case *Text:
			b.WriteString(v.Data)
		case *Element:
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

// Walk visits el and its descendants in document order. Returning false from
// fn prunes the subtree below the visited element.
func Walk(el *Element, fn func(*Element) bool) {
	stack := []*Element{el}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			if c, ok := cur.Children[i].(*Element); ok {
				stack = append(stack, c)
			}
		}
	}
}

// Find returns the first descendant of el (excluding el) matching pred.
func Find(el *Element, pred func(*Element) bool) *Element {
	var found *Element
	Walk(el, func(cur *Element) bool {
		if found != nil {
			return false
		}
		if cur != el && pred(cur) {
			found = cur
			return false
		}
		return true
	})
	return found
}

// FindAll returns every descendant of el (excluding el) matching pred, without
// descending into elements for which skip reports true.
func FindAll(el *Element, skip SkipFunc, pred func(*Element) bool) []*Element {
	var out []*Element
	Walk(el, func(cur *Element) bool {
		if cur == el {
			return true
		}
		if skip != nil && skip(cur) {
			return false
		}
		if pred(cur) {
			out = append(out, cur)
		}
		return true
	})
	return out
}

// IsBlank reports whether the subtree carries no visible text and no images.
func IsBlank(n Node) bool {
	switch v := n.(type) {
	case *Text:
		return strings.TrimSpace(strings.ReplaceAll(v.Data, "\u00a0", " ")) == ""
	case *Element:
		if v.Tag == "img" || v.Tag == "hr" {
			return false
		}
		for _, c := range v.Children {
			if !IsBlank(c) {
				return false
			}
		}
	}
	return true
}
