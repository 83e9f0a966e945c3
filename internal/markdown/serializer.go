// Package markdown serializes content trees into Markdown.
//
// The Serializer walks a node.Element tree, classifies every element with
// node.Classify and dispatches it to a dedicated serializer: lists,
// blockquotes, tables, code blocks, math, images and the inline formatter.
// Block outputs are joined by the spacing engine so that sibling blocks are
// separated by exactly one blank line and inline runs are joined with sane
// whitespace.
//
// Serialization never fails. Structural gaps fall back to simpler output,
// unknown elements pass their children through and pathological nesting is
// flattened once the depth limit is reached; each case is logged.
package markdown

import (
	"github.com/tesh254/chatmd/internal/logger"
	"github.com/tesh254/chatmd/internal/node"
)

// DefaultMaxDepth bounds element recursion.
const DefaultMaxDepth = 200

// ListType is the kind of list being serialized.
type ListType int

const (
	ListNone ListType = iota
	ListUnordered
	ListOrdered
)

// Context is threaded by value through the recursion and refined when
// descending into lists and blockquotes.
type Context struct {
	ListLevel        int
	ListType         ListType
	BlockquoteDepth  int
	WithinBlockquote bool

	depth    int
	indent   int
	preserve bool
}

// Result is the output of a block-level serialization together with the
// identities of the elements whose content it emitted.
type Result struct {
	Markdown string
	Consumed node.Set
}

// Serializer converts content trees to Markdown. It holds no per-call state
// and is safe for concurrent use.
type Serializer struct {
	log      *logger.Logger
	maxDepth int
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithLogger sets the diagnostics logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Serializer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxDepth sets the nesting limit. Values below 1 keep the default.
func WithMaxDepth(n int) Option {
	return func(s *Serializer) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// New creates a Serializer.
func New(opts ...Option) *Serializer {
	s := &Serializer{
		log:      logger.Discard(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Serializer) walker(skip node.SkipFunc) *walker {
	if skip == nil {
		skip = node.NoSkip
	}
	return &walker{s: s, skip: skip}
}

// Markdown serializes the children of body into a single Markdown string.
func (s *Serializer) Markdown(body *node.Element, skip node.SkipFunc) string {
	if body == nil {
		return ""
	}
	w := s.walker(skip)
	if w.skip(body) {
		return ""
	}
	text, _ := w.joinNodes(body.Children, Context{})
	return text
}

// Serialize serializes a single node with the given context.
func (s *Serializer) Serialize(n node.Node, ctx Context, skip node.SkipFunc) Result {
	w := s.walker(skip)
	f := w.serialize(n, ctx)
	text := trimBlock(f.text)
	res := Result{Markdown: text, Consumed: node.Set{}}
	if el, ok := n.(*node.Element); ok && text != "" {
		res.Consumed = node.Subtree(el, w.skip)
	}
	return res
}
