// Package conversation turns a loaded chat page into an ordered list of
// serialized messages.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/tesh254/chatmd/internal/logger"
	"github.com/tesh254/chatmd/internal/markdown"
	"github.com/tesh254/chatmd/internal/node"
	"github.com/tesh254/chatmd/internal/platform"
	"github.com/tesh254/chatmd/internal/scraper"
)

// ErrNoContent is returned when no message in the page produced any output.
var ErrNoContent = errors.New("no conversation content found")

// RolePage is the role of the single message produced for generic pages.
const RolePage = "page"

const (
	EngineBuiltin = "builtin"
	EngineLibrary = "library"
)

// Message is one serialized conversation turn.
type Message struct {
	Role     string           `json:"role"`
	Items    []markdown.Item  `json:"items"`
	Images   []platform.Image `json:"images,omitempty"`
	Markdown string           `json:"markdown"`
}

// Conversation is the extraction result for one page.
type Conversation struct {
	Platform string    `json:"platform"`
	Title    string    `json:"title"`
	Source   string    `json:"source"`
	Messages []Message `json:"messages"`
}

// Options selects how a page is read.
type Options struct {
	// Source is the page location, used for host based detection.
	Source string
	// Platform forces an adapter by name.
	Platform string
	// Title overrides the page title.
	Title string
}

// Extractor runs platform selection and message serialization.
type Extractor struct {
	registry   *platform.Registry
	serializer *markdown.Serializer
	parser     scraper.Parser
	log        *logger.Logger
	workers    int
	engine     string
}

// Option configures an Extractor.
type Option func(*Extractor)

func WithLogger(l *logger.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithWorkers bounds how many messages are serialized at once.
func WithWorkers(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithEngine picks the converter for generic pages: "builtin" uses the
// chat serializer, "library" uses html-to-markdown.
func WithEngine(engine string) Option {
	return func(e *Extractor) {
		if engine != "" {
			e.engine = engine
		}
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(registry *platform.Registry, serializer *markdown.Serializer, opts ...Option) *Extractor {
	e := &Extractor{
		registry:   registry,
		serializer: serializer,
		log:        logger.Discard(),
		workers:    4,
		engine:     EngineBuiltin,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the conversation out of doc. The document is annotated in
// place with the platform's kind rules.
func (e *Extractor) Extract(ctx context.Context, doc *goquery.Document, opts Options) (*Conversation, error) {
	p, reason, err := e.registry.Detect(doc, opts.Source, opts.Platform)
	if err != nil {
		return nil, err
	}
	e.log.PlatformDetected(p.Name, opts.Source, reason)

	conv := &Conversation{
		Platform: p.Name,
		Title:    opts.Title,
		Source:   opts.Source,
	}
	if conv.Title == "" {
		conv.Title = p.PageTitle(doc)
	}

	var messages []Message
	if len(p.Messages) == 0 {
		messages, err = e.page(doc, p)
	} else {
		messages, err = e.messages(ctx, p.Select(doc))
	}
	if err != nil {
		return nil, err
	}

	for _, m := range messages {
		if len(m.Items) > 0 || len(m.Images) > 0 {
			conv.Messages = append(conv.Messages, m)
		}
	}
	if len(conv.Messages) == 0 {
		return nil, ErrNoContent
	}
	return conv, nil
}

// messages serializes every selected message, keeping document order.
func (e *Extractor) messages(ctx context.Context, selected []platform.Message) ([]Message, error) {
	out := make([]Message, len(selected))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, m := range selected {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			items := e.serializer.Items(m.Body, m.Skip.Func())
			out[i] = Message{
				Role:     m.Role,
				Items:    items,
				Images:   m.Images,
				Markdown: markdown.Render(items),
			}
			e.log.MessageExtracted(i, m.Role, len(items))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("message extraction cancelled: %w", err)
	}
	return out, nil
}

// page converts the main content of a page without message structure.
func (e *Extractor) page(doc *goquery.Document, p *platform.Platform) ([]Message, error) {
	if len(doc.Nodes) == 0 {
		return nil, ErrNoContent
	}
	p.Annotate(doc)
	main := scraper.MainContent(doc.Nodes[0])
	if main == nil {
		return nil, ErrNoContent
	}

	var items []markdown.Item
	if e.engine == EngineLibrary {
		md, err := e.parser.NodeToMarkdown(main)
		if err != nil {
			return nil, fmt.Errorf("library conversion failed: %w", err)
		}
		if strings.TrimSpace(md) != "" {
			items = []markdown.Item{{Type: markdown.ItemText, Content: md}}
		}
	} else {
		b := node.NewBuilder()
		body, ok := b.Build(main).(*node.Element)
		if !ok {
			return nil, ErrNoContent
		}
		skip := node.NewSet()
		for _, sel := range p.Skip {
			doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
				if el, ok := b.Element(s.Nodes[0]); ok {
					skip.Add(el)
				}
			})
		}
		items = e.serializer.Items(body, skip.Func())
	}

	e.log.MessageExtracted(0, RolePage, len(items))
	return []Message{{
		Role:     RolePage,
		Items:    items,
		Markdown: markdown.Render(items),
	}}, nil
}
