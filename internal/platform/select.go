package platform

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/tesh254/chatmd/internal/node"
)

// Image is an attachment picked up by the platform's images selector.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// Message is one conversation turn ready for serialization.
type Message struct {
	Role   string
	Body   *node.Element
	Skip   node.Set
	Images []Image
}

var roleAliases = map[string]string{
	"human":     "user",
	"you":       "user",
	"model":     "assistant",
	"bot":       "assistant",
	"ai":        "assistant",
	"chatgpt":   "assistant",
	"assistant": "assistant",
	"user":      "user",
}

// NormalizeRole maps site specific role names onto user and assistant.
func NormalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if r, ok := roleAliases[role]; ok {
		return r
	}
	return role
}

// Annotate writes the platform's kind annotations into the document so the
// classifier sees them.
func (p *Platform) Annotate(doc *goquery.Document) {
	for _, k := range p.Kinds {
		doc.Find(k.Selector).SetAttr(node.KindAttr, k.Kind)
	}
}

// PageTitle returns the conversation title with site suffixes removed.
func (p *Platform) PageTitle(doc *goquery.Document) string {
	sel := p.Title
	if sel == "" {
		sel = "title"
	}
	title := strings.TrimSpace(doc.Find(sel).First().Text())
	for _, trim := range p.TitleTrim {
		title = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(title, trim), trim))
	}
	return title
}

// Select annotates doc and returns its messages in document order. Matches
// nested inside another match are ignored.
func (p *Platform) Select(doc *goquery.Document) []Message {
	if len(p.Messages) == 0 {
		return nil
	}
	p.Annotate(doc)

	union := make([]string, len(p.Messages))
	for i, m := range p.Messages {
		union[i] = m.Selector
	}
	all := strings.Join(union, ", ")

	var messages []Message
	doc.Find(all).Each(func(i int, s *goquery.Selection) {
		if s.ParentsFiltered(all).Length() > 0 {
			return
		}
		rule, ok := p.ruleFor(s)
		if !ok {
			return
		}
		if msg, ok := p.message(s, rule); ok {
			messages = append(messages, msg)
		}
	})
	return messages
}

func (p *Platform) ruleFor(s *goquery.Selection) (MessageRule, bool) {
	for _, m := range p.Messages {
		if s.Is(m.Selector) {
			return m, true
		}
	}
	return MessageRule{}, false
}

func (p *Platform) message(s *goquery.Selection, rule MessageRule) (Message, bool) {
	role := rule.Role
	if rule.RoleAttr != "" {
		role = s.AttrOr(rule.RoleAttr, role)
	}

	body := s
	if rule.Body != "" {
		if found := s.Find(rule.Body).First(); found.Length() > 0 {
			body = found
		}
	}

	b := node.NewBuilder()
	root, ok := b.Build(body.Nodes[0]).(*node.Element)
	if !ok {
		return Message{}, false
	}

	skip := node.NewSet()
	for _, sel := range p.Skip {
		body.Find(sel).Each(func(_ int, m *goquery.Selection) {
			markSkipped(b, skip, m.Nodes[0])
		})
	}

	var images []Image
	if p.Images != "" {
		s.Find(p.Images).Each(func(_ int, img *goquery.Selection) {
			src := img.AttrOr("src", img.AttrOr("data-src", ""))
			if src == "" {
				return
			}
			images = append(images, Image{Src: src, Alt: img.AttrOr("alt", "")})
			markSkipped(b, skip, img.Nodes[0])
		})
	}

	return Message{
		Role:   NormalizeRole(role),
		Body:   root,
		Skip:   skip,
		Images: images,
	}, true
}

// markSkipped adds n to skip when it lies inside the built body.
func markSkipped(b *node.Builder, skip node.Set, n *html.Node) {
	if el, ok := b.Element(n); ok {
		skip.Add(el)
	}
}
