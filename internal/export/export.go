// Package export renders extracted conversations as documents.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tesh254/chatmd/internal/conversation"
	"github.com/tesh254/chatmd/internal/markdown"
)

const (
	FormatMarkdown = "md"
	FormatJSON     = "json"
)

// Options controls the Markdown layout.
type Options struct {
	// Labels maps a role to its section heading. Roles without a label use
	// the role name with its first letter upper-cased.
	Labels map[string]string
	// Numbering prefixes each section heading with its position.
	Numbering bool
	// Title emits the conversation title as a top level heading.
	Title bool
}

// DefaultOptions returns the question and answer layout.
func DefaultOptions() Options {
	return Options{
		Labels: map[string]string{
			"user":      "Question",
			"assistant": "Answer",
		},
		Numbering: true,
		Title:     true,
	}
}

// Label returns the section heading for role.
func (o Options) Label(role string) string {
	if l, ok := o.Labels[role]; ok && l != "" {
		return l
	}
	if role == "" {
		return "Message"
	}
	return strings.ToUpper(role[:1]) + role[1:]
}

// Markdown renders c as a single document.
func Markdown(c *conversation.Conversation, opts Options) string {
	var sections []string
	if opts.Title && strings.TrimSpace(c.Title) != "" {
		sections = append(sections, "# "+strings.TrimSpace(c.Title))
	}

	single := len(c.Messages) == 1 && c.Messages[0].Role == conversation.RolePage
	for i, m := range c.Messages {
		var parts []string
		if !single {
			heading := "## " + opts.Label(m.Role)
			if opts.Numbering {
				heading = fmt.Sprintf("## %d. %s", i+1, opts.Label(m.Role))
			}
			parts = append(parts, heading)
		}
		if len(m.Images) > 0 {
			lines := make([]string, len(m.Images))
			for j, img := range m.Images {
				lines[j] = markdown.Item{Type: markdown.ItemImage, Src: img.Src, Alt: img.Alt}.Markdown()
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
		if body := markdown.Render(m.Items); body != "" {
			parts = append(parts, body)
		}
		sections = append(sections, strings.Join(parts, "\n\n"))
	}

	return strings.Join(sections, "\n\n") + "\n"
}

// JSON renders c with its structured items.
func JSON(c *conversation.Conversation) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversation: %w", err)
	}
	return append(data, '\n'), nil
}

// Render dispatches on format.
func Render(c *conversation.Conversation, format string, opts Options) ([]byte, error) {
	switch format {
	case "", FormatMarkdown:
		return []byte(Markdown(c, opts)), nil
	case FormatJSON:
		return JSON(c)
	default:
		return nil, fmt.Errorf("unsupported format '%s': must be one of: md, json", format)
	}
}
