package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/tesh254/chatmd/internal/markdown"
	"github.com/tesh254/chatmd/internal/platform"
)

func document(t *testing.T, src string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return doc
}

func extractor(t *testing.T, opts ...Option) *Extractor {
	t.Helper()
	reg, err := platform.Builtin()
	if err != nil {
		t.Fatalf("Builtin() error: %v", err)
	}
	return NewExtractor(reg, markdown.New(), opts...)
}

const geminiPage = `<html><head><title>Primes - Gemini</title></head><body>
<user-query><div class="query-text">List two primes</div><button>edit</button></user-query>
<model-response><message-content>
  <p>Here you go:</p>
  <ul><li>2</li><li>3</li></ul>
  <code-block><div class="code-block-decoration"><span>Python</span></div><pre><code>print([2, 3])</code></pre></code-block>
  <sources-list>source chips</sources-list>
</message-content></model-response>
</body></html>`

func TestExtractPlatformConversation(t *testing.T) {
	conv, err := extractor(t).Extract(context.Background(), document(t, geminiPage), Options{Source: "saved.html"})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if conv.Platform != "gemini" || conv.Title != "Primes" || conv.Source != "saved.html" {
		t.Errorf("conversation header = %s/%q/%s", conv.Platform, conv.Title, conv.Source)
	}

	want := []Message{
		{
			Role:     "user",
			Items:    []markdown.Item{{Type: markdown.ItemText, Content: "List two primes"}},
			Markdown: "List two primes",
		},
		{
			Role: "assistant",
			Items: []markdown.Item{
				{Type: markdown.ItemText, Content: "Here you go:\n\n- 2\n- 3"},
				{Type: markdown.ItemCode, Language: "python", Content: "print([2, 3])"},
			},
			Markdown: "Here you go:\n\n- 2\n- 3\n\n```python\nprint([2, 3])\n```",
		},
	}
	if diff := cmp.Diff(want, conv.Messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractKeepsOrderAcrossWorkers(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 40; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		fmt.Fprintf(&b, `<div data-message-author-role="%s"><div class="markdown"><p>message %d</p></div></div>`, role, i)
	}
	b.WriteString("</body></html>")

	conv, err := extractor(t, WithWorkers(8)).Extract(context.Background(), document(t, b.String()), Options{})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(conv.Messages) != 40 {
		t.Fatalf("got %d messages, want 40", len(conv.Messages))
	}
	for i, m := range conv.Messages {
		if want := fmt.Sprintf("message %d", i); m.Markdown != want {
			t.Errorf("message %d = %q, want %q", i, m.Markdown, want)
		}
	}
}

func TestExtractGenericPage(t *testing.T) {
	src := `<html><head><title>Notes</title></head><body><nav>menu</nav><article><h2>Topic</h2><p>Body <em>text</em></p></article></body></html>`

	tests := []struct {
		engine string
		want   string
	}{
		{EngineBuiltin, "## Topic\n\nBody *text*"},
		{EngineLibrary, "## Topic\n\nBody *text*"},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			conv, err := extractor(t, WithEngine(tt.engine)).Extract(context.Background(), document(t, src), Options{Title: "Override"})
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if conv.Platform != platform.Generic || conv.Title != "Override" {
				t.Errorf("header = %s/%q", conv.Platform, conv.Title)
			}
			if len(conv.Messages) != 1 || conv.Messages[0].Role != RolePage {
				t.Fatalf("unexpected messages: %+v", conv.Messages)
			}
			if got := conv.Messages[0].Markdown; got != tt.want {
				t.Errorf("Markdown = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractErrors(t *testing.T) {
	ex := extractor(t)

	_, err := ex.Extract(context.Background(), document(t, `<div data-message-author-role="user"><button>x</button></div>`), Options{})
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("empty conversation error = %v, want ErrNoContent", err)
	}

	_, err = ex.Extract(context.Background(), document(t, `<p>x</p>`), Options{Platform: "bard"})
	if !errors.Is(err, platform.ErrUnknownPlatform) {
		t.Errorf("unknown platform error = %v, want ErrUnknownPlatform", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ex.Extract(ctx, document(t, `<div data-message-author-role="user">hi</div>`), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled extraction error = %v, want context.Canceled", err)
	}
}
