package api

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tesh254/chatmd/internal/conversation"
	"github.com/tesh254/chatmd/internal/markdown"
	"github.com/tesh254/chatmd/internal/platform"
	"github.com/tesh254/chatmd/internal/storage"
)

const claudePage = `<html><head><title>Regex help - Claude</title></head><body>
<div data-testid="user-message"><p>Match digits?</p></div>
<div class="font-claude-message"><p>Use <code>\d+</code>.</p></div>
</body></html>`

func newAPI(t *testing.T, withStorage bool) *API {
	t.Helper()
	reg, err := platform.Builtin()
	if err != nil {
		t.Fatalf("Builtin() error: %v", err)
	}
	var st *storage.Storage
	if withStorage {
		st, err = storage.NewStorage(filepath.Join(t.TempDir(), "exports.db"))
		if err != nil {
			t.Fatalf("NewStorage() error: %v", err)
		}
		t.Cleanup(func() { st.Close() })
	}
	return NewAPI(st, conversation.NewExtractor(reg, markdown.New()))
}

func TestConvertHTMLUsesCache(t *testing.T) {
	a := newAPI(t, false)

	first, err := a.ConvertHTML(context.Background(), claudePage, conversation.Options{Source: "one.html"})
	if err != nil {
		t.Fatalf("ConvertHTML() error: %v", err)
	}
	if first.Platform != "claude" || first.Title != "Regex help" || len(first.Messages) != 2 {
		t.Fatalf("unexpected conversation: %+v", first)
	}

	second, err := a.ConvertHTML(context.Background(), claudePage, conversation.Options{Source: "two.html"})
	if err != nil {
		t.Fatalf("ConvertHTML() error: %v", err)
	}
	if a.cache.ItemCount() != 1 {
		t.Errorf("cache holds %d entries, want 1", a.cache.ItemCount())
	}
	if second.Source != "two.html" || second.Messages[1].Markdown != first.Messages[1].Markdown {
		t.Errorf("cached conversation = %+v", second)
	}
	if second == first {
		t.Error("cache returned a shared pointer")
	}
}

func TestConvertSourceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.html")
	if err := os.WriteFile(path, []byte(claudePage), 0644); err != nil {
		t.Fatal(err)
	}

	conv, s, err := newAPI(t, false).ConvertSource(context.Background(), path, conversation.Options{})
	if err != nil {
		t.Fatalf("ConvertSource() error: %v", err)
	}
	if conv.Source != path || s.Metadata.Title != "Regex help - Claude" {
		t.Errorf("source = %s, page title = %q", conv.Source, s.Metadata.Title)
	}

	out, err := newAPI(t, false).Render(conv, "md")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want := "# Regex help\n\n## 1. Question\n\nMatch digits?\n\n## 2. Answer\n\nUse `\\d+`.\n"
	if string(out) != want {
		t.Errorf("Render() =\n%q\nwant\n%q", out, want)
	}
}

func TestArchiveLifecycle(t *testing.T) {
	a := newAPI(t, true)
	ctx := context.Background()

	conv, err := a.ConvertHTML(ctx, claudePage, conversation.Options{Source: "https://claude.ai/chat/1"})
	if err != nil {
		t.Fatalf("ConvertHTML() error: %v", err)
	}
	stored, err := a.Archive(conv)
	if err != nil {
		t.Fatalf("Archive() error: %v", err)
	}
	if stored.Messages != 2 || !strings.Contains(stored.Markdown, "## 2. Answer") {
		t.Errorf("stored export = %+v", stored)
	}

	found, err := a.SearchExports("digits", 10)
	if err != nil || len(found) != 1 {
		t.Fatalf("SearchExports() = %d, %v", len(found), err)
	}

	n, err := a.DeleteExport("https://claude.ai/")
	if err != nil || n != 1 {
		t.Errorf("DeleteExport(prefix) = %d, %v", n, err)
	}
	if _, err := a.DeleteExport("https://claude.ai/"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteExport() on empty archive error = %v, want ErrNotFound", err)
	}
}

func TestArchiveRequiresStorage(t *testing.T) {
	a := newAPI(t, false)
	if _, err := a.Archive(&conversation.Conversation{}); !errors.Is(err, ErrNoArchive) {
		t.Errorf("Archive() error = %v, want ErrNoArchive", err)
	}
	if _, _, err := a.ListExports(10, 0); !errors.Is(err, ErrNoArchive) {
		t.Errorf("ListExports() error = %v, want ErrNoArchive", err)
	}
}
