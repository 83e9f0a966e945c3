package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "nested", "exports.db"))
	if err != nil {
		t.Fatalf("NewStorage() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndGet(t *testing.T) {
	s := newStorage(t)

	stored, err := s.UpsertExport(&Export{
		Source:   "https://chatgpt.com/share/1",
		Platform: "chatgpt",
		Title:    "Sorting",
		Markdown: "# Sorting\n",
		Messages: 2,
	})
	if err != nil {
		t.Fatalf("UpsertExport() error: %v", err)
	}
	if stored.ID == "" || stored.Checksum != Checksum("# Sorting\n") {
		t.Fatalf("unexpected stored export: %+v", stored)
	}

	got, err := s.GetExport(stored.ID)
	if err != nil {
		t.Fatalf("GetExport() error: %v", err)
	}
	if got.Title != "Sorting" || got.Messages != 2 || got.Platform != "chatgpt" {
		t.Errorf("GetExport() = %+v", got)
	}

	if _, err := s.GetExport("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetExport(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpsertDeduplicatesByChecksum(t *testing.T) {
	s := newStorage(t)

	first, err := s.UpsertExport(&Export{Source: "a.html", Platform: "claude", Title: "Old", Markdown: "same"})
	if err != nil {
		t.Fatalf("UpsertExport() error: %v", err)
	}
	second, err := s.UpsertExport(&Export{Source: "b.html", Platform: "claude", Title: "New", Markdown: "same"})
	if err != nil {
		t.Fatalf("UpsertExport() error: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("duplicate document got a new id: %s != %s", second.ID, first.ID)
	}
	if second.Title != "New" || second.Source != "b.html" {
		t.Errorf("metadata not refreshed: %+v", second)
	}

	_, total, err := s.ListExports(0, 0)
	if err != nil {
		t.Fatalf("ListExports() error: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func TestListAndSearch(t *testing.T) {
	s := newStorage(t)
	base := time.Unix(1700000000, 0)

	docs := []*Export{
		{Source: "one.html", Title: "Go generics", Markdown: "type parameters", CreatedAt: base},
		{Source: "two.html", Title: "Rust", Markdown: "borrow checker and GO channels", CreatedAt: base.Add(time.Hour)},
		{Source: "three.html", Title: "Cooking", Markdown: "100% butter", CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, d := range docs {
		d.Platform = "generic"
		if _, err := s.UpsertExport(d); err != nil {
			t.Fatalf("UpsertExport() error: %v", err)
		}
	}

	page, total, err := s.ListExports(2, 0)
	if err != nil {
		t.Fatalf("ListExports() error: %v", err)
	}
	if total != 3 || len(page) != 2 || page[0].Title != "Cooking" {
		t.Errorf("ListExports(2, 0) = %d items, total %d", len(page), total)
	}

	rest, _, err := s.ListExports(2, 2)
	if err != nil {
		t.Fatalf("ListExports() error: %v", err)
	}
	if len(rest) != 1 || rest[0].Title != "Go generics" {
		t.Errorf("second page = %+v", rest)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"go", 2},
		{"BORROW", 1},
		{"100%", 1},
		{"%", 1},
		{"nothing", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			found, err := s.SearchExports(tt.query, 10)
			if err != nil {
				t.Fatalf("SearchExports() error: %v", err)
			}
			if len(found) != tt.want {
				t.Errorf("SearchExports(%q) = %d results, want %d", tt.query, len(found), tt.want)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	s := newStorage(t)

	a, _ := s.UpsertExport(&Export{Source: "https://claude.ai/chat/1", Platform: "claude", Markdown: "a"})
	s.UpsertExport(&Export{Source: "https://claude.ai/chat/2", Platform: "claude", Markdown: "b"})
	s.UpsertExport(&Export{Source: "https://gemini.google.com/app/3", Platform: "gemini", Markdown: "c"})

	if err := s.DeleteExport(a.ID); err != nil {
		t.Fatalf("DeleteExport() error: %v", err)
	}
	if err := s.DeleteExport(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteExport() error = %v, want ErrNotFound", err)
	}

	n, err := s.DeleteExportsBySource("https://claude.ai/")
	if err != nil {
		t.Fatalf("DeleteExportsBySource() error: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d exports, want 1", n)
	}

	if err := s.Clean(); err != nil {
		t.Fatalf("Clean() error: %v", err)
	}
	if _, total, _ := s.ListExports(0, 0); total != 0 {
		t.Errorf("total after Clean() = %d", total)
	}
}
