package scraper

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

const page = `<html><head><title> Shared chat </title><meta name="description" content="A saved conversation"></head>
<body><nav>menu</nav><main><h1>Hello</h1><p>World</p></main></body></html>`

func TestGetContentFromURL(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	s := New(srv.URL+"/share/1", nil)
	if err := s.GetContent(context.Background()); err != nil {
		t.Fatalf("GetContent() error: %v", err)
	}
	if gotAgent != DefaultConfig().UserAgent {
		t.Errorf("User-Agent = %q", gotAgent)
	}
	if err := s.GetMetadata(); err != nil {
		t.Fatalf("GetMetadata() error: %v", err)
	}
	if s.Metadata.Title != "Shared chat" {
		t.Errorf("Title = %q", s.Metadata.Title)
	}
	if s.Metadata.Description != "A saved conversation" {
		t.Errorf("Description = %q", s.Metadata.Description)
	}
}

func TestGetContentRejectsBadResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		wantErr     string
	}{
		{"not found", http.StatusNotFound, "text/html", "unexpected status code: 404"},
		{"json", http.StatusOK, "application/json", "not HTML content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := New(srv.URL, nil).GetContent(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("GetContent() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetContentFromFileAndStdin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.html")
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	s := New(path, nil)
	if err := s.GetContent(context.Background()); err != nil {
		t.Fatalf("GetContent(file) error: %v", err)
	}
	if !bytes.Equal(s.Raw, []byte(page)) {
		t.Error("Raw does not hold the file bytes")
	}

	in := New("-", nil)
	in.stdin = strings.NewReader(page)
	if err := in.GetContent(context.Background()); err != nil {
		t.Fatalf("GetContent(stdin) error: %v", err)
	}
	if in.Content == nil {
		t.Error("stdin content not parsed")
	}

	if err := New(filepath.Join(t.TempDir(), "missing.html"), nil).GetContent(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMaxBytes(t *testing.T) {
	s := New("-", &Config{MaxBytes: 10})
	s.stdin = strings.NewReader(page)
	if err := s.GetContent(context.Background()); err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("GetContent() error = %v, want size error", err)
	}
}

func TestGetMetadataRequiresContent(t *testing.T) {
	if err := New("x.html", nil).GetMetadata(); err == nil {
		t.Error("expected error before GetContent")
	}
}

func TestMainContent(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"main element", `<body><div>x</div><main>m</main></body>`, "main"},
		{"article element", `<body><article>a</article></body>`, "article"},
		{"content id", `<body><div id="content">c</div></body>`, "div"},
		{"body fallback", `<body><div>x</div></body>`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := html.Parse(strings.NewReader(tt.html))
			if err != nil {
				t.Fatal(err)
			}
			if got := MainContent(doc); got == nil || got.Data != tt.want {
				t.Errorf("MainContent() = %v, want <%s>", got, tt.want)
			}
		})
	}
}

func TestParserToMarkdown(t *testing.T) {
	s, err := FromBytes("page.html", []byte(page))
	if err != nil {
		t.Fatalf("FromBytes() error: %v", err)
	}

	var p Parser
	md, err := p.NodeToMarkdown(MainContent(s.Content))
	if err != nil {
		t.Fatalf("NodeToMarkdown() error: %v", err)
	}
	if !strings.Contains(md, "# Hello") || !strings.Contains(md, "World") {
		t.Errorf("unexpected markdown: %q", md)
	}
	if strings.Contains(md, "menu") {
		t.Errorf("navigation leaked into markdown: %q", md)
	}
}

func TestDisplayMessages(t *testing.T) {
	var buf bytes.Buffer
	s := New("chat.html", &Config{Verbose: true})
	s.out = &buf

	s.DisplayMessages("claude", []MessageSummary{{Role: "user", Items: 1, Chars: 12}, {Role: "assistant", Items: 3, Chars: 480}})

	out := buf.String()
	for _, want := range []string{"claude", "assistant", "480"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	quiet := New("chat.html", nil)
	quiet.out = &buf
	quiet.DisplayMessages("claude", nil)
	if buf.Len() != 0 {
		t.Errorf("non-verbose scraper wrote output: %q", buf.String())
	}
}

func TestStartSpinner(t *testing.T) {
	var buf bytes.Buffer
	s := New("chat.html", &Config{Verbose: true})
	s.out = &buf

	stop := s.StartSpinner("Extracting")
	stop()
	stop()

	if !strings.Contains(buf.String(), "Extracting... [✔]") {
		t.Errorf("spinner output = %q", buf.String())
	}
}
