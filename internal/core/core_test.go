package core

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tesh254/chatmd/internal/api"
	"github.com/tesh254/chatmd/internal/conversation"
	"github.com/tesh254/chatmd/internal/logger"
	"github.com/tesh254/chatmd/internal/markdown"
	"github.com/tesh254/chatmd/internal/platform"
	"github.com/tesh254/chatmd/internal/storage"
)

const page = `<html><body>
<div data-message-author-role="user"><div class="whitespace-pre-wrap">What is 2+2?</div></div>
<div data-message-author-role="assistant"><div class="markdown"><p>It is <strong>4</strong>.</p></div></div>
</body></html>`

func newCore(t *testing.T) *Core {
	t.Helper()
	reg, err := platform.Builtin()
	if err != nil {
		t.Fatalf("Builtin() error: %v", err)
	}
	st, err := storage.NewStorage(filepath.Join(t.TempDir(), "exports.db"))
	if err != nil {
		t.Fatalf("NewStorage() error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	a := api.NewAPI(st, conversation.NewExtractor(reg, markdown.New()))
	return New(a, nil)
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content block, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestNewServerRegistersTools(t *testing.T) {
	if newCore(t).NewServer("test") == nil {
		t.Fatal("NewServer() returned nil")
	}
}

func TestConvertAndArchiveTools(t *testing.T) {
	c := newCore(t)
	ctx := context.Background()

	res, _, err := c.convertHTML(ctx, nil, ConvertHTMLArgs{HTML: page, Source: "https://chatgpt.com/c/1", Title: "Math", Archive: true})
	if err != nil {
		t.Fatalf("convert_html error: %v", err)
	}
	want := "# Math\n\n## 1. Question\n\nWhat is 2+2?\n\n## 2. Answer\n\nIt is **4**.\n"
	if got := text(t, res); got != want {
		t.Errorf("convert_html =\n%q\nwant\n%q", got, want)
	}

	res, _, err = c.listExports(ctx, nil, ListExportsArgs{Limit: 10})
	if err != nil {
		t.Fatalf("list_exports error: %v", err)
	}
	var listed struct {
		Exports []ExportSummary `json:"exports"`
		Total   int             `json:"total"`
	}
	if err := json.Unmarshal([]byte(text(t, res)), &listed); err != nil {
		t.Fatalf("list_exports returned invalid JSON: %v", err)
	}
	if listed.Total != 1 || listed.Exports[0].Platform != "chatgpt" || listed.Exports[0].Messages != 2 {
		t.Fatalf("list_exports = %+v", listed)
	}
	id := listed.Exports[0].ID

	res, _, err = c.getExport(ctx, nil, ExportIDArgs{ID: id})
	if err != nil {
		t.Fatalf("get_export error: %v", err)
	}
	if !strings.Contains(text(t, res), `It is **4**.`) {
		t.Errorf("get_export = %s", text(t, res))
	}

	res, _, err = c.searchExports(ctx, nil, SearchExportsArgs{Query: "2+2"})
	if err != nil {
		t.Fatalf("search_exports error: %v", err)
	}
	if !strings.Contains(text(t, res), id) {
		t.Errorf("search_exports = %s", text(t, res))
	}

	res, _, err = c.deleteExport(ctx, nil, ExportIDArgs{ID: id})
	if err != nil {
		t.Fatalf("delete_export error: %v", err)
	}
	if got := text(t, res); got != "Deleted 1 export(s)" {
		t.Errorf("delete_export = %q", got)
	}
	if _, _, err := c.getExport(ctx, nil, ExportIDArgs{ID: id}); err == nil {
		t.Error("get_export should fail after delete")
	}
}

func TestExtractItemsTool(t *testing.T) {
	res, _, err := newCore(t).extractItems(context.Background(), nil, ConvertHTMLArgs{HTML: page})
	if err != nil {
		t.Fatalf("extract_items error: %v", err)
	}

	var conv conversation.Conversation
	if err := json.Unmarshal([]byte(text(t, res)), &conv); err != nil {
		t.Fatalf("extract_items returned invalid JSON: %v", err)
	}
	if len(conv.Messages) != 2 || conv.Messages[1].Items[0].Content != "It is **4**." {
		t.Errorf("extract_items = %+v", conv)
	}
}

func TestLoggingHandler(t *testing.T) {
	var buf bytes.Buffer
	h := loggingHandler(logger.New(&buf), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
	out := buf.String()
	for _, want := range []string{"incoming request", "response sent", "request_id", "status=418", "size=15"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
