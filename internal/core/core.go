package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tesh254/chatmd/internal/api"
	"github.com/tesh254/chatmd/internal/conversation"
	"github.com/tesh254/chatmd/internal/logger"
	"github.com/tesh254/chatmd/internal/storage"
)

type Core struct {
	api *api.API
	log *logger.Logger
}

func New(internalAPI *api.API, log *logger.Logger) *Core {
	if log == nil {
		log = logger.Discard()
	}
	return &Core{api: internalAPI, log: log.Component("mcp")}
}

type ConvertHTMLArgs struct {
	HTML     string `json:"html" jsonschema:"the rendered chat page"`
	Platform string `json:"platform,omitempty" jsonschema:"adapter name; detected when empty"`
	Source   string `json:"source,omitempty" jsonschema:"page URL, used for host detection"`
	Title    string `json:"title,omitempty" jsonschema:"title override"`
	Archive  bool   `json:"archive,omitempty" jsonschema:"store the result in the archive"`
}

type ListExportsArgs struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

type ExportIDArgs struct {
	ID string `json:"id" jsonschema:"export id, or a source prefix for delete"`
}

type SearchExportsArgs struct {
	Query string `json:"query" jsonschema:"text to look for in titles and bodies"`
	Limit int    `json:"limit,omitempty"`
}

type ExportSummary struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Platform  string `json:"platform"`
	Title     string `json:"title"`
	Messages  int    `json:"messages"`
	CreatedAt string `json:"created_at"`
}

// NewServer builds the MCP server with every chatmd tool registered.
func (c *Core) NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "chatmd MCP Server", Version: version}, nil)
	c.registerTools(server)
	return server
}

func (c *Core) ServeHTTP(server *mcp.Server, httpAddress string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
	c.log.Info("MCP handler listening", "address", httpAddress)
	return http.ListenAndServe(httpAddress, loggingHandler(c.log, handler))
}

func (c *Core) ServeStdio(ctx context.Context, server *mcp.Server) error {
	transport := &mcp.StdioTransport{}
	t := &mcp.LoggingTransport{Transport: transport, Writer: os.Stderr}
	c.log.Info("starting MCP server with stdio transport")
	return server.Run(ctx, t)
}

func (c *Core) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert_html",
		Description: "Convert a rendered chat page to a Markdown document.",
	}, c.convertHTML)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_items",
		Description: "Extract the typed content items of every message in a chat page as JSON.",
	}, c.extractItems)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_exports",
		Description: "List archived exports with pagination.",
	}, c.listExports)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_export",
		Description: "Get an archived export by id.",
	}, c.getExport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_export",
		Description: "Delete an archived export by id, or every export whose source starts with the given prefix.",
	}, c.deleteExport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_exports",
		Description: "Search archived exports by title and body text.",
	}, c.searchExports)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	result, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	return textResult(string(result)), nil, nil
}

func (c *Core) convert(ctx context.Context, args ConvertHTMLArgs) (*conversation.Conversation, error) {
	return c.api.ConvertHTML(ctx, args.HTML, conversation.Options{
		Source:   args.Source,
		Platform: args.Platform,
		Title:    args.Title,
	})
}

func (c *Core) convertHTML(ctx context.Context, req *mcp.CallToolRequest, args ConvertHTMLArgs) (*mcp.CallToolResult, any, error) {
	conv, err := c.convert(ctx, args)
	if err != nil {
		return nil, nil, err
	}
	out, err := c.api.Render(conv, "md")
	if err != nil {
		return nil, nil, err
	}
	if args.Archive {
		stored, err := c.api.Archive(conv)
		if err != nil {
			return nil, nil, err
		}
		c.log.Debug("archived conversion", "id", stored.ID)
	}
	return textResult(string(out)), nil, nil
}

func (c *Core) extractItems(ctx context.Context, req *mcp.CallToolRequest, args ConvertHTMLArgs) (*mcp.CallToolResult, any, error) {
	conv, err := c.convert(ctx, args)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(conv)
}

func summaries(exports []*storage.Export) []ExportSummary {
	out := make([]ExportSummary, len(exports))
	for i, e := range exports {
		out[i] = ExportSummary{
			ID:        e.ID,
			Source:    e.Source,
			Platform:  e.Platform,
			Title:     e.Title,
			Messages:  e.Messages,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}

func (c *Core) listExports(ctx context.Context, req *mcp.CallToolRequest, args ListExportsArgs) (*mcp.CallToolResult, any, error) {
	exports, total, err := c.api.ListExports(args.Limit, args.Offset)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(map[string]any{"exports": summaries(exports), "total": total})
}

func (c *Core) getExport(ctx context.Context, req *mcp.CallToolRequest, args ExportIDArgs) (*mcp.CallToolResult, any, error) {
	e, err := c.api.GetExport(args.ID)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(e)
}

func (c *Core) deleteExport(ctx context.Context, req *mcp.CallToolRequest, args ExportIDArgs) (*mcp.CallToolResult, any, error) {
	n, err := c.api.DeleteExport(args.ID)
	if err != nil {
		return nil, nil, err
	}
	return textResult(fmt.Sprintf("Deleted %d export(s)", n)), nil, nil
}

func (c *Core) searchExports(ctx context.Context, req *mcp.CallToolRequest, args SearchExportsArgs) (*mcp.CallToolResult, any, error) {
	exports, err := c.api.SearchExports(args.Query, args.Limit)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(map[string]any{"exports": summaries(exports)})
}
