// Package mcpserver exposes highlighting, outlining and grammar linting as
// Model Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"hlkit/internal/engine"
	"hlkit/internal/grammar"
	"hlkit/internal/textrange"
)

// Span is one highlighted run in a tool result. Offsets count runes.
type Span struct {
	Category string `json:"category"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Line     int    `json:"line"`
	Text     string `json:"text"`
}

type HighlightResult struct {
	Grammar    string `json:"grammar"`
	Highlights []Span `json:"highlights"`
}

type OutlineEntry struct {
	Title  string `json:"title"`
	Kind   string `json:"kind,omitempty"`
	Line   int    `json:"line"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Indent string `json:"indent,omitempty"`
}

type OutlineResult struct {
	Grammar string         `json:"grammar"`
	Items   []OutlineEntry `json:"items"`
}

type LintResult struct {
	Grammar  string   `json:"grammar"`
	Problems []string `json:"problems"`
}

type Handlers struct {
	Engine *engine.Engine
	Log    *zap.Logger
}

// New builds a server with the highlight, outline and lint tools.
func New(h *Handlers, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"hlkit",
		version,
		server.WithToolCapabilities(false),
	)

	textParam := mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Document text"),
	)
	grammarParam := mcp.WithString("grammar",
		mcp.Description("Grammar name, for example Python or Markdown. Detected from path and the first line when empty"),
	)
	pathParam := mcp.WithString("path",
		mcp.Description("File name used to detect the grammar"),
	)

	s.AddTool(mcp.NewTool("highlight",
		mcp.WithDescription("Highlight a document and return its categorized spans"),
		textParam, grammarParam, pathParam,
	), h.Highlight)

	s.AddTool(mcp.NewTool("outline",
		mcp.WithDescription("Extract the outline (functions, headings, marks) of a document"),
		textParam, grammarParam, pathParam,
		mcp.WithString("filter",
			mcp.Description("Keep items whose title fuzzily matches this query"),
		),
	), h.Outline)

	s.AddTool(mcp.NewTool("lint",
		mcp.WithDescription("Check a grammar definition for duplicated rules, bad regular expressions and similar mistakes"),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Grammar file contents"),
		),
		mcp.WithString("format",
			mcp.Description("Grammar format: toml (default) or yaml"),
		),
	), h.Lint)

	return s
}

// Serve runs the server on stdin and stdout until the client disconnects.
func Serve(h *Handlers, version string) error {
	return server.ServeStdio(New(h, version))
}

func (h *Handlers) document(request mcp.CallToolRequest) (grammar.Grammar, string, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return grammar.Grammar{}, "", err
	}
	g, err := h.Engine.Grammar(request.GetString("grammar", ""), request.GetString("path", ""), text)
	if err != nil {
		return grammar.Grammar{}, "", err
	}
	return g, text, nil
}

func (h *Handlers) Highlight(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, text, err := h.document(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hs, err := h.Engine.Highlight(ctx, g, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	runes := []rune(text)
	lines := textrange.NewLines(runes)
	result := HighlightResult{Grammar: g.Name, Highlights: make([]Span, 0, len(hs))}
	for _, hl := range hs {
		result.Highlights = append(result.Highlights, Span{
			Category: hl.Cat.String(),
			Start:    hl.Range.Start,
			End:      hl.Range.End,
			Line:     lines.Number(hl.Range.Start),
			Text:     string(runes[hl.Range.Start:hl.Range.End]),
		})
	}
	h.Log.Debug("mcp highlight", zap.String("grammar", g.Name), zap.Int("spans", len(hs)))
	return jsonResult(result)
}

func (h *Handlers) Outline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, text, err := h.document(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := h.Engine.Outline(ctx, g, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items = items.Filter(request.GetString("filter", ""))

	lines := textrange.NewLines([]rune(text))
	result := OutlineResult{Grammar: g.Name, Items: make([]OutlineEntry, 0, len(items))}
	for _, it := range items {
		result.Items = append(result.Items, OutlineEntry{
			Title:  it.Title,
			Kind:   string(it.Kind),
			Line:   lines.Number(it.Range.Start),
			Start:  it.Range.Start,
			End:    it.Range.End,
			Indent: it.Indent.Prefix(2),
		})
	}
	h.Log.Debug("mcp outline", zap.String("grammar", g.Name), zap.Int("items", len(items)))
	return jsonResult(result)
}

func (h *Handlers) Lint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := strings.ToLower(request.GetString("format", "toml"))
	switch format {
	case "toml", "yaml":
	case "yml":
		format = "yaml"
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q: want toml or yaml", format)), nil
	}

	g, err := grammar.Decode("grammar."+format, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result := LintResult{Grammar: g.Name, Problems: []string{}}
	for _, f := range grammar.Validate(g) {
		result.Problems = append(result.Problems, f.Error())
	}
	return jsonResult(result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
