package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf16"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/docsum/idgen"
	"github.com/hazyhaar/docsum/kit"
)

// MaxContentChars is the largest accepted input, counted in UTF-16 code
// units to match what browser clients measure.
const MaxContentChars = 100000

// ContentLength returns the length of s in UTF-16 code units.
func ContentLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// RegisterMCP registers summarization tools on an MCP server.
func (c *Client) RegisterMCP(srv *mcp.Server) {
	c.registerSummarizeTool(srv)
	registerPromptTool(srv)
}

type contentReq struct {
	Content string `json:"content"`
}

func decodeContent(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	var r contentReq
	if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
		return nil, err
	}
	if r.Content == "" {
		return nil, errors.New("content is required")
	}
	if n := ContentLength(r.Content); n > MaxContentChars {
		return nil, fmt.Errorf("content too large: %d > %d", n, MaxContentChars)
	}
	return &kit.MCPDecodeResult{Request: &r}, nil
}

func (c *Client) registerSummarizeTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docsum_summarize",
		Description: "Summarize plain text as an overview sentence followed by numbered key points.",
		InputSchema: kit.InputSchema(map[string]any{
			"content": map[string]any{"type": "string", "description": "Text to summarize (max 100000 characters)"},
		}, []string{"content"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*contentReq)
		summary, err := c.Summarize(ctx, r.Content)
		if err != nil {
			return nil, err
		}
		return map[string]any{"summary": summary}, nil
	}

	mw := kit.Chain(kit.Trace(idgen.TraceID), kit.Logging(c.logger, tool.Name))
	kit.RegisterMCPTool(srv, tool, mw(endpoint), decodeContent)
}

func registerPromptTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docsum_prompt",
		Description: "Render the summarization prompt for a text without calling the model.",
		InputSchema: kit.InputSchema(map[string]any{
			"content": map[string]any{"type": "string", "description": "Text to embed in the prompt"},
		}, []string{"content"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*contentReq)
		return map[string]any{"prompt": BuildPrompt(r.Content)}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeContent)
}
