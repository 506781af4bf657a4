package docpipe

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/docsum/idgen"
	"github.com/hazyhaar/docsum/kit"
)

// RegisterMCP registers docpipe tools on an MCP server.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	p.registerExtractTool(srv)
	p.registerFormatsTool(srv)
}

// --- extract ---

type extractReq struct {
	Path     string `json:"path"`
	FileData string `json:"file_data"`
}

func (p *Pipeline) registerExtractTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_extract",
		Description: "Extract plain text from a document. Pass either a local file path (pdf, md, txt) or base64 PDF data (a data:application/pdf;base64, prefix is accepted).",
		InputSchema: kit.InputSchema(map[string]any{
			"path":      map[string]any{"type": "string", "description": "Local file path"},
			"file_data": map[string]any{"type": "string", "description": "Base64 encoded PDF"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*extractReq)
		if r.FileData != "" {
			return p.ExtractBase64(ctx, r.FileData)
		}
		text, err := p.ExtractFile(ctx, r.Path)
		if err != nil {
			return nil, err
		}
		return map[string]any{"text": text}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r extractReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.Path == "" && r.FileData == "" {
			return nil, errors.New("path or file_data is required")
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	mw := kit.Chain(kit.Trace(idgen.TraceID), kit.Logging(p.logger, tool.Name))
	kit.RegisterMCPTool(srv, tool, mw(endpoint), decode)
}

// --- formats ---

func (p *Pipeline) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_formats",
		Description: "List the document formats docpipe_extract accepts.",
		InputSchema: kit.InputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]any{"formats": SupportedFormats()}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
