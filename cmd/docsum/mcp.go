package main

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/docsum/docpipe"
	"github.com/hazyhaar/docsum/summarize"
)

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve docsum tools over MCP stdio",
		Long: `Serve the extraction and summarization pipeline as MCP tools on stdin/stdout:
docpipe_extract, docpipe_formats, docsum_summarize and docsum_prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			srv, err := a.newMCPServer(ctx)
			if err != nil {
				return err
			}
			a.logger.Info("mcp server starting", "transport", "stdio")
			return srv.Run(ctx, &mcp.StdioTransport{})
		},
	}
}

// newMCPServer registers the pipeline and summarizer tools on one server.
func (a *app) newMCPServer(ctx context.Context) (*mcp.Server, error) {
	pipe, err := docpipe.New(a.cfg.pipelineConfig(a.logger))
	if err != nil {
		return nil, err
	}
	sum, err := summarize.New(ctx, a.cfg.summarizeConfig(a.logger))
	if err != nil {
		return nil, err
	}

	srv := mcp.NewServer(&mcp.Implementation{Name: "docsum", Version: version}, nil)
	pipe.RegisterMCP(srv)
	sum.RegisterMCP(srv)
	return srv, nil
}
