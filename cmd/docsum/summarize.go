package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/docsum/api"
	"github.com/hazyhaar/docsum/docpipe"
	"github.com/hazyhaar/docsum/summarize"
)

// readContent returns the text of path, or stdin when path is "-", and
// applies the same length bound as POST /api/summarize.
func (a *app) readContent(ctx context.Context, cmd *cobra.Command, path string) (string, error) {
	var text string
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	} else {
		pipe, err := docpipe.New(a.cfg.pipelineConfig(a.logger))
		if err != nil {
			return "", err
		}
		if text, err = pipe.ExtractFile(ctx, path); err != nil {
			return "", err
		}
	}
	if err := api.CheckContent(text); err != nil {
		return "", err
	}
	return text, nil
}

func (a *app) summarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <file|->",
		Short: "Summarize a PDF, Markdown or plain-text file",
		Example: `  docsum summarize notes.md
  cat article.txt | docsum summarize -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text, err := a.readContent(ctx, cmd, args[0])
			if err != nil {
				return err
			}
			sum, err := summarize.New(ctx, a.cfg.summarizeConfig(a.logger))
			if err != nil {
				return err
			}
			summary, err := sum.Summarize(ctx, text)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), summary)
			return err
		},
	}
}

func (a *app) promptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt <file|->",
		Short: "Print the prompt that summarize would send, without calling the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.readContent(cmd.Context(), cmd, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), summarize.BuildPrompt(text))
			return err
		},
	}
}
