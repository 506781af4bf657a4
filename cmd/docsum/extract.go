package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/docsum/docpipe"
)

func (a *app) extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the text of a PDF, Markdown or plain-text file",
		Example: `  docsum extract report.pdf
  PDF_BACKEND=ledongthuc docsum extract report.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, err := docpipe.New(a.cfg.pipelineConfig(a.logger))
			if err != nil {
				return err
			}
			text, err := pipe.ExtractFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}
