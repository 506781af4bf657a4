// Command docsum extracts text from PDF documents and summarizes text with
// a hosted generative model, over HTTP, MCP stdio or the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Getenv).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

// app carries state shared by subcommands once the root has loaded it.
type app struct {
	configPath string
	getenv     func(string) string

	cfg    *Config
	logger *slog.Logger
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	a := &app{getenv: getenv}

	root := &cobra.Command{
		Use:   "docsum",
		Short: "PDF text extraction and summarization",
		Long: `docsum turns PDF, Markdown and plain-text documents into short structured
summaries: an overview sentence followed by numbered key points.

Configuration comes from an optional YAML file (--config) overridden by
environment variables (GEMINI_API_KEY, LLM_PROVIDER, PORT, ...).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.configPath, a.getenv)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")

	root.AddCommand(
		a.serveCmd(),
		a.extractCmd(),
		a.summarizeCmd(),
		a.promptCmd(),
		a.mcpCmd(),
		a.metricsCmd(),
	)
	return root
}

// newLogger writes JSON records to w. Logs go to stderr so that command
// output and the MCP stdio stream stay clean on stdout.
func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := parseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
