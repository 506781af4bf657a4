package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/docsum/api"
	"github.com/hazyhaar/docsum/docpipe"
	"github.com/hazyhaar/docsum/observability"
	"github.com/hazyhaar/docsum/summarize"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service (POST /api/parse-pdf, POST /api/summarize)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

// buildHandler constructs the process-wide collaborators once. The returned
// cleanup flushes metrics and closes the store.
func (a *app) buildHandler(ctx context.Context) (*api.Handler, *observability.MetricsManager, func(), error) {
	pipe, err := docpipe.New(a.cfg.pipelineConfig(a.logger))
	if err != nil {
		return nil, nil, nil, err
	}
	sum, err := summarize.New(ctx, a.cfg.summarizeConfig(a.logger))
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() {}
	var mm *observability.MetricsManager
	if a.cfg.MetricsDB != "" {
		db, err := openMetricsStore(a.cfg.MetricsDB)
		if err != nil {
			return nil, nil, nil, err
		}
		mm = observability.NewMetricsManager(db, 100, 5*time.Second, a.logger)
		cleanup = func() {
			mm.Close()
			db.Close()
		}
		if n, err := mm.Cleanup(ctx, a.cfg.MetricsRetentionDays); err != nil {
			a.logger.Warn("metrics retention cleanup", "error", err)
		} else if n > 0 {
			a.logger.Info("metrics retention cleanup", "removed", n)
		}
	}

	a.logger.Info("docsum configured",
		"model", sum.ModelName(),
		"pdf_backend", a.cfg.PDFBackend,
		"max_body_bytes", a.cfg.MaxBodyBytes,
		"metrics", a.cfg.MetricsDB != "",
		"expose_error_details", a.cfg.ExposeErrorDetails)

	return api.NewHandler(pipe, sum, mm, a.cfg.apiOptions()), mm, cleanup, nil
}

func (a *app) serve(ctx context.Context) error {
	h, mm, cleanup, err := a.buildHandler(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           api.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      a.cfg.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", "addr", a.cfg.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if mm != nil {
		g.Go(func() error {
			observability.SampleRuntime(gctx, mm, 30*time.Second)
			return nil
		})
	}
	return g.Wait()
}
