package main

import (
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/docsum/dbopen"
	"github.com/hazyhaar/docsum/observability"
)

// openMetricsStore opens the SQLite metrics file and applies its schema.
func openMetricsStore(path string) (*sql.DB, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(observability.Schema))
	if err != nil {
		return nil, fmt.Errorf("metrics store: %w", err)
	}
	return db, nil
}

func (a *app) metricsCmd() *cobra.Command {
	var (
		f     observability.Filter
		since time.Duration
	)
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print recorded metrics from the metrics store (newest first)",
		Example: `  METRICS_DB=docsum.db docsum metrics --name http_request_duration_ms --since 1h
  docsum metrics --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.MetricsDB == "" {
				return errors.New("metrics: metrics_db is not configured (set METRICS_DB)")
			}
			db, err := openMetricsStore(a.cfg.MetricsDB)
			if err != nil {
				return err
			}
			defer db.Close()

			if since > 0 {
				f.Since = time.Now().Add(-since)
			}
			mm := observability.NewMetricsManager(db, 1, time.Minute, a.logger)
			defer mm.Close()

			rows, err := mm.Query(cmd.Context(), f)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tNAME\tVALUE\tUNIT\tLABELS")
			for _, m := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%.3f\t%s\t%s\n",
					m.Timestamp.UTC().Format(time.RFC3339), m.Name, m.Value, m.Unit, formatLabels(m.Labels))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "only this metric name")
	cmd.Flags().DurationVar(&since, "since", 0, "only metrics newer than this age (e.g. 1h)")
	cmd.Flags().IntVar(&f.Limit, "limit", 50, "maximum rows (0 = all)")
	return cmd
}

func formatLabels(labels map[string]string) string {
	parts := make([]string, 0, len(labels))
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, ",")
}
