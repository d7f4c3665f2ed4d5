/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

// metricsTextfileFlag exposes the run's Prometheus metrics in the
// node_exporter textfile collector format. A short-lived CLI has no
// scrape endpoint, so the textfile is the exposure path: point it at
// the collector's directory and the next node_exporter scrape picks
// the run up.
var metricsTextfileFlag = &cli.StringFlag{
	Name:    "metrics-textfile",
	Usage:   "Write run metrics to the given .prom file (node_exporter textfile format)",
	Sources: cli.EnvVars("SYSKEEP_METRICS_TEXTFILE"),
}

// writeMetricsTextfile dumps the default registry to the path from
// --metrics-textfile, if set. Called after the run so the counters and
// histograms carry the run's observations.
func writeMetricsTextfile(cmd *cli.Command) error {
	path := cmd.String("metrics-textfile")
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return err
	}
	slog.Debug("metrics textfile written", "path", path)
	return nil
}
