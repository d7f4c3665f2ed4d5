/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package snapshotter orchestrates category probes into host snapshots.
package snapshotter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/syskeep/syskeep/pkg/collector"
	serrors "github.com/syskeep/syskeep/pkg/errors"
	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

// DefaultProbeTimeout bounds a single category probe.
const DefaultProbeTimeout = 60 * time.Second

// Snapshotter captures one host into a stored snapshot.
type Snapshotter interface {
	Capture(ctx context.Context, r runner.Runner) (*snapshot.Snapshot, string, error)
}

// HostSnapshotter runs every category probe against one host, in the
// fixed category order, and persists the result. Probes run sequentially:
// interleaving commands on a live host makes failures impossible to
// attribute, and probe cost is dominated by command latency anyway.
type HostSnapshotter struct {
	// Version is the tool version stamped into the snapshot header.
	Version string

	// Store persists the snapshot. Required.
	Store *snapshot.Store

	// Factory overrides the default collector set. Nil means the default
	// factory configured from the fields below.
	Factory collector.Factory

	// ProbeTimeout bounds each category probe. Zero means DefaultProbeTimeout.
	ProbeTimeout time.Duration

	// Disabled marks categories turned off by configuration. They appear
	// in the snapshot as skipped records with Enabled=false.
	Disabled map[record.Category]bool

	// ConfigPaths extends the config-file archive allow-list.
	ConfigPaths []string

	// Services narrows the systemd unit capture.
	Services []string
}

// Capture probes every category on the target and writes the snapshot to
// the store. A failing probe yields a failed record for that category and
// never aborts the run; only being unable to identify the host or persist
// the snapshot is fatal. Returns the snapshot and its directory.
func (h *HostSnapshotter) Capture(ctx context.Context, r runner.Runner) (*snapshot.Snapshot, string, error) {
	start := time.Now()
	defer func() {
		snapshotCollectionDuration.Observe(time.Since(start).Seconds())
	}()

	hostname, err := r.Hostname(ctx)
	if err != nil {
		snapshotCollectionTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("identifying host: %w", err)
	}

	snap := snapshot.New(hostname, h.Version)
	slog.Info("starting snapshot", "host", hostname, "dir", h.Store.Dir(snap))

	factory := h.Factory
	if factory == nil {
		factory = collector.NewDefaultFactory(
			collector.WithArchiveDir(h.Store.ConfigFilesDir(snap)),
			collector.WithConfigPaths(h.ConfigPaths...),
			collector.WithServices(h.Services...),
		)
	}

	for _, c := range factory.Collectors() {
		snap.Records = append(snap.Records, h.probe(ctx, c, r))
	}

	dir, err := h.Store.Write(ctx, snap)
	if err != nil {
		snapshotCollectionTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("persisting snapshot: %w", err)
	}

	snapshotCollectionTotal.WithLabelValues("success").Inc()
	slog.Info("snapshot complete", "host", hostname, "dir", dir,
		"records", len(snap.Records), "duration", time.Since(start).Round(time.Millisecond))
	return snap, dir, nil
}

// probe runs one category collector with its own timeout, converting any
// probe error into a failed record so the remaining categories still run.
func (h *HostSnapshotter) probe(ctx context.Context, c collector.Collector, r runner.Runner) *record.Record {
	category := c.Category()

	if h.Disabled[category] {
		slog.Debug("category disabled by configuration", "category", category)
		snapshotCategoryOutcomes.WithLabelValues(category.String(), string(record.StatusSkipped)).Inc()
		return record.NewDisabled(category)
	}

	timeout := h.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	rec, err := c.Collect(pctx, r)
	snapshotCategoryDuration.WithLabelValues(category.String()).Observe(time.Since(start).Seconds())

	if err != nil {
		if pctx.Err() != nil {
			err = serrors.Wrap(serrors.ErrCodeTimeout,
				fmt.Sprintf("category %s exceeded %s", category, timeout), err)
		} else {
			err = serrors.Wrap(serrors.ErrCodeModuleCapture,
				fmt.Sprintf("category %s", category), err)
		}
		slog.Error("category probe failed", "category", category, "error", err)
		snapshotCategoryOutcomes.WithLabelValues(category.String(), string(record.StatusFailed)).Inc()
		return record.NewFailed(category, err)
	}

	if rec.Status != record.StatusOK {
		slog.Warn("category probe degraded", "category", category,
			"status", rec.Status, "detail", rec.Error)
	}
	snapshotCategoryOutcomes.WithLabelValues(category.String(), string(rec.Status)).Inc()
	return rec
}
