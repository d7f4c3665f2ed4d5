/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package collector provides the inspection modules that probe one target
// host and produce per-category records.
//
// Each collector is independent and tolerant of absent subsystems: a host
// without LVM, without a firewall, or without any container runtime still
// yields a usable record (partial or skipped) for that category. Probe
// failures never abort the snapshot; the snapshotter converts them into
// failed records and keeps going.
package collector

import (
	"context"
	"sort"
	"strings"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
)

// Collector is one inspection module.
type Collector interface {
	// Category identifies the record this collector produces.
	Category() record.Category

	// Dangerous reports whether restoring this category can sever the
	// connection used to manage the host. Dangerous categories are
	// restore-opt-in only; collection is always safe.
	Dangerous() bool

	// Collect probes the target through the runner and returns the record.
	Collect(ctx context.Context, r runner.Runner) (*record.Record, error)
}

// sortedLines trims, drops empties, and sorts command output lines so two
// captures of an unchanged host compare equal.
func sortedLines(out string) []string {
	raw := strings.Split(out, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	sort.Strings(lines)
	return lines
}

// splitLines trims and drops empties but preserves order, for outputs where
// order is meaningful (crontabs, config files).
func splitLines(out string) []string {
	raw := strings.Split(out, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
