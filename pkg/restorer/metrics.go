/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Restoration metrics
	restoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "syskeep_restore_duration_seconds",
			Help:    "Time taken by a complete restoration run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	restoreRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syskeep_restore_runs_total",
			Help: "Total restoration runs by overall outcome",
		},
		[]string{"outcome"}, // success, partial, or failure
	)

	restoreStepOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syskeep_restore_steps_total",
			Help: "Restoration step outcomes by category",
		},
		[]string{"category", "outcome"},
	)

	restoreBackupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syskeep_restore_backups_total",
			Help: "Files backed up before mutation",
		},
	)
)
