/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package snapshotter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Snapshot collection metrics
	snapshotCollectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "syskeep_snapshot_collection_duration_seconds",
			Help:    "Time taken to capture a complete host snapshot",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	snapshotCollectionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syskeep_snapshot_collection_total",
			Help: "Total number of snapshot capture attempts",
		},
		[]string{"status"}, // success or error
	)

	snapshotCategoryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syskeep_snapshot_category_duration_seconds",
			Help:    "Time taken by individual category probes",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"category"},
	)

	snapshotCategoryOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syskeep_snapshot_category_total",
			Help: "Category probe outcomes by capture status",
		},
		[]string{"category", "status"},
	)
)
