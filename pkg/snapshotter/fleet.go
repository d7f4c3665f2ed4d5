/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package snapshotter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/syskeep/syskeep/pkg/runner"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

// DefaultFleetConcurrency bounds how many hosts are captured at once.
const DefaultFleetConcurrency = 4

// HostResult is the outcome of capturing one fleet host. A host that
// could not be reached or captured carries Err; the other hosts are
// unaffected.
type HostResult struct {
	Target runner.Target
	Dir    string
	Snap   *snapshot.Snapshot
	Err    error
}

// Fleet captures snapshots across many hosts. Hosts run concurrently up
// to Concurrency; the categories within one host still run sequentially.
type Fleet struct {
	Snapshotter Snapshotter

	// Concurrency bounds parallel hosts. Zero means DefaultFleetConcurrency.
	Concurrency int

	// ConnectRate throttles new SSH connections per second. Zero disables
	// throttling.
	ConnectRate float64
}

// Capture runs the snapshotter against every target. The returned slice
// has one entry per target in target order. The error is non-nil only
// when the context was canceled; per-host failures live in the results.
func (f *Fleet) Capture(ctx context.Context, targets []runner.Target) ([]HostResult, error) {
	results := make([]HostResult, len(targets))

	var limiter *rate.Limiter
	if f.ConnectRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(f.ConnectRate), 1)
	}

	concurrency := f.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultFleetConcurrency
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	start := time.Now()
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			res := HostResult{Target: target}
			defer func() {
				mu.Lock()
				results[i] = res
				mu.Unlock()
			}()

			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					res.Err = err
					return err
				}
			}

			r, err := runner.New(gctx, target)
			if err != nil {
				slog.Error("fleet host unreachable", "host", target.Host, "error", err)
				res.Err = err
				return nil
			}
			defer r.Close()

			res.Snap, res.Dir, res.Err = f.Snapshotter.Capture(gctx, r)
			if res.Err != nil {
				slog.Error("fleet host capture failed", "host", target.Host, "error", res.Err)
			}
			return nil
		})
	}

	err := g.Wait()
	slog.Info("fleet capture complete", "hosts", len(targets),
		"duration", time.Since(start).Round(time.Millisecond))
	return results, err
}

// Failed returns the results that carry an error.
func Failed(results []HostResult) []HostResult {
	var out []HostResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
