/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package snapshotter

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/syskeep/syskeep/pkg/runner"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

// stubSnapshotter records captures and fails scripted hosts.
type stubSnapshotter struct {
	mu       sync.Mutex
	captured []string
	failHost string
}

func (s *stubSnapshotter) Capture(ctx context.Context, r runner.Runner) (*snapshot.Snapshot, string, error) {
	hostname, _ := r.Hostname(ctx)
	s.mu.Lock()
	s.captured = append(s.captured, hostname)
	s.mu.Unlock()
	if hostname == s.failHost {
		return nil, "", errors.New("capture broke")
	}
	return snapshot.New(hostname, "test"), "/snapshots/" + hostname, nil
}

func TestFleetCapture(t *testing.T) {
	stub := &stubSnapshotter{}
	fleet := &Fleet{Snapshotter: stub, Concurrency: 2}

	// Local targets resolve to the local runner without dialing.
	targets := []runner.Target{{Host: "localhost"}, {Host: "127.0.0.1"}}

	results, err := fleet.Capture(context.Background(), targets)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for _, res := range results {
		if res.Err != nil {
			t.Errorf("host %s: %v", res.Target.Host, res.Err)
		}
		if res.Dir == "" {
			t.Errorf("host %s: missing snapshot dir", res.Target.Host)
		}
	}
}

// One broken host must not stop the rest of the fleet.
func TestFleetCaptureIsolatesHostFailure(t *testing.T) {
	hostname, err := localHostname(t)
	if err != nil {
		t.Skipf("cannot determine local hostname: %v", err)
	}

	stub := &stubSnapshotter{failHost: hostname}
	fleet := &Fleet{Snapshotter: stub, Concurrency: 1}

	targets := []runner.Target{{Host: "localhost"}, {Host: "127.0.0.1"}}
	results, err := fleet.Capture(context.Background(), targets)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	failed := Failed(results)
	if len(failed) != 2 {
		t.Fatalf("Failed() = %d, want both local aliases to fail", len(failed))
	}
	if len(stub.captured) != 2 {
		t.Errorf("captured = %v, want both hosts attempted", stub.captured)
	}
}

func localHostname(t *testing.T) (string, error) {
	t.Helper()
	r, err := runner.New(context.Background(), runner.Target{})
	if err != nil {
		return "", err
	}
	defer r.Close()
	return r.Hostname(context.Background())
}
