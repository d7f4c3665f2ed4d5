/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
)

func runMetricsTextfile(t *testing.T, args []string) {
	t.Helper()
	cmd := &cli.Command{
		Flags: []cli.Flag{metricsTextfileFlag},
		Action: func(_ context.Context, c *cli.Command) error {
			return writeMetricsTextfile(c)
		},
	}
	if err := cmd.Run(context.Background(), args); err != nil {
		t.Fatalf("failed to run command: %v", err)
	}
}

func TestWriteMetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syskeep.prom")
	runMetricsTextfile(t, []string{"cmd", "--metrics-textfile", path})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	if !strings.Contains(string(data), "syskeep_snapshot_collection_duration_seconds") {
		t.Error("textfile missing snapshot metrics")
	}
	if !strings.Contains(string(data), "# TYPE") {
		t.Error("textfile missing exposition metadata")
	}
}

func TestWriteMetricsTextfileUnsetIsNoop(t *testing.T) {
	runMetricsTextfile(t, []string{"cmd"})
}
