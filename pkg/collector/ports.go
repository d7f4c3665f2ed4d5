/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package collector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
)

// PortsCollector captures listening TCP/UDP sockets. The category is
// report-only so it is never dangerous.
type PortsCollector struct{}

func (c *PortsCollector) Category() record.Category { return record.CategoryPorts }
func (c *PortsCollector) Dangerous() bool           { return false }

// Collect lists listening sockets via ss, falling back to netstat on
// systems without iproute2.
func (c *PortsCollector) Collect(ctx context.Context, r runner.Runner) (*record.Record, error) {
	slog.Info("collecting listening ports")

	var out string
	var err error
	switch {
	case r.HasCommand(ctx, "ss"):
		out, err = r.Run(ctx, "ss", "-tulnH")
	case r.HasCommand(ctx, "netstat"):
		out, err = r.Run(ctx, "netstat", "-tuln")
	default:
		return record.NewSkipped(record.CategoryPorts, "neither ss nor netstat present"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing sockets: %w", err)
	}

	rec := record.NewRecord(record.CategoryPorts)
	rec.Sections = append(rec.Sections, record.Section{Name: "listening", Lines: normalizeSocketLines(out)})
	return rec, nil
}

// normalizeSocketLines reduces socket listings to "proto local-address"
// pairs so that churn in queue counters and peer columns does not show
// up as configuration drift.
func normalizeSocketLines(out string) []string {
	var lines []string
	for _, line := range splitLines(out) {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		proto := strings.ToLower(fields[0])
		if !strings.HasPrefix(proto, "tcp") && !strings.HasPrefix(proto, "udp") {
			continue
		}
		// ss: Netid State Recv-Q Send-Q Local:Port Peer:Port
		// netstat: Proto Recv-Q Send-Q Local Foreign State
		local := fields[3]
		if fields[1] == "LISTEN" || fields[1] == "UNCONN" {
			local = fields[4]
		}
		lines = append(lines, proto+" "+local)
	}
	return sortedLines(strings.Join(lines, "\n"))
}
