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

const (
	resolvConfPath = "/etc/resolv.conf"
	hostsPath      = "/etc/hosts"
)

// NetworkCollector captures interfaces, addresses, routes, and DNS
// configuration. Restoring this category is dangerous: applying interface
// config can sever the management connection.
type NetworkCollector struct{}

func (c *NetworkCollector) Category() record.Category { return record.CategoryNetwork }
func (c *NetworkCollector) Dangerous() bool           { return true }

// Collect gathers network configuration. Address lease lifetimes are
// stripped so two captures of an unchanged host compare equal.
func (c *NetworkCollector) Collect(ctx context.Context, r runner.Runner) (*record.Record, error) {
	slog.Info("collecting network configuration")

	rec := record.NewRecord(record.CategoryNetwork)
	var problems []string

	if out, err := r.Run(ctx, "ip", "-o", "addr", "show"); err == nil {
		rec.Sections = append(rec.Sections, record.Section{Name: "addresses", Lines: parseAddrLines(out)})
	} else {
		problems = append(problems, fmt.Sprintf("addresses: %v", err))
	}

	if out, err := r.Run(ctx, "ip", "-o", "route", "show"); err == nil {
		rec.Sections = append(rec.Sections, record.Section{Name: "routes", Lines: sortedLines(out)})
	} else {
		problems = append(problems, fmt.Sprintf("routes: %v", err))
	}

	if data, err := r.ReadFile(ctx, resolvConfPath); err == nil {
		var lines []string
		for _, line := range splitLines(string(data)) {
			if !strings.HasPrefix(line, "#") && !strings.HasPrefix(line, ";") {
				lines = append(lines, line)
			}
		}
		rec.Sections = append(rec.Sections, record.Section{Name: "dns", Lines: lines})
	} else {
		problems = append(problems, fmt.Sprintf("resolv.conf: %v", err))
	}

	if data, err := r.ReadFile(ctx, hostsPath); err == nil {
		var lines []string
		for _, line := range splitLines(string(data)) {
			if !strings.HasPrefix(line, "#") {
				lines = append(lines, line)
			}
		}
		rec.Sections = append(rec.Sections, record.Section{Name: "hosts", Lines: lines})
	} else {
		problems = append(problems, fmt.Sprintf("hosts: %v", err))
	}

	if len(rec.Sections) == 0 {
		return nil, fmt.Errorf("no network data collectable: %s", strings.Join(problems, "; "))
	}
	if len(problems) > 0 {
		rec.Status = record.StatusPartial
		rec.Error = strings.Join(problems, "; ")
	}

	return rec, nil
}

// parseAddrLines reduces `ip -o addr show` output to "ifname family addr"
// triples, dropping lease lifetimes and interface indexes.
func parseAddrLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		// index ifname family addr ...
		if len(fields) < 4 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", fields[1], fields[2], fields[3]))
	}
	return lines
}
