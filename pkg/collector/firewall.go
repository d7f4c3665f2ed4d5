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

// FirewallCollector captures the rule set of whichever firewall frontend
// is active, probing in precedence order: ufw, firewalld, nftables, raw
// iptables. A host with none installed is skipped, not failed.
type FirewallCollector struct{}

func (c *FirewallCollector) Category() record.Category { return record.CategoryFirewall }
func (c *FirewallCollector) Dangerous() bool           { return true }

func (c *FirewallCollector) Collect(ctx context.Context, r runner.Runner) (*record.Record, error) {
	slog.Info("collecting firewall rules")

	rec := record.NewRecord(record.CategoryFirewall)

	switch {
	case r.HasCommand(ctx, "ufw"):
		out, err := r.Run(ctx, "ufw", "status", "verbose")
		if err != nil {
			return nil, fmt.Errorf("ufw status: %w", err)
		}
		rec.Sections = append(rec.Sections,
			record.Section{Name: "frontend", Data: map[string]string{"name": "ufw"}},
			record.Section{Name: "rules", Lines: splitLines(out)},
		)
	case r.HasCommand(ctx, "firewall-cmd"):
		out, err := r.Run(ctx, "firewall-cmd", "--list-all-zones")
		if err != nil {
			return nil, fmt.Errorf("firewall-cmd: %w", err)
		}
		rec.Sections = append(rec.Sections,
			record.Section{Name: "frontend", Data: map[string]string{"name": "firewalld"}},
			record.Section{Name: "rules", Lines: splitLines(out)},
		)
	case r.HasCommand(ctx, "nft"):
		out, err := r.Run(ctx, "nft", "list", "ruleset")
		if err != nil {
			return nil, fmt.Errorf("nft list ruleset: %w", err)
		}
		rec.Sections = append(rec.Sections,
			record.Section{Name: "frontend", Data: map[string]string{"name": "nftables"}},
			record.Section{Name: "rules", Lines: splitLines(out)},
		)
	case r.HasCommand(ctx, "iptables-save"):
		out, err := r.Run(ctx, "iptables-save")
		if err != nil {
			return nil, fmt.Errorf("iptables-save: %w", err)
		}
		rec.Sections = append(rec.Sections,
			record.Section{Name: "frontend", Data: map[string]string{"name": "iptables"}},
			record.Section{Name: "rules", Lines: stripSaveComments(out)},
		)
	default:
		return record.NewSkipped(record.CategoryFirewall, "no firewall frontend installed"), nil
	}

	return rec, nil
}

// stripSaveComments drops iptables-save comment lines, which embed the
// save timestamp and would make back-to-back captures differ.
func stripSaveComments(out string) []string {
	var lines []string
	for _, line := range splitLines(out) {
		if strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
