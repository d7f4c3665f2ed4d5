/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"context"
	"fmt"
	"strings"

	"github.com/syskeep/syskeep/pkg/record"
)

// FirewallApplier replays captured rule sets for the frontends whose
// capture format is mechanically loadable: nftables (`nft -f`) and raw
// iptables (`iptables-restore`). ufw and firewalld captures are status
// output and cannot be replayed.
type FirewallApplier struct{}

func (a *FirewallApplier) Category() record.Category { return record.CategoryFirewall }
func (a *FirewallApplier) Dangerous() bool           { return true }

func (a *FirewallApplier) Apply(ctx context.Context, env *Env, rec *record.Record) error {
	frontend := rec.Section("frontend")
	rules := rec.Section("rules")
	if frontend == nil || rules == nil || len(rules.Lines) == 0 {
		return ErrNotReplayable
	}

	var restoreCmd string
	switch frontend.Data["name"] {
	case "nftables":
		restoreCmd = "nft"
	case "iptables":
		restoreCmd = "iptables-restore"
	default:
		return ErrNotReplayable
	}
	if !env.Runner.HasCommand(ctx, restoreCmd) {
		return fmt.Errorf("snapshot holds %s rules but %s is not on the target",
			frontend.Data["name"], restoreCmd)
	}

	if current := a.currentRules(ctx, env, frontend.Data["name"]); equalEntries(current, rules.Lines) {
		return nil
	}

	content := strings.Join(rules.Lines, "\n") + "\n"
	stagePath := "/tmp/syskeep-firewall-rules"

	env.note(fmt.Sprintf("load %d firewall rules via %s", len(rules.Lines), restoreCmd))
	if env.DryRun {
		return nil
	}

	if err := env.Runner.WriteFile(ctx, stagePath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("staging rule set: %w", err)
	}
	defer env.Runner.Run(ctx, "rm", "-f", stagePath) //nolint:errcheck

	switch restoreCmd {
	case "nft":
		if _, err := env.Runner.Run(ctx, "nft", "-f", stagePath); err != nil {
			return fmt.Errorf("loading nftables rules: %w", err)
		}
	case "iptables-restore":
		if _, err := env.Runner.Run(ctx, "iptables-restore", stagePath); err != nil {
			return fmt.Errorf("loading iptables rules: %w", err)
		}
	}
	return nil
}

// currentRules reads the target's live rule set in the same normalized
// shape the collector captures, for already-applied detection.
func (a *FirewallApplier) currentRules(ctx context.Context, env *Env, frontend string) []string {
	var out string
	var err error
	switch frontend {
	case "nftables":
		out, err = env.Runner.Run(ctx, "nft", "list", "ruleset")
	case "iptables":
		out, err = env.Runner.Run(ctx, "iptables-save")
	}
	if err != nil {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
