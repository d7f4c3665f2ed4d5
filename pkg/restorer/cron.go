/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/syskeep/syskeep/pkg/record"
)

// CronJobsApplier restores the system crontab and cron.d drop-ins. User
// spools and systemd timers were captured for reporting and are not
// rewritten; timers follow their units via the services category.
type CronJobsApplier struct{}

func (a *CronJobsApplier) Category() record.Category { return record.CategoryCronJobs }
func (a *CronJobsApplier) Dangerous() bool           { return false }

func (a *CronJobsApplier) Apply(ctx context.Context, env *Env, rec *record.Record) error {
	if sec := rec.Section("crontab"); sec != nil && len(sec.Lines) > 0 {
		if err := a.applyFile(ctx, env, "/etc/crontab", sec.Lines); err != nil {
			return err
		}
	}

	sec := rec.Section("cron_d")
	if sec == nil {
		return nil
	}

	// Lines are "<file>: <entry>"; regroup them per drop-in file.
	dropIns := make(map[string][]string)
	for _, line := range sec.Lines {
		name, entry, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		dropIns[name] = append(dropIns[name], entry)
	}

	names := make([]string, 0, len(dropIns))
	for name := range dropIns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := a.applyFile(ctx, env, "/etc/cron.d/"+name, dropIns[name]); err != nil {
			return err
		}
	}
	return nil
}

// applyFile writes the captured entries when the target's effective
// entries differ. Comparison ignores comments and blank lines, matching
// what was captured.
func (a *CronJobsApplier) applyFile(ctx context.Context, env *Env, path string, entries []string) error {
	if current, err := env.Runner.ReadFile(ctx, path); err == nil {
		if equalEntries(effectiveLines(string(current)), entries) {
			return nil
		}
	}

	content := strings.Join(entries, "\n") + "\n"
	if err := env.WriteFile(ctx, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("restoring %s: %w", path, err)
	}
	return nil
}

func effectiveLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func equalEntries(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
