/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package collector

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/syskeep/syskeep/pkg/collector/file"
	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
)

const (
	crontabPath  = "/etc/crontab"
	cronDropIns  = "/etc/cron.d"
	cronSpoolDir = "/var/spool/cron/crontabs"
	// RHEL family keeps user crontabs one level up.
	cronSpoolAlt = "/var/spool/cron"
)

// CronJobsCollector captures system and user crontabs plus systemd timers.
type CronJobsCollector struct{}

func (c *CronJobsCollector) Category() record.Category { return record.CategoryCronJobs }
func (c *CronJobsCollector) Dangerous() bool           { return false }

func (c *CronJobsCollector) Collect(ctx context.Context, r runner.Runner) (*record.Record, error) {
	slog.Info("collecting scheduled jobs")

	rec := record.NewRecord(record.CategoryCronJobs)
	parser := file.NewParser()

	if lines, err := parser.GetLines(ctx, r, crontabPath); err == nil {
		rec.Sections = append(rec.Sections, record.Section{Name: "crontab", Lines: lines})
	}

	if entries, err := r.ListDir(ctx, cronDropIns); err == nil {
		var dropIns []string
		for _, name := range entries {
			lines, err := parser.GetLines(ctx, r, path.Join(cronDropIns, name))
			if err != nil {
				continue
			}
			for _, line := range lines {
				dropIns = append(dropIns, name+": "+line)
			}
		}
		if len(dropIns) > 0 {
			rec.Sections = append(rec.Sections, record.Section{Name: "cron_d", Lines: dropIns})
		}
	}

	if userJobs := c.userCrontabs(ctx, r, parser); len(userJobs) > 0 {
		rec.Sections = append(rec.Sections, record.Section{Name: "user_crontabs", Lines: userJobs})
	}

	if r.HasCommand(ctx, "systemctl") {
		out, err := r.Run(ctx, "systemctl", "list-timers", "--all", "--no-legend", "--plain")
		if err == nil {
			rec.Sections = append(rec.Sections, record.Section{Name: "systemd_timers", Lines: timerUnits(out)})
		}
	}

	if len(rec.Sections) == 0 {
		return record.NewSkipped(record.CategoryCronJobs, "no cron or timer configuration found"), nil
	}
	return rec, nil
}

func (c *CronJobsCollector) userCrontabs(ctx context.Context, r runner.Runner, parser *file.Parser) []string {
	spool := cronSpoolDir
	entries, err := r.ListDir(ctx, spool)
	if err != nil {
		spool = cronSpoolAlt
		if entries, err = r.ListDir(ctx, spool); err != nil {
			return nil
		}
	}

	var jobs []string
	for _, user := range entries {
		lines, err := parser.GetLines(ctx, r, path.Join(spool, user))
		if err != nil {
			continue
		}
		for _, line := range lines {
			jobs = append(jobs, user+": "+line)
		}
	}
	return jobs
}

// timerUnits reduces list-timers output to its trailing "unit activates"
// columns, dropping the next/last trigger timestamps that differ between
// otherwise identical captures.
func timerUnits(out string) []string {
	var lines []string
	for _, line := range splitLines(out) {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s", fields[len(fields)-2], fields[len(fields)-1]))
	}
	return sortedLines(strings.Join(lines, "\n"))
}
