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

	"github.com/syskeep/syskeep/pkg/collector/file"
	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
)

const osReleasePath = "/etc/os-release"

// SystemInfoCollector captures host identity: OS release, kernel,
// architecture, and a hardware summary.
type SystemInfoCollector struct{}

func (c *SystemInfoCollector) Category() record.Category { return record.CategorySystemInfo }
func (c *SystemInfoCollector) Dangerous() bool           { return false }

// Collect gathers system identity data. Individual probe failures degrade
// the record to partial rather than failing the category.
func (c *SystemInfoCollector) Collect(ctx context.Context, r runner.Runner) (*record.Record, error) {
	slog.Info("collecting system identity")

	rec := record.NewRecord(record.CategorySystemInfo)
	var problems []string

	identity := map[string]string{}
	if hostname, err := r.Hostname(ctx); err == nil {
		identity["hostname"] = hostname
	} else {
		problems = append(problems, fmt.Sprintf("hostname: %v", err))
	}
	if kernel, err := r.Run(ctx, "uname", "-r"); err == nil {
		identity["kernel"] = strings.TrimSpace(kernel)
	} else {
		problems = append(problems, fmt.Sprintf("kernel: %v", err))
	}
	if arch, err := r.Run(ctx, "uname", "-m"); err == nil {
		identity["architecture"] = strings.TrimSpace(arch)
	}
	if virt, err := r.Run(ctx, "systemd-detect-virt"); err == nil {
		identity["virtualization"] = strings.TrimSpace(virt)
	}
	rec.Sections = append(rec.Sections, record.Section{Name: "identity", Data: identity})

	parser := file.NewParser(file.WithVTrimChars(`"`))
	if osRelease, err := parser.GetMap(ctx, r, osReleasePath); err == nil {
		rec.Sections = append(rec.Sections, record.Section{Name: "os_release", Data: osRelease})
	} else {
		problems = append(problems, fmt.Sprintf("os-release: %v", err))
	}

	hardware := map[string]string{}
	if cpus, err := r.Run(ctx, "nproc"); err == nil {
		hardware["cpus"] = strings.TrimSpace(cpus)
	}
	if meminfo, err := r.ReadFile(ctx, "/proc/meminfo"); err == nil {
		for _, line := range strings.Split(string(meminfo), "\n") {
			if k, v, ok := strings.Cut(line, ":"); ok && k == "MemTotal" {
				hardware["mem_total"] = strings.TrimSpace(v)
				break
			}
		}
	}
	if len(hardware) > 0 {
		rec.Sections = append(rec.Sections, record.Section{Name: "hardware", Data: hardware})
	}

	if len(problems) > 0 {
		rec.Status = record.StatusPartial
		rec.Error = strings.Join(problems, "; ")
	}

	return rec, nil
}
