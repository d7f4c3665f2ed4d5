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
	fstabPath  = "/etc/fstab"
	mountsPath = "/proc/mounts"
	mdstatPath = "/proc/mdstat"
)

// FilesystemCollector captures partition layout, mounts, and LVM/RAID
// topology where present.
type FilesystemCollector struct{}

func (c *FilesystemCollector) Category() record.Category { return record.CategoryFilesystem }
func (c *FilesystemCollector) Dangerous() bool           { return false }

// Collect gathers filesystem layout. LVM and RAID are optional subsystems;
// their absence leaves the record ok, not partial.
func (c *FilesystemCollector) Collect(ctx context.Context, r runner.Runner) (*record.Record, error) {
	slog.Info("collecting filesystem layout")

	rec := record.NewRecord(record.CategoryFilesystem)
	var problems []string

	if data, err := r.ReadFile(ctx, fstabPath); err == nil {
		var lines []string
		for _, line := range splitLines(string(data)) {
			if !strings.HasPrefix(line, "#") {
				lines = append(lines, line)
			}
		}
		rec.Sections = append(rec.Sections, record.Section{Name: "fstab", Lines: lines})
	} else {
		problems = append(problems, fmt.Sprintf("fstab: %v", err))
	}

	if data, err := r.ReadFile(ctx, mountsPath); err == nil {
		var lines []string
		for _, line := range splitLines(string(data)) {
			// Skip kernel-virtual filesystems; they churn between boots.
			if strings.HasPrefix(line, "/dev/") || strings.HasPrefix(line, "UUID=") {
				lines = append(lines, line)
			}
		}
		rec.Sections = append(rec.Sections, record.Section{Name: "mounts", Lines: lines})
	} else {
		problems = append(problems, fmt.Sprintf("mounts: %v", err))
	}

	if r.HasCommand(ctx, "lsblk") {
		if out, err := r.Run(ctx, "lsblk", "-rno", "NAME,TYPE,SIZE,MOUNTPOINT"); err == nil {
			rec.Sections = append(rec.Sections, record.Section{Name: "block_devices", Lines: splitLines(out)})
		} else {
			problems = append(problems, fmt.Sprintf("lsblk: %v", err))
		}
	}

	if r.HasCommand(ctx, "pvs") {
		lvm := map[string]string{}
		for name, args := range map[string][]string{
			"pvs": {"--noheadings", "-o", "pv_name,vg_name,pv_size"},
			"vgs": {"--noheadings", "-o", "vg_name,vg_size,vg_free"},
			"lvs": {"--noheadings", "-o", "lv_name,vg_name,lv_size"},
		} {
			if out, err := r.Run(ctx, name, args...); err == nil {
				lvm[name] = strings.Join(sortedLines(out), "; ")
			}
		}
		if len(lvm) > 0 {
			rec.Sections = append(rec.Sections, record.Section{Name: "lvm", Data: lvm})
		}
	}

	if exists, _ := r.FileExists(ctx, mdstatPath); exists {
		if data, err := r.ReadFile(ctx, mdstatPath); err == nil {
			rec.Sections = append(rec.Sections, record.Section{Name: "raid", Lines: splitLines(string(data))})
		}
	}

	if len(problems) > 0 {
		rec.Status = record.StatusPartial
		rec.Error = strings.Join(problems, "; ")
	}

	return rec, nil
}
