/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/syskeep/syskeep/pkg/collector/file"
	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
)

// DefaultConfigPaths returns the built-in allow-list of configuration
// files archived verbatim. Only files on this list (plus any configured
// additions) are ever copied into a snapshot.
func DefaultConfigPaths() []string {
	return []string{
		"/etc/fstab",
		"/etc/hosts",
		"/etc/hostname",
		"/etc/resolv.conf",
		"/etc/ssh/sshd_config",
		"/etc/sudoers",
		"/etc/crontab",
		"/etc/environment",
		"/etc/sysctl.conf",
		"/etc/security/limits.conf",
		"/etc/logrotate.conf",
		"/etc/ntp.conf",
		"/etc/chrony/chrony.conf",
		"/etc/systemd/timesyncd.conf",
	}
}

// ConfigFilesCollector archives verbatim copies of allow-listed files
// into ArchiveDir and records their checksums. With no ArchiveDir set the
// category is skipped.
type ConfigFilesCollector struct {
	Paths      []string
	ArchiveDir string
}

func (c *ConfigFilesCollector) Category() record.Category { return record.CategoryConfigFiles }
func (c *ConfigFilesCollector) Dangerous() bool           { return false }

func (c *ConfigFilesCollector) Collect(ctx context.Context, r runner.Runner) (*record.Record, error) {
	slog.Info("archiving configuration files", "paths", len(c.Paths))

	if c.ArchiveDir == "" {
		return record.NewSkipped(record.CategoryConfigFiles, "no archive directory configured"), nil
	}

	arch := file.NewArchiver(c.ArchiveDir)
	rec := record.NewRecord(record.CategoryConfigFiles)
	var problems []string

	paths := append([]string{}, c.Paths...)
	sort.Strings(paths)
	for _, p := range paths {
		exists, err := r.FileExists(ctx, p)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", p, err))
			continue
		}
		if !exists {
			continue
		}
		af, err := arch.Archive(ctx, r, p)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", p, err))
			continue
		}
		rec.Files = append(rec.Files, *af)
	}

	if err := arch.WriteChecksums(rec.Files); err != nil {
		return nil, fmt.Errorf("writing checksums: %w", err)
	}

	if len(problems) > 0 {
		rec.Status = record.StatusPartial
		rec.Error = strings.Join(problems, "; ")
	}

	return rec, nil
}
