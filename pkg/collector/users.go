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

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
)

const (
	passwdPath   = "/etc/passwd"
	groupPath    = "/etc/group"
	sudoersPath  = "/etc/sudoers"
	sudoersDPath = "/etc/sudoers.d"
)

// UsersGroupsCollector captures local accounts, groups, and sudo grants.
// Password hashes are never read; /etc/shadow stays untouched.
type UsersGroupsCollector struct{}

func (c *UsersGroupsCollector) Category() record.Category { return record.CategoryUsersGroups }
func (c *UsersGroupsCollector) Dangerous() bool           { return false }

// Collect parses passwd and group databases plus sudoers grants. Sudoers
// files are root-readable only; being unable to read them degrades the
// record to partial, not failed.
func (c *UsersGroupsCollector) Collect(ctx context.Context, r runner.Runner) (*record.Record, error) {
	slog.Info("collecting users and groups")

	rec := record.NewRecord(record.CategoryUsersGroups)
	var problems []string

	passwd, err := r.ReadFile(ctx, passwdPath)
	if err != nil {
		// Without passwd there is nothing usable in this category.
		return nil, fmt.Errorf("reading %s: %w", passwdPath, err)
	}
	users := make(map[string]string)
	for _, line := range strings.Split(string(passwd), "\n") {
		// name:x:uid:gid:gecos:home:shell
		fields := strings.Split(line, ":")
		if len(fields) != 7 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		users[fields[0]] = fmt.Sprintf("uid=%s gid=%s home=%s shell=%s",
			fields[2], fields[3], fields[5], fields[6])
	}
	rec.Sections = append(rec.Sections, record.Section{Name: "users", Data: users})

	if group, err := r.ReadFile(ctx, groupPath); err == nil {
		groups := make(map[string]string)
		for _, line := range strings.Split(string(group), "\n") {
			// name:x:gid:members
			fields := strings.Split(line, ":")
			if len(fields) != 4 || strings.HasPrefix(fields[0], "#") {
				continue
			}
			groups[fields[0]] = fmt.Sprintf("gid=%s members=%s", fields[2], fields[3])
		}
		rec.Sections = append(rec.Sections, record.Section{Name: "groups", Data: groups})
	} else {
		problems = append(problems, fmt.Sprintf("group: %v", err))
	}

	sudoers := c.collectSudoers(ctx, r, &problems)
	if len(sudoers) > 0 {
		rec.Sections = append(rec.Sections, record.Section{Name: "sudoers", Lines: sudoers})
	}

	if len(problems) > 0 {
		rec.Status = record.StatusPartial
		rec.Error = strings.Join(problems, "; ")
	}

	return rec, nil
}

func (c *UsersGroupsCollector) collectSudoers(ctx context.Context, r runner.Runner, problems *[]string) []string {
	var lines []string

	if data, err := r.ReadFile(ctx, sudoersPath); err == nil {
		for _, line := range splitLines(string(data)) {
			if !strings.HasPrefix(line, "#") {
				lines = append(lines, "sudoers: "+line)
			}
		}
	} else {
		*problems = append(*problems, fmt.Sprintf("sudoers: %v", err))
	}

	entries, err := r.ListDir(ctx, sudoersDPath)
	if err != nil {
		return lines
	}
	for _, name := range entries {
		data, err := r.ReadFile(ctx, path.Join(sudoersDPath, name))
		if err != nil {
			*problems = append(*problems, fmt.Sprintf("sudoers.d/%s: %v", name, err))
			continue
		}
		for _, line := range splitLines(string(data)) {
			if !strings.HasPrefix(line, "#") {
				lines = append(lines, name+": "+line)
			}
		}
	}

	return lines
}
