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

// packageManager describes one probe for an installed-package inventory.
type packageManager struct {
	// name doubles as the section name in the record.
	name string
	cmd  string
	args []string
	// keyValue parses "name version" pairs; otherwise output is kept as
	// sorted raw lines.
	keyValue bool
}

// packageManagers lists every package inventory probed, system managers
// first, then language and universal formats. A manager missing from the
// host is silently omitted from the record.
var packageManagers = []packageManager{
	{name: "dpkg", cmd: "dpkg-query", args: []string{"-W", "-f", "${Package} ${Version}\n"}, keyValue: true},
	{name: "rpm", cmd: "rpm", args: []string{"-qa", "--qf", "%{NAME} %{VERSION}-%{RELEASE}\n"}, keyValue: true},
	{name: "apk", cmd: "apk", args: []string{"info", "-v"}},
	{name: "pip", cmd: "pip3", args: []string{"list", "--format", "freeze", "--disable-pip-version-check"}},
	{name: "gem", cmd: "gem", args: []string{"list", "--local", "--no-verbose"}},
	{name: "npm", cmd: "npm", args: []string{"ls", "-g", "--depth=0", "--parseable"}},
	{name: "snap", cmd: "snap", args: []string{"list"}},
	{name: "flatpak", cmd: "flatpak", args: []string{"list", "--columns=application,version"}},
}

// PackagesCollector inventories installed packages across every package
// manager present on the host.
type PackagesCollector struct{}

func (c *PackagesCollector) Category() record.Category { return record.CategoryPackages }
func (c *PackagesCollector) Dangerous() bool           { return false }

// Collect runs each package manager probe independently. A host with no
// recognized package manager yields a skipped record; probe errors on
// present managers degrade the record to partial.
func (c *PackagesCollector) Collect(ctx context.Context, r runner.Runner) (*record.Record, error) {
	slog.Info("collecting installed packages")

	rec := record.NewRecord(record.CategoryPackages)
	var problems []string
	found := 0

	for _, pm := range packageManagers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !r.HasCommand(ctx, pm.cmd) {
			continue
		}
		found++

		out, err := r.Run(ctx, pm.cmd, pm.args...)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", pm.name, err))
			continue
		}

		sec := record.Section{Name: pm.name}
		if pm.keyValue {
			sec.Data = parseNameVersion(out)
		} else {
			sec.Lines = sortedLines(out)
		}
		rec.Sections = append(rec.Sections, sec)
	}

	if found == 0 {
		return record.NewSkipped(record.CategoryPackages, "no recognized package manager on host"), nil
	}
	if len(problems) > 0 {
		rec.Status = record.StatusPartial
		rec.Error = strings.Join(problems, "; ")
	}

	slog.Debug("collected package inventories", slog.Int("managers", len(rec.Sections)))
	return rec, nil
}

// parseNameVersion parses "name version" per line into a map.
func parseNameVersion(out string) map[string]string {
	result := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, ver, ok := strings.Cut(line, " ")
		if !ok {
			result[line] = ""
			continue
		}
		result[name] = strings.TrimSpace(ver)
	}
	return result
}
