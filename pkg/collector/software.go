/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package collector

import (
	"context"
	"log/slog"
	"strings"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
)

// softwareProbe describes one tool whose presence and version are worth
// reporting. Version output is reduced to its first line.
type softwareProbe struct {
	name string
	args []string
}

var softwareProbes = []softwareProbe{
	{name: "bash", args: []string{"--version"}},
	{name: "python3", args: []string{"--version"}},
	{name: "perl", args: []string{"-v"}},
	{name: "ruby", args: []string{"--version"}},
	{name: "node", args: []string{"--version"}},
	{name: "java", args: []string{"-version"}},
	{name: "go", args: []string{"version"}},
	{name: "gcc", args: []string{"--version"}},
	{name: "make", args: []string{"--version"}},
	{name: "git", args: []string{"--version"}},
	{name: "curl", args: []string{"--version"}},
	{name: "wget", args: []string{"--version"}},
	{name: "rsync", args: []string{"--version"}},
	{name: "docker", args: []string{"--version"}},
	{name: "podman", args: []string{"--version"}},
	{name: "kubectl", args: []string{"version", "--client", "--short"}},
	{name: "helm", args: []string{"version", "--short"}},
	{name: "terraform", args: []string{"version"}},
	{name: "ansible", args: []string{"--version"}},
	{name: "nginx", args: []string{"-v"}},
	{name: "apache2", args: []string{"-v"}},
	{name: "mysql", args: []string{"--version"}},
	{name: "psql", args: []string{"--version"}},
	{name: "redis-server", args: []string{"--version"}},
	{name: "sshd", args: []string{"-V"}},
}

// SoftwareCollector reports which well-known tools are installed and at
// what version. The inventory is informational and never restored.
type SoftwareCollector struct{}

func (c *SoftwareCollector) Category() record.Category { return record.CategoryInstalledSoftware }
func (c *SoftwareCollector) Dangerous() bool           { return false }

func (c *SoftwareCollector) Collect(ctx context.Context, r runner.Runner) (*record.Record, error) {
	slog.Info("collecting installed software versions")

	versions := map[string]string{}
	for _, probe := range softwareProbes {
		if !r.HasCommand(ctx, probe.name) {
			continue
		}
		out, err := r.Run(ctx, probe.name, probe.args...)
		if err != nil {
			// Some tools print their version and still exit non-zero
			// (sshd -V, older nginx -v). Keep whatever they printed.
			if out == "" {
				versions[probe.name] = "installed"
				continue
			}
		}
		versions[probe.name] = firstLine(out)
	}

	rec := record.NewRecord(record.CategoryInstalledSoftware)
	rec.Sections = append(rec.Sections, record.Section{Name: "versions", Data: versions})
	return rec, nil
}

func firstLine(out string) string {
	out = strings.TrimSpace(out)
	if idx := strings.IndexByte(out, '\n'); idx >= 0 {
		out = out[:idx]
	}
	return strings.TrimSpace(out)
}
