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

	sysdbus "github.com/coreos/go-systemd/v22/dbus"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
)

// ServicesCollector captures systemd unit state, container runtime
// inventory, and orchestrator presence. Restoring service state changes
// what runs on the host, so the category is dangerous.
type ServicesCollector struct {
	// Services optionally narrows the enabled/running unit capture to an
	// allow-list. Empty means all units.
	Services []string
}

func (c *ServicesCollector) Category() record.Category { return record.CategoryServices }
func (c *ServicesCollector) Dangerous() bool           { return true }

// Collect gathers unit state over the systemd D-Bus API for local runs
// and over systemctl otherwise, then probes container runtimes.
func (c *ServicesCollector) Collect(ctx context.Context, r runner.Runner) (*record.Record, error) {
	slog.Info("collecting service state")

	if !r.HasCommand(ctx, "systemctl") {
		return record.NewSkipped(record.CategoryServices, "systemd not present"), nil
	}

	rec := record.NewRecord(record.CategoryServices)
	var problems []string

	enabled, running, err := c.unitState(ctx, r)
	if err != nil {
		problems = append(problems, fmt.Sprintf("units: %v", err))
	} else {
		rec.Sections = append(rec.Sections,
			record.Section{Name: "units_enabled", Data: enabled},
			record.Section{Name: "units_running", Data: running},
		)
	}

	for _, rt := range []string{"docker", "podman"} {
		if !r.HasCommand(ctx, rt) {
			continue
		}
		out, err := r.Run(ctx, rt, "ps", "--format", "{{.Names}} {{.Image}} {{.Status}}")
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", rt, err))
			continue
		}
		rec.Sections = append(rec.Sections, record.Section{Name: rt + "_containers", Lines: sortedLines(out)})
	}

	if r.HasCommand(ctx, "kubectl") {
		orch := map[string]string{}
		if out, err := r.Run(ctx, "kubectl", "version", "--client", "--output", "yaml"); err == nil {
			for _, line := range splitLines(out) {
				if strings.HasPrefix(strings.TrimSpace(line), "gitVersion:") {
					orch["kubectl_version"] = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "gitVersion:"))
					break
				}
			}
		}
		if out, err := r.Run(ctx, "kubectl", "get", "nodes", "--no-headers", "-o", "custom-columns=NAME:.metadata.name,STATUS:.status.conditions[-1].type"); err == nil {
			for _, line := range sortedLines(out) {
				fields := strings.Fields(line)
				if len(fields) == 2 {
					orch["node_"+fields[0]] = fields[1]
				}
			}
		}
		if len(orch) > 0 {
			rec.Sections = append(rec.Sections, record.Section{Name: "orchestrator", Data: orch})
		}
	}

	if len(problems) > 0 {
		if len(rec.Sections) == 0 {
			return nil, fmt.Errorf("no service state collected: %s", strings.Join(problems, "; "))
		}
		rec.Status = record.StatusPartial
		rec.Error = strings.Join(problems, "; ")
	}

	return rec, nil
}

// unitState returns enabled unit files and running units as name->state
// maps, filtered by the allow-list when set.
func (c *ServicesCollector) unitState(ctx context.Context, r runner.Runner) (enabled, running map[string]string, err error) {
	if _, local := r.(*runner.Local); local {
		enabled, running, err = c.unitStateDBus(ctx)
		if err == nil {
			return enabled, running, nil
		}
		slog.Debug("systemd dbus unavailable, falling back to systemctl", "error", err)
	}
	return c.unitStateSystemctl(ctx, r)
}

func (c *ServicesCollector) unitStateDBus(ctx context.Context) (map[string]string, map[string]string, error) {
	conn, err := sysdbus.NewWithContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer conn.Close()

	enabled := map[string]string{}
	files, err := conn.ListUnitFilesContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range files {
		name := path.Base(f.Path)
		if !strings.HasSuffix(name, ".service") || f.Type != "enabled" {
			continue
		}
		if c.wanted(name) {
			enabled[name] = f.Type
		}
	}

	running := map[string]string{}
	units, err := conn.ListUnitsContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, u := range units {
		if !strings.HasSuffix(u.Name, ".service") || u.SubState != "running" {
			continue
		}
		if c.wanted(u.Name) {
			running[u.Name] = u.ActiveState + "/" + u.SubState
		}
	}

	return enabled, running, nil
}

func (c *ServicesCollector) unitStateSystemctl(ctx context.Context, r runner.Runner) (map[string]string, map[string]string, error) {
	out, err := r.Run(ctx, "systemctl", "list-unit-files", "--type=service", "--state=enabled", "--no-legend", "--plain")
	if err != nil {
		return nil, nil, err
	}
	enabled := map[string]string{}
	for _, line := range splitLines(out) {
		fields := strings.Fields(line)
		if len(fields) >= 2 && c.wanted(fields[0]) {
			enabled[fields[0]] = fields[1]
		}
	}

	out, err = r.Run(ctx, "systemctl", "list-units", "--type=service", "--state=running", "--no-legend", "--plain")
	if err != nil {
		return nil, nil, err
	}
	running := map[string]string{}
	for _, line := range splitLines(out) {
		fields := strings.Fields(line)
		if len(fields) >= 4 && c.wanted(fields[0]) {
			running[fields[0]] = fields[2] + "/" + fields[3]
		}
	}

	return enabled, running, nil
}

func (c *ServicesCollector) wanted(unit string) bool {
	if len(c.Services) == 0 {
		return true
	}
	name := strings.TrimSuffix(unit, ".service")
	for _, s := range c.Services {
		if s == name || s == unit {
			return true
		}
	}
	return false
}
