/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sysdbus "github.com/coreos/go-systemd/v22/dbus"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
)

// ServicesApplier enables and starts the units the snapshot recorded as
// enabled and running. It never stops or disables anything: a unit the
// target runs beyond the snapshot is left alone.
type ServicesApplier struct{}

func (a *ServicesApplier) Category() record.Category { return record.CategoryServices }
func (a *ServicesApplier) Dangerous() bool           { return true }

func (a *ServicesApplier) Apply(ctx context.Context, env *Env, rec *record.Record) error {
	enabled := rec.Section("units_enabled")
	running := rec.Section("units_running")
	if enabled == nil && running == nil {
		return ErrNotReplayable
	}
	if !env.Runner.HasCommand(ctx, "systemctl") {
		return fmt.Errorf("snapshot holds systemd units but the target has no systemd")
	}

	var toEnable, toStart []string
	if enabled != nil {
		for _, unit := range sortedKeys(enabled.Data) {
			out, err := env.Runner.Run(ctx, "systemctl", "is-enabled", unit)
			if err != nil || strings.TrimSpace(out) != "enabled" {
				toEnable = append(toEnable, unit)
			}
		}
	}
	if running != nil {
		for _, unit := range sortedKeys(running.Data) {
			out, err := env.Runner.Run(ctx, "systemctl", "is-active", unit)
			if err != nil || strings.TrimSpace(out) != "active" {
				toStart = append(toStart, unit)
			}
		}
	}
	if len(toEnable) == 0 && len(toStart) == 0 {
		return nil
	}

	if _, local := env.Runner.(*runner.Local); local && !env.DryRun {
		if err := a.applyDBus(ctx, env, toEnable, toStart); err == nil {
			return nil
		} else {
			slog.Debug("systemd dbus unavailable, falling back to systemctl", "error", err)
		}
	}

	for _, unit := range toEnable {
		if _, err := env.RunCmd(ctx, "systemctl", "enable", unit); err != nil {
			return fmt.Errorf("enabling %s: %w", unit, err)
		}
	}
	for _, unit := range toStart {
		if _, err := env.RunCmd(ctx, "systemctl", "start", unit); err != nil {
			return fmt.Errorf("starting %s: %w", unit, err)
		}
	}
	return nil
}

// applyDBus enables and starts units over the systemd D-Bus API, waiting
// for each start job to finish.
func (a *ServicesApplier) applyDBus(ctx context.Context, env *Env, toEnable, toStart []string) error {
	conn, err := sysdbus.NewWithContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if len(toEnable) > 0 {
		if _, _, err := conn.EnableUnitFilesContext(ctx, toEnable, false, true); err != nil {
			return fmt.Errorf("enabling units: %w", err)
		}
		for _, unit := range toEnable {
			env.note("enable unit " + unit)
		}
	}

	for _, unit := range toStart {
		done := make(chan string, 1)
		if _, err := conn.StartUnitContext(ctx, unit, "replace", done); err != nil {
			return fmt.Errorf("starting %s: %w", unit, err)
		}
		select {
		case result := <-done:
			if result != "done" {
				return fmt.Errorf("starting %s: job result %s", unit, result)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
		env.note("start unit " + unit)
	}
	return nil
}
