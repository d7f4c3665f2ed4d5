/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
)

// ErrNotReplayable marks a record whose captured form cannot be applied
// mechanically (status-command output, inventories without an installer).
// The restorer turns it into a skipped step, not a failure.
var ErrNotReplayable = errors.New("captured data is not mechanically replayable")

// Applier restores one category from its captured record.
type Applier interface {
	Category() record.Category

	// Dangerous appliers change connectivity or running workloads and
	// only run with an explicit plan toggle.
	Dangerous() bool

	// Apply reconciles the target toward the record through the Env. All
	// mutations must go through Env.WriteFile/Env.RunCmd so dry-run
	// purity and backup-before-mutate hold by construction.
	Apply(ctx context.Context, env *Env, rec *record.Record) error
}

// Env is the controlled surface appliers mutate through. In dry-run mode
// every mutation is recorded as a planned change and nothing executes.
type Env struct {
	Runner runner.Runner

	// SnapshotDir is the snapshot being restored, for archived file access.
	SnapshotDir string

	DryRun bool

	// Backups is nil when backups are disabled or the run is a dry run.
	Backups *BackupSet

	changed []string
}

// Changed returns the mutations performed, or planned under dry run.
func (e *Env) Changed() []string {
	return e.changed
}

// note records a mutation that went through a mechanism Env cannot wrap,
// such as a systemd D-Bus call.
func (e *Env) note(desc string) {
	e.changed = append(e.changed, desc)
}

// WriteFile writes a file on the target, backing up any existing content
// first. Under dry run the write is recorded and skipped.
func (e *Env) WriteFile(ctx context.Context, path string, data []byte, mode fs.FileMode) error {
	e.changed = append(e.changed, fmt.Sprintf("write %s (%d bytes)", path, len(data)))
	if e.DryRun {
		return nil
	}
	if e.Backups != nil {
		if _, err := e.Backups.Backup(ctx, e.Runner, path); err != nil {
			return err
		}
	}
	return e.Runner.WriteFile(ctx, path, data, mode)
}

// RunCmd executes a mutating command on the target. Under dry run the
// command is recorded and skipped.
func (e *Env) RunCmd(ctx context.Context, name string, args ...string) (string, error) {
	e.changed = append(e.changed, commandString(name, args))
	if e.DryRun {
		return "", nil
	}
	return e.Runner.Run(ctx, name, args...)
}

func commandString(name string, args []string) string {
	out := "run " + name
	for _, a := range args {
		out += " " + a
	}
	return out
}

// Appliers returns one applier per restorable category, in restore order.
func Appliers() []Applier {
	return []Applier{
		&PackagesApplier{},
		&UsersGroupsApplier{},
		&SSHConfigApplier{},
		&ConfigFilesApplier{},
		&CronJobsApplier{},
		&NetworkApplier{},
		&FirewallApplier{},
		&ServicesApplier{},
	}
}
