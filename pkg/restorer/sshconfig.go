/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/syskeep/syskeep/pkg/collector/file"
	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

const sshdConfigTarget = "/etc/ssh/sshd_config"

// SSHConfigApplier restores the archived sshd_config. It restores
// configuration only: host keys and authorized_keys were captured as
// fingerprints and have nothing to restore from.
type SSHConfigApplier struct{}

func (a *SSHConfigApplier) Category() record.Category { return record.CategorySSHConfig }
func (a *SSHConfigApplier) Dangerous() bool           { return false }

func (a *SSHConfigApplier) Apply(ctx context.Context, env *Env, rec *record.Record) error {
	archived, err := archivedContent(env.SnapshotDir, "etc_ssh_sshd_config")
	if err != nil {
		// Snapshot carries parsed sshd_config values but no verbatim
		// copy; nothing faithful to write back.
		return ErrNotReplayable
	}

	if current, err := env.Runner.ReadFile(ctx, sshdConfigTarget); err == nil {
		if file.Checksum(current) == file.Checksum(archived) {
			return nil
		}
	}

	// A bad sshd_config locks everyone out. Validate the candidate on the
	// target before swapping it in.
	if !env.DryRun && env.Runner.HasCommand(ctx, "sshd") {
		candidate := "/tmp/syskeep-sshd-config-candidate"
		if err := env.Runner.WriteFile(ctx, candidate, archived, 0o600); err != nil {
			return fmt.Errorf("staging sshd_config candidate: %w", err)
		}
		_, verr := env.Runner.Run(ctx, "sshd", "-t", "-f", candidate)
		if _, err := env.Runner.Run(ctx, "rm", "-f", candidate); err != nil {
			return fmt.Errorf("removing sshd_config candidate: %w", err)
		}
		if verr != nil {
			return fmt.Errorf("archived sshd_config failed validation: %w", verr)
		}
	}

	return env.WriteFile(ctx, sshdConfigTarget, archived, 0o600)
}

// archivedContent reads one archived config-file copy from a snapshot.
func archivedContent(snapshotDir, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(snapshotDir, snapshot.ConfigFilesDirName, name))
}
