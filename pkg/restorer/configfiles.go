/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syskeep/syskeep/pkg/collector/file"
	"github.com/syskeep/syskeep/pkg/record"
)

// ConfigFilesApplier copies archived config files back to their source
// paths. A target file whose checksum already matches is left untouched.
type ConfigFilesApplier struct{}

func (a *ConfigFilesApplier) Category() record.Category { return record.CategoryConfigFiles }
func (a *ConfigFilesApplier) Dangerous() bool           { return false }

func (a *ConfigFilesApplier) Apply(ctx context.Context, env *Env, rec *record.Record) error {
	for _, af := range rec.Files {
		data, err := archivedContent(env.SnapshotDir, af.Name)
		if err != nil {
			return fmt.Errorf("reading archived copy %s: %w", af.Name, err)
		}
		if got := file.Checksum(data); got != af.Checksum {
			return fmt.Errorf("archived copy %s does not match its recorded checksum", af.Name)
		}

		if current, err := env.Runner.ReadFile(ctx, af.Source); err == nil {
			if file.Checksum(current) == af.Checksum {
				slog.Debug("config file already matches snapshot", "path", af.Source)
				continue
			}
		}

		if err := env.WriteFile(ctx, af.Source, data, 0o644); err != nil {
			return fmt.Errorf("restoring %s: %w", af.Source, err)
		}
	}
	return nil
}
