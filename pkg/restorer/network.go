/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"context"
	"fmt"
	"strings"

	"github.com/syskeep/syskeep/pkg/record"
)

// NetworkApplier restores DNS and hosts configuration. Addresses and
// routes were captured as live kernel state, not configuration, and are
// never replayed: reprogramming interfaces over the connection being
// used to reprogram them severs it.
type NetworkApplier struct{}

func (a *NetworkApplier) Category() record.Category { return record.CategoryNetwork }
func (a *NetworkApplier) Dangerous() bool           { return true }

func (a *NetworkApplier) Apply(ctx context.Context, env *Env, rec *record.Record) error {
	applied := false

	if sec := rec.Section("dns"); sec != nil && len(sec.Lines) > 0 {
		if err := a.applyLines(ctx, env, "/etc/resolv.conf", sec.Lines); err != nil {
			return err
		}
		applied = true
	}
	if sec := rec.Section("hosts"); sec != nil && len(sec.Lines) > 0 {
		if err := a.applyLines(ctx, env, "/etc/hosts", sec.Lines); err != nil {
			return err
		}
		applied = true
	}

	if !applied {
		return ErrNotReplayable
	}
	return nil
}

func (a *NetworkApplier) applyLines(ctx context.Context, env *Env, path string, lines []string) error {
	if current, err := env.Runner.ReadFile(ctx, path); err == nil {
		if equalEntries(effectiveLines(string(current)), lines) {
			return nil
		}
	}
	content := strings.Join(lines, "\n") + "\n"
	if err := env.WriteFile(ctx, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("restoring %s: %w", path, err)
	}
	return nil
}
