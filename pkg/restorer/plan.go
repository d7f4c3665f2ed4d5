/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"fmt"

	serrors "github.com/syskeep/syskeep/pkg/errors"
	"github.com/syskeep/syskeep/pkg/record"
)

// RestoreOrder is the fixed order categories are restored in. Accounts
// come before the files that reference them, configuration before the
// services that read it, and the dangerous categories run last so an
// aborted run leaves the host reachable.
var RestoreOrder = []record.Category{
	record.CategoryPackages,
	record.CategoryUsersGroups,
	record.CategorySSHConfig,
	record.CategoryConfigFiles,
	record.CategoryCronJobs,
	record.CategoryNetwork,
	record.CategoryFirewall,
	record.CategoryServices,
}

// DangerousCategories are the categories whose restoration can sever
// connectivity or restart workloads. They never restore without an
// explicit plan toggle.
var DangerousCategories = map[record.Category]bool{
	record.CategoryNetwork:  true,
	record.CategoryFirewall: true,
	record.CategoryServices: true,
}

// Dangerous reports whether restoring the category requires an explicit
// opt-in.
func Dangerous(c record.Category) bool {
	return DangerousCategories[c]
}

// Plan selects what a restoration run covers and how it behaves.
type Plan struct {
	// Categories toggles restoration per category. A category absent from
	// the map follows its default: on for safe categories, off for
	// dangerous ones.
	Categories map[record.Category]bool `json:"categories,omitempty" yaml:"categories,omitempty"`

	// DryRun simulates the run: every planned mutation is reported and
	// none is performed.
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// BackupExisting copies every file about to be overwritten into the
	// backup directory first. On by default; NewPlan sets it.
	BackupExisting bool `json:"backup_existing" yaml:"backup_existing"`

	// BackupDir is where pre-mutation copies go. Required unless
	// BackupExisting is off or DryRun is on.
	BackupDir string `json:"backup_dir,omitempty" yaml:"backup_dir,omitempty"`
}

// NewPlan creates a Plan with the defaults: mutation allowed, backups on.
func NewPlan(backupDir string) *Plan {
	return &Plan{
		Categories:     make(map[record.Category]bool),
		BackupExisting: true,
		BackupDir:      backupDir,
	}
}

// Enabled reports whether the plan restores the given category. Dangerous
// categories default to off and require an explicit toggle.
func (p *Plan) Enabled(c record.Category, dangerous bool) bool {
	if v, ok := p.Categories[c]; ok {
		return v
	}
	return !dangerous
}

// Validate checks the plan is executable.
func (p *Plan) Validate() error {
	for c := range p.Categories {
		if !c.IsValid() {
			return serrors.Newf(serrors.ErrCodeInvalidRequest, "unknown category %q in plan", c)
		}
		if !restorable(c) && p.Categories[c] {
			return serrors.Newf(serrors.ErrCodeInvalidRequest,
				"category %s is report-only and cannot be restored", c)
		}
	}
	if p.BackupExisting && !p.DryRun && p.BackupDir == "" {
		return serrors.New(serrors.ErrCodeInvalidRequest,
			"backup_dir is required when backups are enabled")
	}
	return nil
}

func restorable(c record.Category) bool {
	for _, rc := range RestoreOrder {
		if rc == c {
			return true
		}
	}
	return false
}

// String summarizes the plan for logs.
func (p *Plan) String() string {
	return fmt.Sprintf("dry_run=%t backup=%t toggles=%d", p.DryRun, p.BackupExisting, len(p.Categories))
}
