/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package restorer applies stored snapshots back onto hosts.
package restorer

import (
	"time"

	"github.com/google/uuid"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

// StepState is one stage in a restoration step's lifecycle.
type StepState string

const (
	StatePending    StepState = "PENDING"
	StateValidating StepState = "VALIDATING"
	StateBackingUp  StepState = "BACKING_UP"
	StateApplying   StepState = "APPLYING"
	StateDone       StepState = "DONE"
	StateFailed     StepState = "FAILED"
	StateSkipped    StepState = "SKIPPED"
)

// StepOutcome classifies how a restoration step ended.
type StepOutcome string

const (
	// OutcomeApplied means the step changed the host.
	OutcomeApplied StepOutcome = "applied"
	// OutcomeUnchanged means the host already matched the snapshot.
	OutcomeUnchanged StepOutcome = "unchanged"
	// OutcomeSkipped means the step did not run: category disabled, not
	// usable, or dangerous without opt-in.
	OutcomeSkipped StepOutcome = "skipped"
	// OutcomeFailed means the step broke. Isolated per category.
	OutcomeFailed StepOutcome = "failed"
)

// Step records the restoration of one category: the states it moved
// through, its outcome, and what it changed.
type Step struct {
	Category record.Category `json:"category" yaml:"category"`

	// States is the ordered list of lifecycle states the step passed.
	States []StepState `json:"states" yaml:"states"`

	Outcome StepOutcome `json:"outcome" yaml:"outcome"`

	// Detail explains skips and failures.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`

	// Changed lists the mutations performed, or planned under dry run.
	Changed []string `json:"changed,omitempty" yaml:"changed,omitempty"`

	DurationMS int64 `json:"duration_ms" yaml:"duration_ms"`
}

// transition appends the next lifecycle state.
func (s *Step) transition(state StepState) {
	s.States = append(s.States, state)
}

// Summary aggregates a restoration run.
type Summary struct {
	Applied   int    `json:"applied" yaml:"applied"`
	Unchanged int    `json:"unchanged" yaml:"unchanged"`
	Skipped   int    `json:"skipped" yaml:"skipped"`
	Failed    int    `json:"failed" yaml:"failed"`
	Outcome   string `json:"outcome" yaml:"outcome"` // success, partial, or failure
	Duration  string `json:"duration" yaml:"duration"`
}

// StepLog is the durable record of one restoration run.
type StepLog struct {
	snapshot.Header `json:",inline" yaml:",inline"`

	// RunID uniquely identifies this restoration run. Backups for the run
	// live under a directory of the same name.
	RunID string `json:"run_id" yaml:"run_id"`

	// Host is the restoration target's hostname.
	Host string `json:"host" yaml:"host"`

	// SnapshotDir is the snapshot the run restored from.
	SnapshotDir string `json:"snapshot_dir" yaml:"snapshot_dir"`

	// DryRun marks a simulation that performed no mutations.
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	Steps []*Step `json:"steps" yaml:"steps"`

	Summary Summary `json:"summary" yaml:"summary"`
}

// NewStepLog creates a StepLog with a fresh run ID.
func NewStepLog(host, snapshotDir, version string, dryRun bool) *StepLog {
	l := &StepLog{
		RunID:       uuid.NewString(),
		Host:        host,
		SnapshotDir: snapshotDir,
		DryRun:      dryRun,
	}
	l.Init(snapshot.KindStepLog, version)
	return l
}

// Finish computes the run summary. The run is a success when nothing
// failed, partial when some categories failed but others applied, and a
// failure when nothing got through.
func (l *StepLog) Finish(start time.Time) {
	s := Summary{Duration: time.Since(start).Round(time.Millisecond).String()}
	for _, step := range l.Steps {
		switch step.Outcome {
		case OutcomeApplied:
			s.Applied++
		case OutcomeUnchanged:
			s.Unchanged++
		case OutcomeSkipped:
			s.Skipped++
		case OutcomeFailed:
			s.Failed++
		}
	}

	switch {
	case s.Failed == 0:
		s.Outcome = "success"
	case s.Applied > 0 || s.Unchanged > 0:
		s.Outcome = "partial"
	default:
		s.Outcome = "failure"
	}

	l.Summary = s
}

// Step returns the step for a category, or nil.
func (l *StepLog) Step(c record.Category) *Step {
	for _, s := range l.Steps {
		if s.Category == c {
			return s
		}
	}
	return nil
}
