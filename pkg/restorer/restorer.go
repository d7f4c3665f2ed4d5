/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	serrors "github.com/syskeep/syskeep/pkg/errors"
	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
	"github.com/syskeep/syskeep/pkg/serializer"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

// StepLogFileName is the step log written into the run's backup directory.
const StepLogFileName = "step_log.yaml"

// Restorer applies a stored snapshot onto a target host according to a
// Plan. Categories run in RestoreOrder; each is isolated, so one failing
// category never stops the ones after it.
type Restorer struct {
	// Version is stamped into the step log header.
	Version string

	// Appliers overrides the default applier set. Nil means Appliers().
	Appliers []Applier
}

// Restore runs the plan. The returned StepLog is complete even when the
// run was degraded; the error is non-nil only when the run could not
// start at all (bad plan, unusable snapshot directory, backup setup).
func (rst *Restorer) Restore(ctx context.Context, r runner.Runner, snap *snapshot.Snapshot, snapshotDir string, plan *Plan) (*StepLog, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		restoreDuration.Observe(time.Since(start).Seconds())
	}()

	hostname, err := r.Hostname(ctx)
	if err != nil {
		return nil, fmt.Errorf("identifying target: %w", err)
	}

	log := NewStepLog(hostname, snapshotDir, rst.Version, plan.DryRun)
	slog.Info("starting restoration", "host", hostname, "snapshot", snapshotDir,
		"run_id", log.RunID, "plan", plan.String())

	var backups *BackupSet
	if plan.BackupExisting && !plan.DryRun {
		backups, err = NewBackupSet(plan.BackupDir, log.RunID)
		if err != nil {
			return nil, err
		}
	}

	appliers := rst.Appliers
	if appliers == nil {
		appliers = Appliers()
	}

	for _, applier := range appliers {
		step := rst.runStep(ctx, applier, r, snap, snapshotDir, plan, backups)
		log.Steps = append(log.Steps, step)
		restoreStepOutcomes.WithLabelValues(step.Category.String(), string(step.Outcome)).Inc()
	}

	log.Finish(start)
	restoreRunsTotal.WithLabelValues(log.Summary.Outcome).Inc()
	if backups != nil {
		restoreBackupsTotal.Add(float64(len(backups.Records())))
		if err := rst.writeStepLog(ctx, backups.Dir, log); err != nil {
			slog.Error("persisting step log failed", "error", err)
		}
	}

	slog.Info("restoration complete", "host", hostname, "run_id", log.RunID,
		"outcome", log.Summary.Outcome, "applied", log.Summary.Applied,
		"unchanged", log.Summary.Unchanged, "skipped", log.Summary.Skipped,
		"failed", log.Summary.Failed, "duration", log.Summary.Duration)
	return log, nil
}

// runStep restores one category through its lifecycle states. All failure
// modes end in the step, never in an error that stops the run.
func (rst *Restorer) runStep(ctx context.Context, applier Applier, r runner.Runner,
	snap *snapshot.Snapshot, snapshotDir string, plan *Plan, backups *BackupSet) *Step {

	category := applier.Category()
	step := &Step{Category: category, States: []StepState{StatePending}}
	stepStart := time.Now()
	defer func() {
		step.DurationMS = time.Since(stepStart).Milliseconds()
	}()

	skip := func(detail string) *Step {
		step.transition(StateSkipped)
		step.Outcome = OutcomeSkipped
		step.Detail = detail
		slog.Info("restore step skipped", "category", category, "detail", detail)
		return step
	}

	if !plan.Enabled(category, applier.Dangerous()) {
		if applier.Dangerous() {
			return skip("dangerous category, not enabled in plan")
		}
		return skip("disabled in plan")
	}

	step.transition(StateValidating)
	rec := snap.Record(category)
	switch {
	case rec == nil:
		return skip("snapshot has no record for this category")
	case !rec.Enabled:
		return skip("category was disabled at capture time")
	case rec.Status == record.StatusSkipped:
		return skip(fmt.Sprintf("category was skipped at capture time: %s", rec.Error))
	case !rec.Status.IsUsable():
		// A capture-time failure is not a restore failure. The step is
		// skipped, loudly, and the run outcome reflects only what the
		// restore itself did.
		step.transition(StateSkipped)
		step.Outcome = OutcomeSkipped
		step.Detail = serrors.Newf(serrors.ErrCodeValidation,
			"capture failed, record unusable: %s", rec.Error).Error()
		slog.Warn("restore step skipped, capture failed", "category", category, "detail", step.Detail)
		return step
	}

	env := &Env{
		Runner:      r,
		SnapshotDir: snapshotDir,
		DryRun:      plan.DryRun,
		Backups:     backups,
	}

	if backups != nil {
		step.transition(StateBackingUp)
	}
	step.transition(StateApplying)

	err := applier.Apply(ctx, env, rec)
	step.Changed = env.Changed()

	switch {
	case errors.Is(err, ErrNotReplayable):
		return skip(err.Error())
	case err != nil:
		step.transition(StateFailed)
		step.Outcome = OutcomeFailed
		step.Detail = serrors.Wrap(serrors.ErrCodeApply, category.String(), err).Error()
		slog.Error("restore step failed", "category", category, "error", err)
	case len(step.Changed) == 0:
		step.transition(StateDone)
		step.Outcome = OutcomeUnchanged
		slog.Info("restore step unchanged", "category", category)
	default:
		step.transition(StateDone)
		step.Outcome = OutcomeApplied
		slog.Info("restore step applied", "category", category, "changes", len(step.Changed))
	}
	return step
}

func (rst *Restorer) writeStepLog(ctx context.Context, dir string, log *StepLog) error {
	f, err := os.Create(filepath.Join(dir, StepLogFileName))
	if err != nil {
		return err
	}
	w := serializer.NewWriter(serializer.FormatYAML, f)
	if err := w.Serialize(ctx, log); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
