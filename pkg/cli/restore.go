/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/restorer"
	"github.com/syskeep/syskeep/pkg/runner"
	"github.com/syskeep/syskeep/pkg/serializer"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

// planToggles maps category flags to the categories they toggle. The
// first five are safe and restore by default; the last three are
// dangerous and only restore when their flag is given.
var planToggles = []struct {
	flag string
	cat  record.Category
}{
	{"packages", record.CategoryPackages},
	{"users", record.CategoryUsersGroups},
	{"ssh", record.CategorySSHConfig},
	{"config-files", record.CategoryConfigFiles},
	{"cron", record.CategoryCronJobs},
	{"network", record.CategoryNetwork},
	{"firewall", record.CategoryFirewall},
	{"services", record.CategoryServices},
}

func restoreCmd() *cli.Command {
	flags := []cli.Flag{
		snapshotFlag,
		hostFlag,
		outputRootFlag,
		targetFlag,
		identityFlag,
		knownHostsFlag,
		insecureHostKeyFlag,
		&cli.BoolFlag{Name: "dry-run", Usage: "Report every planned mutation without performing any"},
		&cli.BoolFlag{Name: "no-backup", Usage: "Skip pre-mutation backups (not recommended)"},
		&cli.StringFlag{
			Name:    "backup-dir",
			Usage:   "Directory for pre-mutation file backups",
			Sources: cli.EnvVars("SYSKEEP_BACKUP_DIR"),
		},
		&cli.BoolFlag{Name: "all-safe", Usage: "Restore every safe category (the default set)"},
		metricsTextfileFlag,
		outputFlag,
		formatFlag,
		configFlag,
		logLevelFlag,
	}
	for _, t := range planToggles {
		usage := fmt.Sprintf("Restore the %s category", t.cat)
		if restorer.Dangerous(t.cat) {
			usage += " (dangerous, off unless given)"
		}
		flags = append(flags, &cli.BoolFlag{Name: t.flag, Usage: usage})
	}

	return &cli.Command{
		Name:                  "restore",
		EnableShellCompletion: true,
		Usage:                 "Apply a stored snapshot to a host",
		Description: `Apply a stored snapshot to the local host or a remote target.

Categories restore in a fixed order: packages, users_groups, ssh_config,
config_files, cron_jobs, network, firewall, services. Each category is
isolated; a failure never stops the ones after it. Every file about to be
overwritten is copied into the backup directory first, and already-applied
categories are detected and left alone.

With no category flags the whole safe set restores. Naming one or more safe
categories restores exactly those; --all-safe selects the full safe set
again. The dangerous categories (network, firewall, services) can sever
connectivity or restart workloads, so they restore only with their explicit
flag. --dry-run reports the full mutation plan without touching anything.

The step log of the run is emitted via --output/--format and also written
into the backup directory.

# Examples

Dry-run the full safe set against the latest snapshot:
  syskeep restore --host web-01 --dry-run

Restore config files and cron only:
  syskeep restore --snapshot web-01_20250115-140000 --config-files --cron \
    --backup-dir /var/lib/syskeep/backups

Restore everything including the firewall:
  syskeep restore --host web-01 --all-safe --firewall \
    --backup-dir /var/lib/syskeep/backups`,
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			store := snapshot.NewStore(storeRoot(cmd, cfg))
			dir, err := resolveSnapshotDir(store, cmd)
			if err != nil {
				return err
			}
			snap, err := store.Load(dir)
			if err != nil {
				return err
			}

			plan := buildPlan(cmd, cfg)
			target, err := buildTarget(cmd, cfg)
			if err != nil {
				return err
			}
			r, err := runner.New(ctx, target)
			if err != nil {
				return err
			}
			defer r.Close() //nolint:errcheck

			rst := &restorer.Restorer{Version: version}
			stepLog, err := rst.Restore(ctx, r, snap, dir, plan)
			if err != nil {
				return err
			}

			w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer w.Close() //nolint:errcheck
			if err := w.Serialize(ctx, stepLog); err != nil {
				return err
			}
			if err := writeMetricsTextfile(cmd); err != nil {
				return err
			}

			switch stepLog.Summary.Outcome {
			case "success":
				return nil
			case "partial":
				return cli.Exit(fmt.Sprintf("partial restore: %d categories failed", stepLog.Summary.Failed), 2)
			default:
				return cli.Exit(fmt.Sprintf("restore failed: %d categories failed", stepLog.Summary.Failed), 1)
			}
		},
	}
}

// buildPlan assembles the restoration plan from the toggle flags and the
// config-file backup default. With no toggles the safe set restores and the
// dangerous set stays off. Naming any safe category selects exactly the named
// ones; --all-safe brings the full safe set back regardless.
func buildPlan(cmd *cli.Command, cfg *Config) *restorer.Plan {
	plan := restorer.NewPlan(firstNonEmpty(cmd.String("backup-dir"), cfg.BackupDir))
	plan.DryRun = cmd.Bool("dry-run")
	if cmd.Bool("no-backup") {
		plan.BackupExisting = false
	}

	selective := false
	for _, t := range planToggles {
		if cmd.IsSet(t.flag) {
			plan.Categories[t.cat] = cmd.Bool(t.flag)
			if cmd.Bool(t.flag) && !restorer.Dangerous(t.cat) {
				selective = true
			}
		}
	}
	switch {
	case cmd.Bool("all-safe"):
		for _, t := range planToggles {
			if !restorer.Dangerous(t.cat) && !cmd.IsSet(t.flag) {
				plan.Categories[t.cat] = true
			}
		}
	case selective:
		for _, t := range planToggles {
			if !restorer.Dangerous(t.cat) && !cmd.IsSet(t.flag) {
				plan.Categories[t.cat] = false
			}
		}
	}
	return plan
}
