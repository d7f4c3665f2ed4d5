/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
	"github.com/syskeep/syskeep/pkg/snapshot"
	"github.com/syskeep/syskeep/pkg/snapshotter"
)

func collectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "collect",
		EnableShellCompletion: true,
		Usage:                 "Capture a configuration snapshot of a host",
		Description: fmt.Sprintf(`Capture a configuration snapshot of the local host or a remote target.

Categories probe in a fixed order: %s.
Each category is isolated: a failing probe is recorded as failed and the
run continues. Absent subsystems are recorded as skipped.

The snapshot is written as an immutable directory under --output-root,
named <hostname>_<timestamp>. Verbatim config-file copies land in its
config_files/ subdirectory with sha256 checksums.

# Examples

Capture the local host:
  syskeep collect

Capture a remote host over SSH:
  syskeep collect --target admin@web-01 --identity ~/.ssh/id_ed25519

Skip slow or irrelevant categories:
  syskeep collect --skip installed_software --skip filesystem`, categoryList()),
		Flags: []cli.Flag{
			targetFlag,
			identityFlag,
			knownHostsFlag,
			insecureHostKeyFlag,
			outputRootFlag,
			&cli.StringSliceFlag{
				Name:  "skip",
				Usage: "Category to skip (repeatable)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: snapshotter.DefaultProbeTimeout,
				Usage: "Per-category probe timeout",
			},
			&cli.StringSliceFlag{
				Name:  "config-file",
				Usage: "Extra file for the config-file archive allow-list (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "service",
				Usage: "Limit the services capture to the named units (repeatable)",
			},
			metricsTextfileFlag,
			configFlag,
			logLevelFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			disabled, err := parseCategories(append(append([]string{}, cfg.Skip...), cmd.StringSlice("skip")...))
			if err != nil {
				return err
			}

			target, err := buildTarget(cmd, cfg)
			if err != nil {
				return err
			}
			r, err := runner.New(ctx, target)
			if err != nil {
				return err
			}
			defer r.Close() //nolint:errcheck

			hs := &snapshotter.HostSnapshotter{
				Version:      version,
				Store:        snapshot.NewStore(storeRoot(cmd, cfg)),
				ProbeTimeout: cmd.Duration("timeout"),
				Disabled:     disabled,
				ConfigPaths:  append(append([]string{}, cfg.ConfigFiles...), cmd.StringSlice("config-file")...),
				Services:     append(append([]string{}, cfg.Services...), cmd.StringSlice("service")...),
			}

			snap, dir, err := hs.Capture(ctx, r)
			if err != nil {
				return err
			}

			failed := 0
			for c, status := range snap.Statuses() {
				if status == record.StatusFailed {
					failed++
					slog.Warn("category capture failed", "category", c)
				}
			}
			slog.Info("snapshot written",
				"host", snap.Hostname,
				"dir", dir,
				"categories", len(snap.Records),
				"failed", failed)

			if err := writeMetricsTextfile(cmd); err != nil {
				return err
			}

			fmt.Println(dir)
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d categories failed", failed, len(snap.Records)), 2)
			}
			return nil
		},
	}
}
