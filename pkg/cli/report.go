/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/syskeep/syskeep/pkg/report"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:                  "report",
		EnableShellCompletion: true,
		Usage:                 "Render a snapshot as a human-readable report",
		Description: `Render a stored snapshot as a markdown or HTML report: capture summary,
per-category details, archived files, and a restoration checklist telling
apart what restore would replay, what it reports only, and what needs a
dangerous-category opt-in.

# Examples

Report the latest snapshot of a host to stdout:
  syskeep report --host web-01

Render a specific snapshot as HTML:
  syskeep report --snapshot web-01_20250115-140000 --format html --output web-01.html`,
		Flags: []cli.Flag{
			snapshotFlag,
			hostFlag,
			outputRootFlag,
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Value:   string(report.FormatMarkdown),
				Usage:   "Report format (markdown or html)",
			},
			outputFlag,
			configFlag,
			logLevelFlag,
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			format := report.Format(cmd.String("format"))
			if format.IsUnknown() {
				return fmt.Errorf("unknown report format: %q", format)
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

			var w io.Writer = os.Stdout
			if path := cmd.String("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("creating report file: %w", err)
				}
				defer f.Close() //nolint:errcheck
				w = f
			}
			return report.Render(w, snap, format)
		},
	}
}
