/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/serializer"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

// categoryDiff holds the differences of one category between two snapshots.
type categoryDiff struct {
	Category record.Category      `json:"category" yaml:"category"`
	// Only captures whether the category exists in just one of the two
	// snapshots ("from" or "to"); empty when both have it.
	Only     string               `json:"only,omitempty" yaml:"only,omitempty"`
	Sections []record.SectionDiff `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// diffResult is the serialized output of the diff command.
type diffResult struct {
	Host       string         `json:"host" yaml:"host"`
	From       string         `json:"from" yaml:"from"`
	To         string         `json:"to" yaml:"to"`
	Identical  bool           `json:"identical" yaml:"identical"`
	Categories []categoryDiff `json:"categories,omitempty" yaml:"categories,omitempty"`
}

func diffCmd() *cli.Command {
	return &cli.Command{
		Name:                  "diff",
		EnableShellCompletion: true,
		Usage:                 "Compare two snapshots of the same host",
		Description: `Compare two snapshots category by category and report what was added,
changed, or removed, treating --from as the baseline. Capture diagnostics
are excluded from the comparison: two captures of an unchanged host diff
clean even when probe error wording differs.

# Examples

Spot drift between yesterday's and today's capture:
  syskeep diff --from web-01_20250114-140000 --to web-01_20250115-140000

Machine-readable drift check:
  syskeep diff --from A --to B --format json --output drift.json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "from",
				Required: true,
				Usage:    "Baseline snapshot directory (absolute, or relative to --output-root)",
			},
			&cli.StringFlag{
				Name:     "to",
				Required: true,
				Usage:    "Snapshot directory to compare against the baseline",
			},
			outputRootFlag,
			outputFlag,
			formatFlag,
			configFlag,
			logLevelFlag,
		},
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
			from, err := store.Load(cmd.String("from"))
			if err != nil {
				return err
			}
			to, err := store.Load(cmd.String("to"))
			if err != nil {
				return err
			}
			if from.Hostname != to.Hostname {
				slog.Warn("comparing snapshots of different hosts",
					"from", from.Hostname, "to", to.Hostname)
			}

			result, err := diffSnapshots(from, to, cmd.String("from"), cmd.String("to"))
			if err != nil {
				return err
			}

			w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer w.Close() //nolint:errcheck
			return w.Serialize(ctx, result)
		},
	}
}

// diffSnapshots compares every category the two snapshots carry.
func diffSnapshots(from, to *snapshot.Snapshot, fromDir, toDir string) (*diffResult, error) {
	result := &diffResult{
		Host:      to.Hostname,
		From:      fromDir,
		To:        toDir,
		Identical: true,
	}

	for _, c := range record.Categories {
		oldRec, newRec := from.Record(c), to.Record(c)
		switch {
		case oldRec == nil && newRec == nil:
			continue
		case oldRec == nil:
			result.Categories = append(result.Categories, categoryDiff{Category: c, Only: "to"})
			result.Identical = false
			continue
		case newRec == nil:
			result.Categories = append(result.Categories, categoryDiff{Category: c, Only: "from"})
			result.Identical = false
			continue
		}

		diffs, err := record.Compare(oldRec, newRec)
		if err != nil {
			return nil, err
		}
		changed := make([]record.SectionDiff, 0, len(diffs))
		for _, d := range diffs {
			if !d.Empty() {
				changed = append(changed, d)
			}
		}
		if len(changed) > 0 {
			result.Categories = append(result.Categories, categoryDiff{Category: c, Sections: changed})
			result.Identical = false
		}
	}
	return result, nil
}
