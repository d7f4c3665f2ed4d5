/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/syskeep/syskeep/pkg/runner"
	"github.com/syskeep/syskeep/pkg/serializer"
	"github.com/syskeep/syskeep/pkg/snapshot"
	"github.com/syskeep/syskeep/pkg/snapshotter"
)

// Inventory is the fleet target list file.
type Inventory struct {
	Targets []runner.Target `yaml:"targets"`
}

func fleetCmd() *cli.Command {
	return &cli.Command{
		Name:  "fleet",
		Usage: "Operations across an inventory of hosts",
		Commands: []*cli.Command{
			fleetCollectCmd(),
		},
	}
}

func fleetCollectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "collect",
		EnableShellCompletion: true,
		Usage:                 "Capture snapshots across an inventory of hosts",
		Description: `Capture configuration snapshots of every host in an inventory file.
Hosts run concurrently up to --concurrency; the categories within one
host still probe sequentially. A failing host never stops the others.

# Inventory file

  targets:
    - host: web-01
      user: admin
    - host: db-01.internal
      user: admin
      port: 2222
      identityFile: /etc/syskeep/db-key

Targets without an identityFile inherit the SSH defaults from --identity
or the config file.

# Examples

  syskeep fleet collect --inventory hosts.yaml --concurrency 8 --connect-rate 2`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "inventory",
				Required: true,
				Usage:    "YAML inventory file listing the targets",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Value: snapshotter.DefaultFleetConcurrency,
				Usage: "Maximum hosts captured in parallel",
			},
			&cli.FloatFlag{
				Name:  "connect-rate",
				Usage: "New SSH connections per second (0 disables throttling)",
			},
			identityFlag,
			knownHostsFlag,
			insecureHostKeyFlag,
			outputRootFlag,
			&cli.DurationFlag{
				Name:  "timeout",
				Value: snapshotter.DefaultProbeTimeout,
				Usage: "Per-category probe timeout",
			},
			&cli.StringSliceFlag{
				Name:  "skip",
				Usage: "Category to skip on every host (repeatable)",
			},
			metricsTextfileFlag,
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
			disabled, err := parseCategories(append(append([]string{}, cfg.Skip...), cmd.StringSlice("skip")...))
			if err != nil {
				return err
			}

			targets, err := loadInventory(cmd.String("inventory"), cmd, cfg)
			if err != nil {
				return err
			}

			fleet := &snapshotter.Fleet{
				Snapshotter: &snapshotter.HostSnapshotter{
					Version:      version,
					Store:        snapshot.NewStore(storeRoot(cmd, cfg)),
					ProbeTimeout: cmd.Duration("timeout"),
					Disabled:     disabled,
					ConfigPaths:  cfg.ConfigFiles,
					Services:     cfg.Services,
				},
				Concurrency: int(cmd.Int("concurrency")),
				ConnectRate: cmd.Float("connect-rate"),
			}

			results, err := fleet.Capture(ctx, targets)
			if err != nil {
				return err
			}

			summaries := make([]fleetHostSummary, 0, len(results))
			for _, res := range results {
				s := fleetHostSummary{Target: res.Target.String(), Dir: res.Dir}
				if res.Err != nil {
					s.Error = res.Err.Error()
					slog.Warn("host capture failed", "target", res.Target, "error", res.Err)
				}
				summaries = append(summaries, s)
			}

			w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer w.Close() //nolint:errcheck
			if err := w.Serialize(ctx, summaries); err != nil {
				return err
			}
			if err := writeMetricsTextfile(cmd); err != nil {
				return err
			}

			if failed := snapshotter.Failed(results); len(failed) > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d hosts failed", len(failed), len(results)), 2)
			}
			return nil
		},
	}
}

// fleetHostSummary is one host's row in the fleet collect output.
type fleetHostSummary struct {
	Target string `json:"target" yaml:"target"`
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// loadInventory reads the target list and fills per-target SSH settings
// left blank from the flags and config defaults.
func loadInventory(path string, cmd *cli.Command, cfg *Config) ([]runner.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory file: %w", err)
	}
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory file %s: %w", path, err)
	}
	if len(inv.Targets) == 0 {
		return nil, fmt.Errorf("inventory file %s lists no targets", path)
	}

	for i := range inv.Targets {
		t := &inv.Targets[i]
		if t.User == "" {
			t.User = cfg.SSH.User
		}
		if t.IdentityFile == "" {
			t.IdentityFile = firstNonEmpty(cmd.String("identity"), cfg.SSH.IdentityFile)
		}
		if t.KnownHostsFile == "" {
			t.KnownHostsFile = firstNonEmpty(cmd.String("known-hosts"), cfg.SSH.KnownHostsFile)
		}
		if cmd.Bool("insecure-host-key") || cfg.SSH.InsecureHostKey {
			t.InsecureHostKey = true
		}
	}
	return inv.Targets, nil
}
