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
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/syskeep/syskeep/pkg/logging"
)

const (
	name           = "syskeep"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Capture, report, and restore host configuration",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Description: `syskeep captures a host's configuration as an immutable snapshot
directory, renders snapshots as reports, diffs snapshots against each
other, and restores a snapshot onto a host with mandatory backups.`,
		Commands: []*cli.Command{
			collectCmd(),
			reportCmd(),
			restoreCmd(),
			diffCmd(),
			fleetCmd(),
		},
	}
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup initializes logging from the command's flags and loads the config
// file. Every command action calls it first.
func setup(cmd *cli.Command) (*Config, error) {
	logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"command", cmd.Name)
	return cfg, nil
}
