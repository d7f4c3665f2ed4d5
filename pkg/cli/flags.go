/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
	"github.com/syskeep/syskeep/pkg/serializer"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

// Flags shared across commands.
var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "Config file path (default: ./syskeep.yaml if present)",
		Sources: cli.EnvVars("SYSKEEP_CONFIG"),
	}

	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		Usage:   "Log level (debug, info, warn, error)",
		Sources: cli.EnvVars("LOG_LEVEL"),
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage: fmt.Sprintf("Output format (supported values: %s)",
			strings.Join(serializer.SupportedFormats(), ", ")),
	}

	outputRootFlag = &cli.StringFlag{
		Name:    "output-root",
		Value:   "./snapshots",
		Usage:   "Snapshot store root directory",
		Sources: cli.EnvVars("SYSKEEP_OUTPUT_ROOT"),
	}

	snapshotFlag = &cli.StringFlag{
		Name:    "snapshot",
		Aliases: []string{"f"},
		Usage:   "Snapshot directory (absolute, or relative to --output-root)",
	}

	hostFlag = &cli.StringFlag{
		Name:  "host",
		Usage: "Use the named host's most recent snapshot instead of --snapshot",
	}

	targetFlag = &cli.StringFlag{
		Name:  "target",
		Usage: "Target host as [user@]host[:port] (default: the local host)",
	}

	identityFlag = &cli.StringFlag{
		Name:    "identity",
		Aliases: []string{"i"},
		Usage:   "SSH private key path for remote targets",
		Sources: cli.EnvVars("SYSKEEP_SSH_IDENTITY"),
	}

	knownHostsFlag = &cli.StringFlag{
		Name:  "known-hosts",
		Usage: "known_hosts file for host key verification (default: ~/.ssh/known_hosts)",
	}

	insecureHostKeyFlag = &cli.BoolFlag{
		Name:  "insecure-host-key",
		Usage: "Skip SSH host key verification (test rigs only)",
	}
)

// parseOutputFormat validates the serializer format flag.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", f)
	}
	return f, nil
}

// buildTarget assembles the restoration or collection target from flags,
// falling back to config-file SSH defaults. An empty --target means the
// local host.
func buildTarget(cmd *cli.Command, cfg *Config) (runner.Target, error) {
	spec := cmd.String("target")
	if spec == "" {
		return runner.Target{}, nil
	}
	t, err := runner.ParseTarget(spec)
	if err != nil {
		return runner.Target{}, err
	}
	if t.User == "" {
		t.User = cfg.SSH.User
	}
	t.IdentityFile = firstNonEmpty(cmd.String("identity"), cfg.SSH.IdentityFile)
	t.KnownHostsFile = firstNonEmpty(cmd.String("known-hosts"), cfg.SSH.KnownHostsFile)
	t.InsecureHostKey = cmd.Bool("insecure-host-key") || cfg.SSH.InsecureHostKey
	return t, nil
}

// storeRoot resolves the snapshot store root: an explicit flag wins, then
// the config file, then the flag default.
func storeRoot(cmd *cli.Command, cfg *Config) string {
	if cmd.IsSet("output-root") || cfg.OutputRoot == "" {
		return cmd.String("output-root")
	}
	return cfg.OutputRoot
}

// resolveSnapshotDir turns --snapshot or --host into the snapshot
// directory path on disk.
func resolveSnapshotDir(store *snapshot.Store, cmd *cli.Command) (string, error) {
	if dir := cmd.String("snapshot"); dir != "" {
		return snapshotPath(store.Root, dir), nil
	}
	if host := cmd.String("host"); host != "" {
		return store.Latest(host)
	}
	return "", fmt.Errorf("either --snapshot or --host is required")
}

// snapshotPath resolves a possibly store-relative snapshot directory the
// same way Store.Load does.
func snapshotPath(root, dir string) string {
	if _, err := os.Stat(filepath.Join(dir, snapshot.ManifestFileName)); err == nil {
		return dir
	}
	return filepath.Join(root, dir)
}

// parseCategories validates a list of category names.
func parseCategories(names []string) (map[record.Category]bool, error) {
	out := make(map[record.Category]bool, len(names))
	for _, name := range names {
		c, ok := record.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown category %q (supported values: %s)",
				name, categoryList())
		}
		out[c] = true
	}
	return out, nil
}

func categoryList() string {
	names := make([]string, 0, len(record.Categories))
	for _, c := range record.Categories {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
