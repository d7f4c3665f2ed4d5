/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the command-line interface for the syskeep tool.
//
// # Commands
//
// collect - Capture a configuration snapshot:
//
//	syskeep collect [--target user@host] [--output-root DIR] [--skip CATEGORY]
//
// Probes the local host (or a remote target over SSH) category by category
// and writes the snapshot under the store root. A failing category never
// aborts the run; it is recorded as failed and the command exits with 2.
//
// report - Render a snapshot for humans:
//
//	syskeep report --snapshot DIR [--format markdown|html] [--output FILE]
//
// restore - Apply a snapshot to a host:
//
//	syskeep restore --snapshot DIR [--target user@host] [--dry-run]
//	    [--backup-dir DIR] [--network] [--firewall] [--services]
//
// Safe categories (packages, users, ssh, config-files, cron) restore by
// default; the dangerous ones (network, firewall, services) only with
// their explicit flag. The step log is emitted via --output/--format.
//
// diff - Compare two snapshots of the same host:
//
//	syskeep diff --from DIR --to DIR
//
// fleet collect - Capture snapshots across an inventory of hosts:
//
//	syskeep fleet collect --inventory hosts.yaml [--concurrency N]
//
// # Exit Codes
//
//	0  Success
//	1  Fatal error (invalid arguments, unreachable target, unusable snapshot)
//	2  Partial (at least one category failed; the rest completed)
//
// # Configuration
//
// Every command accepts --config pointing at a YAML file with defaults for
// the store root, backup directory, SSH identity, skipped categories, and
// config-file allow-list extensions. SYSKEEP_* environment variables
// override individual settings; explicit flags win over both.
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/syskeep/syskeep/pkg/cli.version=1.0.0'"
package cli
