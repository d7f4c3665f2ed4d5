/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package logging provides structured logging utilities shared by all
// syskeep components.
//
// It wraps the standard library slog package with project defaults:
// JSON output to stderr, module/version context attributes, LOG_LEVEL
// environment fallback, and source location tracking for debug logs.
//
// Usage:
//
//	logging.SetDefaultStructuredLogger("syskeep", version)
//	slog.Info("collecting snapshot", "host", target.Host)
//
// The LOG_LEVEL environment variable controls verbosity when no explicit
// level is given (DEBUG, INFO, WARN, ERROR; case-insensitive; default INFO).
package logging
