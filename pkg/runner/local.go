/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
)

// Local runs commands on the control machine via os/exec.
type Local struct{}

// NewLocal creates a Runner for the control machine.
func NewLocal() *Local {
	return &Local{}
}

// Hostname returns the local hostname.
func (l *Local) Hostname(_ context.Context) (string, error) {
	return os.Hostname()
}

// Run executes a command locally and returns its stdout.
func (l *Local) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// HasCommand reports whether the command resolves in PATH.
func (l *Local) HasCommand(_ context.Context, name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ReadFile returns the content of a local file.
func (l *Local) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes content to a local file.
func (l *Local) WriteFile(_ context.Context, path string, data []byte, mode fs.FileMode) error {
	return os.WriteFile(path, data, mode)
}

// FileExists reports whether a local path exists.
func (l *Local) FileExists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ListDir returns entry names of a local directory.
func (l *Local) ListDir(_ context.Context, path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// Close is a no-op for local runners.
func (l *Local) Close() error {
	return nil
}
