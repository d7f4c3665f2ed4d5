/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package runnertest provides a scriptable in-memory Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
)

// Fake is an in-memory Runner. Commands are scripted by their full command
// line ("name arg1 arg2"); files live in a map keyed by absolute path.
// All mutations are recorded so tests can assert on side effects (or the
// absence of them, for dry-run purity).
type Fake struct {
	mu sync.Mutex

	// Host is the hostname the fake reports.
	Host string

	// Commands maps "name arg..." command lines to stdout.
	Commands map[string]string

	// Errs maps command lines to forced errors.
	Errs map[string]error

	// Files maps paths to file content.
	Files map[string]string

	// Missing lists command names HasCommand denies.
	Missing []string

	// Calls records every executed command line in order.
	Calls []string

	// Writes records every WriteFile path in order.
	Writes []string
}

// New creates an empty Fake reporting the given hostname.
func New(host string) *Fake {
	return &Fake{
		Host:     host,
		Commands: make(map[string]string),
		Errs:     make(map[string]error),
		Files:    make(map[string]string),
	}
}

// Script registers stdout for a command line.
func (f *Fake) Script(cmdline, stdout string) *Fake {
	f.Commands[cmdline] = stdout
	return f
}

// Fail registers a forced error for a command line.
func (f *Fake) Fail(cmdline string, err error) *Fake {
	f.Errs[cmdline] = err
	return f
}

// WithFile seeds a file.
func (f *Fake) WithFile(path, content string) *Fake {
	f.Files[path] = content
	return f
}

// Hostname implements runner.Runner.
func (f *Fake) Hostname(_ context.Context) (string, error) {
	return f.Host, nil
}

// Run implements runner.Runner.
func (f *Fake) Run(_ context.Context, name string, args ...string) (string, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	f.Calls = append(f.Calls, cmdline)
	f.mu.Unlock()

	if err, ok := f.Errs[cmdline]; ok {
		return "", err
	}
	if out, ok := f.Commands[cmdline]; ok {
		return out, nil
	}
	return "", fmt.Errorf("command not scripted: %s", cmdline)
}

// HasCommand implements runner.Runner.
func (f *Fake) HasCommand(_ context.Context, name string) bool {
	for _, m := range f.Missing {
		if m == name {
			return false
		}
	}
	for cmdline := range f.Commands {
		if cmdline == name || strings.HasPrefix(cmdline, name+" ") {
			return true
		}
	}
	return false
}

// ReadFile implements runner.Runner.
func (f *Fake) ReadFile(_ context.Context, path string) ([]byte, error) {
	content, ok := f.Files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file or directory", path)
	}
	return []byte(content), nil
}

// WriteFile implements runner.Runner.
func (f *Fake) WriteFile(_ context.Context, path string, data []byte, _ fs.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Files[path] = string(data)
	f.Writes = append(f.Writes, path)
	return nil
}

// FileExists implements runner.Runner.
func (f *Fake) FileExists(_ context.Context, path string) (bool, error) {
	if _, ok := f.Files[path]; ok {
		return true, nil
	}
	// Treat path as a directory prefix so seeded files imply their parents.
	prefix := strings.TrimSuffix(path, "/") + "/"
	for p := range f.Files {
		if strings.HasPrefix(p, prefix) {
			return true, nil
		}
	}
	return false, nil
}

// ListDir implements runner.Runner.
func (f *Fake) ListDir(_ context.Context, path string) ([]string, error) {
	prefix := strings.TrimSuffix(path, "/") + "/"
	seen := make(map[string]bool)
	for p := range f.Files {
		if rest, ok := strings.CutPrefix(p, prefix); ok {
			name, _, _ := strings.Cut(rest, "/")
			seen[name] = true
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("open %s: no such file or directory", path)
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close implements runner.Runner.
func (f *Fake) Close() error {
	return nil
}

// Ran reports whether any recorded command line contains the substring.
func (f *Fake) Ran(substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}
