/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package runner abstracts command execution and file access on a target
// host. The local machine and SSH-reachable remote machines implement the
// same Runner interface, so collectors and restorers never care which side
// of the wire they run on.
package runner

import (
	"context"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// Target names one machine to collect from or restore to.
// A zero Host (or "localhost") means the control machine itself.
type Target struct {
	Host string `json:"host" yaml:"host"`
	User string `json:"user,omitempty" yaml:"user,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`

	// IdentityFile is the path to the SSH private key for remote targets.
	IdentityFile string `json:"identityFile,omitempty" yaml:"identityFile,omitempty"`

	// KnownHostsFile overrides the default ~/.ssh/known_hosts.
	KnownHostsFile string `json:"knownHostsFile,omitempty" yaml:"knownHostsFile,omitempty"`

	// InsecureHostKey disables host key verification. Test rigs only.
	InsecureHostKey bool `json:"insecureHostKey,omitempty" yaml:"insecureHostKey,omitempty"`
}

// IsLocal reports whether the target is the control machine.
func (t Target) IsLocal() bool {
	switch t.Host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}

// Addr returns the dialable host:port address for remote targets.
func (t Target) Addr() string {
	port := t.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", t.Host, port)
}

// String returns the target in user@host form for logs.
func (t Target) String() string {
	if t.IsLocal() {
		return "localhost"
	}
	if t.User != "" {
		return t.User + "@" + t.Host
	}
	return t.Host
}

// ParseTarget parses "host", "user@host", or "user@host:port" notation.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, fmt.Errorf("empty target")
	}

	var t Target
	rest := s
	if at := strings.LastIndexByte(rest, '@'); at >= 0 {
		t.User = rest[:at]
		rest = rest[at+1:]
	}
	if colon := strings.LastIndexByte(rest, ':'); colon >= 0 {
		port, err := strconv.Atoi(rest[colon+1:])
		if err != nil || port <= 0 || port > 65535 {
			return Target{}, fmt.Errorf("invalid port in target %q", s)
		}
		t.Port = port
		rest = rest[:colon]
	}
	if rest == "" {
		return Target{}, fmt.Errorf("missing host in target %q", s)
	}
	t.Host = rest
	return t, nil
}

// Runner executes commands and accesses files on one target host.
// All calls are bounded, synchronous, and honor context cancellation.
type Runner interface {
	// Hostname returns the target's reported hostname.
	Hostname(ctx context.Context) (string, error)

	// Run executes a command and returns its stdout. A non-zero exit is an
	// error carrying the command's stderr.
	Run(ctx context.Context, name string, args ...string) (string, error)

	// HasCommand reports whether the named command resolves on the target.
	HasCommand(ctx context.Context, name string) bool

	// ReadFile returns the content of a file on the target.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile writes content to a file on the target with the given mode.
	WriteFile(ctx context.Context, path string, data []byte, mode fs.FileMode) error

	// FileExists reports whether a path exists on the target.
	FileExists(ctx context.Context, path string) (bool, error)

	// ListDir returns the entry names of a directory on the target.
	ListDir(ctx context.Context, path string) ([]string, error)

	// Close releases the underlying channel. No-op for local runners.
	Close() error
}
