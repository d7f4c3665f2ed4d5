/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	serrors "github.com/syskeep/syskeep/pkg/errors"
)

const dialTimeout = 15 * time.Second

// Remote runs commands on a target host over an authenticated SSH channel.
type Remote struct {
	target Target
	client *ssh.Client
}

// New returns a Runner for the given target: a Local runner when the target
// is the control machine, an SSH-backed Remote otherwise. A dial failure is
// a REMOTE_UNREACHABLE error, fatal to the whole run.
func New(ctx context.Context, target Target) (Runner, error) {
	if target.IsLocal() {
		return NewLocal(), nil
	}
	return Dial(ctx, target)
}

// Dial establishes the SSH connection to a remote target.
func Dial(ctx context.Context, target Target) (*Remote, error) {
	cfg, err := clientConfig(target)
	if err != nil {
		return nil, err
	}

	type dialed struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialed, 1)
	go func() {
		client, err := ssh.Dial("tcp", target.Addr(), cfg)
		ch <- dialed{client, err}
	}()

	select {
	case <-ctx.Done():
		return nil, serrors.Wrap(serrors.ErrCodeRemoteUnreachable, fmt.Sprintf("dialing %s", target), ctx.Err())
	case d := <-ch:
		if d.err != nil {
			return nil, serrors.Wrap(serrors.ErrCodeRemoteUnreachable, fmt.Sprintf("dialing %s", target), d.err)
		}
		return &Remote{target: target, client: d.client}, nil
	}
}

func clientConfig(target Target) (*ssh.ClientConfig, error) {
	user := target.User
	if user == "" {
		user = "root"
	}

	var auth []ssh.AuthMethod
	if target.IdentityFile != "" {
		key, err := os.ReadFile(target.IdentityFile)
		if err != nil {
			return nil, fmt.Errorf("reading identity file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parsing identity file: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("no authentication configured for %s: identity file required", target)
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey() //nolint:gosec // only when explicitly requested
	if !target.InsecureHostKey {
		knownHostsPath := target.KnownHostsFile
		if knownHostsPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolving known_hosts: %w", err)
			}
			knownHostsPath = filepath.Join(home, ".ssh", "known_hosts")
		}
		cb, err := knownhosts.New(knownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("loading known_hosts %s: %w", knownHostsPath, err)
		}
		hostKeyCallback = cb
	}

	return &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         dialTimeout,
	}, nil
}

// Hostname returns the remote hostname.
func (r *Remote) Hostname(ctx context.Context) (string, error) {
	out, err := r.Run(ctx, "hostname")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Run executes a command on the remote host and returns its stdout.
func (r *Remote) Run(ctx context.Context, name string, args ...string) (string, error) {
	return r.run(ctx, commandLine(name, args), nil)
}

func (r *Remote) run(ctx context.Context, cmdline string, stdin []byte) (string, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("opening session on %s: %w", r.target, err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if stdin != nil {
		session.Stdin = bytes.NewReader(stdin)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmdline)
	}()

	select {
	case <-ctx.Done():
		// Best effort: tear down the session so the remote command dies.
		_ = session.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("remote command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return stdout.String(), nil
	}
}

// HasCommand reports whether the command resolves on the remote host.
func (r *Remote) HasCommand(ctx context.Context, name string) bool {
	_, err := r.run(ctx, "command -v "+shellQuote(name), nil)
	return err == nil
}

// ReadFile returns the content of a remote file.
func (r *Remote) ReadFile(ctx context.Context, path string) ([]byte, error) {
	out, err := r.run(ctx, "cat "+shellQuote(path), nil)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// WriteFile writes content to a remote file with the given mode.
func (r *Remote) WriteFile(ctx context.Context, path string, data []byte, mode fs.FileMode) error {
	quoted := shellQuote(path)
	cmdline := fmt.Sprintf("cat > %s && chmod %o %s", quoted, mode.Perm(), quoted)
	_, err := r.run(ctx, cmdline, data)
	return err
}

// FileExists reports whether a remote path exists.
func (r *Remote) FileExists(ctx context.Context, path string) (bool, error) {
	_, err := r.run(ctx, "test -e "+shellQuote(path), nil)
	if err == nil {
		return true, nil
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, err
}

// ListDir returns entry names of a remote directory.
func (r *Remote) ListDir(ctx context.Context, path string) ([]string, error) {
	out, err := r.run(ctx, "ls -1 "+shellQuote(path), nil)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// Close tears down the SSH connection.
func (r *Remote) Close() error {
	return r.client.Close()
}

func commandLine(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellQuote(name))
	for _, a := range args {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

// shellQuote single-quotes a string for POSIX shells.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\"'`$\\&|;<>()*?[]#~%{}!") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
