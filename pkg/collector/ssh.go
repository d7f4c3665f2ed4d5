/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package collector

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	gossh "golang.org/x/crypto/ssh"

	"github.com/syskeep/syskeep/pkg/collector/file"
	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
)

const (
	sshdConfigPath = "/etc/ssh/sshd_config"
	sshConfigPath  = "/etc/ssh/ssh_config"
	sshDirPath     = "/etc/ssh"
	homeRoot       = "/home"
)

// SSHConfigCollector captures SSH server/client configuration and key
// *metadata*. Private key material is never read; public keys are reduced
// to type, fingerprint, and comment.
type SSHConfigCollector struct{}

func (c *SSHConfigCollector) Category() record.Category { return record.CategorySSHConfig }
func (c *SSHConfigCollector) Dangerous() bool           { return false }

// Collect gathers sshd_config, ssh_config, host key fingerprints, and
// authorized_keys metadata.
func (c *SSHConfigCollector) Collect(ctx context.Context, r runner.Runner) (*record.Record, error) {
	slog.Info("collecting SSH configuration")

	rec := record.NewRecord(record.CategorySSHConfig)
	var problems []string

	parser := file.NewParser(file.WithKVDelimiter(" "))
	sshdConf, err := parser.GetMap(ctx, r, sshdConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", sshdConfigPath, err)
	}
	rec.Sections = append(rec.Sections, record.Section{Name: "sshd_config", Data: sshdConf})

	if lines, err := file.NewParser().GetLines(ctx, r, sshConfigPath); err == nil {
		rec.Sections = append(rec.Sections, record.Section{Name: "ssh_config", Lines: lines})
	}

	hostKeys := map[string]string{}
	if entries, err := r.ListDir(ctx, sshDirPath); err == nil {
		for _, name := range entries {
			if !strings.HasPrefix(name, "ssh_host_") || !strings.HasSuffix(name, ".pub") {
				continue
			}
			data, err := r.ReadFile(ctx, path.Join(sshDirPath, name))
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", name, err))
				continue
			}
			if pub, _, _, _, err := gossh.ParseAuthorizedKey(data); err == nil {
				hostKeys[name] = pub.Type() + " " + gossh.FingerprintSHA256(pub)
			}
		}
	}
	if len(hostKeys) > 0 {
		rec.Sections = append(rec.Sections, record.Section{Name: "host_keys", Data: hostKeys})
	}

	authorized := c.collectAuthorizedKeys(ctx, r)
	if len(authorized) > 0 {
		rec.Sections = append(rec.Sections, record.Section{Name: "authorized_keys", Lines: authorized})
	}

	if len(problems) > 0 {
		rec.Status = record.StatusPartial
		rec.Error = strings.Join(problems, "; ")
	}

	return rec, nil
}

// collectAuthorizedKeys walks root's and /home users' authorized_keys,
// recording metadata lines "user type fingerprint comment".
func (c *SSHConfigCollector) collectAuthorizedKeys(ctx context.Context, r runner.Runner) []string {
	paths := map[string]string{"root": "/root/.ssh/authorized_keys"}
	if homes, err := r.ListDir(ctx, homeRoot); err == nil {
		for _, user := range homes {
			paths[user] = path.Join(homeRoot, user, ".ssh", "authorized_keys")
		}
	}

	var lines []string
	for user, p := range paths {
		data, err := r.ReadFile(ctx, p)
		if err != nil {
			continue
		}
		for rest := data; len(rest) > 0; {
			pub, comment, _, remainder, err := gossh.ParseAuthorizedKey(rest)
			if err != nil {
				break
			}
			entry := fmt.Sprintf("%s %s %s", user, pub.Type(), gossh.FingerprintSHA256(pub))
			if comment != "" {
				entry += " " + comment
			}
			lines = append(lines, entry)
			rest = remainder
		}
	}

	return sortedLines(strings.Join(lines, "\n"))
}
