/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
	"github.com/syskeep/syskeep/pkg/serializer"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{name: "yaml", format: "yaml", wantFormat: serializer.FormatYAML},
		{name: "json", format: "json", wantFormat: serializer.FormatJSON},
		{name: "table", format: "table", wantFormat: serializer.FormatTable},
		{name: "unknown xml", format: "xml", wantErr: true},
		{name: "empty", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: tt.format},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if (err != nil) != tt.wantErr {
						t.Errorf("parseOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
						return nil
					}
					if !tt.wantErr && got != tt.wantFormat {
						t.Errorf("parseOutputFormat() = %v, want %v", got, tt.wantFormat)
					}
					return nil
				},
			}
			if err := cmd.Run(context.Background(), []string{"test"}); err != nil {
				t.Fatalf("failed to run command: %v", err)
			}
		})
	}
}

func TestBuildTarget(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		cfg      Config
		wantErr  bool
		validate func(*testing.T, runner.Target)
	}{
		{
			name: "empty target means local",
			args: []string{"cmd"},
			validate: func(t *testing.T, tgt runner.Target) {
				if !tgt.IsLocal() {
					t.Errorf("IsLocal() = false for %+v", tgt)
				}
			},
		},
		{
			name: "user host and port",
			args: []string{"cmd", "--target", "admin@web-01:2222"},
			validate: func(t *testing.T, tgt runner.Target) {
				if tgt.User != "admin" || tgt.Host != "web-01" || tgt.Port != 2222 {
					t.Errorf("target = %+v", tgt)
				}
			},
		},
		{
			name: "identity flag wins over config",
			args: []string{"cmd", "--target", "web-01", "--identity", "/flag/key"},
			cfg:  Config{SSH: SSHDefaults{IdentityFile: "/cfg/key"}},
			validate: func(t *testing.T, tgt runner.Target) {
				if tgt.IdentityFile != "/flag/key" {
					t.Errorf("IdentityFile = %q, want /flag/key", tgt.IdentityFile)
				}
			},
		},
		{
			name: "config supplies user and identity",
			args: []string{"cmd", "--target", "web-01"},
			cfg:  Config{SSH: SSHDefaults{User: "admin", IdentityFile: "/cfg/key"}},
			validate: func(t *testing.T, tgt runner.Target) {
				if tgt.User != "admin" || tgt.IdentityFile != "/cfg/key" {
					t.Errorf("target = %+v", tgt)
				}
			},
		},
		{
			name:    "invalid port",
			args:    []string{"cmd", "--target", "web-01:notaport"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "target"},
					&cli.StringFlag{Name: "identity"},
					&cli.StringFlag{Name: "known-hosts"},
					&cli.BoolFlag{Name: "insecure-host-key"},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := buildTarget(c, &tt.cfg)
					if (err != nil) != tt.wantErr {
						t.Errorf("buildTarget() error = %v, wantErr %v", err, tt.wantErr)
						return nil
					}
					if tt.validate != nil {
						tt.validate(t, got)
					}
					return nil
				},
			}
			if err := cmd.Run(context.Background(), tt.args); err != nil {
				t.Fatalf("failed to run command: %v", err)
			}
		})
	}
}

func TestParseCategories(t *testing.T) {
	got, err := parseCategories([]string{"filesystem", "installed_software"})
	if err != nil {
		t.Fatalf("parseCategories() error = %v", err)
	}
	if !got[record.CategoryFilesystem] || !got[record.CategoryInstalledSoftware] {
		t.Errorf("parseCategories() = %v", got)
	}

	if _, err := parseCategories([]string{"bogus"}); err == nil {
		t.Error("parseCategories() accepted unknown category")
	}
}
