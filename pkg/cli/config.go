/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultConfigFile is consulted when --config is not given. Missing is
// fine; flags and built-in defaults cover everything.
const defaultConfigFile = "./syskeep.yaml"

// Config carries the file-backed defaults a command starts from. Every
// setting can be overridden by a flag and most by a SYSKEEP_* variable.
type Config struct {
	// OutputRoot is the snapshot store root directory.
	OutputRoot string `yaml:"output_root,omitempty"`

	// BackupDir is where restore runs place pre-mutation copies.
	BackupDir string `yaml:"backup_dir,omitempty"`

	// Skip lists categories disabled for collection.
	Skip []string `yaml:"skip,omitempty"`

	// ConfigFiles extends the config-file archive allow-list.
	ConfigFiles []string `yaml:"config_files,omitempty"`

	// Services narrows the systemd unit capture to the listed units.
	Services []string `yaml:"services,omitempty"`

	// SSH holds defaults for remote targets.
	SSH SSHDefaults `yaml:"ssh,omitempty"`
}

// SSHDefaults supplies remote-target settings not given per target.
type SSHDefaults struct {
	User            string `yaml:"user,omitempty"`
	IdentityFile    string `yaml:"identity_file,omitempty"`
	KnownHostsFile  string `yaml:"known_hosts_file,omitempty"`
	InsecureHostKey bool   `yaml:"insecure_host_key,omitempty"`
}

// loadConfig reads the config file at path, or the default file when path
// is empty. An explicitly named file must exist; the default file is
// optional. SYSKEEP_* variables override the loaded values.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}

	required := path != ""
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case os.IsNotExist(err) && !required:
		// No config file, defaults only.
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SYSKEEP_OUTPUT_ROOT"); v != "" {
		cfg.OutputRoot = v
	}
	if v := os.Getenv("SYSKEEP_BACKUP_DIR"); v != "" {
		cfg.BackupDir = v
	}
	if v := os.Getenv("SYSKEEP_SSH_USER"); v != "" {
		cfg.SSH.User = v
	}
	if v := os.Getenv("SYSKEEP_SSH_IDENTITY"); v != "" {
		cfg.SSH.IdentityFile = v
	}
	if v := os.Getenv("SYSKEEP_SSH_KNOWN_HOSTS"); v != "" {
		cfg.SSH.KnownHostsFile = v
	}
}
