/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/syskeep/syskeep/pkg/collector/file"
	serrors "github.com/syskeep/syskeep/pkg/errors"
	"github.com/syskeep/syskeep/pkg/runner"
	"github.com/syskeep/syskeep/pkg/serializer"
)

// BackupManifestFileName is the manifest of one run's backups.
const BackupManifestFileName = "backup_manifest.yaml"

// BackupRecord describes one pre-mutation copy.
type BackupRecord struct {
	// Original is the absolute path on the target host.
	Original string `json:"original" yaml:"original"`
	// BackupPath is the local copy, relative to the backup set directory.
	BackupPath string `json:"backup_path" yaml:"backup_path"`
	// Checksum is the hex SHA-256 of the copied content.
	Checksum string `json:"checksum" yaml:"checksum"`
	// Timestamp is when the copy was taken.
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// BackupSet stores pre-mutation copies of target files for one run under
// backup_dir/<run-id>/. The manifest is rewritten and synced after every
// backup so a crash mid-run cannot lose track of a copy already taken.
type BackupSet struct {
	// Dir is the run's backup directory.
	Dir string

	records []BackupRecord
}

// NewBackupSet creates the backup directory for a run.
func NewBackupSet(backupDir, runID string) (*BackupSet, error) {
	dir := filepath.Join(backupDir, runID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, serrors.Wrap(serrors.ErrCodeBackupWrite, "creating backup dir", err)
	}
	return &BackupSet{Dir: dir}, nil
}

// Backup copies the target file at path into the set and records it in
// the manifest. A path absent on the target is a no-op: there is nothing
// to preserve. Returns whether a copy was taken.
func (b *BackupSet) Backup(ctx context.Context, r runner.Runner, path string) (bool, error) {
	exists, err := r.FileExists(ctx, path)
	if err != nil {
		return false, serrors.Wrap(serrors.ErrCodeBackupWrite, fmt.Sprintf("probing %s", path), err)
	}
	if !exists {
		return false, nil
	}

	data, err := r.ReadFile(ctx, path)
	if err != nil {
		return false, serrors.Wrap(serrors.ErrCodeBackupWrite, fmt.Sprintf("reading %s", path), err)
	}

	name := strings.ReplaceAll(strings.Trim(path, "/"), "/", "_")
	dest := filepath.Join(b.Dir, name)
	if err := writeFileSync(dest, data, 0o600); err != nil {
		return false, serrors.Wrap(serrors.ErrCodeBackupWrite, fmt.Sprintf("writing backup of %s", path), err)
	}

	b.records = append(b.records, BackupRecord{
		Original:   path,
		BackupPath: name,
		Checksum:   file.Checksum(data),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
	return true, b.writeManifest()
}

// Records returns the backups taken so far.
func (b *BackupSet) Records() []BackupRecord {
	return b.records
}

func (b *BackupSet) writeManifest() error {
	doc := struct {
		Backups []BackupRecord `json:"backups" yaml:"backups"`
	}{Backups: b.records}

	f, err := os.CreateTemp(b.Dir, ".manifest-*")
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeBackupWrite, "writing backup manifest", err)
	}
	w := serializer.NewWriter(serializer.FormatYAML, f)
	if err := w.Serialize(context.Background(), &doc); err != nil {
		f.Close()
		os.Remove(f.Name())
		return serrors.Wrap(serrors.ErrCodeBackupWrite, "writing backup manifest", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return serrors.Wrap(serrors.ErrCodeBackupWrite, "syncing backup manifest", err)
	}
	if err := f.Close(); err != nil {
		return serrors.Wrap(serrors.ErrCodeBackupWrite, "closing backup manifest", err)
	}
	if err := os.Rename(f.Name(), filepath.Join(b.Dir, BackupManifestFileName)); err != nil {
		return serrors.Wrap(serrors.ErrCodeBackupWrite, "publishing backup manifest", err)
	}
	return nil
}

// writeFileSync writes data and fsyncs before returning. Backups must be
// durable before the mutation they protect runs.
func writeFileSync(path string, data []byte, mode os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
