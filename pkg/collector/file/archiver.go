/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner"
)

// ChecksumFileName is the manifest of archived file checksums.
const ChecksumFileName = "checksums.txt"

// Archiver copies configuration files from a target host into a snapshot's
// config_files directory. Copies are verbatim, never templated or mutated.
type Archiver struct {
	// Dir is the local destination directory for archived copies.
	Dir string

	// seen maps source path to the checksum already archived in this run,
	// so re-archiving an unchanged path is a no-op.
	seen map[string]string
}

// NewArchiver creates an Archiver writing into dir.
func NewArchiver(dir string) *Archiver {
	return &Archiver{
		Dir:  dir,
		seen: make(map[string]string),
	}
}

// Archive copies the file at source on the target into the archive
// directory and returns its record entry. Re-archiving a path whose content
// is unchanged within the same run returns the prior entry without writing.
func (a *Archiver) Archive(ctx context.Context, r runner.Runner, source string) (*record.ArchivedFile, error) {
	data, err := r.ReadFile(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}

	hash := sha256.Sum256(data)
	checksum := hex.EncodeToString(hash[:])
	name := archiveName(source)

	if prior, ok := a.seen[source]; ok && prior == checksum {
		slog.Debug("skipping duplicate archive", "source", source)
		return &record.ArchivedFile{Source: source, Name: name, Checksum: checksum}, nil
	}

	if err := os.MkdirAll(a.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}
	// 0400: archived copies are read-only by contract.
	dest := filepath.Join(a.Dir, name)
	if err := os.WriteFile(dest, data, 0o400); err != nil {
		return nil, fmt.Errorf("archiving %s: %w", source, err)
	}

	a.seen[source] = checksum
	slog.Debug("archived config file", "source", source, "dest", dest)

	return &record.ArchivedFile{Source: source, Name: name, Checksum: checksum}, nil
}

// WriteChecksums writes the checksums.txt manifest for all archived files,
// one "checksum  name" entry per line, sorted by name.
func (a *Archiver) WriteChecksums(files []record.ArchivedFile) error {
	if len(files) == 0 {
		return nil
	}

	sorted := make([]record.ArchivedFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	lines := make([]string, 0, len(sorted))
	for _, f := range sorted {
		lines = append(lines, fmt.Sprintf("%s  %s", f.Checksum, f.Name))
	}

	path := filepath.Join(a.Dir, ChecksumFileName)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write checksums: %w", err)
	}
	return nil
}

// Checksum returns the hex SHA-256 of the given content.
func Checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// archiveName flattens an absolute path into a file name, e.g.
// /etc/ssh/sshd_config becomes etc_ssh_sshd_config.
func archiveName(source string) string {
	trimmed := strings.Trim(source, "/")
	return strings.ReplaceAll(trimmed, "/", "_")
}
