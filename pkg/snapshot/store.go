/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	serrors "github.com/syskeep/syskeep/pkg/errors"
	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/serializer"
)

const (
	// ManifestFileName is the snapshot manifest within a snapshot directory.
	ManifestFileName = "manifest.yaml"

	// ConfigFilesDirName holds archived config-file copies.
	ConfigFilesDirName = "config_files"
)

// manifest is the on-disk manifest document: the snapshot header plus a
// category status summary. Records live in their own per-category files.
type manifest struct {
	Header   `json:",inline" yaml:",inline"`
	Hostname string `json:"hostname" yaml:"hostname"`

	// Categories maps category name to capture status, covering every
	// category of the run including failed and skipped ones.
	Categories map[string]string `json:"categories" yaml:"categories"`
}

// Store reads and writes snapshots under a root directory. One snapshot
// occupies one immutable "<hostname>_<timestamp>" directory.
type Store struct {
	Root string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Root: dir}
}

// Dir returns the directory path a snapshot occupies in this store.
func (s *Store) Dir(snap *Snapshot) string {
	return filepath.Join(s.Root, snap.DirName())
}

// ConfigFilesDir returns the config-file archive directory for a snapshot
// that is about to be written. Collectors archive into it during capture.
func (s *Store) ConfigFilesDir(snap *Snapshot) string {
	return filepath.Join(s.Dir(snap), ConfigFilesDirName)
}

// Write persists the snapshot: manifest plus one file per category.
// Snapshots are immutable, so writing over an existing manifest is refused.
func (s *Store) Write(ctx context.Context, snap *Snapshot) (string, error) {
	dir := s.Dir(snap)
	manifestPath := filepath.Join(dir, ManifestFileName)
	if _, err := os.Stat(manifestPath); err == nil {
		return "", serrors.Newf(serrors.ErrCodeInvalidRequest, "snapshot %s already exists", dir)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating snapshot dir: %w", err)
	}

	for _, rec := range snap.Records {
		if err := s.writeDoc(ctx, filepath.Join(dir, rec.Category.String()+".yaml"), rec); err != nil {
			return "", err
		}
	}

	m := manifest{
		Header:     snap.Header,
		Hostname:   snap.Hostname,
		Categories: make(map[string]string, len(snap.Records)),
	}
	for _, rec := range snap.Records {
		m.Categories[rec.Category.String()] = string(rec.Status)
	}
	if err := s.writeDoc(ctx, manifestPath, &m); err != nil {
		return "", err
	}

	return dir, nil
}

func (s *Store) writeDoc(ctx context.Context, path string, v any) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := serializer.NewWriter(serializer.FormatYAML, f)
	if err := w.Serialize(ctx, v); err != nil {
		f.Close()
		return fmt.Errorf("serializing %s: %w", path, err)
	}
	return f.Close()
}

// Load reads a snapshot from dir. The argument may be an absolute path or
// a directory name relative to the store root. A missing or unreadable
// snapshot yields a SNAPSHOT_NOT_FOUND error.
func (s *Store) Load(dir string) (*Snapshot, error) {
	if !filepath.IsAbs(dir) {
		if _, err := os.Stat(filepath.Join(dir, ManifestFileName)); err != nil {
			dir = filepath.Join(s.Root, dir)
		}
	}

	m, err := serializer.FromFile[manifest](filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrCodeSnapshotNotFound,
			fmt.Sprintf("snapshot %s", dir), err)
	}

	snap := &Snapshot{
		Header:   m.Header,
		Hostname: m.Hostname,
		Records:  make([]*record.Record, 0, len(m.Categories)),
	}
	for _, c := range record.Categories {
		if _, ok := m.Categories[c.String()]; !ok {
			continue
		}
		rec, err := serializer.FromFile[record.Record](filepath.Join(dir, c.String()+".yaml"))
		if err != nil {
			return nil, serrors.Wrap(serrors.ErrCodeSnapshotNotFound,
				fmt.Sprintf("snapshot %s category %s", dir, c), err)
		}
		snap.Records = append(snap.Records, rec)
	}

	return snap, nil
}

// Info describes one stored snapshot.
type Info struct {
	Dir       string `json:"dir" yaml:"dir"`
	Hostname  string `json:"hostname" yaml:"hostname"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// List enumerates snapshots under the store root, newest directory name
// last. Directories without a manifest are ignored.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading store root: %w", err)
	}

	var infos []Info
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := serializer.FromFile[manifest](filepath.Join(s.Root, e.Name(), ManifestFileName))
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Dir:       e.Name(),
			Hostname:  m.Hostname,
			Timestamp: m.Metadata["timestamp"],
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Dir < infos[j].Dir })
	return infos, nil
}

// Latest returns the most recent snapshot directory for a host, or a
// SNAPSHOT_NOT_FOUND error when the host has none.
func (s *Store) Latest(hostname string) (string, error) {
	infos, err := s.List()
	if err != nil {
		return "", err
	}
	latest := ""
	for _, info := range infos {
		if info.Hostname == hostname || strings.HasPrefix(info.Dir, hostname+"_") {
			latest = info.Dir
		}
	}
	if latest == "" {
		return "", serrors.Newf(serrors.ErrCodeSnapshotNotFound, "no snapshot for host %s", hostname)
	}
	return filepath.Join(s.Root, latest), nil
}
