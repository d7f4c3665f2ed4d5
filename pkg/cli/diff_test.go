/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"testing"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

func snapshotWithSections(host string, data map[string]string) *snapshot.Snapshot {
	snap := snapshot.New(host, "test")
	rec := record.NewRecord(record.CategorySystemInfo)
	rec.Sections = append(rec.Sections, record.Section{Name: "os_release", Data: data})
	snap.Records = append(snap.Records, rec)
	return snap
}

func TestDiffSnapshotsIdentical(t *testing.T) {
	data := map[string]string{"ID": "ubuntu", "VERSION_ID": "24.04"}
	from := snapshotWithSections("web-01", data)
	to := snapshotWithSections("web-01", map[string]string{"ID": "ubuntu", "VERSION_ID": "24.04"})

	result, err := diffSnapshots(from, to, "a", "b")
	if err != nil {
		t.Fatalf("diffSnapshots() error = %v", err)
	}
	if !result.Identical {
		t.Errorf("Identical = false, categories = %+v", result.Categories)
	}
}

func TestDiffSnapshotsChangedKey(t *testing.T) {
	from := snapshotWithSections("web-01", map[string]string{"VERSION_ID": "22.04"})
	to := snapshotWithSections("web-01", map[string]string{"VERSION_ID": "24.04"})

	result, err := diffSnapshots(from, to, "a", "b")
	if err != nil {
		t.Fatalf("diffSnapshots() error = %v", err)
	}
	if result.Identical {
		t.Fatal("Identical = true for changed snapshots")
	}
	if len(result.Categories) != 1 || result.Categories[0].Category != record.CategorySystemInfo {
		t.Fatalf("Categories = %+v", result.Categories)
	}
	sections := result.Categories[0].Sections
	if len(sections) != 1 || len(sections[0].Changed) != 1 {
		t.Errorf("Sections = %+v", sections)
	}
}

func TestDiffSnapshotsCategoryOnlyInOne(t *testing.T) {
	from := snapshot.New("web-01", "test")
	to := snapshotWithSections("web-01", map[string]string{"ID": "ubuntu"})

	result, err := diffSnapshots(from, to, "a", "b")
	if err != nil {
		t.Fatalf("diffSnapshots() error = %v", err)
	}
	if result.Identical {
		t.Fatal("Identical = true when a category exists in only one snapshot")
	}
	if len(result.Categories) != 1 || result.Categories[0].Only != "to" {
		t.Errorf("Categories = %+v", result.Categories)
	}
}
