/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package collector

import (
	"testing"

	"github.com/syskeep/syskeep/pkg/record"
)

func TestDefaultFactoryOrder(t *testing.T) {
	cols := NewDefaultFactory().Collectors()

	if len(cols) != len(record.Categories) {
		t.Fatalf("Collectors() = %d, want %d", len(cols), len(record.Categories))
	}
	for i, c := range cols {
		if c.Category() != record.Categories[i] {
			t.Errorf("collector %d = %s, want %s", i, c.Category(), record.Categories[i])
		}
	}
}

func TestDefaultFactoryDangerousCategories(t *testing.T) {
	want := map[record.Category]bool{
		record.CategoryNetwork:  true,
		record.CategoryFirewall: true,
		record.CategoryServices: true,
	}

	for _, c := range NewDefaultFactory().Collectors() {
		if c.Dangerous() != want[c.Category()] {
			t.Errorf("%s Dangerous() = %v, want %v", c.Category(), c.Dangerous(), want[c.Category()])
		}
	}
}

func TestDefaultFactoryOptions(t *testing.T) {
	f := NewDefaultFactory(
		WithArchiveDir("/tmp/archive"),
		WithConfigPaths("/etc/custom.conf"),
		WithServices("sshd"),
	)

	cf, ok := f.ByCategory(record.CategoryConfigFiles).(*ConfigFilesCollector)
	if !ok {
		t.Fatal("config_files collector has unexpected type")
	}
	if cf.ArchiveDir != "/tmp/archive" {
		t.Errorf("ArchiveDir = %q", cf.ArchiveDir)
	}
	found := false
	for _, p := range cf.Paths {
		if p == "/etc/custom.conf" {
			found = true
		}
	}
	if !found {
		t.Errorf("custom path missing from %v", cf.Paths)
	}

	sc, ok := f.ByCategory(record.CategoryServices).(*ServicesCollector)
	if !ok || len(sc.Services) != 1 || sc.Services[0] != "sshd" {
		t.Errorf("services allow-list = %+v", sc)
	}
}
