/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package record

import "testing"

func rec(cat Category, sections ...Section) *Record {
	r := NewRecord(cat)
	r.Sections = sections
	return r
}

func TestCompare(t *testing.T) {
	t.Run("mismatched categories", func(t *testing.T) {
		_, err := Compare(NewRecord(CategoryPackages), NewRecord(CategoryNetwork))
		if err == nil {
			t.Fatal("expected error for category mismatch")
		}
	})

	t.Run("identical records", func(t *testing.T) {
		a := rec(CategoryPackages, Section{Name: "dpkg", Data: map[string]string{"vim": "8.2"}})
		b := rec(CategoryPackages, Section{Name: "dpkg", Data: map[string]string{"vim": "8.2"}})

		diffs, err := Compare(a, b)
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if len(diffs) != 0 {
			t.Errorf("diffs = %v, want none", diffs)
		}
	})

	t.Run("status differences are ignored", func(t *testing.T) {
		a := rec(CategoryPackages, Section{Name: "dpkg", Data: map[string]string{"vim": "8.2"}})
		a.Status = StatusPartial
		a.Error = "pip unavailable"
		b := rec(CategoryPackages, Section{Name: "dpkg", Data: map[string]string{"vim": "8.2"}})

		ok, err := Equivalent(a, b)
		if err != nil {
			t.Fatalf("Equivalent() error = %v", err)
		}
		if !ok {
			t.Error("records with equal payloads should be equivalent regardless of status")
		}
	})

	t.Run("added changed removed", func(t *testing.T) {
		a := rec(CategoryPackages, Section{Name: "dpkg", Data: map[string]string{
			"vim":  "8.2",
			"curl": "7.81",
		}})
		b := rec(CategoryPackages, Section{Name: "dpkg", Data: map[string]string{
			"vim": "9.0",
			"git": "2.34",
		}})

		diffs, err := Compare(a, b)
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if len(diffs) != 1 {
			t.Fatalf("len(diffs) = %d, want 1", len(diffs))
		}

		d := diffs[0]
		if d.Added["git"] != "2.34" {
			t.Errorf("Added[git] = %q", d.Added["git"])
		}
		if d.Changed["vim"] != "8.2 -> 9.0" {
			t.Errorf("Changed[vim] = %q", d.Changed["vim"])
		}
		if d.Removed["curl"] != "7.81" {
			t.Errorf("Removed[curl] = %q", d.Removed["curl"])
		}
	})

	t.Run("new and dropped sections", func(t *testing.T) {
		a := rec(CategoryFilesystem, Section{Name: "lvm", Data: map[string]string{"vg0": "500G"}})
		b := rec(CategoryFilesystem, Section{Name: "mounts", Data: map[string]string{"/": "ext4"}})

		diffs, err := Compare(a, b)
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if len(diffs) != 2 {
			t.Fatalf("len(diffs) = %d, want 2", len(diffs))
		}
		// Sorted by section name: lvm (removed) before mounts (added).
		if diffs[0].Name != "lvm" || len(diffs[0].Removed) != 1 {
			t.Errorf("diffs[0] = %+v, want removed lvm", diffs[0])
		}
		if diffs[1].Name != "mounts" || diffs[1].Added["/"] != "ext4" {
			t.Errorf("diffs[1] = %+v, want added mounts", diffs[1])
		}
	})

	t.Run("line payload changes", func(t *testing.T) {
		a := rec(CategoryCronJobs, Section{Name: "crontab", Lines: []string{"0 1 * * * /usr/local/bin/job"}})
		b := rec(CategoryCronJobs, Section{Name: "crontab", Lines: []string{"0 2 * * * /usr/local/bin/job"}})

		diffs, err := Compare(a, b)
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if len(diffs) != 1 || !diffs[0].LinesChanged {
			t.Errorf("diffs = %+v, want one LinesChanged diff", diffs)
		}
	})
}
