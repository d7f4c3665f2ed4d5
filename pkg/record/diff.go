/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package record

import (
	"fmt"
	"slices"
)

// SectionDiff holds the key-level differences of one section between two
// records of the same category.
type SectionDiff struct {
	Name string `json:"section" yaml:"section"`
	// Added maps keys present only in the newer record to their values.
	Added map[string]string `json:"added,omitempty" yaml:"added,omitempty"`
	// Changed maps keys present in both records to "old -> new" values.
	Changed map[string]string `json:"changed,omitempty" yaml:"changed,omitempty"`
	// Removed maps keys present only in the older record to their values.
	Removed map[string]string `json:"removed,omitempty" yaml:"removed,omitempty"`
	// LinesChanged is set when the raw line payloads differ.
	LinesChanged bool `json:"linesChanged,omitempty" yaml:"linesChanged,omitempty"`
}

// Empty reports whether the section diff carries no differences.
func (d *SectionDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0 && !d.LinesChanged
}

// Compare compares two records of the same category and returns the
// per-section differences, treating old as the baseline. Capture status and
// error text are intentionally excluded: two captures of an unchanged host
// compare equal even when their probe diagnostics differ in wording.
func Compare(old, new *Record) ([]SectionDiff, error) {
	if old.Category != new.Category {
		return nil, fmt.Errorf("cannot compare different categories: %q vs %q", old.Category, new.Category)
	}

	oldSections := make(map[string]*Section, len(old.Sections))
	for i := range old.Sections {
		oldSections[old.Sections[i].Name] = &old.Sections[i]
	}

	var diffs []SectionDiff

	for i := range new.Sections {
		ns := &new.Sections[i]
		os, exists := oldSections[ns.Name]
		if !exists {
			// Entire section is new.
			d := SectionDiff{Name: ns.Name, Added: ns.Data}
			if len(ns.Lines) > 0 {
				d.LinesChanged = true
			}
			diffs = append(diffs, d)
			continue
		}
		delete(oldSections, ns.Name)

		d := SectionDiff{
			Name:    ns.Name,
			Added:   make(map[string]string),
			Changed: make(map[string]string),
			Removed: make(map[string]string),
		}
		for k, nv := range ns.Data {
			ov, ok := os.Data[k]
			switch {
			case !ok:
				d.Added[k] = nv
			case ov != nv:
				d.Changed[k] = fmt.Sprintf("%s -> %s", ov, nv)
			}
		}
		for k, ov := range os.Data {
			if _, ok := ns.Data[k]; !ok {
				d.Removed[k] = ov
			}
		}
		d.LinesChanged = !slices.Equal(os.Lines, ns.Lines)

		if !d.Empty() {
			diffs = append(diffs, d)
		}
	}

	// Sections present only in the baseline.
	for name, os := range oldSections {
		diffs = append(diffs, SectionDiff{Name: name, Removed: os.Data, LinesChanged: len(os.Lines) > 0})
	}

	slices.SortFunc(diffs, func(a, b SectionDiff) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})

	return diffs, nil
}

// Equivalent reports whether two records of the same category carry
// semantically equal payloads (status and diagnostics aside).
func Equivalent(old, new *Record) (bool, error) {
	diffs, err := Compare(old, new)
	if err != nil {
		return false, err
	}
	return len(diffs) == 0, nil
}
