/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package report renders stored snapshots into human-readable documents.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

// Format selects the report output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// IsUnknown reports whether the format is not a recognized report format.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatMarkdown, FormatHTML:
		return false
	default:
		return true
	}
}

var titleCaser = cases.Title(language.English)

// Render writes a report of the snapshot to w. Every category of the
// capture appears, including failed and skipped ones: a reader must be
// able to tell "not captured" apart from "captured empty".
func Render(w io.Writer, snap *snapshot.Snapshot, format Format) error {
	switch format {
	case FormatMarkdown:
		return renderMarkdown(w, snap)
	case FormatHTML:
		return renderHTML(w, snap)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// categoryTitle renders "users_groups" as "Users Groups".
func categoryTitle(c record.Category) string {
	return titleCaser.String(strings.ReplaceAll(c.String(), "_", " "))
}

func renderMarkdown(w io.Writer, snap *snapshot.Snapshot) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# System Report: %s\n\n", snap.Hostname)
	fmt.Fprintf(&b, "- Captured: %s\n", snap.Metadata["timestamp"])
	if v := snap.Metadata["version"]; v != "" {
		fmt.Fprintf(&b, "- Tool version: %s\n", v)
	}
	b.WriteString("\n## Capture Summary\n\n")
	b.WriteString("| Category | Status | Detail |\n|---|---|---|\n")
	for _, rec := range snap.Records {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", categoryTitle(rec.Category), rec.Status, markdownCell(statusDetail(rec)))
	}

	for _, rec := range snap.Records {
		fmt.Fprintf(&b, "\n## %s\n\n", categoryTitle(rec.Category))
		if !rec.Status.IsUsable() {
			fmt.Fprintf(&b, "_%s_: %s\n", rec.Status, statusDetail(rec))
			continue
		}
		if rec.Status == record.StatusPartial {
			fmt.Fprintf(&b, "_partial capture_: %s\n\n", rec.Error)
		}
		for _, sec := range rec.Sections {
			fmt.Fprintf(&b, "### %s\n\n", sec.Name)
			if len(sec.Data) > 0 {
				b.WriteString("| Key | Value |\n|---|---|\n")
				for _, k := range sortedKeys(sec.Data) {
					fmt.Fprintf(&b, "| %s | %s |\n", markdownCell(k), markdownCell(sec.Data[k]))
				}
				b.WriteString("\n")
			}
			if len(sec.Lines) > 0 {
				b.WriteString("```\n")
				for _, line := range sec.Lines {
					b.WriteString(line)
					b.WriteString("\n")
				}
				b.WriteString("```\n\n")
			}
		}
		if len(rec.Files) > 0 {
			b.WriteString("### archived files\n\n")
			b.WriteString("| Source | Archived As | SHA-256 |\n|---|---|---|\n")
			for _, f := range rec.Files {
				fmt.Fprintf(&b, "| %s | %s | %s |\n", f.Source, f.Name, f.Checksum)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n## Restoration Checklist\n\n")
	for _, line := range checklist(snap) {
		fmt.Fprintf(&b, "- %s\n", line)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// planFlags names the restore command flag that toggles each restorable
// category, so the checklist can say how to select it.
var planFlags = map[record.Category]string{
	record.CategoryPackages:    "--packages",
	record.CategoryUsersGroups: "--users",
	record.CategorySSHConfig:   "--ssh",
	record.CategoryConfigFiles: "--config-files",
	record.CategoryCronJobs:    "--cron",
	record.CategoryNetwork:     "--network",
	record.CategoryFirewall:    "--firewall",
	record.CategoryServices:    "--services",
}

// checklist summarizes what a restoration from this snapshot could cover
// and what it cannot, one line per category in restore concern order.
func checklist(snap *snapshot.Snapshot) []string {
	var lines []string
	for _, rec := range snap.Records {
		title := categoryTitle(rec.Category)
		switch {
		case !rec.Enabled:
			lines = append(lines, fmt.Sprintf("%s: disabled at capture time, nothing to restore", title))
		case rec.Status == record.StatusSkipped:
			lines = append(lines, fmt.Sprintf("%s: skipped at capture time (%s)", title, rec.Error))
		case rec.Status == record.StatusFailed:
			lines = append(lines, fmt.Sprintf("%s: capture failed, NOT restorable", title))
		case rec.Category == record.CategoryPorts,
			rec.Category == record.CategoryInstalledSoftware,
			rec.Category == record.CategorySystemInfo,
			rec.Category == record.CategoryFilesystem:
			lines = append(lines, fmt.Sprintf("%s: report-only, never restored", title))
		case rec.Category == record.CategoryNetwork,
			rec.Category == record.CategoryFirewall,
			rec.Category == record.CategoryServices:
			lines = append(lines, fmt.Sprintf("%s: restorable, dangerous (requires explicit %s)", title, planFlags[rec.Category]))
		default:
			lines = append(lines, fmt.Sprintf("%s: restorable with %s", title, planFlags[rec.Category]))
		}
	}
	return lines
}

func statusDetail(rec *record.Record) string {
	if rec.Error != "" {
		return rec.Error
	}
	return fmt.Sprintf("%d sections", len(rec.Sections))
}

func markdownCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
