/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

func testSnapshot() *snapshot.Snapshot {
	snap := snapshot.New("web-01", "1.2.3")

	sys := record.NewRecord(record.CategorySystemInfo)
	sys.Sections = append(sys.Sections, record.Section{
		Name: "identity",
		Data: map[string]string{"hostname": "web-01", "kernel": "6.5.0"},
	})

	ports := record.NewRecord(record.CategoryPorts)
	ports.Sections = append(ports.Sections, record.Section{
		Name:  "listening",
		Lines: []string{"tcp 0.0.0.0:22"},
	})

	snap.Records = append(snap.Records,
		sys,
		record.NewRecord(record.CategoryCronJobs),
		record.NewRecord(record.CategoryServices),
		record.NewFailed(record.CategoryNetwork, errors.New("ip: command not found")),
		record.NewSkipped(record.CategoryFirewall, "no firewall frontend installed"),
		ports,
	)
	return snap
}

// Reports enumerate every category of the capture. A failed or skipped
// category must be stated, not silently dropped.
func TestRenderMarkdownEnumeratesAllCategories(t *testing.T) {
	var b strings.Builder
	if err := Render(&b, testSnapshot(), FormatMarkdown); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"# System Report: web-01",
		"Tool version: 1.2.3",
		"## System Info",
		"| kernel | 6.5.0 |",
		"## Network",
		"ip: command not found",
		"## Firewall",
		"no firewall frontend installed",
		"tcp 0.0.0.0:22",
		"## Restoration Checklist",
		"Network: capture failed, NOT restorable",
		"Ports: report-only, never restored",
		"Cron Jobs: restorable with --cron",
		"Services: restorable, dangerous (requires explicit --services)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown report missing %q", want)
		}
	}
}

func TestRenderHTML(t *testing.T) {
	var b strings.Builder
	if err := Render(&b, testSnapshot(), FormatHTML); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"<title>System Report: web-01</title>",
		"<p>Tool version: 1.2.3</p>",
		"<h2>System Info</h2>",
		"<td>kernel</td><td>6.5.0</td>",
		`class="status-failed"`,
		"Restoration Checklist",
		"Cron Jobs: restorable with --cron",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html report missing %q", want)
		}
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	var b strings.Builder
	if err := Render(&b, testSnapshot(), Format("pdf")); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !Format("pdf").IsUnknown() {
		t.Error("IsUnknown(pdf) = false")
	}
}
