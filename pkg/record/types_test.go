/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package record

import (
	"errors"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in    string
		want  Category
		valid bool
	}{
		{"packages", CategoryPackages, true},
		{"ssh_config", CategorySSHConfig, true},
		{"config_files", CategoryConfigFiles, true},
		{"Packages", "", false},
		{"", "", false},
		{"bogus", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			if ok != tt.valid || got != tt.want {
				t.Errorf("ParseCategory(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.valid)
			}
		})
	}
}

func TestCategoriesOrderIsStable(t *testing.T) {
	// The collection order is part of the snapshot contract.
	if Categories[0] != CategorySystemInfo {
		t.Errorf("first category = %v, want system_info", Categories[0])
	}
	if Categories[len(Categories)-1] != CategoryConfigFiles {
		t.Errorf("last category = %v, want config_files", Categories[len(Categories)-1])
	}
	if len(Categories) != 12 {
		t.Errorf("category count = %d, want 12", len(Categories))
	}
}

func TestCaptureStatusIsUsable(t *testing.T) {
	tests := []struct {
		status CaptureStatus
		want   bool
	}{
		{StatusOK, true},
		{StatusPartial, true},
		{StatusSkipped, false},
		{StatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsUsable(); got != tt.want {
				t.Errorf("IsUsable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordSection(t *testing.T) {
	r := NewRecord(CategoryPackages)
	r.Sections = append(r.Sections, Section{
		Name: "dpkg",
		Data: map[string]string{"openssl": "3.0.2"},
	})

	sec := r.Section("dpkg")
	if sec == nil {
		t.Fatal("expected dpkg section")
	}
	if sec.Data["openssl"] != "3.0.2" {
		t.Errorf("openssl = %q, want 3.0.2", sec.Data["openssl"])
	}

	if r.Section("rpm") != nil {
		t.Error("did not expect rpm section")
	}
}

func TestNewFailedCarriesErrorText(t *testing.T) {
	r := NewFailed(CategoryNetwork, errors.New("ip: command not found"))
	if r.Status != StatusFailed {
		t.Errorf("Status = %v, want failed", r.Status)
	}
	if r.Error != "ip: command not found" {
		t.Errorf("Error = %q", r.Error)
	}
}
