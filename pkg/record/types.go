/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package record

import "fmt"

// Category identifies one independent inspection or restoration unit.
type Category string

const (
	CategorySystemInfo        Category = "system_info"
	CategoryPackages          Category = "packages"
	CategoryUsersGroups       Category = "users_groups"
	CategoryFilesystem        Category = "filesystem"
	CategoryNetwork           Category = "network"
	CategorySSHConfig         Category = "ssh_config"
	CategoryServices          Category = "services"
	CategoryPorts             Category = "ports"
	CategoryFirewall          Category = "firewall"
	CategoryCronJobs          Category = "cron_jobs"
	CategoryInstalledSoftware Category = "installed_software"
	CategoryConfigFiles       Category = "config_files"
)

// Categories is the fixed, ordered list of all inspection categories.
// Collection runs in this order; the order is part of the snapshot contract.
var Categories = []Category{
	CategorySystemInfo,
	CategoryPackages,
	CategoryUsersGroups,
	CategoryFilesystem,
	CategoryNetwork,
	CategorySSHConfig,
	CategoryServices,
	CategoryPorts,
	CategoryFirewall,
	CategoryCronJobs,
	CategoryInstalledSoftware,
	CategoryConfigFiles,
}

// String returns the string representation of the Category.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the Category is one of the recognized categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory parses a string into a Category.
// Returns the Category and true on success, or empty Category and false.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	if c.IsValid() {
		return c, true
	}
	return "", false
}

// CaptureStatus describes the outcome of capturing one category.
type CaptureStatus string

const (
	// StatusOK means the probe captured everything it looked for.
	StatusOK CaptureStatus = "ok"
	// StatusPartial means the probe captured some data but parts of the
	// subsystem were absent or unreadable.
	StatusPartial CaptureStatus = "partial"
	// StatusSkipped means the subsystem is not present on the host, or the
	// module was disabled by configuration. Distinct from failed.
	StatusSkipped CaptureStatus = "skipped"
	// StatusFailed means the probe itself broke. Isolated per category.
	StatusFailed CaptureStatus = "failed"
)

// IsUsable reports whether a record with this status can feed a restoration.
func (s CaptureStatus) IsUsable() bool {
	return s == StatusOK || s == StatusPartial
}

// Section is one named group of captured data within a Record.
// Data holds key/value pairs; Lines holds raw ordered output. A section
// uses one or the other depending on what the probe produced.
type Section struct {
	Name  string            `json:"section" yaml:"section"`
	Data  map[string]string `json:"data,omitempty" yaml:"data,omitempty"`
	Lines []string          `json:"lines,omitempty" yaml:"lines,omitempty"`
}

// ArchivedFile describes one verbatim config-file copy held in the
// snapshot's config_files directory. Copies are never templated or mutated.
type ArchivedFile struct {
	// Source is the absolute path on the captured host.
	Source string `json:"source" yaml:"source"`
	// Name is the file name of the archived copy within config_files/.
	Name string `json:"name" yaml:"name"`
	// Checksum is the hex SHA-256 of the archived content.
	Checksum string `json:"checksum" yaml:"checksum"`
}

// Record is the captured output of one category for one host.
type Record struct {
	Category Category      `json:"category" yaml:"category"`
	Status   CaptureStatus `json:"status" yaml:"status"`
	// Enabled is false when the module was disabled by configuration
	// rather than skipped for a missing subsystem.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Error carries the probe error text when Status is failed or partial.
	Error    string         `json:"error,omitempty" yaml:"error,omitempty"`
	Sections []Section      `json:"sections,omitempty" yaml:"sections,omitempty"`
	Files    []ArchivedFile `json:"files,omitempty" yaml:"files,omitempty"`
}

// Section returns the named section, or nil when the record has none.
func (r *Record) Section(name string) *Section {
	for i := range r.Sections {
		if r.Sections[i].Name == name {
			return &r.Sections[i]
		}
	}
	return nil
}

// NewRecord creates an ok Record for the given category.
func NewRecord(category Category) *Record {
	return &Record{
		Category: category,
		Status:   StatusOK,
		Enabled:  true,
		Sections: make([]Section, 0),
	}
}

// NewSkipped creates a skipped Record with a reason.
func NewSkipped(category Category, reason string) *Record {
	return &Record{
		Category: category,
		Status:   StatusSkipped,
		Enabled:  true,
		Error:    reason,
	}
}

// NewDisabled creates the record for a module disabled by configuration.
func NewDisabled(category Category) *Record {
	return &Record{
		Category: category,
		Status:   StatusSkipped,
		Enabled:  false,
		Error:    "disabled by configuration",
	}
}

// NewFailed creates a failed Record carrying the capture error text.
func NewFailed(category Category, err error) *Record {
	return &Record{
		Category: category,
		Status:   StatusFailed,
		Enabled:  true,
		Error:    fmt.Sprintf("%v", err),
	}
}
