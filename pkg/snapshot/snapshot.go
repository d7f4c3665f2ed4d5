/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package snapshot

import (
	"time"

	"github.com/syskeep/syskeep/pkg/record"
)

// DirTimeFormat is the timestamp component of snapshot directory names.
const DirTimeFormat = "20060102-150405"

// Snapshot is one complete capture of a host's configuration: a header
// plus one Record per category, in category order.
type Snapshot struct {
	Header `json:",inline" yaml:",inline"`

	// Hostname of the captured host.
	Hostname string `json:"hostname" yaml:"hostname"`

	// Records contains one entry per category, in record.Categories order.
	// Failed and skipped categories are present, not omitted.
	Records []*record.Record `json:"records" yaml:"records"`
}

// New creates an empty Snapshot for the given host, stamped with the
// current time and the producing tool version.
func New(hostname, version string) *Snapshot {
	s := &Snapshot{
		Hostname: hostname,
		Records:  make([]*record.Record, 0, len(record.Categories)),
	}
	s.Init(KindSnapshot, version)
	s.Metadata["hostname"] = hostname
	return s
}

// Record returns the record for the given category, or nil.
func (s *Snapshot) Record(c record.Category) *record.Record {
	for _, r := range s.Records {
		if r.Category == c {
			return r
		}
	}
	return nil
}

// Timestamp returns the capture time from the header metadata, or the
// zero time when absent or malformed.
func (s *Snapshot) Timestamp() time.Time {
	ts, err := time.Parse(time.RFC3339, s.Metadata["timestamp"])
	if err != nil {
		return time.Time{}
	}
	return ts
}

// DirName returns the canonical store directory name for this snapshot,
// "<hostname>_<timestamp>".
func (s *Snapshot) DirName() string {
	ts := s.Timestamp()
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return s.Hostname + "_" + ts.Format(DirTimeFormat)
}

// Statuses summarizes the snapshot as a category to status map.
func (s *Snapshot) Statuses() map[record.Category]record.CaptureStatus {
	out := make(map[record.Category]record.CaptureStatus, len(s.Records))
	for _, r := range s.Records {
		out[r.Category] = r.Status
	}
	return out
}
