/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package version provides lenient parsing and comparison of package version
// strings as emitted by system and language package managers.
//
// Distro versions are messy: "1:7.81.0-1ubuntu1.6" carries an epoch prefix
// and a packaging revision suffix. Parsing keeps the leading numeric
// components and preserves the rest, so "already installed at this or a
// newer version" checks stay meaningful without implementing any package
// manager's full comparison algorithm.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures.
var (
	ErrEmptyVersion = errors.New("version string is empty")
	ErrNonNumeric   = errors.New("version has no leading numeric component")
)

// Version represents a parsed version with up to three significant numeric
// components. Precision records how many components were present; Extras
// preserves epoch-stripped suffixes such as "-1ubuntu1.6".
type Version struct {
	Major     int    `json:"major" yaml:"major"`
	Minor     int    `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch     int    `json:"patch,omitempty" yaml:"patch,omitempty"`
	Precision int    `json:"precision,omitempty" yaml:"precision,omitempty"`
	Epoch     int    `json:"epoch,omitempty" yaml:"epoch,omitempty"`
	Extras    string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// String returns the version respecting its precision. Epoch and extras are
// not included.
func (v Version) String() string {
	switch v.Precision {
	case 1:
		return fmt.Sprintf("%d", v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

// Parse parses a package version string leniently.
// Handled forms: "1", "1.2", "1.2.3", "v1.2.3", "1:7.81.0-1ubuntu1.6",
// "9.0.1378-2", "3.10.12+build4". Anything after the third numeric component
// or the first non-numeric separator lands in Extras.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, ErrEmptyVersion
	}

	var v Version

	// Debian-style epoch prefix.
	if idx := strings.IndexByte(s, ':'); idx > 0 {
		if epoch, err := strconv.Atoi(s[:idx]); err == nil {
			v.Epoch = epoch
			s = s[idx+1:]
		}
	}

	s = strings.TrimPrefix(s, "v")

	// Split off extras: the first '-' or '+' that follows a digit.
	mainPart := s
	for i := 1; i < len(s); i++ {
		ch := s[i]
		if (ch == '-' || ch == '+') && s[i-1] >= '0' && s[i-1] <= '9' {
			mainPart = s[:i]
			v.Extras = s[i:]
			break
		}
	}

	parts := strings.Split(mainPart, ".")
	for i, part := range parts {
		if i == 3 {
			// Fourth and later components join the extras rather than fail;
			// e.g. kernel builds like "5.15.0.91".
			v.Extras = "." + strings.Join(parts[3:], ".") + v.Extras
			break
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			if i == 0 {
				return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, s)
			}
			// Trailing non-numeric component, e.g. "1.2.3rc1" split oddly.
			v.Extras = part + v.Extras
			break
		}
		switch i {
		case 0:
			v.Major = num
		case 1:
			v.Minor = num
		case 2:
			v.Patch = num
		}
		v.Precision = i + 1
	}

	return v, nil
}

// MustParse parses a version string and panics on failure.
// Only for hardcoded strings and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("version.MustParse: %v", err))
	}
	return v
}

// Compare returns -1, 0, or 1 comparing v to other up to the smaller of the
// two precisions. Epoch dominates; extras break exact ties lexically.
func (v Version) Compare(other Version) int {
	if v.Epoch != other.Epoch {
		return sign(v.Epoch - other.Epoch)
	}
	if v.Major != other.Major {
		return sign(v.Major - other.Major)
	}

	precision := min(v.Precision, other.Precision)
	if precision >= 2 && v.Minor != other.Minor {
		return sign(v.Minor - other.Minor)
	}
	if precision >= 3 && v.Patch != other.Patch {
		return sign(v.Patch - other.Patch)
	}

	return strings.Compare(v.Extras, other.Extras)
}

// EqualsOrNewer reports whether v is equal to or newer than other.
func (v Version) EqualsOrNewer(other Version) bool {
	return v.Compare(other) >= 0
}

// AtLeast reports whether the installed version string satisfies the wanted
// version string. Unparseable versions never satisfy anything except an
// exact string match; that keeps idempotence checks honest for oddball
// version formats.
func AtLeast(installed, wanted string) bool {
	if installed == wanted {
		return true
	}
	iv, err := Parse(installed)
	if err != nil {
		return false
	}
	wv, err := Parse(wanted)
	if err != nil {
		return false
	}
	return iv.EqualsOrNewer(wv)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
