/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FormatFromPath determines the serialization format from a file extension.
// Unknown extensions default to YAML, the snapshot record format.
// Matching is case-insensitive.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML
	case strings.HasSuffix(lower, ".table"), strings.HasSuffix(lower, ".txt"):
		return FormatTable
	default:
		slog.Debug("unknown file extension, defaulting to YAML", "path", path)
		return FormatYAML
	}
}

// FromFile reads and deserializes a typed document from the given file path.
// The format is inferred from the file extension. Table format is write-only.
func FromFile[T any](path string) (*T, error) {
	format := FormatFromPath(path)
	if format == FormatTable {
		return nil, fmt.Errorf("table format does not support deserialization: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return FromBytes[T](format, data)
}

// FromBytes deserializes a typed document from raw bytes in the given format.
func FromBytes[T any](format Format, data []byte) (*T, error) {
	var out T
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatJSON:
		// yaml.v3 parses JSON as a superset; a single decode path keeps the
		// two formats behaviorally identical.
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return &out, nil
}
