/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string            `json:"name" yaml:"name"`
	Count int               `json:"count" yaml:"count"`
	Tags  map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

func TestWriterSerialize(t *testing.T) {
	in := sample{Name: "web-1", Count: 3, Tags: map[string]string{"env": "prod"}}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(FormatJSON, &buf)
		if err := w.Serialize(context.Background(), in); err != nil {
			t.Fatalf("Serialize() error = %v", err)
		}
		if !strings.Contains(buf.String(), `"name": "web-1"`) {
			t.Errorf("unexpected JSON output: %s", buf.String())
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(FormatYAML, &buf)
		if err := w.Serialize(context.Background(), in); err != nil {
			t.Fatalf("Serialize() error = %v", err)
		}
		if !strings.Contains(buf.String(), "name: web-1") {
			t.Errorf("unexpected YAML output: %s", buf.String())
		}
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(FormatTable, &buf)
		if err := w.Serialize(context.Background(), in); err != nil {
			t.Fatalf("Serialize() error = %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "FIELD") || !strings.Contains(out, "Tags.env") {
			t.Errorf("unexpected table output: %s", out)
		}
	})

	t.Run("unknown format falls back to JSON", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(Format("xml"), &buf)
		if err := w.Serialize(context.Background(), in); err != nil {
			t.Fatalf("Serialize() error = %v", err)
		}
		if !strings.Contains(buf.String(), `"name"`) {
			t.Errorf("expected JSON fallback, got: %s", buf.String())
		}
	})
}

func TestFileWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")

	w := NewFileWriterOrStdout(FormatYAML, path)
	in := sample{Name: "db-1", Count: 7}
	if err := w.Serialize(context.Background(), in); err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	out, err := FromFile[sample](path)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}
	if out.Name != "db-1" || out.Count != 7 {
		t.Errorf("round trip = %+v", out)
	}
}

func TestFromFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := FromFile[sample]("/nonexistent/file.yaml"); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("json content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.json")
		if err := os.WriteFile(path, []byte(`{"name":"x","count":1}`), 0o644); err != nil {
			t.Fatal(err)
		}
		out, err := FromFile[sample](path)
		if err != nil {
			t.Fatalf("FromFile() error = %v", err)
		}
		if out.Name != "x" {
			t.Errorf("Name = %q, want x", out.Name)
		}
	})

	t.Run("table is write-only", func(t *testing.T) {
		if _, err := FromFile[sample]("result.table"); err == nil {
			t.Fatal("expected error for table format")
		}
	})
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"snapshot.json", FormatJSON},
		{"snapshot.YAML", FormatYAML},
		{"snapshot.yml", FormatYAML},
		{"report.txt", FormatTable},
		{"unknown.bin", FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatFromPath(tt.path); got != tt.want {
				t.Errorf("FormatFromPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
