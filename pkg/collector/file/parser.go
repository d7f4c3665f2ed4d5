/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package file parses configuration files on a target host and archives
// verbatim copies of them into a snapshot.
package file

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/syskeep/syskeep/pkg/runner"
)

// Option configures the Parser.
type Option func(*Parser)

// Parser parses configuration files with customizable settings.
// Files are read through a Runner, so local and remote targets parse alike.
type Parser struct {
	delimiter    string
	maxSize      int
	skipComments bool
	kvDelimiter  string
	vDefault     string
	vTrimChars   string
}

// WithDelimiter sets the delimiter used to split entries. Default "\n".
func WithDelimiter(delim string) Option {
	return func(p *Parser) {
		p.delimiter = delim
	}
}

// WithMaxSize sets the maximum file size in bytes. Default 1MB.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

// WithSkipComments sets whether comment lines are dropped. Default true.
func WithSkipComments(skip bool) Option {
	return func(p *Parser) {
		p.skipComments = skip
	}
}

// WithKVDelimiter sets the key-value delimiter used by GetMap. Default "=".
func WithKVDelimiter(kvDelim string) Option {
	return func(p *Parser) {
		p.kvDelimiter = kvDelim
	}
}

// WithVDefault sets the value used for keys without one. Default "".
func WithVDefault(vDefault string) Option {
	return func(p *Parser) {
		p.vDefault = vDefault
	}
}

// WithVTrimChars sets characters trimmed from values in GetMap.
func WithVTrimChars(trimChars string) Option {
	return func(p *Parser) {
		p.vTrimChars = trimChars
	}
}

// NewParser creates a parser with the provided options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		delimiter:    "\n",
		maxSize:      1 << 20,
		skipComments: true,
		kvDelimiter:  "=",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetLines reads the file at path on the target and splits its content by
// the configured delimiter, returning non-empty, non-comment entries.
func (p *Parser) GetLines(ctx context.Context, r runner.Runner, path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	b, err := r.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("content of file %q is not valid UTF-8", path)
	}
	if len(b) > p.maxSize {
		return nil, fmt.Errorf("file %q exceeds maximum size of %d bytes", path, p.maxSize)
	}

	parts := strings.Split(string(b), p.delimiter)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		cleanPart := strings.TrimSpace(part)
		if cleanPart == "" {
			continue
		}
		if p.skipComments && strings.HasPrefix(cleanPart, "#") {
			continue
		}
		result = append(result, cleanPart)
	}

	return result, nil
}

// GetMap reads the file at path and parses its entries into key-value pairs
// using the configured delimiter. Entries without the delimiter map to the
// configured default value.
func (p *Parser) GetMap(ctx context.Context, r runner.Runner, path string) (map[string]string, error) {
	parts, err := p.GetLines(ctx, r, path)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, part := range parts {
		kv := strings.SplitN(part, p.kvDelimiter, 2)

		key := strings.TrimSpace(kv[0])
		value := p.vDefault
		if len(kv) == 2 {
			value = strings.TrimSpace(kv[1])
		}
		if p.vTrimChars != "" {
			value = strings.Trim(value, p.vTrimChars)
		}

		result[key] = value
	}

	return result, nil
}
