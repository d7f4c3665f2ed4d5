/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package snapshot defines the snapshot document and its on-disk store.
package snapshot

import (
	"time"
)

const (
	KindSnapshot = "Snapshot"
	KindStepLog  = "StepLog"

	// APIVersion identifies the snapshot schema version.
	APIVersion = "syskeep/v1"
)

// Kind represents the type of syskeep document.
type Kind string

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is one of the recognized kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindSnapshot, KindStepLog:
		return true
	default:
		return false
	}
}

// Header contains identity and versioning information for syskeep
// documents, following Kubernetes-style resource conventions.
type Header struct {
	// Kind is the type of the document.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the schema version of the document.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata contains key-value pairs with metadata about the document.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata returns an Option that adds a metadata key-value pair.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind returns an Option that sets the Kind field of the Header.
func WithKind(kind Kind) Option {
	return func(h *Header) {
		h.Kind = kind
	}
}

// NewHeader creates a Header with the provided functional options.
func NewHeader(opts ...Option) *Header {
	h := &Header{
		APIVersion: APIVersion,
		Metadata:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Init stamps the header with kind, schema version, capture timestamp,
// and the tool version that produced it.
func (h *Header) Init(kind Kind, version string) {
	opts := []Option{
		WithKind(kind),
		WithMetadata("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	if version != "" {
		opts = append(opts, WithMetadata("version", version))
	}
	*h = *NewHeader(opts...)
}
