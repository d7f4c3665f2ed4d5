/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHeader(t *testing.T) {
	h := NewHeader(
		WithKind(KindSnapshot),
		WithMetadata("hostname", "web-01"),
	)
	assert.Equal(t, Kind(KindSnapshot), h.Kind)
	assert.Equal(t, APIVersion, h.APIVersion)
	assert.Equal(t, "web-01", h.Metadata["hostname"])
}

func TestHeaderInit(t *testing.T) {
	var h Header
	h.Init(KindStepLog, "v1.2.3")
	assert.True(t, h.Kind.IsValid())
	assert.Equal(t, "v1.2.3", h.Metadata["version"])
	assert.NotEmpty(t, h.Metadata["timestamp"])

	var bare Header
	bare.Init(KindSnapshot, "")
	assert.NotContains(t, bare.Metadata, "version")
}

func TestKindIsValid(t *testing.T) {
	assert.False(t, Kind("Manifest").IsValid())
}
