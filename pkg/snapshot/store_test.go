/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package snapshot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/syskeep/syskeep/pkg/errors"
	"github.com/syskeep/syskeep/pkg/record"
)

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap := New("web-01", "1.2.3")

	rec := record.NewRecord(record.CategorySystemInfo)
	rec.Sections = append(rec.Sections, record.Section{
		Name: "identity",
		Data: map[string]string{"hostname": "web-01", "kernel": "6.5.0"},
	})
	snap.Records = append(snap.Records,
		rec,
		record.NewSkipped(record.CategoryFirewall, "no firewall frontend installed"),
	)
	return snap
}

func TestStoreWriteLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	snap := testSnapshot(t)

	dir, err := store.Write(context.Background(), snap)
	require.NoError(t, err)

	got, err := store.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "web-01", got.Hostname)
	require.Len(t, got.Records, 2)

	si := got.Record(record.CategorySystemInfo)
	require.NotNil(t, si)
	assert.Equal(t, "6.5.0", si.Section("identity").Data["kernel"])

	// Skipped categories survive the round trip as first-class records.
	fw := got.Record(record.CategoryFirewall)
	require.NotNil(t, fw)
	assert.Equal(t, record.StatusSkipped, fw.Status)
}

func TestStoreWriteRefusesExisting(t *testing.T) {
	store := NewStore(t.TempDir())
	snap := testSnapshot(t)

	_, err := store.Write(context.Background(), snap)
	require.NoError(t, err)

	_, err = store.Write(context.Background(), snap)
	require.Error(t, err, "second Write() into the same directory must fail")
	assert.True(t, serrors.HasCode(err, serrors.ErrCodeInvalidRequest),
		"error code = %v", serrors.CodeOf(err))
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Load("web-01_20240101-000000")
	require.Error(t, err)
	assert.True(t, serrors.HasCode(err, serrors.ErrCodeSnapshotNotFound),
		"error code = %v, want SNAPSHOT_NOT_FOUND", serrors.CodeOf(err))
}

func TestStoreListAndLatest(t *testing.T) {
	store := NewStore(t.TempDir())

	a := New("web-01", "1.2.3")
	a.Metadata["timestamp"] = "2024-01-01T00:00:00Z"
	b := New("web-01", "1.2.3")
	b.Metadata["timestamp"] = "2024-02-01T00:00:00Z"
	c := New("db-01", "1.2.3")
	c.Metadata["timestamp"] = "2024-01-15T00:00:00Z"

	for _, snap := range []*Snapshot{a, b, c} {
		_, err := store.Write(context.Background(), snap)
		require.NoError(t, err)
	}

	infos, err := store.List()
	require.NoError(t, err)
	assert.Len(t, infos, 3)

	latest, err := store.Latest("web-01")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(latest, "web-01_20240201-000000"), "Latest() = %q", latest)

	_, err = store.Latest("unknown-host")
	assert.True(t, serrors.HasCode(err, serrors.ErrCodeSnapshotNotFound),
		"Latest(unknown) code = %v", serrors.CodeOf(err))
}
