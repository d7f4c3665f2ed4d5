/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package collector

import (
	"context"
	"testing"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner/runnertest"
)

func TestFilesystemCollect(t *testing.T) {
	fake := runnertest.New("host-1").
		WithFile("/etc/fstab",
			"# /etc/fstab: static file system information\n"+
				"UUID=abc / ext4 errors=remount-ro 0 1\n").
		WithFile("/proc/mounts",
			"proc /proc proc rw 0 0\n"+
				"/dev/sda1 / ext4 rw,relatime 0 0\n"+
				"tmpfs /run tmpfs rw 0 0\n").
		Script("lsblk -rno NAME,TYPE,SIZE,MOUNTPOINT", "sda disk 100G \nsda1 part 100G /\n")

	rec, err := (&FilesystemCollector{}).Collect(context.Background(), fake)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if rec.Status != record.StatusOK {
		t.Fatalf("Status = %v, error = %q", rec.Status, rec.Error)
	}

	fstab := rec.Section("fstab")
	if fstab == nil || len(fstab.Lines) != 1 {
		t.Errorf("fstab = %+v", fstab)
	}

	// Kernel-virtual filesystems churn between boots and are excluded.
	mounts := rec.Section("mounts")
	if mounts == nil || len(mounts.Lines) != 1 || mounts.Lines[0] != "/dev/sda1 / ext4 rw,relatime 0 0" {
		t.Errorf("mounts = %+v", mounts)
	}

	if rec.Section("lvm") != nil {
		t.Error("lvm section present without pvs")
	}
}

func TestFilesystemCollectPartial(t *testing.T) {
	fake := runnertest.New("host-1").
		WithFile("/proc/mounts", "/dev/sda1 / ext4 rw 0 0\n")

	rec, err := (&FilesystemCollector{}).Collect(context.Background(), fake)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if rec.Status != record.StatusPartial {
		t.Errorf("Status = %v, want partial without fstab", rec.Status)
	}
}
