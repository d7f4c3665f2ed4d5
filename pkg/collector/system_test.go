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

func TestSystemInfoCollect(t *testing.T) {
	fake := runnertest.New("web-01").
		Script("uname -r", "6.5.0-21-generic\n").
		Script("uname -m", "x86_64\n").
		Script("nproc", "8\n").
		WithFile("/etc/os-release", "ID=ubuntu\nVERSION_ID=\"22.04\"\n").
		WithFile("/proc/meminfo", "MemTotal:       16314240 kB\nMemFree:         1024000 kB\n")

	rec, err := (&SystemInfoCollector{}).Collect(context.Background(), fake)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if rec.Status != record.StatusOK {
		t.Fatalf("Status = %v, error = %q", rec.Status, rec.Error)
	}

	id := rec.Section("identity")
	if id == nil || id.Data["hostname"] != "web-01" || id.Data["kernel"] != "6.5.0-21-generic" {
		t.Errorf("identity = %+v", id)
	}

	osr := rec.Section("os_release")
	if osr == nil || osr.Data["VERSION_ID"] != "22.04" {
		t.Errorf("os_release = %+v", osr)
	}

	hw := rec.Section("hardware")
	if hw == nil || hw.Data["cpus"] != "8" || hw.Data["mem_total"] != "16314240 kB" {
		t.Errorf("hardware = %+v", hw)
	}
}

func TestSystemInfoCollectPartial(t *testing.T) {
	fake := runnertest.New("web-01").
		Script("uname -r", "6.5.0-21-generic\n")

	rec, err := (&SystemInfoCollector{}).Collect(context.Background(), fake)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if rec.Status != record.StatusPartial {
		t.Errorf("Status = %v, want partial without os-release", rec.Status)
	}
	if !rec.Status.IsUsable() {
		t.Error("partial record must remain usable")
	}
}
