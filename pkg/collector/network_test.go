/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package collector

import (
	"context"
	"reflect"
	"testing"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner/runnertest"
)

func newNetworkFake(addrOut string) *runnertest.Fake {
	return runnertest.New("host-1").
		Script("ip -o addr show", addrOut).
		Script("ip -o route show", "default via 10.0.0.1 dev eth0\n10.0.0.0/24 dev eth0 proto kernel\n").
		WithFile("/etc/resolv.conf", "# managed by systemd-resolved\nnameserver 10.0.0.2\nsearch internal\n").
		WithFile("/etc/hosts", "127.0.0.1 localhost\n")
}

func TestNetworkCollect(t *testing.T) {
	fake := newNetworkFake("1: lo inet 127.0.0.1/8 scope host lo\\ valid_lft forever preferred_lft forever\n" +
		"2: eth0 inet 10.0.0.5/24 brd 10.0.0.255 scope global dynamic eth0\\ valid_lft 3042sec preferred_lft 3042sec\n")

	rec, err := (&NetworkCollector{}).Collect(context.Background(), fake)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if rec.Status != record.StatusOK {
		t.Fatalf("Status = %v, error = %q", rec.Status, rec.Error)
	}

	addrs := rec.Section("addresses")
	want := []string{"lo inet 127.0.0.1/8", "eth0 inet 10.0.0.5/24"}
	if addrs == nil || !reflect.DeepEqual(addrs.Lines, want) {
		t.Errorf("addresses = %+v, want %v", addrs, want)
	}

	dns := rec.Section("dns")
	if dns == nil || len(dns.Lines) != 2 || dns.Lines[0] != "nameserver 10.0.0.2" {
		t.Errorf("dns = %+v", dns)
	}
}

// DHCP lease countdowns differ on every capture and must be stripped.
func TestNetworkCollectLeaseChurn(t *testing.T) {
	first := newNetworkFake("2: eth0 inet 10.0.0.5/24 scope global dynamic eth0\\ valid_lft 3042sec preferred_lft 3042sec\n")
	second := newNetworkFake("2: eth0 inet 10.0.0.5/24 scope global dynamic eth0\\ valid_lft 1200sec preferred_lft 1200sec\n")

	c := &NetworkCollector{}
	a, err := c.Collect(context.Background(), first)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	b, err := c.Collect(context.Background(), second)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	eq, err := record.Equivalent(a, b)
	if err != nil {
		t.Fatalf("Equivalent() error = %v", err)
	}
	if !eq {
		t.Error("captures differ on lease lifetime churn")
	}
}

func TestNetworkCollectNothingReachable(t *testing.T) {
	if _, err := (&NetworkCollector{}).Collect(context.Background(), runnertest.New("host-1")); err == nil {
		t.Fatal("expected error when no network data is collectable")
	}
}

func TestNetworkCollectDangerous(t *testing.T) {
	if !(&NetworkCollector{}).Dangerous() {
		t.Error("network must be a dangerous category")
	}
}
