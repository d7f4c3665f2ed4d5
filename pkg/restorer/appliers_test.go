/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/runner/runnertest"
)

const dpkgQueryCmd = "dpkg-query -W -f ${Package} ${Version}\n"

func newEnv(fake *runnertest.Fake) *Env {
	return &Env{Runner: fake}
}

func TestPackagesApplierInstallsMissing(t *testing.T) {
	fake := runnertest.New("web-01").
		Script(dpkgQueryCmd, "nginx 1.18.0\n").
		Script("apt-get install -y openssh-server", "")

	rec := record.NewRecord(record.CategoryPackages)
	rec.Sections = append(rec.Sections, record.Section{
		Name: "dpkg",
		Data: map[string]string{"nginx": "1.18.0", "openssh-server": "8.9p1"},
	})

	env := newEnv(fake)
	if err := (&PackagesApplier{}).Apply(context.Background(), env, rec); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !fake.Ran("apt-get install -y openssh-server") {
		t.Errorf("install not run; calls = %v", fake.Calls)
	}
}

// A newer installed version satisfies the snapshot; nothing to install.
func TestPackagesApplierVersionAware(t *testing.T) {
	fake := runnertest.New("web-01").
		Script(dpkgQueryCmd, "nginx 1.20.1\n").
		Script("apt-get --version", "apt 2.4.11\n")

	rec := record.NewRecord(record.CategoryPackages)
	rec.Sections = append(rec.Sections, record.Section{
		Name: "dpkg",
		Data: map[string]string{"nginx": "1.18.0"},
	})

	env := newEnv(fake)
	if err := (&PackagesApplier{}).Apply(context.Background(), env, rec); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(env.Changed()) != 0 {
		t.Errorf("Changed = %v, want none", env.Changed())
	}
	if fake.Ran("apt-get") {
		t.Error("install ran for an already-satisfied package")
	}
}

func TestPackagesApplierUnreplayableInventory(t *testing.T) {
	rec := record.NewRecord(record.CategoryPackages)
	rec.Sections = append(rec.Sections, record.Section{
		Name:  "pip",
		Lines: []string{"requests==2.31.0"},
	})

	err := (&PackagesApplier{}).Apply(context.Background(), newEnv(runnertest.New("h")), rec)
	if !errors.Is(err, ErrNotReplayable) {
		t.Errorf("Apply() = %v, want ErrNotReplayable", err)
	}
}

func TestUsersGroupsApplierCreatesMissing(t *testing.T) {
	fake := runnertest.New("web-01").
		WithFile("/etc/passwd", "root:x:0:0:root:/root:/bin/bash\n").
		WithFile("/etc/group", "root:x:0:\n").
		Script("groupadd -g 1000 alice", "").
		Script("useradd -u 1000 -g 1000 -d /home/alice -m -s /bin/zsh alice", "")

	rec := record.NewRecord(record.CategoryUsersGroups)
	rec.Sections = append(rec.Sections,
		record.Section{Name: "users", Data: map[string]string{
			"root":  "uid=0 gid=0 home=/root shell=/bin/bash",
			"alice": "uid=1000 gid=1000 home=/home/alice shell=/bin/zsh",
		}},
		record.Section{Name: "groups", Data: map[string]string{
			"root":  "gid=0 members=",
			"alice": "gid=1000 members=",
		}},
	)

	env := newEnv(fake)
	if err := (&UsersGroupsApplier{}).Apply(context.Background(), env, rec); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !fake.Ran("groupadd -g 1000 alice") {
		t.Errorf("groupadd not run; calls = %v", fake.Calls)
	}
	if !fake.Ran("useradd") {
		t.Errorf("useradd not run; calls = %v", fake.Calls)
	}
	// Existing accounts are never recreated or deleted.
	for _, call := range fake.Calls {
		if strings.Contains(call, "userdel") || strings.Contains(call, "groupdel") ||
			strings.Contains(call, "useradd") && strings.Contains(call, " root") {
			t.Errorf("forbidden call: %s", call)
		}
	}
}

func TestSSHConfigApplierValidatesBeforeSwap(t *testing.T) {
	_, dir := newConfigFileSnapshot(t, "ignored")

	fake := runnertest.New("web-01").
		WithFile("/etc/ssh/sshd_config", "Port 22\n").
		Script("sshd -t -f /tmp/syskeep-sshd-config-candidate", "").
		Script("rm -f /tmp/syskeep-sshd-config-candidate", "")

	writeArchived(t, dir, "etc_ssh_sshd_config", "Port 2222\nPermitRootLogin no\n")

	env := &Env{Runner: fake, SnapshotDir: dir}
	rec := record.NewRecord(record.CategorySSHConfig)
	if err := (&SSHConfigApplier{}).Apply(context.Background(), env, rec); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !fake.Ran("sshd -t") {
		t.Error("candidate config was not validated")
	}
	if fake.Files["/etc/ssh/sshd_config"] != "Port 2222\nPermitRootLogin no\n" {
		t.Errorf("sshd_config = %q", fake.Files["/etc/ssh/sshd_config"])
	}
}

func TestSSHConfigApplierRejectsInvalidConfig(t *testing.T) {
	_, dir := newConfigFileSnapshot(t, "ignored")
	writeArchived(t, dir, "etc_ssh_sshd_config", "Bogus directive\n")

	fake := runnertest.New("web-01").
		WithFile("/etc/ssh/sshd_config", "Port 22\n").
		Script("rm -f /tmp/syskeep-sshd-config-candidate", "").
		Fail("sshd -t -f /tmp/syskeep-sshd-config-candidate", errors.New("bad directive"))
	// HasCommand only sees scripted stdout, not forced errors.
	fake.Commands["sshd -t -f /tmp/syskeep-sshd-config-candidate"] = ""

	env := &Env{Runner: fake, SnapshotDir: dir}
	err := (&SSHConfigApplier{}).Apply(context.Background(), env, record.NewRecord(record.CategorySSHConfig))
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if fake.Files["/etc/ssh/sshd_config"] != "Port 22\n" {
		t.Error("invalid config was swapped in anyway")
	}
}

func TestServicesApplierEnablesAndStarts(t *testing.T) {
	fake := runnertest.New("web-01").
		Script("systemctl is-enabled nginx.service", "disabled\n").
		Script("systemctl is-active nginx.service", "inactive\n").
		Script("systemctl enable nginx.service", "").
		Script("systemctl start nginx.service", "")

	rec := record.NewRecord(record.CategoryServices)
	rec.Sections = append(rec.Sections,
		record.Section{Name: "units_enabled", Data: map[string]string{"nginx.service": "enabled"}},
		record.Section{Name: "units_running", Data: map[string]string{"nginx.service": "active/running"}},
	)

	env := newEnv(fake)
	if err := (&ServicesApplier{}).Apply(context.Background(), env, rec); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !fake.Ran("systemctl enable nginx.service") || !fake.Ran("systemctl start nginx.service") {
		t.Errorf("calls = %v", fake.Calls)
	}
}

func TestServicesApplierUnchangedWhenStateMatches(t *testing.T) {
	fake := runnertest.New("web-01").
		Script("systemctl is-enabled nginx.service", "enabled\n").
		Script("systemctl is-active nginx.service", "active\n")

	rec := record.NewRecord(record.CategoryServices)
	rec.Sections = append(rec.Sections,
		record.Section{Name: "units_enabled", Data: map[string]string{"nginx.service": "enabled"}},
		record.Section{Name: "units_running", Data: map[string]string{"nginx.service": "active/running"}},
	)

	env := newEnv(fake)
	if err := (&ServicesApplier{}).Apply(context.Background(), env, rec); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(env.Changed()) != 0 {
		t.Errorf("Changed = %v, want none", env.Changed())
	}
}

func TestFirewallApplierStatusOutputNotReplayable(t *testing.T) {
	rec := record.NewRecord(record.CategoryFirewall)
	rec.Sections = append(rec.Sections,
		record.Section{Name: "frontend", Data: map[string]string{"name": "ufw"}},
		record.Section{Name: "rules", Lines: []string{"Status: active"}},
	)

	err := (&FirewallApplier{}).Apply(context.Background(), newEnv(runnertest.New("h")), rec)
	if !errors.Is(err, ErrNotReplayable) {
		t.Errorf("Apply() = %v, want ErrNotReplayable", err)
	}
}

func TestFirewallApplierLoadsIptablesRules(t *testing.T) {
	rules := []string{"*filter", ":INPUT ACCEPT [0:0]", "-A INPUT -p tcp --dport 22 -j ACCEPT", "COMMIT"}
	fake := runnertest.New("web-01").
		Script("iptables-save", "# old\n*filter\nCOMMIT\n").
		Script("iptables-restore /tmp/syskeep-firewall-rules", "").
		Script("rm -f /tmp/syskeep-firewall-rules", "")

	rec := record.NewRecord(record.CategoryFirewall)
	rec.Sections = append(rec.Sections,
		record.Section{Name: "frontend", Data: map[string]string{"name": "iptables"}},
		record.Section{Name: "rules", Lines: rules},
	)

	env := newEnv(fake)
	if err := (&FirewallApplier{}).Apply(context.Background(), env, rec); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !fake.Ran("iptables-restore") {
		t.Errorf("calls = %v", fake.Calls)
	}
	if got := fake.Files["/tmp/syskeep-firewall-rules"]; got != strings.Join(rules, "\n")+"\n" {
		t.Errorf("staged rules = %q", got)
	}
}

func writeArchived(t *testing.T, snapshotDir, name, content string) {
	t.Helper()
	if err := writeFileSync(snapshotDir+"/config_files/"+name, []byte(content), 0o400); err != nil {
		t.Fatal(err)
	}
}
