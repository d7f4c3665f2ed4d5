/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/syskeep/syskeep/pkg/record"
)

// UsersGroupsApplier recreates missing groups and accounts from the
// snapshot. It never deletes accounts and never touches passwords;
// divergence in the other direction is reported, not corrected.
type UsersGroupsApplier struct{}

func (a *UsersGroupsApplier) Category() record.Category { return record.CategoryUsersGroups }
func (a *UsersGroupsApplier) Dangerous() bool           { return false }

func (a *UsersGroupsApplier) Apply(ctx context.Context, env *Env, rec *record.Record) error {
	currentUsers, currentGroups, err := currentAccounts(ctx, env)
	if err != nil {
		return err
	}

	// Groups first so useradd -g resolves.
	if sec := rec.Section("groups"); sec != nil {
		for _, name := range sortedKeys(sec.Data) {
			if _, exists := currentGroups[name]; exists {
				continue
			}
			args := []string{name}
			if gid := fieldValue(sec.Data[name], "gid"); gid != "" {
				args = append([]string{"-g", gid}, args...)
			}
			if _, err := env.RunCmd(ctx, "groupadd", args...); err != nil {
				return fmt.Errorf("creating group %s: %w", name, err)
			}
		}
	}

	sec := rec.Section("users")
	if sec == nil {
		return nil
	}
	for _, name := range sortedKeys(sec.Data) {
		attrs := sec.Data[name]
		current, exists := currentUsers[name]
		if exists {
			// Account exists; reconcile the login shell only.
			want := fieldValue(attrs, "shell")
			if want != "" && want != fieldValue(current, "shell") {
				if _, err := env.RunCmd(ctx, "usermod", "-s", want, name); err != nil {
					return fmt.Errorf("setting shell for %s: %w", name, err)
				}
			}
			continue
		}

		args := []string{}
		if uid := fieldValue(attrs, "uid"); uid != "" {
			args = append(args, "-u", uid)
		}
		if gid := fieldValue(attrs, "gid"); gid != "" {
			args = append(args, "-g", gid)
		}
		if home := fieldValue(attrs, "home"); home != "" {
			args = append(args, "-d", home, "-m")
		}
		if shell := fieldValue(attrs, "shell"); shell != "" {
			args = append(args, "-s", shell)
		}
		args = append(args, name)
		if _, err := env.RunCmd(ctx, "useradd", args...); err != nil {
			return fmt.Errorf("creating user %s: %w", name, err)
		}
	}

	return nil
}

// currentAccounts parses the target's passwd and group databases into the
// same attribute shape the collector captures.
func currentAccounts(ctx context.Context, env *Env) (users, groups map[string]string, err error) {
	passwd, err := env.Runner.ReadFile(ctx, "/etc/passwd")
	if err != nil {
		return nil, nil, fmt.Errorf("reading target passwd: %w", err)
	}
	users = make(map[string]string)
	for _, line := range strings.Split(string(passwd), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) != 7 {
			continue
		}
		users[fields[0]] = fmt.Sprintf("uid=%s gid=%s home=%s shell=%s",
			fields[2], fields[3], fields[5], fields[6])
	}

	groups = make(map[string]string)
	if group, err := env.Runner.ReadFile(ctx, "/etc/group"); err == nil {
		for _, line := range strings.Split(string(group), "\n") {
			fields := strings.Split(line, ":")
			if len(fields) != 4 {
				continue
			}
			groups[fields[0]] = fmt.Sprintf("gid=%s members=%s", fields[2], fields[3])
		}
	}

	return users, groups, nil
}

// fieldValue extracts "key=value" from a space separated attribute string.
func fieldValue(attrs, key string) string {
	for _, part := range strings.Fields(attrs) {
		if v, ok := strings.CutPrefix(part, key+"="); ok {
			return v
		}
	}
	return ""
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
