/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package restorer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/version"
)

// PackagesApplier installs packages captured in the snapshot that are
// missing or older on the target. It never removes packages: extra
// software on the target is not drift this tool corrects.
type PackagesApplier struct{}

func (a *PackagesApplier) Category() record.Category { return record.CategoryPackages }
func (a *PackagesApplier) Dangerous() bool           { return false }

// pkgTool matches a captured inventory section with the manager commands
// on the restoration target.
type pkgTool struct {
	section    string
	queryCmd   string
	queryArgs  []string
	installCmd string
	installArg []string
}

var pkgTools = []pkgTool{
	{
		section:    "dpkg",
		queryCmd:   "dpkg-query",
		queryArgs:  []string{"-W", "-f", "${Package} ${Version}\n"},
		installCmd: "apt-get",
		installArg: []string{"install", "-y"},
	},
	{
		section:    "rpm",
		queryCmd:   "rpm",
		queryArgs:  []string{"-qa", "--qf", "%{NAME} %{VERSION}-%{RELEASE}\n"},
		installCmd: "dnf",
		installArg: []string{"install", "-y"},
	},
	{
		section:    "apk",
		queryCmd:   "apk",
		queryArgs:  []string{"info", "-v"},
		installCmd: "apk",
		installArg: []string{"add"},
	},
}

func (a *PackagesApplier) Apply(ctx context.Context, env *Env, rec *record.Record) error {
	for _, tool := range pkgTools {
		sec := rec.Section(tool.section)
		if sec == nil {
			continue
		}
		if !env.Runner.HasCommand(ctx, tool.installCmd) {
			return fmt.Errorf("snapshot has a %s inventory but %s is not available on the target",
				tool.section, tool.installCmd)
		}
		return a.applyTool(ctx, env, tool, sec)
	}

	// Inventory came from a manager this applier cannot drive (pip, snap,
	// language packages). Captured for reporting only.
	return ErrNotReplayable
}

func (a *PackagesApplier) applyTool(ctx context.Context, env *Env, tool pkgTool, sec *record.Section) error {
	out, err := env.Runner.Run(ctx, tool.queryCmd, tool.queryArgs...)
	if err != nil {
		return fmt.Errorf("querying installed packages: %w", err)
	}

	installed := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		if name, ver, ok := strings.Cut(strings.TrimSpace(line), " "); ok {
			installed[name] = ver
		}
	}

	wanted := make(map[string]string, len(sec.Data))
	for name, ver := range sec.Data {
		wanted[name] = ver
	}
	if len(sec.Lines) > 0 {
		// Line inventories ("name-1.2.3" apk style) install by name only.
		for _, line := range sec.Lines {
			if name, _, ok := strings.Cut(line, " "); ok {
				wanted[name] = ""
			} else {
				wanted[line] = ""
			}
		}
	}

	var missing []string
	for name, wantVer := range wanted {
		haveVer, present := installed[name]
		if present && (wantVer == "" || version.AtLeast(haveVer, wantVer)) {
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) == 0 {
		slog.Debug("all captured packages already present", "manager", tool.section)
		return nil
	}
	sort.Strings(missing)

	args := append(append([]string{}, tool.installArg...), missing...)
	if _, err := env.RunCmd(ctx, tool.installCmd, args...); err != nil {
		return fmt.Errorf("installing %d packages: %w", len(missing), err)
	}
	return nil
}
