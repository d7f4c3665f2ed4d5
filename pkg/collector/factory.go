/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package collector

import "github.com/syskeep/syskeep/pkg/record"

// Factory creates the ordered set of collectors for one run.
// The interface enables dependency injection for testing.
type Factory interface {
	Collectors() []Collector
}

// Option configures the DefaultFactory.
type Option func(*DefaultFactory)

// WithConfigPaths extends the config-file archive allow-list.
func WithConfigPaths(paths ...string) Option {
	return func(f *DefaultFactory) {
		f.configPaths = append(f.configPaths, paths...)
	}
}

// WithArchiveDir sets the local directory that the config-file collector
// archives into. Required for the config_files category to run.
func WithArchiveDir(dir string) Option {
	return func(f *DefaultFactory) {
		f.archiveDir = dir
	}
}

// WithServices narrows the systemd unit allow-list captured in detail.
func WithServices(services ...string) Option {
	return func(f *DefaultFactory) {
		f.services = services
	}
}

// DefaultFactory creates collectors with production dependencies, in the
// fixed category order of record.Categories.
type DefaultFactory struct {
	configPaths []string
	archiveDir  string
	services    []string
}

// NewDefaultFactory creates a factory with default settings.
func NewDefaultFactory(opts ...Option) *DefaultFactory {
	f := &DefaultFactory{
		configPaths: DefaultConfigPaths(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Collectors returns one collector per category, in collection order.
func (f *DefaultFactory) Collectors() []Collector {
	return []Collector{
		&SystemInfoCollector{},
		&PackagesCollector{},
		&UsersGroupsCollector{},
		&FilesystemCollector{},
		&NetworkCollector{},
		&SSHConfigCollector{},
		&ServicesCollector{Services: f.services},
		&PortsCollector{},
		&FirewallCollector{},
		&CronJobsCollector{},
		&SoftwareCollector{},
		&ConfigFilesCollector{Paths: f.configPaths, ArchiveDir: f.archiveDir},
	}
}

// ByCategory returns the collector for one category, or nil.
func (f *DefaultFactory) ByCategory(c record.Category) Collector {
	for _, col := range f.Collectors() {
		if col.Category() == c {
			return col
		}
	}
	return nil
}
