// Package catalog provides general purpose fixtures built on the fixtures
// engine: temporary directories, process environment overrides, a fixed
// clock, seeded filesystems and a captured console.
//
// Register them all at once:
//
//	reg := fixtures.NewRegistry()
//	reg.MustRegister(catalog.All()...)
//
// or pick individual ones (dependencies must be registered as well):
//
//	reg.MustRegister(catalog.TmpDir, catalog.Environ)
package catalog

import (
	fixtures "github.com/pumped-fn/pumped-fixtures"
)

// Fixture names.
const (
	TmpDirName  = "tmpdir"
	EnvironName = "environ"
	ClockName   = "clock"
	MemFSName   = "memfs"
	FSName      = "fs"
	ConsoleName = "console"
)

// All returns every catalog fixture in dependency-friendly order.
func All() []fixtures.Definition {
	return []fixtures.Definition{TmpDir, Environ, Clock, MemFS, FS, VirtualConsole}
}

// Register adds every catalog fixture to reg.
func Register(reg *fixtures.Registry) error {
	return reg.Register(All()...)
}
