package app

import (
	"git.srvlab.io/whiskey/fstab-add/pkg/disk"
	"git.srvlab.io/whiskey/fstab-add/pkg/fstab"
	"git.srvlab.io/whiskey/fstab-add/pkg/fstype"
)

// Config holds the settings of one run
type Config struct {
	// FstabPath is the filesystem table to edit
	FstabPath string

	// ByUUIDDir is the stable identifier directory
	ByUUIDDir string

	// ModulesRoot is the root of the per-kernel module trees
	ModulesRoot string

	// KernelRelease, if set, is used instead of querying the kernel
	KernelRelease string

	// ReleaseSource selects how the kernel release is queried: "exec" or "syscall"
	ReleaseSource string

	// MountOptions are written to the options field
	MountOptions []string

	// Dump is written to the dump field
	Dump bool

	// FsckOrder is the pass number; fstype.AutoFsckOrder picks one by type
	FsckOrder int

	// MetricsTextfile, if set, receives the run metrics in Prometheus text format
	MetricsTextfile string
}

// DefaultConfig returns the settings of a plain run against the live system
func DefaultConfig() Config {
	return Config{
		FstabPath:     fstab.DefaultPath,
		ByUUIDDir:     disk.DefaultByUUIDDir,
		ModulesRoot:   fstype.DefaultModulesRoot,
		ReleaseSource: "exec",
		MountOptions:  append([]string(nil), fstype.DefaultMountOptions...),
		FsckOrder:     fstype.AutoFsckOrder,
	}
}

// withDefaults fills zero values from DefaultConfig
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.FstabPath == "" {
		c.FstabPath = def.FstabPath
	}
	if c.ByUUIDDir == "" {
		c.ByUUIDDir = def.ByUUIDDir
	}
	if c.ModulesRoot == "" {
		c.ModulesRoot = def.ModulesRoot
	}
	if c.ReleaseSource == "" {
		c.ReleaseSource = def.ReleaseSource
	}
	if len(c.MountOptions) == 0 {
		c.MountOptions = def.MountOptions
	}
	return c
}
