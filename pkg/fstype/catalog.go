package fstype

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/fstab-add/pkg/utils"
)

const (
	// DefaultModulesRoot is the root of the per-kernel module trees
	DefaultModulesRoot = "/lib/modules"
)

// CommonTypes are always offered first, in this order
var CommonTypes = []string{
	"ext4", "xfs", "btrfs", "f2fs", "vfat", "ntfs", "hfsplus", "tmpfs",
	"sysfs", "proc", "iso9660", "udf", "squashfs", "nfs", "cifs", "none",
}

// Catalog lists candidate filesystem types for the running kernel
type Catalog struct {
	ModulesRoot string // "/lib/modules" in production, temp dir in tests
	release     ReleaseQuerier
}

// NewCatalog creates a catalog over the default module root
func NewCatalog(release ReleaseQuerier) *Catalog {
	return NewCatalogWithRoot(DefaultModulesRoot, release)
}

// NewCatalogWithRoot creates a catalog over a custom module root (for testing)
func NewCatalogWithRoot(root string, release ReleaseQuerier) *Catalog {
	if root == "" {
		root = DefaultModulesRoot
	}
	return &Catalog{
		ModulesRoot: root,
		release:     release,
	}
}

// ModuleDir returns <root>/<release>/kernel/fs
func (c *Catalog) ModuleDir(release string) string {
	return filepath.Join(c.ModulesRoot, release, "kernel", "fs")
}

// Discover lists the filesystem module names for a kernel release, sorted.
// An unreadable directory is fatal: offering a wrong list would let the
// operator pick a type the kernel cannot mount.
func (c *Catalog) Discover(release string) ([]string, error) {
	dir := c.ModuleDir(release)
	klog.V(4).Infof("Discovering filesystem modules in %s", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, utils.NewError(utils.ErrCatalog, dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return names, nil
}

// ListFilesystemTypes returns CommonTypes followed by the discovered module
// names, keeping only the first occurrence of each name.
func (c *Catalog) ListFilesystemTypes(ctx context.Context) ([]string, error) {
	release, err := c.release.QueryKernelRelease(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateKernelRelease(release); err != nil {
		return nil, err
	}

	discovered, err := c.Discover(release)
	if err != nil {
		return nil, err
	}

	types := Merge(CommonTypes, discovered)

	klog.V(2).Infof("Catalog for %s: %d common + %d discovered -> %d types",
		release, len(CommonTypes), len(discovered), len(types))
	return types, nil
}

// Merge concatenates the curated and discovered lists and removes repeats,
// preserving the order in which each name first appears.
func Merge(curated, discovered []string) []string {
	set := newOrderedSet()
	set.Add(curated...)
	set.Add(discovered...)
	return set.List()
}
