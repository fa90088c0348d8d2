package fstype

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

const (
	// AutoFsckOrder selects the pass number from the filesystem type
	AutoFsckOrder = -1

	// NonRootFsckOrder is the pass number for checkable non-root filesystems
	NonRootFsckOrder = 2
)

// DefaultMountOptions is the option list used when none are configured
var DefaultMountOptions = []string{"defaults"}

// Types that fsck has nothing to check on: virtual, network, or read-only
// image filesystems.
var uncheckedTypes = sets.New(
	"none", "proc", "sysfs", "tmpfs", "ramfs", "devtmpfs", "devpts",
	"securityfs", "debugfs", "tracefs", "configfs", "cgroup", "cgroup2",
	"pstore", "bpf", "efivarfs", "hugetlbfs", "mqueue", "fusectl",
	"overlay", "fuse", "9p", "autofs", "binfmt_misc",
	"nfs", "nfs4", "cifs", "smb3", "smbfs", "ceph", "glusterfs",
	"squashfs", "iso9660", "udf", "erofs", "cramfs", "swap",
)

// IsPseudoFilesystem reports whether fsck has nothing to check on fsType
func IsPseudoFilesystem(fsType string) bool {
	return uncheckedTypes.Has(fsType)
}

// FsckOrder resolves the pass number for an entry. A configured value of
// zero or more is used as-is; AutoFsckOrder picks 0 for pseudo filesystems
// and NonRootFsckOrder for everything else.
func FsckOrder(fsType string, configured int) int {
	if configured >= 0 {
		return configured
	}
	if IsPseudoFilesystem(fsType) {
		return 0
	}
	return NonRootFsckOrder
}
