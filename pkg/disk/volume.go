package disk

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IDKind classifies the format of a stable identifier
type IDKind string

const (
	// KindUUID is an RFC 4122 identifier (ext4, xfs, btrfs, swap)
	KindUUID IDKind = "uuid"

	// KindSerial is a short volume serial (vfat "ABCD-1234", ntfs "0123456789ABCDEF")
	KindSerial IDKind = "serial"
)

// Volume is one attached storage volume
type Volume struct {
	// DevicePath is the canonical block device path, e.g. /dev/sda1
	DevicePath string

	// StableID is the identifier the volume is listed under in the by-uuid
	// directory. It survives reboots and device reordering.
	StableID string

	// MountedAt lists the current mount targets of DevicePath.
	// Informational only; filled in by the caller from the live mount table.
	MountedAt []string
}

// FsSpec returns the filesystem table source specifier for the volume
func (v Volume) FsSpec() string {
	return "UUID=" + v.StableID
}

// Kind reports whether StableID is a full UUID or a shorter volume serial
func (v Volume) Kind() IDKind {
	if _, err := uuid.Parse(v.StableID); err == nil && len(v.StableID) == 36 {
		return KindUUID
	}
	return KindSerial
}

// String formats the volume for menu display: "/dev/sda1 (ABCD-1234, serial)"
func (v Volume) String() string {
	s := fmt.Sprintf("%s (%s, %s)", v.DevicePath, v.StableID, v.Kind())
	if len(v.MountedAt) > 0 {
		s += fmt.Sprintf(" [mounted at %s]", strings.Join(v.MountedAt, ", "))
	}
	return s
}
