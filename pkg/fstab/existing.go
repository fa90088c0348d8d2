package fstab

import (
	"fmt"
	"strings"

	gofstab "github.com/deniswernert/go-fstab"
	"k8s.io/klog/v2"
)

// ConflictReason says why an existing line overlaps the new entry
type ConflictReason string

const (
	// ConflictSameSource means the table already mounts the same fs_spec
	ConflictSameSource ConflictReason = "same source"

	// ConflictSameMountpoint means the table already mounts something at the path
	ConflictSameMountpoint ConflictReason = "same mountpoint"
)

// Conflict is an existing table line that overlaps a new entry
type Conflict struct {
	Spec       string
	Mountpoint string
	VfsType    string
	Reason     ConflictReason
}

// String formats the conflict for a warning
func (c Conflict) String() string {
	return fmt.Sprintf("%s: %s %s %s", c.Reason, c.Spec, c.Mountpoint, c.VfsType)
}

// FindConflicts parses the table at path and returns the lines that mount the
// same source or target as entry. It only informs; appending a duplicate is
// still the operator's call.
func FindConflicts(path string, entry Entry) ([]Conflict, error) {
	mounts, err := gofstab.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	klog.V(5).Infof("Parsed %d entries from %s", len(mounts), path)

	var conflicts []Conflict
	for _, m := range mounts {
		if m == nil {
			continue
		}
		target := UnescapeField(m.File)

		if sameSpec(m.Spec, entry.FsSpec) {
			conflicts = append(conflicts, Conflict{
				Spec: m.Spec, Mountpoint: target, VfsType: m.VfsType,
				Reason: ConflictSameSource,
			})
		}
		if target == entry.Mountpoint {
			conflicts = append(conflicts, Conflict{
				Spec: m.Spec, Mountpoint: target, VfsType: m.VfsType,
				Reason: ConflictSameMountpoint,
			})
		}
	}

	klog.V(4).Infof("Found %d conflicting entries in %s", len(conflicts), path)
	return conflicts, nil
}

// sameSpec compares two fs_spec values. The tag name is case-insensitive
// ("uuid=" and "UUID=" both work with mount(8)), the value is compared
// case-insensitively too since blkid reports UUIDs in either case.
func sameSpec(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
