package disk

import (
	"os"
	"path/filepath"
	"sort"

	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/fstab-add/pkg/utils"
)

const (
	// DefaultByUUIDDir is the udev-maintained directory of stable identifiers
	DefaultByUUIDDir = "/dev/disk/by-uuid"
)

// Scanner provides configurable access to the stable-identifier directory
type Scanner struct {
	Dir string // "/dev/disk/by-uuid" in production, temp dir in tests
}

// NewScanner creates scanner with default directory
func NewScanner() *Scanner {
	return &Scanner{
		Dir: DefaultByUUIDDir,
	}
}

// NewScannerWithDir creates scanner with custom directory (for testing)
func NewScannerWithDir(dir string) *Scanner {
	if dir == "" {
		dir = DefaultByUUIDDir
	}
	return &Scanner{
		Dir: dir,
	}
}

// Resolve follows the symlink for a stable identifier to the absolute
// canonical device path.
func (s *Scanner) Resolve(stableID string) (string, error) {
	link := filepath.Join(s.Dir, stableID)

	target, err := filepath.EvalSymlinks(link)
	if err != nil {
		return "", utils.NewError(utils.ErrResolution, link, err)
	}

	devicePath, err := filepath.Abs(target)
	if err != nil {
		return "", utils.NewError(utils.ErrResolution, link, err)
	}

	klog.V(4).Infof("Resolved %s -> %s", stableID, devicePath)
	return devicePath, nil
}

// ListVolumes returns one Volume per directory entry, sorted by device path.
// A single unresolvable entry fails the whole listing: a partial device list
// is not safe to offer to the operator.
func (s *Scanner) ListVolumes() ([]Volume, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, utils.NewError(utils.ErrResolution, s.Dir, err)
	}

	volumes := make([]Volume, 0, len(entries))
	for _, entry := range entries {
		klog.V(5).Infof("ListVolumes: entry %s (type %v)", entry.Name(), entry.Type())

		devicePath, err := s.Resolve(entry.Name())
		if err != nil {
			return nil, err
		}

		volumes = append(volumes, Volume{
			DevicePath: devicePath,
			StableID:   entry.Name(),
		})
	}

	SortVolumes(volumes)

	klog.V(2).Infof("Found %d volumes under %s", len(volumes), s.Dir)
	return volumes, nil
}

// SortVolumes orders volumes by device path, then stable id. Two identifiers
// can point at the same device (e.g. a stale udev link), so the tie-break
// keeps the order deterministic.
func SortVolumes(volumes []Volume) {
	sort.SliceStable(volumes, func(i, j int) bool {
		if volumes[i].DevicePath != volumes[j].DevicePath {
			return volumes[i].DevicePath < volumes[j].DevicePath
		}
		return volumes[i].StableID < volumes[j].StableID
	})
}
