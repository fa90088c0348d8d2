package mount

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/moby/sys/mountinfo"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"
)

// ProcmountsTimeout is the maximum time to wait for /proc/self/mountinfo parsing
const ProcmountsTimeout = 10 * time.Second

// Table is a snapshot of the mount table
type Table struct {
	mounts []*mountinfo.Info
}

// NewTable wraps already parsed mount entries
func NewTable(mounts []*mountinfo.Info) *Table {
	return &Table{mounts: mounts}
}

// ParseTable reads mountinfo formatted content, e.g. a copy of /proc/self/mountinfo
func ParseTable(r io.Reader) (*Table, error) {
	mounts, err := mountinfo.GetMountsFromReader(r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mountinfo: %w", err)
	}
	klog.V(5).Infof("Parsed %d mount entries", len(mounts))
	return NewTable(mounts), nil
}

// Load reads the mount table of the current process with a timeout to prevent
// hangs on corrupted filesystems.
func Load(ctx context.Context) (*Table, error) {
	ctx, cancel := context.WithTimeout(ctx, ProcmountsTimeout)
	defer cancel()

	type result struct {
		mounts []*mountinfo.Info
		err    error
	}
	resultCh := make(chan result, 1)

	go func() {
		mounts, err := mountinfo.GetMounts(nil)
		resultCh <- result{mounts: mounts, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return nil, fmt.Errorf("failed to read mount table: %w", res.err)
		}
		klog.V(4).Infof("Loaded %d mount entries", len(res.mounts))
		return NewTable(res.mounts), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("mount table parsing timed out after %v: %w", ProcmountsTimeout, ctx.Err())
	}
}

// Len returns the number of entries
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.mounts)
}

// TargetsOf returns the sorted, de-duplicated mountpoints whose source is device
func (t *Table) TargetsOf(device string) []string {
	if t == nil || device == "" {
		return nil
	}

	targets := sets.New[string]()
	for _, m := range t.mounts {
		if m.Source == device {
			targets.Insert(m.Mountpoint)
		}
	}
	return sets.List(targets)
}

// MountedAt returns the topmost entry mounted exactly at path
func (t *Table) MountedAt(path string) (*mountinfo.Info, bool) {
	if t == nil {
		return nil, false
	}
	path = filepath.Clean(path)

	var found *mountinfo.Info
	for _, m := range t.mounts {
		// Later entries stack on top of earlier ones at the same path
		if m.Mountpoint == path {
			found = m
		}
	}
	if found != nil {
		klog.V(4).Infof("%s is a mountpoint for %s (%s)", path, found.Source, found.FSType)
	}
	return found, found != nil
}
