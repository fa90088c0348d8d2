package fstab

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/fstab-add/pkg/utils"
)

const (
	// DefaultPath is the system filesystem table
	DefaultPath = "/etc/fstab"

	// BackupSuffix is appended to the table path to name the backup
	BackupSuffix = ".bak"
)

// Commit steps reported to a StepFunc
const (
	StepBackup = "backup"
	StepAppend = "append"
)

// StepFunc observes each completed commit step
type StepFunc func(step string, err error, duration time.Duration)

// Committer appends entries to one filesystem table file
type Committer struct {
	Path string

	// OnStep, if set, is called after the backup and after the append
	OnStep StepFunc

	// Injected for testing append failures
	openFile func(name string, flag int, perm os.FileMode) (*os.File, error)
}

// NewCommitter creates a committer for the table at path
func NewCommitter(path string) *Committer {
	if path == "" {
		path = DefaultPath
	}
	return &Committer{
		Path:     path,
		openFile: os.OpenFile,
	}
}

// BackupPath returns the location of the backup copy
func (c *Committer) BackupPath() string {
	return c.Path + BackupSuffix
}

// Preflight checks that the table exists and the entry is well formed.
// Nothing is written.
func (c *Committer) Preflight(entry Entry) error {
	if err := utils.RequireFile(c.Path); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		if entry.Mountpoint == "" || !filepath.IsAbs(entry.Mountpoint) {
			return utils.NewError(utils.ErrInvalidMountpoint, entry.Mountpoint, err)
		}
		return utils.NewError(utils.ErrInvalidEntry, c.Path, err)
	}
	klog.V(4).Infof("Pre-flight passed for %s: %s", c.Path, entry.Render())
	return nil
}

// Commit runs the pre-flight, the backup, and the append, in that order.
// It returns the backup location. On a backup failure the table is
// untouched; on an append failure the backup is left in place for the
// operator to restore from.
func (c *Committer) Commit(entry Entry) (string, error) {
	if err := c.Preflight(entry); err != nil {
		return "", err
	}

	start := time.Now()
	backupPath, err := c.Backup()
	c.report(StepBackup, err, start)
	if err != nil {
		return "", err
	}

	start = time.Now()
	err = c.Append(entry)
	c.report(StepAppend, err, start)
	if err != nil {
		return backupPath, err
	}

	return backupPath, nil
}

func (c *Committer) report(step string, err error, start time.Time) {
	if c.OnStep != nil {
		c.OnStep(step, err, time.Since(start))
	}
}

// Backup copies the table verbatim, with its permission bits, to
// BackupPath. The copy goes to a temporary sibling first and is renamed into
// place once synced, so a failed backup never leaves a truncated .bak.
func (c *Committer) Backup() (string, error) {
	backupPath := c.BackupPath()

	src, err := os.Open(c.Path)
	if err != nil {
		return "", utils.NewError(utils.ErrBackup, c.Path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", utils.NewError(utils.ErrBackup, c.Path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(backupPath), filepath.Base(backupPath)+".tmp-*")
	if err != nil {
		return "", utils.NewError(utils.ErrBackup, backupPath, err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, src)
	if err == nil {
		err = tmp.Chmod(info.Mode().Perm())
	}
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpPath, backupPath)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", utils.NewError(utils.ErrBackup, backupPath, err)
	}

	klog.V(4).Infof("Copied %d bytes from %s", written, c.Path)
	klog.V(2).Infof("Backed up %s to %s", c.Path, backupPath)
	return backupPath, nil
}

// Append writes the rendered entry and a newline to the end of the table.
// A table whose last line lacks a terminator gets one first, so the entry
// always starts on its own line.
func (c *Committer) Append(entry Entry) error {
	needsNewline, err := missingTrailingNewline(c.Path)
	if err != nil {
		return utils.NewError(utils.ErrWrite, c.Path, err)
	}

	f, err := c.openFile(c.Path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return utils.NewError(utils.ErrWrite, c.Path, err)
	}

	line := entry.Render() + "\n"
	if needsNewline {
		line = "\n" + line
	}

	_, err = f.WriteString(line)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		klog.Errorf("Append to %s failed, restore from %s: %v", c.Path, c.BackupPath(), err)
		return utils.NewError(utils.ErrWrite, c.Path, err)
	}

	klog.V(2).Infof("Appended to %s: %s", c.Path, entry.Render())
	return nil
}

// missingTrailingNewline reports whether path is non-empty and does not end in "\n"
func missingTrailingNewline(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, fmt.Errorf("failed to read last byte: %w", err)
	}
	return last[0] != '\n', nil
}
