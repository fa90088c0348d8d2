package utils

import (
	"errors"
	"fmt"

	"k8s.io/klog/v2"
)

// Sentinel errors for every terminal failure of a run.
// Use errors.Is() to check for these rather than string matching.
var (
	// ErrPrivilege indicates the process is not running as root
	ErrPrivilege = errors.New("administrator permissions are needed")

	// ErrMissingConfig indicates the filesystem table does not exist
	ErrMissingConfig = errors.New("the fstab file does not exist")

	// ErrResolution indicates a stable identifier could not be resolved to a device
	ErrResolution = errors.New("volume resolution failed")

	// ErrKernelQuery indicates the running kernel release could not be determined
	ErrKernelQuery = errors.New("kernel release query failed")

	// ErrCatalog indicates the kernel filesystem module directory could not be read
	ErrCatalog = errors.New("filesystem catalog unavailable")

	// ErrInvalidMountpoint indicates the operator-supplied mount path is missing or unusable
	ErrInvalidMountpoint = errors.New("invalid mountpoint")

	// ErrInvalidEntry indicates a malformed entry field other than the mountpoint
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrBackup indicates the backup copy could not be made; the original is untouched
	ErrBackup = errors.New("backup failed")

	// ErrWrite indicates the append failed after a successful backup
	ErrWrite = errors.New("append failed")

	// ErrSelection indicates the operator input stream closed during a menu
	ErrSelection = errors.New("selection aborted")
)

// ToolError ties a taxonomy kind to the path it concerns and the underlying cause.
type ToolError struct {
	// Kind is one of the sentinel errors above
	Kind error

	// Path is the file or directory involved (may be empty)
	Path string

	// Err is the underlying cause (may be nil)
	Err error
}

// Error implements the error interface
func (e *ToolError) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *ToolError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError creates a ToolError of the given kind.
func NewError(kind error, path string, err error) *ToolError {
	return &ToolError{Kind: kind, Path: path, Err: err}
}

// Errorf creates a ToolError of the given kind with a formatted cause.
func Errorf(kind error, path, format string, args ...interface{}) *ToolError {
	return NewError(kind, path, fmt.Errorf(format, args...))
}

// kinds lists the taxonomy in reporting order
var kinds = []error{
	ErrPrivilege,
	ErrMissingConfig,
	ErrResolution,
	ErrKernelQuery,
	ErrCatalog,
	ErrInvalidMountpoint,
	ErrInvalidEntry,
	ErrBackup,
	ErrWrite,
	ErrSelection,
}

// KindOf returns the taxonomy sentinel carried by err, or nil if err is
// not part of the taxonomy.
func KindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// KindName returns a short stable label for the kind of err, used in
// metrics and audit records.
func KindName(err error) string {
	switch KindOf(err) {
	case ErrPrivilege:
		return "privilege"
	case ErrMissingConfig:
		return "missing_config"
	case ErrResolution:
		return "resolution"
	case ErrKernelQuery:
		return "kernel_query"
	case ErrCatalog:
		return "catalog"
	case ErrInvalidMountpoint:
		return "invalid_mountpoint"
	case ErrInvalidEntry:
		return "invalid_entry"
	case ErrBackup:
		return "backup"
	case ErrWrite:
		return "write"
	case ErrSelection:
		return "selection"
	}
	if err == nil {
		return "none"
	}
	return "internal"
}

// IsRecoverable reports whether err left the configuration file in a state
// the operator can restore from: either untouched (backup failed) or with a
// backup next to it (append failed).
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrBackup) || errors.Is(err, ErrWrite)
}

// ExitCode maps a run result to the process exit status.
// Declining the confirmation is not an error and exits 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// LogErrorDetails logs the full error details for debugging. The operator
// already sees the error through the Ui, so this only shows at V(4).
func LogErrorDetails(err error) {
	if err == nil {
		return
	}

	var te *ToolError
	if errors.As(err, &te) {
		klog.V(4).Infof("[%s] %v", KindName(te), te)
		return
	}
	klog.V(4).Infof("Error: %v", err)
}
