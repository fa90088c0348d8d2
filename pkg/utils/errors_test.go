package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func TestToolError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ToolError
		want string
	}{
		{
			name: "kind only",
			err:  NewError(ErrMissingConfig, "", nil),
			want: "the fstab file does not exist",
		},
		{
			name: "kind and path",
			err:  NewError(ErrMissingConfig, "/etc/fstab", nil),
			want: "the fstab file does not exist: /etc/fstab",
		},
		{
			name: "kind, path and cause",
			err:  NewError(ErrBackup, "/etc/fstab.bak", fs.ErrPermission),
			want: "backup failed: /etc/fstab.bak: permission denied",
		},
		{
			name: "formatted cause",
			err:  Errorf(ErrPrivilege, "", "effective uid is %d", 1000),
			want: "administrator permissions are needed: effective uid is 1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestToolError_Unwrap(t *testing.T) {
	err := NewError(ErrResolution, "/dev/disk/by-uuid/ABCD-1234", fs.ErrNotExist)

	assert.True(t, errors.Is(err, ErrResolution))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, ErrCatalog))

	wrapped := fmt.Errorf("listing volumes: %w", err)
	assert.True(t, errors.Is(wrapped, ErrResolution))

	var te *ToolError
	require.True(t, errors.As(wrapped, &te))
	assert.Equal(t, "/dev/disk/by-uuid/ABCD-1234", te.Path)
}

func TestKindName(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{errors.New("boom"), "internal"},
		{NewError(ErrPrivilege, "", nil), "privilege"},
		{NewError(ErrMissingConfig, "", nil), "missing_config"},
		{NewError(ErrResolution, "", nil), "resolution"},
		{NewError(ErrKernelQuery, "", nil), "kernel_query"},
		{NewError(ErrCatalog, "", nil), "catalog"},
		{NewError(ErrInvalidMountpoint, "", nil), "invalid_mountpoint"},
		{NewError(ErrInvalidEntry, "", nil), "invalid_entry"},
		{NewError(ErrBackup, "", nil), "backup"},
		{NewError(ErrWrite, "", nil), "write"},
		{fmt.Errorf("menu: %w", ErrSelection), "selection"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, KindName(tt.err))
		})
	}
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(NewError(ErrBackup, "/etc/fstab", nil)))
	assert.True(t, IsRecoverable(NewError(ErrWrite, "/etc/fstab", nil)))
	assert.False(t, IsRecoverable(NewError(ErrInvalidMountpoint, "/mnt/data", nil)))
	assert.False(t, IsRecoverable(nil))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(NewError(ErrPrivilege, "", nil)))
	assert.Equal(t, 1, ExitCode(NewError(ErrInvalidMountpoint, "", nil)))
	assert.Equal(t, 1, ExitCode(errors.New("unexpected")))
}

func TestLogErrorDetails(t *testing.T) {
	// Should not panic on any input
	LogErrorDetails(nil)
	LogErrorDetails(errors.New("plain"))
	LogErrorDetails(NewError(ErrWrite, "/etc/fstab", errors.New("no space left on device")))
}

// The operator already sees the error through the Ui; default verbosity
// must not print it a second time.
func TestLogErrorDetails_QuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	klog.LogToStderr(false)
	klog.SetOutput(&buf)
	t.Cleanup(func() {
		klog.SetOutput(io.Discard)
		klog.LogToStderr(true)
	})

	LogErrorDetails(NewError(ErrPrivilege, "", nil))
	LogErrorDetails(errors.New("plain"))
	klog.Flush()

	assert.Empty(t, buf.String())
}
