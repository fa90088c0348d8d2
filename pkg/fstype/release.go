package fstype

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/fstab-add/pkg/utils"
)

// Release sources accepted by NewReleaseQuerier
const (
	// SourceExec runs "uname -r"
	SourceExec = "exec"

	// SourceSyscall reads the release with uname(2)
	SourceSyscall = "syscall"
)

// ReleaseQuerier returns the running kernel release, e.g. "6.8.0-45-generic"
type ReleaseQuerier interface {
	QueryKernelRelease(ctx context.Context) (string, error)
}

// NewReleaseQuerier returns the querier for a release source name.
// A non-empty fixed release short-circuits the query entirely.
func NewReleaseQuerier(source, fixed string) (ReleaseQuerier, error) {
	if fixed != "" {
		return StaticRelease(fixed), nil
	}

	switch source {
	case "", SourceExec:
		return NewExecQuerier(), nil
	case SourceSyscall:
		return NewUnameQuerier(), nil
	default:
		return nil, fmt.Errorf("unsupported release source %q (expected %q or %q)", source, SourceExec, SourceSyscall)
	}
}

// ExecQuerier implements ReleaseQuerier by running uname -r
type ExecQuerier struct {
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewExecQuerier creates a querier that spawns uname
func NewExecQuerier() *ExecQuerier {
	return &ExecQuerier{
		execCommand: exec.CommandContext,
	}
}

// QueryKernelRelease runs uname -r and returns its single line of output
func (q *ExecQuerier) QueryKernelRelease(ctx context.Context) (string, error) {
	cmd := q.execCommand(ctx, "uname", "-r")
	output, err := cmd.Output()
	if err != nil {
		return "", utils.Errorf(utils.ErrKernelQuery, "", "failed to execute uname -r: %w", err)
	}

	klog.V(5).Infof("uname -r output: %q", string(output))

	release := TrimNewline(string(output))
	if release == "" {
		return "", utils.Errorf(utils.ErrKernelQuery, "", "uname -r returned an empty release")
	}

	klog.V(4).Infof("Kernel release: %s", release)
	return release, nil
}

// UnameQuerier implements ReleaseQuerier with the uname(2) syscall
type UnameQuerier struct {
	uname func(buf *unix.Utsname) error
}

// NewUnameQuerier creates a querier that does not spawn a process
func NewUnameQuerier() *UnameQuerier {
	return &UnameQuerier{
		uname: unix.Uname,
	}
}

// QueryKernelRelease returns the release field of uname(2)
func (q *UnameQuerier) QueryKernelRelease(ctx context.Context) (string, error) {
	var buf unix.Utsname
	if err := q.uname(&buf); err != nil {
		return "", utils.Errorf(utils.ErrKernelQuery, "", "uname(2) failed: %w", err)
	}

	release := unix.ByteSliceToString(buf.Release[:])
	if release == "" {
		return "", utils.Errorf(utils.ErrKernelQuery, "", "uname(2) returned an empty release")
	}

	klog.V(4).Infof("Kernel release: %s", release)
	return release, nil
}

// StaticRelease is a fixed release, used for --kernel-release and in tests
type StaticRelease string

// QueryKernelRelease returns the fixed release
func (r StaticRelease) QueryKernelRelease(ctx context.Context) (string, error) {
	if r == "" {
		return "", utils.Errorf(utils.ErrKernelQuery, "", "empty kernel release")
	}
	return string(r), nil
}

// TrimNewline strips one trailing "\n" and then one "\r", the line
// terminators a process may print. Other whitespace is kept.
func TrimNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		s = strings.TrimSuffix(s, "\n")
		s = strings.TrimSuffix(s, "\r")
	}
	return s
}
