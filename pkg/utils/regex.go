package utils

import (
	"regexp"
)

// KernelReleasePattern matches a kernel release string as printed by
// uname -r, e.g. "6.8.0-45-generic" or "6.1.0+rpt-rpi-v8".
// The release becomes a path component under the module root, so slashes
// and ".." cannot match. uname(2) caps the field at 64 bytes.
var KernelReleasePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+~-]{0,63}$`)

// ValidateKernelRelease checks that release is safe to join under a module root
func ValidateKernelRelease(release string) error {
	if !KernelReleasePattern.MatchString(release) {
		return Errorf(ErrKernelQuery, "", "invalid kernel release %q", release)
	}
	return nil
}
