package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Characters that cannot be represented in a filesystem table line.
// Spaces and tabs are escaped at render time; these cannot be.
var forbiddenCharacters = []string{
	"\n",   // Line separator
	"\r",   // Carriage return
	"\x00", // Null byte
}

// CheckPrivileges is the startup precondition of every run: the process must
// be running with an effective uid of 0. geteuid is injected so tests can run
// unprivileged; pass unix.Geteuid in production.
func CheckPrivileges(geteuid func() int) error {
	if uid := geteuid(); uid != 0 {
		return Errorf(ErrPrivilege, "", "effective uid is %d", uid)
	}
	return nil
}

// ValidateMountpoint validates an operator-supplied mount path and returns
// its cleaned form. It checks for:
// - An empty path
// - Characters that cannot appear in a table line
// - Absolute path requirements
// - Existence on disk as a directory
//
// The tool never creates the directory.
func ValidateMountpoint(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", Errorf(ErrInvalidMountpoint, "", "mount path is required")
	}

	for _, char := range forbiddenCharacters {
		if strings.Contains(path, char) {
			return "", Errorf(ErrInvalidMountpoint, "", "mount path contains forbidden character %q", char)
		}
	}

	if !filepath.IsAbs(path) {
		return "", Errorf(ErrInvalidMountpoint, path, "mount path must be absolute")
	}

	// Trailing slashes and ./ components are harmless in operator input
	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", Errorf(ErrInvalidMountpoint, cleanPath, "the path does not exist")
		}
		return "", NewError(ErrInvalidMountpoint, cleanPath, err)
	}
	if !info.IsDir() {
		return "", Errorf(ErrInvalidMountpoint, cleanPath, "the path is not a directory")
	}

	return cleanPath, nil
}

// RequireFile checks that path names an existing regular file. Used for the
// filesystem table, which this tool edits but never creates.
func RequireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewError(ErrMissingConfig, path, nil)
		}
		return NewError(ErrMissingConfig, path, err)
	}
	if !info.Mode().IsRegular() {
		return NewError(ErrMissingConfig, path, fmt.Errorf("not a regular file"))
	}
	return nil
}
