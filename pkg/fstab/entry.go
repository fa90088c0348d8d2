package fstab

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Entry is one filesystem table row. Build it with NewEntry and treat it as
// immutable afterwards.
type Entry struct {
	// FsSpec is the source, e.g. "UUID=ABCD-1234"
	FsSpec string

	// Mountpoint is the absolute mount path
	Mountpoint string

	// VfsType is the filesystem type, e.g. "ext4"
	VfsType string

	// MountOptions are the comma-joined option tokens, at least one
	MountOptions []string

	// Dump is the dump(8) backup flag
	Dump bool

	// FsckOrder is the fsck(8) pass number
	FsckOrder int
}

// Options carries the row fields that do not come from the operator's choices
type Options struct {
	MountOptions []string
	Dump         bool
	FsckOrder    int
}

// NewEntry builds an entry for fsSpec, e.g. disk.Volume.FsSpec()
func NewEntry(fsSpec, mountpoint, vfsType string, opts Options) Entry {
	mountOptions := make([]string, len(opts.MountOptions))
	copy(mountOptions, opts.MountOptions)

	return Entry{
		FsSpec:       fsSpec,
		Mountpoint:   mountpoint,
		VfsType:      vfsType,
		MountOptions: mountOptions,
		Dump:         opts.Dump,
		FsckOrder:    opts.FsckOrder,
	}
}

// Field escapes used by fstab(5) and /proc/self/mountinfo.
// Spaces are encoded as \040, tabs as \011, newlines as \012, backslashes as \134
var (
	fieldEscaper = strings.NewReplacer(
		`\`, `\134`,
		" ", `\040`,
		"\t", `\011`,
		"\n", `\012`,
	)
	fieldUnescaper = strings.NewReplacer(
		`\134`, `\`,
		`\040`, " ",
		`\011`, "\t",
		`\012`, "\n",
	)
)

// EscapeField encodes characters that would split a table field
func EscapeField(s string) string {
	return fieldEscaper.Replace(s)
}

// UnescapeField reverses EscapeField
func UnescapeField(s string) string {
	return fieldUnescaper.Replace(s)
}

// Fields returns the six table fields in order, escaped for output
func (e Entry) Fields() []string {
	dump := "0"
	if e.Dump {
		dump = "1"
	}

	return []string{
		EscapeField(e.FsSpec),
		EscapeField(e.Mountpoint),
		EscapeField(e.VfsType),
		EscapeField(strings.Join(e.MountOptions, ",")),
		dump,
		strconv.Itoa(e.FsckOrder),
	}
}

// Render formats the entry as one table line without a line terminator:
// "fs_spec mountpoint vfs_type options dump fsck_order"
func (e Entry) Render() string {
	return strings.Join(e.Fields(), " ")
}

// String implements fmt.Stringer
func (e Entry) String() string {
	return e.Render()
}

// Validate reports every malformed field at once. Whether the mountpoint
// exists is the caller's concern, not the model's.
func (e Entry) Validate() error {
	var result *multierror.Error

	if e.FsSpec == "" || strings.HasSuffix(e.FsSpec, "=") {
		result = multierror.Append(result, fmt.Errorf("fs_spec %q has no identifier", e.FsSpec))
	}
	if e.Mountpoint == "" {
		result = multierror.Append(result, fmt.Errorf("mountpoint is empty"))
	} else if !filepath.IsAbs(e.Mountpoint) {
		result = multierror.Append(result, fmt.Errorf("mountpoint %q is not absolute", e.Mountpoint))
	}
	if e.VfsType == "" {
		result = multierror.Append(result, fmt.Errorf("vfs_type is empty"))
	}
	if len(e.MountOptions) == 0 {
		result = multierror.Append(result, fmt.Errorf("mount options are empty"))
	}
	for i, opt := range e.MountOptions {
		if opt == "" {
			result = multierror.Append(result, fmt.Errorf("mount option %d is empty", i))
		} else if strings.Contains(opt, ",") {
			result = multierror.Append(result, fmt.Errorf("mount option %q contains a comma", opt))
		}
	}
	if e.FsckOrder < 0 {
		result = multierror.Append(result, fmt.Errorf("fsck order %d is negative", e.FsckOrder))
	}

	return result.ErrorOrNil()
}

// ParseOptions splits a comma-separated option list, dropping empty tokens
func ParseOptions(s string) []string {
	var opts []string
	for _, opt := range strings.Split(s, ",") {
		opt = strings.TrimSpace(opt)
		if opt != "" {
			opts = append(opts, opt)
		}
	}
	return opts
}
