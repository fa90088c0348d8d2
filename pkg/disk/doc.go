// Package disk enumerates attached storage volumes by their stable identifier.
//
// # Logging Verbosity Convention
//
// This package follows Kubernetes logging conventions for verbosity levels:
//
//   - V(0): Always visible - resolution failures
//   - V(2): Production default - enumeration outcomes
//     Examples: "Found 3 volumes under /dev/disk/by-uuid"
//   - V(4): Debug level - per-entry resolution
//     Examples: "Resolved ABCD-1234 -> /dev/sda1"
//   - V(5): Trace level - raw directory entries
//
// V(3) is avoided in favor of V(2) (if actionable) or V(4) (if diagnostic).
package disk
