// Package mount reads the kernel mount table so volumes and mountpoints can be
// annotated with what is currently mounted where.
//
// # Logging Verbosity Convention
//
// This package follows Kubernetes logging conventions for verbosity levels:
//
//   - V(0): Always visible - programmer errors, panics
//   - V(2): Production default - operation outcomes, state changes
//   - V(4): Debug level - intermediate steps, parameters, diagnostics
//     Examples: "Loaded 34 mount entries", "/mnt/data is a mountpoint"
//   - V(5): Trace level - parsing details
//
// V(3) is avoided in favor of V(2) (if actionable) or V(4) (if diagnostic).
package mount
