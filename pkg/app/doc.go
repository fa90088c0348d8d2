// Package app runs one interactive fstab-add session: privilege check,
// volume and filesystem type selection, mountpoint validation, confirmation,
// and the backup-then-append commit.
//
// # Logging Verbosity Convention
//
// This package follows Kubernetes logging conventions for verbosity levels:
//
//   - V(0): Always visible - errors that end the run
//   - V(2): Production default - run outcome, committed entry
//   - V(4): Debug level - each step as it starts, discovered counts
//
// Operator-facing text goes through the cli.Ui, never through klog.
package app
