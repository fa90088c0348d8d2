// Package fstab models one filesystem table row and appends it to the table
// behind a verified backup.
//
// # Commit ordering
//
// The backup copy of the table is complete and renamed into place before the
// table is opened for writing. No code path appends without it.
//
// # Logging Verbosity Convention
//
//   - V(0): Always visible - backup and append failures
//   - V(2): Production default - backup location, appended line
//     Examples: "Backed up /etc/fstab to /etc/fstab.bak"
//   - V(4): Debug level - pre-flight checks, byte counts
//   - V(5): Trace level - parsed table lines
package fstab
