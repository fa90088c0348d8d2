// Package prompt drives the operator dialogue: numbered menus, the mountpoint
// question, and the final yes/no confirmation. All I/O goes through a
// github.com/hashicorp/cli Ui so tests can script it.
package prompt
