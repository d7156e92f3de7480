// Package cli wires the cobra command tree: the root patch-creation
// operation plus the doctor, config, and version subcommands. It also maps
// the failure categories onto process exit codes.
package cli
