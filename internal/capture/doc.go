// Package capture brackets a manual edit session: it snapshots a package
// directory into the git index, waits for the user's confirmation, collects
// the edits as a unified diff, and restores the worktree to its pre-session
// state. It also rewrites diff headers to package-relative paths and writes
// the patch file.
package capture
