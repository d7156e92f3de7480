// Package gitcmd wraps the git binary as the version-control capability the
// capture cycle depends on: force-staging a directory, listing worktree
// modifications against the index, producing a unified diff, and restoring
// the pre-edit state. It also probes git's presence and version.
package gitcmd
