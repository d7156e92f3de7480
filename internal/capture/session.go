package capture

import (
	"errors"
	"fmt"
	"io"

	"github.com/patchforge-labs/patchforge/internal/composer"
)

// Git is the version-control capability the session needs. Implemented by
// gitcmd.Client; tests substitute a fake.
type Git interface {
	ForceAdd(path string) error
	ModifiedFiles(path string) ([]string, error)
	Diff(path string) (string, error)
	CheckoutIndex(path string) error
	Unstage(path string) error
}

// ErrAborted is returned when the user declines the confirmation prompt.
// The worktree has been restored.
var ErrAborted = errors.New("patch capture aborted by user")

// ErrNoChanges is returned when the user confirmed but nothing under the
// package directory was modified. The worktree has been restored.
var ErrNoChanges = errors.New("no modified files found")

// Session runs one stage/edit/diff/restore cycle. Confirm blocks until the
// user answers; returning false takes the abort path.
type Session struct {
	Git     Git
	Confirm func() bool
	Out     io.Writer
}

// Run executes the capture cycle for a package at the given project-relative
// location. On success it returns the raw unified diff and the list of
// modified files. Whatever branch is taken, the worktree and index under
// location end up exactly as they started.
func (s *Session) Run(id composer.Identifier, location string) (string, []string, error) {
	if err := s.Git.ForceAdd(location); err != nil {
		return "", nil, fmt.Errorf("staging %s: %w", location, err)
	}

	fmt.Fprintf(s.Out, "Staged %s at %s.\n", id, location)
	fmt.Fprintf(s.Out, "Make your changes to the package now.\n")
	fmt.Fprintf(s.Out, "? Generate a patch from the changes in %s? (y/N) ", location)

	if !s.Confirm() {
		if err := s.restore(location); err != nil {
			return "", nil, err
		}
		return "", nil, ErrAborted
	}

	files, err := s.Git.ModifiedFiles(location)
	if err != nil {
		return "", nil, s.failRestoring(location, fmt.Errorf("listing modifications under %s: %w", location, err))
	}
	if len(files) == 0 {
		if err := s.restore(location); err != nil {
			return "", nil, err
		}
		return "", nil, ErrNoChanges
	}

	diff, err := s.Git.Diff(location)
	if err != nil {
		return "", nil, s.failRestoring(location, fmt.Errorf("diffing %s: %w", location, err))
	}

	if err := s.restore(location); err != nil {
		return "", nil, err
	}
	return diff, files, nil
}

// failRestoring attempts a best-effort restore before surfacing cause. The
// worktree must end in its starting state even when the capture itself
// fails partway.
func (s *Session) failRestoring(location string, cause error) error {
	if restoreErr := s.restore(location); restoreErr != nil {
		return fmt.Errorf("%w (restore also failed: %v)", cause, restoreErr)
	}
	return cause
}

// restore puts the worktree back to the index snapshot, then clears the
// index entries. Order matters: resetting first would lose the snapshot the
// checkout restores from.
func (s *Session) restore(location string) error {
	if err := s.Git.CheckoutIndex(location); err != nil {
		return fmt.Errorf("restoring %s: %w", location, err)
	}
	if err := s.Git.Unstage(location); err != nil {
		return fmt.Errorf("unstaging %s: %w", location, err)
	}
	return nil
}
