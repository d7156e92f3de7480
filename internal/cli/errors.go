package cli

import (
	"errors"

	"github.com/patchforge-labs/patchforge/internal/capture"
	"github.com/patchforge-labs/patchforge/internal/composer"
	"github.com/patchforge-labs/patchforge/internal/resolve"
)

// Process exit codes, one per failure category.
const (
	ExitOK          = 0
	ExitInput       = 1
	ExitEnvironment = 2
	ExitResolution  = 3
	ExitAborted     = 4
	ExitNoChanges   = 5
	ExitRegistry    = 6
)

// InputError marks a malformed invocation: bad identifier, wrong argument
// count.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }
func (e *InputError) Unwrap() error { return e.Err }

// EnvironmentError marks a precondition failure: git missing or too old,
// not inside a working tree, manifest absent or invalid, package not
// declared as a dependency.
type EnvironmentError struct {
	Err error
}

func (e *EnvironmentError) Error() string { return e.Err.Error() }
func (e *EnvironmentError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by Execute to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		inputErr    *InputError
		envErr      *EnvironmentError
		notFoundErr *resolve.NotFoundError
		registryErr *composer.RegistryError
	)
	switch {
	case errors.Is(err, capture.ErrAborted):
		return ExitAborted
	case errors.Is(err, capture.ErrNoChanges):
		return ExitNoChanges
	case errors.As(err, &registryErr):
		return ExitRegistry
	case errors.As(err, &notFoundErr):
		return ExitResolution
	case errors.As(err, &envErr):
		return ExitEnvironment
	case errors.As(err, &inputErr):
		return ExitInput
	default:
		return ExitInput
	}
}
