// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package errs defines the error kinds shared by every gitident component.
// Callers match kinds with errors.Is; the concrete *Error carries the
// operation and any captured process output.
package errs // import "github.com/toeirei/gitident/internal/errs"

import "errors"

// Error kinds.
var (
	// ErrIdentityExists indicates key material already exists for the identity
	// and overwrite was not requested.
	ErrIdentityExists = errors.New("identity already exists")

	// ErrKeyNotFound indicates the public key sibling of a private key is missing.
	ErrKeyNotFound = errors.New("public key not found")

	// ErrInvalidRepository indicates the path is not a git working tree.
	ErrInvalidRepository = errors.New("not a git repository")

	// ErrRemoteResolutionFailed indicates no remote URL could be determined.
	ErrRemoteResolutionFailed = errors.New("remote could not be resolved")

	// ErrInvalidRemoteURL indicates the remote is not an SSH shorthand URL.
	ErrInvalidRemoteURL = errors.New("invalid remote url")

	// ErrInvalidRepoPath indicates the repository path of a remote is malformed.
	ErrInvalidRepoPath = errors.New("invalid repository path")

	// ErrRemoteUpdateFailed indicates the remote could not be replaced.
	ErrRemoteUpdateFailed = errors.New("remote update failed")

	// ErrIncompleteIdentity indicates the identity lacks a name or email.
	ErrIncompleteIdentity = errors.New("identity is missing name or email")

	// ErrUserConfigFailed indicates the local user.name/user.email could not be set.
	ErrUserConfigFailed = errors.New("setting commit identity failed")

	// ErrConfigNotSynchronized indicates a project is not (fully) configured.
	ErrConfigNotSynchronized = errors.New("project configuration is not synchronized")

	// ErrSSHConnectionFailed indicates the SSH probe did not authenticate.
	ErrSSHConnectionFailed = errors.New("ssh connection failed")

	// ErrNotFound indicates a registry record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a registry record with the same key exists.
	ErrDuplicate = errors.New("record already exists")

	// ErrInvalidInput indicates a caller supplied an unusable value.
	ErrInvalidInput = errors.New("invalid input")
)

// Error wraps a failed operation with its kind and context.
type Error struct {
	Op     string // Operation that failed (e.g., "configure", "read public key")
	Kind   error  // One of the Err* kinds above
	Output string // Captured process output, if any
	Err    error  // Underlying error
}

// E builds an *Error for op of the given kind.
func E(op string, kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.Output != "" {
		return msg + ": " + e.Output
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// WithOutput attaches trimmed process output to the error.
func (e *Error) WithOutput(out string) *Error {
	e.Output = out
	return e
}

// KindOf returns the first known kind in err's chain, or nil.
func KindOf(err error) error {
	for _, k := range []error{
		ErrIdentityExists, ErrKeyNotFound, ErrInvalidRepository,
		ErrRemoteResolutionFailed, ErrInvalidRemoteURL, ErrInvalidRepoPath,
		ErrRemoteUpdateFailed, ErrIncompleteIdentity, ErrUserConfigFailed,
		ErrConfigNotSynchronized, ErrSSHConnectionFailed, ErrNotFound,
		ErrInvalidInput,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
