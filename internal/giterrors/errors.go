// Package giterrors defines the error kinds gitbridge surfaces at its
// boundary, per spec.md §7. These are kinds, not a type hierarchy: most
// are simple sentinels or small parameterized structs in the style of
// os.PathError, meant to be matched with errors.Is/errors.As.
package giterrors

import (
	"fmt"
	"strings"
)

// NoSuchRemoteError reports that a remote lookup failed, either because it
// doesn't exist or because its configuration couldn't be parsed.
type NoSuchRemoteError struct {
	Name string
	Err  error
}

func (e *NoSuchRemoteError) Error() string {
	return fmt.Sprintf("no such remote %q", e.Name)
}

func (e *NoSuchRemoteError) Unwrap() error { return e.Err }

// ErrInvalidGlob is returned when a user-supplied fetch filter glob
// contains a character the refspec translation can't handle safely.
var ErrInvalidGlob = fmt.Errorf("glob contains a forbidden character (':' or '^')")

// ErrNotFastForward is returned when a push is rejected for being a
// non-fast-forward update and force was not requested.
var ErrNotFastForward = fmt.Errorf("push rejected: not a fast-forward update")

// RefUpdateRejectedError reports that the remote (or one of its hooks)
// rejected specific ref updates during a push.
type RefUpdateRejectedError struct {
	Names []string // sorted
}

func (e *RefUpdateRejectedError) Error() string {
	return fmt.Sprintf("ref update rejected: %s", strings.Join(e.Names, ", "))
}

// ConflictedBranchError reports that a branch could not be exported
// because its native value is itself a conflict; resolving it is left to
// the user.
type ConflictedBranchError struct {
	Name string
}

func (e *ConflictedBranchError) Error() string {
	return fmt.Sprintf("branch %q is conflicted and cannot be exported", e.Name)
}

// SidecarIOError wraps a failure to read or write the last-seen-refs
// sidecar file.
type SidecarIOError struct {
	Op  string
	Err error
}

func (e *SidecarIOError) Error() string {
	return fmt.Sprintf("sidecar %s: %v", e.Op, e.Err)
}

func (e *SidecarIOError) Unwrap() error { return e.Err }

// GitInternalError opaquely wraps any other error surfaced by the
// underlying Git library.
type GitInternalError struct {
	Err error
}

func (e *GitInternalError) Error() string {
	return fmt.Sprintf("git: %v", e.Err)
}

func (e *GitInternalError) Unwrap() error { return e.Err }
