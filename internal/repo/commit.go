// Package repo provides a minimal stand-in for the operation-log-backed
// native repository model that gitbridge synchronizes with Git.
//
// The real collaborator (an operation log recording immutable "views") is
// out of scope for this module: callers are expected to supply their own
// MutableRepo. What's here is just enough of that contract — View,
// RefTarget, and the mutation methods the import/export engines call — to
// make the engine buildable and testable on its own. It is not a
// reimplementation of jj's operation log.
package repo

import (
	"encoding/hex"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

// CommitID is an opaque content-addressed commit identifier. It is a type
// alias for go-git's plumbing.Hash, which is bijective with a Git object id
// for SHA-1 repositories (the only object format the go-git version wired
// into this module understands — see DESIGN.md).
type CommitID = plumbing.Hash

// ZeroCommitID is the identifier no real commit ever has.
var ZeroCommitID = plumbing.ZeroHash

// ParseCommitID decodes a lowercase-hex commit id, rejecting anything that
// isn't valid hex (plumbing.NewHash silently zero-fills instead).
func ParseCommitID(s string) (CommitID, error) {
	if _, err := hex.DecodeString(s); err != nil {
		return ZeroCommitID, fmt.Errorf("parse commit id %q: %w", s, err)
	}
	return plumbing.NewHash(s), nil
}
