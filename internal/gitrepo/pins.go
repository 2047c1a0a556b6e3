package gitrepo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

// keepRefPrefix is the namespace under which gitbridge pins commits
// against garbage collection, per spec.md §4.3. A pin is a plain ref, so
// any Git GC that walks refs will keep the commit (and its ancestors)
// reachable.
const keepRefPrefix = "refs/jj/keep/"

// pushRefPrefix is the namespace used for temporary refs created during a
// push so the remote side (and any local GC running concurrently) can see
// the commits being pushed before the real branch ref is updated.
const pushRefPrefix = "refs/jj/git-push/"

func keepRefName(id plumbing.Hash) string {
	return keepRefPrefix + id.String()
}

func pushRefName(id plumbing.Hash) string {
	return pushRefPrefix + id.String()
}

// Pin creates or refreshes a GC-keep ref for id. It is idempotent: pinning
// an already-pinned commit is a no-op other than rewriting the same ref to
// the same value.
func (r *Repo) Pin(id plumbing.Hash) error {
	ref := plumbing.NewHashReference(plumbing.ReferenceName(keepRefName(id)), id)
	if err := r.git.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("pin commit %s: %w", id, err)
	}
	return nil
}

// Unpin removes the GC-keep ref for id, if any. Removing a pin that
// doesn't exist is not an error.
func (r *Repo) Unpin(id plumbing.Hash) error {
	name := plumbing.ReferenceName(keepRefName(id))
	if _, ok := r.Reference(string(name)); !ok {
		return nil
	}
	if err := r.git.Storer.RemoveReference(name); err != nil {
		return fmt.Errorf("unpin commit %s: %w", id, err)
	}
	return nil
}

// IsPinned reports whether id currently has a GC-keep ref.
func (r *Repo) IsPinned(id plumbing.Hash) bool {
	_, ok := r.Reference(keepRefName(id))
	return ok
}

// CreatePushRef creates the temporary ref a push uses to hold id reachable
// for the duration of the push, returning its name for later cleanup.
func (r *Repo) CreatePushRef(id plumbing.Hash) (string, error) {
	name := pushRefName(id)
	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), id)
	if err := r.git.Storer.SetReference(ref); err != nil {
		return "", fmt.Errorf("create push ref for %s: %w", id, err)
	}
	return name, nil
}

// RemovePushRef deletes a temporary push ref created by CreatePushRef. A
// ref that is already gone (e.g. removed by a concurrent cleanup) is not
// treated as an error, matching the best-effort cleanup spec.md §4.6
// describes for the push path.
func (r *Repo) RemovePushRef(name string) error {
	refName := plumbing.ReferenceName(name)
	if err := r.git.Storer.RemoveReference(refName); err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil
		}
		return fmt.Errorf("remove push ref %s: %w", name, err)
	}
	return nil
}
