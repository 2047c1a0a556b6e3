package gitrepo

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/go-git/go-git/v5/plumbing"
)

// ScannedRef is one reference surfaced by EachRef, already filtered down
// to the ones the import engine's scan step (spec.md §4.4 step 4) cares
// about: it has already been peeled to a commit.
type ScannedRef struct {
	Name     string
	CommitID plumbing.Hash
}

// EachRef calls fn once for every reference in the repository that is a
// candidate for import: not symbolic, not a note, UTF-8 named, and
// peelable to a commit. Refs that fail any of those checks are silently
// skipped, per spec.md §4.4 step 4's bullet list — this is the engine's
// only chance to look at the raw ref set, so the filtering happens here
// rather than being re-derived by every caller.
func (r *Repo) EachRef(fn func(ScannedRef) error) error {
	iter, err := r.git.References()
	if err != nil {
		return fmt.Errorf("list references: %w", err)
	}
	defer iter.Close()

	return iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().String()

		if !utf8.ValidString(name) {
			return nil
		}
		if ref.Type() == plumbing.SymbolicReference {
			return nil
		}
		if ref.Name() == plumbing.HEAD {
			return nil
		}
		if !ref.Name().IsBranch() && !ref.Name().IsRemote() && !ref.Name().IsTag() {
			return nil
		}

		commit, err := peelToCommit(r.git, ref.Hash())
		if err != nil {
			return nil // e.g. an annotated tag of a non-commit object
		}

		return fn(ScannedRef{Name: name, CommitID: commit})
	})
}

// PeelHead resolves HEAD to a commit id. ok is false if HEAD is unborn or
// doesn't resolve to a commit (spec.md §4.4 step 3's "otherwise").
func (r *Repo) PeelHead() (id plumbing.Hash, ok bool) {
	head, err := r.git.Head()
	if err != nil {
		return plumbing.ZeroHash, false
	}
	commit, err := peelToCommit(r.git, head.Hash())
	if err != nil {
		return plumbing.ZeroHash, false
	}
	return commit, true
}

// HeadTargetsBranch reports whether HEAD currently symbolically targets
// the given local branch ref name (e.g. "refs/heads/main"), and if so the
// commit HEAD currently resolves to.
func (r *Repo) HeadTargetsBranch(branchRefName string) (commit plumbing.Hash, targets bool) {
	symbolic, err := r.git.Reference(plumbing.HEAD, false)
	if err != nil || symbolic.Type() != plumbing.SymbolicReference {
		return plumbing.ZeroHash, false
	}
	if symbolic.Target().String() != branchRefName {
		return plumbing.ZeroHash, false
	}
	resolved, err := r.git.Reference(plumbing.HEAD, true)
	if err != nil {
		return plumbing.ZeroHash, true
	}
	return resolved.Hash(), true
}

// DetachHeadAt points HEAD directly at commit, replacing whatever branch
// it symbolically targeted.
func (r *Repo) DetachHeadAt(commit plumbing.Hash) error {
	ref := plumbing.NewHashReference(plumbing.HEAD, commit)
	if err := r.git.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("detach HEAD at %s: %w", commit, err)
	}
	return nil
}

// ErrRefChanged is returned by CompareAndSwap/DeleteIfEquals when the ref's
// current value no longer matches what the caller expected.
var ErrRefChanged = errors.New("git ref changed concurrently")

// CompareAndSwap atomically updates name from old to new. If old is the
// zero hash, the ref is created unconditionally (matching spec.md §4.5
// step 5's "old is absent" case). If the swap fails but name already
// points at new, that counts as success; otherwise ErrRefChanged is
// returned.
func (r *Repo) CompareAndSwap(name string, old, new plumbing.Hash) error {
	newRef := plumbing.NewHashReference(plumbing.ReferenceName(name), new)

	if old == plumbing.ZeroHash {
		if err := r.git.Storer.SetReference(newRef); err != nil {
			return fmt.Errorf("create ref %s: %w", name, err)
		}
		return nil
	}

	oldRef := plumbing.NewHashReference(plumbing.ReferenceName(name), old)
	if err := r.git.Storer.CheckAndSetReference(newRef, oldRef); err != nil {
		current, rerr := r.git.Reference(plumbing.ReferenceName(name), false)
		if rerr == nil && current.Hash() == new {
			return nil // someone else raced us to the same value
		}
		return ErrRefChanged
	}
	return nil
}

// DeleteIfEquals removes name if its current value is expect. If name is
// already absent, that counts as success (spec.md §4.5 step 4). If it
// exists with a different value, ErrRefChanged is returned and the ref is
// left untouched.
func (r *Repo) DeleteIfEquals(name string, expect plumbing.Hash) error {
	current, err := r.git.Reference(plumbing.ReferenceName(name), false)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil
		}
		return fmt.Errorf("read ref %s: %w", name, err)
	}
	if current.Hash() != expect {
		return ErrRefChanged
	}
	if err := r.git.Storer.RemoveReference(plumbing.ReferenceName(name)); err != nil {
		return fmt.Errorf("delete ref %s: %w", name, err)
	}
	return nil
}

// Reference resolves name to its current commit id, reporting ok=false if
// it does not exist.
func (r *Repo) Reference(name string) (id plumbing.Hash, ok bool) {
	ref, err := r.git.Reference(plumbing.ReferenceName(name), false)
	if err != nil {
		return plumbing.ZeroHash, false
	}
	return ref.Hash(), true
}

// CommitExists reports whether id names a commit object reachable by hash
// lookup in the repository's object store (not necessarily reachable from
// any ref).
func (r *Repo) CommitExists(id plumbing.Hash) bool {
	_, err := r.git.CommitObject(id)
	return err == nil
}
