// Package gitrepo wraps go-git to provide the Git library interface
// gitbridge's import/export/remote engines are built against: ref
// enumeration and peeling, compare-and-swap ref updates, the GC-pin
// namespace, and fetch/push.
//
// Grounded in the Repository interface pattern of
// other_examples/4a1b430a_act3-ai-gnoci__internal-git-git.go.go and the
// CAS/credential patterns of the ConfigButler, fossabot, and erikh-hydra
// examples in the retrieval pack.
package gitrepo

import (
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a thin wrapper around a go-git repository, scoped to the
// operations gitbridge needs.
type Repo struct {
	git *gogit.Repository
}

// Open opens an existing Git repository (bare or with a working tree) at
// path.
func Open(path string) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository at %s: %w", path, err)
	}
	return &Repo{git: r}, nil
}

// FromGoGit wraps an already-open go-git repository, e.g. one created by
// PlainInit or PlainClone.
func FromGoGit(r *gogit.Repository) *Repo {
	return &Repo{git: r}
}

// Underlying returns the wrapped *git.Repository for callers that need
// go-git functionality this wrapper doesn't expose.
func (r *Repo) Underlying() *gogit.Repository {
	return r.git
}

// peelToCommit resolves h to the commit it ultimately identifies, walking
// through any chain of annotated tag objects. It returns an error for
// objects that don't resolve to a commit at all (e.g. a tag of a GPG key,
// spec.md §4.4 step 4), which callers treat as "skip this ref".
func peelToCommit(r *gogit.Repository, h plumbing.Hash) (plumbing.Hash, error) {
	obj, err := r.Object(plumbing.AnyObject, h)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("load object %s: %w", h, err)
	}

	for {
		switch o := obj.(type) {
		case *object.Commit:
			return o.Hash, nil
		case *object.Tag:
			obj, err = o.Object()
			if err != nil {
				return plumbing.ZeroHash, fmt.Errorf("resolve tag %s: %w", h, err)
			}
		default:
			return plumbing.ZeroHash, fmt.Errorf("object %s (%s) does not resolve to a commit", h, obj.Type())
		}
	}
}

// PeelToCommit is the exported form of peelToCommit. The import engine's
// ref scan and HEAD peeling go through EachRef and PeelHead, which use
// peelToCommit directly.
func (r *Repo) PeelToCommit(h plumbing.Hash) (plumbing.Hash, error) {
	return peelToCommit(r.git, h)
}
