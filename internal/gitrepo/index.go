package gitrepo

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

// Index answers reachability questions directly against the Git object
// store, implementing internal/repo.Index without maintaining any
// separate commit index of its own — the object store already is one.
type Index struct {
	repo *Repo
}

// NewIndex returns an Index backed by repo's object store.
func NewIndex(repo *Repo) *Index {
	return &Index{repo: repo}
}

// HasCommit reports whether id names a commit object in the store.
func (x *Index) HasCommit(id plumbing.Hash) bool {
	return x.repo.CommitExists(id)
}

// AncestorsExcluding returns every commit reachable from heads that is not
// reachable from excludeHeads and is not rootID itself, by walking parent
// edges from heads and pruning the walk wherever it crosses into the set
// reachable from excludeHeads.
//
// This backs the import engine's abandonment detection (spec.md §4.4 step
// 8): a commit that used to be a branch target but is unreachable from
// every remaining head is abandoned, unless something else still keeps it
// alive.
func (x *Index) AncestorsExcluding(heads []plumbing.Hash, excludeHeads []plumbing.Hash, rootID plumbing.Hash) ([]plumbing.Hash, error) {
	excluded, err := x.reachableSet(excludeHeads)
	if err != nil {
		return nil, fmt.Errorf("walk excluded ancestors: %w", err)
	}

	var result []plumbing.Hash
	seen := map[plumbing.Hash]bool{}
	var stack []plumbing.Hash
	for _, h := range heads {
		if h != plumbing.ZeroHash {
			stack = append(stack, h)
		}
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[id] || excluded[id] || id == rootID {
			continue
		}
		seen[id] = true
		result = append(result, id)

		commit, err := x.repo.git.CommitObject(id)
		if err != nil {
			return nil, fmt.Errorf("load commit %s: %w", id, err)
		}
		for _, p := range commit.ParentHashes {
			if !seen[p] && !excluded[p] {
				stack = append(stack, p)
			}
		}
	}

	return result, nil
}

func (x *Index) reachableSet(heads []plumbing.Hash) (map[plumbing.Hash]bool, error) {
	set := map[plumbing.Hash]bool{}
	var stack []plumbing.Hash
	for _, h := range heads {
		if h != plumbing.ZeroHash {
			stack = append(stack, h)
		}
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if set[id] {
			continue
		}
		set[id] = true

		commit, err := x.repo.git.CommitObject(id)
		if err != nil {
			return nil, fmt.Errorf("load commit %s: %w", id, err)
		}
		for _, p := range commit.ParentHashes {
			if !set[p] {
				stack = append(stack, p)
			}
		}
	}
	return set, nil
}
