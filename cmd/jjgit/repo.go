package main

import (
	"github.com/jjvcs/gitbridge/internal/gitrepo"
	"github.com/jjvcs/gitbridge/internal/repo"
)

// openEngine opens the Git repository at repoPath and returns a fresh
// in-memory MutableRepo over it. A real jj-style CLI would load its
// native view from the operation log instead of starting empty each
// invocation; this module's scaffold doesn't own that persistence (see
// SPEC_FULL.md §10), so every jjgit run starts from an empty native view,
// which only an import within that same run fills from the Git side.
func openEngine(repoPath string) (*gitrepo.Repo, *repo.InMemoryRepo, error) {
	git, err := gitrepo.Open(repoPath)
	if err != nil {
		return nil, nil, err
	}
	idx := gitrepo.NewIndex(git)
	mutRepo := repo.NewInMemoryRepo(nil, idx)
	return git, mutRepo, nil
}
