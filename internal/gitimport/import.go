// Package gitimport implements the import half of gitbridge: bringing
// changes made on the Git side (by the user's own `git` commands, or by a
// preceding fetch) into the native repository's view, per spec.md §4.4.
package gitimport

import (
	"fmt"

	"github.com/jjvcs/gitbridge/internal/gitrepo"
	"github.com/jjvcs/gitbridge/internal/refname"
	"github.com/jjvcs/gitbridge/internal/repo"
	"github.com/jjvcs/gitbridge/internal/sidecar"
)

// Settings configures a single import run.
type Settings struct {
	// AutoLocalBranch propagates a remote branch's (old, new) delta onto
	// the same-named local branch, per spec.md §4.4 step 6.
	AutoLocalBranch bool
}

// AcceptFunc decides whether a ref name is in scope for this import. Refs
// it rejects are still kept alive (their commits join new_heads) but the
// native view is left untouched for them.
type AcceptFunc func(name string) bool

// AcceptAll is the default filter: every ref is in scope.
func AcceptAll(string) bool { return true }

// change is one ref's observed (old, new) delta for this import, derived
// during the scan and deletion steps.
type change struct {
	name string
	old  repo.RefTarget
	new  repo.RefTarget
}

// Import runs the algorithm in spec.md §4.4 against git, staging mutations
// into mutRepo and persisting the sidecar under repoPath.
func Import(repoPath string, git *gitrepo.Repo, mutRepo repo.MutableRepo, settings Settings, accept AcceptFunc) error {
	if accept == nil {
		accept = AcceptAll
	}

	_, err := sidecar.With(repoPath, func(base sidecar.GitRefView) (sidecar.GitRefView, struct{}, error) {
		if base == nil {
			base = bootstrapBase(mutRepo)
		}

		newBase, importErr := runImport(git, mutRepo, settings, accept, base)
		return newBase, struct{}{}, importErr
	})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return nil
}

// bootstrapBase seeds the sidecar from every Normal local-branch entry in
// the native view's git_refs, per spec.md §4.4 step 1.
func bootstrapBase(mutRepo repo.MutableRepo) sidecar.GitRefView {
	view := sidecar.GitRefView{}
	for name, target := range mutRepo.View().GitRefs {
		if id, ok := target.AsNormal(); ok {
			if ref, ok := refname.Parse(name); ok && ref.Kind == refname.KindLocalBranch {
				view[name] = id
			}
		}
	}
	return view
}

func runImport(git *gitrepo.Repo, mutRepo repo.MutableRepo, settings Settings, accept AcceptFunc, base sidecar.GitRefView) (sidecar.GitRefView, error) {
	view := mutRepo.View()

	oldHeads := map[repo.CommitID]struct{}{}
	newHeads := map[repo.CommitID]struct{}{}

	// Step 2: seed head sets from the base sidecar.
	for name, id := range base {
		if accept(name) {
			oldHeads[id] = struct{}{}
		} else {
			newHeads[id] = struct{}{}
		}
	}
	for _, id := range view.GitHead.AddedCommits() {
		oldHeads[id] = struct{}{}
	}

	// Step 3: track Git HEAD.
	if headID, ok := git.PeelHead(); ok {
		newHeads[headID] = struct{}{}
		if err := git.Pin(headID); err != nil {
			return nil, fmt.Errorf("pin HEAD %s: %w", headID, err)
		}
		mutRepo.AddHead(headID)
		mutRepo.SetGitHead(repo.NormalRefTarget(headID))
	} else {
		mutRepo.ClearGitHead()
	}

	newBase := sidecar.GitRefView{}
	present := map[string]struct{}{}
	var changes []change

	// Step 4: scan Git refs.
	err := git.EachRef(func(ref gitrepo.ScannedRef) error {
		if refname.IsRemoteHead(ref.Name) {
			return nil
		}
		newHeads[ref.CommitID] = struct{}{}

		if !accept(ref.Name) {
			return nil
		}
		present[ref.Name] = struct{}{}

		parsed, parsedOK := refname.Parse(ref.Name)
		isLocalBranch := parsedOK && parsed.Kind == refname.KindLocalBranch

		oldID, hadBase := base[ref.Name]
		if isLocalBranch {
			newBase[ref.Name] = ref.CommitID
		}

		oldTarget := repo.AbsentRefTarget()
		if hadBase {
			oldTarget = repo.NormalRefTarget(oldID)
		}
		newTarget := repo.NormalRefTarget(ref.CommitID)

		if hadBase && oldID == ref.CommitID {
			return nil
		}

		if err := git.Pin(ref.CommitID); err != nil {
			return fmt.Errorf("pin %s at %s: %w", ref.Name, ref.CommitID, err)
		}
		view.GitRefs[ref.Name] = newTarget
		mutRepo.AddHead(ref.CommitID)
		changes = append(changes, change{name: ref.Name, old: oldTarget, new: newTarget})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan refs: %w", err)
	}

	// Carry over base entries for local branches outside the accept
	// filter: this import leaves them alone, so they stay in the sidecar
	// as they were. Accepted entries were either rewritten above or are
	// removed by the deletion step below.
	for name, id := range base {
		if _, rewritten := newBase[name]; rewritten {
			continue
		}
		if ref, ok := refname.Parse(name); ok && ref.Kind == refname.KindLocalBranch && !accept(name) {
			newBase[name] = id
		}
	}

	// Step 5: deletions.
	for name, oldID := range base {
		if !accept(name) {
			continue
		}
		if _, ok := present[name]; ok {
			continue
		}
		delete(view.GitRefs, name)
		delete(newBase, name)
		changes = append(changes, change{name: name, old: repo.NormalRefTarget(oldID), new: repo.AbsentRefTarget()})
	}

	// Step 6: three-way merge into native branches.
	for _, c := range changes {
		ref, ok := refname.Parse(c.name)
		if !ok {
			continue
		}
		mutRepo.MergeSingleRef(ref, c.old, c.new)

		if settings.AutoLocalBranch && ref.Kind == refname.KindRemoteBranch {
			mutRepo.MergeSingleRef(refname.LocalBranch(ref.Branch), c.old, c.new)
		}
	}

	// Step 7: prune stale git_refs.
	for name := range view.GitRefs {
		if accept(name) {
			if _, ok := present[name]; !ok {
				delete(view.GitRefs, name)
			}
		}
	}

	// Step 8: abandon unreachable commits.
	if idx := mutRepo.Index(); idx != nil {
		reachableNewHeads := keysReachable(idx, newHeads)
		reachableOldHeads := keys(oldHeads)
		abandoned, err := idx.AncestorsExcluding(reachableOldHeads, reachableNewHeads, repo.ZeroCommitID)
		if err != nil {
			return nil, fmt.Errorf("walk abandoned commits: %w", err)
		}
		for _, id := range abandoned {
			mutRepo.RecordAbandonedCommit(id)
		}
	}

	return newBase, nil
}

func keys(m map[repo.CommitID]struct{}) []repo.CommitID {
	out := make([]repo.CommitID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func keysReachable(idx repo.Index, m map[repo.CommitID]struct{}) []repo.CommitID {
	out := make([]repo.CommitID, 0, len(m))
	for k := range m {
		if idx.HasCommit(k) {
			out = append(out, k)
		}
	}
	return out
}
