// Package gitexport implements the export half of gitbridge: pushing the
// native view's branch state onto the repository's real Git refs, per
// spec.md §4.5. Tags and other non-branch refs are never exported — Git
// is authoritative for them.
package gitexport

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jjvcs/gitbridge/internal/gitrepo"
	"github.com/jjvcs/gitbridge/internal/refname"
	"github.com/jjvcs/gitbridge/internal/repo"
	"github.com/jjvcs/gitbridge/internal/sidecar"
)

type kind int

const (
	kindUpdate kind = iota
	kindDelete
)

type candidate struct {
	branch string
	kind   kind
	oldOID repo.CommitID
	newOID repo.CommitID // zero for deletes
}

// Export runs the algorithm in spec.md §4.5, returning the sorted list of
// branch names that could not be exported (a CAS conflict with concurrent
// Git activity, or a native Conflict). A non-nil error means the sidecar
// or repository couldn't be touched at all; a non-empty return slice with
// nil error means the export ran but some branches were left behind.
func Export(repoPath string, git *gitrepo.Repo, mutRepo repo.MutableRepo) ([]string, error) {
	failed, err := sidecar.With(repoPath, func(base sidecar.GitRefView) (sidecar.GitRefView, []string, error) {
		if base == nil {
			base = sidecar.GitRefView{}
		}
		return runExport(git, mutRepo, base)
	})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	sort.Strings(failed)
	return failed, nil
}

func runExport(git *gitrepo.Repo, mutRepo repo.MutableRepo, base sidecar.GitRefView) (sidecar.GitRefView, []string, error) {
	view := mutRepo.View()

	names := map[string]struct{}{}
	for refName := range base {
		if parsed, ok := refname.Parse(refName); ok && parsed.Kind == refname.KindLocalBranch {
			names[parsed.Branch] = struct{}{}
		}
	}
	for name := range view.Branches {
		names[name] = struct{}{}
	}

	var candidates []candidate
	for name := range names {
		oldID, hadOld := base[refname.RenderLocal(name)]
		local := view.Branches[name].Local

		newID, resolved := local.AsNormal()

		switch {
		case hadOld && resolved && oldID == newID:
			continue // equal, nothing to do
		case local.IsConflict():
			continue // cannot export; reported as failed below
		case resolved:
			old := repo.ZeroCommitID
			if hadOld {
				old = oldID
			}
			candidates = append(candidates, candidate{branch: name, kind: kindUpdate, oldOID: old, newOID: newID})
		case local.IsAbsent() && hadOld:
			candidates = append(candidates, candidate{branch: name, kind: kindDelete, oldOID: oldID})
		}
	}

	var failed []string
	for name := range names {
		if view.Branches[name].Local.IsConflict() {
			failed = append(failed, name)
		}
	}

	// Step 3: detach HEAD if this export would move or delete the branch
	// it currently targets.
	for _, c := range candidates {
		refName := refname.RenderLocal(c.branch)
		if headCommit, targets := git.HeadTargetsBranch(refName); targets {
			if headCommit != c.newOID {
				if err := git.DetachHeadAt(headCommit); err != nil {
					return nil, nil, fmt.Errorf("detach HEAD before exporting %s: %w", c.branch, err)
				}
			}
		}
	}

	newBase := sidecar.GitRefView{}
	for name, id := range base {
		newBase[name] = id
	}

	for _, c := range candidates {
		refName := refname.RenderLocal(c.branch)
		ok, err := applyCandidate(git, refName, c)
		if err != nil {
			return nil, nil, fmt.Errorf("export %s: %w", c.branch, err)
		}
		if !ok {
			failed = append(failed, c.branch)
			continue
		}

		switch c.kind {
		case kindDelete:
			delete(newBase, refName)
			view.GitRefs[refName] = repo.AbsentRefTarget()
		case kindUpdate:
			newBase[refName] = c.newOID
			view.GitRefs[refName] = repo.NormalRefTarget(c.newOID)
		}
	}

	sort.Strings(failed)
	return newBase, failed, nil
}

// applyCandidate applies one delete or update against the real Git ref,
// returning ok=false (not an error) for the "someone else already changed
// it" outcomes spec.md §4.5 steps 4-5 describe as failures rather than
// faults.
func applyCandidate(git *gitrepo.Repo, refName string, c candidate) (bool, error) {
	switch c.kind {
	case kindDelete:
		if err := git.DeleteIfEquals(refName, c.oldOID); err != nil {
			if errors.Is(err, gitrepo.ErrRefChanged) {
				return false, nil
			}
			return false, err
		}
		return true, nil

	case kindUpdate:
		if c.oldOID == repo.ZeroCommitID {
			if current, exists := git.Reference(refName); exists {
				return current == c.newOID, nil
			}
			if err := git.CompareAndSwap(refName, repo.ZeroCommitID, c.newOID); err != nil {
				return false, err
			}
			return true, nil
		}

		err := git.CompareAndSwap(refName, c.oldOID, c.newOID)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, gitrepo.ErrRefChanged) {
			current, exists := git.Reference(refName)
			return exists && current == c.newOID, nil
		}
		return false, err
	}
	return false, fmt.Errorf("unknown candidate kind %d", c.kind)
}
