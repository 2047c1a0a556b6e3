package repo

import "github.com/jjvcs/gitbridge/internal/refname"

// Index answers reachability questions about the commit graph. In a real
// jj repository this is backed by the operation log's commit index; here
// it's satisfied by gitrepo.Index, which walks the same Git object store
// the engine is importing from/exporting to.
type Index interface {
	// HasCommit reports whether id is present in the backing store.
	HasCommit(id CommitID) bool

	// AncestorsExcluding returns, of the given head commits, every commit reachable
	// from them that is not reachable from any of excludeHeads, excluding
	// rootID itself. Used by the import engine's abandonment walk.
	AncestorsExcluding(heads []CommitID, excludeHeads []CommitID, rootID CommitID) ([]CommitID, error)
}

// MutableRepo is the subset of the native repository's mutation surface
// the import/export engines depend on, named exactly as spec.md §1 lists
// it. A real implementation lives outside this module (behind the
// operation log); InMemoryRepo below is a minimal stand-in used by this
// module's own tests and CLI.
type MutableRepo interface {
	View() *View
	Index() Index

	SetGitRef(name string, target RefTarget)
	RemoveGitRef(name string)

	// MergeSingleRef performs a three-way merge of ref's current native
	// value against old/new (both as observed on the Git side, relative to
	// the sidecar base) and stores + returns the result.
	MergeSingleRef(ref refname.RefName, base, newTarget RefTarget) RefTarget

	AddHead(id CommitID)
	RecordAbandonedCommit(id CommitID)

	SetGitHead(target RefTarget)
	ClearGitHead()
}

// InMemoryRepo is a minimal MutableRepo backed by a single in-process View.
// It exists so this module's import/export engines are independently
// buildable and testable; it is explicitly not a reimplementation of jj's
// operation log (see SPEC_FULL.md §10).
type InMemoryRepo struct {
	view      *View
	index     Index
	abandoned []CommitID
}

// NewInMemoryRepo returns a repo over the given view (NewView() if nil),
// backed by index for reachability queries.
func NewInMemoryRepo(view *View, index Index) *InMemoryRepo {
	if view == nil {
		view = NewView()
	}
	return &InMemoryRepo{view: view, index: index}
}

func (r *InMemoryRepo) View() *View   { return r.view }
func (r *InMemoryRepo) Index() Index  { return r.index }
func (r *InMemoryRepo) Abandoned() []CommitID {
	return append([]CommitID{}, r.abandoned...)
}

func (r *InMemoryRepo) SetGitRef(name string, target RefTarget) {
	r.view.GitRefs[name] = target
}

func (r *InMemoryRepo) RemoveGitRef(name string) {
	delete(r.view.GitRefs, name)
}

func (r *InMemoryRepo) AddHead(id CommitID) {
	r.view.HeadIDs[id] = struct{}{}
}

func (r *InMemoryRepo) RecordAbandonedCommit(id CommitID) {
	r.abandoned = append(r.abandoned, id)
}

func (r *InMemoryRepo) SetGitHead(target RefTarget) {
	r.view.GitHead = target
}

func (r *InMemoryRepo) ClearGitHead() {
	r.view.GitHead = AbsentRefTarget()
}

// MergeSingleRef merges (base -> newTarget) into whichever of branches/tags
// ref names, using the branch/tag's current value as the third side of the
// three-way merge, per spec.md §4.4 step 6.
func (r *InMemoryRepo) MergeSingleRef(ref refname.RefName, base, newTarget RefTarget) RefTarget {
	switch ref.Kind {
	case refname.KindLocalBranch:
		b := r.view.branch(ref.Branch)
		merged := MergeRefTargets(base, b.Local, newTarget)
		b.Local = merged
		r.view.Branches[ref.Branch] = b
		return merged
	case refname.KindRemoteBranch:
		b := r.view.branch(ref.Branch)
		current := b.Remotes[ref.Remote]
		merged := MergeRefTargets(base, current, newTarget)
		b.Remotes[ref.Remote] = merged
		r.view.Branches[ref.Branch] = b
		return merged
	case refname.KindTag:
		current := r.view.Tags[ref.Tag]
		merged := MergeRefTargets(base, current, newTarget)
		r.view.Tags[ref.Tag] = merged
		return merged
	default:
		return newTarget
	}
}
