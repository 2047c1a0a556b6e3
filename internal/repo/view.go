package repo

// BranchTarget is a branch's local target plus its remote-tracking targets,
// per spec.md §3.
type BranchTarget struct {
	Local   RefTarget
	Remotes map[string]RefTarget
}

// View is a snapshot of the native repository's ref-relevant state. Fields
// the import/export engines don't touch (change metadata, working-copy
// contents, ...) are intentionally absent: this is a scaffold, not a full
// view model.
type View struct {
	Branches    map[string]BranchTarget
	Tags        map[string]RefTarget
	GitRefs     map[string]RefTarget
	GitHead     RefTarget
	HeadIDs     map[CommitID]struct{}
	WCCommitIDs map[string]CommitID
}

// NewView returns an empty, fully-initialized View.
func NewView() *View {
	return &View{
		Branches:    make(map[string]BranchTarget),
		Tags:        make(map[string]RefTarget),
		GitRefs:     make(map[string]RefTarget),
		GitHead:     AbsentRefTarget(),
		HeadIDs:     make(map[CommitID]struct{}),
		WCCommitIDs: make(map[string]CommitID),
	}
}

func (v *View) branch(name string) BranchTarget {
	b, ok := v.Branches[name]
	if !ok {
		return BranchTarget{Local: AbsentRefTarget(), Remotes: make(map[string]RefTarget)}
	}
	if b.Remotes == nil {
		b.Remotes = make(map[string]RefTarget)
	}
	return b
}
