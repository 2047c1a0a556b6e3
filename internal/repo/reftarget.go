package repo

// RefTarget is either a single resolved commit or a conflict recorded as a
// multiset of removed and added commits, per spec.md §3: a conflict is
// resolved iff Adds has exactly one element and Removes is empty after
// reduction.
type RefTarget struct {
	Adds    []CommitID
	Removes []CommitID
}

// AbsentRefTarget is the target of a ref that does not exist.
func AbsentRefTarget() RefTarget {
	return RefTarget{}
}

// NormalRefTarget is a single resolved commit.
func NormalRefTarget(id CommitID) RefTarget {
	return RefTarget{Adds: []CommitID{id}}
}

// IsAbsent reports whether the ref has no target at all.
func (t RefTarget) IsAbsent() bool {
	return len(t.Adds) == 0 && len(t.Removes) == 0
}

// IsResolved reports whether the target, after reduction, is absent or
// normal rather than conflicted.
func (t RefTarget) IsResolved() bool {
	r := t.normalize()
	return len(r.Removes) == 0 && len(r.Adds) <= 1
}

// IsConflict reports whether the target is a genuine conflict.
func (t RefTarget) IsConflict() bool {
	return !t.IsResolved()
}

// AsNormal returns the single commit id for a resolved, present target.
func (t RefTarget) AsNormal() (CommitID, bool) {
	r := t.normalize()
	if len(r.Removes) == 0 && len(r.Adds) == 1 {
		return r.Adds[0], true
	}
	return ZeroCommitID, false
}

// AddedCommits returns the reduced set of commit ids this target adds —
// one for a Normal target, possibly several for a Conflict, none for
// Absent. Used by the import engine to seed head sets from git_head and
// similar single-field targets.
func (t RefTarget) AddedCommits() []CommitID {
	return t.normalize().Adds
}

// Equal reports whether two targets denote the same reduced state.
func (t RefTarget) Equal(other RefTarget) bool {
	a, b := t.normalize(), other.normalize()
	return multisetEqual(a.Adds, b.Adds) && multisetEqual(a.Removes, b.Removes)
}

// normalize cancels identical commit ids that appear in both Adds and
// Removes (multiset subtraction), collapsing e.g. Conflict{adds:[x],
// removes:[]} to the already-reduced form spec.md requires.
func (t RefTarget) normalize() RefTarget {
	adds := append([]CommitID{}, t.Adds...)
	removes := append([]CommitID{}, t.Removes...)

	for i := 0; i < len(adds); i++ {
		for j := 0; j < len(removes); j++ {
			if adds[i] == removes[j] {
				adds = append(adds[:i], adds[i+1:]...)
				removes = append(removes[:j], removes[j+1:]...)
				i--
				break
			}
		}
	}
	if len(adds) == 0 {
		adds = nil
	}
	if len(removes) == 0 {
		removes = nil
	}
	return RefTarget{Adds: adds, Removes: removes}
}

func multisetEqual(a, b []CommitID) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for j, y := range b {
			if !used[j] && x == y {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MergeRefTargets performs the three-way merge spec.md §4.4/§8 describes:
// given the last-seen base, and two sides that may each have moved the ref
// away from it, produce the side's value if only it moved, or a Conflict
// recording both sides' adds against the base's removed value.
//
// This is the trivial-merge-or-conflict shape jj itself uses for ref
// targets: a fast path when one side is a no-op relative to base, and a
// multiset conflict (removes=base, adds=both sides) otherwise, reduced by
// normalize() so already-converging conflicts can resolve.
func MergeRefTargets(base, a, b RefTarget) RefTarget {
	if base.Equal(a) {
		return b
	}
	if base.Equal(b) {
		return a
	}
	if a.Equal(b) {
		return a
	}

	merged := RefTarget{
		Adds:    append(append([]CommitID{}, a.Adds...), b.Adds...),
		Removes: append(append([]CommitID{}, a.Removes...), b.Removes...),
	}
	merged.Removes = append(merged.Removes, base.Adds...)
	merged.Adds = append(merged.Adds, base.Removes...)
	return merged.normalize()
}
