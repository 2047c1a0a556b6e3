package gitrepo_test

import (
	"testing"

	"github.com/jjvcs/gitbridge/internal/gittest"
	"github.com/jjvcs/gitbridge/internal/gitrepo"
	"github.com/jjvcs/gitbridge/internal/repo"
)

func TestPinAndIsPinned(t *testing.T) {
	g := gittest.NewRepo(t)
	x := g.Commit("x")

	if g.Wrapped.IsPinned(x) {
		t.Fatal("commit should not be pinned yet")
	}
	if err := g.Wrapped.Pin(x); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if !g.Wrapped.IsPinned(x) {
		t.Fatal("commit should be pinned")
	}
	if err := g.Wrapped.Unpin(x); err != nil {
		t.Fatalf("Unpin: %v", err)
	}
	if g.Wrapped.IsPinned(x) {
		t.Fatal("commit should no longer be pinned")
	}
}

func TestCompareAndSwap(t *testing.T) {
	g := gittest.NewRepo(t)
	a := g.Commit("a")
	b := g.Commit("b", a)
	c := g.Commit("c", a)

	if err := g.Wrapped.CompareAndSwap("refs/heads/main", repo.ZeroCommitID, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := g.Wrapped.CompareAndSwap("refs/heads/main", a, b); err != nil {
		t.Fatalf("CAS update: %v", err)
	}
	if got := g.Reference("refs/heads/main"); got != b {
		t.Fatalf("refs/heads/main = %s, want %s", got, b)
	}

	// The ref has since moved to b; a CAS still expecting a against a
	// different new value must fail and leave the ref untouched.
	if err := g.Wrapped.CompareAndSwap("refs/heads/main", a, c); err == nil {
		t.Fatal("expected ErrRefChanged for a stale CAS")
	}
	if got := g.Reference("refs/heads/main"); got != b {
		t.Fatalf("refs/heads/main should be unchanged after a rejected CAS, got %s", got)
	}

	// A CAS whose expected new value already matches current state is
	// treated as success (idempotent retry after a race).
	if err := g.Wrapped.CompareAndSwap("refs/heads/main", a, b); err != nil {
		t.Fatalf("CAS matching current value should succeed, got %v", err)
	}
}

func TestDeleteIfEquals(t *testing.T) {
	g := gittest.NewRepo(t)
	a := g.Commit("a")
	g.SetRef("refs/heads/topic", a)

	if err := g.Wrapped.DeleteIfEquals("refs/heads/topic", a); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if g.HasRef("refs/heads/topic") {
		t.Fatal("ref should be gone")
	}

	// Deleting an absent ref is success, not an error.
	if err := g.Wrapped.DeleteIfEquals("refs/heads/topic", a); err != nil {
		t.Fatalf("delete of absent ref: %v", err)
	}
}

func TestEachRefScansBranchesAndRemotes(t *testing.T) {
	g := gittest.NewRepo(t)
	a := g.Commit("a")
	g.SetRef("refs/heads/main", a)
	g.SetRef("refs/remotes/origin/HEAD", a) // filtering this pseudo-ref is gitimport's job, not EachRef's

	seen := map[string]bool{}
	err := g.Wrapped.EachRef(func(ref gitrepo.ScannedRef) error {
		seen[ref.Name] = true
		return nil
	})
	if err != nil {
		t.Fatalf("EachRef: %v", err)
	}
	if !seen["refs/heads/main"] {
		t.Error("expected refs/heads/main to be scanned")
	}
	if !seen["refs/remotes/origin/HEAD"] {
		t.Error("expected refs/remotes/origin/HEAD to be scanned")
	}
}

func TestIndexAncestorsExcluding(t *testing.T) {
	g := gittest.NewRepo(t)
	root := g.Commit("root")
	mid := g.Commit("mid", root)
	tip := g.Commit("tip", mid)

	idx := gitrepo.NewIndex(g.Wrapped)

	got, err := idx.AncestorsExcluding([]repo.CommitID{tip}, []repo.CommitID{root}, repo.ZeroCommitID)
	if err != nil {
		t.Fatalf("AncestorsExcluding: %v", err)
	}
	want := map[repo.CommitID]bool{tip: true, mid: true}
	if len(got) != len(want) {
		t.Fatalf("got %v, want exactly %v", got, want)
	}
	for _, id := range got {
		if !want[id] {
			t.Errorf("unexpected commit %s in ancestors", id)
		}
	}
}
