package gitimport

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jjvcs/gitbridge/internal/gittest"
	"github.com/jjvcs/gitbridge/internal/gitrepo"
	"github.com/jjvcs/gitbridge/internal/repo"
)

func newRepo(t *testing.T) (*gittest.Repo, *repo.InMemoryRepo) {
	t.Helper()
	g := gittest.NewRepo(t)
	mut := repo.NewInMemoryRepo(nil, gitrepo.NewIndex(g.Wrapped))
	return g, mut
}

// Scenario 1 (spec.md §8): a plain branch fetched for the first time
// lands as a Normal target and the sidecar records it.
func TestImportFirstSeenBranch(t *testing.T) {
	g, mut := newRepo(t)
	x := g.Commit("initial")
	g.SetRef("refs/heads/origin", x)

	require.NoError(t, Import(g.Path, g.Wrapped, mut, Settings{}, AcceptAll))

	local := mut.View().Branches["origin"].Local
	got, ok := local.AsNormal()
	require.True(t, ok, "branch origin should be a Normal target, got %+v", local)
	require.Equal(t, x, got)

	require.True(t, g.Wrapped.IsPinned(x), "commit x is not GC-pinned after import")
}

// Scenario 3: a branch that moved on both sides becomes a native Conflict
// whose adds include both values, while the sidecar keeps Git's value.
func TestImportConflictingBranch(t *testing.T) {
	g, mut := newRepo(t)
	base := g.Commit("base")
	localOnly := g.Commit("local side", base)
	remoteOnly := g.Commit("remote side", base)

	// First import establishes rem1 -> base on both the native view and
	// the sidecar.
	g.SetRef("refs/heads/rem1", base)
	require.NoError(t, Import(g.Path, g.Wrapped, mut, Settings{}, AcceptAll), "Import #1")

	// The user moves the native branch locally (no Git-side change yet)...
	b := mut.View().Branches["rem1"]
	b.Local = repo.NormalRefTarget(localOnly)
	mut.View().Branches["rem1"] = b

	// ...while Git independently moves to a different commit.
	g.SetRef("refs/heads/rem1", remoteOnly)

	require.NoError(t, Import(g.Path, g.Wrapped, mut, Settings{}, AcceptAll), "Import #2")

	local := mut.View().Branches["rem1"].Local
	require.True(t, local.IsConflict(), "rem1 = %+v, want Conflict", local)
	adds := local.AddedCommits()
	found := map[repo.CommitID]bool{}
	for _, id := range adds {
		found[id] = true
	}
	require.True(t, found[localOnly] && found[remoteOnly],
		"conflict adds = %v, want to include both %s and %s", adds, localOnly, remoteOnly)
}

// Scenario 4: deleting a branch on the Git side abandons its commit once
// it's unreachable from every remaining head.
func TestImportAbandonsDeletedBranch(t *testing.T) {
	g, mut := newRepo(t)
	root := g.Commit("root")
	x := g.Commit("feature tip", root)
	g.SetRef("refs/heads/feature", x)
	g.SetRef("refs/heads/main", root)

	require.NoError(t, Import(g.Path, g.Wrapped, mut, Settings{}, AcceptAll), "Import #1")

	g.DeleteRef("refs/heads/feature")

	require.NoError(t, Import(g.Path, g.Wrapped, mut, Settings{}, AcceptAll), "Import #2")

	if _, ok := mut.View().Branches["feature"]; ok {
		require.True(t, mut.View().Branches["feature"].Local.IsAbsent(),
			"feature branch should be absent after the Git-side delete")
	}

	require.Contains(t, mut.Abandoned(), x)
}

// Filter-honoring: a ref rejected by accept() is never mutated or removed
// from the sidecar, and its commit is kept alive via new_heads so a later
// import of an unrelated deleted branch doesn't abandon it.
func TestImportHonorsFilter(t *testing.T) {
	g, mut := newRepo(t)
	root := g.Commit("root")
	x := g.Commit("kept alive but out of scope", root)
	g.SetRef("refs/heads/excluded", x)
	g.SetRef("refs/heads/tracked", root)

	accept := func(name string) bool { return name != "refs/heads/excluded" }

	require.NoError(t, Import(g.Path, g.Wrapped, mut, Settings{}, accept), "Import #1")

	_, ok := mut.View().Branches["excluded"]
	require.False(t, ok, "excluded branch should not appear in the native view")

	g.DeleteRef("refs/heads/tracked")
	require.NoError(t, Import(g.Path, g.Wrapped, mut, Settings{}, accept), "Import #2")

	require.NotContains(t, mut.Abandoned(), x,
		"excluded ref's commit must not be abandoned: it's kept alive via new_heads")
}

// auto_local_branch propagates a remote branch's delta onto the
// same-named local branch.
func TestImportAutoLocalBranch(t *testing.T) {
	g, mut := newRepo(t)
	x := g.Commit("upstream tip")
	g.SetRef("refs/remotes/origin/main", x)

	require.NoError(t, Import(g.Path, g.Wrapped, mut, Settings{AutoLocalBranch: true}, AcceptAll))

	local := mut.View().Branches["main"].Local
	got, ok := local.AsNormal()
	require.True(t, ok, "local main = %+v, want Normal via auto_local_branch", local)
	require.Equal(t, x, got)
}

// No-spurious-abandonment: commits still reachable via a surviving ref are
// never recorded as abandoned, even after an unrelated branch moves.
func TestImportNoSpuriousAbandonment(t *testing.T) {
	g, mut := newRepo(t)
	root := g.Commit("root")
	shared := g.Commit("shared ancestor", root)
	g.SetRef("refs/heads/main", shared)
	g.SetRef("refs/heads/topic", shared)

	require.NoError(t, Import(g.Path, g.Wrapped, mut, Settings{}, AcceptAll), "Import #1")

	moved := g.Commit("topic moves on", shared)
	g.SetRef("refs/heads/topic", moved)

	require.NoError(t, Import(g.Path, g.Wrapped, mut, Settings{}, AcceptAll), "Import #2")

	require.NotContains(t, mut.Abandoned(), shared,
		"shared commit reachable from main must not be abandoned")
}
