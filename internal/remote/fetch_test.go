package remote

import (
	"context"
	"testing"

	"github.com/go-git/go-git/v5/config"

	"github.com/jjvcs/gitbridge/internal/gitimport"
	"github.com/jjvcs/gitbridge/internal/gittest"
	"github.com/jjvcs/gitbridge/internal/gitrepo"
	"github.com/jjvcs/gitbridge/internal/repo"
)

func TestValidateGlob(t *testing.T) {
	if err := validateGlob("feature/*"); err != nil {
		t.Errorf("validateGlob(feature/*) = %v, want nil", err)
	}
	for _, bad := range []string{"refs:weird", "HEAD^"} {
		if err := validateGlob(bad); err == nil {
			t.Errorf("validateGlob(%q) = nil, want an error", bad)
		}
	}
}

func TestGlobToRegexp(t *testing.T) {
	re, err := globToRegexp("release-*")
	if err != nil {
		t.Fatalf("globToRegexp: %v", err)
	}
	if !re.MatchString("release-1.0") {
		t.Error("expected release-1.0 to match release-*")
	}
	if re.MatchString("other") {
		t.Error("did not expect other to match release-*")
	}
}

// Scenario 1 (spec.md §8): fetching with no arguments brings a remote's
// branch in as a Normal remote-tracking target and, via auto_local_branch,
// as a Normal local branch.
func TestFetchDefaultRemote(t *testing.T) {
	upstream := gittest.NewRepo(t)
	x := upstream.Commit("upstream tip")
	upstream.SetRef("refs/heads/main", x)

	local := gittest.NewRepo(t)
	if _, err := local.Git.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{upstream.Path},
	}); err != nil {
		t.Fatalf("create remote: %v", err)
	}

	mut := repo.NewInMemoryRepo(nil, gitrepo.NewIndex(local.Wrapped))

	result, err := Fetch(context.Background(), local.Path, local.Wrapped, mut, FetchOptions{
		RemoteName:     "origin",
		ImportSettings: gitimport.Settings{AutoLocalBranch: true},
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	_ = result

	remoteTarget := mut.View().Branches["main"].Remotes["origin"]
	got, ok := remoteTarget.AsNormal()
	if !ok || got != x {
		t.Fatalf("origin/main = %+v, want Normal(%s)", remoteTarget, x)
	}

	localTarget, ok := mut.View().Branches["main"].Local.AsNormal()
	if !ok || localTarget != x {
		t.Fatalf("local main = %+v, want Normal(%s) via auto_local_branch", mut.View().Branches["main"].Local, x)
	}
}

func TestFetchRejectsInvalidGlob(t *testing.T) {
	local := gittest.NewRepo(t)
	mut := repo.NewInMemoryRepo(nil, gitrepo.NewIndex(local.Wrapped))

	_, err := Fetch(context.Background(), local.Path, local.Wrapped, mut, FetchOptions{
		RemoteName: "origin",
		Globs:      []string{"weird:glob"},
	})
	if err == nil {
		t.Fatal("expected an error for an invalid glob")
	}
}

func TestFetchNoSuchRemote(t *testing.T) {
	local := gittest.NewRepo(t)
	mut := repo.NewInMemoryRepo(nil, gitrepo.NewIndex(local.Wrapped))

	_, err := Fetch(context.Background(), local.Path, local.Wrapped, mut, FetchOptions{RemoteName: "nope"})
	if err == nil {
		t.Fatal("expected a NoSuchRemoteError")
	}
}
