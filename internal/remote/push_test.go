package remote

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/go-git/go-git/v5/config"

	"github.com/jjvcs/gitbridge/internal/giterrors"
	"github.com/jjvcs/gitbridge/internal/gittest"
	"github.com/jjvcs/gitbridge/internal/repo"
)

// Pushing a branch creates a temporary refs/jj/git-push ref, moves the
// remote's real branch, and cleans the temporary ref up afterward.
func TestPushUpdatesRemoteAndCleansTempRefs(t *testing.T) {
	upstream := gittest.NewRepo(t)
	base := upstream.Commit("base")
	upstream.SetRef("refs/heads/main", base)

	local := gittest.NewRepo(t)
	local.SetRef("refs/heads/main", base)
	tip := local.Commit("local work", base)
	local.SetRef("refs/heads/main", tip)

	if _, err := local.Git.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{upstream.Path},
	}); err != nil {
		t.Fatalf("create remote: %v", err)
	}

	err := Push(context.Background(), local.Wrapped, PushOptions{
		RemoteName: "origin",
		Updates: []RefUpdate{
			{QualifiedName: "refs/heads/main", NewTarget: tip},
		},
	})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	if got := upstream.Reference("refs/heads/main"); got != tip {
		t.Errorf("upstream refs/heads/main = %s, want %s", got, tip)
	}

	if tempName := "refs/jj/git-push/" + tip.String(); local.HasRef(tempName) {
		t.Errorf("temporary push ref %s should have been cleaned up", tempName)
	}
}

// A delete update pushes a deletion refspec and requires no temp ref.
func TestPushDelete(t *testing.T) {
	upstream := gittest.NewRepo(t)
	x := upstream.Commit("x")
	upstream.SetRef("refs/heads/stale", x)

	local := gittest.NewRepo(t)
	if _, err := local.Git.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{upstream.Path},
	}); err != nil {
		t.Fatalf("create remote: %v", err)
	}

	err := Push(context.Background(), local.Wrapped, PushOptions{
		RemoteName: "origin",
		Updates: []RefUpdate{
			{QualifiedName: "refs/heads/stale", NewTarget: repo.ZeroCommitID},
		},
	})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if upstream.HasRef("refs/heads/stale") {
		t.Error("refs/heads/stale should have been deleted upstream")
	}
}

func TestPushNoSuchRemote(t *testing.T) {
	local := gittest.NewRepo(t)
	err := Push(context.Background(), local.Wrapped, PushOptions{RemoteName: "nope"})
	if err == nil {
		t.Fatal("expected a NoSuchRemoteError")
	}
}

// When one of several pushed branches is a non-fast-forward update the
// remote rejects, Push reports that branch by name via
// RefUpdateRejectedError instead of either a blanket success or an opaque
// error, and the branch that did go through is left updated upstream.
func TestPushPartialRejection(t *testing.T) {
	upstream := gittest.NewRepo(t)
	base := upstream.Commit("base")
	upstream.SetRef("refs/heads/main", base)
	upstreamFeature := upstream.Commit("feature, server side", base)
	upstream.SetRef("refs/heads/feature", upstreamFeature)

	local := gittest.NewRepo(t)
	local.SetRef("refs/heads/main", base)
	mainTip := local.Commit("main work", base)
	local.SetRef("refs/heads/main", mainTip)
	localFeature := local.Commit("feature, local side", base)
	local.SetRef("refs/heads/feature", localFeature)

	if _, err := local.Git.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{upstream.Path},
	}); err != nil {
		t.Fatalf("create remote: %v", err)
	}

	err := Push(context.Background(), local.Wrapped, PushOptions{
		RemoteName: "origin",
		Updates: []RefUpdate{
			{QualifiedName: "refs/heads/main", NewTarget: mainTip},
			{QualifiedName: "refs/heads/feature", NewTarget: localFeature},
		},
	})

	var rejected *giterrors.RefUpdateRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("Push: got %v, want a RefUpdateRejectedError", err)
	}
	if want := []string{"refs/heads/feature"}; !reflect.DeepEqual(rejected.Names, want) {
		t.Errorf("rejected names = %v, want %v", rejected.Names, want)
	}

	if got := upstream.Reference("refs/heads/main"); got != mainTip {
		t.Errorf("upstream refs/heads/main = %s, want %s (the fast-forward should have landed)", got, mainTip)
	}
	if got := upstream.Reference("refs/heads/feature"); got != upstreamFeature {
		t.Errorf("upstream refs/heads/feature = %s, want unchanged %s", got, upstreamFeature)
	}
}
