package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/jjvcs/gitbridge/internal/giterrors"
	"github.com/jjvcs/gitbridge/internal/gitrepo"
	"github.com/jjvcs/gitbridge/internal/repo"
)

// RefUpdate is one ref this push attempts to move or delete, per
// spec.md §4.6.
type RefUpdate struct {
	QualifiedName string // e.g. "refs/heads/main"
	Force         bool
	NewTarget     repo.CommitID // zero value means delete
}

// PushOptions configures a single push invocation.
type PushOptions struct {
	RemoteName string
	Updates    []RefUpdate
	Creds      gitrepo.CredentialSettings
	// Progress, if non-nil, receives the server's sideband transfer
	// progress text during upload, same rationale as FetchOptions.Progress.
	Progress io.Writer
}

// Push pushes every update in opts.Updates to the named remote, using a
// temporary refs/jj/git-push/<hex> ref per non-delete update so the
// pushed commit is reachable without depending on any native ref, per
// spec.md §4.6.
func Push(ctx context.Context, git *gitrepo.Repo, opts PushOptions) error {
	remoteCfg, err := git.Remote(opts.RemoteName)
	if err != nil {
		return &giterrors.NoSuchRemoteError{Name: opts.RemoteName, Err: err}
	}

	auth, err := gitrepo.AuthMethod(remoteCfg.URL, opts.Creds)
	if err != nil {
		return &giterrors.GitInternalError{Err: err}
	}

	var tempRefs []string
	var refspecs []string

	for _, u := range opts.Updates {
		if u.NewTarget == repo.ZeroCommitID {
			refspecs = append(refspecs, ":"+u.QualifiedName)
			continue
		}

		tempName, err := git.CreatePushRef(u.NewTarget)
		if err != nil {
			cleanupPushRefs(git, tempRefs)
			return &giterrors.GitInternalError{Err: err}
		}
		tempRefs = append(tempRefs, tempName)

		prefix := ""
		if u.Force {
			prefix = "+"
		}
		refspecs = append(refspecs, fmt.Sprintf("%s%s:%s", prefix, tempName, u.QualifiedName))
	}

	pushErr := git.Push(ctx, opts.RemoteName, refspecs, auth, opts.Progress)

	cleanupErr := cleanupPushRefs(git, tempRefs)

	// go-git gives us one error for the whole call rather than a per-ref
	// push-status callback, but the server still applies whichever
	// commands it accepted before reporting a non-fast-forward or hook
	// rejection for the rest. Drain the pending set by asking the remote
	// what it actually has now (mirrors git.rs's push_update_reference /
	// remaining_remote_refs check), so a partial rejection names the
	// specific branches left behind instead of failing the whole push.
	rejected, listErr := rejectedRefs(git, opts, auth)
	if listErr == nil && len(rejected) > 0 {
		return &giterrors.RefUpdateRejectedError{Names: rejected}
	}

	if pushErr != nil {
		if errors.Is(pushErr, gitrepo.ErrNotFastForward) {
			return giterrors.ErrNotFastForward
		}
		return &giterrors.GitInternalError{Err: pushErr}
	}

	if cleanupErr != nil {
		return &giterrors.GitInternalError{Err: cleanupErr}
	}

	return nil
}

// rejectedRefs lists opts.RemoteName's current refs and reports, sorted,
// every update in opts.Updates whose expected outcome (a specific commit
// for an update, absence for a delete) doesn't match what the remote
// actually has.
func rejectedRefs(git *gitrepo.Repo, opts PushOptions, auth transport.AuthMethod) ([]string, error) {
	actual, err := git.ListRemoteRefs(opts.RemoteName, auth)
	if err != nil {
		return nil, err
	}

	var rejected []string
	for _, u := range opts.Updates {
		if u.NewTarget == repo.ZeroCommitID {
			if _, stillPresent := actual[u.QualifiedName]; stillPresent {
				rejected = append(rejected, u.QualifiedName)
			}
			continue
		}
		if got, ok := actual[u.QualifiedName]; !ok || got != u.NewTarget {
			rejected = append(rejected, u.QualifiedName)
		}
	}
	sort.Strings(rejected)
	return rejected, nil
}

// cleanupPushRefs best-effort-deletes every temporary push ref. The first
// failure (other than "already gone") is returned, but every ref is still
// attempted.
func cleanupPushRefs(git *gitrepo.Repo, names []string) error {
	var firstErr error
	for _, name := range names {
		if err := git.RemovePushRef(name); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
