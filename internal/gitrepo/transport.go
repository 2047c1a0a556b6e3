package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// RemoteConfig is the subset of a configured Git remote gitbridge needs:
// its name and fetch URL.
type RemoteConfig struct {
	Name string
	URL  string
}

// Remote looks up a configured remote by name.
func (r *Repo) Remote(name string) (RemoteConfig, error) {
	remote, err := r.git.Remote(name)
	if err != nil {
		return RemoteConfig{}, fmt.Errorf("lookup remote %s: %w", name, err)
	}
	cfg := remote.Config()
	url := ""
	if len(cfg.URLs) > 0 {
		url = cfg.URLs[0]
	}
	return RemoteConfig{Name: cfg.Name, URL: url}, nil
}

// Fetch runs git-fetch against remoteName using refspecs, authenticating
// with auth (nil lets go-git pick its transport default). Prune controls
// whether refs deleted on the remote side are removed locally, matching
// the remote orchestration's "prune" option (spec.md §4.6). progress, if
// non-nil, receives the server's sideband progress text (object counts,
// "Resolving deltas", and so on) as the transfer runs; nil disables it.
func (r *Repo) Fetch(ctx context.Context, remoteName string, refspecs []string, auth transport.AuthMethod, prune bool, progress io.Writer) error {
	specs := make([]config.RefSpec, len(refspecs))
	for i, s := range refspecs {
		specs[i] = config.RefSpec(s)
	}

	err := r.git.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   specs,
		Auth:       auth,
		Prune:      prune,
		Tags:       gogit.NoTags,
		Progress:   progress,
	})
	if err != nil {
		if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return nil
		}
		return fmt.Errorf("fetch from %s: %w", remoteName, err)
	}
	return nil
}

// ErrNotFastForward is returned by Push when the remote rejects an update
// because it isn't a fast-forward and force wasn't requested.
var ErrNotFastForward = errors.New("update is not a fast-forward")

// Push runs git-push against remoteName using the given raw refspec
// strings (each already carrying its own "+" force prefix, or a leading
// ":<dst>" for a delete), per spec.md §4.6. The caller — internal/remote —
// is responsible for building one temporary refs/jj/git-push/<hex> ref per
// update and, since go-git exposes no per-ref push-status callback, for
// draining its own pending set against a post-push ListRemoteRefs call.
// progress, if non-nil, receives the server's sideband progress text.
func (r *Repo) Push(ctx context.Context, remoteName string, refspecs []string, auth transport.AuthMethod, progress io.Writer) error {
	specs := make([]config.RefSpec, len(refspecs))
	for i, s := range refspecs {
		specs[i] = config.RefSpec(s)
	}

	err := r.git.PushContext(ctx, &gogit.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   specs,
		Auth:       auth,
		Progress:   progress,
	})
	if err != nil {
		if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return nil
		}
		if errors.Is(err, gogit.ErrNonFastForwardUpdate) {
			return ErrNotFastForward
		}
		return fmt.Errorf("push to %s: %w", remoteName, err)
	}
	return nil
}

// ListRemoteRefs runs a lightweight ls-remote against remoteName, returning
// every concrete (non-symbolic) ref the server currently reports, keyed by
// its fully-qualified name. The push path uses this as its pending-set
// check (spec.md §4.6): go-git has no push_update_reference-style callback
// to tell it per-ref whether an update landed, so it asks the remote what
// actually happened instead.
func (r *Repo) ListRemoteRefs(remoteName string, auth transport.AuthMethod) (map[string]plumbing.Hash, error) {
	remote, err := r.git.Remote(remoteName)
	if err != nil {
		return nil, fmt.Errorf("lookup remote %s: %w", remoteName, err)
	}
	refs, err := remote.List(&gogit.ListOptions{Auth: auth})
	if err != nil {
		return nil, fmt.Errorf("list refs on %s: %w", remoteName, err)
	}
	out := make(map[string]plumbing.Hash, len(refs))
	for _, ref := range refs {
		if ref.Type() != plumbing.HashReference {
			continue
		}
		out[ref.Name().String()] = ref.Hash()
	}
	return out, nil
}
