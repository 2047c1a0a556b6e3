// Package remote orchestrates fetch and push against a configured Git
// remote, on top of internal/gitrepo, translating results into
// gitbridge's own error taxonomy and driving internal/gitimport for the
// post-fetch merge into the native view, per spec.md §4.6.
package remote

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/jjvcs/gitbridge/internal/gitimport"
	"github.com/jjvcs/gitbridge/internal/giterrors"
	"github.com/jjvcs/gitbridge/internal/gitrepo"
	"github.com/jjvcs/gitbridge/internal/refname"
	"github.com/jjvcs/gitbridge/internal/repo"
)

// FetchOptions configures a single fetch invocation.
type FetchOptions struct {
	RemoteName     string
	Globs          []string // defaults to ["*"] when empty
	Prune          bool
	Creds          gitrepo.CredentialSettings
	ImportSettings gitimport.Settings
	// Progress, if non-nil, receives the server's sideband transfer
	// progress text during download, mirroring the original's
	// RemoteCallbacks.progress/Progress{bytes_downloaded, overall}
	// callback (git.rs ~779-799) — go-git surfaces this as raw progress
	// text rather than structured byte counts, so callers get a writer
	// instead of a callback.
	Progress io.Writer
}

// FetchResult reports what the fetch discovered.
type FetchResult struct {
	DefaultBranch string // "" if not discoverable
}

func validateGlob(glob string) error {
	if strings.ContainsAny(glob, ":^") {
		return giterrors.ErrInvalidGlob
	}
	return nil
}

func refspecForGlob(remoteName, glob string) string {
	return fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", glob, remoteName, glob)
}

// globToRegexp turns a fetch glob into the regexp the post-fetch import
// filter matches branch suffixes against: escape everything, then turn
// the escaped "\*" back into ".*".
func globToRegexp(glob string) (*regexp.Regexp, error) {
	escaped := regexp.QuoteMeta(glob)
	pattern := strings.ReplaceAll(escaped, `\*`, ".*")
	re, err := regexp.Compile("^" + pattern + "$")
	if err != nil {
		return nil, fmt.Errorf("compile glob %q: %w", glob, err)
	}
	return re, nil
}

// Fetch looks up opts.RemoteName, downloads refs matching opts.Globs
// (default "*"), prunes if requested, then runs import scoped by the
// globs: local branches and opts.RemoteName's remote-tracking branches are
// in scope only if their branch name matches a glob, while tags, other
// remotes' branches, and refs the codec doesn't parse are always accepted.
func Fetch(ctx context.Context, repoPath string, git *gitrepo.Repo, mutRepo repo.MutableRepo, opts FetchOptions) (FetchResult, error) {
	globs := opts.Globs
	if len(globs) == 0 {
		globs = []string{"*"}
	}
	for _, g := range globs {
		if err := validateGlob(g); err != nil {
			return FetchResult{}, err
		}
	}

	remoteCfg, err := git.Remote(opts.RemoteName)
	if err != nil {
		return FetchResult{}, &giterrors.NoSuchRemoteError{Name: opts.RemoteName, Err: err}
	}

	auth, err := gitrepo.AuthMethod(remoteCfg.URL, opts.Creds)
	if err != nil {
		return FetchResult{}, &giterrors.GitInternalError{Err: err}
	}

	refspecs := make([]string, len(globs))
	for i, g := range globs {
		refspecs[i] = refspecForGlob(opts.RemoteName, g)
	}

	if err := git.Fetch(ctx, opts.RemoteName, refspecs, auth, opts.Prune, opts.Progress); err != nil {
		return FetchResult{}, &giterrors.GitInternalError{Err: err}
	}

	matchers := make([]*regexp.Regexp, len(globs))
	for i, g := range globs {
		re, err := globToRegexp(g)
		if err != nil {
			return FetchResult{}, &giterrors.GitInternalError{Err: err}
		}
		matchers[i] = re
	}

	accept := func(name string) bool {
		ref, ok := refname.Parse(name)
		if !ok {
			return true // tags and anything else the codec doesn't scope stay accepted
		}
		var suffix string
		switch ref.Kind {
		case refname.KindLocalBranch:
			suffix = ref.Branch
		case refname.KindRemoteBranch:
			if ref.Remote != opts.RemoteName {
				return true // a different remote's refs are out of scope for this fetch's filter
			}
			suffix = ref.Branch
		default:
			return true
		}
		for _, re := range matchers {
			if re.MatchString(suffix) {
				return true
			}
		}
		return false
	}

	if err := gitimport.Import(repoPath, git, mutRepo, opts.ImportSettings, accept); err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{}
	if defaultBranch, ok := discoverDefaultBranch(git, opts.RemoteName); ok {
		result.DefaultBranch = defaultBranch
	}
	return result, nil
}

// discoverDefaultBranch reads the remote-tracking HEAD pseudo-ref
// (refs/remotes/<remote>/HEAD) left behind by the fetch and translates it
// through the ref codec to a bare branch name.
func discoverDefaultBranch(git *gitrepo.Repo, remoteName string) (string, bool) {
	name := "refs/remotes/" + remoteName + "/HEAD"
	headRef, err := git.Underlying().Reference(plumbing.ReferenceName(name), true)
	if err != nil || headRef == nil {
		return "", false
	}
	symbolic, err := git.Underlying().Reference(plumbing.ReferenceName(name), false)
	if err != nil || symbolic.Type() != plumbing.SymbolicReference {
		return "", false
	}
	ref, ok := refname.Parse(symbolic.Target().String())
	if !ok || ref.Kind != refname.KindRemoteBranch {
		return "", false
	}
	return ref.Branch, true
}
