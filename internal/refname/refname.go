// Package refname parses and renders Git reference names into the tagged
// variant the rest of gitbridge operates on: a local branch, a
// remote-tracking branch, or a tag. Parse reports ok=false for any name
// under none of the three recognized prefixes (HEAD, notes, ...). Parse
// checks only the name's shape; symbolic and non-UTF-8 refs are dropped
// earlier, by the ref scan in internal/gitrepo.
package refname

import "strings"

// Kind distinguishes the three ref name shapes gitbridge understands.
type Kind int

const (
	// KindLocalBranch is refs/heads/<branch>.
	KindLocalBranch Kind = iota
	// KindRemoteBranch is refs/remotes/<remote>/<branch>.
	KindRemoteBranch
	// KindTag is refs/tags/<tag>.
	KindTag
)

const (
	headsPrefix   = "refs/heads/"
	remotesPrefix = "refs/remotes/"
	tagsPrefix    = "refs/tags/"
)

// RefName is the parsed form of a fully-qualified Git ref name.
type RefName struct {
	Kind   Kind
	Branch string // set for KindLocalBranch and KindRemoteBranch
	Remote string // set for KindRemoteBranch
	Tag    string // set for KindTag
}

// LocalBranch builds a RefName for refs/heads/<branch>.
func LocalBranch(branch string) RefName {
	return RefName{Kind: KindLocalBranch, Branch: branch}
}

// RemoteBranch builds a RefName for refs/remotes/<remote>/<branch>.
func RemoteBranch(remote, branch string) RefName {
	return RefName{Kind: KindRemoteBranch, Remote: remote, Branch: branch}
}

// TagName builds a RefName for refs/tags/<tag>.
func TagName(tag string) RefName {
	return RefName{Kind: KindTag, Tag: tag}
}

// Parse strips exactly one of the three recognized prefixes from a
// fully-qualified ref name. It reports ok=false for anything that doesn't
// match refs/heads/*, refs/remotes/*/*, or refs/tags/* — in particular,
// symbolic refs like HEAD and bare prefixes with no remainder are rejected.
func Parse(name string) (ref RefName, ok bool) {
	switch {
	case strings.HasPrefix(name, headsPrefix):
		branch := name[len(headsPrefix):]
		if branch == "" {
			return RefName{}, false
		}
		return LocalBranch(branch), true

	case strings.HasPrefix(name, remotesPrefix):
		rest := name[len(remotesPrefix):]
		remote, branch, found := strings.Cut(rest, "/")
		if !found || remote == "" || branch == "" {
			return RefName{}, false
		}
		return RemoteBranch(remote, branch), true

	case strings.HasPrefix(name, tagsPrefix):
		tag := name[len(tagsPrefix):]
		if tag == "" {
			return RefName{}, false
		}
		return TagName(tag), true

	default:
		return RefName{}, false
	}
}

// RenderLocal renders a local branch name back to its fully-qualified Git
// ref name.
func RenderLocal(branch string) string {
	return headsPrefix + branch
}

// RenderRemote renders a remote-tracking branch name back to its
// fully-qualified Git ref name.
func RenderRemote(remote, branch string) string {
	return remotesPrefix + remote + "/" + branch
}

// RenderTag renders a tag name back to its fully-qualified Git ref name.
func RenderTag(tag string) string {
	return tagsPrefix + tag
}

// String renders ref back to its fully-qualified Git ref name.
func (r RefName) String() string {
	switch r.Kind {
	case KindLocalBranch:
		return RenderLocal(r.Branch)
	case KindRemoteBranch:
		return RenderRemote(r.Remote, r.Branch)
	case KindTag:
		return RenderTag(r.Tag)
	default:
		return ""
	}
}

// IsRemoteHead reports whether name is the pseudo remote-tracking ref
// refs/remotes/<any>/HEAD, which the import scan skips regardless of the
// accept filter (spec.md §4.4 step 4).
func IsRemoteHead(name string) bool {
	if !strings.HasPrefix(name, remotesPrefix) {
		return false
	}
	return strings.HasSuffix(name, "/HEAD")
}
