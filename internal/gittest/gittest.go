// Package gittest builds small, fully-deterministic Git repositories for
// the import/export/remote engines' tests: plain object construction
// (blob/tree/commit) rather than a working tree, so tests can assign
// arbitrary parents and branch positions without checking anything out.
package gittest

import (
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/jjvcs/gitbridge/internal/gitrepo"
)

// sig is a fixed signature so commit hashes are stable across runs.
var sig = object.Signature{
	Name:  "gitbridge test",
	Email: "gitbridge@example.com",
	When:  time.Unix(1700000000, 0).UTC(),
}

// Repo wraps a freshly initialized Git repository rooted at a temp dir,
// along with the gitrepo.Repo wrapper the engines under test operate on.
type Repo struct {
	T        *testing.T
	Path     string
	Git      *gogit.Repository
	Wrapped  *gitrepo.Repo
	treeHash plumbing.Hash // shared empty tree, reused by every commit
}

// NewRepo initializes a non-bare repository in a fresh temp directory.
func NewRepo(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "repo")

	g, err := gogit.PlainInit(path, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}

	wrapped := gitrepo.FromGoGit(g)

	r := &Repo{T: t, Path: path, Git: g, Wrapped: wrapped}
	r.treeHash = r.writeTree()
	return r
}

// writeTree stores a single empty tree object, reused by every commit this
// helper creates (file contents are irrelevant to the ref-reconciliation
// logic under test).
func (r *Repo) writeTree() plumbing.Hash {
	tree := &object.Tree{}
	obj := r.Git.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		r.T.Fatalf("encode tree: %v", err)
	}
	h, err := r.Git.Storer.SetEncodedObject(obj)
	if err != nil {
		r.T.Fatalf("store tree: %v", err)
	}
	return h
}

// Commit creates a commit object with the given parents and message,
// without touching a working tree or any ref.
func (r *Repo) Commit(msg string, parents ...plumbing.Hash) plumbing.Hash {
	r.T.Helper()
	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      msg,
		TreeHash:     r.treeHash,
		ParentHashes: parents,
	}
	obj := r.Git.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		r.T.Fatalf("encode commit: %v", err)
	}
	h, err := r.Git.Storer.SetEncodedObject(obj)
	if err != nil {
		r.T.Fatalf("store commit: %v", err)
	}
	return h
}

// SetRef force-sets name (fully qualified, e.g. "refs/heads/main") to id.
func (r *Repo) SetRef(name string, id plumbing.Hash) {
	r.T.Helper()
	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), id)
	if err := r.Git.Storer.SetReference(ref); err != nil {
		r.T.Fatalf("set ref %s: %v", name, err)
	}
}

// SetHEAD points HEAD symbolically at a local branch.
func (r *Repo) SetHEAD(branchRefName string) {
	r.T.Helper()
	ref := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.ReferenceName(branchRefName))
	if err := r.Git.Storer.SetReference(ref); err != nil {
		r.T.Fatalf("set HEAD: %v", err)
	}
}

// DeleteRef removes name if present.
func (r *Repo) DeleteRef(name string) {
	r.T.Helper()
	_ = r.Git.Storer.RemoveReference(plumbing.ReferenceName(name))
}

// Reference resolves name, fatally failing the test if it does not exist.
func (r *Repo) Reference(name string) plumbing.Hash {
	r.T.Helper()
	ref, err := r.Git.Reference(plumbing.ReferenceName(name), false)
	if err != nil {
		r.T.Fatalf("reference %s: %v", name, err)
	}
	return ref.Hash()
}

// HasRef reports whether name currently exists.
func (r *Repo) HasRef(name string) bool {
	_, err := r.Git.Reference(plumbing.ReferenceName(name), false)
	return err == nil
}
