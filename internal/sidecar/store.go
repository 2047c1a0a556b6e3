// Package sidecar persists the last-seen-refs state: a snapshot of Git's
// local-branch refs as last observed by gitbridge, used as the merge base
// for the import engine's three-way merges (spec.md §4.2).
//
// The file lives at <repoPath>/git_last_seen_refs and is protected by an
// exclusive OS file lock at <repoPath>/git_refs.lock, held for the
// duration of a read-modify-write cycle.
package sidecar

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/jjvcs/gitbridge/internal/repo"
)

const fileFormatVersion = 1

// GitRefView is the sidecar's in-memory shape: fully-qualified local-branch
// ref name to the commit id last observed there.
type GitRefView map[string]repo.CommitID

// Store manages the sidecar file and its lock for a single repository.
type Store struct {
	repoPath string
}

// New returns a Store for the sidecar under repoPath.
func New(repoPath string) *Store {
	return &Store{repoPath: repoPath}
}

func (s *Store) sidecarFile() string {
	return filepath.Join(s.repoPath, "git_last_seen_refs")
}

func (s *Store) lockFile() string {
	return filepath.Join(s.repoPath, "git_refs.lock")
}

// With acquires the sidecar's exclusive file lock, reads the current
// GitRefView (nil if the file is absent or corrupt — corruption is treated
// as absence, triggering the bootstrap path described in spec.md §4.2),
// invokes fn, and — only if fn succeeds — atomically rewrites the sidecar
// with fn's returned view before releasing the lock. If fn returns an
// error, the sidecar is left untouched.
func With[T any](repoPath string, fn func(current GitRefView) (GitRefView, T, error)) (T, error) {
	var zero T

	s := New(repoPath)
	if err := os.MkdirAll(repoPath, 0o755); err != nil {
		return zero, fmt.Errorf("sidecar: create repo dir: %w", err)
	}

	lock := flock.New(s.lockFile())
	if err := lock.Lock(); err != nil {
		return zero, fmt.Errorf("sidecar: acquire lock: %w", err)
	}
	defer lock.Unlock()

	current, err := s.read()
	if err != nil {
		return zero, fmt.Errorf("sidecar: read: %w", err)
	}

	newView, result, fnErr := fn(current)
	if fnErr != nil {
		return result, fnErr
	}

	if err := s.writeAtomic(newView); err != nil {
		return zero, fmt.Errorf("sidecar: write: %w", err)
	}

	return result, nil
}

// onDiskFormat is the self-describing envelope written to the sidecar
// file: a version tag lets a future format change, or any truncation, be
// recognized as corruption rather than silently misparsed.
type onDiskFormat struct {
	Version int               `yaml:"version"`
	Refs    map[string]string `yaml:"refs"`
}

// read loads the sidecar file. A missing or corrupt file is treated as
// absent (nil, nil) per spec.md §4.2 — a deliberate trade-off favoring
// misrecovery over hard failure.
func (s *Store) read() (GitRefView, error) {
	data, err := os.ReadFile(s.sidecarFile())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, nil //nolint:nilerr // unreadable sidecar is treated as absent, not fatal
	}

	var onDisk onDiskFormat
	if err := yaml.Unmarshal(data, &onDisk); err != nil {
		return nil, nil //nolint:nilerr // corrupt sidecar is treated as absent
	}
	if onDisk.Version != fileFormatVersion {
		return nil, nil
	}

	view := make(GitRefView, len(onDisk.Refs))
	for name, hexID := range onDisk.Refs {
		id, err := repo.ParseCommitID(hexID)
		if err != nil {
			return nil, nil //nolint:nilerr // corrupt entry, treat whole file as absent
		}
		view[name] = id
	}
	return view, nil
}

// writeAtomic serializes view and replaces the sidecar file via
// write-temp-then-rename, so a crash mid-write never leaves a partially
// written file for the next invocation to misread.
func (s *Store) writeAtomic(view GitRefView) error {
	onDisk := onDiskFormat{
		Version: fileFormatVersion,
		Refs:    make(map[string]string, len(view)),
	}
	for name, id := range view {
		onDisk.Refs[name] = id.String()
	}

	data, err := yaml.Marshal(&onDisk)
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}

	dir := filepath.Dir(s.sidecarFile())
	tmp, err := os.CreateTemp(dir, ".git_last_seen_refs-*")
	if err != nil {
		return fmt.Errorf("create temp sidecar: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp sidecar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp sidecar: %w", err)
	}

	if err := os.Rename(tmpName, s.sidecarFile()); err != nil {
		return fmt.Errorf("rename temp sidecar: %w", err)
	}
	return nil
}
