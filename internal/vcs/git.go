// Package vcs lists the files a git repository reports as changed, so lint
// runs can be narrowed to what a change touched.
package vcs

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotRepository is returned when no repository encloses the directory.
var ErrNotRepository = errors.New("vcs: not inside a git repository")

// ChangedFiles lists the files below dir that differ from revision rev:
// commits made since rev, staged and unstaged edits, and untracked files.
// Paths are slash separated, relative to dir and sorted.
func ChangedFiles(dir, rev string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}

	changed := make(map[string]bool)
	committed, err := committedChanges(repo, rev)
	if err != nil {
		return nil, err
	}
	for _, name := range committed {
		changed[name] = true
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("reading worktree status: %w", err)
	}
	for name, s := range status {
		if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
			changed[name] = true
		}
	}

	return relativeTo(wt.Filesystem.Root(), abs, changed), nil
}

// committedChanges returns the repository paths that differ between the
// trees of rev and HEAD.
func committedChanges(repo *git.Repository, rev string) ([]string, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", rev, err)
	}
	base, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("getting commit: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting commit: %w", err)
	}

	baseTree, err := base.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting base tree: %w", err)
	}
	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting head tree: %w", err)
	}
	changes, err := baseTree.Diff(headTree)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	var out []string
	for _, c := range changes {
		// Renames touch both names.
		for _, name := range []string{c.From.Name, c.To.Name} {
			if name != "" {
				out = append(out, name)
			}
		}
	}
	return out, nil
}

// relativeTo rebases repository paths onto dir and drops those outside it.
func relativeTo(root, dir string, changed map[string]bool) []string {
	root, dir = resolved(root), resolved(dir)
	out := make([]string, 0, len(changed))
	for name := range changed {
		rel, err := filepath.Rel(dir, filepath.Join(root, filepath.FromSlash(name)))
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		out = append(out, filepath.ToSlash(rel))
	}
	slices.Sort(out)
	return out
}

func resolved(p string) string {
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	return p
}
