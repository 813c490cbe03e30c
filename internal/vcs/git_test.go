package vcs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvasforge/doclint/internal/vcs"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func commitAll(t *testing.T, wt *git.Worktree, msg string) {
	t.Helper()
	require.NoError(t, wt.AddWithOptions(&git.AddOptions{All: true}))
	_, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "doclint", Email: "doclint@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestChangedFiles(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	write(t, dir, "README.md", "docs")
	write(t, dir, "app/project.json", "{}")
	write(t, dir, "app/components/home.json", `{"name": "home"}`)
	write(t, dir, "app/components/card.json", `{"name": "card"}`)
	commitAll(t, wt, "initial")

	write(t, dir, "app/components/card.json", `{"name": "card", "nodes": {}}`)
	commitAll(t, wt, "edit card")

	write(t, dir, "app/components/home.json", `{"name": "home", "nodes": {}}`)
	write(t, dir, "app/formulas/sum.json", `{}`)
	write(t, dir, "notes.txt", "outside the document")

	t.Run("worktree only", func(t *testing.T) {
		got, err := vcs.ChangedFiles(filepath.Join(dir, "app"), "HEAD")
		require.NoError(t, err)
		assert.Equal(t, []string{"components/home.json", "formulas/sum.json"}, got)
	})

	t.Run("commits and worktree", func(t *testing.T) {
		got, err := vcs.ChangedFiles(filepath.Join(dir, "app"), "HEAD~1")
		require.NoError(t, err)
		assert.Equal(t, []string{"components/card.json", "components/home.json", "formulas/sum.json"}, got)
	})

	t.Run("subdirectory", func(t *testing.T) {
		got, err := vcs.ChangedFiles(filepath.Join(dir, "app", "components"), "HEAD")
		require.NoError(t, err)
		assert.Equal(t, []string{"home.json"}, got)
	})

	t.Run("unknown revision", func(t *testing.T) {
		_, err := vcs.ChangedFiles(dir, "no-such-branch")
		assert.ErrorContains(t, err, "no-such-branch")
	})
}

func TestChangedFiles_NotRepository(t *testing.T) {
	_, err := vcs.ChangedFiles(t.TempDir(), "HEAD")
	assert.ErrorIs(t, err, vcs.ErrNotRepository)
}
