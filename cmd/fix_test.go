package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/config"
	"github.com/canvasforge/doclint/internal/lint"
	"github.com/canvasforge/doclint/internal/project"
)

func TestFixCmd_RequiredFlags(t *testing.T) {
	_, err := executeCommand(t, "fix", "app.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "fix", "rule" not set`)
}

func TestFixCmd_InPlace(t *testing.T) {
	doc := writeFile(t, t.TempDir(), "app.json", fixtureProject)

	_, err := executeCommand(t, "fix", "--rule", "no reference variable", "--fix", "delete-variable", doc)
	require.NoError(t, err)

	files, err := project.Load(doc)
	require.NoError(t, err)
	home := files.Components["home"]
	require.NotNil(t, home)
	assert.Empty(t, home.Variables)
	assert.Len(t, home.Nodes, 2, "unrelated parts of the document are kept")
}

func TestFixCmd_OutputFile(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "app.json", fixtureProject)
	out := filepath.Join(dir, "fixed", "app.yaml")

	_, err := executeCommand(t, "fix", "--rule", "no reference variable", "--fix", "delete-variable", "-o", out, doc)
	require.NoError(t, err)

	original, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Equal(t, fixtureProject, string(original), "input is untouched when --output is set")

	fixed, err := project.Load(out)
	require.NoError(t, err)
	assert.Empty(t, fixed.Components["home"].Variables)
}

func TestFixCmd_Stdout(t *testing.T) {
	doc := writeFile(t, t.TempDir(), "app.json", fixtureProject)

	out, err := executeCommand(t, "fix", "--rule", "no reference variable", "--fix", "delete-variable", "-o", "-", doc)
	require.NoError(t, err)

	var files schemas.ProjectFiles
	require.NoError(t, project.Decode([]byte(out), project.FormatJSON, &files))
	assert.Empty(t, files.Components["home"].Variables)
}

func TestRunFix_Validation(t *testing.T) {
	doc := writeFile(t, t.TempDir(), "app.json", fixtureProject)
	cfg := config.NewDefaultConfig()
	logger := zaptest.NewLogger(t)

	err := runFix(context.Background(), logger, cfg, fixRequest{Document: doc, Rule: "nope", Fix: "x"}, new(discard))
	assert.ErrorIs(t, err, lint.ErrUnknownRule)

	err = runFix(context.Background(), logger, cfg, fixRequest{Document: doc, Rule: "unknown variable", Fix: "delete-variable"}, new(discard))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no fix")
}

func TestFixOutput(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "app.json", "{}")

	got, err := fixOutput(fixRequest{Document: doc})
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	got, err = fixOutput(fixRequest{Document: doc, Output: "-"})
	require.NoError(t, err)
	assert.Equal(t, "-", got)

	_, err = fixOutput(fixRequest{Document: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output is required")
}
