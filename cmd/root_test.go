// File: cmd/root_test.go
package cmd

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvasforge/doclint/internal/config"
)

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "doclint version "+Version)
}

func TestRootCmd_NoArgs(t *testing.T) {
	out, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, out, "doclint finds and fixes problems")
	assert.Contains(t, out, "lint")
	assert.Contains(t, out, "fix")
}

func TestInitializeConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "doclint.yaml", `
lint:
  batch_size: all
  concurrency: 2
report:
  format: json
`)
	t.Setenv("DOCLINT_LINT_CONCURRENCY", "7")

	cmd := newLintCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--format", "sarif"}))

	v := viper.New()
	config.SetDefaults(v)
	require.NoError(t, initializeConfig(cmd, v, cfgFile))
	cfg, err := config.NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "all", cfg.Lint().BatchSize, "config file beats defaults")
	assert.Equal(t, 7, cfg.Lint().Concurrency, "environment beats config file")
	assert.Equal(t, "sarif", cfg.Report().Format, "flags beat everything")
	assert.Equal(t, 50, cfg.Fix().MaxIterations, "defaults fill the rest")
}

func TestInitializeConfig_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	err := initializeConfig(&cobra.Command{}, v, "/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestGetConfigFromContext(t *testing.T) {
	_, err := getConfigFromContext(context.Background())
	assert.Error(t, err)

	cfg := config.NewDefaultConfig()
	got, err := getConfigFromContext(context.WithValue(context.Background(), configKey, config.Interface(cfg)))
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	cfgFile := writeFile(t, t.TempDir(), "bad.yaml", "report:\n  format: xml\n")
	_, err := executeCommand(t, "--config", cfgFile, "rules")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report.format")
}
