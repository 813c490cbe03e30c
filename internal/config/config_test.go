// File: internal/config/config_test.go
package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	// Verify a few key defaults to ensure the mechanism works.
	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "doclint", cfg.Logger().ServiceName)
	assert.Equal(t, "per-file", cfg.Lint().BatchSize)
	assert.Equal(t, 256, cfg.Lint().MaxFormulaDepth)
	assert.Equal(t, 4, cfg.Lint().Concurrency)
	assert.Empty(t, cfg.Lint().Levels)
	assert.Equal(t, 50, cfg.Fix().MaxIterations)
	assert.Equal(t, "text", cfg.Report().Format)
	assert.NoError(t, cfg.Validate(), "defaults must always validate")
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("Core Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()
		require.NoError(t, cfg.Validate())

		invalidIterations := *cfg
		invalidIterations.FixCfg.MaxIterations = 0
		err := invalidIterations.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fix.max_iterations must be a positive integer")

		invalidFormat := *cfg
		invalidFormat.ReportCfg.Format = "xml"
		err = invalidFormat.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "report.format")
	})

	t.Run("Lint Validation", func(t *testing.T) {
		valid := LintConfig{Levels: []string{"error", "info"}, BatchSize: "25", MaxFormulaDepth: 10, Concurrency: 1}
		assert.NoError(t, valid.Validate())

		badLevel := valid
		badLevel.Levels = []string{"fatal"}
		err := badLevel.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown level "fatal"`)

		for _, bs := range []string{"0", "-3", "some"} {
			badBatch := valid
			badBatch.BatchSize = bs
			assert.Error(t, badBatch.Validate(), "batch size %q should be rejected", bs)
		}

		badDepth := valid
		badDepth.MaxFormulaDepth = 0
		assert.ErrorContains(t, badDepth.Validate(), "max_formula_depth")

		badConcurrency := valid
		badConcurrency.Concurrency = -1
		assert.ErrorContains(t, badConcurrency.Validate(), "concurrency must be a positive integer")
	})
}

// -- Setter Tests --

func TestConfigSetters(t *testing.T) {
	var cfg Interface = NewDefaultConfig()

	cfg.SetLintLevels([]string{"error"})
	cfg.SetLintRules([]string{"unknown variable"})
	cfg.SetLintBatchSize("all")
	cfg.SetFixMaxIterations(3)
	cfg.SetReportFormat("sarif")
	cfg.SetReportOutput("out.sarif")

	assert.Equal(t, []string{"error"}, cfg.Lint().Levels)
	assert.Equal(t, []string{"unknown variable"}, cfg.Lint().Rules)
	assert.Equal(t, "all", cfg.Lint().BatchSize)
	assert.Equal(t, 3, cfg.Fix().MaxIterations)
	assert.Equal(t, "sarif", cfg.Report().Format)
	assert.Equal(t, "out.sarif", cfg.Report().Output)
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
lint:
  levels: [error, warning]
  batch_size: all
fix:
  max_iterations: 7
report:
  format: sarif
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, []string{"error", "warning"}, cfg.Lint().Levels)
		assert.Equal(t, "all", cfg.Lint().BatchSize)
		assert.Equal(t, 7, cfg.Fix().MaxIterations)
		assert.Equal(t, "sarif", cfg.Report().Format)
		// Check a default value was also loaded
		assert.Equal(t, "info", cfg.Logger().Level)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("lint.concurrency", 0) // Intentionally invalid

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "concurrency must be a positive integer")
	})

	t.Run("Environment Variable Override", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetEnvPrefix("DOCLINT")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString("fix:\n  max_iterations: 5\n")))

		t.Setenv("DOCLINT_FIX_MAX_ITERATIONS", "9")
		t.Setenv("DOCLINT_LOGGER_LEVEL", "debug")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.Fix().MaxIterations, "env must override the config file")
		assert.Equal(t, "debug", cfg.Logger().Level)
	})
}

// -- Struct and Mapping Tests --

func TestConfigStructureMapping(t *testing.T) {
	yamlInput := `
logger:
  level: debug
  log_file: /var/log/doclint.log
  colors:
    info: blue
lint:
  rules: ["no reference variable"]
  max_formula_depth: 64
`
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yamlInput)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "debug", cfg.Logger().Level)
	assert.Equal(t, "/var/log/doclint.log", cfg.Logger().LogFile)
	assert.Equal(t, "blue", cfg.Logger().Colors.Info)
	assert.Equal(t, "red", cfg.Logger().Colors.Error)
	assert.Equal(t, []string{"no reference variable"}, cfg.Lint().Rules)
	assert.Equal(t, 64, cfg.Lint().MaxFormulaDepth)
}
