// File: internal/config/config.go
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Lint() LintConfig
	Fix() FixConfig
	Report() ReportConfig

	// Lint Setters
	SetLintLevels([]string)
	SetLintRules([]string)
	SetLintBatchSize(string)

	// Fix Setters
	SetFixMaxIterations(int)

	// Report Setters
	SetReportFormat(string)
	SetReportOutput(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg LoggerConfig `mapstructure:"logger" yaml:"logger"`
	LintCfg   LintConfig   `mapstructure:"lint" yaml:"lint"`
	FixCfg    FixConfig    `mapstructure:"fix" yaml:"fix"`
	ReportCfg ReportConfig `mapstructure:"report" yaml:"report"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig { return c.LoggerCfg }
func (c *Config) Lint() LintConfig     { return c.LintCfg }
func (c *Config) Fix() FixConfig       { return c.FixCfg }
func (c *Config) Report() ReportConfig { return c.ReportCfg }

// --- Interface Method Implementations (Setters) ---

// Lint Setters
func (c *Config) SetLintLevels(levels []string) { c.LintCfg.Levels = levels }
func (c *Config) SetLintRules(rules []string)   { c.LintCfg.Rules = rules }
func (c *Config) SetLintBatchSize(s string)     { c.LintCfg.BatchSize = s }

// Fix Setters
func (c *Config) SetFixMaxIterations(n int) { c.FixCfg.MaxIterations = n }

// Report Setters
func (c *Config) SetReportFormat(f string) { c.ReportCfg.Format = f }
func (c *Config) SetReportOutput(o string) { c.ReportCfg.Output = o }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// LintConfig holds the defaults of a lint run.
type LintConfig struct {
	// Levels and Rules filter the catalogue; empty means everything.
	Levels []string `mapstructure:"levels" yaml:"levels"`
	Rules  []string `mapstructure:"rules" yaml:"rules"`
	// BatchSize is "all", "per-file" or a positive integer.
	BatchSize       string `mapstructure:"batch_size" yaml:"batch_size"`
	MaxFormulaDepth int    `mapstructure:"max_formula_depth" yaml:"max_formula_depth"`
	// Concurrency bounds how many documents are linted at once.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// FixConfig holds the settings of the fix loop.
type FixConfig struct {
	MaxIterations int `mapstructure:"max_iterations" yaml:"max_iterations"`
}

// ReportConfig selects how lint results are written.
type ReportConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// NewDefaultConfig creates a configuration populated with the defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "doclint")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Lint --
	v.SetDefault("lint.levels", []string{})
	v.SetDefault("lint.rules", []string{})
	v.SetDefault("lint.batch_size", "per-file")
	v.SetDefault("lint.max_formula_depth", 256)
	v.SetDefault("lint.concurrency", 4)

	// -- Fix --
	v.SetDefault("fix.max_iterations", 50)

	// -- Report --
	v.SetDefault("report.format", "text")
	v.SetDefault("report.output", "")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if err := c.LintCfg.Validate(); err != nil {
		return fmt.Errorf("lint configuration invalid: %w", err)
	}
	if c.FixCfg.MaxIterations <= 0 {
		return fmt.Errorf("fix.max_iterations must be a positive integer")
	}
	switch c.ReportCfg.Format {
	case "text", "json", "sarif", "checkstyle":
	default:
		return fmt.Errorf("report.format must be one of text, json, sarif or checkstyle, got %q", c.ReportCfg.Format)
	}
	return nil
}

// Validate checks the LintConfig settings.
func (l *LintConfig) Validate() error {
	for _, level := range l.Levels {
		switch level {
		case "error", "warning", "info":
		default:
			return fmt.Errorf("unknown level %q", level)
		}
	}
	switch bs := strings.TrimSpace(l.BatchSize); bs {
	case "", "all", "per-file":
	default:
		if n, err := strconv.Atoi(bs); err != nil || n <= 0 {
			return fmt.Errorf("batch_size must be all, per-file or a positive integer, got %q", l.BatchSize)
		}
	}
	if l.MaxFormulaDepth <= 0 {
		return fmt.Errorf("max_formula_depth must be a positive integer")
	}
	if l.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be a positive integer")
	}
	return nil
}
