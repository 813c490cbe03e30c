package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/canvasforge/doclint/internal/config"
)

// -- Test Helper Functions --

// syncBuffer is a goroutine safe WriteSyncer over a bytes.Buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) Sync() error { return nil }

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

var _ zapcore.WriteSyncer = (*syncBuffer)(nil)

// -- Test Cases --

func TestInitialize(t *testing.T) {
	t.Run("should initialize console logger with colors", func(t *testing.T) {
		ResetForTest()
		out := &syncBuffer{}

		cfg := config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
			Colors:      config.ColorConfig{Info: "green"},
		}
		Initialize(cfg, out)
		GetLogger().Info("This is a test message.")
		Sync()

		output := out.String()
		assert.Contains(t, output, "INFO")
		assert.Contains(t, output, "This is a test message.")
		assert.Contains(t, output, "\x1b[32m", "Info level should be colorized green")
		assert.Contains(t, output, ansiReset)
		assert.Contains(t, output, "TestService.")
	})

	t.Run("should honor NO_COLOR", func(t *testing.T) {
		ResetForTest()
		t.Setenv("NO_COLOR", "1")
		out := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "info", Format: "console", Colors: config.ColorConfig{Info: "green"}}, out)
		GetLogger().Info("plain")
		Sync()
		assert.Contains(t, out.String(), "INFO")
		assert.NotContains(t, out.String(), "\x1b[")
	})

	t.Run("should initialize json logger", func(t *testing.T) {
		ResetForTest()
		out := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "JSONTest"}, out)
		GetLogger().Warn("This is a JSON message.", zap.String("key", "value"))
		Sync()

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(out.String()), &entry), "Log output should be valid JSON")
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "This is a JSON message.", entry["msg"])
		assert.Equal(t, "value", entry["key"])
	})

	t.Run("should respect the configured level", func(t *testing.T) {
		ResetForTest()
		out := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "warn", Format: "json"}, out)
		GetLogger().Info("hidden")
		Sync()
		assert.Empty(t, out.String())
	})

	t.Run("should write to a log file if configured", func(t *testing.T) {
		ResetForTest()
		logFile := filepath.Join(t.TempDir(), "doclint.log")

		cfg := config.LoggerConfig{Level: "debug", Format: "json", LogFile: logFile, MaxSize: 1}
		Initialize(cfg, &syncBuffer{})
		GetLogger().Error("This should go to the file.")
		Sync()

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "This should go to the file.")
	})

	t.Run("should only initialize once", func(t *testing.T) {
		ResetForTest()
		out := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "info", ServiceName: "First"}, out)
		logger1 := GetLogger()
		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, out)
		logger2 := GetLogger()

		assert.Same(t, logger1, logger2)
		logger2.Info("test")
		Sync()

		assert.Contains(t, out.String(), "First")
		assert.NotContains(t, out.String(), "Second")
	})
}

func TestLevelColors(t *testing.T) {
	colors := levelColors(config.ColorConfig{Debug: "Cyan", Warn: "yellow", Error: "crimson"})
	assert.Equal(t, map[zapcore.Level]string{
		zapcore.DebugLevel: "\x1b[36m",
		zapcore.WarnLevel:  "\x1b[33m",
	}, colors, "names are case insensitive and unknown names are dropped")
}

func TestForDocument(t *testing.T) {
	ResetForTest()
	out := &syncBuffer{}
	Initialize(config.LoggerConfig{Level: "debug", Format: "json"}, out)

	ForDocument(GetLogger(), "run-1", "app.json").Debug("linting")
	Sync()

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.String()), &entry))
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "app.json", entry["document"])
}

func TestIsSyncNoise(t *testing.T) {
	assert.True(t, isSyncNoise(errors.New("sync /dev/stderr: invalid argument")))
	assert.True(t, isSyncNoise(errors.Join(errors.New("disk full"), errors.New("inappropriate ioctl for device"))))
	assert.False(t, isSyncNoise(errors.New("disk full")))
}

func TestGetLogger(t *testing.T) {
	t.Run("should return a no-op logger if not initialized", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
		assert.False(t, logger.Core().Enabled(zap.ErrorLevel))
	})

	t.Run("should return the global logger after initialization", func(t *testing.T) {
		ResetForTest()
		Initialize(config.LoggerConfig{Level: "info", ServiceName: "GlobalTest"}, &syncBuffer{})
		assert.Same(t, globalLogger.Load(), GetLogger())
	})
}
