// Package observability owns the process logger of the doclint CLI.
//
// Commands initialize it once from configuration and hand it to the engine
// and reporters through their constructors. Nothing below cmd reads the
// global directly.
package observability

import (
	"fmt"
	"iter"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/canvasforge/doclint/internal/config"
)

var (
	globalLogger atomic.Pointer[zap.Logger]
	once         sync.Once
)

// palette maps configured color names to ANSI SGR foreground codes.
var palette = map[string]int{
	"black":   30,
	"red":     31,
	"green":   32,
	"yellow":  33,
	"blue":    34,
	"magenta": 35,
	"cyan":    36,
	"white":   37,
}

const ansiReset = "\x1b[0m"

func ansi(code int) string { return fmt.Sprintf("\x1b[%dm", code) }

// Initialize builds the global logger once. Console output goes to
// consoleWriter; a JSON copy goes to cfg.LogFile when it is set.
func Initialize(cfg config.LoggerConfig, consoleWriter zapcore.WriteSyncer) {
	once.Do(func() {
		level := zap.NewAtomicLevel()
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level.SetLevel(zap.InfoLevel)
		}

		cores := []zapcore.Core{zapcore.NewCore(newEncoder(cfg.Format, levelColors(cfg.Colors)), consoleWriter, level)}
		if cfg.LogFile != "" {
			rotating := &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
			cores = append(cores, zapcore.NewCore(newEncoder("json", nil), zapcore.AddSync(rotating), level))
		}

		opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
		if cfg.AddSource {
			opts = append(opts, zap.AddCaller())
		}

		logger := zap.New(zapcore.NewTee(cores...), opts...).Named(cfg.ServiceName)
		globalLogger.Store(logger)
		zap.ReplaceGlobals(logger)
	})
}

// InitializeLogger initializes the global logger on stderr. Stdout is kept
// free for reports and fixed documents.
func InitializeLogger(cfg config.LoggerConfig) {
	Initialize(cfg, zapcore.Lock(os.Stderr))
}

// ResetForTest clears the global logger. Tests only.
func ResetForTest() {
	globalLogger.Store(nil)
	once = sync.Once{}
}

// levelColors resolves the configured color names. Unknown names leave a
// level plain, and NO_COLOR turns coloring off entirely.
func levelColors(c config.ColorConfig) map[zapcore.Level]string {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return nil
	}
	named := map[zapcore.Level]string{
		zapcore.DebugLevel:  c.Debug,
		zapcore.InfoLevel:   c.Info,
		zapcore.WarnLevel:   c.Warn,
		zapcore.ErrorLevel:  c.Error,
		zapcore.DPanicLevel: c.DPanic,
		zapcore.PanicLevel:  c.Panic,
		zapcore.FatalLevel:  c.Fatal,
	}
	colors := make(map[zapcore.Level]string, len(named))
	for level, name := range named {
		if code, ok := palette[strings.ToLower(name)]; ok {
			colors[level] = ansi(code)
		}
	}
	return colors
}

// newEncoder returns a single-line console encoder for "console" and a JSON
// encoder for anything else.
func newEncoder(format string, colors map[zapcore.Level]string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")

	if format != "console" {
		ec.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(ec)
	}

	ec.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		s := level.CapitalString()
		if color, ok := colors[level]; ok {
			s = color + s + ansiReset
		}
		enc.AppendString(s)
	}
	ec.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(name + ".")
	}
	return zapcore.NewConsoleEncoder(ec)
}

// GetLogger returns the global logger, or a no-op logger before
// initialization so that library use stays silent.
func GetLogger() *zap.Logger {
	if logger := globalLogger.Load(); logger != nil {
		return logger
	}
	return zap.NewNop()
}

// ForDocument scopes logger to one document of a run.
func ForDocument(logger *zap.Logger, runID, document string) *zap.Logger {
	return logger.With(zap.String("run_id", runID), zap.String("document", document))
}

// syncNoise lists the errors fsync reports for terminals and pipes.
var syncNoise = []string{
	"sync /dev/std",
	"invalid argument",
	"inappropriate ioctl",
	"operation not supported",
}

// Sync flushes buffered entries, ignoring the errors terminals report.
func Sync() {
	logger := globalLogger.Load()
	if logger == nil {
		return
	}
	if err := logger.Sync(); err != nil && !isSyncNoise(err) {
		fmt.Fprintln(os.Stderr, "Error: failed to sync logger:", err)
	}
}

func isSyncNoise(err error) bool {
	for e := range unwrapAll(err) {
		for _, s := range syncNoise {
			if strings.Contains(e.Error(), s) {
				return true
			}
		}
	}
	return false
}

// unwrapAll yields err and, for joined errors such as a tee's Sync result,
// each of its parts.
func unwrapAll(err error) iter.Seq[error] {
	return func(yield func(error) bool) {
		if !yield(err) {
			return
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				if !yield(e) {
					return
				}
			}
		}
	}
}
