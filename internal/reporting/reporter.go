// -- internal/reporting/reporter.go --
package reporting

import (
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/lint"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Reporter writes lint issues to an output. Implementations are safe for
// concurrent use, since several documents may be linted at once.
type Reporter interface {
	// Write records the issues found in one document.
	Write(document string, issues []schemas.Issue) error
	// Close finalizes the report and closes the underlying writer.
	Close() error
}

// Options carry run metadata into the reporters that need it.
type Options struct {
	ToolVersion string
	RunID       string
	// Rules is the catalogue the run used; SARIF publishes it as rule
	// descriptors.
	Rules []*lint.Rule
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// NopCloser lets a reporter write to w without closing it.
func NopCloser(w io.Writer) io.WriteCloser {
	return &nopWriteCloser{w}
}

// New creates a reporter for format writing to outputPath. An empty path or
// "stdout" writes to standard output.
func New(format, outputPath string, logger *zap.Logger, opts Options) (Reporter, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	var writer io.WriteCloser
	if outputPath == "" || outputPath == "stdout" {
		writer = NopCloser(os.Stdout)
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}
	return NewForWriter(format, writer, logger, opts)
}

// NewForWriter creates a reporter for format on an already open writer. The
// reporter owns writer and closes it in Close.
func NewForWriter(format string, writer io.WriteCloser, logger *zap.Logger, opts Options) (Reporter, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	switch format {
	case "sarif":
		return NewSARIFReporter(writer, logger, opts), nil
	case "json":
		return NewJSONReporter(writer, logger), nil
	case "checkstyle":
		return NewCheckstyleReporter(writer, logger), nil
	default:
		return NewTextReporter(writer, logger), nil
	}
}

func checkFormat(format string) error {
	switch format {
	case "sarif", "json", "checkstyle", "text":
		return nil
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

// closeWriter closes w after encoding, preferring the encoding error.
func closeWriter(w io.Closer, encodeErr error) error {
	closeErr := w.Close()
	if encodeErr != nil {
		return encodeErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}
	return nil
}
