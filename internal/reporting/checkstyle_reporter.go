package reporting

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/canvasforge/doclint/api/schemas"
)

// checkstyleVersion is the report schema version CI consumers expect.
const checkstyleVersion = "4.3"

// CheckstyleReporter buffers issues and writes a checkstyle XML report on
// Close. The document model has no line numbers, so errors carry the JSON
// pointer of the offending value in their message.
type CheckstyleReporter struct {
	mu     sync.Mutex
	writer io.WriteCloser
	logger *zap.Logger
	files  map[string][]schemas.Issue
}

// NewCheckstyleReporter creates a reporter writing checkstyle XML.
func NewCheckstyleReporter(writer io.WriteCloser, logger *zap.Logger) *CheckstyleReporter {
	return &CheckstyleReporter{
		writer: writer,
		logger: logger.Named("checkstyle_reporter"),
		files:  make(map[string][]schemas.Issue),
	}
}

// Write appends the issues of one document. Clean documents still get a
// <file> element.
func (r *CheckstyleReporter) Write(document string, issues []schemas.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[document] = append(r.files[document], issues...)
	return nil
}

// Close renders and writes the XML document.
func (r *CheckstyleReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.files))
	for name := range r.files {
		names = append(names, name)
	}
	sort.Strings(names)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("checkstyle")
	root.CreateAttr("version", checkstyleVersion)

	for _, name := range names {
		file := root.CreateElement("file")
		file.CreateAttr("name", name)
		for _, is := range r.files[name] {
			e := file.CreateElement("error")
			e.CreateAttr("severity", checkstyleSeverity(is.Level))
			e.CreateAttr("message", fmt.Sprintf("%s at %s", is.Code, pointerOf(is.Path)))
			e.CreateAttr("source", SanitizeRuleID(is.Code))
		}
	}
	doc.Indent(2)

	var err error
	if _, writeErr := doc.WriteTo(r.writer); writeErr != nil {
		r.logger.Error("Failed to write checkstyle report", zap.Error(writeErr))
		err = fmt.Errorf("failed to encode checkstyle output: %w", writeErr)
	}
	return closeWriter(r.writer, err)
}

func checkstyleSeverity(l schemas.Level) string {
	switch l {
	case schemas.LevelError:
		return "error"
	case schemas.LevelWarning:
		return "warning"
	default:
		return "info"
	}
}
