package reporting

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/canvasforge/doclint/api/schemas"
)

// TextReporter prints one line per issue followed by a summary.
type TextReporter struct {
	mu     sync.Mutex
	writer io.WriteCloser
	out    *bufio.Writer
	logger *zap.Logger
	counts map[schemas.Level]int
}

// NewTextReporter creates a reporter writing human readable lines.
func NewTextReporter(writer io.WriteCloser, logger *zap.Logger) *TextReporter {
	return &TextReporter{
		writer: writer,
		out:    bufio.NewWriter(writer),
		logger: logger.Named("text_reporter"),
		counts: make(map[schemas.Level]int),
	}
}

// Write prints the issues of one document.
func (r *TextReporter) Write(document string, issues []schemas.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, is := range issues {
		r.counts[is.Level]++
		line := fmt.Sprintf("%s: %-7s %s [%s]", document, is.Level, pointerOf(is.Path), is.Code)
		if len(is.Fixes) > 0 {
			line += fmt.Sprintf(" fixes: %v", is.Fixes)
		}
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return err
		}
	}
	return nil
}

// Close prints the summary and flushes.
func (r *TextReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, n := range r.counts {
		total += n
	}
	_, err := fmt.Fprintf(r.out, "%d problems (%d errors, %d warnings, %d info)\n",
		total, r.counts[schemas.LevelError], r.counts[schemas.LevelWarning], r.counts[schemas.LevelInfo])
	if err == nil {
		err = r.out.Flush()
	}
	r.logger.Debug("Text report written", zap.Int("issues", total))
	return closeWriter(r.writer, err)
}

// pointerOf renders "/" for the document root.
func pointerOf(p schemas.Path) string {
	if len(p) == 0 {
		return "/"
	}
	return p.Pointer()
}
