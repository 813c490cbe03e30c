package reporting

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/canvasforge/doclint/api/schemas"
)

// DocumentReport groups the issues of one document in JSON output.
type DocumentReport struct {
	Document string          `json:"document"`
	Issues   []schemas.Issue `json:"issues"`
}

// JSONReporter buffers issues and writes them as one JSON array on Close.
// Documents are sorted by name so concurrent runs produce stable output.
type JSONReporter struct {
	mu     sync.Mutex
	writer io.WriteCloser
	logger *zap.Logger
	docs   map[string]*DocumentReport
}

// NewJSONReporter creates a reporter writing JSON.
func NewJSONReporter(writer io.WriteCloser, logger *zap.Logger) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		logger: logger.Named("json_reporter"),
		docs:   make(map[string]*DocumentReport),
	}
}

// Write appends the issues of one document.
func (r *JSONReporter) Write(document string, issues []schemas.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.docs[document]
	if doc == nil {
		doc = &DocumentReport{Document: document, Issues: []schemas.Issue{}}
		r.docs[document] = doc
	}
	doc.Issues = append(doc.Issues, issues...)
	return nil
}

// Close encodes the buffered documents.
func (r *JSONReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*DocumentReport, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Document < out[j].Document })

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	var err error
	if encErr := encoder.Encode(out); encErr != nil {
		r.logger.Error("Failed to encode JSON report", zap.Error(encErr))
		err = fmt.Errorf("failed to encode JSON output: %w", encErr)
	}
	return closeWriter(r.writer, err)
}
