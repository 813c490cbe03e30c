// Package lint runs rules over a project document and turns their fixes into
// patches.
package lint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/walker"
)

var (
	// ErrUnknownRule is returned when a rule code is not registered.
	ErrUnknownRule = errors.New("lint: unknown rule")
	// ErrDuplicateRule is returned when two rules share a code.
	ErrDuplicateRule = errors.New("lint: duplicate rule code")
	// ErrIterationLimit is returned when FixProject does not settle.
	ErrIterationLimit = errors.New("lint: fix iteration limit exceeded")
	// ErrFixCycle is returned when FixProject revisits an earlier document.
	ErrFixCycle = errors.New("lint: fix cycle detected")
)

// Reporter records one problem at path. details is rule specific and is
// handed back to the rule's fix functions.
type Reporter func(path schemas.Path, details any, fixes ...schemas.FixType)

// FixArgs is the input of a fix function.
type FixArgs struct {
	Files   *schemas.ProjectFiles
	Path    schemas.Path
	Details any
}

// FixFunc returns a rewritten copy of the document, or nil when no safe
// rewrite exists for this occurrence. It must not modify args.Files.
type FixFunc func(args FixArgs) *schemas.ProjectFiles

// Rule is a detector over a project document. Visit must treat the document
// as read-only.
type Rule struct {
	Code        string
	Level       schemas.Level
	Category    schemas.Category
	Description string

	Visit func(report Reporter, ctx *walker.Context)
	Fixes map[schemas.FixType]FixFunc
}

// FixTypes returns the fix ids the rule offers, sorted.
func (r *Rule) FixTypes() []schemas.FixType {
	return schemas.SortedKeys(r.Fixes)
}

// -- Batching --

type batchMode int

const (
	batchPerFile batchMode = iota
	batchAll
	batchFixed
)

// BatchSize controls how FindProblems groups issues into respond calls.
type BatchSize struct {
	mode batchMode
	n    int
}

var (
	// BatchPerFile delivers one batch per file touched by each rule. It is
	// the zero value.
	BatchPerFile = BatchSize{mode: batchPerFile}
	// BatchAll delivers every issue in a single call at the end of the run.
	BatchAll = BatchSize{mode: batchAll}
)

// BatchOf slices each rule's issues into chunks of n. Non-positive sizes fall
// back to BatchPerFile.
func BatchOf(n int) BatchSize {
	if n <= 0 {
		return BatchPerFile
	}
	return BatchSize{mode: batchFixed, n: n}
}

// ParseBatchSize accepts "all", "per-file" or a positive integer.
func ParseBatchSize(s string) (BatchSize, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "per-file":
		return BatchPerFile, nil
	case "all":
		return BatchAll, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return BatchSize{}, fmt.Errorf("invalid batch size %q: want all, per-file or a positive integer", s)
	}
	return BatchOf(n), nil
}

func (b BatchSize) String() string {
	switch b.mode {
	case batchAll:
		return "all"
	case batchFixed:
		return strconv.Itoa(b.n)
	default:
		return "per-file"
	}
}

// Options select the rules and shape the delivery of a run.
type Options struct {
	// Levels and Rules filter the registered rules; empty means all.
	Levels []schemas.Level
	Rules  []string

	PathsToVisit []schemas.Path
	BatchSize    BatchSize

	// MaxDepth bounds formula and action nesting during traversal.
	MaxDepth int
	// MaxIterations caps FixProject. Zero uses DefaultMaxIterations.
	MaxIterations int
	// RunID tags log lines of the run. One is generated when empty.
	RunID string
}
