package lint

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/jsonpatch"
	"github.com/canvasforge/doclint/internal/project"
	"github.com/canvasforge/doclint/internal/walker"
)

// DefaultMaxIterations caps FixProject when Options.MaxIterations is unset.
const DefaultMaxIterations = 50

// Engine holds the registered rules. Calls on one Engine may run
// concurrently; each call owns its memo.
type Engine struct {
	logger  *zap.Logger
	patcher jsonpatch.Service
	rules   []*Rule
	byCode  map[string]*Rule
}

// NewEngine registers rules in order. Rule order is the order in which
// FindProblems runs them.
func NewEngine(logger *zap.Logger, patcher jsonpatch.Service, rules ...*Rule) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if patcher == nil {
		patcher = jsonpatch.NewService(logger)
	}
	e := &Engine{
		logger:  logger.Named("lint"),
		patcher: patcher,
		byCode:  make(map[string]*Rule, len(rules)),
	}
	for _, r := range rules {
		if _, exists := e.byCode[r.Code]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRule, r.Code)
		}
		e.byCode[r.Code] = r
		e.rules = append(e.rules, r)
	}
	return e, nil
}

// Rules returns the registered rules in registration order.
func (e *Engine) Rules() []*Rule {
	return slices.Clone(e.rules)
}

// Rule looks up a rule by code.
func (e *Engine) Rule(code string) (*Rule, bool) {
	r, ok := e.byCode[code]
	return r, ok
}

// selectRules applies the level and code filters of opts.
func (e *Engine) selectRules(opts Options) ([]*Rule, error) {
	for _, code := range opts.Rules {
		if _, ok := e.byCode[code]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, code)
		}
	}
	var out []*Rule
	for _, r := range e.rules {
		if len(opts.Levels) > 0 && !slices.Contains(opts.Levels, r.Level) {
			continue
		}
		if len(opts.Rules) > 0 && !slices.Contains(opts.Rules, r.Code) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func newWalkContext(files *schemas.ProjectFiles, memo *walker.Memo, opts Options) *walker.Context {
	return &walker.Context{
		Files:            files,
		Memo:             memo,
		PathsToVisit:     opts.PathsToVisit,
		IncludeAncestors: len(opts.PathsToVisit) > 0,
		MaxDepth:         opts.MaxDepth,
	}
}

// collect runs one rule and returns its issues in walk order. Rules see the
// values enclosing a path filter, so issues are filtered on their own path.
func collect(r *Rule, ctx *walker.Context) []schemas.Issue {
	var issues []schemas.Issue
	if r.Visit == nil {
		return nil
	}
	r.Visit(func(path schemas.Path, details any, fixes ...schemas.FixType) {
		if !ctx.InScope(path) {
			return
		}
		issues = append(issues, schemas.Issue{
			Code:     r.Code,
			Level:    r.Level,
			Category: r.Category,
			Path:     path,
			Details:  details,
			Fixes:    fixes,
		})
	}, ctx)
	return issues
}

// FindProblems runs the selected rules in registration order and hands
// their issues to respond, grouped by opts.BatchSize. Batches never mix the
// issues of two rules except in BatchAll mode.
//
// Cancellation is observed between respond calls. An error from respond
// stops the run and is returned as is.
func (e *Engine) FindProblems(ctx context.Context, files *schemas.ProjectFiles, opts Options, respond func([]schemas.Issue) error) error {
	rules, err := e.selectRules(opts)
	if err != nil {
		return err
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	logger := e.logger.With(zap.String("run_id", runID))
	logger.Info("Starting analysis", zap.Int("rules", len(rules)), zap.Stringer("batch_size", opts.BatchSize))
	start := time.Now()

	memo := walker.NewMemo()
	wctx := newWalkContext(files, memo, opts)

	deliver := func(batch []schemas.Issue) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return respond(batch)
	}

	var all []schemas.Issue
	total := 0
	for _, r := range rules {
		if err := ctx.Err(); err != nil {
			return err
		}
		ruleStart := time.Now()
		issues := collect(r, wctx)
		total += len(issues)
		logger.Debug("Rule finished",
			zap.String("rule", r.Code),
			zap.Int("issues", len(issues)),
			zap.Duration("duration", time.Since(ruleStart)))

		switch opts.BatchSize.mode {
		case batchAll:
			all = append(all, issues...)
		case batchFixed:
			for chunk := range slices.Chunk(issues, opts.BatchSize.n) {
				if err := deliver(chunk); err != nil {
					return err
				}
			}
		default:
			for _, group := range groupByFile(issues) {
				if err := deliver(group); err != nil {
					return err
				}
			}
		}
	}

	if opts.BatchSize.mode == batchAll {
		if err := deliver(all); err != nil {
			return err
		}
	}

	logger.Info("Analysis complete",
		zap.Int("issues", total),
		zap.Int("memo_entries", memo.Len()),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// groupByFile splits issues by their file key, keeping the order in which
// each file was first seen.
func groupByFile(issues []schemas.Issue) [][]schemas.Issue {
	var order []string
	groups := make(map[string][]schemas.Issue)
	for _, is := range issues {
		key := is.GroupKey()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], is)
	}
	out := make([][]schemas.Issue, 0, len(order))
	for _, key := range order {
		out = append(out, groups[key])
	}
	return out
}

// FixProblems runs one rule and turns every fix of type fixType into patches
// against files. The full patch list is delivered once; a rule without that
// fix delivers an empty list.
//
// Fixes are diffed independently against files. A fix whose patches touch a
// location already claimed by an earlier fix is left for the next pass, so
// the delivered list always applies cleanly in order.
func (e *Engine) FixProblems(ctx context.Context, files *schemas.ProjectFiles, opts Options, code string, fixType schemas.FixType, respond func([]schemas.FixPatch) error) error {
	r, ok := e.byCode[code]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRule, code)
	}
	fix := r.Fixes[fixType]
	if fix == nil {
		return respond(nil)
	}

	var (
		patches []schemas.FixPatch
		claimed []string
		skipped int
	)
	for _, is := range collect(r, newWalkContext(files, walker.NewMemo(), opts)) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !slices.Contains(is.Fixes, fixType) {
			continue
		}
		fixed := fix(FixArgs{Files: files, Path: is.Path, Details: is.Details})
		if fixed == nil {
			continue
		}
		diff, err := e.patcher.DiffFiles(files, fixed)
		if err != nil {
			return fmt.Errorf("diffing fix %s/%s at %s: %w", code, fixType, is.Path, err)
		}
		touched := touchedPointers(diff)
		if overlaps(claimed, touched) {
			skipped++
			continue
		}
		claimed = append(claimed, touched...)
		patches = append(patches, diff...)
	}

	e.logger.Debug("Computed fixes",
		zap.String("rule", code),
		zap.String("fix", string(fixType)),
		zap.Int("patches", len(patches)),
		zap.Int("deferred", skipped))
	return respond(patches)
}

func touchedPointers(patches []schemas.FixPatch) []string {
	out := make([]string, 0, len(patches))
	for _, p := range patches {
		out = append(out, p.Path)
		if p.From != "" {
			out = append(out, p.From)
		}
	}
	return out
}

func overlaps(claimed, touched []string) bool {
	for _, a := range claimed {
		for _, b := range touched {
			if related(a, b) {
				return true
			}
		}
	}
	return false
}

// related reports whether one pointer is equal to or nested in the other.
func related(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

// FixProject applies fixType of rule code until a pass produces no patches
// and returns the resulting document. files itself is not modified.
//
// The loop stops with ErrIterationLimit after opts.MaxIterations passes and
// with ErrFixCycle when a pass reproduces an earlier document.
func (e *Engine) FixProject(ctx context.Context, files *schemas.ProjectFiles, code string, fixType schemas.FixType, opts Options) (*schemas.ProjectFiles, error) {
	limit := opts.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxIterations
	}

	fp, err := project.Fingerprint(files)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{fp: true}
	current := files

	for i := 0; i < limit; i++ {
		var patches []schemas.FixPatch
		err := e.FixProblems(ctx, current, opts, code, fixType, func(p []schemas.FixPatch) error {
			patches = p
			return nil
		})
		if err != nil {
			return nil, err
		}
		if len(patches) == 0 {
			e.logger.Info("Fix reached a fixed point",
				zap.String("rule", code),
				zap.String("fix", string(fixType)),
				zap.Int("iterations", i))
			return current, nil
		}

		next, err := e.patcher.ApplyFiles(current, patches)
		if err != nil {
			return nil, fmt.Errorf("applying fixes of %s/%s: %w", code, fixType, err)
		}
		fp, err := project.Fingerprint(next)
		if err != nil {
			return nil, err
		}
		if seen[fp] {
			return nil, fmt.Errorf("%w: %s/%s after %d iterations", ErrFixCycle, code, fixType, i+1)
		}
		seen[fp] = true
		current = next
		e.logger.Debug("Fix iteration applied", zap.Int("iteration", i+1), zap.Int("patches", len(patches)))
	}
	return nil, fmt.Errorf("%w: %s/%s did not settle within %d iterations", ErrIterationLimit, code, fixType, limit)
}
