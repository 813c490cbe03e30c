package lint_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/jsonpatch"
	"github.com/canvasforge/doclint/internal/lint"
	"github.com/canvasforge/doclint/internal/walker"
)

// twoComponents has variables in components "a" and "b".
func twoComponents() *schemas.ProjectFiles {
	return &schemas.ProjectFiles{Components: map[string]*schemas.Component{
		"a": {Name: "a", Variables: map[string]*schemas.ComponentVariable{"x": {}, "y": {}}},
		"b": {Name: "b", Variables: map[string]*schemas.ComponentVariable{"z": {}}},
	}}
}

// variableRule reports every variable and can delete it.
func variableRule(code string, level schemas.Level) *lint.Rule {
	return &lint.Rule{
		Code:     code,
		Level:    level,
		Category: schemas.CategoryNoReferences,
		Visit: func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindVariable) {
				report(n.Path, n.Name(), "delete")
			}
		},
		Fixes: map[schemas.FixType]lint.FixFunc{
			"delete": func(args lint.FixArgs) *schemas.ProjectFiles {
				out, err := jsonpatch.Omit(args.Files, args.Path)
				if err != nil {
					return nil
				}
				return out
			},
		},
	}
}

func newEngine(t *testing.T, rules ...*lint.Rule) *lint.Engine {
	t.Helper()
	e, err := lint.NewEngine(zaptest.NewLogger(t), nil, rules...)
	require.NoError(t, err)
	return e
}

func findAll(t *testing.T, e *lint.Engine, files *schemas.ProjectFiles, opts lint.Options) [][]schemas.Issue {
	t.Helper()
	var batches [][]schemas.Issue
	err := e.FindProblems(context.Background(), files, opts, func(issues []schemas.Issue) error {
		batches = append(batches, issues)
		return nil
	})
	require.NoError(t, err)
	return batches
}

func TestNewEngine_DuplicateCodes(t *testing.T) {
	_, err := lint.NewEngine(nil, nil, variableRule("r", schemas.LevelInfo), variableRule("r", schemas.LevelError))
	assert.ErrorIs(t, err, lint.ErrDuplicateRule)
}

func TestFindProblems_Batching(t *testing.T) {
	e := newEngine(t, variableRule("first", schemas.LevelWarning), variableRule("second", schemas.LevelWarning))

	t.Run("per-file groups each rule by component", func(t *testing.T) {
		batches := findAll(t, e, twoComponents(), lint.Options{})
		require.Len(t, batches, 4)
		assert.Len(t, batches[0], 2)
		assert.Equal(t, "first", batches[0][0].Code)
		assert.Equal(t, "a", batches[0][0].Path[1])
		assert.Len(t, batches[1], 1)
		assert.Equal(t, "b", batches[1][0].Path[1])
		assert.Equal(t, "second", batches[2][0].Code, "batches never mix rules")
	})

	t.Run("all delivers once", func(t *testing.T) {
		batches := findAll(t, e, twoComponents(), lint.Options{BatchSize: lint.BatchAll})
		require.Len(t, batches, 1)
		assert.Len(t, batches[0], 6)
	})

	t.Run("fixed size chunks per rule", func(t *testing.T) {
		batches := findAll(t, e, twoComponents(), lint.Options{BatchSize: lint.BatchOf(2)})
		require.Len(t, batches, 4)
		assert.Len(t, batches[0], 2)
		assert.Len(t, batches[1], 1)
	})

	t.Run("all with no issues still responds", func(t *testing.T) {
		batches := findAll(t, e, &schemas.ProjectFiles{}, lint.Options{BatchSize: lint.BatchAll})
		require.Len(t, batches, 1)
		assert.Empty(t, batches[0])
	})
}

func TestFindProblems_Filters(t *testing.T) {
	e := newEngine(t, variableRule("warn", schemas.LevelWarning), variableRule("err", schemas.LevelError))

	batches := findAll(t, e, twoComponents(), lint.Options{BatchSize: lint.BatchAll, Levels: []schemas.Level{schemas.LevelError}})
	for _, is := range batches[0] {
		assert.Equal(t, "err", is.Code)
	}

	batches = findAll(t, e, twoComponents(), lint.Options{BatchSize: lint.BatchAll, Rules: []string{"warn"}})
	assert.Len(t, batches[0], 3)

	batches = findAll(t, e, twoComponents(), lint.Options{
		BatchSize:    lint.BatchAll,
		Rules:        []string{"warn"},
		PathsToVisit: []schemas.Path{{"components", "b"}},
	})
	require.Len(t, batches[0], 1)
	assert.Equal(t, schemas.Path{"components", "b", "variables", "z"}, batches[0][0].Path)

	err := e.FindProblems(context.Background(), twoComponents(), lint.Options{Rules: []string{"nope"}},
		func([]schemas.Issue) error { return nil })
	assert.ErrorIs(t, err, lint.ErrUnknownRule)
}

func TestFindProblems_FilterBelowVisitedValue(t *testing.T) {
	// Reports a field of each component, and the component itself.
	fields := &lint.Rule{
		Code:  "fields",
		Level: schemas.LevelInfo,
		Visit: func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindComponent) {
				report(n.Path, nil)
				report(n.Path.Append("variables"), nil)
			}
		},
	}
	e := newEngine(t, fields)

	batches := findAll(t, e, twoComponents(), lint.Options{
		BatchSize:    lint.BatchAll,
		PathsToVisit: []schemas.Path{{"components", "a", "variables"}},
	})
	require.Len(t, batches, 1)
	var got []string
	for _, is := range batches[0] {
		got = append(got, is.Path.Pointer())
	}
	assert.Equal(t, []string{"/components/a/variables"}, got)
}

func TestFindProblems_StopsOnRespondErrorAndCancel(t *testing.T) {
	e := newEngine(t, variableRule("first", schemas.LevelWarning), variableRule("second", schemas.LevelWarning))

	stop := errors.New("stop")
	calls := 0
	err := e.FindProblems(context.Background(), twoComponents(), lint.Options{}, func([]schemas.Issue) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	calls = 0
	err = e.FindProblems(ctx, twoComponents(), lint.Options{}, func([]schemas.Issue) error {
		calls++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancellation is observed between batches")
}

func TestFindProblems_SharedMemo(t *testing.T) {
	factoryCalls := 0
	memoRule := func(code string) *lint.Rule {
		return &lint.Rule{Code: code, Level: schemas.LevelInfo, Visit: func(_ lint.Reporter, ctx *walker.Context) {
			walker.Memoize(ctx.Memo, "shared", func() int { factoryCalls++; return 1 })
		}}
	}
	e := newEngine(t, memoRule("one"), memoRule("two"))

	findAll(t, e, twoComponents(), lint.Options{})
	findAll(t, e, twoComponents(), lint.Options{})
	assert.Equal(t, 2, factoryCalls, "one computation per run, none shared across runs")
}

func TestFixProblems(t *testing.T) {
	e := newEngine(t, variableRule("vars", schemas.LevelWarning))
	files := twoComponents()

	var patches []schemas.FixPatch
	err := e.FixProblems(context.Background(), files, lint.Options{}, "vars", "delete", func(p []schemas.FixPatch) error {
		patches = p
		return nil
	})
	require.NoError(t, err)

	// Every variable is removed at its own pointer, so no fix is deferred.
	require.Len(t, patches, 3)
	patched, err := jsonpatch.NewService(nil).ApplyFiles(files, patches)
	require.NoError(t, err)
	assert.Len(t, files.Components["a"].Variables, 2, "input untouched")
	assert.Empty(t, patched.Components["a"].Variables)
	assert.Empty(t, patched.Components["b"].Variables)

	t.Run("missing fix responds with nothing", func(t *testing.T) {
		called := false
		err := e.FixProblems(context.Background(), files, lint.Options{}, "vars", "other", func(p []schemas.FixPatch) error {
			called = true
			assert.Empty(t, p)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("unknown rule", func(t *testing.T) {
		err := e.FixProblems(context.Background(), files, lint.Options{}, "nope", "delete", func([]schemas.FixPatch) error { return nil })
		assert.ErrorIs(t, err, lint.ErrUnknownRule)
	})
}

func TestFixProblems_DefersOverlappingFixes(t *testing.T) {
	// The second report removes the whole component the first one edits.
	nested := &lint.Rule{
		Code:  "nested",
		Level: schemas.LevelWarning,
		Visit: func(report lint.Reporter, ctx *walker.Context) {
			report(schemas.Path{"components", "a", "variables", "x"}, nil, "delete")
			report(schemas.Path{"components", "a"}, nil, "delete")
		},
		Fixes: variableRule("", "").Fixes,
	}
	e := newEngine(t, nested)

	var patches []schemas.FixPatch
	err := e.FixProblems(context.Background(), twoComponents(), lint.Options{}, "nested", "delete", func(p []schemas.FixPatch) error {
		patches = p
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []schemas.FixPatch{{Op: schemas.OpRemove, Path: "/components/a/variables/x"}}, patches)

	fixed, err := e.FixProject(context.Background(), twoComponents(), "nested", "delete", lint.Options{})
	require.NoError(t, err)
	assert.NotContains(t, fixed.Components, "a", "the deferred fix lands on the next pass")
	assert.Contains(t, fixed.Components, "b")
}

func TestFixProject(t *testing.T) {
	e := newEngine(t, variableRule("vars", schemas.LevelWarning))

	fixed, err := e.FixProject(context.Background(), twoComponents(), "vars", "delete", lint.Options{})
	require.NoError(t, err)
	assert.Empty(t, fixed.Components["a"].Variables)
	assert.Empty(t, fixed.Components["b"].Variables)
}

func TestFixProject_IterationLimit(t *testing.T) {
	// Each pass adds a new variable, so the document never settles.
	counter := 0
	growing := &lint.Rule{
		Code:  "grow",
		Level: schemas.LevelInfo,
		Visit: func(report lint.Reporter, ctx *walker.Context) {
			report(schemas.Path{"components", "a"}, nil, "grow")
		},
		Fixes: map[schemas.FixType]lint.FixFunc{"grow": func(args lint.FixArgs) *schemas.ProjectFiles {
			counter++
			out, _ := jsonpatch.Clone(args.Files)
			out.Components["a"].Variables[fmt.Sprintf("v%d", counter)] = &schemas.ComponentVariable{}
			return out
		}},
	}
	e := newEngine(t, growing)

	_, err := e.FixProject(context.Background(), twoComponents(), "grow", "grow", lint.Options{MaxIterations: 5})
	assert.ErrorIs(t, err, lint.ErrIterationLimit)
	assert.Equal(t, 5, counter)
}

func TestFixProject_Cycle(t *testing.T) {
	// The fix toggles a node tag between two values forever.
	toggle := &lint.Rule{
		Code:  "toggle",
		Level: schemas.LevelInfo,
		Visit: func(report lint.Reporter, ctx *walker.Context) {
			for n := range walker.Select(ctx, walker.KindComponentNode) {
				report(n.Path.Append("tag"), n.NodeModel().Tag, "flip")
			}
		},
		Fixes: map[schemas.FixType]lint.FixFunc{"flip": func(args lint.FixArgs) *schemas.ProjectFiles {
			next := "span"
			if args.Details == "span" {
				next = "div"
			}
			out, _ := jsonpatch.Set(args.Files, args.Path, next)
			return out
		}},
	}
	e := newEngine(t, toggle)
	files := &schemas.ProjectFiles{Components: map[string]*schemas.Component{
		"a": {Nodes: map[string]*schemas.NodeModel{"root": {Type: schemas.NodeElement, Tag: "div"}}},
	}}

	_, err := e.FixProject(context.Background(), files, "toggle", "flip", lint.Options{})
	assert.ErrorIs(t, err, lint.ErrFixCycle)
}

func TestParseBatchSize(t *testing.T) {
	for in, want := range map[string]string{"": "per-file", "per-file": "per-file", "all": "all", " all ": "all", "10": "10", " 5\t": "5"} {
		b, err := lint.ParseBatchSize(in)
		require.NoError(t, err)
		assert.Equal(t, want, b.String())
	}
	for _, bad := range []string{"0", "-1", "many"} {
		_, err := lint.ParseBatchSize(bad)
		assert.Error(t, err, bad)
	}
	assert.Equal(t, lint.BatchPerFile, lint.BatchOf(0))
}

func TestRule_FixTypes(t *testing.T) {
	r := &lint.Rule{Fixes: map[schemas.FixType]lint.FixFunc{"b": nil, "a": nil}}
	assert.Equal(t, []schemas.FixType{"a", "b"}, r.FixTypes())
}
