package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/config"
	"github.com/canvasforge/doclint/internal/jsonpatch"
	"github.com/canvasforge/doclint/internal/lint"
	"github.com/canvasforge/doclint/internal/lint/rules"
	"github.com/canvasforge/doclint/internal/observability"
	"github.com/canvasforge/doclint/internal/project"
	"github.com/canvasforge/doclint/internal/reporting"
	"github.com/canvasforge/doclint/internal/vcs"
)

// newLintCmd creates and configures the `lint` command.
func newLintCmd() *cobra.Command {
	var scope lintScope

	lintCmd := &cobra.Command{
		Use:   "lint [documents...]",
		Short: "Reports problems in one or more project documents",
		Long: `Runs the rule catalogue over each document and writes the issues found.
A document is a single JSON or YAML file, or a directory in split layout.
The command fails when any error level issue is reported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runLint(ctx, observability.GetLogger(), cfg, args, scope, cmd.OutOrStdout())
		},
	}

	lintCmd.Flags().StringSlice("rules", nil, "Only run these rule codes (default: all)")
	lintCmd.Flags().StringSlice("levels", nil, "Only run rules of these levels: error, warning, info")
	lintCmd.Flags().String("batch-size", "per-file", "Issue batching: all, per-file or a positive integer")
	lintCmd.Flags().IntP("concurrency", "j", 4, "Number of documents linted at once")
	lintCmd.Flags().StringP("format", "f", "text", "Report format: text, json, sarif or checkstyle")
	lintCmd.Flags().StringP("output", "o", "", "Report file. Defaults to stdout.")
	lintCmd.Flags().StringSliceVar(&scope.Paths, "path", nil, "Restrict the walk to JSON pointers or section/name globs")
	lintCmd.Flags().StringVar(&scope.ChangedSince, "changed-since", "", "Only lint what changed in git since this revision")
	lintCmd.MarkFlagsMutuallyExclusive("path", "changed-since")

	bindConfigKey(lintCmd, "rules", "lint.rules")
	bindConfigKey(lintCmd, "levels", "lint.levels")
	bindConfigKey(lintCmd, "batch-size", "lint.batch_size")
	bindConfigKey(lintCmd, "concurrency", "lint.concurrency")
	bindConfigKey(lintCmd, "format", "report.format")
	bindConfigKey(lintCmd, "output", "report.output")
	return lintCmd
}

// newEngine registers the built-in catalogue.
func newEngine(logger *zap.Logger) (*lint.Engine, error) {
	return lint.NewEngine(logger, jsonpatch.NewService(logger), rules.All()...)
}

// lintScope narrows the walk inside each document.
type lintScope struct {
	// Paths are JSON pointers or section/name globs.
	Paths []string
	// ChangedSince is a git revision. Documents with no change since it are
	// skipped and split layouts are narrowed to the changed entries.
	ChangedSince string
}

// filters resolves the path filters for one document. skip reports that
// the document can be left out entirely.
func (s lintScope) filters(document string) (filters []string, skip bool, err error) {
	if s.ChangedSince == "" {
		return s.Paths, false, nil
	}
	info, err := os.Stat(document)
	if err != nil {
		return nil, false, fmt.Errorf("loading %s: %w", document, err)
	}
	dir := document
	if !info.IsDir() {
		dir = filepath.Dir(document)
	}
	changed, err := vcs.ChangedFiles(dir, s.ChangedSince)
	if err != nil {
		return nil, false, fmt.Errorf("listing changes to %s: %w", document, err)
	}
	filters, touched := project.ChangeScope(document, info.IsDir(), changed)
	return filters, !touched, nil
}

// runLint contains the core, testable logic of the lint command.
func runLint(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.Interface,
	documents []string,
	scope lintScope,
	stdout io.Writer,
) error {
	lc := cfg.Lint()
	batch, err := lint.ParseBatchSize(lc.BatchSize)
	if err != nil {
		return err
	}
	levels := make([]schemas.Level, 0, len(lc.Levels))
	for _, l := range lc.Levels {
		levels = append(levels, schemas.Level(l))
	}

	engine, err := newEngine(logger)
	if err != nil {
		return err
	}
	runID := uuid.New().String()

	reporter, err := openReporter(cfg.Report(), logger, reporting.Options{
		ToolVersion: Version,
		RunID:       runID,
		Rules:       engine.Rules(),
	}, stdout)
	if err != nil {
		return fmt.Errorf("failed to initialize reporter: %w", err)
	}

	logger.Info("Starting lint run",
		zap.String("run_id", runID),
		zap.Strings("documents", documents),
		zap.Int("concurrency", lc.Concurrency),
	)

	var errorCount atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lc.Concurrency)
	for _, doc := range documents {
		g.Go(func() error {
			docLogger := observability.ForDocument(logger, runID, doc)
			pathFilters, skip, err := scope.filters(doc)
			if err != nil {
				return err
			}
			if skip {
				docLogger.Debug("Document unchanged", zap.String("since", scope.ChangedSince))
				return reporter.Write(doc, nil)
			}

			files, err := project.Load(doc)
			if err != nil {
				return fmt.Errorf("loading %s: %w", doc, err)
			}
			visit, err := project.ExpandPaths(files, pathFilters)
			if err != nil {
				return err
			}
			// Record the document even if it turns out clean.
			if err := reporter.Write(doc, nil); err != nil {
				return err
			}
			if len(pathFilters) > 0 && len(visit) == 0 {
				docLogger.Debug("No path filter matched", zap.Strings("filters", pathFilters))
				return nil
			}

			opts := lint.Options{
				Levels:       levels,
				Rules:        lc.Rules,
				PathsToVisit: visit,
				BatchSize:    batch,
				MaxDepth:     lc.MaxFormulaDepth,
				RunID:        runID,
			}
			return engine.FindProblems(gctx, files, opts, func(issues []schemas.Issue) error {
				for _, is := range issues {
					if is.Level == schemas.LevelError {
						errorCount.Add(1)
					}
				}
				return reporter.Write(doc, issues)
			})
		})
	}

	runErr := g.Wait()
	closeErr := reporter.Close()
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return closeErr
	}

	if n := errorCount.Load(); n > 0 {
		return fmt.Errorf("%w: %d errors", ErrProblemsFound, n)
	}
	return nil
}

// openReporter writes to stdout unless an output file is configured.
func openReporter(rc config.ReportConfig, logger *zap.Logger, opts reporting.Options, stdout io.Writer) (reporting.Reporter, error) {
	if rc.Output == "" || rc.Output == "-" || rc.Output == "stdout" {
		return reporting.NewForWriter(rc.Format, reporting.NopCloser(stdout), logger, opts)
	}
	return reporting.New(rc.Format, rc.Output, logger, opts)
}
