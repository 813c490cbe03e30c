package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/canvasforge/doclint/api/schemas"
	"github.com/canvasforge/doclint/internal/config"
	"github.com/canvasforge/doclint/internal/lint"
	"github.com/canvasforge/doclint/internal/observability"
	"github.com/canvasforge/doclint/internal/project"
)

// fixRequest carries the flags of one fix invocation.
type fixRequest struct {
	Document string
	Rule     string
	Fix      string
	Output   string
	Paths    []string
}

// newFixCmd creates and configures the `fix` command.
func newFixCmd() *cobra.Command {
	var req fixRequest

	fixCmd := &cobra.Command{
		Use:   "fix <document>",
		Short: "Applies one fix of one rule until the document settles",
		Long: `Repeatedly applies the named fix of a rule to every issue that offers it,
until a pass changes nothing. The result replaces the input file unless
--output is given; "-" prints it to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			req.Document = args[0]
			return runFix(ctx, observability.GetLogger(), cfg, req, cmd.OutOrStdout())
		},
	}

	fixCmd.Flags().StringVar(&req.Rule, "rule", "", "Code of the rule whose fix is applied (required)")
	fixCmd.Flags().StringVar(&req.Fix, "fix", "", "Fix type to apply (required)")
	fixCmd.Flags().StringVarP(&req.Output, "output", "o", "", "Where to write the fixed document. Defaults to the input file.")
	fixCmd.Flags().StringSliceVar(&req.Paths, "path", nil, "Restrict fixing to JSON pointers or section/name globs")
	fixCmd.Flags().Int("max-iterations", lint.DefaultMaxIterations, "Give up after this many passes")
	_ = fixCmd.MarkFlagRequired("rule")
	_ = fixCmd.MarkFlagRequired("fix")

	bindConfigKey(fixCmd, "max-iterations", "fix.max_iterations")
	return fixCmd
}

// runFix contains the core, testable logic of the fix command.
func runFix(ctx context.Context, logger *zap.Logger, cfg config.Interface, req fixRequest, stdout io.Writer) error {
	engine, err := newEngine(logger)
	if err != nil {
		return err
	}
	rule, ok := engine.Rule(req.Rule)
	if !ok {
		return fmt.Errorf("%w: %q", lint.ErrUnknownRule, req.Rule)
	}
	fixType := schemas.FixType(req.Fix)
	if !slices.Contains(rule.FixTypes(), fixType) {
		return fmt.Errorf("rule %q has no fix %q (available: %v)", req.Rule, req.Fix, rule.FixTypes())
	}

	output, err := fixOutput(req)
	if err != nil {
		return err
	}

	files, err := project.Load(req.Document)
	if err != nil {
		return fmt.Errorf("loading %s: %w", req.Document, err)
	}
	visit, err := project.ExpandPaths(files, req.Paths)
	if err != nil {
		return err
	}

	logger.Info("Starting fix",
		zap.String("document", req.Document),
		zap.String("rule", req.Rule),
		zap.String("fix", req.Fix),
	)
	fixed, err := engine.FixProject(ctx, files, req.Rule, fixType, lint.Options{
		Rules:         []string{req.Rule},
		PathsToVisit:  visit,
		MaxDepth:      cfg.Lint().MaxFormulaDepth,
		MaxIterations: cfg.Fix().MaxIterations,
	})
	if err != nil {
		if errors.Is(err, lint.ErrIterationLimit) || errors.Is(err, lint.ErrFixCycle) {
			logger.Warn("Fix did not settle, document left unchanged", zap.Error(err))
		}
		return err
	}

	if output == "-" {
		data, err := project.Encode(fixed, project.FormatJSON)
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}
	if err := project.Save(output, fixed); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	logger.Info("Fixed document written", zap.String("output", output))
	return nil
}

// fixOutput resolves where the fixed document goes. Split-layout inputs
// cannot be rewritten in place.
func fixOutput(req fixRequest) (string, error) {
	if req.Output == "-" {
		return req.Output, nil
	}
	if req.Output != "" {
		return homedir.Expand(req.Output)
	}
	info, err := os.Stat(req.Document)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory: --output is required", req.Document)
	}
	return req.Document, nil
}
