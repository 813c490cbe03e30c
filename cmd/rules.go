package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canvasforge/doclint/internal/lint"
	"github.com/canvasforge/doclint/internal/observability"
)

// newRulesCmd creates the `rules` command, which prints the catalogue.
func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Lists the available rules and their fixes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(observability.GetLogger())
			if err != nil {
				return err
			}
			return printRules(cmd.OutOrStdout(), engine.Rules())
		},
	}
}

func printRules(w io.Writer, rules []*lint.Rule) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tLEVEL\tCATEGORY\tFIXES")
	for _, r := range rules {
		fixes := make([]string, 0, len(r.Fixes))
		for _, f := range r.FixTypes() {
			fixes = append(fixes, string(f))
		}
		fix := strings.Join(fixes, ",")
		if fix == "" {
			fix = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Code, r.Level, r.Category, fix)
	}
	return tw.Flush()
}
