package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/observability"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Find overlapping pairs in the corpus",
	Long: `Compares every pair of courses in the corpus once and lists the pairs
whose content overlaps, with any literature they share.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output pairs as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx, span := observability.StartCommandSpan(cmd.Context(), "analyze")
	defer span.End()

	if err := ensureServices(ctx); err != nil {
		observability.RecordError(span, err)
		return err
	}

	pairs, err := overlapService.AnalyzeAll(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		if pairs == nil {
			pairs = []domain.PairReport{}
		}
		return writeJSON(cmd.OutOrStdout(), pairs)
	}
	printPairs(cmd.OutOrStdout(), pairs, highlightThreshold())
	return nil
}

func printPairs(w io.Writer, pairs []domain.PairReport, high float64) {
	st := newStyles(w)

	fmt.Fprintln(w, st.title.Render(fmt.Sprintf("Overlapping pairs (%d)", len(pairs))))
	if len(pairs) == 0 {
		fmt.Fprintln(w, st.ok.Render("  No overlapping courses found."))
		return
	}
	fmt.Fprintln(w)
	for _, p := range pairs {
		fmt.Fprintf(w, "  %s  %s %s  <->  %s %s\n",
			st.score(p.OverlapScore, high),
			st.code.Render(p.CourseCode1), p.CourseName1,
			st.code.Render(p.CourseCode2), p.CourseName2)
		if p.CommonLiterature != "" {
			fmt.Fprintln(w, st.indent(st.muted.Render("Shared literature: ")+p.CommonLiterature))
		}
	}
}
