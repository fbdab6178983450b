package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/observability"
)

var (
	submitName           string
	submitText           string
	submitTextFile       string
	submitLiterature     string
	submitLiteratureFile string
	submitDetails        bool
	submitJSON           bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Check a proposed course for overlap",
	Long: `Compares a proposed course against every course in the corpus.

Reports existing courses whose content overlaps the proposal, and shared
literature. The course text is the learning outcomes and content; the
literature is one title per line, for example "Book: 'Database Systems'".

Examples:
  coursecheck submit --name "Data Engineering" --text-file outcomes.txt
  coursecheck submit --name "Intro to AI" --text "Search, planning ..." \
      --literature-file reading.txt --json`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitName, "name", "", "name of the proposed course (required)")
	submitCmd.Flags().StringVar(&submitText, "text", "", "learning outcomes and content")
	submitCmd.Flags().StringVar(&submitTextFile, "text-file", "", "read the course text from a file (- for stdin)")
	submitCmd.Flags().StringVar(&submitLiterature, "literature", "", "assigned literature, one title per line")
	submitCmd.Flags().StringVar(&submitLiteratureFile, "literature-file", "", "read the literature from a file")
	submitCmd.Flags().BoolVar(&submitDetails, "details", false, "also list administrative details of every course")
	submitCmd.Flags().BoolVar(&submitJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	text, err := flagOrFile(cmd.InOrStdin(), submitText, submitTextFile)
	if err != nil {
		return err
	}
	literature, err := flagOrFile(cmd.InOrStdin(), submitLiterature, submitLiteratureFile)
	if err != nil {
		return err
	}

	ctx, span := observability.StartCommandSpan(cmd.Context(), "submit")
	defer span.End()

	if err := ensureServices(ctx); err != nil {
		observability.RecordError(span, err)
		return err
	}

	report, err := overlapService.SubmitCandidate(ctx, domain.Candidate{
		Name:       submitName,
		Text:       text,
		Literature: literature,
	})
	if err != nil {
		observability.RecordError(span, err)
		if errors.Is(err, domain.ErrInvalidInput) {
			return fmt.Errorf("%w (use --name and --text or --text-file)", err)
		}
		return fmt.Errorf("submission failed: %w", err)
	}

	if submitJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	printSubmission(cmd.OutOrStdout(), report, highlightThreshold(), submitDetails)
	return nil
}

// flagOrFile returns the flag value, or the file contents when path is set.
func flagOrFile(stdin io.Reader, value, path string) (string, error) {
	if path == "" {
		return value, nil
	}
	if value != "" {
		return "", fmt.Errorf("%w: give either the value or a file, not both", domain.ErrInvalidInput)
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// highlightThreshold is the score at which results are highlighted; it
// follows the explanation threshold.
func highlightThreshold() float64 {
	if settingsService == nil {
		return domain.DefaultExplainThreshold
	}
	settings, err := settingsService.Get()
	if err != nil {
		return domain.DefaultExplainThreshold
	}
	return settings.Analysis.ExplainThreshold
}

func printSubmission(w io.Writer, report *domain.SubmissionReport, high float64, details bool) {
	st := newStyles(w)

	fmt.Fprintln(w, st.title.Render("Submission "+report.ID))
	fmt.Fprintln(w)

	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("Overlapping courses (%d)", len(report.OverlappingCourses))))
	if len(report.OverlappingCourses) == 0 {
		fmt.Fprintln(w, st.ok.Render("  No overlapping courses found."))
	}
	for _, r := range report.OverlappingCourses {
		fmt.Fprintf(w, "  %s  %s  %s\n", st.score(r.Score, high), st.code.Render(r.CourseCode), r.CourseName)
		if r.Keywords != "" {
			fmt.Fprintln(w, st.indent(st.muted.Render("Keywords: ")+r.Keywords))
		}
		if r.Explanation != "" {
			fmt.Fprintln(w, st.indent(st.muted.Render("Explanation: ")+r.Explanation))
		}
	}
	fmt.Fprintln(w)

	var shared, missing []domain.LiteratureMatch
	for _, m := range report.LiteratureMatches {
		if m.NoData {
			missing = append(missing, m)
		} else {
			shared = append(shared, m)
		}
	}

	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("Shared literature (%d)", len(shared))))
	if len(shared) == 0 {
		fmt.Fprintln(w, st.ok.Render("  No shared literature found."))
	}
	for _, m := range shared {
		fmt.Fprintf(w, "  %s  %s\n", st.code.Render(m.CourseCode), m.CourseName)
		fmt.Fprintln(w, st.indent(m.Matches))
	}
	if len(missing) > 0 {
		codes := make([]string, len(missing))
		for i, m := range missing {
			codes[i] = m.CourseCode
		}
		fmt.Fprintln(w, st.muted.Render(fmt.Sprintf("  %s for: %s", domain.NoLiteratureData, strings.Join(codes, ", "))))
	}

	if details {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.header.Render(fmt.Sprintf("Course details (%d)", len(report.AdditionalInfo))))
		for _, info := range report.AdditionalInfo {
			printDetails(w, st, info)
		}
	}
}

func printDetails(w io.Writer, st styles, info domain.CourseSummary) {
	fmt.Fprintf(w, "  %s\n", st.code.Render(info.Code))
	d := info.Details
	fields := []struct{ label, value string }{
		{"School", d.School},
		{"Credits", d.Credits},
		{"Level", d.LevelOfStudy},
		{"Language", d.TeachingLanguage},
		{"Delivery", d.Delivery},
		{"Coordinator", d.AcademicCoordinator},
		{"Department", d.ResponsibleDepartment},
		{"Link", d.LinkEN},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintln(w, st.indent(st.muted.Render(f.label+": ")+f.value))
		}
	}
}
