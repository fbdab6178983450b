package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/sheets"
	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/observability"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the course corpus",
	Long:  `List, inspect, add, import and index the courses that submissions are compared against.`,
}

var corpusListJSON bool

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all courses",
	Args:  cobra.NoArgs,
	RunE:  runCorpusList,
}

var corpusShowJSON bool

var corpusShowCmd = &cobra.Command{
	Use:   "show [code]",
	Short: "Show a course",
	Args:  cobra.ExactArgs(1),
	RunE:  runCorpusShow,
}

var upsertCourse struct {
	code       string
	name       string
	knowledge  string
	skills     string
	competence string
	content    string
	literature string
	school     string
	credits    string
}

var corpusUpsertCmd = &cobra.Command{
	Use:   "upsert",
	Short: "Add or replace a course",
	Long: `Stores one course and computes its normalised text, keywords and embedding.

Literature is pipe-delimited, for example "Database Systems|Clean Code".`,
	Args: cobra.NoArgs,
	RunE: runCorpusUpsert,
}

var (
	importSheetID string
	importRange   string
)

var corpusImportCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Import courses from a JSON document or a spreadsheet",
	Long: `Copies every course from another source into the corpus and indexes it.

The source is either a JSON corpus document or, with --sheet, a Google Sheets
spreadsheet using the standard column headers (Kurskode, Kursnavn, ...).
Sheet credentials are read from corpus.sheet_api_key and
corpus.sheet_access_token.

Examples:
  coursecheck corpus import courses.json
  coursecheck corpus import --sheet 1AbC... --range "Courses!A1:Z"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCorpusImport,
}

var corpusIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Compute missing or stale embeddings",
	Args:  cobra.NoArgs,
	RunE:  runCorpusIndex,
}

func init() {
	corpusListCmd.Flags().BoolVar(&corpusListJSON, "json", false, "output as JSON")
	corpusShowCmd.Flags().BoolVar(&corpusShowJSON, "json", false, "output as JSON")

	f := corpusUpsertCmd.Flags()
	f.StringVar(&upsertCourse.code, "code", "", "course code (required)")
	f.StringVar(&upsertCourse.name, "name", "", "course name (required)")
	f.StringVar(&upsertCourse.knowledge, "knowledge", "", "knowledge learning outcome")
	f.StringVar(&upsertCourse.skills, "skills", "", "skills learning outcome")
	f.StringVar(&upsertCourse.competence, "competence", "", "general competence learning outcome")
	f.StringVar(&upsertCourse.content, "content", "", "course content")
	f.StringVar(&upsertCourse.literature, "literature", "", "pipe-delimited literature")
	f.StringVar(&upsertCourse.school, "school", "", "school")
	f.StringVar(&upsertCourse.credits, "credits", "", "credits")
	_ = corpusUpsertCmd.MarkFlagRequired("code")

	corpusImportCmd.Flags().StringVar(&importSheetID, "sheet", "", "import from this spreadsheet ID")
	corpusImportCmd.Flags().StringVar(&importRange, "range", sheets.DefaultRange, "A1 range of the course table")

	corpusCmd.AddCommand(corpusListCmd)
	corpusCmd.AddCommand(corpusShowCmd)
	corpusCmd.AddCommand(corpusUpsertCmd)
	corpusCmd.AddCommand(corpusImportCmd)
	corpusCmd.AddCommand(corpusIndexCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpusList(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	courses, err := corpusService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	if corpusListJSON {
		return writeJSON(cmd.OutOrStdout(), courseRows(courses))
	}

	w := cmd.OutOrStdout()
	if len(courses) == 0 {
		fmt.Fprintln(w, "No courses in the corpus.")
		fmt.Fprintln(w, "Use 'coursecheck corpus import' or 'coursecheck corpus upsert' to add some.")
		return nil
	}

	st := newStyles(w)
	fmt.Fprintln(w, st.title.Render(fmt.Sprintf("Courses (%d)", len(courses))))
	for i := range courses {
		c := &courses[i]
		marks := ""
		if c.Embedding == nil {
			marks += st.medium.Render(" [not indexed]")
		}
		if !c.HasLiterature() {
			marks += st.muted.Render(" [no literature]")
		}
		fmt.Fprintf(w, "  %s  %s%s\n", st.code.Render(c.DisplayCode()), c.DisplayName(), marks)
	}
	return nil
}

// courseRow is the JSON listing entry; vectors are omitted.
type courseRow struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	School        string `json:"school,omitempty"`
	HasLiterature bool   `json:"has_literature"`
	Indexed       bool   `json:"indexed"`
}

func courseRows(courses []domain.Course) []courseRow {
	rows := make([]courseRow, 0, len(courses))
	for i := range courses {
		c := &courses[i]
		rows = append(rows, courseRow{
			Code:          c.Code,
			Name:          c.Name,
			School:        c.Details.School,
			HasLiterature: c.HasLiterature(),
			Indexed:       c.Embedding != nil,
		})
	}
	return rows
}

func runCorpusShow(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	course, err := corpusService.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("course %q not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get course: %w", err)
	}

	if corpusShowJSON {
		c := *course
		c.Embedding = nil
		return writeJSON(cmd.OutOrStdout(), c)
	}
	printCourse(cmd.OutOrStdout(), course)
	return nil
}

func printCourse(w io.Writer, c *domain.Course) {
	st := newStyles(w)
	fmt.Fprintln(w, st.title.Render(c.DisplayCode()+"  "+c.DisplayName()))

	sections := []struct{ label, text string }{
		{"Knowledge", c.Knowledge},
		{"Skills", c.Skills},
		{"General competence", c.GeneralCompetence},
		{"Content", c.Content},
	}
	for _, s := range sections {
		if strings.TrimSpace(s.text) == "" {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.header.Render(s.label))
		fmt.Fprintln(w, st.indent(s.text))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.header.Render("Literature"))
	if c.HasLiterature() {
		for _, title := range strings.Split(c.LiteratureText(), "|") {
			if title = strings.TrimSpace(title); title != "" {
				fmt.Fprintln(w, st.indent(title))
			}
		}
	} else {
		fmt.Fprintln(w, st.muted.Render("      "+domain.NoLiteratureData))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.header.Render("Index"))
	if len(c.Keywords) > 0 {
		fmt.Fprintln(w, st.indent(st.muted.Render("Keywords: ")+strings.Join(c.Keywords, ", ")))
	}
	if c.Embedding != nil {
		fmt.Fprintln(w, st.indent(st.muted.Render("Embedding: ")+fmt.Sprintf("%d dimensions", len(c.Embedding))))
	} else {
		fmt.Fprintln(w, st.indent(st.medium.Render("Not indexed (run 'coursecheck corpus index')")))
	}

	fmt.Fprintln(w)
	printDetails(w, st, c.Summary())
}

func runCorpusUpsert(cmd *cobra.Command, _ []string) error {
	ctx, span := observability.StartCommandSpan(cmd.Context(), "corpus.upsert")
	defer span.End()

	if err := ensureServices(ctx); err != nil {
		observability.RecordError(span, err)
		return err
	}

	course := domain.Course{
		Code:              upsertCourse.code,
		Name:              upsertCourse.name,
		Knowledge:         upsertCourse.knowledge,
		Skills:            upsertCourse.skills,
		GeneralCompetence: upsertCourse.competence,
		Content:           upsertCourse.content,
		Details: domain.CourseDetails{
			School:  upsertCourse.school,
			Credits: upsertCourse.credits,
		},
	}
	if cmd.Flags().Changed("literature") {
		lit := upsertCourse.literature
		course.Literature = &lit
	}

	if err := corpusService.Upsert(ctx, course); err != nil {
		observability.RecordError(span, err)
		switch {
		case errors.Is(err, domain.ErrEphemeralCourse):
			return fmt.Errorf("%q is reserved for unsaved candidates; choose a real course code", course.Code)
		case errors.Is(err, domain.ErrReadOnly):
			return fmt.Errorf("the configured corpus is read-only: %w", err)
		}
		return fmt.Errorf("failed to store course: %w", err)
	}

	cmd.Printf("Stored course %s\n", course.Code)
	return nil
}

func runCorpusImport(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (importSheetID == "") {
		return errors.New("give either a JSON document path or --sheet")
	}

	ctx, span := observability.StartCommandSpan(cmd.Context(), "corpus.import")
	defer span.End()

	if err := ensureServices(ctx); err != nil {
		observability.RecordError(span, err)
		return err
	}

	src, err := openImportSource(cmd, args)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}
	defer src.Close()

	n, err := corpusService.Import(ctx, src)
	if err != nil {
		observability.RecordError(span, err)
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d course(s)\n", n)
	return nil
}

func openImportSource(cmd *cobra.Command, args []string) (driven.CorpusStore, error) {
	if importSheetID != "" {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, fmt.Errorf("loading settings: %w", err)
		}
		store, err := sheets.OpenCorpusStore(cmd.Context(), sheets.Config{
			SpreadsheetID: importSheetID,
			Range:         importRange,
			APIKey:        settings.Corpus.SheetAPIKey,
			AccessToken:   settings.Corpus.SheetAccessToken,
		})
		if err != nil {
			return nil, fmt.Errorf("reading spreadsheet: %w", err)
		}
		return store, nil
	}

	// The JSON store treats a missing file as an empty corpus.
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	store, err := jsonfile.OpenCorpusStore(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return store, nil
}

func runCorpusIndex(cmd *cobra.Command, _ []string) error {
	ctx, span := observability.StartCommandSpan(cmd.Context(), "corpus.index")
	defer span.End()

	if err := ensureServices(ctx); err != nil {
		observability.RecordError(span, err)
		return err
	}

	n, err := corpusService.Index(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return fmt.Errorf("indexing failed: %w", err)
	}

	if n == 0 {
		cmd.Println("Corpus is up to date")
		return nil
	}
	cmd.Printf("Indexed %d course(s)\n", n)
	return nil
}
