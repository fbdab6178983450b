package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/observability"
)

// SubmitInput is the input schema for the submit_candidate tool.
type SubmitInput struct {
	Name       string `json:"name" jsonschema:"name of the proposed course"`
	Text       string `json:"text" jsonschema:"learning outcomes and course content of the proposed course"`
	Literature string `json:"literature,omitempty" jsonschema:"assigned literature, one title per line"`
}

// SubmitOutput is the output schema for the submit_candidate tool.
type SubmitOutput struct {
	ID                 string                   `json:"id"`
	OverlappingCourses []domain.OverlapResult   `json:"overlapping_courses"`
	LiteratureMatches  []domain.LiteratureMatch `json:"literature_matches"`
	AdditionalInfo     []domain.CourseSummary   `json:"additional_info"`
}

// AnalyzeInput is the (empty) input schema for the analyze_all tool.
type AnalyzeInput struct{}

// AnalyzeOutput is the output schema for the analyze_all tool.
type AnalyzeOutput struct {
	Pairs []domain.PairReport `json:"pairs"`
	Count int                 `json:"count"`
}

// ListCoursesInput is the input schema for the list_courses tool.
type ListCoursesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of courses to return (default all)"`
}

// ListCoursesOutput is the output schema for the list_courses tool.
type ListCoursesOutput struct {
	Courses []CourseInfo `json:"courses"`
	Count   int          `json:"count"`
}

// CourseInfo is the compact view of one corpus course.
type CourseInfo struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	School        string `json:"school,omitempty"`
	HasLiterature bool   `json:"has_literature"`
	Indexed       bool   `json:"indexed"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "submit_candidate",
		Description: "Compare a proposed course against every existing course for content and literature overlap",
	}, s.handleSubmit)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_all",
		Description: "Find every pair of existing courses whose content overlaps",
	}, s.handleAnalyze)

	if s.ports.Corpus != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_courses",
			Description: "List the courses in the corpus",
		}, s.handleListCourses)
	}
}

func (s *Server) handleSubmit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SubmitInput,
) (*mcp.CallToolResult, SubmitOutput, error) {
	ctx, span := observability.StartCommandSpan(ctx, "mcp.submit_candidate")
	defer span.End()

	report, err := s.ports.Overlap.SubmitCandidate(ctx, domain.Candidate{
		Name:       input.Name,
		Text:       input.Text,
		Literature: input.Literature,
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, SubmitOutput{}, err
	}

	output := SubmitOutput{
		ID:                 report.ID,
		OverlappingCourses: report.OverlappingCourses,
		LiteratureMatches:  report.LiteratureMatches,
		AdditionalInfo:     report.AdditionalInfo,
	}
	// Empty lists are reported as [] rather than null.
	if output.OverlappingCourses == nil {
		output.OverlappingCourses = []domain.OverlapResult{}
	}
	if output.LiteratureMatches == nil {
		output.LiteratureMatches = []domain.LiteratureMatch{}
	}
	if output.AdditionalInfo == nil {
		output.AdditionalInfo = []domain.CourseSummary{}
	}
	return nil, output, nil
}

func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	ctx, span := observability.StartCommandSpan(ctx, "mcp.analyze_all")
	defer span.End()

	pairs, err := s.ports.Overlap.AnalyzeAll(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, AnalyzeOutput{}, err
	}
	if pairs == nil {
		pairs = []domain.PairReport{}
	}
	return nil, AnalyzeOutput{Pairs: pairs, Count: len(pairs)}, nil
}

func (s *Server) handleListCourses(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListCoursesInput,
) (*mcp.CallToolResult, ListCoursesOutput, error) {
	courses, err := s.ports.Corpus.List(ctx)
	if err != nil {
		return nil, ListCoursesOutput{}, err
	}
	if input.Limit > 0 && len(courses) > input.Limit {
		courses = courses[:input.Limit]
	}

	output := ListCoursesOutput{
		Courses: make([]CourseInfo, len(courses)),
		Count:   len(courses),
	}
	for i := range courses {
		output.Courses[i] = courseInfo(&courses[i])
	}
	return nil, output, nil
}

func courseInfo(c *domain.Course) CourseInfo {
	return CourseInfo{
		Code:          c.Code,
		Name:          c.DisplayName(),
		School:        c.Details.School,
		HasLiterature: c.HasLiterature(),
		Indexed:       len(c.Embedding) > 0,
	}
}
