package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
)

const uriScheme = "coursecheck://"

// registerResources exposes the corpus as read-only resources.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "courses",
		Name:        "courses",
		Description: "Every course in the corpus",
		MIMEType:    "application/json",
	}, s.handleCoursesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "courses/{code}",
		Name:        "course",
		Description: "Full description of one course",
		MIMEType:    "application/json",
	}, s.handleCourseResource)
}

func (s *Server) handleCoursesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	courses, err := s.ports.Corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}

	infos := make([]CourseInfo, len(courses))
	for i := range courses {
		infos[i] = courseInfo(&courses[i])
	}
	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handleCourseResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	code := extractCourseCode(req.Params.URI)
	if code == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	course, err := s.ports.Corpus.Get(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting course: %w", err)
	}

	// Vectors are large and meaningless to a reader.
	view := *course
	view.Embedding = nil
	return jsonResource(req.Params.URI, view)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCourseCode parses coursecheck://courses/{code}.
func extractCourseCode(uri string) string {
	prefix := uriScheme + "courses/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	code := strings.TrimPrefix(uri, prefix)
	if code == "" || strings.Contains(code, "/") {
		return ""
	}
	return code
}
