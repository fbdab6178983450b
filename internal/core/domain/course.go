package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// EphemeralCode marks a candidate course that has not been assigned a code.
// Unlike real course codes it may appear more than once.
const EphemeralCode = "N/A"

// Placeholders used when optional display fields are missing.
const (
	UnknownCode = "N/A"
	UnknownName = "Unknown"
)

// Course is a single course description in the corpus.
type Course struct {
	// Code is the course identifier, unique among persisted courses.
	Code string `json:"code"`

	// Name is the display name.
	Name string `json:"name"`

	// Knowledge is the knowledge learning outcome.
	Knowledge string `json:"knowledge,omitempty"`

	// Skills is the skills learning outcome.
	Skills string `json:"skills,omitempty"`

	// GeneralCompetence is the general-competence learning outcome.
	GeneralCompetence string `json:"general_competence,omitempty"`

	// Content is the course content description.
	Content string `json:"content,omitempty"`

	// Literature is the pipe-delimited list of assigned reading.
	// Nil means the course has no literature data at all.
	Literature *string `json:"literature,omitempty"`

	// Details holds administrative columns reported alongside results.
	Details CourseDetails `json:"details"`

	// NormalizedText is the free text with stopwords and numbers removed.
	NormalizedText string `json:"normalized_text,omitempty"`

	// Keywords is the ranked keyword phrase list for NormalizedText.
	Keywords []string `json:"keywords,omitempty"`

	// Embedding is the vector for NormalizedText. Nil when absent or undecodable.
	Embedding []float32 `json:"embedding,omitempty"`
}

// CourseDetails holds optional administrative metadata.
// Every field defaults to the empty string.
type CourseDetails struct {
	SecondaryCode         string `json:"secondary_code,omitempty"`
	AcademicCoordinator   string `json:"academic_coordinator,omitempty"`
	School                string `json:"school,omitempty"`
	Credits               string `json:"credits,omitempty"`
	TeachingLanguage      string `json:"teaching_language,omitempty"`
	Delivery              string `json:"delivery,omitempty"`
	LinkEN                string `json:"link_en,omitempty"`
	LinkNB                string `json:"link_nb,omitempty"`
	LevelOfStudy          string `json:"level_of_study,omitempty"`
	Portfolio             string `json:"portfolio,omitempty"`
	AssociateDean         string `json:"associate_dean,omitempty"`
	ResponsibleDepartment string `json:"responsible_department,omitempty"`
	ResponsibleArea       string `json:"responsible_area,omitempty"`
}

// IsEphemeral reports whether the course is an unsaved candidate.
func (c *Course) IsEphemeral() bool {
	return c.Code == "" || c.Code == EphemeralCode
}

// DisplayCode returns the code, or "N/A" when missing.
func (c *Course) DisplayCode() string {
	if strings.TrimSpace(c.Code) == "" {
		return UnknownCode
	}
	return c.Code
}

// DisplayName returns the name, or "Unknown" when missing.
func (c *Course) DisplayName() string {
	if strings.TrimSpace(c.Name) == "" {
		return UnknownName
	}
	return c.Name
}

// HasLiterature reports whether the course carries non-empty literature data.
func (c *Course) HasLiterature() bool {
	return c.Literature != nil && strings.TrimSpace(*c.Literature) != ""
}

// LiteratureText returns the literature field, or "" when absent.
func (c *Course) LiteratureText() string {
	if c.Literature == nil {
		return ""
	}
	return *c.Literature
}

// TextFields returns the four free-text fields in their canonical order.
func (c *Course) TextFields() []string {
	return []string{c.Knowledge, c.Skills, c.GeneralCompetence, c.Content}
}

// RawText joins the non-empty free-text fields with single spaces.
func (c *Course) RawText() string {
	parts := make([]string, 0, 4)
	for _, f := range c.TextFields() {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// Fingerprint is a content hash over the code and the free-text fields.
// Editing any of them yields a different fingerprint.
func (c *Course) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(c.Code))
	for _, f := range c.TextFields() {
		h.Write([]byte{0})
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Summary returns the administrative view of the course.
func (c *Course) Summary() CourseSummary {
	return CourseSummary{Code: c.Code, Details: c.Details}
}

// ClearDerived drops every derived field so it is recomputed on next use.
func (c *Course) ClearDerived() {
	c.NormalizedText = ""
	c.Keywords = nil
	c.Embedding = nil
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Candidate is a proposed course submitted for overlap checking.
type Candidate struct {
	// Name is the proposed course name (required).
	Name string

	// Text is the combined learning outcomes and content (required).
	Text string

	// Literature is newline-delimited citation input (optional).
	Literature string
}

// Course converts the candidate into an ephemeral course record.
func (c Candidate) Course() Course {
	return Course{
		Code:       EphemeralCode,
		Name:       c.Name,
		Content:    c.Text,
		Literature: StringPtr(c.Literature),
	}
}
