package domain

import "time"

// Fixed report sentinels.
const (
	// ExactMatchKeywords replaces the keyword summary for identical texts.
	ExactMatchKeywords = "Exact match"

	// NoLiteratureData marks a course without literature to compare against.
	NoLiteratureData = "No 'Pensum' data available"

	// ExactMatchScore is the score reported for identical normalised text.
	ExactMatchScore = 100.0
)

// OverlapResult is one existing course that overlaps a candidate.
type OverlapResult struct {
	CourseCode  string  `json:"course_code"`
	CourseName  string  `json:"course_name"`
	Score       float64 `json:"overlap_score_percent"`
	Keywords    string  `json:"keywords,omitempty"`
	Explanation string  `json:"explanation,omitempty"`
}

// LiteratureMatch is the literature comparison against one existing course.
// NoData records are informational and do not signal overlap.
type LiteratureMatch struct {
	CourseCode   string   `json:"course_code"`
	CourseName   string   `json:"course_name"`
	CommonTitles []string `json:"common_titles,omitempty"`
	Matches      string   `json:"literature_matches"`
	NoData       bool     `json:"no_data,omitempty"`
}

// CourseSummary is the administrative view returned with every submission.
type CourseSummary struct {
	Code    string        `json:"code"`
	Details CourseDetails `json:"details"`
}

// SubmissionReport is the outcome of checking one candidate.
type SubmissionReport struct {
	ID                 string            `json:"id"`
	CreatedAt          time.Time         `json:"created_at"`
	OverlappingCourses []OverlapResult   `json:"overlapping_courses"`
	LiteratureMatches  []LiteratureMatch `json:"literature_matches"`
	AdditionalInfo     []CourseSummary   `json:"additional_info"`
}

// PairReport is one overlapping pair from the all-pairs analysis.
type PairReport struct {
	CourseCode1      string  `json:"course_code_1"`
	CourseName1      string  `json:"course_name_1"`
	CourseCode2      string  `json:"course_code_2"`
	CourseName2      string  `json:"course_name_2"`
	OverlapScore     float64 `json:"overlap_score_percent"`
	CommonLiterature string  `json:"common_literature"`
}

// CacheEntry memoises derived text for one version of a course.
type CacheEntry struct {
	CourseCode     string    `json:"course_code"`
	Fingerprint    string    `json:"fingerprint"`
	NormalizedText string    `json:"filtered_text"`
	Keywords       []string  `json:"keywords"`
	CreatedAt      time.Time `json:"created_at"`
}
