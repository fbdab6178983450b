package services

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
)

// Literature delimiters. User input lists one citation per line; stored
// records separate citations with a pipe.
const (
	InputLiteratureDelimiter  = "\n"
	StoredLiteratureDelimiter = "|"
)

// literatureNoise is stripped from every citation before comparison.
var literatureNoise = strings.NewReplacer("Book: ", "", "'", "", `"`, "")

// NormaliseTitles splits a literature blob on delim and returns the set of
// cleaned, case-folded titles. Empty titles are dropped.
func NormaliseTitles(blob, delim string) map[string]struct{} {
	titles := make(map[string]struct{})
	cleaned := literatureNoise.Replace(blob)
	for _, part := range strings.Split(cleaned, delim) {
		t := strings.TrimSpace(cases.Fold().String(strings.TrimSpace(part)))
		if t != "" {
			titles[t] = struct{}{}
		}
	}
	return titles
}

// CommonTitles returns the sorted intersection of two title sets.
func CommonTitles(a, b map[string]struct{}) []string {
	if len(b) < len(a) {
		a, b = b, a
	}
	var common []string
	for t := range a {
		if _, ok := b[t]; ok {
			common = append(common, t)
		}
	}
	sort.Strings(common)
	return common
}

// CleanLiteratureInput trims every line and drops blank ones.
func CleanLiteratureInput(input string) string {
	var lines []string
	for _, line := range strings.Split(input, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// FormatTitles renders titles as "Book: 'a' | Book: 'b'".
func FormatTitles(titles []string) string {
	parts := make([]string, len(titles))
	for i, t := range titles {
		parts[i] = "Book: '" + t + "'"
	}
	return strings.Join(parts, " | ")
}

// MatchLiterature compares candidate literature (newline-delimited) against
// every course in corpus order. Courses without literature produce a NoData
// record; courses sharing no titles produce nothing.
func MatchLiterature(input string, corpus []domain.Course) []domain.LiteratureMatch {
	input = CleanLiteratureInput(input)
	if input == "" {
		return nil
	}
	candidate := NormaliseTitles(input, InputLiteratureDelimiter)

	var matches []domain.LiteratureMatch
	for i := range corpus {
		c := &corpus[i]
		if !c.HasLiterature() {
			matches = append(matches, domain.LiteratureMatch{
				CourseCode: c.DisplayCode(),
				CourseName: c.DisplayName(),
				Matches:    domain.NoLiteratureData,
				NoData:     true,
			})
			continue
		}
		common := CommonTitles(candidate, NormaliseTitles(c.LiteratureText(), StoredLiteratureDelimiter))
		if len(common) == 0 {
			continue
		}
		matches = append(matches, domain.LiteratureMatch{
			CourseCode:   c.DisplayCode(),
			CourseName:   c.DisplayName(),
			CommonTitles: common,
			Matches:      FormatTitles(common),
		})
	}
	return matches
}

// PairLiterature returns the shared titles of two stored courses, sorted and
// joined with " | ", or "" when either lacks literature or nothing is shared.
func PairLiterature(a, b *domain.Course) string {
	if !a.HasLiterature() || !b.HasLiterature() {
		return ""
	}
	common := CommonTitles(
		NormaliseTitles(a.LiteratureText(), StoredLiteratureDelimiter),
		NormaliseTitles(b.LiteratureText(), StoredLiteratureDelimiter),
	)
	return strings.Join(common, " | ")
}
