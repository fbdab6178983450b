// Package tabular maps course records to and from the column layout used by
// the course spreadsheet and the JSON corpus document.
package tabular

import (
	"strings"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
)

// Column headers, as they appear in the course spreadsheet.
const (
	ColCode              = "Kurskode"
	ColName              = "Kursnavn"
	ColKnowledge         = "Learning outcome - Knowledge"
	ColSkills            = "Learning outcome - Skills"
	ColGeneralCompetence = "Learning outcome - General Competence"
	ColContent           = "Course content"
	ColLiterature        = "Pensum"

	ColSecondaryCode         = "Kurskode2"
	ColAcademicCoordinator   = "Academic Coordinator"
	ColSchool                = "School"
	ColCredits               = "Credits"
	ColTeachingLanguage      = "Undv.språk"
	ColDelivery              = "Gj.føring"
	ColLinkEN                = "LINK EN"
	ColLinkNB                = "LINK NB"
	ColLevelOfStudy          = "Level of study"
	ColPortfolio             = "Portfolio"
	ColAssociateDean         = "Associate Dean"
	ColResponsibleDepartment = "Ansvarlig institutt"
	ColResponsibleArea       = "Ansvarlig område"
)

// Headers returns every known column in spreadsheet order.
func Headers() []string {
	return []string{
		ColCode, ColName, ColKnowledge, ColSkills, ColGeneralCompetence, ColContent, ColLiterature,
		ColSecondaryCode, ColAcademicCoordinator, ColSchool, ColCredits, ColTeachingLanguage,
		ColDelivery, ColLinkEN, ColLinkNB, ColLevelOfStudy, ColPortfolio, ColAssociateDean,
		ColResponsibleDepartment, ColResponsibleArea,
	}
}

// FromRecord builds a course from a header-keyed record. Missing columns
// default to the empty string; a blank Pensum means no literature data.
func FromRecord(rec map[string]string) domain.Course {
	get := func(col string) string { return strings.TrimSpace(rec[col]) }
	return domain.Course{
		Code:              get(ColCode),
		Name:              get(ColName),
		Knowledge:         get(ColKnowledge),
		Skills:            get(ColSkills),
		GeneralCompetence: get(ColGeneralCompetence),
		Content:           get(ColContent),
		Literature:        domain.StringPtr(rec[ColLiterature]),
		Details: domain.CourseDetails{
			SecondaryCode:         get(ColSecondaryCode),
			AcademicCoordinator:   get(ColAcademicCoordinator),
			School:                get(ColSchool),
			Credits:               get(ColCredits),
			TeachingLanguage:      get(ColTeachingLanguage),
			Delivery:              get(ColDelivery),
			LinkEN:                get(ColLinkEN),
			LinkNB:                get(ColLinkNB),
			LevelOfStudy:          get(ColLevelOfStudy),
			Portfolio:             get(ColPortfolio),
			AssociateDean:         get(ColAssociateDean),
			ResponsibleDepartment: get(ColResponsibleDepartment),
			ResponsibleArea:       get(ColResponsibleArea),
		},
	}
}

// ToRecord is the inverse of FromRecord. Every header is present.
func ToRecord(c domain.Course) map[string]string {
	d := c.Details
	return map[string]string{
		ColCode:                  c.Code,
		ColName:                  c.Name,
		ColKnowledge:             c.Knowledge,
		ColSkills:                c.Skills,
		ColGeneralCompetence:     c.GeneralCompetence,
		ColContent:               c.Content,
		ColLiterature:            c.LiteratureText(),
		ColSecondaryCode:         d.SecondaryCode,
		ColAcademicCoordinator:   d.AcademicCoordinator,
		ColSchool:                d.School,
		ColCredits:               d.Credits,
		ColTeachingLanguage:      d.TeachingLanguage,
		ColDelivery:              d.Delivery,
		ColLinkEN:                d.LinkEN,
		ColLinkNB:                d.LinkNB,
		ColLevelOfStudy:          d.LevelOfStudy,
		ColPortfolio:             d.Portfolio,
		ColAssociateDean:         d.AssociateDean,
		ColResponsibleDepartment: d.ResponsibleDepartment,
		ColResponsibleArea:       d.ResponsibleArea,
	}
}

// FromRow zips a header row with a value row. Short rows are padded with
// empty cells; unknown headers are ignored by FromRecord.
func FromRow(headers []string, row []string) map[string]string {
	rec := make(map[string]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if i < len(row) {
			rec[h] = row[i]
		} else {
			rec[h] = ""
		}
	}
	return rec
}
