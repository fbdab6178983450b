package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
)

func TestFromRecord(t *testing.T) {
	rec := map[string]string{
		ColCode:             " INF101 ",
		ColName:             "Intro to Programming",
		ColKnowledge:        "Variables and loops.",
		ColContent:          "Python.",
		ColLiterature:       "Book: 'Think Python'",
		ColSchool:           "Engineering",
		ColTeachingLanguage: "Norsk",
	}

	c := FromRecord(rec)

	assert.Equal(t, "INF101", c.Code)
	assert.Equal(t, "Intro to Programming", c.Name)
	assert.Equal(t, "Variables and loops.", c.Knowledge)
	assert.Empty(t, c.Skills)
	require.NotNil(t, c.Literature)
	assert.Equal(t, "Book: 'Think Python'", *c.Literature)
	assert.Equal(t, "Engineering", c.Details.School)
	assert.Equal(t, "Norsk", c.Details.TeachingLanguage)
	assert.Empty(t, c.Details.Credits)
}

func TestFromRecord_BlankLiterature(t *testing.T) {
	c := FromRecord(map[string]string{ColCode: "X", ColLiterature: "   "})
	assert.Nil(t, c.Literature)
	assert.False(t, c.HasLiterature())
}

func TestRecordRoundTrip(t *testing.T) {
	lit := "Book: 'A' | Book: 'B'"
	course := domain.Course{
		Code:              "DB100",
		Name:              "Databases",
		Knowledge:         "k",
		Skills:            "s",
		GeneralCompetence: "g",
		Content:           "c",
		Literature:        &lit,
		Details: domain.CourseDetails{
			SecondaryCode:         "DB100E",
			Credits:               "7.5",
			ResponsibleDepartment: "Informatics",
		},
	}

	rec := ToRecord(course)
	assert.Len(t, rec, len(Headers()))
	assert.Equal(t, course, FromRecord(rec))
}

func TestFromRow(t *testing.T) {
	headers := []string{ColCode, "", ColName, ColContent}
	rec := FromRow(headers, []string{"A1", "ignored", "Alpha"})

	assert.Equal(t, map[string]string{ColCode: "A1", ColName: "Alpha", ColContent: ""}, rec)
}
