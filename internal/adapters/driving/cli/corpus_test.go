package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/coursecheck/internal/core/domain"
)

func TestCorpusCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range corpusCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"list", "show", "upsert", "import", "index"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestCorpusList_Empty(t *testing.T) {
	setupTestServices(t)

	out, _, err := executeCommand(t, "corpus", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No courses in the corpus.")
}

func TestCorpusList_Text(t *testing.T) {
	setupTestServices(t, sampleCourses()...)

	out, _, err := executeCommand(t, "corpus", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Courses (2)")
	assert.Contains(t, out, "INF101")
	assert.Contains(t, out, "Medieval History")
	assert.Contains(t, out, "[no literature]")
	assert.NotContains(t, out, "[not indexed]")
}

func TestCorpusList_JSON(t *testing.T) {
	setupTestServices(t, sampleCourses()...)

	out, _, err := executeCommand(t, "corpus", "list", "--json")
	require.NoError(t, err)

	var rows []courseRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, courseRow{
		Code:          "INF101",
		Name:          "Introduction to Programming",
		School:        "Computing",
		HasLiterature: true,
		Indexed:       true,
	}, rows[0])
	assert.False(t, rows[1].HasLiterature)
}

func TestCorpusShow(t *testing.T) {
	setupTestServices(t, sampleCourses()...)

	out, _, err := executeCommand(t, "corpus", "show", "INF101")

	require.NoError(t, err)
	assert.Contains(t, out, "INF101  Introduction to Programming")
	assert.Contains(t, out, "Knowledge")
	assert.Contains(t, out, "Think Python")
	assert.Contains(t, out, "1024 dimensions")
}

func TestCorpusShow_JSONOmitsEmbedding(t *testing.T) {
	setupTestServices(t, sampleCourses()...)

	out, _, err := executeCommand(t, "corpus", "show", "HIS200", "--json")
	require.NoError(t, err)

	var c domain.Course
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, "HIS200", c.Code)
	assert.Nil(t, c.Embedding)
	assert.NotEmpty(t, c.NormalizedText)
	assert.NotContains(t, out, `"embedding"`)
}

func TestCorpusShow_NotFound(t *testing.T) {
	setupTestServices(t, sampleCourses()...)

	_, _, err := executeCommand(t, "corpus", "show", "NOPE")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `course "NOPE" not found`)
}

func TestCorpusUpsert(t *testing.T) {
	setupTestServices(t)

	out, _, err := executeCommand(t, "corpus", "upsert",
		"--code", "DAT200",
		"--name", "Databases",
		"--content", "Relational algebra, SQL and transactions.",
		"--literature", "Database Systems|Clean Code",
		"--credits", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored course DAT200")

	c, err := corpusService.Get(context.Background(), "DAT200")
	require.NoError(t, err)
	require.NotNil(t, c.Literature)
	assert.Equal(t, "Database Systems|Clean Code", *c.Literature)
	assert.Equal(t, "10", c.Details.Credits)
	assert.NotEmpty(t, c.Embedding)
	assert.NotEmpty(t, c.Keywords)
}

func TestCorpusUpsert_WithoutLiteratureFlagHasNoData(t *testing.T) {
	setupTestServices(t)

	_, _, err := executeCommand(t, "corpus", "upsert", "--code", "X1", "--name", "X", "--content", "graph theory")
	require.NoError(t, err)

	c, err := corpusService.Get(context.Background(), "X1")
	require.NoError(t, err)
	assert.Nil(t, c.Literature)
}

func TestCorpusUpsert_EphemeralCode(t *testing.T) {
	setupTestServices(t)

	_, _, err := executeCommand(t, "corpus", "upsert", "--code", domain.EphemeralCode, "--name", "Candidate")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved")
}

func TestCorpusUpsert_RequiresCode(t *testing.T) {
	setupTestServices(t)

	_, _, err := executeCommand(t, "corpus", "upsert", "--name", "No Code")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"code"`)
}

func TestCorpusImport_FromDocument(t *testing.T) {
	setupTestServices(t)

	path := filepath.Join(t.TempDir(), "export.json")
	src, err := jsonfile.OpenCorpusStore(path)
	require.NoError(t, err)
	for _, c := range sampleCourses() {
		require.NoError(t, src.Upsert(context.Background(), c))
	}
	require.NoError(t, src.Close())

	out, _, err := executeCommand(t, "corpus", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 course(s)")

	courses, err := corpusService.List(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	for _, c := range courses {
		assert.NotEmpty(t, c.Embedding, c.Code)
	}
}

func TestCorpusImport_MissingFile(t *testing.T) {
	setupTestServices(t)

	_, _, err := executeCommand(t, "corpus", "import", filepath.Join(t.TempDir(), "missing.json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
}

func TestCorpusImport_RequiresOneSource(t *testing.T) {
	setupTestServices(t)

	_, _, err := executeCommand(t, "corpus", "import")
	require.Error(t, err)

	_, _, err = executeCommand(t, "corpus", "import", "file.json", "--sheet", "abc")
	require.Error(t, err)
}

func TestCorpusIndex_UpToDate(t *testing.T) {
	setupTestServices(t, sampleCourses()...)

	out, _, err := executeCommand(t, "corpus", "index")

	require.NoError(t, err)
	assert.Contains(t, out, "Corpus is up to date")
}
