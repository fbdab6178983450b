package textproc

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/lang/no"
	"golang.org/x/text/cases"
)

// domainStopwords covers pedagogical boilerplate in English and Norwegian
// plus administrative course-code prefixes. None of these terms says
// anything about what a course is actually about.
var domainStopwords = []string{
	// English
	"students", "student", "course", "courses", "module", "modules", "lecturer", "lecturers",
	"teacher", "teachers", "lecture", "lectures", "academic", "study", "studies", "degree",
	"degrees", "program", "programs", "syllabus", "syllabi", "curriculum", "curricula",
	"knowledge", "understand", "understanding", "understands", "skill", "skills", "competence",
	"competencies", "learning", "outcome", "outcomes", "objective", "objectives", "aim",
	"aims", "goal", "goals", "learn", "apply", "develop", "gain", "achieve", "explore",
	"examine", "analyze", "evaluate", "undergo", "include", "includes", "including",
	"provide", "provides", "provided", "offer", "offering", "offered", "cover", "covers",
	"covered", "require", "requires", "required", "assess", "assesses", "assessed",
	"assessment", "broad", "basic", "relevant", "important", "simple", "advanced",
	"completed", "acquire", "reflect", "reflecting", "ensure", "describe", "explain",
	"discuss", "create", "master", "calculate", "familiarize", "concepts", "methods",
	"theories", "problems", "results", "arguments", "conclusions", "answers", "reader",
	"assumptions", "models", "connections", "subjects", "topics", "tools", "data",
	"information", "technology", "systems", "techniques", "solutions", "challenges",
	"applications", "strategies", "completing", "end", "overview", "various", "able",
	"different", "candidates", "candidate", "address", "processes", "practice", "org",

	// Norwegian
	"studentene", "kunnskap", "forstå", "forstår", "ulike", "kurset", "ferdigheter", "kandidater",
	"kandidat", "inkludert", "adressere", "prosesser", "kunne", "øve", "organisasjon",
	"modul", "moduler", "kurs", "kursene", "studie", "studier", "grader", "programmer",
	"pensum", "pensumet", "pensumliste", "læreplan", "læreplaner", "kompetanse",
	"kunnskaper", "mål", "målsetting", "målene", "utvikle", "oppnå", "utforske",
	"undersøke", "analysere", "evaluere", "gjennomgå", "inkluderer", "inkludering", "gi",
	"tilby", "tilbyr", "dekke", "dekker", "dekking", "krever", "krevet", "vurdere",
	"vurderer", "vurdert", "bred", "grunnleggende", "viktig", "enkel", "avansert",
	"fullført", "skaffe", "reflektere", "beskrive", "forklare", "diskutere", "skape",
	"mestere", "beregne", "kjent", "begreper", "metoder", "teorier", "problemer",
	"resultater", "argumenter", "konklusjoner", "svar", "leser", "antagelser", "modeller",
	"forbindelser", "emner", "temaer", "verktøy", "informasjon", "teknologi", "systemer",
	"teknikker", "løsninger", "utfordringer", "applikasjoner", "strategier", "fullføring",
	"slutt", "oversikt",

	// Department and programme code prefixes
	"exc", "ele", "bmp", "gra", "bik", "bst", "smc", "slm", "man", "dre", "fork", "ent",
	"bøk", "lus", "jur", "fak", "met", "edi", "eba", "fin", "kls", "str", "bth", "mrk",
	"ems", "bin", "dig", "mad", "nsa",
}

// languageStopwords are the snowball stopword corpora for the working languages.
var languageStopwords = [][]byte{
	en.EnglishStopWords,
	no.NorwegianStopWords,
}

// StopwordSet is a case-folded set of tokens to drop during normalisation.
type StopwordSet struct {
	words     map[string]struct{}
	signature string
}

// NewStopwordSet builds the union of the language corpora, the domain list
// and any extra terms.
func NewStopwordSet(extra ...string) (*StopwordSet, error) {
	tm := analysis.NewTokenMap()
	for _, corpus := range languageStopwords {
		if err := tm.LoadBytes(corpus); err != nil {
			return nil, err
		}
	}
	for _, w := range domainStopwords {
		tm.AddToken(w)
	}
	for _, w := range extra {
		tm.AddToken(w)
	}

	words := make(map[string]struct{}, len(tm))
	for w := range tm {
		words[fold(w)] = struct{}{}
	}
	return &StopwordSet{words: words, signature: digest(words)}, nil
}

// Contains reports whether the case-folded token is a stopword.
func (s *StopwordSet) Contains(token string) bool {
	_, ok := s.words[fold(token)]
	return ok
}

// Len returns the number of distinct stopwords.
func (s *StopwordSet) Len() int {
	return len(s.words)
}

// Signature identifies the exact contents of the set.
func (s *StopwordSet) Signature() string {
	return s.signature
}

func digest(words map[string]struct{}) string {
	sorted := make([]string, 0, len(words))
	for w := range words {
		sorted = append(sorted, w)
	}
	sort.Strings(sorted)

	h := sha256.New()
	for _, w := range sorted {
		h.Write([]byte(w))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// fold returns the case-folded form of s.
// A Caser is stateful, so one is created per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
