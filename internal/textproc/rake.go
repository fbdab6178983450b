package textproc

import (
	"sort"
	"strings"
)

// SignificanceThreshold is the score a phrase must exceed to be used when
// annotating overlap results.
const SignificanceThreshold = 1.0

// Phrase is a ranked keyword phrase.
type Phrase struct {
	Text  string
	Score float64
}

// KeywordExtractor ranks phrases with RAKE: candidate phrases are runs of
// words between delimiters, each word is scored by degree/frequency over the
// co-occurrence graph, and a phrase scores the sum of its words.
type KeywordExtractor struct {
	stopwords *StopwordSet
}

// NewKeywordExtractor creates an extractor. Stopwords still present in the
// text act as phrase delimiters; stopwords may be nil.
func NewKeywordExtractor(stopwords *StopwordSet) *KeywordExtractor {
	return &KeywordExtractor{stopwords: stopwords}
}

// Extract returns distinct phrases ordered by descending score.
// Repeated phrases count towards word degree and frequency but are listed
// once. Equal scores keep first-occurrence order. Empty input yields nil.
func (e *KeywordExtractor) Extract(text string) []Phrase {
	phrases := e.candidates(text)
	if len(phrases) == 0 {
		return nil
	}

	freq := make(map[string]int)
	degree := make(map[string]int)
	for _, words := range phrases {
		for _, w := range words {
			freq[w]++
			degree[w] += len(words)
		}
	}

	ranked := make([]Phrase, 0, len(phrases))
	seen := make(map[string]bool, len(phrases))
	for _, words := range phrases {
		key := strings.Join(words, " ")
		if seen[key] {
			continue
		}
		seen[key] = true

		var score float64
		for _, w := range words {
			score += float64(degree[w]) / float64(freq[w])
		}
		ranked = append(ranked, Phrase{Text: key, Score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Ranked returns every phrase text in rank order.
func (e *KeywordExtractor) Ranked(text string) []string {
	phrases := e.Extract(text)
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, p.Text)
	}
	return out
}

// Significant returns phrase texts scoring above SignificanceThreshold.
func (e *KeywordExtractor) Significant(text string) []string {
	var out []string
	for _, p := range e.Extract(text) {
		if p.Score > SignificanceThreshold {
			out = append(out, p.Text)
		}
	}
	return out
}

// candidates splits text into phrases of case-folded words, in order and
// including repeats.
func (e *KeywordExtractor) candidates(text string) [][]string {
	var phrases [][]string
	var current []string
	flush := func() {
		if len(current) > 0 {
			phrases = append(phrases, current)
			current = nil
		}
	}

	for _, tok := range Tokenize(text) {
		if !tok.Word || (e.stopwords != nil && e.stopwords.Contains(tok.Text)) {
			flush()
			continue
		}
		current = append(current, fold(tok.Text))
	}
	flush()
	return phrases
}

// JoinPhrases renders a phrase list as a display string.
func JoinPhrases(phrases []string) string {
	return strings.Join(phrases, ", ")
}
