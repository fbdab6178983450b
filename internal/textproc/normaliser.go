package textproc

import (
	"strings"
	"unicode"

	"github.com/blevesearch/segment"
)

// Normaliser strips stopwords and numeric tokens from course text.
// It is pure and safe for concurrent use once constructed.
type Normaliser struct {
	stopwords *StopwordSet
}

// NewNormaliser creates a normaliser over the given stopword set.
func NewNormaliser(stopwords *StopwordSet) *Normaliser {
	return &Normaliser{stopwords: stopwords}
}

// Stopwords returns the set used for filtering.
func (n *Normaliser) Stopwords() *StopwordSet {
	return n.stopwords
}

// Signature identifies the normalisation rules in effect.
func (n *Normaliser) Signature() string {
	return n.stopwords.Signature()
}

// Normalise tokenises raw on Unicode word boundaries, drops stopwords and
// numbers, and re-joins the survivors with single spaces in their
// original order. Punctuation tokens are kept; they delimit keyword phrases.
func (n *Normaliser) Normalise(raw string) string {
	tokens := Tokenize(raw)
	kept := tokens[:0]
	for _, tok := range tokens {
		if tok.Numeric || n.stopwords.Contains(tok.Text) {
			continue
		}
		kept = append(kept, tok)
	}

	var b strings.Builder
	for i, tok := range kept {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

// Token is one non-whitespace segment of text.
type Token struct {
	Text    string
	Numeric bool
	Word    bool
}

// Tokenize splits text into UAX#29 word segments, skipping whitespace.
func Tokenize(text string) []Token {
	text = strings.ToValidUTF8(text, "")
	seg := segment.NewWordSegmenterDirect([]byte(text))

	var tokens []Token
	for seg.Segment() {
		raw := string(seg.Bytes())
		if strings.TrimSpace(raw) == "" {
			continue
		}
		typ := seg.Type()
		tokens = append(tokens, Token{
			Text:    raw,
			Numeric: typ == segment.Number || isDigits(raw),
			Word:    typ != segment.None,
		})
	}
	if seg.Err() != nil {
		return fieldTokens(text)
	}
	return tokens
}

// fieldTokens is the whitespace fallback for input the segmenter rejects.
func fieldTokens(text string) []Token {
	fields := strings.Fields(text)
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, Token{Text: f, Numeric: isDigits(f), Word: hasLetterOrDigit(f)})
	}
	return tokens
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
