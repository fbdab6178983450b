package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormaliser(t *testing.T, extra ...string) *Normaliser {
	t.Helper()
	set, err := NewStopwordSet(extra...)
	require.NoError(t, err)
	return NewNormaliser(set)
}

func TestNormalise(t *testing.T) {
	n := newTestNormaliser(t)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"english stopwords and numbers", "The course covers neural networks and graph theory in 2024.", "neural networks graph theory ."},
		{"case preserved, folded for lookup", "NEURAL Networks AND Graphs", "NEURAL Networks Graphs"},
		{"norwegian stopwords", "Innføring i databaser og SQL", "Innføring databaser SQL"},
		{"decimal numbers", "Version 3.14 has 200 pages", "Version pages"},
		{"whitespace collapsed", "  graph \n\t theory  ", "graph theory"},
		{"empty", "", ""},
		{"only stopwords", "the and of", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalise(tt.in))
		})
	}
}

func TestNormalise_Idempotent(t *testing.T) {
	n := newTestNormaliser(t)
	inputs := []string{
		"The course covers neural networks and graph theory in 2024.",
		"Studentene skal kunne forstå grunnleggende databaser, SQL og normalisering.",
		"Knowledge: students understand supply-chain logistics (3 ECTS)!",
		"",
	}
	for _, in := range inputs {
		once := n.Normalise(in)
		assert.Equal(t, once, n.Normalise(once), in)
	}
}

func TestNormalise_ExtraStopwords(t *testing.T) {
	n := newTestNormaliser(t, "Graph")
	assert.Equal(t, "theory", n.Normalise("graph theory"))
}

func TestNormalise_InvalidUTF8(t *testing.T) {
	n := newTestNormaliser(t)
	assert.Equal(t, "graph theory", n.Normalise("graph \xff theory"))
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Graph theory, 42 nodes.")
	require.Len(t, tokens, 6)

	assert.Equal(t, Token{Text: "Graph", Word: true}, tokens[0])
	assert.Equal(t, Token{Text: "theory", Word: true}, tokens[1])
	assert.Equal(t, Token{Text: ","}, tokens[2])
	assert.Equal(t, Token{Text: "42", Numeric: true, Word: true}, tokens[3])
	assert.Equal(t, Token{Text: "nodes", Word: true}, tokens[4])
	assert.Equal(t, Token{Text: "."}, tokens[5])
}

func TestNormaliser_Signature(t *testing.T) {
	a := newTestNormaliser(t)
	b := newTestNormaliser(t)
	c := newTestNormaliser(t, "graph")

	assert.Equal(t, a.Signature(), b.Signature())
	assert.NotEqual(t, a.Signature(), c.Signature())
	assert.Len(t, a.Signature(), 16)
	assert.Same(t, a.stopwords, a.Stopwords())
}
