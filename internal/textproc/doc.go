// Package textproc turns raw course text into normalised text and ranked
// keyword phrases.
//
// Normalisation tokenises on Unicode word boundaries, drops the union of the
// English and Norwegian stopword corpora plus a curated list of course
// boilerplate, drops numeric tokens, and re-joins the survivors. Keyword
// extraction runs RAKE over the normalised text.
//
// Everything here is deterministic for a fixed stopword set.
package textproc
