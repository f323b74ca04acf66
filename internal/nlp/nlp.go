// Package nlp wraps sentence segmentation, word tokenization and part-of-speech tagging.
package nlp

// Token is a word token with an optional Penn Treebank part-of-speech tag.
type Token struct {
	Text string
	Tag  string
}

// Result holds the analysis of one text unit.
type Result struct {
	Sentences [][]Token
	Err       error
}

// Analyzer segments and tokenizes text.
type Analyzer interface {
	// Sentences splits text into trimmed, non-empty sentences.
	Sentences(text string) []string
	// Analyze splits each unit into sentences and tokenizes them. Results are index-aligned
	// with units; a failure affects only its own unit.
	Analyze(units []string) []Result
}
