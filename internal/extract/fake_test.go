package extract

import (
	"errors"
	"strings"

	"github.com/verte-zerg/plminer/internal/nlp"
)

// fakeAnalyzer splits sentences on '.' and tokens on whitespace, keeping the period as its own
// token. Tags come from the tags map; unknown words are tagged NN.
type fakeAnalyzer struct {
	tags map[string]string
	fail map[string]bool
}

func (f fakeAnalyzer) Sentences(text string) []string {
	var out []string
	for _, part := range strings.SplitAfter(text, ".") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (f fakeAnalyzer) Analyze(units []string) []nlp.Result {
	results := make([]nlp.Result, len(units))
	for i, unit := range units {
		if f.fail[unit] {
			results[i].Err = errors.New("analysis failed")
			continue
		}
		for _, sentence := range f.Sentences(unit) {
			var toks []nlp.Token
			for _, word := range strings.Fields(sentence) {
				if strings.HasSuffix(word, ".") && word != "." {
					toks = append(toks, f.token(strings.TrimSuffix(word, ".")), nlp.Token{Text: ".", Tag: "."})
					continue
				}
				toks = append(toks, f.token(word))
			}
			results[i].Sentences = append(results[i].Sentences, toks)
		}
	}
	return results
}

func (f fakeAnalyzer) token(word string) nlp.Token {
	tag, ok := f.tags[strings.ToLower(word)]
	if !ok {
		tag = "NN"
	}
	return nlp.Token{Text: word, Tag: tag}
}

// recordingAnalyzer keeps the units handed to Analyze.
type recordingAnalyzer struct {
	fakeAnalyzer
	units *[]string
}

func (r recordingAnalyzer) Analyze(units []string) []nlp.Result {
	*r.units = append(*r.units, units...)
	return r.fakeAnalyzer.Analyze(units)
}
