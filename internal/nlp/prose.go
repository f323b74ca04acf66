package nlp

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jdkato/prose/v2"
	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

const defaultCacheSize = 4096

// ProseAnalyzer implements Analyzer with punkt segmentation and the prose tokenizer and tagger.
type ProseAnalyzer struct {
	segmenter *sentences.DefaultSentenceTokenizer
	tagging   bool
	cache     *lru.Cache[string, [][]Token]
}

// NewProseAnalyzer builds an analyzer. When tagging is false tokens carry no tags.
// cacheSize bounds the number of analyzed units kept in memory; <= 0 selects a default.
func NewProseAnalyzer(tagging bool, cacheSize int) (*ProseAnalyzer, error) {
	segmenter, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence model: %w", err)
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, [][]Token](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis cache: %w", err)
	}
	return &ProseAnalyzer{segmenter: segmenter, tagging: tagging, cache: cache}, nil
}

// Sentences implements Analyzer.
func (a *ProseAnalyzer) Sentences(text string) []string {
	var out []string
	for _, s := range a.segmenter.Tokenize(text) {
		trimmed := strings.TrimSpace(s.Text)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// Analyze implements Analyzer. All uncached units are tagged in one pass so the tagger model
// is loaded once per call.
func (a *ProseAnalyzer) Analyze(units []string) []Result {
	results := make([]Result, len(units))
	texts := make(map[int][]string)
	var pending []int
	for i, unit := range units {
		if cached, ok := a.cache.Get(unit); ok {
			results[i].Sentences = cached
			continue
		}
		sentTexts, sents, err := a.tokenizeUnit(unit)
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].Sentences = sents
		texts[i] = sentTexts
		pending = append(pending, i)
	}

	if a.tagging && len(pending) > 0 {
		if err := a.tagBatch(results, texts, pending); err != nil {
			for _, i := range pending {
				results[i].Err = a.tagUnit(results[i].Sentences, texts[i])
			}
		}
	}

	for _, i := range pending {
		if results[i].Err == nil {
			a.cache.Add(units[i], results[i].Sentences)
		}
	}
	return results
}

func (a *ProseAnalyzer) tokenizeUnit(unit string) ([]string, [][]Token, error) {
	var texts []string
	var out [][]Token
	for _, sentence := range a.Sentences(unit) {
		toks, err := tokenize(sentence, false)
		if err != nil {
			return nil, nil, err
		}
		if len(toks) > 0 {
			texts = append(texts, sentence)
			out = append(out, toks)
		}
	}
	return texts, out, nil
}

// tagBatch tags every pending sentence with a single document. The tokenizer splits on
// whitespace first, so the joined token stream lines up with the per-sentence streams.
func (a *ProseAnalyzer) tagBatch(results []Result, texts map[int][]string, pending []int) error {
	var joined []string
	total := 0
	for _, i := range pending {
		joined = append(joined, texts[i]...)
		for _, sent := range results[i].Sentences {
			total += len(sent)
		}
	}
	if total == 0 {
		return nil
	}
	tagged, err := tokenize(strings.Join(joined, "\n"), true)
	if err != nil {
		return err
	}
	if len(tagged) != total {
		return fmt.Errorf("tagger produced %d tokens, expected %d", len(tagged), total)
	}
	pos := 0
	for _, i := range pending {
		for _, sent := range results[i].Sentences {
			for j := range sent {
				if tagged[pos].Text != sent[j].Text {
					return fmt.Errorf("tagger token %q does not match %q", tagged[pos].Text, sent[j].Text)
				}
				sent[j].Tag = tagged[pos].Tag
				pos++
			}
		}
	}
	return nil
}

func (a *ProseAnalyzer) tagUnit(sents [][]Token, texts []string) error {
	for k, sent := range sents {
		tagged, err := tokenize(texts[k], true)
		if err != nil {
			return err
		}
		if len(tagged) != len(sent) {
			return fmt.Errorf("tagger produced %d tokens for a %d token sentence", len(tagged), len(sent))
		}
		for j := range sent {
			sent[j].Tag = tagged[j].Tag
		}
	}
	return nil
}

func tokenize(text string, tagging bool) ([]Token, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
		prose.WithTagging(tagging),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize: %w", err)
	}
	toks := doc.Tokens()
	out := make([]Token, 0, len(toks))
	for _, tok := range toks {
		if strings.TrimSpace(tok.Text) == "" {
			continue
		}
		out = append(out, Token{Text: tok.Text, Tag: tok.Tag})
	}
	return out, nil
}
