package extract

import (
	"regexp"
	"strings"

	"github.com/verte-zerg/plminer/internal/model"
)

var blankLine = regexp.MustCompile(`\n\s*\n`)

// SplitOptions carries what the scope splitters need beyond the text.
type SplitOptions struct {
	BlockElements map[string]struct{}
	Sentences     func(text string) []string
}

type splitFunc func(text string, opts SplitOptions) []string

var splitters = map[model.Scope]splitFunc{
	model.LineScope:     splitLines,
	model.SentenceScope: splitSentences,
	model.BlockScope:    splitBlocks,
	model.DocumentScope: splitDocument,
}

// Split divides text into scope units. Unknown scopes fall back to the whole document.
func Split(text string, scope model.Scope, opts SplitOptions) []string {
	split, ok := splitters[scope]
	if !ok {
		split = splitDocument
	}
	return split(text, opts)
}

func splitLines(text string, _ SplitOptions) []string {
	return nonEmpty(strings.Split(text, "\n"))
}

func splitSentences(text string, opts SplitOptions) []string {
	if opts.Sentences == nil {
		return splitDocument(text, opts)
	}
	return nonEmpty(opts.Sentences(text))
}

func splitBlocks(text string, opts SplitOptions) []string {
	if _, ok := opts.BlockElements[model.ParagraphElement]; !ok {
		return splitDocument(text, opts)
	}
	return nonEmpty(blankLine.Split(text, -1))
}

func splitDocument(text string, _ SplitOptions) []string {
	return nonEmpty([]string{text})
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
