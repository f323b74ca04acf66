package patternfile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/plminer/internal/model"
)

const (
	chunkLevel      = "chunk"
	defaultContext  = "Discovered through frequency analysis."
	defaultProblem  = "Frequent phrasing may signal reusable content."
	unknownDocument = "N/A"
)

// FromRecords converts ranked records into persisted patterns with ids pattern-1..pattern-N,
// then links contained n-grams as subpatterns.
func FromRecords(records []model.PatternRecord) []model.Pattern {
	patterns := make([]model.Pattern, len(records))
	for i, r := range records {
		sources := make([]model.Source, 0, len(r.Sources))
		for _, s := range r.Sources {
			sources = append(sources, model.Source{Document: s})
		}
		if len(sources) == 0 {
			sources = append(sources, model.Source{Document: unknownDocument})
		}
		patterns[i] = model.Pattern{
			ID:        fmt.Sprintf("pattern-%d", i+1),
			Name:      r.Pattern,
			Pattern:   r.Pattern,
			Frequency: r.Frequency,
			Level:     chunkLevel,
			Context:   defaultContext,
			Problem:   defaultProblem,
			Solution:  r.Pattern,
			Example:   r.Pattern,
			Sources:   sources,
		}
	}
	LinkSubpatterns(patterns)
	return patterns
}

// LinkSubpatterns fills Subpatterns with the ids of shorter patterns whose tokens occur
// contiguously inside each pattern, and Superpattern with the first (most frequent) pattern
// containing it. Only the sub-windows of each pattern are looked up, so the cost grows with
// the number of patterns times the square of their token length.
func LinkSubpatterns(patterns []model.Pattern) {
	index := make(map[string]int, len(patterns))
	tokens := make([][]string, len(patterns))
	for i, p := range patterns {
		tokens[i] = strings.Fields(p.Pattern)
		if len(tokens[i]) == 0 {
			continue
		}
		key := strings.Join(tokens[i], " ")
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}

	for i := range patterns {
		words := tokens[i]
		var found []int
		seen := make(map[int]struct{})
		for n := 1; n < len(words); n++ {
			for start := 0; start+n <= len(words); start++ {
				j, ok := index[strings.Join(words[start:start+n], " ")]
				if !ok || j == i {
					continue
				}
				if _, dup := seen[j]; dup {
					continue
				}
				seen[j] = struct{}{}
				found = append(found, j)
			}
		}
		sort.Ints(found)
		for _, j := range found {
			patterns[i].Subpatterns = append(patterns[i].Subpatterns, patterns[j].ID)
			if patterns[j].Superpattern == "" {
				patterns[j].Superpattern = patterns[i].ID
			}
		}
	}
}
