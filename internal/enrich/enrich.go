// Package enrich adds inferred metadata to extracted patterns.
package enrich

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/verte-zerg/plminer/internal/logging"
	"github.com/verte-zerg/plminer/internal/model"
	"github.com/verte-zerg/plminer/internal/nlp"
	"github.com/verte-zerg/plminer/internal/patternfile"
)

const (
	untitled       = "Untitled"
	noSolution     = "No solution provided."
	unknownProblem = "Unknown problem."
	procedureType  = "procedure"
	referenceType  = "reference"
)

var keywordPattern = regexp.MustCompile(`[A-Za-z0-9-]+`)

// problemRules map solution verbs to a problem statement. The first match wins.
var problemRules = []struct {
	verbs   []string
	problem string
}{
	{[]string{"install"}, "Software is not installed."},
	{[]string{"restart"}, "Service is not running properly."},
	{[]string{"remove", "delete"}, "Resource needs to be deleted."},
}

// Enricher fills title, summary, problem, keywords and tags. With an analyzer it also derives
// noun concepts and an information type from part-of-speech tags.
type Enricher struct {
	tags     *TagExtractor
	analyzer nlp.Analyzer
	logger   *zap.Logger
}

// New creates an enricher. analyzer may be nil.
func New(tags *TagExtractor, analyzer nlp.Analyzer, logger *zap.Logger) *Enricher {
	if tags == nil {
		tags = NewTagExtractor(nil)
	}
	return &Enricher{tags: tags, analyzer: analyzer, logger: logging.OrNop(logger)}
}

// Enrich returns a copy of p with inferred fields populated. Existing title, summary and
// problem values are kept; keywords are always recomputed.
func (e *Enricher) Enrich(p model.Pattern) model.Pattern {
	out := p
	solution := strings.TrimSpace(p.Solution)

	if out.Title == "" {
		out.Title = untitled
		if solution != "" {
			out.Title = capitalize(solution)
		}
	}
	if out.Summary == "" {
		out.Summary = noSolution
		if solution != "" {
			out.Summary = fmt.Sprintf("This pattern proposes the solution “%s”.", solution)
		}
	}
	if out.Problem == "" {
		out.Problem = InferProblem(solution)
	}
	out.Keywords = Keywords(solution)
	out.Tags = e.tags.ExtractTags(out.Keywords)
	if e.analyzer != nil && solution != "" {
		out.Concepts, out.InfoType = e.concepts(solution, p.InfoType)
	}
	return out
}

func (e *Enricher) concepts(solution, infoType string) ([]string, string) {
	res := e.analyzer.Analyze([]string{solution})
	if len(res) == 0 || res[0].Err != nil {
		if len(res) > 0 {
			e.logger.Warn("failed to tag solution", zap.String("solution", solution), zap.Error(res[0].Err))
		}
		return nil, infoType
	}
	seen := make(map[string]struct{})
	var concepts []string
	for i, sentence := range res[0].Sentences {
		for j, tok := range sentence {
			if i == 0 && j == 0 && infoType == "" {
				infoType = referenceType
				if strings.HasPrefix(tok.Tag, "VB") {
					infoType = procedureType
				}
			}
			if !strings.HasPrefix(tok.Tag, "NN") {
				continue
			}
			word := strings.ToLower(tok.Text)
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			concepts = append(concepts, word)
		}
	}
	return concepts, infoType
}

// InferProblem maps solution verbs to a problem statement.
func InferProblem(solution string) string {
	lower := strings.ToLower(solution)
	for _, rule := range problemRules {
		for _, verb := range rule.verbs {
			if strings.Contains(lower, verb) {
				return rule.problem
			}
		}
	}
	return unknownProblem
}

// Keywords returns the lowercase [A-Za-z0-9-]+ tokens of text in first-seen order without
// duplicates.
func Keywords(text string) []string {
	seen := make(map[string]struct{})
	keywords := []string{}
	for _, tok := range keywordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Stats counts what a batch run did.
type Stats struct {
	Enriched int
	Failed   int
}

// Run enriches every pattern file in inDir and writes it to outDir under the same name.
func (e *Enricher) Run(inDir, outDir string) (Stats, error) {
	files, err := patternfile.Load(inDir, e.logger)
	if err != nil {
		return Stats{}, err
	}
	w, err := patternfile.NewDirWriter(outDir, patternfile.FormatYAML)
	if err != nil {
		return Stats{}, err
	}
	e.logger.Info("enriching pattern files", zap.Int("count", len(files)), zap.String("input", inDir))

	var stats Stats
	for _, f := range files {
		if err := w.WriteNamed(f.Name, e.Enrich(f.Pattern)); err != nil {
			stats.Failed++
			e.logger.Warn("failed to write enriched pattern", zap.String("file", f.Name), zap.Error(err))
			continue
		}
		stats.Enriched++
	}
	e.logger.Info("enrichment complete", zap.Int("enriched", stats.Enriched), zap.String("output", outDir))
	return stats, nil
}
