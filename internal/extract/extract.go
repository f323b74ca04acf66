// Package extract mines frequent n-gram patterns from a corpus.
package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/plminer/internal/loader"
	"github.com/verte-zerg/plminer/internal/logging"
	"github.com/verte-zerg/plminer/internal/model"
	"github.com/verte-zerg/plminer/internal/nlp"
)

// Stats summarizes an extraction run.
type Stats struct {
	Documents       int
	Units           int
	UnitErrors      int
	Sentences       int
	ShortSentences  int
	POSRejected     int
	DistinctNgrams  int
	PatternsEmitted int
}

// Result is the output of an extraction run.
type Result struct {
	Records []model.PatternRecord
	Stats   Stats
}

// Extractor runs the scope → tokenize → filter → count → rank pipeline.
type Extractor struct {
	cfg      model.ExtractConfig
	analyzer nlp.Analyzer
	gate     posGate
	logger   *zap.Logger
}

// New validates cfg and builds an extractor.
func New(cfg model.ExtractConfig, analyzer nlp.Analyzer, logger *zap.Logger) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	return &Extractor{
		cfg:      cfg,
		analyzer: analyzer,
		gate:     newPOSGate(cfg),
		logger:   logging.OrNop(logger),
	}, nil
}

// Run loads the documents under root and extracts patterns from them.
func (e *Extractor) Run(ctx context.Context, root string) (Result, error) {
	docs, err := loader.Load(ctx, root, e.cfg.FileType, e.logger)
	if err != nil {
		return Result{}, err
	}
	return e.Extract(ctx, docs)
}

// Extract counts n-grams across all docs and returns those meeting the frequency threshold.
// An empty corpus yields an empty result, not an error.
func (e *Extractor) Extract(ctx context.Context, docs []model.Document) (Result, error) {
	counter := NewCounter(e.cfg.NgramMin, e.cfg.NgramMax)
	stats := Stats{Documents: len(docs)}
	opts := SplitOptions{
		BlockElements: e.cfg.BlockElements,
		Sentences:     e.analyzer.Sentences,
	}
	minTokens := e.cfg.MinSentenceTokens()

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		units := Split(doc.Text, e.cfg.Scope, opts)
		for i, unit := range units {
			units[i] = strings.ToLower(unit)
		}
		stats.Units += len(units)
		for i, res := range e.analyzer.Analyze(units) {
			if res.Err != nil {
				stats.UnitErrors++
				e.logger.Warn("skipping unit that failed analysis",
					zap.String("path", doc.Path),
					zap.Int("unit", i),
					zap.Error(res.Err),
				)
				continue
			}
			for _, sentence := range res.Sentences {
				stats.Sentences++
				if len(sentence) < minTokens {
					stats.ShortSentences++
					continue
				}
				if !e.gate(sentence) {
					stats.POSRejected++
					continue
				}
				counter.Add(lowerTexts(sentence), doc.Path)
			}
		}
		e.logger.Debug("processed document", zap.String("path", doc.Path), zap.Int("units", len(units)))
	}

	records := counter.Records(e.cfg.FrequencyThreshold)
	stats.DistinctNgrams = counter.Len()
	stats.PatternsEmitted = len(records)
	return Result{Records: records, Stats: stats}, nil
}

func lowerTexts(tokens []nlp.Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = strings.ToLower(tok.Text)
	}
	return out
}
