// Package cluster groups patterns whose text embeddings are similar.
package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/verte-zerg/plminer/internal/logging"
	"github.com/verte-zerg/plminer/internal/model"
)

// DefaultThreshold is the cosine similarity a pattern needs to join a cluster.
const DefaultThreshold = 0.75

const collectionName = "patterns"

// Fields that can be clustered on.
var fieldGetters = map[string]func(model.Pattern) string{
	"pattern":  func(p model.Pattern) string { return p.Pattern },
	"name":     func(p model.Pattern) string { return p.Name },
	"title":    func(p model.Pattern) string { return p.Title },
	"summary":  func(p model.Pattern) string { return p.Summary },
	"problem":  func(p model.Pattern) string { return p.Problem },
	"solution": func(p model.Pattern) string { return p.Solution },
	"context":  func(p model.Pattern) string { return p.Context },
	"example":  func(p model.Pattern) string { return p.Example },
}

// Clusterer assigns cluster ids by greedy threshold grouping over an in-memory vector index.
type Clusterer struct {
	embedder  Embedder
	field     func(model.Pattern) string
	threshold float32
	logger    *zap.Logger
}

// New creates a clusterer over the named pattern field.
func New(embedder Embedder, field string, threshold float64, logger *zap.Logger) (*Clusterer, error) {
	get, ok := fieldGetters[strings.ToLower(field)]
	if !ok {
		return nil, fmt.Errorf("unsupported cluster field %q", field)
	}
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("--threshold must be in (0, 1]")
	}
	if embedder == nil {
		embedder = NewHashEmbedder(0)
	}
	return &Clusterer{embedder: embedder, field: get, threshold: float32(threshold), logger: logging.OrNop(logger)}, nil
}

// Cluster returns copies of the patterns that have the field set, each with a cluster id, in
// input order, plus the number of clusters. Each unassigned pattern seeds a cluster and absorbs
// every unassigned pattern at or above the threshold.
func (c *Clusterer) Cluster(ctx context.Context, patterns []model.Pattern) ([]model.Pattern, int, error) {
	db := chromem.NewDB()
	embed := func(ctx context.Context, text string) ([]float32, error) {
		return c.embedder.Embed(ctx, text)
	}
	collection, err := db.CreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, 0, fmt.Errorf("creating collection: %w", err)
	}

	var kept []model.Pattern
	var vectors [][]float32
	var docs []chromem.Document
	for _, p := range patterns {
		text := strings.TrimSpace(c.field(p))
		if text == "" {
			continue
		}
		vec, err := c.embedder.Embed(ctx, text)
		if err != nil {
			c.logger.Warn("skipping pattern that could not be embedded", zap.String("id", p.ID), zap.Error(err))
			continue
		}
		docs = append(docs, chromem.Document{
			ID:        strconv.Itoa(len(kept)),
			Content:   text,
			Embedding: vec,
		})
		kept = append(kept, p)
		vectors = append(vectors, vec)
	}
	if len(kept) == 0 {
		return nil, 0, nil
	}
	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		return nil, 0, fmt.Errorf("indexing patterns: %w", err)
	}

	assigned := make([]int, len(kept))
	for i := range assigned {
		assigned[i] = -1
	}
	clusters := 0
	for i := range kept {
		if assigned[i] >= 0 {
			continue
		}
		id := clusters
		clusters++
		assigned[i] = id
		results, err := collection.QueryEmbedding(ctx, vectors[i], collection.Count(), nil, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("querying neighbours: %w", err)
		}
		for _, r := range results {
			if r.Similarity < c.threshold {
				continue
			}
			j, err := strconv.Atoi(r.ID)
			if err != nil {
				return nil, 0, fmt.Errorf("unexpected document id %q", r.ID)
			}
			if assigned[j] < 0 {
				assigned[j] = id
			}
		}
	}

	out := make([]model.Pattern, len(kept))
	for i, p := range kept {
		id := assigned[i]
		p.Cluster = &id
		out[i] = p
	}
	c.logger.Info("clustered patterns", zap.Int("patterns", len(out)), zap.Int("clusters", clusters))
	return out, clusters, nil
}

// WriteReport writes the clustered patterns as a JSON array.
func WriteReport(path string, patterns []model.Pattern) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if patterns == nil {
		patterns = []model.Pattern{}
	}
	data, err := json.MarshalIndent(patterns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cluster report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
