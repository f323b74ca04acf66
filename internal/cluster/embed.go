package cluster

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// ErrEmptyEmbedding is returned for text that produces no features.
var ErrEmptyEmbedding = errors.New("text has no embeddable features")

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

const defaultDimensions = 512

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// HashEmbedder builds signed feature-hashed vectors from words and character trigrams.
// It needs no model and is deterministic.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates an embedder. Non-positive dims selects 512.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = defaultDimensions
	}
	return &HashEmbedder{dims: dims}
}

// Embed returns an L2-normalized vector.
func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, h.dims)
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	for _, w := range words {
		h.add(vec, "w:"+w, 1)
		padded := []rune("#" + w + "#")
		for i := 0; i+3 <= len(padded); i++ {
			h.add(vec, "t:"+string(padded[i:i+3]), 0.5)
		}
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return nil, ErrEmptyEmbedding
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

func (h *HashEmbedder) add(vec []float32, feature string, weight float32) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(feature))
	sum := hasher.Sum64()
	idx := int(sum % uint64(h.dims))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}
