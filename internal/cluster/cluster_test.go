package cluster

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/plminer/internal/model"
)

type fixedEmbedder map[string][]float32

func (f fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec, ok := f[text]
	if !ok {
		return nil, errors.New("unknown text")
	}
	return vec, nil
}

func TestClusterGreedyThreshold(t *testing.T) {
	embedder := fixedEmbedder{
		"a":  {1, 0, 0},
		"a2": {0.9, 0.1, 0},
		"b":  {0, 1, 0},
		"c":  {0, 0, 1},
		"b2": {0.05, 0.95, 0},
	}
	c, err := New(embedder, "solution", DefaultThreshold, nil)
	require.NoError(t, err)

	patterns := []model.Pattern{
		{ID: "p1", Solution: "a"},
		{ID: "p2", Solution: "b"},
		{ID: "p3", Solution: "a2"},
		{ID: "p4"},
		{ID: "p5", Solution: "c"},
		{ID: "p6", Solution: "b2"},
		{ID: "p7", Solution: "unknown"},
	}
	out, n, err := c.Cluster(context.Background(), patterns)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got := map[string]int{}
	for _, p := range out {
		require.NotNil(t, p.Cluster)
		got[p.ID] = *p.Cluster
	}
	assert.Equal(t, map[string]int{"p1": 0, "p3": 0, "p2": 1, "p6": 1, "p5": 2}, got)
	assert.Nil(t, patterns[0].Cluster, "input must not be mutated")
}

func TestClusterHashEmbedder(t *testing.T) {
	c, err := New(nil, "pattern", DefaultThreshold, nil)
	require.NoError(t, err)

	out, n, err := c.Cluster(context.Background(), []model.Pattern{
		{ID: "p1", Pattern: "install the package"},
		{ID: "p2", Pattern: "Install the package"},
		{ID: "p3", Pattern: "zebra quokka walrus"},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 2, n)
	assert.Equal(t, *out[0].Cluster, *out[1].Cluster)
	assert.NotEqual(t, *out[0].Cluster, *out[2].Cluster)
}

func TestClusterEmpty(t *testing.T) {
	c, err := New(nil, "solution", DefaultThreshold, nil)
	require.NoError(t, err)
	out, n, err := c.Cluster(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, n)
}

func TestNewValidates(t *testing.T) {
	_, err := New(nil, "color", DefaultThreshold, nil)
	assert.Error(t, err)
	_, err = New(nil, "solution", 1.5, nil)
	assert.Error(t, err)
}

func TestHashEmbedder(t *testing.T) {
	h := NewHashEmbedder(64)
	vec, err := h.Embed(context.Background(), "Restart the service")
	require.NoError(t, err)
	require.Len(t, vec, 64)
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-4)

	again, err := h.Embed(context.Background(), "restart THE service")
	require.NoError(t, err)
	assert.Equal(t, vec, again)

	_, err = h.Embed(context.Background(), " -- ")
	assert.ErrorIs(t, err, ErrEmptyEmbedding)
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report", "clusters.json")
	id := 2
	require.NoError(t, WriteReport(path, []model.Pattern{{ID: "p1", Pattern: "a b", Cluster: &id}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, float64(2), got[0]["cluster"])
}
