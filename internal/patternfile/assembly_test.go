package patternfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/plminer/internal/model"
)

func TestAssembleKeepsCompositePatterns(t *testing.T) {
	patterns := []model.Pattern{
		{ID: "p1", Name: "install the package", Subpatterns: []string{"p2", "p3"}, Summary: "setup"},
		{ID: "p2", Name: "install the"},
		{ID: "p4", Subpatterns: []string{"p2"}},
		{ID: "p5", Name: "install the package", Subpatterns: []string{"p3"}},
	}

	entries := Assemble(patterns)
	require.Len(t, entries, 2)
	assert.Equal(t, "install the package", entries[0].Name)
	assert.Equal(t, []string{"p3"}, entries[0].Structure)
	assert.Equal(t, "p4", entries[1].Name)
}

func TestEncodeAssemblyOrder(t *testing.T) {
	data, err := EncodeAssembly([]AssemblyEntry{
		{Name: "zeta", Structure: []string{"p2"}, Notes: "n"},
		{Name: "alpha", Structure: []string{"p3", "p1"}},
	})
	require.NoError(t, err)

	var root yaml.Node
	require.NoError(t, yaml.Unmarshal(data, &root))
	require.Len(t, root.Content, 1)
	top := root.Content[0]
	require.Len(t, top.Content, 2)
	assert.Equal(t, "document_patterns", top.Content[0].Value)
	body := top.Content[1]
	require.Len(t, body.Content, 4)
	assert.Equal(t, "zeta", body.Content[0].Value)
	assert.Equal(t, "alpha", body.Content[2].Value)

	var alpha AssemblyEntry
	require.NoError(t, body.Content[3].Decode(&alpha))
	assert.Equal(t, []string{"p3", "p1"}, alpha.Structure)
	assert.Empty(t, alpha.Notes)
}

func TestWriteAssemblyFromRecords(t *testing.T) {
	patterns := FromRecords([]model.PatternRecord{
		{Pattern: "the package", Frequency: 3, Length: 2},
		{Pattern: "install the package", Frequency: 2, Length: 3},
	})
	path := filepath.Join(t.TempDir(), "out", "assembly.yaml")

	n, err := WriteAssembly(path, patterns)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded struct {
		DocumentPatterns map[string]AssemblyEntry `yaml:"document_patterns"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"pattern-1"}, decoded.DocumentPatterns["install the package"].Structure)
}
