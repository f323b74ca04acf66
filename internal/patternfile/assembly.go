package patternfile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/plminer/internal/model"
)

const unnamedPattern = "unnamed_pattern"

// AssemblyEntry lists the parts a composite pattern is built from.
type AssemblyEntry struct {
	Name      string   `yaml:"-"`
	Structure []string `yaml:"structure"`
	Notes     string   `yaml:"notes"`
}

// Assemble returns one entry per pattern that has subpatterns, in input order. A repeated name
// keeps its first position and takes the later structure.
func Assemble(patterns []model.Pattern) []AssemblyEntry {
	var entries []AssemblyEntry
	byName := make(map[string]int)
	for _, p := range patterns {
		if len(p.Subpatterns) == 0 {
			continue
		}
		name := p.Name
		if name == "" {
			name = p.ID
		}
		if name == "" {
			name = unnamedPattern
		}
		entry := AssemblyEntry{
			Name:      name,
			Structure: append([]string(nil), p.Subpatterns...),
			Notes:     p.Summary,
		}
		if i, ok := byName[name]; ok {
			entries[i] = entry
			continue
		}
		byName[name] = len(entries)
		entries = append(entries, entry)
	}
	return entries
}

// EncodeAssembly renders entries under a document_patterns mapping, keeping entry order.
func EncodeAssembly(entries []AssemblyEntry) ([]byte, error) {
	body := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		value := &yaml.Node{}
		if err := value.Encode(e); err != nil {
			return nil, fmt.Errorf("failed to encode assembly %q: %w", e.Name, err)
		}
		body.Content = append(body.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: e.Name}, value)
	}
	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "document_patterns"},
			body,
		},
	}
	return yaml.Marshal(doc)
}

// WriteAssembly writes the assembly of patterns to path and returns the number of entries.
func WriteAssembly(path string, patterns []model.Pattern) (int, error) {
	entries := Assemble(patterns)
	data, err := EncodeAssembly(entries)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write assembly: %w", err)
	}
	return len(entries), nil
}
