// Package model defines shared data structures.
package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Scope selects the unit of text n-grams are generated within.
type Scope int

const (
	// DocumentScope treats the whole document as a single unit.
	DocumentScope Scope = iota
	// LineScope splits on newlines.
	LineScope
	// SentenceScope splits on sentence boundaries.
	SentenceScope
	// BlockScope splits on blank-line delimited paragraphs.
	BlockScope
)

// ParseScope maps a config value to a Scope. Unknown values map to DocumentScope.
func ParseScope(value string) Scope {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "line":
		return LineScope
	case "sentence":
		return SentenceScope
	case "block":
		return BlockScope
	default:
		return DocumentScope
	}
}

func (s Scope) String() string {
	switch s {
	case LineScope:
		return "line"
	case SentenceScope:
		return "sentence"
	case BlockScope:
		return "block"
	default:
		return "document"
	}
}

// ParagraphElement is the block element that enables paragraph splitting in block scope.
const ParagraphElement = "paragraph"

// ExtractConfig defines pattern extraction settings.
type ExtractConfig struct {
	FileType           string
	FrequencyThreshold int
	MinimumTokenCount  int
	Scope              Scope
	POSFiltering       bool
	AllowedPOSTags     map[string]struct{}
	BlockElements      map[string]struct{}
	NgramMin           int
	NgramMax           int
}

// DefaultExtractConfig returns the documented defaults.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		FileType:           "txt",
		FrequencyThreshold: 2,
		MinimumTokenCount:  1,
		Scope:              SentenceScope,
		AllowedPOSTags:     map[string]struct{}{},
		BlockElements:      map[string]struct{}{ParagraphElement: {}},
		NgramMin:           2,
		NgramMax:           5,
	}
}

// MinSentenceTokens is the smallest token count a sentence needs to contribute n-grams.
func (c ExtractConfig) MinSentenceTokens() int {
	if c.NgramMin > c.MinimumTokenCount {
		return c.NgramMin
	}
	return c.MinimumTokenCount
}

// HasBlockElement reports whether name is configured as a block element.
func (c ExtractConfig) HasBlockElement(name string) bool {
	_, ok := c.BlockElements[name]
	return ok
}

// FieldError reports an invalid configuration field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("pattern_extraction.%s: %s", e.Field, e.Reason)
}

// Validate checks the configuration and returns a *FieldError for the first invalid field.
func (c ExtractConfig) Validate() error {
	if strings.TrimSpace(c.FileType) == "" {
		return &FieldError{Field: "file_type", Reason: "must not be empty"}
	}
	if strings.ContainsAny(c.FileType, `/\`) {
		return &FieldError{Field: "file_type", Reason: "must be a bare extension"}
	}
	if c.FrequencyThreshold < 1 {
		return &FieldError{Field: "frequency_threshold", Reason: "must be >= 1"}
	}
	if c.MinimumTokenCount < 1 {
		return &FieldError{Field: "minimum_token_count", Reason: "must be >= 1"}
	}
	if c.NgramMin < 1 {
		return &FieldError{Field: "ngram_min", Reason: "must be >= 1"}
	}
	if c.NgramMax < c.NgramMin {
		return &FieldError{Field: "ngram_max", Reason: fmt.Sprintf("must be >= ngram_min (%d)", c.NgramMin)}
	}
	if c.POSFiltering && len(c.AllowedPOSTags) == 0 {
		return &FieldError{Field: "allowed_pos_tags", Reason: "must not be empty when pos_filtering is enabled"}
	}
	return nil
}

// SortedSet returns the members of a string set in ascending order.
func SortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NewSet builds a string set from values, ignoring blanks.
func NewSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

// Document is a loaded source file.
type Document struct {
	Path string
	Text string
}

// PatternRecord is an n-gram that met the frequency threshold.
type PatternRecord struct {
	Pattern   string
	Frequency int
	Length    int
	Sources   []string
}

// Source points at a document a pattern was found in.
type Source struct {
	Document string `yaml:"document" json:"document"`
}

// Pattern is the persisted pattern record, extended by enrichment and clustering.
type Pattern struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	Pattern         string   `yaml:"pattern" json:"pattern"`
	Frequency       int      `yaml:"frequency" json:"frequency"`
	Level           string   `yaml:"level,omitempty" json:"level,omitempty"`
	Context         string   `yaml:"context,omitempty" json:"context,omitempty"`
	Problem         string   `yaml:"problem,omitempty" json:"problem,omitempty"`
	Solution        string   `yaml:"solution,omitempty" json:"solution,omitempty"`
	Example         string   `yaml:"example,omitempty" json:"example,omitempty"`
	Sources         []Source `yaml:"sources,omitempty" json:"sources,omitempty"`
	Subpatterns     []string `yaml:"subpatterns,omitempty" json:"subpatterns,omitempty"`
	Superpattern    string   `yaml:"superpattern,omitempty" json:"superpattern,omitempty"`
	RelatedPatterns []string `yaml:"related_patterns,omitempty" json:"related_patterns,omitempty"`
	InfoType        string   `yaml:"info_type,omitempty" json:"info_type,omitempty"`
	Title           string   `yaml:"title,omitempty" json:"title,omitempty"`
	Summary         string   `yaml:"summary,omitempty" json:"summary,omitempty"`
	Keywords        []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Tags            []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Concepts        []string `yaml:"concepts,omitempty" json:"concepts,omitempty"`
	Related         []string `yaml:"related,omitempty" json:"related,omitempty"`
	Cluster         *int     `yaml:"cluster,omitempty" json:"cluster,omitempty"`
}

// Run summarizes a stored extraction run.
type Run struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	InputDir  string
	Scope     string
	Documents int
	Patterns  int
}

// PatternPoint is a pattern's frequency and rank in one stored run.
type PatternPoint struct {
	RunID     string
	EndedAt   time.Time
	Frequency int
	Rank      int
}
