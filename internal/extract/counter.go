package extract

import (
	"sort"
	"strings"

	"github.com/verte-zerg/plminer/internal/model"
)

type counterEntry struct {
	key     string
	length  int
	count   int
	sources []string
}

// Counter accumulates n-gram frequencies for one extraction run. Entries keep first-seen order
// so ranking is deterministic for a given input.
type Counter struct {
	min     int
	max     int
	index   map[string]int
	entries []counterEntry
}

// NewCounter creates a counter for n-grams of length min..max.
func NewCounter(min, max int) *Counter {
	return &Counter{
		min:   min,
		max:   max,
		index: make(map[string]int),
	}
}

// Add counts every contiguous n-gram of tokens with n in [min, min(len(tokens), max)].
func (c *Counter) Add(tokens []string, source string) {
	for n := c.min; n <= c.max && n <= len(tokens); n++ {
		for i := 0; i+n <= len(tokens); i++ {
			c.increment(strings.Join(tokens[i:i+n], " "), n, source)
		}
	}
}

func (c *Counter) increment(key string, length int, source string) {
	idx, ok := c.index[key]
	if !ok {
		idx = len(c.entries)
		c.index[key] = idx
		c.entries = append(c.entries, counterEntry{key: key, length: length})
	}
	e := &c.entries[idx]
	e.count++
	if source != "" && (len(e.sources) == 0 || e.sources[len(e.sources)-1] != source) {
		e.sources = append(e.sources, source)
	}
}

// Len returns the number of distinct n-grams seen.
func (c *Counter) Len() int {
	return len(c.entries)
}

// Count returns the frequency of key.
func (c *Counter) Count(key string) int {
	idx, ok := c.index[key]
	if !ok {
		return 0
	}
	return c.entries[idx].count
}

// Records returns n-grams with frequency >= threshold, most frequent first. Equal frequencies
// keep first-seen order.
func (c *Counter) Records(threshold int) []model.PatternRecord {
	out := make([]model.PatternRecord, 0)
	for _, e := range c.entries {
		if e.count < threshold {
			continue
		}
		out = append(out, model.PatternRecord{
			Pattern:   e.key,
			Frequency: e.count,
			Length:    e.length,
			Sources:   append([]string(nil), e.sources...),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Frequency > out[j].Frequency
	})
	return out
}
