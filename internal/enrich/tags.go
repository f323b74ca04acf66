package enrich

import (
	"sort"
	"strings"
)

// DefaultTagRules maps tags to keywords that indicate them.
var DefaultTagRules = map[string][]string{
	// Operations
	"installation":    {"install", "installing", "installed", "setup", "apt-get", "brew", "pip", "npm"},
	"configuration":   {"configure", "config", "settings", "option", "options", "enable", "disable"},
	"lifecycle":       {"start", "stop", "restart", "reload", "shutdown"},
	"cleanup":         {"remove", "delete", "uninstall", "purge", "clean"},
	"troubleshooting": {"error", "fail", "failed", "fix", "issue", "debug", "troubleshoot"},
	"upgrade":         {"update", "upgrade", "migrate", "migration"},

	// Domains
	"containers": {"docker", "container", "image", "kubernetes", "kubectl", "pod"},
	"networking": {"network", "port", "proxy", "dns", "http", "https", "firewall"},
	"security":   {"auth", "password", "secret", "credential", "permission", "token", "encrypt"},
	"storage":    {"disk", "volume", "file", "files", "directory", "backup"},
	"database":   {"database", "sql", "postgres", "mysql", "sqlite", "redis"},
	"testing":    {"test", "tests", "coverage", "mock", "assert"},
}

// TagExtractor assigns tags by matching keywords against rules.
type TagExtractor struct {
	rules map[string]map[string]struct{}
}

// NewTagExtractor builds an extractor. Empty rules select DefaultTagRules.
func NewTagExtractor(rules map[string][]string) *TagExtractor {
	if len(rules) == 0 {
		rules = DefaultTagRules
	}
	index := make(map[string]map[string]struct{}, len(rules))
	for tag, words := range rules {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[strings.ToLower(w)] = struct{}{}
		}
		index[tag] = set
	}
	return &TagExtractor{rules: index}
}

// ExtractTags returns the sorted tags whose rule words appear among keywords.
func (t *TagExtractor) ExtractTags(keywords []string) []string {
	var tags []string
	for tag, words := range t.rules {
		for _, kw := range keywords {
			if _, ok := words[kw]; ok {
				tags = append(tags, tag)
				break
			}
		}
	}
	sort.Strings(tags)
	return tags
}
