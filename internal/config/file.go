// Package config provides configuration loading for plminer.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/verte-zerg/plminer/internal/model"
)

const (
	section = "pattern_extraction"

	// EnvPrefix prefixes environment overrides, e.g. PLMINER_PATTERN_EXTRACTION_NGRAM_MAX.
	EnvPrefix = "PLMINER_"

	maxConfigFileSize = 1024 * 1024
)

// RequiredKeys lists the keys a config file must define.
var RequiredKeys = []string{
	"file_type",
	"frequency_threshold",
	"minimum_token_count",
	"scope",
	"pos_filtering",
	"allowed_pos_tags",
	"block_elements",
	"ngram_min",
	"ngram_max",
}

// FileConfig represents the configuration file.
type FileConfig struct {
	Extraction ExtractionConfig `koanf:"pattern_extraction"`
}

// ExtractionConfig maps the pattern_extraction section. Nil fields were not set.
type ExtractionConfig struct {
	FileType           *string  `koanf:"file_type"`
	FrequencyThreshold *int     `koanf:"frequency_threshold"`
	MinimumTokenCount  *int     `koanf:"minimum_token_count"`
	Scope              *string  `koanf:"scope"`
	POSFiltering       *bool    `koanf:"pos_filtering"`
	AllowedPOSTags     []string `koanf:"allowed_pos_tags"`
	BlockElements      []string `koanf:"block_elements"`
	NgramMin           *int     `koanf:"ngram_min"`
	NgramMax           *int     `koanf:"ngram_max"`
}

// LoadConfig reads the config file at path, then applies environment overrides.
// A missing file is not an error unless required is set. An existing file must define every
// key in RequiredKeys.
func LoadConfig(path string, required bool) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	k := koanf.New(".")

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.Size() > maxConfigFileSize {
			return FileConfig{}, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return FileConfig{}, fmt.Errorf("failed to read config: %w", err)
		}
		parser, err := parserFor(path)
		if err != nil {
			return FileConfig{}, err
		}
		if err := k.Load(rawbytes.Provider(content), parser); err != nil {
			return FileConfig{}, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
		for _, key := range RequiredKeys {
			if !k.Exists(section + "." + key) {
				return FileConfig{}, &model.FieldError{Field: key, Reason: "is required"}
			}
		}
	case os.IsNotExist(err):
		if required {
			return FileConfig{}, fmt.Errorf("config file not found: %s", path)
		}
	default:
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return FileConfig{}, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var cfg FileConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// envKey maps PLMINER_PATTERN_EXTRACTION_NGRAM_MAX to pattern_extraction.ngram_max.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if !strings.HasPrefix(key, section+"_") {
		return ""
	}
	return section + "." + strings.TrimPrefix(key, section+"_")
}

// listKeys are the keys whose environment values are comma-separated lists.
var listKeys = map[string]bool{
	section + ".allowed_pos_tags": true,
	section + ".block_elements":   true,
}

// envValue maps an environment variable to its config key and splits list values.
func envValue(name, value string) (string, interface{}) {
	key := envKey(name)
	if key == "" || !listKeys[key] {
		return key, value
	}
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return tomlParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// tomlParser adapts BurntSushi/toml to koanf.Parser.
type tomlParser struct{}

func (tomlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if _, err := toml.Decode(string(b), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (tomlParser) Marshal(o map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
