package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/plminer/internal/model"
)

const fullYAML = `
pattern_extraction:
  frequency_threshold: 1
  minimum_token_count: 1
  scope: sentence
  pos_filtering: false
  allowed_pos_tags: []
  block_elements: []
  file_type: md
  ngram_min: 2
  ngram_max: 3
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", fullYAML)

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)

	ext := cfg.Extraction
	require.NotNil(t, ext.FileType)
	assert.Equal(t, "md", *ext.FileType)
	require.NotNil(t, ext.NgramMax)
	assert.Equal(t, 3, *ext.NgramMax)
	require.NotNil(t, ext.POSFiltering)
	assert.False(t, *ext.POSFiltering)
	assert.Equal(t, "sentence", *ext.Scope)
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[pattern_extraction]
file_type = "txt"
frequency_threshold = 3
minimum_token_count = 2
scope = "block"
pos_filtering = true
allowed_pos_tags = ["NN", "VB"]
block_elements = ["paragraph"]
ngram_min = 2
ngram_max = 4
`)

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)

	ext := cfg.Extraction
	assert.Equal(t, 3, *ext.FrequencyThreshold)
	assert.Equal(t, "block", *ext.Scope)
	assert.True(t, *ext.POSFiltering)
	assert.Equal(t, []string{"NN", "VB"}, ext.AllowedPOSTags)
	assert.Equal(t, []string{"paragraph"}, ext.BlockElements)
}

func TestLoadConfigMissingKey(t *testing.T) {
	path := writeFile(t, "config.yaml", `
pattern_extraction:
  file_type: txt
  ngram_min: 2
`)

	_, err := LoadConfig(path, true)
	var fe *model.FieldError
	require.True(t, errors.As(err, &fe), "expected FieldError, got %v", err)
	assert.Equal(t, "frequency_threshold", fe.Field)
}

func TestLoadConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	cfg, err := LoadConfig(path, false)
	require.NoError(t, err)
	assert.Nil(t, cfg.Extraction.FileType)

	_, err = LoadConfig(path, true)
	assert.Error(t, err)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", fullYAML)
	t.Setenv("PLMINER_PATTERN_EXTRACTION_NGRAM_MAX", "5")

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	require.NotNil(t, cfg.Extraction.NgramMax)
	assert.Equal(t, 5, *cfg.Extraction.NgramMax)
}

func TestLoadConfigEnvListOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", fullYAML)
	t.Setenv("PLMINER_PATTERN_EXTRACTION_ALLOWED_POS_TAGS", "NN, VB,,DT")
	t.Setenv("PLMINER_PATTERN_EXTRACTION_BLOCK_ELEMENTS", "paragraph,x")

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"NN", "VB", "DT"}, cfg.Extraction.AllowedPOSTags)
	assert.Equal(t, []string{"paragraph", "x"}, cfg.Extraction.BlockElements)
}

func TestEnvValue(t *testing.T) {
	key, value := envValue("PLMINER_PATTERN_EXTRACTION_SCOPE", "block")
	assert.Equal(t, "pattern_extraction.scope", key)
	assert.Equal(t, "block", value)

	key, value = envValue("PLMINER_PATTERN_EXTRACTION_ALLOWED_POS_TAGS", "")
	assert.Equal(t, "pattern_extraction.allowed_pos_tags", key)
	assert.Equal(t, []string{}, value)

	key, _ = envValue("PLMINER_LOG_LEVEL", "debug")
	assert.Empty(t, key)
}

func TestLoadConfigUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "config.ini", "x=1")
	_, err := LoadConfig(path, true)
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "pattern_extraction.ngram_min", envKey("PLMINER_PATTERN_EXTRACTION_NGRAM_MIN"))
	assert.Equal(t, "", envKey("PLMINER_LOG_LEVEL"))
}
