package enrich

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/plminer/internal/model"
	"github.com/verte-zerg/plminer/internal/nlp"
	"github.com/verte-zerg/plminer/internal/patternfile"
)

func TestEnrichSolutionOnly(t *testing.T) {
	e := New(nil, nil, nil)
	in := model.Pattern{Solution: "Install Docker using apt-get."}

	out := e.Enrich(in)
	assert.Equal(t, "Install docker using apt-get.", out.Title)
	assert.Equal(t, "This pattern proposes the solution “Install Docker using apt-get.”.", out.Summary)
	assert.Equal(t, "Software is not installed.", out.Problem)
	assert.Equal(t, []string{"install", "docker", "using", "apt-get"}, out.Keywords)
	assert.Equal(t, []string{"containers", "installation"}, out.Tags)
	assert.Empty(t, in.Title, "input must not be mutated")
	assert.Nil(t, in.Keywords)
}

func TestEnrichKeepsExistingFields(t *testing.T) {
	e := New(nil, nil, nil)
	out := e.Enrich(model.Pattern{
		Title:    "Existing Title",
		Solution: "Install Docker.",
		Summary:  "This is already here.",
		Problem:  "Custom problem.",
	})
	assert.Equal(t, "Existing Title", out.Title)
	assert.Equal(t, "This is already here.", out.Summary)
	assert.Equal(t, "Custom problem.", out.Problem)
	assert.Equal(t, []string{"install", "docker"}, out.Keywords)
}

func TestEnrichEmpty(t *testing.T) {
	out := New(nil, nil, nil).Enrich(model.Pattern{})
	assert.Equal(t, "Untitled", out.Title)
	assert.Equal(t, "No solution provided.", out.Summary)
	assert.Equal(t, "Unknown problem.", out.Problem)
	assert.Equal(t, []string{}, out.Keywords)
	assert.Empty(t, out.Tags)
}

func TestInferProblem(t *testing.T) {
	cases := map[string]string{
		"restart the service":  "Service is not running properly.",
		"Delete the old files": "Resource needs to be deleted.",
		"remove cache":         "Resource needs to be deleted.",
		"install then restart": "Software is not installed.",
		"read the manual":      "Unknown problem.",
	}
	for in, want := range cases {
		assert.Equal(t, want, InferProblem(in), in)
	}
}

func TestKeywordsDedupe(t *testing.T) {
	assert.Equal(t, []string{"run", "the", "tests"}, Keywords("Run the tests, run THE tests!"))
}

type stubAnalyzer struct{ tokens []nlp.Token }

func (s stubAnalyzer) Sentences(text string) []string { return []string{text} }

func (s stubAnalyzer) Analyze(units []string) []nlp.Result {
	return []nlp.Result{{Sentences: [][]nlp.Token{s.tokens}}}
}

func TestEnrichConcepts(t *testing.T) {
	analyzer := stubAnalyzer{tokens: []nlp.Token{
		{Text: "Restart", Tag: "VB"},
		{Text: "the", Tag: "DT"},
		{Text: "Server", Tag: "NN"},
		{Text: "servers", Tag: "NNS"},
		{Text: "server", Tag: "NN"},
	}}
	out := New(nil, analyzer, nil).Enrich(model.Pattern{Solution: "Restart the Server servers server"})
	assert.Equal(t, []string{"server", "servers"}, out.Concepts)
	assert.Equal(t, "procedure", out.InfoType)
}

func TestRunKeepsFileNames(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "enriched")
	require.NoError(t, os.WriteFile(filepath.Join(in, "pattern1.yaml"), []byte("solution: Install Docker.\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "pattern2.json"), []byte(`{"solution": "Restart the service.", "problem": "Manual restart."}`), 0o600))

	stats, err := New(nil, nil, nil).Run(in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Enriched)

	files, err := patternfile.Load(out, nil)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "pattern1.yaml", files[0].Name)
	assert.Equal(t, "Software is not installed.", files[0].Pattern.Problem)
	assert.Equal(t, "pattern2.json", files[1].Name)
	assert.Equal(t, "Manual restart.", files[1].Pattern.Problem)
	assert.Equal(t, "Restart the service.", files[1].Pattern.Title)
}
