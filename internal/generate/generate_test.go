package generate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/verte-zerg/plminer/internal/model"
	"github.com/verte-zerg/plminer/internal/patternfile"
)

func writePatterns(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	w, err := patternfile.NewDirWriter(dir, patternfile.FormatYAML)
	require.NoError(t, err)
	require.NoError(t, w.Write(model.Pattern{
		ID: "pattern-1", Problem: "remove orphaned containers", Context: "container cleanup",
		Solution: "restart with docker compose", Example: "docker compose down -v",
	}))
	require.NoError(t, w.Write(model.Pattern{
		ID: "pattern-2", Problem: "rebuild container image", Context: "development environment",
		Solution: "run docker compose build", Example: "docker compose build",
	}))
	return dir
}

func TestSentenceDefaults(t *testing.T) {
	g, err := New("", Text, nil)
	require.NoError(t, err)
	assert.Equal(t,
		"To solve the problem in the context of a general scenario, use solve the problem. For example, no example provided.",
		g.Sentence(model.Pattern{}))
}

func TestSentenceCustomTemplate(t *testing.T) {
	g, err := New("To {problem} in the context of {context}, use {solution}. For example, {example}.", Text, nil)
	require.NoError(t, err)
	got := g.Sentence(model.Pattern{Problem: "fix it", Context: "ops", Solution: "a tool", Example: "tool --fix"})
	assert.Equal(t, "To fix it in the context of ops, use a tool. For example, tool --fix.", got)
}

func TestRenderFormats(t *testing.T) {
	sentences := []string{"One.", "Two <b>."}
	cases := map[Format]string{
		Markdown: "1. One.\n\n2. Two <b>.\n",
		HTML:     "<ul data-type='generated-patterns'>\n<li>One.</li>\n<li>Two &lt;b&gt;.</li>\n</ul>\n",
		Text:     "One.\nTwo <b>.\n",
	}
	for format, want := range cases {
		g, err := New("", format, nil)
		require.NoError(t, err)
		assert.Equal(t, want, g.Render(sentences), string(format))
	}
}

func TestRunWritesFile(t *testing.T) {
	in := writePatterns(t)
	out := filepath.Join(t.TempDir(), "out", "sentences.md")

	g, err := New("To {problem} in the context of {context}, use {solution}. For example, {example}.", Markdown, nil)
	require.NoError(t, err)
	n, err := g.Run(in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "1. To remove orphaned containers"), content)
	assert.GreaterOrEqual(t, strings.Count(content, "docker compose"), 2)
}

func TestRunNoPatterns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	g, err := New("", Text, zap.New(core))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "sentences.txt")
	n, err := g.Run(t.TempDir(), out)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoFileExists(t, out)
	assert.Equal(t, 1, logs.FilterMessage("no patterns found").Len())
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := New("", Format("pdf"), nil)
	assert.Error(t, err)
	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
