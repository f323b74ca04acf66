// Package generate renders pattern records as template sentences.
package generate

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/plminer/internal/logging"
	"github.com/verte-zerg/plminer/internal/model"
	"github.com/verte-zerg/plminer/internal/patternfile"
)

// DefaultTemplate is the sentence template. Placeholders: {problem}, {context}, {solution},
// {example}.
const DefaultTemplate = "To {solution} in the context of {context}, use {solution}. For example, {example}."

const (
	defaultSolution = "solve the problem"
	defaultContext  = "a general scenario"
	defaultExample  = "no example provided"
)

// Format is an output document format.
type Format string

const (
	Markdown Format = "markdown"
	HTML     Format = "html"
	Text     Format = "text"
)

// ParseFormat validates a format name.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case Markdown, HTML, Text:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (choose from markdown, html, text)", value)
	}
}

// Generator fills a template from each pattern.
type Generator struct {
	template string
	format   Format
	logger   *zap.Logger
}

// New creates a generator. An empty template selects DefaultTemplate.
func New(template string, format Format, logger *zap.Logger) (*Generator, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	return &Generator{template: template, format: format, logger: logging.OrNop(logger)}, nil
}

// Sentence applies the template to p. Missing fields use fixed defaults.
func (g *Generator) Sentence(p model.Pattern) string {
	solution := orDefault(p.Solution, defaultSolution)
	r := strings.NewReplacer(
		"{problem}", orDefault(p.Problem, solution),
		"{context}", orDefault(p.Context, defaultContext),
		"{solution}", solution,
		"{example}", orDefault(p.Example, defaultExample),
	)
	return r.Replace(g.template)
}

// Render formats sentences as a document.
func (g *Generator) Render(sentences []string) string {
	var b strings.Builder
	switch g.format {
	case Markdown:
		for i, s := range sentences {
			if i > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "%d. %s", i+1, s)
		}
	case HTML:
		b.WriteString("<ul data-type='generated-patterns'>\n")
		for _, s := range sentences {
			fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(s))
		}
		b.WriteString("</ul>")
	default:
		b.WriteString(strings.Join(sentences, "\n"))
	}
	b.WriteByte('\n')
	return b.String()
}

// Run generates sentences for every pattern in inDir and writes them to outPath. With no
// patterns it logs a warning, writes nothing and returns 0.
func (g *Generator) Run(inDir, outPath string) (int, error) {
	files, err := patternfile.Load(inDir, g.logger)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		g.logger.Warn("no patterns found", zap.String("input", inDir))
		return 0, nil
	}
	sentences := make([]string, len(files))
	for i, f := range files {
		sentences[i] = g.Sentence(f.Pattern)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(g.Render(sentences)), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	g.logger.Info("sentences written",
		zap.Int("count", len(sentences)),
		zap.String("output", outPath),
		zap.String("format", string(g.format)),
	)
	return len(sentences), nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
