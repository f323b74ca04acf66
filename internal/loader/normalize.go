package loader

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
)

const blockSelector = "p, li, h1, h2, h3, h4, h5, h6, pre, blockquote, td, th, dt, dd"

// Normalize converts raw file content to plain text by file format. Markdown and HTML are
// reduced to their block elements separated by blank lines; other text is returned as is.
func Normalize(path, raw string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return MarkdownText(raw)
	case ".html", ".htm":
		return HTMLText(raw)
	default:
		return raw, nil
	}
}

// MarkdownText renders Markdown and extracts its block text.
func MarkdownText(src string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return HTMLText(buf.String())
}

// HTMLText extracts the text of leaf block elements, one paragraph per block.
func HTMLText(src string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var blocks []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		var text string
		if goquery.NodeName(s) == "pre" {
			text = strings.TrimSpace(s.Text())
		} else {
			text = strings.Join(strings.Fields(s.Text()), " ")
		}
		if text != "" {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) == 0 {
		return strings.Join(strings.Fields(doc.Text()), " "), nil
	}
	return strings.Join(blocks, "\n\n"), nil
}
