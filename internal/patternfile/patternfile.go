// Package patternfile reads and writes pattern records, one file per pattern.
package patternfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/plminer/internal/logging"
	"github.com/verte-zerg/plminer/internal/model"
)

// Format is a pattern file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported pattern format %q (use yaml or json)", value)
	}
}

// Ext returns the file extension, including the dot.
func (f Format) Ext() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".yaml"
}

// Writer persists one pattern per call.
type Writer interface {
	Write(p model.Pattern) error
}

// DirWriter writes each pattern to its own file in a directory.
type DirWriter struct {
	dir    string
	format Format
	seq    int
	names  map[string]struct{}
}

// NewDirWriter creates dir if absent.
func NewDirWriter(dir string, format Format) (*DirWriter, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &DirWriter{dir: dir, format: format, names: make(map[string]struct{})}, nil
}

// Write encodes p to <id>.<ext>. Patterns without an id get a numbered slug of their title or
// solution.
func (w *DirWriter) Write(p model.Pattern) error {
	w.seq++
	name := sanitize(p.ID)
	if name == "" {
		title := p.Title
		if title == "" {
			title = p.Solution
		}
		name = fmt.Sprintf("%03d-%s", w.seq, slug(title))
	}
	return w.WriteNamed(name+w.format.Ext(), p)
}

// WriteNamed encodes p to the given file name inside the directory. A .json, .yaml or .yml
// extension on name overrides the writer's format.
func (w *DirWriter) WriteNamed(name string, p model.Pattern) error {
	if _, dup := w.names[name]; dup {
		return fmt.Errorf("duplicate pattern file name %s", name)
	}
	format := w.format
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(name), ".")); err == nil {
		format = f
	}
	data, err := Encode(p, format)
	if err != nil {
		return err
	}
	path := filepath.Join(w.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.names[name] = struct{}{}
	return nil
}

// Encode serializes p in the given format.
func Encode(p model.Pattern, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode pattern %s: %w", p.ID, err)
		}
		return append(data, '\n'), nil
	default:
		data, err := yaml.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to encode pattern %s: %w", p.ID, err)
		}
		return data, nil
	}
}

// File is a pattern loaded from disk along with its base name.
type File struct {
	Name    string
	Pattern model.Pattern
}

// Load reads every pattern file in dir, sorted by name. Files that fail to parse are skipped
// with a warning.
func Load(dir string, logger *zap.Logger) ([]File, error) {
	logger = logging.OrNop(logger)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	files := make([]File, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		p, err := readPattern(path)
		if err != nil {
			logger.Warn("skipping unreadable pattern file", zap.String("path", path), zap.Error(err))
			continue
		}
		files = append(files, File{Name: name, Pattern: p})
	}
	return files, nil
}

// Patterns strips file names.
func Patterns(files []File) []model.Pattern {
	out := make([]model.Pattern, len(files))
	for i, f := range files {
		out[i] = f.Pattern
	}
	return out
}

func readPattern(path string) (model.Pattern, error) {
	var p model.Pattern
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &p)
	} else {
		err = yaml.Unmarshal(data, &p)
	}
	if err != nil {
		return p, err
	}
	if p.ID == "" && p.Pattern == "" && p.Solution == "" && p.Title == "" {
		return p, fmt.Errorf("no pattern fields")
	}
	return p, nil
}

var nonSlug = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func slug(text string) string {
	s := strings.ToLower(strings.Trim(nonSlug.ReplaceAllString(text, "-"), "-"))
	if s == "" {
		return "pattern"
	}
	return s
}

func sanitize(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return ""
	}
	return id
}
