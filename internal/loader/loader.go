// Package loader reads corpus documents from a directory tree.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/verte-zerg/plminer/internal/logging"
	"github.com/verte-zerg/plminer/internal/model"
)

// Load walks root in lexical order and returns one document per file whose extension equals
// fileType. Unreadable, non-UTF-8 and blank files are skipped.
func Load(ctx context.Context, root, fileType string, logger *zap.Logger) ([]model.Document, error) {
	logger = logging.OrNop(logger)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", root)
	}
	ext := "." + strings.TrimPrefix(fileType, ".")

	var docs []model.Document
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != ext {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, ok := readDocument(path, logger)
		if ok {
			docs = append(docs, doc)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	logger.Debug("loaded documents", zap.String("root", root), zap.Int("count", len(docs)))
	return docs, nil
}

func readDocument(path string, logger *zap.Logger) (model.Document, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read file", zap.String("path", path), zap.Error(err))
		return model.Document{}, false
	}
	if !utf8.Valid(raw) {
		logger.Warn("skipping file that is not valid UTF-8", zap.String("path", path))
		return model.Document{}, false
	}
	text, err := Normalize(path, string(raw))
	if err != nil {
		logger.Warn("failed to parse file", zap.String("path", path), zap.Error(err))
		return model.Document{}, false
	}
	if strings.TrimSpace(text) == "" {
		logger.Debug("skipping blank file", zap.String("path", path))
		return model.Document{}, false
	}
	return model.Document{Path: path, Text: text}, true
}
