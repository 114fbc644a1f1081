// Package output persists crawl results as JSON artifacts on disk.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/site-scraper/internal/domain"
	"go.uber.org/zap"
)

// Artifact file names written into the output directory.
const (
	SiteMapFile      = "site-map.json"
	PagesFile        = "pages.json"
	ImagesFile       = "images.json"
	ServiceAreasFile = "service-areas.json"
)

// Writer stores the four JSON artifacts of a crawl result in one directory.
type Writer struct {
	dir    string
	logger *zap.Logger
}

func NewWriter(dir string, logger *zap.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write creates the output directory if needed and writes every artifact.
// Each file is written on its own; a failure on one does not stop the
// others, and all failures are returned joined.
func (w *Writer) Write(result *domain.CrawlResult) error {
	if result == nil {
		return errors.New("nil crawl result")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	artifacts := []struct {
		name string
		v    any
	}{
		{SiteMapFile, result.SiteMap()},
		{PagesFile, nonNil(result.Pages)},
		{ImagesFile, nonNil(result.Images)},
		{ServiceAreasFile, nonNil(result.ServiceAreas)},
	}

	var errs []error
	for _, a := range artifacts {
		if err := w.writeJSON(a.name, a.v); err != nil {
			w.logger.Error("failed to write artifact", zap.String("file", a.name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		w.logger.Debug("wrote artifact", zap.String("file", filepath.Join(w.dir, a.name)))
	}
	return errors.Join(errs...)
}

func (w *Writer) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// nonNil keeps empty collections encoded as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
