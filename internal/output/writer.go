// Package output writes fetched sitemaps to per-domain folders.
package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/romangod6/sitemap-downloader/internal/models"
)

// DefaultDir is the folder, relative to the working directory, that holds
// one sub-folder per domain.
const DefaultDir = "output"

type Writer struct {
	baseDir string
}

func NewWriter(baseDir string) *Writer {
	if baseDir == "" {
		baseDir = DefaultDir
	}
	return &Writer{baseDir: baseDir}
}

// Domain returns the host part of rawURL, port included.
func Domain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	return u.Host, nil
}

// Slug returns the last path segment of rawURL, or "index" when the path is
// empty or ends in a slash.
func Slug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "index"
	}
	segments := strings.Split(u.Path, "/")
	if slug := segments[len(segments)-1]; slug != "" {
		return slug
	}
	return "index"
}

// DirFor creates <base>/<domain> for rawURL and returns it.
func (w *Writer) DirFor(rawURL string) (string, error) {
	domain, err := Domain(rawURL)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(w.baseDir, domain)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}

// Save writes content to <dir>/<slug>.<ext>, replacing any existing file, and
// returns the written path.
func (w *Writer) Save(rawURL, content, dir string, kind models.Kind) (string, error) {
	name := fmt.Sprintf("%s.%s", Slug(rawURL), kind.Extension())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
