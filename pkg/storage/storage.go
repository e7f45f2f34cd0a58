// Package storage is a ContentStore backed by a directory tree of page files.
//
// A page [Namespace:]Root/Sub is stored at <root>/<Namespace>/Root/Sub.<ext>,
// with spaces written as underscores. Pages without a namespace live below
// MainNamespaceDir.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dtnitsch/mooc-renderer/models"
)

// MainNamespaceDir holds pages of the main (unnamed) namespace.
const MainNamespaceDir = "(Main)"

// Extensions are tried in order; the first existing file wins.
var Extensions = []string{".json", ".yaml", ".yml", ".md", ".txt"}

type Storage struct {
	root string
}

// FileStats holds metadata about a file without reading its contents.
type FileStats struct {
	Path      string
	SizeBytes int64
	ModTime   time.Time
}

// New returns a store rooted at dir.
func New(dir string) *Storage {
	return &Storage{root: dir}
}

// Root returns the store directory.
func (s *Storage) Root() string {
	return s.root
}

// basePath returns the extensionless file path for id.
func (s *Storage) basePath(id models.Identifier) string {
	ns := id.Namespace()
	if ns == "" {
		ns = MainNamespaceDir
	}
	parts := []string{s.root, fileName(ns)}
	for _, seg := range strings.Split(id.Text(), "/") {
		parts = append(parts, fileName(seg))
	}
	return filepath.Join(parts...)
}

func fileName(seg string) string {
	return strings.ReplaceAll(seg, " ", "_")
}

// find returns the existing file for id.
func (s *Storage) find(id models.Identifier) (string, error) {
	base := s.basePath(id)
	for _, ext := range Extensions {
		if fileExists(base + ext) {
			return base + ext, nil
		}
	}
	return "", fmt.Errorf("%q: %w", id, models.ErrPageNotFound)
}

// Fetch implements models.ContentStore.
func (s *Storage) Fetch(ctx context.Context, id models.Identifier) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.find(id)
	if err != nil {
		return "", err
	}
	data, err := s.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Save writes text as the page id. An existing file is overwritten in place;
// new pages get a .json or .yaml extension depending on the content.
func (s *Storage) Save(id models.Identifier, text string) (string, error) {
	path, err := s.find(id)
	if errors.Is(err, models.ErrPageNotFound) {
		ext := ".yaml"
		if strings.HasPrefix(strings.TrimSpace(text), "{") {
			ext = ".json"
		}
		path = s.basePath(id) + ext
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create page directory: %w", err)
	}
	if err := s.SaveFile(path, []byte(text)); err != nil {
		return "", err
	}
	return path, nil
}

// List walks the tree and returns every stored identifier, sorted.
func (s *Storage) List(ctx context.Context) ([]models.Identifier, error) {
	seen := make(map[models.Identifier]bool)
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !knownExtension(path) {
			return nil
		}
		if id, ok := s.identifierOf(path); ok {
			seen[id] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	ids := make([]models.Identifier, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// identifierOf maps a file path back to its page identifier. Files directly
// in the root have no namespace directory and are skipped.
func (s *Storage) identifierOf(path string) (models.Identifier, bool) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", false
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return "", false
	}
	title := strings.Join(parts[1:], "/")
	if parts[0] != MainNamespaceDir {
		title = parts[0] + ":" + title
	}
	return models.NewIdentifier(title), true
}

func knownExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range Extensions {
		if ext == known {
			return true
		}
	}
	return false
}

// Stat returns file metadata for the page id.
func (s *Storage) Stat(id models.Identifier) (*FileStats, error) {
	path, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return s.GetFileStats(path)
}

func (s *Storage) SaveFile(filePath string, content []byte) error {
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

func (s *Storage) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetFileStats returns metadata about a file using os.Stat (no I/O overhead).
func (s *Storage) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}

	return &FileStats{
		Path:      filePath,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}
