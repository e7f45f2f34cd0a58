package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/mapreduce"
	"github.com/dtnitsch/mooc-renderer/pkg/storage"
)

// KeywordLimit bounds the keyword lists of the manifest.
const KeywordLimit = 25

// PageResult is the outcome of rendering a single page of the course.
type PageResult struct {
	Title      models.Identifier
	Document   *models.Document
	FilePath   string
	SizeBytes  int64
	Error      error
	WordCounts map[string]int
}

// Status is "error" for failed renders, else "success".
func (r PageResult) Status() string {
	if r.Error != nil {
		return "error"
	}
	return "success"
}

// Build creates the manifest of a run. Results keep their order.
func Build(root models.Identifier, results []PageResult, aggregateKeywords map[string]int, now time.Time) *Manifest {
	m := &Manifest{
		GeneratedAt:       now.Format(time.RFC3339),
		Root:              string(root),
		TotalPages:        len(results),
		AggregateKeywords: mapreduce.TopKeywords(aggregateKeywords, KeywordLimit),
		Results:           make([]PageSummary, 0, len(results)),
	}

	for _, result := range results {
		summary := PageSummary{
			Title:  string(result.Title),
			Status: result.Status(),
		}

		if result.Error != nil {
			m.Failed++
			summary.ErrorType = models.ErrorKind(result.Error)
			summary.ErrorMessage = result.Error.Error()
		} else {
			m.Successful++
			summary.FilePath = result.FilePath
			summary.SizeBytes = result.SizeBytes
			if doc := result.Document; doc != nil {
				summary.Name = doc.Name
				summary.Language = doc.Language
				summary.Excerpt = doc.Excerpt
				// documents without a content region still count as rendered
				if doc.Error != "" {
					summary.ErrorType = "unknown_item_type"
					summary.ErrorMessage = doc.Error
				}
			}
			if result.WordCounts != nil {
				summary.TopKeywords = mapreduce.TopKeywords(result.WordCounts, KeywordLimit)
			}
		}

		m.Results = append(m.Results, summary)
	}
	return m
}

// Write saves m as FileName in dir and returns its path.
func Write(m *Manifest, dir string, s *storage.Storage) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := s.SaveFile(path, data); err != nil {
		return "", fmt.Errorf("failed to save manifest: %w", err)
	}
	return path, nil
}
