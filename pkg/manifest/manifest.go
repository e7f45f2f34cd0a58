package manifest

import "github.com/dtnitsch/mooc-renderer/pkg/mapreduce"

// FileName is the manifest written next to the rendered pages.
const FileName = "manifest.json"

// Manifest summarizes a batch render of one course: per page status, output
// file and keywords, plus keywords aggregated over the course.
type Manifest struct {
	GeneratedAt       string              `json:"generated_at"`
	Root              string              `json:"root"`
	RunID             int64               `json:"run_id,omitempty"`
	TotalPages        int                 `json:"total_pages"`
	Successful        int                 `json:"successful"`
	Failed            int                 `json:"failed"`
	AggregateKeywords []mapreduce.Keyword `json:"aggregate_keywords"`
	Results           []PageSummary       `json:"results"`
}

// PageSummary is the manifest entry of one rendered page.
type PageSummary struct {
	Title        string              `json:"title"`
	Name         string              `json:"name,omitempty"`
	Status       string              `json:"status"` // "success" or "error"
	FilePath     string              `json:"file_path,omitempty"`
	ErrorType    string              `json:"error_type,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
	SizeBytes    int64               `json:"size_bytes,omitempty"`
	Language     string              `json:"language,omitempty"`
	Excerpt      string              `json:"excerpt,omitempty"`
	TopKeywords  []mapreduce.Keyword `json:"top_keywords,omitempty"`
}
