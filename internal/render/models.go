package render

import (
	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/manifest"
)

// Job defines a page for a worker to render.
type Job struct {
	Index int
	Node  *models.StructureNode
	Path  string
}

// Result holds the outcome of a processed job.
type Result struct {
	Index int
	manifest.PageResult
	// Text is the visible section text, input of the keyword statistics.
	Text string
}

// Output formats of rendered pages.
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// RunSummary is printed to stdout after a batch render.
type RunSummary struct {
	Root         string `json:"root" yaml:"root"`
	RunID        int64  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Pages        int    `json:"pages" yaml:"pages"`
	Successful   int    `json:"successful" yaml:"successful"`
	Failed       int    `json:"failed" yaml:"failed"`
	OutputDir    string `json:"output_dir" yaml:"output_dir"`
	ManifestPath string `json:"manifest" yaml:"manifest"`
	ElapsedMS    int64  `json:"elapsed_ms" yaml:"elapsed_ms"`
}
