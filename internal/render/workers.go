package render

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dtnitsch/mooc-renderer/internal/common"
	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/analytics"
	"github.com/dtnitsch/mooc-renderer/pkg/manifest"
	"github.com/dtnitsch/mooc-renderer/pkg/mapreduce"
	renderpkg "github.com/dtnitsch/mooc-renderer/pkg/render"
	"github.com/dtnitsch/mooc-renderer/pkg/storage"
)

// batch renders every page of a course into a directory.
type batch struct {
	service   *renderpkg.Service
	storage   *storage.Storage
	analytics *analytics.Analytics
	logger    *slog.Logger
	workers   int
	format    string
	outputDir string
}

// run renders all nodes of tree. Per page failures are reported in the
// results; the returned error is only set for a canceled context.
func (b *batch) run(ctx context.Context, tree *models.StructureNode) ([]manifest.PageResult, map[string]int, error) {
	nodes := tree.Flatten()
	ids := make([]models.Identifier, len(nodes))
	for i, n := range nodes {
		ids[i] = n.Identifier()
	}
	ext := "." + b.format
	paths := common.UniquePaths(b.outputDir, ids, ext)

	workers := b.workers
	if workers <= 0 {
		workers = 1
	}

	b.logger.Info("Starting concurrent render phase", "root", tree.Identifier(), "pages", len(nodes), "workers", workers)
	var wg sync.WaitGroup
	jobs := make(chan Job, len(nodes))
	results := make(chan Result, len(nodes))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go b.worker(ctx, w, tree, &wg, jobs, results)
	}

	for i, node := range nodes {
		jobs <- Job{Index: i, Node: node, Path: paths[node.Identifier()]}
	}
	close(jobs)

	wg.Wait()
	close(results)
	b.logger.Info("All render workers finished")

	collected := make([]Result, 0, len(nodes))
	for result := range results {
		collected = append(collected, result)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].Index < collected[j].Index })

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	b.logger.Info("Starting MapReduce phase")
	texts := make([]string, len(collected))
	for i, r := range collected {
		texts[i] = r.Text
	}
	perPage, total, err := mapreduce.Run(ctx, texts, b.analytics, workers)
	if err != nil {
		return nil, nil, err
	}

	pages := make([]manifest.PageResult, len(collected))
	for i, r := range collected {
		pages[i] = r.PageResult
		if r.Error == nil {
			pages[i].WordCounts = perPage[i]
		}
	}
	return pages, total, nil
}

// worker is a goroutine that processes jobs from the jobs channel
// and sends results to the results channel.
func (b *batch) worker(ctx context.Context, id int, tree *models.StructureNode, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		title := job.Node.Identifier()
		result := Result{Index: job.Index, PageResult: manifest.PageResult{Title: title}}

		if err := ctx.Err(); err != nil {
			result.Error = err
			results <- result
			continue
		}

		doc, err := b.service.RenderNode(ctx, tree, job.Node)
		if err != nil {
			b.logger.Error("Error rendering page", "worker_id", id, "identifier", title, "error", err)
			result.Error = err
			results <- result
			continue
		}
		result.Document = doc

		data, err := encodeDocument(doc, b.format)
		if err != nil {
			result.Error = err
			results <- result
			continue
		}
		if err := b.storage.SaveFile(job.Path, data); err != nil {
			b.logger.Error("Error saving page", "worker_id", id, "path", job.Path, "error", err)
			result.Error = err
			results <- result
			continue
		}
		result.FilePath = job.Path
		result.SizeBytes = int64(len(data))

		if text, err := analytics.SectionText(doc.HTML); err == nil {
			result.Text = text
		}
		b.logger.Debug("Rendered page", "worker_id", id, "identifier", title, "path", job.Path)
		results <- result
	}
}

// encodeDocument serializes doc in the requested output format.
func encodeDocument(doc *models.Document, format string) ([]byte, error) {
	switch format {
	case FormatHTML:
		return standalonePage(doc), nil
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document: %w", err)
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("unknown format %q (want html or json)", format)
}
