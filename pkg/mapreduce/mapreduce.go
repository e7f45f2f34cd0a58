// Package mapreduce aggregates per-page keyword counts into course-wide
// statistics.
package mapreduce

import (
	"context"

	"github.com/dtnitsch/mooc-renderer/pkg/analytics"
	"golang.org/x/sync/errgroup"
)

// Map counts the words of one page's text.
func Map(content string, a *analytics.Analytics) map[string]int {
	return a.WordFrequency(content)
}

// Reduce sums word counts.
func Reduce(intermediate []map[string]int) map[string]int {
	total := make(map[string]int)
	for _, counts := range intermediate {
		for word, count := range counts {
			total[word] += count
		}
	}
	return total
}

// Run maps texts with at most workers goroutines and reduces the result.
// The per-text counts are returned in input order alongside the total.
func Run(ctx context.Context, texts []string, a *analytics.Analytics, workers int) ([]map[string]int, map[string]int, error) {
	if workers <= 0 {
		workers = 1
	}
	counts := make([]map[string]int, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			counts[i] = Map(text, a)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return counts, Reduce(counts), nil
}
