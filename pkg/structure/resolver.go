// Package structure resolves a course item and all of its descendants from a
// content store into an in-memory tree.
package structure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/parser"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultWorkers bounds concurrent store reads when no limit is configured.
const DefaultWorkers = 4

// Resolver builds StructureNode trees. A Resolver holds no per-render state
// and may be shared between goroutines.
type Resolver struct {
	store   models.ContentStore
	parser  *parser.Parser
	workers int
	logger  *slog.Logger
}

// NewResolver creates a Resolver reading from store with at most workers
// concurrent fetches.
func NewResolver(store models.ContentStore, workers int, logger *slog.Logger) *Resolver {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:   store,
		parser:  &parser.Parser{},
		workers: workers,
		logger:  logger,
	}
}

// resolution is the state of one Resolve call.
type resolution struct {
	*Resolver
	sem *semaphore.Weighted
}

// Resolve loads root and its descendants. Children keep their declared order
// at every level. The first failure cancels outstanding reads and is
// returned; no partial tree is returned.
func (r *Resolver) Resolve(ctx context.Context, root models.Identifier) (*models.StructureNode, error) {
	res := &resolution{
		Resolver: r,
		sem:      semaphore.NewWeighted(int64(r.workers)),
	}

	node, err := res.resolve(ctx, root, "", nil)
	if err != nil {
		r.logger.Debug("Structure resolution failed", "root", root, "error", err)
		return nil, err
	}
	r.logger.Debug("Resolved structure", "root", root, "items", node.Count())
	return node, nil
}

// resolve loads id and its subtree. path holds the ancestors of id, root
// first, and is never shared between branches.
func (res *resolution) resolve(ctx context.Context, id, parent models.Identifier, path []models.Identifier) (*models.StructureNode, error) {
	raw, err := res.fetch(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrPageNotFound) {
			return nil, &models.NotFoundError{Identifier: id, Parent: parent}
		}
		return nil, err
	}

	item, err := res.parser.Parse(id, raw)
	if err != nil {
		return nil, err
	}

	node := &models.StructureNode{Item: item}
	if !item.HasChildren() {
		return node, nil
	}

	branch := make([]models.Identifier, len(path)+1)
	copy(branch, path)
	branch[len(path)] = id

	childIDs := item.ChildIdentifiers()
	for _, childID := range childIDs {
		if onPath(branch, childID) {
			return nil, &models.CycleError{Identifier: childID, Path: branch}
		}
	}

	children := make([]*models.StructureNode, len(childIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, childID := range childIDs {
		g.Go(func() error {
			child, err := res.resolve(gctx, childID, id, branch)
			if err != nil {
				return err
			}
			children[i] = child
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	node.Children = children
	return node, nil
}

func (res *resolution) fetch(ctx context.Context, id models.Identifier) (string, error) {
	if err := res.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer res.sem.Release(1)

	raw, err := res.store.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrPageNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to fetch %q: %w", id, err)
	}
	return raw, nil
}

func onPath(path []models.Identifier, id models.Identifier) bool {
	for _, ancestor := range path {
		if ancestor == id {
			return true
		}
	}
	return false
}
