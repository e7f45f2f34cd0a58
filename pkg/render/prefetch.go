package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/sections"
)

type prefetchKey struct{}

// prefetchStore serves pages already read for the current render before
// falling back to the underlying store.
type prefetchStore struct {
	next models.ContentStore
}

func (p *prefetchStore) Fetch(ctx context.Context, id models.Identifier) (string, error) {
	if pages, ok := ctx.Value(prefetchKey{}).(map[models.Identifier]string); ok {
		if text, ok := pages[id]; ok {
			return text, nil
		}
	}
	return p.next.Fetch(ctx, id)
}

// prefetch reads the transcluded pages of one item once. The returned
// context hands their text on to the markup renderer.
func prefetch(ctx context.Context, store models.ContentStore, ids []models.Identifier) (context.Context, sections.Existence, error) {
	exists := sections.Existence{}
	pages := make(map[models.Identifier]string, len(ids))
	for _, id := range ids {
		text, err := store.Fetch(ctx, id)
		switch {
		case errors.Is(err, models.ErrPageNotFound):
			exists[id] = false
		case err != nil:
			return nil, nil, fmt.Errorf("failed to check page %q: %w", id, err)
		default:
			exists[id] = true
			pages[id] = text
		}
	}
	return context.WithValue(ctx, prefetchKey{}, pages), exists, nil
}
