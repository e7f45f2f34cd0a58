// Package render produces course documents: it resolves the course an item
// belongs to, renders the item's sections and assembles the page.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/assembler"
	"github.com/dtnitsch/mooc-renderer/pkg/markup"
	"github.com/dtnitsch/mooc-renderer/pkg/messages"
	"github.com/dtnitsch/mooc-renderer/pkg/sections"
	"github.com/dtnitsch/mooc-renderer/pkg/splitter"
	"github.com/dtnitsch/mooc-renderer/pkg/structure"
)

// LanguageAuto selects the message language from the item text.
const LanguageAuto = "auto"

// pipeline holds the per-language renderers.
type pipeline struct {
	sections  *sections.Renderer
	assembler *assembler.Assembler
}

// Service is safe for concurrent use.
type Service struct {
	store     models.ContentStore
	resolver  *structure.Resolver
	detector  *messages.Detector
	language  string
	pipelines map[string]*pipeline
	logger    *slog.Logger
}

// NewService builds a Service reading pages from store. Every language of
// bundle gets its own pipeline.
func NewService(store models.ContentStore, cfg *models.Config, bundle *messages.Bundle, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to build section registry: %w", err)
	}

	s := &Service{
		store:     store,
		resolver:  structure.NewResolver(store, cfg.Workers, logger),
		detector:  messages.NewDetector(bundle.Languages(), messages.DefaultLanguage),
		language:  strings.ToLower(cfg.Language),
		pipelines: make(map[string]*pipeline),
		logger:    logger,
	}
	if s.language != LanguageAuto && !bundle.Has(s.language) {
		logger.Warn("Unknown language, using default", "language", cfg.Language, "default", messages.DefaultLanguage)
		s.language = messages.DefaultLanguage
	}

	transcluded := &prefetchStore{next: store}
	for _, lang := range bundle.Languages() {
		catalog := bundle.Catalog(lang)
		mr := markup.NewRenderer(transcluded, catalog, markup.Options{
			LinkBase:     cfg.LinkBase,
			HeadingLevel: cfg.HeadingLevel,
		}, logger)
		s.pipelines[lang] = &pipeline{
			sections: sections.NewRenderer(registry, catalog, sections.Options{
				LinkBase:     cfg.LinkBase,
				MediaPath:    cfg.MediaPath,
				EditPath:     cfg.EditPath,
				HeadingLevel: cfg.HeadingLevel,
			}, logger),
			assembler: assembler.New(mr, splitter.New(registry, catalog, cfg.ImagePath), catalog, assembler.Options{
				LinkBase:  cfg.LinkBase,
				ImagePath: cfg.ImagePath,
			}, logger),
		}
	}
	return s, nil
}

// Structure resolves the course rooted at the root page of id.
func (s *Service) Structure(ctx context.Context, id models.Identifier) (*models.StructureNode, error) {
	return s.resolver.Resolve(ctx, id.Root())
}

// Render builds the document for id within its course.
func (s *Service) Render(ctx context.Context, id models.Identifier) (*models.Document, error) {
	tree, err := s.Structure(ctx, id)
	if err != nil {
		return nil, err
	}
	current := tree.Find(id)
	if current == nil {
		return nil, &models.NotFoundError{Identifier: id, Parent: tree.Identifier()}
	}
	return s.RenderNode(ctx, tree, current)
}

// RenderNode builds the document for current, a node of tree. It does not
// re-read the course structure.
func (s *Service) RenderNode(ctx context.Context, tree, current *models.StructureNode) (*models.Document, error) {
	lang := s.Language(current.Item)
	p, ok := s.pipelines[lang]
	if !ok {
		p = s.pipelines[messages.DefaultLanguage]
	}

	ctx, exists, err := prefetch(ctx, s.store, p.sections.Transclusions(current.Item))
	if err != nil {
		return nil, err
	}

	markups, sectionErr := p.sections.RenderSections(current, exists)
	doc, err := p.assembler.Assemble(ctx, assembler.Page{
		Tree:       tree,
		Current:    current,
		Sections:   markups,
		SectionErr: sectionErr,
		Language:   lang,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Rendered item", "identifier", current.Identifier(), "language", lang, "sections", len(doc.Sections))
	return doc, nil
}

// Language returns the message language used for item.
func (s *Service) Language(item *models.Item) string {
	if s.language != LanguageAuto {
		return s.language
	}
	return s.detector.Detect(itemText(item))
}

// itemText joins the free-text fields of item for language detection.
func itemText(item *models.Item) string {
	parts := []string{item.Name}
	parts = append(parts, item.LearningGoals...)
	parts = append(parts, item.FurtherReading...)
	return strings.Join(parts, ". ")
}
