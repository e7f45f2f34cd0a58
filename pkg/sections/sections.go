// Package sections emits the section markup of course items. Each item type
// has its own fixed list of sections; a section without content still emits
// an empty-state box so no section is ever skipped.
package sections

import (
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/messages"
)

// ItemRenderer renders the sections of one item type.
type ItemRenderer interface {
	// Keys returns the section keys in emission order.
	Keys() []string
	// Body returns the markup for key, or ok=false when the section is empty.
	Body(key string, node *models.StructureNode, b *Builder) (markup string, ok bool)
}

// Existence tells which transcluded pages exist. Missing entries count as
// not existing.
type Existence map[models.Identifier]bool

// Options holds the URL layout used in generated markup.
type Options struct {
	LinkBase     string
	MediaPath    string
	EditPath     string
	HeadingLevel int
}

// Renderer dispatches items to the ItemRenderer registered for their type.
type Renderer struct {
	registry *models.SectionRegistry
	catalog  messages.Catalog
	opts     Options
	variants map[models.ItemType]ItemRenderer
	logger   *slog.Logger
}

// NewRenderer creates a Renderer with the lesson and unit variants
// registered.
func NewRenderer(registry *models.SectionRegistry, catalog messages.Catalog, opts Options, logger *slog.Logger) *Renderer {
	if opts.HeadingLevel < 1 || opts.HeadingLevel > 6 {
		opts.HeadingLevel = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		registry: registry,
		catalog:  catalog,
		opts:     opts,
		variants: map[models.ItemType]ItemRenderer{},
		logger:   logger,
	}
	r.Register(models.ItemTypeLesson, Lesson{})
	r.Register(models.ItemTypeUnit, Unit{})
	return r
}

// Register sets the renderer for an item type, replacing any previous one.
// Not safe for use concurrently with RenderSections.
func (r *Renderer) Register(typ models.ItemType, v ItemRenderer) {
	r.variants[typ] = v
}

// Transclusions lists the pages the item's sections would transclude. The
// caller checks their existence before rendering.
func (r *Renderer) Transclusions(item *models.Item) []models.Identifier {
	v, ok := r.variants[item.Type]
	if !ok {
		return nil
	}
	var ids []models.Identifier
	for _, key := range v.Keys() {
		switch key {
		case models.SectionScript:
			ids = append(ids, item.Script())
		case models.SectionQuiz:
			ids = append(ids, item.Quiz())
		}
	}
	return ids
}

// RenderSections returns one SectionMarkup per key of the item's type, in
// the type's order.
func (r *Renderer) RenderSections(node *models.StructureNode, exists Existence) ([]models.SectionMarkup, error) {
	item := node.Item
	v, ok := r.variants[item.Type]
	if !ok {
		return nil, &models.UnknownItemTypeError{Identifier: item.Title, Type: item.Type}
	}

	b := &Builder{r: r, item: item, exists: exists}
	keys := v.Keys()
	out := make([]models.SectionMarkup, 0, len(keys))
	for _, key := range keys {
		title := r.Title(key)
		body, ok := v.Body(key, node, b)
		if !ok {
			body = b.EmptyBox(key)
		}
		out = append(out, models.SectionMarkup{
			Key:    key,
			Title:  title,
			Markup: b.Heading(key, title) + "\n\n" + strings.TrimRight(body, "\n") + "\n",
			Empty:  !ok,
		})
	}
	r.logger.Debug("Rendered sections", "identifier", item.Title, "type", item.Type, "sections", len(out))
	return out, nil
}

// Title returns the heading text for key: the configured title, else the
// localized section name.
func (r *Renderer) Title(key string) string {
	if cfg, ok := r.registry.Lookup(key); ok {
		return cfg.Title
	}
	return r.catalog.Lookup("section-" + key)
}

// EditURL returns the edit endpoint for one section of an item.
func (r *Renderer) EditURL(id models.Identifier, key string) string {
	q := url.Values{}
	q.Set("item", string(id))
	q.Set("section", key)
	return r.opts.EditPath + "?" + q.Encode()
}

// Builder produces markup fragments for one item.
type Builder struct {
	r      *Renderer
	item   *models.Item
	exists Existence
}

// Heading returns the section heading with its edit placeholder.
func (b *Builder) Heading(key, title string) string {
	level := b.r.opts.HeadingLevel
	return fmt.Sprintf(`<h%d>%s<span class="mooc-edit" data-href="%s"></span></h%d>`,
		level, html.EscapeString(title), html.EscapeString(b.r.EditURL(b.item.Title, key)), level)
}

// OrderedList renders entries as a Markdown ordered list.
func (b *Builder) OrderedList(entries []string) string {
	var sb strings.Builder
	for i, entry := range entries {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.ReplaceAll(entry, "\n", " "))
	}
	return sb.String()
}

// Video renders a media embed for a file name or absolute URL.
func (b *Builder) Video(ref string) string {
	src := ref
	if !strings.Contains(ref, "://") {
		src = strings.TrimSuffix(b.r.opts.MediaPath, "/") + "/" + url.PathEscape(strings.ReplaceAll(ref, " ", "_"))
	}
	return fmt.Sprintf(`<div class="mooc-video"><video controls preload="metadata" src="%s"></video></div>`, html.EscapeString(src)) + "\n"
}

// Transclusion renders the directive including another page.
func (b *Builder) Transclusion(id models.Identifier) string {
	return "{{:" + string(id) + "}}\n"
}

// Exists reports whether a transcluded page exists.
func (b *Builder) Exists(id models.Identifier) bool {
	return b.exists[id]
}

// ChildList renders a linked ordered list of the resolved children.
func (b *Builder) ChildList(children []*models.StructureNode) string {
	var sb strings.Builder
	for i, child := range children {
		fmt.Fprintf(&sb, "%d. [%s](<%s>)\n", i+1, escapeMarkdown(child.Item.DisplayName()), child.Item.URL(b.r.opts.LinkBase))
	}
	return sb.String()
}

// EmptyBox renders the empty-state box for key.
func (b *Builder) EmptyBox(key string) string {
	var params []string
	href := b.r.EditURL(b.item.Title, key)
	switch key {
	case models.SectionScript:
		params = []string{string(b.item.Script())}
		href = b.item.Script().URL(b.r.opts.LinkBase) + "?action=edit"
	case models.SectionQuiz:
		params = []string{string(b.item.Quiz())}
		href = b.item.Quiz().URL(b.r.opts.LinkBase) + "?action=edit"
	}
	for i, p := range params {
		params[i] = html.EscapeString(p)
	}

	cat := b.r.catalog
	return fmt.Sprintf(`<div class="section-empty-box"><span class="description">%s</span> <a class="edit-link" href="%s">%s</a></div>`,
		cat.Lookup("section-"+key+"-empty-description", params...),
		html.EscapeString(href),
		html.EscapeString(cat.Lookup("section-"+key+"-empty-edit-link"))) + "\n"
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
	`[`, `\[`, `]`, `\]`, `<`, `\<`, `>`, `\>`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
