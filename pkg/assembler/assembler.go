// Package assembler composes the navigation tree and the sectioned content
// of one item into the final document.
package assembler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/markup"
	"github.com/dtnitsch/mooc-renderer/pkg/messages"
	"github.com/go-shiori/go-readability"
)

// NavigationIcon is shown in the navigation header.
const NavigationIcon = "ic_navigation.svg"

// BlockRenderer renders section markup to top-level blocks.
type BlockRenderer interface {
	RenderDocument(ctx context.Context, markups []models.SectionMarkup) (*markup.Rendered, error)
}

// Splitter groups blocks into section containers.
type Splitter interface {
	Split(blocks []models.Block) []models.SectionContainer
}

// Options holds the URL layout of the generated page.
type Options struct {
	LinkBase  string
	ImagePath string
	// SiteURL is the absolute origin used to resolve relative links while
	// extracting the excerpt.
	SiteURL string
}

// Assembler is safe for concurrent use if its collaborators are.
type Assembler struct {
	renderer BlockRenderer
	splitter Splitter
	catalog  messages.Catalog
	opts     Options
	logger   *slog.Logger
}

func New(renderer BlockRenderer, splitter Splitter, catalog messages.Catalog, opts Options, logger *slog.Logger) *Assembler {
	if opts.SiteURL == "" {
		opts.SiteURL = "http://localhost"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{renderer: renderer, splitter: splitter, catalog: catalog, opts: opts, logger: logger}
}

// Page is the input of Assemble.
type Page struct {
	Tree    *models.StructureNode
	Current *models.StructureNode
	// Sections is the markup emitted for Current. It is ignored when
	// SectionErr is set.
	Sections []models.SectionMarkup
	// SectionErr is the error returned by the section renderer. Only
	// *models.UnknownItemTypeError is accepted; the document then has no
	// content region.
	SectionErr error
	Language   string
}

// Assemble builds the document for p.Current.
func (a *Assembler) Assemble(ctx context.Context, p Page) (*models.Document, error) {
	if p.Tree == nil || p.Current == nil {
		return nil, fmt.Errorf("failed to assemble document: missing tree or current item")
	}
	var unknown *models.UnknownItemTypeError
	if p.SectionErr != nil && !errors.As(p.SectionErr, &unknown) {
		return nil, p.SectionErr
	}

	item := p.Current.Item
	doc := &models.Document{
		Title:      item.Title,
		Name:       item.DisplayName(),
		Category:   Category(p.Tree.Identifier()),
		Navigation: a.navigation(p.Tree, item.Title),
		Sections:   []models.SectionView{},
		EditValues: item.EditValues(),
		Language:   p.Language,
	}

	prev, next := p.Tree.Neighbours(item.Title)
	doc.Previous = a.navLink(prev)
	doc.Next = a.navLink(next)

	links := newLinkSet()
	for _, n := range p.Tree.Flatten() {
		links.add(n.Identifier())
	}

	var sectionNodes []*goquery.Selection
	if unknown != nil {
		doc.Error = a.catalog.Lookup("item-unknown-type", item.DisplayName())
		a.logger.Info("Item has no renderer, skipping content", "identifier", item.Title, "type", item.Type)
	} else {
		rendered, err := a.renderer.RenderDocument(ctx, p.Sections)
		if err != nil {
			return nil, fmt.Errorf("failed to render sections of %q: %w", item.Title, err)
		}
		for _, id := range rendered.Transcluded {
			links.add(id)
		}

		for _, c := range a.splitter.Split(rendered.Blocks) {
			sel := goquery.NewDocumentFromNode(c.Node).Selection
			if c.Keyed() {
				fillEditForm(sel, doc.EditValues[c.Key])
			}
			view := models.SectionView{Key: c.Key, Title: c.Title}
			if c.Config != nil {
				view.Collapsed = c.Config.Collapsed
			}
			view.HeaderHTML, _ = sel.Find("div.header").Html()
			view.ContentHTML, _ = sel.Find("div.content").Html()
			doc.Sections = append(doc.Sections, view)
			sectionNodes = append(sectionNodes, sel)
		}
	}
	doc.Links = links.ids

	out, err := a.page(doc, sectionNodes, unknown == nil)
	if err != nil {
		return nil, err
	}
	doc.HTML = out
	if unknown == nil {
		doc.Excerpt = a.excerpt(out, item)
	}
	return doc, nil
}

// Category returns the category tag of a course: "<Namespace>:<RootText>" or
// just the root text without a namespace.
func Category(id models.Identifier) string {
	root := id.Root()
	if ns := root.Namespace(); ns != "" {
		return ns + ":" + root.Text()
	}
	return root.Text()
}

func (a *Assembler) navigation(node *models.StructureNode, current models.Identifier) *models.NavEntry {
	entry := &models.NavEntry{
		Identifier: node.Identifier(),
		Name:       node.Item.DisplayName(),
		URL:        node.Item.URL(a.opts.LinkBase),
		Type:       node.Item.Type,
		Current:    node.Identifier() == current,
	}
	for _, child := range node.Children {
		entry.Children = append(entry.Children, a.navigation(child, current))
	}
	return entry
}

func (a *Assembler) navLink(node *models.StructureNode) *models.NavLink {
	if node == nil {
		return nil
	}
	return &models.NavLink{
		Identifier: node.Identifier(),
		Name:       node.Item.DisplayName(),
		URL:        node.Item.URL(a.opts.LinkBase),
	}
}

// fillEditForm pre-fills the section's edit textarea with the raw value.
func fillEditForm(sel *goquery.Selection, value any) {
	var text string
	switch v := value.(type) {
	case nil:
		return
	case string:
		text = v
	case []string:
		text = strings.Join(v, "\n")
	default:
		return
	}
	sel.Find("form.edit-form textarea.value").SetText(text)
}

func (a *Assembler) excerpt(page string, item *models.Item) string {
	pageURL, err := url.Parse(strings.TrimSuffix(a.opts.SiteURL, "/") + item.URL(a.opts.LinkBase))
	if err != nil {
		a.logger.Debug("Skipping excerpt", "identifier", item.Title, "error", err)
		return ""
	}
	rp := readability.NewParser()
	article, err := rp.Parse(strings.NewReader(page), pageURL)
	if err != nil {
		a.logger.Debug("Skipping excerpt", "identifier", item.Title, "error", err)
		return ""
	}
	return strings.TrimSpace(article.Excerpt)
}

func (a *Assembler) page(doc *models.Document, sections []*goquery.Selection, withContent bool) (string, error) {
	var sb strings.Builder
	sb.WriteString(`<div id="mooc">`)

	sb.WriteString(`<div id="mooc-navigation-bar" class="col-xs-12 col-sm-3"><div id="mooc-navigation"><div class="header">`)
	fmt.Fprintf(&sb, `<div class="icon"><img src="%s" width="32px" height="32px" alt=""/></div>`, html.EscapeString(a.icon(NavigationIcon)))
	fmt.Fprintf(&sb, `<h2>%s</h2></div><ul class="content">`, html.EscapeString(a.catalog.Lookup("navigation-title")))
	writeNavEntry(&sb, doc.Navigation)
	sb.WriteString(`</ul></div></div>`)

	if withContent {
		sb.WriteString(`<div id="mooc-content" class="col-xs-12 col-sm-9"><div id="mooc-sections">`)
		for _, sel := range sections {
			outer, err := goquery.OuterHtml(sel)
			if err != nil {
				return "", fmt.Errorf("failed to serialize section: %w", err)
			}
			sb.WriteString(outer)
		}
		sb.WriteString(`</div>`)
		a.writePager(&sb, doc)
		a.writeCatlinks(&sb, doc.Category)
		sb.WriteString(`</div>`)
	} else {
		fmt.Fprintf(&sb, `<div id="mooc-content" class="col-xs-12 col-sm-9 mooc-error"><p class="error">%s</p>`, html.EscapeString(doc.Error))
		a.writeCatlinks(&sb, doc.Category)
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)

	values, err := json.Marshal(doc.EditValues)
	if err != nil {
		return "", fmt.Errorf("failed to encode item values: %w", err)
	}
	fmt.Fprintf(&sb, `<script type="application/json" id="mooc-item">%s</script>`, values)
	return sb.String(), nil
}

func writeNavEntry(sb *strings.Builder, e *models.NavEntry) {
	if e.Current {
		sb.WriteString(`<li class="current">`)
	} else {
		sb.WriteString(`<li>`)
	}
	fmt.Fprintf(sb, `<a href="%s" title="%s">%s</a>`, html.EscapeString(e.URL), html.EscapeString(string(e.Identifier)), html.EscapeString(e.Name))
	if len(e.Children) > 0 {
		sb.WriteString(`<ul>`)
		for _, child := range e.Children {
			writeNavEntry(sb, child)
		}
		sb.WriteString(`</ul>`)
	}
	sb.WriteString(`</li>`)
}

func (a *Assembler) writePager(sb *strings.Builder, doc *models.Document) {
	if doc.Previous == nil && doc.Next == nil {
		return
	}
	sb.WriteString(`<div class="mooc-pager">`)
	if doc.Previous != nil {
		fmt.Fprintf(sb, `<a class="prev" href="%s">%s</a>`, html.EscapeString(doc.Previous.URL),
			html.EscapeString(a.catalog.Lookup("pager-previous", doc.Previous.Name)))
	}
	if doc.Next != nil {
		fmt.Fprintf(sb, `<a class="next" href="%s">%s</a>`, html.EscapeString(doc.Next.URL),
			html.EscapeString(a.catalog.Lookup("pager-next", doc.Next.Name)))
	}
	sb.WriteString(`</div>`)
}

func (a *Assembler) writeCatlinks(sb *strings.Builder, category string) {
	catPage := models.NewIdentifier("Category:" + category)
	fmt.Fprintf(sb, `<div class="catlinks"><span class="label">%s</span>: <a href="%s">%s</a></div>`,
		html.EscapeString(a.catalog.Lookup("categories")),
		html.EscapeString(catPage.URL(a.opts.LinkBase)),
		html.EscapeString(category))
}

func (a *Assembler) icon(file string) string {
	if a.opts.ImagePath == "" {
		return file
	}
	return strings.TrimSuffix(a.opts.ImagePath, "/") + "/" + file
}

type linkSet struct {
	seen map[models.Identifier]bool
	ids  []models.Identifier
}

func newLinkSet() *linkSet {
	return &linkSet{seen: map[models.Identifier]bool{}, ids: []models.Identifier{}}
}

func (l *linkSet) add(id models.Identifier) {
	if !l.seen[id] {
		l.seen[id] = true
		l.ids = append(l.ids, id)
	}
}
