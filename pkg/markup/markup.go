// Package markup renders section markup (Markdown with page transclusion)
// to HTML and splits the result into top-level blocks.
package markup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/messages"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultMaxDepth limits nested transclusion.
const DefaultMaxDepth = 4

var transclusionLine = regexp.MustCompile(`^\s*\{\{:([^{}|]+)\}\}\s*$`)

// Options configures a Renderer.
type Options struct {
	LinkBase     string
	HeadingLevel int
	MaxDepth     int
}

// Renderer turns markup into HTML blocks. Transcluded pages are read from
// the content store.
type Renderer struct {
	store   models.ContentStore
	catalog messages.Catalog
	md      goldmark.Markdown
	opts    Options
	logger  *slog.Logger
}

// Rendered is the output of RenderDocument.
type Rendered struct {
	// Blocks are the direct children of the document body in order.
	Blocks []models.Block
	// Transcluded lists every transcluded page, existing or not, in
	// encounter order without duplicates.
	Transcluded []models.Identifier
	// Body is the parsed document body holding the blocks.
	Body *nethtml.Node
}

func NewRenderer(store models.ContentStore, catalog messages.Catalog, opts Options, logger *slog.Logger) *Renderer {
	if opts.HeadingLevel < 1 || opts.HeadingLevel > 6 {
		opts.HeadingLevel = 2
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		store:   store,
		catalog: catalog,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		opts:   opts,
		logger: logger,
	}
}

// RenderDocument renders the section markups in order as one document and
// returns its top-level blocks.
func (r *Renderer) RenderDocument(ctx context.Context, markups []models.SectionMarkup) (*Rendered, error) {
	st := &state{seen: map[models.Identifier]bool{}}

	body, err := parseBody("")
	if err != nil {
		return nil, err
	}
	for _, m := range markups {
		if err := r.render(ctx, body, m.Markup, 0, nil, st); err != nil {
			return nil, fmt.Errorf("failed to render section %q: %w", m.Key, err)
		}
	}
	return &Rendered{
		Blocks:      BlocksOf(body, r.opts.HeadingLevel),
		Transcluded: st.order,
		Body:        body,
	}, nil
}

// RenderHTML renders a single markup string to HTML.
func (r *Renderer) RenderHTML(ctx context.Context, markup string) (string, error) {
	root := &nethtml.Node{Type: nethtml.ElementNode, Data: "body", DataAtom: atom.Body}
	if err := r.render(ctx, root, markup, 0, nil, &state{seen: map[models.Identifier]bool{}}); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := nethtml.Render(&buf, c); err != nil {
			return "", fmt.Errorf("failed to serialize HTML: %w", err)
		}
	}
	return buf.String(), nil
}

type state struct {
	seen  map[models.Identifier]bool
	order []models.Identifier
}

func (s *state) record(id models.Identifier) {
	if !s.seen[id] {
		s.seen[id] = true
		s.order = append(s.order, id)
	}
}

// render appends the nodes of markup to parent. stack holds the pages
// currently being transcluded, outermost first. Every Markdown segment is
// parsed as its own fragment, so unbalanced tags stay inside it.
func (r *Renderer) render(ctx context.Context, parent *nethtml.Node, markup string, depth int, stack []models.Identifier, st *state) error {
	var segment strings.Builder
	flush := func() error {
		if segment.Len() == 0 {
			return nil
		}
		var buf bytes.Buffer
		err := r.md.Convert([]byte(segment.String()), &buf)
		segment.Reset()
		if err != nil {
			return fmt.Errorf("failed to convert markdown: %w", err)
		}
		return appendHTML(parent, buf.String())
	}

	for _, line := range strings.Split(markup, "\n") {
		m := transclusionLine.FindStringSubmatch(line)
		if m == nil {
			segment.WriteString(line)
			segment.WriteByte('\n')
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		if err := r.transclude(ctx, parent, models.NewIdentifier(m[1]), depth, stack, st); err != nil {
			return err
		}
	}
	return flush()
}

func (r *Renderer) transclude(ctx context.Context, parent *nethtml.Node, id models.Identifier, depth int, stack []models.Identifier, st *state) error {
	st.record(id)

	for _, open := range stack {
		if open == id {
			r.logger.Warn("Transclusion loop", "identifier", id)
			parent.AppendChild(wrapper(id, "transclusion loop"))
			return nil
		}
	}
	if depth >= r.opts.MaxDepth {
		r.logger.Warn("Transclusion too deep", "identifier", id, "depth", depth)
		parent.AppendChild(wrapper(id, "transclusion too-deep"))
		return nil
	}

	text, err := r.store.Fetch(ctx, id)
	if errors.Is(err, models.ErrPageNotFound) {
		div := wrapper(id, "transclusion missing")
		parent.AppendChild(div)
		return appendHTML(div, fmt.Sprintf(`<span class="description">%s</span> <a class="new" href="%s">%s</a>`,
			html.EscapeString(r.catalog.Lookup("transclusion-missing", string(id))),
			html.EscapeString(id.URL(r.opts.LinkBase)+"?action=edit"),
			html.EscapeString(r.catalog.Lookup("transclusion-create"))))
	}
	if err != nil {
		return fmt.Errorf("failed to transclude %q: %w", id, err)
	}

	div := wrapper(id, "transclusion")
	parent.AppendChild(div)
	return r.render(ctx, div, text, depth+1, append(stack[:len(stack):len(stack)], id), st)
}

func wrapper(id models.Identifier, class string) *nethtml.Node {
	return &nethtml.Node{
		Type:     nethtml.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr: []nethtml.Attribute{
			{Key: "class", Val: class},
			{Key: "data-source", Val: string(id)},
		},
	}
}

// appendHTML parses fragment in the context of parent and appends the
// resulting nodes to it.
func appendHTML(parent *nethtml.Node, fragment string) error {
	scope := &nethtml.Node{Type: nethtml.ElementNode, Data: parent.Data, DataAtom: parent.DataAtom}
	nodes, err := nethtml.ParseFragment(strings.NewReader(fragment), scope)
	if err != nil {
		return fmt.Errorf("failed to parse rendered HTML: %w", err)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return nil
}

func parseBody(fragment string) (*nethtml.Node, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<!DOCTYPE html><html><head></head><body>" + fragment + "</body></html>"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered HTML: %w", err)
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil, fmt.Errorf("failed to parse rendered HTML: no body")
	}
	return body.Get(0), nil
}

// BlocksOf returns the children of parent as depth 0 blocks. Whitespace-only
// text is skipped. Elements <hN> with N = headingLevel are headings.
func BlocksOf(parent *nethtml.Node, headingLevel int) []models.Block {
	heading := headingAtom(headingLevel)
	var blocks []models.Block
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case nethtml.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
		case nethtml.ElementNode, nethtml.CommentNode:
		default:
			continue
		}
		blocks = append(blocks, models.Block{
			Heading: c.Type == nethtml.ElementNode && c.DataAtom == heading,
			Node:    c,
		})
	}
	return blocks
}

func headingAtom(level int) atom.Atom {
	switch level {
	case 1:
		return atom.H1
	case 3:
		return atom.H3
	case 4:
		return atom.H4
	case 5:
		return atom.H5
	case 6:
		return atom.H6
	}
	return atom.H2
}
