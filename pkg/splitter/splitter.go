// Package splitter restructures a flat sequence of rendered blocks into
// section containers, one per top-level heading.
package splitter

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/messages"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EditIcon is the icon of the section edit button.
const EditIcon = "ic_edit.svg"

// Splitter is safe for concurrent use; each Split call only touches the
// nodes it is given.
type Splitter struct {
	registry  *models.SectionRegistry
	catalog   messages.Catalog
	imagePath string
}

func New(registry *models.SectionRegistry, catalog messages.Catalog, imagePath string) *Splitter {
	return &Splitter{registry: registry, catalog: catalog, imagePath: imagePath}
}

// Split groups blocks into containers. Every depth 0 heading opens a
// container that receives all following blocks up to the next depth 0
// heading. Blocks before the first heading are dropped. The block nodes are
// moved into the container nodes.
func (s *Splitter) Split(blocks []models.Block) []models.SectionContainer {
	var (
		out     []models.SectionContainer
		current *models.SectionContainer
		content *nethtml.Node
	)
	for _, b := range blocks {
		if b.Heading && b.Depth == 0 {
			if current != nil {
				out = append(out, *current)
			}
			current, content = s.open(b)
			continue
		}
		if current == nil {
			continue
		}
		current.Content = append(current.Content, b)
		if !within(b.Node, content) {
			goquery.NewDocumentFromNode(content).AppendNodes(b.Node)
		}
	}
	if current != nil {
		out = append(out, *current)
	}
	return out
}

// open builds the container for a heading block and returns it with its
// content node.
func (s *Splitter) open(heading models.Block) (*models.SectionContainer, *nethtml.Node) {
	h := goquery.NewDocumentFromNode(heading.Node).Selection
	placeholder := h.Find("span.mooc-edit").First()
	editHref, hasEdit := placeholder.Attr("data-href")
	placeholder.Remove()
	title := strings.TrimSpace(h.Text())

	c := &models.SectionContainer{Title: title, Header: heading}
	if cfg, ok := s.registry.MatchTitle(title); ok {
		c.Key = cfg.Key
		c.Config = &cfg
	}

	section := s.chrome(c, editHref, hasEdit)
	sel := goquery.NewDocumentFromNode(section).Selection
	sel.Find("div.header").AppendNodes(heading.Node)
	c.Node = section
	return c, sel.Find("div.content").Get(0)
}

func (s *Splitter) chrome(c *models.SectionContainer, editHref string, hasEdit bool) *nethtml.Node {
	var sb strings.Builder
	if !c.Keyed() {
		sb.WriteString(`<div class="section"><div class="header"></div><div class="content"></div></div>`)
		return parseElement(sb.String())
	}

	classes := "section"
	if c.Config.Collapsed {
		classes += " default-collapsed"
	}
	fmt.Fprintf(&sb, `<div id="%s" class="%s"><div class="header">`, html.EscapeString(c.Key), classes)
	if hasEdit {
		label := html.EscapeString(s.catalog.Lookup("section-edit", c.Title))
		fmt.Fprintf(&sb, `<div class="actions"><div class="btn-edit"><a href="%s" title="%s"><img src="%s" width="32px" height="32px" alt="%s"/></a></div>`,
			html.EscapeString(editHref), label, html.EscapeString(s.icon(EditIcon)), label)
		fmt.Fprintf(&sb, `<form class="edit-form" method="post" action="%s"><textarea class="value" name="value"></textarea>`+
			`<input type="hidden" name="section" value="%s"/><button type="submit">%s</button> <button type="button" class="cancel">%s</button></form></div>`,
			html.EscapeString(editHref),
			html.EscapeString(c.Key),
			html.EscapeString(s.catalog.Lookup("section-edit-save")),
			html.EscapeString(s.catalog.Lookup("section-edit-cancel")))
	}
	fmt.Fprintf(&sb, `<div class="icon"><img src="%s" width="32px" height="32px" alt=""/></div></div><div class="content"></div></div>`,
		html.EscapeString(s.icon(c.Config.IconFile())))
	return parseElement(sb.String())
}

func (s *Splitter) icon(file string) string {
	if s.imagePath == "" {
		return file
	}
	return strings.TrimSuffix(s.imagePath, "/") + "/" + file
}

// parseElement parses markup holding a single element.
func parseElement(markup string) *nethtml.Node {
	ctx := &nethtml.Node{Type: nethtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := nethtml.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil || len(nodes) == 0 {
		// only reachable with broken templates above
		panic(fmt.Sprintf("splitter: invalid chrome markup: %v", err))
	}
	return nodes[0]
}

func within(n, ancestor *nethtml.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}
