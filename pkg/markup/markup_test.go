package markup

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/messages"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func newTestRenderer(t *testing.T, pages map[string]string, opts Options) *Renderer {
	t.Helper()
	bundle, err := messages.LoadBundle()
	require.NoError(t, err)
	if opts.LinkBase == "" {
		opts.LinkBase = "/wiki"
	}
	return NewRenderer(models.NewMapStore(pages), bundle.Catalog("en"), opts, nil)
}

func outer(t *testing.T, n *html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, html.Render(&buf, n))
	return buf.String()
}

func tags(blocks []models.Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		if b.Node.Type == html.TextNode {
			out[i] = "#text"
			continue
		}
		out[i] = b.Node.Data
	}
	return out
}

func TestRenderDocumentBlocks(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t, nil, Options{})

	rendered, err := r.RenderDocument(context.Background(), []models.SectionMarkup{
		{Key: "learning-goals", Markup: "<h2>Lernziele<span class=\"mooc-edit\" data-href=\"/e\"></span></h2>\n\n1. Understand X\n2. Apply Y\n"},
		{Key: "video", Markup: "<h2>Video<span class=\"mooc-edit\" data-href=\"/e\"></span></h2>\n\n<div class=\"section-empty-box\">nothing</div>\n"},
	})
	require.NoError(t, err)

	require.Equal(t, []string{"h2", "ol", "h2", "div"}, tags(rendered.Blocks))
	require.Equal(t, []bool{true, false, true, false}, []bool{
		rendered.Blocks[0].Heading, rendered.Blocks[1].Heading, rendered.Blocks[2].Heading, rendered.Blocks[3].Heading,
	})
	for _, b := range rendered.Blocks {
		require.Equal(t, 0, b.Depth)
		require.Same(t, rendered.Body, b.Node.Parent)
	}

	items := goquery.NewDocumentFromNode(rendered.Blocks[1].Node).Find("li")
	require.Equal(t, 2, items.Length())
	require.Equal(t, "Apply Y", items.Eq(1).Text())
	require.Empty(t, rendered.Transcluded)
}

func TestRenderTransclusion(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t, map[string]string{
		"Kurs/Intro/script": "## Teil 1\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n{{:Kurs/Shared}}\n",
		"Kurs/Shared":       "Shared *text*",
	}, Options{})

	rendered, err := r.RenderDocument(context.Background(), []models.SectionMarkup{
		{Key: "script", Markup: "<h2>Skript</h2>\n\n{{:Kurs/Intro/script}}\n"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"h2", "div"}, tags(rendered.Blocks))
	require.Equal(t, []models.Identifier{"Kurs/Intro/script", "Kurs/Shared"}, rendered.Transcluded)

	div := goquery.NewDocumentFromNode(rendered.Blocks[1].Node).Selection
	require.True(t, div.HasClass("transclusion"))
	require.Equal(t, "Kurs/Intro/script", div.AttrOr("data-source", ""))
	require.Equal(t, "Teil 1", div.Find("h2").Text())
	require.Equal(t, 1, div.Find("table").Length())
	require.Equal(t, "text", div.Find(`div[data-source="Kurs/Shared"] em`).Text())
}

func TestRenderTransclusionMissing(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t, nil, Options{})

	out, err := r.RenderHTML(context.Background(), "{{:Kurs/Nope}}")
	require.NoError(t, err)
	require.Contains(t, out, `<div class="transclusion missing" data-source="Kurs/Nope">`)
	require.Contains(t, out, "The page Kurs/Nope does not exist yet.")
	require.Contains(t, out, `href="/wiki/Kurs/Nope?action=edit"`)
}

func TestRenderTransclusionLoopAndDepth(t *testing.T) {
	t.Parallel()

	loop := newTestRenderer(t, map[string]string{
		"A": "{{:B}}",
		"B": "{{:A}}",
	}, Options{})
	out, err := loop.RenderHTML(context.Background(), "{{:A}}")
	require.NoError(t, err)
	require.Contains(t, out, `<div class="transclusion loop" data-source="A">`)

	deep := newTestRenderer(t, map[string]string{
		"A": "{{:B}}",
		"B": "{{:C}}",
		"C": "end",
	}, Options{MaxDepth: 2})
	out, err = deep.RenderHTML(context.Background(), "{{:A}}")
	require.NoError(t, err)
	require.Contains(t, out, `<div class="transclusion too-deep" data-source="C">`)
	require.NotContains(t, out, "end")
}

func TestRenderHeadingLevel(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t, nil, Options{HeadingLevel: 3})

	rendered, err := r.RenderDocument(context.Background(), []models.SectionMarkup{
		{Key: "x", Markup: "## Not a section\n\n### Section\n\ntext\n"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"h2", "h3", "p"}, tags(rendered.Blocks))
	require.False(t, rendered.Blocks[0].Heading)
	require.True(t, rendered.Blocks[1].Heading)
	require.Contains(t, outer(t, rendered.Blocks[2].Node), "text")
}

func TestBlocksOfSkipsWhitespace(t *testing.T) {
	t.Parallel()

	body, err := parseBody("\n  <p>a</p>\n\n loose text <!-- note -->\n<h2>b</h2>")
	require.NoError(t, err)
	blocks := BlocksOf(body, 2)
	require.Equal(t, []string{"p", "#text", " note ", "h2"}, tags(blocks))
	require.True(t, blocks[3].Heading)
}

func TestRenderTransclusionKeepsTagsInside(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t, map[string]string{
		"Kurs/open":  "<div class=\"note\">\n\nHinweis\n\n## Teil 1\n\nText",
		"Kurs/close": "Text\n\n</div>\n\n## Zusammenfassung\n\nmore",
	}, Options{})

	rendered, err := r.RenderDocument(context.Background(), []models.SectionMarkup{
		{Key: "script", Markup: "<h2>Skript</h2>\n\n{{:Kurs/open}}\n"},
		{Key: "quiz", Markup: "<h2>Quiz</h2>\n\n{{:Kurs/close}}\n"},
		{Key: "further-reading", Markup: "<h2>Literatur</h2>\n\n1. Buch\n"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"h2", "div", "h2", "div", "h2", "ol"}, tags(rendered.Blocks))

	open := goquery.NewDocumentFromNode(rendered.Blocks[1].Node).Selection
	require.Equal(t, "Teil 1", open.Find("div.note h2").Text())
	closing := goquery.NewDocumentFromNode(rendered.Blocks[3].Node).Selection
	require.Equal(t, "Zusammenfassung", closing.Find("h2").Text())
	require.Contains(t, closing.Text(), "more")
}
