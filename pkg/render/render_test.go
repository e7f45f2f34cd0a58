package render

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/messages"
	"github.com/stretchr/testify/require"
)

var coursePages = map[string]string{
	"MOOC:Kurs": `{
		"type": "unit",
		"name": "Netzwerke",
		"children": ["Einführung", "Vertiefung", "Sonstiges"],
		"learning-goals": ["Die Grundlagen von Rechnernetzen verstehen und die wichtigsten Protokolle erklären können"]
	}`,
	"MOOC:Kurs/Einführung": "type: lesson\nvideo: intro.webm\nlearning-goals:\n  - Understand how the network protocol handles retransmission of lost packets\n",

	"MOOC:Kurs/Einführung/script": "## Teil 1\n\nDas Skript.",
	"MOOC:Kurs/Vertiefung":        `{"type": "lesson", "quiz": ":MOOC:Quizze/Vertiefung"}`,
	"MOOC:Kurs/Sonstiges":         `{"type": "exam"}`,
}

func newService(t *testing.T, pages map[string]string, language string) *Service {
	t.Helper()
	bundle, err := messages.LoadBundle()
	require.NoError(t, err)
	cfg := models.DefaultConfig()
	cfg.Language = language
	s, err := NewService(models.NewMapStore(pages), cfg, bundle, nil)
	require.NoError(t, err)
	return s
}

func sectionKeys(doc *models.Document) []string {
	keys := make([]string, len(doc.Sections))
	for i, s := range doc.Sections {
		keys[i] = s.Key
	}
	return keys
}

func TestRenderUnit(t *testing.T) {
	t.Parallel()
	s := newService(t, coursePages, "de")

	doc, err := s.Render(context.Background(), "MOOC:Kurs")
	require.NoError(t, err)
	require.Equal(t, "Netzwerke", doc.Name)
	require.Equal(t, "de", doc.Language)
	require.Equal(t, []string{"learning-goals", "video", "children", "further-reading"}, sectionKeys(doc))
	require.Len(t, doc.Navigation.Children, 3)
	require.Equal(t, models.Identifier("MOOC:Kurs/Einführung"), doc.Next.Identifier)

	page, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	require.NoError(t, err)
	require.Equal(t, 3, page.Find("#children ol li").Length())
	require.Equal(t, "Kategorie", page.Find(".catlinks .label").Text())
}

func TestRenderLessonTransclusions(t *testing.T) {
	t.Parallel()
	s := newService(t, coursePages, "de")
	ctx := context.Background()

	doc, err := s.Render(ctx, "MOOC:Kurs/Einführung")
	require.NoError(t, err)
	require.Equal(t, []string{"learning-goals", "video", "script", "quiz", "further-reading"}, sectionKeys(doc))
	require.Contains(t, doc.Links, models.Identifier("MOOC:Kurs/Einführung/script"))
	require.Contains(t, doc.Sections[2].ContentHTML, "<h2>Teil 1</h2>")
	require.Contains(t, doc.Sections[3].ContentHTML, "section-empty-box")
	require.Contains(t, doc.Sections[3].ContentHTML, "MOOC:Kurs/Einführung/quiz")

	doc, err = s.Render(ctx, "MOOC:Kurs/Vertiefung")
	require.NoError(t, err)
	require.Contains(t, doc.Sections[3].ContentHTML, "MOOC:Quizze/Vertiefung")
	require.Equal(t, models.Identifier("MOOC:Kurs/Einführung"), doc.Previous.Identifier)
}

func TestRenderUnknownType(t *testing.T) {
	t.Parallel()
	s := newService(t, coursePages, "de")

	doc, err := s.Render(context.Background(), "MOOC:Kurs/Sonstiges")
	require.NoError(t, err)
	require.NotEmpty(t, doc.Error)
	require.Empty(t, doc.Sections)
	require.NotNil(t, doc.Navigation)
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pages map[string]string
		id    models.Identifier
		check func(t *testing.T, err error)
	}{
		{
			name:  "missing root",
			pages: map[string]string{},
			id:    "MOOC:Kurs",
			check: func(t *testing.T, err error) {
				var nf *models.NotFoundError
				require.True(t, errors.As(err, &nf))
				require.Equal(t, models.Identifier("MOOC:Kurs"), nf.Identifier)
			},
		},
		{
			name:  "not part of course",
			pages: coursePages,
			id:    "MOOC:Kurs/Einführung/script",
			check: func(t *testing.T, err error) {
				var nf *models.NotFoundError
				require.True(t, errors.As(err, &nf))
				require.Equal(t, models.Identifier("MOOC:Kurs"), nf.Parent)
			},
		},
		{
			name:  "malformed child",
			pages: map[string]string{"Kurs": `{"type": "unit", "children": ["a"]}`, "Kurs/a": "[1, 2"},
			id:    "Kurs",
			check: func(t *testing.T, err error) {
				var mc *models.MalformedContentError
				require.True(t, errors.As(err, &mc))
			},
		},
		{
			name:  "cycle",
			pages: map[string]string{"Kurs": `{"type": "unit", "children": [":Kurs"]}`},
			id:    "Kurs",
			check: func(t *testing.T, err error) {
				var ce *models.CycleError
				require.True(t, errors.As(err, &ce))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newService(t, tt.pages, "de").Render(context.Background(), tt.id)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestLanguageSelection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	doc, err := newService(t, coursePages, "en").Render(ctx, "MOOC:Kurs")
	require.NoError(t, err)
	require.Equal(t, "en", doc.Language)
	require.Contains(t, doc.HTML, `<span class="label">Category</span>`)

	doc, err = newService(t, coursePages, "xx").Render(ctx, "MOOC:Kurs")
	require.NoError(t, err)
	require.Equal(t, messages.DefaultLanguage, doc.Language)

	auto := newService(t, coursePages, LanguageAuto)
	doc, err = auto.Render(ctx, "MOOC:Kurs/Einführung")
	require.NoError(t, err)
	require.Equal(t, "en", doc.Language)

	doc, err = auto.Render(ctx, "MOOC:Kurs")
	require.NoError(t, err)
	require.Equal(t, "de", doc.Language)

	// no text falls back to the default
	require.Equal(t, messages.DefaultLanguage, auto.Language(&models.Item{Title: "Kurs"}))
}

func TestRenderNodeReusesTree(t *testing.T) {
	t.Parallel()
	s := newService(t, coursePages, "de")
	ctx := context.Background()

	tree, err := s.Structure(ctx, "MOOC:Kurs/Vertiefung")
	require.NoError(t, err)
	require.Equal(t, 4, tree.Count())

	for _, node := range tree.Flatten() {
		doc, err := s.RenderNode(ctx, tree, node)
		require.NoError(t, err)
		require.Equal(t, node.Identifier(), doc.Title)
	}
}

type countingStore struct {
	*models.MapStore
	mu    sync.Mutex
	reads map[models.Identifier]int
}

func (c *countingStore) Fetch(ctx context.Context, id models.Identifier) (string, error) {
	c.mu.Lock()
	c.reads[id]++
	c.mu.Unlock()
	return c.MapStore.Fetch(ctx, id)
}

func TestRenderNodeReadsTranscludedPagesOnce(t *testing.T) {
	t.Parallel()
	bundle, err := messages.LoadBundle()
	require.NoError(t, err)
	store := &countingStore{MapStore: models.NewMapStore(coursePages), reads: map[models.Identifier]int{}}
	s, err := NewService(store, models.DefaultConfig(), bundle, nil)
	require.NoError(t, err)
	ctx := context.Background()

	tree, err := s.Structure(ctx, "MOOC:Kurs")
	require.NoError(t, err)
	doc, err := s.RenderNode(ctx, tree, tree.Find("MOOC:Kurs/Einführung"))
	require.NoError(t, err)
	require.Contains(t, doc.Sections[2].ContentHTML, "Das Skript.")

	require.Equal(t, 1, store.reads["MOOC:Kurs/Einführung/script"])
	require.Equal(t, 1, store.reads["MOOC:Kurs/Einführung/quiz"])
}

func TestRenderContainsTranscludedMarkup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
	}{
		{name: "unclosed div", script: "<div class=\"note\">\n\nHinweis\n\n## Teil 1\n\nText"},
		{name: "stray closing div", script: "Text\n\n</div>\n\n## Zusammenfassung\n\nmore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newService(t, map[string]string{
				"Kurs":        `{"type": "lesson"}`,
				"Kurs/script": tt.script,
			}, "de")

			doc, err := s.Render(context.Background(), "Kurs")
			require.NoError(t, err)
			require.Equal(t, []string{"learning-goals", "video", "script", "quiz", "further-reading"}, sectionKeys(doc))

			script, err := goquery.NewDocumentFromReader(strings.NewReader(doc.Sections[2].ContentHTML))
			require.NoError(t, err)
			require.Equal(t, 1, script.Find(`div.transclusion[data-source="Kurs/script"] h2`).Length())
		})
	}
}
