package render

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/analytics"
	"github.com/dtnitsch/mooc-renderer/pkg/messages"
	renderpkg "github.com/dtnitsch/mooc-renderer/pkg/render"
	"github.com/dtnitsch/mooc-renderer/pkg/storage"
	"github.com/stretchr/testify/require"
)

var course = map[string]string{
	"MOOC:Kurs":                `{"type": "unit", "children": ["Routing", "Adressen", "Extra"], "learning-goals": ["Routing verstehen"]}`,
	"MOOC:Kurs/Routing":        "type: lesson\nlearning-goals:\n  - Routing Tabellen lesen\n",
	"MOOC:Kurs/Routing/script": "## Routing\n\nRouting mit Tabellen. Routing ist wichtig.",
	"MOOC:Kurs/Adressen":       `{"type": "lesson", "video": "adressen.webm"}`,
	"MOOC:Kurs/Extra":          `{"type": "exam"}`,
}

func newBatch(t *testing.T, format string) (*batch, *renderpkg.Service) {
	t.Helper()
	bundle, err := messages.LoadBundle()
	require.NoError(t, err)
	cfg := models.DefaultConfig()
	cfg.Language = "de"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := renderpkg.NewService(models.NewMapStore(course), cfg, bundle, logger)
	require.NoError(t, err)

	dir := t.TempDir()
	return &batch{
		service:   svc,
		storage:   storage.New(dir),
		analytics: analytics.New("de"),
		logger:    logger,
		workers:   3,
		format:    format,
		outputDir: dir,
	}, svc
}

func TestBatchRun(t *testing.T) {
	t.Parallel()
	b, svc := newBatch(t, FormatHTML)
	ctx := context.Background()

	tree, err := svc.Structure(ctx, "MOOC:Kurs")
	require.NoError(t, err)

	results, total, err := b.run(ctx, tree)
	require.NoError(t, err)
	require.Len(t, results, 4)

	titles := make([]models.Identifier, len(results))
	for i, r := range results {
		titles[i] = r.Title
		require.NoError(t, r.Error)
		require.FileExists(t, r.FilePath)
	}
	require.Equal(t, []models.Identifier{"MOOC:Kurs", "MOOC:Kurs/Routing", "MOOC:Kurs/Adressen", "MOOC:Kurs/Extra"}, titles)
	require.Equal(t, filepath.Join(b.outputDir, "mooc-kurs-routing.html"), results[1].FilePath)

	data, err := os.ReadFile(results[1].FilePath)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))
	require.Contains(t, string(data), `<div class="transclusion" data-source="MOOC:Kurs/Routing/script">`)

	require.Greater(t, results[1].WordCounts["routing"], 2)
	require.NotEmpty(t, results[3].Document.Error)
	require.Empty(t, results[3].WordCounts)
	require.GreaterOrEqual(t, total["routing"], results[1].WordCounts["routing"])
}

func TestBatchRunJSON(t *testing.T) {
	t.Parallel()
	b, svc := newBatch(t, FormatJSON)
	ctx := context.Background()

	tree, err := svc.Structure(ctx, "MOOC:Kurs")
	require.NoError(t, err)
	results, _, err := b.run(ctx, tree)
	require.NoError(t, err)

	data, err := os.ReadFile(results[2].FilePath)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, "MOOC:Kurs/Adressen", doc["title"])
	require.Equal(t, "adressen.webm", doc["edit_values"].(map[string]any)["video"])
}

func TestBatchRunCanceled(t *testing.T) {
	t.Parallel()
	b, svc := newBatch(t, FormatHTML)

	tree, err := svc.Structure(context.Background(), "MOOC:Kurs")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = b.run(ctx, tree)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEncodeDocument(t *testing.T) {
	t.Parallel()
	doc := &models.Document{Title: "Kurs", Name: "Kurs & Co", Excerpt: `Ein "Kurs"`, HTML: `<div id="mooc"></div>`}

	data, err := encodeDocument(doc, FormatHTML)
	require.NoError(t, err)
	page := string(data)
	require.Contains(t, page, `<html lang="de">`)
	require.Contains(t, page, "<title>Kurs &amp; Co</title>")
	require.Contains(t, page, `<meta name="description" content="Ein &#34;Kurs&#34;">`)
	require.Contains(t, page, `<div id="mooc"></div>`)

	_, err = encodeDocument(doc, "pdf")
	require.Error(t, err)
}

func TestStructureEntries(t *testing.T) {
	t.Parallel()
	tree := &models.StructureNode{
		Item: &models.Item{Title: "MOOC:Kurs", Type: models.ItemTypeUnit, Name: "Netze"},
		Children: []*models.StructureNode{
			{Item: &models.Item{Title: "MOOC:Kurs/Woche 1", Type: models.ItemTypeLesson}},
		},
	}

	entry := structureEntries(tree, "/wiki")
	require.Equal(t, "Netze", entry.Name)
	require.Len(t, entry.Children, 1)
	require.Equal(t, "Woche 1", entry.Children[0].Name)
	require.Equal(t, "/wiki/MOOC:Kurs/Woche_1", entry.Children[0].URL)
	require.Equal(t, models.ItemTypeLesson, entry.Children[0].Type)
}
