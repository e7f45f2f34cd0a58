package manifest

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/mapreduce"
	"github.com/dtnitsch/mooc-renderer/pkg/storage"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	results := []PageResult{
		{
			Title:      "MOOC:Kurs",
			Document:   &models.Document{Name: "Kurs", Language: "de", Excerpt: "Ein Kurs"},
			FilePath:   "out/mooc-kurs.html",
			SizeBytes:  512,
			WordCounts: map[string]int{"netz": 2},
		},
		{
			Title: "MOOC:Kurs/a",
			Error: &models.MalformedContentError{Identifier: "MOOC:Kurs/a", Reason: "field \"children\"", Err: errors.New("not a list")},
		},
		{
			Title:    "MOOC:Kurs/b",
			Document: &models.Document{Name: "b", Error: "Keine Darstellung"},
			FilePath: "out/mooc-kurs-b.html",
		},
	}

	m := Build("MOOC:Kurs", results, map[string]int{"netz": 2, "paket": 1}, now)

	require.Equal(t, "2026-03-01T12:00:00Z", m.GeneratedAt)
	require.Equal(t, 3, m.TotalPages)
	require.Equal(t, 2, m.Successful)
	require.Equal(t, 1, m.Failed)
	require.Equal(t, []mapreduce.Keyword{{Word: "netz", Count: 2}, {Word: "paket", Count: 1}}, m.AggregateKeywords)

	require.Equal(t, "success", m.Results[0].Status)
	require.Equal(t, "Ein Kurs", m.Results[0].Excerpt)
	require.Equal(t, int64(512), m.Results[0].SizeBytes)
	require.Len(t, m.Results[0].TopKeywords, 1)

	require.Equal(t, "error", m.Results[1].Status)
	require.Equal(t, "malformed_content", m.Results[1].ErrorType)
	require.Empty(t, m.Results[1].FilePath)

	require.Equal(t, "success", m.Results[2].Status)
	require.Equal(t, "unknown_item_type", m.Results[2].ErrorType)
}

func TestWrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	m := Build("Kurs", nil, nil, time.Now())

	path, err := Write(m, dir, storage.New(dir))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, FileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Manifest
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "Kurs", decoded.Root)
	require.Empty(t, decoded.Results)
}
