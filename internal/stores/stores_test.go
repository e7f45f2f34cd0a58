package stores

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/caching"
	"github.com/dtnitsch/mooc-renderer/pkg/fetcher"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestOpenSQLite(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pages.db")

	s, err := Open(models.StoreConfig{Driver: DriverSQLite, Path: path, CacheSize: 8}, quiet)
	require.NoError(t, err)
	defer s.Close()

	require.NotNil(t, s.DB)
	require.NotNil(t, s.Cache)
	_, _, err = s.DB.SavePage(context.Background(), "Kurs", `{"type": "unit"}`)
	require.NoError(t, err)

	text, err := s.Content.Fetch(context.Background(), "Kurs")
	require.NoError(t, err)
	require.Equal(t, `{"type": "unit"}`, text)
}

func TestOpenDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "MOOC"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MOOC", "Kurs.yaml"), []byte("type: unit\n"), 0644))

	s, err := Open(models.StoreConfig{Driver: DriverDir, Path: dir, CacheSize: -1}, quiet)
	require.NoError(t, err)
	require.Nil(t, s.DB)
	require.Nil(t, s.Cache)
	require.NoError(t, s.Close())

	text, err := s.Content.Fetch(context.Background(), "MOOC:Kurs")
	require.NoError(t, err)
	require.Equal(t, "type: unit\n", text)
}

func TestOpenHTTP(t *testing.T) {
	t.Parallel()
	s, err := Open(models.StoreConfig{Driver: DriverHTTP, BaseURL: "https://wiki.example.org/w/"}, quiet)
	require.NoError(t, err)
	cache, ok := s.Content.(*caching.Cache)
	require.True(t, ok)
	require.NotNil(t, cache)
	require.IsType(t, &fetcher.Fetcher{}, s.Cache.Unwrap())
}

func TestOpenErrors(t *testing.T) {
	t.Parallel()
	tests := []models.StoreConfig{
		{Driver: DriverDir},
		{Driver: DriverHTTP, BaseURL: "wiki.example.org"},
		{Driver: "postgres"},
	}
	for _, cfg := range tests {
		_, err := Open(cfg, quiet)
		require.Error(t, err, cfg.Driver)
	}
}
