// Package stores opens the content store selected by the configuration.
package stores

import (
	"fmt"
	"log/slog"

	"github.com/dtnitsch/mooc-renderer/internal/common"
	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/caching"
	"github.com/dtnitsch/mooc-renderer/pkg/db"
	"github.com/dtnitsch/mooc-renderer/pkg/fetcher"
	"github.com/dtnitsch/mooc-renderer/pkg/storage"
)

const (
	DriverSQLite = "sqlite"
	DriverDir    = "dir"
	DriverHTTP   = "http"
)

// Stores is an opened content store. DB is set only for the sqlite driver
// and Cache only when caching is enabled.
type Stores struct {
	Content models.ContentStore
	DB      *db.DB
	Cache   *caching.Cache
}

// Open opens the store configured in cfg. A negative cache size disables
// the cache.
func Open(cfg models.StoreConfig, logger *slog.Logger) (*Stores, error) {
	s := &Stores{}
	switch cfg.Driver {
	case DriverSQLite, "":
		database, err := db.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		s.DB = database
		s.Content = database
	case DriverDir:
		if cfg.Path == "" {
			return nil, fmt.Errorf("store driver %q needs a path", cfg.Driver)
		}
		s.Content = storage.New(cfg.Path)
	case DriverHTTP:
		base, err := common.ValidateBaseURL(cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		s.Content = fetcher.NewFetcher(base, nil)
	default:
		return nil, fmt.Errorf("unknown store driver %q (want sqlite, dir or http)", cfg.Driver)
	}

	if cfg.CacheSize >= 0 {
		s.Cache = caching.NewCache(s.Content, cfg.CacheSize, cfg.CacheTTL)
		s.Content = s.Cache
	}
	logger.Debug("Opened content store", "driver", cfg.Driver, "path", cfg.Path, "base_url", cfg.BaseURL, "cache_size", cfg.CacheSize)
	return s, nil
}

// Close releases the database, if any.
func (s *Stores) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}
