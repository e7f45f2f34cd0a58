package db

import (
	"fmt"

	"github.com/dtnitsch/mooc-renderer/internal/common"
	"github.com/dtnitsch/mooc-renderer/internal/stores"
	dbpkg "github.com/dtnitsch/mooc-renderer/pkg/db"
	"github.com/urfave/cli/v2"
)

// OpenDatabase opens the sqlite page store. The configured store path is
// used when the sqlite driver is selected, else the default database file.
func OpenDatabase(c *cli.Context) (*dbpkg.DB, error) {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, err
	}
	path := ""
	if cfg.Store.Driver == stores.DriverSQLite {
		path = cfg.Store.Path
	}
	database, err := dbpkg.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// GetRunIDOrLatest returns the run ID from args, or the latest run if not provided
func GetRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (int64, error) {
	if c.NArg() == 0 {
		runs, err := database.ListRuns(c.Context, 1)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest run: %w", err)
		}
		if len(runs) == 0 {
			return 0, fmt.Errorf("no runs found. Run 'mooc-renderer render-all --root \"...\"' first")
		}
		return runs[0].RunID, nil
	}

	var runID int64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &runID); err != nil {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return runID, nil
}
