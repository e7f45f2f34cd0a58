// Package pages implements the page management commands on the sqlite page
// store.
package pages

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dtnitsch/mooc-renderer/internal/common"
	dbcmd "github.com/dtnitsch/mooc-renderer/internal/db"
	"github.com/dtnitsch/mooc-renderer/models"
	dbpkg "github.com/dtnitsch/mooc-renderer/pkg/db"
	"github.com/dtnitsch/mooc-renderer/pkg/storage"
	"github.com/urfave/cli/v2"
)

// ImportStats counts the outcome of an import.
type ImportStats struct {
	Total     int
	Changed   int
	Unchanged int
}

// ImportAction loads every page of a directory store into the database.
func ImportAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	dir := c.String("dir")
	if dir == "" {
		return fmt.Errorf("missing --dir")
	}

	database, err := dbcmd.OpenDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := importDir(c.Context, storage.New(dir), database, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d pages (%d changed, %d unchanged) into %s\n", stats.Total, stats.Changed, stats.Unchanged, database.Path())
	return nil
}

func importDir(ctx context.Context, src *storage.Storage, database *dbpkg.DB, logger *slog.Logger) (ImportStats, error) {
	var stats ImportStats
	ids, err := src.List(ctx)
	if err != nil {
		return stats, err
	}
	for _, id := range ids {
		text, err := src.Fetch(ctx, id)
		if err != nil {
			return stats, fmt.Errorf("failed to read %q: %w", id, err)
		}
		revID, changed, err := database.SavePage(ctx, id, text)
		if err != nil {
			return stats, err
		}
		stats.Total++
		if changed {
			stats.Changed++
		} else {
			stats.Unchanged++
		}
		logger.Debug("Imported page", "identifier", id, "rev_id", revID, "changed", changed)
	}
	return stats, nil
}

// ListAction prints stored pages, optionally filtered by title prefix.
func ListAction(c *cli.Context) error {
	database, err := dbcmd.OpenDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	// titles are stored with spaces
	prefix := strings.ReplaceAll(c.String("prefix"), "_", " ")
	pages, err := database.ListPages(c.Context, prefix)
	if err != nil {
		return err
	}
	printPages(os.Stdout, pages)
	return nil
}

func printPages(w io.Writer, pages []dbpkg.PageInfo) {
	if len(pages) == 0 {
		fmt.Fprintln(w, "No pages found")
		return
	}
	fmt.Fprintf(w, "%-50s %-6s %-8s %-10s %s\n", "Title", "Revs", "Rev", "Size", "Updated")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, p := range pages {
		fmt.Fprintf(w, "%-50s %-6d %-8d %-10d %s\n",
			p.Title, p.Revisions, p.RevID, p.SizeBytes, p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "\nTotal: %d pages\n", len(pages))
}

// GetAction prints the text of a page, the latest revision unless --rev is
// given.
func GetAction(c *cli.Context) error {
	id, err := common.ItemArg(c, "item")
	if err != nil {
		return err
	}
	database, err := dbcmd.OpenDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	var text string
	if c.IsSet("rev") {
		text, err = database.FetchRevision(c.Context, id, c.Int64("rev"))
	} else {
		text, err = database.Fetch(c.Context, id)
	}
	if err != nil {
		return err
	}
	fmt.Print(text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Println()
	}
	return nil
}

// PutAction stores the contents of a file (or stdin for "-") as a page.
func PutAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	if c.NArg() < 2 {
		return fmt.Errorf("usage: pages put <identifier> <file>")
	}
	id := models.NewIdentifier(c.Args().Get(0))
	file := c.Args().Get(1)

	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = storage.New(".").ReadFile(file)
	}
	if err != nil {
		return fmt.Errorf("failed to read page text: %w", err)
	}

	database, err := dbcmd.OpenDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	revID, changed, err := database.SavePage(c.Context, id, string(data))
	if err != nil {
		return err
	}
	logger.Info("Stored page", "identifier", id, "rev_id", revID, "changed", changed)
	if changed {
		fmt.Printf("Saved %s as revision %d\n", id, revID)
	} else {
		fmt.Printf("%s unchanged (revision %d)\n", id, revID)
	}
	return nil
}
