package db

import (
	"fmt"
	"io"
	"os"
	"strings"

	dbpkg "github.com/dtnitsch/mooc-renderer/pkg/db"
	"github.com/urfave/cli/v2"
)

// RunsAction lists recent batch renders.
func RunsAction(c *cli.Context) error {
	database, err := OpenDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	printRuns(os.Stdout, runs)
	return nil
}

// RunAction shows the per page results of one run, the latest by default.
func RunAction(c *cli.Context) error {
	database, err := OpenDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}
	run, err := database.GetRun(c.Context, runID)
	if err != nil {
		return err
	}
	results, err := database.GetRunResults(c.Context, runID)
	if err != nil {
		return err
	}
	printRun(os.Stdout, run, results, c.Bool("failed"))
	return nil
}

// InitAction creates the database schema.
func InitAction(c *cli.Context) error {
	database, err := OpenDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.InitSchema(); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	fmt.Printf("Database initialized: %s\n", database.Path())
	return nil
}

func printRuns(w io.Writer, runs []dbpkg.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found")
		return
	}

	fmt.Fprintf(w, "%-6s %-20s %-8s %-8s %-8s %-30s %s\n",
		"ID", "Created", "Pages", "Success", "Failed", "Root", "Output Dir")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range runs {
		fmt.Fprintf(w, "%-6d %-20s %-8d %-8d %-8d %-30s %s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.PageCount,
			r.SuccessCount,
			r.FailedCount,
			r.Root,
			r.OutputDir,
		)
	}
	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	fmt.Fprintf(w, "\nTip: Use 'mooc-renderer db run <id>' to see details\n")
}

func printRun(w io.Writer, run *dbpkg.Run, results []dbpkg.RunResult, failedOnly bool) {
	fmt.Fprintf(w, "Run %d\n", run.RunID)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Created:     %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Root:        %s\n", run.Root)
	fmt.Fprintf(w, "Directory:   %s\n", run.OutputDir)
	fmt.Fprintf(w, "Pages:       %d total (%d success, %d failed)\n",
		run.PageCount, run.SuccessCount, run.FailedCount)

	fmt.Fprintf(w, "\nResults (%d):\n", len(results))
	fmt.Fprintln(w, strings.Repeat("-", 60))
	n := 0
	for _, r := range results {
		if failedOnly && r.Status == "success" {
			continue
		}
		n++
		fmt.Fprintf(w, "%2d. [%s] %s\n", n, r.Status, r.Title)
		switch {
		case r.ErrorType != "":
			fmt.Fprintf(w, "    Error: [%s] %s\n", r.ErrorType, r.ErrorMessage)
		default:
			fmt.Fprintf(w, "    File: %s | Size: %d bytes\n", r.FilePath, r.SizeBytes)
		}
		if kws := dbpkg.TopKeywordsForDisplay(r.TopKeywords, 5); len(kws) > 0 {
			fmt.Fprintf(w, "    Keywords: %s\n", strings.Join(kws, ", "))
		}
	}
}
