package render

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dtnitsch/mooc-renderer/internal/common"
	"github.com/dtnitsch/mooc-renderer/internal/stores"
	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/analytics"
	"github.com/dtnitsch/mooc-renderer/pkg/db"
	"github.com/dtnitsch/mooc-renderer/pkg/manifest"
	"github.com/dtnitsch/mooc-renderer/pkg/mapreduce"
	"github.com/dtnitsch/mooc-renderer/pkg/messages"
	renderpkg "github.com/dtnitsch/mooc-renderer/pkg/render"
	"github.com/dtnitsch/mooc-renderer/pkg/storage"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// openService opens the configured store and builds the render service on
// top of it. The caller closes the returned stores.
func openService(c *cli.Context, logger *slog.Logger) (*renderpkg.Service, *stores.Stores, *models.Config, error) {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := stores.Open(cfg.Store, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	bundle, err := messages.LoadBundle()
	if err != nil {
		_ = st.Close()
		return nil, nil, nil, fmt.Errorf("failed to load messages: %w", err)
	}
	svc, err := renderpkg.NewService(st.Content, cfg, bundle, logger)
	if err != nil {
		_ = st.Close()
		return nil, nil, nil, err
	}
	return svc, st, cfg, nil
}

// RenderAction renders a single item to stdout or --out.
func RenderAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	id, err := common.ItemArg(c, "item")
	if err != nil {
		return err
	}

	svc, st, _, err := openService(c, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	startTime := time.Now()
	doc, err := svc.Render(c.Context, id)
	if err != nil {
		logger.Error("Render failed", "identifier", id, "error_type", models.ErrorKind(err), "error", err)
		return fmt.Errorf("failed to render %q: %w", id, err)
	}
	logger.Info("Rendered item", "identifier", id, "sections", len(doc.Sections), "links", len(doc.Links), "elapsed", time.Since(startTime).String())

	data, err := encodeDocument(doc, c.String("format"))
	if err != nil {
		return err
	}
	return common.WriteOutput(c.String("out"), data)
}

// RenderAllAction renders every page of a course into --output-dir and
// writes the manifest.
func RenderAllAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	root, err := common.ItemArg(c, "root")
	if err != nil {
		return err
	}
	outputDir := c.String("output-dir")
	format := c.String("format")
	if format != FormatHTML && format != FormatJSON {
		return fmt.Errorf("unknown format %q (want html or json)", format)
	}

	svc, st, cfg, err := openService(c, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	startTime := time.Now()
	tree, err := svc.Structure(c.Context, root)
	if err != nil {
		logger.Error("Structure resolution failed", "root", root, "error_type", models.ErrorKind(err), "error", err)
		return fmt.Errorf("failed to resolve course %q: %w", root, err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	b := &batch{
		service:   svc,
		storage:   storage.New(outputDir),
		analytics: analytics.New(),
		logger:    logger,
		workers:   cfg.Workers,
		format:    format,
		outputDir: outputDir,
	}
	results, total, err := b.run(c.Context, tree)
	if err != nil {
		return err
	}

	m := manifest.Build(tree.Identifier(), results, total, time.Now())
	if st.DB != nil {
		runID, err := recordRun(c, st.DB, tree.Identifier(), outputDir, results, m)
		if err != nil {
			logger.Error("Failed to record run", "error", err)
		} else {
			m.RunID = runID
		}
	}

	manifestPath, err := manifest.Write(m, outputDir, b.storage)
	if err != nil {
		return err
	}
	if st.Cache != nil {
		stats := st.Cache.Stats()
		logger.Info("Content cache", "hits", stats.Hits, "misses", stats.Misses, "entries", stats.Entries)
	}

	summary := RunSummary{
		Root:         string(tree.Identifier()),
		RunID:        m.RunID,
		Pages:        m.TotalPages,
		Successful:   m.Successful,
		Failed:       m.Failed,
		OutputDir:    outputDir,
		ManifestPath: manifestPath,
		ElapsedMS:    time.Since(startTime).Milliseconds(),
	}
	out, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	fmt.Print(string(out))

	if m.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d pages failed, see %s", m.Failed, m.TotalPages, manifestPath), 1)
	}
	return nil
}

// recordRun stores the run and its per page results in the database.
func recordRun(c *cli.Context, database *db.DB, root models.Identifier, outputDir string, results []manifest.PageResult, m *manifest.Manifest) (int64, error) {
	runID, err := database.CreateRun(c.Context, string(root), len(results), outputDir)
	if err != nil {
		return 0, err
	}
	for i, r := range results {
		row := db.RunResult{
			Title:     string(r.Title),
			Status:    r.Status(),
			FilePath:  r.FilePath,
			SizeBytes: r.SizeBytes,
		}
		row.ErrorType = m.Results[i].ErrorType
		row.ErrorMessage = m.Results[i].ErrorMessage
		if r.WordCounts != nil {
			row.TopKeywords = mapreduce.TopCounts(r.WordCounts, 10)
		}
		if err := database.InsertRunResult(c.Context, runID, row); err != nil {
			return 0, err
		}
	}
	if err := database.FinishRun(c.Context, runID, m.Successful, m.Failed); err != nil {
		return 0, err
	}
	return runID, nil
}

// StructureAction prints the resolved course tree.
func StructureAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	id, err := common.ItemArg(c, "item")
	if err != nil {
		return err
	}

	svc, st, cfg, err := openService(c, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	tree, err := svc.Structure(c.Context, id)
	if err != nil {
		return fmt.Errorf("failed to resolve course %q: %w", id.Root(), err)
	}
	entries := structureEntries(tree, cfg.LinkBase)

	var data []byte
	switch c.String("format") {
	case FormatYAML:
		data, err = yaml.Marshal(entries)
	case FormatJSON:
		data, err = json.MarshalIndent(entries, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", c.String("format"))
	}
	if err != nil {
		return fmt.Errorf("failed to marshal structure: %w", err)
	}
	return common.WriteOutput(c.String("out"), data)
}
