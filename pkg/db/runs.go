package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Run represents a batch render of one course
type Run struct {
	RunID        int64
	Root         string
	CreatedAt    time.Time
	PageCount    int
	SuccessCount int
	FailedCount  int
	OutputDir    string
}

// RunResult is the outcome of rendering one page within a run
type RunResult struct {
	Title        string
	Status       string
	ErrorType    string
	ErrorMessage string
	FilePath     string
	SizeBytes    int64
	TopKeywords  map[string]int
}

// CreateRun inserts a new run and returns its run_id.
func (db *DB) CreateRun(ctx context.Context, root string, pageCount int, outputDir string) (int64, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO render_runs (root, page_count, output_dir)
		VALUES (?, ?, ?)
	`, root, pageCount, outputDir)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// InsertRunResult records the outcome for one page. Recording the same title
// twice replaces the earlier result.
func (db *DB) InsertRunResult(ctx context.Context, runID int64, r RunResult) error {
	var keywords sql.NullString
	if len(r.TopKeywords) > 0 {
		data, err := json.Marshal(r.TopKeywords)
		if err != nil {
			return fmt.Errorf("failed to encode keywords: %w", err)
		}
		keywords = NewNullString(string(data))
	}

	_, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO render_results
			(run_id, title, status, error_type, error_message, file_path, size_bytes, top_keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, r.Title, r.Status, NewNullString(r.ErrorType), NewNullString(r.ErrorMessage),
		NewNullString(r.FilePath), r.SizeBytes, keywords)
	if err != nil {
		return fmt.Errorf("failed to insert run result: %w", err)
	}
	return nil
}

// FinishRun stores the final counters of a run.
func (db *DB) FinishRun(ctx context.Context, runID int64, successCount, failedCount int) error {
	_, err := db.ExecContext(ctx, `
		UPDATE render_runs SET success_count = ?, failed_count = ? WHERE run_id = ?
	`, successCount, failedCount, runID)
	if err != nil {
		return fmt.Errorf("failed to update run stats: %w", err)
	}
	return nil
}

// GetRun returns a run by ID.
func (db *DB) GetRun(ctx context.Context, runID int64) (*Run, error) {
	var r Run
	err := db.QueryRowContext(ctx, `
		SELECT run_id, root, created_at, page_count, success_count, failed_count, output_dir
		FROM render_runs WHERE run_id = ?
	`, runID).Scan(&r.RunID, &r.Root, &r.CreatedAt, &r.PageCount, &r.SuccessCount, &r.FailedCount, &r.OutputDir)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, root, created_at, page_count, success_count, failed_count, output_dir
		FROM render_runs
		ORDER BY run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Root, &r.CreatedAt, &r.PageCount, &r.SuccessCount, &r.FailedCount, &r.OutputDir); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunResults returns the per-page results of a run ordered by title.
func (db *DB) GetRunResults(ctx context.Context, runID int64) ([]RunResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT title, status, error_type, error_message, file_path, size_bytes, top_keywords
		FROM render_results
		WHERE run_id = ?
		ORDER BY title
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []RunResult
	for rows.Next() {
		var (
			r                          RunResult
			errType, errMsg, path, kws sql.NullString
			size                       sql.NullInt64
		)
		if err := rows.Scan(&r.Title, &r.Status, &errType, &errMsg, &path, &size, &kws); err != nil {
			return nil, fmt.Errorf("failed to scan run result: %w", err)
		}
		r.ErrorType = errType.String
		r.ErrorMessage = errMsg.String
		r.FilePath = path.String
		r.SizeBytes = size.Int64
		if kws.Valid {
			_ = json.Unmarshal([]byte(kws.String), &r.TopKeywords) // ignore malformed keyword blobs
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// TopKeywordsForDisplay returns up to limit keywords sorted by count.
func TopKeywordsForDisplay(keywords map[string]int, limit int) []string {
	words := make([]string, 0, len(keywords))
	for w := range keywords {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if keywords[words[i]] != keywords[words[j]] {
			return keywords[words[i]] > keywords[words[j]]
		}
		return words[i] < words[j]
	})
	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return words
}

// NewNullString converts string to sql.NullString (empty string = NULL)
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
