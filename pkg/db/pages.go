package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dtnitsch/mooc-renderer/internal/common"
	"github.com/dtnitsch/mooc-renderer/models"
)

// PageInfo summarizes a stored page.
type PageInfo struct {
	PageID    int64
	Title     models.Identifier
	Namespace string
	RevID     int64
	SizeBytes int64
	Revisions int
	UpdatedAt time.Time
}

// SavePage stores text as the latest revision of title. A new revision is
// only written when the content hash differs from the latest one.
// Returns (rev_id, changed, error).
func (db *DB) SavePage(ctx context.Context, title models.Identifier, text string) (int64, bool, error) {
	if title == "" {
		return 0, false, fmt.Errorf("failed to save page: empty title")
	}
	hash := common.ContentHash([]byte(text))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	var (
		pageID     int64
		latestRev  sql.NullInt64
		latestHash sql.NullString
	)
	err = tx.QueryRowContext(ctx, `
		SELECT p.page_id, p.latest_rev_id, r.content_hash
		FROM pages p
		LEFT JOIN revisions r ON r.rev_id = p.latest_rev_id
		WHERE p.title = ?
	`, string(title)).Scan(&pageID, &latestRev, &latestHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		result, err := tx.ExecContext(ctx, `
			INSERT INTO pages (title, namespace, root) VALUES (?, ?, ?)
		`, string(title), title.Namespace(), string(title.Root()))
		if err != nil {
			return 0, false, fmt.Errorf("failed to insert page: %w", err)
		}
		if pageID, err = result.LastInsertId(); err != nil {
			return 0, false, fmt.Errorf("failed to get page ID: %w", err)
		}
	case err != nil:
		return 0, false, fmt.Errorf("failed to look up page: %w", err)
	case latestHash.Valid && latestHash.String == hash:
		return latestRev.Int64, false, nil
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO revisions (page_id, text, content_hash, size_bytes) VALUES (?, ?, ?, ?)
	`, pageID, text, hash, len(text))
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert revision: %w", err)
	}
	revID, err := result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get revision ID: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE pages SET latest_rev_id = ? WHERE page_id = ?`, revID, pageID); err != nil {
		return 0, false, fmt.Errorf("failed to update latest revision: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("failed to commit page: %w", err)
	}
	return revID, true, nil
}

// Fetch returns the latest revision text of id. It implements
// models.ContentStore.
func (db *DB) Fetch(ctx context.Context, id models.Identifier) (string, error) {
	var text string
	err := db.QueryRowContext(ctx, `
		SELECT r.text
		FROM pages p
		JOIN revisions r ON r.rev_id = p.latest_rev_id
		WHERE p.title = ?
	`, string(id)).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%q: %w", id, models.ErrPageNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch page %q: %w", id, err)
	}
	return text, nil
}

// FetchRevision returns the text of a specific revision of id.
func (db *DB) FetchRevision(ctx context.Context, id models.Identifier, revID int64) (string, error) {
	var text string
	err := db.QueryRowContext(ctx, `
		SELECT r.text
		FROM revisions r
		JOIN pages p ON p.page_id = r.page_id
		WHERE p.title = ? AND r.rev_id = ?
	`, string(id), revID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%q revision %d: %w", id, revID, models.ErrPageNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch revision: %w", err)
	}
	return text, nil
}

// ListPages returns pages whose title starts with prefix, ordered by title.
// An empty prefix lists all pages.
func (db *DB) ListPages(ctx context.Context, prefix string) ([]PageInfo, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT p.page_id, p.title, p.namespace, r.rev_id, r.size_bytes, r.created_at,
		       (SELECT COUNT(*) FROM revisions rv WHERE rv.page_id = p.page_id)
		FROM pages p
		JOIN revisions r ON r.rev_id = p.latest_rev_id
		WHERE p.title LIKE ? ESCAPE '\'
		ORDER BY p.title
	`, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pages []PageInfo
	for rows.Next() {
		var (
			p     PageInfo
			title string
		)
		if err := rows.Scan(&p.PageID, &title, &p.Namespace, &p.RevID, &p.SizeBytes, &p.UpdatedAt, &p.Revisions); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		p.Title = models.Identifier(title)
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// RevisionCount returns the number of stored revisions of id.
func (db *DB) RevisionCount(ctx context.Context, id models.Identifier) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM revisions r JOIN pages p ON p.page_id = r.page_id WHERE p.title = ?
	`, string(id)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count revisions: %w", err)
	}
	return n, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
