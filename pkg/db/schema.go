package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Pages: one row per normalized title
CREATE TABLE IF NOT EXISTS pages (
    page_id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL UNIQUE,
    namespace TEXT NOT NULL DEFAULT '',
    root TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    latest_rev_id INTEGER
);

CREATE INDEX IF NOT EXISTS idx_pages_root ON pages(root);
CREATE INDEX IF NOT EXISTS idx_pages_namespace ON pages(namespace);

-- Revisions: full page text per saved change
CREATE TABLE IF NOT EXISTS revisions (
    rev_id INTEGER PRIMARY KEY AUTOINCREMENT,
    page_id INTEGER NOT NULL,
    text TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    size_bytes INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (page_id) REFERENCES pages(page_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_revisions_page ON revisions(page_id);
CREATE INDEX IF NOT EXISTS idx_revisions_hash ON revisions(content_hash);

-- Render runs: one row per batch render of a course
CREATE TABLE IF NOT EXISTS render_runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    root TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    page_count INTEGER NOT NULL,
    success_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0,
    output_dir TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_render_runs_created ON render_runs(created_at DESC);

-- Render results: per-page outcome within a run
CREATE TABLE IF NOT EXISTS render_results (
    result_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    title TEXT NOT NULL,
    status TEXT NOT NULL,
    error_type TEXT,
    error_message TEXT,
    file_path TEXT,
    size_bytes INTEGER,
    -- Top keywords as JSON object: {"word1": count1, ...}
    top_keywords TEXT,
    FOREIGN KEY (run_id) REFERENCES render_runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, title)
);

CREATE INDEX IF NOT EXISTS idx_render_results_run ON render_results(run_id);
`
