package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if dataSourceName == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

const schema = `
-- Append-only activity log. content holds the pre-update snapshot.
CREATE TABLE IF NOT EXISTS activity_log (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    drive_id TEXT NOT NULL,
    page_id TEXT,
    change_group_id TEXT,
    ai_conversation_id TEXT,
    activity_type TEXT NOT NULL,
    content TEXT,
    actor_id TEXT NOT NULL DEFAULT '',
    actor_name TEXT NOT NULL DEFAULT '',
    resource_title TEXT NOT NULL DEFAULT '',
    is_ai_generated INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_drive ON activity_log(tenant_id, drive_id, created_at);
CREATE INDEX IF NOT EXISTS idx_activity_page ON activity_log(tenant_id, page_id);

-- Page content snapshots, one per revision.
CREATE TABLE IF NOT EXISTS page_versions (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    page_id TEXT NOT NULL,
    change_group_id TEXT NOT NULL,
    revision INTEGER NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (tenant_id, page_id, revision)
);
CREATE INDEX IF NOT EXISTS idx_versions_change_group ON page_versions(tenant_id, page_id, change_group_id, revision);

-- API keys for authentication
CREATE TABLE IF NOT EXISTS api_keys (
    key_hash TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP,
    description TEXT
);
CREATE INDEX IF NOT EXISTS idx_tenant_keys ON api_keys(tenant_id);
`

// RunMigrations creates the schema. It is safe to run on every start.
func (db *DB) RunMigrations() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
