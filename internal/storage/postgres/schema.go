package postgres

import (
	"context"
	"fmt"
)

// schemaStatements enumerates every entity shape the store must know about.
// EnsureSchema runs them once at startup, before the store accepts joined
// queries.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		role       TEXT NOT NULL DEFAULT 'user',
		api_token  TEXT UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		slug        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		icon        TEXT NOT NULL DEFAULT '',
		color       TEXT NOT NULL DEFAULT '#3b82f6',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS links (
		id           TEXT PRIMARY KEY,
		url          TEXT NOT NULL,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		image        TEXT NOT NULL DEFAULT '',
		favicon      TEXT NOT NULL DEFAULT '',
		category_id  TEXT NOT NULL REFERENCES categories(id),
		submitted_by TEXT NOT NULL REFERENCES users(id),
		status       TEXT NOT NULL DEFAULT 'pending',
		views        BIGINT NOT NULL DEFAULT 0,
		clicks       BIGINT NOT NULL DEFAULT 0,
		tags         TEXT[] NOT NULL DEFAULT '{}',
		created_at   TIMESTAMPTZ NOT NULL,
		approved_at  TIMESTAMPTZ,
		approved_by  TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_links_status_created ON links (status, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_links_category ON links (category_id)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, pool Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
