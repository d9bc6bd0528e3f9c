package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables for the given prefix if they do not
// exist. Run by cmd/seed; production migrations are managed externally.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	stmts := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				is_archived BOOLEAN NOT NULL DEFAULT FALSE,
				archived_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, tables.Groups),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				name TEXT NOT NULL,
				path TEXT NOT NULL,
				parent_id UUID REFERENCES %s(id),
				group_id UUID NOT NULL REFERENCES %s(id),
				permissions JSONB NOT NULL DEFAULT '[]',
				is_archived BOOLEAN NOT NULL DEFAULT FALSE,
				archived_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE NULLS NOT DISTINCT (group_id, parent_id, name)
			)`, tables.Folders, tables.Folders, tables.Groups),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				name TEXT NOT NULL,
				original_name TEXT NOT NULL,
				path TEXT NOT NULL,
				group_id UUID NOT NULL REFERENCES %s(id),
				uploaded_by UUID NOT NULL,
				file_type TEXT NOT NULL,
				size BIGINT NOT NULL,
				uploaded_on TIMESTAMPTZ NOT NULL DEFAULT now(),
				permissions JSONB NOT NULL DEFAULT '[]',
				is_archived BOOLEAN NOT NULL DEFAULT FALSE,
				archived_at TIMESTAMPTZ
			)`, tables.Files, tables.Groups),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT 'user',
				group_ids TEXT[] NOT NULL DEFAULT '{}',
				can_upload BOOLEAN NOT NULL DEFAULT TRUE,
				can_download BOOLEAN NOT NULL DEFAULT TRUE,
				favorites JSONB NOT NULL DEFAULT '[]',
				is_archived BOOLEAN NOT NULL DEFAULT FALSE,
				archived_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, tables.Users),
		// Prefix-anchored child listing runs against these
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_path_idx ON %s (group_id, path text_pattern_ops)`,
			tables.Folders, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_path_idx ON %s (group_id, path text_pattern_ops)`,
			tables.Files, tables.Files),
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
