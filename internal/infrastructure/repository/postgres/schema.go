package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaDDL mirrors db/migrations/000001_init.up.sql. The destructive sync
// path recreates the schema directly instead of replaying the migration
// chain against a database it just dropped.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS seasons (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS leagues (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    slug TEXT NOT NULL,
    stream TEXT NOT NULL,
    type TEXT NOT NULL,
    UNIQUE (slug, stream, type)
);

CREATE TABLE IF NOT EXISTS communities (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS teams (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    community_id BIGINT NOT NULL REFERENCES communities (id)
);

CREATE TABLE IF NOT EXISTS standings (
    id BIGSERIAL PRIMARY KEY,
    season_id BIGINT NOT NULL REFERENCES seasons (id),
    league_id BIGINT NOT NULL REFERENCES leagues (id),
    team_id BIGINT NOT NULL REFERENCES teams (id),
    gp INTEGER NOT NULL DEFAULT 0,
    w INTEGER NOT NULL DEFAULT 0,
    l INTEGER NOT NULL DEFAULT 0,
    t INTEGER NOT NULL DEFAULT 0,
    pts INTEGER NOT NULL DEFAULT 0,
    gf INTEGER NOT NULL DEFAULT 0,
    ga INTEGER NOT NULL DEFAULT 0,
    diff INTEGER NOT NULL DEFAULT 0,
    source_url TEXT NOT NULL DEFAULT '',
    UNIQUE (season_id, league_id, team_id)
);

CREATE INDEX IF NOT EXISTS idx_standings_season ON standings (season_id);
CREATE INDEX IF NOT EXISTS idx_teams_community ON teams (community_id);
`

const dropDDL = `
DROP TABLE IF EXISTS standings;
DROP TABLE IF EXISTS teams;
DROP TABLE IF EXISTS communities;
DROP TABLE IF EXISTS leagues;
DROP TABLE IF EXISTS seasons;
`

// SchemaManager owns schema creation and the destructive reset used by
// full re-syncs.
type SchemaManager struct {
	db *sqlx.DB
}

func NewSchemaManager(db *sqlx.DB) *SchemaManager {
	return &SchemaManager{db: db}
}

// EnsureSchema creates missing tables without touching existing data.
func (m *SchemaManager) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Reset drops everything and rebuilds an empty schema.
func (m *SchemaManager) Reset(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, dropDDL); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return m.EnsureSchema(ctx)
}
