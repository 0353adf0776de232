package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yychockey/standings-sync/internal/domain/league"
	qb "github.com/yychockey/standings-sync/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

// GetOrCreate resolves a league by its (slug, stream, type) identity,
// inserting on first sight. The display name refreshes on every call so a
// renamed division keeps its history.
func (r *LeagueRepository) GetOrCreate(ctx context.Context, item league.League) (league.League, error) {
	insertQuery, insertArgs, err := qb.InsertModel("leagues",
		leagueInsertModel{Name: item.Name, Slug: item.Slug, Stream: item.Stream, Type: string(item.Type)},
		"ON CONFLICT (slug, stream, type) DO UPDATE SET name = EXCLUDED.name")
	if err != nil {
		return league.League{}, fmt.Errorf("build insert league query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return league.League{}, fmt.Errorf("insert league slug=%s stream=%s: %w", item.Slug, item.Stream, err)
	}

	query, args, err := qb.Select("*").From("leagues").
		Where(
			qb.Eq("slug", item.Slug),
			qb.Eq("stream", item.Stream),
			qb.Eq("type", string(item.Type)),
		).
		ToSQL()
	if err != nil {
		return league.League{}, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return league.League{}, fmt.Errorf("get league slug=%s stream=%s: %w", item.Slug, item.Stream, err)
	}
	return mapLeagueRow(row), nil
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		OrderBy("stream", "slug", "type").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapLeagueRow(row))
	}
	return out, nil
}

func (r *LeagueRepository) ListByStream(ctx context.Context, stream string) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("stream", stream)).
		OrderBy("slug", "type").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues by stream query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leagues by stream: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapLeagueRow(row))
	}
	return out, nil
}

func mapLeagueRow(row leagueTableModel) league.League {
	return league.League{
		ID:     row.ID,
		Name:   row.Name,
		Slug:   row.Slug,
		Stream: row.Stream,
		Type:   league.Type(row.Type),
	}
}
