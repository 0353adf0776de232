package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yychockey/standings-sync/internal/domain/team"
	qb "github.com/yychockey/standings-sync/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// GetOrCreate inserts on first sight and reselects on conflict. The
// community id only applies to brand-new rows; an existing team keeps its
// stored community and the caller decides whether to re-point it.
func (r *TeamRepository) GetOrCreate(ctx context.Context, name string, communityID int64) (team.Team, error) {
	insertQuery, insertArgs, err := qb.InsertModel("teams",
		teamInsertModel{Name: name, CommunityID: communityID},
		"ON CONFLICT (name) DO NOTHING")
	if err != nil {
		return team.Team{}, fmt.Errorf("build insert team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return team.Team{}, fmt.Errorf("insert team name=%s: %w", name, err)
	}

	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return team.Team{}, fmt.Errorf("build get team by name query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return team.Team{}, fmt.Errorf("get team name=%s: %w", name, err)
	}
	return team.Team{ID: row.ID, Name: row.Name, CommunityID: row.CommunityID}, nil
}

func (r *TeamRepository) SetCommunity(ctx context.Context, teamID, communityID int64) error {
	query, args, err := qb.Update("teams").
		Set("community_id", communityID).
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set team community query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set community for team id=%d: %w", teamID, err)
	}
	return nil
}

func (r *TeamRepository) ListByCommunity(ctx context.Context, communityID int64) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("community_id", communityID)).
		OrderBy("name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams by community query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams by community: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Team{ID: row.ID, Name: row.Name, CommunityID: row.CommunityID})
	}
	return out, nil
}

func (r *TeamRepository) Delete(ctx context.Context, teamID int64) error {
	query, args, err := qb.DeleteFrom("teams").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete team id=%d: %w", teamID, err)
	}
	return nil
}
