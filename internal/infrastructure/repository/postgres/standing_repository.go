package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yychockey/standings-sync/internal/domain/league"
	"github.com/yychockey/standings-sync/internal/domain/standing"
	qb "github.com/yychockey/standings-sync/internal/platform/querybuilder"
)

type StandingRepository struct {
	db *sqlx.DB
}

func NewStandingRepository(db *sqlx.DB) *StandingRepository {
	return &StandingRepository{db: db}
}

// Upsert lands a standing on its (season, league, team) slot, overwriting
// every stat column of an existing row. The unique constraint does the
// serialization; concurrent workers never need a lock.
func (r *StandingRepository) Upsert(ctx context.Context, item standing.Standing) error {
	insertModel := standingInsertModel{
		SeasonID:     item.SeasonID,
		LeagueID:     item.LeagueID,
		TeamID:       item.TeamID,
		GamesPlayed:  item.GamesPlayed,
		Wins:         item.Wins,
		Losses:       item.Losses,
		Ties:         item.Ties,
		Points:       item.Points,
		GoalsFor:     item.GoalsFor,
		GoalsAgainst: item.GoalsAgainst,
		GoalDiff:     item.GoalDiff,
		SourceURL:    item.SourceURL,
	}
	query, args, err := qb.InsertModel("standings", insertModel, `ON CONFLICT (season_id, league_id, team_id)
DO UPDATE SET
    gp = EXCLUDED.gp,
    w = EXCLUDED.w,
    l = EXCLUDED.l,
    t = EXCLUDED.t,
    pts = EXCLUDED.pts,
    gf = EXCLUDED.gf,
    ga = EXCLUDED.ga,
    diff = EXCLUDED.diff,
    source_url = EXCLUDED.source_url`)
	if err != nil {
		return fmt.Errorf("build upsert standing query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert standing season=%d league=%d team=%d: %w",
			item.SeasonID, item.LeagueID, item.TeamID, err)
	}
	return nil
}

// joinedStandingsQuery is the one read the dashboard performs. The
// querybuilder stops at single tables, so this stays handwritten.
const joinedStandingsQuery = `
SELECT
    se.name AS season,
    lg.name AS league,
    lg.stream AS stream,
    lg.type AS league_type,
    co.name AS community,
    tm.name AS team,
    st.gp, st.w, st.l, st.t, st.pts, st.gf, st.ga, st.diff,
    st.source_url
FROM standings st
JOIN seasons se ON se.id = st.season_id
JOIN leagues lg ON lg.id = st.league_id
JOIN teams tm ON tm.id = st.team_id
JOIN communities co ON co.id = tm.community_id
ORDER BY se.name DESC, lg.stream, lg.slug, lg.type, st.pts DESC, tm.name`

func (r *StandingRepository) ListJoined(ctx context.Context) ([]standing.JoinedRow, error) {
	var rows []joinedStandingModel
	if err := r.db.SelectContext(ctx, &rows, joinedStandingsQuery); err != nil {
		return nil, fmt.Errorf("list joined standings: %w", err)
	}

	out := make([]standing.JoinedRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, standing.JoinedRow{
			Season:       row.Season,
			League:       row.League,
			Stream:       row.Stream,
			LeagueType:   league.Type(row.LeagueType),
			Community:    row.Community,
			Team:         row.Team,
			GamesPlayed:  row.GamesPlayed,
			Wins:         row.Wins,
			Losses:       row.Losses,
			Ties:         row.Ties,
			Points:       row.Points,
			GoalsFor:     row.GoalsFor,
			GoalsAgainst: row.GoalsAgainst,
			GoalDiff:     row.GoalDiff,
			SourceURL:    row.SourceURL,
		})
	}
	return out, nil
}

func (r *StandingRepository) ListBySeason(ctx context.Context, seasonID int64) ([]standing.Standing, error) {
	query, args, err := qb.Select("*").From("standings").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("league_id", "team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list standings by season query: %w", err)
	}

	var rows []standingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list standings by season: %w", err)
	}

	out := make([]standing.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapStandingRow(row))
	}
	return out, nil
}

func (r *StandingRepository) DeleteForLeagues(ctx context.Context, seasonID int64, leagueIDs []int64) (int64, error) {
	if len(leagueIDs) == 0 {
		return 0, nil
	}

	ids := make([]any, 0, len(leagueIDs))
	for _, id := range leagueIDs {
		ids = append(ids, id)
	}
	query, args, err := qb.DeleteFrom("standings").
		Where(
			qb.Eq("season_id", seasonID),
			qb.In("league_id", ids),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete standings for leagues query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete standings for leagues season=%d: %w", seasonID, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted standings: %w", err)
	}
	return deleted, nil
}

// MoveSeason re-points one season's rows at another inside a transaction.
// Rows whose (league, team) slot is already occupied under the target are
// dropped first, or the season unique constraint would reject the update.
func (r *StandingRepository) MoveSeason(ctx context.Context, fromSeasonID, toSeasonID int64) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx move season standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const dropDuplicates = `
DELETE FROM standings src
WHERE src.season_id = $1
  AND EXISTS (
      SELECT 1 FROM standings dst
      WHERE dst.season_id = $2
        AND dst.league_id = src.league_id
        AND dst.team_id = src.team_id)`
	if _, err := tx.ExecContext(ctx, dropDuplicates, fromSeasonID, toSeasonID); err != nil {
		return 0, fmt.Errorf("drop duplicate standings season=%d: %w", fromSeasonID, err)
	}

	moveQuery, moveArgs, err := qb.Update("standings").
		Set("season_id", toSeasonID).
		Where(qb.Eq("season_id", fromSeasonID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build move season standings query: %w", err)
	}
	res, err := tx.ExecContext(ctx, moveQuery, moveArgs...)
	if err != nil {
		return 0, fmt.Errorf("move standings season=%d to %d: %w", fromSeasonID, toSeasonID, err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count moved standings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit move season standings tx: %w", err)
	}
	return moved, nil
}

func (r *StandingRepository) DeleteByTeam(ctx context.Context, teamID int64) (int64, error) {
	query, args, err := qb.DeleteFrom("standings").
		Where(qb.Eq("team_id", teamID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete standings by team query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete standings team=%d: %w", teamID, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted standings: %w", err)
	}
	return deleted, nil
}

func mapStandingRow(row standingTableModel) standing.Standing {
	return standing.Standing{
		ID:           row.ID,
		SeasonID:     row.SeasonID,
		LeagueID:     row.LeagueID,
		TeamID:       row.TeamID,
		GamesPlayed:  row.GamesPlayed,
		Wins:         row.Wins,
		Losses:       row.Losses,
		Ties:         row.Ties,
		Points:       row.Points,
		GoalsFor:     row.GoalsFor,
		GoalsAgainst: row.GoalsAgainst,
		GoalDiff:     row.GoalDiff,
		SourceURL:    row.SourceURL,
	}
}
