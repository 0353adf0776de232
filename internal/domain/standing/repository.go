package standing

import "context"

// Repository describes standing persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, item Standing) error
	ListJoined(ctx context.Context) ([]JoinedRow, error)
	ListBySeason(ctx context.Context, seasonID int64) ([]Standing, error)

	// DeleteForLeagues removes one season's rows across a league set. Used
	// when a newer source supersedes an older one for the running season.
	DeleteForLeagues(ctx context.Context, seasonID int64, leagueIDs []int64) (int64, error)

	// MoveSeason re-points rows from one season to another, dropping any
	// row whose (league, team) already exists under the target.
	MoveSeason(ctx context.Context, fromSeasonID, toSeasonID int64) (int64, error)

	DeleteByTeam(ctx context.Context, teamID int64) (int64, error)
}
