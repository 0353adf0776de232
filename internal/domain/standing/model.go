package standing

import "github.com/yychockey/standings-sync/internal/domain/league"

// Standing is one team's accumulated record inside one league for one
// season. The (SeasonID, LeagueID, TeamID) triple is unique; re-ingesting
// overwrites every stat column in place.
type Standing struct {
	ID           int64
	SeasonID     int64
	LeagueID     int64
	TeamID       int64
	GamesPlayed  int
	Wins         int
	Losses       int
	Ties         int
	Points       int
	GoalsFor     int
	GoalsAgainst int
	GoalDiff     int
	SourceURL    string
}

// JoinedRow is the flattened read shape served to the dashboard: one row
// per standing with all dimension names resolved.
type JoinedRow struct {
	Season       string
	League       string
	Stream       string
	LeagueType   league.Type
	Community    string
	Team         string
	GamesPlayed  int
	Wins         int
	Losses       int
	Ties         int
	Points       int
	GoalsFor     int
	GoalsAgainst int
	GoalDiff     int
	SourceURL    string
}
