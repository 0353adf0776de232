package usecase

import (
	"context"

	"github.com/yychockey/standings-sync/internal/domain/league"
)

// ExternalStandingRow is one team's line as parsed off a source, before
// any name normalization.
type ExternalStandingRow struct {
	TeamName     string
	GamesPlayed  int
	Wins         int
	Losses       int
	Ties         int
	Points       int
	GoalsFor     int
	GoalsAgainst int
	GoalDiff     int
}

// ExternalLeague is a unit of sync work discovered on a source's directory
// page. URL carries whatever the source needs to fetch the unit again.
type ExternalLeague struct {
	Name   string
	Slug   string
	Stream string
	URL    string
}

// ExternalStandingSet is one complete standings table: a season and phase
// under a discovered league. A single ExternalLeague can yield several
// sets (one per season, or one per game type).
type ExternalStandingSet struct {
	SeasonName   string
	LeagueName   string
	LeagueSlug   string
	LeagueStream string
	LeagueType   league.Type
	SourceURL    string
	Rows         []ExternalStandingRow
}

// StandingsSource is a regular-season provider. Implementations absorb
// per-unit fetch and parse failures, returning empty results rather than
// errors for anything scoped to a single league or season.
type StandingsSource interface {
	Source() string
	ListLeagues(ctx context.Context) ([]ExternalLeague, error)
	FetchLeagueStandings(ctx context.Context, ref ExternalLeague) ([]ExternalStandingSet, error)
}

// ExternalTournamentSet is one tournament category's standings for one
// season.
type ExternalTournamentSet struct {
	SeasonName   string
	LeagueName   string
	LeagueSlug   string
	LeagueStream string
	LeagueType   league.Type
	SourceURL    string
	Rows         []ExternalStandingRow
}

// TournamentSource fetches bracket-style events, which are only
// discoverable per season and run after the regular-season pass.
type TournamentSource interface {
	Source() string
	FetchSeason(ctx context.Context, seasonName string) ([]ExternalTournamentSet, error)
}
