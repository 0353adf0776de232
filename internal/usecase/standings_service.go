package usecase

import (
	"context"
	"fmt"

	"github.com/yychockey/standings-sync/internal/domain/community"
	"github.com/yychockey/standings-sync/internal/domain/league"
	"github.com/yychockey/standings-sync/internal/domain/season"
	"github.com/yychockey/standings-sync/internal/domain/standing"
)

// StandingsService serves the flattened read model consumed by the
// dashboard, plus the dimension listings next to it.
type StandingsService struct {
	standingRepo  standing.Repository
	seasonRepo    season.Repository
	leagueRepo    league.Repository
	communityRepo community.Repository
}

func NewStandingsService(
	standingRepo standing.Repository,
	seasonRepo season.Repository,
	leagueRepo league.Repository,
	communityRepo community.Repository,
) *StandingsService {
	return &StandingsService{
		standingRepo:  standingRepo,
		seasonRepo:    seasonRepo,
		leagueRepo:    leagueRepo,
		communityRepo: communityRepo,
	}
}

func (s *StandingsService) ListJoined(ctx context.Context) ([]standing.JoinedRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.ListJoined")
	defer span.End()

	rows, err := s.standingRepo.ListJoined(ctx)
	if err != nil {
		return nil, fmt.Errorf("list joined standings: %w", err)
	}
	return rows, nil
}

func (s *StandingsService) ListSeasons(ctx context.Context) ([]season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.ListSeasons")
	defer span.End()

	rows, err := s.seasonRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	return rows, nil
}

func (s *StandingsService) ListLeagues(ctx context.Context) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.ListLeagues")
	defer span.End()

	rows, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	return rows, nil
}

func (s *StandingsService) ListCommunities(ctx context.Context) ([]community.Community, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.ListCommunities")
	defer span.End()

	rows, err := s.communityRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	return rows, nil
}
