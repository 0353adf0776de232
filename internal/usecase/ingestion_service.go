package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/yychockey/standings-sync/internal/domain/community"
	"github.com/yychockey/standings-sync/internal/domain/league"
	"github.com/yychockey/standings-sync/internal/domain/season"
	"github.com/yychockey/standings-sync/internal/domain/standing"
	"github.com/yychockey/standings-sync/internal/domain/team"
	"github.com/yychockey/standings-sync/internal/normalize"
	"github.com/yychockey/standings-sync/internal/platform/logging"
)

// IngestionService reconciles parsed standings rows into the store. Every
// write path is idempotent: dimensions resolve through get-or-create and
// fact rows upsert on their natural key, so replaying a set is a no-op
// apart from refreshed stats.
type IngestionService struct {
	seasonRepo    season.Repository
	leagueRepo    league.Repository
	communityRepo community.Repository
	teamRepo      team.Repository
	standingRepo  standing.Repository
	logger        *logging.Logger

	mu     sync.RWMutex
	mapper *normalize.Mapper
}

func NewIngestionService(
	seasonRepo season.Repository,
	leagueRepo league.Repository,
	communityRepo community.Repository,
	teamRepo team.Repository,
	standingRepo standing.Repository,
	mapper *normalize.Mapper,
	logger *logging.Logger,
) *IngestionService {
	if mapper == nil {
		mapper = normalize.NewMapper(normalize.Config{})
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		seasonRepo:    seasonRepo,
		leagueRepo:    leagueRepo,
		communityRepo: communityRepo,
		teamRepo:      teamRepo,
		standingRepo:  standingRepo,
		logger:        logger,
		mapper:        mapper,
	}
}

// SetMapper swaps the name mapper. The sync orchestrator calls it after
// re-reading the override file so operator edits apply without a restart.
func (s *IngestionService) SetMapper(m *normalize.Mapper) {
	if m == nil {
		return
	}
	s.mu.Lock()
	s.mapper = m
	s.mu.Unlock()
}

func (s *IngestionService) currentMapper() *normalize.Mapper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapper
}

// SaveResult summarizes one set's reconciliation.
type SaveResult struct {
	Saved   int
	Skipped int
}

// SaveStandingSet writes one standings table. Rows whose team name does
// not resolve to an allowed community are skipped, not failed; a team row
// pointing at a stale community is re-pointed before its standing lands.
func (s *IngestionService) SaveStandingSet(ctx context.Context, set ExternalStandingSet) (SaveResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SaveStandingSet")
	defer span.End()

	seasonName := season.CanonicalName(set.SeasonName)
	if seasonName == "" {
		return SaveResult{}, fmt.Errorf("%w: season name is required", ErrInvalidInput)
	}

	lg := league.League{
		Name:   strings.TrimSpace(set.LeagueName),
		Slug:   strings.TrimSpace(set.LeagueSlug),
		Stream: strings.TrimSpace(set.LeagueStream),
		Type:   set.LeagueType,
	}
	if err := lg.Validate(); err != nil {
		return SaveResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	sn, err := s.seasonRepo.GetOrCreate(ctx, seasonName)
	if err != nil {
		return SaveResult{}, fmt.Errorf("get or create season %s: %w", seasonName, err)
	}
	lg, err = s.leagueRepo.GetOrCreate(ctx, lg)
	if err != nil {
		return SaveResult{}, fmt.Errorf("get or create league %s/%s: %w", lg.Stream, lg.Slug, err)
	}

	mapper := s.currentMapper()
	result := SaveResult{}
	for _, row := range set.Rows {
		teamName := strings.TrimSpace(row.TeamName)
		if teamName == "" {
			result.Skipped++
			continue
		}

		communityName, ok := mapper.Resolve(teamName)
		if !ok {
			result.Skipped++
			s.logger.DebugContext(ctx, "team name did not resolve to an allowed community",
				"team", teamName, "league", lg.Slug, "season", seasonName)
			continue
		}

		comm, err := s.communityRepo.GetOrCreate(ctx, communityName)
		if err != nil {
			return result, fmt.Errorf("get or create community %s: %w", communityName, err)
		}

		tm, err := s.teamRepo.GetOrCreate(ctx, teamName, comm.ID)
		if err != nil {
			return result, fmt.Errorf("get or create team %s: %w", teamName, err)
		}
		if tm.CommunityID != comm.ID {
			if err := s.teamRepo.SetCommunity(ctx, tm.ID, comm.ID); err != nil {
				return result, fmt.Errorf("repoint team %s to community %s: %w", teamName, communityName, err)
			}
		}

		diff := row.GoalDiff
		if diff == 0 {
			diff = row.GoalsFor - row.GoalsAgainst
		}

		item := standing.Standing{
			SeasonID:     sn.ID,
			LeagueID:     lg.ID,
			TeamID:       tm.ID,
			GamesPlayed:  row.GamesPlayed,
			Wins:         row.Wins,
			Losses:       row.Losses,
			Ties:         row.Ties,
			Points:       row.Points,
			GoalsFor:     row.GoalsFor,
			GoalsAgainst: row.GoalsAgainst,
			GoalDiff:     diff,
			SourceURL:    set.SourceURL,
		}
		if err := s.standingRepo.Upsert(ctx, item); err != nil {
			return result, fmt.Errorf("upsert standing for team %s: %w", teamName, err)
		}
		result.Saved++
	}

	return result, nil
}
