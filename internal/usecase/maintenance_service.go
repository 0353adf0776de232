package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yychockey/standings-sync/internal/domain/community"
	"github.com/yychockey/standings-sync/internal/domain/season"
	"github.com/yychockey/standings-sync/internal/domain/standing"
	"github.com/yychockey/standings-sync/internal/domain/team"
	"github.com/yychockey/standings-sync/internal/platform/logging"
)

// MaintenanceService holds the repair operations that run after a sync or
// on demand: collapsing duplicate season spellings and pruning communities
// that fell off the allowlist.
type MaintenanceService struct {
	seasonRepo    season.Repository
	communityRepo community.Repository
	teamRepo      team.Repository
	standingRepo  standing.Repository
	allowlist     map[string]struct{}
	logger        *logging.Logger
}

func NewMaintenanceService(
	seasonRepo season.Repository,
	communityRepo community.Repository,
	teamRepo team.Repository,
	standingRepo standing.Repository,
	allowlist []string,
	logger *logging.Logger,
) *MaintenanceService {
	allow := make(map[string]struct{}, len(allowlist))
	for _, name := range allowlist {
		allow[strings.ToUpper(name)] = struct{}{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MaintenanceService{
		seasonRepo:    seasonRepo,
		communityRepo: communityRepo,
		teamRepo:      teamRepo,
		standingRepo:  standingRepo,
		allowlist:     allow,
		logger:        logger,
	}
}

type MergeReport struct {
	Merged    int   `json:"merged"`
	MovedRows int64 `json:"moved_rows"`
}

// MergeDuplicateSeasons collapses season rows that differ only in the
// "2021/2022" vs "2021-2022" spelling. The canonically named row wins;
// when none exists the oldest row is renamed. Standings move to the
// surviving season, dropping any row whose (league, team) slot is already
// taken there.
func (s *MaintenanceService) MergeDuplicateSeasons(ctx context.Context) (MergeReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MaintenanceService.MergeDuplicateSeasons")
	defer span.End()

	seasons, err := s.seasonRepo.List(ctx)
	if err != nil {
		return MergeReport{}, fmt.Errorf("list seasons: %w", err)
	}

	groups := make(map[string][]season.Season, len(seasons))
	for _, sn := range seasons {
		key := season.CanonicalName(sn.Name)
		groups[key] = append(groups[key], sn)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	report := MergeReport{}
	for _, key := range keys {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool { return group[i].ID < group[j].ID })

		target := group[0]
		for _, sn := range group {
			if sn.Name == key {
				target = sn
				break
			}
		}
		if target.Name != key {
			if err := s.seasonRepo.Rename(ctx, target.ID, key); err != nil {
				return report, fmt.Errorf("rename season %s to %s: %w", target.Name, key, err)
			}
		}

		for _, sn := range group {
			if sn.ID == target.ID {
				continue
			}
			moved, err := s.standingRepo.MoveSeason(ctx, sn.ID, target.ID)
			if err != nil {
				return report, fmt.Errorf("move standings from season %s: %w", sn.Name, err)
			}
			if err := s.seasonRepo.Delete(ctx, sn.ID); err != nil {
				return report, fmt.Errorf("delete duplicate season %s: %w", sn.Name, err)
			}
			report.Merged++
			report.MovedRows += moved
			s.logger.InfoContext(ctx, "merged duplicate season",
				"from", sn.Name, "into", key, "moved_rows", moved)
		}
	}

	return report, nil
}

type PruneReport struct {
	Communities int   `json:"communities"`
	Teams       int   `json:"teams"`
	Standings   int64 `json:"standings"`
}

// PruneDisallowedCommunities deletes every community outside the allowlist
// together with its teams and their standings. Earlier revisions of the
// alias table let a few of these slip in.
func (s *MaintenanceService) PruneDisallowedCommunities(ctx context.Context) (PruneReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MaintenanceService.PruneDisallowedCommunities")
	defer span.End()

	communities, err := s.communityRepo.List(ctx)
	if err != nil {
		return PruneReport{}, fmt.Errorf("list communities: %w", err)
	}

	report := PruneReport{}
	for _, comm := range communities {
		if _, ok := s.allowlist[strings.ToUpper(comm.Name)]; ok {
			continue
		}

		teams, err := s.teamRepo.ListByCommunity(ctx, comm.ID)
		if err != nil {
			return report, fmt.Errorf("list teams for community %s: %w", comm.Name, err)
		}
		for _, tm := range teams {
			deleted, err := s.standingRepo.DeleteByTeam(ctx, tm.ID)
			if err != nil {
				return report, fmt.Errorf("delete standings for team %s: %w", tm.Name, err)
			}
			if err := s.teamRepo.Delete(ctx, tm.ID); err != nil {
				return report, fmt.Errorf("delete team %s: %w", tm.Name, err)
			}
			report.Teams++
			report.Standings += deleted
		}

		if err := s.communityRepo.Delete(ctx, comm.ID); err != nil {
			return report, fmt.Errorf("delete community %s: %w", comm.Name, err)
		}
		report.Communities++
		s.logger.InfoContext(ctx, "pruned disallowed community",
			"community", comm.Name, "teams", len(teams))
	}

	return report, nil
}
