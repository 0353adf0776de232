package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yychockey/standings-sync/internal/domain/standing"
)

// StandingRepository keeps standings keyed by their natural triple. It
// holds references to the sibling repositories so ListJoined can resolve
// dimension names the way the SQL join does.
type StandingRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[string]standing.Standing

	seasons     *SeasonRepository
	leagues     *LeagueRepository
	communities *CommunityRepository
	teams       *TeamRepository
}

func NewStandingRepository(
	seasons *SeasonRepository,
	leagues *LeagueRepository,
	communities *CommunityRepository,
	teams *TeamRepository,
) *StandingRepository {
	return &StandingRepository{
		items:       make(map[string]standing.Standing),
		seasons:     seasons,
		leagues:     leagues,
		communities: communities,
		teams:       teams,
	}
}

func standingKey(seasonID, leagueID, teamID int64) string {
	return fmt.Sprintf("%d/%d/%d", seasonID, leagueID, teamID)
}

func (r *StandingRepository) Upsert(_ context.Context, item standing.Standing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := standingKey(item.SeasonID, item.LeagueID, item.TeamID)
	if existing, ok := r.items[key]; ok {
		item.ID = existing.ID
	} else {
		r.nextID++
		item.ID = r.nextID
	}
	r.items[key] = item
	return nil
}

func (r *StandingRepository) ListJoined(_ context.Context) ([]standing.JoinedRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]standing.JoinedRow, 0, len(r.items))
	for _, item := range r.items {
		row := standing.JoinedRow{
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
		if r.seasons != nil {
			if sn, ok := r.seasons.get(item.SeasonID); ok {
				row.Season = sn.Name
			}
		}
		if r.leagues != nil {
			if lg, ok := r.leagues.get(item.LeagueID); ok {
				row.League = lg.Name
				row.Stream = lg.Stream
				row.LeagueType = lg.Type
			}
		}
		if r.teams != nil {
			if tm, ok := r.teams.get(item.TeamID); ok {
				row.Team = tm.Name
				if r.communities != nil {
					if comm, ok := r.communities.get(tm.CommunityID); ok {
						row.Community = comm.Name
					}
				}
			}
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season > out[j].Season
		}
		if out[i].League != out[j].League {
			return out[i].League < out[j].League
		}
		return out[i].Team < out[j].Team
	})
	return out, nil
}

func (r *StandingRepository) ListBySeason(_ context.Context, seasonID int64) ([]standing.Standing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]standing.Standing, 0, 16)
	for _, item := range r.items {
		if item.SeasonID == seasonID {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *StandingRepository) DeleteForLeagues(_ context.Context, seasonID int64, leagueIDs []int64) (int64, error) {
	allowed := make(map[int64]struct{}, len(leagueIDs))
	for _, id := range leagueIDs {
		allowed[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for key, item := range r.items {
		if item.SeasonID != seasonID {
			continue
		}
		if _, ok := allowed[item.LeagueID]; !ok {
			continue
		}
		delete(r.items, key)
		deleted++
	}
	return deleted, nil
}

func (r *StandingRepository) MoveSeason(_ context.Context, fromSeasonID, toSeasonID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var moved int64
	for key, item := range r.items {
		if item.SeasonID != fromSeasonID {
			continue
		}
		delete(r.items, key)

		targetKey := standingKey(toSeasonID, item.LeagueID, item.TeamID)
		if _, occupied := r.items[targetKey]; occupied {
			continue
		}
		item.SeasonID = toSeasonID
		r.items[targetKey] = item
		moved++
	}
	return moved, nil
}

func (r *StandingRepository) DeleteByTeam(_ context.Context, teamID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for key, item := range r.items {
		if item.TeamID == teamID {
			delete(r.items, key)
			deleted++
		}
	}
	return deleted, nil
}
