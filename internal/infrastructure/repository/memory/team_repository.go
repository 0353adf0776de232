package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yychockey/standings-sync/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]team.Team
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{items: make(map[int64]team.Team)}
}

func (r *TeamRepository) GetOrCreate(_ context.Context, name string, communityID int64) (team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.Name == name {
			return item, nil
		}
	}

	r.nextID++
	item := team.Team{ID: r.nextID, Name: name, CommunityID: communityID}
	r.items[item.ID] = item
	return item, nil
}

func (r *TeamRepository) SetCommunity(_ context.Context, teamID, communityID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[teamID]
	if !ok {
		return nil
	}
	item.CommunityID = communityID
	r.items[teamID] = item
	return nil
}

func (r *TeamRepository) ListByCommunity(_ context.Context, communityID int64) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, 8)
	for _, item := range r.items {
		if item.CommunityID == communityID {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *TeamRepository) Delete(_ context.Context, teamID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, teamID)
	return nil
}

func (r *TeamRepository) get(teamID int64) (team.Team, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[teamID]
	return item, ok
}
