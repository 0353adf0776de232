package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yychockey/standings-sync/internal/domain/league"
)

type LeagueRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]league.League
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{items: make(map[int64]league.League)}
}

func (r *LeagueRepository) GetOrCreate(_ context.Context, item league.League) (league.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.items {
		if existing.Slug == item.Slug && existing.Stream == item.Stream && existing.Type == item.Type {
			existing.Name = item.Name
			r.items[id] = existing
			return existing, nil
		}
	}

	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item, nil
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LeagueRepository) ListByStream(_ context.Context, stream string) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, 8)
	for _, item := range r.items {
		if item.Stream == stream {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LeagueRepository) get(leagueID int64) (league.League, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[leagueID]
	return item, ok
}
