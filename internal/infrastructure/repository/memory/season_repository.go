package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yychockey/standings-sync/internal/domain/season"
)

type SeasonRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]season.Season
}

func NewSeasonRepository() *SeasonRepository {
	return &SeasonRepository{items: make(map[int64]season.Season)}
}

func (r *SeasonRepository) GetOrCreate(_ context.Context, name string) (season.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.Name == name {
			return item, nil
		}
	}

	r.nextID++
	item := season.Season{ID: r.nextID, Name: name}
	r.items[item.ID] = item
	return item, nil
}

func (r *SeasonRepository) GetByName(_ context.Context, name string) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Name == name {
			return item, true, nil
		}
	}
	return season.Season{}, false, nil
}

func (r *SeasonRepository) List(_ context.Context) ([]season.Season, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]season.Season, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *SeasonRepository) Rename(_ context.Context, seasonID int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[seasonID]
	if !ok {
		return nil
	}
	item.Name = name
	r.items[seasonID] = item
	return nil
}

func (r *SeasonRepository) get(seasonID int64) (season.Season, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[seasonID]
	return item, ok
}

func (r *SeasonRepository) Delete(_ context.Context, seasonID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, seasonID)
	return nil
}
