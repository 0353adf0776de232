package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yychockey/standings-sync/internal/domain/community"
)

type CommunityRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]community.Community
}

func NewCommunityRepository() *CommunityRepository {
	return &CommunityRepository{items: make(map[int64]community.Community)}
}

func (r *CommunityRepository) GetOrCreate(_ context.Context, name string) (community.Community, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.Name == name {
			return item, nil
		}
	}

	r.nextID++
	item := community.Community{ID: r.nextID, Name: name}
	r.items[item.ID] = item
	return item, nil
}

func (r *CommunityRepository) List(_ context.Context) ([]community.Community, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]community.Community, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CommunityRepository) Delete(_ context.Context, communityID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, communityID)
	return nil
}

func (r *CommunityRepository) get(communityID int64) (community.Community, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[communityID]
	return item, ok
}
