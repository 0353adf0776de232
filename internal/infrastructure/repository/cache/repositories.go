package cache

import (
	"context"
	"strconv"

	"github.com/yychockey/standings-sync/internal/domain/community"
	"github.com/yychockey/standings-sync/internal/domain/league"
	"github.com/yychockey/standings-sync/internal/domain/season"
	"github.com/yychockey/standings-sync/internal/domain/standing"
	basecache "github.com/yychockey/standings-sync/internal/platform/cache"
)

// The decorators in this file wrap the postgres repositories with a shared
// TTL store. Reads go through GetOrLoad so concurrent cache misses collapse
// into one query; writes delegate first and invalidate after. The store is
// shared across decorators because season renames change what the joined
// standings read model returns.

const (
	standingPrefix   = "standing:"
	standingJoinKey  = "standing:joined"
	seasonListKey    = "season:list"
	leagueListKey    = "league:list"
	communityListKey = "community:list"
)

type SeasonRepository struct {
	next  season.Repository
	cache *basecache.Store
}

func NewSeasonRepository(next season.Repository, cache *basecache.Store) *SeasonRepository {
	return &SeasonRepository{next: next, cache: cache}
}

func (r *SeasonRepository) GetOrCreate(ctx context.Context, name string) (season.Season, error) {
	item, err := r.next.GetOrCreate(ctx, name)
	if err != nil {
		return season.Season{}, err
	}
	r.cache.Delete(ctx, seasonListKey)
	return item, nil
}

func (r *SeasonRepository) GetByName(ctx context.Context, name string) (season.Season, bool, error) {
	key := "season:name:" + name
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		return cachedSeasonByName{value: item, exists: exists}, nil
	})
	if err != nil {
		return season.Season{}, false, err
	}

	cached, _ := v.(cachedSeasonByName)
	return cached.value, cached.exists, nil
}

func (r *SeasonRepository) List(ctx context.Context) ([]season.Season, error) {
	v, err := r.cache.GetOrLoad(ctx, seasonListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]season.Season(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]season.Season)
	return append([]season.Season(nil), items...), nil
}

func (r *SeasonRepository) Rename(ctx context.Context, seasonID int64, name string) error {
	if err := r.next.Rename(ctx, seasonID, name); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "season:")
	r.cache.DeletePrefix(ctx, standingPrefix)
	return nil
}

func (r *SeasonRepository) Delete(ctx context.Context, seasonID int64) error {
	if err := r.next.Delete(ctx, seasonID); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "season:")
	r.cache.DeletePrefix(ctx, standingPrefix)
	return nil
}

type cachedSeasonByName struct {
	value  season.Season
	exists bool
}

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) GetOrCreate(ctx context.Context, item league.League) (league.League, error) {
	out, err := r.next.GetOrCreate(ctx, item)
	if err != nil {
		return league.League{}, err
	}
	r.cache.DeletePrefix(ctx, "league:")
	return out, nil
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	v, err := r.cache.GetOrLoad(ctx, leagueListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]league.League(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]league.League)
	return append([]league.League(nil), items...), nil
}

func (r *LeagueRepository) ListByStream(ctx context.Context, stream string) ([]league.League, error) {
	key := "league:stream:" + stream
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByStream(ctx, stream)
		if err != nil {
			return nil, err
		}
		return append([]league.League(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]league.League)
	return append([]league.League(nil), items...), nil
}

type CommunityRepository struct {
	next  community.Repository
	cache *basecache.Store
}

func NewCommunityRepository(next community.Repository, cache *basecache.Store) *CommunityRepository {
	return &CommunityRepository{next: next, cache: cache}
}

func (r *CommunityRepository) GetOrCreate(ctx context.Context, name string) (community.Community, error) {
	item, err := r.next.GetOrCreate(ctx, name)
	if err != nil {
		return community.Community{}, err
	}
	r.cache.Delete(ctx, communityListKey)
	return item, nil
}

func (r *CommunityRepository) List(ctx context.Context) ([]community.Community, error) {
	v, err := r.cache.GetOrLoad(ctx, communityListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]community.Community(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]community.Community)
	return append([]community.Community(nil), items...), nil
}

func (r *CommunityRepository) Delete(ctx context.Context, communityID int64) error {
	if err := r.next.Delete(ctx, communityID); err != nil {
		return err
	}
	r.cache.Delete(ctx, communityListKey)
	r.cache.DeletePrefix(ctx, standingPrefix)
	return nil
}

type StandingRepository struct {
	next  standing.Repository
	cache *basecache.Store
}

func NewStandingRepository(next standing.Repository, cache *basecache.Store) *StandingRepository {
	return &StandingRepository{next: next, cache: cache}
}

func (r *StandingRepository) Upsert(ctx context.Context, item standing.Standing) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, standingPrefix)
	return nil
}

func (r *StandingRepository) ListJoined(ctx context.Context) ([]standing.JoinedRow, error) {
	v, err := r.cache.GetOrLoad(ctx, standingJoinKey, func(ctx context.Context) (any, error) {
		items, err := r.next.ListJoined(ctx)
		if err != nil {
			return nil, err
		}
		return append([]standing.JoinedRow(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]standing.JoinedRow)
	return append([]standing.JoinedRow(nil), items...), nil
}

func (r *StandingRepository) ListBySeason(ctx context.Context, seasonID int64) ([]standing.Standing, error) {
	key := "standing:season:" + strconv.FormatInt(seasonID, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySeason(ctx, seasonID)
		if err != nil {
			return nil, err
		}
		return append([]standing.Standing(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]standing.Standing)
	return append([]standing.Standing(nil), items...), nil
}

func (r *StandingRepository) DeleteForLeagues(ctx context.Context, seasonID int64, leagueIDs []int64) (int64, error) {
	deleted, err := r.next.DeleteForLeagues(ctx, seasonID, leagueIDs)
	if err != nil {
		return 0, err
	}
	r.cache.DeletePrefix(ctx, standingPrefix)
	return deleted, nil
}

func (r *StandingRepository) MoveSeason(ctx context.Context, fromSeasonID, toSeasonID int64) (int64, error) {
	moved, err := r.next.MoveSeason(ctx, fromSeasonID, toSeasonID)
	if err != nil {
		return 0, err
	}
	r.cache.DeletePrefix(ctx, standingPrefix)
	return moved, nil
}

func (r *StandingRepository) DeleteByTeam(ctx context.Context, teamID int64) (int64, error) {
	deleted, err := r.next.DeleteByTeam(ctx, teamID)
	if err != nil {
		return 0, err
	}
	r.cache.DeletePrefix(ctx, standingPrefix)
	return deleted, nil
}
