package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/yychockey/standings-sync/internal/domain/league"
	"github.com/yychockey/standings-sync/internal/domain/standing"
	"github.com/yychockey/standings-sync/internal/normalize"
	"github.com/yychockey/standings-sync/internal/platform/logging"
	"github.com/yychockey/standings-sync/internal/usecase"
)

type fakeSource struct {
	name     string
	leagues  []usecase.ExternalLeague
	listErr  error
	sets     map[string][]usecase.ExternalStandingSet
	fetchErr map[string]error
}

func (f *fakeSource) Source() string { return f.name }

func (f *fakeSource) ListLeagues(context.Context) ([]usecase.ExternalLeague, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.leagues, nil
}

func (f *fakeSource) FetchLeagueStandings(_ context.Context, ref usecase.ExternalLeague) ([]usecase.ExternalStandingSet, error) {
	if err := f.fetchErr[ref.Slug]; err != nil {
		return nil, err
	}
	return f.sets[ref.Slug], nil
}

type fakeTournamentSource struct {
	name string
	sets map[string][]usecase.ExternalTournamentSet
}

func (f *fakeTournamentSource) Source() string { return f.name }

func (f *fakeTournamentSource) FetchSeason(_ context.Context, seasonName string) ([]usecase.ExternalTournamentSet, error) {
	return f.sets[seasonName], nil
}

type fakeResetter struct {
	calls int
	err   error
}

func (f *fakeResetter) Reset(context.Context) error {
	f.calls++
	return f.err
}

func leagueRef(name, slug string) usecase.ExternalLeague {
	return usecase.ExternalLeague{Name: name, Slug: slug, Stream: "u13-t2", URL: "https://example.test/" + slug}
}

// sourceSet builds a U15 fixture on purpose: U13 legacy-stream rows for the
// current season are removed by the supersede cleanup, which has its own test.
func sourceSet(slug, team string) usecase.ExternalStandingSet {
	return usecase.ExternalStandingSet{
		SeasonName:   "2025-2026",
		LeagueName:   "U15 " + slug,
		LeagueSlug:   slug,
		LeagueStream: "u13-t2",
		LeagueType:   league.TypeRegular,
		SourceURL:    "https://example.test/" + slug,
		Rows:         []usecase.ExternalStandingRow{{TeamName: team, GamesPlayed: 3, Wins: 2, Points: 4, GoalsFor: 9, GoalsAgainst: 4}},
	}
}

func newSyncService(r testRepos, sources []usecase.StandingsSource, tournaments []usecase.TournamentSource, resetter usecase.SchemaResetter) *usecase.SyncService {
	return usecase.NewSyncService(
		sources,
		tournaments,
		newIngestion(r, nil),
		r.seasons,
		r.leagues,
		r.standings,
		resetter,
		newMaintenance(r),
		usecase.SyncConfig{
			LeagueWorkers:         1,
			TournamentWorkers:     1,
			CurrentSeason:         "2025-2026",
			SupersededAgeCategory: "U13",
		},
		logging.NewNop(),
	)
}

func TestSync_CollectsAllSources(t *testing.T) {
	repos := newTestRepos()
	alpha := &fakeSource{
		name:    "alpha",
		leagues: []usecase.ExternalLeague{leagueRef("U15 one", "one")},
		sets:    map[string][]usecase.ExternalStandingSet{"one": {sourceSet("one", "Springbank 1")}},
	}
	beta := &fakeSource{
		name:    "beta",
		leagues: []usecase.ExternalLeague{leagueRef("U15 two", "two")},
		sets:    map[string][]usecase.ExternalStandingSet{"two": {sourceSet("two", "Glenlake 2")}},
	}
	svc := newSyncService(repos, []usecase.StandingsSource{alpha, beta}, nil, nil)

	var mu sync.Mutex
	fractions := make([]float64, 0, 16)
	result, err := svc.Sync(context.Background(), usecase.SyncInput{
		Progress: func(fraction float64, _ string) {
			mu.Lock()
			fractions = append(fractions, fraction)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	if result.RunID == "" {
		t.Fatal("expected a run id")
	}
	if result.LeagueCount != 2 || result.SuccessCount != 2 || result.FailedCount != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.SavedRows != 2 {
		t.Fatalf("expected 2 saved rows, got %d", result.SavedRows)
	}
	if result.Tasks[0].Source != "alpha" || result.Tasks[1].Source != "beta" {
		t.Fatalf("tasks not sorted by source: %+v", result.Tasks)
	}

	if len(fractions) == 0 {
		t.Fatal("expected progress callbacks")
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Fatalf("progress went backwards: %v", fractions)
		}
	}
	if fractions[len(fractions)-1] != 1 {
		t.Fatalf("expected final progress 1, got %v", fractions[len(fractions)-1])
	}

	rows, err := repos.standings.ListJoined(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 standings persisted, got %d", len(rows))
	}
}

func TestSync_AbsorbsPartialFailures(t *testing.T) {
	repos := newTestRepos()
	broken := &fakeSource{name: "broken", listErr: errors.New("directory down")}
	flaky := &fakeSource{
		name: "flaky",
		leagues: []usecase.ExternalLeague{
			leagueRef("U15 good", "good"),
			leagueRef("U15 bad", "bad"),
			leagueRef("U15 empty", "empty"),
		},
		sets:     map[string][]usecase.ExternalStandingSet{"good": {sourceSet("good", "Knights 1")}},
		fetchErr: map[string]error{"bad": errors.New("page mangled")},
	}
	svc := newSyncService(repos, []usecase.StandingsSource{broken, flaky}, nil, nil)

	result, err := svc.Sync(context.Background(), usecase.SyncInput{})
	if err != nil {
		t.Fatalf("sync must absorb per-league failures: %v", err)
	}
	if result.LeagueCount != 3 {
		t.Fatalf("expected the broken source to contribute nothing, got %d leagues", result.LeagueCount)
	}
	if result.SuccessCount != 1 || result.FailedCount != 1 || result.SkippedCount != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	for _, task := range result.Tasks {
		if task.League == "U15 bad" && task.Message == "" {
			t.Fatalf("failed task carries no message: %+v", task)
		}
	}
}

func TestSync_NoSourcesConfigured(t *testing.T) {
	repos := newTestRepos()
	svc := newSyncService(repos, nil, nil, nil)
	if _, err := svc.Sync(context.Background(), usecase.SyncInput{}); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestSync_SchemaReset(t *testing.T) {
	repos := newTestRepos()
	src := &fakeSource{
		name:    "alpha",
		leagues: []usecase.ExternalLeague{leagueRef("U15 one", "one")},
		sets:    map[string][]usecase.ExternalStandingSet{"one": {sourceSet("one", "Springbank 1")}},
	}

	resetter := &fakeResetter{}
	svc := newSyncService(repos, []usecase.StandingsSource{src}, nil, resetter)
	if _, err := svc.Sync(context.Background(), usecase.SyncInput{Reset: true}); err != nil {
		t.Fatalf("sync with reset: %v", err)
	}
	if resetter.calls != 1 {
		t.Fatalf("expected 1 reset call, got %d", resetter.calls)
	}

	bare := newSyncService(repos, []usecase.StandingsSource{src}, nil, nil)
	if _, err := bare.Sync(context.Background(), usecase.SyncInput{Reset: true}); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable without a resetter, got %v", err)
	}
}

func TestSync_RemovesSupersededLegacyStandings(t *testing.T) {
	repos := newTestRepos()
	ctx := context.Background()

	// A legacy-site U13 league with a current-season row, now owned by a
	// managed source.
	sn, _ := repos.seasons.GetOrCreate(ctx, "2025-2026")
	stale, err := repos.leagues.GetOrCreate(ctx, league.League{
		Name: "U13 Tier 2", Slug: "u13-tier-2", Stream: "u13-t2", Type: league.TypeRegular,
	})
	if err != nil {
		t.Fatal(err)
	}
	comm, _ := repos.communities.GetOrCreate(ctx, "Springbank")
	tm, _ := repos.teams.GetOrCreate(ctx, "Springbank 3", comm.ID)
	if err := repos.standings.Upsert(ctx, standing.Standing{
		SeasonID: sn.ID, LeagueID: stale.ID, TeamID: tm.ID, Points: 7,
	}); err != nil {
		t.Fatal(err)
	}

	managed := sourceSet("u13-tier-2-managed", "Springbank 3")
	managed.LeagueStream = "teamlinkt"
	src := &fakeSource{
		name:    "TeamLinkt",
		leagues: []usecase.ExternalLeague{leagueRef("U13 Tier 2", "u13-tier-2-managed")},
		sets:    map[string][]usecase.ExternalStandingSet{"u13-tier-2-managed": {managed}},
	}

	svc := newSyncService(repos, []usecase.StandingsSource{src}, nil, nil)
	result, err := svc.Sync(ctx, usecase.SyncInput{})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.SupersededRows != 1 {
		t.Fatalf("expected 1 superseded row, got %d", result.SupersededRows)
	}

	rows, err := repos.standings.ListBySeason(ctx, sn.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, row := range rows {
		if row.LeagueID == stale.ID {
			t.Fatalf("legacy-stream row survived cleanup: %+v", row)
		}
	}
}

func TestSync_MergesDuplicateSeasonSpellings(t *testing.T) {
	repos := newTestRepos()
	ctx := context.Background()

	if _, err := repos.seasons.GetOrCreate(ctx, "2025/2026"); err != nil {
		t.Fatal(err)
	}

	src := &fakeSource{
		name:    "alpha",
		leagues: []usecase.ExternalLeague{leagueRef("U15 one", "one")},
		sets:    map[string][]usecase.ExternalStandingSet{"one": {sourceSet("one", "Springbank 1")}},
	}
	svc := newSyncService(repos, []usecase.StandingsSource{src}, nil, nil)

	result, err := svc.Sync(ctx, usecase.SyncInput{})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.MergedSeasons != 1 {
		t.Fatalf("expected 1 merged season, got %d", result.MergedSeasons)
	}
	if _, found, _ := repos.seasons.GetByName(ctx, "2025/2026"); found {
		t.Fatal("expected slash spelling to be gone")
	}
}

func TestSync_TournamentPhase(t *testing.T) {
	repos := newTestRepos()
	src := &fakeSource{
		name:    "alpha",
		leagues: []usecase.ExternalLeague{leagueRef("U15 one", "one")},
		sets:    map[string][]usecase.ExternalStandingSet{"one": {sourceSet("one", "Springbank 1")}},
	}
	tourney := &fakeTournamentSource{
		name: "tournament",
		sets: map[string][]usecase.ExternalTournamentSet{
			"2025-2026": {{
				SeasonName:   "2025-2026",
				LeagueName:   "City Championships U13 TIER 2",
				LeagueSlug:   "city-championships-u13-tier-2",
				LeagueStream: "tournament",
				LeagueType:   league.TypePlayoff,
				SourceURL:    "https://example.test/brackets",
				Rows:         []usecase.ExternalStandingRow{{TeamName: "Glenlake 1", GamesPlayed: 2, Wins: 2, Points: 4}},
			}},
		},
	}

	svc := newSyncService(repos, []usecase.StandingsSource{src}, []usecase.TournamentSource{tourney}, nil)
	result, err := svc.Sync(context.Background(), usecase.SyncInput{})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.TournamentSets != 1 {
		t.Fatalf("expected 1 tournament set, got %d", result.TournamentSets)
	}

	rows, err := repos.standings.ListJoined(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, row := range rows {
		if row.LeagueType == league.TypePlayoff && row.Team == "Glenlake 1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("tournament rows not persisted: %+v", rows)
	}
}

func TestSync_ReloadsOverridesEachRun(t *testing.T) {
	repos := newTestRepos()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "community_map.json")

	// "Flames 3" matches no alias and strips to a name outside the member
	// set, so it only resolves through an override.
	src := &fakeSource{
		name:    "alpha",
		leagues: []usecase.ExternalLeague{leagueRef("U15 one", "one")},
		sets:    map[string][]usecase.ExternalStandingSet{"one": {sourceSet("one", "Flames 3")}},
	}
	svc := usecase.NewSyncService(
		[]usecase.StandingsSource{src},
		nil,
		newIngestion(repos, nil),
		repos.seasons,
		repos.leagues,
		repos.standings,
		nil,
		newMaintenance(repos),
		usecase.SyncConfig{
			LeagueWorkers:         1,
			TournamentWorkers:     1,
			CurrentSeason:         "2025-2026",
			SupersededAgeCategory: "U13",
			OverridesPath:         path,
		},
		logging.NewNop(),
	)

	first, err := svc.Sync(ctx, usecase.SyncInput{})
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.SavedRows != 0 || first.SkippedRows != 1 {
		t.Fatalf("expected the unmapped team to be skipped, got %+v", first)
	}

	if err := normalize.SaveOverrides(path, map[string]string{"Flames 3": "Springbank"}); err != nil {
		t.Fatalf("save overrides: %v", err)
	}

	second, err := svc.Sync(ctx, usecase.SyncInput{})
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.SavedRows != 1 {
		t.Fatalf("expected the edited override to apply without a rebuild, got %+v", second)
	}

	rows, err := repos.standings.ListJoined(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Team != "Flames 3" || rows[0].Community != "Springbank" {
		t.Fatalf("unexpected rows after override reload: %+v", rows)
	}
}

func TestSync_ProgressMonotonicUnderConcurrency(t *testing.T) {
	repos := newTestRepos()

	// Plenty of skipped leagues across several workers so completions race.
	refs := make([]usecase.ExternalLeague, 0, 200)
	for i := 0; i < 200; i++ {
		refs = append(refs, leagueRef(fmt.Sprintf("U15 league %03d", i), fmt.Sprintf("league-%03d", i)))
	}
	src := &fakeSource{name: "alpha", leagues: refs}

	svc := usecase.NewSyncService(
		[]usecase.StandingsSource{src},
		nil,
		newIngestion(repos, nil),
		repos.seasons,
		repos.leagues,
		repos.standings,
		nil,
		newMaintenance(repos),
		usecase.SyncConfig{
			LeagueWorkers:         16,
			TournamentWorkers:     1,
			CurrentSeason:         "2025-2026",
			SupersededAgeCategory: "U13",
		},
		logging.NewNop(),
	)

	// Delivery is serialized by the reporter, so plain appends are safe.
	fractions := make([]float64, 0, 256)
	if _, err := svc.Sync(context.Background(), usecase.SyncInput{
		Progress: func(fraction float64, _ string) {
			fractions = append(fractions, fraction)
		},
	}); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if len(fractions) < 200 {
		t.Fatalf("expected a callback per league, got %d", len(fractions))
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Fatalf("progress delivered out of order at %d: %v then %v", i, fractions[i-1], fractions[i])
		}
	}
	if fractions[len(fractions)-1] != 1 {
		t.Fatalf("expected final progress 1, got %v", fractions[len(fractions)-1])
	}
}
