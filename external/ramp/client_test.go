package ramp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yychockey/standings-sync/internal/domain/league"
	"github.com/yychockey/standings-sync/internal/usecase"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{
		HTTPClient:    srv.Client(),
		BaseURL:       srv.URL,
		CurrentSeason: "2025-2026",
	})
}

func TestListLeagues_FindsStandingsLinks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`
<div>
  <h3>U11 Tier 3</h3>
  <div><a href="/division/4101/standings">Standings</a></div>
</div>
<div>
  <h3>U11 Tier 4</h3>
  <div><a href="/division/4102/standings">Standings</a></div>
  <div><a href="/division/4102/standings">Standings (dup)</a></div>
</div>
<a href="/division/4103/schedule">Schedule</a>`))
	})

	client := newTestClient(t, mux)
	refs, err := client.ListLeagues(context.Background())
	if err != nil {
		t.Fatalf("list leagues: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 divisions, got %d: %+v", len(refs), refs)
	}
	if refs[0].Name != "U11 Tier 3" || refs[0].Slug != "u11-tier-3" {
		t.Fatalf("unexpected first division: %+v", refs[0])
	}
	if refs[0].Stream != "RAMP" {
		t.Fatalf("unexpected stream %q", refs[0].Stream)
	}
}

func TestFetchLeagueStandings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/division/4101/standings", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`
<script>var assnId = 2471;</script>
<select id="ddlSeason">
  <option value="0">All Seasons</option>
  <option value="9001">2025-2026</option>
</select>
<select id="ddlGameType">
  <option value="0">All Game Types</option>
  <option value="1">Regular Season</option>
  <option value="2">Seeding Round</option>
</select>`))
	})
	mux.HandleFunc("/api/leaguestandings/2471/9001/1/0/4101", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[
  {"SID": 0, "TeamName": "Pool A"},
  {"SID": 11, "TeamName": "Bow River Bruins 4", "GP": 6, "W": 4, "L": 1, "T": 1, "PTS": 9, "GF": 22, "GA": 14},
  {"SID": 12, "TeamName": "Glenlake 2", "GP": "6", "W": "2", "L": "3", "T": "1", "PTS": "5", "GF": "15", "GA": "18", "DIFF": "-3"}
]`))
	})
	mux.HandleFunc("/api/leaguestandings/2471/9001/2/0/4101", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	})

	client := newTestClient(t, mux)
	sets, err := client.FetchLeagueStandings(context.Background(), usecase.ExternalLeague{
		Name:   "U11 Tier 3",
		Slug:   "u11-tier-3",
		Stream: "RAMP",
		URL:    client.baseURL + "/division/4101/standings",
	})
	if err != nil {
		t.Fatalf("fetch standings: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("expected 1 set (empty seeding dropped), got %d", len(sets))
	}

	set := sets[0]
	if set.SeasonName != "2025-2026" {
		t.Fatalf("unexpected season %q", set.SeasonName)
	}
	if set.LeagueName != "U11 Tier 3 - Regular Season" || set.LeagueSlug != "u11-tier-3-regular-season" {
		t.Fatalf("unexpected league identity: %+v", set)
	}
	if set.LeagueType != league.TypeRegular {
		t.Fatalf("unexpected type %q", set.LeagueType)
	}

	// The SID 0 pool subheader is dropped.
	if len(set.Rows) != 2 {
		t.Fatalf("expected 2 team rows, got %d: %+v", len(set.Rows), set.Rows)
	}
	first := set.Rows[0]
	if first.TeamName != "Bow River Bruins 4" || first.Points != 9 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.GoalDiff != 8 {
		t.Fatalf("expected derived diff 8, got %d", first.GoalDiff)
	}
	second := set.Rows[1]
	if second.GamesPlayed != 6 || second.GoalDiff != -3 {
		t.Fatalf("string-typed stats not coerced: %+v", second)
	}
}

func TestFetchLeagueStandings_FallbackSelectors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/division/4200/standings", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<script>var assn_id = 2471;</script><p>Standings coming soon.</p>`))
	})
	mux.HandleFunc("/api/leaguestandings/2471/0/0/0/4200", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"SID": 7, "TeamName": "Knights 1", "GP": 2, "W": 2, "PTS": 4, "GF": 9, "GA": 3}]`))
	})

	client := newTestClient(t, mux)
	sets, err := client.FetchLeagueStandings(context.Background(), usecase.ExternalLeague{
		Name:   "U9 Tier 1",
		Slug:   "u9-tier-1",
		Stream: "RAMP",
		URL:    client.baseURL + "/division/4200/standings",
	})
	if err != nil {
		t.Fatalf("fetch standings: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("expected 1 set, got %d", len(sets))
	}
	if sets[0].SeasonName != "2025-2026" {
		t.Fatalf("expected current-season fallback, got %q", sets[0].SeasonName)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"U11 Tier 3":       "u11-tier-3",
		"Seeding Round":    "seeding-round",
		"  Weird / Name  ": "weird--name",
		"":                 "division",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q): want %q, got %q", in, want, got)
		}
	}
}
