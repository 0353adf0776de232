package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/yychockey/standings-sync/internal/domain/league"
	"github.com/yychockey/standings-sync/internal/domain/standing"
	"github.com/yychockey/standings-sync/internal/infrastructure/repository/memory"
	"github.com/yychockey/standings-sync/internal/normalize"
	"github.com/yychockey/standings-sync/internal/platform/logging"
	"github.com/yychockey/standings-sync/internal/usecase"
)

func seededHandler(t *testing.T) *Handler {
	t.Helper()
	ctx := context.Background()

	seasons := memory.NewSeasonRepository()
	leagues := memory.NewLeagueRepository()
	communities := memory.NewCommunityRepository()
	teams := memory.NewTeamRepository()
	standings := memory.NewStandingRepository(seasons, leagues, communities, teams)

	sn, err := seasons.GetOrCreate(ctx, "2025-2026")
	if err != nil {
		t.Fatal(err)
	}
	lg, err := leagues.GetOrCreate(ctx, league.League{
		Name: "U13 Tier 2", Slug: "u13-tier-2", Stream: "u13-t2", Type: league.TypeRegular,
	})
	if err != nil {
		t.Fatal(err)
	}
	comm, err := communities.GetOrCreate(ctx, "Springbank")
	if err != nil {
		t.Fatal(err)
	}
	tm, err := teams.GetOrCreate(ctx, "Springbank 2", comm.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := standings.Upsert(ctx, standing.Standing{
		SeasonID: sn.ID, LeagueID: lg.ID, TeamID: tm.ID,
		GamesPlayed: 4, Wins: 3, Losses: 1, Points: 6, GoalsFor: 14, GoalsAgainst: 8, GoalDiff: 6,
	}); err != nil {
		t.Fatal(err)
	}

	standingsService := usecase.NewStandingsService(standings, seasons, leagues, communities)
	maintenance := usecase.NewMaintenanceService(
		seasons, communities, teams, standings, normalize.DefaultAllowlist(), logging.NewNop())

	return NewHandler(standingsService, nil, maintenance, logging.NewNop())
}

func testRouter(t *testing.T, handler *Handler) http.Handler {
	t.Helper()
	return NewRouter(handler, logging.NewNop(), false, []string{"*"})
}

type envelope struct {
	APIVersion string `json:"apiVersion"`
	Data       any    `json:"data"`
	Error      *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return env
}

func TestHandler_ListStandings(t *testing.T) {
	router := testRouter(t, seededHandler(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/standings", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	items, ok := env.Data.([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected 1 standing, got %v", env.Data)
	}
	row, _ := items[0].(map[string]any)
	if row["team"] != "Springbank 2" || row["community"] != "Springbank" {
		t.Fatalf("unexpected row: %v", row)
	}
	if row["pts"] != float64(6) || row["diff"] != float64(6) {
		t.Fatalf("unexpected stats: %v", row)
	}
}

func TestHandler_ListDimensions(t *testing.T) {
	router := testRouter(t, seededHandler(t))

	for _, path := range []string{"/v1/seasons", "/v1/leagues", "/v1/communities"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		env := decodeEnvelope(t, rec)
		items, ok := env.Data.([]any)
		if !ok || len(items) != 1 {
			t.Fatalf("%s: expected 1 item, got %v", path, env.Data)
		}
	}
}

func TestHandler_MergeSeasons(t *testing.T) {
	router := testRouter(t, seededHandler(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/maintenance/merge-seasons", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	report, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected report object, got %v", env.Data)
	}
	if report["merged"] != float64(0) {
		t.Fatalf("expected no merges on clean data, got %v", report)
	}
}

func TestHandler_Healthz(t *testing.T) {
	router := testRouter(t, seededHandler(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_RunSyncWithoutService(t *testing.T) {
	router := testRouter(t, seededHandler(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sync", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected error envelope, got %+v", env)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	router := testRouter(t, seededHandler(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/standings", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
