package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/yychockey/standings-sync/external/legacy"
	"github.com/yychockey/standings-sync/external/ramp"
	"github.com/yychockey/standings-sync/external/teamlinkt"
	"github.com/yychockey/standings-sync/external/tournament"
	"github.com/yychockey/standings-sync/internal/config"
	"github.com/yychockey/standings-sync/internal/domain/community"
	"github.com/yychockey/standings-sync/internal/domain/league"
	"github.com/yychockey/standings-sync/internal/domain/season"
	"github.com/yychockey/standings-sync/internal/domain/standing"
	cacherepo "github.com/yychockey/standings-sync/internal/infrastructure/repository/cache"
	"github.com/yychockey/standings-sync/internal/infrastructure/repository/postgres"
	"github.com/yychockey/standings-sync/internal/interfaces/httpapi"
	"github.com/yychockey/standings-sync/internal/normalize"
	"github.com/yychockey/standings-sync/internal/platform/cache"
	"github.com/yychockey/standings-sync/internal/platform/logging"
	"github.com/yychockey/standings-sync/internal/usecase"
)

// Application owns the wired object graph: database handle, repositories,
// services, and source clients. Close releases the database.
type Application struct {
	Config config.Config
	Logger *logging.Logger
	DB     *sqlx.DB

	Schema             *postgres.SchemaManager
	StandingsService   *usecase.StandingsService
	SyncService        *usecase.SyncService
	MaintenanceService *usecase.MaintenanceService
}

func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := sqlx.Open("postgres", cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s: %w", dbNameFromURL(cfg.DBURL), err)
	}

	schema := postgres.NewSchemaManager(db)
	if err := schema.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	var (
		seasonRepo    season.Repository    = postgres.NewSeasonRepository(db)
		leagueRepo    league.Repository    = postgres.NewLeagueRepository(db)
		communityRepo community.Repository = postgres.NewCommunityRepository(db)
		standingRepo  standing.Repository  = postgres.NewStandingRepository(db)
	)
	teamRepo := postgres.NewTeamRepository(db)

	if cfg.CacheEnabled {
		store := cache.NewStore(cfg.CacheTTL)
		seasonRepo = cacherepo.NewSeasonRepository(seasonRepo, store)
		leagueRepo = cacherepo.NewLeagueRepository(leagueRepo, store)
		communityRepo = cacherepo.NewCommunityRepository(communityRepo, store)
		standingRepo = cacherepo.NewStandingRepository(standingRepo, store)
	}

	overrides, err := normalize.LoadOverrides(cfg.CommunityOverridesPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load community overrides: %w", err)
	}
	mapper := normalize.NewMapper(normalize.Config{Overrides: overrides})

	ingestion := usecase.NewIngestionService(
		seasonRepo, leagueRepo, communityRepo, teamRepo, standingRepo, mapper, logger)
	maintenance := usecase.NewMaintenanceService(
		seasonRepo, communityRepo, teamRepo, standingRepo, normalize.DefaultAllowlist(), logger)
	standings := usecase.NewStandingsService(standingRepo, seasonRepo, leagueRepo, communityRepo)

	sources, tournaments := buildSources(cfg, logger)

	syncService := usecase.NewSyncService(
		sources,
		tournaments,
		ingestion,
		seasonRepo,
		leagueRepo,
		standingRepo,
		schema,
		maintenance,
		usecase.SyncConfig{
			LeagueWorkers:         cfg.SyncWorkers,
			TournamentWorkers:     cfg.TournamentWorkers,
			CurrentSeason:         cfg.CurrentSeason,
			SupersededAgeCategory: cfg.SupersededAgeCategory,
			OverridesPath:         cfg.CommunityOverridesPath,
		},
		logger,
	)

	return &Application{
		Config:             cfg,
		Logger:             logger,
		DB:                 db,
		Schema:             schema,
		StandingsService:   standings,
		SyncService:        syncService,
		MaintenanceService: maintenance,
	}, nil
}

// buildSources assembles the source clients the config enables. The
// tournament crawler rides on the legacy site client, so it only exists
// when the legacy source does.
func buildSources(cfg config.Config, logger *logging.Logger) ([]usecase.StandingsSource, []usecase.TournamentSource) {
	sources := make([]usecase.StandingsSource, 0, 3)
	tournaments := make([]usecase.TournamentSource, 0, 1)

	var site *legacy.Client
	if cfg.LegacyEnabled {
		site = legacy.NewClient(legacy.ClientConfig{
			BaseURL:       cfg.LegacyBaseURL,
			Timeout:       cfg.LegacyTimeout,
			CurrentSeason: cfg.CurrentSeason,
			Logger:        logger,
		})
		sources = append(sources, site)
	}
	if cfg.RampEnabled {
		sources = append(sources, ramp.NewClient(ramp.ClientConfig{
			BaseURL:       cfg.RampBaseURL,
			Timeout:       cfg.RampTimeout,
			CurrentSeason: cfg.CurrentSeason,
			Logger:        logger,
		}))
	}
	if cfg.TeamLinktEnabled {
		sources = append(sources, teamlinkt.NewClient(teamlinkt.ClientConfig{
			BaseURL:           cfg.TeamLinktBaseURL,
			OrgPath:           cfg.TeamLinktOrgPath,
			Timeout:           cfg.TeamLinktTimeout,
			ExcludeCategories: cfg.TeamLinktExcludeCategories,
			Logger:            logger,
		}))
	}
	if cfg.TournamentsEnabled && site != nil {
		tournaments = append(tournaments, tournament.NewClient(tournament.ClientConfig{
			Site:   site,
			Logger: logger,
		}))
	}

	return sources, tournaments
}

func (a *Application) NewHTTPServer() (*http.Server, error) {
	handler := httpapi.NewHandler(a.StandingsService, a.SyncService, a.MaintenanceService, a.Logger)
	router := httpapi.NewRouter(handler, a.Logger, a.Config.SwaggerEnabled, a.Config.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         a.Config.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.Config.ReadTimeout,
		WriteTimeout: a.Config.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func (a *Application) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
