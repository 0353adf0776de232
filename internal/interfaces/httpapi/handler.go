package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/yychockey/standings-sync/internal/platform/logging"
	"github.com/yychockey/standings-sync/internal/usecase"
)

type Handler struct {
	standingsService   *usecase.StandingsService
	syncService        *usecase.SyncService
	maintenanceService *usecase.MaintenanceService
	logger             *logging.Logger
}

func NewHandler(
	standingsService *usecase.StandingsService,
	syncService *usecase.SyncService,
	maintenanceService *usecase.MaintenanceService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		standingsService:   standingsService,
		syncService:        syncService,
		maintenanceService: maintenanceService,
		logger:             logger,
	}
}

type standingRowDTO struct {
	Season       string `json:"season"`
	League       string `json:"league"`
	Stream       string `json:"stream"`
	LeagueType   string `json:"league_type"`
	Community    string `json:"community"`
	Team         string `json:"team"`
	GamesPlayed  int    `json:"gp"`
	Wins         int    `json:"w"`
	Losses       int    `json:"l"`
	Ties         int    `json:"t"`
	Points       int    `json:"pts"`
	GoalsFor     int    `json:"gf"`
	GoalsAgainst int    `json:"ga"`
	GoalDiff     int    `json:"diff"`
	SourceURL    string `json:"source_url,omitempty"`
}

type seasonDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type leagueDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Stream string `json:"stream"`
	Type   string `json:"type"`
}

type communityDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	rows, err := h.standingsService.ListJoined(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]standingRowDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, standingRowDTO{
			Season:       row.Season,
			League:       row.League,
			Stream:       row.Stream,
			LeagueType:   string(row.LeagueType),
			Community:    row.Community,
			Team:         row.Team,
			GamesPlayed:  row.GamesPlayed,
			Wins:         row.Wins,
			Losses:       row.Losses,
			Ties:         row.Ties,
			Points:       row.Points,
			GoalsFor:     row.GoalsFor,
			GoalsAgainst: row.GoalsAgainst,
			GoalDiff:     row.GoalDiff,
			SourceURL:    row.SourceURL,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasons")
	defer span.End()

	seasons, err := h.standingsService.ListSeasons(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list seasons failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]seasonDTO, 0, len(seasons))
	for _, sn := range seasons {
		items = append(items, seasonDTO{ID: sn.ID, Name: sn.Name})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.standingsService.ListLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, lg := range leagues {
		items = append(items, leagueDTO{
			ID:     lg.ID,
			Name:   lg.Name,
			Slug:   lg.Slug,
			Stream: lg.Stream,
			Type:   string(lg.Type),
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListCommunities(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCommunities")
	defer span.End()

	communities, err := h.standingsService.ListCommunities(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list communities failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]communityDTO, 0, len(communities))
	for _, comm := range communities {
		items = append(items, communityDTO{ID: comm.ID, Name: comm.Name})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RunSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSync")
	defer span.End()

	if h.syncService == nil {
		writeError(ctx, w, usecase.ErrDependencyUnavailable)
		return
	}

	reset := false
	if raw := strings.TrimSpace(r.URL.Query().Get("reset")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(ctx, w, usecase.ErrInvalidInput)
			return
		}
		reset = parsed
	}

	result, err := h.syncService.Sync(ctx, usecase.SyncInput{
		Reset: reset,
		Progress: func(fraction float64, message string) {
			h.logger.InfoContext(ctx, "sync progress",
				"fraction", fraction, "message", message)
		},
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "sync failed", "reset", reset, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) MergeSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MergeSeasons")
	defer span.End()

	report, err := h.maintenanceService.MergeDuplicateSeasons(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "season merge failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) PruneCommunities(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PruneCommunities")
	defer span.End()

	report, err := h.maintenanceService.PruneDisallowedCommunities(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "community prune failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}
