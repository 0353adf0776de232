package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"
	"github.com/yychockey/standings-sync/internal/domain/league"
	"github.com/yychockey/standings-sync/internal/domain/season"
	"github.com/yychockey/standings-sync/internal/domain/standing"
	"github.com/yychockey/standings-sync/internal/normalize"
	"github.com/yychockey/standings-sync/internal/platform/id"
	"github.com/yychockey/standings-sync/internal/platform/logging"
)

const (
	syncStatusSuccess = "success"
	syncStatusFailed  = "failed"
	syncStatusSkipped = "skipped"
)

// SchemaResetter drops and recreates the schema. Only the destructive sync
// path touches it.
type SchemaResetter interface {
	Reset(ctx context.Context) error
}

// ProgressFunc receives a completion fraction in [0,1] and a short human
// message. Fractions reported to the caller never decrease.
type ProgressFunc func(fraction float64, message string)

type SyncConfig struct {
	LeagueWorkers     int
	TournamentWorkers int
	// CurrentSeason anchors tournament discovery and supersede cleanup
	// when no source reports a season, e.g. "2025-2026".
	CurrentSeason string
	// SupersededAgeCategory names the age group whose legacy-site tables
	// are replaced by a newer source for the current season.
	SupersededAgeCategory string
	// OverridesPath is the community override file, re-read at the start
	// of every run so edits apply without a restart. Empty disables the
	// reload.
	OverridesPath string
}

type SyncInput struct {
	Reset    bool
	Progress ProgressFunc
}

type SyncResult struct {
	RunID           string           `json:"run_id"`
	LeagueCount     int              `json:"league_count"`
	TaskCount       int              `json:"task_count"`
	SuccessCount    int              `json:"success_count"`
	FailedCount     int              `json:"failed_count"`
	SkippedCount    int              `json:"skipped_count"`
	SavedRows       int              `json:"saved_rows"`
	SkippedRows     int              `json:"skipped_rows"`
	TournamentSets  int              `json:"tournament_sets"`
	SupersededRows  int64            `json:"superseded_rows"`
	MergedSeasons   int              `json:"merged_seasons"`
	Tasks           []SyncTaskResult `json:"tasks"`
	DurationSeconds float64          `json:"duration_seconds"`
}

type SyncTaskResult struct {
	Source     string `json:"source"`
	League     string `json:"league"`
	Status     string `json:"status"`
	Saved      int    `json:"saved"`
	Skipped    int    `json:"skipped"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// SyncService walks every configured source, reconciles what it finds
// through the ingestion service, and finishes with the fixed cleanup pass.
// One failing league never aborts the run; setup failures (schema reset,
// pool creation) do.
type SyncService struct {
	sources      []StandingsSource
	tournaments  []TournamentSource
	ingestion    *IngestionService
	seasonRepo   season.Repository
	leagueRepo   league.Repository
	standingRepo standing.Repository
	resetter     SchemaResetter
	maintenance  *MaintenanceService
	cfg          SyncConfig
	ids          id.Generator
	logger       *logging.Logger
}

func NewSyncService(
	sources []StandingsSource,
	tournaments []TournamentSource,
	ingestion *IngestionService,
	seasonRepo season.Repository,
	leagueRepo league.Repository,
	standingRepo standing.Repository,
	resetter SchemaResetter,
	maintenance *MaintenanceService,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if cfg.LeagueWorkers <= 0 {
		cfg.LeagueWorkers = 4
	}
	if cfg.TournamentWorkers <= 0 {
		cfg.TournamentWorkers = 2
	}
	if cfg.SupersededAgeCategory == "" {
		cfg.SupersededAgeCategory = "U13"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SyncService{
		sources:      sources,
		tournaments:  tournaments,
		ingestion:    ingestion,
		seasonRepo:   seasonRepo,
		leagueRepo:   leagueRepo,
		standingRepo: standingRepo,
		resetter:     resetter,
		maintenance:  maintenance,
		cfg:          cfg,
		ids:          id.NewRandomGenerator(),
		logger:       logger,
	}
}

type syncTask struct {
	source StandingsSource
	ref    ExternalLeague
}

func (s *SyncService) Sync(ctx context.Context, input SyncInput) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Sync")
	defer span.End()

	if s.ingestion == nil || len(s.sources) == 0 {
		return SyncResult{}, fmt.Errorf("%w: sync service is not fully configured", ErrDependencyUnavailable)
	}

	start := time.Now()
	runID, err := s.ids.NewID()
	if err != nil {
		return SyncResult{}, fmt.Errorf("generate run id: %w", err)
	}
	s.logger.InfoContext(ctx, "sync run starting", "run_id", runID, "reset", input.Reset)

	progress := newProgressReporter(input.Progress)
	progress.report(0, "starting sync")

	s.refreshOverrides(ctx)

	if input.Reset {
		if s.resetter == nil {
			return SyncResult{}, fmt.Errorf("%w: schema reset requested but no resetter configured", ErrDependencyUnavailable)
		}
		if err := s.resetter.Reset(ctx); err != nil {
			return SyncResult{}, fmt.Errorf("reset schema: %w", err)
		}
		progress.report(0.02, "schema reset complete")
	}

	tasks := s.discoverLeagues(ctx, progress)
	result := SyncResult{
		RunID:       runID,
		LeagueCount: len(tasks),
		TaskCount:   len(tasks),
		Tasks:       make([]SyncTaskResult, 0, len(tasks)),
	}

	seasons := newSeasonSet(s.cfg.CurrentSeason)
	if len(tasks) > 0 {
		taskResults, err := s.runLeaguePhase(ctx, tasks, seasons, progress)
		if err != nil {
			return SyncResult{}, err
		}
		result.Tasks = append(result.Tasks, taskResults...)
	}
	progress.report(0.7, "league standings synced")

	tournamentTasks := s.runTournamentPhase(ctx, seasons, progress)
	result.Tasks = append(result.Tasks, tournamentTasks...)
	for _, row := range tournamentTasks {
		if row.Status == syncStatusSuccess {
			result.TournamentSets++
		}
	}
	result.TaskCount += len(tournamentTasks)
	progress.report(0.9, "tournament standings synced")

	superseded, err := s.cleanupSupersededStandings(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "superseded standings cleanup failed", "error", err)
	}
	result.SupersededRows = superseded

	if s.maintenance != nil {
		report, err := s.maintenance.MergeDuplicateSeasons(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "season merge failed", "error", err)
		} else {
			result.MergedSeasons = report.Merged
		}
	}
	progress.report(1, "sync complete")

	sort.SliceStable(result.Tasks, func(i, j int) bool {
		if result.Tasks[i].Source != result.Tasks[j].Source {
			return result.Tasks[i].Source < result.Tasks[j].Source
		}
		return result.Tasks[i].League < result.Tasks[j].League
	})

	for _, row := range result.Tasks {
		result.SavedRows += row.Saved
		result.SkippedRows += row.Skipped
		switch row.Status {
		case syncStatusSuccess:
			result.SuccessCount++
		case syncStatusSkipped:
			result.SkippedCount++
		default:
			result.FailedCount++
		}
	}
	result.DurationSeconds = time.Since(start).Seconds()

	s.logger.InfoContext(ctx, "sync run finished",
		"run_id", runID, "leagues", result.LeagueCount,
		"saved_rows", result.SavedRows, "failed", result.FailedCount,
		"duration_s", result.DurationSeconds)

	return result, nil
}

// refreshOverrides re-reads the community override file so the run picks
// up edits made since the process started. A read failure keeps the
// previous mapping.
func (s *SyncService) refreshOverrides(ctx context.Context) {
	if s.cfg.OverridesPath == "" {
		return
	}

	overrides, err := normalize.LoadOverrides(s.cfg.OverridesPath)
	if err != nil {
		s.logger.WarnContext(ctx, "override reload failed, keeping previous mapping",
			"path", s.cfg.OverridesPath, "error", err)
		return
	}
	s.ingestion.SetMapper(normalize.NewMapper(normalize.Config{Overrides: overrides}))
}

// discoverLeagues fans across the directory pages. A source whose listing
// fails contributes nothing; the other sources still run.
func (s *SyncService) discoverLeagues(ctx context.Context, progress *progressReporter) []syncTask {
	tasks := make([]syncTask, 0, 64)
	for _, src := range s.sources {
		refs, err := src.ListLeagues(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "league discovery failed",
				"source", src.Source(), "error", err)
			continue
		}
		for _, ref := range refs {
			tasks = append(tasks, syncTask{source: src, ref: ref})
		}
		progress.report(0.05, fmt.Sprintf("discovered %d leagues on %s", len(refs), src.Source()))
	}
	return tasks
}

func (s *SyncService) runLeaguePhase(
	ctx context.Context,
	tasks []syncTask,
	seasons *seasonSet,
	progress *progressReporter,
) ([]SyncTaskResult, error) {
	workerCount := s.cfg.LeagueWorkers
	if workerCount > len(tasks) {
		workerCount = len(tasks)
	}

	antsPool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create league worker pool: %w", err)
	}
	defer antsPool.Release()

	results := make(chan SyncTaskResult, len(tasks))
	var completed atomic.Int32

	var workers sync.WaitGroup
	for _, task := range tasks {
		task := task
		workers.Add(1)
		if err := antsPool.Submit(func() {
			defer workers.Done()

			row := s.runLeagueTask(ctx, task, seasons)
			results <- row

			done := completed.Add(1)
			fraction := 0.05 + 0.65*float64(done)/float64(len(tasks))
			progress.report(fraction, fmt.Sprintf("synced %s (%s)", task.ref.Name, task.source.Source()))
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit league task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	out := make([]SyncTaskResult, 0, len(tasks))
	for row := range results {
		out = append(out, row)
	}
	return out, nil
}

func (s *SyncService) runLeagueTask(ctx context.Context, task syncTask, seasons *seasonSet) SyncTaskResult {
	start := time.Now()
	row := SyncTaskResult{
		Source: task.source.Source(),
		League: task.ref.Name,
	}

	sets, err := task.source.FetchLeagueStandings(ctx, task.ref)
	if err != nil {
		row.Status = syncStatusFailed
		row.Message = err.Error()
		row.DurationMs = time.Since(start).Milliseconds()
		s.logger.WarnContext(ctx, "league fetch failed",
			"source", row.Source, "league", task.ref.Slug, "error", err)
		return row
	}
	if len(sets) == 0 {
		row.Status = syncStatusSkipped
		row.Message = "no standings published"
		row.DurationMs = time.Since(start).Milliseconds()
		return row
	}

	row.Status = syncStatusSuccess
	for _, set := range sets {
		seasons.add(set.SeasonName)
		res, err := s.ingestion.SaveStandingSet(ctx, set)
		row.Saved += res.Saved
		row.Skipped += res.Skipped
		if err != nil {
			row.Status = syncStatusFailed
			row.Message = err.Error()
			s.logger.WarnContext(ctx, "standing set save failed",
				"source", row.Source, "league", set.LeagueSlug,
				"season", set.SeasonName, "error", err)
		}
	}
	row.DurationMs = time.Since(start).Milliseconds()

	return row
}

// runTournamentPhase starts only after every league task has finished so
// that the season list it walks is complete.
func (s *SyncService) runTournamentPhase(
	ctx context.Context,
	seasons *seasonSet,
	progress *progressReporter,
) []SyncTaskResult {
	if len(s.tournaments) == 0 {
		return nil
	}

	seasonNames := seasons.sorted()

	var mu sync.Mutex
	out := make([]SyncTaskResult, 0, len(seasonNames)*len(s.tournaments))

	workers := pool.New().WithMaxGoroutines(s.cfg.TournamentWorkers)
	for _, src := range s.tournaments {
		for _, seasonName := range seasonNames {
			src, seasonName := src, seasonName
			workers.Go(func() {
				rows := s.runTournamentTask(ctx, src, seasonName)
				mu.Lock()
				out = append(out, rows...)
				mu.Unlock()
				progress.report(0.7, fmt.Sprintf("synced tournaments for %s", seasonName))
			})
		}
	}
	workers.Wait()

	return out
}

func (s *SyncService) runTournamentTask(ctx context.Context, src TournamentSource, seasonName string) []SyncTaskResult {
	start := time.Now()

	sets, err := src.FetchSeason(ctx, seasonName)
	if err != nil {
		s.logger.WarnContext(ctx, "tournament fetch failed",
			"source", src.Source(), "season", seasonName, "error", err)
		return []SyncTaskResult{{
			Source:     src.Source(),
			League:     seasonName,
			Status:     syncStatusFailed,
			Message:    err.Error(),
			DurationMs: time.Since(start).Milliseconds(),
		}}
	}

	out := make([]SyncTaskResult, 0, len(sets))
	for _, set := range sets {
		row := SyncTaskResult{
			Source: src.Source(),
			League: set.LeagueName,
			Status: syncStatusSuccess,
		}
		res, err := s.ingestion.SaveStandingSet(ctx, ExternalStandingSet{
			SeasonName:   set.SeasonName,
			LeagueName:   set.LeagueName,
			LeagueSlug:   set.LeagueSlug,
			LeagueStream: set.LeagueStream,
			LeagueType:   set.LeagueType,
			SourceURL:    set.SourceURL,
			Rows:         set.Rows,
		})
		row.Saved = res.Saved
		row.Skipped = res.Skipped
		if err != nil {
			row.Status = syncStatusFailed
			row.Message = err.Error()
			s.logger.WarnContext(ctx, "tournament set save failed",
				"source", row.Source, "league", set.LeagueSlug,
				"season", set.SeasonName, "error", err)
		}
		row.DurationMs = time.Since(start).Milliseconds()
		out = append(out, row)
	}
	return out
}

// cleanupSupersededStandings removes current-season rows for legacy-site
// leagues in the age category that moved to a newer source, so the same
// division is never reported twice.
func (s *SyncService) cleanupSupersededStandings(ctx context.Context) (int64, error) {
	if s.cfg.CurrentSeason == "" {
		return 0, nil
	}

	sn, found, err := s.seasonRepo.GetByName(ctx, season.CanonicalName(s.cfg.CurrentSeason))
	if err != nil {
		return 0, fmt.Errorf("look up current season: %w", err)
	}
	if !found {
		return 0, nil
	}

	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list leagues: %w", err)
	}

	ageToken := strings.ToUpper(s.cfg.SupersededAgeCategory)
	leagueIDs := make([]int64, 0, 8)
	for _, lg := range leagues {
		if isManagedStream(lg.Stream) {
			continue
		}
		if strings.Contains(strings.ToUpper(lg.Name), ageToken) {
			leagueIDs = append(leagueIDs, lg.ID)
		}
	}
	if len(leagueIDs) == 0 {
		return 0, nil
	}

	deleted, err := s.standingRepo.DeleteForLeagues(ctx, sn.ID, leagueIDs)
	if err != nil {
		return 0, fmt.Errorf("delete superseded standings: %w", err)
	}
	if deleted > 0 {
		s.logger.InfoContext(ctx, "removed superseded legacy standings",
			"season", sn.Name, "age_category", s.cfg.SupersededAgeCategory, "rows", deleted)
	}
	return deleted, nil
}

// isManagedStream reports whether a stream belongs to one of the API-backed
// sources. Everything else is a legacy-site stream path segment.
func isManagedStream(stream string) bool {
	switch strings.ToLower(stream) {
	case "ramp", "teamlinkt", "tournament":
		return true
	default:
		return false
	}
}

type seasonSet struct {
	mu    sync.Mutex
	names map[string]struct{}
}

func newSeasonSet(initial ...string) *seasonSet {
	s := &seasonSet{names: make(map[string]struct{}, 8)}
	for _, name := range initial {
		s.add(name)
	}
	return s
}

func (s *seasonSet) add(name string) {
	name = season.CanonicalName(name)
	if name == "" {
		return
	}
	s.mu.Lock()
	s.names[name] = struct{}{}
	s.mu.Unlock()
}

func (s *seasonSet) sorted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// progressReporter clamps reported fractions so callers always observe a
// non-decreasing sequence even though phases complete out of order.
type progressReporter struct {
	mu   sync.Mutex
	last float64
	fn   ProgressFunc
}

func newProgressReporter(fn ProgressFunc) *progressReporter {
	return &progressReporter{fn: fn}
}

// report delivers the callback while holding the lock: clamping alone is
// not enough, because two goroutines that clamp in order could still call
// the callback out of order after unlocking.
func (p *progressReporter) report(fraction float64, message string) {
	if p == nil || p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if fraction < p.last {
		fraction = p.last
	}
	if fraction > 1 {
		fraction = 1
	}
	p.last = fraction
	p.fn(fraction, message)
}
