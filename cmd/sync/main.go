package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yychockey/standings-sync/internal/app"
	"github.com/yychockey/standings-sync/internal/config"
	"github.com/yychockey/standings-sync/internal/platform/logging"
	"github.com/yychockey/standings-sync/internal/usecase"
)

func main() {
	reset := flag.Bool("reset", false, "drop and recreate the schema before syncing")
	mergeSeasons := flag.Bool("merge-seasons", false, "only merge duplicate seasons, skip the sync")
	pruneCommunities := flag.Bool("prune-communities", false, "only prune disallowed communities, skip the sync")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	switch {
	case *mergeSeasons:
		report, err := application.MaintenanceService.MergeDuplicateSeasons(ctx)
		if err != nil {
			logger.Error("season merge failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("merged %d duplicate season(s), moved %d standing row(s)\n",
			report.Merged, report.MovedRows)

	case *pruneCommunities:
		report, err := application.MaintenanceService.PruneDisallowedCommunities(ctx)
		if err != nil {
			logger.Error("community prune failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("pruned %d community(ies), %d team(s), %d standing row(s)\n",
			report.Communities, report.Teams, report.Standings)

	default:
		result, err := application.SyncService.Sync(ctx, usecase.SyncInput{
			Reset: *reset,
			Progress: func(fraction float64, message string) {
				fmt.Printf("[%3.0f%%] %s\n", fraction*100, message)
			},
		})
		if err != nil {
			logger.Error("sync failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("synced %d league(s): %d ok, %d failed, %d skipped; saved %d row(s), skipped %d row(s) in %.1fs\n",
			result.LeagueCount, result.SuccessCount, result.FailedCount, result.SkippedCount,
			result.SavedRows, result.SkippedRows, result.DurationSeconds)
		for _, task := range result.Tasks {
			if task.Status == "failed" {
				fmt.Printf("  failed: %s / %s: %s\n", task.Source, task.League, task.Message)
			}
		}
		if result.FailedCount > 0 {
			os.Exit(1)
		}
	}
}
