package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobhub/internal/scheduler"
	"github.com/amishk599/jobhub/internal/seen"
	"github.com/amishk599/jobhub/internal/store"
	"github.com/amishk599/jobhub/internal/watch"
)

var (
	watchOnce   bool
	watchDryRun bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch saved searches and notify about new listings",
	Long:  "Runs every saved search on watch.interval, notifies about listings not seen before and stores them in the catalog; blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run every saved search once, notify everything found and exit")
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "do not write to the catalog")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	if len(cfg.Watch.Searches) == 0 {
		return errors.New("no saved searches configured under watch.searches")
	}

	logger.Info("config loaded",
		"interval", cfg.Watch.Interval.String(),
		"searches", len(cfg.Watch.Searches),
		"providers", len(cfg.Providers),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build search engine", "error", err)
		return err
	}
	defer e.Close()

	// In dry-run mode, use a NopCatalog so nothing is persisted.
	var catalog store.Catalog
	if watchDryRun {
		logger.Info("dry-run mode enabled, nothing will be written to the catalog")
		catalog = store.NewNopCatalog()
	} else {
		sqlCatalog, err := store.OpenSQLite(cfg.Watch.CatalogPath)
		if err != nil {
			logger.Error("failed to open catalog", "error", err)
			return err
		}
		defer sqlCatalog.Close()
		catalog = sqlCatalog
	}

	tracker := seen.NewTracker(cfg.Seen.Retention)
	n := setupNotifier(cfg, newHTTPClient(), logger)
	w := watch.New(e.orch, tracker, n, catalog, cfg.Watch.Searches, cfg.Search.MaxLimit, logger)

	if watchOnce {
		// The tracker starts empty, so a single run reports everything it finds.
		w.DisableSeeding()
		err := w.RunOnce(ctx)
		logger.Info("watch run complete")
		return err
	}

	sched := scheduler.New(logger)
	if err := sched.Add("watch", cfg.Watch.Interval, true, w.RunOnce); err != nil {
		return err
	}
	if err := addMaintenanceJobs(sched, e, tracker, logger); err != nil {
		return err
	}
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
