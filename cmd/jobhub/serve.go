package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobhub/internal/api"
	"github.com/amishk599/jobhub/internal/scheduler"
	"github.com/amishk599/jobhub/internal/seen"
	"github.com/amishk599/jobhub/internal/store"
	"github.com/amishk599/jobhub/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API",
	Long:  "Starts the HTTP search API and the maintenance scheduler; blocks until SIGINT/SIGTERM. Saved searches in the config are watched as well.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build search engine", "error", err)
		return err
	}
	defer e.Close()

	tracker := seen.NewTracker(cfg.Seen.Retention)
	sched := scheduler.New(logger)
	if err := addMaintenanceJobs(sched, e, tracker, logger); err != nil {
		return err
	}

	if len(cfg.Watch.Searches) > 0 {
		catalog, err := store.OpenSQLite(cfg.Watch.CatalogPath)
		if err != nil {
			logger.Error("failed to open catalog", "error", err)
			return err
		}
		defer catalog.Close()

		w := watch.New(e.orch, tracker, setupNotifier(cfg, newHTTPClient(), logger), catalog,
			cfg.Watch.Searches, cfg.Search.MaxLimit, logger)
		if err := sched.Add("watch", cfg.Watch.Interval, true, w.RunOnce); err != nil {
			return err
		}
	}

	providers := make([]api.ProviderInfo, 0, len(e.registry.Entries()))
	for _, entry := range e.registry.Entries() {
		providers = append(providers, api.ProviderInfo{Name: entry.Name, Type: entry.Type})
	}
	srv := api.NewServer(e.orch, e.cache, providers, cfg.Search, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx, cfg.Server.Addr) })
	g.Go(func() error { return sched.Run(gctx) })

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}

// addMaintenanceJobs registers the tracker prune and, for the memory
// backend, the cache sweep.
func addMaintenanceJobs(sched *scheduler.Scheduler, e *engine, tracker *seen.Tracker, logger *slog.Logger) error {
	err := sched.Add("seen-prune", e.cfg.Seen.PruneInterval, false, func(context.Context) error {
		if n := tracker.Prune(time.Now()); n > 0 {
			logger.Info("pruned seen tracker", "removed", n, "remaining", tracker.Len())
		}
		return nil
	})
	if err != nil {
		return err
	}

	if e.memory == nil {
		return nil
	}
	return sched.Add("cache-sweep", e.cfg.Cache.SweepInterval, false, func(context.Context) error {
		if n := e.memory.Sweep(time.Now()); n > 0 {
			logger.Debug("swept cache", "removed", n)
		}
		return nil
	})
}
