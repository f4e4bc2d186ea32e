package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobhub/internal/adapter"
	"github.com/amishk599/jobhub/internal/cache"
	"github.com/amishk599/jobhub/internal/config"
	"github.com/amishk599/jobhub/internal/filter"
	"github.com/amishk599/jobhub/internal/notifier"
	"github.com/amishk599/jobhub/internal/search"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:          "jobhub",
	Short:        "Aggregate job, internship and bursary search",
	Long:         "jobhub searches many job boards at once and merges the results into one ranked, deduplicated list.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: "+config.EnvPath+" env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: --config flag > JOBHUB_CONFIG env var > "./config.yaml"
func loadConfig() (*config.Config, error) {
	return config.Load(config.ResolvePath(cfgPath))
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// silentLogger is used by the TUI; log output before the alt screen starts
// corrupts the display.
func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) notifier.Notifier {
	switch cfg.Watch.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Watch.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// engine is the aggregate search stack shared by every command.
type engine struct {
	cfg      *config.Config
	registry *adapter.Registry
	cache    cache.Cache
	memory   *cache.MemoryCache // nil with the redis backend
	orch     *search.Orchestrator
	closers  []func() error
}

func (e *engine) Close() {
	for _, c := range e.closers {
		c()
	}
}

func buildEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*engine, error) {
	e := &engine{cfg: cfg}

	switch cfg.Cache.Backend {
	case config.CacheRedis:
		rdb, err := cache.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		e.closers = append(e.closers, rdb.Close)
		e.cache = cache.NewRedisCache(rdb, "jobhub:search:")
		logger.Info("using redis cache")
	default:
		e.memory = cache.NewMemoryCache()
		e.cache = e.memory
	}

	e.registry = adapter.BuildRegistry(cfg, newHTTPClient(), logger)
	if len(e.registry.Entries()) == 0 {
		e.Close()
		return nil, fmt.Errorf("no providers available")
	}

	e.orch = search.NewOrchestrator(e.registry.Providers(), e.cache, search.Options{
		ProviderTimeout: cfg.Search.ProviderTimeout,
		TTL:             cfg.Cache.TTL,
		Freshness: filter.Policy{
			JobMaxAgeDays:     cfg.Freshness.JobMaxAgeDays,
			FundingMaxAgeDays: cfg.Freshness.FundingMaxAgeDays,
		},
	}, logger)
	return e, nil
}

func searchLabel(query, location string) string {
	if location == "" {
		return fmt.Sprintf("%q", query)
	}
	return fmt.Sprintf("%q in %s", query, location)
}
