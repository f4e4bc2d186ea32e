package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider types understood by the adapter registry.
const (
	TypeAdzuna     = "adzuna"
	TypeGreenhouse = "greenhouse"
	TypeLever      = "lever"
	TypeAshby      = "ashby"
	TypeGem        = "gem"
	TypeWorkday    = "workday"
	TypeScrape     = "scrape"
)

var knownTypes = map[string]bool{
	TypeAdzuna: true, TypeGreenhouse: true, TypeLever: true, TypeAshby: true,
	TypeGem: true, TypeWorkday: true, TypeScrape: true,
}

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// EnvPath names the environment variable consulted when no --config flag is given.
const EnvPath = "JOBHUB_CONFIG"

const defaultPath = "config.yaml"

const slackWebhookPrefix = "https://hooks.slack.com/"

// Config is the root configuration for jobhub.
type Config struct {
	Server    ServerConfig
	Search    SearchConfig
	Cache     CacheConfig
	Freshness FreshnessConfig
	Seen      SeenConfig
	RateLimit RateLimitConfig
	Retry     RetryConfig
	Providers []ProviderConfig
	Watch     WatchConfig
}

type ServerConfig struct {
	Addr string
}

// SearchConfig holds aggregate search settings.
type SearchConfig struct {
	ProviderTimeout time.Duration // per-provider deadline
	DefaultLimit    int
	MaxLimit        int
}

type CacheConfig struct {
	Backend       string // "memory" or "redis"
	TTL           time.Duration
	RedisURL      string
	SweepInterval time.Duration // active expiry cadence for the memory backend
}

// FreshnessConfig holds the maximum record age, in days, per query class.
type FreshnessConfig struct {
	JobMaxAgeDays     int
	FundingMaxAgeDays int
}

type SeenConfig struct {
	Retention     time.Duration
	PruneInterval time.Duration
}

// RateLimitConfig controls per-provider request spacing.
type RateLimitConfig struct {
	MinDelay          time.Duration
	ProviderOverrides map[string]time.Duration // keyed by provider name
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// ProviderConfig describes one upstream provider. Which fields matter
// depends on Type.
type ProviderConfig struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Enabled bool   `yaml:"enabled"`

	// adzuna
	AppID   string `yaml:"app_id"`
	AppKey  string `yaml:"app_key"`
	Country string `yaml:"country"`

	// greenhouse, lever, ashby, gem, workday
	Company    string `yaml:"company"`
	BoardToken string `yaml:"board_token"`
	WorkdayURL string `yaml:"workday_url"`

	// scrape
	URL       string          `yaml:"url"`
	Selectors ScrapeSelectors `yaml:"selectors"`
}

// ScrapeSelectors are CSS selectors for the scrape provider. Item selects
// one listing; the rest are evaluated inside it.
type ScrapeSelectors struct {
	Item        string `yaml:"item"`
	Title       string `yaml:"title"`
	Company     string `yaml:"company"`
	Location    string `yaml:"location"`
	URL         string `yaml:"url"`
	Posted      string `yaml:"posted"`
	Description string `yaml:"description"`
	Salary      string `yaml:"salary"`
}

// HasCredentials reports whether an adzuna provider has both keys.
func (p ProviderConfig) HasCredentials() bool {
	return p.AppID != "" && p.AppKey != ""
}

// Active reports whether the provider goes into the registry. The primary
// search API is always attempted when its credentials are configured.
func (p ProviderConfig) Active() bool {
	if p.Type == TypeAdzuna && p.HasCredentials() {
		return true
	}
	return p.Enabled
}

// WatchConfig controls the saved-search watcher.
type WatchConfig struct {
	Interval     time.Duration
	Searches     []SavedSearch
	Notification NotificationConfig
	CatalogPath  string
}

// SavedSearch is one query the watcher runs on every tick.
type SavedSearch struct {
	Query    string `yaml:"query"`
	Location string `yaml:"location"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// rawConfig mirrors the YAML file: snake_case keys, durations as strings.
type rawConfig struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Search struct {
		ProviderTimeout string `yaml:"provider_timeout"`
		DefaultLimit    int    `yaml:"default_limit"`
		MaxLimit        int    `yaml:"max_limit"`
	} `yaml:"search"`
	Cache struct {
		Backend       string `yaml:"backend"`
		TTL           string `yaml:"ttl"`
		RedisURL      string `yaml:"redis_url"`
		SweepInterval string `yaml:"sweep_interval"`
	} `yaml:"cache"`
	Freshness struct {
		JobMaxAgeDays     *int `yaml:"job_max_age_days"`
		FundingMaxAgeDays *int `yaml:"funding_max_age_days"`
	} `yaml:"freshness"`
	Seen struct {
		Retention     string `yaml:"retention"`
		PruneInterval string `yaml:"prune_interval"`
	} `yaml:"seen"`
	RateLimit struct {
		MinDelay          string            `yaml:"min_delay"`
		ProviderOverrides map[string]string `yaml:"provider_overrides"`
	} `yaml:"rate_limit"`
	Retry struct {
		MaxRetries *int   `yaml:"max_retries"`
		BaseDelay  string `yaml:"base_delay"`
	} `yaml:"retry"`
	Providers []ProviderConfig `yaml:"providers"`
	Watch     struct {
		Interval     string             `yaml:"interval"`
		Searches     []SavedSearch      `yaml:"searches"`
		Notification NotificationConfig `yaml:"notification"`
		CatalogPath  string             `yaml:"catalog_path"`
	} `yaml:"watch"`
}

// ResolvePath picks the config file: the flag value, then $JOBHUB_CONFIG,
// then ./config.yaml.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return defaultPath
}

// Load reads and parses the YAML config file at path, applies defaults,
// validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Credentials are usually given as ${VAR}.
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{Addr: orDefault(raw.Server.Addr, ":8080")},
		Search: SearchConfig{
			DefaultLimit: orDefaultInt(raw.Search.DefaultLimit, 20),
			MaxLimit:     orDefaultInt(raw.Search.MaxLimit, 100),
		},
		Cache: CacheConfig{
			Backend:  strings.ToLower(orDefault(raw.Cache.Backend, CacheMemory)),
			RedisURL: raw.Cache.RedisURL,
		},
		Freshness: FreshnessConfig{JobMaxAgeDays: 7, FundingMaxAgeDays: 90},
		Retry:     RetryConfig{MaxRetries: 1},
		Watch: WatchConfig{
			Searches:     raw.Watch.Searches,
			Notification: raw.Watch.Notification,
			CatalogPath:  orDefault(raw.Watch.CatalogPath, "jobs.db"),
		},
	}
	if cfg.Watch.Notification.Type == "" {
		cfg.Watch.Notification.Type = "log"
	}
	if raw.Freshness.JobMaxAgeDays != nil {
		cfg.Freshness.JobMaxAgeDays = *raw.Freshness.JobMaxAgeDays
	}
	if raw.Freshness.FundingMaxAgeDays != nil {
		cfg.Freshness.FundingMaxAgeDays = *raw.Freshness.FundingMaxAgeDays
	}
	if raw.Retry.MaxRetries != nil {
		cfg.Retry.MaxRetries = *raw.Retry.MaxRetries
	}

	durations := []struct {
		key  string
		raw  string
		def  time.Duration
		dest *time.Duration
	}{
		{"search.provider_timeout", raw.Search.ProviderTimeout, 12 * time.Second, &cfg.Search.ProviderTimeout},
		{"cache.ttl", raw.Cache.TTL, time.Hour, &cfg.Cache.TTL},
		{"cache.sweep_interval", raw.Cache.SweepInterval, 5 * time.Minute, &cfg.Cache.SweepInterval},
		{"seen.retention", raw.Seen.Retention, 24 * time.Hour, &cfg.Seen.Retention},
		{"seen.prune_interval", raw.Seen.PruneInterval, time.Hour, &cfg.Seen.PruneInterval},
		{"rate_limit.min_delay", raw.RateLimit.MinDelay, time.Second, &cfg.RateLimit.MinDelay},
		{"retry.base_delay", raw.Retry.BaseDelay, 500 * time.Millisecond, &cfg.Retry.BaseDelay},
		{"watch.interval", raw.Watch.Interval, 30 * time.Minute, &cfg.Watch.Interval},
	}
	for _, d := range durations {
		*d.dest = d.def
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", d.key, d.raw, err)
		}
		*d.dest = v
	}

	cfg.RateLimit.ProviderOverrides = make(map[string]time.Duration)
	for name, v := range raw.RateLimit.ProviderOverrides {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.provider_overrides[%q]: %w", name, err)
		}
		cfg.RateLimit.ProviderOverrides[name] = d
	}

	cfg.Providers = make([]ProviderConfig, len(raw.Providers))
	for i, p := range raw.Providers {
		p.Type = strings.ToLower(p.Type)
		if p.Name == "" {
			p.Name = p.Type
		}
		if p.Type == TypeAdzuna && p.Country == "" {
			p.Country = "za"
		}
		cfg.Providers[i] = p
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func validate(cfg *Config) error {
	if cfg.Search.ProviderTimeout <= 0 {
		return fmt.Errorf("search.provider_timeout must be positive, got %v", cfg.Search.ProviderTimeout)
	}
	if cfg.Search.DefaultLimit < 1 || cfg.Search.MaxLimit < cfg.Search.DefaultLimit {
		return fmt.Errorf("search limits must satisfy 1 <= default_limit (%d) <= max_limit (%d)",
			cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}

	switch cfg.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if cfg.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required when cache.backend is \"redis\"")
		}
	default:
		return fmt.Errorf("cache.backend must be \"memory\" or \"redis\", got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %v", cfg.Cache.TTL)
	}
	if cfg.Cache.SweepInterval <= 0 {
		return fmt.Errorf("cache.sweep_interval must be positive, got %v", cfg.Cache.SweepInterval)
	}

	if cfg.Freshness.JobMaxAgeDays < 1 || cfg.Freshness.FundingMaxAgeDays < 1 {
		return fmt.Errorf("freshness windows must be at least 1 day, got job=%d funding=%d",
			cfg.Freshness.JobMaxAgeDays, cfg.Freshness.FundingMaxAgeDays)
	}

	if cfg.Seen.Retention <= 0 || cfg.Seen.PruneInterval <= 0 {
		return fmt.Errorf("seen.retention and seen.prune_interval must be positive")
	}
	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}

	names := make(map[string]bool)
	active := 0
	for i, p := range cfg.Providers {
		if !knownTypes[p.Type] {
			return fmt.Errorf("providers[%d]: unknown type %q", i, p.Type)
		}
		if names[p.Name] {
			return fmt.Errorf("providers[%d]: duplicate name %q", i, p.Name)
		}
		names[p.Name] = true
		if err := validateProvider(p); err != nil {
			return fmt.Errorf("providers[%d] (%s): %w", i, p.Name, err)
		}
		if p.Active() {
			active++
		}
	}
	if active == 0 {
		return fmt.Errorf("at least one provider must be enabled")
	}

	if cfg.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive, got %v", cfg.Watch.Interval)
	}
	for i, s := range cfg.Watch.Searches {
		if strings.TrimSpace(s.Query) == "" {
			return fmt.Errorf("watch.searches[%d]: query is required", i)
		}
	}

	switch cfg.Watch.Notification.Type {
	case "log":
	case "slack":
		if cfg.Watch.Notification.WebhookURL == "" {
			return fmt.Errorf("watch.notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Watch.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("watch.notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("watch.notification.type must be \"log\" or \"slack\", got %q", cfg.Watch.Notification.Type)
	}

	return nil
}

func validateProvider(p ProviderConfig) error {
	switch p.Type {
	case TypeGreenhouse, TypeLever, TypeAshby, TypeGem:
		if p.BoardToken == "" {
			return fmt.Errorf("board_token is required for %s", p.Type)
		}
	case TypeWorkday:
		if p.WorkdayURL == "" {
			return fmt.Errorf("workday_url is required for workday")
		}
	case TypeScrape:
		if p.URL == "" {
			return fmt.Errorf("url is required for scrape")
		}
		if p.Selectors.Item == "" || p.Selectors.Title == "" {
			return fmt.Errorf("selectors.item and selectors.title are required for scrape")
		}
	}
	return nil
}
