package adapter

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/amishk599/jobhub/internal/config"
	"github.com/amishk599/jobhub/internal/model"
	"github.com/amishk599/jobhub/internal/ratelimit"
	"github.com/amishk599/jobhub/internal/retry"
)

// Entry is one registered provider.
type Entry struct {
	Name     string
	Type     string
	Provider model.Provider // decorated with rate limiting and retries
}

// Registry is the static provider set built at process start.
type Registry struct {
	entries []Entry
}

// Entries returns the registered providers in configuration order.
func (r *Registry) Entries() []Entry {
	return r.entries
}

// Providers returns the decorated providers in configuration order.
func (r *Registry) Providers() []model.Provider {
	out := make([]model.Provider, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Provider
	}
	return out
}

// BuildRegistry constructs every active provider from cfg. A provider that
// fails to construct is logged and left out.
func BuildRegistry(cfg *config.Config, client *http.Client, logger *slog.Logger) *Registry {
	limiter := ratelimit.NewLimiter(cfg.RateLimit.MinDelay, cfg.RateLimit.ProviderOverrides)

	reg := &Registry{}
	for _, pc := range cfg.Providers {
		if !pc.Active() {
			logger.Debug("provider disabled", "provider", pc.Name, "type", pc.Type)
			continue
		}

		p, err := NewProvider(pc, client)
		if err != nil {
			logger.Warn("skipping provider", "provider", pc.Name, "type", pc.Type, "error", err)
			continue
		}

		wrapped := retry.Wrap(ratelimit.Wrap(p, limiter), cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)
		reg.entries = append(reg.entries, Entry{Name: pc.Name, Type: pc.Type, Provider: wrapped})
		logger.Info("registered provider",
			"provider", pc.Name,
			"type", pc.Type,
			"min_delay", limiter.Delay(pc.Name),
		)
	}
	return reg
}

// NewProvider builds the undecorated adapter for one provider config.
func NewProvider(pc config.ProviderConfig, client *http.Client) (model.Provider, error) {
	company := pc.Company
	if company == "" {
		company = pc.Name
	}

	switch pc.Type {
	case config.TypeAdzuna:
		return NewAdzunaAdapter(pc.Name, pc.AppID, pc.AppKey, pc.Country, client), nil
	case config.TypeGreenhouse:
		return NewGreenhouseAdapter(pc.Name, pc.BoardToken, company, client), nil
	case config.TypeLever:
		return NewLeverAdapter(pc.Name, pc.BoardToken, company, client), nil
	case config.TypeAshby:
		return NewAshbyAdapter(pc.Name, pc.BoardToken, company, client), nil
	case config.TypeGem:
		return NewGemAdapter(pc.Name, pc.BoardToken, company, client), nil
	case config.TypeWorkday:
		return NewWorkdayAdapter(pc.Name, pc.WorkdayURL, company, client), nil
	case config.TypeScrape:
		return NewScrapeAdapter(pc.Name, pc.URL, pc.Selectors, client)
	default:
		return nil, fmt.Errorf("unknown provider type %q", pc.Type)
	}
}
