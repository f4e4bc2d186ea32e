package adapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobhub/internal/config"
	"github.com/amishk599/jobhub/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildRegistry(t *testing.T) {
	cfg := &config.Config{
		RateLimit: config.RateLimitConfig{MinDelay: time.Millisecond},
		Retry:     config.RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond},
		Providers: []config.ProviderConfig{
			{Name: "adzuna", Type: config.TypeAdzuna, AppID: "id", AppKey: "key"}, // not enabled, but has credentials
			{Name: "acme", Type: config.TypeGreenhouse, BoardToken: "acme", Enabled: true},
			{Name: "off", Type: config.TypeLever, BoardToken: "off", Enabled: false},
			{Name: "broken", Type: config.TypeScrape, URL: "https://x", Enabled: true}, // no selectors
			{Name: "wd", Type: config.TypeWorkday, WorkdayURL: "https://x/wday/cxs/a/b", Enabled: true},
		},
	}

	reg := BuildRegistry(cfg, http.DefaultClient, discardLogger())

	var names []string
	for _, e := range reg.Entries() {
		names = append(names, e.Name+":"+e.Type)
	}
	want := []string{"adzuna:adzuna", "acme:greenhouse", "wd:workday"}
	if len(names) != len(want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry %d = %s, want %s", i, names[i], want[i])
		}
	}

	providers := reg.Providers()
	if len(providers) != 3 || providers[1].Name() != "acme" {
		t.Errorf("Providers() names wrong: %d", len(providers))
	}
}

func TestBuildRegistry_DecoratesWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"jobs":[{"id":1,"title":"Engineer","absolute_url":"https://x/1"}]}`))
	}))
	defer srv.Close()

	cfg := &config.Config{
		RateLimit: config.RateLimitConfig{MinDelay: time.Millisecond},
		Retry:     config.RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond},
		Providers: []config.ProviderConfig{
			{Name: "acme", Type: config.TypeGreenhouse, BoardToken: "acme", Company: "Acme", Enabled: true},
		},
	}
	reg := BuildRegistry(cfg, redirectClient(srv), discardLogger())

	records, err := reg.Providers()[0].Fetch(context.Background(), "engineer", "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || calls.Load() != 2 {
		t.Errorf("got %d records after %d calls, want 1 after 2", len(records), calls.Load())
	}
}

func TestBuildRegistry_NoCredentialsNotRetried(t *testing.T) {
	cfg := &config.Config{
		Retry: config.RetryConfig{MaxRetries: 3, BaseDelay: time.Second},
		Providers: []config.ProviderConfig{
			{Name: "adzuna", Type: config.TypeAdzuna, Enabled: true},
		},
	}
	reg := BuildRegistry(cfg, http.DefaultClient, discardLogger())

	start := time.Now()
	_, err := reg.Providers()[0].Fetch(context.Background(), "developer", "", 1)
	if !errors.Is(err, model.ErrNoCredentials) {
		t.Fatalf("err = %v, want ErrNoCredentials", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("missing credentials should fail fast")
	}
}
