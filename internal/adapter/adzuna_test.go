package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/jobhub/internal/model"
)

func TestAdzunaFetch_MissingCredentialsFailsFast(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	a := NewAdzunaAdapter("adzuna", "", "key", "", redirectClient(srv))
	_, err := a.Fetch(context.Background(), "developer", "", 1)
	if !errors.Is(err, model.ErrNoCredentials) {
		t.Fatalf("err = %v, want ErrNoCredentials", err)
	}
	if called {
		t.Error("adapter called upstream without credentials")
	}
}

func TestAdzunaFetch_Success(t *testing.T) {
	payload := `{
		"count": 2,
		"results": [
			{
				"id": "4410",
				"title": "<strong>Junior</strong> Developer",
				"description": "Write Go &amp; SQL",
				"company": {"display_name": "Acme"},
				"location": {"display_name": "Cape Town, Western Cape"},
				"salary_min": 25000,
				"salary_max": 35000,
				"redirect_url": "https://www.adzuna.co.za/land/ad/4410?se=abc",
				"created": "2026-02-10T09:00:00Z",
				"category": {"tag": "it-jobs"}
			},
			{
				"id": "4411",
				"title": "Graduate Analyst",
				"company": {"display_name": "Globex"},
				"location": {"display_name": "Sandton"},
				"redirect_url": "https://www.adzuna.co.za/land/ad/4411",
				"created": "not a date",
				"category": {"tag": "graduate-jobs"}
			}
		]
	}`

	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewAdzunaAdapter("adzuna", "id", "key", "", redirectClient(srv))
	records, err := a.Fetch(context.Background(), "developer", "cape town", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v1/api/jobs/za/search/1" {
		t.Errorf("path = %q", gotPath)
	}
	for k, want := range map[string]string{
		"app_id": "id", "app_key": "key", "what": "developer", "where": "cape town",
		"sort_by": "date", "results_per_page": "50",
	} {
		if got := gotQuery[k]; len(got) != 1 || got[0] != want {
			t.Errorf("param %s = %v, want %q", k, got, want)
		}
	}
	if _, ok := gotQuery["max_days_old"]; ok {
		t.Error("freshness must not be filtered upstream")
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	r := records[0]
	if r.Title != "Junior Developer" || r.Description != "Write Go & SQL" {
		t.Errorf("text not cleaned: %q / %q", r.Title, r.Description)
	}
	if r.Salary != "R25000 - R35000" {
		t.Errorf("Salary = %q", r.Salary)
	}
	if r.PostedAt == nil || r.Source != "adzuna" || r.Kind != model.KindJob {
		t.Errorf("unexpected record: %+v", r)
	}

	g := records[1]
	if g.PostedAt != nil {
		t.Errorf("unparseable created should be unknown, got %v", g.PostedAt)
	}
	if g.Kind != model.KindGraduateProgram || g.Salary != model.SalaryNotSpecified {
		t.Errorf("graduate record = %+v", g)
	}
}

func TestAdzunaFetch_HTTPError(t *testing.T) {
	srv := jsonServer(http.StatusUnauthorized, `{"exception":"AUTH_FAIL"}`)
	defer srv.Close()

	a := NewAdzunaAdapter("adzuna", "id", "bad", "gb", redirectClient(srv))
	_, err := a.Fetch(context.Background(), "developer", "", 1)

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v, want HTTPError 401", err)
	}
}

func TestAdzunaSalary(t *testing.T) {
	a := NewAdzunaAdapter("adzuna", "id", "key", "gb", nil)
	tests := []struct {
		lo, hi float64
		want   string
	}{
		{0, 0, ""},
		{30000, 30000, "£30000"},
		{0, 40000, "£40000"},
		{30000, 40000, "£30000 - £40000"},
	}
	for _, tt := range tests {
		if got := a.salary(tt.lo, tt.hi); got != tt.want {
			t.Errorf("salary(%v, %v) = %q, want %q", tt.lo, tt.hi, got, tt.want)
		}
	}
}
