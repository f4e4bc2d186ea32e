package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

const leverPayload = `[
	{
		"id": "ff7ef527-b0d3-4c44-836a-8d6b58ac321e",
		"text": "Software Engineer",
		"descriptionPlain": "Plain text job description",
		"categories": {
			"team": "Engineering",
			"location": "San Francisco, CA",
			"commitment": "Full-time",
			"allLocations": ["San Francisco, CA", "Cape Town"]
		},
		"createdAt": 1769784074110,
		"workplaceType": "hybrid",
		"hostedUrl": "https://jobs.lever.co/acme/ff7ef527",
		"lists": [
			{"text": "Requirements", "content": "<li>3+ years of Go</li><li>Know <b>SQL</b></li>"},
			{"text": "Benefits", "content": "<li>Snacks</li>"}
		],
		"salaryRange": {"min": 500000, "max": 700000, "currency": "ZAR", "interval": "per-year-salary"}
	},
	{
		"id": "a1b2c3d4",
		"text": "Graduate Programme 2027",
		"descriptionPlain": "Rotate through engineering teams",
		"categories": {"location": ""},
		"createdAt": 1769870474110,
		"workplaceType": "remote",
		"hostedUrl": "https://jobs.lever.co/acme/a1b2c3d4"
	}
]`

func TestLeverFetch_Success(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(leverPayload))
	}))
	defer srv.Close()

	a := NewLeverAdapter("acme-lever", "acme", "Acme Corp", redirectClient(srv))
	records, err := a.Fetch(context.Background(), "engineer", "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "mode=json" {
		t.Errorf("query = %q, want mode=json", gotQuery)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	r := records[0]
	if r.Location != "San Francisco, CA, Cape Town" {
		t.Errorf("Location = %q", r.Location)
	}
	if want := []string{"3+ years of Go", "Know SQL"}; !reflect.DeepEqual(r.Requirements, want) {
		t.Errorf("Requirements = %v, want %v", r.Requirements, want)
	}
	if r.Salary != "ZAR 500000 - 700000 per-year-salary" {
		t.Errorf("Salary = %q", r.Salary)
	}
	if r.PostedAt == nil || !r.PostedAt.Equal(time.UnixMilli(1769784074110)) {
		t.Errorf("PostedAt = %v", r.PostedAt)
	}

	g := records[1]
	if g.Location != "Remote" {
		t.Errorf("remote workplace location = %q, want Remote", g.Location)
	}
	if g.Kind != "graduate-program" {
		t.Errorf("Kind = %q, want graduate-program", g.Kind)
	}
}

func TestLeverFetch_LocationNarrowing(t *testing.T) {
	srv := jsonServer(http.StatusOK, leverPayload)
	defer srv.Close()

	a := NewLeverAdapter("lever", "acme", "Acme", redirectClient(srv))
	records, err := a.Fetch(context.Background(), "software", "durban", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records for durban, got %+v", records)
	}
}

func TestLeverFetch_HTTPError(t *testing.T) {
	srv := jsonServer(http.StatusServiceUnavailable, "")
	defer srv.Close()

	a := NewLeverAdapter("lever", "acme", "Acme", redirectClient(srv))
	if _, err := a.Fetch(context.Background(), "engineer", "", 1); err == nil {
		t.Fatal("expected error for HTTP 503, got nil")
	}
}
