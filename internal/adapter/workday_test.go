package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var workdayNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newWorkdayTestAdapter(srv *httptest.Server) *WorkdayAdapter {
	a := NewWorkdayAdapter("acme-wd", "https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/External/", "Acme", redirectClient(srv))
	a.now = func() time.Time { return workdayNow }
	return a
}

func TestWorkdayFetch_SearchRequestAndRecords(t *testing.T) {
	listing := `{
		"total": 3,
		"jobPostings": [
			{
				"title": "Software Engineer",
				"externalPath": "/job/Cape-Town/Software-Engineer_JR1",
				"locationsText": "Cape Town",
				"postedOn": "Posted Today",
				"bulletFields": ["JR1"]
			},
			{
				"title": "Platform Engineer",
				"externalPath": "/job/Durban/Platform-Engineer_JR2",
				"locationsText": "Durban",
				"postedOn": "Posted 3 Days Ago",
				"bulletFields": ["JR2"]
			},
			{
				"title": "Staff Engineer",
				"externalPath": "/job/Multi/Staff-Engineer_JR3",
				"locationsText": "2 Locations",
				"postedOn": "Posted 30+ Days Ago"
			}
		]
	}`

	var got workdayListingRequest
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listing))
	}))
	defer srv.Close()

	records, err := newWorkdayTestAdapter(srv).Fetch(context.Background(), "engineer", "cape town", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/wday/cxs/acme/External/jobs" {
		t.Errorf("path = %q", gotPath)
	}
	if got.SearchText != "engineer" || got.Limit != workdayPageSize || got.Offset != workdayPageSize {
		t.Errorf("request = %+v, want searchText=engineer offset=%d", got, workdayPageSize)
	}

	// Durban is dropped by location; "2 Locations" is kept.
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}

	r := records[0]
	if r.ID != "JR1" || r.Source != "acme-wd" || r.Company != "Acme" {
		t.Errorf("unexpected record: %+v", r)
	}
	if want := "https://acme.wd5.myworkdayjobs.com/External/job/Cape-Town/Software-Engineer_JR1"; r.URL != want {
		t.Errorf("URL = %q, want %q", r.URL, want)
	}
	if r.PostedAt == nil || !r.PostedAt.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PostedAt = %v", r.PostedAt)
	}

	staff := records[1]
	if staff.ID != "/job/Multi/Staff-Engineer_JR3" {
		t.Errorf("ID without bullet fields = %q, want external path", staff.ID)
	}
	if staff.PostedAt != nil {
		t.Errorf("30+ days should be unknown age, got %v", staff.PostedAt)
	}
}

func TestWorkdayFetch_HTTPError(t *testing.T) {
	srv := jsonServer(http.StatusInternalServerError, "")
	defer srv.Close()

	if _, err := newWorkdayTestAdapter(srv).Fetch(context.Background(), "engineer", "", 1); err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}

func TestWorkdaySiteURL(t *testing.T) {
	tests := map[string]string{
		"https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/External": "https://acme.wd5.myworkdayjobs.com/External",
		"https://example.com/careers":                                "https://example.com/careers",
	}
	for in, want := range tests {
		if got := workdaySiteURL(in); got != want {
			t.Errorf("workdaySiteURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParsePostedOn(t *testing.T) {
	tests := []struct {
		input    string
		wantNil  bool
		wantDays int // days before today (0 = today)
	}{
		{"Posted Today", false, 0},
		{"Posted Yesterday", false, 1},
		{"Posted 3 Days Ago", false, 3},
		{"Posted 1 Day Ago", false, 1},
		{"Posted 30+ Days Ago", true, 0},
		{"Unknown format", true, 0},
		{"", true, 0},
	}

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parsePostedOn(tt.input, workdayNow)
			if tt.wantNil {
				if got != nil {
					t.Errorf("expected nil for %q, got %v", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected non-nil for %q", tt.input)
			}
			if want := today.AddDate(0, 0, -tt.wantDays); !got.Equal(want) {
				t.Errorf("parsePostedOn(%q) = %v, want %v", tt.input, got, want)
			}
		})
	}
}
