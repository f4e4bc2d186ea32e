package dedupe

import (
	"reflect"
	"testing"

	"github.com/amishk599/jobhub/internal/model"
)

func ids(records []model.JobRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Source + "/" + r.ID + "/" + r.Title
	}
	return out
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name    string
		in      []model.JobRecord
		wantLen int
		wantIDs []string
	}{
		{
			name: "same id same source different url and title",
			in: []model.JobRecord{
				{ID: "1", Source: "adzuna", URL: "https://a.co/x", Title: "Go Developer", Company: "Acme"},
				{ID: "1", Source: "adzuna", URL: "https://b.co/y", Title: "Java Developer", Company: "Other"},
			},
			wantIDs: []string{"adzuna/1/Go Developer"},
		},
		{
			name: "same id different source is not a duplicate",
			in: []model.JobRecord{
				{ID: "1", Source: "adzuna", URL: "https://a.co/x", Title: "Go Developer", Company: "Acme"},
				{ID: "1", Source: "lever", URL: "https://b.co/y", Title: "Java Developer", Company: "Other"},
			},
			wantIDs: []string{"adzuna/1/Go Developer", "lever/1/Java Developer"},
		},
		{
			name: "url differs only by tracking params",
			in: []model.JobRecord{
				{Source: "a", URL: "https://jobs.co.za/123?utm_source=x", Title: "Analyst", Company: "Acme"},
				{Source: "b", URL: "https://jobs.co.za/123?ref=y", Title: "Data Analyst", Company: "Acme Ltd"},
			},
			wantIDs: []string{"a//Analyst"},
		},
		{
			name: "title and company case and whitespace",
			in: []model.JobRecord{
				{Source: "a", URL: "https://a.co/1", Title: "  Go Developer ", Company: "ACME"},
				{Source: "b", URL: "https://b.co/2", Title: "go developer", Company: " acme "},
			},
			wantIDs: []string{"a//  Go Developer "},
		},
		{
			name: "distinct listings kept in order",
			in: []model.JobRecord{
				{Source: "a", URL: "https://a.co/1", Title: "Go Developer", Company: "Acme"},
				{Source: "a", URL: "https://a.co/2", Title: "Go Developer", Company: "Globex"},
				{Source: "b", URL: "https://b.co/3", Title: "Rust Developer", Company: "Acme"},
			},
			wantIDs: []string{"a//Go Developer", "a//Go Developer", "b//Rust Developer"},
		},
		{
			name:    "empty input",
			in:      nil,
			wantIDs: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Dedupe(tt.in))
			if !reflect.DeepEqual(got, tt.wantIDs) {
				t.Errorf("Dedupe() = %v, want %v", got, tt.wantIDs)
			}
		})
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	in := []model.JobRecord{
		{ID: "1", Source: "a", URL: "https://a.co/1?x=1", Title: "One", Company: "C"},
		{ID: "2", Source: "a", URL: "https://a.co/1?x=2", Title: "Two", Company: "C"},
		{ID: "3", Source: "b", URL: "https://b.co/3", Title: "one", Company: "c"},
		{ID: "4", Source: "b", URL: "https://b.co/4", Title: "Four", Company: "C"},
		{ID: "4", Source: "b", URL: "https://b.co/5", Title: "Five", Company: "C"},
	}
	once := Dedupe(in)
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Dedupe not idempotent:\n once  %v\n twice %v", ids(once), ids(twice))
	}
	if len(once) != 2 {
		t.Errorf("expected 2 survivors, got %d: %v", len(once), ids(once))
	}
}

func TestKeysOf(t *testing.T) {
	k := KeysOf(model.JobRecord{ID: "9", Source: "lever", URL: "https://x.co/j/9?src=li", Title: " Dev ", Company: "ACME"})
	if k.ID != "lever\x009" {
		t.Errorf("ID key = %q", k.ID)
	}
	if k.URL != "https://x.co/j/9" {
		t.Errorf("URL key = %q", k.URL)
	}
	if k.TitleCompany != "dev\x00acme" {
		t.Errorf("TitleCompany key = %q", k.TitleCompany)
	}
	if k.Primary() != "id:lever\x009" {
		t.Errorf("Primary() = %q", k.Primary())
	}

	noID := KeysOf(model.JobRecord{URL: "https://x.co/1", Title: "Dev"})
	if noID.ID != "" || noID.Primary() != "url:https://x.co/1" {
		t.Errorf("unexpected keys %+v primary %q", noID, noID.Primary())
	}
}
