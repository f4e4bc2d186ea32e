package model

import (
	"testing"
	"time"
)

func TestJobRecord_Valid(t *testing.T) {
	tests := []struct {
		name string
		rec  JobRecord
		want bool
	}{
		{"title and url", JobRecord{Title: "Engineer", URL: "https://x.co/1"}, true},
		{"title and id", JobRecord{Title: "Engineer", ID: "42"}, true},
		{"missing title", JobRecord{URL: "https://x.co/1", ID: "42"}, false},
		{"blank title", JobRecord{Title: "   ", URL: "https://x.co/1"}, false},
		{"title only", JobRecord{Title: "Engineer"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		title string
		want  Kind
	}{
		{"Senior Go Developer", KindJob},
		{"Engineering Bursary 2027", KindBursary},
		{"IT Learnership Programme", KindLearnership},
		{"Graduate Programme: Finance", KindGraduateProgram},
		{"Software Engineering Internship", KindInternship},
		{"Marketing Intern", KindInternship},
		{"Internal Auditor", KindJob},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := InferKind(tt.title); got != tt.want {
				t.Errorf("InferKind(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestParsePostedAt(t *testing.T) {
	tests := []struct {
		in      string
		wantNil bool
		want    time.Time
	}{
		{"2026-02-13T10:00:00Z", false, time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)},
		{"2026-02-13", false, time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)},
		{"2026-02-13T10:00:00", false, time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)},
		{"", true, time.Time{}},
		{"last tuesday", true, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParsePostedAt(tt.in)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("ParsePostedAt(%q) = %v, want nil", tt.in, got)
				}
				return
			}
			if got == nil || !got.Equal(tt.want) {
				t.Fatalf("ParsePostedAt(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewSearchRequest_Normalizes(t *testing.T) {
	a := NewSearchRequest("  Go   Developer ", "Cape Town", 1, 20)
	b := NewSearchRequest("go developer", "  cape town", 1, 20)
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	c := NewSearchRequest("go developer", "cape town", 2, 20)
	if a.Key() == c.Key() {
		t.Error("different pages must not share a key")
	}
}

func TestAggregateResult_AllFailed(t *testing.T) {
	failed := AggregateResult{ProviderErrors: []ProviderError{{Provider: "a"}}}
	if !failed.AllFailed() {
		t.Error("expected AllFailed for errors with no sources")
	}
	empty := AggregateResult{SourcesUsed: []string{"a"}}
	if empty.AllFailed() {
		t.Error("successful empty search must not be AllFailed")
	}
}
