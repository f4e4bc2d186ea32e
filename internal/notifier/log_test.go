package notifier

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobhub/internal/model"
)

func TestLogNotifier_NoRecords(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := n.Notify(context.Background(), "developer", nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestLogNotifier_LogsEachRecord(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
	posted := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	records := []model.JobRecord{
		{Company: "Acme", Title: "Engineer", Location: "Remote", URL: "https://example.com/1", PostedAt: &posted},
		{Company: "Beta", Title: "Developer", Location: "Durban", URL: "https://example.com/2"},
	}

	if err := n.Notify(context.Background(), "developer", records); err != nil {
		t.Fatalf("Notify = %v, want nil", err)
	}

	out := buf.String()
	if got := strings.Count(out, "new listing"); got != 2 {
		t.Errorf("logged %d lines, want 2:\n%s", got, out)
	}
	for _, want := range []string{"search=developer", "posted_at=2026-02-01", "url=https://example.com/2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
