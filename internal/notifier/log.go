package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/jobhub/internal/model"
)

var _ Notifier = (*LogNotifier)(nil)

// LogNotifier writes new records to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each record. It never fails.
func (n *LogNotifier) Notify(_ context.Context, search string, records []model.JobRecord) error {
	for _, r := range records {
		args := []any{
			"search", search,
			"title", r.Title,
			"company", r.Company,
			"location", r.Location,
			"kind", r.Kind,
			"source", r.Source,
			"url", r.URL,
		}
		if r.PostedAt != nil {
			args = append(args, "posted_at", r.PostedAt.Format("2006-01-02"))
		}
		n.logger.Info("new listing", args...)
	}
	return nil
}
