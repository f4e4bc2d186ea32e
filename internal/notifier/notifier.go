// Package notifier delivers newly found records to a user.
package notifier

import (
	"context"
	"time"

	"github.com/amishk599/jobhub/internal/model"
)

// Notifier delivers the new records found for one saved search.
type Notifier interface {
	Notify(ctx context.Context, search string, records []model.JobRecord) error
}

// SendTestMessage sends a sample record so the integration can be checked.
func SendTestMessage(ctx context.Context, n Notifier) error {
	now := time.Now()
	rec := model.JobRecord{
		ID:          "test-001",
		Title:       "Test Notification: Integration Verified",
		Company:     "jobhub",
		Location:    "Everywhere",
		URL:         "https://github.com/amishk599/jobhub",
		PostedAt:    &now,
		Salary:      model.SalaryNotSpecified,
		Source:      "test",
		Kind:        model.KindJob,
		Description: "If you can read this, notifications work.",
	}
	return n.Notify(ctx, "test", []model.JobRecord{rec})
}
