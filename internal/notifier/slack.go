package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobhub/internal/model"
)

var _ Notifier = (*SlackNotifier)(nil)

// maxPerMessage keeps a digest well under Slack's 50-block limit.
const maxPerMessage = 10

// SlackNotifier posts digests of new records via a Slack Incoming Webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify posts the records in chunks of maxPerMessage. It returns an error
// only if every chunk failed; individual failures are logged.
func (s *SlackNotifier) Notify(ctx context.Context, search string, records []model.JobRecord) error {
	if len(records) == 0 {
		return nil
	}

	chunks, failures := 0, 0
	for start := 0; start < len(records); start += maxPerMessage {
		end := min(start+maxPerMessage, len(records))
		chunks++
		if err := s.send(ctx, buildPayload(search, records[start:end], len(records))); err != nil {
			s.logger.Error("slack notification failed", "search", search, "error", err)
			failures++
		}
	}

	if failures == chunks {
		return fmt.Errorf("all %d slack messages failed", failures)
	}
	s.logger.Info("slack notifications complete", "search", search, "records", len(records), "failed_messages", failures)
	return nil
}

// send posts one payload, waiting out a single 429 before giving up.
func (s *SlackNotifier) send(ctx context.Context, payload slackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(ctx, body)
	if err != nil {
		return err
	}
	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "retry_after", retryAfter)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryAfter):
		}
		if status, _, err = s.post(ctx, body); err != nil {
			return fmt.Errorf("retry: %w", err)
		}
	}
	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, body []byte) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
	if secs <= 0 {
		secs = 1
	}
	return resp.StatusCode, time.Duration(secs) * time.Second, nil
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text"` // notification fallback
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type      string        `json:"type"`
	Text      *slackText    `json:"text,omitempty"`
	Fields    []slackText   `json:"fields,omitempty"`
	Accessory *slackElement `json:"accessory,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type string    `json:"type"`
	Text slackText `json:"text"`
	URL  string    `json:"url"`
}

func buildPayload(search string, records []model.JobRecord, total int) slackPayload {
	title := fmt.Sprintf("%d new listing", total)
	if total != 1 {
		title += "s"
	}
	title += fmt.Sprintf(" for \"%s\"", search)

	blocks := []slackBlock{{
		Type: "header",
		Text: &slackText{Type: "plain_text", Text: title},
	}}

	for _, r := range records {
		lines := []string{fmt.Sprintf("*%s*", r.Title)}
		var meta []string
		for _, v := range []string{r.Company, r.Location, string(r.Kind)} {
			if v != "" {
				meta = append(meta, v)
			}
		}
		if r.PostedAt != nil {
			meta = append(meta, "posted "+r.PostedAt.Format("2 Jan 2006"))
		}
		if len(meta) > 0 {
			lines = append(lines, strings.Join(meta, " · "))
		}
		if r.Salary != "" && r.Salary != model.SalaryNotSpecified {
			lines = append(lines, "Salary: "+r.Salary)
		}
		lines = append(lines, "_via "+r.Source+"_")

		block := slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: strings.Join(lines, "\n")},
		}
		if r.URL != "" {
			block.Accessory = &slackElement{
				Type: "button",
				Text: slackText{Type: "plain_text", Text: "View"},
				URL:  r.URL,
			}
		}
		blocks = append(blocks, block, slackBlock{Type: "divider"})
	}

	return slackPayload{Text: title, Blocks: blocks}
}
