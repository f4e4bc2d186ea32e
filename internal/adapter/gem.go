package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amishk599/jobhub/internal/model"
)

const gemBaseURL = "https://api.gem.com/job_board/v0"

type gemJob struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Location       gemLocation `json:"location"`
	AbsoluteURL    string      `json:"absolute_url"`
	FirstPublished string      `json:"first_published_at"`
	UpdatedAt      string      `json:"updated_at"`
	Content        string      `json:"content"`
	ContentPlain   string      `json:"content_plain"`
}

type gemLocation struct {
	Name string `json:"name"`
}

// GemAdapter searches one company's Gem job board.
type GemAdapter struct {
	name        string
	boardToken  string
	companyName string
	client      *http.Client
}

// NewGemAdapter creates a provider for a Gem job board.
func NewGemAdapter(name, boardToken, companyName string, client *http.Client) *GemAdapter {
	return &GemAdapter{
		name:        name,
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

func (a *GemAdapter) Name() string { return a.name }

func (a *GemAdapter) Fetch(ctx context.Context, query, location string, page int) ([]model.JobRecord, error) {
	if page > 1 {
		return nil, nil
	}

	url := fmt.Sprintf("%s/%s/job_posts/", gemBaseURL, a.boardToken)
	var gemJobs []gemJob
	if err := getJSON(ctx, a.client, url, "gem fetch for "+a.boardToken, &gemJobs); err != nil {
		return nil, err
	}

	records := make([]model.JobRecord, 0, len(gemJobs))
	for _, gj := range gemJobs {
		desc := gj.ContentPlain
		if desc == "" {
			desc = extractText(gj.Content)
		}

		rec := model.JobRecord{
			ID:          gj.ID,
			Title:       gj.Title,
			Company:     a.companyName,
			Location:    gj.Location.Name,
			Description: desc,
			URL:         gj.AbsoluteURL,
		}
		for _, ts := range []string{gj.FirstPublished, gj.UpdatedAt} {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				rec.PostedAt = &t
				break
			}
		}

		finish(&rec, a.name)
		records = append(records, rec)
	}

	return narrow(records, query, location, page), nil
}
