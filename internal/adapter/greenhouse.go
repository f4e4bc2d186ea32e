package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/jobhub/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

type greenhouseJob struct {
	ID             int64              `json:"id"`
	Title          string             `json:"title"`
	Location       greenhouseLocation `json:"location"`
	AbsoluteURL    string             `json:"absolute_url"`
	FirstPublished string             `json:"first_published"`
	UpdatedAt      string             `json:"updated_at"`
	Content        string             `json:"content"` // HTML, entity-encoded
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseAdapter searches one company's Greenhouse public board.
type GreenhouseAdapter struct {
	name        string
	boardToken  string
	companyName string
	client      *http.Client
}

// NewGreenhouseAdapter creates a provider for a Greenhouse board.
func NewGreenhouseAdapter(name, boardToken, companyName string, client *http.Client) *GreenhouseAdapter {
	return &GreenhouseAdapter{
		name:        name,
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

func (a *GreenhouseAdapter) Name() string { return a.name }

// Fetch downloads the whole board and keeps the postings matching query and
// location.
func (a *GreenhouseAdapter) Fetch(ctx context.Context, query, location string, page int) ([]model.JobRecord, error) {
	if page > 1 {
		return nil, nil
	}

	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, a.boardToken)
	var ghResp greenhouseResponse
	if err := getJSON(ctx, a.client, url, "greenhouse fetch for "+a.boardToken, &ghResp); err != nil {
		return nil, err
	}

	records := make([]model.JobRecord, 0, len(ghResp.Jobs))
	for _, gj := range ghResp.Jobs {
		rec := model.JobRecord{
			ID:          strconv.FormatInt(gj.ID, 10),
			Title:       gj.Title,
			Company:     a.companyName,
			Location:    gj.Location.Name,
			Description: extractText(gj.Content),
			URL:         gj.AbsoluteURL,
		}

		// Prefer first publication; updated_at moves on every edit.
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
