package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amishk599/jobhub/internal/model"
)

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

type ashbyJob struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Location         string `json:"location"`
	IsRemote         bool   `json:"isRemote"`
	JobURL           string `json:"jobUrl"`
	PublishedAt      string `json:"publishedAt"`
	IsListed         bool   `json:"isListed"`
	EmploymentType   string `json:"employmentType"`
	DescriptionPlain string `json:"descriptionPlain"`
	Compensation     *struct {
		Summary string `json:"compensationTierSummary"`
	} `json:"compensation"`
}

type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// AshbyAdapter searches one company's Ashby job board.
type AshbyAdapter struct {
	name        string
	boardToken  string
	companyName string
	client      *http.Client
}

// NewAshbyAdapter creates a provider for an Ashby job board.
func NewAshbyAdapter(name, boardToken, companyName string, client *http.Client) *AshbyAdapter {
	return &AshbyAdapter{
		name:        name,
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

func (a *AshbyAdapter) Name() string { return a.name }

func (a *AshbyAdapter) Fetch(ctx context.Context, query, location string, page int) ([]model.JobRecord, error) {
	if page > 1 {
		return nil, nil
	}

	url := fmt.Sprintf("%s/%s?includeCompensation=true", ashbyBaseURL, a.boardToken)
	var resp ashbyResponse
	if err := getJSON(ctx, a.client, url, "ashby fetch for "+a.boardToken, &resp); err != nil {
		return nil, err
	}

	records := make([]model.JobRecord, 0, len(resp.Jobs))
	for _, aj := range resp.Jobs {
		if !aj.IsListed {
			continue
		}

		id := aj.ID
		if id == "" {
			id = aj.JobURL
		}
		loc := aj.Location
		if aj.IsRemote && loc == "" {
			loc = "Remote"
		}

		rec := model.JobRecord{
			ID:          id,
			Title:       aj.Title,
			Company:     a.companyName,
			Location:    loc,
			Description: aj.DescriptionPlain,
			URL:         aj.JobURL,
		}
		if aj.Compensation != nil {
			rec.Salary = aj.Compensation.Summary
		}
		if aj.EmploymentType == "Intern" {
			rec.Kind = model.KindInternship
		}
		if t, err := time.Parse(time.RFC3339, aj.PublishedAt); err == nil {
			rec.PostedAt = &t
		}

		finish(&rec, a.name)
		records = append(records, rec)
	}

	return narrow(records, query, location, page), nil
}
