package adapter

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/amishk599/jobhub/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

type leverCategories struct {
	Team         string   `json:"team"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

type leverList struct {
	Text    string `json:"text"`
	Content string `json:"content"` // HTML <li> items
}

type leverJob struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	DescriptionPlain string          `json:"descriptionPlain"`
	Categories       leverCategories `json:"categories"`
	CreatedAt        int64           `json:"createdAt"`
	WorkplaceType    string          `json:"workplaceType"`
	HostedURL        string          `json:"hostedUrl"`
	Lists            []leverList     `json:"lists"`
	SalaryRange      *leverSalary    `json:"salaryRange"`
}

type leverSalary struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
	Interval string  `json:"interval"`
}

var leverItemRegex = regexp.MustCompile(`(?s)<li>(.*?)</li>`)

// LeverAdapter searches one company's Lever postings.
type LeverAdapter struct {
	name        string
	companySlug string
	companyName string
	client      *http.Client
}

// NewLeverAdapter creates a provider for a Lever board.
func NewLeverAdapter(name, companySlug, companyName string, client *http.Client) *LeverAdapter {
	return &LeverAdapter{
		name:        name,
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
	}
}

func (a *LeverAdapter) Name() string { return a.name }

func (a *LeverAdapter) Fetch(ctx context.Context, query, location string, page int) ([]model.JobRecord, error) {
	if page > 1 {
		return nil, nil
	}

	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, a.companySlug)
	var leverJobs []leverJob
	if err := getJSON(ctx, a.client, url, "lever fetch for "+a.companySlug, &leverJobs); err != nil {
		return nil, err
	}

	records := make([]model.JobRecord, 0, len(leverJobs))
	for _, lj := range leverJobs {
		loc := lj.Categories.Location
		if len(lj.Categories.AllLocations) > 0 {
			loc = strings.Join(lj.Categories.AllLocations, ", ")
		}
		if lj.WorkplaceType == "remote" && !strings.Contains(strings.ToLower(loc), "remote") {
			loc = strings.TrimPrefix(loc+", Remote", ", ")
		}

		rec := model.JobRecord{
			ID:           lj.ID,
			Title:        lj.Text,
			Company:      a.companyName,
			Location:     loc,
			Description:  lj.DescriptionPlain,
			URL:          lj.HostedURL,
			Salary:       lj.SalaryRange.String(),
			Requirements: leverRequirements(lj.Lists),
		}
		// createdAt is Unix milliseconds.
		if lj.CreatedAt > 0 {
			t := time.UnixMilli(lj.CreatedAt).UTC()
			rec.PostedAt = &t
		}

		finish(&rec, a.name)
		records = append(records, rec)
	}

	return narrow(records, query, location, page), nil
}

// leverRequirements flattens the bullet items of every posting list whose
// heading looks like a requirements section.
func leverRequirements(lists []leverList) []string {
	var out []string
	for _, l := range lists {
		heading := strings.ToLower(l.Text)
		if !strings.Contains(heading, "require") && !strings.Contains(heading, "qualif") {
			continue
		}
		for _, m := range leverItemRegex.FindAllStringSubmatch(l.Content, -1) {
			if item := extractText(m[1]); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func (s *leverSalary) String() string {
	if s == nil || (s.Min == 0 && s.Max == 0) {
		return ""
	}
	out := fmt.Sprintf("%s %.0f - %.0f", s.Currency, s.Min, s.Max)
	if s.Interval != "" {
		out += " " + s.Interval
	}
	return strings.TrimSpace(out)
}
